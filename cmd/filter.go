/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Tispy-Bacon/wordfilter/internal"
	"github.com/Tispy-Bacon/wordfilter/internal/dictionary"
	"github.com/Tispy-Bacon/wordfilter/internal/orchestrator"
	"github.com/Tispy-Bacon/wordfilter/internal/ratelimit"
	"github.com/Tispy-Bacon/wordfilter/internal/store"
	"github.com/Tispy-Bacon/wordfilter/internal/wordlist"
)

// runFilter loads the input list, checks every word and writes the
// survivors. The output file is only written when every earlier step
// succeeded.
func runFilter(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	log.Infof("Reading words from %q", cfg.InputFile)
	words, err := wordlist.Load(cfg.InputFile)
	if err != nil {
		return err
	}
	log.Infof("Found %d words to check", len(words))

	gate, err := ratelimit.New(cfg.Limiter, cfg.Delay)
	if err != nil {
		return err
	}
	client := dictionary.NewClient(cfg.Endpoint, cfg.Timeout, log)
	policy := cfg.Policy()

	orchCfg := orchestrator.OrchestratorConfig{Policy: policy}

	db := openHistory()
	if db != nil {
		defer db.Close()

		runID := uuid.New().String()
		run := internal.RunRecord{
			ID:         runID,
			InputFile:  cfg.InputFile,
			OutputFile: cfg.OutputFile,
			Endpoint:   client.Endpoint(),
			Policy:     string(policy),
			Total:      len(words),
			Timestamp:  time.Now(),
		}
		if err := db.CreateRun(ctx, run); err != nil {
			log.WithError(err).Warn("failed to record run, continuing without history")
		} else {
			orchCfg.RunID = runID
			orchCfg.Recorder = db
			log.WithField("run_id", runID).Debug("recording run history")
		}
	}

	result, err := orchestrator.New(client, gate, orchCfg, log).Execute(ctx, words)
	if err != nil {
		failRun(ctx, db, orchCfg.RunID, err)
		return fmt.Errorf("filtering failed: %w", err)
	}
	log.Info(result.Summary())

	if err := wordlist.Save(cfg.OutputFile, result.Words); err != nil {
		failRun(ctx, db, orchCfg.RunID, err)
		return err
	}

	if db != nil && orchCfg.RunID != "" {
		if err := db.CompleteRun(ctx, orchCfg.RunID, len(result.Words), result.Failed); err != nil {
			log.WithError(err).Warn("failed to complete run record")
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Filtering complete. %s\n", result.Summary())
	fmt.Fprintf(out, "New word list saved to %q\n", cfg.OutputFile)
	if orchCfg.RunID != "" {
		fmt.Fprintf(out, "Run ID: %s\n", orchCfg.RunID)
	}

	if result.Failed > 0 && policy == dictionary.PolicyDrop {
		log.Warnf("%d words were dropped because their lookup failed; rerun with --on-failure keep to retain them", result.Failed)
	}
	return nil
}

func failRun(ctx context.Context, db *store.Store, runID string, cause error) {
	if db == nil || runID == "" {
		return
	}
	if err := db.FailRun(context.WithoutCancel(ctx), runID, cause.Error()); err != nil {
		log.WithError(err).Warn("failed to mark run as failed")
	}
}
