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
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Tispy-Bacon/wordfilter/internal/config"
	"github.com/Tispy-Bacon/wordfilter/internal/dictionary"
	"github.com/Tispy-Bacon/wordfilter/internal/ratelimit"
)

var version = "0.1.0"

var (
	cfgFile string
	v       = config.New()
	cfg     *config.Config
	log     = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "wordfilter",
	Short: "Filter a word list down to words with dictionary definitions",
	Long: `Reads a JSON array of candidate words, looks every word up in the
Free Dictionary API one at a time and writes the words that have a
definition to a new JSON file.

Lookups are paced (one per second by default) to stay polite to the
public service. Run without arguments to filter 6-letter-words-old.json
into 6-letter-words.json.

Pass --history to also record the run in a SQLite database
(./data/wordfilter.db by default) for the history command.

Settings can also come from WORDFILTER_* environment variables or a
wordfilter.yaml file in the working directory.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ReadFile(v, cfgFile); err != nil {
			return err
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded
		configureLogger(log, cmd.ErrOrStderr(), cfg.Verbose)
		return nil
	},
	RunE: runFilter,
}

// Execute is the single failure boundary: any error that reaches it is
// logged and the process exits non-zero.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.WithError(err).Error("wordfilter failed")
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./wordfilter.yaml if present)")
	pf.String("endpoint", dictionary.DefaultEndpoint, "Dictionary endpoint; the word is appended as the last path segment")
	pf.Duration("delay", ratelimit.DefaultInterval, "Pause after every lookup (0 disables pacing)")
	pf.String("limiter", ratelimit.KindFixed, "Pacing strategy: fixed or bucket")
	pf.Duration("timeout", dictionary.DefaultTimeout, "HTTP timeout per lookup")
	pf.String("db", config.DefaultDBPath, "Database path for run history")
	pf.Bool("history", false, "Record the run in the history database (--db)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	f := rootCmd.Flags()
	f.StringP("input", "i", config.DefaultInputFile, "Input JSON word list")
	f.StringP("output", "o", config.DefaultOutputFile, "Output JSON word list (overwritten)")
	f.String("on-failure", string(dictionary.PolicyDrop), "Words whose lookup failed: drop, keep or abort")

	for key, name := range map[string]string{
		config.KeyEndpoint:  "endpoint",
		config.KeyDelay:     "delay",
		config.KeyLimiter:   "limiter",
		config.KeyTimeout:   "timeout",
		config.KeyDB:        "db",
		config.KeyHistory:   "history",
		config.KeyVerbose:   "verbose",
	} {
		if err := v.BindPFlag(key, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
	for key, name := range map[string]string{
		config.KeyInput:     "input",
		config.KeyOutput:    "output",
		config.KeyOnFailure: "on-failure",
	} {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
