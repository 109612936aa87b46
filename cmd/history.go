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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Tispy-Bacon/wordfilter/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the run history",
	Long: `List, inspect, and clear the SQLite record of past filtering runs.

History is an audit log only; it is never used to skip a lookup.`,
}

func openHistoryStrict() (*store.Store, error) {
	db, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryStrict()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tPOLICY\tKEPT\tTOTAL\tFAILED\tINPUT")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Policy,
				r.Kept, r.Total, r.Failed, r.InputFile)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show every lookup of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryStrict()
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		lookups, err := db.GetLookups(cmd.Context(), run.ID)
		if err != nil {
			return fmt.Errorf("failed to load lookups: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run %s (%s): %s -> %s, %d/%d kept\n",
			run.ID, run.Status, run.InputFile, run.OutputFile, run.Kept, run.Total)
		if run.Error != "" {
			fmt.Fprintf(out, "Error: %s\n", run.Error)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tWORD\tOUTCOME\tSTATUS\tKEPT\tDETAIL")
		for _, l := range lookups {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%v\t%s\n", l.Index+1, l.Word, l.Outcome, l.Status, l.Kept, l.Reason)
		}
		return w.Flush()
	},
}

var historyWordCmd = &cobra.Command{
	Use:   "word <word>",
	Short: "Show how a word was classified across runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryStrict()
		if err != nil {
			return err
		}
		defer db.Close()

		lookups, err := db.WordHistory(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load word history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(lookups) == 0 {
			fmt.Fprintf(out, "No lookups recorded for %q.\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CHECKED\tRUN\tOUTCOME\tSTATUS\tDETAIL")
		for _, l := range lookups {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				l.CheckedAt.Local().Format("2006-01-02 15:04"), l.RunID, l.Outcome, l.Status, l.Reason)
		}
		return w.Flush()
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryStrict()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Runs:            %d\n", stats.TotalRuns)
		fmt.Fprintf(out, "  completed:     %d\n", stats.CompletedRuns)
		fmt.Fprintf(out, "  failed:        %d\n", stats.FailedRuns)
		fmt.Fprintf(out, "Lookups:         %d\n", stats.TotalLookups)
		fmt.Fprintf(out, "  defined:       %d\n", stats.Defined)
		fmt.Fprintf(out, "  undefined:     %d\n", stats.Undefined)
		fmt.Fprintf(out, "  errors:        %d\n", stats.Errors)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryStrict()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs from history.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyWordCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
}
