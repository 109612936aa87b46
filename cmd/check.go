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

	"github.com/Tispy-Bacon/wordfilter/internal/dictionary"
	"github.com/Tispy-Bacon/wordfilter/internal/ratelimit"
)

var checkCmd = &cobra.Command{
	Use:   "check <word>...",
	Short: "Look up words without reading or writing any file",
	Long: `Look up one or more words and print how each was classified.

Lookups are paced with the same --delay and --limiter settings as a full run.

Example:
  wordfilter check amulet wombat qzxjkx`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		gate, err := ratelimit.New(cfg.Limiter, cfg.Delay)
		if err != nil {
			return err
		}
		client := dictionary.NewClient(cfg.Endpoint, cfg.Timeout, log)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WORD\tOUTCOME\tSTATUS\tDETAIL")
		for i, word := range args {
			if i > 0 {
				if err := gate.Wait(ctx); err != nil {
					return err
				}
			}
			res := client.CheckWord(ctx, word)
			if err := ctx.Err(); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", res.Word, res.Outcome, res.Status, res.Reason)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
