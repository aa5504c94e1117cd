package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reabatch/internal/batch"
	"reabatch/internal/classify"
	"reabatch/internal/rpp"
	"reabatch/internal/scanner"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "preview [root]",
		Short: "Show which group each file would join without moving or rendering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rc, err := flags.apply(cmd, cfg, args)
			if err != nil {
				return err
			}
			logger := ctx.logger()

			catalog, _, err := batch.LoadCatalog(cmd.Context(), rc, logger)
			if err != nil {
				return err
			}
			rules, err := batch.ResolveRules(rc.Rules, catalog)
			if err != nil {
				return err
			}
			files, err := scanner.Scan(cmd.Context(), rc.RootDir, rc.ScanExclusions(), logger)
			if err != nil {
				return err
			}
			rows := classify.Preview(files, rules)

			if jsonOutput {
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No audio files under %s\n", rc.RootDir)
				return nil
			}
			table := make([][]string, 0, len(rows))
			unmatched := 0
			for _, row := range rows {
				group, preset := classify.UnmatchedKey, "-"
				if row.Matched {
					group, preset = row.Keyword, rpp.DisplayName(row.PresetPath)
				} else {
					unmatched++
				}
				table = append(table, []string{row.Name, group, preset})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "File", maxWidth: pathColumnWidth},
				{title: "Group"},
				{title: "Preset"},
			}, table))
			fmt.Fprintf(out, "%d files, %d unmatched\n", len(rows), unmatched)
			return nil
		},
	}

	flags.bindSelection(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
