package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reabatch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistoryStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, orEmpty(runs))
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(historyColumns, historyRows(runs)))
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistoryStore()
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	})

	return historyCmd
}

func (c *commandContext) openHistoryStore() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("run history is disabled (history.enabled = false)")
	}
	return history.Open(cfg.HistoryPath())
}

var historyColumns = []column{
	{title: "Started"},
	{title: "Verdict"},
	{title: "Files", align: alignRight},
	{title: "Groups", align: alignRight},
	{title: "Unmatched", align: alignRight},
	{title: "Exit", align: alignRight},
	{title: "Duration", align: alignRight},
	{title: "Root", maxWidth: pathColumnWidth},
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		exit := "-"
		if run.ExitCode != nil {
			exit = strconv.Itoa(*run.ExitCode)
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Verdict,
			strconv.Itoa(run.Files),
			strconv.Itoa(run.Groups),
			strconv.Itoa(run.Unmatched),
			exit,
			run.Duration().Round(time.Millisecond).String(),
			run.RootDir,
		})
	}
	return rows
}
