package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reabatch/internal/config"
	"reabatch/internal/rpp"
	"reabatch/internal/staging"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Extract and list FX chain presets",
	}

	presetsCmd.AddCommand(newPresetsExtractCommand(ctx))
	presetsCmd.AddCommand(newPresetsListCommand(ctx))
	presetsCmd.AddCommand(newPresetsCleanCommand(ctx))

	return presetsCmd
}

func newPresetsExtractCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract [project.rpp]",
		Short: "Write one preset per FX-bearing track of a project file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			project := cfg.Project.RPPPath
			if len(args) == 1 {
				if project, err = config.ExpandPath(args[0]); err != nil {
					return fmt.Errorf("resolve project path: %w", err)
				}
			}
			if strings.TrimSpace(project) == "" {
				return fmt.Errorf("no project file given and project.rpp_path is not set")
			}

			presets, err := rpp.NewExtractor(cfg.PresetDir(), ctx.logger()).Extract(cmd.Context(), project)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, orEmpty(presets))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Extracted %d presets from %s\n", len(presets), project)
			fmt.Fprintln(out, renderPresetTable(presets, "project"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPresetsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List extracted presets and the FX chain folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			extracted, err := rpp.ListFolder(cfg.PresetDir())
			if err != nil {
				return err
			}
			folder, err := rpp.ListFolder(cfg.Project.FXChainDir)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"extracted": orEmpty(extracted),
					"folder":    orEmpty(folder),
				})
			}
			out := cmd.OutOrStdout()
			if len(extracted)+len(folder) == 0 {
				fmt.Fprintln(out, "No presets found")
				return nil
			}
			rows := presetRows(extracted, "project")
			rows = append(rows, presetRows(folder, "folder")...)
			fmt.Fprintln(out, renderTable(presetColumns, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPresetsCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove extracted presets and stale job descriptors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := staging.ResetDir(cfg.PresetDir()); err != nil {
				return fmt.Errorf("clear preset dir: %w", err)
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.TempDir, olderThan, ctx.logger())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cleared %s\n", cfg.PresetDir())
			fmt.Fprintf(out, "Removed %d stale job files\n", len(result.Removed))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  failed: %s: %v\n", e.Path, e.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d stale job files could not be removed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", time.Hour, "Only remove job files older than this")
	return cmd
}

var presetColumns = []column{
	{title: "Name"},
	{title: "Source"},
	{title: "Path", maxWidth: pathColumnWidth},
}

func presetRows(presets []rpp.Preset, source string) [][]string {
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		rows = append(rows, []string{p.Name, source, p.Path})
	}
	return rows
}

func renderPresetTable(presets []rpp.Preset, source string) string {
	return renderTable(presetColumns, presetRows(presets, source))
}
