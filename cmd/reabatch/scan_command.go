package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reabatch/internal/config"
	"reabatch/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "List the audio files a run would consider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := resolveRoot(cfg, args)
			if err != nil {
				return err
			}
			exclude := scanner.Exclusions{Name: cfg.Audio.OutputDirName, Dirs: []string{cfg.Audio.OutputDir}}
			files, err := scanner.Scan(cmd.Context(), root, exclude, ctx.logger())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{"root": root, "files": orEmpty(files)})
			}
			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintln(out, f)
			}
			fmt.Fprintf(out, "%d audio files under %s\n", len(files), root)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// resolveRoot prefers a positional root over audio.root_dir.
func resolveRoot(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		root, err := config.ExpandPath(args[0])
		if err != nil {
			return "", fmt.Errorf("resolve root: %w", err)
		}
		return root, nil
	}
	if cfg.Audio.RootDir == "" {
		return "", fmt.Errorf("no root given and audio.root_dir is not set")
	}
	return cfg.Audio.RootDir, nil
}
