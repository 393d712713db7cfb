package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/electron-types/internal/manifest"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build [version]",
		Short: "Extract a release and stamp its version into package.json",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ctx.runExtract(cmd, specArg(args))
			if err != nil {
				return err
			}

			if _, err := os.Stat(res.ArtifactPath); err != nil {
				return fmt.Errorf("build output missing: %w", err)
			}

			if err := manifest.SetVersion(ctx.config.Output.Manifest, res.ResolvedVersion); err != nil {
				return fmt.Errorf("update manifest: %w", err)
			}
			ctx.logger.Info("manifest updated", "path", ctx.config.Output.Manifest, "version", res.ResolvedVersion)

			fmt.Fprintf(cmd.OutOrStdout(), "built electron-types %s\n", res.ResolvedVersion)
			return nil
		},
	}
}
