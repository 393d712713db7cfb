package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/electron-types/internal/extract"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the mirrored declaration file for size and required declarations",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			path := cfg.ArtifactFile()

			if err := extract.Verify(path, cfg.Output.MinArtifactBytes, cfg.Output.RequiredDeclarations); err != nil {
				return err
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			version := "unknown"
			if meta, err := extract.ReadMetadata(filepath.Join(cfg.Output.Dir, cfg.Output.MetadataName)); err == nil {
				version = meta.ElectronVersion
			} else {
				ctx.logger.Warn("metadata unreadable", "error", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s ok: electron %s, %d bytes, %d declarations checked\n",
				path, version, info.Size(), len(cfg.Output.RequiredDeclarations))
			return nil
		},
	}
}
