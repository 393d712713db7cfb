package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/electron-types/fetch"
	"github.com/git-pkgs/electron-types/internal/extract"
	"github.com/git-pkgs/electron-types/internal/logging"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract [version]",
		Short: "Extract electron.d.ts for a release (default latest)",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ctx.runExtract(cmd, specArg(args))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted electron %s\n  %s\n  %s\n", res.ResolvedVersion, res.ArtifactPath, res.MetadataPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func specArg(args []string) string {
	if len(args) == 0 {
		return "latest"
	}
	return args[0]
}

// runExtract cleans stale workspaces and runs the pipeline under the output lock.
func (c *commandContext) runExtract(cmd *cobra.Command, spec string) (*extract.Result, error) {
	cfg := c.config
	logger := logging.Component(c.logger, "extract")

	if stale := cfg.StaleAfter(); stale > 0 {
		cleaned := extract.CleanStale(cmd.Context(), cfg.Workspace.BaseDir, stale, logger)
		for _, err := range cleaned.Errors {
			logger.Warn("stale workspace cleanup failed", "error", err)
		}
	}

	upstream, id, err := c.upstream()
	if err != nil {
		return nil, err
	}

	fetcher := c.fetcher()
	pipeline, err := extract.New(extract.Options{
		Registry:         upstream,
		Fetcher:          fetcher,
		Package:          id.Name,
		ArtifactPath:     cfg.Output.ArtifactPath,
		OutputDir:        cfg.Output.Dir,
		ArtifactName:     cfg.Output.ArtifactName,
		MetadataName:     cfg.Output.MetadataName,
		MinArtifactBytes: cfg.Output.MinArtifactBytes,
		WorkspaceBase:    cfg.Workspace.BaseDir,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}

	var res *extract.Result
	err = c.withOutputLock(cmd.Context(), func() error {
		var runErr error
		res, runErr = pipeline.Run(cmd.Context(), spec)
		return runErr
	})
	if err != nil {
		reportBreakers(logger, fetcher.States())
	}
	return res, err
}

// reportBreakers logs every download host that saw consecutive failures.
func reportBreakers(logger *slog.Logger, states []fetch.HostState) {
	for _, s := range states {
		if s.Failures == 0 && s.State != "open" {
			continue
		}
		logger.Warn("download host unhealthy", "host", s.Host, "circuit", s.State, "consecutive_failures", s.Failures)
	}
}
