package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/electron-types/internal/check"
	"github.com/git-pkgs/electron-types/internal/logging"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON   bool
		top      int
		tarballs bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "List the Electron releases that still need a published package",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if cmd.Flags().Changed("top") {
				if top < 1 {
					return usage(fmt.Errorf("--top must be at least 1, got %d", top))
				}
				cfg.Catalog.TopMajors = top
			}

			published, pubID, err := ctx.published()
			if err != nil {
				return err
			}

			result, err := check.Run(cmd.Context(), check.Options{
				Releases:      ctx.feed(),
				Published:     published,
				PublishedName: pubID.Name,
				TopMajors:     cfg.Catalog.TopMajors,
				Logger:        logging.Component(ctx.logger, "check"),
			})
			if err != nil {
				return err
			}

			if tarballs {
				upstream, upID, err := ctx.upstream()
				if err != nil {
					return err
				}
				result.AttachTarballs(cmd.Context(), upstream, upID.Name)
			}

			if asJSON {
				return writeJSON(cmd, result)
			}
			return printCheck(cmd, result)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().IntVar(&top, "top", 0, "Number of stable major lines to consider (default from config)")
	cmd.Flags().BoolVar(&tarballs, "tarballs", false, "Look up the upstream tarball of every version to publish")
	return cmd
}

func printCheck(cmd *cobra.Command, result *check.Result) error {
	out := cmd.OutOrStdout()

	if isTerminal(out) {
		rows := make([][]string, 0, len(result.StableVersions)+len(result.PrereleaseVersions))
		pending := make(map[string]bool, len(result.VersionsToPublish))
		for _, v := range result.VersionsToPublish {
			pending[v] = true
		}
		add := func(channel string, versions []string) {
			for _, v := range versions {
				status := "published"
				if pending[v] {
					status = "to publish"
				}
				rows = append(rows, []string{v, channel, status, result.Tarballs[v]})
			}
		}
		add("stable", result.StableVersions)
		add("prerelease", result.PrereleaseVersions)
		fmt.Fprintln(out, renderTable([]string{"Version", "Channel", "Status", "Tarball"}, rows))
		return nil
	}

	fmt.Fprintf(out, "stable: %s\n", joinOrNone(result.StableVersions))
	fmt.Fprintf(out, "prerelease: %s\n", joinOrNone(result.PrereleaseVersions))
	fmt.Fprintf(out, "to publish: %s\n", joinOrNone(result.VersionsToPublish))
	for _, v := range result.VersionsToPublish {
		if url, ok := result.Tarballs[v]; ok {
			fmt.Fprintf(out, "  %s %s\n", v, url)
		}
	}
	return nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
