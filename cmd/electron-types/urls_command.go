package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/electron-types/internal/core"
	"github.com/git-pkgs/electron-types/internal/version"
)

func newURLsCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON  bool
		resolve bool
	)

	cmd := &cobra.Command{
		Use:   "urls <version|purl>",
		Short: "Print the registry, tarball, docs and purl URLs of an upstream release",
		Long: `Print the URLs of an upstream release.

The argument is either a version of the configured upstream package or a
versioned package URL such as pkg:npm/electron@33.2.0. A repository_url
qualifier on the package URL selects the registry to query.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := strings.TrimSpace(args[0])

			var (
				reg  core.Registry
				name string
				ver  string
			)
			if strings.HasPrefix(arg, "pkg:") {
				r, n, v, err := core.NewFromPURL(arg, ctx.registryClient())
				if err != nil {
					return usage(err)
				}
				if v == "" {
					return usage(fmt.Errorf("package URL has no version: %s", arg))
				}
				reg, name, ver = r, n, v
			} else {
				upstream, id, err := ctx.upstream()
				if err != nil {
					return err
				}
				reg, name, ver = upstream, id.Name, arg
			}
			if _, err := version.Parse(ver); err != nil {
				return usage(err)
			}

			urls := core.BuildURLs(reg.URLs(), name, ver)

			if resolve {
				var (
					v   *core.Version
					err error
				)
				if strings.HasPrefix(arg, "pkg:") {
					v, err = core.FetchVersionFromPURL(cmd.Context(), arg, ctx.registryClient())
				} else {
					v, err = reg.FetchVersion(cmd.Context(), name, ver)
				}
				if err != nil {
					return err
				}
				urls["tarball"] = v.Tarball
				if v.Integrity != "" {
					urls["integrity"] = v.Integrity
				}
			}

			if asJSON {
				return writeJSON(cmd, urls)
			}

			keys := make([]string, 0, len(urls))
			for k := range urls {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", k, urls[k])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the URLs as JSON")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Fetch the version document and print its tarball and integrity")
	return cmd
}
