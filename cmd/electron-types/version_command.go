package main

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

func newVersionCommand(version, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show build version information",
		Args:        exactArgs(0),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), formatVersion(version, buildDate))
		},
	}
}

func formatVersion(version, buildDate string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = strings.TrimPrefix(info.Main.Version, "v")
		}
	}
	if version == "" {
		version = "dev"
	}

	if strings.TrimSpace(buildDate) != "" {
		return fmt.Sprintf("electron-types version %s (%s)\n", version, strings.TrimSpace(buildDate))
	}
	return fmt.Sprintf("electron-types version %s\n", version)
}
