package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trypromptly/promptly-cli/internal/changelog"
)

var (
	showChanges  bool
	changesSince string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, versionTemplate())
		if !showChanges {
			return
		}
		entries := changelog.Since(changesSince, changelog.Parse(changelog.Content))
		if len(entries) == 0 {
			fmt.Fprintln(out, "\nNo changes.")
			return
		}
		fmt.Fprint(out, "\n"+changelog.Format(entries))
	},
}

func init() {
	versionCmd.Flags().BoolVar(&showChanges, "changes", false, "Also print the release notes")
	versionCmd.Flags().StringVar(&changesSince, "since", "", "Only release notes newer than this version")
	rootCmd.AddCommand(versionCmd)
}
