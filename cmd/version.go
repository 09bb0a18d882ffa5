package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/deepdoc/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of deepdoc",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("deepdoc %s (%s)\n", version.Version, version.Commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
