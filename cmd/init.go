package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/deepdoc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize deepdoc configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure deepdoc and generates a deepdoc.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
