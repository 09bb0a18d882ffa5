package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "deepdoc",
	Short: "Ask questions about your PDF study material",
	Long: `Deepdoc ingests PDF documents into a local vector database and answers
questions about their contents using semantic retrieval plus an LLM.
Answers cite the source pages they were built from and carry a
confidence score.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "deepdoc.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
