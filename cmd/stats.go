package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ingested document and chunk counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return err
		}
		store, err := openStore(cfg, embedder)
		if err != nil {
			return err
		}
		registry, err := openRegistry(cfg)
		if err != nil {
			return err
		}
		defer registry.Close()

		docs, err := registry.ListDocuments(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Documents: %d\n", len(docs))
		fmt.Printf("Chunks:    %d\n", store.Count())
		if len(docs) > 0 {
			fmt.Println()
			for _, doc := range docs {
				fmt.Printf("  %-40s %3d pages %5d chunks  %s\n",
					doc.Source, doc.Pages, doc.Chunks, doc.IngestedAt.Format("2006-01-02 15:04"))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
