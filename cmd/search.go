package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the most similar chunks without generating an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return err
		}
		store, err := openStore(cfg, embedder)
		if err != nil {
			return err
		}

		ret := newRetriever(cfg, embedder, store, log)
		results, err := ret.Search(cmd.Context(), query, searchLimit)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matches. Have you ingested any documents?")
			return nil
		}

		for i, res := range results {
			loc := res.Source
			if res.Page > 0 {
				loc = fmt.Sprintf("%s p.%d", res.Source, res.Page)
			}
			fmt.Printf("%d. [%.2f] %s\n   %s\n", i+1, res.Similarity, loc, preview(res.Text, 160))
		}
		return nil
	},
}

func preview(s string, limit int) string {
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum results")
	rootCmd.AddCommand(searchCmd)
}
