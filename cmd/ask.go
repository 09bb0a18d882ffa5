package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/deepdoc/internal/answer"
	"github.com/ziadkadry99/deepdoc/internal/db"
	"github.com/ziadkadry99/deepdoc/internal/retriever"
)

var (
	askMarks   int
	askSources bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the ingested documents",
	Long: `Retrieves the most relevant chunks for the question and synthesizes an
answer with the configured LLM. The --marks flag controls answer depth:
2 marks gives a short definition, 3-5 marks a structured answer built
from more context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

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
		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return err
		}

		marks := retriever.ClampMarks(askMarks)
		ret := newRetriever(cfg, embedder, store, log)
		synth := newSynthesizer(cfg, provider, log)

		ctx := cmd.Context()
		results, err := ret.Retrieve(ctx, question, marks)
		if err != nil {
			return err
		}

		ans, err := synth.Synthesize(ctx, question, results, marks)
		if err != nil {
			if errors.Is(err, answer.ErrGenerationFailed) {
				return fmt.Errorf("could not generate an answer, please try again: %w", err)
			}
			return err
		}

		if registry, regErr := openRegistry(cfg); regErr == nil {
			_, _ = registry.RecordQA(ctx, db.QARecord{
				Question:   question,
				Marks:      marks,
				Answer:     ans.Text,
				Confidence: ans.Confidence,
				ChunksUsed: ans.ChunksUsed,
			})
			registry.Close()
		}

		if askJSON {
			return json.NewEncoder(os.Stdout).Encode(ans)
		}

		fmt.Println(ans.Text)
		fmt.Printf("\nConfidence: %.0f%%  (built from %d chunks)\n", ans.Confidence*100, ans.ChunksUsed)

		if askSources && len(ans.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range ans.Sources {
				loc := src.Source
				if src.Page > 0 {
					loc = fmt.Sprintf("%s p.%d", src.Source, src.Page)
				}
				fmt.Printf("  [%.2f] %s: %s\n", src.Similarity, loc, src.ContentPreview)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().IntVarP(&askMarks, "marks", "m", 3, "marks the question is worth (2-5)")
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "show source chunks")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output JSON")
	rootCmd.AddCommand(askCmd)
}
