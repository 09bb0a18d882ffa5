package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/deepdoc/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-glob>...",
	Short: "Ingest PDF files into the vector database",
	Long: `Extracts text from the given PDF files, splits it into overlapping
chunks, embeds them, and stores them for retrieval. Glob patterns with
** are supported. Re-ingesting a file replaces its previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		paths, err := expandGlobs(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no files matched %s", strings.Join(args, ", "))
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

		ch, err := newChunker(cfg)
		if err != nil {
			return err
		}
		svc := ingest.New(ch, store, registry, log)

		bar := progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Ingesting"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		var failed int
		for _, path := range paths {
			source := filepath.Base(path)
			result, err := svc.IngestFile(cmd.Context(), path, source)
			bar.Add(1)
			if err != nil {
				failed++
				fmt.Printf("  %s: %v\n", source, err)
				continue
			}
			fmt.Printf("  %s: %d pages, %d chunks\n", result.Source, result.Pages, result.Chunks)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to ingest", failed, len(paths))
		}
		fmt.Printf("Ingested %d files. Total chunks in store: %d\n", len(paths), store.Count())
		return nil
	},
}

// expandGlobs resolves each argument as a doublestar glob, passing plain
// paths through unchanged. Results are deduplicated and sorted.
func expandGlobs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if matches == nil {
			// Not a pattern; treat it as a literal path and let ingestion
			// report a missing file.
			matches = []string{arg}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
