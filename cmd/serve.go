package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/deepdoc/internal/ingest"
	"github.com/ziadkadry99/deepdoc/internal/server"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts an HTTP server exposing the question-answering pipeline:
upload PDFs, ask questions, search chunks, and inspect the document
registry. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort > 0 {
			cfg.Port = servePort
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
		registry, err := openRegistry(cfg)
		if err != nil {
			return err
		}
		defer registry.Close()

		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return err
		}
		answerCache, err := newCache(cfg, log)
		if err != nil {
			return err
		}
		defer answerCache.Close()

		ch, err := newChunker(cfg)
		if err != nil {
			return err
		}

		srv := server.New(
			server.Config{Port: cfg.Port, AllowAll: serveAllowAll},
			newRetriever(cfg, embedder, store, log),
			newSynthesizer(cfg, provider, log),
			ingest.New(ch, store, registry, log),
			registry,
			store,
			answerCache,
			log,
		)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			log.Info("shutting down", zap.String("signal", sig.String()))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
