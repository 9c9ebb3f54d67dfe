package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medforum-cli/internal/adapters/driving/httpapi"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP query API",
	Long: `Starts the HTTP API used by the dashboard: answer queries, corpus
statistics and scrape triggering. With --watch, the dataset file is
watched and re-indexed on change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "re-index on dataset changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if answerService == nil || statsService == nil || scrapeService == nil {
		return errors.New("services not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := httpapi.NewServer(httpapi.Config{Addr: serveAddr}, answerService, statsService, scrapeService)

	if serveWatch {
		if ingestService == nil {
			return errors.New("ingest service not configured")
		}
		go func() {
			if err := ingestService.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				cmd.PrintErrf("watch stopped: %v\n", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	cmd.Printf("Serving on %s (Ctrl-C to stop)\n", serveAddr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}
	return nil
}
