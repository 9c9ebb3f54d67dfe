package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	indexWatch bool
	indexJSON  bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index stored threads into the vector store",
	Long: `Chunks every stored thread and embeds chunks the vector index has
not seen yet. With --watch, keeps running and re-indexes whenever
the dataset file changes.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "re-index on dataset changes until interrupted")
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := ingestService.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	if indexJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
	} else {
		cmd.Printf("Indexed %d threads in %s\n", report.Threads, report.Duration.Round(timeRound))
		cmd.Printf("  Chunks:   %d\n", report.Chunks)
		cmd.Printf("  Embedded: %d\n", report.Embedded)
		cmd.Printf("  Skipped:  %d\n", report.Skipped)
	}

	if !indexWatch {
		return nil
	}

	cmd.Println("Watching for dataset changes (Ctrl-C to stop)...")
	if err := ingestService.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
