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

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

var (
	scrapeMode string
	scrapeJSON bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape forum threads into the local dataset",
	Long: `Walks the forum listing, fetches thread pages and stores them in
the JSONL dataset. Full mode re-fetches every discovered thread;
update mode fetches only threads not yet stored.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeMode, "mode", "m", "update", "scrape mode: full or update")
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "output the run report as JSON")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	if scrapeService == nil {
		return errors.New("scrape service not configured")
	}

	mode := domain.ScrapeMode(scrapeMode)
	if !mode.IsValid() {
		return fmt.Errorf("unknown scrape mode %q (want full or update)", scrapeMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !scrapeJSON {
		cmd.Printf("Scraping in %s mode...\n", mode)
	}

	report, err := scrapeService.Run(ctx, mode)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if scrapeJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Run %s finished in %s\n", report.RunID, report.Duration.Round(timeRound))
	cmd.Printf("  Fetched: %d\n", report.Fetched)
	cmd.Printf("  Updated: %d\n", report.Updated)
	cmd.Printf("  Skipped: %d\n", report.Skipped)
	return nil
}
