package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medforum-cli/internal/core/ports/driving"
	"github.com/custodia-labs/medforum-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// timeRound keeps printed durations readable.
const timeRound = 10 * time.Millisecond

// Services wired in by main before Execute runs. A command whose
// service is nil fails with a clear message instead of panicking.
var (
	scrapeService driving.ScrapeService
	ingestService driving.IngestService
	answerService driving.AnswerService
	statsService  driving.StatsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "medforum",
	Short: "Health forum scraper and question answering",
	Long: `medforum scrapes the Agnos Health community forum, indexes the
threads, and answers free-text health questions grounded on real
patient cases and doctor replies.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices wires the core services into the command tree.
func SetServices(
	scrape driving.ScrapeService,
	ingest driving.IngestService,
	answer driving.AnswerService,
	stats driving.StatsService,
) {
	scrapeService = scrape
	ingestService = ingest
	answerService = answer
	statsService = stats
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
