package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driving"
)

// cliMockScrape implements driving.ScrapeService.
type cliMockScrape struct {
	report  *domain.ScrapeRunReport
	err     error
	gotMode domain.ScrapeMode
}

func (m *cliMockScrape) Run(_ context.Context, mode domain.ScrapeMode) (*domain.ScrapeRunReport, error) {
	m.gotMode = mode
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *cliMockScrape) Status(_ context.Context) *driving.ScrapeStatus { return nil }

// cliMockIngest implements driving.IngestService.
type cliMockIngest struct {
	report *domain.IngestReport
	err    error
}

func (m *cliMockIngest) Ingest(_ context.Context) (*domain.IngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *cliMockIngest) Watch(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// cliMockAnswer implements driving.AnswerService.
type cliMockAnswer struct {
	result *domain.AnswerResult
	err    error
	gotK   int
}

func (m *cliMockAnswer) Answer(_ context.Context, _ string, k int) (*domain.AnswerResult, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// cliMockStats implements driving.StatsService.
type cliMockStats struct {
	stats *domain.CorpusStats
	err   error
}

func (m *cliMockStats) Snapshot(_ context.Context) (*domain.CorpusStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

// setupTestServices wires stub services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	return setupServices(
		&cliMockScrape{report: &domain.ScrapeRunReport{
			RunID: "run-1", Mode: domain.ScrapeModeUpdate,
			Fetched: 4, Updated: 1, Skipped: 1, Duration: 1200 * time.Millisecond,
		}},
		&cliMockIngest{report: &domain.IngestReport{Threads: 4, Chunks: 9, Embedded: 9}},
		&cliMockAnswer{result: &domain.AnswerResult{
			QueryID: "q-1", Answer: "rest and hydrate",
			Language: domain.LanguageEnglish, Confidence: 0.7,
			References: []domain.Reference{{
				ThreadID: "t1", Title: "migraine", Role: domain.RoleDoctor,
				URL: "https://www.agnoshealth.com/forums/t1", Relevance: 0.91,
			}},
			Symptoms:   []string{"headache"},
			Conditions: []domain.Condition{{Label: "migraine", Score: 2}},
		}},
		&cliMockStats{stats: &domain.CorpusStats{
			TotalThreads: 4, ThreadsWithDoctorReply: 2,
			TagCounts:    map[string]int{"ปวดหัว": 3, domain.UnknownBucket: 1},
			GenderCounts: map[string]int{"female": 3, "male": 1},
			Ages:         domain.AgeSummary{Min: 19, Max: 44, Mean: 30.5, Count: 4},
			TopLiked:     []domain.LikedThread{{ThreadID: "t1", Title: "migraine", Likes: 12}},
		}},
	)
}

func setupServices(
	scrape driving.ScrapeService,
	ingest driving.IngestService,
	answer driving.AnswerService,
	stats driving.StatsService,
) func() {
	prevScrape, prevIngest := scrapeService, ingestService
	prevAnswer, prevStats := answerService, statsService
	SetServices(scrape, ingest, answer, stats)
	return func() {
		SetServices(prevScrape, prevIngest, prevAnswer, prevStats)
	}
}
