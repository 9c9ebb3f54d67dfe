package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driving"
	"github.com/custodia-labs/medforum-cli/internal/logger"
)

// Ensure ScrapeService implements the interface.
var _ driving.ScrapeService = (*ScrapeService)(nil)

// ScrapeService orchestrates scrape runs: listing discovery, thread
// fetching and content-store writes.
type ScrapeService struct {
	forum    driven.ForumClient
	store    driven.ThreadStore
	settings domain.Settings

	// Run state; at most one run is in flight.
	mu     sync.Mutex
	active *driving.ScrapeStatus
}

// NewScrapeService creates a new scrape service.
func NewScrapeService(forum driven.ForumClient, store driven.ThreadStore, settings domain.Settings) *ScrapeService {
	return &ScrapeService{
		forum:    forum,
		store:    store,
		settings: settings,
	}
}

// Run executes one scrape run in the given mode.
func (s *ScrapeService) Run(ctx context.Context, mode domain.ScrapeMode) (*domain.ScrapeRunReport, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown scrape mode %q", domain.ErrInvalidInput, mode)
	}

	runID := uuid.New().String()

	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return nil, domain.ErrScrapeInProgress
	}
	s.active = &driving.ScrapeStatus{RunID: runID, Mode: mode}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
	}()

	logger.Section("Scrape Run")
	logger.Info("Starting %s scrape run %s", mode, runID)
	start := time.Now()

	listings, err := s.forum.DiscoverThreads(ctx, s.settings.MaxThreads)
	if err != nil {
		return nil, fmt.Errorf("discover threads: %w", err)
	}
	logger.Debug("Discovered %d listings", len(listings))

	if mode == domain.ScrapeModeUpdate {
		listings, err = s.filterKnown(ctx, listings)
		if err != nil {
			return nil, err
		}
		logger.Debug("%d listings remain after filtering stored threads", len(listings))
	}

	report := &domain.ScrapeRunReport{RunID: runID, Mode: mode}
	if err := s.fetchAll(ctx, listings, report); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	logger.Info("Scrape run %s done: %d fetched, %d updated, %d skipped in %s",
		runID, report.Fetched, report.Updated, report.Skipped, report.Duration)
	return report, nil
}

// Status returns the in-flight run status, or nil when idle.
func (s *ScrapeService) Status(_ context.Context) *driving.ScrapeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	status := *s.active
	return &status
}

// filterKnown drops listings whose thread id is already stored.
// Update mode never re-fetches an existing thread, so new comments on
// old threads are missed until the next full run.
func (s *ScrapeService) filterKnown(ctx context.Context, listings []driven.ThreadListing) ([]driven.ThreadListing, error) {
	known, err := s.store.AllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored ids: %w", err)
	}

	fresh := make([]driven.ThreadListing, 0, len(listings))
	for _, listing := range listings {
		if _, ok := known[listing.ThreadID]; ok {
			continue
		}
		fresh = append(fresh, listing)
	}
	return fresh, nil
}

// fetchAll fans the listings out over a bounded worker pool. A thread
// that fails after retries is skipped and logged, never fatal; store
// writes are serialised because the JSONL store has a single writer.
func (s *ScrapeService) fetchAll(ctx context.Context, listings []driven.ThreadListing, report *domain.ScrapeRunReport) error {
	workers := s.settings.FetchConcurrency
	if workers <= 0 {
		workers = 1
	}
	if workers > len(listings) {
		workers = len(listings)
	}
	if workers == 0 {
		return ctx.Err()
	}

	jobs := make(chan driven.ThreadListing)
	var storeMu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for listing := range jobs {
				s.fetchOne(ctx, listing, &storeMu, report)
			}
		}()
	}

	for _, listing := range listings {
		select {
		case jobs <- listing:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()
	return ctx.Err()
}

func (s *ScrapeService) fetchOne(ctx context.Context, listing driven.ThreadListing, storeMu *sync.Mutex, report *domain.ScrapeRunReport) {
	record, err := s.forum.FetchThread(ctx, listing)
	if err != nil {
		logger.Warn("Skipping thread %s: %v", listing.ThreadID, err)
		s.recordSkip(storeMu, report)
		return
	}

	storeMu.Lock()
	defer storeMu.Unlock()

	existed, err := s.store.Contains(ctx, record.ThreadID)
	if err != nil {
		logger.Warn("Skipping thread %s: %v", record.ThreadID, err)
		report.Skipped++
		s.bumpStatus(0, 1)
		return
	}
	changed, err := s.store.Upsert(ctx, *record)
	if err != nil {
		logger.Warn("Skipping thread %s: %v", record.ThreadID, err)
		report.Skipped++
		s.bumpStatus(0, 1)
		return
	}

	report.Fetched++
	if changed && existed {
		report.Updated++
	}
	s.bumpStatus(1, 0)
}

func (s *ScrapeService) recordSkip(storeMu *sync.Mutex, report *domain.ScrapeRunReport) {
	storeMu.Lock()
	report.Skipped++
	storeMu.Unlock()
	s.bumpStatus(0, 1)
}

func (s *ScrapeService) bumpStatus(fetched, skipped int) {
	s.mu.Lock()
	if s.active != nil {
		s.active.Fetched += fetched
		s.active.Skipped += skipped
	}
	s.mu.Unlock()
}
