package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driving"
	"github.com/custodia-labs/medforum-cli/internal/logger"
	"github.com/custodia-labs/medforum-cli/internal/postprocessors/chunker"
	"github.com/custodia-labs/medforum-cli/internal/retry"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// watchDebounce coalesces bursts of dataset-file events into one
// ingest pass. Editors and the scraper both write in several syscalls.
const watchDebounce = 500 * time.Millisecond

// IngestService chunks stored threads and keeps the vector index in
// step with the content store.
type IngestService struct {
	store     driven.ThreadStore
	index     driven.VectorIndex
	embedding driven.EmbeddingService
	processor *chunker.Processor
	policy    retry.Policy
	settings  domain.Settings
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store driven.ThreadStore,
	index driven.VectorIndex,
	embedding driven.EmbeddingService,
	settings domain.Settings,
) *IngestService {
	return &IngestService{
		store:     store,
		index:     index,
		embedding: embedding,
		processor: chunker.New(
			chunker.WithChunkSize(settings.ChunkSize),
			chunker.WithOverlap(settings.ChunkOverlap),
		),
		policy:   retry.NewPolicy(settings.FetchRetries),
		settings: settings,
	}
}

// Ingest chunks every stored thread and embeds chunks the index has
// not seen. Repeated calls after a no-op scrape embed nothing.
func (s *IngestService) Ingest(ctx context.Context) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	start := time.Now()

	records, malformed, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load threads: %w", err)
	}
	if malformed > 0 {
		logger.Warn("Skipped %d malformed stored records", malformed)
	}

	var chunks []domain.Chunk
	meta := make(map[string]domain.EntryMetadata)
	for i := range records {
		record := &records[i]
		for _, chunk := range s.processor.Chunk(record) {
			chunks = append(chunks, chunk)
			meta[chunk.ChunkID] = domain.EntryMetadata{
				ThreadID: record.ThreadID,
				Role:     chunk.Role,
				Title:    record.Title,
				URL:      record.URL,
			}
		}
	}
	logger.Debug("Chunked %d threads into %d chunks", len(records), len(chunks))

	embedded, err := s.index.UpsertBatch(ctx, chunks, meta, s.embedWithRetry)
	if err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	report := &domain.IngestReport{
		Threads:  len(records),
		Chunks:   len(chunks),
		Embedded: embedded,
		Skipped:  len(chunks) - embedded,
		Duration: time.Since(start),
	}
	logger.Info("Ingest done: %d threads, %d chunks, %d embedded, %d skipped in %s",
		report.Threads, report.Chunks, report.Embedded, report.Skipped, report.Duration)
	return report, nil
}

// Watch re-ingests whenever the dataset file changes, until the
// context is cancelled.
func (s *IngestService) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory: atomic rewrites replace the file,
	// and a watch on the old inode would go stale.
	dataPath := filepath.Clean(s.settings.DataPath)
	if err := watcher.Add(filepath.Dir(dataPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(dataPath), err)
	}
	logger.Info("Watching %s for changes", dataPath)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != dataPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Dataset event: %s", event)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
			pending = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-pending:
			pending = nil
			if _, err := s.Ingest(ctx); err != nil {
				logger.Warn("Ingest after change failed: %v", err)
			}
		}
	}
}

// embedWithRetry wraps the embedding call in the bounded retry policy.
// Rate limits back off; configuration errors fail immediately.
func (s *IngestService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var embedErr error
		vector, embedErr = s.embedding.Embed(ctx, text)
		if embedErr == nil {
			return nil
		}
		if isPermanentEmbedError(embedErr) {
			return retry.Permanent(embedErr)
		}
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func isPermanentEmbedError(err error) bool {
	return errorsIsAny(err, domain.ErrConfiguration, domain.ErrInvalidInput)
}
