package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driving"
	"github.com/custodia-labs/medforum-cli/internal/lexicon"
	"github.com/custodia-labs/medforum-cli/internal/logger"
	"github.com/custodia-labs/medforum-cli/internal/retry"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// excerptRunes bounds the reference snippet length.
const excerptRunes = 200

// AnswerService answers free-text health questions grounded on
// retrieved forum passages.
type AnswerService struct {
	index     driven.VectorIndex
	embedding driven.EmbeddingService
	llm       driven.LLMService
	policy    retry.Policy
	settings  domain.Settings
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	index driven.VectorIndex,
	embedding driven.EmbeddingService,
	llm driven.LLMService,
	settings domain.Settings,
) *AnswerService {
	return &AnswerService{
		index:     index,
		embedding: embedding,
		llm:       llm,
		policy:    retry.NewPolicy(settings.FetchRetries),
		settings:  settings,
	}
}

// Answer embeds the query, retrieves the k most similar passages and
// generates a cited answer. The whole call is bounded by the request
// timeout; an exceeded deadline surfaces as domain.ErrTimeout.
func (s *AnswerService) Answer(ctx context.Context, query string, k int) (*domain.AnswerResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = s.settings.TopK
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.RequestTimeout)
	defer cancel()

	queryID := uuid.New().String()
	lang := lexicon.DetectLanguage(query)
	lex := lexicon.ForLanguage(lang)

	logger.Section("Answer")
	logger.Debug("Query %s (%s): %q, k=%d", queryID, lang, query, k)

	vector, err := s.embedWithRetry(ctx, query)
	if err != nil {
		return nil, mapTimeout(fmt.Errorf("embed query: %w", err))
	}

	hits, err := s.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Retrieved %d passages", len(hits))

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Entry.Text
	}

	prompt := buildPrompt(lang, query, hits, s.settings.PromptBudget)
	answer, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, mapTimeout(fmt.Errorf("generate answer: %w", err))
	}

	result := &domain.AnswerResult{
		QueryID:    queryID,
		Answer:     answer,
		References: buildReferences(hits),
		Symptoms:   lex.ExtractSymptoms(texts),
		Conditions: lex.CountConditions(texts),
		Confidence: confidence(hits),
		Language:   lang,
	}
	logger.Info("Answered query %s with %d references, confidence %.2f",
		queryID, len(result.References), result.Confidence)
	return result, nil
}

// buildReferences maps hits to citation entries. Hits arrive in
// descending similarity order, which the reference list preserves.
func buildReferences(hits []driven.VectorHit) []domain.Reference {
	refs := make([]domain.Reference, len(hits))
	for i, hit := range hits {
		refs[i] = domain.Reference{
			ThreadID:  hit.Entry.Metadata.ThreadID,
			Title:     hit.Entry.Metadata.Title,
			URL:       hit.Entry.Metadata.URL,
			Role:      hit.Entry.Metadata.Role,
			Excerpt:   excerpt(hit.Entry.Text),
			Relevance: hit.Similarity,
		}
	}
	return refs
}

// confidence estimates answer grounding from the retrieval outcome.
// The top similarity dominates; the passage count adds up to a third.
// Zero passages clamp to the floor.
func confidence(hits []driven.VectorHit) float64 {
	if len(hits) == 0 {
		return 0.1
	}
	n := len(hits)
	if n > 5 {
		n = 5
	}
	top := hits[0].Similarity
	if top < 0 {
		top = 0
	}
	c := 0.1 + 0.6*top + 0.3*float64(n)/5
	if c > 1 {
		c = 1
	}
	if c < 0.1 {
		c = 0.1
	}
	return c
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes]) + "…"
}

func (s *AnswerService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var embedErr error
		vector, embedErr = s.embedding.Embed(ctx, text)
		if embedErr == nil {
			return nil
		}
		if errorsIsAny(embedErr, domain.ErrConfiguration, domain.ErrInvalidInput) {
			return retry.Permanent(embedErr)
		}
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func (s *AnswerService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	opts := driven.GenerateOptions{
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	}
	var answer string
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var genErr error
		answer, genErr = s.llm.Generate(ctx, prompt, opts)
		if genErr == nil {
			return nil
		}
		if errorsIsAny(genErr, domain.ErrConfiguration, domain.ErrInvalidInput) {
			return retry.Permanent(genErr)
		}
		return genErr
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

// mapTimeout translates a deadline overrun into the domain error the
// callers and the HTTP layer key on.
func mapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}

// errorsIsAny reports whether err matches any of the targets.
func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
