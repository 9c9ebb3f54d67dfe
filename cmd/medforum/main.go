package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	configfile "github.com/custodia-labs/medforum-cli/internal/adapters/driven/config/file"
	openaiembed "github.com/custodia-labs/medforum-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/medforum-cli/internal/adapters/driven/forum/agnos"
	openaillm "github.com/custodia-labs/medforum-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/medforum-cli/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/medforum-cli/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/medforum-cli/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/medforum-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/core/services"
	"github.com/custodia-labs/medforum-cli/internal/logger"
)

func main() {
	// .env carries the API key in development; absence is fine.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	settings := loadSettings(configStore)
	settings.APIKey = os.Getenv("OPENAI_API_KEY")
	if err := settings.Validate(); err != nil {
		return err
	}

	threadStore, err := jsonl.NewThreadStore(settings.DataPath)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}

	entryStore, err := sqlite.NewStore(settings.IndexPath)
	if err != nil {
		return fmt.Errorf("open index store: %w", err)
	}
	index, err := vectormem.NewIndex(vectormem.WithPersistence(entryStore))
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	defer index.Close()

	forum, err := agnos.NewClient(agnos.Config{
		BaseURL:    settings.BaseURL,
		FetchDelay: settings.FetchDelay,
		Retries:    settings.FetchRetries,
	})
	if err != nil {
		return fmt.Errorf("create forum client: %w", err)
	}
	defer forum.Close()

	scrapeService := services.NewScrapeService(forum, threadStore, settings)
	statsService := services.NewStatsService(threadStore)

	// Embedding-backed services need the API key; without one the
	// scrape and stats commands still work.
	var ingestService *services.IngestService
	var answerService *services.AnswerService
	if settings.APIKey != "" {
		embedding, llm, err := buildProviders(settings)
		if err != nil {
			return err
		}
		defer embedding.Close()
		defer llm.Close()

		if index.Dimensions() != 0 && index.Dimensions() != embedding.Dimensions() {
			return fmt.Errorf("%w: index built with %d-dimension embeddings, model %s produces %d",
				domain.ErrConfiguration, index.Dimensions(), embedding.ModelName(), embedding.Dimensions())
		}

		ingestService = services.NewIngestService(threadStore, index, embedding, settings)
		answerService = services.NewAnswerService(index, embedding, llm, settings)
	} else {
		logger.Warn("OPENAI_API_KEY not set: ask, index and serve are unavailable")
	}

	if ingestService != nil {
		cli.SetServices(scrapeService, ingestService, answerService, statsService)
	} else {
		cli.SetServices(scrapeService, nil, nil, statsService)
	}
	return cli.Execute()
}

func buildProviders(settings domain.Settings) (*openaiembed.EmbeddingService, *openaillm.LLMService, error) {
	embedding, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		Model:      settings.EmbeddingModel,
		Dimensions: settings.EmbeddingDimensions,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create embedding service: %w", err)
	}

	llm, err := openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey: settings.APIKey,
		Model:  settings.LLMModel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create llm service: %w", err)
	}
	return embedding, llm, nil
}

// loadSettings overlays the config file onto the defaults. A key that
// is absent keeps its default.
func loadSettings(cfg driven.ConfigStore) domain.Settings {
	settings := domain.DefaultSettings()

	overlayString(cfg, "data.path", &settings.DataPath)
	overlayString(cfg, "data.index_dir", &settings.IndexPath)
	overlayString(cfg, "scraper.base_url", &settings.BaseURL)
	overlayInt(cfg, "scraper.max_threads", &settings.MaxThreads)
	overlayInt(cfg, "scraper.concurrency", &settings.FetchConcurrency)
	overlayInt(cfg, "scraper.retries", &settings.FetchRetries)
	overlayMillis(cfg, "scraper.fetch_delay_ms", &settings.FetchDelay)
	overlayInt(cfg, "chunker.size", &settings.ChunkSize)
	overlayInt(cfg, "chunker.overlap", &settings.ChunkOverlap)
	overlayInt(cfg, "answer.top_k", &settings.TopK)
	overlaySeconds(cfg, "answer.timeout_seconds", &settings.RequestTimeout)
	overlayInt(cfg, "answer.max_tokens", &settings.MaxTokens)
	overlayFloat(cfg, "answer.temperature", &settings.Temperature)
	overlayInt(cfg, "answer.prompt_budget", &settings.PromptBudget)
	overlayString(cfg, "openai.embedding_model", &settings.EmbeddingModel)
	overlayInt(cfg, "openai.embedding_dimensions", &settings.EmbeddingDimensions)
	overlayString(cfg, "openai.llm_model", &settings.LLMModel)

	return settings
}

func overlayString(cfg driven.ConfigStore, key string, target *string) {
	if _, ok := cfg.Get(key); ok {
		*target = cfg.GetString(key)
	}
}

func overlayInt(cfg driven.ConfigStore, key string, target *int) {
	if _, ok := cfg.Get(key); ok {
		*target = cfg.GetInt(key)
	}
}

func overlayFloat(cfg driven.ConfigStore, key string, target *float64) {
	if _, ok := cfg.Get(key); ok {
		*target = cfg.GetFloat(key)
	}
}

func overlayMillis(cfg driven.ConfigStore, key string, target *time.Duration) {
	if _, ok := cfg.Get(key); ok {
		*target = time.Duration(cfg.GetInt(key)) * time.Millisecond
	}
}

func overlaySeconds(cfg driven.ConfigStore, key string, target *time.Duration) {
	if _, ok := cfg.Get(key); ok {
		*target = time.Duration(cfg.GetInt(key)) * time.Second
	}
}
