package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	cfgfile "github.com/sitechat-io/sitechat-cli/internal/adapters/driven/config/file"
	"github.com/sitechat-io/sitechat-cli/internal/adapters/driven/crawl/httpapi"
	embeddingapi "github.com/sitechat-io/sitechat-cli/internal/adapters/driven/embedding/openai"
	completionapi "github.com/sitechat-io/sitechat-cli/internal/adapters/driven/llm/openai"
	"github.com/sitechat-io/sitechat-cli/internal/adapters/driven/lock/flock"
	promptfile "github.com/sitechat-io/sitechat-cli/internal/adapters/driven/prompts/file"
	storefile "github.com/sitechat-io/sitechat-cli/internal/adapters/driven/storage/file"
	"github.com/sitechat-io/sitechat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/sitechat-io/sitechat-cli/internal/chunker"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
	"github.com/sitechat-io/sitechat-cli/internal/core/services"
	"github.com/sitechat-io/sitechat-cli/internal/extractors"
	"github.com/sitechat-io/sitechat-cli/internal/logger"
)

// Environment variables carrying secrets. API keys never live in the
// config file.
const (
	envOpenAIKey = "OPENAI_API_KEY"
	envCrawlKey  = "SITECHAT_CRAWL_API_KEY"
)

// Knowledge store backend names accepted in config.toml.
const (
	backendFile   = "file"
	backendSQLite = "sqlite"
)

// Build wires adapters and services from the TOML settings and the
// environment. An empty dataDir selects ~/.sitechat. Missing API keys
// degrade the result instead of failing it: the affected services stay
// nil and commands print setup guidance. The returned cleanup releases
// provider clients and storage handles.
func Build(dataDir string) (*Services, func(), error) {
	settingsStore, err := cfgfile.NewSettingsStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	settings := settingsStore.Settings()

	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("Cleanup failed: %v", err)
			}
		}
	}

	// The index records which model produced its embeddings, so the
	// store needs the resolved name even before the first API call.
	embeddingModel := settings.Embedding.Model
	if embeddingModel == "" {
		embeddingModel = embeddingapi.DefaultModel
	}

	svcs := &Services{
		Status: StatusInfo{EmbeddingModel: embeddingModel},
	}

	openAIKey := os.Getenv(envOpenAIKey)
	if openAIKey != "" {
		embedder, err := embeddingapi.NewEmbeddingService(embeddingapi.Config{
			APIKey:  openAIKey,
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("embedding service: %w", err)
		}
		closers = append(closers, embedder.Close)
		svcs.Embedding = embedder

		completion, err := completionapi.NewCompletionService(completionapi.CompletionConfig{
			APIKey:  openAIKey,
			BaseURL: settings.Completion.BaseURL,
			Model:   settings.Completion.Model,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("completion service: %w", err)
		}
		closers = append(closers, completion.Close)
		svcs.Completion = completion
		svcs.Status.CompletionModel = completion.ModelName()
	}

	knowledge, stateStore, err := buildStorage(dataDir, embeddingModel, settings.Storage.Backend, &closers, &svcs.Status)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	svcs.Knowledge = knowledge

	sourceStore, err := cfgfile.NewSourceStore(dataDir)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("source store: %w", err)
	}

	promptDir := ""
	if dataDir != "" {
		promptDir = filepath.Join(dataDir, "prompts")
	}
	promptStore, err := promptfile.NewPromptStore(promptDir)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("prompt store: %w", err)
	}

	runLock, err := flock.NewRunLock(dataDir)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("run lock: %w", err)
	}

	var fetcher driven.PageFetcher
	crawlKey := os.Getenv(envCrawlKey)
	if settings.Crawl.IsConfigured() && crawlKey != "" {
		pf, err := httpapi.NewPageFetcher(httpapi.Config{
			APIKey:            crawlKey,
			Endpoint:          settings.Crawl.Endpoint,
			PageLimit:         settings.Crawl.PageLimit,
			RequestsPerSecond: settings.Crawl.RequestsPerSecond,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("crawl provider: %w", err)
		}
		fetcher = pf
		svcs.Status.CrawlConfigured = true
	}

	svcs.Freshness = services.NewFreshnessGate(stateStore)
	svcs.Source = services.NewSourceService(sourceStore)

	if svcs.Embedding != nil {
		retrieverOpts := []services.RetrieverOption{}
		if settings.Retrieval.TopK > 0 {
			retrieverOpts = append(retrieverOpts, services.WithDefaultTopK(settings.Retrieval.TopK))
		}
		if settings.Retrieval.CrawledTopK > 0 {
			retrieverOpts = append(retrieverOpts, services.WithDefaultCrawledTopK(settings.Retrieval.CrawledTopK))
		}
		retriever := services.NewRetriever(knowledge, svcs.Embedding, retrieverOpts...)
		svcs.Retrieval = retriever

		ingestOpts := []services.IngestOption{
			services.WithExtractors(extractors.NewDefault()),
		}
		if settings.Chunker.MaxTokens > 0 {
			ingestOpts = append(ingestOpts, services.WithSplitter(
				chunker.New(chunker.WithMaxTokens(settings.Chunker.MaxTokens))))
		}
		if settings.Ingest.SourceTimeoutSeconds > 0 {
			ingestOpts = append(ingestOpts, services.WithSourceTimeout(
				time.Duration(settings.Ingest.SourceTimeoutSeconds)*time.Second))
		}
		if settings.Ingest.Language != "" {
			ingestOpts = append(ingestOpts, services.WithLanguage(settings.Ingest.Language))
		}
		svcs.Ingest = services.NewIngestOrchestrator(
			sourceStore, knowledge, fetcher, svcs.Embedding, svcs.Freshness, runLock, ingestOpts...)

		if svcs.Completion != nil {
			var chatOpts []services.ChatServiceOption
			if settings.Completion.MaxTokens > 0 || settings.Completion.Temperature > 0 {
				chatOpts = append(chatOpts, services.WithCompletionOptions(driven.ChatOptions{
					MaxTokens:   settings.Completion.MaxTokens,
					Temperature: settings.Completion.Temperature,
				}))
			}
			svcs.Chat = services.NewChatService(retriever, svcs.Completion, promptStore, chatOpts...)
		}
	}

	return svcs, cleanup, nil
}

// buildStorage opens the knowledge and ingest-state stores for the
// configured backend.
func buildStorage(
	dataDir, embeddingModel, backend string,
	closers *[]func() error,
	status *StatusInfo,
) (driven.KnowledgeStore, driven.IngestStateStore, error) {
	switch backend {
	case "", backendFile:
		knowledge, err := storefile.NewKnowledgeStore(dataDir, embeddingModel)
		if err != nil {
			return nil, nil, fmt.Errorf("knowledge store: %w", err)
		}
		stateStore, err := storefile.NewIngestStateStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("ingest state store: %w", err)
		}
		status.Backend = backendFile
		status.StorePath = knowledge.Path()
		return knowledge, stateStore, nil

	case backendSQLite:
		store, err := sqlite.NewStore(dataDir, embeddingModel)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		*closers = append(*closers, store.Close)
		status.Backend = backendSQLite
		status.StorePath = store.Path()
		return store.KnowledgeStore(), store.IngestStateStore(), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (want %q or %q)",
			backend, backendFile, backendSQLite)
	}
}
