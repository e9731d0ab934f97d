package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sitechat/internal/adapters/driven/ai"
	"github.com/custodia-labs/sitechat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sitechat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitechat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/cli"
	"github.com/custodia-labs/sitechat/internal/connectors"
	"github.com/custodia-labs/sitechat/internal/connectors/filesystem"
	"github.com/custodia-labs/sitechat/internal/connectors/github"
	"github.com/custodia-labs/sitechat/internal/connectors/web"
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
	"github.com/custodia-labs/sitechat/internal/core/services"
	"github.com/custodia-labs/sitechat/internal/logger"
	"github.com/custodia-labs/sitechat/internal/normalisers"
	"github.com/custodia-labs/sitechat/internal/normalisers/docx"
	"github.com/custodia-labs/sitechat/internal/normalisers/html"
	"github.com/custodia-labs/sitechat/internal/normalisers/markdown"
	"github.com/custodia-labs/sitechat/internal/normalisers/pdf"
	"github.com/custodia-labs/sitechat/internal/normalisers/plaintext"
	"github.com/custodia-labs/sitechat/internal/postprocessors"
)

// newSettingsService reads and writes config.toml under dataDir.
func newSettingsService(dataDir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// newServices builds the store, AI adapters and core services for one run.
func newServices(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	settings := opts.Settings
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	splitter, err := newSplitter(settings.Chunking)
	if err != nil {
		return nil, err
	}
	fetcher, err := newFetcher()
	if err != nil {
		return nil, err
	}

	store, err := newStore(opts)
	if err != nil {
		return nil, err
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	chat, err := ai.CreateAndValidateChatModel(ctx, &settings.LLM)
	if err != nil {
		_ = embedder.Close()
		_ = store.Close()
		return nil, err
	}

	prompt, err := systemPromptFor(settings, filepath.Join(opts.DataDir, "prompts"))
	if err != nil {
		logger.Warn("Using built-in system prompt: %v", err)
	}

	ingest := services.NewIngestService(store, embedder,
		services.WithLoader(fetcher, newNormaliser(), splitter),
	)
	retrieval := services.NewRetrievalService(store, embedder)
	tools := newTools(retrieval, opts, settings.Retrieval)
	agent := services.NewAgentService(chat, tools, services.WithMaxSteps(settings.Agent.MaxSteps))

	aiServices := &ai.Services{Embedding: embedder, Chat: chat}
	return &cli.Services{
		Ingest:       ingest,
		Retrieval:    retrieval,
		Agent:        agent,
		SystemPrompt: prompt,
		Model:        settings.LLM.Model,
		Close: func() error {
			aiServices.Close()
			return store.Close()
		},
	}, nil
}

// newTools registers the retrieval tool against the collection chosen for
// this run, falling back to the configured one.
func newTools(retrieval driving.RetrievalService, opts cli.Options, cfg domain.RetrievalSettings) *services.ToolTable {
	collection := opts.Collection
	if collection == "" {
		collection = cfg.Collection
	}
	return services.NewToolTable(services.NewRetrieveContextTool(retrieval, collection, cfg.K))
}

// newStore opens the collection database, or an in-memory store when the
// run is ephemeral.
func newStore(opts cli.Options) (driven.CollectionStore, error) {
	if opts.Ephemeral {
		return memory.NewCollectionStore(), nil
	}
	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

// newValidator pings providers for settings check.
func newValidator() driven.AIConfigValidator {
	return ai.NewConfigValidator()
}

// newFetcher resolves http(s) locators to the web connector, github://
// locators to the GitHub connector and file locators or bare paths to the
// filesystem connector.
func newFetcher() (driven.Fetcher, error) {
	gh, err := github.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create github connector: %w", err)
	}
	return connectors.NewResolver(web.New(), gh, filesystem.New()), nil
}

// newNormaliser registers every document format; other text/* types use
// the plaintext normaliser.
func newNormaliser() driven.Normaliser {
	text := plaintext.New()
	r := normalisers.NewRegistry(text, html.New(), markdown.New(), pdf.New(), docx.New())
	r.SetTextFallback(text)
	return r
}

func newSplitter(cfg domain.ChunkingSettings) (driven.Splitter, error) {
	r := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(r)
	splitter, err := r.BuildFromSettings(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build splitter: %w", err)
	}
	return splitter, nil
}

// systemPromptFor prefers the prompt in settings, then prompts/agent_system.txt,
// then the built-in default.
func systemPromptFor(settings *domain.Settings, promptDir string) (string, error) {
	if settings.Agent.SystemPrompt != "" {
		return settings.Agent.SystemPrompt, nil
	}
	fallback, _ := file.DefaultPrompt(driven.PromptAgentSystem)

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fallback, err
	}
	prompt, err := prompts.Load(driven.PromptAgentSystem)
	if err != nil {
		return fallback, err
	}
	if prompt == "" {
		return fallback, errors.New("empty system prompt")
	}
	return prompt, nil
}
