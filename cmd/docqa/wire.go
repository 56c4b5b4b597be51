package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/auth"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/docqa/internal/adapters/driven/objectstore/filesystem"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// stores are the persistence adapters selected by storage.driver.
type stores struct {
	documents driven.DocumentStore
	history   driven.HistoryStore
	close     func()
}

// newWiring builds the pipeline from the current settings on first use.
func newWiring(settingsService driving.SettingsService) cli.Wiring {
	return func(ctx context.Context) (*cli.Services, func(), error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, nil, fmt.Errorf("load settings: %w", err)
		}

		st, err := openStores(ctx, settings.Storage)
		if err != nil {
			return nil, nil, err
		}

		aiServices, err := ai.NewServices(settings)
		if err != nil {
			st.close()
			return nil, nil, err
		}
		cleanup := func() {
			aiServices.Close()
			st.close()
		}

		svc, err := buildServices(settings, st, aiServices)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		return svc, cleanup, nil
	}
}

func buildServices(settings *domain.AppSettings, st *stores, aiServices *ai.Services) (*cli.Services, error) {
	chunk, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	objects, err := filesystem.NewStore(settings.Storage.ObjectDir)
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return nil, fmt.Errorf("open prompt store: %w", err)
	}

	authProvider, err := auth.NewProvider(settings.Auth)
	if err != nil {
		return nil, err
	}

	metrics := prometheus.New("")

	ingest := services.NewIngestService(st.documents, aiServices.Embedding, chunk)
	ingest.SetObjectStore(objects)
	ingest.SetExtractor(extractors.Default())
	ingest.SetMetrics(metrics)

	recorder := services.NewHistoryRecorder(st.history)
	ask := services.NewAskService(
		st.documents,
		aiServices.Embedding,
		aiServices.LLM,
		services.NewContextAssembler(prompts, settings.Retrieval.MaxContextChars),
		recorder,
	)
	ask.SetMaxTokens(settings.LLM.MaxTokens)
	ask.SetDefaultTopK(settings.Retrieval.TopK)
	ask.SetMetrics(metrics)

	svc := &cli.Services{
		Ingest:   ingest,
		Ask:      ask,
		Document: services.NewDocumentService(st.documents),
		History:  recorder,
		Auth:     authProvider,
		Metrics:  metrics.Handler(),
	}
	if jwt, ok := authProvider.(*auth.JWTProvider); ok {
		svc.Tokens = jwt
	}
	return svc, nil
}

func openStores(ctx context.Context, cfg domain.StorageSettings) (*stores, error) {
	switch cfg.Driver {
	case domain.StorageDriverSQLite, "":
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("Using SQLite store at %s", store.Path())
		return &stores{
			documents: store.DocumentStore(),
			history:   store.HistoryStore(),
			close:     func() { _ = store.Close() },
		}, nil
	case domain.StorageDriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		logger.Debug("Using PostgreSQL store")
		return &stores{
			documents: store.DocumentStore(),
			history:   store.HistoryStore(),
			close:     func() { _ = store.Close() },
		}, nil
	case domain.StorageDriverMemory:
		logger.Warn("Using in-memory store; nothing outlives this process")
		return &stores{
			documents: memory.NewDocumentStore(),
			history:   memory.NewHistoryStore(),
			close:     func() {},
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", domain.ErrConfiguration, cfg.Driver)
	}
}
