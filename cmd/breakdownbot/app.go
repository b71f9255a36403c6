package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/config"
	"github.com/yourusername/breakdown-bot/internal/domain/repository"
	"github.com/yourusername/breakdown-bot/internal/infrastructure/excel"
	"github.com/yourusername/breakdown-bot/internal/infrastructure/gemini"
	"github.com/yourusername/breakdown-bot/internal/infrastructure/ollama"
	"github.com/yourusername/breakdown-bot/internal/infrastructure/storage"
	"github.com/yourusername/breakdown-bot/internal/usecase"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

// app the wired dependencies of one command run
type app struct {
	cfg     *config.Config
	dataset *excel.DatasetRepository
	ai      repository.AIRepository
	journal repository.JournalRepository

	lookup usecase.LookupUseCase
	entry  usecase.EntryUseCase
}

// newApp loads the dataset and wires the use cases. withAI creates the
// language model client; commands that never explain skip it.
func newApp(ctx context.Context, cfg *config.Config, withAI bool) (*app, error) {
	log := logger.Named("app")

	dataset := excel.NewDatasetRepository(cfg.DatasetPath, cfg.DatasetSheet)
	ds, err := dataset.Load(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("dataset loaded",
		zap.String("path", dataset.Path()),
		zap.Int("rows", ds.Len()),
		zap.Strings("columns", ds.Columns))

	a := &app{cfg: cfg, dataset: dataset}
	if withAI {
		a.ai, err = newExplainer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("language model ready", zap.String("provider", a.ai.Name()))
	}
	a.journal = storage.NewJournalRepository(ctx, cfg.DatabaseURL)

	a.lookup = usecase.NewLookupUseCase(dataset, a.ai, cfg.LLMTimeout)
	a.entry = usecase.NewEntryUseCase(dataset, a.journal)
	return a, nil
}

func newExplainer(ctx context.Context, cfg *config.Config) (repository.AIRepository, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return client, nil
	default:
		return ollama.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel), nil
	}
}

// Close releases the journal and the language model client.
func (a *app) Close() {
	log := logger.Named("app")
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			log.Warn("journal close", zap.Error(err))
		}
	}
	if c, ok := a.ai.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn("language model client close", zap.Error(err))
		}
	}
}
