package main

import (
	"context"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/enrichment"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/regeneration"
	"go.uber.org/zap"
)

// components are the long-lived pieces a command needs
type components struct {
	service *pipeline.Service
	client  llm.Client
	db      *db.DB
}

func (c *components) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
}

// regenerationOptions converts configuration into orchestrator options
func regenerationOptions(cfg config.RegenerationConfig) regeneration.Options {
	opts := regeneration.DefaultOptions()
	opts.MaxInFlight = cfg.MaxInFlight
	opts.ItemTimeout = cfg.ItemTimeout
	opts.Retry.MaxAttempts = cfg.MaxAttempts
	opts.Retry.InitialBackoff = cfg.InitialBackoff
	opts.Retry.MaxBackoff = cfg.MaxBackoff
	return opts
}

// build wires the service. Without an API key the LLM-backed operations
// report a ConfigError and the rest keeps working. persist selects Postgres
// when a database URL is configured.
func build(ctx context.Context, cfg *config.Config, logger *zap.Logger, persist bool) (*components, error) {
	c := &components{}

	var (
		completer   llm.Completer
		analyzer    pipeline.Analyzer
		regenerator pipeline.Regenerator
	)
	client, err := llm.NewClient(ctx, cfg.LLM.ClientConfig(), cfg.LLM.ProviderAPIKey())
	switch {
	case err == nil:
		c.client = client
		structured := llm.NewStructuredClient(client, logger)
		completer = structured
		analyzer = enrichment.NewAnalyzer(structured, cfg.Enrichment.MaxQuestions, logger)
		regenerator = regeneration.New(structured, regenerationOptions(cfg.Regeneration), logger)
	case llm.IsConfig(err):
		logger.Warn("LLM provider unavailable; regeneration and analysis are disabled", zap.Error(err))
	default:
		return nil, err
	}

	var store pipeline.Store = db.NewMemoryStore()
	if persist && cfg.Database.URL != "" {
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.db = database
		if err := database.Migrate(ctx); err != nil {
			c.Close()
			return nil, err
		}
		store = database.Store()
	} else if persist {
		logger.Warn("no database configured; résumés are kept in memory")
	}

	c.service = pipeline.NewService(store, analyzer, regenerator, completer, logger, pipeline.Options{
		OutputLanguage: cfg.Regeneration.OutputLanguage,
	})
	return c, nil
}
