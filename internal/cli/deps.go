package cli

import (
	"context"
	"fmt"
	"time"

	"clinicsearch/internal/adapter/cache"
	"clinicsearch/internal/adapter/embedding"
	"clinicsearch/internal/adapter/store"
	"clinicsearch/internal/adapter/translate"
	"clinicsearch/internal/domain"
	"clinicsearch/internal/port"
	"clinicsearch/internal/usecase"
)

func openStore(ctx context.Context) (port.EntityStore, error) {
	switch cfg.Store.Driver {
	case "", "bolt":
		return store.NewBoltStore(cfg.Store.Path, logger)
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.Store.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func newEmbedder() (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "", "ollama":
		timeout := time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL, timeout), nil
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "mock":
		return embedding.NewMockEmbedder(0), nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
}

func newTranslator() port.Translator {
	if !cfg.Translate.Enabled {
		return translate.Noop{}
	}
	tr, err := translate.NewOpenAITranslator(cfg.Translate.APIKeyEnv, cfg.Translate.Model)
	if err != nil {
		logger.Warn().Err(err).Msg("translator unavailable, keywords used as-is")
		return translate.Noop{}
	}
	return tr
}

func matcherOptions() usecase.MatcherOptions {
	thresholds := make(map[domain.EntityType]float64)
	for name, v := range cfg.Search.Thresholds {
		if t, err := domain.ParseEntityType(name); err == nil {
			thresholds[t] = v
		}
	}

	var c *cache.EmbeddingCache
	if cfg.Search.CacheSize > 0 {
		ttl := time.Duration(cfg.Search.CacheTTLSeconds) * time.Second
		c = cache.NewEmbeddingCache(cfg.Search.CacheSize, ttl)
	}

	return usecase.MatcherOptions{
		TopK:         cfg.Search.TopK,
		KeywordBoost: cfg.Search.KeywordBoost,
		Thresholds:   thresholds,
		Cache:        c,
	}
}
