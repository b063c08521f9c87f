package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"clinicsearch/internal/domain"
	"clinicsearch/internal/port"
)

// errBlankText marks rows whose synthesized text is empty after
// trimming. Such rows are skipped, never sent to the embedding service,
// and their stored vector is left untouched.
var errBlankText = errors.New("embedding text is blank")

// Generator converts entity rows into embedding vectors and persists
// them. Embedding is best-effort enrichment: a row's failure is logged
// and never aborts the batch.
type Generator struct {
	store    port.EntityStore
	embedder port.Embedder
	log      zerolog.Logger
}

func NewGenerator(store port.EntityStore, embedder port.Embedder, log zerolog.Logger) *Generator {
	return &Generator{
		store:    store,
		embedder: embedder,
		log:      log,
	}
}

// GenerateResult reports what a batch did. Failed rows are only surfaced
// here and in logs; the batch itself still succeeds.
type GenerateResult struct {
	Total    int `json:"total"`
	Embedded int `json:"embedded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// GenerateAll embeds every row of the type that has no stored vector
// yet. Rows are processed strictly sequentially: the embedding service
// is rate limited, and each write is independently keyed so no ordering
// across rows is needed.
func (g *Generator) GenerateAll(ctx context.Context, t domain.EntityType, progress func(done, total int)) (GenerateResult, error) {
	rows, err := g.store.ListMissing(ctx, t)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to load %s rows: %w", t, err)
	}

	res := GenerateResult{Total: len(rows)}
	for i, e := range rows {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		switch err := g.embedRow(ctx, e); {
		case errors.Is(err, errBlankText):
			res.Skipped++
		case err != nil:
			res.Failed++
			g.log.Error().Err(err).
				Str("type", string(t)).
				Str("id", e.EntityID()).
				Msg("failed to embed row")
		default:
			res.Embedded++
		}
		if progress != nil {
			progress(i+1, len(rows))
		}
	}

	g.log.Info().
		Str("type", string(t)).
		Int("total", res.Total).
		Int("embedded", res.Embedded).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("embedding batch finished")
	return res, nil
}

// Regenerate re-embeds a single entity from its current descriptive and
// related fields, fetched fresh from the store. Called after a profile
// update so search observes the new fields once one embedding call
// completes.
func (g *Generator) Regenerate(ctx context.Context, t domain.EntityType, id string) error {
	e, err := g.store.Get(ctx, t, id)
	if err != nil {
		return err
	}
	if err := g.embedRow(ctx, e); err != nil && !errors.Is(err, errBlankText) {
		return err
	}
	return nil
}

func (g *Generator) embedRow(ctx context.Context, e domain.Entity) error {
	text := strings.TrimSpace(e.EmbeddingText())
	if text == "" {
		g.log.Warn().
			Str("type", string(e.Type())).
			Str("id", e.EntityID()).
			Msg("skipping row with blank embedding text")
		return errBlankText
	}

	vec, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding call failed: %w", err)
	}
	if len(vec) == 0 {
		return errors.New("embedding service returned an empty vector")
	}

	if err := g.store.SetEmbedding(ctx, e.Type(), e.EntityID(), vec); err != nil {
		return fmt.Errorf("failed to persist embedding: %w", err)
	}
	return nil
}
