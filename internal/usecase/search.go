package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"clinicsearch/internal/adapter/cache"
	"clinicsearch/internal/domain"
	"clinicsearch/internal/port"
)

// Matcher answers free-text suggestion queries. Each call independently
// scans the full current snapshot of stored vectors; there is no state
// between calls.
type Matcher struct {
	store      port.EntityStore
	embedder   port.Embedder
	translator port.Translator
	cache      *cache.EmbeddingCache
	topK       int
	boost      float64
	thresholds map[domain.EntityType]float64
	log        zerolog.Logger
}

// MatcherOptions tunes scoring. Zero values fall back to the defaults:
// top 20 results, +0.15 keyword boost, per-type thresholds.
type MatcherOptions struct {
	TopK         int
	KeywordBoost float64
	Thresholds   map[domain.EntityType]float64
	Cache        *cache.EmbeddingCache
}

func NewMatcher(store port.EntityStore, embedder port.Embedder, translator port.Translator, opts MatcherOptions, log zerolog.Logger) *Matcher {
	if opts.TopK <= 0 {
		opts.TopK = 20
	}
	if opts.KeywordBoost == 0 {
		opts.KeywordBoost = 0.15
	}
	return &Matcher{
		store:      store,
		embedder:   embedder,
		translator: translator,
		cache:      opts.Cache,
		topK:       opts.TopK,
		boost:      opts.KeywordBoost,
		thresholds: opts.Thresholds,
		log:        log,
	}
}

// Search embeds the keyword, scores every embedded row of the type by
// cosine similarity plus the keyword boost, and returns the rows at or
// above the type's threshold, best first, at most topK.
func (m *Matcher) Search(ctx context.Context, t domain.EntityType, keyword string) ([]domain.Suggestion, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, domain.ErrEmptyKeyword
	}

	normalized := m.normalize(ctx, keyword)

	queryVec, err := m.queryVector(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to embed keyword: %w", err)
	}

	rows, err := m.store.ListEmbedded(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s rows: %w", t, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoEmbeddedEntities
	}

	needle := strings.ToLower(normalized)
	threshold := m.threshold(t)

	suggestions := make([]domain.Suggestion, 0, len(rows))
	for _, e := range rows {
		vec := e.Vector()
		if len(vec) != len(queryVec) {
			m.log.Warn().
				Str("type", string(t)).
				Str("id", e.EntityID()).
				Int("got", len(vec)).
				Int("want", len(queryVec)).
				Msg("skipping row with mismatched vector dimensionality")
			continue
		}

		score := cosineSimilarity(queryVec, vec)
		if m.boost > 0 && strings.Contains(e.SearchText(), needle) {
			score += m.boost
		}
		if score < threshold {
			continue
		}

		// The raw vector must never reach the response.
		e.SetVector(nil)
		suggestions = append(suggestions, domain.Suggestion{Entity: e, Score: score})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > m.topK {
		suggestions = suggestions[:m.topK]
	}
	return suggestions, nil
}

// normalize runs the keyword through the translator. A translation
// failure falls back to the raw keyword: a degraded search beats no
// search.
func (m *Matcher) normalize(ctx context.Context, keyword string) string {
	if m.translator == nil {
		return keyword
	}
	translated, err := m.translator.Translate(ctx, keyword)
	if err != nil {
		m.log.Warn().Err(err).Str("keyword", keyword).
			Msg("keyword translation failed, using raw keyword")
		return keyword
	}
	if s := strings.TrimSpace(translated); s != "" {
		return s
	}
	return keyword
}

func (m *Matcher) queryVector(ctx context.Context, keyword string) ([]float32, error) {
	if m.cache != nil {
		if vec, ok := m.cache.Get(keyword); ok {
			return vec, nil
		}
	}
	vec, err := m.embedder.Embed(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}
	if m.cache != nil {
		m.cache.Put(keyword, vec)
	}
	return vec, nil
}

func (m *Matcher) threshold(t domain.EntityType) float64 {
	if v, ok := m.thresholds[t]; ok {
		return v
	}
	return t.MatchThreshold()
}

// cosineSimilarity calculates the cosine similarity between two vectors
// of equal length: dot(a,b) / (||a|| * ||b||).
func cosineSimilarity(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
