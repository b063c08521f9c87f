package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"clinicsearch/internal/adapter/embedding"
	"clinicsearch/internal/adapter/store"
	"clinicsearch/internal/domain"
	"clinicsearch/internal/usecase"
)

// Measures matcher latency over a synthetic corpus using the mock
// embedder, so the full scan-score-sort path is timed without an
// external embedding service.
func main() {
	rows := flag.Int("rows", 5000, "Number of synthetic treatments")
	queries := flag.Int("queries", 100, "Number of search calls to time")
	keyword := flag.String("q", "laser hair removal", "Search keyword")
	flag.Parse()

	ctx := context.Background()
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	st := store.NewMemoryStore()
	emb := embedding.NewMockEmbedder(0)

	concerns := []string{"unwanted hair", "acne", "wrinkles", "pigmentation", "scarring"}
	for i := 0; i < *rows; i++ {
		t := &domain.Treatment{
			ID:       fmt.Sprintf("t%d", i),
			Name:     fmt.Sprintf("Treatment %d", i),
			Concern:  concerns[i%len(concerns)],
			Benefits: "smooth skin",
		}
		if err := st.Put(ctx, t); err != nil {
			fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
			os.Exit(1)
		}
	}

	generator := usecase.NewGenerator(st, emb, logger)
	start := time.Now()
	res, err := generator.GenerateAll(ctx, domain.TypeTreatment, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation error: %v\n", err)
		os.Exit(1)
	}
	genElapsed := time.Since(start)

	fmt.Println("SUGGESTION SEARCH BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Rows embedded: %d in %s (%.0f rows/s)\n",
		res.Embedded, genElapsed, float64(res.Embedded)/genElapsed.Seconds())

	matcher := usecase.NewMatcher(st, emb, nil, usecase.MatcherOptions{}, logger)

	// Warm up once so the first-call cost is excluded.
	if _, err := matcher.Search(ctx, domain.TypeTreatment, *keyword); err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}

	start = time.Now()
	var matches int
	for i := 0; i < *queries; i++ {
		suggestions, err := matcher.Search(ctx, domain.TypeTreatment, *keyword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}
		matches = len(suggestions)
	}
	elapsed := time.Since(start)

	fmt.Printf("Query: %q\n", *keyword)
	fmt.Printf("Matches per query: %d\n", matches)
	fmt.Printf("Searches: %d in %s (avg %s/query, %.0f queries/s)\n",
		*queries, elapsed,
		elapsed/time.Duration(*queries),
		float64(*queries)/elapsed.Seconds())
}
