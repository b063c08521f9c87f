package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"clinicsearch/internal/adapter/store"
	"clinicsearch/internal/domain"
)

func TestGenerateAllEmbedsMissingRows(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	for _, c := range []*domain.Clinic{
		{ID: "c1", Name: "Glow Clinic", Address: "1 Main St"},
		{ID: "c2", Name: "Harley Clinic", Address: "2 High St"},
	} {
		if err := st.Put(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	emb := &fakeEmbedder{def: []float32{1, 2, 3}}
	g := NewGenerator(st, emb, zerolog.Nop())

	res, err := g.GenerateAll(ctx, domain.TypeClinic, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 || res.Embedded != 2 || res.Skipped != 0 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}

	embedded, err := st.ListEmbedded(ctx, domain.TypeClinic)
	if err != nil {
		t.Fatal(err)
	}
	if len(embedded) != 2 {
		t.Errorf("expected 2 embedded rows, got %d", len(embedded))
	}
}

func TestGenerateAllSkipsAlreadyEmbedded(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	putClinic(t, st, "c-done", "Done Clinic", []float32{9, 9})
	putClinic(t, st, "c-todo", "Todo Clinic", nil)

	emb := &fakeEmbedder{def: []float32{1, 2}}
	g := NewGenerator(st, emb, zerolog.Nop())

	res, err := g.GenerateAll(ctx, domain.TypeClinic, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.Embedded != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	if emb.calls != 1 {
		t.Errorf("embedding service called %d times, want 1", emb.calls)
	}

	// The pre-existing vector is untouched.
	e, err := st.Get(ctx, domain.TypeClinic, "c-done")
	if err != nil {
		t.Fatal(err)
	}
	if v := e.Vector(); len(v) != 2 || v[0] != 9 {
		t.Errorf("existing vector was overwritten: %v", v)
	}
}

func TestGenerateAllBlankTextSkipped(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	if err := st.Put(ctx, &domain.Clinic{ID: "c-blank", Name: "   "}); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(ctx, &domain.Clinic{ID: "c-ok", Name: "Glow Clinic"}); err != nil {
		t.Fatal(err)
	}

	emb := &fakeEmbedder{def: []float32{1, 0}}
	g := NewGenerator(st, emb, zerolog.Nop())

	res, err := g.GenerateAll(ctx, domain.TypeClinic, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 || res.Embedded != 1 || res.Skipped != 1 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if emb.calls != 1 {
		t.Errorf("blank-text row reached the embedding service (%d calls)", emb.calls)
	}

	// The skipped row stays unembedded, not failed.
	missing, err := st.ListMissing(ctx, domain.TypeClinic)
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 || missing[0].EntityID() != "c-blank" {
		t.Errorf("expected c-blank to remain missing, got %+v", missing)
	}
}

func TestGenerateAllPartialFailure(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	good1 := &domain.Clinic{ID: "c1", Name: "Alpha Clinic"}
	bad := &domain.Clinic{ID: "c2", Name: "Beta Clinic"}
	good2 := &domain.Clinic{ID: "c3", Name: "Gamma Clinic"}
	for _, c := range []*domain.Clinic{good1, bad, good2} {
		if err := st.Put(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	emb := &fakeEmbedder{
		def:  []float32{1, 0},
		fail: map[string]error{bad.EmbeddingText(): errors.New("rate limited")},
	}
	g := NewGenerator(st, emb, zerolog.Nop())

	res, err := g.GenerateAll(ctx, domain.TypeClinic, nil)
	if err != nil {
		t.Fatalf("one bad row must not fail the batch: %v", err)
	}
	if res.Total != 3 || res.Embedded != 2 || res.Failed != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	// The rows around the failure are persisted.
	embedded, err := st.ListEmbedded(ctx, domain.TypeClinic)
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]bool{}
	for _, e := range embedded {
		ids[e.EntityID()] = true
	}
	if !ids["c1"] || !ids["c3"] || ids["c2"] {
		t.Errorf("unexpected embedded set: %v", ids)
	}
}

func TestGenerateAllReportsProgress(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"c1", "c2", "c3"} {
		if err := st.Put(ctx, &domain.Clinic{ID: id, Name: "Clinic " + id}); err != nil {
			t.Fatal(err)
		}
	}

	g := NewGenerator(st, &fakeEmbedder{def: []float32{1}}, zerolog.Nop())

	var calls []int
	_, err := g.GenerateAll(ctx, domain.TypeClinic, func(done, total int) {
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("unexpected progress calls: %v", calls)
	}
}

func TestGenerateAllHonorsContext(t *testing.T) {
	st := store.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := st.Put(context.Background(), &domain.Clinic{ID: "c1", Name: "Glow Clinic"}); err != nil {
		t.Fatal(err)
	}

	emb := &fakeEmbedder{def: []float32{1}}
	g := NewGenerator(st, emb, zerolog.Nop())

	_, err := g.GenerateAll(ctx, domain.TypeClinic, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if emb.calls != 0 {
		t.Errorf("embedding service called after cancellation")
	}
}

func TestRegenerateOverwritesVector(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	putClinic(t, st, "c1", "Old Name Clinic", []float32{1, 1})

	// Profile update before regeneration.
	if err := st.Put(ctx, &domain.Clinic{ID: "c1", Name: "New Name Clinic"}); err != nil {
		t.Fatal(err)
	}

	emb := &fakeEmbedder{def: []float32{5, 5}}
	g := NewGenerator(st, emb, zerolog.Nop())

	if err := g.Regenerate(ctx, domain.TypeClinic, "c1"); err != nil {
		t.Fatal(err)
	}
	if want := (&domain.Clinic{Name: "New Name Clinic"}).EmbeddingText(); emb.lastText != want {
		t.Errorf("embedded text = %q, want the updated fields %q", emb.lastText, want)
	}

	e, err := st.Get(ctx, domain.TypeClinic, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if v := e.Vector(); len(v) != 2 || v[0] != 5 {
		t.Errorf("vector not replaced: %v", v)
	}
}

func TestRegenerateUnknownID(t *testing.T) {
	g := NewGenerator(store.NewMemoryStore(), &fakeEmbedder{def: []float32{1}}, zerolog.Nop())
	err := g.Regenerate(context.Background(), domain.TypeClinic, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegenerateBlankTextLeavesVector(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	putClinic(t, st, "c1", "Glow Clinic", []float32{1, 1})
	if err := st.Put(ctx, &domain.Clinic{ID: "c1", Name: ""}); err != nil {
		t.Fatal(err)
	}

	emb := &fakeEmbedder{def: []float32{9, 9}}
	g := NewGenerator(st, emb, zerolog.Nop())

	if err := g.Regenerate(ctx, domain.TypeClinic, "c1"); err != nil {
		t.Fatalf("blank text is a skip, not an error: %v", err)
	}
	if emb.calls != 0 {
		t.Error("blank-text row reached the embedding service")
	}

	e, err := st.Get(ctx, domain.TypeClinic, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if v := e.Vector(); len(v) != 2 || v[0] != 1 {
		t.Errorf("stored vector was disturbed: %v", v)
	}
}
