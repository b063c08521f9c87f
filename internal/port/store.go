package port

import (
	"context"

	"clinicsearch/internal/domain"
)

// EntityStore is the persistence contract for searchable entities. Each
// entity carries a nullable vector; a nil vector means "not yet indexed".
//
// Writes to the vector are independently keyed by entity id with
// last-write-wins semantics. No cross-row ordering is guaranteed.
type EntityStore interface {
	// Put inserts or replaces an entity's descriptive fields, preserving
	// any stored vector for the same id.
	Put(ctx context.Context, e domain.Entity) error

	// Get fetches one entity's current descriptive and related fields,
	// together with its stored vector if present.
	Get(ctx context.Context, t domain.EntityType, id string) (domain.Entity, error)

	// ListEmbedded returns all rows of the type whose vector is set.
	// Rows with an undecodable stored vector are skipped, not fatal.
	ListEmbedded(ctx context.Context, t domain.EntityType) ([]domain.Entity, error)

	// ListMissing returns all rows of the type with no stored vector.
	ListMissing(ctx context.Context, t domain.EntityType) ([]domain.Entity, error)

	// SetEmbedding overwrites the stored vector for one entity.
	SetEmbedding(ctx context.Context, t domain.EntityType, id string, vec []float32) error

	Close() error
}
