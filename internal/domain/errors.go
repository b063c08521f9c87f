package domain

import "errors"

var (
	// ErrEmptyKeyword is returned when a search is attempted with a
	// missing or blank keyword. No external calls are made in that case.
	ErrEmptyKeyword = errors.New("keyword is required")

	// ErrNoEmbeddedEntities is returned when no row of the requested
	// type has a stored vector yet. Distinct from an empty match list.
	ErrNoEmbeddedEntities = errors.New("no embedded entities found")

	// ErrNotFound is returned when an entity id does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntityType is returned for an unknown collection name.
	ErrInvalidEntityType = errors.New("invalid entity type")
)
