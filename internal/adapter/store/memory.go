package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"clinicsearch/internal/domain"
)

// MemoryStore is an in-memory EntityStore for tests, examples, and the
// benchmark. Vectors are held in their serialized text form so the same
// tolerant decode path as the persistent stores is exercised.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[domain.EntityType]map[string][]byte
	vectors  map[domain.EntityType]map[string]string
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entities: make(map[domain.EntityType]map[string][]byte),
		vectors:  make(map[domain.EntityType]map[string]string),
	}
	for _, t := range domain.Types() {
		s.entities[t] = make(map[string][]byte)
		s.vectors[t] = make(map[string]string)
	}
	return s
}

func (s *MemoryStore) Put(_ context.Context, e domain.Entity) error {
	if e.EntityID() == "" {
		return fmt.Errorf("entity id is required")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.Type()][e.EntityID()] = data
	return nil
}

func (s *MemoryStore) Get(_ context.Context, t domain.EntityType, id string) (domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entities[t][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", domain.ErrNotFound, t, id)
	}
	e, err := decodeEntity(t, data)
	if err != nil {
		return nil, err
	}
	if text, ok := s.vectors[t][id]; ok {
		vec, err := DecodeVector(text)
		if err == nil {
			e.SetVector(vec)
		}
	}
	return e, nil
}

func (s *MemoryStore) ListEmbedded(_ context.Context, t domain.EntityType) ([]domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entities []domain.Entity
	for id, data := range s.entities[t] {
		text, ok := s.vectors[t][id]
		if !ok {
			continue
		}
		vec, err := DecodeVector(text)
		if err != nil || len(vec) == 0 {
			continue
		}
		e, err := decodeEntity(t, data)
		if err != nil {
			continue
		}
		e.SetVector(vec)
		entities = append(entities, e)
	}
	return entities, nil
}

func (s *MemoryStore) ListMissing(_ context.Context, t domain.EntityType) ([]domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entities []domain.Entity
	for id, data := range s.entities[t] {
		if _, ok := s.vectors[t][id]; ok {
			continue
		}
		e, err := decodeEntity(t, data)
		if err != nil {
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (s *MemoryStore) SetEmbedding(_ context.Context, t domain.EntityType, id string, vec []float32) error {
	text, err := EncodeVector(vec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[t][id]; !ok {
		return fmt.Errorf("%w: %s %q", domain.ErrNotFound, t, id)
	}
	s.vectors[t][id] = text
	return nil
}

// SetEmbeddingText stores a raw serialized vector without validation.
// Intended for tests that need to inject malformed or legacy forms.
func (s *MemoryStore) SetEmbeddingText(t domain.EntityType, id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[t][id] = text
}

func (s *MemoryStore) Close() error {
	return nil
}
