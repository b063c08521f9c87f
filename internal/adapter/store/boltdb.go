package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"

	"clinicsearch/internal/domain"
)

var (
	entityBuckets = map[domain.EntityType][]byte{
		domain.TypeTreatment: []byte("treatments"),
		domain.TypeProduct:   []byte("products"),
		domain.TypeDoctor:    []byte("doctors"),
		domain.TypeClinic:    []byte("clinics"),
	}
	// One bucket per type for serialized vectors, keyed by entity id.
	// A missing key is the analog of a NULL embedding column.
	embeddingBuckets = map[domain.EntityType][]byte{
		domain.TypeTreatment: []byte("treatment_embeddings"),
		domain.TypeProduct:   []byte("product_embeddings"),
		domain.TypeDoctor:    []byte("doctor_embeddings"),
		domain.TypeClinic:    []byte("clinic_embeddings"),
	}
)

// BoltStore is the embedded EntityStore, backed by a single bbolt file.
type BoltStore struct {
	db  *bbolt.DB
	log zerolog.Logger
}

func NewBoltStore(path string, log zerolog.Logger) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, t := range domain.Types() {
			if _, err := tx.CreateBucketIfNotExists(entityBuckets[t]); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", entityBuckets[t], err)
			}
			if _, err := tx.CreateBucketIfNotExists(embeddingBuckets[t]); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", embeddingBuckets[t], err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, log: log}, nil
}

func (s *BoltStore) Put(_ context.Context, e domain.Entity) error {
	if e.EntityID() == "" {
		return fmt.Errorf("entity id is required")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(entityBuckets[e.Type()]).Put([]byte(e.EntityID()), data)
	})
}

func (s *BoltStore) Get(_ context.Context, t domain.EntityType, id string) (domain.Entity, error) {
	var entity domain.Entity
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(entityBuckets[t]).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s %q", domain.ErrNotFound, t, id)
		}

		e, err := decodeEntity(t, data)
		if err != nil {
			return err
		}

		if raw := tx.Bucket(embeddingBuckets[t]).Get([]byte(id)); raw != nil {
			vec, err := DecodeVector(raw)
			if err != nil {
				s.log.Warn().Err(err).Str("type", string(t)).Str("id", id).
					Msg("stored vector is undecodable")
			} else {
				e.SetVector(vec)
			}
		}

		entity = e
		return nil
	})
	return entity, err
}

func (s *BoltStore) ListEmbedded(_ context.Context, t domain.EntityType) ([]domain.Entity, error) {
	var entities []domain.Entity
	err := s.db.View(func(tx *bbolt.Tx) error {
		embeddings := tx.Bucket(embeddingBuckets[t])
		return tx.Bucket(entityBuckets[t]).ForEach(func(k, v []byte) error {
			raw := embeddings.Get(k)
			if raw == nil {
				return nil
			}
			vec, err := DecodeVector(raw)
			if err != nil || len(vec) == 0 {
				s.log.Warn().Err(err).Str("type", string(t)).Str("id", string(k)).
					Msg("skipping row with undecodable vector")
				return nil
			}
			e, err := decodeEntity(t, v)
			if err != nil {
				s.log.Warn().Err(err).Str("type", string(t)).Str("id", string(k)).
					Msg("skipping undecodable row")
				return nil
			}
			e.SetVector(vec)
			entities = append(entities, e)
			return nil
		})
	})
	return entities, err
}

func (s *BoltStore) ListMissing(_ context.Context, t domain.EntityType) ([]domain.Entity, error) {
	var entities []domain.Entity
	err := s.db.View(func(tx *bbolt.Tx) error {
		embeddings := tx.Bucket(embeddingBuckets[t])
		return tx.Bucket(entityBuckets[t]).ForEach(func(k, v []byte) error {
			if embeddings.Get(k) != nil {
				return nil
			}
			e, err := decodeEntity(t, v)
			if err != nil {
				s.log.Warn().Err(err).Str("type", string(t)).Str("id", string(k)).
					Msg("skipping undecodable row")
				return nil
			}
			entities = append(entities, e)
			return nil
		})
	})
	return entities, err
}

func (s *BoltStore) SetEmbedding(_ context.Context, t domain.EntityType, id string, vec []float32) error {
	text, err := EncodeVector(vec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(entityBuckets[t]).Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s %q", domain.ErrNotFound, t, id)
		}
		return tx.Bucket(embeddingBuckets[t]).Put([]byte(id), []byte(text))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func decodeEntity(t domain.EntityType, data []byte) (domain.Entity, error) {
	e, err := domain.NewEntity(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return e, nil
}
