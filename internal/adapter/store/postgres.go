package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"clinicsearch/internal/domain"
)

// PostgresStore is the EntityStore used in production deployments where
// the marketplace entities live in Postgres. Each entity table carries a
// nullable embeddings TEXT column holding the serialized vector.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgresStore(ctx context.Context, databaseURL string, log zerolog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresStore{pool: pool, log: log}, nil
}

// EnsureSchema creates the entity tables if they do not exist yet.
// name_embeddings on treatments is reserved for name-only vectors and is
// not written by this subsystem.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS treatments (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			concern         TEXT,
			benefits        TEXT,
			description     TEXT,
			devices         TEXT[],
			embeddings      TEXT,
			name_embeddings TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			short_description TEXT,
			treatments        TEXT[],
			embeddings        TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS doctors (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			education  TEXT,
			treatments TEXT[],
			concerns   TEXT[],
			skin_types TEXT[],
			embeddings TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS clinics (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			address    TEXT,
			embeddings TEXT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func tableFor(t domain.EntityType) string {
	switch t {
	case domain.TypeTreatment:
		return "treatments"
	case domain.TypeProduct:
		return "products"
	case domain.TypeDoctor:
		return "doctors"
	case domain.TypeClinic:
		return "clinics"
	}
	return ""
}

func colsFor(t domain.EntityType) string {
	switch t {
	case domain.TypeTreatment:
		return "id, name, concern, benefits, description, devices, embeddings"
	case domain.TypeProduct:
		return "id, name, short_description, treatments, embeddings"
	case domain.TypeDoctor:
		return "id, name, education, treatments, concerns, skin_types, embeddings"
	case domain.TypeClinic:
		return "id, name, address, embeddings"
	}
	return ""
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntity reads one row into a typed entity plus the raw embeddings
// column, which may be NULL.
func scanEntity(t domain.EntityType, row rowScanner) (domain.Entity, *string, error) {
	var raw *string
	switch t {
	case domain.TypeTreatment:
		var e domain.Treatment
		var concern, benefits, description *string
		err := row.Scan(&e.ID, &e.Name, &concern, &benefits, &description, &e.Devices, &raw)
		if err != nil {
			return nil, nil, err
		}
		e.Concern = deref(concern)
		e.Benefits = deref(benefits)
		e.Description = deref(description)
		return &e, raw, nil
	case domain.TypeProduct:
		var e domain.Product
		var short *string
		err := row.Scan(&e.ID, &e.Name, &short, &e.Treatments, &raw)
		if err != nil {
			return nil, nil, err
		}
		e.ShortDescription = deref(short)
		return &e, raw, nil
	case domain.TypeDoctor:
		var e domain.Doctor
		var education *string
		err := row.Scan(&e.ID, &e.Name, &education, &e.Treatments, &e.Concerns, &e.SkinTypes, &raw)
		if err != nil {
			return nil, nil, err
		}
		e.Education = deref(education)
		return &e, raw, nil
	case domain.TypeClinic:
		var e domain.Clinic
		var address *string
		err := row.Scan(&e.ID, &e.Name, &address, &raw)
		if err != nil {
			return nil, nil, err
		}
		e.Address = deref(address)
		return &e, raw, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", domain.ErrInvalidEntityType, t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *PostgresStore) Put(ctx context.Context, e domain.Entity) error {
	if e.EntityID() == "" {
		return fmt.Errorf("entity id is required")
	}
	var err error
	switch v := e.(type) {
	case *domain.Treatment:
		_, err = s.pool.Exec(ctx, `INSERT INTO treatments (id, name, concern, benefits, description, devices)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET name = $2, concern = $3, benefits = $4, description = $5, devices = $6`,
			v.ID, v.Name, v.Concern, v.Benefits, v.Description, v.Devices)
	case *domain.Product:
		_, err = s.pool.Exec(ctx, `INSERT INTO products (id, name, short_description, treatments)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = $2, short_description = $3, treatments = $4`,
			v.ID, v.Name, v.ShortDescription, v.Treatments)
	case *domain.Doctor:
		_, err = s.pool.Exec(ctx, `INSERT INTO doctors (id, name, education, treatments, concerns, skin_types)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET name = $2, education = $3, treatments = $4, concerns = $5, skin_types = $6`,
			v.ID, v.Name, v.Education, v.Treatments, v.Concerns, v.SkinTypes)
	case *domain.Clinic:
		_, err = s.pool.Exec(ctx, `INSERT INTO clinics (id, name, address)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = $2, address = $3`,
			v.ID, v.Name, v.Address)
	default:
		return fmt.Errorf("%w: %T", domain.ErrInvalidEntityType, e)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", e.Type(), err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, t domain.EntityType, id string) (domain.Entity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", colsFor(t), tableFor(t))
	e, raw, err := scanEntity(t, s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %q", domain.ErrNotFound, t, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", t, err)
	}
	if raw != nil {
		vec, derr := DecodeVector(*raw)
		if derr != nil {
			s.log.Warn().Err(derr).Str("type", string(t)).Str("id", id).
				Msg("stored vector is undecodable")
		} else {
			e.SetVector(vec)
		}
	}
	return e, nil
}

func (s *PostgresStore) ListEmbedded(ctx context.Context, t domain.EntityType) ([]domain.Entity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE embeddings IS NOT NULL", colsFor(t), tableFor(t))
	return s.list(ctx, t, query, true)
}

func (s *PostgresStore) ListMissing(ctx context.Context, t domain.EntityType) ([]domain.Entity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE embeddings IS NULL", colsFor(t), tableFor(t))
	return s.list(ctx, t, query, false)
}

func (s *PostgresStore) list(ctx context.Context, t domain.EntityType, query string, withVector bool) ([]domain.Entity, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t, err)
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		e, raw, err := scanEntity(t, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t, err)
		}
		if withVector {
			if raw == nil {
				continue
			}
			vec, derr := DecodeVector(*raw)
			if derr != nil || len(vec) == 0 {
				s.log.Warn().Err(derr).Str("type", string(t)).Str("id", e.EntityID()).
					Msg("skipping row with undecodable vector")
				continue
			}
			e.SetVector(vec)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t, err)
	}
	return entities, nil
}

func (s *PostgresStore) SetEmbedding(ctx context.Context, t domain.EntityType, id string, vec []float32) error {
	text, err := EncodeVector(vec)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET embeddings = $1 WHERE id = $2", tableFor(t))
	tag, err := s.pool.Exec(ctx, query, text, id)
	if err != nil {
		return fmt.Errorf("failed to persist embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %q", domain.ErrNotFound, t, id)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
