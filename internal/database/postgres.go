package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// PostgresStore implements DocumentStore on a jsonb table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool to dsn and creates the documents table.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// MergeDocument upserts fields. The jsonb || operator merges top-level keys
// only; nested objects are replaced.
func (s *PostgresStore) MergeDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("error encoding document: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = documents.data || EXCLUDED.data,
			updated_at = now()`,
		collection, id, string(data))
	return err
}

func (s *PostgresStore) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data::text FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("db down: %w", err)
	}
	stat := s.pool.Stat()
	if stat.AcquiredConns() > stat.MaxConns()*8/10 {
		log.Warn().
			Int32("acquired_conns", stat.AcquiredConns()).
			Int32("max_conns", stat.MaxConns()).
			Msg("database connection pool is under heavy load")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
