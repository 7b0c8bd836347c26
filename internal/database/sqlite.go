package database

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore implements DocumentStore on a single SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database file and applies the schema
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// WAL lets readers run alongside the single writer
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	if err := initializeSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initializeSchema(ctx context.Context, db *sql.DB) error {
	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("error reading schema file: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}

	log.Debug().Msg("database schema initialized")
	return nil
}

// MergeDocument upserts fields with an RFC 7396 merge patch
func (s *SQLiteStore) MergeDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, json(?), ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = json_patch(documents.data, excluded.data),
			updated_at = excluded.updated_at
	`

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("error encoding document: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, query, collection, id, string(data), now, now)
	return err
}

// GetDocument retrieves a document
func (s *SQLiteStore) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	query := `SELECT data FROM documents WHERE collection = ? AND id = ?`

	var data string
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("error decoding document: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
