package draft

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists drafts in a SQLite database, one row per draft id.
type SQLiteStore struct {
	db *sql.DB
	id string
}

// OpenSQLite opens or creates the database at path and stores the draft under id.
func OpenSQLite(path, id string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes read-modify-write cycles in Set
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	schema := `
		CREATE TABLE IF NOT EXISTS drafts (
			draft_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, id: id}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) load(ctx context.Context, q queryer) ([]byte, error) {
	var state string
	err := q.QueryRowContext(ctx, `SELECT state FROM drafts WHERE draft_id = ?`, s.id).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return []byte(state), nil
}

func (s *SQLiteStore) Get(ctx context.Context, def Draft) (Draft, error) {
	data, err := s.load(ctx, s.db)
	if err != nil {
		return Draft{}, err
	}
	if data == nil {
		return def, nil
	}
	return Decode(data)
}

func (s *SQLiteStore) Set(ctx context.Context, update func(Draft) (Draft, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	data, err := s.load(ctx, tx)
	if err != nil {
		return err
	}
	current, err := Decode(data)
	if err != nil {
		return err
	}
	next, err := update(current)
	if err != nil {
		return err
	}
	encoded, err := Encode(next)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO drafts (draft_id, state, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(draft_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at`,
		s.id,
		string(encoded),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return tx.Commit()
}
