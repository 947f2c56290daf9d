package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage keeps each document as one JSON body in a SQLite table.
// Overwritten bodies are copied to document_history.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// HistoryEntry is a previous version of a document.
type HistoryEntry struct {
	ReplacedAt time.Time
	Name       string
	Body       string
	ID         int64
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and ":memory:"
	// databases exist per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Load decodes the stored body of name into v.
func (s *SQLiteStorage) Load(ctx context.Context, name string, v any) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateDocumentName(name); err != nil {
		return false, err
	}

	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query document %s: %w", name, err)
	}

	if err := json.Unmarshal([]byte(body), v); err != nil {
		return true, fmt.Errorf("failed to decode document %s: %w", name, err)
	}
	return true, nil
}

// Save upserts the whole document inside one transaction.
func (s *SQLiteStorage) Save(ctx context.Context, name string, v any) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDocumentName(name); err != nil {
		return err
	}
	if err := validateValue(v); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", name, err)
	}
	body := string(data)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var previous string
	err = tx.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&previous)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return fmt.Errorf("failed to read document %s: %w", name, err)
	case previous == body:
		err = tx.Commit()
		return err
	default:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO document_history (name, body) VALUES (?, ?)`,
			name, previous)
		if err != nil {
			return fmt.Errorf("failed to archive document %s: %w", name, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, name, body)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document %s: %w", name, err)
	}
	return nil
}

// History returns up to limit previous versions of name, newest first.
func (s *SQLiteStorage) History(ctx context.Context, name string, limit int) ([]HistoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDocumentName(name); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, body, replaced_at
		FROM document_history
		WHERE name = ?
		ORDER BY id DESC
		LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Body, &e.ReplacedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
