// Package history keeps a log of copy, save and paste operations in SQLite.
package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Import SQLite driver
)

// Kind names the operation that produced a transfer.
type Kind string

const (
	KindCopy  Kind = "copy"  // FDL placed on the clipboard or stdout
	KindSave  Kind = "save"  // FDL written to a file
	KindPaste Kind = "paste" // FDL materialized into a directory
)

// Transfer is one recorded operation.
type Transfer struct {
	ID          int64     `db:"id"`
	Kind        Kind      `db:"kind"`
	Root        string    `db:"root"`        // directory packed from or unpacked into
	Destination string    `db:"destination"` // clipboard, "-", or a file path
	Files       int       `db:"files"`
	Bytes       int64     `db:"bytes"`
	Skipped     int       `db:"skipped"`
	CreatedAt   time.Time `db:"created_at"`
}

// Migration is a named schema change applied once.
type Migration struct {
	Name string
	Up   string
}

var migrations = []Migration{
	{
		Name: "create_transfers_table",
		Up: `
			CREATE TABLE IF NOT EXISTS transfers (
				id INTEGER PRIMARY KEY,
				kind TEXT NOT NULL,
				root TEXT NOT NULL,
				destination TEXT NOT NULL,
				files INTEGER NOT NULL,
				bytes INTEGER NOT NULL,
				skipped INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL
			);
		`,
	},
	{
		Name: "index_transfers_created_at",
		Up:   `CREATE INDEX IF NOT EXISTS transfers_created_at ON transfers (created_at);`,
	},
}

// Store reads and writes transfers.
type Store struct {
	DB     *sqlx.DB
	Logger *slog.Logger
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: coherent
	db.SetMaxOpenConns(1)

	s := &Store{DB: db, Logger: logger}
	if err := s.migrate(migrations); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) migrate(ms []Migration) error {
	_, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range ms {
		var applied int
		if err := s.DB.Get(&applied, "SELECT COUNT(*) FROM migrations WHERE name = ?", m.Name); err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.Name, err)
		}
		if applied > 0 {
			continue
		}

		tx, err := s.DB.Beginx()
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.Name, err)
		}
		if _, err := tx.Exec(m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %s: %w", m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (name, applied_at) VALUES (?, ?)", m.Name, time.Now()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Name, err)
		}
		s.Logger.Debug("applied migration", "name", m.Name)
	}
	return nil
}

// Record appends a transfer and returns its ID. A zero CreatedAt is set to now.
func (s *Store) Record(t Transfer) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	result, err := s.DB.NamedExec(`
		INSERT INTO transfers (kind, root, destination, files, bytes, skipped, created_at)
		VALUES (:kind, :root, :destination, :files, :bytes, :skipped, :created_at)
	`, t)
	if err != nil {
		return 0, fmt.Errorf("failed to record transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// Recent returns up to limit transfers, newest first.
func (s *Store) Recent(limit int) ([]Transfer, error) {
	var transfers []Transfer
	err := s.DB.Select(&transfers, "SELECT * FROM transfers ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

// Get returns the transfer with the given ID.
func (s *Store) Get(id int64) (*Transfer, error) {
	var t Transfer
	if err := s.DB.Get(&t, "SELECT * FROM transfers WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get transfer %d: %w", id, err)
	}
	return &t, nil
}
