// Package sqlite persists the salon catalog and appointment book in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"salonbook/internal/config"
	"salonbook/internal/storage"
)

var (
	ErrBuildQuery = errors.New("sqlite: failed to build query")
	ErrExecQuery  = errors.New("sqlite: failed to execute query")
	ErrScanRow    = errors.New("sqlite: failed to scan row")
)

// executor is satisfied by *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements storage.Store on a SQLite database.
type Store struct {
	db     *sql.DB
	path   string
	loc    *time.Location
	logger *zerolog.Logger
}

var _ storage.Store = (*Store)(nil)

// Open opens the database at path and creates missing tables.
func Open(path string, logger *zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &Store{db: db, path: path, loc: time.Local, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			duration INTEGER NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS professionals (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			specialties TEXT NOT NULL DEFAULT '[]'
		)`,

		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			birthday TEXT NOT NULL DEFAULT '',
			whatsapp TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT ''
		)`,

		// Appointments keep a snapshot of the referenced entities.
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			starts_at INTEGER NOT NULL,
			client_id TEXT NOT NULL,
			professional_id TEXT NOT NULL,
			service TEXT NOT NULL,
			professional TEXT NOT NULL,
			client TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			price REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			opening_time TEXT NOT NULL,
			closing_time TEXT NOT NULL,
			working_days TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_appointments_starts_at ON appointments(starts_at)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_client ON appointments(client_id, starts_at)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_professional ON appointments(professional_id, starts_at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Seed loads seed into the database when it holds no catalog yet.
// It reports whether anything was written.
func (s *Store) Seed(ctx context.Context, seed *config.Seed, now time.Time) (bool, error) {
	query, args, err := squirrel.Select("COUNT(*)").From("services").ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Seed - build count query: %v", ErrBuildQuery, err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: Seed - count services: %v", ErrScanRow, err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range seed.Services {
		if err := upsertService(ctx, tx, &seed.Services[i]); err != nil {
			return false, err
		}
	}
	for i := range seed.Professionals {
		p := seed.Professionals[i].Clone()
		if err := upsertProfessional(ctx, tx, &p); err != nil {
			return false, err
		}
	}
	for i := range seed.Clients {
		if err := upsertClient(ctx, tx, &seed.Clients[i]); err != nil {
			return false, err
		}
	}
	for _, a := range seed.ResolveAppointments(now) {
		if err := insertAppointment(ctx, tx, &a); err != nil {
			return false, err
		}
	}
	if err := saveSettings(ctx, tx, seed.SettingsOrDefault()); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}
	s.logger.Info().Int("services", len(seed.Services)).Int("appointments", len(seed.Appointments)).Msg("database seeded")
	return true, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", ErrExecQuery, err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

// Backup writes a consistent copy of the database to dest.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target %s already exists", dest)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("%w: vacuum into %s: %v", ErrExecQuery, dest, err)
	}
	return nil
}
