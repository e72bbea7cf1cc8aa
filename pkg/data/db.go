package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	// DataFileName is the default SQLite database file name.
	DataFileName = "data.db"

	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	timeFormat = "2006-01-02T15:04:05Z"
)

var (
	//go:embed sql/*
	f embed.FS

	// ErrNotInitialized indicates store use before Open.
	ErrNotInitialized = errors.New("store not initialized")

	// ErrSnapshotNotFound indicates an unknown snapshot ID.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Store wraps the snapshot database. The backing driver is selected by
// the target: postgres:// or postgresql:// URLs use Postgres, anything
// else is treated as a SQLite file path.
type Store struct {
	db     *sql.DB
	driver string
}

// Init creates the schema for the given target if needed. Safe to call
// on every start, the DDL is idempotent.
func Init(target string) error {
	if target == "" {
		return errors.New("database target required")
	}

	s, err := Open(target)
	if err != nil {
		return fmt.Errorf("error opening database %s: %w", target, err)
	}
	defer s.Close()

	slog.Debug("ensuring db schema", "driver", s.driver)

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return fmt.Errorf("failed to read the schema creation file: %w", err)
	}

	if _, err := s.db.Exec(string(b)); err != nil {
		return fmt.Errorf("failed to create database schema in %s: %w", target, err)
	}

	return nil
}

// Open connects to the snapshot database for the given target.
func Open(target string) (*Store, error) {
	if target == "" {
		return nil, errors.New("database target required")
	}

	driver := driverSQLite
	if strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://") {
		driver = driverPostgres
	}

	conn, err := sql.Open(driver, target)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", target, err)
	}

	return &Store{db: conn, driver: driver}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders to the $N form the Postgres driver
// expects. SQLite queries pass through unchanged.
func (s *Store) rebind(q string) string {
	if s.driver != driverPostgres {
		return q
	}

	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func rollbackTransaction(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		slog.Error("error rolling back transaction", "error", err)
	}
}
