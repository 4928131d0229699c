package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/donorlog/internal/donation"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - donations table with position ordering and UNIQUE(code)
const currentSchemaVersion = 1

// SQLiteStore keeps records in a SQLite database.
//
// Like the text file, the database is only created by Init or SaveAll.
// Reading a database that does not exist fails with STORAGE_READ.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens the SQLite database at path and applies the schema.
// A missing database is not created here; the store connects on first use.
// Safe to call repeatedly on the same file.
func OpenSQLite(path string) (*SQLiteStore, error) {
	s := &SQLiteStore{path: path}

	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, donation.NewStorageReadError(path, err)
	}

	if s.db, err = connect(path, false); err != nil {
		return nil, donation.NewStorageReadError(path, err)
	}
	return s, nil
}

// connect opens the database and applies pragmas and schema. Unless create
// is set the file must already exist.
func connect(path string, create bool) (*sql.DB, error) {
	mode := "rw"
	if create {
		mode = "rwc"
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode="+mode)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// One process, one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// reader returns the open database, connecting to an existing file if
// needed. A missing file is STORAGE_READ.
func (s *SQLiteStore) reader() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return nil, donation.NewStorageReadError(s.path, err)
	}
	db, err := connect(s.path, false)
	if err != nil {
		return nil, donation.NewStorageReadError(s.path, err)
	}
	s.db = db
	return db, nil
}

// writer returns the open database, creating the file and its directory if
// needed.
func (s *SQLiteStore) writer() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, donation.NewStorageWriteError(s.path, err)
	}
	db, err := connect(s.path, true)
	if err != nil {
		return nil, donation.NewStorageWriteError(s.path, err)
	}
	s.db = db
	return db, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init creates the database and its schema if none exists.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	_, err := s.writer()
	return err
}

// LoadAll returns every row ordered by position.
// A row whose birth date no longer parses fails the whole load.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]donation.Record, error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT position, code, name, national_id, birth_date, blood_type, volume
		FROM donations
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, donation.NewStorageReadError(s.path, err)
	}
	defer rows.Close()

	var records []donation.Record
	for rows.Next() {
		var (
			position int
			f        donation.Fields
		)
		if err := rows.Scan(&position, &f.Code, &f.Name, &f.NationalID, &f.BirthDate, &f.BloodType, &f.Volume); err != nil {
			return nil, donation.NewStorageReadError(s.path, err)
		}
		r, err := donation.New(f)
		if err != nil {
			return nil, donation.AtLine(err, s.path, position)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, donation.NewStorageReadError(s.path, err)
	}

	return records, nil
}

// SaveAll replaces every row with records in one transaction.
// Positions are renumbered from 1 in the given order.
func (s *SQLiteStore) SaveAll(ctx context.Context, records []donation.Record) error {
	db, err := s.writer()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM donations`); err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO donations
		(position, code, name, national_id, birth_date, blood_type, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx,
			i+1,
			r.Code,
			r.Name,
			r.NationalID,
			r.BirthDateText(),
			r.BloodType,
			r.Volume,
		); err != nil {
			return donation.NewStorageWriteError(s.path, fmt.Errorf("row %d (code %d): %w", i+1, r.Code, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. Databases written by a newer version are refused.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLiteStore) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
