package repository

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// sqlite serializes writes anyway; a single connection avoids SQLITE_BUSY
	// and keeps :memory: databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS responders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS disasters (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'ongoing',
			title TEXT NOT NULL,
			description TEXT,
			occurred_at DATETIME NOT NULL,
			location TEXT,
			lat REAL,
			long REAL,
			magnitude REAL,
			depth REAL,
			external_id TEXT UNIQUE,
			reported_by TEXT,
			cancelled_reason TEXT,
			cancelled_at DATETIME,
			cancelled_by TEXT,
			completed_at DATETIME,
			completed_by TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			disaster_id TEXT NOT NULL REFERENCES disasters(id) ON DELETE CASCADE,
			responder_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			deleted_at DATETIME
		);

		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			disaster_id TEXT NOT NULL REFERENCES disasters(id) ON DELETE CASCADE,
			reported_by TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			is_final_stage INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS victims (
			id TEXT PRIMARY KEY,
			disaster_id TEXT NOT NULL REFERENCES disasters(id) ON DELETE CASCADE,
			reported_by TEXT NOT NULL,
			nik TEXT NOT NULL,
			name TEXT NOT NULL,
			date_of_birth DATETIME NOT NULL,
			gender INTEGER NOT NULL,
			contact_info TEXT,
			description TEXT,
			is_evacuated INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS aids (
			id TEXT PRIMARY KEY,
			disaster_id TEXT NOT NULL REFERENCES disasters(id) ON DELETE CASCADE,
			reported_by TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_active
			ON assignments(disaster_id, responder_id) WHERE deleted_at IS NULL;
		CREATE INDEX IF NOT EXISTS idx_disasters_status ON disasters(status);
		CREATE INDEX IF NOT EXISTS idx_disasters_occurred_at ON disasters(occurred_at);
		CREATE INDEX IF NOT EXISTS idx_assignments_disaster_id ON assignments(disaster_id);
		CREATE INDEX IF NOT EXISTS idx_reports_disaster_id ON reports(disaster_id);
		CREATE INDEX IF NOT EXISTS idx_victims_disaster_id ON victims(disaster_id);
		CREATE INDEX IF NOT EXISTS idx_aids_disaster_id ON aids(disaster_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// isUniqueViolation matches sqlite's constraint error text; the modernc
// driver does not export a stable error type for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}
