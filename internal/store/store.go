// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps classified interactions in a SQLite database so they
// can be queried across reports by bond, classification and energy.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nbo-sop/internal/export"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

const (
	// DefaultDBPath is used when the config names no database.
	DefaultDBPath = "nbo-sop.db"

	defaultMaxResults = 50
)

// Store manages the result database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the database named by cfg and ensures the schema.
func Open(cfg types.IndexConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = DefaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers from parallel batch workers.
	db.SetMaxOpenConns(1)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL UNIQUE,
			stem TEXT NOT NULL,
			atoms INTEGER NOT NULL,
			bonds INTEGER NOT NULL,
			section_found INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			analyzed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
			bond_key TEXT NOT NULL,
			bond TEXT NOT NULL,
			kind TEXT NOT NULL,
			donor TEXT NOT NULL,
			acceptor TEXT NOT NULL,
			classification TEXT NOT NULL,
			energy REAL NOT NULL,
			line INTEGER NOT NULL,
			message TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_bond ON interactions(bond_key)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_class ON interactions(classification)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_report ON interactions(report_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BondKey returns an order-independent key for b, so C2-C1 and C1-C2 match.
func BondKey(b types.Bond) string {
	x, y := b.A.String(), b.B.String()
	if y < x {
		x, y = y, x
	}
	return x + "-" + y
}

// Save stores report, replacing any earlier rows for the same source.
func (s *Store) Save(ctx context.Context, report types.Report) error {
	_, err := s.save(ctx, report, time.Now().UTC())
	return err
}

func (s *Store) save(ctx context.Context, report types.Report, at time.Time) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM interactions WHERE report_id IN (SELECT id FROM reports WHERE source = ?)`,
		report.Source); err != nil {
		return "", fmt.Errorf("deleting previous interactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE source = ?`, report.Source); err != nil {
		return "", fmt.Errorf("deleting previous report: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, source, stem, atoms, bonds, section_found, warnings, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, report.Source, export.Stem(report.Source), len(report.Atoms), len(report.Bonds),
		report.SectionFound, len(report.Warnings), at.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO interactions (report_id, bond_key, bond, kind, donor, acceptor, classification, energy, line, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range report.Groups {
		key := BondKey(g.Bond)
		for _, l := range g.Lines {
			ix := l.Interaction
			_, err := stmt.ExecContext(ctx,
				id, key, g.Bond.String(), string(ix.Kind),
				export.OrbitalString(ix.Donor, nil), export.OrbitalString(ix.Acceptor, nil),
				string(l.Classification), ix.EnergyValue, ix.Line, l.Message,
			)
			if err != nil {
				return "", fmt.Errorf("inserting interaction for %s: %w", key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing report: %w", err)
	}
	return id, nil
}
