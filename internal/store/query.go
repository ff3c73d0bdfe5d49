// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/nbo-sop/pkg/types"
)

// QueryOptions filters stored interactions. Zero fields do not filter.
type QueryOptions struct {
	// Bond matches in either atom order.
	Bond *types.Bond

	Classification types.Classification

	// MinEnergy keeps interactions with E(2) at or above this value (kcal/mol).
	MinEnergy float64

	// Report matches the report stem (file name without extension).
	Report string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// QueryResult is one stored interaction with its report.
type QueryResult struct {
	Source         string               `json:"source" yaml:"source"`
	Bond           string               `json:"bond" yaml:"bond"`
	Kind           string               `json:"kind" yaml:"kind"`
	Donor          string               `json:"donor" yaml:"donor"`
	Acceptor       string               `json:"acceptor" yaml:"acceptor"`
	Classification types.Classification `json:"classification" yaml:"classification"`
	Energy         float64              `json:"energy" yaml:"energy"`
	Line           int                  `json:"line" yaml:"line"`
	Message        string               `json:"message" yaml:"message"`
}

// Query returns interactions matching opts, strongest E(2) first.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT r.source, i.bond, i.kind, i.donor, i.acceptor, i.classification,
			i.energy, i.line, i.message
		FROM interactions i
		JOIN reports r ON r.id = i.report_id
		WHERE 1=1`)

	if opts.Bond != nil {
		qb.WriteString(` AND i.bond_key = ?`)
		args = append(args, BondKey(*opts.Bond))
	}
	if opts.Classification != "" {
		qb.WriteString(` AND i.classification = ?`)
		args = append(args, string(opts.Classification))
	}
	if opts.MinEnergy > 0 {
		qb.WriteString(` AND i.energy >= ?`)
		args = append(args, opts.MinEnergy)
	}
	if opts.Report != "" {
		qb.WriteString(` AND r.stem = ?`)
		args = append(args, opts.Report)
	}
	qb.WriteString(` ORDER BY i.energy DESC, r.source, i.rowid LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr    QueryResult
			class string
		)
		if err := rows.Scan(&qr.Source, &qr.Bond, &qr.Kind, &qr.Donor, &qr.Acceptor,
			&class, &qr.Energy, &qr.Line, &qr.Message); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		qr.Classification = types.Classification(class)
		results = append(results, qr)
	}
	return results, rows.Err()
}

// ReportSummary describes one stored report.
type ReportSummary struct {
	ID           string    `json:"id" yaml:"id"`
	Source       string    `json:"source" yaml:"source"`
	Atoms        int       `json:"atoms" yaml:"atoms"`
	Bonds        int       `json:"bonds" yaml:"bonds"`
	SectionFound bool      `json:"section_found" yaml:"section_found"`
	Warnings     int       `json:"warnings" yaml:"warnings"`
	Interactions int       `json:"interactions" yaml:"interactions"`
	AnalyzedAt   time.Time `json:"analyzed_at" yaml:"analyzed_at"`
}

// Reports lists stored reports ordered by source.
func (s *Store) Reports(ctx context.Context) ([]ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.source, r.atoms, r.bonds, r.section_found, r.warnings, r.analyzed_at,
			(SELECT count(*) FROM interactions i WHERE i.report_id = r.id)
		FROM reports r ORDER BY r.source`)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var (
			rs ReportSummary
			at string
		)
		if err := rows.Scan(&rs.ID, &rs.Source, &rs.Atoms, &rs.Bonds, &rs.SectionFound,
			&rs.Warnings, &at, &rs.Interactions); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing analyzed_at of %s: %w", rs.Source, err)
		}
		rs.AnalyzedAt = t
		out = append(out, rs)
	}
	return out, rows.Err()
}
