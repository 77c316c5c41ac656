// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// QueryOptions holds parameters for ledger searches.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// CellType filters by cell type.
	CellType string

	// Kernel filters by the cell kernel.
	Kernel string

	// Source filters by converted source path.
	Source string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.CellType == "" && q.Kernel == "" && q.Source == ""
}

// Result is one matching cell.
type Result struct {
	Source         string `json:"source" yaml:"source"`
	Dest           string `json:"dest" yaml:"dest"`
	Position       int    `json:"position" yaml:"position"`
	CellType       string `json:"cell_type" yaml:"cell_type"`
	ExecutionCount *int   `json:"execution_count,omitempty" yaml:"execution_count,omitempty"`
	Kernel         string `json:"kernel,omitempty" yaml:"kernel,omitempty"`
	Content        string `json:"content" yaml:"content"`
}

// Search queries converted cells with optional full-text search and
// filters. Full-text results are ranked by relevance; filter-only results
// are ordered by source and position.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != "" && s.fts
	)

	switch {
	case useFTS:
		qb.WriteString(
			`SELECT c.source, v.dest, c.position, c.cell_type, c.execution_count, c.kernel, c.content
			FROM cells_fts
			JOIN cells c ON c.rowid = cells_fts.rowid
			JOIN conversions v ON v.source = c.source
			WHERE cells_fts MATCH ?`)
		args = append(args, opts.Query)
	default:
		qb.WriteString(
			`SELECT c.source, v.dest, c.position, c.cell_type, c.execution_count, c.kernel, c.content
			FROM cells c
			JOIN conversions v ON v.source = c.source
			WHERE 1=1`)
		if opts.Query != "" {
			qb.WriteString(` AND c.content LIKE ?`)
			args = append(args, "%"+opts.Query+"%")
		}
	}

	if opts.CellType != "" {
		qb.WriteString(` AND c.cell_type = ?`)
		args = append(args, opts.CellType)
	}
	if opts.Kernel != "" {
		qb.WriteString(` AND c.kernel = ?`)
		args = append(args, opts.Kernel)
	}
	if opts.Source != "" {
		qb.WriteString(` AND c.source = ?`)
		args = append(args, opts.Source)
	}

	if useFTS {
		qb.WriteString(` ORDER BY cells_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.source, c.position`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r      Result
			count  sql.NullInt64
			kernel sql.NullString
		)
		if err := rows.Scan(&r.Source, &r.Dest, &r.Position, &r.CellType, &count, &kernel, &r.Content); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if count.Valid {
			n := int(count.Int64)
			r.ExecutionCount = &n
		}
		r.Kernel = kernel.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// Conversion is one row of the conversions table.
type Conversion struct {
	Source      string    `json:"source" yaml:"source"`
	Dest        string    `json:"dest" yaml:"dest"`
	Direction   string    `json:"direction" yaml:"direction"`
	Hash        string    `json:"hash" yaml:"hash"`
	Cells       int       `json:"cells" yaml:"cells"`
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}

// Conversions lists every recorded conversion ordered by source.
func (s *Store) Conversions(ctx context.Context) ([]Conversion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, dest, direction, hash, cells, converted_at FROM conversions ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		var (
			c  Conversion
			at string
		)
		if err := rows.Scan(&c.Source, &c.Dest, &c.Direction, &c.Hash, &c.Cells, &at); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		c.ConvertedAt, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, c)
	}
	return out, rows.Err()
}
