// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records conversions in a SQLite database so that unchanged
// sources can be skipped and converted cells can be searched.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/sos-convert/pkg/types"
)

const (
	dbFile            = "ledger.db"
	defaultMaxResults = 20
)

// Store manages the ledger SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int

	// fts is false when the SQLite build lacks FTS5; Search then falls
	// back to substring matching.
	fts bool
}

// Open opens or creates the ledger database at cfg.Dir/ledger.db and
// creates the schema if it does not exist.
func Open(cfg types.LedgerConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
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

// Dir returns the directory holding the database.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			source TEXT PRIMARY KEY,
			dest TEXT NOT NULL,
			direction TEXT NOT NULL,
			hash TEXT NOT NULL,
			cells INTEGER NOT NULL,
			converted_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cells (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL REFERENCES conversions(source) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			cell_type TEXT NOT NULL,
			execution_count INTEGER,
			kernel TEXT,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cells_source ON cells(source)`,
		`CREATE INDEX IF NOT EXISTS idx_cells_kernel ON cells(kernel)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='cells_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE cells_fts USING fts5(content, content=cells, content_rowid=rowid)`,
		`CREATE TRIGGER cells_ai AFTER INSERT ON cells BEGIN
			INSERT INTO cells_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
		`CREATE TRIGGER cells_ad AFTER DELETE ON cells BEGIN
			INSERT INTO cells_fts(cells_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		END`,
		`CREATE TRIGGER cells_au AFTER UPDATE ON cells BEGIN
			INSERT INTO cells_fts(cells_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			INSERT INTO cells_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
	}
	if _, err := s.db.Exec(ftsStatements[0]); err != nil {
		if strings.Contains(err.Error(), "no such module: fts5") {
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}
	for _, stmt := range ftsStatements[1:] {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	s.fts = true
	return nil
}

// Hash returns the hash stored for a conversion, "sha256:<hex>", over the
// source content followed by each setting that shapes the output. Any
// change of content or settings changes the hash.
func Hash(data []byte, settings ...string) string {
	h := sha256.New()
	h.Write(data)
	for _, s := range settings {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

// Record describes one completed conversion.
type Record struct {
	Source      string
	Dest        string
	Direction   string
	Hash        string
	ConvertedAt time.Time

	// Cells are the cells of the converted document.
	Cells []types.Cell
}

// Unchanged reports whether source was last converted to dest with the
// given hash of content and settings.
func (s *Store) Unchanged(ctx context.Context, source, dest, hash string) (bool, error) {
	var storedDest, storedHash string
	err := s.db.QueryRowContext(ctx,
		`SELECT dest, hash FROM conversions WHERE source = ?`, source,
	).Scan(&storedDest, &storedHash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", source, err)
	}
	return storedDest == dest && storedHash == hash, nil
}

// Record stores rec, replacing any earlier conversion of the same source.
func (s *Store) Record(ctx context.Context, rec Record) error {
	convertedAt := rec.ConvertedAt
	if convertedAt.IsZero() {
		convertedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cells WHERE source = ?`, rec.Source); err != nil {
		return fmt.Errorf("deleting old cells: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversions (source, dest, direction, hash, cells, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
			dest=excluded.dest, direction=excluded.direction, hash=excluded.hash,
			cells=excluded.cells, converted_at=excluded.converted_at`,
		rec.Source, rec.Dest, rec.Direction, rec.Hash, len(rec.Cells),
		convertedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting conversion: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cells (source, position, cell_type, execution_count, kernel, content)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range rec.Cells {
		var count sql.NullInt64
		if n, ok := c.Count(); ok {
			count = sql.NullInt64{Int64: int64(n), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			rec.Source, i, string(c.Type), count, c.Kernel(), c.Text(),
		); err != nil {
			return fmt.Errorf("inserting cell %d: %w", i, err)
		}
	}

	return tx.Commit()
}
