// Package sqlite implements store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dgallion1/docdiff/internal/compare"
	"github.com/dgallion1/docdiff/internal/doctree"
	"github.com/dgallion1/docdiff/internal/section"
	"github.com/dgallion1/docdiff/internal/store"
	"github.com/dgallion1/docdiff/internal/store/sqlite/migrations"
)

// Store persists comparisons and extractions in one SQLite file.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}
	return nil
}

// ==================== Comparisons ====================

// SaveComparison replaces the record and all of its sections.
func (s *Store) SaveComparison(ctx context.Context, c *store.Comparison) error {
	warnings, err := json.Marshal(nonNil(c.Warnings))
	if err != nil {
		return fmt.Errorf("marshalling warnings: %w", err)
	}
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO comparisons (file_pair, new_doc_id, old_doc_id, model, warnings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_pair) DO UPDATE SET
			new_doc_id = excluded.new_doc_id,
			old_doc_id = excluded.old_doc_id,
			model = excluded.model,
			warnings = excluded.warnings,
			updated_at = excluded.updated_at
	`, c.Key, c.NewDocID, c.OldDocID, c.Model, string(warnings), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("upserting comparison: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM comparison_sections WHERE file_pair = ?", c.Key); err != nil {
		return fmt.Errorf("clearing sections: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comparison_sections (
			file_pair, position, section_heading, next_section_heading, new_text, old_text,
			new_start, new_end, old_start, old_end, inserted_headings, absorbed_old_headings,
			comparison_results, result, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing section insert: %w", err)
	}
	defer stmt.Close()

	for i, sec := range c.Sections {
		inserted, _ := json.Marshal(nonNil(sec.InsertedHeadings))
		absorbed, _ := json.Marshal(nonNil(sec.AbsorbedOldHeadings))
		var result sql.NullString
		if sec.Result != nil {
			b, err := json.Marshal(sec.Result)
			if err != nil {
				return fmt.Errorf("marshalling result %d: %w", i, err)
			}
			result = sql.NullString{String: string(b), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			c.Key, i, sec.Label, sec.NextLabel, sec.NewText, sec.OldText,
			sec.NewSpan.Start, sec.NewSpan.End, sec.OldSpan.Start, sec.OldSpan.End,
			string(inserted), string(absorbed), sec.ComparisonResults, result, sec.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting section %d: %w", i, err)
		}
	}

	var created int64
	if err := tx.QueryRowContext(ctx, "SELECT created_at FROM comparisons WHERE file_pair = ?", c.Key).Scan(&created); err != nil {
		return fmt.Errorf("reading timestamps: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.CreatedAt = time.UnixMilli(created).UTC()
	c.UpdatedAt = time.UnixMilli(now.UnixMilli()).UTC()
	return nil
}

// GetComparison loads a record with its sections in order.
func (s *Store) GetComparison(ctx context.Context, key string) (*store.Comparison, error) {
	var (
		c        store.Comparison
		warnings string
		created  int64
		updated  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT file_pair, new_doc_id, old_doc_id, model, warnings, created_at, updated_at
		FROM comparisons WHERE file_pair = ?
	`, key).Scan(&c.Key, &c.NewDocID, &c.OldDocID, &c.Model, &warnings, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying comparison: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &c.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshalling warnings: %w", err)
	}
	if len(c.Warnings) == 0 {
		c.Warnings = nil
	}
	c.CreatedAt = time.UnixMilli(created).UTC()
	c.UpdatedAt = time.UnixMilli(updated).UTC()

	rows, err := s.db.QueryContext(ctx, `
		SELECT section_heading, next_section_heading, new_text, old_text,
			new_start, new_end, old_start, old_end, inserted_headings, absorbed_old_headings,
			comparison_results, result, error
		FROM comparison_sections WHERE file_pair = ? ORDER BY position
	`, key)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		c.Sections = append(c.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return &c, nil
}

func scanSection(rows *sql.Rows) (store.Section, error) {
	var (
		sec      store.Section
		p        section.SegmentPair
		inserted string
		absorbed string
		result   sql.NullString
	)
	err := rows.Scan(&p.Label, &p.NextLabel, &p.NewText, &p.OldText,
		&p.NewSpan.Start, &p.NewSpan.End, &p.OldSpan.Start, &p.OldSpan.End,
		&inserted, &absorbed, &sec.ComparisonResults, &result, &sec.Error)
	if err != nil {
		return sec, fmt.Errorf("scanning section: %w", err)
	}
	if err := json.Unmarshal([]byte(inserted), &p.InsertedHeadings); err != nil {
		return sec, fmt.Errorf("unmarshalling inserted headings: %w", err)
	}
	if err := json.Unmarshal([]byte(absorbed), &p.AbsorbedOldHeadings); err != nil {
		return sec, fmt.Errorf("unmarshalling absorbed headings: %w", err)
	}
	if len(p.InsertedHeadings) == 0 {
		p.InsertedHeadings = nil
	}
	if len(p.AbsorbedOldHeadings) == 0 {
		p.AbsorbedOldHeadings = nil
	}
	if result.Valid {
		var r compare.Result
		if err := json.Unmarshal([]byte(result.String), &r); err != nil {
			return sec, fmt.Errorf("unmarshalling result: %w", err)
		}
		sec.Result = &r
	}
	sec.SegmentPair = p
	return sec, nil
}

// ListComparisons summarizes every stored comparison, newest first.
func (s *Store) ListComparisons(ctx context.Context) ([]store.ComparisonSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.file_pair, c.new_doc_id, c.old_doc_id, c.updated_at,
			COUNT(sec.position),
			COALESCE(SUM(CASE WHEN sec.error != '' THEN 1 ELSE 0 END), 0)
		FROM comparisons c
		LEFT JOIN comparison_sections sec ON sec.file_pair = c.file_pair
		GROUP BY c.file_pair
		ORDER BY c.updated_at DESC, c.file_pair
	`)
	if err != nil {
		return nil, fmt.Errorf("querying comparisons: %w", err)
	}
	defer rows.Close()

	out := []store.ComparisonSummary{}
	for rows.Next() {
		var (
			sum     store.ComparisonSummary
			updated int64
		)
		if err := rows.Scan(&sum.Key, &sum.NewDocID, &sum.OldDocID, &updated, &sum.Sections, &sum.Failed); err != nil {
			return nil, fmt.Errorf("scanning comparison: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteComparison removes a record and, by cascade, its sections.
func (s *Store) DeleteComparison(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM comparisons WHERE file_pair = ?", key)
	if err != nil {
		return fmt.Errorf("deleting comparison: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting comparison: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ==================== Extractions ====================

func (s *Store) SaveExtraction(ctx context.Context, docID string, ex *doctree.Extraction) error {
	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshalling extraction: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extractions (doc_id, data, element_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			data = excluded.data,
			element_count = excluded.element_count,
			updated_at = excluded.updated_at
	`, docID, string(data), len(ex.Elements), s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving extraction %s: %w", docID, err)
	}
	return nil
}

func (s *Store) GetExtraction(ctx context.Context, docID string) (*doctree.Extraction, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM extractions WHERE doc_id = ?", docID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying extraction %s: %w", docID, err)
	}
	return doctree.Decode(strings.NewReader(data))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
