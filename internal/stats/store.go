// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats aggregates result folders into a SQLite database and
// reports the most cited papers, the most productive years and the most
// prolific authors.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/synoptic/internal/dataset"
	"github.com/pdiddy/synoptic/pkg/types"
)

// Source labels recorded for papers whose CSV has no source column.
const (
	SourceArxiv    = "ArXiv"
	SourceSemantic = "Semantic/Filtered"
)

// Store manages the statistics SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the statistics database at path and creates the
// schema if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			title_key TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			year INTEGER,
			citations INTEGER,
			authors TEXT,
			url TEXT,
			source TEXT,
			folder TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS paper_authors (
			paper_rowid INTEGER NOT NULL REFERENCES papers(rowid),
			name TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_authors_name ON paper_authors(name)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one Ingest run.
type IngestSummary struct {
	Files      int
	Added      int
	Duplicates int
	Skipped    int
}

// Total returns the number of rows read.
func (s IngestSummary) Total() int {
	return s.Added + s.Duplicates + s.Skipped
}

// TitleKey returns the deduplication key of a title: lowercased with
// runs of whitespace collapsed.
func TitleKey(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// Ingest loads every data CSV of folder. Rows without a title, or titled
// N/A, are skipped; a title already in the store is a duplicate.
func (s *Store) Ingest(ctx context.Context, folder string, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary
	files, err := dataset.DataFiles(folder)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		return summary, fmt.Errorf("no CSV files found in %s", folder)
	}
	fmt.Fprintf(w, "Analyzing %d file(s) in %s\n", len(files), folder)

	arxivFolder := strings.Contains(strings.ToLower(filepath.Base(filepath.Clean(folder))), "arxiv")
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		papers, err := dataset.ReadFile(path)
		if err != nil {
			return summary, err
		}
		source := SourceSemantic
		if arxivFolder || strings.HasPrefix(filepath.Base(path), "arxiv_") {
			source = SourceArxiv
		}
		if err := s.ingestFile(ctx, folder, source, papers, &summary); err != nil {
			return summary, fmt.Errorf("ingesting %s: %w", path, err)
		}
		summary.Files++
	}

	fmt.Fprintf(w, "added: %d, duplicates: %d, skipped: %d\n",
		summary.Added, summary.Duplicates, summary.Skipped)
	return summary, nil
}

func (s *Store) ingestFile(ctx context.Context, folder, source string, papers []types.Paper, summary *IngestSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insertPaper, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO papers (title_key, title, year, citations, authors, url, source, folder)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insertPaper.Close()

	insertAuthor, err := tx.PrepareContext(ctx,
		`INSERT INTO paper_authors (paper_rowid, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insertAuthor.Close()

	for _, p := range papers {
		title := strings.TrimSpace(p.Title)
		if title == "" || strings.EqualFold(title, "N/A") {
			summary.Skipped++
			continue
		}
		url := p.URL
		if url == "" {
			url = p.PDFURL
		}
		src := source
		if p.Source != "" {
			src = p.Source
		}

		res, err := insertPaper.ExecContext(ctx,
			TitleKey(title), title, p.Year, p.Citations,
			strings.Join(p.Authors, ", "), url, src, folder)
		if err != nil {
			return fmt.Errorf("inserting paper: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			summary.Duplicates++
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading paper id: %w", err)
		}
		for _, a := range p.Authors {
			if _, err := insertAuthor.ExecContext(ctx, id, a); err != nil {
				return fmt.Errorf("inserting author: %w", err)
			}
		}
		summary.Added++
	}
	return tx.Commit()
}
