// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/synoptic/internal/dataset"
)

// Report file names.
const (
	TopPapersFile       = "top_papers.csv"
	ProductiveYearsFile = "productive_years.csv"
	ProlificAuthorsFile = "prolific_authors.csv"

	// LogDir is the default root of report folders.
	LogDir = "log"
)

// Count is one entry of a frequency table.
type Count struct {
	Key string
	N   int
}

// Paper is one entry of the most cited list.
type Paper struct {
	Title     string
	Citations int
	Year      int
	Authors   string
	URL       string
	Source    string
}

// Summary is the aggregate view of the store.
type Summary struct {
	Unique    int
	Years     []Count
	Authors   []Count
	TopPapers []Paper
}

// HasCitations reports whether any listed paper has been cited.
func (s Summary) HasCitations() bool {
	for _, p := range s.TopPapers {
		if p.Citations > 0 {
			return true
		}
	}
	return false
}

// Summary returns year and author counts, most frequent first, and the
// most cited papers. Ties keep the order in which papers were ingested.
// A topN of zero or less returns every entry.
func (s *Store) Summary(ctx context.Context, topN int) (Summary, error) {
	var out Summary
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&out.Unique); err != nil {
		return out, fmt.Errorf("counting papers: %w", err)
	}

	limit := topN
	if limit <= 0 {
		limit = -1
	}

	var err error
	out.Years, err = s.counts(ctx,
		`SELECT CAST(year AS TEXT), count(*) AS n, min(rowid) AS first FROM papers
		 WHERE year > 0 GROUP BY year ORDER BY n DESC, first ASC LIMIT ?`, limit)
	if err != nil {
		return out, fmt.Errorf("counting years: %w", err)
	}
	out.Authors, err = s.counts(ctx,
		`SELECT name, count(*) AS n, min(paper_rowid) AS first FROM paper_authors
		 GROUP BY name ORDER BY n DESC, first ASC LIMIT ?`, limit)
	if err != nil {
		return out, fmt.Errorf("counting authors: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, citations, year, authors, url, source FROM papers
		 ORDER BY citations DESC, rowid ASC LIMIT ?`, limit)
	if err != nil {
		return out, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p Paper
		if err := rows.Scan(&p.Title, &p.Citations, &p.Year, &p.Authors, &p.URL, &p.Source); err != nil {
			return out, fmt.Errorf("scanning paper: %w", err)
		}
		out.TopPapers = append(out.TopPapers, p)
	}
	return out, rows.Err()
}

func (s *Store) counts(ctx context.Context, query string, limit int) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var (
			c     Count
			first int64
		)
		if err := rows.Scan(&c.Key, &c.N, &first); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReportDir returns logRoot/<base name of folder>.
func ReportDir(logRoot, folder string) string {
	return filepath.Join(logRoot, filepath.Base(filepath.Clean(folder)))
}

// WriteReports writes top_papers.csv, productive_years.csv and
// prolific_authors.csv into dir, replacing earlier reports. Empty tables
// produce no file. It returns the paths written.
func (s *Store) WriteReports(ctx context.Context, dir string) ([]string, error) {
	sum, err := s.Summary(ctx, 0)
	if err != nil {
		return nil, err
	}

	var written []string
	write := func(name string, header []string, records [][]string) error {
		if len(records) == 0 {
			return nil
		}
		path := filepath.Join(dir, name)
		cw, err := dataset.Create(path, header)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := cw.Write(rec); err != nil {
				cw.Close()
				return err
			}
		}
		if err := cw.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	papers := make([][]string, len(sum.TopPapers))
	for i, p := range sum.TopPapers {
		papers[i] = []string{p.Title, strconv.Itoa(p.Citations), p.Authors, p.URL, p.Source}
	}
	if err := write(TopPapersFile, []string{"title", "citations", "authors", "url", "source"}, papers); err != nil {
		return written, err
	}
	if err := write(ProductiveYearsFile, []string{"Year", "Article_Count"}, countRecords(sum.Years)); err != nil {
		return written, err
	}
	if err := write(ProlificAuthorsFile, []string{"Author", "Article_Count"}, countRecords(sum.Authors)); err != nil {
		return written, err
	}
	return written, nil
}

func countRecords(counts []Count) [][]string {
	out := make([][]string, len(counts))
	for i, c := range counts {
		out[i] = []string{c.Key, strconv.Itoa(c.N)}
	}
	return out
}

// PrintSummary writes the top entries of sum to w.
func PrintSummary(w io.Writer, sum Summary, top int) {
	fmt.Fprintf(w, "\nUnique articles: %d\n", sum.Unique)

	printCounts := func(title string, counts []Count) {
		fmt.Fprintf(w, "\n--- %s (Top %d) ---\n", title, top)
		if len(counts) == 0 {
			fmt.Fprintln(w, "No data to display.")
			return
		}
		for i, c := range counts {
			if i == top {
				break
			}
			fmt.Fprintf(w, "%s: %d mentions\n", c.Key, c.N)
		}
	}
	printCounts("Most Productive Years", sum.Years)
	printCounts("Most Prolific Authors", sum.Authors)

	fmt.Fprintf(w, "\n--- Top %d Most Cited Papers ---\n", top)
	if len(sum.TopPapers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}
	if !sum.HasCitations() {
		fmt.Fprintln(w, "Note: no listed paper has citation data.")
	}
	for i, p := range sum.TopPapers {
		if i == top {
			break
		}
		title := p.Title
		if r := []rune(title); len(r) > 70 {
			title = string(r[:67]) + "..."
		}
		fmt.Fprintf(w, "%d. %s\n   Citations: %d | Source: %s\n", i+1, title, p.Citations, p.Source)
	}
}
