// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic APIs for every expansion of a boolean
// query and stores the filtered results as CSV files.
//
// Implements: Semantic Scholar and arXiv backends, batch pagination,
// citation and year filters, per-query result files, run statistics and
// deduplicated collection for the download stage.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/pdiddy/synoptic/internal/dataset"
	"github.com/pdiddy/synoptic/internal/logging"
	"github.com/pdiddy/synoptic/pkg/types"
)

// Page selects one batch of results.
type Page struct {
	Offset int
	Limit  int
}

// Backend searches a single academic API. Each backend (Semantic Scholar,
// arXiv) implements this interface per the Strategy pattern.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, page Page) ([]types.Paper, error)
}

// Defaults applied when SearchConfig leaves a field zero.
const (
	DefaultBatchSize  = 100
	DefaultMaxBatches = 10
	DefaultOutputDir  = "results"

	// StatisticsFile records total and filtered counts per query.
	StatisticsFile = "output_statistics.csv"
)

// StatisticsColumns is the header of StatisticsFile.
var StatisticsColumns = []string{"Query", "Total Articles", "Filtered Articles"}

// QueryStats counts the results of one expanded query.
type QueryStats struct {
	Query    string `yaml:"query"`
	Total    int    `yaml:"total"`
	Filtered int    `yaml:"filtered"`
	Files    int    `yaml:"files"`
}

// RunResult summarizes a Run.
type RunResult struct {
	Queries   []QueryStats
	OutputDir string
}

// Total returns the number of results returned by the backend.
func (r RunResult) Total() int {
	n := 0
	for _, q := range r.Queries {
		n += q.Total
	}
	return n
}

// Filtered returns the number of results kept by the filters.
func (r RunResult) Filtered() int {
	n := 0
	for _, q := range r.Queries {
		n += q.Filtered
	}
	return n
}

// CollectOutput holds the deduplicated results of Collect.
type CollectOutput struct {
	Papers        []types.Paper
	DupsRemoved   int
	BackendErrors []string
}

// Runner pages a backend through a list of queries. Request pacing and
// retries belong to the backend's HTTP client.
type Runner struct {
	Backend Backend
	Config  types.SearchConfig
	Logger  *zap.Logger
}

func (r *Runner) batchSize() int {
	switch n := r.Config.BatchSize; {
	case n <= 0:
		return DefaultBatchSize
	case n > DefaultBatchSize:
		return DefaultBatchSize
	default:
		return n
	}
}

func (r *Runner) maxBatches() int {
	if r.Config.MaxBatches <= 0 {
		return DefaultMaxBatches
	}
	return r.Config.MaxBatches
}

func (r *Runner) outputDir() string {
	if r.Config.OutputDir == "" {
		return DefaultOutputDir
	}
	return r.Config.OutputDir
}

// Keep reports whether p passes the citation and year filters. A zero
// MinYear or MaxYear leaves that bound open; a paper without a year
// counts as year 0.
func (r *Runner) Keep(p types.Paper) bool {
	return p.Citations >= r.Config.MinCitations && r.keepYear(p)
}

func (r *Runner) keepYear(p types.Paper) bool {
	if r.Config.MinYear != 0 && p.Year < r.Config.MinYear {
		return false
	}
	if r.Config.MaxYear != 0 && p.Year > r.Config.MaxYear {
		return false
	}
	return true
}

// Run searches every query batch by batch. Each batch with surviving
// papers is written to <output>/<sanitized query>-<batch>.csv, and one
// line per query is appended to <output>/output_statistics.csv. A query
// stops at its first empty or failed batch; the error of a failed batch
// is logged, not returned.
func (r *Runner) Run(ctx context.Context, queries []string, w io.Writer) (RunResult, error) {
	res := RunResult{OutputDir: r.outputDir()}
	if len(queries) == 0 {
		return res, errors.New("no queries to search")
	}
	log := logging.OrNop(r.Logger)
	size, batches := r.batchSize(), r.maxBatches()

	fmt.Fprintf(w, "Searching %s: %d quer(ies), up to %d batch(es) of %d\n",
		r.Backend.Name(), len(queries), batches, size)

	for _, q := range queries {
		fmt.Fprintf(w, "\nSearching for articles on: %s\n", q)
		qs := QueryStats{Query: q}
		for batch := 0; batch < batches; batch++ {
			papers, err := r.Backend.Search(ctx, q, Page{Offset: batch * size, Limit: size})
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				log.Warn("search batch failed",
					zap.String("backend", r.Backend.Name()),
					zap.String("query", q),
					zap.Int("batch", batch+1),
					zap.Error(err))
				fmt.Fprintf(w, "  batch %d failed: %v\n", batch+1, err)
				break
			}
			qs.Total += len(papers)
			if len(papers) == 0 {
				fmt.Fprintln(w, "  No more articles found for this query.")
				break
			}

			var kept []types.Paper
			for _, p := range papers {
				if r.Keep(p) {
					p.Query = q
					kept = append(kept, p)
				}
			}
			qs.Filtered += len(kept)
			if len(kept) == 0 {
				fmt.Fprintf(w, "  No articles in batch %d met the filter criteria.\n", batch+1)
				continue
			}

			path := filepath.Join(res.OutputDir, BatchFileName(q, batch+1))
			if err := writeBatch(path, kept); err != nil {
				return res, err
			}
			qs.Files++
			fmt.Fprintf(w, "  %d article(s) saved, batch %d -> %s\n", len(kept), batch+1, path)
		}

		if err := appendStats(filepath.Join(res.OutputDir, StatisticsFile), qs); err != nil {
			return res, err
		}
		res.Queries = append(res.Queries, qs)
	}

	fmt.Fprintf(w, "\nFinished: %d result(s), %d kept\n", res.Total(), res.Filtered())
	return res, nil
}

// Collect gathers every batch of every query into one deduplicated list.
// Only the year bounds apply; the citation filter is ignored because
// backends like arXiv report no counts. Failed queries are recorded in
// BackendErrors and the remaining queries still run.
func (r *Runner) Collect(ctx context.Context, queries []string, w io.Writer) (CollectOutput, error) {
	var out CollectOutput
	if len(queries) == 0 {
		return out, errors.New("no queries to search")
	}
	log := logging.OrNop(r.Logger)
	size, batches := r.batchSize(), r.maxBatches()
	if r.Config.MinCitations > 0 {
		fmt.Fprintf(w, "note: %s reports no citation counts; the minimum citation filter is ignored\n", r.Backend.Name())
	}

	var all []types.Paper
	for i, q := range queries {
		fmt.Fprintf(w, "Query [%d/%d]: %s\n", i+1, len(queries), q)
		for batch := 0; batch < batches; batch++ {
			papers, err := r.Backend.Search(ctx, q, Page{Offset: batch * size, Limit: size})
			if err != nil {
				if ctx.Err() != nil {
					return out, ctx.Err()
				}
				log.Warn("search query failed", zap.String("backend", r.Backend.Name()), zap.String("query", q), zap.Error(err))
				out.BackendErrors = append(out.BackendErrors, fmt.Sprintf("%s: %v", q, err))
				fmt.Fprintf(w, "  error processing query %q: %v\n", q, err)
				break
			}
			for _, p := range papers {
				if r.keepYear(p) {
					p.Query = q
					all = append(all, p)
				}
			}
			if len(papers) < size {
				break
			}
		}
	}

	out.Papers, out.DupsRemoved = deduplicate(all)
	fmt.Fprintf(w, "Found %d unique article(s)", len(out.Papers))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
	return out, nil
}

// SanitizeQuery keeps the letters, digits, spaces, hyphens and underscores
// of q and trims trailing spaces.
func SanitizeQuery(q string) string {
	var b strings.Builder
	for _, r := range q {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// BatchFileName returns the result file name of one query batch; batch
// numbers start at 1.
func BatchFileName(query string, batch int) string {
	return SanitizeQuery(query) + "-" + strconv.Itoa(batch) + ".csv"
}

// writeBatch writes papers in the search column layout. Authors are
// separated by semicolons.
func writeBatch(path string, papers []types.Paper) error {
	cw, err := dataset.Create(path, dataset.SearchColumns)
	if err != nil {
		return err
	}
	authors := columnIndex(dataset.SearchColumns, dataset.FieldAuthors)
	for _, p := range papers {
		rec := dataset.Row(p, dataset.SearchColumns)
		if authors >= 0 {
			rec[authors] = strings.Join(p.Authors, "; ")
		}
		if err := cw.Write(rec); err != nil {
			cw.Close()
			return err
		}
	}
	return cw.Close()
}

func appendStats(path string, qs QueryStats) error {
	cw, err := dataset.Append(path, StatisticsColumns)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{qs.Query, strconv.Itoa(qs.Total), strconv.Itoa(qs.Filtered)}); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

func columnIndex(columns []string, field string) int {
	for i, c := range columns {
		if dataset.Canonical(c) == field {
			return i
		}
	}
	return -1
}

// deduplicate merges results that share an identifier or normalized title.
func deduplicate(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.Paper
	removed := 0

	for _, p := range papers {
		idKey := ""
		if p.Identifier != "" {
			idKey = "id:" + p.Identifier
		}
		titleKey := ""
		if t := normalizeTitle(p.Title); t != "" {
			titleKey = "title:" + t
		}

		idx, ok := 0, false
		if idKey != "" {
			idx, ok = seen[idKey]
		}
		if !ok && titleKey != "" {
			idx, ok = seen[titleKey]
		}
		if ok {
			mergeInto(&deduped[idx], p)
			removed++
			continue
		}

		idx = len(deduped)
		deduped = append(deduped, p)
		if idKey != "" {
			seen[idKey] = idx
		}
		if titleKey != "" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

// mergeInto fills empty fields of dst from src. The first query that
// found a paper stays its origin.
func mergeInto(dst *types.Paper, src types.Paper) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
	if src.Citations > dst.Citations {
		dst.Citations = src.Citations
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.PDFURL == "" {
		dst.PDFURL = src.PDFURL
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
