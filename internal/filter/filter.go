// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter runs the relevance filters over a search result folder.
// Implements: regex filtering of PDFs and CSV metadata, AI screening,
// tiered output folders, dataset identity and cross-validation hand-off.
//
// Every run reads one input folder and writes one output folder under the
// work directory:
//
//	content_filtered/<input>/       regex filter over PDFs
//	content_filtered_csv/<input>/   regex filter over CSV titles and abstracts
//	llama_filtered_<input>/         AI screening
//
// Documents are scored concurrently on an ants worker pool. Results are
// gathered by index and written in input order, so output is the same
// regardless of the pool size.
package filter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/synoptic/internal/crossval"
	"github.com/pdiddy/synoptic/internal/logging"
	"github.com/pdiddy/synoptic/pkg/types"
)

// Output folder names under the work directory.
const (
	PDFOutputDir = "content_filtered"
	CSVOutputDir = "content_filtered_csv"
	AIOutputDir  = "llama_filtered_"

	approvedPDFDir = "approved_pdfs"
)

// Options configure one filter run.
type Options struct {
	// Query is the boolean query the regex filters expand and score against.
	Query string

	// Input is the folder holding search results.
	Input string

	// Config carries the work directory and pool settings.
	Config types.FilterConfig

	// Logger receives per-document diagnostics; nil discards them.
	Logger *zap.Logger

	// Validator compares this run with a sibling run of the other
	// strategy. Nil selects crossval.New(Config.WorkDir, Logger).
	Validator *crossval.Validator
}

func (o Options) workDir() string {
	if o.Config.WorkDir == "" {
		return "."
	}
	return o.Config.WorkDir
}

func (o Options) logger() *zap.Logger {
	return logging.OrNop(o.Logger)
}

// outputDir returns parent/<base of Input>.
func (o Options) outputDir(parent string) string {
	return filepath.Join(o.workDir(), parent, filepath.Base(filepath.Clean(o.Input)))
}

// Summary counts the documents of a run by outcome.
type Summary struct {
	High     int
	Medium   int
	Low      int
	Rejected int

	// Approved counts rows the AI judge accepted.
	Approved int

	// Skipped counts rows without the fields the filter needs.
	Skipped int

	// Failed counts documents the judge or extractor could not process.
	Failed int

	// OutputDir is the folder the run wrote.
	OutputDir string

	// Comparison is the cross-validation outcome, when one was attempted.
	Comparison *crossval.Result
}

// Total returns the number of documents considered.
func (s Summary) Total() int {
	return s.High + s.Medium + s.Low + s.Rejected + s.Approved + s.Skipped + s.Failed
}

func (s *Summary) count(t types.Tier) {
	switch t {
	case types.TierHigh:
		s.High++
	case types.TierMedium:
		s.Medium++
	case types.TierLow:
		s.Low++
	default:
		s.Rejected++
	}
}

// forEach calls fn for every index in [0, n) on a pool of workers and
// waits for all calls to return. It stops submitting once ctx is done.
func forEach(ctx context.Context, workers, n int, fn func(i int)) error {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			fn(i)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submitting task: %w", err)
		}
	}
	wg.Wait()
	return ctx.Err()
}

// finish records the run identity and, when enabled, compares it with a
// sibling run. Neither step can fail the run.
func finish(opts Options, s *Summary, ft types.FilterType, titles []string, w io.Writer) {
	log := opts.logger()
	if _, err := crossval.SaveMetadata(s.OutputDir, titles, opts.Input, ft); err != nil {
		log.Warn("could not save dataset identity", zap.String("folder", s.OutputDir), zap.Error(err))
		return
	}
	if !opts.Config.CrossValidate {
		return
	}

	v := opts.Validator
	if v == nil {
		v = crossval.New(opts.workDir(), opts.Logger)
	}
	if v.ReportWriter == nil {
		vv := *v
		vv.ReportWriter = w
		v = &vv
	}
	res := v.RunComparison(s.OutputDir, ft)
	s.Comparison = &res
	if res.Outcome != crossval.OutcomeCompared {
		fmt.Fprintf(w, "cross-validation: %s\n", res.Reason)
	}
}

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
