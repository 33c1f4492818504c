// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/synoptic/internal/crossval"
	"github.com/pdiddy/synoptic/internal/dataset"
	"github.com/pdiddy/synoptic/internal/llm"
	"github.com/pdiddy/synoptic/pkg/types"
)

type decision int

const (
	decisionSkipped decision = iota
	decisionNo
	decisionYes
	decisionFailed
)

// AI asks judge about every row of the input folder's data CSVs that has
// both a title and an abstract. Approved rows are written to
// llama_filtered_<input>/llama_filtered_articles.csv, and their local
// PDFs, when present, are copied into approved_pdfs/.
func AI(ctx context.Context, opts Options, judge llm.Judge, w io.Writer) (Summary, error) {
	var s Summary
	if judge == nil {
		return s, errors.New("no AI judge configured")
	}

	papers, err := dataset.ReadFolder(opts.Input)
	if err != nil {
		return s, err
	}
	if len(papers) == 0 {
		return s, fmt.Errorf("no article rows found in %s", opts.Input)
	}
	fmt.Fprintf(w, "Screening %d row(s) from %s\n", len(papers), opts.Input)

	log := opts.logger()
	decisions := make([]decision, len(papers))
	err = forEach(ctx, opts.Config.Workers, len(papers), func(i int) {
		p := papers[i]
		if p.Title == "" || p.Abstract == "" {
			decisions[i] = decisionSkipped
			return
		}
		ok, err := judge.Judge(ctx, p.Title, p.Abstract)
		switch {
		case err != nil:
			log.Warn("AI judge failed", zap.String("title", p.Title), zap.Error(err))
			decisions[i] = decisionFailed
		case ok:
			decisions[i] = decisionYes
		default:
			decisions[i] = decisionNo
		}
	})
	if err != nil {
		return s, err
	}

	s.OutputDir = filepath.Join(opts.workDir(), AIOutputDir+filepath.Base(filepath.Clean(opts.Input)))
	var (
		approved []types.Paper
		titles   []string
		copied   int
	)
	for i, d := range decisions {
		p := papers[i]
		if p.Title != "" {
			titles = append(titles, p.Title)
		}
		switch d {
		case decisionSkipped:
			s.Skipped++
			continue
		case decisionFailed:
			s.Failed++
			continue
		case decisionNo:
			s.Rejected++
			continue
		}

		s.Approved++
		p.Decision = "YES"
		if p.URL == "" {
			p.URL = p.PDFURL
		}
		src := resolveLocal(opts.Input, p.LocalPath)
		p.LocalPath = ""
		if src != "" {
			dst := filepath.Join(s.OutputDir, approvedPDFDir, filepath.Base(src))
			if err := copyFile(src, dst); err != nil {
				log.Warn("could not copy approved PDF", zap.String("file", src), zap.Error(err))
			} else {
				p.LocalPath = dst
				copied++
			}
		}
		approved = append(approved, p)
	}

	if err := dataset.WriteFile(filepath.Join(s.OutputDir, crossval.AIResultsFile), dataset.AIColumns, approved); err != nil {
		return s, err
	}

	fmt.Fprintf(w, "\nAI summary: %d approved, %d rejected, %d skipped, %d failed (total: %d)\n",
		s.Approved, s.Rejected, s.Skipped, s.Failed, s.Total())
	if copied > 0 {
		fmt.Fprintf(w, "PDFs copied: %d\n", copied)
	}
	fmt.Fprintf(w, "Results saved in %s\n", filepath.Join(s.OutputDir, crossval.AIResultsFile))

	finish(opts, &s, types.FilterAI, titles, w)
	return s, nil
}

// resolveLocal returns the existing file named by path, tried as given
// and then relative to the input folder. It returns "" when neither
// exists.
func resolveLocal(input, path string) string {
	if path == "" {
		return ""
	}
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.Join(input, path))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
