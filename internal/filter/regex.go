// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/synoptic/internal/dataset"
	"github.com/pdiddy/synoptic/internal/identity"
	"github.com/pdiddy/synoptic/internal/pdftext"
	"github.com/pdiddy/synoptic/internal/query"
	"github.com/pdiddy/synoptic/internal/relevance"
	"github.com/pdiddy/synoptic/pkg/types"
)

// tierDir returns the folder or CSV base name of a tier.
func tierDir(t types.Tier) string {
	return string(t) + "_Relevance"
}

// scored is the classification of one input document.
type scored struct {
	tier  types.Tier
	score int
}

func newClassifier(opts Options, w io.Writer) (*relevance.Classifier, error) {
	scenarios, err := query.Expand(opts.Query)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Query expands to %d scenario(s)\n", len(scenarios))
	for _, s := range scenarios {
		fmt.Fprintf(w, "  %s\n", s)
	}
	return relevance.NewClassifier(scenarios, opts.Config.MinTextLength), nil
}

// pdfFiles lists the PDFs in dir, falling back to dir/pdfs when dir holds
// none. It returns the folder the PDFs were found in.
func pdfFiles(dir string) (string, []string, error) {
	list := func(d string) ([]string, error) {
		entries, err := os.ReadDir(d)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				names = append(names, e.Name())
			}
		}
		return names, nil
	}

	names, err := list(dir)
	if err != nil {
		return "", nil, fmt.Errorf("reading input folder: %w", err)
	}
	if len(names) > 0 {
		return dir, names, nil
	}
	sub := filepath.Join(dir, "pdfs")
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		if names, err = list(sub); err != nil {
			return "", nil, fmt.Errorf("reading input folder: %w", err)
		}
		return sub, names, nil
	}
	return dir, nil, nil
}

// RegexPDF scores the text of every PDF in the input folder and copies
// each non-rejected file into its tier folder under content_filtered/.
// A PDF whose text cannot be extracted is rejected.
func RegexPDF(ctx context.Context, opts Options, ext pdftext.Extractor, w io.Writer) (Summary, error) {
	var s Summary
	classifier, err := newClassifier(opts, w)
	if err != nil {
		return s, err
	}

	pdfDir, names, err := pdfFiles(opts.Input)
	if err != nil {
		return s, err
	}
	if len(names) == 0 {
		return s, fmt.Errorf("no PDF files found in %s", opts.Input)
	}
	fmt.Fprintf(w, "Scoring %d PDF(s) from %s\n", len(names), pdfDir)

	log := opts.logger()
	results := make([]scored, len(names))
	err = forEach(ctx, opts.Config.Workers, len(names), func(i int) {
		path := filepath.Join(pdfDir, names[i])
		text, err := ext.Extract(path)
		if err != nil {
			log.Debug("text extraction failed", zap.String("file", path), zap.Error(err))
			results[i] = scored{tier: types.TierRejected}
			return
		}
		tier, score := classifier.Classify(text)
		results[i] = scored{tier: tier, score: score}
	})
	if err != nil {
		return s, err
	}

	s.OutputDir = opts.outputDir(PDFOutputDir)
	rows := make(map[types.Tier][]types.Paper)
	for i, r := range results {
		s.count(r.tier)
		if r.tier == types.TierRejected {
			continue
		}
		name := names[i]
		dst := filepath.Join(s.OutputDir, tierDir(r.tier), name)
		if err := copyFile(filepath.Join(pdfDir, name), dst); err != nil {
			return s, fmt.Errorf("copying %s: %w", name, err)
		}
		title := strings.TrimSuffix(name, filepath.Ext(name))
		rows[r.tier] = append(rows[r.tier], types.Paper{Title: title, LocalPath: name, Score: r.score})
		fmt.Fprintf(w, "%-6s %3d  %s\n", strings.ToUpper(string(r.tier)), r.score, name)
	}

	if err := writeTiers(s.OutputDir, rows, dataset.PDFColumns); err != nil {
		return s, err
	}

	titles, err := identity.FolderTitles(opts.Input)
	if err != nil || len(titles) == 0 {
		titles = make([]string, len(names))
		for i, n := range names {
			titles[i] = strings.TrimSuffix(n, filepath.Ext(n))
		}
	}
	printTiers(w, s)
	finish(opts, &s, types.FilterRegex, titles, w)
	return s, nil
}

// RegexCSV scores the title and abstract of every row in the input
// folder's data CSVs and writes one CSV per tier under
// content_filtered_csv/.
func RegexCSV(ctx context.Context, opts Options, w io.Writer) (Summary, error) {
	var s Summary
	classifier, err := newClassifier(opts, w)
	if err != nil {
		return s, err
	}

	papers, err := dataset.ReadFolder(opts.Input)
	if err != nil {
		return s, err
	}
	if len(papers) == 0 {
		return s, fmt.Errorf("no article rows found in %s", opts.Input)
	}
	fmt.Fprintf(w, "Scoring %d row(s) from %s\n", len(papers), opts.Input)

	results := make([]scored, len(papers))
	err = forEach(ctx, opts.Config.Workers, len(papers), func(i int) {
		tier, score := classifier.Classify(papers[i].Text())
		results[i] = scored{tier: tier, score: score}
	})
	if err != nil {
		return s, err
	}

	s.OutputDir = opts.outputDir(CSVOutputDir)
	rows := make(map[types.Tier][]types.Paper)
	titles := make([]string, 0, len(papers))
	for i, r := range results {
		p := papers[i]
		if p.Title != "" {
			titles = append(titles, p.Title)
		}
		s.count(r.tier)
		if r.tier == types.TierRejected {
			continue
		}
		p.Score = r.score
		if p.URL == "" {
			p.URL = p.PDFURL
		}
		rows[r.tier] = append(rows[r.tier], p)
	}

	if err := writeTiers(s.OutputDir, rows, dataset.ScoredColumns); err != nil {
		return s, err
	}
	printTiers(w, s)
	finish(opts, &s, types.FilterRegex, titles, w)
	return s, nil
}

// writeTiers writes one CSV per output tier, including empty tiers so a
// rerun never leaves stale rows behind.
func writeTiers(dir string, rows map[types.Tier][]types.Paper, columns []string) error {
	for _, t := range types.Tiers {
		path := filepath.Join(dir, tierDir(t)+".csv")
		if err := dataset.WriteFile(path, columns, rows[t]); err != nil {
			return err
		}
	}
	return nil
}

func printTiers(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nFilter summary: %d high, %d medium, %d low, %d rejected (total: %d)\n",
		s.High, s.Medium, s.Low, s.Rejected, s.Total())
	fmt.Fprintf(w, "Results saved in %s\n", s.OutputDir)
}
