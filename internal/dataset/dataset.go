// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes the CSV files that flow between
// pipeline stages.
// Implements: header-tolerant CSV reading, data-file selection, CSV output.
//
// Search, filter and analysis stages all exchange plain CSV. Producers
// disagree on header case and naming (Title vs title, summary vs
// Abstract), so every header is mapped onto a canonical field before
// rows become types.Paper values.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/synoptic/pkg/types"
)

// Canonical field names that headers are mapped onto.
const (
	FieldIdentifier = "identifier"
	FieldTitle      = "title"
	FieldAuthors    = "authors"
	FieldYear       = "year"
	FieldCitations  = "citations"
	FieldURL        = "url"
	FieldPDFURL     = "pdf_url"
	FieldLocalPath  = "local_path"
	FieldAbstract   = "abstract"
	FieldQuery      = "query"
	FieldSource     = "source"
	FieldDecision   = "decision"
	FieldScore      = "score"
)

// aliases maps a lowercased header onto its canonical field.
var aliases = map[string]string{
	"id":              FieldIdentifier,
	"identifier":      FieldIdentifier,
	"entry_id":        FieldIdentifier,
	"paperid":         FieldIdentifier,
	"title":           FieldTitle,
	"authors":         FieldAuthors,
	"author":          FieldAuthors,
	"year":            FieldYear,
	"citations":       FieldCitations,
	"citationcount":   FieldCitations,
	"citation_count":  FieldCitations,
	"url":             FieldURL,
	"pdf_url":         FieldPDFURL,
	"local_path":      FieldLocalPath,
	"local_pdf_copy":  FieldLocalPath,
	"file":            FieldLocalPath,
	"abstract":        FieldAbstract,
	"summary":         FieldAbstract,
	"query":           FieldQuery,
	"query_origin":    FieldQuery,
	"source":          FieldSource,
	"ai_decision":     FieldDecision,
	"relevance_score": FieldScore,
}

// Column layouts written by the pipeline stages.
var (
	SearchColumns = []string{"Query", "Title", "Year", "Citations", "Authors", "URL", "Abstract"}
	ArxivColumns  = []string{"title", "year", "authors", "query_origin", "pdf_url", "local_path", "summary"}
	ScoredColumns = []string{"Title", "Year", "Citations", "Authors", "URL", "Abstract", "Relevance_Score"}
	PDFColumns    = []string{"Title", "File", "Relevance_Score"}
	AIColumns     = []string{"Title", "Year", "Citations", "Authors", "URL", "Abstract", "AI_Decision", "Local_PDF_Copy"}
)

// analysisOutputs are CSVs written by the stats stage. They describe a
// dataset rather than belong to it.
var analysisOutputs = map[string]bool{
	"productive_years.csv": true,
	"prolific_authors.csv": true,
	"top_papers.csv":       true,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Canonical returns the canonical field for a header, or "" when the
// header is not recognized.
func Canonical(header string) string {
	h := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	return aliases[h]
}

// IsDataFile reports whether name is a CSV holding paper rows.
func IsDataFile(name string) bool {
	base := filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(base), ".csv") {
		return false
	}
	if strings.HasPrefix(base, "output_statistics") {
		return false
	}
	return !analysisOutputs[strings.ToLower(base)]
}

// DataFiles returns the paths of the data CSVs directly inside dir, in
// name order.
func DataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsDataFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ReadFile parses one CSV file into papers.
func ReadFile(path string) ([]types.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	papers, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return papers, nil
}

// ReadFolder parses every data CSV in dir. Papers are returned in file
// name order, then row order.
func ReadFolder(dir string) ([]types.Paper, error) {
	files, err := DataFiles(dir)
	if err != nil {
		return nil, err
	}
	var all []types.Paper
	for _, path := range files {
		papers, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, papers...)
	}
	return all, nil
}

// Read parses CSV from r. The first record is the header. Unknown
// columns are ignored; short rows leave fields empty.
func Read(r io.Reader) ([]types.Paper, error) {
	br := bufio.NewReader(r)
	if b, _ := br.Peek(len(utf8BOM)); bytes.Equal(b, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = Canonical(h)
	}

	var papers []types.Paper
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(papers)+2, err)
		}
		var p types.Paper
		for i, v := range rec {
			if i < len(fields) {
				set(&p, fields[i], v)
			}
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func set(p *types.Paper, field, v string) {
	v = strings.TrimSpace(v)
	switch field {
	case FieldIdentifier:
		p.Identifier = v
	case FieldTitle:
		p.Title = v
	case FieldAuthors:
		p.Authors = SplitAuthors(v)
	case FieldYear:
		p.Year = parseInt(v)
	case FieldCitations:
		p.Citations = parseInt(v)
	case FieldURL:
		p.URL = v
	case FieldPDFURL:
		p.PDFURL = v
	case FieldLocalPath:
		p.LocalPath = v
	case FieldAbstract:
		p.Abstract = v
	case FieldQuery:
		p.Query = v
	case FieldSource:
		p.Source = v
	case FieldDecision:
		p.Decision = v
	case FieldScore:
		p.Score = parseInt(v)
	}
}

// parseInt accepts integers and integral floats ("2021.0"). Anything
// else, including "N/A", is zero.
func parseInt(v string) int {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

// SplitAuthors splits an author list on commas and semicolons.
func SplitAuthors(v string) []string {
	var authors []string
	for _, a := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' }) {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

// Row renders p in the given column layout.
func Row(p types.Paper, columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = value(p, Canonical(c))
	}
	return row
}

func value(p types.Paper, field string) string {
	switch field {
	case FieldIdentifier:
		return p.Identifier
	case FieldTitle:
		return p.Title
	case FieldAuthors:
		return strings.Join(p.Authors, ", ")
	case FieldYear:
		return optionalInt(p.Year)
	case FieldCitations:
		return strconv.Itoa(p.Citations)
	case FieldURL:
		return p.URL
	case FieldPDFURL:
		return p.PDFURL
	case FieldLocalPath:
		return p.LocalPath
	case FieldAbstract:
		return p.Abstract
	case FieldQuery:
		return p.Query
	case FieldSource:
		return p.Source
	case FieldDecision:
		return p.Decision
	case FieldScore:
		return strconv.Itoa(p.Score)
	}
	return ""
}

func optionalInt(n int) string {
	if n == 0 {
		return "N/A"
	}
	return strconv.Itoa(n)
}
