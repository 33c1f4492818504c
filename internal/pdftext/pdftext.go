// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from PDF files for relevance
// scoring.
// Implements: page-by-page text extraction.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor turns a PDF on disk into plain text. A scanned or corrupt
// file yields an error or empty text; callers treat both as a failed
// extraction.
type Extractor interface {
	Extract(path string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) (string, error)

// Extract calls f(path).
func (f ExtractorFunc) Extract(path string) (string, error) { return f(path) }

// Plain extracts the text layer of every page with ledongthuc/pdf.
// MaxPages bounds the pages read; zero reads all of them.
type Plain struct {
	MaxPages int
}

// Extract implements Extractor. Pages that fail to decode are skipped.
func (p Plain) Extract(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("extracting %s: malformed pdf: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n := r.NumPage()
	if p.MaxPages > 0 && n > p.MaxPages {
		n = p.MaxPages
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		s, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
