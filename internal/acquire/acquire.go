// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads the PDFs of search results and records where
// each one was saved.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/synoptic/internal/dataset"
	"github.com/pdiddy/synoptic/internal/httputil"
	"github.com/pdiddy/synoptic/internal/logging"
	"github.com/pdiddy/synoptic/pkg/types"
)

const (
	// PDFDir is the download folder inside a results folder.
	PDFDir = "pdfs"

	// ResultsFile lists every collected paper with its download path.
	ResultsFile = "arxiv_results.csv"

	maxFilenameLen = 150
)

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int

	// Papers are the input papers with LocalPath set for every PDF on disk.
	Papers []types.Paper
}

// Total returns the total number of papers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Downloader fetches PDFs through a shared, paced client.
type Downloader struct {
	Client *httputil.Client
	Logger *zap.Logger
}

// DownloadAll saves the PDF of every paper as dir/<sanitized title>.pdf.
// Files already on disk are skipped. A failed download is counted and
// logged but never stops the batch; only a cancelled ctx does.
func (d *Downloader) DownloadAll(ctx context.Context, papers []types.Paper, dir string, w io.Writer) (BatchResult, error) {
	var result BatchResult
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	log := logging.OrNop(d.Logger)

	fmt.Fprintf(w, "Downloading %d PDF(s) to %s\n", len(papers), dir)
	for _, p := range papers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dest := filepath.Join(dir, fileName(p))
		switch {
		case p.PDFURL == "":
			log.Warn("paper has no PDF URL", zap.String("title", p.Title))
			result.Failed++
			p.LocalPath = ""
		case exists(dest):
			fmt.Fprintf(w, "skipped: %s (already exists)\n", filepath.Base(dest))
			result.Skipped++
			p.LocalPath = dest
		default:
			if err := d.downloadFile(ctx, p.PDFURL, dest); err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				log.Warn("download failed", zap.String("url", p.PDFURL), zap.Error(err))
				fmt.Fprintf(w, "failed:  %s (%v)\n", p.Title, err)
				result.Failed++
				p.LocalPath = ""
			} else {
				result.Downloaded++
				p.LocalPath = dest
			}
		}
		result.Papers = append(result.Papers, p)
	}

	fmt.Fprintf(w, "\nDownload summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// downloadFile fetches url to destPath using a temporary file.
func (d *Downloader) downloadFile(ctx context.Context, url, destPath string) error {
	resp, err := d.Client.Get(ctx, url, "application/pdf")
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFilename removes the characters \ / * ? : " < > | from name,
// collapses whitespace and truncates the result to 150 characters.
func SanitizeFilename(name string) string {
	clean := unsafeFilename.ReplaceAllString(name, "")
	clean = strings.Join(strings.Fields(clean), " ")
	if r := []rune(clean); len(r) > maxFilenameLen {
		clean = string(r[:maxFilenameLen])
	}
	return clean
}

// WriteResults writes papers to dir/arxiv_results.csv.
func WriteResults(dir string, papers []types.Paper) (string, error) {
	path := filepath.Join(dir, ResultsFile)
	if err := dataset.WriteFile(path, dataset.ArxivColumns, papers); err != nil {
		return "", err
	}
	return path, nil
}

// fileName names the PDF of p after its title, or its identifier when
// the title has no usable characters.
func fileName(p types.Paper) string {
	name := SanitizeFilename(p.Title)
	if name == "" {
		name = SanitizeFilename(p.Identifier)
	}
	if name == "" {
		name = "untitled"
	}
	return name + ".pdf"
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
