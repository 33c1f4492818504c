// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/synoptic/internal/dataset"
	"github.com/pdiddy/synoptic/internal/httputil"
	"github.com/pdiddy/synoptic/pkg/types"
)

const fakePDF = "%PDF-1.4 fake content"

func init() {
	httputil.RetryBaseDelay = 0
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/pdf/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/pdf" {
			http.Error(w, "bad accept", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte(fakePDF))
	})
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Wind Turbines: A Review", "Wind Turbines A Review"},
		{`a\b/c*d?e"f<g>h|i`, "abcdefghi"},
		{"  many   spaces\nand\tlines ", "many spaces and lines"},
		{strings.Repeat("x", 200), strings.Repeat("x", 150)},
		{strings.Repeat("é", 151), strings.Repeat("é", 150)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in))
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Title.pdf", fileName(types.Paper{Title: "Title?"}))
	assert.Equal(t, "2301.1.pdf", fileName(types.Paper{Title: "???", Identifier: "2301.1"}))
	assert.Equal(t, "untitled.pdf", fileName(types.Paper{}))
}

func TestDownloadAll(t *testing.T) {
	ts := newTestServer(t)
	dir := filepath.Join(t.TempDir(), "pdfs")

	papers := []types.Paper{
		{Title: "Wind: Part 1", PDFURL: ts.URL + "/pdf/1"},
		{Title: "Missing Paper", PDFURL: ts.URL + "/missing/2"},
		{Title: "No Link"},
	}
	d := &Downloader{Client: &httputil.Client{HTTP: ts.Client(), MaxRetries: 1}}

	var buf bytes.Buffer
	res, err := d.DownloadAll(context.Background(), papers, dir, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Downloaded)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 3, res.Total())
	assert.True(t, res.HasFailures())
	require.Len(t, res.Papers, 3)

	want := filepath.Join(dir, "Wind Part 1.pdf")
	assert.Equal(t, want, res.Papers[0].LocalPath)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(data))

	assert.Empty(t, res.Papers[1].LocalPath)
	assert.Empty(t, res.Papers[2].LocalPath)
	assert.NoFileExists(t, filepath.Join(dir, "Missing Paper.pdf"))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Contains(t, buf.String(), "Download summary: 1 downloaded, 0 skipped, 2 failed (total: 3)")
}

func TestDownloadAllSkipsExisting(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(fakePDF))
	}))
	defer ts.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "Known.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	d := &Downloader{Client: &httputil.Client{HTTP: ts.Client()}}
	var buf bytes.Buffer
	res, err := d.DownloadAll(context.Background(), []types.Paper{{Title: "Known", PDFURL: ts.URL}}, dir, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, calls)
	assert.Equal(t, existing, res.Papers[0].LocalPath)
	data, _ := os.ReadFile(existing)
	assert.Equal(t, "old", string(data))
}

func TestDownloadAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &Downloader{Client: &httputil.Client{}}
	var buf bytes.Buffer
	_, err := d.DownloadAll(ctx, []types.Paper{{Title: "A", PDFURL: "http://invalid"}}, t.TempDir(), &buf)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteResults(t *testing.T) {
	dir := t.TempDir()
	papers := []types.Paper{{
		Title:     "Wind Power",
		Year:      2022,
		Authors:   []string{"Ada Lovelace", "Alan Turing"},
		Query:     "wind",
		PDFURL:    "https://arxiv.org/pdf/2301.1",
		LocalPath: "results/pdfs/Wind Power.pdf",
		Abstract:  "About wind.",
	}}

	path, err := WriteResults(dir, papers)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ResultsFile), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "title,year,authors,query_origin,pdf_url,local_path,summary", lines[0])

	got, err := dataset.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, papers[0].Title, got[0].Title)
	assert.Equal(t, papers[0].Authors, got[0].Authors)
	assert.Equal(t, papers[0].LocalPath, got[0].LocalPath)
	assert.Equal(t, papers[0].Abstract, got[0].Abstract)
	assert.Equal(t, "wind", got[0].Query)
}
