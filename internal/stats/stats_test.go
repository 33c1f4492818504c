// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index", "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func resultsFolder(t *testing.T) string {
	dir := filepath.Join(t.TempDir(), "results")
	writeFile(t, dir, "wind-1.csv",
		"Query,Title,Year,Citations,Authors,URL,Abstract\n"+
			"wind,Wind Power,2021,40,Ada Lovelace; Alan Turing,u1,a\n"+
			"wind,Blade Design,2020,5,Ada Lovelace,u2,b\n"+
			"wind,N/A,2020,99,Nobody,u3,c\n")
	writeFile(t, dir, "wind-2.csv",
		"Query,Title,Year,Citations,Authors,URL,Abstract\n"+
			"wind,  wind   POWER ,2021,40,Ada Lovelace,u1,a\n"+
			"wind,Old Mills,N/A,70,Grace Hopper,u4,d\n"+
			"wind,,2019,1,,u5,e\n")
	writeFile(t, dir, "output_statistics.csv", "Query,Total Articles,Filtered Articles\nwind,6,6\n")
	return dir
}

func TestTitleKey(t *testing.T) {
	assert.Equal(t, "wind power", TitleKey("  Wind \t POWER "))
	assert.Equal(t, "a: b", TitleKey("A:  B"))
}

func TestIngest(t *testing.T) {
	s := openStore(t)
	dir := resultsFolder(t)

	var buf bytes.Buffer
	sum, err := s.Ingest(context.Background(), dir, &buf)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Files, "statistics file is not a data file")
	assert.Equal(t, 3, sum.Added)
	assert.Equal(t, 1, sum.Duplicates)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 6, sum.Total())
	assert.Contains(t, buf.String(), "Analyzing 2 file(s)")

	// Ingesting again only finds duplicates.
	again, err := s.Ingest(context.Background(), dir, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Added)
	assert.Equal(t, 4, again.Duplicates)
}

func TestIngestErrors(t *testing.T) {
	s := openStore(t)
	var buf bytes.Buffer

	_, err := s.Ingest(context.Background(), filepath.Join(t.TempDir(), "missing"), &buf)
	assert.Error(t, err)

	_, err = s.Ingest(context.Background(), t.TempDir(), &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CSV files")
}

func TestSummary(t *testing.T) {
	s := openStore(t)
	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), resultsFolder(t), &buf)
	require.NoError(t, err)

	sum, err := s.Summary(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Unique)
	assert.Equal(t, []Count{{"2021", 1}, {"2020", 1}}, sum.Years, "papers without a year are not counted")
	assert.Equal(t, []Count{{"Ada Lovelace", 2}, {"Alan Turing", 1}, {"Grace Hopper", 1}}, sum.Authors)

	require.Len(t, sum.TopPapers, 3)
	assert.Equal(t, "Old Mills", sum.TopPapers[0].Title)
	assert.Equal(t, 70, sum.TopPapers[0].Citations)
	assert.Equal(t, "Wind Power", sum.TopPapers[1].Title)
	assert.Equal(t, "Ada Lovelace, Alan Turing", sum.TopPapers[1].Authors)
	assert.Equal(t, SourceSemantic, sum.TopPapers[1].Source)
	assert.True(t, sum.HasCitations())

	top, err := s.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, top.TopPapers, 1)
	assert.Len(t, top.Authors, 1)
	assert.Equal(t, 3, top.Unique)
}

func TestIngestArxivSource(t *testing.T) {
	s := openStore(t)
	dir := filepath.Join(t.TempDir(), "arxiv_results_wind")
	writeFile(t, dir, "arxiv_results.csv",
		"title,year,authors,query_origin,pdf_url,local_path,summary\n"+
			"Floating Wind,2023,\"Ada Lovelace, Alan Turing\",wind,https://arxiv.org/pdf/1,pdfs/a.pdf,s\n")

	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), dir, &buf)
	require.NoError(t, err)

	sum, err := s.Summary(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sum.TopPapers, 1)
	assert.Equal(t, SourceArxiv, sum.TopPapers[0].Source)
	assert.Equal(t, "https://arxiv.org/pdf/1", sum.TopPapers[0].URL)
	assert.False(t, sum.HasCitations())
}

func TestWriteReports(t *testing.T) {
	s := openStore(t)
	folder := resultsFolder(t)
	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), folder, &buf)
	require.NoError(t, err)

	dir := ReportDir(filepath.Join(t.TempDir(), LogDir), folder)
	assert.Equal(t, "results", filepath.Base(dir))

	written, err := s.WriteReports(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, written, 3)

	top, err := os.ReadFile(filepath.Join(dir, TopPapersFile))
	require.NoError(t, err)
	assert.Equal(t,
		"title,citations,authors,url,source\n"+
			"Old Mills,70,Grace Hopper,u4,Semantic/Filtered\n"+
			"Wind Power,40,\"Ada Lovelace, Alan Turing\",u1,Semantic/Filtered\n"+
			"Blade Design,5,Ada Lovelace,u2,Semantic/Filtered\n",
		string(top))

	years, err := os.ReadFile(filepath.Join(dir, ProductiveYearsFile))
	require.NoError(t, err)
	assert.Equal(t, "Year,Article_Count\n2021,1\n2020,1\n", string(years))

	authors, err := os.ReadFile(filepath.Join(dir, ProlificAuthorsFile))
	require.NoError(t, err)
	assert.Equal(t, "Author,Article_Count\nAda Lovelace,2\nAlan Turing,1\nGrace Hopper,1\n", string(authors))
}

func TestWriteReportsEmptyStore(t *testing.T) {
	s := openStore(t)
	dir := t.TempDir()
	written, err := s.WriteReports(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.NoFileExists(t, filepath.Join(dir, TopPapersFile))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, Summary{
		Unique:    1,
		Years:     []Count{{"2021", 1}},
		TopPapers: []Paper{{Title: "Wind Power", Source: SourceArxiv}},
	}, 5)
	out := buf.String()
	assert.Contains(t, out, "Unique articles: 1")
	assert.Contains(t, out, "2021: 1 mentions")
	assert.Contains(t, out, "--- Most Prolific Authors (Top 5) ---\nNo data to display.")
	assert.Contains(t, out, "Note: no listed paper has citation data.")
	assert.Contains(t, out, "1. Wind Power")
}
