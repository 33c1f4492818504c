// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/synoptic/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadNormalizesHeaders(t *testing.T) {
	in := "Query,Title,Year,Citations,Authors,URL,Abstract\n" +
		"graphene,Band Gaps in Graphene,2021,12,\"A. Smith, B. Jones\",https://x/1,We study gaps.\n"
	papers, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "graphene", p.Query)
	assert.Equal(t, "Band Gaps in Graphene", p.Title)
	assert.Equal(t, 2021, p.Year)
	assert.Equal(t, 12, p.Citations)
	assert.Equal(t, []string{"A. Smith", "B. Jones"}, p.Authors)
	assert.Equal(t, "https://x/1", p.URL)
	assert.Equal(t, "We study gaps.", p.Abstract)
}

func TestReadArxivLayout(t *testing.T) {
	in := "title,year,authors,query_origin,pdf_url,local_path,summary\n" +
		"Phonons,2020.0,C. Wu; D. Li,phonon,https://arxiv.org/pdf/1,pdfs/Phonons.pdf,Lattice dynamics.\n"
	papers, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Phonons", p.Title)
	assert.Equal(t, 2020, p.Year)
	assert.Equal(t, []string{"C. Wu", "D. Li"}, p.Authors)
	assert.Equal(t, "phonon", p.Query)
	assert.Equal(t, "https://arxiv.org/pdf/1", p.PDFURL)
	assert.Equal(t, "pdfs/Phonons.pdf", p.LocalPath)
	assert.Equal(t, "Lattice dynamics.", p.Abstract)
}

func TestReadToleratesBOMAndShortRows(t *testing.T) {
	in := "\ufeff\"Title\",AI_Decision,Relevance_Score,Extra\n" +
		"First,YES,110\n" +
		"Second\n"
	papers, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, papers, 2)

	assert.Equal(t, "First", papers[0].Title)
	assert.Equal(t, "YES", papers[0].Decision)
	assert.Equal(t, 110, papers[0].Score)
	assert.Equal(t, "Second", papers[1].Title)
	assert.Empty(t, papers[1].Decision)
}

func TestReadEmpty(t *testing.T) {
	papers, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestReadNonNumeric(t *testing.T) {
	papers, err := Read(strings.NewReader("title,year,citationCount\nX,N/A,\n"))
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Zero(t, papers[0].Year)
	assert.Zero(t, papers[0].Citations)
}

func TestIsDataFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"graphene-1.csv", true},
		{"arxiv_results.CSV", true},
		{"output_statistics.csv", false},
		{"output_statistics_2.csv", false},
		{"productive_years.csv", false},
		{"prolific_authors.csv", false},
		{"top_papers.csv", false},
		{"notes.txt", false},
		{"paper.pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDataFile(tt.name))
		})
	}
}

func TestReadFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b-1.csv"), "Title\nSecond\n")
	writeFile(t, filepath.Join(dir, "a-1.csv"), "title\nFirst\n")
	writeFile(t, filepath.Join(dir, "output_statistics.csv"), "Query,Total Articles,Filtered Articles\nq,1,1\n")
	writeFile(t, filepath.Join(dir, "nested", "c-1.csv"), "Title\nIgnored\n")

	papers, err := ReadFolder(dir)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "First", papers[0].Title)
	assert.Equal(t, "Second", papers[1].Title)
}

func TestReadFolderMissing(t *testing.T) {
	_, err := ReadFolder(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "High_Relevance.csv")
	papers := []types.Paper{
		{Title: "Wind, Energy", Year: 2022, Citations: 3, Authors: []string{"A", "B"}, Abstract: "Turbines \"and\" grids", Score: 110},
		{Title: "Undated", Score: 60},
	}
	require.NoError(t, WriteFile(path, ScoredColumns, papers))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "Title,Year,Citations,Authors,URL,Abstract,Relevance_Score", lines[0])
	assert.Contains(t, lines[2], "Undated,N/A,0")

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Wind, Energy", got[0].Title)
	assert.Equal(t, []string{"A", "B"}, got[0].Authors)
	assert.Equal(t, "Turbines \"and\" grids", got[0].Abstract)
	assert.Equal(t, 110, got[0].Score)
	assert.Zero(t, got[1].Year)
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output_statistics.csv")
	header := []string{"Query", "Total Articles", "Filtered Articles"}

	for _, rec := range [][]string{{"a", "10", "4"}, {"b", "7", "7"}} {
		w, err := Append(path, header)
		require.NoError(t, err)
		require.NoError(t, w.Write(rec))
		require.NoError(t, w.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Query,Total Articles,Filtered Articles\na,10,4\nb,7,7\n", string(data))
}

func TestRowUnknownColumn(t *testing.T) {
	row := Row(types.Paper{Title: "T", LocalPath: "x.pdf"}, []string{"Title", "Nope", "File"})
	assert.Equal(t, []string{"T", "", "x.pdf"}, row)
}
