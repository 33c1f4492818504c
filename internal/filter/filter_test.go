// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/synoptic/internal/crossval"
	"github.com/pdiddy/synoptic/internal/dataset"
	"github.com/pdiddy/synoptic/internal/pdftext"
	"github.com/pdiddy/synoptic/internal/query"
	"github.com/pdiddy/synoptic/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// plainText treats the bytes of a fake PDF as its text layer.
var plainText = pdftext.ExtractorFunc(func(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
})

// judgeFunc adapts a function to llm.Judge.
type judgeFunc func(ctx context.Context, title, abstract string) (bool, error)

func (f judgeFunc) Judge(ctx context.Context, title, abstract string) (bool, error) {
	return f(ctx, title, abstract)
}

const resultsCSV = "Query,Title,Year,Citations,Authors,URL,Abstract\n" +
	"q,Wind Turbine Energy Yield,2021,10,A. One,https://x/1,We model wind farms and their energy output.\n" +
	"q,Solar Cell Review,2020,5,B. Two,https://x/2,A review of photovoltaic energy devices.\n" +
	"q,Tidal Power,2019,1,C. Three,https://x/3,Ocean currents as a resource.\n" +
	"q,Untitled Abstract,2018,0,D. Four,https://x/4,\n"

func TestRegexPDF(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "results")
	writeFile(t, filepath.Join(in, "Alpha.pdf"), "We run dft with the vasp code on graphene.")
	writeFile(t, filepath.Join(in, "Beta.pdf"), "Only dft is mentioned in this document.")
	writeFile(t, filepath.Join(in, "Gamma.pdf"), "Nothing relevant is discussed here at all.")
	writeFile(t, filepath.Join(in, "Delta.pdf"), "dft")
	writeFile(t, filepath.Join(in, "notes.txt"), "dft vasp")

	var out bytes.Buffer
	s, err := RegexPDF(context.Background(), Options{
		Query:  "*DFT* AND *VASP*",
		Input:  in,
		Config: types.FilterConfig{WorkDir: root, Workers: 3},
	}, plainText, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, s.High)
	assert.Equal(t, 0, s.Medium)
	assert.Equal(t, 1, s.Low)
	assert.Equal(t, 2, s.Rejected)
	assert.Equal(t, 4, s.Total())
	assert.Equal(t, filepath.Join(root, PDFOutputDir, "results"), s.OutputDir)
	assert.Nil(t, s.Comparison)

	assert.FileExists(t, filepath.Join(s.OutputDir, "High_Relevance", "Alpha.pdf"))
	assert.FileExists(t, filepath.Join(s.OutputDir, "Low_Relevance", "Beta.pdf"))
	assert.NoFileExists(t, filepath.Join(s.OutputDir, "Low_Relevance", "Gamma.pdf"))

	high, err := dataset.ReadFile(filepath.Join(s.OutputDir, "High_Relevance.csv"))
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "Alpha", high[0].Title)
	assert.Equal(t, "Alpha.pdf", high[0].LocalPath)
	assert.Equal(t, 110, high[0].Score)

	medium, err := dataset.ReadFile(filepath.Join(s.OutputDir, "Medium_Relevance.csv"))
	require.NoError(t, err)
	assert.Empty(t, medium)

	id, err := crossval.LoadMetadata(s.OutputDir)
	require.NoError(t, err)
	assert.Equal(t, types.FilterRegex, id.FilterType)
	assert.Equal(t, in, id.SourcePath)

	assert.Contains(t, out.String(), "Query expands to 1 scenario(s)")
	assert.Contains(t, out.String(), "1 high, 0 medium, 1 low, 2 rejected")
}

func TestRegexPDFUsesPDFSubfolder(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "arxiv_graphene")
	writeFile(t, filepath.Join(in, "arxiv_results.csv"), "title,summary\nAlpha,x\n")
	writeFile(t, filepath.Join(in, "pdfs", "Alpha.pdf"), "graphene band gap engineering")

	s, err := RegexPDF(context.Background(), Options{
		Query:  "graphene",
		Input:  in,
		Config: types.FilterConfig{WorkDir: root},
	}, plainText, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Medium)
	assert.FileExists(t, filepath.Join(root, PDFOutputDir, "arxiv_graphene", "Medium_Relevance", "Alpha.pdf"))
}

func TestRegexPDFExtractionFailureRejects(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "results")
	writeFile(t, filepath.Join(in, "Scan.pdf"), "graphene graphene graphene")

	broken := pdftext.ExtractorFunc(func(string) (string, error) { return "", errors.New("no text layer") })
	s, err := RegexPDF(context.Background(), Options{Query: "graphene", Input: in, Config: types.FilterConfig{WorkDir: root}}, broken, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, 1, s.Total())
}

func TestRegexPDFNoPDFs(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "empty")
	require.NoError(t, os.MkdirAll(in, 0o755))

	_, err := RegexPDF(context.Background(), Options{Query: "x", Input: in, Config: types.FilterConfig{WorkDir: root}}, plainText, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF files")
}

func TestRegexInvalidQuery(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "results")
	writeFile(t, filepath.Join(in, "q-1.csv"), resultsCSV)

	_, err := RegexCSV(context.Background(), Options{Query: "(wind AND energy", Input: in, Config: types.FilterConfig{WorkDir: root}}, &bytes.Buffer{})
	require.Error(t, err)
	var pe *query.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "(", pe.Construct)
	assert.NoDirExists(t, filepath.Join(root, CSVOutputDir))
}

func TestRegexCSV(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "results")
	writeFile(t, filepath.Join(in, "q-1.csv"), resultsCSV)
	writeFile(t, filepath.Join(in, "output_statistics.csv"), "Query,Total Articles,Filtered Articles\nq,4,4\n")

	s, err := RegexCSV(context.Background(), Options{
		Query:  "*Solar* OR *Wind* AND *Energy*",
		Input:  in,
		Config: types.FilterConfig{WorkDir: root, Workers: 2},
	}, &bytes.Buffer{})
	require.NoError(t, err)

	// Wind Turbine Energy Yield: wind and energy close together.
	// Solar Cell Review: matches the "solar" scenario alone.
	assert.Equal(t, 1, s.High)
	assert.Equal(t, 1, s.Medium)
	assert.Equal(t, 0, s.Low)
	assert.Equal(t, 2, s.Rejected)
	assert.Equal(t, filepath.Join(root, CSVOutputDir, "results"), s.OutputDir)

	high, err := dataset.ReadFile(filepath.Join(s.OutputDir, "High_Relevance.csv"))
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "Wind Turbine Energy Yield", high[0].Title)
	assert.Equal(t, 110, high[0].Score)
	assert.Equal(t, 2021, high[0].Year)
	assert.Equal(t, "https://x/1", high[0].URL)

	medium, err := dataset.ReadFile(filepath.Join(s.OutputDir, "Medium_Relevance.csv"))
	require.NoError(t, err)
	require.Len(t, medium, 1)
	assert.Equal(t, "Solar Cell Review", medium[0].Title)
	assert.Equal(t, 60, medium[0].Score)
}

func TestAI(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "arxiv_wind")
	writeFile(t, filepath.Join(in, "arxiv_results.csv"),
		"title,year,authors,query_origin,pdf_url,local_path,summary\n"+
			"Wind Atlas,2022,A. One,wind,https://arxiv.org/pdf/1,pdfs/Wind Atlas.pdf,Mapping wind resources.\n"+
			"Solar Atlas,2021,B. Two,wind,https://arxiv.org/pdf/2,pdfs/Solar Atlas.pdf,Mapping sunlight.\n"+
			"No Abstract,2020,C. Three,wind,https://arxiv.org/pdf/3,,\n"+
			"Wind Loads,2019,D. Four,wind,https://arxiv.org/pdf/4,pdfs/missing.pdf,Structural wind loads.\n")
	writeFile(t, filepath.Join(in, "pdfs", "Wind Atlas.pdf"), "%PDF")
	writeFile(t, filepath.Join(in, "pdfs", "Solar Atlas.pdf"), "%PDF")

	var calls atomic.Int32
	judge := judgeFunc(func(_ context.Context, title, _ string) (bool, error) {
		calls.Add(1)
		return strings.Contains(title, "Wind"), nil
	})

	var out bytes.Buffer
	s, err := AI(context.Background(), Options{Input: in, Config: types.FilterConfig{WorkDir: root, Workers: 4}}, judge, &out)
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, s.Approved)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 0, s.Failed)
	assert.Equal(t, filepath.Join(root, "llama_filtered_arxiv_wind"), s.OutputDir)

	rows, err := dataset.ReadFile(filepath.Join(s.OutputDir, crossval.AIResultsFile))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Wind Atlas", rows[0].Title)
	assert.Equal(t, "YES", rows[0].Decision)
	assert.Equal(t, "https://arxiv.org/pdf/1", rows[0].URL)
	assert.Equal(t, filepath.Join(s.OutputDir, "approved_pdfs", "Wind Atlas.pdf"), rows[0].LocalPath)
	assert.FileExists(t, rows[0].LocalPath)
	assert.Equal(t, "Wind Loads", rows[1].Title)
	assert.Empty(t, rows[1].LocalPath)

	id, err := crossval.LoadMetadata(s.OutputDir)
	require.NoError(t, err)
	assert.Equal(t, types.FilterAI, id.FilterType)
	assert.Contains(t, out.String(), "PDFs copied: 1")
}

func TestAIJudgeFailuresAreCounted(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "results")
	writeFile(t, filepath.Join(in, "q-1.csv"), resultsCSV)

	judge := judgeFunc(func(_ context.Context, title, _ string) (bool, error) {
		if strings.HasPrefix(title, "Solar") {
			return false, errors.New("model unavailable")
		}
		return true, nil
	})
	s, err := AI(context.Background(), Options{Input: in, Config: types.FilterConfig{WorkDir: root}}, judge, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Approved)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
}

func TestAIRequiresJudge(t *testing.T) {
	_, err := AI(context.Background(), Options{Input: t.TempDir()}, nil, &bytes.Buffer{})
	require.Error(t, err)
}

func TestAICanceled(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "results")
	writeFile(t, filepath.Join(in, "q-1.csv"), resultsCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	judge := judgeFunc(func(context.Context, string, string) (bool, error) { return true, nil })
	_, err := AI(ctx, Options{Input: in, Config: types.FilterConfig{WorkDir: root}}, judge, &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCrossValidationAfterBothRuns(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "results")
	writeFile(t, filepath.Join(in, "q-1.csv"), resultsCSV)
	cfg := types.FilterConfig{WorkDir: root, CrossValidate: true}

	judge := judgeFunc(func(_ context.Context, title, _ string) (bool, error) {
		return strings.Contains(title, "Wind") || strings.Contains(title, "Tidal"), nil
	})
	aiSum, err := AI(context.Background(), Options{Input: in, Config: cfg}, judge, &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, aiSum.Comparison)
	assert.Equal(t, crossval.OutcomeNoMatch, aiSum.Comparison.Outcome)

	var out bytes.Buffer
	rxSum, err := RegexCSV(context.Background(), Options{
		Query:  "*Solar* OR *Wind* AND *Energy*",
		Input:  in,
		Config: cfg,
	}, &out)
	require.NoError(t, err)
	require.NotNil(t, rxSum.Comparison)
	require.Equal(t, crossval.OutcomeCompared, rxSum.Comparison.Outcome, rxSum.Comparison.Reason)

	r := rxSum.Comparison.Report
	assert.Equal(t, aiSum.OutputDir, r.TargetFolder)
	assert.Equal(t, []string{"windturbineenergyyield"}, r.Agreement)
	assert.Equal(t, []string{"solarcellreview"}, r.OnlyCurrent)
	assert.Equal(t, []string{"tidalpower"}, r.OnlyTarget)
	assert.FileExists(t, filepath.Join(rxSum.OutputDir, crossval.ReportFile))
	assert.Contains(t, out.String(), "Report saved to")
}
