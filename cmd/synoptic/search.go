// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synoptic/internal/acquire"
	"github.com/pdiddy/synoptic/internal/httputil"
	"github.com/pdiddy/synoptic/internal/query"
	"github.com/pdiddy/synoptic/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search academic APIs for candidate papers",
	Long: `Search expands a boolean query and sends every expansion to an academic
API. Use a subcommand to pick the source.`,
}

var searchSemanticCmd = &cobra.Command{
	Use:   "semantic <query>",
	Short: "Search Semantic Scholar and save one CSV per query batch",
	Long: `Semantic pages through Semantic Scholar for every expansion of the query,
keeps the papers that pass the citation and year filters, and writes
<query>-<batch>.csv files plus output_statistics.csv into the output folder.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchSemantic,
}

var searchArxivCmd = &cobra.Command{
	Use:   "arxiv <query>",
	Short: "Search arXiv, download the PDFs and save arxiv_results.csv",
	Long: `Arxiv collects the results of every expansion of the query, removes
duplicates, downloads each PDF into <output>/pdfs and lists the papers in
<output>/arxiv_results.csv. arXiv reports no citation counts, so the
minimum citation filter does not apply.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchArxiv,
}

var searchFlagKeys = map[string]string{
	"batch-size":    "search.batch_size",
	"max-batches":   "search.max_batches",
	"min-citations": "search.min_citations",
	"min-year":      "search.min_year",
	"max-year":      "search.max_year",
	"delay":         "search.request_delay",
}

// defaultArxivOutput is the arxiv output folder when --output is unset.
const defaultArxivOutput = "arxiv_results"

func init() {
	for _, c := range []*cobra.Command{searchSemanticCmd, searchArxivCmd} {
		c.Flags().Int("batch-size", 0, "results per request, at most 100 (default 100)")
		c.Flags().Int("max-batches", 0, "requests per expanded query (default 10)")
		c.Flags().Int("min-citations", 0, "drop papers cited fewer times")
		c.Flags().Int("min-year", 0, "earliest publication year")
		c.Flags().Int("max-year", 0, "latest publication year")
		c.Flags().Duration("delay", 0, "minimum spacing between requests (default 3s)")
		c.Flags().String("output", "", "output folder (default: search.output_dir, or arxiv_results for arxiv)")
		searchCmd.AddCommand(c)
	}
	searchArxivCmd.Flags().Bool("no-download", false, "list the papers without downloading PDFs")

	rootCmd.AddCommand(searchCmd)
}

func expandArgs(args []string) (string, []string, error) {
	raw := strings.Join(args, " ")
	scenarios, err := query.Expand(raw)
	if err != nil {
		return raw, nil, err
	}
	if len(scenarios) == 0 {
		return raw, nil, fmt.Errorf("query %q expands to no searches", raw)
	}
	return raw, scenarios, nil
}

func runSearchSemantic(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, searchFlagKeys); err != nil {
		return err
	}
	raw, scenarios, err := expandArgs(args)
	if err != nil {
		return err
	}
	cfg := searchConfig()
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.OutputDir = out
	}

	client := httputil.NewClient(cfg.HTTPConfig, cfg.RequestDelay, logger)
	backend := &search.SemanticScholarBackend{Client: client, APIKey: cfg.SemanticScholarAPIKey}
	runner := &search.Runner{Backend: backend, Config: cfg, Logger: logger}

	w := cmd.OutOrStdout()
	res, err := runner.Run(cmd.Context(), scenarios, w)
	if err != nil {
		return err
	}

	m := search.NewManifest(raw, backend.Name(), scenarios, cfg)
	m.Summary.Total = res.Total()
	m.Summary.Kept = res.Filtered()
	m.Summary.Queries = res.Queries
	return search.WriteManifest(res.OutputDir, m)
}

func runSearchArxiv(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, searchFlagKeys); err != nil {
		return err
	}
	raw, scenarios, err := expandArgs(args)
	if err != nil {
		return err
	}
	cfg := searchConfig()
	cfg.OutputDir = defaultArxivOutput
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.OutputDir = out
	}

	client := httputil.NewClient(cfg.HTTPConfig, cfg.RequestDelay, logger)
	backend := &search.ArxivBackend{Client: client}
	runner := &search.Runner{Backend: backend, Config: cfg, Logger: logger}

	w := cmd.OutOrStdout()
	out, err := runner.Collect(cmd.Context(), scenarios, w)
	if err != nil {
		return err
	}
	if len(out.Papers) == 0 {
		return fmt.Errorf("no articles found matching the criteria")
	}

	papers := out.Papers
	var failed int
	if skip, _ := cmd.Flags().GetBool("no-download"); !skip {
		d := &acquire.Downloader{Client: client, Logger: logger}
		res, err := d.DownloadAll(cmd.Context(), papers, filepath.Join(cfg.OutputDir, acquire.PDFDir), w)
		if err != nil {
			return err
		}
		papers = res.Papers
		failed = res.Failed
	}

	path, err := acquire.WriteResults(cfg.OutputDir, papers)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "CSV saved at: %s\n", path)

	m := search.NewManifest(raw, backend.Name(), scenarios, cfg)
	m.Summary.Total = len(papers) + out.DupsRemoved
	m.Summary.Kept = len(papers)
	m.Summary.DupsRemoved = out.DupsRemoved
	m.Summary.BackendErrors = out.BackendErrors
	if err := search.WriteManifest(cfg.OutputDir, m); err != nil {
		return err
	}
	if failed > 0 {
		fmt.Fprintf(w, "%d PDF(s) could not be downloaded; see pdf_url in %s\n", failed, path)
	}
	return nil
}
