// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synoptic/internal/filter"
	"github.com/pdiddy/synoptic/internal/llm"
	"github.com/pdiddy/synoptic/internal/pdftext"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a search result folder by relevance",
	Long: `Filter screens the papers of one result folder. The regex filters score
each document against the expansions of a boolean query and sort it into
High, Medium, Low or Rejected; the AI filter asks an LLM for a YES/NO
decision. Every run records the identity of its input so the two strategies
can be cross-validated when they ran on the same dataset.`,
}

var filterRegexPDFCmd = &cobra.Command{
	Use:   "regex-pdf <folder>",
	Short: "Score the text of every PDF and copy it into its tier folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterRegexPDF,
}

var filterRegexCSVCmd = &cobra.Command{
	Use:   "regex-csv <folder>",
	Short: "Score the title and abstract of every CSV row and write tier CSVs",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterRegexCSV,
}

var filterAICmd = &cobra.Command{
	Use:   "ai <folder>",
	Short: "Ask an LLM whether each paper fits the review",
	Long: `AI sends the title and abstract of every CSV row to an OpenAI-compatible
endpoint (Ollama, a llama.cpp server or OpenAI) and keeps the rows the model
answers YES for. Approved rows go to llama_filtered_<folder>/.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilterAI,
}

var filterFlagKeys = map[string]string{
	"work-dir":        "filter.work_dir",
	"workers":         "filter.workers",
	"min-text-length": "filter.min_text_length",
	"cross-validate":  "filter.cross_validate",
}

func init() {
	for _, c := range []*cobra.Command{filterRegexPDFCmd, filterRegexCSVCmd, filterAICmd} {
		c.Flags().String("work-dir", "", "root of the output folders (default .)")
		c.Flags().Int("workers", 0, "documents scored in parallel (default: number of CPUs)")
		c.Flags().Int("min-text-length", 0, "reject documents with less text (default 10)")
		c.Flags().Bool("cross-validate", true, "compare with a sibling run of the other strategy")
		filterCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{filterRegexPDFCmd, filterRegexCSVCmd} {
		c.Flags().String("query", "", "boolean query to score against (required)")
		_ = c.MarkFlagRequired("query")
	}
	filterRegexPDFCmd.Flags().Int("max-pages", 0, "pages of text read per PDF (default: all)")

	filterAICmd.Flags().String("persona", "", "role the model plays (default Researcher)")
	filterAICmd.Flags().String("topic", "", "literature review topic (required)")
	filterAICmd.Flags().String("criteria", "", "inclusion criteria in free text (required)")
	filterAICmd.Flags().String("model", "", "model name (default: ai.model)")
	filterAICmd.Flags().String("base-url", "", "OpenAI-compatible endpoint (default: ai.base_url)")
	_ = filterAICmd.MarkFlagRequired("topic")
	_ = filterAICmd.MarkFlagRequired("criteria")

	rootCmd.AddCommand(filterCmd)
}

func filterOptions(cmd *cobra.Command, input string) (filter.Options, error) {
	if err := bindFlags(cmd, filterFlagKeys); err != nil {
		return filter.Options{}, err
	}
	q, _ := cmd.Flags().GetString("query")
	return filter.Options{
		Query:  q,
		Input:  input,
		Config: filterConfig(),
		Logger: logger,
	}, nil
}

func runFilterRegexPDF(cmd *cobra.Command, args []string) error {
	opts, err := filterOptions(cmd, args[0])
	if err != nil {
		return err
	}
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	_, err = filter.RegexPDF(cmd.Context(), opts, pdftext.Plain{MaxPages: maxPages}, cmd.OutOrStdout())
	return err
}

func runFilterRegexCSV(cmd *cobra.Command, args []string) error {
	opts, err := filterOptions(cmd, args[0])
	if err != nil {
		return err
	}
	_, err = filter.RegexCSV(cmd.Context(), opts, cmd.OutOrStdout())
	return err
}

func runFilterAI(cmd *cobra.Command, args []string) error {
	opts, err := filterOptions(cmd, args[0])
	if err != nil {
		return err
	}

	cfg := aiConfig()
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		cfg.Model = m
	}
	if u, _ := cmd.Flags().GetString("base-url"); u != "" {
		cfg.BaseURL = u
	}
	var c llm.Criteria
	c.Persona, _ = cmd.Flags().GetString("persona")
	c.Topic, _ = cmd.Flags().GetString("topic")
	c.Criteria, _ = cmd.Flags().GetString("criteria")
	if strings.TrimSpace(c.Topic) == "" || strings.TrimSpace(c.Criteria) == "" {
		return fmt.Errorf("--topic and --criteria must not be empty")
	}

	judge, err := llm.NewOpenAIJudge(cfg, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Using model %s at %s\n", cfg.Model, cfg.BaseURL)

	s, err := filter.AI(cmd.Context(), opts, judge, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if s.Failed > 0 {
		return fmt.Errorf("%d paper(s) could not be judged", s.Failed)
	}
	return nil
}
