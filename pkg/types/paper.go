// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the synoptic pipeline.
// Implements: search results (Paper), filter tiers and run identity
// (Tier, FilterType, DatasetIdentity), cross-validation reports
// (Comparison), and stage configuration.
package types

// Paper is one row of a search result or filter output CSV. The same shape
// is used whether the row came from Semantic Scholar, arXiv, or an earlier
// filter run.
type Paper struct {
	// Identifier is the source ID (Semantic Scholar paperId or arXiv ID).
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year; zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Citations is the citation count; arXiv does not report one.
	Citations int `json:"citations" yaml:"citations"`

	// URL is the landing page of the paper.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PDFURL is a direct PDF link when the source provides one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// LocalPath is the downloaded PDF on disk, if any.
	LocalPath string `json:"local_path,omitempty" yaml:"local_path,omitempty"`

	// Abstract is the paper abstract or arXiv summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Query is the expanded query that found the paper.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// Source identifies the backend (e.g. "semantic_scholar", "arxiv").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Decision is the AI_Decision column of an AI filter run.
	Decision string `json:"decision,omitempty" yaml:"decision,omitempty"`

	// Score is the Relevance_Score column of a regex filter run.
	Score int `json:"score,omitempty" yaml:"score,omitempty"`
}

// Text returns the title and abstract joined for relevance scoring.
func (p Paper) Text() string {
	if p.Abstract == "" {
		return p.Title
	}
	return p.Title + " " + p.Abstract
}
