// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crossval compares the papers approved by an AI filter run with
// those approved by a regex filter run over the same dataset.
// Implements: dataset identity metadata, sibling run discovery,
// approved-title extraction, agreement report.
//
// Each filter run writes a .dataset_identity.json file into its output
// folder. When a run finishes, RunComparison looks for a run of the other
// strategy whose metadata carries the same fingerprint and, if one exists,
// writes comparison_report.txt into the current output folder. Failures at
// any step degrade to a logged skip; they never fail the filter run.
package crossval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/synoptic/internal/dataset"
	"github.com/pdiddy/synoptic/internal/identity"
	"github.com/pdiddy/synoptic/internal/logging"
	"github.com/pdiddy/synoptic/pkg/types"
)

const (
	// MetadataFile holds a run's DatasetIdentity.
	MetadataFile = ".dataset_identity.json"

	// ReportFile is written into the current folder after a comparison.
	ReportFile = "comparison_report.txt"

	// AIResultsFile lists the rows an AI run approved.
	AIResultsFile = "llama_filtered_articles.csv"
)

// approvedTiers are the tiers a regex run counts as approved.
var approvedTiers = []string{"High_Relevance", "Medium_Relevance"}

// Discovery maps a filter type to glob patterns, relative to the
// validator root, that match candidate output folders of that type.
type Discovery map[types.FilterType][]string

// DefaultDiscovery returns the folder layout the filter commands write.
func DefaultDiscovery() Discovery {
	return Discovery{
		types.FilterAI:    {"llama_filtered*"},
		types.FilterRegex: {"content_filtered/*", "content_filtered_csv/*"},
	}
}

// Outcome is how a comparison attempt ended.
type Outcome string

const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeNoMatch  Outcome = "no_match"
	OutcomeCompared Outcome = "compared"
)

// Result describes one RunComparison call. Report and ReportPath are set
// only when Outcome is OutcomeCompared.
type Result struct {
	Outcome    Outcome
	Reason     string
	Report     *types.ComparisonReport
	ReportPath string
}

// Validator locates sibling runs under Root and compares them.
type Validator struct {
	// Root is the directory the Discovery patterns are relative to.
	Root string

	// Discovery overrides DefaultDiscovery when non-nil.
	Discovery Discovery

	// Logger receives skip reasons and match decisions.
	Logger *zap.Logger

	// ReportWriter, when set, receives a human-readable summary.
	ReportWriter io.Writer
}

// New returns a Validator rooted at root with the default discovery.
func New(root string, logger *zap.Logger) *Validator {
	return &Validator{Root: root, Discovery: DefaultDiscovery(), Logger: logger}
}

// SaveMetadata fingerprints sourceTitles and records the identity of a
// run in outputFolder. It returns the fingerprint.
func SaveMetadata(outputFolder string, sourceTitles []string, sourcePath string, filterType types.FilterType) (string, error) {
	id := types.DatasetIdentity{
		SourceFingerprint: identity.Fingerprint(sourceTitles),
		FilterType:        filterType,
		SourcePath:        sourcePath,
	}
	data, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("encoding dataset identity: %w", err)
	}
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", outputFolder, err)
	}
	if err := os.WriteFile(filepath.Join(outputFolder, MetadataFile), data, 0o644); err != nil {
		return "", fmt.Errorf("writing dataset identity: %w", err)
	}
	return id.SourceFingerprint, nil
}

// SaveFolderMetadata fingerprints the titles found in inputFolder and
// records the identity in outputFolder.
func SaveFolderMetadata(outputFolder, inputFolder string, filterType types.FilterType) (string, error) {
	titles, err := identity.FolderTitles(inputFolder)
	if err != nil {
		return "", fmt.Errorf("fingerprinting %s: %w", inputFolder, err)
	}
	return SaveMetadata(outputFolder, titles, inputFolder, filterType)
}

// LoadMetadata reads the identity recorded in folder.
func LoadMetadata(folder string) (types.DatasetIdentity, error) {
	var id types.DatasetIdentity
	data, err := os.ReadFile(filepath.Join(folder, MetadataFile))
	if err != nil {
		return id, fmt.Errorf("reading dataset identity: %w", err)
	}
	if err := json.Unmarshal(data, &id); err != nil {
		return id, fmt.Errorf("decoding dataset identity: %w", err)
	}
	if id.SourceFingerprint == "" {
		return id, fmt.Errorf("dataset identity in %s has no source_fingerprint", folder)
	}
	return id, nil
}

// RunComparison compares the run in currentFolder against the first run
// of the other strategy with a matching fingerprint.
func (v *Validator) RunComparison(currentFolder string, currentType types.FilterType) Result {
	log := logging.OrNop(v.Logger).With(
		zap.String("folder", currentFolder),
		zap.String("filter_type", string(currentType)),
	)

	current, err := LoadMetadata(currentFolder)
	if err != nil {
		log.Info("cross-validation skipped: no readable metadata", zap.Error(err))
		return Result{Outcome: OutcomeSkipped, Reason: err.Error()}
	}

	target := currentType.Other()
	match, err := v.findMatch(currentFolder, target, current.SourceFingerprint, log)
	if err != nil {
		log.Info("cross-validation skipped: discovery failed", zap.Error(err))
		return Result{Outcome: OutcomeSkipped, Reason: err.Error()}
	}
	if match == "" {
		log.Info("no previous run of the other filter for this dataset",
			zap.String("target_type", string(target)),
			zap.String("fingerprint", current.SourceFingerprint))
		return Result{
			Outcome: OutcomeNoMatch,
			Reason:  fmt.Sprintf("no previous %s run found for this dataset", target),
		}
	}
	log.Info("matching run found", zap.String("target_folder", match))

	currentSet, err := ApprovedTitles(currentFolder, currentType)
	if err != nil {
		log.Info("cross-validation skipped: reading current approvals", zap.Error(err))
		return Result{Outcome: OutcomeSkipped, Reason: err.Error()}
	}
	targetSet, err := ApprovedTitles(match, target)
	if err != nil {
		log.Info("cross-validation skipped: reading target approvals", zap.Error(err))
		return Result{Outcome: OutcomeSkipped, Reason: err.Error()}
	}

	report := types.ComparisonReport{
		Fingerprint:   current.SourceFingerprint,
		CurrentType:   currentType,
		TargetType:    target,
		CurrentFolder: currentFolder,
		TargetFolder:  match,
		Comparison:    Compare(currentSet, targetSet),
	}

	path, err := WriteReport(currentFolder, report)
	if err != nil {
		log.Info("cross-validation skipped: writing report", zap.Error(err))
		return Result{Outcome: OutcomeSkipped, Reason: err.Error()}
	}

	if v.ReportWriter != nil {
		printSummary(v.ReportWriter, report, path)
	}
	return Result{Outcome: OutcomeCompared, Report: &report, ReportPath: path}
}

// findMatch returns the first candidate folder of type target whose
// fingerprint equals fp, or "" when there is none.
func (v *Validator) findMatch(currentFolder string, target types.FilterType, fp string, log *zap.Logger) (string, error) {
	candidates, err := v.candidates(target)
	if err != nil {
		return "", err
	}
	self := absPath(currentFolder)
	for _, c := range candidates {
		if absPath(c) == self {
			continue
		}
		id, err := LoadMetadata(c)
		if err != nil {
			log.Debug("ignoring candidate", zap.String("candidate", c), zap.Error(err))
			continue
		}
		if id.FilterType != "" && id.FilterType != target {
			continue
		}
		if id.SourceFingerprint == fp {
			return c, nil
		}
	}
	return "", nil
}

// candidates lists directories matching the discovery patterns for ft,
// sorted within each pattern and deduplicated.
func (v *Validator) candidates(ft types.FilterType) ([]string, error) {
	disc := v.Discovery
	if disc == nil {
		disc = DefaultDiscovery()
	}
	root := v.Root
	if root == "" {
		root = "."
	}

	seen := make(map[string]bool)
	var out []string
	for _, pattern := range disc[ft] {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("discovery pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// ApprovedTitles returns the normalized titles a run approved. AI runs
// approve rows whose AI_Decision is YES. Regex runs approve the High and
// Medium tiers, read from their CSVs or, when no tier CSV exists, from
// the PDF names in the tier folders.
func ApprovedTitles(folder string, ft types.FilterType) (TitleSet, error) {
	set := TitleSet{}
	switch ft {
	case types.FilterAI:
		path := filepath.Join(folder, AIResultsFile)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return set, nil
		}
		papers, err := dataset.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, p := range papers {
			if approvedDecision(p.Decision) {
				set.Add(p.Title)
			}
		}

	case types.FilterRegex:
		hasCSV := false
		for _, tier := range approvedTiers {
			path := filepath.Join(folder, tier+".csv")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			hasCSV = true
			papers, err := dataset.ReadFile(path)
			if err != nil {
				return nil, err
			}
			for _, p := range papers {
				set.Add(p.Title)
			}
		}
		if hasCSV {
			return set, nil
		}
		for _, tier := range approvedTiers {
			entries, err := os.ReadDir(filepath.Join(folder, tier))
			if err != nil {
				continue
			}
			for _, e := range entries {
				name := e.Name()
				if !e.IsDir() && strings.EqualFold(filepath.Ext(name), ".pdf") {
					set.Add(strings.TrimSuffix(name, filepath.Ext(name)))
				}
			}
		}

	default:
		return nil, fmt.Errorf("unknown filter type %q", ft)
	}
	return set, nil
}

func approvedDecision(d string) bool {
	switch strings.ToUpper(strings.TrimSpace(d)) {
	case "YES", "TRUE":
		return true
	}
	return false
}

// FormatReport renders the plain-text comparison report.
func FormatReport(r types.ComparisonReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Comparison Report: %s (Current) vs %s\n", r.CurrentType, r.TargetType)
	b.WriteString("=================================================\n")
	fmt.Fprintf(&b, "Dataset Identity (Hash): %s\n\n", r.Fingerprint)
	fmt.Fprintf(&b, "Agreement Count: %d\n", len(r.Agreement))
	fmt.Fprintf(&b, "Only in %s: %d\n", r.CurrentType, len(r.OnlyCurrent))
	fmt.Fprintf(&b, "Only in %s: %d\n", r.TargetType, len(r.OnlyTarget))
	return b.String()
}

// WriteReport writes FormatReport(r) to folder/comparison_report.txt and
// returns the path.
func WriteReport(folder string, r types.ComparisonReport) (string, error) {
	path := filepath.Join(folder, ReportFile)
	if err := os.WriteFile(path, []byte(FormatReport(r)), 0o644); err != nil {
		return "", fmt.Errorf("writing comparison report: %w", err)
	}
	return path, nil
}

func printSummary(w io.Writer, r types.ComparisonReport, path string) {
	fmt.Fprintf(w, "Comparison (%s vs %s) with %s\n", r.CurrentType, r.TargetType, r.TargetFolder)
	fmt.Fprintf(w, "  approved by %-6s %d\n", r.CurrentType, r.CurrentTotal)
	fmt.Fprintf(w, "  approved by %-6s %d\n", r.TargetType, r.TargetTotal)
	fmt.Fprintf(w, "  agreement         %d\n", len(r.Agreement))
	fmt.Fprintf(w, "  only %-12s %d\n", r.CurrentType, len(r.OnlyCurrent))
	fmt.Fprintf(w, "  only %-12s %d\n", r.TargetType, len(r.OnlyTarget))
	fmt.Fprintf(w, "Report saved to %s\n", path)
}
