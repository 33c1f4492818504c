// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Tier is the relevance bucket a document lands in after scoring.
type Tier string

const (
	TierHigh     Tier = "High"
	TierMedium   Tier = "Medium"
	TierLow      Tier = "Low"
	TierRejected Tier = "Rejected"
)

// Tiers lists the tiers that produce output, highest first.
var Tiers = []Tier{TierHigh, TierMedium, TierLow}

// Approved reports whether the tier counts as relevant for cross-validation.
func (t Tier) Approved() bool {
	return t == TierHigh || t == TierMedium
}

// FilterType identifies the strategy that produced a filter run.
type FilterType string

const (
	FilterAI    FilterType = "AI"
	FilterRegex FilterType = "REGEX"
)

// Other returns the opposite filter strategy.
func (f FilterType) Other() FilterType {
	if f == FilterAI {
		return FilterRegex
	}
	return FilterAI
}

// Valid reports whether f is one of the known strategies.
func (f FilterType) Valid() bool {
	return f == FilterAI || f == FilterRegex
}

// DatasetIdentity is persisted beside a filter run's output so a later run
// of the other strategy can find it. Written once when the run completes.
type DatasetIdentity struct {
	// SourceFingerprint is the order-independent hash of the input titles.
	SourceFingerprint string `json:"source_fingerprint" yaml:"source_fingerprint"`

	// FilterType is AI or REGEX.
	FilterType FilterType `json:"filter_type" yaml:"filter_type"`

	// SourcePath is the input folder the run read from.
	SourcePath string `json:"source_path" yaml:"source_path"`
}

// Comparison holds the set arithmetic between two approved-title sets.
// Slices are sorted.
type Comparison struct {
	Agreement   []string `json:"agreement" yaml:"agreement"`
	OnlyCurrent []string `json:"only_current" yaml:"only_current"`
	OnlyTarget  []string `json:"only_target" yaml:"only_target"`

	// CurrentTotal and TargetTotal are the sizes of the two input sets.
	CurrentTotal int `json:"current_total" yaml:"current_total"`
	TargetTotal  int `json:"target_total" yaml:"target_total"`
}

// ComparisonReport is the cross-validation result for one pair of runs.
type ComparisonReport struct {
	Fingerprint   string     `json:"fingerprint" yaml:"fingerprint"`
	CurrentType   FilterType `json:"current_type" yaml:"current_type"`
	TargetType    FilterType `json:"target_type" yaml:"target_type"`
	CurrentFolder string     `json:"current_folder" yaml:"current_folder"`
	TargetFolder  string     `json:"target_folder" yaml:"target_folder"`
	Comparison
}
