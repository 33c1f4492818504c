// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"strings"

	"github.com/pdiddy/synoptic/pkg/types"
)

// DefaultMinTextLength is the shortest extracted text worth scoring.
// Anything shorter is treated as a failed extraction.
const DefaultMinTextLength = 10

// TierFor maps a score onto its tier.
func TierFor(score int) types.Tier {
	switch {
	case score >= ScoreHigh:
		return types.TierHigh
	case score >= ScoreMedium:
		return types.TierMedium
	case score > 0:
		return types.TierLow
	default:
		return types.TierRejected
	}
}

// Classifier scores documents against every expanded query scenario and
// keeps the best. It holds no mutable state, so one Classifier can serve
// concurrent callers.
type Classifier struct {
	scenarios     []Expression
	minTextLength int
}

// NewClassifier parses the expanded scenarios once. A minTextLength of
// zero or less selects DefaultMinTextLength.
func NewClassifier(scenarios []string, minTextLength int) *Classifier {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	c := &Classifier{minTextLength: minTextLength}
	for _, s := range scenarios {
		c.scenarios = append(c.scenarios, ParseExpression(s))
	}
	return c
}

// Classify returns the tier and maximum score of text across all
// scenarios. A document matches if it satisfies any scenario.
func (c *Classifier) Classify(text string) (types.Tier, int) {
	if len(strings.TrimSpace(text)) < c.minTextLength {
		return types.TierRejected, 0
	}

	tokens := Tokenize(text)
	best := 0
	for _, expr := range c.scenarios {
		if s := expr.Score(text, tokens); s > best {
			best = s
		}
	}
	return TierFor(best), best
}
