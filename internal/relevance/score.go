// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance scores document text against atomic query expressions
// and buckets documents into High, Medium, Low, or Rejected tiers.
// Implements: term coverage and proximity scoring, tier classification.
//
// An expression is split once on " NOT " into must-have and forbidden
// parts. Must-have clauses are joined by " AND "; a clause wrapped in
// *asterisks* is an exact phrase, any other clause with spaces is an
// implicit AND of bare words. Bare words match any token that contains
// them, so "ion" matches the token "ion" and also "fusion".
package relevance

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	// ProximityWindow is the largest token distance between two term
	// occurrences that still earns the proximity bonus.
	ProximityWindow = 50

	// ScoreHigh and ScoreMedium are the tier thresholds.
	ScoreHigh   = 100
	ScoreMedium = 50

	// baseScore is awarded when every must-have term is present.
	baseScore = 60

	// proximityBonus is added to baseScore when terms cluster.
	proximityBonus = 50

	// partialCeiling scales partial coverage; it stays below ScoreMedium.
	partialCeiling = 40
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases text and returns its maximal ASCII alphanumeric
// runs. All other characters separate tokens.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// term is one must-have requirement of an expression.
type term struct {
	words  []string // phrase words, tokenized like the text
	loose  string   // bare word, lowercased
	phrase bool
}

// Expression is a parsed atomic query expression.
type Expression struct {
	must      []term
	forbidden []string
}

// ParseExpression decomposes an atomic expression into must-have and
// forbidden terms.
func ParseExpression(scenario string) Expression {
	mustStr, forbiddenStr, _ := strings.Cut(scenario, " NOT ")

	var expr Expression
	for _, clause := range strings.Split(mustStr, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case clause == "":
		case isPhrase(clause):
			expr.must = append(expr.must, term{
				words:  Tokenize(strings.Trim(clause, "*")),
				phrase: true,
			})
		default:
			for _, w := range strings.Fields(clause) {
				expr.must = append(expr.must, term{loose: strings.ToLower(w)})
			}
		}
	}

	for _, f := range strings.Fields(forbiddenStr) {
		switch strings.ToUpper(f) {
		case "AND", "OR", "NOT":
			continue
		}
		clean := strings.ToLower(strings.Trim(f, "*"))
		if clean != "" {
			expr.forbidden = append(expr.forbidden, clean)
		}
	}
	return expr
}

func isPhrase(s string) bool {
	return len(s) > 1 && strings.HasPrefix(s, "*") && strings.HasSuffix(s, "*")
}

// Score returns the relevance of text to one atomic expression, in [0, 110].
// A forbidden term anywhere in the text vetoes the document with 0.
func Score(text, scenario string) int {
	return ParseExpression(scenario).Score(text, Tokenize(text))
}

// Score evaluates the expression against raw text and its tokens. Callers
// scoring many expressions against one document tokenize once.
func (e Expression) Score(text string, tokens []string) int {
	if len(e.forbidden) > 0 {
		lower := strings.ToLower(text)
		for _, f := range e.forbidden {
			if strings.Contains(lower, f) {
				return 0
			}
		}
	}

	var positions []int
	found := 0
	for _, t := range e.must {
		idx := locate(tokens, t)
		if len(idx) == 0 {
			continue
		}
		found++
		positions = append(positions, idx...)
	}

	total := len(e.must)
	if found < total {
		if found == 0 {
			return 0
		}
		return int(math.Floor(float64(found) / float64(total) * partialCeiling))
	}

	score := baseScore
	if total > 1 && minGap(positions) <= ProximityWindow {
		score += proximityBonus
	}
	return score
}

// locate returns every token index where t occurs.
func locate(tokens []string, t term) []int {
	var idx []int
	if t.phrase {
		if len(t.words) == 0 {
			return nil
		}
		n := len(t.words)
		for i := 0; i+n <= len(tokens); i++ {
			if tokens[i] != t.words[0] {
				continue
			}
			match := true
			for j := 1; j < n; j++ {
				if tokens[i+j] != t.words[j] {
					match = false
					break
				}
			}
			if match {
				idx = append(idx, i)
			}
		}
		return idx
	}

	for i, tok := range tokens {
		if strings.Contains(tok, t.loose) {
			idx = append(idx, i)
		}
	}
	return idx
}

// minGap returns the smallest distance between consecutive sorted
// positions, or math.MaxInt when there are fewer than two.
func minGap(positions []int) int {
	if len(positions) < 2 {
		return math.MaxInt
	}
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	gap := math.MaxInt
	for i := 1; i < len(sorted); i++ {
		if d := sorted[i] - sorted[i-1]; d < gap {
			gap = d
		}
	}
	return gap
}
