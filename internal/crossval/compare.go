// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crossval

import (
	"sort"

	"github.com/pdiddy/synoptic/internal/identity"
	"github.com/pdiddy/synoptic/pkg/types"
)

// TitleSet holds normalized titles.
type TitleSet map[string]struct{}

// NewTitleSet normalizes titles into a set.
func NewTitleSet(titles ...string) TitleSet {
	s := TitleSet{}
	for _, t := range titles {
		s.Add(t)
	}
	return s
}

// Add normalizes title and inserts it. Titles that normalize to the empty
// string are dropped.
func (s TitleSet) Add(title string) {
	if n := identity.NormalizeTitle(title); n != "" {
		s[n] = struct{}{}
	}
}

// Has reports whether the normalized form of title is in the set.
func (s TitleSet) Has(title string) bool {
	_, ok := s[identity.NormalizeTitle(title)]
	return ok
}

// Sorted returns the members in ascending order.
func (s TitleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Compare partitions two approved sets into agreement and the titles
// unique to each side.
func Compare(current, target TitleSet) types.Comparison {
	c := types.Comparison{
		Agreement:    []string{},
		OnlyCurrent:  []string{},
		OnlyTarget:   []string{},
		CurrentTotal: len(current),
		TargetTotal:  len(target),
	}
	for _, t := range current.Sorted() {
		if _, ok := target[t]; ok {
			c.Agreement = append(c.Agreement, t)
		} else {
			c.OnlyCurrent = append(c.OnlyCurrent, t)
		}
	}
	for _, t := range target.Sorted() {
		if _, ok := current[t]; !ok {
			c.OnlyTarget = append(c.OnlyTarget, t)
		}
	}
	return c
}
