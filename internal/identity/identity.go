// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity derives a content fingerprint for a dataset from its
// paper titles.
// Implements: title normalization, order-independent dataset fingerprint.
//
// Two folders holding the same papers share a fingerprint regardless of
// folder name, file layout, row order, or title punctuation. Filter runs
// record the fingerprint of their input so later runs can find results
// produced from the same data.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/synoptic/internal/dataset"
)

// NormalizeTitle lowercases s and drops every character outside [a-z0-9].
func NormalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fingerprint returns the MD5 hex digest of the sorted, normalized titles
// concatenated without separator. The empty set hashes the empty string.
func Fingerprint(titles []string) string {
	norm := make([]string, len(titles))
	for i, t := range titles {
		norm[i] = NormalizeTitle(t)
	}
	sort.Strings(norm)

	sum := md5.Sum([]byte(strings.Join(norm, "")))
	return hex.EncodeToString(sum[:])
}

// FolderTitles collects the titles of every data CSV directly inside dir.
// Files that cannot be parsed are skipped. When dir holds no titled rows,
// the names of its PDF files are used instead.
func FolderTitles(dir string) ([]string, error) {
	files, err := dataset.DataFiles(dir)
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, path := range files {
		papers, err := dataset.ReadFile(path)
		if err != nil {
			continue
		}
		for _, p := range papers {
			if p.Title != "" {
				titles = append(titles, p.Title)
			}
		}
	}
	if len(titles) > 0 {
		return titles, nil
	}
	return pdfTitles(dir)
}

func pdfTitles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		titles = append(titles, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	return titles, nil
}

// FingerprintFolder fingerprints the titles found in dir and returns them
// alongside the digest.
func FingerprintFolder(dir string) (string, []string, error) {
	titles, err := FolderTitles(dir)
	if err != nil {
		return "", nil, err
	}
	return Fingerprint(titles), titles, nil
}
