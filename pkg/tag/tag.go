// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package tag normalizes free-form post tags.
//
// # Usage
//
// Tags are compared as whole strings, so "Café", "CAFÉ" and " café " are one
// tag while "C#" and "C++" stay distinct. Any script is kept as written; only
// the Unicode form, letter case and surrounding whitespace are normalized.
package tag

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of a tag.
//
// # Transformation Pipeline
//
// 1. Composes to NFC so precomposed and decomposed accents compare equal.
// 2. Collapses runs of whitespace into one space and trims the ends.
// 3. Applies Unicode case folding.
func Normalize(value string) string {
	composed := norm.NFC.String(value)
	collapsed := strings.Join(strings.Fields(composed), " ")

	// Casers keep state between calls, so each call gets its own.
	return cases.Fold().String(collapsed)
}

// Set normalizes every value and drops empties and duplicates, preserving first-seen order.
func Set(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))

	for _, value := range values {
		normalized := Normalize(value)
		if normalized == "" {
			continue
		}
		if _, duplicate := seen[normalized]; duplicate {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	return result
}
