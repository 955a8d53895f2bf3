// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sanitize strips markup from user-supplied text before it is stored.
//
// Every free-text field (titles, bodies, names, locations) passes through [Text],
// so documents never hold HTML that a client might later render unescaped.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/taibuivan/geopost/pkg/pointer"
)

var strict = bluemonday.StrictPolicy()

// Text removes every HTML element and trims surrounding whitespace.
//
// bluemonday escapes the remaining text for HTML output; the entities are
// decoded again so "Fish & Chips" is stored as typed.
func Text(value string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(value)))
}

// Ptr applies [Text] to an optional value.
func Ptr(value *string) *string {
	if value == nil {
		return nil
	}
	return pointer.To(Text(*value))
}
