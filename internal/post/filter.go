// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/platform/sanitize"
	"github.com/taibuivan/geopost/pkg/tag"
)

// ErrInvalidFilter is returned for a non-empty filter that names neither tags nor title.
var ErrInvalidFilter = apperr.ValidationError("Invalid search filters")

// equalityFields are the post fields a filter may match exactly. True marks
// free text, which is stored sanitized and so is compared sanitized.
var equalityFields = map[string]bool{
	FieldAuthorID:     false,
	FieldBody:         true,
	FieldTitle:        true,
	FieldLocation:     true,
	FieldTrueLocation: true,
	FieldAccessKey:    false,
	FieldImageKey:     false,
	FieldAvatarKey:    false,
}

// Filter selects posts for listing. The zero value matches every post.
type Filter struct {
	// Tags must all be present on a matching post.
	Tags []string

	// Equals maps a field name to the exact value it must hold.
	Equals map[string]string

	// none is set when requested tags normalized away to nothing. No stored
	// post carries a blank tag, so such a filter cannot match.
	none bool
}

// MatchAll reports whether the filter places no constraint on posts.
func (filter Filter) MatchAll() bool {
	return !filter.none && len(filter.Tags) == 0 && len(filter.Equals) == 0
}

// MatchNone reports whether no post can satisfy the filter.
func (filter Filter) MatchNone() bool {
	return filter.none
}

// Fields returns the equality field names in sorted order.
func (filter Filter) Fields() []string {
	fields := make([]string, 0, len(filter.Equals))
	for field := range filter.Equals {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

/*
ParseFilter decodes a listing filter.

Rules:
  - Absent, null or {} matches all posts.
  - Any other filter must contain a "tags" or a "title" key.
  - "tags" is a list of strings; all of them must be on the post. An empty list is ignored.
    A list whose entries are all blank matches nothing.
  - Every other key is an exact string match on a known post field. Free text
    is sanitized the way stored posts are.

Returns:
  - Filter: The parsed filter
  - error: ErrInvalidFilter or a validation error naming the offending key
*/
func ParseFilter(raw json.RawMessage) (Filter, error) {
	var filter Filter

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return filter, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return filter, apperr.ValidationError("Filter must be a JSON object")
	}
	if len(fields) == 0 {
		return filter, nil
	}

	_, hasTags := fields[FieldTags]
	_, hasTitle := fields[FieldTitle]
	if !hasTags && !hasTitle {
		return filter, ErrInvalidFilter
	}

	for key, value := range fields {
		if key == FieldTags {
			var tags []string
			if err := json.Unmarshal(value, &tags); err != nil {
				return filter, apperr.ValidationError("Filter tags must be a list of strings")
			}
			filter.Tags = tag.Set(tags)
			filter.none = len(tags) > 0 && len(filter.Tags) == 0
			continue
		}

		freeText, known := equalityFields[key]
		if !known {
			return filter, apperr.ValidationError(fmt.Sprintf("Unknown filter field %q", key))
		}

		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return filter, apperr.ValidationError(fmt.Sprintf("Filter field %q must be a string", key))
		}
		if freeText {
			text = sanitize.Text(text)
		}
		if filter.Equals == nil {
			filter.Equals = make(map[string]string, len(fields))
		}
		filter.Equals[key] = text
	}

	return filter, nil
}
