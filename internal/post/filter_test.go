// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/post"
)

/*
TestParseFilter_MatchAll treats absent, null and empty filters as unconstrained.
*/
func TestParseFilter_MatchAll(t *testing.T) {
	for _, raw := range []string{``, `null`, `{}`, `  {}  `} {
		filter, err := post.ParseFilter(json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.True(t, filter.MatchAll(), raw)
	}
}

/*
TestParseFilter walks the accepted and rejected shapes.
*/
func TestParseFilter(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantTags   []string
		wantEquals map[string]string
		wantErr    bool
	}{
		{
			name:     "tags_only",
			raw:      `{"tags":["Beach","sunset","beach"]}`,
			wantTags: []string{"beach", "sunset"},
		},
		{
			name:       "title_only",
			raw:        `{"title":"Pier"}`,
			wantEquals: map[string]string{"title": "Pier"},
		},
		{
			name:       "tags_with_equality",
			raw:        `{"tags":["a"],"author_id":"u1","location":"Lisbon"}`,
			wantTags:   []string{"a"},
			wantEquals: map[string]string{"author_id": "u1", "location": "Lisbon"},
		},
		{
			name:       "empty_tags_dropped",
			raw:        `{"tags":[],"title":"x"}`,
			wantTags:   []string{},
			wantEquals: map[string]string{"title": "x"},
		},
		{
			name:     "non_latin_tags_kept",
			raw:      `{"tags":["日本","Café"]}`,
			wantTags: []string{"日本", "café"},
		},
		{
			name:     "punctuation_keeps_tags_distinct",
			raw:      `{"tags":["C++","C#","c++"]}`,
			wantTags: []string{"c++", "c#"},
		},
		{
			name:       "free_text_sanitized_like_stored_posts",
			raw:        `{"title":"<b>Sunset</b> &amp; pier ","access_key":"k1"}`,
			wantEquals: map[string]string{"title": "Sunset & pier", "access_key": "k1"},
		},
		{name: "neither_tags_nor_title", raw: `{"body":"hello"}`, wantErr: true},
		{name: "unknown_field", raw: `{"title":"x","likes":"3"}`, wantErr: true},
		{name: "non_string_value", raw: `{"title":7}`, wantErr: true},
		{name: "tags_not_list", raw: `{"tags":"beach"}`, wantErr: true},
		{name: "not_object", raw: `["beach"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := post.ParseFilter(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
				return
			}

			require.NoError(t, err)
			if tt.wantTags != nil {
				assert.Equal(t, tt.wantTags, filter.Tags)
			}
			if tt.wantEquals != nil {
				assert.Equal(t, tt.wantEquals, filter.Equals)
			}
		})
	}
}

/*
TestParseFilter_BlankTagsMatchNothing keeps a filter of only blank tags from listing everything.
*/
func TestParseFilter_BlankTagsMatchNothing(t *testing.T) {
	filter, err := post.ParseFilter(json.RawMessage(`{"tags":["  ",""]}`))
	require.NoError(t, err)
	assert.True(t, filter.MatchNone())
	assert.False(t, filter.MatchAll())

	filter, err = post.ParseFilter(json.RawMessage(`{"tags":[],"title":"x"}`))
	require.NoError(t, err)
	assert.False(t, filter.MatchNone())
}

/*
TestParseFilter_InvalidMessage keeps the client-facing wording.
*/
func TestParseFilter_InvalidMessage(t *testing.T) {
	_, err := post.ParseFilter(json.RawMessage(`{"location":"Porto"}`))
	assert.ErrorIs(t, err, post.ErrInvalidFilter)
	assert.Equal(t, "Invalid search filters", err.Error())
}

/*
TestFilter_Fields returns equality fields in a stable order.
*/
func TestFilter_Fields(t *testing.T) {
	filter := post.Filter{Equals: map[string]string{"title": "t", "author_id": "a", "location": "l"}}
	assert.Equal(t, []string{"author_id", "location", "title"}, filter.Fields())
}
