// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

/*
TestFilterDocument uses $all for tags and plain equality for the rest.
*/
func TestFilterDocument(t *testing.T) {
	assert.Equal(t, bson.M{}, filterDocument(Filter{}))

	query := filterDocument(Filter{
		Tags:   []string{"beach", "sunset"},
		Equals: map[string]string{FieldTitle: "Pier", FieldAuthorID: "u1"},
	})

	assert.Equal(t, bson.M{
		FieldTags:     bson.M{"$all": []string{"beach", "sunset"}},
		FieldTitle:    "Pier",
		FieldAuthorID: "u1",
	}, query)
}

/*
TestPatchDocument only sets present fields.
*/
func TestPatchDocument(t *testing.T) {
	title := "New"
	tags := []string{"a"}

	assert.Equal(t, bson.M{FieldTitle: "New", FieldTags: []string{"a"}},
		patchDocument(Patch{Title: &title, Tags: &tags}))
	assert.Empty(t, patchDocument(Patch{}))
}
