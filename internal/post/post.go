// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package post owns user posts: text, tags, a location and two images.

A post references two assets by key (the picture and the avatar uploaded with
it) and its author by user id. None of these references are enforced by the
document store; the [Orchestrator] keeps them consistent when a post is created
and [Service.DeleteByAccessKey] when it is removed.

# Architecture

  - Entities: Post, NewPost (input), Patch (partial update), Filter (listing query).
  - Storage: Repository, with PostgreSQL and MongoDB implementations.
  - Coordination: Orchestrator (creation saga), Service (reads, updates, cascade delete).
  - Delivery: Handler.
*/
package post

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/platform/sanitize"
	"github.com/taibuivan/geopost/internal/platform/validate"
	"github.com/taibuivan/geopost/pkg/tag"
	"github.com/taibuivan/geopost/pkg/uuid"
)

// Field names shared by JSON payloads, filters, validation errors and Mongo documents.
const (
	FieldID           = "id"
	FieldAuthorID     = "author_id"
	FieldBody         = "body"
	FieldTags         = "tags"
	FieldTitle        = "title"
	FieldImageKey     = "image_key"
	FieldAvatarKey    = "avatar_key"
	FieldCreatedAt    = "created_at"
	FieldLocation     = "location"
	FieldTrueLocation = "true_location"
	FieldAccessKey    = "access_key"
)

// Field limits.
const (
	MaxTitleLength    = 200
	MaxBodyLength     = 5000
	MaxLocationLength = 200
	MaxTags           = 20
	MaxTagLength      = 50
)

// # Domain Entities

// Post is a stored user post.
type Post struct {
	ID           string    `json:"id"            bson:"_id"`
	AuthorID     string    `json:"author_id"     bson:"author_id"`
	Body         string    `json:"body"          bson:"body"`
	Tags         []string  `json:"tags"          bson:"tags"`
	Title        string    `json:"title"         bson:"title"`
	ImageKey     string    `json:"image_key"     bson:"image_key"`
	AvatarKey    string    `json:"avatar_key"    bson:"avatar_key"`
	CreatedAt    time.Time `json:"created_at"    bson:"created_at"`
	Location     string    `json:"location"      bson:"location"`
	TrueLocation string    `json:"true_location" bson:"true_location"`
	AccessKey    string    `json:"access_key"    bson:"access_key"`
}

// NewPost carries the caller-supplied fields of a post being created.
type NewPost struct {
	AuthorID     string   `json:"author_id"`
	Body         string   `json:"body"`
	Tags         []string `json:"tags"`
	Title        string   `json:"title"`
	ImageKey     string   `json:"image_key"`
	AvatarKey    string   `json:"avatar_key"`
	Location     string   `json:"location"`
	TrueLocation string   `json:"true_location"`
}

// Normalize sanitizes free text and reduces tags to a normalized set, in place.
func (input *NewPost) Normalize() {
	input.Body = sanitize.Text(input.Body)
	input.Title = sanitize.Text(input.Title)
	input.Location = sanitize.Text(input.Location)
	input.TrueLocation = sanitize.Text(input.TrueLocation)
	input.Tags = tag.Set(input.Tags)
}

// Validate checks field rules. authorRequired is false when the author is
// created in the same operation and its id is not known yet.
func (input NewPost) Validate(authorRequired bool) error {
	validator := &validate.Validator{}

	if authorRequired || input.AuthorID != "" {
		validator.Required(FieldAuthorID, input.AuthorID)
		if input.AuthorID != "" {
			validator.UUID(FieldAuthorID, input.AuthorID)
		}
	}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, MaxTitleLength)
	validator.MaxLen(FieldBody, input.Body, MaxBodyLength)
	validator.MaxLen(FieldLocation, input.Location, MaxLocationLength)
	validator.MaxLen(FieldTrueLocation, input.TrueLocation, MaxLocationLength)
	validateTags(validator, input.Tags)
	validateKey(validator, FieldImageKey, input.ImageKey)
	validateKey(validator, FieldAvatarKey, input.AvatarKey)

	return validator.Err()
}

// Build mints a Post from validated input, with fresh id and access key, stamped at now.
func (input NewPost) Build(now time.Time) *Post {
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Post{
		ID:           uuid.New(),
		AuthorID:     input.AuthorID,
		Body:         input.Body,
		Tags:         tags,
		Title:        input.Title,
		ImageKey:     input.ImageKey,
		AvatarKey:    input.AvatarKey,
		CreatedAt:    now.UTC(),
		Location:     input.Location,
		TrueLocation: input.TrueLocation,
		AccessKey:    uuid.NewRandom(),
	}
}

// Patch is a partial update. Nil fields are left unchanged.
// id, access_key and created_at are immutable and cannot appear in a patch.
type Patch struct {
	AuthorID     *string   `json:"author_id"`
	Body         *string   `json:"body"`
	Tags         *[]string `json:"tags"`
	Title        *string   `json:"title"`
	ImageKey     *string   `json:"image_key"`
	AvatarKey    *string   `json:"avatar_key"`
	Location     *string   `json:"location"`
	TrueLocation *string   `json:"true_location"`
}

// immutableFields may never be changed after creation.
var immutableFields = []string{FieldID, FieldAccessKey, FieldCreatedAt}

// ParsePatch decodes an update document, rejecting immutable and unknown fields.
func ParsePatch(raw json.RawMessage) (Patch, error) {
	var patch Patch

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return patch, validate.FieldError("update", "An update document is required")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return patch, validate.FieldError("update", "Must be a JSON object")
	}

	validator := &validate.Validator{}
	for _, field := range immutableFields {
		_, present := fields[field]
		validator.Custom(field, present, "This field cannot be changed")
	}
	if err := validator.Err(); err != nil {
		return patch, err
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&patch); err != nil {
		return patch, apperr.ValidationError(fmt.Sprintf("Invalid update document: %v", err))
	}

	return patch, nil
}

// Empty reports whether the patch changes nothing.
func (patch Patch) Empty() bool {
	return patch.AuthorID == nil && patch.Body == nil && patch.Tags == nil && patch.Title == nil &&
		patch.ImageKey == nil && patch.AvatarKey == nil && patch.Location == nil && patch.TrueLocation == nil
}

// Normalize sanitizes free text and reduces tags to a normalized set, in place.
func (patch *Patch) Normalize() {
	patch.Body = sanitize.Ptr(patch.Body)
	patch.Title = sanitize.Ptr(patch.Title)
	patch.Location = sanitize.Ptr(patch.Location)
	patch.TrueLocation = sanitize.Ptr(patch.TrueLocation)
	if patch.Tags != nil {
		tags := tag.Set(*patch.Tags)
		patch.Tags = &tags
	}
}

// Validate checks the fields that are present.
func (patch Patch) Validate() error {
	validator := &validate.Validator{}

	if patch.AuthorID != nil {
		validator.UUID(FieldAuthorID, *patch.AuthorID)
	}
	if patch.Title != nil {
		validator.Required(FieldTitle, *patch.Title).MaxLen(FieldTitle, *patch.Title, MaxTitleLength)
	}
	if patch.Body != nil {
		validator.MaxLen(FieldBody, *patch.Body, MaxBodyLength)
	}
	if patch.Location != nil {
		validator.MaxLen(FieldLocation, *patch.Location, MaxLocationLength)
	}
	if patch.TrueLocation != nil {
		validator.MaxLen(FieldTrueLocation, *patch.TrueLocation, MaxLocationLength)
	}
	if patch.Tags != nil {
		validateTags(validator, *patch.Tags)
	}
	if patch.ImageKey != nil {
		validateKey(validator, FieldImageKey, *patch.ImageKey)
	}
	if patch.AvatarKey != nil {
		validateKey(validator, FieldAvatarKey, *patch.AvatarKey)
	}

	return validator.Err()
}

func validateTags(validator *validate.Validator, tags []string) {
	validator.MaxItems(FieldTags, len(tags), MaxTags)
	for _, value := range tags {
		validator.MaxLen(FieldTags, value, MaxTagLength)
	}
}

func validateKey(validator *validate.Validator, field, key string) {
	validator.Custom(field, key != "" && !asset.ValidKey(key), "Must be a valid image id")
}

// # Repository Contracts

// Repository defines the persistence contract for posts.
//
// Every method that returns a document returns apperr.NotFound when none matched.
type Repository interface {
	// Create inserts a fully populated post. A duplicate access key is a Conflict.
	Create(context context.Context, post *Post) error

	FindByID(context context.Context, id string) (*Post, error)
	FindByAccessKey(context context.Context, accessKey string) (*Post, error)

	// FindMatching returns at most limit posts matching filter, newest first.
	FindMatching(context context.Context, filter Filter, limit int) ([]*Post, error)

	// UpdateByID applies patch and returns the resulting document.
	UpdateByID(context context.Context, id string, patch Patch) (*Post, error)

	// DeleteByID and DeleteByAccessKey return the removed document.
	DeleteByID(context context.Context, id string) (*Post, error)
	DeleteByAccessKey(context context.Context, accessKey string) (*Post, error)
}
