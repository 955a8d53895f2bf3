// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package user manages the authors that posts point at.

A user is a small profile: a display name, an email and the key of an avatar
image in the asset store. Posts reference users by id only; deleting a user
leaves its posts in place.

# Architecture

  - Entities: User, NewUser (input), Patch (partial update).
  - Storage: Repository, with PostgreSQL and MongoDB implementations.
  - Delivery: Handler, mounted only with development routes.
*/
package user

import (
	"context"
	"time"

	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/platform/sanitize"
	"github.com/taibuivan/geopost/internal/platform/validate"
	"github.com/taibuivan/geopost/pkg/uuid"
)

// Field names used in validation errors and update payloads.
const (
	FieldName      = "name"
	FieldEmail     = "email"
	FieldAvatarKey = "avatar_key"
)

// Field length limits.
const (
	MaxNameLength  = 100
	MaxEmailLength = 320
)

// # Domain Entities

// User is an author profile.
type User struct {
	ID        string    `json:"id"         bson:"_id"`
	Name      string    `json:"name"       bson:"name"`
	AvatarKey string    `json:"avatar_key" bson:"avatar_key"`
	Email     string    `json:"email"      bson:"email"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewUser carries the caller-supplied fields of a user being created.
type NewUser struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarKey string `json:"avatar_key"`
}

// Normalize sanitizes free text in place.
func (input *NewUser) Normalize() {
	input.Name = sanitize.Text(input.Name)
	input.Email = sanitize.Text(input.Email)
}

// Validate checks field rules. The avatar key is optional but must be well-formed.
func (input NewUser) Validate() error {
	validator := &validate.Validator{}

	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, MaxNameLength)
	validator.Required(FieldEmail, input.Email).MaxLen(FieldEmail, input.Email, MaxEmailLength)
	if input.Email != "" {
		validator.Email(FieldEmail, input.Email)
	}
	validator.Custom(FieldAvatarKey, input.AvatarKey != "" && !asset.ValidKey(input.AvatarKey), "Must be a valid image id")

	return validator.Err()
}

// Build mints a User from validated input, stamped at now.
func (input NewUser) Build(now time.Time) *User {
	return &User{
		ID:        uuid.New(),
		Name:      input.Name,
		AvatarKey: input.AvatarKey,
		Email:     input.Email,
		CreatedAt: now.UTC(),
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	AvatarKey *string `json:"avatar_key"`
}

// Empty reports whether the patch changes nothing.
func (patch Patch) Empty() bool {
	return patch.Name == nil && patch.Email == nil && patch.AvatarKey == nil
}

// Normalize sanitizes free text in place.
func (patch *Patch) Normalize() {
	patch.Name = sanitize.Ptr(patch.Name)
	patch.Email = sanitize.Ptr(patch.Email)
}

// Validate checks the fields that are present.
func (patch Patch) Validate() error {
	validator := &validate.Validator{}

	if patch.Name != nil {
		validator.Required(FieldName, *patch.Name).MaxLen(FieldName, *patch.Name, MaxNameLength)
	}
	if patch.Email != nil {
		validator.Email(FieldEmail, *patch.Email).MaxLen(FieldEmail, *patch.Email, MaxEmailLength)
	}
	if patch.AvatarKey != nil {
		validator.Custom(FieldAvatarKey, *patch.AvatarKey != "" && !asset.ValidKey(*patch.AvatarKey), "Must be a valid image id")
	}

	return validator.Err()
}

// # Repository Contracts

// Repository defines the persistence contract for users.
type Repository interface {
	/*
		Create inserts a fully populated user.

		Returns:
		  - error: apperr.Conflict on duplicate email, or storage failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID retrieves a user by id.

		Returns:
		  - *User: Loaded entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		UpdateByID applies patch and returns the resulting document.

		Returns:
		  - *User: Updated entity
		  - error: apperr.NotFound or storage failures
	*/
	UpdateByID(context context.Context, id string, patch Patch) (*User, error)

	/*
		DeleteByID removes the user and returns the removed document.

		Returns:
		  - *User: Removed entity
		  - error: apperr.NotFound or storage failures
	*/
	DeleteByID(context context.Context, id string) (*User, error)
}
