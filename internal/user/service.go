// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/geopost/internal/platform/ctxutil"
	"github.com/taibuivan/geopost/internal/platform/validate"
)

// # Service Layer

// Service applies validation and sanitizing around the [Repository].
type Service struct {
	repository Repository
	clock      func() time.Time
}

// NewService constructs a new [Service]. clock may be nil.
func NewService(repository Repository, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repository: repository, clock: clock}
}

/*
Create validates input and stores a new user.

Returns:
  - *User: The stored user with its generated id
  - error: Validation, conflict or storage failures
*/
func (service *Service) Create(context context.Context, input NewUser) (*User, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user := input.Build(service.clock())
	if err := service.repository.Create(context, user); err != nil {
		return nil, fmt.Errorf("user_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_created", slog.String("user_id", user.ID))
	return user, nil
}

/*
Get retrieves a user by id.

Returns:
  - *User: The user
  - error: Validation (malformed id), NotFound or storage failures
*/
func (service *Service) Get(context context.Context, id string) (*User, error) {
	if !validate.IsUUID(id) {
		return nil, validate.FieldError("id", "Invalid User ID")
	}
	return service.repository.FindByID(context, id)
}

/*
Update applies a partial change to a user.

Returns:
  - *User: The updated user
  - error: Validation, NotFound or storage failures
*/
func (service *Service) Update(context context.Context, id string, patch Patch) (*User, error) {
	if !validate.IsUUID(id) {
		return nil, validate.FieldError("id", "Invalid User ID")
	}

	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, err := service.repository.UpdateByID(context, id, patch)
	if err != nil {
		return nil, fmt.Errorf("user_service_update_failed: %w", err)
	}
	return user, nil
}

/*
Delete removes a user. Posts written by the user are left untouched.

Returns:
  - *User: The removed user
  - error: Validation, NotFound or storage failures
*/
func (service *Service) Delete(context context.Context, id string) (*User, error) {
	if !validate.IsUUID(id) {
		return nil, validate.FieldError("id", "Invalid User ID")
	}

	user, err := service.repository.DeleteByID(context, id)
	if err != nil {
		return nil, fmt.Errorf("user_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_deleted", slog.String("user_id", id))
	return user, nil
}
