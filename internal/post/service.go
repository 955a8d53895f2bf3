// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/platform/constants"
	"github.com/taibuivan/geopost/internal/platform/ctxutil"
	"github.com/taibuivan/geopost/internal/platform/validate"
)

// # Service Layer

// Service handles post reads, updates, listing and deletion.
// Creation with images goes through [Orchestrator].
type Service struct {
	deps Dependencies
}

// NewService constructs a new [Service].
func NewService(deps Dependencies) *Service {
	return &Service{deps: deps.withDefaults()}
}

/*
Get retrieves a post by id.

Returns:
  - *Post: The post
  - error: Validation (malformed id), NotFound or storage failures
*/
func (service *Service) Get(ctx context.Context, id string) (*Post, error) {
	if !validate.IsUUID(id) {
		return nil, validate.FieldError(FieldID, "Invalid Post ID")
	}

	stepContext, cancel := context.WithTimeout(ctx, service.deps.StepTimeout)
	defer cancel()
	return service.deps.Posts.FindByID(stepContext, id)
}

/*
Update applies a partial change to a post.

Returns:
  - *Post: The post after the update
  - error: Validation, NotFound or storage failures
*/
func (service *Service) Update(ctx context.Context, id string, patch Patch) (*Post, error) {
	if !validate.IsUUID(id) {
		return nil, validate.FieldError(FieldID, "Invalid Post ID")
	}

	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	stepContext, cancel := context.WithTimeout(ctx, service.deps.StepTimeout)
	defer cancel()

	post, err := service.deps.Posts.UpdateByID(stepContext, id, patch)
	if err != nil {
		return nil, fmt.Errorf("post_service_update_failed: %w", err)
	}
	return post, nil
}

/*
List returns the newest posts matching filter, capped at [constants.MaxListResults].
*/
func (service *Service) List(ctx context.Context, filter Filter) ([]*Post, error) {
	if filter.MatchNone() {
		return []*Post{}, nil
	}

	stepContext, cancel := context.WithTimeout(ctx, service.deps.StepTimeout)
	defer cancel()

	posts, err := service.deps.Posts.FindMatching(stepContext, filter, constants.MaxListResults)
	if err != nil {
		return nil, fmt.Errorf("post_service_list_failed: %w", err)
	}
	return posts, nil
}

/*
CreateRecord stores a post document without uploading images.
The id, access key and creation time are minted here.

Returns:
  - *Post: The stored post
  - error: Validation, conflict or storage failures
*/
func (service *Service) CreateRecord(ctx context.Context, input NewPost) (*Post, error) {
	input.Normalize()
	if err := input.Validate(true); err != nil {
		return nil, err
	}

	post := input.Build(service.deps.Clock())

	stepContext, cancel := context.WithTimeout(ctx, service.deps.StepTimeout)
	defer cancel()

	if err := service.deps.Posts.Create(stepContext, post); err != nil {
		return nil, fmt.Errorf("post_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "post_record_created", slog.String("post_id", post.ID))
	return post, nil
}

/*
DeleteRecord removes a post document by access key. Its images are left in place.

Returns:
  - *Post: The removed post
  - error: NotFound or storage failures
*/
func (service *Service) DeleteRecord(ctx context.Context, accessKey string) (*Post, error) {
	if !validate.IsUUID(accessKey) {
		return nil, apperr.NotFound(resourceName)
	}

	stepContext, cancel := context.WithTimeout(ctx, service.deps.StepTimeout)
	defer cancel()

	post, err := service.deps.Posts.DeleteByAccessKey(stepContext, accessKey)
	if err != nil {
		return nil, fmt.Errorf("post_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "post_record_deleted", slog.String("post_id", post.ID))
	return post, nil
}

/*
DeleteByAccessKey removes a post and the images it references.

Order:
 1. The post document. A missing post is NotFound and nothing else is touched.
 2. The picture.
 3. The avatar, unless the author's profile still points at the same key.

The author is never deleted. Once the document is gone, image delete failures
are recorded in the orphan ledger and do not fail the call.

Returns:
  - *Post: The removed post
  - error: NotFound or document store failures
*/
func (service *Service) DeleteByAccessKey(ctx context.Context, accessKey string) (*Post, error) {
	if !validate.IsUUID(accessKey) {
		return nil, apperr.NotFound(resourceName)
	}

	// ── 1. Document ──
	post, err := service.call(ctx, func(stepContext context.Context) (*Post, error) {
		return service.deps.Posts.FindByAccessKey(stepContext, accessKey)
	})
	if err != nil {
		return nil, fmt.Errorf("post_service_cascade_lookup_failed: %w", err)
	}

	post, err = service.call(ctx, func(stepContext context.Context) (*Post, error) {
		return service.deps.Posts.DeleteByID(stepContext, post.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("post_service_cascade_delete_failed: %w", err)
	}

	logger := ctxutil.GetLogger(ctx)
	logger.InfoContext(ctx, "post_deleted", slog.String("post_id", post.ID))

	// ── 2. Images ──
	cleanup := context.WithoutCancel(ctx)
	var orphans []string

	keys := []string{post.ImageKey}
	if service.avatarReleasable(cleanup, post) {
		keys = append(keys, post.AvatarKey)
	}

	for _, key := range keys {
		if key == "" {
			continue
		}
		stepContext, cancel := context.WithTimeout(cleanup, service.deps.StepTimeout)
		err := service.deps.Assets.Delete(stepContext, key)
		cancel()
		if err != nil {
			logger.WarnContext(ctx, "post_asset_delete_failed", slog.String("key", key), slog.Any("error", err))
			orphans = append(orphans, key)
		}
	}

	// ── 3. Leftovers ──
	ledgerContext, cancel := context.WithTimeout(cleanup, service.deps.StepTimeout)
	defer cancel()
	asset.ReportOrphans(ledgerContext, service.deps.Ledger, service.deps.Recorder, logger, "post_cascade_delete", orphans...)

	return post, nil
}

// avatarReleasable reports whether the post's avatar can be deleted.
// When the author cannot be read for a reason other than absence, the avatar is kept.
func (service *Service) avatarReleasable(ctx context.Context, post *Post) bool {
	if post.AvatarKey == "" {
		return false
	}
	if post.AuthorID == "" || service.deps.Users == nil {
		return true
	}

	stepContext, cancel := context.WithTimeout(ctx, service.deps.StepTimeout)
	defer cancel()

	author, err := service.deps.Users.FindByID(stepContext, post.AuthorID)
	switch {
	case apperr.HasCode(err, apperr.CodeNotFound):
		return true
	case err != nil:
		ctxutil.GetLogger(ctx).WarnContext(ctx, "post_avatar_kept",
			slog.String("key", post.AvatarKey),
			slog.Any("error", err),
		)
		return false
	}
	return author.AvatarKey != post.AvatarKey
}

// call runs fn under the step timeout.
func (service *Service) call(ctx context.Context, fn func(context.Context) (*Post, error)) (*Post, error) {
	stepContext, cancel := context.WithTimeout(ctx, service.deps.StepTimeout)
	defer cancel()
	return fn(stepContext)
}
