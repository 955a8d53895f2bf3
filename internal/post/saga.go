// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/platform/constants"
	"github.com/taibuivan/geopost/internal/platform/ctxutil"
	"github.com/taibuivan/geopost/internal/user"
)

// RequiredImages is the number of images a post is created with: avatar first, picture second.
const RequiredImages = 2

// ErrMissingImages is returned when a creation request does not carry exactly two images.
var ErrMissingImages = apperr.ValidationError(
	fmt.Sprintf("Exactly %d images are required: avatar and picture", RequiredImages),
)

// ErrCompensationFailed marks a saga whose cleanup left resources behind.
var ErrCompensationFailed = errors.New("post: compensation failed")

// Result labels for creation metrics.
const resultOK = "ok"

// Resource kinds named in compensation logs and metrics.
const (
	resourceAvatar  = "avatar"
	resourcePicture = "picture"
	resourceUser    = "user"
)

// # Saga Errors

// SagaError is returned by a failed creation.
//
// Primary is the step failure the caller sees. Compensation is non-nil when the
// cleanup of acquired resources failed too; errors.Is(err, ErrCompensationFailed)
// then holds.
type SagaError struct {
	Primary      error
	Compensation error
}

func (e *SagaError) Error() string {
	return e.Primary.Error()
}

// Unwrap exposes the primary failure first so apperr.As resolves to it.
func (e *SagaError) Unwrap() []error {
	if e.Compensation == nil {
		return []error{e.Primary}
	}
	return []error{e.Primary, e.Compensation}
}

// # Orchestrator

// Recorder receives creation, compensation and orphan counts.
type Recorder interface {
	PostCreation(result string)
	CompensationFailed(resource string)
	OrphanRecorded()
}

// Dependencies groups the collaborators shared by [Orchestrator] and [Service].
type Dependencies struct {
	Posts  Repository
	Users  user.Repository
	Assets asset.Store
	Ledger asset.OrphanLedger

	// Recorder may be nil.
	Recorder Recorder

	// Clock may be nil.
	Clock func() time.Time

	// StepTimeout bounds every single asset or document call.
	StepTimeout time.Duration
}

func (deps Dependencies) withDefaults() Dependencies {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Recorder == nil {
		deps.Recorder = noopRecorder{}
	}
	if deps.StepTimeout <= 0 {
		deps.StepTimeout = 10 * time.Second
	}
	return deps
}

type noopRecorder struct{}

func (noopRecorder) PostCreation(string)       {}
func (noopRecorder) CompensationFailed(string) {}
func (noopRecorder) OrphanRecorded()           {}

// CreateInput is a post being created, optionally together with a new author.
type CreateInput struct {
	Post NewPost

	// Author, when set, is created with the uploaded avatar and becomes the post author.
	Author *user.NewUser
}

// Orchestrator creates posts together with their images and, optionally, their author.
//
// A run moves through avatarUploading, pictureUploading and persisting strictly in
// order. Any failure compensates everything acquired so far, newest first.
type Orchestrator struct {
	deps                Dependencies
	compensationTimeout time.Duration
}

// NewOrchestrator constructs an [Orchestrator].
func NewOrchestrator(deps Dependencies) *Orchestrator {
	return &Orchestrator{
		deps:                deps.withDefaults(),
		compensationTimeout: constants.CompensationTimeout,
	}
}

type sagaState int

const (
	stateAvatarUploading sagaState = iota
	statePictureUploading
	statePersisting
	stateDone
)

func (state sagaState) String() string {
	switch state {
	case stateAvatarUploading:
		return "avatar_uploading"
	case statePictureUploading:
		return "picture_uploading"
	case statePersisting:
		return "persisting"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// saga holds one run's state and the resources it has acquired.
type saga struct {
	state      sagaState
	avatarKey  string
	pictureKey string
	userID     string
	post       *Post
}

/*
Create uploads the avatar and the picture, then stores the author (when new)
and the post.

Parameters:
  - images: exactly two payloads, avatar first and picture second
  - input: post fields and an optional new author

Returns:
  - *Post: The stored post with its id and access key
  - error: ErrMissingImages or validation errors before any side effect;
    otherwise a *SagaError wrapping AssetUploadFailed or PersistFailed
*/
func (orchestrator *Orchestrator) Create(ctx context.Context, images []asset.Upload, input CreateInput) (*Post, error) {

	// ── 1. Validate Before Side Effects ──
	if len(images) != RequiredImages {
		return nil, ErrMissingImages
	}

	input.Post.ImageKey, input.Post.AvatarKey = "", ""
	input.Post.Normalize()
	if input.Author != nil {
		input.Author.AvatarKey = ""
		input.Author.Normalize()
		if err := input.Author.Validate(); err != nil {
			return nil, err
		}
	}
	if err := input.Post.Validate(input.Author == nil); err != nil {
		return nil, err
	}

	// ── 2. Run The Steps ──
	logger := ctxutil.GetLogger(ctx)
	run := &saga{state: stateAvatarUploading}

	for run.state != stateDone {
		current := run.state
		if err := orchestrator.advance(ctx, run, images, input); err != nil {
			return nil, orchestrator.fail(ctx, run, current, err)
		}
		logger.DebugContext(ctx, "post_saga_step_completed", slog.String("step", current.String()))
	}

	// ── 3. Done ──
	orchestrator.deps.Recorder.PostCreation(resultOK)
	logger.InfoContext(ctx, "post_created",
		slog.String("post_id", run.post.ID),
		slog.String("author_id", run.post.AuthorID),
	)
	return run.post, nil
}

// advance performs the step for run.state and moves to the next state on success.
func (orchestrator *Orchestrator) advance(ctx context.Context, run *saga, images []asset.Upload, input CreateInput) error {
	switch run.state {
	case stateAvatarUploading:
		key, err := orchestrator.upload(ctx, images[0])
		if err != nil {
			return apperr.AssetUploadFailed(fmt.Errorf("post_saga_avatar_upload_failed: %w", err))
		}
		run.avatarKey = key
		run.state = statePictureUploading

	case statePictureUploading:
		key, err := orchestrator.upload(ctx, images[1])
		if err != nil {
			return apperr.AssetUploadFailed(fmt.Errorf("post_saga_picture_upload_failed: %w", err))
		}
		run.pictureKey = key
		run.state = statePersisting

	case statePersisting:
		now := orchestrator.deps.Clock()
		fields := input.Post

		if input.Author != nil {
			author := *input.Author
			author.AvatarKey = run.avatarKey
			created := author.Build(now)
			if err := orchestrator.call(ctx, func(stepContext context.Context) error {
				return orchestrator.deps.Users.Create(stepContext, created)
			}); err != nil {
				return persistFailure("post_saga_author_create_failed", err)
			}
			run.userID = created.ID
			fields.AuthorID = created.ID
		}

		fields.AvatarKey = run.avatarKey
		fields.ImageKey = run.pictureKey
		post := fields.Build(now)
		if err := orchestrator.call(ctx, func(stepContext context.Context) error {
			return orchestrator.deps.Posts.Create(stepContext, post)
		}); err != nil {
			return persistFailure("post_saga_post_create_failed", err)
		}
		run.post = post
		run.state = stateDone
	}
	return nil
}

func (orchestrator *Orchestrator) upload(ctx context.Context, image asset.Upload) (string, error) {
	var key string
	err := orchestrator.call(ctx, func(stepContext context.Context) error {
		var err error
		key, err = orchestrator.deps.Assets.Upload(stepContext, image)
		return err
	})
	return key, err
}

// call runs fn under the step timeout.
func (orchestrator *Orchestrator) call(ctx context.Context, fn func(context.Context) error) error {
	stepContext, cancel := context.WithTimeout(ctx, orchestrator.deps.StepTimeout)
	defer cancel()
	return fn(stepContext)
}

// persistFailure keeps client errors (validation, conflict) and turns the rest into PersistFailed.
func persistFailure(event string, err error) error {
	if appError := apperr.As(err); appError != nil && appError.HTTPStatus < 500 {
		return appError
	}
	return apperr.PersistFailed(fmt.Errorf("%s: %w", event, err))
}

// fail compensates the run and builds the error returned to the caller.
func (orchestrator *Orchestrator) fail(ctx context.Context, run *saga, failed sagaState, primary error) error {
	logger := ctxutil.GetLogger(ctx)
	logger.WarnContext(ctx, "post_saga_step_failed",
		slog.String("step", failed.String()),
		slog.Any("error", primary),
	)

	result := apperr.CodeInternal
	if appError := apperr.As(primary); appError != nil {
		result = appError.Code
	}
	orchestrator.deps.Recorder.PostCreation(result)

	return &SagaError{Primary: primary, Compensation: orchestrator.compensate(ctx, run)}
}

/*
compensate releases every resource the run acquired, newest first.

Every release is attempted even when an earlier one fails, with one exception:
the avatar is kept while a user created by this run survives, since that user
references it. It runs detached from the request's cancellation under its own
timeout. Asset keys that could not be deleted are written to the orphan ledger.
*/
func (orchestrator *Orchestrator) compensate(ctx context.Context, run *saga) error {
	cleanup := context.WithoutCancel(ctx)
	logger := ctxutil.GetLogger(ctx)

	var failures []error
	var orphans []string

	release := func(resource, id string, fn func(context.Context) error) bool {
		if id == "" {
			return true
		}
		stepContext, cancel := context.WithTimeout(cleanup, orchestrator.compensationTimeout)
		defer cancel()

		err := fn(stepContext)
		if err == nil {
			return true
		}

		orchestrator.deps.Recorder.CompensationFailed(resource)
		logger.ErrorContext(ctx, "post_saga_compensation_failed",
			slog.String("resource", resource),
			slog.String("id", id),
			slog.Any("error", err),
		)
		failures = append(failures, fmt.Errorf("%s %s: %w", resource, id, err))
		if resource != resourceUser {
			orphans = append(orphans, id)
		}
		return false
	}

	userReleased := release(resourceUser, run.userID, func(stepContext context.Context) error {
		_, err := orchestrator.deps.Users.DeleteByID(stepContext, run.userID)
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil
		}
		return err
	})
	release(resourcePicture, run.pictureKey, func(stepContext context.Context) error {
		return orchestrator.deps.Assets.Delete(stepContext, run.pictureKey)
	})

	if userReleased {
		release(resourceAvatar, run.avatarKey, func(stepContext context.Context) error {
			return orchestrator.deps.Assets.Delete(stepContext, run.avatarKey)
		})
	} else {
		logger.WarnContext(ctx, "post_saga_avatar_retained",
			slog.String("key", run.avatarKey),
			slog.String("user_id", run.userID),
		)
	}

	if len(orphans) > 0 {
		ledgerContext, cancel := context.WithTimeout(cleanup, orchestrator.compensationTimeout)
		defer cancel()
		asset.ReportOrphans(ledgerContext, orchestrator.deps.Ledger, orchestrator.deps.Recorder, logger,
			"post_creation_compensation", orphans...)
	}

	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCompensationFailed, errors.Join(failures...))
}
