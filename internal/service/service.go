// Package service implements the mutation handlers and read orchestration
// behind the HTTP API. Every method takes the acting viewer explicitly; an
// empty viewer id is an anonymous caller.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// DefaultToggleLockTTL bounds how long a toggle holds its (target, actor) lock
const DefaultToggleLockTTL = 5 * time.Second

// Locker serializes work on a named resource
type Locker interface {
	WithLock(ctx context.Context, resource string, ttl time.Duration, fn func() error) error
}

// NoopLocker runs fn without locking. The unique indexes on likes and
// subscriptions still reject duplicates.
type NoopLocker struct{}

// WithLock runs fn
func (NoopLocker) WithLock(_ context.Context, _ string, _ time.Duration, fn func() error) error {
	return fn()
}

// MediaStore uploads and deletes media objects
type MediaStore interface {
	UploadFile(ctx context.Context, kind storage.Kind, filePath, originalName string) (string, error)
	BatchDelete(ctx context.Context, urls []string) error
}

// Dispatcher hands side-effect events to whatever applies them
type Dispatcher interface {
	Publish(ctx context.Context, event *models.Event) error
}

// Upload is a received file stored at Path on local disk
type Upload struct {
	Path     string
	Filename string
}

func requireViewer(viewerID string) error {
	if viewerID == "" {
		return apperror.Unauthorized("Unauthorized request")
	}
	return nil
}

// readError maps a store error on a read path
func readError(err error, entity string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperror.NotFound("%s not found", entity)
	}
	return storeError(err, entity)
}

// ownedError maps a store error on an owner-filtered write. A missing entity
// and one owned by someone else produce the same error.
func ownedError(err error, entity string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperror.NotFoundOrForbidden("%s not found", entity)
	}
	return storeError(err, entity)
}

func storeError(err error, entity string) error {
	var appErr *apperror.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, database.ErrNotFound):
		return apperror.NotFound("%s not found", entity)
	case errors.Is(err, database.ErrConflict):
		return apperror.Conflict("%s already exists", entity)
	case errors.Is(err, database.ErrInvalid):
		return apperror.InvalidArgument("invalid %s", entity).Wrap(err)
	default:
		return apperror.Store(err, "failed to access %s", entity)
	}
}

// dispatch publishes a side effect. Failures are logged and never returned.
func dispatch(ctx context.Context, d Dispatcher, event *models.Event) {
	if d == nil {
		return
	}
	if err := d.Publish(ctx, event); err != nil {
		metrics.RecordError("dispatcher", string(event.Type))
		logging.FromContext(ctx).
			WithFields(map[string]interface{}{"event_id": event.ID, "event_type": string(event.Type)}).
			WarnWithErr("failed to dispatch event", err)
	}
}

// cleanupMedia schedules deletion of replaced or orphaned media
func cleanupMedia(ctx context.Context, d Dispatcher, urls ...string) {
	event := models.NewMediaCleanupEvent(urls...)
	if len(event.MediaURLs) == 0 {
		return
	}
	dispatch(ctx, d, event)
}
