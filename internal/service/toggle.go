package service

import (
	"context"
	"errors"
	"time"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/cache"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
)

// toggleLocked runs fn under the (target, actor) lock. When the locker itself
// is unavailable fn runs unlocked; the unique indexes still reject
// duplicate rows.
func toggleLocked(ctx context.Context, locker Locker, resource string, ttl time.Duration, fn func() error) error {
	if ttl <= 0 {
		ttl = DefaultToggleLockTTL
	}

	ran := false
	err := locker.WithLock(ctx, resource, ttl, func() error {
		ran = true
		return fn()
	})
	if ran || err == nil {
		return err
	}

	switch {
	case errors.Is(err, cache.ErrLockBusy):
		return apperror.Conflict("Another request is changing this item, try again")
	case ctx.Err() != nil:
		return ctx.Err()
	}

	logging.FromContext(ctx).WithField("resource", resource).WarnWithErr("toggle lock unavailable, continuing unlocked", err)
	return fn()
}

// toggle deletes the (target, actor) record if present, otherwise inserts it,
// and reports the resulting state. A concurrent insert that wins the unique
// index still leaves the state on.
func toggle(remove func() (bool, error), insert func() (bool, error)) (bool, error) {
	deleted, err := remove()
	if err != nil {
		return false, err
	}
	if deleted {
		return false, nil
	}
	if _, err := insert(); err != nil {
		return false, err
	}
	return true, nil
}
