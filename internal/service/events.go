package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// EventStore applies view side effects
type EventStore interface {
	IncrementViews(ctx context.Context, videoID string) error
	AddWatchHistory(ctx context.Context, userID, videoID string) error
}

// Processor applies side-effect events. The worker runs it behind the queue;
// without a queue the API runs it through InlineDispatcher.
type Processor struct {
	store EventStore
	media MediaStore
}

// NewProcessor creates a new event processor
func NewProcessor(store EventStore, media MediaStore) *Processor {
	return &Processor{store: store, media: media}
}

// Handle applies one event. Events about videos that no longer exist are
// dropped.
func (p *Processor) Handle(ctx context.Context, event *models.Event) error {
	logger := logging.FromContext(ctx)

	switch event.Type {
	case models.EventVideoViewed:
		if err := p.store.IncrementViews(ctx, event.VideoID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				logger.WithVideoID(event.VideoID).Warn("dropping view of deleted video")
				return nil
			}
			return fmt.Errorf("increment views: %w", err)
		}
		if event.UserID != "" {
			if err := p.store.AddWatchHistory(ctx, event.UserID, event.VideoID); err != nil {
				return fmt.Errorf("append watch history: %w", err)
			}
		}

	case models.EventMediaCleanup:
		if len(event.MediaURLs) == 0 {
			return nil
		}
		if err := p.media.BatchDelete(ctx, event.MediaURLs); err != nil {
			return fmt.Errorf("delete media: %w", err)
		}

	default:
		logger.WithField("event_type", string(event.Type)).Warn("ignoring unknown event type")
		return nil
	}

	logger.LogEvent(string(event.Type), "processed", map[string]interface{}{"event_id": event.ID})
	return nil
}

// InlineDispatcher applies events in a background goroutine of the API
// process. It is used when no queue is configured.
type InlineDispatcher struct {
	processor *Processor
}

// NewInlineDispatcher creates a dispatcher backed by p
func NewInlineDispatcher(p *Processor) *InlineDispatcher {
	return &InlineDispatcher{processor: p}
}

// Publish starts applying event and returns immediately. The work outlives
// the request context.
func (d *InlineDispatcher) Publish(ctx context.Context, event *models.Event) error {
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := d.processor.Handle(detached, event); err != nil {
			logging.FromContext(detached).
				WithField("event_type", string(event.Type)).
				WarnWithErr("inline event failed", err)
		}
	}()
	return nil
}
