package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType names an asynchronous side effect
type EventType string

const (
	// EventVideoViewed increments the view counter and, for authenticated
	// viewers, appends to their watch history.
	EventVideoViewed EventType = "video.viewed"
	// EventMediaCleanup deletes media objects that are no longer referenced.
	EventMediaCleanup EventType = "media.cleanup"
)

// Event is the payload published to the side-effect queue
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	VideoID   string    `json:"videoId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	MediaURLs []string  `json:"mediaUrls,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewVideoViewedEvent builds a view event. viewerID is empty for anonymous views.
func NewVideoViewedEvent(videoID, viewerID string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      EventVideoViewed,
		VideoID:   videoID,
		UserID:    viewerID,
		CreatedAt: time.Now().UTC(),
	}
}

// NewMediaCleanupEvent builds a cleanup event, dropping empty URLs
func NewMediaCleanupEvent(urls ...string) *Event {
	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			kept = append(kept, u)
		}
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      EventMediaCleanup,
		MediaURLs: kept,
		CreatedAt: time.Now().UTC(),
	}
}
