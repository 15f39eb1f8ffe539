package models

import (
	"time"
)

// Video represents an uploaded video owned by a channel
type Video struct {
	ID          string    `json:"id" db:"id"`
	VideoFile   string    `json:"videoFile" db:"video_file"`
	Thumbnail   string    `json:"thumbnail" db:"thumbnail"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Duration    float64   `json:"duration" db:"duration"`
	Views       int64     `json:"views" db:"views"`
	IsPublished bool      `json:"isPublished" db:"is_published"`
	OwnerID     string    `json:"owner" db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// VideoUpdate carries the optional fields of a video update. Thumbnail holds
// the URL of an already uploaded replacement.
type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *string
}

// Empty reports whether no field was supplied
func (u VideoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Thumbnail == nil
}

// Video sort fields accepted by the feed
const (
	VideoSortCreatedAt = "createdAt"
	VideoSortViews     = "views"
	VideoSortDuration  = "duration"
	VideoSortTitle     = "title"
)
