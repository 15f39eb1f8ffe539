package models

import "time"

// Playlist is a named, owned set of videos
type Playlist struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	OwnerID     string    `json:"owner" db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// PlaylistUpdate carries the optional fields of a playlist update. An empty
// description is allowed, an empty name is not.
type PlaylistUpdate struct {
	Name        *string
	Description *string
}

// Empty reports whether no field was supplied
func (u PlaylistUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil
}
