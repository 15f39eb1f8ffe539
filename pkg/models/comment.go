package models

import "time"

// Comment is a text comment on a video
type Comment struct {
	ID        string    `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	VideoID   string    `json:"video" db:"video_id"`
	OwnerID   string    `json:"owner" db:"owner_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
