package models

import "time"

// Tweet is a short text post owned by a channel
type Tweet struct {
	ID        string    `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	OwnerID   string    `json:"owner" db:"owner_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
