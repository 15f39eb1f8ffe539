package models

import (
	"strings"
	"time"
)

// User represents a registered account. Every user is also a channel.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"fullName" db:"full_name"`
	Avatar       string    `json:"avatar" db:"avatar"`
	CoverImage   string    `json:"coverImage" db:"cover_image"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RefreshToken *string   `json:"-" db:"refresh_token"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// NormalizeUsername lowercases and trims a username the way it is stored
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail lowercases and trims an email address the way it is stored
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the optional account fields a user may change
type ProfileUpdate struct {
	FullName *string
	Email    *string
}

// Empty reports whether no field was supplied
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.Email == nil
}

// WatchHistoryEntry is one recorded view of a video by an authenticated user
type WatchHistoryEntry struct {
	VideoCard
	WatchedAt time.Time `json:"watchedAt"`
}
