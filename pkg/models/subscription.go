package models

import "time"

// Subscription records that Subscriber follows Channel
type Subscription struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber" db:"subscriber_id"`
	ChannelID    string    `json:"channel" db:"channel_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
