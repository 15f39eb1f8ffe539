package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InsertSubscription subscribes subscriberID to channelID. It reports false
// when the subscription already exists.
func (r *Repository) InsertSubscription(ctx context.Context, subscriberID, channelID string) (inserted bool, err error) {
	defer observe("insert_subscription", time.Now(), &err)

	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO subscriptions (id, subscriber_id, channel_id) VALUES ($1, $2, $3)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	`, uuid.New().String(), subscriberID, channelID)
	if err != nil {
		return false, translate("insert subscription", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteSubscription removes a subscription and reports whether one existed
func (r *Repository) DeleteSubscription(ctx context.Context, subscriberID, channelID string) (deleted bool, err error) {
	defer observe("delete_subscription", time.Now(), &err)

	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`, subscriberID, channelID)
	if err != nil {
		return false, translate("delete subscription", err)
	}
	return tag.RowsAffected() > 0, nil
}
