package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

const tweetColumns = `id, content, owner_id, created_at, updated_at`

func scanTweet(row pgx.Row) (*models.Tweet, error) {
	var t models.Tweet
	if err := row.Scan(&t.ID, &t.Content, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTweet inserts a tweet
func (r *Repository) CreateTweet(ctx context.Context, tweet *models.Tweet) (err error) {
	defer observe("create_tweet", time.Now(), &err)

	if tweet.ID == "" {
		tweet.ID = uuid.New().String()
	}

	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO tweets (id, content, owner_id) VALUES ($1, $2, $3) RETURNING created_at, updated_at`,
		tweet.ID, tweet.Content, tweet.OwnerID,
	).Scan(&tweet.CreatedAt, &tweet.UpdatedAt)

	return translate("create tweet", err)
}

// TweetExists reports whether a tweet with the given ID exists
func (r *Repository) TweetExists(ctx context.Context, id string) (exists bool, err error) {
	defer observe("tweet_exists", time.Now(), &err)

	err = r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tweets WHERE id = $1)`, id).Scan(&exists)
	return exists, translate("tweet exists", err)
}

// UpdateTweet replaces the content of a tweet owned by ownerID
func (r *Repository) UpdateTweet(ctx context.Context, id, ownerID, content string) (tweet *models.Tweet, err error) {
	defer observe("update_tweet", time.Now(), &err)

	tweet, err = scanTweet(r.db.Pool.QueryRow(ctx, `
		UPDATE tweets SET content = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+tweetColumns, id, ownerID, content))
	return tweet, translate("update tweet", err)
}

// DeleteTweet deletes a tweet owned by ownerID and returns it
func (r *Repository) DeleteTweet(ctx context.Context, id, ownerID string) (tweet *models.Tweet, err error) {
	defer observe("delete_tweet", time.Now(), &err)

	tweet, err = scanTweet(r.db.Pool.QueryRow(ctx,
		`DELETE FROM tweets WHERE id = $1 AND owner_id = $2 RETURNING `+tweetColumns, id, ownerID))
	return tweet, translate("delete tweet", err)
}

// DeleteTweetLikes removes every like of a tweet
func (r *Repository) DeleteTweetLikes(ctx context.Context, tweetID string) (deleted int64, err error) {
	defer observe("delete_tweet_likes", time.Now(), &err)

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM likes WHERE tweet_id = $1`, tweetID)
	if err != nil {
		return 0, translate("delete tweet likes", err)
	}
	return tag.RowsAffected(), nil
}
