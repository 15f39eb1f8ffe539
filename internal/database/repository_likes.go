package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

var likeColumnByKind = map[models.LikeKind]string{
	models.LikeKindVideo:   "video_id",
	models.LikeKindComment: "comment_id",
	models.LikeKindTweet:   "tweet_id",
}

func likeColumn(kind models.LikeKind) (string, error) {
	column, ok := likeColumnByKind[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown kind %q", models.ErrInvalidLikeTarget, kind)
	}
	return column, nil
}

// InsertLike stores a like. It reports false when the actor already likes
// the target; the per-target unique indexes make duplicates impossible.
func (r *Repository) InsertLike(ctx context.Context, like *models.Like) (inserted bool, err error) {
	defer observe("insert_like", time.Now(), &err)

	if err := like.Validate(); err != nil {
		return false, fmt.Errorf("insert like: %w: %v", ErrInvalid, err)
	}
	if like.ID == "" {
		like.ID = uuid.New().String()
	}

	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO likes (id, comment_id, video_id, tweet_id, liked_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`, like.ID, like.CommentID, like.VideoID, like.TweetID, like.LikedBy)
	if err != nil {
		return false, translate("insert like", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteLike removes the actor's like of target and reports whether one existed
func (r *Repository) DeleteLike(ctx context.Context, target models.LikeTarget, actor string) (deleted bool, err error) {
	defer observe("delete_like", time.Now(), &err)

	column, err := likeColumn(target.Kind)
	if err != nil {
		return false, err
	}

	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM likes WHERE `+column+` = $1 AND liked_by = $2`, target.ID, actor)
	if err != nil {
		return false, translate("delete like", err)
	}
	return tag.RowsAffected() > 0, nil
}
