package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

const commentColumns = `id, content, video_id, owner_id, created_at, updated_at`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	if err := row.Scan(&c.ID, &c.Content, &c.VideoID, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) (err error) {
	defer observe("create_comment", time.Now(), &err)

	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO comments (id, content, video_id, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, comment.ID, comment.Content, comment.VideoID, comment.OwnerID).Scan(&comment.CreatedAt, &comment.UpdatedAt)

	return translate("create comment", err)
}

// CommentExists reports whether a comment with the given ID exists
func (r *Repository) CommentExists(ctx context.Context, id string) (exists bool, err error) {
	defer observe("comment_exists", time.Now(), &err)

	err = r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`, id).Scan(&exists)
	return exists, translate("comment exists", err)
}

// UpdateComment replaces the content of a comment owned by ownerID
func (r *Repository) UpdateComment(ctx context.Context, id, ownerID, content string) (comment *models.Comment, err error) {
	defer observe("update_comment", time.Now(), &err)

	comment, err = scanComment(r.db.Pool.QueryRow(ctx, `
		UPDATE comments SET content = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+commentColumns, id, ownerID, content))
	return comment, translate("update comment", err)
}

// DeleteComment deletes a comment owned by ownerID and returns it
func (r *Repository) DeleteComment(ctx context.Context, id, ownerID string) (comment *models.Comment, err error) {
	defer observe("delete_comment", time.Now(), &err)

	comment, err = scanComment(r.db.Pool.QueryRow(ctx,
		`DELETE FROM comments WHERE id = $1 AND owner_id = $2 RETURNING `+commentColumns, id, ownerID))
	return comment, translate("delete comment", err)
}

// DeleteCommentLikes removes every like of a comment
func (r *Repository) DeleteCommentLikes(ctx context.Context, commentID string) (deleted int64, err error) {
	defer observe("delete_comment_likes", time.Now(), &err)

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM likes WHERE comment_id = $1`, commentID)
	if err != nil {
		return 0, translate("delete comment likes", err)
	}
	return tag.RowsAffected(), nil
}
