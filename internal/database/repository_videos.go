package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

const videoColumns = `id, video_file, thumbnail, title, description, duration, views, is_published, owner_id, created_at, updated_at`

func scanVideo(row pgx.Row, extra ...any) (*models.Video, error) {
	var v models.Video
	dest := append([]any{
		&v.ID, &v.VideoFile, &v.Thumbnail, &v.Title, &v.Description, &v.Duration,
		&v.Views, &v.IsPublished, &v.OwnerID, &v.CreatedAt, &v.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVideo creates a new video record
func (r *Repository) CreateVideo(ctx context.Context, video *models.Video) (err error) {
	defer observe("create_video", time.Now(), &err)

	if video.ID == "" {
		video.ID = uuid.New().String()
	}

	query := `
		INSERT INTO videos (id, video_file, thumbnail, title, description, duration, is_published, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING views, created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		video.ID, video.VideoFile, video.Thumbnail, video.Title, video.Description,
		video.Duration, video.IsPublished, video.OwnerID,
	).Scan(&video.Views, &video.CreatedAt, &video.UpdatedAt)

	return translate("create video", err)
}

// GetVideo retrieves a video by ID regardless of visibility
func (r *Repository) GetVideo(ctx context.Context, id string) (video *models.Video, err error) {
	defer observe("get_video", time.Now(), &err)

	video, err = scanVideo(r.db.Pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	return video, translate("get video", err)
}

// UpdateVideo applies the supplied fields to a video owned by ownerID and
// returns the previous thumbnail. A missing or foreign video yields
// ErrNotFound.
func (r *Repository) UpdateVideo(ctx context.Context, id, ownerID string, update models.VideoUpdate) (video *models.Video, previousThumbnail string, err error) {
	defer observe("update_video", time.Now(), &err)

	query := `
		WITH previous AS (
			SELECT id, thumbnail FROM videos WHERE id = $1 AND owner_id = $2 FOR UPDATE
		)
		UPDATE videos v
		SET title = COALESCE($3, v.title),
			description = COALESCE($4, v.description),
			thumbnail = COALESCE($5, v.thumbnail),
			updated_at = NOW()
		FROM previous
		WHERE v.id = previous.id
		RETURNING v.id, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views,
			v.is_published, v.owner_id, v.created_at, v.updated_at, previous.thumbnail
	`

	video, err = scanVideo(r.db.Pool.QueryRow(ctx, query, id, ownerID, update.Title, update.Description, update.Thumbnail), &previousThumbnail)
	if err != nil {
		return nil, "", translate("update video", err)
	}
	return video, previousThumbnail, nil
}

// DeleteVideo deletes a video owned by ownerID and returns it. Dependent rows
// are left for DeleteVideoDependents.
func (r *Repository) DeleteVideo(ctx context.Context, id, ownerID string) (video *models.Video, err error) {
	defer observe("delete_video", time.Now(), &err)

	video, err = scanVideo(r.db.Pool.QueryRow(ctx,
		`DELETE FROM videos WHERE id = $1 AND owner_id = $2 RETURNING `+videoColumns, id, ownerID))
	return video, translate("delete video", err)
}

// DeleteVideoDependents removes the comments, likes, playlist memberships and
// watch history entries of a deleted video in one transaction.
func (r *Repository) DeleteVideoDependents(ctx context.Context, videoID string) (err error) {
	defer observe("delete_video_dependents", time.Now(), &err)

	statements := []string{
		`DELETE FROM likes WHERE comment_id IN (SELECT id FROM comments WHERE video_id = $1)`,
		`DELETE FROM likes WHERE video_id = $1`,
		`DELETE FROM comments WHERE video_id = $1`,
		`DELETE FROM playlist_videos WHERE video_id = $1`,
		`DELETE FROM watch_history WHERE video_id = $1`,
	}

	err = pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt, videoID); err != nil {
				return err
			}
		}
		return nil
	})
	return translate("delete video dependents", err)
}

// TogglePublish flips the publish flag of a video owned by ownerID
func (r *Repository) TogglePublish(ctx context.Context, id, ownerID string) (video *models.Video, err error) {
	defer observe("toggle_publish", time.Now(), &err)

	query := `
		UPDATE videos SET is_published = NOT is_published, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + videoColumns

	video, err = scanVideo(r.db.Pool.QueryRow(ctx, query, id, ownerID))
	return video, translate("toggle publish", err)
}

// IncrementViews adds one view to a video
func (r *Repository) IncrementViews(ctx context.Context, id string) (err error) {
	defer observe("increment_views", time.Now(), &err)

	tag, err := r.db.Pool.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return translate("increment views", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("increment views", pgx.ErrNoRows)
	}
	return nil
}
