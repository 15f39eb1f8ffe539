package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

const playlistColumns = `id, name, description, owner_id, created_at, updated_at`

func scanPlaylist(row pgx.Row) (*models.Playlist, error) {
	var p models.Playlist
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlaylist inserts an empty playlist
func (r *Repository) CreatePlaylist(ctx context.Context, playlist *models.Playlist) (err error) {
	defer observe("create_playlist", time.Now(), &err)

	if playlist.ID == "" {
		playlist.ID = uuid.New().String()
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO playlists (id, name, description, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, playlist.ID, playlist.Name, playlist.Description, playlist.OwnerID).Scan(&playlist.CreatedAt, &playlist.UpdatedAt)

	return translate("create playlist", err)
}

// GetPlaylist retrieves a playlist by ID
func (r *Repository) GetPlaylist(ctx context.Context, id string) (playlist *models.Playlist, err error) {
	defer observe("get_playlist", time.Now(), &err)

	playlist, err = scanPlaylist(r.db.Pool.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id))
	return playlist, translate("get playlist", err)
}

// UpdatePlaylist applies the supplied fields to a playlist owned by ownerID
func (r *Repository) UpdatePlaylist(ctx context.Context, id, ownerID string, update models.PlaylistUpdate) (playlist *models.Playlist, err error) {
	defer observe("update_playlist", time.Now(), &err)

	playlist, err = scanPlaylist(r.db.Pool.QueryRow(ctx, `
		UPDATE playlists
		SET name = COALESCE($3, name), description = COALESCE($4, description), updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+playlistColumns, id, ownerID, update.Name, update.Description))
	return playlist, translate("update playlist", err)
}

// DeletePlaylist deletes a playlist owned by ownerID together with its
// memberships
func (r *Repository) DeletePlaylist(ctx context.Context, id, ownerID string) (playlist *models.Playlist, err error) {
	defer observe("delete_playlist", time.Now(), &err)

	playlist, err = scanPlaylist(r.db.Pool.QueryRow(ctx,
		`DELETE FROM playlists WHERE id = $1 AND owner_id = $2 RETURNING `+playlistColumns, id, ownerID))
	return playlist, translate("delete playlist", err)
}

// AddPlaylistVideo appends a video to a playlist. It reports false when the
// video is already a member.
func (r *Repository) AddPlaylistVideo(ctx context.Context, playlistID, videoID string) (added bool, err error) {
	defer observe("add_playlist_video", time.Now(), &err)

	err = pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO playlist_videos (playlist_id, video_id) VALUES ($1, $2)
			ON CONFLICT (playlist_id, video_id) DO NOTHING
		`, playlistID, videoID)
		if err != nil {
			return err
		}
		added = tag.RowsAffected() == 1
		if !added {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE playlists SET updated_at = NOW() WHERE id = $1`, playlistID)
		return err
	})
	if err != nil {
		return false, translate("add playlist video", err)
	}
	return added, nil
}

// RemovePlaylistVideo removes a video from a playlist owned by ownerID. It
// reports false when the playlist is missing, foreign, or lacks the video.
func (r *Repository) RemovePlaylistVideo(ctx context.Context, playlistID, ownerID, videoID string) (removed bool, err error) {
	defer observe("remove_playlist_video", time.Now(), &err)

	err = pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM playlist_videos pv
			USING playlists p
			WHERE pv.playlist_id = p.id AND p.id = $1 AND p.owner_id = $2 AND pv.video_id = $3
		`, playlistID, ownerID, videoID)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected() > 0
		if !removed {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE playlists SET updated_at = NOW() WHERE id = $1`, playlistID)
		return err
	})
	if err != nil {
		return false, translate("remove playlist video", err)
	}
	return removed, nil
}
