package service

import (
	"context"
	"errors"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/validation"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// PlaylistStore is the persistence used by PlaylistService
type PlaylistStore interface {
	VideoFinder
	UserExists(ctx context.Context, id string) (bool, error)
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id, ownerID string, update models.PlaylistUpdate) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id, ownerID string) (*models.Playlist, error)
	AddPlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error)
	RemovePlaylistVideo(ctx context.Context, playlistID, ownerID, videoID string) (bool, error)
	PlaylistDetail(ctx context.Context, playlistID, viewer string) (*models.PlaylistView, error)
	UserPlaylists(ctx context.Context, ownerID, viewer string, page, limit int) (*query.Page[models.PlaylistSummary], error)
}

// PlaylistInput carries optional playlist changes
type PlaylistInput struct {
	Name        *string
	Description *string
}

// PlaylistService handles playlists and their membership
type PlaylistService struct {
	store PlaylistStore
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService(store PlaylistStore) *PlaylistService {
	return &PlaylistService{store: store}
}

// Create makes an empty playlist owned by viewer
func (s *PlaylistService) Create(ctx context.Context, viewerID, name, description string) (*models.Playlist, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	name, err := validation.RequiredString("name", name)
	if err != nil {
		return nil, err
	}

	playlist := &models.Playlist{
		Name:        name,
		Description: *validation.OptionalString(&description),
		OwnerID:     viewerID,
	}
	if err := s.store.CreatePlaylist(ctx, playlist); err != nil {
		return nil, apperror.Persistence(err, "Failed to create playlist")
	}
	return playlist, nil
}

// ListByUser returns a page of a user's playlists
func (s *PlaylistService) ListByUser(ctx context.Context, userID, viewerID string, page, limit int) (*query.Page[models.PlaylistSummary], error) {
	userID, err := validation.ID("userId", userID)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if !exists {
		return nil, apperror.NotFound("user not found")
	}

	playlists, err := s.store.UserPlaylists(ctx, userID, viewerID, page, limit)
	if err != nil {
		return nil, storeError(err, "playlists")
	}
	return playlists, nil
}

// Get returns a playlist with the videos visible to viewer
func (s *PlaylistService) Get(ctx context.Context, playlistID, viewerID string) (*models.PlaylistView, error) {
	playlistID, err := validation.ID("playlistId", playlistID)
	if err != nil {
		return nil, err
	}

	playlist, err := s.store.PlaylistDetail(ctx, playlistID, viewerID)
	if err != nil {
		return nil, readError(err, "playlist")
	}
	return playlist, nil
}

// AddVideo appends a video to a playlist owned by viewer. Unpublished videos
// may only be added by their owner and a video is added at most once.
func (s *PlaylistService) AddVideo(ctx context.Context, viewerID, playlistID, videoID string) (*models.PlaylistView, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	playlistID, videoID, err := membershipIDs(playlistID, videoID)
	if err != nil {
		return nil, err
	}

	playlist, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, ownedError(err, "playlist")
	}
	if playlist.OwnerID != viewerID {
		return nil, apperror.NotFoundOrForbidden("playlist not found")
	}

	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, readError(err, "video")
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, apperror.Forbidden("Only the owner can add an unpublished video")
	}

	added, err := s.store.AddPlaylistVideo(ctx, playlistID, videoID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("playlist not found")
		}
		return nil, storeError(err, "playlist")
	}
	if !added {
		return nil, apperror.Conflict("Video already exists in playlist")
	}

	return s.Get(ctx, playlistID, viewerID)
}

// RemoveVideo drops a video from a playlist owned by viewer
func (s *PlaylistService) RemoveVideo(ctx context.Context, viewerID, playlistID, videoID string) (*models.PlaylistView, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	playlistID, videoID, err := membershipIDs(playlistID, videoID)
	if err != nil {
		return nil, err
	}

	removed, err := s.store.RemovePlaylistVideo(ctx, playlistID, viewerID, videoID)
	if err != nil {
		return nil, ownedError(err, "playlist")
	}
	if !removed {
		return nil, apperror.NotFoundOrForbidden("Video not found in playlist")
	}

	return s.Get(ctx, playlistID, viewerID)
}

func membershipIDs(playlistID, videoID string) (string, string, error) {
	playlistID, err := validation.ID("playlistId", playlistID)
	if err != nil {
		return "", "", err
	}
	videoID, err = validation.ID("videoId", videoID)
	if err != nil {
		return "", "", err
	}
	return playlistID, videoID, nil
}

// Update renames or redescribes a playlist owned by viewer
func (s *PlaylistService) Update(ctx context.Context, viewerID, playlistID string, in PlaylistInput) (*models.Playlist, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	playlistID, err := validation.ID("playlistId", playlistID)
	if err != nil {
		return nil, err
	}
	name, err := validation.OptionalNonEmpty("name", in.Name)
	if err != nil {
		return nil, err
	}

	update := models.PlaylistUpdate{Name: name, Description: validation.OptionalString(in.Description)}
	if update.Empty() {
		return nil, apperror.InvalidArgument("name or description is required")
	}

	playlist, err := s.store.UpdatePlaylist(ctx, playlistID, viewerID, update)
	if err != nil {
		return nil, ownedError(err, "playlist")
	}
	return playlist, nil
}

// Delete removes a playlist owned by viewer together with its membership rows
func (s *PlaylistService) Delete(ctx context.Context, viewerID, playlistID string) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}
	playlistID, err := validation.ID("playlistId", playlistID)
	if err != nil {
		return err
	}

	if _, err := s.store.DeletePlaylist(ctx, playlistID, viewerID); err != nil {
		return ownedError(err, "playlist")
	}
	return nil
}
