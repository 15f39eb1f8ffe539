package service

import (
	"context"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/readmodel"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/validation"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// VideoStore is the persistence used by VideoService
type VideoStore interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	UpdateVideo(ctx context.Context, id, ownerID string, update models.VideoUpdate) (*models.Video, string, error)
	DeleteVideo(ctx context.Context, id, ownerID string) (*models.Video, error)
	DeleteVideoDependents(ctx context.Context, videoID string) error
	TogglePublish(ctx context.Context, id, ownerID string) (*models.Video, error)
	VideoFeed(ctx context.Context, params readmodel.FeedParams, page, limit int) (*query.Page[models.VideoCard], error)
	VideoDetail(ctx context.Context, videoID, viewer string) (*models.VideoDetail, error)
}

// Prober reads the duration of a video file
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// VideoService handles video uploads, edits and reads
type VideoService struct {
	store  VideoStore
	media  MediaStore
	prober Prober
	events Dispatcher
}

// NewVideoService creates a new video service
func NewVideoService(store VideoStore, media MediaStore, prober Prober, events Dispatcher) *VideoService {
	return &VideoService{store: store, media: media, prober: prober, events: events}
}

// FeedInput holds the raw filters of the video feed
type FeedInput struct {
	Query    string
	SortBy   string
	SortType string
	UserID   string
	Page     int
	Limit    int
}

// PublishInput is a new video with its files
type PublishInput struct {
	Title       string
	Description string
	VideoFile   *Upload
	Thumbnail   *Upload
}

// UpdateVideoInput carries optional changes to a video
type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   *Upload
}

// List returns a page of the videos visible to viewer
func (s *VideoService) List(ctx context.Context, viewerID string, in FeedInput) (*query.Page[models.VideoCard], error) {
	sortBy, err := validation.SortField(in.SortBy, models.VideoSortCreatedAt, readmodel.VideoSortFields()...)
	if err != nil {
		return nil, err
	}
	desc, err := validation.SortDirection(in.SortType)
	if err != nil {
		return nil, err
	}
	ownerID, err := validation.OptionalID("userId", in.UserID)
	if err != nil {
		return nil, err
	}

	page, err := s.store.VideoFeed(ctx, readmodel.FeedParams{
		Query:    in.Query,
		SortBy:   sortBy,
		SortDesc: desc,
		OwnerID:  ownerID,
		Viewer:   viewerID,
	}, in.Page, in.Limit)
	if err != nil {
		return nil, storeError(err, "videos")
	}
	return page, nil
}

// Publish uploads a video and its thumbnail and creates it owned by viewer
func (s *VideoService) Publish(ctx context.Context, viewerID string, in PublishInput) (*models.Video, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	title, err := validation.RequiredString("title", in.Title)
	if err != nil {
		return nil, err
	}
	description, err := validation.RequiredString("description", in.Description)
	if err != nil {
		return nil, err
	}
	if in.VideoFile == nil {
		return nil, apperror.InvalidField("videoFile", "Video file is required")
	}
	if in.Thumbnail == nil {
		return nil, apperror.InvalidField("thumbnail", "Thumbnail is required")
	}

	duration, err := s.prober.Duration(ctx, in.VideoFile.Path)
	if err != nil {
		logging.FromContext(ctx).WarnWithErr("failed to probe upload", err)
		return nil, apperror.InvalidField("videoFile", "Video file could not be read")
	}

	videoURL, err := s.media.UploadFile(ctx, storage.KindVideo, in.VideoFile.Path, in.VideoFile.Filename)
	if err != nil {
		return nil, apperror.Store(err, "failed to upload video file")
	}
	thumbnailURL, err := s.media.UploadFile(ctx, storage.KindThumbnail, in.Thumbnail.Path, in.Thumbnail.Filename)
	if err != nil {
		cleanupMedia(ctx, s.events, videoURL)
		return nil, apperror.Store(err, "failed to upload thumbnail")
	}

	video := &models.Video{
		VideoFile:   videoURL,
		Thumbnail:   thumbnailURL,
		Title:       title,
		Description: description,
		Duration:    duration,
		IsPublished: true,
		OwnerID:     viewerID,
	}
	if err := s.store.CreateVideo(ctx, video); err != nil {
		cleanupMedia(ctx, s.events, videoURL, thumbnailURL)
		return nil, apperror.Persistence(err, "Something went wrong while publishing the video")
	}

	logging.FromContext(ctx).WithVideoID(video.ID).Info("video published")
	return video, nil
}

// Get returns a video visible to viewer and records the view. Recording
// failures never fail the read.
func (s *VideoService) Get(ctx context.Context, videoID, viewerID string) (*models.VideoDetail, error) {
	videoID, err := validation.ID("videoId", videoID)
	if err != nil {
		return nil, err
	}

	video, err := s.store.VideoDetail(ctx, videoID, viewerID)
	if err != nil {
		return nil, readError(err, "video")
	}

	dispatch(ctx, s.events, models.NewVideoViewedEvent(videoID, viewerID))
	return video, nil
}

// Update changes the title, description or thumbnail of a video owned by viewer
func (s *VideoService) Update(ctx context.Context, viewerID, videoID string, in UpdateVideoInput) (*models.Video, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	videoID, err := validation.ID("videoId", videoID)
	if err != nil {
		return nil, err
	}
	title, err := validation.OptionalNonEmpty("title", in.Title)
	if err != nil {
		return nil, err
	}
	description, err := validation.OptionalNonEmpty("description", in.Description)
	if err != nil {
		return nil, err
	}

	update := models.VideoUpdate{Title: title, Description: description}
	if update.Empty() && in.Thumbnail == nil {
		return nil, apperror.InvalidArgument("title, description or thumbnail is required")
	}

	var thumbnailURL string
	if in.Thumbnail != nil {
		thumbnailURL, err = s.media.UploadFile(ctx, storage.KindThumbnail, in.Thumbnail.Path, in.Thumbnail.Filename)
		if err != nil {
			return nil, apperror.Store(err, "failed to upload thumbnail")
		}
		update.Thumbnail = &thumbnailURL
	}

	video, previous, err := s.store.UpdateVideo(ctx, videoID, viewerID, update)
	if err != nil {
		cleanupMedia(ctx, s.events, thumbnailURL)
		return nil, ownedError(err, "video")
	}

	if in.Thumbnail != nil && previous != thumbnailURL {
		cleanupMedia(ctx, s.events, previous)
	}
	return video, nil
}

// Delete removes a video owned by viewer, then its comments, likes,
// playlist memberships and history entries as a best-effort follow-up
func (s *VideoService) Delete(ctx context.Context, viewerID, videoID string) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}
	videoID, err := validation.ID("videoId", videoID)
	if err != nil {
		return err
	}

	video, err := s.store.DeleteVideo(ctx, videoID, viewerID)
	if err != nil {
		return ownedError(err, "video")
	}

	if err := s.store.DeleteVideoDependents(ctx, videoID); err != nil {
		metrics.RecordCascadeFailure("video")
		logging.FromContext(ctx).WithVideoID(videoID).WarnWithErr("failed to delete video dependents", err)
	}

	cleanupMedia(ctx, s.events, video.VideoFile, video.Thumbnail)
	return nil
}

// TogglePublish flips the published flag of a video owned by viewer
func (s *VideoService) TogglePublish(ctx context.Context, viewerID, videoID string) (*models.Video, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	videoID, err := validation.ID("videoId", videoID)
	if err != nil {
		return nil, err
	}

	video, err := s.store.TogglePublish(ctx, videoID, viewerID)
	if err != nil {
		return nil, ownedError(err, "video")
	}
	return video, nil
}
