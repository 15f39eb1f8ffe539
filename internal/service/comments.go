package service

import (
	"context"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/validation"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// VideoFinder loads a stored video
type VideoFinder interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}

// CommentStore is the persistence used by CommentService
type CommentStore interface {
	VideoFinder
	CreateComment(ctx context.Context, comment *models.Comment) error
	UpdateComment(ctx context.Context, id, ownerID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id, ownerID string) (*models.Comment, error)
	DeleteCommentLikes(ctx context.Context, commentID string) (int64, error)
	CommentFeed(ctx context.Context, videoID, viewer string, page, limit int) (*query.Page[models.CommentView], error)
}

// CommentService handles comments on videos
type CommentService struct {
	store CommentStore
}

// NewCommentService creates a new comment service
func NewCommentService(store CommentStore) *CommentService {
	return &CommentService{store: store}
}

// visibleVideo loads a video the viewer may see. Unpublished videos of other
// owners are reported as missing.
func visibleVideo(ctx context.Context, store VideoFinder, videoID, viewerID string) (*models.Video, error) {
	video, err := store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, readError(err, "video")
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, apperror.NotFound("video not found")
	}
	return video, nil
}

// List returns a page of comments on a video, newest first
func (s *CommentService) List(ctx context.Context, videoID, viewerID string, page, limit int) (*query.Page[models.CommentView], error) {
	videoID, err := validation.ID("videoId", videoID)
	if err != nil {
		return nil, err
	}
	if _, err := visibleVideo(ctx, s.store, videoID, viewerID); err != nil {
		return nil, err
	}

	comments, err := s.store.CommentFeed(ctx, videoID, viewerID, page, limit)
	if err != nil {
		return nil, storeError(err, "comments")
	}
	return comments, nil
}

// Add comments on a video as viewer
func (s *CommentService) Add(ctx context.Context, viewerID, videoID, content string) (*models.Comment, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	videoID, err := validation.ID("videoId", videoID)
	if err != nil {
		return nil, err
	}
	content, err = validation.RequiredString("content", content)
	if err != nil {
		return nil, err
	}
	if _, err := visibleVideo(ctx, s.store, videoID, viewerID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: content, VideoID: videoID, OwnerID: viewerID}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, apperror.Persistence(err, "Failed to add comment")
	}
	return comment, nil
}

// Update changes the content of a comment owned by viewer
func (s *CommentService) Update(ctx context.Context, viewerID, commentID, content string) (*models.Comment, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	commentID, err := validation.ID("commentId", commentID)
	if err != nil {
		return nil, err
	}
	content, err = validation.RequiredString("content", content)
	if err != nil {
		return nil, err
	}

	comment, err := s.store.UpdateComment(ctx, commentID, viewerID, content)
	if err != nil {
		return nil, ownedError(err, "comment")
	}
	return comment, nil
}

// Delete removes a comment owned by viewer, then its likes
func (s *CommentService) Delete(ctx context.Context, viewerID, commentID string) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}
	commentID, err := validation.ID("commentId", commentID)
	if err != nil {
		return err
	}

	if _, err := s.store.DeleteComment(ctx, commentID, viewerID); err != nil {
		return ownedError(err, "comment")
	}

	if _, err := s.store.DeleteCommentLikes(ctx, commentID); err != nil {
		metrics.RecordCascadeFailure("comment")
		logging.FromContext(ctx).WithField("comment_id", commentID).WarnWithErr("failed to delete comment likes", err)
	}
	return nil
}
