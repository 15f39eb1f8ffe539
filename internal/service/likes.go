package service

import (
	"context"
	"fmt"
	"time"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/validation"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// LikeStore is the persistence used by LikeService
type LikeStore interface {
	VideoFinder
	CommentExists(ctx context.Context, id string) (bool, error)
	TweetExists(ctx context.Context, id string) (bool, error)
	InsertLike(ctx context.Context, like *models.Like) (bool, error)
	DeleteLike(ctx context.Context, target models.LikeTarget, actor string) (bool, error)
	LikedVideos(ctx context.Context, viewer string, page, limit int) (*query.Page[models.LikedVideo], error)
}

// LikeState is the result of a like toggle
type LikeState struct {
	Kind     models.LikeKind `json:"kind"`
	TargetID string          `json:"targetId"`
	IsLiked  bool            `json:"isLiked"`
}

// LikeService toggles likes on videos, comments and tweets
type LikeService struct {
	store   LikeStore
	locker  Locker
	lockTTL time.Duration
}

// NewLikeService creates a new like service
func NewLikeService(store LikeStore, locker Locker, lockTTL time.Duration) *LikeService {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &LikeService{store: store, locker: locker, lockTTL: lockTTL}
}

var likeIDFields = map[models.LikeKind]string{
	models.LikeKindVideo:   "videoId",
	models.LikeKindComment: "commentId",
	models.LikeKindTweet:   "tweetId",
}

// ToggleVideoLike likes or unlikes a video
func (s *LikeService) ToggleVideoLike(ctx context.Context, viewerID, videoID string) (*LikeState, error) {
	return s.Toggle(ctx, viewerID, models.LikeKindVideo, videoID)
}

// ToggleCommentLike likes or unlikes a comment
func (s *LikeService) ToggleCommentLike(ctx context.Context, viewerID, commentID string) (*LikeState, error) {
	return s.Toggle(ctx, viewerID, models.LikeKindComment, commentID)
}

// ToggleTweetLike likes or unlikes a tweet
func (s *LikeService) ToggleTweetLike(ctx context.Context, viewerID, tweetID string) (*LikeState, error) {
	return s.Toggle(ctx, viewerID, models.LikeKindTweet, tweetID)
}

// Toggle removes the viewer's like of the target if present, otherwise adds it
func (s *LikeService) Toggle(ctx context.Context, viewerID string, kind models.LikeKind, targetID string) (*LikeState, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	field, ok := likeIDFields[kind]
	if !ok {
		return nil, apperror.InvalidArgument("unknown like target %q", kind)
	}
	targetID, err := validation.ID(field, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.targetExists(ctx, kind, targetID, viewerID); err != nil {
		return nil, err
	}

	target := models.LikeTarget{Kind: kind, ID: targetID}
	var liked bool
	err = toggleLocked(ctx, s.locker, fmt.Sprintf("like:%s:%s", target, viewerID), s.lockTTL, func() error {
		var err error
		liked, err = toggle(
			func() (bool, error) { return s.store.DeleteLike(ctx, target, viewerID) },
			func() (bool, error) {
				like := models.NewLike(target, viewerID)
				return s.store.InsertLike(ctx, &like)
			},
		)
		return err
	})
	if err != nil {
		return nil, storeError(err, "like")
	}

	metrics.RecordToggle("like_"+string(kind), liked)
	return &LikeState{Kind: kind, TargetID: targetID, IsLiked: liked}, nil
}

func (s *LikeService) targetExists(ctx context.Context, kind models.LikeKind, id, viewerID string) error {
	var (
		exists bool
		err    error
	)
	switch kind {
	case models.LikeKindVideo:
		_, err := visibleVideo(ctx, s.store, id, viewerID)
		return err
	case models.LikeKindComment:
		exists, err = s.store.CommentExists(ctx, id)
	case models.LikeKindTweet:
		exists, err = s.store.TweetExists(ctx, id)
	}
	if err != nil {
		return storeError(err, string(kind))
	}
	if !exists {
		return apperror.NotFound("%s not found", kind)
	}
	return nil
}

// LikedVideos returns a page of videos the viewer liked, most recent first
func (s *LikeService) LikedVideos(ctx context.Context, viewerID string, page, limit int) (*query.Page[models.LikedVideo], error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	videos, err := s.store.LikedVideos(ctx, viewerID, page, limit)
	if err != nil {
		return nil, storeError(err, "liked videos")
	}
	return videos, nil
}
