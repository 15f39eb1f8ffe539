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

// TweetStore is the persistence used by TweetService
type TweetStore interface {
	UserExists(ctx context.Context, id string) (bool, error)
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	UpdateTweet(ctx context.Context, id, ownerID, content string) (*models.Tweet, error)
	DeleteTweet(ctx context.Context, id, ownerID string) (*models.Tweet, error)
	DeleteTweetLikes(ctx context.Context, tweetID string) (int64, error)
	UserTweets(ctx context.Context, ownerID, viewer string, page, limit int) (*query.Page[models.TweetView], error)
}

// TweetService handles short text posts
type TweetService struct {
	store TweetStore
}

// NewTweetService creates a new tweet service
func NewTweetService(store TweetStore) *TweetService {
	return &TweetService{store: store}
}

// Create posts a tweet as viewer
func (s *TweetService) Create(ctx context.Context, viewerID, content string) (*models.Tweet, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	content, err := validation.RequiredString("content", content)
	if err != nil {
		return nil, err
	}

	tweet := &models.Tweet{Content: content, OwnerID: viewerID}
	if err := s.store.CreateTweet(ctx, tweet); err != nil {
		return nil, apperror.Persistence(err, "Failed to create tweet")
	}
	return tweet, nil
}

// ListByUser returns a page of a user's tweets, newest first
func (s *TweetService) ListByUser(ctx context.Context, userID, viewerID string, page, limit int) (*query.Page[models.TweetView], error) {
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

	tweets, err := s.store.UserTweets(ctx, userID, viewerID, page, limit)
	if err != nil {
		return nil, storeError(err, "tweets")
	}
	return tweets, nil
}

// Update changes the content of a tweet owned by viewer
func (s *TweetService) Update(ctx context.Context, viewerID, tweetID, content string) (*models.Tweet, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	tweetID, err := validation.ID("tweetId", tweetID)
	if err != nil {
		return nil, err
	}
	content, err = validation.RequiredString("content", content)
	if err != nil {
		return nil, err
	}

	tweet, err := s.store.UpdateTweet(ctx, tweetID, viewerID, content)
	if err != nil {
		return nil, ownedError(err, "tweet")
	}
	return tweet, nil
}

// Delete removes a tweet owned by viewer, then its likes
func (s *TweetService) Delete(ctx context.Context, viewerID, tweetID string) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}
	tweetID, err := validation.ID("tweetId", tweetID)
	if err != nil {
		return err
	}

	if _, err := s.store.DeleteTweet(ctx, tweetID, viewerID); err != nil {
		return ownedError(err, "tweet")
	}

	if _, err := s.store.DeleteTweetLikes(ctx, tweetID); err != nil {
		metrics.RecordCascadeFailure("tweet")
		logging.FromContext(ctx).WithField("tweet_id", tweetID).WarnWithErr("failed to delete tweet likes", err)
	}
	return nil
}
