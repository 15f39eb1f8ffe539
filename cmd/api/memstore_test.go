package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/database"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// memStore keeps users, videos, likes and subscriptions in memory. It backs
// the user, like and subscription services in handler tests.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	videos map[string]*models.Video
	likes  map[string]bool
	subs   map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*models.User),
		videos: make(map[string]*models.Video),
		likes:  make(map[string]bool),
		subs:   make(map[string]bool),
	}
}

func emptyPage[T any](page, limit int) *query.Page[T] {
	return &query.Page[T]{Items: []T{}, Pagination: query.NewPagination(0, page, limit)}
}

func (s *memStore) addUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *memStore) addVideo(v *models.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[v.ID] = v
}

func (s *memStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return database.ErrConflict
		}
	}
	user.ID = uuid.New().String()
	s.users[user.ID] = user
	return nil
}

func (s *memStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (s *memStore) FindUserByLogin(_ context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) UserExists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *memStore) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	return u, nil
}

func (s *memStore) UpdateAvatar(ctx context.Context, id, url string) (*models.User, string, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := u.Avatar
	u.Avatar = url
	return u, previous, nil
}

func (s *memStore) UpdateCoverImage(ctx context.Context, id, url string) (*models.User, string, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := u.CoverImage
	u.CoverImage = url
	return u, previous, nil
}

func (s *memStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.PasswordHash = passwordHash
	return nil
}

func (s *memStore) SetRefreshToken(ctx context.Context, id string, token *string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.RefreshToken = token
	return nil
}

func (s *memStore) ChannelProfile(_ context.Context, username, _ string) (*models.ChannelProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &models.ChannelProfile{ID: u.ID, Username: u.Username, FullName: u.FullName}, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) WatchHistory(_ context.Context, _ string, page, limit int) (*query.Page[models.WatchHistoryEntry], error) {
	return emptyPage[models.WatchHistoryEntry](page, limit), nil
}

func (s *memStore) GetVideo(_ context.Context, id string) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return v, nil
}

func (s *memStore) CommentExists(context.Context, string) (bool, error) {
	return false, nil
}

func (s *memStore) TweetExists(context.Context, string) (bool, error) {
	return false, nil
}

func likeKey(target models.LikeTarget, actor string) string {
	return fmt.Sprintf("%s|%s", target, actor)
}

func (s *memStore) InsertLike(_ context.Context, like *models.Like) (bool, error) {
	var target models.LikeTarget
	switch {
	case like.VideoID != nil:
		target = models.LikeTarget{Kind: models.LikeKindVideo, ID: *like.VideoID}
	case like.CommentID != nil:
		target = models.LikeTarget{Kind: models.LikeKindComment, ID: *like.CommentID}
	case like.TweetID != nil:
		target = models.LikeTarget{Kind: models.LikeKindTweet, ID: *like.TweetID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := likeKey(target, like.LikedBy)
	if s.likes[key] {
		return false, nil
	}
	s.likes[key] = true
	return true, nil
}

func (s *memStore) DeleteLike(_ context.Context, target models.LikeTarget, actor string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := likeKey(target, actor)
	if !s.likes[key] {
		return false, nil
	}
	delete(s.likes, key)
	return true, nil
}

func (s *memStore) LikedVideos(_ context.Context, _ string, page, limit int) (*query.Page[models.LikedVideo], error) {
	return emptyPage[models.LikedVideo](page, limit), nil
}

func (s *memStore) InsertSubscription(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subscriberID + "|" + channelID
	if s.subs[key] {
		return false, nil
	}
	s.subs[key] = true
	return true, nil
}

func (s *memStore) DeleteSubscription(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subscriberID + "|" + channelID
	if !s.subs[key] {
		return false, nil
	}
	delete(s.subs, key)
	return true, nil
}

func (s *memStore) ChannelSubscribers(_ context.Context, _ string, page, limit int) (*query.Page[models.SubscriberView], error) {
	return emptyPage[models.SubscriberView](page, limit), nil
}

func (s *memStore) SubscribedChannels(_ context.Context, _ string, page, limit int) (*query.Page[models.SubscribedChannelView], error) {
	return emptyPage[models.SubscribedChannelView](page, limit), nil
}

// memMedia records uploads and returns predictable URLs
type memMedia struct {
	mu       sync.Mutex
	uploaded []string
}

func (m *memMedia) UploadFile(_ context.Context, kind storage.Kind, _, originalName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := fmt.Sprintf("http://media.test/%s/%s", kind, originalName)
	m.uploaded = append(m.uploaded, url)
	return url, nil
}

func (m *memMedia) BatchDelete(context.Context, []string) error {
	return nil
}

type nopDispatcher struct{}

func (nopDispatcher) Publish(context.Context, *models.Event) error {
	return nil
}
