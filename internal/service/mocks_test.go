package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/readmodel"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// mockStore implements every store interface of the package
type mockStore struct {
	mock.Mock
}

func getOr[T any](args mock.Arguments, i int) T {
	var zero T
	if v, ok := args.Get(i).(T); ok {
		return v
	}
	return zero
}

func (m *mockStore) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	return getOr[*models.User](args, 0), args.Error(1)
}

func (m *mockStore) FindUserByLogin(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	return getOr[*models.User](args, 0), args.Error(1)
}

func (m *mockStore) UserExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	return getOr[*models.User](args, 0), args.Error(1)
}

func (m *mockStore) UpdateAvatar(ctx context.Context, id, url string) (*models.User, string, error) {
	args := m.Called(ctx, id, url)
	return getOr[*models.User](args, 0), args.String(1), args.Error(2)
}

func (m *mockStore) UpdateCoverImage(ctx context.Context, id, url string) (*models.User, string, error) {
	args := m.Called(ctx, id, url)
	return getOr[*models.User](args, 0), args.String(1), args.Error(2)
}

func (m *mockStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockStore) SetRefreshToken(ctx context.Context, id string, token *string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *mockStore) ChannelProfile(ctx context.Context, username, viewer string) (*models.ChannelProfile, error) {
	args := m.Called(ctx, username, viewer)
	return getOr[*models.ChannelProfile](args, 0), args.Error(1)
}

func (m *mockStore) WatchHistory(ctx context.Context, viewer string, page, limit int) (*query.Page[models.WatchHistoryEntry], error) {
	args := m.Called(ctx, viewer, page, limit)
	return getOr[*query.Page[models.WatchHistoryEntry]](args, 0), args.Error(1)
}

func (m *mockStore) CreateVideo(ctx context.Context, video *models.Video) error {
	return m.Called(ctx, video).Error(0)
}

func (m *mockStore) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	args := m.Called(ctx, id)
	return getOr[*models.Video](args, 0), args.Error(1)
}

func (m *mockStore) UpdateVideo(ctx context.Context, id, ownerID string, update models.VideoUpdate) (*models.Video, string, error) {
	args := m.Called(ctx, id, ownerID, update)
	return getOr[*models.Video](args, 0), args.String(1), args.Error(2)
}

func (m *mockStore) DeleteVideo(ctx context.Context, id, ownerID string) (*models.Video, error) {
	args := m.Called(ctx, id, ownerID)
	return getOr[*models.Video](args, 0), args.Error(1)
}

func (m *mockStore) DeleteVideoDependents(ctx context.Context, videoID string) error {
	return m.Called(ctx, videoID).Error(0)
}

func (m *mockStore) TogglePublish(ctx context.Context, id, ownerID string) (*models.Video, error) {
	args := m.Called(ctx, id, ownerID)
	return getOr[*models.Video](args, 0), args.Error(1)
}

func (m *mockStore) IncrementViews(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) AddWatchHistory(ctx context.Context, userID, videoID string) error {
	return m.Called(ctx, userID, videoID).Error(0)
}

func (m *mockStore) VideoFeed(ctx context.Context, params readmodel.FeedParams, page, limit int) (*query.Page[models.VideoCard], error) {
	args := m.Called(ctx, params, page, limit)
	return getOr[*query.Page[models.VideoCard]](args, 0), args.Error(1)
}

func (m *mockStore) VideoDetail(ctx context.Context, videoID, viewer string) (*models.VideoDetail, error) {
	args := m.Called(ctx, videoID, viewer)
	return getOr[*models.VideoDetail](args, 0), args.Error(1)
}

func (m *mockStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockStore) CommentExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) UpdateComment(ctx context.Context, id, ownerID, content string) (*models.Comment, error) {
	args := m.Called(ctx, id, ownerID, content)
	return getOr[*models.Comment](args, 0), args.Error(1)
}

func (m *mockStore) DeleteComment(ctx context.Context, id, ownerID string) (*models.Comment, error) {
	args := m.Called(ctx, id, ownerID)
	return getOr[*models.Comment](args, 0), args.Error(1)
}

func (m *mockStore) DeleteCommentLikes(ctx context.Context, commentID string) (int64, error) {
	args := m.Called(ctx, commentID)
	return getOr[int64](args, 0), args.Error(1)
}

func (m *mockStore) CommentFeed(ctx context.Context, videoID, viewer string, page, limit int) (*query.Page[models.CommentView], error) {
	args := m.Called(ctx, videoID, viewer, page, limit)
	return getOr[*query.Page[models.CommentView]](args, 0), args.Error(1)
}

func (m *mockStore) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	return m.Called(ctx, tweet).Error(0)
}

func (m *mockStore) TweetExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) UpdateTweet(ctx context.Context, id, ownerID, content string) (*models.Tweet, error) {
	args := m.Called(ctx, id, ownerID, content)
	return getOr[*models.Tweet](args, 0), args.Error(1)
}

func (m *mockStore) DeleteTweet(ctx context.Context, id, ownerID string) (*models.Tweet, error) {
	args := m.Called(ctx, id, ownerID)
	return getOr[*models.Tweet](args, 0), args.Error(1)
}

func (m *mockStore) DeleteTweetLikes(ctx context.Context, tweetID string) (int64, error) {
	args := m.Called(ctx, tweetID)
	return getOr[int64](args, 0), args.Error(1)
}

func (m *mockStore) UserTweets(ctx context.Context, ownerID, viewer string, page, limit int) (*query.Page[models.TweetView], error) {
	args := m.Called(ctx, ownerID, viewer, page, limit)
	return getOr[*query.Page[models.TweetView]](args, 0), args.Error(1)
}

func (m *mockStore) InsertLike(ctx context.Context, like *models.Like) (bool, error) {
	args := m.Called(ctx, like)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) DeleteLike(ctx context.Context, target models.LikeTarget, actor string) (bool, error) {
	args := m.Called(ctx, target, actor)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) LikedVideos(ctx context.Context, viewer string, page, limit int) (*query.Page[models.LikedVideo], error) {
	args := m.Called(ctx, viewer, page, limit)
	return getOr[*query.Page[models.LikedVideo]](args, 0), args.Error(1)
}

func (m *mockStore) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	return m.Called(ctx, playlist).Error(0)
}

func (m *mockStore) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	args := m.Called(ctx, id)
	return getOr[*models.Playlist](args, 0), args.Error(1)
}

func (m *mockStore) UpdatePlaylist(ctx context.Context, id, ownerID string, update models.PlaylistUpdate) (*models.Playlist, error) {
	args := m.Called(ctx, id, ownerID, update)
	return getOr[*models.Playlist](args, 0), args.Error(1)
}

func (m *mockStore) DeletePlaylist(ctx context.Context, id, ownerID string) (*models.Playlist, error) {
	args := m.Called(ctx, id, ownerID)
	return getOr[*models.Playlist](args, 0), args.Error(1)
}

func (m *mockStore) AddPlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error) {
	args := m.Called(ctx, playlistID, videoID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) RemovePlaylistVideo(ctx context.Context, playlistID, ownerID, videoID string) (bool, error) {
	args := m.Called(ctx, playlistID, ownerID, videoID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) PlaylistDetail(ctx context.Context, playlistID, viewer string) (*models.PlaylistView, error) {
	args := m.Called(ctx, playlistID, viewer)
	return getOr[*models.PlaylistView](args, 0), args.Error(1)
}

func (m *mockStore) UserPlaylists(ctx context.Context, ownerID, viewer string, page, limit int) (*query.Page[models.PlaylistSummary], error) {
	args := m.Called(ctx, ownerID, viewer, page, limit)
	return getOr[*query.Page[models.PlaylistSummary]](args, 0), args.Error(1)
}

func (m *mockStore) InsertSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	args := m.Called(ctx, subscriberID, channelID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	args := m.Called(ctx, subscriberID, channelID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ChannelSubscribers(ctx context.Context, channelID string, page, limit int) (*query.Page[models.SubscriberView], error) {
	args := m.Called(ctx, channelID, page, limit)
	return getOr[*query.Page[models.SubscriberView]](args, 0), args.Error(1)
}

func (m *mockStore) SubscribedChannels(ctx context.Context, subscriberID string, page, limit int) (*query.Page[models.SubscribedChannelView], error) {
	args := m.Called(ctx, subscriberID, page, limit)
	return getOr[*query.Page[models.SubscribedChannelView]](args, 0), args.Error(1)
}

func (m *mockStore) ChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	args := m.Called(ctx, channelID)
	return getOr[*models.ChannelStats](args, 0), args.Error(1)
}

func (m *mockStore) ChannelVideos(ctx context.Context, channelID string, page, limit int) (*query.Page[models.ChannelVideo], error) {
	args := m.Called(ctx, channelID, page, limit)
	return getOr[*query.Page[models.ChannelVideo]](args, 0), args.Error(1)
}

type mockMedia struct {
	mock.Mock
}

func (m *mockMedia) UploadFile(ctx context.Context, kind storage.Kind, filePath, originalName string) (string, error) {
	args := m.Called(ctx, kind, filePath, originalName)
	return args.String(0), args.Error(1)
}

func (m *mockMedia) BatchDelete(ctx context.Context, urls []string) error {
	return m.Called(ctx, urls).Error(0)
}

// recordingDispatcher keeps published events in memory
type recordingDispatcher struct {
	mu     sync.Mutex
	events []*models.Event
	err    error
}

func (d *recordingDispatcher) Publish(_ context.Context, event *models.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) published() []*models.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*models.Event(nil), d.events...)
}

type fakeProber struct {
	duration float64
	err      error
}

func (p fakeProber) Duration(context.Context, string) (float64, error) {
	return p.duration, p.err
}

// errLocker fails every lock attempt with err
type errLocker struct {
	err error
}

func (l errLocker) WithLock(context.Context, string, time.Duration, func() error) error {
	return l.err
}

type fakeTokens struct {
	claims *auth.Claims
	err    error
	issued int
}

func (f *fakeTokens) Issue(userID, username, email string) (*auth.TokenPair, error) {
	f.issued++
	return &auth.TokenPair{AccessToken: "access-" + userID, RefreshToken: "refresh-" + userID}, nil
}

func (f *fakeTokens) ParseRefresh(string) (*auth.Claims, error) {
	return f.claims, f.err
}
