package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/readmodel"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

func one[T any](ctx context.Context, r *Repository, p *query.Pipeline) (*T, error) {
	item, err := query.One[T](ctx, r.db.Pool, p)
	if errors.Is(err, query.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", p.Name, ErrNotFound)
	}
	return item, err
}

// VideoFeed returns a page of videos visible to the viewer
func (r *Repository) VideoFeed(ctx context.Context, params readmodel.FeedParams, page, limit int) (*query.Page[models.VideoCard], error) {
	return query.Paginate[models.VideoCard](ctx, r.db.Pool, readmodel.VideoFeed(params), page, limit)
}

// VideoDetail returns one video visible to the viewer
func (r *Repository) VideoDetail(ctx context.Context, videoID, viewer string) (*models.VideoDetail, error) {
	return one[models.VideoDetail](ctx, r, readmodel.VideoDetail(videoID, viewer))
}

// ChannelVideos returns a page of every video of a channel
func (r *Repository) ChannelVideos(ctx context.Context, channelID string, page, limit int) (*query.Page[models.ChannelVideo], error) {
	return query.Paginate[models.ChannelVideo](ctx, r.db.Pool, readmodel.ChannelVideos(channelID), page, limit)
}

// LikedVideos returns a page of videos the viewer liked
func (r *Repository) LikedVideos(ctx context.Context, viewer string, page, limit int) (*query.Page[models.LikedVideo], error) {
	return query.Paginate[models.LikedVideo](ctx, r.db.Pool, readmodel.LikedVideos(viewer), page, limit)
}

// WatchHistory returns a page of the viewer's watch history
func (r *Repository) WatchHistory(ctx context.Context, viewer string, page, limit int) (*query.Page[models.WatchHistoryEntry], error) {
	return query.Paginate[models.WatchHistoryEntry](ctx, r.db.Pool, readmodel.WatchHistory(viewer), page, limit)
}

// CommentFeed returns a page of comments on a video
func (r *Repository) CommentFeed(ctx context.Context, videoID, viewer string, page, limit int) (*query.Page[models.CommentView], error) {
	return query.Paginate[models.CommentView](ctx, r.db.Pool, readmodel.CommentFeed(videoID, viewer), page, limit)
}

// ChannelProfile returns the channel page of a username
func (r *Repository) ChannelProfile(ctx context.Context, username, viewer string) (*models.ChannelProfile, error) {
	return one[models.ChannelProfile](ctx, r, readmodel.ChannelProfile(username, viewer))
}

// ChannelStats returns the dashboard totals of a channel
func (r *Repository) ChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	return one[models.ChannelStats](ctx, r, readmodel.ChannelStats(channelID))
}

// PlaylistDetail returns a playlist with its videos visible to the viewer
func (r *Repository) PlaylistDetail(ctx context.Context, playlistID, viewer string) (*models.PlaylistView, error) {
	return one[models.PlaylistView](ctx, r, readmodel.PlaylistDetail(playlistID, viewer))
}

// UserPlaylists returns a page of a user's playlists
func (r *Repository) UserPlaylists(ctx context.Context, ownerID, viewer string, page, limit int) (*query.Page[models.PlaylistSummary], error) {
	return query.Paginate[models.PlaylistSummary](ctx, r.db.Pool, readmodel.UserPlaylists(ownerID, viewer), page, limit)
}

// UserTweets returns a page of a user's tweets
func (r *Repository) UserTweets(ctx context.Context, ownerID, viewer string, page, limit int) (*query.Page[models.TweetView], error) {
	return query.Paginate[models.TweetView](ctx, r.db.Pool, readmodel.UserTweets(ownerID, viewer), page, limit)
}

// ChannelSubscribers returns a page of a channel's subscribers
func (r *Repository) ChannelSubscribers(ctx context.Context, channelID string, page, limit int) (*query.Page[models.SubscriberView], error) {
	return query.Paginate[models.SubscriberView](ctx, r.db.Pool, readmodel.ChannelSubscribers(channelID), page, limit)
}

// SubscribedChannels returns a page of the channels a user subscribes to
func (r *Repository) SubscribedChannels(ctx context.Context, subscriberID string, page, limit int) (*query.Page[models.SubscribedChannelView], error) {
	return query.Paginate[models.SubscribedChannelView](ctx, r.db.Pool, readmodel.SubscribedChannels(subscriberID), page, limit)
}
