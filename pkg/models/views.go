package models

import "time"

// Read-model shapes. Field names match the keys projected by internal/readmodel.

// OwnerSummary is the public projection of a user embedded in other views
type OwnerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// VideoCard is a video as listed in feeds
type VideoCard struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Thumbnail   string       `json:"thumbnail"`
	VideoFile   string       `json:"videoFile"`
	Duration    float64      `json:"duration"`
	Views       int64        `json:"views"`
	IsPublished bool         `json:"isPublished"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       OwnerSummary `json:"owner"`
}

// ChannelOwner is the owner block of a video detail
type ChannelOwner struct {
	OwnerSummary
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoDetail is a single video with engagement counts for the viewer
type VideoDetail struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Thumbnail     string       `json:"thumbnail"`
	VideoFile     string       `json:"videoFile"`
	Duration      float64      `json:"duration"`
	Views         int64        `json:"views"`
	IsPublished   bool         `json:"isPublished"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Owner         ChannelOwner `json:"owner"`
	LikesCount    int64        `json:"likesCount"`
	IsLiked       bool         `json:"isLiked"`
	CommentsCount int64        `json:"commentsCount"`
}

// ChannelVideo is a video in the owner's dashboard listing
type ChannelVideo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Thumbnail     string    `json:"thumbnail"`
	VideoFile     string    `json:"videoFile"`
	Duration      float64   `json:"duration"`
	Views         int64     `json:"views"`
	IsPublished   bool      `json:"isPublished"`
	CreatedAt     time.Time `json:"createdAt"`
	LikesCount    int64     `json:"likesCount"`
	CommentsCount int64     `json:"commentsCount"`
}

// LikedVideo is a video the viewer liked
type LikedVideo struct {
	VideoCard
	LikedAt time.Time `json:"likedAt"`
}

// CommentView is a comment with its author and like state
type CommentView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Owner      OwnerSummary `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// TweetView is a tweet with its author and like state
type TweetView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Owner      OwnerSummary `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// ChannelProfile is the public channel page of a user
type ChannelProfile struct {
	ID                        string    `json:"id"`
	Username                  string    `json:"username"`
	FullName                  string    `json:"fullName"`
	Email                     string    `json:"email,omitempty"`
	Avatar                    string    `json:"avatar"`
	CoverImage                string    `json:"coverImage"`
	CreatedAt                 time.Time `json:"createdAt"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
}

// ChannelStats are the dashboard totals of a channel
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalComments    int64 `json:"totalComments"`
	TotalTweets      int64 `json:"totalTweets"`
}

// PlaylistVideo is a member video of a playlist
type PlaylistVideo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Thumbnail   string       `json:"thumbnail"`
	VideoFile   string       `json:"videoFile"`
	Duration    float64      `json:"duration"`
	Views       int64        `json:"views"`
	IsPublished bool         `json:"isPublished"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       OwnerSummary `json:"owner"`
}

// PlaylistView is a playlist with its visible videos
type PlaylistView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Owner         OwnerSummary    `json:"owner"`
	VideoCount    int64           `json:"videoCount"`
	TotalDuration float64         `json:"totalDuration"`
	TotalViews    int64           `json:"totalViews"`
	Videos        []PlaylistVideo `json:"videos"`
}

// PlaylistSummary is a playlist as listed on a user's page
type PlaylistSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	VideoCount    int64     `json:"videoCount"`
	TotalDuration float64   `json:"totalDuration"`
	TotalViews    int64     `json:"totalViews"`
}

// SubscriberView is one subscriber of a channel
type SubscriberView struct {
	Subscriber       OwnerSummary `json:"subscriber"`
	SubscribersCount int64        `json:"subscribersCount"`
	SubscribedAt     time.Time    `json:"subscribedAt"`
}

// SubscribedChannelView is one channel a user subscribes to
type SubscribedChannelView struct {
	Channel          OwnerSummary `json:"channel"`
	SubscribersCount int64        `json:"subscribersCount"`
	SubscribedAt     time.Time    `json:"subscribedAt"`
}
