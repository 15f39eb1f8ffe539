// Package readmodel builds the query pipelines behind every read endpoint.
// Builders are pure: they take validated identifiers and the viewer id (empty
// for anonymous requests) and return a pipeline. Document shapes match the
// view types in pkg/models.
package readmodel

import (
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// Pipeline names, also used as metric and span labels
const (
	NameVideoFeed          = "video_feed"
	NameVideoDetail        = "video_detail"
	NameChannelVideos      = "channel_videos"
	NameLikedVideos        = "liked_videos"
	NameWatchHistory       = "watch_history"
	NameCommentFeed        = "comment_feed"
	NameChannelProfile     = "channel_profile"
	NameChannelStats       = "channel_stats"
	NamePlaylistDetail     = "playlist_detail"
	NameUserPlaylists      = "user_playlists"
	NameUserTweets         = "user_tweets"
	NameChannelSubscribers = "channel_subscribers"
	NameSubscribedChannels = "subscribed_channels"
)

var videoSortColumns = map[string]string{
	models.VideoSortCreatedAt: "created_at",
	models.VideoSortViews:     "views",
	models.VideoSortDuration:  "duration",
	models.VideoSortTitle:     "title",
}

// VideoSortFields lists the accepted feed sort fields
func VideoSortFields() []string {
	return []string{models.VideoSortCreatedAt, models.VideoSortViews, models.VideoSortDuration, models.VideoSortTitle}
}

// visibleTo admits published videos and the viewer's own unpublished ones
func visibleTo(alias, viewer string) query.Cond {
	return query.Or(query.IsTrue(query.Col(alias+".is_published")), query.ViewerEq(alias+".owner_id", viewer))
}

func ownerSummary(alias string) query.Expr {
	return query.Obj(
		query.F("id", query.Col(alias+".id")),
		query.F("username", query.Col(alias+".username")),
		query.F("fullName", query.Col(alias+".full_name")),
		query.F("avatar", query.Col(alias+".avatar")),
	)
}

func videoFields(alias string) []query.Field {
	return []query.Field{
		query.F("id", query.Col(alias+".id")),
		query.F("title", query.Col(alias+".title")),
		query.F("description", query.Col(alias+".description")),
		query.F("thumbnail", query.Col(alias+".thumbnail")),
		query.F("videoFile", query.Col(alias+".video_file")),
		query.F("duration", query.Col(alias+".duration")),
		query.F("views", query.Col(alias+".views")),
		query.F("isPublished", query.Col(alias+".is_published")),
		query.F("createdAt", query.Col(alias+".created_at")),
	}
}

func videoCard(video, owner string, extra ...query.Field) query.ProjectStage {
	fields := append(videoFields(video), query.F("owner", ownerSummary(owner)))
	return query.Project(append(fields, extra...)...)
}

// likesOf counts likes whose column references localField and reports
// whether the viewer is among them.
func likesOf(as, column, localField, viewer string) query.LookupManyStage {
	return query.LookupMany(as, query.New("likes", "likes", "lk_"+as), "lk_"+as+"."+column, localField,
		query.CountAgg("count"),
		query.ContainsAgg("viewerLiked", "lk_"+as+".liked_by", viewer),
	)
}

// subscribersOf counts the subscribers of the channel at localField and
// reports whether the viewer is one of them.
func subscribersOf(as, localField, viewer string) query.LookupManyStage {
	return query.LookupMany(as, query.New("subscriptions", "subscriptions", "sb_"+as), "sb_"+as+".channel_id", localField,
		query.CountAgg("count"),
		query.ContainsAgg("viewerSubscribed", "sb_"+as+".subscriber_id", viewer),
	)
}

func countOf(as, table, foreignField, localField string) query.LookupManyStage {
	src := "c_" + as
	return query.LookupMany(as, query.New(table, table, src), src+"."+foreignField, localField, query.CountAgg("count"))
}

// FeedParams are the filters of the public video feed
type FeedParams struct {
	Query    string
	SortBy   string
	SortDesc bool
	OwnerID  string
	Viewer   string
}

// VideoFeed lists videos visible to the viewer, optionally restricted to one
// owner and filtered by a text query.
func VideoFeed(p FeedParams) *query.Pipeline {
	stages := []query.Stage{query.Match(visibleTo("v", p.Viewer))}
	if p.OwnerID != "" {
		stages = append(stages, query.Match(query.ColEq("v.owner_id", p.OwnerID)))
	}

	column, ok := videoSortColumns[p.SortBy]
	if !ok {
		column = "created_at"
	}

	stages = append(stages,
		query.Search(p.Query, "v.title", "v.description"),
		query.Lookup("users", "o", "v.owner_id", "id").Unwound(),
		videoCard("v", "o"),
		query.Sort(query.By(query.Col("v."+column), p.SortDesc)),
	)
	return query.New(NameVideoFeed, "videos", "v", stages...)
}

// VideoDetail is one video with its owner, like and comment counts. The
// video must be visible to the viewer.
func VideoDetail(videoID, viewer string) *query.Pipeline {
	return query.New(NameVideoDetail, "videos", "v",
		query.Match(query.And(query.ColEq("v.id", videoID), visibleTo("v", viewer))),
		query.Lookup("users", "o", "v.owner_id", "id").Unwound(),
		likesOf("lv", "video_id", "v.id", viewer),
		countOf("cv", "comments", "video_id", "v.id"),
		subscribersOf("so", "o.id", viewer),
		query.Project(append(videoFields("v"),
			query.F("updatedAt", query.Col("v.updated_at")),
			query.F("owner", query.Obj(
				query.F("id", query.Col("o.id")),
				query.F("username", query.Col("o.username")),
				query.F("fullName", query.Col("o.full_name")),
				query.F("avatar", query.Col("o.avatar")),
				query.F("subscribersCount", query.Agg("so", "count")),
				query.F("isSubscribed", query.Agg("so", "viewerSubscribed")),
			)),
			query.F("likesCount", query.Agg("lv", "count")),
			query.F("isLiked", query.Agg("lv", "viewerLiked")),
			query.F("commentsCount", query.Agg("cv", "count")),
		)...),
	)
}

// ChannelVideos lists every video of the channel, published or not, with
// engagement counts. It backs the owner's dashboard.
func ChannelVideos(channelID string) *query.Pipeline {
	return query.New(NameChannelVideos, "videos", "v",
		query.Match(query.ColEq("v.owner_id", channelID)),
		countOf("lv", "likes", "video_id", "v.id"),
		countOf("cv", "comments", "video_id", "v.id"),
		query.Project(append(videoFields("v"),
			query.F("likesCount", query.Agg("lv", "count")),
			query.F("commentsCount", query.Agg("cv", "count")),
		)...),
	)
}

// LikedVideos lists the videos the viewer liked that are still visible to
// them, most recently liked first.
func LikedVideos(viewer string) *query.Pipeline {
	return query.New(NameLikedVideos, "likes", "l",
		query.Match(query.ColEq("l.liked_by", viewer)),
		query.Match(query.IsNotNull(query.Col("l.video_id"))),
		query.Lookup("videos", "v", "l.video_id", "id").Unwound(),
		query.Match(visibleTo("v", viewer)),
		query.Lookup("users", "o", "v.owner_id", "id").Unwound(),
		videoCard("v", "o", query.F("likedAt", query.Col("l.created_at"))),
		query.Sort(query.Desc(query.Col("l.created_at"))),
	)
}

// WatchHistory lists the videos the viewer watched, most recent first
func WatchHistory(viewer string) *query.Pipeline {
	return query.New(NameWatchHistory, "watch_history", "wh",
		query.Match(query.ColEq("wh.user_id", viewer)),
		query.Lookup("videos", "v", "wh.video_id", "id").Unwound(),
		query.Match(visibleTo("v", viewer)),
		query.Lookup("users", "o", "v.owner_id", "id").Unwound(),
		videoCard("v", "o", query.F("watchedAt", query.Col("wh.watched_at"))),
		query.Sort(query.Desc(query.Col("wh.watched_at"))),
	)
}

// CommentFeed lists the comments of a video, newest first
func CommentFeed(videoID, viewer string) *query.Pipeline {
	return query.New(NameCommentFeed, "comments", "c",
		query.Match(query.ColEq("c.video_id", videoID)),
		query.Lookup("users", "o", "c.owner_id", "id").Unwound(),
		likesOf("lc", "comment_id", "c.id", viewer),
		query.Project(
			query.F("id", query.Col("c.id")),
			query.F("content", query.Col("c.content")),
			query.F("createdAt", query.Col("c.created_at")),
			query.F("updatedAt", query.Col("c.updated_at")),
			query.F("owner", ownerSummary("o")),
			query.F("likesCount", query.Agg("lc", "count")),
			query.F("isLiked", query.Agg("lc", "viewerLiked")),
		),
		query.Sort(query.Desc(query.Col("c.created_at"))),
	)
}

// ChannelProfile is the public page of the user with the given username.
// The email is only projected for the user themselves.
func ChannelProfile(username, viewer string) *query.Pipeline {
	return query.New(NameChannelProfile, "users", "u",
		query.Match(query.ColEq("u.username", username)),
		subscribersOf("su", "u.id", viewer),
		countOf("st", "subscriptions", "subscriber_id", "u.id"),
		query.Project(
			query.F("id", query.Col("u.id")),
			query.F("username", query.Col("u.username")),
			query.F("fullName", query.Col("u.full_name")),
			query.F("email", query.When(query.ViewerEq("u.id", viewer), query.Col("u.email"))),
			query.F("avatar", query.Col("u.avatar")),
			query.F("coverImage", query.Col("u.cover_image")),
			query.F("createdAt", query.Col("u.created_at")),
			query.F("subscribersCount", query.Agg("su", "count")),
			query.F("channelsSubscribedToCount", query.Agg("st", "count")),
			query.F("isSubscribed", query.Agg("su", "viewerSubscribed")),
		),
	)
}

// ChannelStats totals the content and engagement of a channel
func ChannelStats(channelID string) *query.Pipeline {
	ownedLikes := func(table, column string) *query.Pipeline {
		return query.New("likes", "likes", "sl_"+table,
			query.Lookup(table, "st_"+table, "sl_"+table+"."+column, "id").Unwound(),
		)
	}

	return query.New(NameChannelStats, "users", "u",
		query.Match(query.ColEq("u.id", channelID)),
		query.LookupMany("vs", query.New("videos", "videos", "sv"), "sv.owner_id", "u.id",
			query.CountAgg("count"),
			query.SumAgg("views", query.Col("sv.views")),
		),
		countOf("ss", "subscriptions", "channel_id", "u.id"),
		countOf("ts", "tweets", "owner_id", "u.id"),
		query.LookupMany("vl", ownedLikes("videos", "video_id"), "st_videos.owner_id", "u.id", query.CountAgg("count")),
		query.LookupMany("cs", query.New("comments", "comments", "sc").With(
			query.Lookup("videos", "scv", "sc.video_id", "id").Unwound(),
		), "scv.owner_id", "u.id", query.CountAgg("count")),
		query.Project(
			query.F("totalVideos", query.Agg("vs", "count")),
			query.F("totalViews", query.Agg("vs", "views")),
			query.F("totalSubscribers", query.Agg("ss", "count")),
			query.F("totalLikes", query.Agg("vl", "count")),
			query.F("totalComments", query.Agg("cs", "count")),
			query.F("totalTweets", query.Agg("ts", "count")),
		),
	)
}

// playlistMembers are the playlist's videos visible to the viewer, with
// their owners.
func playlistMembers(viewer string) *query.Pipeline {
	return query.New("playlist_members", "playlist_videos", "pv",
		query.Lookup("videos", "pvv", "pv.video_id", "id").Unwound(),
		query.Match(visibleTo("pvv", viewer)),
		query.Lookup("users", "pvo", "pvv.owner_id", "id").Unwound(),
	)
}

func playlistFields() []query.Field {
	return []query.Field{
		query.F("id", query.Col("p.id")),
		query.F("name", query.Col("p.name")),
		query.F("description", query.Col("p.description")),
		query.F("createdAt", query.Col("p.created_at")),
		query.F("updatedAt", query.Col("p.updated_at")),
		query.F("videoCount", query.Agg("pm", "count")),
		query.F("totalDuration", query.Agg("pm", "duration")),
		query.F("totalViews", query.Agg("pm", "views")),
	}
}

// PlaylistDetail is one playlist with its visible videos in insertion order
func PlaylistDetail(playlistID, viewer string) *query.Pipeline {
	return query.New(NamePlaylistDetail, "playlists", "p",
		query.Match(query.ColEq("p.id", playlistID)),
		query.Lookup("users", "o", "p.owner_id", "id").Unwound(),
		query.LookupMany("pm", playlistMembers(viewer), "pv.playlist_id", "p.id",
			query.CountAgg("count"),
			query.SumAgg("duration", query.Col("pvv.duration")),
			query.SumAgg("views", query.Col("pvv.views")),
			query.CollectAgg("videos",
				query.Obj(append(videoFields("pvv"), query.F("owner", ownerSummary("pvo")))...),
				query.Asc(query.Col("pv.position")),
			),
		),
		query.Project(append(playlistFields(),
			query.F("owner", ownerSummary("o")),
			query.F("videos", query.Agg("pm", "videos")),
		)...),
	)
}

// UserPlaylists lists the playlists of a user with their visible totals
func UserPlaylists(ownerID, viewer string) *query.Pipeline {
	return query.New(NameUserPlaylists, "playlists", "p",
		query.Match(query.ColEq("p.owner_id", ownerID)),
		query.LookupMany("pm", playlistMembers(viewer), "pv.playlist_id", "p.id",
			query.CountAgg("count"),
			query.SumAgg("duration", query.Col("pvv.duration")),
			query.SumAgg("views", query.Col("pvv.views")),
		),
		query.Project(playlistFields()...),
		query.Sort(query.Desc(query.Col("p.updated_at"))),
	)
}

// UserTweets lists the tweets of a user, newest first
func UserTweets(ownerID, viewer string) *query.Pipeline {
	return query.New(NameUserTweets, "tweets", "t",
		query.Match(query.ColEq("t.owner_id", ownerID)),
		query.Lookup("users", "o", "t.owner_id", "id").Unwound(),
		likesOf("lt", "tweet_id", "t.id", viewer),
		query.Project(
			query.F("id", query.Col("t.id")),
			query.F("content", query.Col("t.content")),
			query.F("createdAt", query.Col("t.created_at")),
			query.F("updatedAt", query.Col("t.updated_at")),
			query.F("owner", ownerSummary("o")),
			query.F("likesCount", query.Agg("lt", "count")),
			query.F("isLiked", query.Agg("lt", "viewerLiked")),
		),
		query.Sort(query.Desc(query.Col("t.created_at"))),
	)
}

// ChannelSubscribers lists the subscribers of a channel, newest first
func ChannelSubscribers(channelID string) *query.Pipeline {
	return query.New(NameChannelSubscribers, "subscriptions", "s",
		query.Match(query.ColEq("s.channel_id", channelID)),
		query.Lookup("users", "u", "s.subscriber_id", "id").Unwound(),
		countOf("us", "subscriptions", "channel_id", "u.id"),
		query.Project(
			query.F("subscriber", ownerSummary("u")),
			query.F("subscribersCount", query.Agg("us", "count")),
			query.F("subscribedAt", query.Col("s.created_at")),
		),
	)
}

// SubscribedChannels lists the channels a user subscribes to, newest first
func SubscribedChannels(subscriberID string) *query.Pipeline {
	return query.New(NameSubscribedChannels, "subscriptions", "s",
		query.Match(query.ColEq("s.subscriber_id", subscriberID)),
		query.Lookup("users", "c", "s.channel_id", "id").Unwound(),
		countOf("cs", "subscriptions", "channel_id", "c.id"),
		query.Project(
			query.F("channel", ownerSummary("c")),
			query.F("subscribersCount", query.Agg("cs", "count")),
			query.F("subscribedAt", query.Col("s.created_at")),
		),
	)
}
