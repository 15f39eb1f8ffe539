package main

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/middleware"
)

type routerOptions struct {
	logger         *logging.Logger
	tokens         middleware.TokenParser
	limiter        *middleware.RateLimiter
	throttle       middleware.RateChecker
	loginAttempts  int64
	loginWindow    time.Duration
	requestTimeout time.Duration
}

func setupRouter(api *API, opts routerOptions) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(), middleware.Logger(opts.logger), middleware.Metrics())

	// Health check
	router.GET("/health", api.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Timeout(opts.requestTimeout), middleware.OptionalAuth(opts.tokens))
	if opts.limiter != nil {
		v1.Use(middleware.RateLimit(opts.limiter))
	}

	authed := middleware.JWTAuth(opts.tokens)

	setupUserRoutes(v1, api, authed, opts)
	setupVideoRoutes(v1, api, authed)
	setupCommentRoutes(v1, api, authed)
	setupLikeRoutes(v1, api, authed)
	setupPlaylistRoutes(v1, api, authed)
	setupSubscriptionRoutes(v1, api, authed)
	setupTweetRoutes(v1, api, authed)
	setupDashboardRoutes(v1, api, authed)

	return router
}

func setupUserRoutes(router *gin.RouterGroup, api *API, authed gin.HandlerFunc, opts routerOptions) {
	login := []gin.HandlerFunc{api.login}
	if opts.throttle != nil {
		login = append([]gin.HandlerFunc{middleware.LoginThrottle(opts.throttle, opts.loginAttempts, opts.loginWindow)}, login...)
	}

	users := router.Group("/users")
	{
		users.POST("/register", api.register)
		users.POST("/login", login...)
		users.POST("/refresh-token", api.refreshToken)
		users.GET("/c/:username", api.channelProfile)

		users.POST("/logout", authed, api.logout)
		users.POST("/change-password", authed, api.changePassword)
		users.GET("/current-user", authed, api.currentUser)
		users.PATCH("/update-account", authed, api.updateAccount)
		users.PATCH("/avatar", authed, api.updateAvatar)
		users.PATCH("/cover-image", authed, api.updateCoverImage)
		users.GET("/history", authed, api.watchHistory)
	}
}

func setupVideoRoutes(router *gin.RouterGroup, api *API, authed gin.HandlerFunc) {
	videos := router.Group("/videos")
	{
		videos.GET("", api.listVideos)
		videos.GET("/:videoId", api.getVideo)

		videos.POST("", authed, api.publishVideo)
		videos.PATCH("/:videoId", authed, api.updateVideo)
		videos.DELETE("/:videoId", authed, api.deleteVideo)
		videos.PATCH("/toggle/publish/:videoId", authed, api.togglePublish)
	}
}

func setupCommentRoutes(router *gin.RouterGroup, api *API, authed gin.HandlerFunc) {
	comments := router.Group("/comments")
	{
		comments.GET("/:videoId", api.listComments)

		comments.POST("/:videoId", authed, api.addComment)
		comments.PATCH("/c/:commentId", authed, api.updateComment)
		comments.DELETE("/c/:commentId", authed, api.deleteComment)
	}
}

func setupLikeRoutes(router *gin.RouterGroup, api *API, authed gin.HandlerFunc) {
	likes := router.Group("/likes", authed)
	{
		likes.POST("/toggle/v/:videoId", api.toggleVideoLike)
		likes.POST("/toggle/c/:commentId", api.toggleCommentLike)
		likes.POST("/toggle/t/:tweetId", api.toggleTweetLike)
		likes.GET("/videos", api.likedVideos)
	}
}

func setupPlaylistRoutes(router *gin.RouterGroup, api *API, authed gin.HandlerFunc) {
	playlists := router.Group("/playlist")
	{
		playlists.GET("/user/:userId", api.userPlaylists)
		playlists.GET("/:playlistId", api.getPlaylist)

		playlists.POST("", authed, api.createPlaylist)
		playlists.PATCH("/add/:videoId/:playlistId", authed, api.addPlaylistVideo)
		playlists.PATCH("/remove/:videoId/:playlistId", authed, api.removePlaylistVideo)
		playlists.PATCH("/:playlistId", authed, api.updatePlaylist)
		playlists.DELETE("/:playlistId", authed, api.deletePlaylist)
	}
}

func setupSubscriptionRoutes(router *gin.RouterGroup, api *API, authed gin.HandlerFunc) {
	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.GET("/c/:channelId", api.channelSubscribers)
		subscriptions.GET("/u/:subscriberId", api.subscribedChannels)

		subscriptions.POST("/c/:channelId", authed, api.toggleSubscription)
	}
}

func setupTweetRoutes(router *gin.RouterGroup, api *API, authed gin.HandlerFunc) {
	tweets := router.Group("/tweets")
	{
		tweets.GET("/user/:userId", api.userTweets)

		tweets.POST("", authed, api.createTweet)
		tweets.PATCH("/:tweetId", authed, api.updateTweet)
		tweets.DELETE("/:tweetId", authed, api.deleteTweet)
	}
}

func setupDashboardRoutes(router *gin.RouterGroup, api *API, authed gin.HandlerFunc) {
	dashboard := router.Group("/dashboard", authed)
	{
		dashboard.GET("/stats", api.channelStats)
		dashboard.GET("/videos", api.channelVideos)
	}
}
