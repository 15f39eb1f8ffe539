package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/response"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/service"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/validation"
)

const (
	defaultPageLimit    = 10
	channelVideosLimit  = 20
	healthCheckDeadline = 5 * time.Second
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type cookieSettings struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type uploadSettings struct {
	stager  *upload.Stager
	maxSize int64
}

// API holds the services behind the HTTP handlers
type API struct {
	health map[string]healthChecker

	users         *service.UserService
	videos        *service.VideoService
	comments      *service.CommentService
	likes         *service.LikeService
	playlists     *service.PlaylistService
	subscriptions *service.SubscriptionService
	tweets        *service.TweetService
	dashboard     *service.DashboardService

	cookies cookieSettings
	uploads uploadSettings
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckDeadline)
	defer cancel()

	components := make(gin.H, len(api.health))
	healthy := true
	for name, checker := range api.health {
		if err := checker.Health(ctx); err != nil {
			healthy = false
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "unhealthy",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"components": components,
	})
}

// page parses the page and limit query parameters
func page(c *gin.Context, defaultLimit int) (int, int, bool) {
	p, limit, err := validation.Pagination(c.Query("page"), c.Query("limit"), defaultLimit)
	if err != nil {
		response.Fail(c, err)
		return 0, 0, false
	}
	return p, limit, true
}

// bindJSON decodes the request body into dst and reports a malformed body as
// an invalid argument
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Fail(c, apperror.InvalidArgument("Invalid request body"))
		return false
	}
	return true
}

// postForm returns a pointer to a submitted form value, or nil when the field
// was not sent
func postForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

func viewer(c *gin.Context) string {
	return middleware.ViewerID(c)
}
