package main

import (
	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/response"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/service"
)

func likeMessage(state *service.LikeState) string {
	if state.IsLiked {
		return "Liked successfully"
	}
	return "Unliked successfully"
}

func (api *API) toggleVideoLike(c *gin.Context) {
	state, err := api.likes.ToggleVideoLike(c.Request.Context(), viewer(c), c.Param("videoId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, state, likeMessage(state))
}

func (api *API) toggleCommentLike(c *gin.Context) {
	state, err := api.likes.ToggleCommentLike(c.Request.Context(), viewer(c), c.Param("commentId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, state, likeMessage(state))
}

func (api *API) toggleTweetLike(c *gin.Context) {
	state, err := api.likes.ToggleTweetLike(c.Request.Context(), viewer(c), c.Param("tweetId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, state, likeMessage(state))
}

func (api *API) likedVideos(c *gin.Context) {
	p, limit, ok := page(c, defaultPageLimit)
	if !ok {
		return
	}

	videos, err := api.likes.LikedVideos(c.Request.Context(), viewer(c), p, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, videos, "Liked videos fetched successfully")
}
