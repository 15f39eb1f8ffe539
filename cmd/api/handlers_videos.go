package main

import (
	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/response"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/service"
)

func (api *API) listVideos(c *gin.Context) {
	p, limit, ok := page(c, defaultPageLimit)
	if !ok {
		return
	}

	videos, err := api.videos.List(c.Request.Context(), viewer(c), service.FeedInput{
		Query:    c.Query("query"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		UserID:   c.Query("userId"),
		Page:     p,
		Limit:    limit,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, videos, "Videos fetched successfully")
}

func (api *API) publishVideo(c *gin.Context) {
	sess, done := api.startUploads(c)
	defer done()

	videoFile, err := formFile(c, sess, "videoFile")
	if err != nil {
		response.Fail(c, err)
		return
	}
	thumbnail, err := formFile(c, sess, "thumbnail")
	if err != nil {
		response.Fail(c, err)
		return
	}

	video, err := api.videos.Publish(c.Request.Context(), viewer(c), service.PublishInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, video, "Video published successfully")
}

func (api *API) getVideo(c *gin.Context) {
	video, err := api.videos.Get(c.Request.Context(), c.Param("videoId"), viewer(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, video, "Video fetched successfully")
}

func (api *API) updateVideo(c *gin.Context) {
	sess, done := api.startUploads(c)
	defer done()

	thumbnail, err := formFile(c, sess, "thumbnail")
	if err != nil {
		response.Fail(c, err)
		return
	}

	video, err := api.videos.Update(c.Request.Context(), viewer(c), c.Param("videoId"), service.UpdateVideoInput{
		Title:       postForm(c, "title"),
		Description: postForm(c, "description"),
		Thumbnail:   thumbnail,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, video, "Video updated successfully")
}

func (api *API) deleteVideo(c *gin.Context) {
	if err := api.videos.Delete(c.Request.Context(), viewer(c), c.Param("videoId")); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{}, "Video deleted successfully")
}

func (api *API) togglePublish(c *gin.Context) {
	video, err := api.videos.TogglePublish(c.Request.Context(), viewer(c), c.Param("videoId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, video, "Video publish status toggled")
}
