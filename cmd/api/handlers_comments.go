package main

import (
	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/response"
)

type contentRequest struct {
	Content string `json:"content"`
}

func (api *API) listComments(c *gin.Context) {
	p, limit, ok := page(c, defaultPageLimit)
	if !ok {
		return
	}

	comments, err := api.comments.List(c.Request.Context(), c.Param("videoId"), viewer(c), p, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, comments, "Comments fetched successfully")
}

func (api *API) addComment(c *gin.Context) {
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := api.comments.Add(c.Request.Context(), viewer(c), c.Param("videoId"), req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, comment, "Comment added successfully")
}

func (api *API) updateComment(c *gin.Context) {
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := api.comments.Update(c.Request.Context(), viewer(c), c.Param("commentId"), req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, comment, "Comment updated successfully")
}

func (api *API) deleteComment(c *gin.Context) {
	if err := api.comments.Delete(c.Request.Context(), viewer(c), c.Param("commentId")); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{}, "Comment deleted successfully")
}
