package main

import (
	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/response"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/service"
)

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (api *API) createPlaylist(c *gin.Context) {
	var req createPlaylistRequest
	if !bindJSON(c, &req) {
		return
	}

	playlist, err := api.playlists.Create(c.Request.Context(), viewer(c), req.Name, req.Description)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, playlist, "Playlist created successfully")
}

func (api *API) userPlaylists(c *gin.Context) {
	p, limit, ok := page(c, defaultPageLimit)
	if !ok {
		return
	}

	playlists, err := api.playlists.ListByUser(c.Request.Context(), c.Param("userId"), viewer(c), p, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, playlists, "Playlists fetched successfully")
}

func (api *API) getPlaylist(c *gin.Context) {
	playlist, err := api.playlists.Get(c.Request.Context(), c.Param("playlistId"), viewer(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, playlist, "Playlist fetched successfully")
}

func (api *API) addPlaylistVideo(c *gin.Context) {
	playlist, err := api.playlists.AddVideo(c.Request.Context(), viewer(c), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, playlist, "Video added to playlist")
}

func (api *API) removePlaylistVideo(c *gin.Context) {
	playlist, err := api.playlists.RemoveVideo(c.Request.Context(), viewer(c), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, playlist, "Video removed from playlist")
}

func (api *API) updatePlaylist(c *gin.Context) {
	var req updatePlaylistRequest
	if !bindJSON(c, &req) {
		return
	}

	playlist, err := api.playlists.Update(c.Request.Context(), viewer(c), c.Param("playlistId"), service.PlaylistInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, playlist, "Playlist updated successfully")
}

func (api *API) deletePlaylist(c *gin.Context) {
	if err := api.playlists.Delete(c.Request.Context(), viewer(c), c.Param("playlistId")); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{}, "Playlist deleted successfully")
}
