package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/response"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/service"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

// setSessionCookies stores the token pair as http-only cookies
func (api *API) setSessionCookies(c *gin.Context, tokens *auth.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken, int(api.cookies.accessTTL.Seconds()), "/", "", api.cookies.secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, tokens.RefreshToken, int(api.cookies.refreshTTL.Seconds()), "/", "", api.cookies.secure, true)
}

func (api *API) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", api.cookies.secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", api.cookies.secure, true)
}

func sessionBody(s *service.Session) gin.H {
	return gin.H{
		"user":         s.User,
		"accessToken":  s.Tokens.AccessToken,
		"refreshToken": s.Tokens.RefreshToken,
	}
}

func (api *API) register(c *gin.Context) {
	sess, done := api.startUploads(c)
	defer done()

	avatar, err := formFile(c, sess, "avatar")
	if err != nil {
		response.Fail(c, err)
		return
	}
	cover, err := formFile(c, sess, "coverImage")
	if err != nil {
		response.Fail(c, err)
		return
	}

	user, err := api.users.Register(c.Request.Context(), service.RegisterInput{
		FullName:   c.PostForm("fullName"),
		Email:      c.PostForm("email"),
		Username:   c.PostForm("username"),
		Password:   c.PostForm("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, user, "User registered successfully")
}

func (api *API) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := api.users.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	api.setSessionCookies(c, session.Tokens)
	response.OK(c, sessionBody(session), "User logged in successfully")
}

func (api *API) logout(c *gin.Context) {
	if err := api.users.Logout(c.Request.Context(), viewer(c)); err != nil {
		response.Fail(c, err)
		return
	}

	api.clearSessionCookies(c)
	response.OK(c, gin.H{}, "User logged out")
}

func (api *API) refreshToken(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if token == "" {
		var req refreshRequest
		// An empty body leaves the token empty, which the service rejects
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}

	session, err := api.users.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Fail(c, err)
		return
	}

	api.setSessionCookies(c, session.Tokens)
	response.OK(c, sessionBody(session), "Access token refreshed")
}

func (api *API) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := api.users.ChangePassword(c.Request.Context(), viewer(c), req.OldPassword, req.NewPassword); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{}, "Password changed successfully")
}

func (api *API) currentUser(c *gin.Context) {
	user, err := api.users.CurrentUser(c.Request.Context(), viewer(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, user, "Current user fetched successfully")
}

func (api *API) updateAccount(c *gin.Context) {
	var req updateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := api.users.UpdateAccount(c.Request.Context(), viewer(c), service.ProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, user, "Account details updated successfully")
}

func (api *API) updateAvatar(c *gin.Context) {
	api.replaceUserMedia(c, "avatar", api.users.UpdateAvatar, "Avatar updated successfully")
}

func (api *API) updateCoverImage(c *gin.Context) {
	api.replaceUserMedia(c, "coverImage", api.users.UpdateCoverImage, "Cover image updated successfully")
}

type mediaReplacer func(ctx context.Context, viewerID string, file *service.Upload) (*models.User, error)

func (api *API) replaceUserMedia(c *gin.Context, field string, replace mediaReplacer, message string) {
	sess, done := api.startUploads(c)
	defer done()

	file, err := formFile(c, sess, field)
	if err != nil {
		response.Fail(c, err)
		return
	}

	user, err := replace(c.Request.Context(), viewer(c), file)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, user, message)
}

func (api *API) channelProfile(c *gin.Context) {
	profile, err := api.users.ChannelProfile(c.Request.Context(), c.Param("username"), viewer(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, profile, "User channel fetched successfully")
}

func (api *API) watchHistory(c *gin.Context) {
	p, limit, ok := page(c, defaultPageLimit)
	if !ok {
		return
	}

	history, err := api.users.WatchHistory(c.Request.Context(), viewer(c), p, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, history, "Watch history fetched successfully")
}
