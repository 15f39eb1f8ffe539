package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/test", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Created(c, gin.H{"id": "1"}, "Video published")
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(201), body["statusCode"])
	assert.Equal(t, "Video published", body["message"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"id": "1"}, body["data"])
}

func TestFailEnvelope(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Fail(c, apperror.InvalidField("videoId", "Invalid video id"))
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 400, body.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid video id", body.Message)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "videoId", body.Errors[0].Field)
}

func TestFailEmptyErrorsList(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Fail(c, apperror.NotFoundOrForbidden("Comment not found"))
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"errors":[]`)
	assert.NotContains(t, w.Body.String(), `"data"`)
}

func TestFailHidesInternalMessages(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Fail(c, errors.New("pq: password authentication failed"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password authentication")
	assert.Contains(t, w.Body.String(), internalMessage)
}
