// Package response writes the uniform JSON envelope returned by every endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
)

const internalMessage = "Something went wrong"

// Envelope is the success body
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorEnvelope is the failure body
type ErrorEnvelope struct {
	StatusCode int                   `json:"statusCode"`
	Message    string                `json:"message"`
	Success    bool                  `json:"success"`
	Errors     []apperror.FieldError `json:"errors"`
}

// Success writes a success envelope
func Success(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// OK writes a 200 success envelope
func OK(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusOK, data, message)
}

// Created writes a 201 success envelope
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message)
}

// Fail converts err to its envelope, logs it and aborts the request
func Fail(c *gin.Context, err error) {
	appErr := apperror.From(err)
	status := appErr.Status()

	logger := logging.FromContext(c.Request.Context()).
		WithFields(map[string]interface{}{
			"kind":   appErr.Kind.String(),
			"status": status,
			"path":   c.FullPath(),
		})

	message := appErr.Message
	if appErr.Internal() {
		logger.ErrorWithErr(appErr.Message, err)
		message = internalMessage
	} else {
		logger.Debug(appErr.Message)
	}

	fields := appErr.Fields
	if fields == nil {
		fields = []apperror.FieldError{}
	}

	c.AbortWithStatusJSON(status, ErrorEnvelope{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     fields,
	})
}
