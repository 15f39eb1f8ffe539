package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/service"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/upload"
)

const tooLargeMessage = "Upload exceeds the maximum allowed size"

// startUploads caps the request body and opens a staging session. The
// returned func removes every staged file.
func (api *API) startUploads(c *gin.Context) (*upload.Session, func()) {
	if api.uploads.maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, api.uploads.maxSize)
	}

	sess := api.uploads.stager.NewSession()
	return sess, func() {
		if err := sess.Close(); err != nil {
			logging.FromContext(c.Request.Context()).WarnWithErr("failed to remove staged uploads", err)
		}
	}
}

// formFile stages the multipart file under field. A missing field yields a
// nil upload.
func formFile(c *gin.Context, sess *upload.Session, field string) (*service.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return nil, nil
		case errors.As(err, &tooLarge):
			return nil, apperror.InvalidField(field, tooLargeMessage)
		default:
			return nil, apperror.InvalidArgument("Invalid multipart form")
		}
	}

	file, err := sess.Stage(c.Request.Context(), header)
	if err != nil {
		if errors.Is(err, upload.ErrTooLarge) {
			return nil, apperror.InvalidField(field, tooLargeMessage)
		}
		return nil, apperror.Store(err, "failed to stage upload")
	}

	return &service.Upload{Path: file.Path, Filename: file.Filename}, nil
}
