// Package upload spools multipart files to local disk so they can be probed
// and pushed to object storage.
package upload

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
)

const (
	filePrefix = "upload-"

	// DefaultMaxAge is how long a staged file may outlive its request before
	// the sweeper removes it
	DefaultMaxAge = time.Hour
)

// ErrTooLarge is returned when a file exceeds the configured size
var ErrTooLarge = errors.New("upload exceeds the maximum allowed size")

// File is an uploaded file on local disk
type File struct {
	Path     string
	Filename string
	Size     int64
	Checksum string
}

// Stager writes uploaded files into a staging directory
type Stager struct {
	dir     string
	maxSize int64
}

// NewStager creates the staging directory under baseDir. An empty baseDir
// uses the system temp directory; a zero maxSize disables the size check.
func NewStager(baseDir string, maxSize int64) (*Stager, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	dir := filepath.Join(baseDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Stager{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the staging directory
func (s *Stager) Dir() string {
	return s.dir
}

// Stage copies header to a new file in the staging directory, computing its
// MD5 checksum while writing
func (s *Stager) Stage(ctx context.Context, header *multipart.FileHeader) (*File, error) {
	if s.maxSize > 0 && header.Size > s.maxSize {
		return nil, ErrTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, filePrefix+"*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}
	path := dst.Name()

	var reader io.Reader = src
	if s.maxSize > 0 {
		reader = io.LimitReader(src, s.maxSize+1)
	}

	hash := md5.New()
	size, err := io.Copy(io.MultiWriter(dst, hash), reader)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxSize > 0 && size > s.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write staged file: %w", err)
	}

	file := &File{
		Path:     path,
		Filename: header.Filename,
		Size:     size,
		Checksum: hex.EncodeToString(hash.Sum(nil)),
	}

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"filename": file.Filename,
		"size":     file.Size,
		"checksum": file.Checksum,
	}).Debug("upload staged")

	return file, nil
}

// Session tracks the files staged while serving one request
type Session struct {
	stager *Stager
	mu     sync.Mutex
	files  []*File
}

// NewSession starts a session whose files are removed on Close
func (s *Stager) NewSession() *Session {
	return &Session{stager: s}
}

// Stage stages header and remembers the file for Close
func (sess *Session) Stage(ctx context.Context, header *multipart.FileHeader) (*File, error) {
	file, err := sess.stager.Stage(ctx, header)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.files = append(sess.files, file)
	sess.mu.Unlock()
	return file, nil
}

// Close removes every file staged in the session
func (sess *Session) Close() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var errs []error
	for _, file := range sess.files {
		if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	sess.files = nil
	return errors.Join(errs...)
}

// CleanupExpired periodically removes staged files older than maxAge. Files
// are normally removed by their session; the sweep catches the ones left by
// a crash.
func (s *Stager) CleanupExpired(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep(maxAge)
			if err != nil {
				logging.FromContext(ctx).WarnWithErr("failed to sweep staged uploads", err)
			}
			if removed > 0 {
				logging.FromContext(ctx).Infof("removed %d expired staged uploads", removed)
			}
		}
	}
}

// Sweep removes staged files last modified more than maxAge ago
func (s *Stager) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
