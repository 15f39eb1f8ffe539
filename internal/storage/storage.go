package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/config"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/tracing"
)

const (
	// Default part size for multipart uploads (10MB)
	DefaultPartSize = 10 * 1024 * 1024

	// Maximum number of concurrent parts
	MaxConcurrentParts = 4
)

// ErrForeignURL is returned when a URL does not point into the bucket
var ErrForeignURL = errors.New("url does not reference a stored object")

// Kind groups stored media under a key prefix
type Kind string

const (
	KindAvatar    Kind = "avatars"
	KindCover     Kind = "covers"
	KindVideo     Kind = "videos"
	KindThumbnail Kind = "thumbnails"
)

// Storage provides object storage operations
type Storage struct {
	client     *minio.Client
	bucketName string
	baseURL    string
}

// New creates a new storage client
func New(cfg config.StorageConfig) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	// Ensure bucket exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: cfg.BucketName,
		baseURL:    objectBaseURL(cfg),
	}, nil
}

// objectBaseURL is the prefix of every public object URL
func objectBaseURL(cfg config.StorageConfig) string {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return base + "/" + cfg.BucketName + "/"
}

// objectKey builds a unique key under the kind's prefix, keeping the
// original extension
func objectKey(kind Kind, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s/%s%s", kind, uuid.New().String(), ext)
}

// URL returns the public URL of an object key
func (s *Storage) URL(key string) string {
	return s.baseURL + key
}

// Key returns the object key a public URL points at
func (s *Storage) Key(url string) (string, error) {
	if !strings.HasPrefix(url, s.baseURL) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	key := strings.TrimPrefix(url, s.baseURL)
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return key, nil
}

// UploadFile uploads a local file under the kind's prefix and returns its
// public URL. Files larger than one part are sent as a parallel multipart
// upload.
func (s *Storage) UploadFile(ctx context.Context, kind Kind, filePath, originalName string) (url string, err error) {
	span, ctx := tracing.StartSpan(ctx, "storage.upload")
	tracing.SetTag(span, "kind", string(kind))
	start := time.Now()

	key := objectKey(kind, originalName)
	var size int64
	defer func() {
		duration := time.Since(start)
		metrics.RecordStorageOperation("upload", status(err), duration.Seconds(), size)
		metrics.RecordUpload(string(kind), size, err)
		logging.FromContext(ctx).LogStorageOperation("upload", s.bucketName, key, size, duration, err)
		tracing.Finish(span, err)
	}()

	info, err := os.Stat(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	size = info.Size()

	opts := minio.PutObjectOptions{ContentType: getContentType(originalName)}
	if size >= DefaultPartSize {
		opts.PartSize = DefaultPartSize
		opts.NumThreads = MaxConcurrentParts
	}

	if _, err = s.client.FPutObject(ctx, s.bucketName, key, filePath, opts); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.URL(key), nil
}

// Delete deletes the object behind a public URL. Deleting a missing object
// is not an error.
func (s *Storage) Delete(ctx context.Context, url string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorageOperation("delete", status(err), time.Since(start).Seconds(), 0)
	}()

	key, err := s.Key(url)
	if err != nil {
		return err
	}

	if err = s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// BatchDelete deletes the objects behind several public URLs. URLs that do
// not point into the bucket are skipped and reported in the returned error.
func (s *Storage) BatchDelete(ctx context.Context, urls []string) error {
	var errs []error
	keys := make([]string, 0, len(urls))
	for _, url := range urls {
		key, err := s.Key(url)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		keys = append(keys, key)
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	for result := range s.client.RemoveObjects(ctx, s.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("failed to delete object %s: %w", result.ObjectName, result.Err))
		}
	}

	return errors.Join(errs...)
}

// Health checks that the bucket is reachable
func (s *Storage) Health(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

// getContentType returns the content type based on file extension
func getContentType(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
