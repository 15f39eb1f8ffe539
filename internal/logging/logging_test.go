package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "JSON format to stdout",
			config: Config{Level: "info", Format: "json", Output: "stdout"},
		},
		{
			name:   "Console format to stderr",
			config: Config{Level: "debug", Format: "console", Output: "stderr"},
		},
		{
			name:   "Invalid log level defaults to info",
			config: Config{Level: "invalid", Format: "json", Output: "stdout"},
		},
		{
			name:   "File output",
			config: Config{Level: "warn", Format: "json", Output: filepath.Join(t.TempDir(), "api.log")},
		},
		{
			name:    "Unwritable file output",
			config:  Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "missing", "api.log")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("Expected non-nil logger")
			}
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output: %v (%q)", err, buf.String())
	}
	return entry
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf).
		WithRequestID("req-1").
		WithUserID("user-1").
		WithFields(map[string]interface{}{"video_id": "v-1"})

	logger.Info("toggled like")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-1" {
		t.Errorf("Expected request_id req-1, got %v", entry["request_id"])
	}
	if entry["user_id"] != "user-1" {
		t.Errorf("Expected user_id user-1, got %v", entry["user_id"])
	}
	if entry["video_id"] != "v-1" {
		t.Errorf("Expected video_id v-1, got %v", entry["video_id"])
	}
	if entry["message"] != "toggled like" {
		t.Errorf("Expected message 'toggled like', got %v", entry["message"])
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf).WithRequestID("req-ctx")

	ctx := logger.WithContext(context.Background())
	FromContext(ctx).Warn("from context")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-ctx" {
		t.Errorf("Expected request_id req-ctx, got %v", entry["request_id"])
	}
	if entry["level"] != "warn" {
		t.Errorf("Expected warn level, got %v", entry["level"])
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("Expected fallback logger")
	}
}

func TestLogHTTPRequestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.LogHTTPRequest("GET", "/api/v1/videos", "127.0.0.1", 500, 15*time.Millisecond)

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("Expected error level for 5xx, got %v", entry["level"])
	}
	if entry["status_code"] != float64(500) {
		t.Errorf("Expected status_code 500, got %v", entry["status_code"])
	}
	if entry["path"] != "/api/v1/videos" {
		t.Errorf("Expected path, got %v", entry["path"])
	}
}

func TestLogQueryWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.LogQuery("video_feed", 0, time.Millisecond, errors.New("boom"))

	entry := decodeLine(t, &buf)
	if entry["pipeline"] != "video_feed" {
		t.Errorf("Expected pipeline video_feed, got %v", entry["pipeline"])
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error boom, got %v", entry["error"])
	}
}

func TestNopLogger(t *testing.T) {
	logger := Nop()
	logger.Info("discarded")
	logger.ErrorWithErr("discarded", errors.New("x"))
}
