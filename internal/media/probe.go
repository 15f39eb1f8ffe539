// Package media inspects uploaded media files with ffprobe.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrNotVideo is returned when a file has no video stream
var ErrNotVideo = errors.New("file has no video stream")

// Metadata holds the parts of the ffprobe output we use
type Metadata struct {
	Format  FormatInfo   `json:"format"`
	Streams []StreamInfo `json:"streams"`
}

// FormatInfo holds format information
type FormatInfo struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// StreamInfo holds stream information
type StreamInfo struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

// Prober runs ffprobe
type Prober struct {
	ffprobePath string
	run         func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewProber creates a prober using the given ffprobe binary
func NewProber(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Probe extracts metadata from a media file
func (p *Prober) Probe(ctx context.Context, inputPath string) (*Metadata, error) {
	out, err := p.run(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)
	if err != nil {
		return nil, err
	}

	var metadata Metadata
	if err := json.Unmarshal(out, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &metadata, nil
}

// Duration returns the length of a video file in seconds
func (p *Prober) Duration(ctx context.Context, inputPath string) (float64, error) {
	metadata, err := p.Probe(ctx, inputPath)
	if err != nil {
		return 0, err
	}
	return metadata.VideoDuration()
}

// VideoDuration returns the container duration, falling back to the video
// stream's own duration
func (m *Metadata) VideoDuration() (float64, error) {
	var stream *StreamInfo
	for i := range m.Streams {
		if m.Streams[i].CodecType == "video" {
			stream = &m.Streams[i]
			break
		}
	}
	if stream == nil {
		return 0, ErrNotVideo
	}

	for _, raw := range []string{m.Format.Duration, stream.Duration} {
		if duration, err := strconv.ParseFloat(raw, 64); err == nil && duration >= 0 {
			return duration, nil
		}
	}
	return 0, fmt.Errorf("ffprobe reported no duration")
}
