// Package media provides validation and type detection for story media URLs.
package media

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/glancelabs/glance/internal/models"
)

// Common errors
var (
	ErrInvalidURL        = errors.New("invalid media url")
	ErrUnsupportedFormat = errors.New("unsupported media format")
)

// Detector resolves the media type of a story from its URL extension
type Detector struct {
	imageFormats map[string]bool
	videoFormats map[string]bool
}

// NewDetector creates a detector for the given supported formats.
// Formats are matched case-insensitively without the leading dot.
func NewDetector(imageFormats, videoFormats []string) *Detector {
	d := &Detector{
		imageFormats: make(map[string]bool, len(imageFormats)),
		videoFormats: make(map[string]bool, len(videoFormats)),
	}
	for _, f := range imageFormats {
		d.imageFormats[strings.ToLower(strings.TrimPrefix(f, "."))] = true
	}
	for _, f := range videoFormats {
		d.videoFormats[strings.ToLower(strings.TrimPrefix(f, "."))] = true
	}
	return d
}

// Detect validates the URL and returns the media type implied by its extension
func (d *Detector) Detect(rawURL string) (models.MediaType, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidURL
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if ext == "" {
		return "", ErrUnsupportedFormat
	}

	switch {
	case d.imageFormats[ext]:
		return models.MediaTypeImage, nil
	case d.videoFormats[ext]:
		return models.MediaTypeVideo, nil
	default:
		return "", ErrUnsupportedFormat
	}
}
