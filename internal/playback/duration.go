package playback

import "time"

// DurationPolicy converts media metadata into the playback duration the
// progress timer runs against.
type DurationPolicy struct {
	// Image is the fixed display duration for image stories, and the
	// fallback when a video's duration is unknown or its media fails to load.
	Image time.Duration
	// MaxVideo caps video playback duration.
	MaxVideo time.Duration
}

// ForImage returns the fixed image display duration
func (p DurationPolicy) ForImage() time.Duration {
	return p.Image
}

// ForVideo returns the playback duration for a video with the reported
// media duration. Zero or negative reported durations are treated as
// unavailable (corrupt metadata) and fall back to the default.
func (p DurationPolicy) ForVideo(reported time.Duration) time.Duration {
	if reported <= 0 {
		return p.Image
	}
	if reported > p.MaxVideo {
		return p.MaxVideo
	}
	return reported
}
