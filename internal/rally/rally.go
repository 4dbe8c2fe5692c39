// Package rally groups detected ball hits into temporal segments and
// maintains their derived aggregates.
package rally

import (
	"math"

	"rallycut/internal/audio"
)

// Rally is a detected contiguous sequence of ball hits treated as one
// playable action. Frame bounds include context padding; the hit span does
// not.
type Rally struct {
	ID              int64       `json:"id"`
	StartFrame      int         `json:"start_frame"`
	EndFrame        int         `json:"end_frame"`
	FPS             float64     `json:"fps"`
	Hits            []audio.Hit `json:"hits"`
	HitCount        int         `json:"hit_count"`
	Confidence      float64     `json:"confidence"`
	CrowdIntensity  float64     `json:"crowd_intensity"`
	MotionIntensity float64     `json:"motion_intensity"`

	// Feedback fields. nil means the user has not weighed in, which is
	// distinct from an explicit false.
	UserRating *int  `json:"user_rating,omitempty"`
	Confirmed  *bool `json:"confirmed,omitempty"`
	Highlight  *bool `json:"highlight,omitempty"`
}

// StartTime returns the rally start in seconds.
func (r Rally) StartTime() float64 {
	if r.FPS <= 0 {
		return 0
	}
	return float64(r.StartFrame) / r.FPS
}

// EndTime returns the rally end in seconds.
func (r Rally) EndTime() float64 {
	if r.FPS <= 0 {
		return 0
	}
	return float64(r.EndFrame) / r.FPS
}

// Duration returns the rally length in seconds, context padding included.
func (r Rally) Duration() float64 {
	return r.EndTime() - r.StartTime()
}

// HitSpan returns the time range covered by the rally's hits, without
// context padding. Aggregates are computed over this span.
func (r Rally) HitSpan() (start, end float64) {
	if len(r.Hits) == 0 {
		return r.StartTime(), r.EndTime()
	}
	return r.Hits[0].Time, r.Hits[len(r.Hits)-1].Time
}

// Media describes the source the rallies were detected in.
type Media struct {
	Duration float64
	FPS      float64
}

// TotalFrames returns the frame count of the source.
func (m Media) TotalFrames() int {
	return int(math.Ceil(m.Duration * m.FPS))
}

func meanConfidence(hits []audio.Hit) float64 {
	if len(hits) == 0 {
		return 0
	}
	sum := 0.0
	for _, hit := range hits {
		sum += hit.Confidence
	}
	return sum / float64(len(hits))
}
