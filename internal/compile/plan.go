// Package compile assembles selected rallies into a highlight video with
// ffmpeg, with optional cross-fade transitions between clips.
package compile

import (
	"sort"
	"time"

	"rallycut/internal/scoring"
)

// Options controls highlight assembly.
type Options struct {
	ContextBefore      float64
	ContextAfter       float64
	TransitionDuration float64
	AddTransitions     bool
	MaxDuration        float64
	// CommandTimeout bounds each individual ffmpeg invocation. Zero means
	// no per-command bound beyond the caller's context.
	CommandTimeout time.Duration
}

// Clip is one source extract in the output, in seconds.
type Clip struct {
	RallyID  int64
	Start    float64
	Duration float64
	Rank     int
}

// Plan turns scored rallies into an ordered clip list. Each clip expands the
// rally by the compilation context, clamped at the source start. When the
// total runs over the duration budget the lowest-ranked clips are dropped
// first. The surviving clips come back in chronological order.
func Plan(scored []scoring.ScoredRally, sourceDuration float64, opts Options) []Clip {
	clips := make([]Clip, 0, len(scored))
	for _, s := range scored {
		start := s.Rally.StartTime() - opts.ContextBefore
		if start < 0 {
			start = 0
		}
		end := s.Rally.EndTime() + opts.ContextAfter
		if sourceDuration > 0 && end > sourceDuration {
			end = sourceDuration
		}
		if end <= start {
			continue
		}
		clips = append(clips, Clip{
			RallyID:  s.Rally.ID,
			Start:    start,
			Duration: end - start,
			Rank:     s.Rank,
		})
	}

	if opts.MaxDuration > 0 {
		sort.SliceStable(clips, func(a, b int) bool { return clips[a].Rank < clips[b].Rank })
		total := 0.0
		kept := clips[:0]
		for _, clip := range clips {
			if total+clip.Duration > opts.MaxDuration {
				continue
			}
			kept = append(kept, clip)
			total += clip.Duration
		}
		clips = kept
	}

	sort.SliceStable(clips, func(a, b int) bool { return clips[a].Start < clips[b].Start })
	return clips
}

// TotalDuration sums the planned clip lengths, ignoring transition overlap.
func TotalDuration(clips []Clip) float64 {
	total := 0.0
	for _, clip := range clips {
		total += clip.Duration
	}
	return total
}
