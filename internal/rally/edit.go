package rally

import (
	"fmt"
	"sort"

	"rallycut/internal/audio"
	"rallycut/internal/services"
)

// Adjust returns a copy of r with the given frame bounds and its aggregates
// recomputed over the new span. Hits outside the adjusted bounds are
// dropped; the remaining hits keep their original times.
func Adjust(r Rally, startFrame, endFrame int, crowd, motion audio.Curve, media Media) (Rally, error) {
	if startFrame < 0 {
		startFrame = 0
	}
	if total := media.TotalFrames(); total > 0 && endFrame > total {
		endFrame = total
	}
	if startFrame >= endFrame {
		return Rally{}, services.Wrap(services.ErrValidation, "rally", "adjust",
			fmt.Sprintf("start frame %d must precede end frame %d", startFrame, endFrame), nil)
	}

	adjusted := r
	adjusted.StartFrame = startFrame
	adjusted.EndFrame = endFrame

	start := adjusted.StartTime()
	end := adjusted.EndTime()
	kept := make([]audio.Hit, 0, len(r.Hits))
	for _, hit := range r.Hits {
		if hit.Time >= start && hit.Time <= end {
			kept = append(kept, hit)
		}
	}
	adjusted.Hits = kept
	adjusted.HitCount = len(kept)
	adjusted.Confidence = meanConfidence(kept)
	adjusted.CrowdIntensity = crowd.MeanBetween(start, end)
	adjusted.MotionIntensity = motion.MeanBetween(start, end)
	return adjusted, nil
}

// Split divides a rally at the given timestamp into two rallies rebuilt with
// the detector's context rules. Both sides must retain at least one hit.
func Split(r Rally, at float64, crowd, motion audio.Curve, media Media, params Params) (Rally, Rally, error) {
	var before, after []audio.Hit
	for _, hit := range r.Hits {
		if hit.Time < at {
			before = append(before, hit)
		} else {
			after = append(after, hit)
		}
	}
	if len(before) == 0 || len(after) == 0 {
		return Rally{}, Rally{}, services.Wrap(services.ErrValidation, "rally", "split",
			fmt.Sprintf("split at %.2fs leaves an empty side", at), nil)
	}
	first := build(before, r.ID, crowd, motion, media, params)
	second := build(after, r.ID+1, crowd, motion, media, params)
	return first, second, nil
}

// Merge unions two rallies into one rebuilt from their combined hits.
func Merge(a, b Rally, crowd, motion audio.Curve, media Media, params Params) Rally {
	combined := make([]audio.Hit, 0, len(a.Hits)+len(b.Hits))
	combined = append(combined, a.Hits...)
	combined = append(combined, b.Hits...)
	sort.Slice(combined, func(i, j int) bool { return combined[i].Time < combined[j].Time })
	id := a.ID
	if b.ID < id {
		id = b.ID
	}
	return build(combined, id, crowd, motion, media, params)
}

// Renumber reassigns ids in start-time order after edits so ids stay unique
// and monotonic.
func Renumber(rallies []Rally) {
	sort.Slice(rallies, func(i, j int) bool { return rallies[i].StartTime() < rallies[j].StartTime() })
	for i := range rallies {
		rallies[i].ID = int64(i + 1)
	}
}
