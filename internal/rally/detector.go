package rally

import (
	"math"
	"sort"

	"rallycut/internal/audio"
)

// Params tunes rally grouping.
type Params struct {
	// MinHitsPerRally discards candidate groups with too few hits.
	MinHitsPerRally int
	// MaxHitInterval is the largest gap in seconds between consecutive
	// hits that still belong to one rally.
	MaxHitInterval float64
	// MinRallyGap merges adjacent rallies whose hit spans are closer than
	// this, so near-duplicates become one rally.
	MinRallyGap float64
	// ContextBefore/ContextAfter expand the final boundaries, clamped to
	// the media bounds. Hits are never shifted by the expansion.
	ContextBefore float64
	ContextAfter  float64
}

// Detect groups hits into rallies. Deterministic and idempotent: identical
// inputs always produce an identical rally set, ordered by start time with
// monotonically increasing ids.
func Detect(hits []audio.Hit, crowd, motion audio.Curve, media Media, params Params) []Rally {
	if len(hits) < params.MinHitsPerRally || params.MinHitsPerRally < 1 {
		return nil
	}

	sorted := make([]audio.Hit, len(hits))
	copy(sorted, hits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	clusters := groupByGap(sorted, params.MaxHitInterval)

	var surviving [][]audio.Hit
	for _, cluster := range clusters {
		if len(cluster) >= params.MinHitsPerRally {
			surviving = append(surviving, cluster)
		}
	}
	if len(surviving) == 0 {
		return nil
	}

	merged := mergeClose(surviving, params.MinRallyGap)

	rallies := make([]Rally, 0, len(merged))
	for i, cluster := range merged {
		rallies = append(rallies, build(cluster, int64(i+1), crowd, motion, media, params))
	}
	return rallies
}

func groupByGap(sorted []audio.Hit, maxInterval float64) [][]audio.Hit {
	var clusters [][]audio.Hit
	current := []audio.Hit{sorted[0]}
	for _, hit := range sorted[1:] {
		if hit.Time-current[len(current)-1].Time <= maxInterval {
			current = append(current, hit)
			continue
		}
		clusters = append(clusters, current)
		current = []audio.Hit{hit}
	}
	return append(clusters, current)
}

// mergeClose unions adjacent clusters whose boundary gap is under the
// minimum rally gap. Merging is preferred over leaving near-duplicate
// rallies side by side.
func mergeClose(clusters [][]audio.Hit, minGap float64) [][]audio.Hit {
	if len(clusters) <= 1 {
		return clusters
	}
	merged := [][]audio.Hit{clusters[0]}
	for _, cluster := range clusters[1:] {
		last := merged[len(merged)-1]
		gap := cluster[0].Time - last[len(last)-1].Time
		if gap < minGap {
			merged[len(merged)-1] = append(last, cluster...)
			continue
		}
		merged = append(merged, cluster)
	}
	return merged
}

// build creates a rally from an ordered hit cluster, expanding the hit span
// by the configured context and aggregating intensity over the unexpanded
// span.
func build(hits []audio.Hit, id int64, crowd, motion audio.Curve, media Media, params Params) Rally {
	firstHit := hits[0].Time
	lastHit := hits[len(hits)-1].Time

	start := math.Max(0, firstHit-params.ContextBefore)
	end := lastHit + params.ContextAfter
	if media.Duration > 0 {
		end = math.Min(media.Duration, end)
	}

	totalFrames := media.TotalFrames()
	startFrame := int(start * media.FPS)
	endFrame := int(math.Ceil(end * media.FPS))
	if startFrame < 0 {
		startFrame = 0
	}
	if totalFrames > 0 && endFrame > totalFrames {
		endFrame = totalFrames
	}
	if endFrame <= startFrame {
		endFrame = startFrame + 1
	}

	owned := make([]audio.Hit, len(hits))
	copy(owned, hits)

	return Rally{
		ID:              id,
		StartFrame:      startFrame,
		EndFrame:        endFrame,
		FPS:             media.FPS,
		Hits:            owned,
		HitCount:        len(owned),
		Confidence:      meanConfidence(owned),
		CrowdIntensity:  crowd.MeanBetween(firstHit, lastHit),
		MotionIntensity: motion.MeanBetween(firstHit, lastHit),
	}
}
