package scoring

import (
	"math"
	"sort"

	"rallycut/internal/rally"
)

// ScoredRally pairs a rally with its normalized feature components, weighted
// score, and rank within the scored population.
type ScoredRally struct {
	Rally      rally.Rally
	Components map[Feature]float64
	Score      float64
	Rank       int
	Selected   bool
}

// Budget bounds the highlight selection. Each selected rally contributes its
// padded duration plus the compilation context on both sides.
type Budget struct {
	MaxDuration   float64
	ContextBefore float64
	ContextAfter  float64
}

// ClipDuration returns the compiled length a rally would occupy.
func (b Budget) ClipDuration(r rally.Rally) float64 {
	return r.Duration() + b.ContextBefore + b.ContextAfter
}

// Score normalizes each feature across the rally population, computes the
// weighted sum per rally, and assigns dense ranks from the highest score
// down. Ties rank the earlier rally first. The input slice is not modified.
func Score(rallies []rally.Rally, weights Weights) []ScoredRally {
	if len(rallies) == 0 {
		return nil
	}

	raw := make([]map[Feature]float64, len(rallies))
	for i, r := range rallies {
		raw[i] = map[Feature]float64{
			FeatureDuration:        r.Duration(),
			FeatureHitCount:        float64(r.HitCount),
			FeatureCrowdIntensity:  r.CrowdIntensity,
			FeatureMotionIntensity: r.MotionIntensity,
			FeatureConfidence:      r.Confidence,
		}
	}

	scored := make([]ScoredRally, len(rallies))
	for i, r := range rallies {
		components := make(map[Feature]float64, len(raw[i]))
		for _, feature := range Features() {
			components[feature] = normalize(raw, feature, raw[i][feature])
		}
		score := 0.0
		for _, feature := range Features() {
			score += weights.Get(feature) * components[feature]
		}
		scored[i] = ScoredRally{Rally: r, Components: components, Score: score}
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scored[order[a]].Score != scored[order[b]].Score {
			return scored[order[a]].Score > scored[order[b]].Score
		}
		return scored[order[a]].Rally.StartTime() < scored[order[b]].Rally.StartTime()
	})
	for rank, idx := range order {
		scored[idx].Rank = rank + 1
	}
	return scored
}

// normalize min-max scales a raw value against the population. When every
// rally shares the same value the feature carries no signal, so each rally
// gets full credit rather than zero.
func normalize(raw []map[Feature]float64, feature Feature, value float64) float64 {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, features := range raw {
		v := features[feature]
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return 1.0
	}
	return (value - lo) / (hi - lo)
}

// Select marks the highest-ranked rallies that fit the duration budget.
// Rallies are considered in rank order; one that does not fit is skipped so
// a shorter lower-ranked rally can still use the remaining budget. With a
// non-positive budget everything is selected.
func Select(scored []ScoredRally, budget Budget) []ScoredRally {
	byRank := make([]*ScoredRally, len(scored))
	for i := range scored {
		scored[i].Selected = false
		byRank[i] = &scored[i]
	}
	sort.SliceStable(byRank, func(a, b int) bool { return byRank[a].Rank < byRank[b].Rank })

	if budget.MaxDuration <= 0 {
		for _, s := range byRank {
			s.Selected = true
		}
		return scored
	}

	total := 0.0
	for _, s := range byRank {
		clip := budget.ClipDuration(s.Rally)
		if total+clip > budget.MaxDuration {
			continue
		}
		s.Selected = true
		total += clip
	}
	return scored
}

// SortChronological orders scored rallies by start time, the order clips
// appear in a compilation.
func SortChronological(scored []ScoredRally) {
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Rally.StartTime() < scored[b].Rally.StartTime()
	})
}

// SortByRank orders scored rallies best first.
func SortByRank(scored []ScoredRally) {
	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Rank < scored[b].Rank })
}
