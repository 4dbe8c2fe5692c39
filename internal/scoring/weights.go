// Package scoring ranks rallies by a weighted sum of normalized features
// and selects a highlight set under a duration budget.
package scoring

import "sort"

// Feature names a scored rally attribute. The names double as the keys used
// in configuration and persisted weight snapshots.
type Feature string

const (
	FeatureDuration        Feature = "duration"
	FeatureHitCount        Feature = "hit_count"
	FeatureCrowdIntensity  Feature = "crowd_intensity"
	FeatureMotionIntensity Feature = "motion_intensity"
	FeatureConfidence      Feature = "confidence"
)

// Features lists every scored feature in canonical order.
func Features() []Feature {
	return []Feature{
		FeatureDuration,
		FeatureHitCount,
		FeatureCrowdIntensity,
		FeatureMotionIntensity,
		FeatureConfidence,
	}
}

// Weights holds the per-feature scoring weights. The zero value is unusable;
// construct with Default or FromMap.
type Weights struct {
	values map[Feature]float64
}

// Default returns the initial weights used before any preference feedback.
func Default() Weights {
	return Weights{values: map[Feature]float64{
		FeatureDuration:        3.0,
		FeatureHitCount:        2.5,
		FeatureCrowdIntensity:  1.5,
		FeatureMotionIntensity: 1.0,
		FeatureConfidence:      0.5,
	}}
}

// FromMap builds weights from string keys. Unknown keys are ignored and
// missing features fall back to their defaults, so a stale snapshot still
// yields a complete weight set.
func FromMap(m map[string]float64) Weights {
	w := Default()
	for _, feature := range Features() {
		if v, ok := m[string(feature)]; ok {
			w.values[feature] = v
		}
	}
	return w
}

// Get returns the weight for a feature, zero if unknown.
func (w Weights) Get(feature Feature) float64 {
	return w.values[feature]
}

// Sum returns the total weight mass.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w.values {
		total += v
	}
	return total
}

// Map returns a plain map copy keyed by feature name, for persistence and
// display. Keys are stable; iterate Features for ordered output.
func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, len(w.values))
	for feature, v := range w.values {
		out[string(feature)] = v
	}
	return out
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	values := make(map[Feature]float64, len(w.values))
	for feature, v := range w.values {
		values[feature] = v
	}
	return Weights{values: values}
}

// Apply adds the given per-feature deltas, clamps each weight at zero, and
// rescales so the total weight mass is unchanged. Rescaling keeps scores
// comparable across feedback rounds. If clamping drives every weight to
// zero the update is discarded.
func (w Weights) Apply(deltas map[Feature]float64) Weights {
	target := w.Sum()
	next := w.Clone()
	for feature, delta := range deltas {
		if _, ok := next.values[feature]; !ok {
			continue
		}
		next.values[feature] += delta
		if next.values[feature] < 0 {
			next.values[feature] = 0
		}
	}
	sum := next.Sum()
	if sum <= 0 || target <= 0 {
		return w.Clone()
	}
	scale := target / sum
	for feature := range next.values {
		next.values[feature] *= scale
	}
	return next
}

// SortedNames returns the feature names present in the weight set, sorted.
func (w Weights) SortedNames() []string {
	names := make([]string, 0, len(w.values))
	for feature := range w.values {
		names = append(names, string(feature))
	}
	sort.Strings(names)
	return names
}
