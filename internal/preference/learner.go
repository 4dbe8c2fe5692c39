// Package preference adjusts scoring weights from user keep/reject
// decisions so future rankings drift toward demonstrated taste.
package preference

import (
	"time"

	"rallycut/internal/scoring"
)

// Decision is the user's verdict on a rally.
type Decision string

const (
	DecisionKeep   Decision = "keep"
	DecisionReject Decision = "reject"
)

// Record is one unit of user feedback, captured with the component scores
// the rally had when the user judged it. Replaying records against the
// initial weights reproduces the learned state exactly.
type Record struct {
	RallyID    int64
	Components map[scoring.Feature]float64
	Decision   Decision
	Rating     int // 1-5, 0 when the user gave a bare keep/reject
	At         time.Time
}

// Strength maps a record to a signed learning multiplier. A star rating
// grades the signal: 5 is a full keep, 1 a full reject, 3 neutral. Bare
// decisions count as full strength.
func (r Record) Strength() float64 {
	if r.Rating >= 1 && r.Rating <= 5 {
		return float64(r.Rating-3) / 2.0
	}
	switch r.Decision {
	case DecisionKeep:
		return 1.0
	case DecisionReject:
		return -1.0
	}
	return 0
}

// Learner applies feedback to weights at a fixed learning rate.
type Learner struct {
	rate float64
}

// New returns a learner. A non-positive rate disables learning.
func New(rate float64) Learner {
	return Learner{rate: rate}
}

// Update folds one record into the weights. Features that contributed more
// to the rally's score move more: the per-feature delta is the learning
// rate times the record's strength times that feature's component score.
// The returned weights keep the same total mass as the input.
func (l Learner) Update(weights scoring.Weights, rec Record) scoring.Weights {
	strength := rec.Strength()
	if l.rate <= 0 || strength == 0 || len(rec.Components) == 0 {
		return weights.Clone()
	}
	deltas := make(map[scoring.Feature]float64, len(rec.Components))
	for feature, component := range rec.Components {
		deltas[feature] = l.rate * strength * component
	}
	return weights.Apply(deltas)
}

// Replay folds an ordered feedback history into the weights. Determinism
// matters here: the persisted history plus the default weights is the
// source of truth for the learned state.
func (l Learner) Replay(weights scoring.Weights, records []Record) scoring.Weights {
	current := weights.Clone()
	for _, rec := range records {
		current = l.Update(current, rec)
	}
	return current
}
