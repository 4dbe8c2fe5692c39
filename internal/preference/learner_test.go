package preference

import (
	"math"
	"testing"

	"rallycut/internal/scoring"
)

func crowdHeavyComponents() map[scoring.Feature]float64 {
	return map[scoring.Feature]float64{
		scoring.FeatureDuration:        0.1,
		scoring.FeatureHitCount:        0.1,
		scoring.FeatureCrowdIntensity:  0.9,
		scoring.FeatureMotionIntensity: 0.1,
		scoring.FeatureConfidence:      0.1,
	}
}

func TestRepeatedRejectsDemoteDominantFeature(t *testing.T) {
	learner := New(0.1)
	weights := scoring.Default()
	prev := weights.Get(scoring.FeatureCrowdIntensity)

	for i := 0; i < 5; i++ {
		weights = learner.Update(weights, Record{
			RallyID:    1,
			Components: crowdHeavyComponents(),
			Decision:   DecisionReject,
		})
		crowd := weights.Get(scoring.FeatureCrowdIntensity)
		if crowd >= prev {
			t.Fatalf("step %d: crowd weight %v did not decrease from %v", i, crowd, prev)
		}
		if crowd < 0 {
			t.Fatalf("step %d: crowd weight went negative: %v", i, crowd)
		}
		prev = crowd
	}
	if math.Abs(weights.Sum()-scoring.Default().Sum()) > 1e-9 {
		t.Fatalf("total mass drifted to %v", weights.Sum())
	}
}

func TestKeepPromotesContributingFeatures(t *testing.T) {
	learner := New(0.1)
	weights := scoring.Default()
	next := learner.Update(weights, Record{
		RallyID:    2,
		Components: crowdHeavyComponents(),
		Decision:   DecisionKeep,
	})
	if next.Get(scoring.FeatureCrowdIntensity) <= weights.Get(scoring.FeatureCrowdIntensity) {
		t.Fatal("keep did not raise the dominant feature's weight")
	}
}

func TestRatingGradesStrength(t *testing.T) {
	tests := []struct {
		rating int
		want   float64
	}{
		{5, 1.0},
		{4, 0.5},
		{3, 0},
		{2, -0.5},
		{1, -1.0},
	}
	for _, tc := range tests {
		rec := Record{Rating: tc.rating}
		if got := rec.Strength(); got != tc.want {
			t.Fatalf("rating %d strength = %v, want %v", tc.rating, got, tc.want)
		}
	}
	if got := (Record{Decision: DecisionKeep}).Strength(); got != 1.0 {
		t.Fatalf("bare keep strength = %v", got)
	}
	if got := (Record{Decision: DecisionReject}).Strength(); got != -1.0 {
		t.Fatalf("bare reject strength = %v", got)
	}
}

func TestNeutralRatingIsNoOp(t *testing.T) {
	learner := New(0.1)
	weights := scoring.Default()
	next := learner.Update(weights, Record{
		Rating:     3,
		Decision:   DecisionKeep,
		Components: crowdHeavyComponents(),
	})
	for _, feature := range scoring.Features() {
		if next.Get(feature) != weights.Get(feature) {
			t.Fatalf("feature %s changed on neutral rating", feature)
		}
	}
}

func TestReplayMatchesSequentialUpdates(t *testing.T) {
	learner := New(0.1)
	records := []Record{
		{RallyID: 1, Components: crowdHeavyComponents(), Decision: DecisionReject},
		{RallyID: 2, Components: crowdHeavyComponents(), Decision: DecisionKeep, Rating: 4},
		{RallyID: 3, Components: crowdHeavyComponents(), Decision: DecisionReject, Rating: 1},
	}

	sequential := scoring.Default()
	for _, rec := range records {
		sequential = learner.Update(sequential, rec)
	}
	replayed := learner.Replay(scoring.Default(), records)

	for _, feature := range scoring.Features() {
		if math.Abs(sequential.Get(feature)-replayed.Get(feature)) > 1e-12 {
			t.Fatalf("feature %s: replay %v != sequential %v", feature, replayed.Get(feature), sequential.Get(feature))
		}
	}
}

func TestDisabledLearnerLeavesWeightsAlone(t *testing.T) {
	learner := New(0)
	weights := scoring.Default()
	next := learner.Update(weights, Record{Components: crowdHeavyComponents(), Decision: DecisionKeep})
	for _, feature := range scoring.Features() {
		if next.Get(feature) != weights.Get(feature) {
			t.Fatalf("feature %s changed with learning disabled", feature)
		}
	}
}
