package audio

import (
	"math"
	"reflect"
	"testing"
)

const testRate = 22050

// click writes a short broadband burst (alternating-sign samples) at the
// given time, which is what a paddle contact looks like after decoding.
func click(samples []float64, at float64, amplitude float64) {
	start := int(at * testRate)
	for i := 0; i < 256 && start+i < len(samples); i++ {
		value := amplitude
		if i%2 == 1 {
			value = -amplitude
		}
		samples[start+i] = value
	}
}

func silence(seconds float64) []float64 {
	return make([]float64, int(seconds*testRate))
}

func defaultParams() Params {
	return Params{HitThreshold: 0.15, MinHitInterval: 0.2, MinConfidence: 0.4}
}

func TestAnalyzeDetectsClicks(t *testing.T) {
	samples := silence(10)
	times := []float64{1.0, 2.5, 4.0, 7.2}
	for _, at := range times {
		click(samples, at, 0.9)
	}

	analysis := Analyze(samples, testRate, defaultParams())
	if len(analysis.Hits) != len(times) {
		t.Fatalf("expected %d hits, got %d: %+v", len(times), len(analysis.Hits), analysis.Hits)
	}
	for i, hit := range analysis.Hits {
		if math.Abs(hit.Time-times[i]) > 0.1 {
			t.Fatalf("hit %d at %.3f, want near %.3f", i, hit.Time, times[i])
		}
		if hit.Confidence < 0.4 || hit.Confidence > 1 {
			t.Fatalf("hit %d confidence %.3f out of range", i, hit.Confidence)
		}
		if i > 0 && hit.Time <= analysis.Hits[i-1].Time {
			t.Fatalf("hits not in ascending time order: %+v", analysis.Hits)
		}
	}
}

func TestAnalyzeMinIntervalSuppressesDoubleCount(t *testing.T) {
	samples := silence(5)
	click(samples, 1.0, 0.9)
	click(samples, 1.1, 0.9) // within min interval of the first

	analysis := Analyze(samples, testRate, defaultParams())
	if len(analysis.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(analysis.Hits))
	}
}

func TestAnalyzeSilenceYieldsNoHits(t *testing.T) {
	analysis := Analyze(silence(5), testRate, defaultParams())
	if len(analysis.Hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(analysis.Hits))
	}
	if analysis.Duration != 5 {
		t.Fatalf("duration = %v", analysis.Duration)
	}
	if len(analysis.Crowd.Values) == 0 || len(analysis.Motion.Values) == 0 {
		t.Fatal("expected curves for silent audio")
	}
}

func TestAnalyzeShortAudioYieldsEmptyCurves(t *testing.T) {
	analysis := Analyze(make([]float64, 100), testRate, defaultParams())
	if len(analysis.Hits) != 0 {
		t.Fatal("expected no hits for short audio")
	}
	if len(analysis.Crowd.Values) != 0 || len(analysis.Motion.Values) != 0 {
		t.Fatal("expected zero-length curves for short audio")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	samples := silence(6)
	click(samples, 1.0, 0.8)
	click(samples, 3.0, 0.9)

	first := Analyze(samples, testRate, defaultParams())
	second := Analyze(samples, testRate, defaultParams())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("analysis is not deterministic")
	}
}

func TestCurveMeanBetween(t *testing.T) {
	curve := Curve{Step: 1, Values: []float64{0, 0.5, 1, 0.5, 0}}
	if got := curve.MeanBetween(1, 3); math.Abs(got-(0.5+1+0.5)/3) > 1e-9 {
		t.Fatalf("MeanBetween(1,3) = %v", got)
	}
	if got := curve.MeanBetween(-5, 100); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("clamped mean = %v", got)
	}
	if got := curve.MeanBetween(3, 1); got != 0 {
		t.Fatalf("inverted range = %v", got)
	}
	if got := (Curve{}).MeanBetween(0, 1); got != 0 {
		t.Fatalf("empty curve mean = %v", got)
	}
}
