package rally

import (
	"math"
	"reflect"
	"testing"

	"rallycut/internal/audio"
)

func hitsAt(times ...float64) []audio.Hit {
	hits := make([]audio.Hit, len(times))
	for i, at := range times {
		hits[i] = audio.Hit{Time: at, Amplitude: 0.8, Confidence: 0.6}
	}
	return hits
}

func flatCurve(value float64, seconds float64) audio.Curve {
	values := make([]float64, int(seconds*10))
	for i := range values {
		values[i] = value
	}
	return audio.Curve{Step: 0.1, Values: values}
}

func testMedia() Media {
	return Media{Duration: 60, FPS: 30}
}

func testParams() Params {
	return Params{
		MinHitsPerRally: 3,
		MaxHitInterval:  2.0,
		MinRallyGap:     2.0,
		ContextBefore:   1.5,
		ContextAfter:    2.0,
	}
}

func TestDetectSingleRallyWithContext(t *testing.T) {
	params := testParams()
	params.MaxHitInterval = 1.2
	crowd := flatCurve(0.5, 60)
	motion := flatCurve(0.3, 60)

	rallies := Detect(hitsAt(0.1, 0.3, 0.5, 0.7), crowd, motion, testMedia(), params)
	if len(rallies) != 1 {
		t.Fatalf("expected 1 rally, got %d", len(rallies))
	}
	r := rallies[0]
	if r.ID != 1 {
		t.Fatalf("id = %d", r.ID)
	}
	// Context before clamps at zero; context after extends past the last hit.
	if r.StartFrame != 0 {
		t.Fatalf("start frame = %d, want 0", r.StartFrame)
	}
	wantEnd := int(math.Ceil((0.7 + 2.0) * 30))
	if r.EndFrame != wantEnd {
		t.Fatalf("end frame = %d, want %d", r.EndFrame, wantEnd)
	}
	if r.HitCount != 4 {
		t.Fatalf("hit count = %d", r.HitCount)
	}
	if math.Abs(r.Confidence-0.6) > 1e-9 {
		t.Fatalf("confidence = %v", r.Confidence)
	}
	if math.Abs(r.CrowdIntensity-0.5) > 1e-9 {
		t.Fatalf("crowd intensity = %v", r.CrowdIntensity)
	}
	start, end := r.HitSpan()
	if start != 0.1 || end != 0.7 {
		t.Fatalf("hit span = [%v, %v]", start, end)
	}
}

func TestDetectKeepsDistantClustersApart(t *testing.T) {
	params := testParams()
	params.MinRallyGap = 4.0
	hits := hitsAt(1.0, 1.3, 1.6, 6.6, 6.9, 7.2) // clusters 5s apart
	rallies := Detect(hits, flatCurve(0.5, 60), flatCurve(0.5, 60), testMedia(), params)
	if len(rallies) != 2 {
		t.Fatalf("expected 2 rallies, got %d", len(rallies))
	}
	if rallies[0].StartTime() > rallies[1].StartTime() {
		t.Fatal("rallies not ordered by start time")
	}
	if rallies[0].ID != 1 || rallies[1].ID != 2 {
		t.Fatalf("ids = %d, %d", rallies[0].ID, rallies[1].ID)
	}
}

func TestDetectMergesCloseClusters(t *testing.T) {
	params := testParams()
	params.MinRallyGap = 4.0
	hits := hitsAt(1.0, 1.3, 1.6, 4.6, 4.9, 5.2) // clusters 3s apart
	rallies := Detect(hits, flatCurve(0.5, 60), flatCurve(0.5, 60), testMedia(), params)
	if len(rallies) != 1 {
		t.Fatalf("expected merged rally, got %d", len(rallies))
	}
	if rallies[0].HitCount != 6 {
		t.Fatalf("merged hit count = %d", rallies[0].HitCount)
	}
	start, end := rallies[0].HitSpan()
	if start != 1.0 || end != 5.2 {
		t.Fatalf("merged span = [%v, %v]", start, end)
	}
}

func TestDetectDiscardsSmallClusters(t *testing.T) {
	hits := hitsAt(1.0, 1.5, 10.0, 10.5, 11.0) // first cluster has only 2 hits
	rallies := Detect(hits, flatCurve(0.5, 60), flatCurve(0.5, 60), testMedia(), testParams())
	if len(rallies) != 1 {
		t.Fatalf("expected 1 rally, got %d", len(rallies))
	}
	if got, _ := rallies[0].HitSpan(); got != 10.0 {
		t.Fatalf("surviving rally starts at %v", got)
	}
}

func TestDetectEmptyAndSubThreshold(t *testing.T) {
	if got := Detect(nil, audio.Curve{}, audio.Curve{}, testMedia(), testParams()); got != nil {
		t.Fatalf("expected nil for no hits, got %v", got)
	}
	if got := Detect(hitsAt(1.0, 1.5), audio.Curve{}, audio.Curve{}, testMedia(), testParams()); got != nil {
		t.Fatalf("expected nil below min hits, got %v", got)
	}
}

func TestDetectDeterministic(t *testing.T) {
	hits := hitsAt(1.0, 1.4, 1.9, 8.0, 8.4, 8.9, 20.0, 20.3, 20.9, 21.4)
	crowd := flatCurve(0.7, 60)
	motion := flatCurve(0.2, 60)
	first := Detect(hits, crowd, motion, testMedia(), testParams())
	second := Detect(hits, crowd, motion, testMedia(), testParams())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("detection is not deterministic")
	}
	for i := 1; i < len(first); i++ {
		if first[i].StartTime() < first[i-1].StartTime() {
			t.Fatal("rallies out of order")
		}
		if first[i].ID <= first[i-1].ID {
			t.Fatal("ids not monotonic")
		}
	}
}

func TestDetectClampsToMediaBounds(t *testing.T) {
	media := Media{Duration: 10, FPS: 30}
	hits := hitsAt(8.5, 8.9, 9.4)
	rallies := Detect(hits, flatCurve(0.5, 10), flatCurve(0.5, 10), media, testParams())
	if len(rallies) != 1 {
		t.Fatalf("expected 1 rally, got %d", len(rallies))
	}
	if rallies[0].EndFrame > media.TotalFrames() {
		t.Fatalf("end frame %d exceeds media frames %d", rallies[0].EndFrame, media.TotalFrames())
	}
	if rallies[0].EndTime() > media.Duration+1e-9 {
		t.Fatalf("end time %v exceeds media duration", rallies[0].EndTime())
	}
}
