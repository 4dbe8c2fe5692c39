package rally

import (
	"errors"
	"math"
	"testing"

	"rallycut/internal/services"
)

func detectOne(t *testing.T) (Rally, Media) {
	t.Helper()
	media := testMedia()
	rallies := Detect(hitsAt(5.0, 5.4, 5.9, 6.3), flatCurve(0.5, 60), flatCurve(0.3, 60), media, testParams())
	if len(rallies) != 1 {
		t.Fatalf("setup expected 1 rally, got %d", len(rallies))
	}
	return rallies[0], media
}

func TestAdjustReaggregates(t *testing.T) {
	r, media := detectOne(t)
	crowd := flatCurve(0.9, 60)
	motion := flatCurve(0.1, 60)

	adjusted, err := Adjust(r, 150, 210, crowd, motion, media) // 5.0s - 7.0s
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if adjusted.StartFrame != 150 || adjusted.EndFrame != 210 {
		t.Fatalf("bounds = [%d, %d]", adjusted.StartFrame, adjusted.EndFrame)
	}
	if adjusted.HitCount != 4 {
		t.Fatalf("hit count = %d", adjusted.HitCount)
	}
	if math.Abs(adjusted.CrowdIntensity-0.9) > 1e-9 {
		t.Fatalf("crowd intensity not re-aggregated: %v", adjusted.CrowdIntensity)
	}
	// Original rally is untouched.
	if r.CrowdIntensity == adjusted.CrowdIntensity {
		t.Fatal("expected original aggregates to differ from adjusted")
	}
}

func TestAdjustDropsHitsOutsideBounds(t *testing.T) {
	r, media := detectOne(t)
	// 5.5s - 7.0s keeps only the hits at 5.9 and 6.3.
	adjusted, err := Adjust(r, 165, 210, flatCurve(0.5, 60), flatCurve(0.5, 60), media)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if adjusted.HitCount != 2 {
		t.Fatalf("hit count = %d, want 2", adjusted.HitCount)
	}
}

func TestAdjustRejectsInvertedBounds(t *testing.T) {
	r, media := detectOne(t)
	_, err := Adjust(r, 210, 150, flatCurve(0.5, 60), flatCurve(0.5, 60), media)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSplitAndMergeRoundTrip(t *testing.T) {
	media := testMedia()
	params := testParams()
	crowd := flatCurve(0.5, 60)
	motion := flatCurve(0.5, 60)
	rallies := Detect(hitsAt(5.0, 5.4, 5.9, 9.0, 9.4, 9.9), crowd, motion, media, Params{
		MinHitsPerRally: 3,
		MaxHitInterval:  5.0,
		MinRallyGap:     2.0,
		ContextBefore:   1.5,
		ContextAfter:    2.0,
	})
	if len(rallies) != 1 {
		t.Fatalf("setup expected 1 rally, got %d", len(rallies))
	}

	first, second, err := Split(rallies[0], 7.0, crowd, motion, media, params)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if first.HitCount != 3 || second.HitCount != 3 {
		t.Fatalf("split counts = %d, %d", first.HitCount, second.HitCount)
	}
	if first.EndTime() > second.StartTime()+params.ContextAfter+params.ContextBefore {
		t.Fatalf("split produced overlapping cores: %v > %v", first.EndTime(), second.StartTime())
	}

	merged := Merge(first, second, crowd, motion, media, params)
	if merged.HitCount != 6 {
		t.Fatalf("merged hit count = %d", merged.HitCount)
	}
	start, end := merged.HitSpan()
	if start != 5.0 || end != 9.9 {
		t.Fatalf("merged span = [%v, %v]", start, end)
	}
}

func TestSplitRejectsEmptySide(t *testing.T) {
	r, media := detectOne(t)
	if _, _, err := Split(r, 0.5, flatCurve(0.5, 60), flatCurve(0.5, 60), media, testParams()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenumber(t *testing.T) {
	media := testMedia()
	a := Rally{ID: 9, StartFrame: 300, EndFrame: 400, FPS: media.FPS}
	b := Rally{ID: 3, StartFrame: 100, EndFrame: 200, FPS: media.FPS}
	rallies := []Rally{a, b}
	Renumber(rallies)
	if rallies[0].StartFrame != 100 || rallies[0].ID != 1 {
		t.Fatalf("first rally = %+v", rallies[0])
	}
	if rallies[1].StartFrame != 300 || rallies[1].ID != 2 {
		t.Fatalf("second rally = %+v", rallies[1])
	}
}
