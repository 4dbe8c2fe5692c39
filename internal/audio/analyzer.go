package audio

import "math"

const (
	hopSize   = 512
	frameSize = 1024

	// Smoothing windows in seconds.
	backgroundWindow = 1.0
	crowdWindow      = 2.0
	motionWindow     = 0.5
)

// Hit is a single detected ball contact event.
type Hit struct {
	Time       float64 `json:"time"`
	Amplitude  float64 `json:"amplitude"`
	Confidence float64 `json:"confidence"`
}

// Analysis holds the complete result of analyzing one audio track.
type Analysis struct {
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	Hits       []Hit   `json:"hits"`
	Crowd      Curve   `json:"crowd"`
	Motion     Curve   `json:"motion"`
}

// Params tunes hit detection.
type Params struct {
	// HitThreshold is the onset strength a peak must exceed above the local
	// background to count as a hit (0-1 after normalization).
	HitThreshold float64
	// MinHitInterval is the minimum spacing between accepted peaks in
	// seconds, so one physical impact is not counted twice.
	MinHitInterval float64
	// MinConfidence discards peaks whose spectral character does not look
	// like a paddle contact (filters floor bounces and chair scrapes).
	MinConfidence float64
}

// Analyze computes ball hits and intensity curves from mono samples. Silent
// or too-short audio yields empty results, never an error.
func Analyze(samples []float64, sampleRate int, params Params) Analysis {
	analysis := Analysis{SampleRate: sampleRate}
	if sampleRate <= 0 {
		return analysis
	}
	analysis.Duration = float64(len(samples)) / float64(sampleRate)
	step := float64(hopSize) / float64(sampleRate)
	analysis.Crowd = Curve{Step: step}
	analysis.Motion = Curve{Step: step}

	if len(samples) < frameSize {
		return analysis
	}

	energies := frameEnergies(samples)
	onsets := onsetStrength(energies)
	analysis.Crowd.Values = crowdCurve(energies, step)
	analysis.Motion.Values = motionCurve(energies, step)
	analysis.Hits = pickHits(samples, sampleRate, onsets, step, params)
	return analysis
}

// frameEnergies returns the RMS energy of each analysis frame.
func frameEnergies(samples []float64) []float64 {
	frames := 1 + (len(samples)-frameSize)/hopSize
	energies := make([]float64, frames)
	for i := 0; i < frames; i++ {
		start := i * hopSize
		sum := 0.0
		for _, s := range samples[start : start+frameSize] {
			sum += s * s
		}
		energies[i] = math.Sqrt(sum / frameSize)
	}
	return energies
}

// onsetStrength is the half-wave rectified energy difference between
// consecutive frames, normalized so the strongest transient is 1.
func onsetStrength(energies []float64) []float64 {
	onsets := make([]float64, len(energies))
	for i := 1; i < len(energies); i++ {
		if delta := energies[i] - energies[i-1]; delta > 0 {
			onsets[i] = delta
		}
	}
	normalize(onsets)
	return onsets
}

// crowdCurve is the smoothed broadband energy envelope: sustained loudness
// reads as crowd reaction.
func crowdCurve(energies []float64, step float64) []float64 {
	smoothed := movingAverage(energies, int(crowdWindow/step))
	normalize(smoothed)
	return smoothed
}

// motionCurve proxies visual action with short-window energy churn on the
// same time base as the crowd curve.
func motionCurve(energies []float64, step float64) []float64 {
	deltas := make([]float64, len(energies))
	for i := 1; i < len(energies); i++ {
		deltas[i] = math.Abs(energies[i] - energies[i-1])
	}
	smoothed := movingAverage(deltas, int(motionWindow/step))
	normalize(smoothed)
	return smoothed
}

func pickHits(samples []float64, sampleRate int, onsets []float64, step float64, params Params) []Hit {
	if params.HitThreshold <= 0 {
		params.HitThreshold = 0.15
	}
	if params.MinHitInterval <= 0 {
		params.MinHitInterval = 0.2
	}

	background := movingAverage(onsets, int(backgroundWindow/step))
	waitFrames := int(params.MinHitInterval / step)
	if waitFrames < 1 {
		waitFrames = 1
	}

	var hits []Hit
	lastAccepted := -waitFrames - 1
	for i := 1; i < len(onsets)-1; i++ {
		if onsets[i] <= background[i]+params.HitThreshold {
			continue
		}
		if !isLocalMax(onsets, i, 3) {
			continue
		}
		if i-lastAccepted <= waitFrames {
			continue
		}
		peakTime := float64(i) * step
		confidence := hitConfidence(samples, sampleRate, peakTime, onsets[i], background[i])
		if confidence < params.MinConfidence {
			continue
		}
		hits = append(hits, Hit{
			Time:       peakTime,
			Amplitude:  onsets[i],
			Confidence: confidence,
		})
		lastAccepted = i
	}
	return hits
}

func isLocalMax(values []float64, i, radius int) bool {
	lo := i - radius
	if lo < 0 {
		lo = 0
	}
	hi := i + radius
	if hi >= len(values) {
		hi = len(values) - 1
	}
	for j := lo; j <= hi; j++ {
		if values[j] > values[i] {
			return false
		}
	}
	return true
}

// hitConfidence estimates how much the transient at peakTime looks like a
// paddle contact. Paddle hits are broadband clicks: sharp attack, high
// zero-crossing rate, and most energy in sample-to-sample differences.
// Floor bounces are duller on all three counts.
func hitConfidence(samples []float64, sampleRate int, peakTime, onset, background float64) float64 {
	center := int(peakTime * float64(sampleRate))
	lo := center - hopSize
	if lo < 0 {
		lo = 0
	}
	hi := center + hopSize
	if hi > len(samples) {
		hi = len(samples)
	}
	window := samples[lo:hi]
	if len(window) < 256 {
		return 0
	}

	prominence := onset - background
	if prominence > 1 {
		prominence = 1
	}

	crossings := 0
	sumAbs := 0.0
	sumDiff := 0.0
	for i := 1; i < len(window); i++ {
		if (window[i] >= 0) != (window[i-1] >= 0) {
			crossings++
		}
		sumAbs += math.Abs(window[i])
		sumDiff += math.Abs(window[i] - window[i-1])
	}
	zcr := float64(crossings) / float64(len(window))
	zcrScore := math.Min(1, zcr*5)

	hfScore := 0.0
	if sumAbs > 0 {
		hfScore = math.Min(1, sumDiff/sumAbs)
	}

	confidence := prominence*0.35 + hfScore*0.25 + zcrScore*0.2 + onset*0.2
	return math.Min(1, confidence)
}
