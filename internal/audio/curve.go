package audio

// Curve is an intensity signal sampled at a fixed rate, normalized to [0, 1].
type Curve struct {
	Step   float64   `json:"step"`
	Values []float64 `json:"values"`
}

// Duration returns the time span covered by the curve in seconds.
func (c Curve) Duration() float64 {
	return float64(len(c.Values)) * c.Step
}

// MeanBetween returns the mean curve value over [start, end], clamped to the
// sampled range. An empty overlap yields 0.
func (c Curve) MeanBetween(start, end float64) float64 {
	if c.Step <= 0 || len(c.Values) == 0 || end < start {
		return 0
	}
	lo := int(start / c.Step)
	hi := int(end / c.Step)
	if lo < 0 {
		lo = 0
	}
	if hi >= len(c.Values) {
		hi = len(c.Values) - 1
	}
	if lo > hi {
		return 0
	}
	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += c.Values[i]
	}
	return sum / float64(hi-lo+1)
}

func normalize(values []float64) {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return
	}
	for i := range values {
		values[i] /= max
	}
}

func movingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i := range values {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		count := window
		if i+1 < window {
			count = i + 1
		}
		out[i] = sum / float64(count)
	}
	return out
}
