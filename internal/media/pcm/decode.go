// Package pcm decodes mono audio samples from media files via ffmpeg.
package pcm

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// DefaultSampleRate is the analysis rate used throughout the pipeline. It is
// plenty for transient detection while keeping decode output small.
const DefaultSampleRate = 22050

// DecodeMono extracts the audio track of the given media file as mono
// float64 samples in [-1, 1] at the requested sample rate.
func DecodeMono(ctx context.Context, ffmpegBinary, path string, sampleRate int) ([]float64, error) {
	binaryName := strings.TrimSpace(ffmpegBinary)
	if binaryName == "" {
		binaryName = "ffmpeg"
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("pcm decode: empty path")
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	}
	cmd := commandContext(ctx, binaryName, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pcm decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return samplesFromS16LE(stdout.Bytes()), nil
}

func samplesFromS16LE(data []byte) []float64 {
	count := len(data) / 2
	samples := make([]float64, count)
	for i := 0; i < count; i++ {
		raw := int16(binary.LittleEndian.Uint16(data[2*i:]))
		samples[i] = float64(raw) / math.MaxInt16
	}
	return samples
}
