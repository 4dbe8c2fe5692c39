package compile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rallycut/internal/rally"
	"rallycut/internal/services"
)

// Preview extracts a fast low-quality clip of a single rally for review and
// returns its path. Previews are cached by rally id: an existing file for
// the same rally is returned as-is.
func (c *Compiler) Preview(ctx context.Context, sourcePath string, r rally.Rally, previewDir string) (string, error) {
	if err := os.MkdirAll(previewDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "compile", "preview", "create preview directory", err)
	}
	previewPath := filepath.Join(previewDir, fmt.Sprintf("rally_%d.mp4", r.ID))
	if _, err := os.Stat(previewPath); err == nil {
		return previewPath, nil
	}

	start := r.StartTime() - c.opts.ContextBefore
	if start < 0 {
		start = 0
	}
	duration := r.EndTime() + c.opts.ContextAfter - start

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", formatSeconds(start),
		"-i", sourcePath,
		"-t", formatSeconds(duration),
		"-vf", "scale=640:-2",
		"-c:v", "libx264", "-preset", "ultrafast", "-crf", "28",
		"-c:a", "aac", "-b:a", "96k",
		"-avoid_negative_ts", "make_zero",
		previewPath,
	}
	if err := c.run(ctx, args); err != nil {
		_ = os.Remove(previewPath)
		return "", services.Wrap(services.ErrExternalTool, "compile", "preview",
			fmt.Sprintf("preview rally %d", r.ID), err)
	}
	return previewPath, nil
}
