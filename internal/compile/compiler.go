package compile

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"rallycut/internal/logging"
	"rallycut/internal/services"
)

var commandContext = exec.CommandContext

// Compiler drives ffmpeg to extract and join highlight clips.
type Compiler struct {
	ffmpeg string
	opts   Options
	logger *slog.Logger
}

// New returns a compiler using the given ffmpeg binary. An empty binary
// falls back to ffmpeg on PATH.
func New(ffmpegBinary string, opts Options, logger *slog.Logger) *Compiler {
	binaryName := strings.TrimSpace(ffmpegBinary)
	if binaryName == "" {
		binaryName = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Compiler{
		ffmpeg: binaryName,
		opts:   opts,
		logger: logging.WithComponent(logger, "compiler"),
	}
}

// Compile extracts each planned clip from the source and joins them into
// outputPath. With transitions enabled and more than one clip it cross-fades
// video and audio; if the fade graph fails it falls back to a plain concat.
// Intermediate files live in a temp directory that is always removed.
func (c *Compiler) Compile(ctx context.Context, sourcePath string, clips []Clip, outputPath string) error {
	if len(clips) == 0 {
		return services.Wrap(services.ErrValidation, "compile", "plan", "no clips selected", nil)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return services.Wrap(services.ErrInput, "compile", "source",
			fmt.Sprintf("source %s unavailable", sourcePath), err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "compile", "output", "create output directory", err)
	}

	workDir, err := os.MkdirTemp(filepath.Dir(outputPath), "rallycut-work-")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "compile", "workspace", "create temp directory", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(workDir); removeErr != nil {
			c.logger.Warn("temp directory cleanup failed", "dir", workDir, "error", removeErr)
		}
	}()

	clipPaths := make([]string, len(clips))
	for i, clip := range clips {
		clipPath := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", i))
		if err := c.extractClip(ctx, sourcePath, clip, clipPath); err != nil {
			return err
		}
		clipPaths[i] = clipPath
	}

	if c.opts.AddTransitions && len(clips) > 1 && c.opts.TransitionDuration > 0 {
		err := c.joinWithTransitions(ctx, clips, clipPaths, outputPath)
		if err == nil {
			return nil
		}
		c.logger.Warn("transition graph failed, falling back to concat", "error", err)
	}
	return c.concat(ctx, workDir, clipPaths, outputPath)
}

func (c *Compiler) extractClip(ctx context.Context, sourcePath string, clip Clip, clipPath string) error {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", formatSeconds(clip.Start),
		"-i", sourcePath,
		"-t", formatSeconds(clip.Duration),
		"-c:v", "libx264", "-preset", "fast", "-crf", "23",
		"-c:a", "aac",
		"-avoid_negative_ts", "make_zero",
		clipPath,
	}
	c.logger.Debug("extracting clip", logging.FieldRallyID, clip.RallyID,
		"start", clip.Start, "duration", clip.Duration)
	if err := c.run(ctx, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "compile", "extract",
			fmt.Sprintf("extract rally %d clip", clip.RallyID), err)
	}
	return nil
}

// joinWithTransitions builds a single xfade/acrossfade filter graph. Each
// fade starts transitionDuration before the accumulated video ends, so the
// offset for fade i is the summed clip durations so far minus i overlaps.
func (c *Compiler) joinWithTransitions(ctx context.Context, clips []Clip, clipPaths []string, outputPath string) error {
	t := c.opts.TransitionDuration

	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	for _, clipPath := range clipPaths {
		args = append(args, "-i", clipPath)
	}

	var filter strings.Builder
	videoIn := "[0:v]"
	audioIn := "[0:a]"
	offset := clips[0].Duration - t
	for i := 1; i < len(clips); i++ {
		videoOut := fmt.Sprintf("[v%d]", i)
		audioOut := fmt.Sprintf("[a%d]", i)
		fmt.Fprintf(&filter, "%s[%d:v]xfade=transition=fade:duration=%s:offset=%s%s;",
			videoIn, i, formatSeconds(t), formatSeconds(offset), videoOut)
		fmt.Fprintf(&filter, "%s[%d:a]acrossfade=d=%s%s;",
			audioIn, i, formatSeconds(t), audioOut)
		videoIn = videoOut
		audioIn = audioOut
		offset += clips[i].Duration - t
	}
	graph := strings.TrimSuffix(filter.String(), ";")

	args = append(args,
		"-filter_complex", graph,
		"-map", videoIn, "-map", audioIn,
		"-c:v", "libx264", "-preset", "fast", "-crf", "23",
		"-c:a", "aac",
		outputPath,
	)
	if err := c.run(ctx, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "compile", "transitions", "join clips with transitions", err)
	}
	return nil
}

func (c *Compiler) concat(ctx context.Context, workDir string, clipPaths []string, outputPath string) error {
	var list strings.Builder
	for _, clipPath := range clipPaths {
		fmt.Fprintf(&list, "file '%s'\n", clipPath)
	}
	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "compile", "concat", "write concat list", err)
	}

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
	if err := c.run(ctx, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "compile", "concat", "concatenate clips", err)
	}
	return nil
}

func (c *Compiler) run(ctx context.Context, args []string) error {
	if c.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.CommandTimeout)
		defer cancel()
	}
	cmd := commandContext(ctx, c.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}

func formatSeconds(value float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", value), "0"), ".")
}
