package config

import "strings"

// Normalize expands path fields and fills in zero values with defaults so a
// partially specified config file still yields a usable configuration.
func (c *Config) Normalize() error {
	defaults := Default()

	for _, field := range []struct {
		value    *string
		fallback string
	}{
		{&c.Paths.DataDir, defaults.Paths.DataDir},
		{&c.Paths.OutputDir, defaults.Paths.OutputDir},
		{&c.Paths.LogDir, defaults.Paths.LogDir},
	} {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(*field.value)
		if err != nil {
			return err
		}
		*field.value = expanded
	}

	if c.Detection.HitThreshold == 0 {
		c.Detection.HitThreshold = defaults.Detection.HitThreshold
	}
	if c.Detection.MinHitInterval == 0 {
		c.Detection.MinHitInterval = defaults.Detection.MinHitInterval
	}
	if c.Detection.MinHitConfidence == 0 {
		c.Detection.MinHitConfidence = defaults.Detection.MinHitConfidence
	}
	if c.Detection.MinHitsPerRally == 0 {
		c.Detection.MinHitsPerRally = defaults.Detection.MinHitsPerRally
	}
	if c.Detection.MaxHitInterval == 0 {
		c.Detection.MaxHitInterval = defaults.Detection.MaxHitInterval
	}
	if c.Detection.MinRallyGap == 0 {
		c.Detection.MinRallyGap = defaults.Detection.MinRallyGap
	}
	if c.Detection.ContextBefore == 0 {
		c.Detection.ContextBefore = defaults.Detection.ContextBefore
	}
	if c.Detection.ContextAfter == 0 {
		c.Detection.ContextAfter = defaults.Detection.ContextAfter
	}

	if len(c.Scoring.Weights) == 0 {
		c.Scoring.Weights = DefaultWeights()
	}

	if c.Learning.LearningRate == 0 {
		c.Learning.LearningRate = defaults.Learning.LearningRate
	}

	if c.Compilation.ContextBefore == 0 {
		c.Compilation.ContextBefore = defaults.Compilation.ContextBefore
	}
	if c.Compilation.ContextAfter == 0 {
		c.Compilation.ContextAfter = defaults.Compilation.ContextAfter
	}
	if c.Compilation.TransitionDuration == 0 {
		c.Compilation.TransitionDuration = defaults.Compilation.TransitionDuration
	}
	if c.Compilation.MaxDuration == 0 {
		c.Compilation.MaxDuration = defaults.Compilation.MaxDuration
	}
	if strings.TrimSpace(c.Compilation.FFmpegBinary) == "" {
		c.Compilation.FFmpegBinary = defaults.Compilation.FFmpegBinary
	}
	if strings.TrimSpace(c.Compilation.FFprobeBinary) == "" {
		c.Compilation.FFprobeBinary = defaults.Compilation.FFprobeBinary
	}
	if c.Compilation.CommandTimeout == 0 {
		c.Compilation.CommandTimeout = defaults.Compilation.CommandTimeout
	}

	if c.Workflow.WorkerCount == 0 {
		c.Workflow.WorkerCount = defaults.Workflow.WorkerCount
	}
	if c.Workflow.JobTimeout == 0 {
		c.Workflow.JobTimeout = defaults.Workflow.JobTimeout
	}

	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}
