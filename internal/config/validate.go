package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateLearning(); err != nil {
		return err
	}
	if err := c.validateCompilation(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.HitThreshold <= 0 || d.HitThreshold >= 1 {
		return errors.New("detection.hit_threshold must be between 0 and 1")
	}
	if d.MinHitInterval <= 0 {
		return errors.New("detection.min_hit_interval must be positive")
	}
	if d.MinHitConfidence < 0 || d.MinHitConfidence > 1 {
		return errors.New("detection.min_hit_confidence must be between 0 and 1")
	}
	if d.MinHitsPerRally < 1 {
		return errors.New("detection.min_hits_per_rally must be at least 1")
	}
	if d.MaxHitInterval <= 0 {
		return errors.New("detection.max_hit_interval must be positive")
	}
	if d.MinRallyGap < 0 {
		return errors.New("detection.min_rally_gap must not be negative")
	}
	if d.ContextBefore < 0 || d.ContextAfter < 0 {
		return errors.New("detection context padding must not be negative")
	}
	return nil
}

func (c *Config) validateScoring() error {
	sum := 0.0
	for name, weight := range c.Scoring.Weights {
		if weight < 0 {
			return fmt.Errorf("scoring.weights.%s must not be negative", name)
		}
		sum += weight
	}
	if sum <= 0 {
		return errors.New("scoring.weights must contain at least one positive weight")
	}
	return nil
}

func (c *Config) validateLearning() error {
	if c.Learning.LearningRate <= 0 || c.Learning.LearningRate > 1 {
		return errors.New("learning.learning_rate must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateCompilation() error {
	cp := c.Compilation
	if cp.ContextBefore < 0 || cp.ContextAfter < 0 {
		return errors.New("compilation context padding must not be negative")
	}
	if cp.TransitionDuration < 0 {
		return errors.New("compilation.transition_duration must not be negative")
	}
	if cp.MaxDuration <= 0 {
		return errors.New("compilation.max_duration must be positive")
	}
	if cp.CommandTimeout <= 0 {
		return errors.New("compilation.command_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.WorkerCount < 1 {
		return errors.New("workflow.worker_count must be at least 1")
	}
	if c.Workflow.JobTimeout <= 0 {
		return errors.New("workflow.job_timeout must be positive")
	}
	return nil
}
