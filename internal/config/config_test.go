package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config, got exists=true for %s", resolved)
	}
	if cfg.Detection.MinHitsPerRally != defaultMinHitsPerRally {
		t.Fatalf("unexpected min_hits_per_rally: %d", cfg.Detection.MinHitsPerRally)
	}
	if cfg.Compilation.MaxDuration != defaultMaxDuration {
		t.Fatalf("unexpected max_duration: %v", cfg.Compilation.MaxDuration)
	}
	if got := cfg.Scoring.Weights["duration"]; got != 3.0 {
		t.Fatalf("unexpected duration weight: %v", got)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[detection]\nmax_hit_interval = 1.2\n\n[compilation]\nmax_duration = 120.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Detection.MaxHitInterval != 1.2 {
		t.Fatalf("override not applied: %v", cfg.Detection.MaxHitInterval)
	}
	if cfg.Compilation.MaxDuration != 120.0 {
		t.Fatalf("override not applied: %v", cfg.Compilation.MaxDuration)
	}
	if cfg.Detection.MinRallyGap != defaultMinRallyGap {
		t.Fatalf("default not filled: %v", cfg.Detection.MinRallyGap)
	}
	if cfg.Workflow.WorkerCount != defaultWorkerCount {
		t.Fatalf("default not filled: %d", cfg.Workflow.WorkerCount)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"hit threshold", func(c *Config) { c.Detection.HitThreshold = 1.5 }},
		{"min hits", func(c *Config) { c.Detection.MinHitsPerRally = 0 }},
		{"negative weight", func(c *Config) { c.Scoring.Weights["duration"] = -1 }},
		{"zero weights", func(c *Config) { c.Scoring.Weights = map[string]float64{"duration": 0} }},
		{"learning rate", func(c *Config) { c.Learning.LearningRate = 2 }},
		{"max duration", func(c *Config) { c.Compilation.MaxDuration = -10 }},
		{"worker count", func(c *Config) { c.Workflow.WorkerCount = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error on second write")
	}

	cfg := Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample defaults should validate: %v", err)
	}
}
