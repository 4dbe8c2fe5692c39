package config

const (
	defaultDataDir   = "~/.local/share/rallycut"
	defaultOutputDir = "~/.local/share/rallycut/output"
	defaultLogDir    = "~/.local/share/rallycut/logs"

	defaultHitThreshold     = 0.15
	defaultMinHitInterval   = 0.2
	defaultMinHitConfidence = 0.4
	defaultMinHitsPerRally  = 3
	defaultMaxHitInterval   = 2.0
	defaultMinRallyGap      = 2.0
	defaultContextBefore    = 1.5
	defaultContextAfter     = 2.0

	defaultLearningRate = 0.1

	defaultCompileContextBefore = 1.0
	defaultCompileContextAfter  = 1.5
	defaultTransitionDuration   = 0.5
	defaultMaxDuration          = 300.0
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultCommandTimeout       = 600

	defaultWorkerCount = 2
	defaultJobTimeout  = 1800

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// DefaultWeights is the scoring weight vector used before any feedback has
// been learned.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"duration":         3.0,
		"hit_count":        2.5,
		"crowd_intensity":  1.5,
		"motion_intensity": 1.0,
		"confidence":       0.5,
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Detection: Detection{
			HitThreshold:     defaultHitThreshold,
			MinHitInterval:   defaultMinHitInterval,
			MinHitConfidence: defaultMinHitConfidence,
			MinHitsPerRally:  defaultMinHitsPerRally,
			MaxHitInterval:   defaultMaxHitInterval,
			MinRallyGap:      defaultMinRallyGap,
			ContextBefore:    defaultContextBefore,
			ContextAfter:     defaultContextAfter,
		},
		Scoring: Scoring{
			Weights: DefaultWeights(),
		},
		Learning: Learning{
			LearningRate: defaultLearningRate,
		},
		Compilation: Compilation{
			ContextBefore:      defaultCompileContextBefore,
			ContextAfter:       defaultCompileContextAfter,
			TransitionDuration: defaultTransitionDuration,
			AddTransitions:     true,
			MaxDuration:        defaultMaxDuration,
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			CommandTimeout:     defaultCommandTimeout,
		},
		Workflow: Workflow{
			WorkerCount: defaultWorkerCount,
			JobTimeout:  defaultJobTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
