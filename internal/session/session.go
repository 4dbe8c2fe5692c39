// Package session owns the in-memory pipeline state for one operator:
// the active source, its rallies and scores, the learned weights, and the
// background jobs that mutate them. State is never global; everything hangs
// off an explicit Session.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rallycut/internal/audio"
	"rallycut/internal/compile"
	"rallycut/internal/config"
	"rallycut/internal/feedback"
	"rallycut/internal/logging"
	"rallycut/internal/media/ffprobe"
	"rallycut/internal/media/pcm"
	"rallycut/internal/preference"
	"rallycut/internal/rally"
	"rallycut/internal/scoring"
	"rallycut/internal/services"
)

// Dependencies are the external collaborators the session drives. The
// defaults shell out to ffprobe and ffmpeg; tests substitute fakes.
type Dependencies struct {
	Probe   func(ctx context.Context, path string) (rally.Media, error)
	Decode  func(ctx context.Context, path string) ([]float64, int, error)
	Compile func(ctx context.Context, sourcePath string, clips []compile.Clip, outputPath string) error
	Preview func(ctx context.Context, sourcePath string, r rally.Rally, previewDir string) (string, error)
}

// Session coordinates analysis, scoring, feedback, and compilation for one
// source at a time.
type Session struct {
	cfg     *config.Config
	store   *feedback.Store
	logger  *slog.Logger
	learner preference.Learner
	deps    Dependencies

	slots chan struct{}

	mu          sync.Mutex
	weights     scoring.Weights
	source      string
	fingerprint string
	media       rally.Media
	analysis    audio.Analysis
	rallies     []rally.Rally
	scored      []scoring.ScoredRally
	inflight    map[string]JobKind
	jobs        map[string]*Job
}

// Option customizes session construction.
type Option func(*Session)

// WithDependencies overrides the external collaborators.
func WithDependencies(deps Dependencies) Option {
	return func(s *Session) {
		if deps.Probe != nil {
			s.deps.Probe = deps.Probe
		}
		if deps.Decode != nil {
			s.deps.Decode = deps.Decode
		}
		if deps.Compile != nil {
			s.deps.Compile = deps.Compile
		}
		if deps.Preview != nil {
			s.deps.Preview = deps.Preview
		}
	}
}

// New builds a session. The learned weights are reconstructed by replaying
// the persisted feedback history over the configured defaults, so the
// append-only log stays the source of truth.
func New(ctx context.Context, cfg *config.Config, store *feedback.Store, logger *slog.Logger, opts ...Option) (*Session, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workflow.WorkerCount
	if workers < 1 {
		workers = 1
	}

	s := &Session{
		cfg:      cfg,
		store:    store,
		logger:   logging.WithComponent(logger, "session"),
		learner:  preference.New(cfg.Learning.LearningRate),
		slots:    make(chan struct{}, workers),
		inflight: make(map[string]JobKind),
		jobs:     make(map[string]*Job),
	}
	s.deps = s.defaultDependencies()
	for _, opt := range opts {
		opt(s)
	}

	weights := scoring.FromMap(cfg.Scoring.Weights)
	history, err := store.FeedbackHistory(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		// No history to replay; fall back to the stored snapshot so a
		// database with pruned history keeps its learned weights.
		if snapshot, snapErr := store.LoadWeights(ctx); snapErr == nil && len(snapshot) > 0 {
			weights = scoring.FromMap(snapshot)
		}
	}
	s.weights = s.learner.Replay(weights, history)
	if len(history) > 0 {
		s.logger.Info("weights restored from feedback history", "records", len(history))
	}
	if err := store.SaveWeights(ctx, s.weights.Map()); err != nil {
		s.logger.Warn("weight snapshot not saved", "error", err)
	}
	return s, nil
}

func (s *Session) defaultDependencies() Dependencies {
	compiler := compile.New(s.cfg.Compilation.FFmpegBinary, s.compileOptions(), s.logger)
	return Dependencies{
		Probe: func(ctx context.Context, path string) (rally.Media, error) {
			return inspectSource(ctx, s.cfg.Compilation.FFprobeBinary, path)
		},
		Decode: func(ctx context.Context, path string) ([]float64, int, error) {
			samples, err := pcm.DecodeMono(ctx, s.cfg.Compilation.FFmpegBinary, path, pcm.DefaultSampleRate)
			if err != nil {
				return nil, 0, err
			}
			return samples, pcm.DefaultSampleRate, nil
		},
		Compile: compiler.Compile,
		Preview: compiler.Preview,
	}
}

func (s *Session) compileOptions() compile.Options {
	return compile.Options{
		ContextBefore:      s.cfg.Compilation.ContextBefore,
		ContextAfter:       s.cfg.Compilation.ContextAfter,
		TransitionDuration: s.cfg.Compilation.TransitionDuration,
		AddTransitions:     s.cfg.Compilation.AddTransitions,
		MaxDuration:        s.cfg.Compilation.MaxDuration,
		CommandTimeout:     s.commandTimeout(),
	}
}

func (s *Session) commandTimeout() time.Duration {
	return time.Duration(s.cfg.Compilation.CommandTimeout) * time.Second
}

// toolContext bounds a single external tool call by the configured command
// timeout so a hung ffmpeg or ffprobe never stalls the pipeline.
func (s *Session) toolContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout := s.commandTimeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// Weights returns the current weight vector.
func (s *Session) Weights() scoring.Weights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weights.Clone()
}

// ScoredRallies returns the current scored set in rank order.
func (s *Session) ScoredRallies() []scoring.ScoredRally {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scoring.ScoredRally, len(s.scored))
	copy(out, s.scored)
	scoring.SortByRank(out)
	return out
}

// Source returns the active source path, empty before the first analysis.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Media returns the active source metadata.
func (s *Session) Media() rally.Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media
}

// Job looks up a job handle by id.
func (s *Session) Job(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

// acquire registers an in-flight job for a fingerprint, rejecting duplicates.
func (s *Session) acquire(fingerprint string, kind JobKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if running, ok := s.inflight[fingerprint]; ok {
		return services.Wrap(services.ErrConcurrency, "session", string(kind),
			fmt.Sprintf("%s already in flight for this source", running), nil)
	}
	s.inflight[fingerprint] = kind
	return nil
}

func (s *Session) release(fingerprint string) {
	s.mu.Lock()
	delete(s.inflight, fingerprint)
	s.mu.Unlock()
}

// submit runs fn on the bounded worker pool under the configured job
// timeout and settles the job handle when it returns.
func (s *Session) submit(job *Job, fingerprint string, fn func(ctx context.Context) (string, error)) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go func() {
		s.slots <- struct{}{}
		defer func() { <-s.slots }()
		defer s.release(fingerprint)

		ctx := context.Background()
		if timeout := s.cfg.Workflow.JobTimeout; timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
			defer cancel()
		}

		job.start()
		output, err := fn(ctx)
		if err != nil {
			s.logger.Error("job failed", logging.FieldJobID, job.ID, "kind", job.Kind, "error", err)
		} else {
			s.logger.Info("job finished", logging.FieldJobID, job.ID, "kind", job.Kind)
		}
		job.finish(output, err)
	}()
}

// inspectSource probes a source and rejects media without an audio stream,
// since detection is audio driven. A source without a video frame rate still
// passes; the frame rate falls back to 30.
func inspectSource(ctx context.Context, ffprobeBinary, path string) (rally.Media, error) {
	result, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return rally.Media{}, err
	}
	if result.AudioSampleRate() <= 0 {
		return rally.Media{}, fmt.Errorf("%s has no usable audio stream", path)
	}
	media := rally.Media{Duration: result.DurationSeconds(), FPS: result.FPS()}
	if media.FPS <= 0 {
		media.FPS = 30
	}
	return media, nil
}

// rescoreLocked recomputes scores and selection from the current rallies and
// weights. Callers must hold s.mu.
func (s *Session) rescoreLocked() {
	s.scored = scoring.Select(scoring.Score(s.rallies, s.weights), scoring.Budget{
		MaxDuration:   s.cfg.Compilation.MaxDuration,
		ContextBefore: s.cfg.Compilation.ContextBefore,
		ContextAfter:  s.cfg.Compilation.ContextAfter,
	})
}
