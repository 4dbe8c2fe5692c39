package session

import (
	"context"
	"fmt"

	"rallycut/internal/audio"
	"rallycut/internal/feedback"
	"rallycut/internal/logging"
	"rallycut/internal/rally"
	"rallycut/internal/services"
)

// Analyze starts detection and scoring for a source in the background. It
// rejects the request when a job is already in flight for the same source.
// A source with no detectable hits is not an error; it yields an empty
// rally set.
func (s *Session) Analyze(ctx context.Context, source string) (*Job, error) {
	fingerprint, err := feedback.Fingerprint(source)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(fingerprint, JobAnalyze); err != nil {
		return nil, err
	}

	job := newJob(JobAnalyze, source)
	s.logger.Info("analysis scheduled", logging.FieldJobID, job.ID, logging.FieldSource, source)
	s.submit(job, fingerprint, func(ctx context.Context) (string, error) {
		return "", s.runAnalysis(ctx, source, fingerprint)
	})
	return job, nil
}

// Restore loads the stored analysis and rally state for a previously
// analyzed source, so a new process can edit, rate, and compile without
// re-running detection. Fails with a not-found error when the source was
// never analyzed or has changed since.
func (s *Session) Restore(ctx context.Context, source string) error {
	fingerprint, err := feedback.Fingerprint(source)
	if err != nil {
		return err
	}
	snapshot, err := s.store.GetAnalysis(ctx, fingerprint)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return services.Wrap(services.ErrNotFound, "session", "restore",
			fmt.Sprintf("%s has not been analyzed (run analyze first)", source), nil)
	}
	rallies, err := s.store.LoadRallies(ctx, fingerprint)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.source = source
	s.fingerprint = fingerprint
	s.media = rally.Media{Duration: snapshot.Duration, FPS: snapshot.FPS}
	s.analysis = snapshot.Analysis
	s.rallies = rallies
	s.rescoreLocked()
	s.mu.Unlock()
	return nil
}

func (s *Session) runAnalysis(ctx context.Context, source, fingerprint string) error {
	snapshot, err := s.store.GetAnalysis(ctx, fingerprint)
	if err != nil {
		s.logger.Warn("analysis cache unavailable", "error", err)
		snapshot = nil
	}

	var (
		media    rally.Media
		analysis audio.Analysis
	)
	if snapshot != nil {
		s.logger.Info("using cached analysis", logging.FieldSource, source)
		media = rally.Media{Duration: snapshot.Duration, FPS: snapshot.FPS}
		analysis = snapshot.Analysis
	} else {
		media, analysis, err = s.analyzeFresh(ctx, source)
		if err != nil {
			return err
		}
		saveErr := s.store.SaveAnalysis(ctx, fingerprint, feedback.AnalysisSnapshot{
			SourcePath: source,
			Duration:   media.Duration,
			FPS:        media.FPS,
			Analysis:   analysis,
		})
		if saveErr != nil {
			s.logger.Warn("analysis not cached", "error", saveErr)
		}
	}

	if len(analysis.Hits) == 0 {
		s.logger.Info("no hits detected, source yields no rallies", logging.FieldSource, source)
	}

	rallies := rally.Detect(analysis.Hits, analysis.Crowd, analysis.Motion, media, s.detectionParams())
	s.logger.Info("detection complete", logging.FieldSource, source,
		"hits", len(analysis.Hits), "rallies", len(rallies))

	if err := s.store.SaveRallies(ctx, fingerprint, rallies); err != nil {
		s.logger.Warn("rallies not persisted", "error", err)
	}

	s.mu.Lock()
	s.source = source
	s.fingerprint = fingerprint
	s.media = media
	s.analysis = analysis
	s.rallies = rallies
	s.rescoreLocked()
	s.mu.Unlock()
	return nil
}

func (s *Session) analyzeFresh(ctx context.Context, source string) (rally.Media, audio.Analysis, error) {
	probeCtx, cancelProbe := s.toolContext(ctx)
	media, err := s.deps.Probe(probeCtx, source)
	cancelProbe()
	if err != nil {
		return rally.Media{}, audio.Analysis{}, services.Wrap(services.ErrInput, "session", "probe",
			fmt.Sprintf("inspect %s", source), err)
	}

	decodeCtx, cancelDecode := s.toolContext(ctx)
	samples, sampleRate, err := s.deps.Decode(decodeCtx, source)
	cancelDecode()
	if err != nil {
		return rally.Media{}, audio.Analysis{}, services.Wrap(services.ErrInput, "session", "decode",
			fmt.Sprintf("decode audio of %s", source), err)
	}

	detection := s.cfg.Detection
	analysis := audio.Analyze(samples, sampleRate, audio.Params{
		HitThreshold:   detection.HitThreshold,
		MinHitInterval: detection.MinHitInterval,
		MinConfidence:  detection.MinHitConfidence,
	})
	if media.Duration <= 0 {
		media.Duration = analysis.Duration
	}
	return media, analysis, nil
}
