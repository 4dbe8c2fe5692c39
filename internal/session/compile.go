package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"rallycut/internal/compile"
	"rallycut/internal/description"
	"rallycut/internal/logging"
	"rallycut/internal/scoring"
	"rallycut/internal/services"
)

// Compile assembles the chosen rallies into a highlight video in the
// background. With no explicit ids the budget selection is used. Rejects
// the request when a job is already in flight for the source.
func (s *Session) Compile(ctx context.Context, selectedIDs []int64) (*Job, error) {
	s.mu.Lock()
	if s.source == "" {
		s.mu.Unlock()
		return nil, services.Wrap(services.ErrValidation, "session", "compile",
			"no source analyzed yet", nil)
	}
	source := s.source
	fingerprint := s.fingerprint
	duration := s.media.Duration

	subset, err := s.selectionLocked(selectedIDs)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	plan := compile.Plan(subset, duration, s.compileOptions())
	if len(plan) == 0 {
		return nil, services.Wrap(services.ErrValidation, "session", "compile",
			"selection yields no clips", nil)
	}

	if err := s.acquire(fingerprint, JobCompile); err != nil {
		return nil, err
	}

	outputPath := filepath.Join(s.cfg.Paths.OutputDir,
		fmt.Sprintf("highlights_%s.mp4", time.Now().UTC().Format("20060102_150405")))
	job := newJob(JobCompile, source)
	s.logger.Info("compilation scheduled", logging.FieldJobID, job.ID,
		"clips", len(plan), "output", outputPath)
	s.submit(job, fingerprint, func(ctx context.Context) (string, error) {
		if err := s.deps.Compile(ctx, source, plan, outputPath); err != nil {
			return "", err
		}
		return outputPath, nil
	})
	return job, nil
}

// selectionLocked resolves explicit rally ids, or falls back to the budget
// selection. Callers must hold s.mu.
func (s *Session) selectionLocked(selectedIDs []int64) ([]scoring.ScoredRally, error) {
	if len(selectedIDs) == 0 {
		var subset []scoring.ScoredRally
		for _, sc := range s.scored {
			if sc.Selected {
				subset = append(subset, sc)
			}
		}
		return subset, nil
	}

	byID := make(map[int64]scoring.ScoredRally, len(s.scored))
	for _, sc := range s.scored {
		byID[sc.Rally.ID] = sc
	}
	subset := make([]scoring.ScoredRally, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		sc, ok := byID[id]
		if !ok {
			return nil, services.Wrap(services.ErrNotFound, "session", "compile",
				fmt.Sprintf("rally %d not found", id), nil)
		}
		subset = append(subset, sc)
	}
	return subset, nil
}

// ExportDescription renders the current selection as a highlight text block
// with source-relative timestamps.
func (s *Session) ExportDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subset []scoring.ScoredRally
	for _, sc := range s.scored {
		if sc.Selected {
			subset = append(subset, sc)
		}
	}
	scoring.SortChronological(subset)

	ranges := make([]description.Range, 0, len(subset))
	for _, sc := range subset {
		ranges = append(ranges, description.Range{
			Start: sc.Rally.StartTime(),
			End:   sc.Rally.EndTime(),
		})
	}
	return description.Format(ranges)
}

// SeedHighlights parses a highlight block and flags rallies overlapping any
// of its ranges. Returns the number of rallies marked.
func (s *Session) SeedHighlights(ctx context.Context, text string) int {
	ranges := description.Parse(text)
	if len(ranges) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for i := range s.rallies {
		for _, r := range ranges {
			if s.rallies[i].StartTime() < r.End && s.rallies[i].EndTime() > r.Start {
				highlight := true
				s.rallies[i].Highlight = &highlight
				marked++
				break
			}
		}
	}
	if marked > 0 {
		s.persistRalliesLocked(ctx)
	}
	return marked
}
