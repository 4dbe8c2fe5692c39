package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"rallycut/internal/logging"
	"rallycut/internal/preference"
	"rallycut/internal/rally"
	"rallycut/internal/scoring"
	"rallycut/internal/services"
)

func (s *Session) rallyIndexLocked(id int64) (int, error) {
	for i := range s.rallies {
		if s.rallies[i].ID == id {
			return i, nil
		}
	}
	return 0, services.Wrap(services.ErrNotFound, "session", "lookup",
		fmt.Sprintf("rally %d not found", id), nil)
}

// AdjustRally moves a rally's frame bounds, re-aggregates its intensity and
// confidence fields, and rescores the whole set (scores are relative to the
// population, so one boundary change can move every rank).
func (s *Session) AdjustRally(ctx context.Context, id int64, startFrame, endFrame int) (rally.Rally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.rallyIndexLocked(id)
	if err != nil {
		return rally.Rally{}, err
	}
	adjusted, err := rally.Adjust(s.rallies[i], startFrame, endFrame, s.analysis.Crowd, s.analysis.Motion, s.media)
	if err != nil {
		return rally.Rally{}, err
	}
	s.rallies[i] = adjusted
	s.rescoreLocked()
	s.persistRalliesLocked(ctx)
	s.logger.Info("rally adjusted", logging.FieldRallyID, id,
		"start_frame", startFrame, "end_frame", endFrame)
	return adjusted, nil
}

// SplitRally divides a rally at the given timestamp and renumbers the set.
func (s *Session) SplitRally(ctx context.Context, id int64, at float64) ([]rally.Rally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.rallyIndexLocked(id)
	if err != nil {
		return nil, err
	}
	first, second, err := rally.Split(s.rallies[i], at, s.analysis.Crowd, s.analysis.Motion, s.media, s.detectionParams())
	if err != nil {
		return nil, err
	}
	s.rallies = append(s.rallies[:i], append([]rally.Rally{first, second}, s.rallies[i+1:]...)...)
	rally.Renumber(s.rallies)
	s.rescoreLocked()
	s.persistRalliesLocked(ctx)
	s.logger.Info("rally split", logging.FieldRallyID, id, "at", at)
	return []rally.Rally{first, second}, nil
}

// MergeRallies unions two rallies into one and renumbers the set.
func (s *Session) MergeRallies(ctx context.Context, idA, idB int64) (rally.Rally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.rallyIndexLocked(idA)
	if err != nil {
		return rally.Rally{}, err
	}
	j, err := s.rallyIndexLocked(idB)
	if err != nil {
		return rally.Rally{}, err
	}
	if i == j {
		return rally.Rally{}, services.Wrap(services.ErrValidation, "session", "merge",
			"cannot merge a rally with itself", nil)
	}

	merged := rally.Merge(s.rallies[i], s.rallies[j], s.analysis.Crowd, s.analysis.Motion, s.media, s.detectionParams())
	kept := make([]rally.Rally, 0, len(s.rallies)-1)
	for k := range s.rallies {
		if k == i || k == j {
			continue
		}
		kept = append(kept, s.rallies[k])
	}
	s.rallies = append(kept, merged)
	rally.Renumber(s.rallies)
	s.rescoreLocked()
	s.persistRalliesLocked(ctx)
	s.logger.Info("rallies merged", "first", idA, "second", idB)
	return merged, nil
}

// SubmitFeedback records the user's verdict on a rally, folds it into the
// weights, and rescores. A store failure is logged and swallowed so the
// session keeps working with in-memory weights.
func (s *Session) SubmitFeedback(ctx context.Context, rallyID int64, rating int, decision preference.Decision) error {
	if decision != preference.DecisionKeep && decision != preference.DecisionReject {
		return services.Wrap(services.ErrValidation, "session", "feedback",
			fmt.Sprintf("unknown decision %q", decision), nil)
	}
	if rating != 0 && (rating < 1 || rating > 5) {
		return services.Wrap(services.ErrValidation, "session", "feedback",
			fmt.Sprintf("rating %d outside 1-5", rating), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.rallyIndexLocked(rallyID)
	if err != nil {
		return err
	}
	var components map[scoring.Feature]float64
	for _, sc := range s.scored {
		if sc.Rally.ID == rallyID {
			components = sc.Components
			break
		}
	}

	rec := preference.Record{
		RallyID:    rallyID,
		Components: components,
		Decision:   decision,
		Rating:     rating,
		At:         time.Now().UTC(),
	}
	if err := s.store.AppendFeedback(ctx, s.fingerprint, rec); err != nil {
		s.logger.Warn("feedback not persisted, continuing in memory", "error", err)
	}

	s.weights = s.learner.Update(s.weights, rec)
	if err := s.store.SaveWeights(ctx, s.weights.Map()); err != nil {
		s.logger.Warn("weight snapshot not saved", "error", err)
	}

	confirmed := true
	highlight := decision == preference.DecisionKeep
	s.rallies[i].Confirmed = &confirmed
	s.rallies[i].Highlight = &highlight
	if rating != 0 {
		s.rallies[i].UserRating = &rating
	}

	s.rescoreLocked()
	s.persistRalliesLocked(ctx)
	s.logger.Info("feedback applied", logging.FieldRallyID, rallyID,
		"decision", decision, "rating", rating)
	return nil
}

// PreviewRally produces (or reuses) a low-quality preview clip for a rally.
func (s *Session) PreviewRally(ctx context.Context, id int64) (string, error) {
	s.mu.Lock()
	i, err := s.rallyIndexLocked(id)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	r := s.rallies[i]
	source := s.source
	s.mu.Unlock()

	previewDir := filepath.Join(s.cfg.Paths.DataDir, "previews")
	previewCtx, cancel := s.toolContext(ctx)
	defer cancel()
	return s.deps.Preview(previewCtx, source, r, previewDir)
}

func (s *Session) detectionParams() rally.Params {
	detection := s.cfg.Detection
	return rally.Params{
		MinHitsPerRally: detection.MinHitsPerRally,
		MaxHitInterval:  detection.MaxHitInterval,
		MinRallyGap:     detection.MinRallyGap,
		ContextBefore:   detection.ContextBefore,
		ContextAfter:    detection.ContextAfter,
	}
}

func (s *Session) persistRalliesLocked(ctx context.Context) {
	if err := s.store.SaveRallies(ctx, s.fingerprint, s.rallies); err != nil {
		s.logger.Warn("rallies not persisted", "error", err)
	}
}
