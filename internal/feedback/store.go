// Package feedback persists analysis results, rally state, the feedback
// history, and the learned weight snapshot in SQLite.
package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"rallycut/internal/audio"
	"rallycut/internal/config"
	"rallycut/internal/preference"
	"rallycut/internal/rally"
	"rallycut/internal/services"
)

// Store manages pipeline persistence backed by SQLite. A file lock on the
// data directory keeps concurrent processes from sharing the database.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// AnalysisSnapshot is the cached output of analyzing one source, keyed by
// the source fingerprint so a re-analysis of unchanged media is free.
type AnalysisSnapshot struct {
	SourcePath string         `json:"source_path"`
	Duration   float64        `json:"duration"`
	FPS        float64        `json:"fps"`
	Analysis   audio.Analysis `json:"analysis"`
}

// Open initializes or connects to the database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "open", "ensure directories", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "rallycut.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "open", "acquire data directory lock", err)
	}
	if !held {
		return nil, services.Wrap(services.ErrConcurrency, "store", "open",
			fmt.Sprintf("data directory %s is in use by another process", cfg.Paths.DataDir), nil)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "rallycut.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, services.Wrap(services.ErrPersistence, "store", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, services.Wrap(services.ErrPersistence, "store", "open",
				fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the data directory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveAnalysis caches the analysis for a source, replacing any prior entry.
func (s *Store) SaveAnalysis(ctx context.Context, fingerprint string, snapshot AnalysisSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save-analysis", "marshal analysis", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (fingerprint, payload, created_at) VALUES (?, ?, ?)
         ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		fingerprint, string(payload), now())
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save-analysis", "insert analysis", err)
	}
	return nil
}

// GetAnalysis returns the cached analysis for a fingerprint, or nil when the
// source has not been analyzed.
func (s *Store) GetAnalysis(ctx context.Context, fingerprint string) (*AnalysisSnapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM analyses WHERE fingerprint = ?`, fingerprint).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "get-analysis", "query analysis", err)
	}
	var snapshot AnalysisSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "get-analysis", "decode analysis", err)
	}
	return &snapshot, nil
}

// SaveRallies replaces the rally set for a source wholesale. Edits always go
// through a full replacement so the stored state never mixes generations.
func (s *Store) SaveRallies(ctx context.Context, fingerprint string, rallies []rally.Rally) error {
	payload, err := json.Marshal(rallies)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save-rallies", "marshal rallies", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rallies (fingerprint, payload, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		fingerprint, string(payload), now())
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save-rallies", "insert rallies", err)
	}
	return nil
}

// LoadRallies returns the stored rally set for a source, nil when absent.
func (s *Store) LoadRallies(ctx context.Context, fingerprint string) ([]rally.Rally, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM rallies WHERE fingerprint = ?`, fingerprint).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "load-rallies", "query rallies", err)
	}
	var rallies []rally.Rally
	if err := json.Unmarshal([]byte(payload), &rallies); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "load-rallies", "decode rallies", err)
	}
	return rallies, nil
}

// AppendFeedback records one feedback decision. The table is append-only;
// the history replayed in insertion order reproduces the learned weights.
func (s *Store) AppendFeedback(ctx context.Context, fingerprint string, rec preference.Record) error {
	components, err := json.Marshal(rec.Components)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "append-feedback", "marshal components", err)
	}
	at := rec.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO feedback (fingerprint, rally_id, components, decision, rating, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		fingerprint, rec.RallyID, string(components), string(rec.Decision), rec.Rating,
		at.Format(time.RFC3339Nano))
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "append-feedback", "insert feedback", err)
	}
	return nil
}

// FeedbackHistory returns every feedback record in insertion order.
func (s *Store) FeedbackHistory(ctx context.Context) ([]preference.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rally_id, components, decision, rating, created_at FROM feedback ORDER BY id`)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "feedback-history", "query feedback", err)
	}
	defer rows.Close()

	var records []preference.Record
	for rows.Next() {
		var (
			rec        preference.Record
			components string
			decision   string
			createdRaw string
		)
		if err := rows.Scan(&rec.RallyID, &components, &decision, &rec.Rating, &createdRaw); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "feedback-history", "scan feedback", err)
		}
		if err := json.Unmarshal([]byte(components), &rec.Components); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "feedback-history", "decode components", err)
		}
		rec.Decision = preference.Decision(decision)
		if at, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			rec.At = at
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "feedback-history", "iterate feedback", err)
	}
	return records, nil
}

// SaveWeights stores the current learned weights for display. The feedback
// history remains the source of truth; this row is a snapshot.
func (s *Store) SaveWeights(ctx context.Context, weights map[string]float64) error {
	payload, err := json.Marshal(weights)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save-weights", "marshal weights", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO weights (id, payload, updated_at) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload), now())
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "save-weights", "insert weights", err)
	}
	return nil
}

// LoadWeights returns the stored weight snapshot, nil when none exists.
func (s *Store) LoadWeights(ctx context.Context) (map[string]float64, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM weights WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "load-weights", "query weights", err)
	}
	var weights map[string]float64
	if err := json.Unmarshal([]byte(payload), &weights); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "load-weights", "decode weights", err)
	}
	return weights, nil
}

// Stats summarizes stored state for diagnostics.
type Stats struct {
	Analyses      int
	RallySets     int
	FeedbackCount int
}

// CollectStats counts rows per table.
func (s *Store) CollectStats(ctx context.Context) (Stats, error) {
	var stats Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(1) FROM analyses`, &stats.Analyses},
		{`SELECT COUNT(1) FROM rallies`, &stats.RallySets},
		{`SELECT COUNT(1) FROM feedback`, &stats.FeedbackCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, services.Wrap(services.ErrPersistence, "store", "stats", "count rows", err)
		}
	}
	return stats, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
