package logging

import "log/slog"

// Shared attribute keys so log lines stay greppable across stages.
const (
	FieldComponent = "component"
	FieldSource    = "source"
	FieldJobID     = "job_id"
	FieldRallyID   = "rally_id"
	FieldStage     = "stage"
)

// WithComponent returns a child logger tagged with the given component name.
func WithComponent(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(slog.String(FieldComponent, name))
}
