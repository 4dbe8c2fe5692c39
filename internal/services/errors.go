package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers used to classify pipeline failures. Wrap tags errors with
// one of these so callers can branch on the failure class without string
// matching.
var (
	// ErrInput marks unreadable or corrupt source media. The job aborts
	// before detection runs.
	ErrInput = errors.New("input error")
	// ErrExternalTool marks a non-zero exit or unusable output from an
	// external media tool. Compilation jobs abort and may be retried.
	ErrExternalTool = errors.New("external tool error")
	// ErrConcurrency marks a duplicate in-flight job for the same source.
	// The request is rejected without touching pipeline state.
	ErrConcurrency = errors.New("concurrency error")
	// ErrPersistence marks a feedback store failure. Persistence failures
	// are logged and swallowed; the session continues with in-memory state.
	ErrPersistence = errors.New("persistence error")
	// ErrValidation marks caller mistakes such as out-of-range boundaries
	// or unknown rally ids.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrTimeout    = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether the failure class is safe to retry without
// operator intervention.
func Retryable(err error) bool {
	return errors.Is(err, ErrExternalTool) || errors.Is(err, ErrTimeout)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
