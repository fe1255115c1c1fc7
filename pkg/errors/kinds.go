package errors

import (
	"fmt"
	"sort"
	"strings"
)

// GenerationError wraps any failure during zone, proforme, or element
// synthesis. Details carries structured context about the failing stage
// (region, zone kind, element counts) for diagnostics.
type GenerationError struct {
	Code    Code
	Message string
	Details map[string]any
	Cause   error
}

// NewGeneration creates a GenerationError with the default generation code.
func NewGeneration(message string, details map[string]any) *GenerationError {
	return &GenerationError{
		Code:    ErrCodeGeneration,
		Message: message,
		Details: details,
	}
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error { return e.Cause }

// LayoutError is raised when a generated layout fails its own validity
// check, such as empty zone input or an element referencing a missing zone.
type LayoutError struct {
	Message string
}

// NewLayout creates a LayoutError with a formatted message.
func NewLayout(format string, args ...any) *LayoutError {
	return &LayoutError{Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeLayout, e.Message)
}

// ValidationError is raised when any coherence metric falls below the
// acceptance threshold. It carries the full per-metric score breakdown so
// callers can report or act on individual metrics.
type ValidationError struct {
	Scores    map[string]float64
	Threshold float64
}

// NewValidation creates a ValidationError from the itemized scores.
func NewValidation(scores map[string]float64, threshold float64) *ValidationError {
	return &ValidationError{Scores: scores, Threshold: threshold}
}

// Error implements the error interface. Metrics are listed in sorted order
// for deterministic messages.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Scores))
	for name := range e.Scores {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.3f", name, e.Scores[name]))
	}
	return fmt.Sprintf("%s: score below threshold %.2f (%s)",
		ErrCodeValidation, e.Threshold, strings.Join(parts, ", "))
}

// FailedMetrics returns the names of metrics below the threshold, sorted.
func (e *ValidationError) FailedMetrics() []string {
	var failed []string
	for name, score := range e.Scores {
		if score < e.Threshold {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}
