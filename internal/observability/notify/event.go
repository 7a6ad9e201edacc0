package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// GenerationFailurePayload captures the canonical data we emit when a
// generation reaches a terminal failure.
type GenerationFailurePayload struct {
	JobID        string
	UserID       string
	ErrorType    string
	ErrorMessage string
	RetryCount   int
	Severity     string
	OccurredAt   time.Time
	Metadata     map[string]string
}

// Sink describes a destination capable of consuming failure notifications.
type Sink interface {
	SendGenerationFailure(ctx context.Context, payload GenerationFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload GenerationFailurePayload) error

// SendGenerationFailure implements the Sink interface.
func (f SinkFunc) SendGenerationFailure(ctx context.Context, payload GenerationFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
