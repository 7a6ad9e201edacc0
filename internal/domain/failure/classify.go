// Package failure normalizes raw worker errors into a fixed taxonomy and
// decides retry eligibility and backoff for the generation pipeline.
package failure

import (
	"strings"
	"time"
)

// Type is the normalized failure taxonomy.
type Type string

const (
	// TypeResourceExhaustion covers GPU/host memory and capacity errors.
	TypeResourceExhaustion Type = "resource_exhaustion"
	// TypeConnectionFailure covers transport errors between pipeline and worker.
	TypeConnectionFailure Type = "connection_failure"
	// TypeTimeout covers execution deadline errors reported by the worker.
	TypeTimeout Type = "timeout"
	// TypeInvalidInput covers deterministic request errors; never retried.
	TypeInvalidInput Type = "invalid_input"
	// TypeGenerationFailure covers transient errors inside the generation graph.
	TypeGenerationFailure Type = "generation_failure"
	// TypeUnknown is the fallback for unmatched error strings.
	TypeUnknown Type = "unknown"
)

// matcher pairs a taxonomy bucket with the keywords that select it.
// Matching is case-insensitive substring search against the raw error type,
// evaluated in order: deterministic input errors first so they can never be
// shadowed by a broader transient bucket.
type matcher struct {
	t        Type
	keywords []string
}

var matchers = []matcher{
	{TypeInvalidInput, []string{"invalid", "validation", "malformed", "bad_request", "unsupported"}},
	{TypeResourceExhaustion, []string{"out_of_memory", "outofmemory", "oom", "memory", "resource", "capacity"}},
	{TypeTimeout, []string{"timeout", "timed_out", "timed out", "deadline"}},
	{TypeConnectionFailure, []string{"connection", "network", "socket", "refused", "unreachable", "reset"}},
	{TypeGenerationFailure, []string{"generation", "inference", "execution", "node", "prompt_failed", "workflow"}},
}

// Classify maps a raw worker error type string onto the taxonomy.
// Unmatched values fall into TypeUnknown.
func Classify(raw string) Type {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return TypeUnknown
	}
	for _, m := range matchers {
		for _, kw := range m.keywords {
			if strings.Contains(needle, kw) {
				return m.t
			}
		}
	}
	return TypeUnknown
}

// MaxRetryAttempts bounds the retry loop; mirrored in the job record's
// retryCount invariant.
const MaxRetryAttempts = 3

var retryable = map[Type]bool{
	TypeResourceExhaustion: true,
	TypeConnectionFailure:  true,
	TypeTimeout:            true,
	TypeGenerationFailure:  true,
}

// Retryable reports whether the taxonomy bucket is eligible for retry at all.
// Invalid input and unknown errors are deterministic or unclassifiable and
// are never retried regardless of the attempt count.
func Retryable(t Type) bool {
	return retryable[t]
}

// ShouldRetry combines bucket eligibility with the attempt budget.
// retryCount is the number of retries already consumed.
func ShouldRetry(t Type, retryCount int) bool {
	return Retryable(t) && retryCount < MaxRetryAttempts
}

// backoffSchedule is the fixed exponential delay table; attempt k (1-indexed)
// beyond the table length clamps to the last entry.
var backoffSchedule = []time.Duration{
	1000 * time.Millisecond,
	2000 * time.Millisecond,
	4000 * time.Millisecond,
}

// BackoffDelay returns the advisory delay for retry attempt k (1-indexed).
// The pipeline dispatches retries immediately; the delay travels with the
// retrying event as informational metadata only.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(backoffSchedule) {
		attempt = len(backoffSchedule)
	}
	return backoffSchedule[attempt-1]
}
