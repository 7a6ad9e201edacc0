package core

import (
	"context"
	"errors"
	"time"

	"github.com/openpalette/genstudio/internal/domain/model"
)

// This file contains repository and collaborator interface definitions
// (ports in hexagonal architecture). These interfaces define the contracts
// between the service layer and the data/transport layers. Service
// implementations should depend on these interfaces, not concrete
// implementations.

// JobRepository defines the durable job ledger contract: a key-value store
// with a sortable secondary index over (status, priority, enqueue time).
type JobRepository interface {
	Insert(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id string) (*model.Job, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Job, error)
	// NextPending returns the lowest-sort-key pending job without mutating
	// its status; claiming is the worker's responsibility.
	NextPending(ctx context.Context) (*model.Job, error)
	// Update applies a field-level partial update. When the update carries a
	// status change, the secondary-index sort key is rewritten in the same
	// statement. expectStatus, when non-empty, makes the write conditional on
	// the current status so terminal states can never be overwritten.
	Update(ctx context.Context, id string, update *model.JobUpdate, expectStatus model.JobStatus) (*model.Job, error)
	// CountActiveForUser counts jobs in {pending, processing} for a user,
	// backing the one-generation-at-a-time gate.
	CountActiveForUser(ctx context.Context, userID string) (int, error)
	// ListPending returns all pending jobs in priority order for position
	// recomputation.
	ListPending(ctx context.Context) ([]*model.Job, error)
	Stats(ctx context.Context) (*model.QueueStats, error)
}

// ErrStaleStatus is returned by JobRepository.Update when the conditional
// status check fails, typically because the job already reached a terminal
// state.
var ErrStaleStatus = errors.New("job status changed concurrently")

// SweeperRepository defines the batched maintenance operations run on a timer.
type SweeperRepository interface {
	// TimeoutOverdueJobs forces non-terminal jobs whose timeoutAt has passed
	// into the timeout status, with a message distinguishing queue-phase from
	// processing-phase expiry. Returns the affected jobs so their clients can
	// be notified.
	TimeoutOverdueJobs(ctx context.Context, batchSize int) ([]*model.Job, error)
	// DeleteExpiredJobs removes terminal jobs past their retention deadline.
	DeleteExpiredJobs(ctx context.Context, batchSize int) (int64, error)
	// RecomputePositions rewrites queuePosition and estimatedWaitMillis for
	// every pending job in priority order. Returns the number updated.
	RecomputePositions(ctx context.Context) (int, error)
}

// ConnectionRepository is the registry of live client channels.
type ConnectionRepository interface {
	Save(ctx context.Context, conn model.Connection) error
	Get(ctx context.Context, id string) (*model.Connection, error)
	Delete(ctx context.Context, id string) error
	Touch(ctx context.Context, id string, at time.Time) error
}

// ErrConnectionNotFound is returned when a registry record does not exist.
var ErrConnectionNotFound = errors.New("connection not found")

// ConnectionGateway pushes one message to one live channel. Implementations
// must return ErrConnectionGone when the transport reports the client is no
// longer reachable; the broadcaster treats that as registry cleanup, never as
// an application error.
type ConnectionGateway interface {
	Send(ctx context.Context, connectionID string, payload []byte) error
}

// ErrConnectionGone is the transport-level "client not found" condition.
var ErrConnectionGone = errors.New("connection gone")

// UsageWindow selects the counting window for union-based quota checks.
type UsageWindow string

const (
	// UsageWindowDaily covers the current calendar day.
	UsageWindowDaily UsageWindow = "daily"
	// UsageWindowMonthly covers the current calendar month.
	UsageWindowMonthly UsageWindow = "monthly"
)

// UsageRepository is the rate-limit ledger. Records are indexed under both
// the user key and the IP key with the generation id as the member, so
// counting a window as the union of the two partitions deduplicates a single
// generation that appears under both.
type UsageRepository interface {
	Record(ctx context.Context, rec model.UsageRecord) error
	// CountUnion counts distinct generation events attributed to either the
	// user id or the IP within the window. Either key may be empty.
	CountUnion(ctx context.Context, userID, ip string, window UsageWindow) (int, error)
	// AnonymousSeen reports whether the IP already consumed its single
	// anonymous generation inside the rolling 24h window.
	AnonymousSeen(ctx context.Context, ip string) (bool, error)
	// MarkAnonymous records the anonymous generation for the IP.
	MarkAnonymous(ctx context.Context, ip string) error
}

// PlanResolver resolves a user's plan snapshot. Subscription bookkeeping is
// owned by the billing system; this is the only view of it the pipeline needs.
type PlanResolver interface {
	Resolve(ctx context.Context, userID string) (model.PlanSnapshot, error)
}

// CreditLedger tracks pre-purchased bonus credits. Balance checks happen at
// admission; consumption is deferred to the recording step.
type CreditLedger interface {
	Balance(ctx context.Context, userID string) (int, error)
	Consume(ctx context.Context, userID string, n int) error
}
