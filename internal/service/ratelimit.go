package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/observability/metrics"
	"github.com/openpalette/genstudio/internal/observability/statsd"
)

// User-facing rejection reasons, surfaced verbatim in 429 responses.
const (
	ReasonConcurrency      = "You can only run one generation at a time"
	ReasonDailyLimit       = "Daily generation limit reached"
	ReasonMonthlyLimit     = "Monthly generation limit reached"
	ReasonDailyIPLimit     = "Daily generation limit reached for your network"
	ReasonMonthlyIPLimit   = "Monthly generation limit reached for your network"
	ReasonAnonymousAllowed = "Anonymous users get one free generation per day"
)

// RateLimitServiceOptions groups dependencies for RateLimitService.
type RateLimitServiceOptions struct {
	Usage   core.UsageRepository // Required: rate-limit ledger
	Jobs    core.JobRepository   // Required: backs the concurrency gate
	Plans   core.PlanResolver    // Required: plan snapshot resolution
	Credits core.CreditLedger    // Optional: disables the bonus bypass when nil
	Logger  *slog.Logger         // Optional: structured logger
	Metrics statsd.Sink          // Optional: metrics sink
}

// RateLimitService decides whether a generation request may be admitted.
//
// Checks run in order and short-circuit on the first rejection:
// concurrency gate, bonus-credit bypass, plan quota (union-counted over user
// and IP), IP abuse gate, and the anonymous one-per-IP-per-day path for
// unauthenticated callers. Any internal error fails open: quota is a
// cost-control signal, not a security boundary, so availability wins.
type RateLimitService struct {
	usage   core.UsageRepository
	jobs    core.JobRepository
	plans   core.PlanResolver
	credits core.CreditLedger
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewRateLimitService constructs a new RateLimitService.
func NewRateLimitService(opts RateLimitServiceOptions) (*RateLimitService, error) {
	if opts.Usage == nil {
		return nil, errors.New("UsageRepository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Plans == nil {
		return nil, errors.New("PlanResolver is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "rate_limit_service")
	}

	return &RateLimitService{
		usage:   opts.Usage,
		jobs:    opts.Jobs,
		plans:   opts.Plans,
		credits: opts.Credits,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Check evaluates the admission decision for one request of the given number
// of generation units. It never returns an error: internal failures are
// logged and resolved as an allow.
func (s *RateLimitService) Check(ctx context.Context, identity model.Identity, units int) model.AdmissionDecision {
	if units < 1 {
		units = 1
	}

	decision := s.evaluate(ctx, identity, units)
	s.emitDecision(identity, decision)
	return decision
}

func (s *RateLimitService) evaluate(ctx context.Context, identity model.Identity, units int) model.AdmissionDecision {
	if identity.Anonymous() {
		return s.checkAnonymous(ctx, identity)
	}

	// Concurrency gate: one job in {pending, processing} per user.
	active, err := s.jobs.CountActiveForUser(ctx, identity.UserID)
	if err != nil {
		return s.failOpen(ctx, "concurrency gate", err)
	}
	if active > 0 {
		return reject(ReasonConcurrency)
	}

	// Bonus-credit bypass: a positive balance admits immediately. The credit
	// is consumed by Record, not here.
	if s.credits != nil {
		balance, err := s.credits.Balance(ctx, identity.UserID)
		if err != nil {
			return s.failOpen(ctx, "credit balance", err)
		}
		if balance > 0 {
			return model.AdmissionDecision{
				Allowed:      true,
				Remaining:    model.Remaining{Count: balance},
				CreditFunded: true,
			}
		}
	}

	plan := identity.Plan
	if plan.Tier == "" {
		plan, err = s.plans.Resolve(ctx, identity.UserID)
		if err != nil {
			return s.failOpen(ctx, "plan resolution", err)
		}
	}
	if plan.Unlimited {
		return model.AdmissionDecision{Allowed: true, Remaining: model.Remaining{Unlimited: true}}
	}

	// Plan quota: windows are counted as the union of generations attributed
	// to the user id or the IP, so identity switching does not reset quota
	// and a shared-IP household is not double counted.
	daily, err := s.usage.CountUnion(ctx, identity.UserID, identity.IP, core.UsageWindowDaily)
	if err != nil {
		return s.failOpen(ctx, "daily usage count", err)
	}
	if daily+units > plan.DailyCap {
		return reject(ReasonDailyLimit)
	}

	monthly, err := s.usage.CountUnion(ctx, identity.UserID, identity.IP, core.UsageWindowMonthly)
	if err != nil {
		return s.failOpen(ctx, "monthly usage count", err)
	}
	if monthly+units > plan.MonthlyCap {
		return reject(ReasonMonthlyLimit)
	}

	// IP abuse gate: re-apply the caps keyed by IP alone to catch
	// multi-account traffic from one source.
	ipDaily, err := s.usage.CountUnion(ctx, "", identity.IP, core.UsageWindowDaily)
	if err != nil {
		return s.failOpen(ctx, "ip daily usage count", err)
	}
	if ipDaily+units > plan.DailyCap {
		return reject(ReasonDailyIPLimit)
	}

	ipMonthly, err := s.usage.CountUnion(ctx, "", identity.IP, core.UsageWindowMonthly)
	if err != nil {
		return s.failOpen(ctx, "ip monthly usage count", err)
	}
	if ipMonthly+units > plan.MonthlyCap {
		return reject(ReasonMonthlyIPLimit)
	}

	remaining := min(plan.DailyCap-daily, plan.MonthlyCap-monthly) - units
	if remaining < 0 {
		remaining = 0
	}
	return model.AdmissionDecision{Allowed: true, Remaining: model.Remaining{Count: remaining}}
}

// checkAnonymous grants exactly one generation per IP per rolling 24h window.
func (s *RateLimitService) checkAnonymous(ctx context.Context, identity model.Identity) model.AdmissionDecision {
	seen, err := s.usage.AnonymousSeen(ctx, identity.IP)
	if err != nil {
		return s.failOpen(ctx, "anonymous window", err)
	}
	if seen {
		return reject(ReasonAnonymousAllowed)
	}
	return model.AdmissionDecision{Allowed: true, Remaining: model.Remaining{Count: 0}}
}

// Record writes the post-admission ledger entries: one entry per generation
// unit, cross-referenced under both the user id and the IP, plus the
// anonymous marker or the deferred credit decrement where applicable.
func (s *RateLimitService) Record(ctx context.Context, jobID string, identity model.Identity, units int, decision model.AdmissionDecision) error {
	if units < 1 {
		units = 1
	}

	if identity.Anonymous() {
		if err := s.usage.MarkAnonymous(ctx, identity.IP); err != nil {
			return fmt.Errorf("mark anonymous usage: %w", err)
		}
		return nil
	}

	var errs []error
	for i := range units {
		generationID := jobID
		if i > 0 {
			generationID = fmt.Sprintf("%s#%d", jobID, i)
		}
		rec := model.UsageRecord{
			GenerationID: generationID,
			UserID:       identity.UserID,
			IP:           identity.IP,
			Tier:         identity.Plan.Tier,
		}
		if err := s.usage.Record(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("record usage unit %d: %w", i, err))
		}
	}

	if decision.CreditFunded && s.credits != nil {
		if err := s.credits.Consume(ctx, identity.UserID, units); err != nil {
			errs = append(errs, fmt.Errorf("consume bonus credits: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *RateLimitService) failOpen(ctx context.Context, step string, err error) model.AdmissionDecision {
	if s.logger != nil {
		s.logger.WarnContext(ctx, "rate limit check failed open",
			"step", step,
			"error", err,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("admission.fail_open", 1, map[string]string{"step": step})
	}
	return model.AdmissionDecision{Allowed: true, Remaining: model.Remaining{Unlimited: true}}
}

func (s *RateLimitService) emitDecision(identity model.Identity, decision model.AdmissionDecision) {
	result := metrics.ResultAllowed
	if !decision.Allowed {
		result = metrics.ResultRejected
	}
	metrics.EmitAdmission(s.metrics, metrics.AdmissionMetric{
		Result: result,
		Reason: decision.Reason,
		Plan:   identity.Plan.Tier,
	})
}

func reject(reason string) model.AdmissionDecision {
	return model.AdmissionDecision{Allowed: false, Reason: reason}
}
