// Package plans provides the default plan resolver, backed by a static tier
// table from configuration. Subscription bookkeeping lives upstream; this
// resolver only answers "what caps does this tier get".
package plans

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/model"
)

// StaticResolver resolves user plans against a fixed tier table. Users carry
// their tier in the identity headers the edge proxy injects; users without
// one fall back to the default tier.
type StaticResolver struct {
	tiers       map[string]model.PlanSnapshot
	defaultTier string
}

var _ core.PlanResolver = (*StaticResolver)(nil)

// NewStaticResolver parses a tier table of the form
// "free:5:50,basic:50:500,pro:unlimited" into a resolver.
func NewStaticResolver(table, defaultTier string) (*StaticResolver, error) {
	tiers, err := ParseTable(table)
	if err != nil {
		return nil, err
	}
	if defaultTier == "" {
		defaultTier = "free"
	}
	if _, ok := tiers[defaultTier]; !ok {
		return nil, fmt.Errorf("default tier %q is not in the plan table", defaultTier)
	}
	return &StaticResolver{tiers: tiers, defaultTier: defaultTier}, nil
}

// ParseTable parses the comma-delimited tier table. Each entry is either
// "tier:dailyCap:monthlyCap" or "tier:unlimited".
func ParseTable(table string) (map[string]model.PlanSnapshot, error) {
	tiers := make(map[string]model.PlanSnapshot)

	for _, entry := range strings.Split(table, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		tier := strings.TrimSpace(parts[0])
		if tier == "" {
			return nil, fmt.Errorf("plan table entry %q has no tier name", entry)
		}

		switch {
		case len(parts) == 2 && strings.TrimSpace(parts[1]) == "unlimited":
			tiers[tier] = model.PlanSnapshot{Tier: tier, Unlimited: true}
		case len(parts) == 3:
			daily, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil || daily < 0 {
				return nil, fmt.Errorf("plan table entry %q has an invalid daily cap", entry)
			}
			monthly, err := strconv.Atoi(strings.TrimSpace(parts[2]))
			if err != nil || monthly < 0 {
				return nil, fmt.Errorf("plan table entry %q has an invalid monthly cap", entry)
			}
			tiers[tier] = model.PlanSnapshot{Tier: tier, DailyCap: daily, MonthlyCap: monthly}
		default:
			return nil, fmt.Errorf("plan table entry %q is malformed", entry)
		}
	}

	if len(tiers) == 0 {
		return nil, fmt.Errorf("plan table is empty")
	}
	return tiers, nil
}

// Resolve returns the plan snapshot for a user. The resolver is static, so
// the user id only selects the default tier; ResolveTier handles explicit
// tier hints.
func (r *StaticResolver) Resolve(ctx context.Context, userID string) (model.PlanSnapshot, error) {
	return r.tiers[r.defaultTier], nil
}

// ResolveTier returns the snapshot for an explicit tier name, falling back
// to the default tier for unknown values.
func (r *StaticResolver) ResolveTier(tier string) model.PlanSnapshot {
	if plan, ok := r.tiers[strings.TrimSpace(tier)]; ok {
		return plan
	}
	return r.tiers[r.defaultTier]
}
