package model

import (
	"encoding/json"
	"time"
)

// PlanSnapshot is the caller's plan tier at admission time, resolved by the
// subscription system upstream of this service.
type PlanSnapshot struct {
	Tier       string `json:"tier"`
	Unlimited  bool   `json:"unlimited"`
	DailyCap   int    `json:"dailyCap"`
	MonthlyCap int    `json:"monthlyCap"`
}

// Identity describes who is asking for a generation. UserID is empty for
// anonymous callers; IP is always present.
type Identity struct {
	UserID string
	IP     string
	Plan   PlanSnapshot
}

// Anonymous reports whether the request carries no authenticated user.
func (id Identity) Anonymous() bool {
	return id.UserID == ""
}

// UsageRecord is one rate-limit ledger entry, written once per generation
// unit. The same generation id is indexed under both the user key and the IP
// key so windows can be counted as a union without double counting.
type UsageRecord struct {
	GenerationID string    `json:"generationId"`
	UserID       string    `json:"userId,omitempty"`
	IP           string    `json:"ip"`
	Tier         string    `json:"tier"`
	Timestamp    time.Time `json:"timestamp"`
}

// Remaining is the allowance left after an admission decision. It marshals as
// the literal string "unlimited" for unmetered tiers and as a number otherwise.
type Remaining struct {
	Count     int
	Unlimited bool
}

// MarshalJSON implements json.Marshaler.
func (r Remaining) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(r.Count)
}

// UnmarshalJSON implements json.Unmarshaler, accepting either the literal
// "unlimited" or a number.
func (r *Remaining) UnmarshalJSON(data []byte) error {
	if string(data) == `"unlimited"` {
		*r = Remaining{Unlimited: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = Remaining{Count: n}
	return nil
}

// AdmissionDecision is the rate limit evaluator's verdict.
type AdmissionDecision struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	Remaining Remaining `json:"remaining"`
	// CreditFunded marks decisions admitted via the bonus-credit bypass so
	// the recording step knows to decrement the balance.
	CreditFunded bool `json:"-"`
}
