package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/openpalette/genstudio/internal/core"
)

// ErrInsufficientCredits is returned when a consume would take the balance
// below zero.
var ErrInsufficientCredits = errors.New("insufficient bonus credits")

// CreditStore is the Redis-backed bonus-credit ledger. Balances are granted
// by the billing system; this adapter only reads and consumes them.
type CreditStore struct {
	client redis.UniversalClient
	prefix string
}

// NewCreditStore creates a bonus-credit ledger.
func NewCreditStore(client redis.UniversalClient) *CreditStore {
	return &CreditStore{client: client, prefix: "credits:"}
}

var _ core.CreditLedger = (*CreditStore)(nil)

// Balance returns the user's bonus-credit balance; a missing key reads as zero.
func (s *CreditStore) Balance(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}

	n, err := s.client.Get(ctx, s.prefix+userID).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read credit balance: %w", err)
	}
	return n, nil
}

// Consume atomically decrements the balance by n, restoring it if the
// decrement would overdraw.
func (s *CreditStore) Consume(ctx context.Context, userID string, n int) error {
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}
	if n <= 0 {
		return errors.New("consume amount must be positive")
	}

	key := s.prefix + userID
	remaining, err := s.client.DecrBy(ctx, key, int64(n)).Result()
	if err != nil {
		return fmt.Errorf("consume credits: %w", err)
	}
	if remaining < 0 {
		if restoreErr := s.client.IncrBy(ctx, key, int64(n)).Err(); restoreErr != nil {
			return fmt.Errorf("restore overdrawn credits: %w", restoreErr)
		}
		return ErrInsufficientCredits
	}
	return nil
}
