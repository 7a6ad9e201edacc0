package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/model"
)

const (
	// entryRetention keeps the per-generation ledger entries around long
	// enough for dispute inspection; these are counters, not an audit log.
	entryRetention = 7 * 24 * time.Hour
	// dailyRetention must outlive the longest daily window plus clock skew.
	dailyRetention = 48 * time.Hour
	// monthlyRetention must outlive a full calendar month.
	monthlyRetention = 32 * 24 * time.Hour
	// anonymousWindow grants one generation per IP per rolling window.
	anonymousWindow = 24 * time.Hour
)

// UsageStore is the Redis-backed rate-limit ledger. Every generation id is
// added to both the user-keyed and the IP-keyed window sets, so counting a
// window as the cardinality of their union deduplicates a generation that
// appears under both keys.
type UsageStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewUsageStore creates a usage ledger.
func NewUsageStore(client redis.UniversalClient) *UsageStore {
	return &UsageStore{client: client, now: time.Now}
}

var _ core.UsageRepository = (*UsageStore)(nil)

func dayKey(kind, id string, at time.Time) string {
	return fmt.Sprintf("usage:%s:%s:d:%s", kind, id, at.UTC().Format("20060102"))
}

func monthKey(kind, id string, at time.Time) string {
	return fmt.Sprintf("usage:%s:%s:m:%s", kind, id, at.UTC().Format("200601"))
}

// Record writes one ledger entry and indexes its generation id under the
// user and IP window sets.
func (s *UsageStore) Record(ctx context.Context, rec model.UsageRecord) error {
	if rec.GenerationID == "" {
		return errors.New("generation ID cannot be empty")
	}
	at := rec.Timestamp
	if at.IsZero() {
		at = s.now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal usage record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, "usage:gen:"+rec.GenerationID, data, entryRetention)

	index := func(kind, id string) {
		pipe.SAdd(ctx, dayKey(kind, id, at), rec.GenerationID)
		pipe.Expire(ctx, dayKey(kind, id, at), dailyRetention)
		pipe.SAdd(ctx, monthKey(kind, id, at), rec.GenerationID)
		pipe.Expire(ctx, monthKey(kind, id, at), monthlyRetention)
	}
	if rec.UserID != "" {
		index("user", rec.UserID)
	}
	if rec.IP != "" {
		index("ip", rec.IP)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// CountUnion counts distinct generation events attributed to either key
// within the window.
func (s *UsageStore) CountUnion(
	ctx context.Context,
	userID, ip string,
	window core.UsageWindow,
) (int, error) {
	at := s.now()

	var keys []string
	switch window {
	case core.UsageWindowDaily:
		if userID != "" {
			keys = append(keys, dayKey("user", userID, at))
		}
		if ip != "" {
			keys = append(keys, dayKey("ip", ip, at))
		}
	case core.UsageWindowMonthly:
		if userID != "" {
			keys = append(keys, monthKey("user", userID, at))
		}
		if ip != "" {
			keys = append(keys, monthKey("ip", ip, at))
		}
	default:
		return 0, fmt.Errorf("unknown usage window: %s", window)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	members, err := s.client.SUnion(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("count usage union: %w", err)
	}
	return len(members), nil
}

// AnonymousSeen reports whether the IP already consumed its single anonymous
// generation inside the rolling 24h window.
func (s *UsageStore) AnonymousSeen(ctx context.Context, ip string) (bool, error) {
	if ip == "" {
		return false, errors.New("ip cannot be empty")
	}
	n, err := s.client.Exists(ctx, "usage:anon:"+ip).Result()
	if err != nil {
		return false, fmt.Errorf("check anonymous usage: %w", err)
	}
	return n > 0, nil
}

// MarkAnonymous records the anonymous generation for the IP.
func (s *UsageStore) MarkAnonymous(ctx context.Context, ip string) error {
	if ip == "" {
		return errors.New("ip cannot be empty")
	}
	return s.client.Set(ctx, "usage:anon:"+ip, s.now().UTC().Format(time.RFC3339), anonymousWindow).Err()
}

// WithClock overrides the wall clock; used by tests to pin windows.
func (s *UsageStore) WithClock(now func() time.Time) *UsageStore {
	s.now = now
	return s
}
