// Package redis provides Redis-based adapters for the genstudio pipeline:
// the live-connection registry, the rate-limit usage ledger, the bonus-credit
// ledger, and the pub/sub push gateway.
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

// ConnectionStore is the Redis-backed registry of live client channels.
// Records auto-expire after model.ConnectionTTL; a delivery failure against a
// record is the signal to delete it early.
type ConnectionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewConnectionStore creates a connection registry with the default prefix.
func NewConnectionStore(client redis.UniversalClient) *ConnectionStore {
	return &ConnectionStore{client: client, prefix: "conn:"}
}

var _ core.ConnectionRepository = (*ConnectionStore)(nil)

// Save registers or refreshes a connection record.
func (s *ConnectionStore) Save(ctx context.Context, conn model.Connection) error {
	if conn.ID == "" {
		return errors.New("connection ID cannot be empty")
	}

	data, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("marshal connection: %w", err)
	}
	return s.client.Set(ctx, s.prefix+conn.ID, data, model.ConnectionTTL).Err()
}

// Get fetches a connection record by id.
func (s *ConnectionStore) Get(ctx context.Context, id string) (*model.Connection, error) {
	if id == "" {
		return nil, core.ErrConnectionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("redis get connection: %w", err)
	}

	var conn model.Connection
	if unmarshalErr := json.Unmarshal([]byte(data), &conn); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal connection: %w", unmarshalErr)
	}
	return &conn, nil
}

// Delete removes a connection record. Deleting a missing record is not an error.
func (s *ConnectionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// Touch refreshes the record's lastActivity and TTL.
func (s *ConnectionStore) Touch(ctx context.Context, id string, at time.Time) error {
	conn, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	conn.LastActivity = at
	return s.Save(ctx, *conn)
}
