package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/openpalette/genstudio/internal/core"
)

// PubSubGateway pushes realtime messages to live client channels over Redis
// pub/sub. The websocket edge subscribes one channel per connection id and
// forwards payloads to the socket. A publish that reaches zero subscribers is
// the transport-level "client gone" condition: the edge either never opened
// the channel or already tore it down.
type PubSubGateway struct {
	client redis.UniversalClient
	prefix string
}

// NewPubSubGateway creates a push gateway with the default channel prefix.
func NewPubSubGateway(client redis.UniversalClient) *PubSubGateway {
	return &PubSubGateway{client: client, prefix: "push:conn:"}
}

var _ core.ConnectionGateway = (*PubSubGateway)(nil)

// Send publishes one payload to the connection's channel. Returns
// core.ErrConnectionGone when no subscriber received it.
func (g *PubSubGateway) Send(ctx context.Context, connectionID string, payload []byte) error {
	if connectionID == "" {
		return errors.New("connection ID cannot be empty")
	}

	receivers, err := g.client.Publish(ctx, g.prefix+connectionID, payload).Result()
	if err != nil {
		return fmt.Errorf("publish to connection channel: %w", err)
	}
	if receivers == 0 {
		return core.ErrConnectionGone
	}
	return nil
}

// Channel returns the pub/sub channel name for a connection id; the edge
// uses it to subscribe.
func (g *PubSubGateway) Channel(connectionID string) string {
	return g.prefix + connectionID
}
