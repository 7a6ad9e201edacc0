package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/mocks"
	"github.com/openpalette/genstudio/internal/service"
)

// recordingGateway captures every payload pushed through the broadcaster so
// tests can assert on realtime delivery without a live transport.
type recordingGateway struct {
	mu    sync.Mutex
	sends []sentMessage
}

type sentMessage struct {
	ConnectionID string
	Message      model.RealtimeMessage
}

func (g *recordingGateway) Send(_ context.Context, connectionID string, payload []byte) error {
	var msg model.RealtimeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends = append(g.sends, sentMessage{ConnectionID: connectionID, Message: msg})
	return nil
}

func (g *recordingGateway) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sentMessage, len(g.sends))
	copy(out, g.sends)
	return out
}

// staticTiers is a TierResolver stub keyed by tier name.
type staticTiers map[string]model.PlanSnapshot

func (s staticTiers) ResolveTier(tier string) model.PlanSnapshot {
	return s[tier]
}

type routerFixture struct {
	jobs    *mocks.MockJobRepository
	usage   *mocks.MockUsageRepository
	plans   *mocks.MockPlanResolver
	conns   *mocks.MockConnectionRepository
	gateway *recordingGateway
	handler http.Handler
}

// newRouterFixture builds a fully wired router over gomock repositories and a
// recording gateway.
func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &routerFixture{
		jobs:    mocks.NewMockJobRepository(ctrl),
		usage:   mocks.NewMockUsageRepository(ctrl),
		plans:   mocks.NewMockPlanResolver(ctrl),
		conns:   mocks.NewMockConnectionRepository(ctrl),
		gateway: &recordingGateway{},
	}

	queue, err := service.NewQueueService(service.QueueServiceOptions{Repo: f.jobs})
	require.NoError(t, err)

	limiter, err := service.NewRateLimitService(service.RateLimitServiceOptions{
		Usage: f.usage,
		Jobs:  f.jobs,
		Plans: f.plans,
	})
	require.NoError(t, err)

	broadcaster, err := service.NewBroadcastService(service.BroadcastServiceOptions{
		Gateway:     f.gateway,
		Connections: f.conns,
		Jobs:        f.jobs,
	})
	require.NoError(t, err)

	lifecycle, err := service.NewLifecycleService(service.LifecycleServiceOptions{
		Jobs:        f.jobs,
		Broadcaster: broadcaster,
	})
	require.NoError(t, err)

	f.handler = NewRouter(RouterServices{
		Queue:       queue,
		Limiter:     limiter,
		Lifecycle:   lifecycle,
		Broadcaster: broadcaster,
		Tiers: staticTiers{
			"pro": {Tier: "pro", Unlimited: true},
		},
	})
	return f
}
