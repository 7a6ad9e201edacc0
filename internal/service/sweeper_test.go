package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/openpalette/genstudio/config"
	"github.com/openpalette/genstudio/internal/domain/model"
	"github.com/openpalette/genstudio/internal/mocks"
)

func sweeperConfig() config.SweeperConfig {
	return config.SweeperConfig{
		Interval:  time.Minute,
		BatchSize: 100,
	}
}

func newSweeperFixture(t *testing.T) (*mocks.MockSweeperRepository, *captureGateway, *SweeperService) {
	t.Helper()
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockSweeperRepository(ctrl)
	gateway := &captureGateway{}
	connections := mocks.NewMockConnectionRepository(ctrl)

	broadcaster, err := NewBroadcastService(BroadcastServiceOptions{
		Gateway:     gateway,
		Connections: connections,
	})
	require.NoError(t, err)

	svc, err := NewSweeperService(SweeperServiceOptions{
		Repo:        repo,
		Config:      sweeperConfig(),
		Broadcaster: broadcaster,
	})
	require.NoError(t, err)
	return repo, gateway, svc
}

func timedOutJob(id, message string) *model.Job {
	connID := "conn-" + id
	return &model.Job{
		ID:           id,
		ConnectionID: &connID,
		Status:       model.JobStatusTimeout,
		ErrorMessage: &message,
	}
}

func TestSweepNotifiesTimedOutJobs(t *testing.T) {
	repo, gateway, svc := newSweeperFixture(t)
	ctx := context.Background()

	queueMsg := "Generation timed out waiting in queue"
	processingMsg := "Generation timed out during processing"

	first := repo.EXPECT().TimeoutOverdueJobs(ctx, 100).Return([]*model.Job{
		timedOutJob("job-1", queueMsg),
		timedOutJob("job-2", processingMsg),
	}, nil)
	repo.EXPECT().TimeoutOverdueJobs(ctx, 100).After(first).Return(nil, nil)
	repo.EXPECT().DeleteExpiredJobs(ctx, 100).Return(int64(0), nil)
	repo.EXPECT().RecomputePositions(ctx).Return(0, nil)

	require.NoError(t, svc.Sweep(ctx))

	require.Len(t, gateway.payloads, 2)
	var messages []string
	for _, payload := range gateway.payloads {
		var msg model.RealtimeMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, model.MessageFailed, msg.Type)
		assert.Equal(t, model.JobStatusTimeout, msg.Status)
		messages = append(messages, msg.ErrorMessage)
	}
	assert.Contains(t, messages, queueMsg, "queue-phase expiry carries the queue message")
	assert.Contains(t, messages, processingMsg, "processing-phase expiry carries the processing message")
}

func TestSweepDeletesExpiredInBatches(t *testing.T) {
	repo, _, svc := newSweeperFixture(t)
	ctx := context.Background()

	repo.EXPECT().TimeoutOverdueJobs(ctx, 100).Return(nil, nil)
	first := repo.EXPECT().DeleteExpiredJobs(ctx, 100).Return(int64(100), nil)
	repo.EXPECT().DeleteExpiredJobs(ctx, 100).After(first).Return(int64(0), nil)
	repo.EXPECT().RecomputePositions(ctx).Return(3, nil)

	require.NoError(t, svc.Sweep(ctx))
}

func TestSweepStepFailureDoesNotBlockOthers(t *testing.T) {
	repo, _, svc := newSweeperFixture(t)
	ctx := context.Background()

	repo.EXPECT().TimeoutOverdueJobs(ctx, 100).Return(nil, errors.New("lock contention"))
	repo.EXPECT().DeleteExpiredJobs(ctx, 100).Return(int64(0), nil)
	repo.EXPECT().RecomputePositions(ctx).Return(0, nil)

	err := svc.Sweep(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep timeouts")
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	repo, _, svc := newSweeperFixture(t)

	repo.EXPECT().TimeoutOverdueJobs(gomock.Any(), 100).Return(nil, nil).AnyTimes()
	repo.EXPECT().DeleteExpiredJobs(gomock.Any(), 100).Return(int64(0), nil).AnyTimes()
	repo.EXPECT().RecomputePositions(gomock.Any()).Return(0, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "graceful shutdown is not an error")
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
