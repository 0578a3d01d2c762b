package actor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/service"
	"github.com/berfenger/moebot2mqtt/internal/util/actorutil"
	"github.com/berfenger/moebot2mqtt/pkg/moebot"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func spawnDeviceActor(t *testing.T, client *moebot.TestClient, onNotification func(domain.Notification)) (*actor.RootContext, *actor.PID) {
	t.Helper()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	t.Cleanup(as.Shutdown)
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewDeviceActor(service.NewMoebotDeviceService(client), onNotification, logger)
	}))
	return as.Root, pid
}

func TestDeviceActorListensOnStart(t *testing.T) {
	client := moebot.NewTestClient("dev")
	var mu sync.Mutex
	var received []domain.Notification
	root, pid := spawnDeviceActor(t, client, func(n domain.Notification) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, n)
	})

	res, err := root.RequestFuture(pid, domain.ActorHealthRequest{}, time.Second).Result()
	require.NoError(t, err)
	assert.True(t, res.(domain.ActorHealthResponse).Healthy)

	client.Push(moebot.Payload{"state": "MOWING"})
	mu.Lock()
	assert.Len(t, received, 1)
	assert.Equal(t, "MOWING", received[0].Payload["state"])
	mu.Unlock()

	root.StopFuture(pid).Wait()
	assert.False(t, client.Listening())
}

func TestDeviceActorExecutesCommandsInOrder(t *testing.T) {
	client := moebot.NewTestClient("dev")
	root, pid := spawnDeviceActor(t, client, func(domain.Notification) {})

	futures := []*actor.Future{}
	for i, cmd := range []domain.DeviceCommand{domain.StartCommand(), domain.SetMowTimeCommand(4), domain.DockCommand()} {
		futures = append(futures, root.RequestFuture(pid, domain.DeviceCommandRequest{
			CommandId: uint64(i + 1),
			Command:   cmd,
		}, 2*time.Second))
	}
	for i, f := range futures {
		res, err := f.Result()
		require.NoError(t, err)
		resp := res.(domain.DeviceCommandResponse)
		assert.Equal(t, uint64(i+1), resp.CommandId)
		assert.NoError(t, resp.GetResponseError())
	}
	assert.Equal(t, []string{"start", "mow_time=4", "dock"}, client.Commands())
}

func TestDeviceActorReportsFailures(t *testing.T) {
	client := moebot.NewTestClient("dev")
	root, pid := spawnDeviceActor(t, client, func(domain.Notification) {})

	res, err := root.RequestFuture(pid, domain.DeviceCommandRequest{
		CommandId: 1,
		Command:   domain.SetMowTimeCommand(20),
	}, 2*time.Second).Result()
	require.NoError(t, err)
	assert.ErrorIs(t, res.(domain.DeviceCommandResponse).GetResponseError(), domain.ErrValidation)

	client.FailWith(errors.New("socket closed"))
	res, err = root.RequestFuture(pid, domain.DeviceCommandRequest{
		CommandId: 2,
		Command:   domain.PauseCommand(),
	}, 2*time.Second).Result()
	require.NoError(t, err)
	assert.ErrorIs(t, res.(domain.DeviceCommandResponse).GetResponseError(), domain.ErrCommand)
	assert.Empty(t, client.Commands())
}
