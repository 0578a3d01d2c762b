package actor

import (
	"strings"
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/moebot2mqtt/internal/adapter/actor"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/service"
	"github.com/berfenger/moebot2mqtt/internal/util"
	"github.com/berfenger/moebot2mqtt/internal/util/actorutil"
	"github.com/berfenger/moebot2mqtt/pkg/moebot"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishSink struct {
	mu       sync.Mutex
	messages map[string]string
}

func (s *publishSink) publish(topic, payload string, _ bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messages == nil {
		s.messages = map[string]string{}
	}
	s.messages[topic] = payload
}

func (s *publishSink) get(topic string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.messages[topic]
	return payload, ok
}

func (s *publishSink) countPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for topic := range s.messages {
		if strings.HasPrefix(topic, prefix) {
			n++
		}
	}
	return n
}

func TestMasterActor(t *testing.T) {

	cfg := util.LoadTestConfig()
	cfg.MQTT.HADiscoveryEnable = true
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()
	context := as.Root

	client := moebot.NewTestClient(cfg.Device.Id)
	client.SetPollState(moebot.Payload{"state": "MOWING", "battery": 72, "online": true})
	sink := &publishSink{}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func(onNotification func(domain.Notification)) *adactor.DeviceActor {
			return adactor.NewDeviceActor(service.NewMoebotDeviceService(client), onNotification, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, sink.publish, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
		if err != nil {
			return false
		}
		healthResp, ok := res.(domain.ActorHealthResponse)
		return ok && healthResp.Healthy
	}, 5*time.Second, 100*time.Millisecond)

	// the poll actor polls once at start
	assert.Eventually(t, func() bool {
		payload, ok := sink.get("moebot/lawn_mower/mower/state")
		return ok && payload == string(domain.ActivityMowing)
	}, 5*time.Second, 50*time.Millisecond)
	assert.Contains(t, client.Commands(), "poll")

	assert.Eventually(t, func() bool {
		return sink.countPrefix("homeassistant/") > 0
	}, 5*time.Second, 50*time.Millisecond)
	_, ok := sink.get("homeassistant/lawn_mower/moebot_" + cfg.Device.Id + "/mower/config")
	assert.True(t, ok)

	res, err := context.RequestFuture(pid, domain.GetStateRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 72, res.(domain.GetStateResponse).Values["battery"])

	context.Stop(pid)
}
