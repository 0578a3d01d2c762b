package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/util"
	"github.com/berfenger/moebot2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	payload string
	retain  bool
}

type sinkRecorder struct {
	mu       sync.Mutex
	messages map[string]published
}

func (s *sinkRecorder) publish(topic, payload string, retain bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messages == nil {
		s.messages = map[string]published{}
	}
	s.messages[topic] = published{payload: payload, retain: retain}
}

func (s *sinkRecorder) get(topic string) (published, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[topic]
	return msg, ok
}

func TestMQTTActor(t *testing.T) {

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	context := as.Root

	es := &eventstream.EventStream{}
	sink := &sinkRecorder{}

	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, es, sink.publish, logger) })
	pid := context.Spawn(props)

	result, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.True(t, resp.Healthy)

	battery := 67
	es.Publish(domain.LawnMowerActivityUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.LAWN_MOWER_ID_MOWER},
		Activity:               domain.ActivityMowing,
	})
	es.Publish(domain.VacuumStateUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.VACUUM_ID_VACUUM},
		State:                  domain.ActivityCleaning,
		BatteryLevel:           &battery,
		BatteryIcon:            "mdi:battery-70",
	})
	es.Publish(domain.FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.SENSOR_ID_BATTERY},
		Value:                  67,
	})
	es.Publish(domain.UnknownStateUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.INPUT_NUMBER_ID_MOW_TIME},
		Platform:               domain.PLATFORM_NUMBER,
	})
	es.Publish(domain.SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.SWITCH_ID_PARK_IF_RAINING},
		Value:                  true,
	})
	es.Publish(domain.AvailabilityUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.LAWN_MOWER_ID_MOWER},
		Online:                 false,
	})

	expected := map[string]published{
		"moebot/lawn_mower/mower/state":       {payload: "mowing"},
		"moebot/vacuum/vacuum/state":          {payload: `{"state":"cleaning","battery_level":67,"battery_icon":"mdi:battery-70"}`},
		"moebot/sensor/battery/state":         {payload: "67"},
		"moebot/number/mow_time_hrs/state":    {payload: "None", retain: true},
		"moebot/switch/park_if_raining/state": {payload: "on", retain: true},
		"moebot/device/availability":          {payload: "offline", retain: true},
	}
	for topic, want := range expected {
		assert.Eventually(t, func() bool {
			got, ok := sink.get(topic)
			return ok && got == want
		}, 2*time.Second, 10*time.Millisecond, topic)
	}

	context.StopFuture(pid).Wait()
}

func TestMQTTActorUnknownVacuumState(t *testing.T) {
	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	es := &eventstream.EventStream{}
	sink := &sinkRecorder{}
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, es, sink.publish, logger) }))
	_, err := as.Root.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)

	es.Publish(domain.VacuumStateUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.VACUUM_ID_VACUUM},
		State:                  domain.ActivityUnknown,
	})
	assert.Eventually(t, func() bool {
		got, ok := sink.get("moebot/vacuum/vacuum/state")
		return ok && got.payload == `{"state":null}`
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMQTTActorPublishDiscovery(t *testing.T) {
	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	sink := &sinkRecorder{}
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewTestMQTTActor(&cfg, &eventstream.EventStream{}, sink.publish, logger)
	}))

	handle := util.HandleOf(cfg)
	device := domain.MowerDevice(handle)
	res, err := as.Root.RequestFuture(pid, domain.PublishDiscoveryRequest{
		Components: domain.Components{
			Switches: []domain.GenericSwitch{domain.ParkIfRainingSwitch(device, handle)},
			Buttons:  []domain.GenericButton{domain.PollDeviceButton(device, handle)},
		},
	}, 2*time.Second).Result()
	require.NoError(t, err)
	assert.False(t, res.(domain.PublishDiscoveryResponse).HasResponseError())

	msg, ok := sink.get("homeassistant/switch/moebot_bf0123456789abcdefgh/park_if_raining/config")
	assert.True(t, ok)
	assert.True(t, msg.retain)
	assert.Contains(t, msg.payload, `"command_topic":"moebot/switch/park_if_raining/command"`)
	_, ok = sink.get("homeassistant/button/moebot_bf0123456789abcdefgh/poll_device/config")
	assert.True(t, ok)
}
