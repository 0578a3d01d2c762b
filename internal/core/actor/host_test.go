package actor

import (
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/moebot2mqtt/internal/adapter/actor"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/service"
	"github.com/berfenger/moebot2mqtt/internal/core/session"
	"github.com/berfenger/moebot2mqtt/internal/mqtt"
	"github.com/berfenger/moebot2mqtt/internal/util"
	"github.com/berfenger/moebot2mqtt/internal/util/actorutil"
	"github.com/berfenger/moebot2mqtt/pkg/moebot"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []any
}

func (r *eventRecorder) record(ev any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) lastActivity(id string) domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if ev, ok := r.events[i].(domain.LawnMowerActivityUpdateEvent); ok && ev.Id == id {
			return ev.Activity
		}
	}
	return ""
}

func (r *eventRecorder) lastNumber(id string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		switch ev := r.events[i].(type) {
		case domain.InputNumberSensorUpdateEvent:
			if ev.Id == id {
				return ev.Value, true
			}
		case domain.UnknownStateUpdateEvent:
			if ev.Id == id {
				return 0, false
			}
		}
	}
	return 0, false
}

func (r *eventRecorder) hasText(id, value string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if text, ok := ev.(domain.TextSensorUpdateEvent); ok && text.Id == id && text.Value == value {
			return true
		}
	}
	return false
}

// hasEntity reports whether any event, known or unknown, was rendered for id.
func (r *eventRecorder) hasEntity(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		switch ev := ev.(type) {
		case domain.TextSensorUpdateEvent:
			if ev.Id == id {
				return true
			}
		case domain.InputNumberSensorUpdateEvent:
			if ev.Id == id {
				return true
			}
		case domain.SwitchSensorUpdateEvent:
			if ev.Id == id {
				return true
			}
		case domain.UnknownStateUpdateEvent:
			if ev.Id == id {
				return true
			}
		}
	}
	return false
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type hostFixture struct {
	root        *actor.RootContext
	host        *actor.PID
	client      *moebot.TestClient
	session     *session.Session
	eventStream *eventstream.EventStream
	events      *eventRecorder
}

func newHostFixture(t *testing.T) *hostFixture {
	t.Helper()
	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	t.Cleanup(as.Shutdown)

	es := &eventstream.EventStream{}
	rec := &eventRecorder{}
	es.Subscribe(rec.record)

	root := as.Root
	host, err := root.SpawnNamed(actor.PropsFromProducer(func() actor.Actor {
		return NewHostActor(&cfg, es, logger)
	}), "host")
	require.NoError(t, err)

	sess := session.New(util.HandleOf(cfg), actorutil.NewMailboxScheduler(root, host), logger)
	client := moebot.NewTestClient(cfg.Device.Id)
	device, err := root.SpawnNamed(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewDeviceActor(service.NewMoebotDeviceService(client), sess.OnNotification, logger)
	}), "device")
	require.NoError(t, err)

	root.Send(host, AttachSession{Session: sess, DeviceActor: device})
	require.Eventually(t, client.Listening, 2*time.Second, 10*time.Millisecond)

	return &hostFixture{root: root, host: host, client: client, session: sess, eventStream: es, events: rec}
}

func (f *hostFixture) command(cmd mqtt.ParsedMQTTCommand) {
	f.root.Send(f.host, adactor.ParsedCommand{Command: &cmd})
}

func TestHostRendersInitialStateAsUnknown(t *testing.T) {
	f := newHostFixture(t)

	assert.Eventually(t, func() bool {
		return f.events.lastActivity(domain.LAWN_MOWER_ID_MOWER) == domain.ActivityUnknown
	}, 2*time.Second, 10*time.Millisecond)
	_, ok := f.events.lastNumber(domain.INPUT_NUMBER_ID_MOW_TIME)
	assert.False(t, ok)
}

func TestHostRefreshesEntitiesOnNotification(t *testing.T) {
	f := newHostFixture(t)

	f.client.Push(moebot.Payload{"state": "CHARGING", "battery": 50, "mow_time": 6})
	assert.Eventually(t, func() bool {
		return f.events.lastActivity(domain.LAWN_MOWER_ID_MOWER) == domain.ActivityDocked
	}, 2*time.Second, 10*time.Millisecond)

	f.client.Push(moebot.Payload{"state": "MOWING", "battery": 67})
	assert.Eventually(t, func() bool {
		return f.events.lastActivity(domain.LAWN_MOWER_ID_MOWER) == domain.ActivityMowing
	}, 2*time.Second, 10*time.Millisecond)

	hours, ok := f.events.lastNumber(domain.INPUT_NUMBER_ID_MOW_TIME)
	assert.True(t, ok)
	assert.Equal(t, 6.0, hours)
}

func TestHostSkipsUnchangedEntities(t *testing.T) {
	f := newHostFixture(t)

	f.client.Push(moebot.Payload{"state": "MOWING"})
	require.Eventually(t, func() bool {
		return f.events.lastActivity(domain.LAWN_MOWER_ID_MOWER) == domain.ActivityMowing
	}, 2*time.Second, 10*time.Millisecond)
	before := f.events.count()

	// same value again, nothing changes in the cache
	f.client.Push(moebot.Payload{"state": "MOWING"})
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, before, f.events.count())
}

func TestHostRoutesEntityCommands(t *testing.T) {
	f := newHostFixture(t)

	f.command(mqtt.ParsedMQTTCommand{DeviceId: domain.LAWN_MOWER_ID_MOWER, Command: mqtt.COMMAND_LAWN_MOWER, Param: mqtt.LAWN_MOWER_ACTION_START})
	f.command(mqtt.ParsedMQTTCommand{DeviceId: domain.VACUUM_ID_VACUUM, Command: mqtt.COMMAND_VACUUM, Payload: mqtt.VACUUM_PAYLOAD_RETURN_TO_BASE})
	f.command(mqtt.ParsedMQTTCommand{DeviceId: domain.INPUT_NUMBER_ID_MOW_TIME, Command: mqtt.COMMAND_NUMBER, Payload: "8.0"})
	f.command(mqtt.ParsedMQTTCommand{DeviceId: domain.SWITCH_ID_PARK_IF_RAINING, Command: mqtt.COMMAND_SWITCH, Payload: mqtt.MQTT_PAYLOAD_ON})
	f.command(mqtt.ParsedMQTTCommand{DeviceId: domain.BUTTON_ID_POLL_DEVICE, Command: mqtt.COMMAND_BUTTON, Payload: mqtt.MQTT_PAYLOAD_PRESS})

	assert.Eventually(t, func() bool {
		return len(f.client.Commands()) == 5
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"start", "dock", "mow_time=8", "mow_in_rain=true", "poll"}, f.client.Commands())
}

func TestHostRejectsInvalidCommands(t *testing.T) {
	f := newHostFixture(t)

	f.command(mqtt.ParsedMQTTCommand{DeviceId: domain.INPUT_NUMBER_ID_MOW_TIME, Command: mqtt.COMMAND_NUMBER, Payload: "13"})
	f.command(mqtt.ParsedMQTTCommand{DeviceId: domain.VACUUM_ID_VACUUM, Command: mqtt.COMMAND_VACUUM, Payload: "locate"})
	f.command(mqtt.ParsedMQTTCommand{DeviceId: "nope", Command: mqtt.COMMAND_SWITCH, Payload: mqtt.MQTT_PAYLOAD_ON})
	// zones are unavailable until the device reports them
	f.command(mqtt.ParsedMQTTCommand{DeviceId: "zone1_distance", Command: mqtt.COMMAND_NUMBER, Payload: "30"})

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, f.client.Commands())

	f.client.Push(moebot.Payload{"zones": []any{10, 20, 0, 0, 0, 0, 0, 0, 0, 0}})
	require.Eventually(t, func() bool {
		v, ok := f.events.lastNumber("zone1_distance")
		return ok && v == 10
	}, 2*time.Second, 10*time.Millisecond)

	// fractional values are not truncated into range
	f.command(mqtt.ParsedMQTTCommand{DeviceId: "zone1_distance", Command: mqtt.COMMAND_NUMBER, Payload: "200.9"})
	f.command(mqtt.ParsedMQTTCommand{DeviceId: "zone1_ratio", Command: mqtt.COMMAND_NUMBER, Payload: "-0.5"})
	f.command(mqtt.ParsedMQTTCommand{DeviceId: domain.INPUT_NUMBER_ID_MOW_TIME, Command: mqtt.COMMAND_NUMBER, Payload: "6.5"})

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, f.client.Commands())
}

func TestNumberPayload(t *testing.T) {
	for _, payload := range []string{"6", "6.0", "-0", "200"} {
		_, err := numberPayload(payload)
		assert.NoError(t, err, payload)
	}
	for _, payload := range []string{"200.9", "-0.5", "0.1", "NaN", "Inf", "six", ""} {
		_, err := numberPayload(payload)
		assert.ErrorIs(t, err, domain.ErrValidation, payload)
	}
	v, err := numberPayload("8.0")
	require.NoError(t, err)
	assert.Equal(t, 8, v)
}

func TestHostWritesWholeZoneSet(t *testing.T) {
	f := newHostFixture(t)

	f.client.Push(moebot.Payload{"zones": []any{10, 20, 0, 0, 0, 0, 0, 0, 0, 0}})
	require.Eventually(t, func() bool {
		v, ok := f.events.lastNumber("zone1_distance")
		return ok && v == 10
	}, 2*time.Second, 10*time.Millisecond)

	f.command(mqtt.ParsedMQTTCommand{DeviceId: "zone2_ratio", Command: mqtt.COMMAND_NUMBER, Payload: "40"})
	assert.Eventually(t, func() bool {
		return len(f.client.Commands()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "zones=[10 20 0 40 0 0 0 0 0 0]", f.client.Commands()[0])

	// the cache only moves once the device reports back
	v, _ := f.events.lastNumber("zone2_ratio")
	assert.Equal(t, 0.0, v)
}

func TestHostInvokeCommandRequest(t *testing.T) {
	f := newHostFixture(t)
	f.client.SetPollState(moebot.Payload{"state": "PARK"})

	res, err := f.root.RequestFuture(f.host, domain.InvokeCommandRequest{Command: domain.PollCommand()}, 2*time.Second).Result()
	require.NoError(t, err)
	resp, ok := res.(domain.DeviceCommandResponse)
	require.True(t, ok)
	assert.NoError(t, resp.GetResponseError())

	assert.Eventually(t, func() bool {
		return f.events.lastActivity(domain.LAWN_MOWER_ID_MOWER) == domain.ActivityReturning
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHostInvokeCommandFailure(t *testing.T) {
	f := newHostFixture(t)
	f.client.FailWith(moebot.ErrRejected)

	res, err := f.root.RequestFuture(f.host, domain.InvokeCommandRequest{Command: domain.StartCommand()}, 2*time.Second).Result()
	require.NoError(t, err)
	resp := res.(domain.DeviceCommandResponse)
	assert.ErrorIs(t, resp.GetResponseError(), domain.ErrCommand)
	assert.ErrorIs(t, resp.GetResponseError(), moebot.ErrRejected)
}

func TestHostStateAndDiscovery(t *testing.T) {
	f := newHostFixture(t)
	f.client.Push(moebot.Payload{"state": "MOWING", "battery": 80})

	require.Eventually(t, func() bool {
		return f.events.lastActivity(domain.LAWN_MOWER_ID_MOWER) == domain.ActivityMowing
	}, 2*time.Second, 10*time.Millisecond)

	res, err := f.root.RequestFuture(f.host, domain.GetStateRequest{}, time.Second).Result()
	require.NoError(t, err)
	stateResp := res.(domain.GetStateResponse)
	assert.Equal(t, domain.StatusMowing, stateResp.Values["status"])
	assert.Equal(t, domain.ActivityMowing, stateResp.Values["activity"])
	assert.Nil(t, stateResp.Values["zones"])

	res, err = f.root.RequestFuture(f.host, domain.GetDiscoveryRequest{}, time.Second).Result()
	require.NoError(t, err)
	components := res.(domain.GetDiscoveryResponse).Components
	assert.Len(t, components.LawnMowers, 1)
	assert.Len(t, components.Vacuums, 1)
	assert.Len(t, components.InputNumbers, 1+2*domain.ZoneCount)
	assert.Len(t, components.Buttons, 1)
	assert.Equal(t, domain.SENSOR_ID_BRIDGE_STATE, components.Sensors[0].Id)
}

func TestHostRefreshAllReachesLateSubscriber(t *testing.T) {
	f := newHostFixture(t)
	f.client.Push(moebot.Payload{"state": "MOWING", "battery": 50, "pymoebot_version": "1.2.3"})
	require.Eventually(t, func() bool {
		return f.events.lastActivity(domain.LAWN_MOWER_ID_MOWER) == domain.ActivityMowing
	}, 2*time.Second, 10*time.Millisecond)

	late := &eventRecorder{}
	f.eventStream.Subscribe(late.record)
	f.root.Send(f.host, domain.RefreshAllRequest{})

	assert.Eventually(t, func() bool {
		return late.lastActivity(domain.LAWN_MOWER_ID_MOWER) == domain.ActivityMowing
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, late.hasText(domain.SENSOR_ID_CLIENT_VERSION, "1.2.3"))
	assert.True(t, late.hasEntity(domain.INPUT_NUMBER_ID_MOW_TIME))
	assert.True(t, late.hasEntity(domain.SWITCH_ID_PARK_IF_RAINING))
	assert.True(t, late.hasEntity(domain.SENSOR_ID_WORK_MODE))
}
