package actor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/config"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/mqtt"
	"github.com/berfenger/moebot2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type MQTTActor struct {
	config         *config.Config
	behavior       actor.Behavior
	stash          *actorutil.Stash
	client         *mqtt.MQTTClient
	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	sink           func(topic, payload string, retain bool)
	logger         *zap.Logger
}

type MQTTConnected struct {
}

type MQTTSubscribed struct {
}

type MQTTConnectionLost struct {
	Error error
}

type publishResult struct {
	ReplyTo  *actor.PID
	Error    error
	response func(error) any
}

type ParsedCommand struct {
	Command *mqtt.ParsedMQTTCommand
}

type onEventStreamMessage struct {
	message any
}

type rawMessage struct {
	topic   string
	message string
	retain  bool
}

func NewMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		eventStream: eventStream,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")

		root := ctx.ActorSystem().Root
		self := ctx.Self()

		// create MQTT client
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
		}, func(_ pahomqtt.Client, err error) {
			root.Send(self, MQTTConnectionLost{Error: err})
		})

		// connect to MQTT server
		state.client.Connect(func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			} else {
				root.Send(self, MQTTConnected{})
			}
		}, 10*time.Second)

	case MQTTConnected:
		state.logger.Debug("mqtt@starting connected")

		root := ctx.ActorSystem().Root
		self := ctx.Self()

		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_ONLINE, 0, true, func(error) {}, 500*time.Millisecond)

		state.subscribeEventStream(ctx)

		// subscribe to MQTT command topic
		state.client.SubscribeToCommandTopic(func(c pahomqtt.Client, m pahomqtt.Message) {
			cmd, err := state.client.ParseMQTTCommand(m)
			if err == nil && cmd != nil {
				root.Send(self, ParsedCommand{Command: cmd})
			}
		}, func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			} else {
				root.Send(self, MQTTSubscribed{})
			}
		}, 1*time.Second)
	case MQTTSubscribed:
		// init completed, transition to default state
		state.logger.Debug("mqtt@starting subscribed")
		state.requestRefresh(ctx)
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case ParsedCommand:
		// route command to parent
		state.logger.Debug("mqtt@default parsedCommand", zap.Any("command", msg.Command))
		if ctx.Parent() != nil {
			ctx.Send(ctx.Parent(), msg)
		}
	case onEventStreamMessage:
		if event, ok := msg.message.(domain.SensorUpdateEvent); ok {
			state.publishSensorValue(ctx, event, false, nil)
		}
	case domain.PublishMessageRequest:
		state.logger.Debug("mqtt@default PublishMessageRequest", zap.Any("message", msg))
		state.publishMessage(ctx, msg.Topic, msg.Payload, msg.Retain, actorutil.ReplyTo(ctx, msg))
	case domain.PublishSensorUpdateRequest:
		state.logger.Debug("mqtt@default PublishSensorUpdateRequest", zap.String("type", fmt.Sprintf("%T", msg.Event)))
		state.publishSensorValue(ctx, msg.Event, msg.Retain, actorutil.ReplyTo(ctx, msg))
	case domain.PublishDiscoveryRequest:
		state.logger.Debug("mqtt@default PublishHADiscovery", zap.Int("components", msg.Components.Len()))
		err := state.PublishHomeAssistantDiscovery(msg.Components)
		if err != nil {
			state.logger.Error("mqtt@default PublishHADiscovery error", zap.Error(err))
		}
		actorutil.Respond(ctx, msg, domain.PublishDiscoveryResponse{
			ActorResponseMixIn: domain.Failed(err),
		})
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("mqtt@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MQTTActor) subscribeEventStream(ctx actor.Context) {
	if state.eventStream == nil || state.eventStreamSub != nil {
		return
	}
	root := ctx.ActorSystem().Root
	self := ctx.Self()
	state.eventStreamSub = state.eventStream.Subscribe(func(value any) {
		root.Send(self, onEventStreamMessage{message: value})
	})
}

// requestRefresh asks the parent to render everything again now that the
// event stream subscription is in place.
func (state *MQTTActor) requestRefresh(ctx actor.Context) {
	if ctx.Parent() == nil {
		return
	}
	ctx.Send(ctx.Parent(), domain.RefreshAllRequest{})
}

func (state *MQTTActor) event2MQTTMessage(event any) *rawMessage {
	switch msg := event.(type) {
	case domain.FloatSensorUpdateEvent:
		return &rawMessage{
			topic:   state.client.SensorStateTopic(msg.Id),
			message: fmt.Sprintf(fmt.Sprintf("%%.%df", msg.Decimals), msg.Value),
		}
	case domain.BinarySensorUpdateEvent:
		return &rawMessage{
			topic:   state.client.BinarySensorStateTopic(msg.Id),
			message: bool2MQTTPayload(msg.Value),
		}
	case domain.SwitchSensorUpdateEvent:
		return &rawMessage{
			topic:   state.client.SwitchStateTopic(msg.Id),
			message: bool2MQTTPayload(msg.Value),
			retain:  true,
		}
	case domain.InputNumberSensorUpdateEvent:
		return &rawMessage{
			topic:   state.client.InputNumberStateTopic(msg.Id),
			message: fmt.Sprintf(fmt.Sprintf("%%.%df", msg.Decimals), msg.Value),
			retain:  true,
		}
	case domain.TextSensorUpdateEvent:
		return &rawMessage{
			topic:   state.client.SensorStateTopic(msg.Id),
			message: msg.Value,
		}
	case domain.UnknownStateUpdateEvent:
		return &rawMessage{
			topic:   state.client.StateTopic(msg.Platform, msg.Id),
			message: mqtt.MQTT_PAYLOAD_UNKNOWN,
			retain:  msg.Platform == domain.PLATFORM_NUMBER || msg.Platform == domain.PLATFORM_SWITCH,
		}
	case domain.LawnMowerActivityUpdateEvent:
		return &rawMessage{
			topic:   state.client.LawnMowerActivityTopic(msg.Id),
			message: activity2MQTTPayload(msg.Activity),
		}
	case domain.VacuumStateUpdateEvent:
		payload, err := json.Marshal(vacuumState(msg))
		if err != nil {
			state.logger.Error("mqtt@publish: vacuum state", zap.Error(err))
			return nil
		}
		return &rawMessage{
			topic:   state.client.VacuumStateTopic(msg.Id),
			message: string(payload),
		}
	case domain.AvailabilityUpdateEvent:
		return &rawMessage{
			topic:   state.client.DeviceAvailabilityTopic(),
			message: online2MQTTPayload(msg.Online),
			retain:  true,
		}
	case domain.AttributesUpdateEvent:
		payload, err := json.Marshal(msg.Values)
		if err != nil {
			state.logger.Error("mqtt@publish: attributes", zap.Error(err))
			return nil
		}
		return &rawMessage{
			topic:   state.client.DeviceAttributesTopic(),
			message: string(payload),
			retain:  true,
		}
	case domain.BridgeStateUpdateEvent:
		return &rawMessage{
			topic:   state.client.BridgeStateTopic(),
			message: online2MQTTPayload(msg.Value),
		}
	default:
		return nil
	}
}

type vacuumStatePayload struct {
	State        *string `json:"state"`
	BatteryLevel *int    `json:"battery_level,omitempty"`
	BatteryIcon  string  `json:"battery_icon,omitempty"`
}

func vacuumState(ev domain.VacuumStateUpdateEvent) vacuumStatePayload {
	payload := vacuumStatePayload{
		BatteryLevel: ev.BatteryLevel,
		BatteryIcon:  ev.BatteryIcon,
	}
	if ev.State != domain.ActivityUnknown && ev.State != "" {
		s := string(ev.State)
		payload.State = &s
	}
	return payload
}

func (state *MQTTActor) publishSensorValue(ctx actor.Context, event domain.SensorUpdateEvent, retain bool, replyTo *actor.PID) {
	msg := state.event2MQTTMessage(event)
	if msg == nil {
		if replyTo != nil {
			ctx.Send(replyTo, domain.PublishSensorUpdateResponse{})
		}
		return
	}
	msg.retain = msg.retain || retain
	state.publish(ctx, msg, replyTo, func(err error) any {
		return domain.PublishSensorUpdateResponse{ActorResponseMixIn: domain.Failed(err)}
	})
}

func (state *MQTTActor) publishMessage(ctx actor.Context, topic, payload string, retain bool, replyTo *actor.PID) {
	state.publish(ctx, &rawMessage{topic: topic, message: payload, retain: retain}, replyTo, func(err error) any {
		return domain.PublishMessageResponse{ActorResponseMixIn: domain.Failed(err)}
	})
}

// publish sends msg to the broker and waits in PublishResultReceive for the
// acknowledgement. The test sink completes synchronously.
func (state *MQTTActor) publish(ctx actor.Context, msg *rawMessage, replyTo *actor.PID, response func(error) any) {
	if state.sink != nil {
		state.sink(msg.topic, msg.message, msg.retain)
		if replyTo != nil {
			ctx.Send(replyTo, response(nil))
		}
		return
	}
	state.logger.Sugar().Debugf("mqtt@publish: %s => %s", msg.topic, msg.message)
	root := ctx.ActorSystem().Root
	self := ctx.Self()
	state.client.Publish(msg.topic, msg.message, 1, msg.retain, func(err error) {
		root.Send(self, publishResult{ReplyTo: replyTo, Error: err, response: response})
	}, 5*time.Second)
	state.behavior.BecomeStacked(state.PublishResultReceive)
}

func (state *MQTTActor) PublishResultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case publishResult:
		if msg.Error != nil {
			state.logger.Error("mqtt@publishing could not publish a message", zap.Error(msg.Error))
		}
		if msg.ReplyTo != nil {
			ctx.Send(msg.ReplyTo, msg.response(msg.Error))
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashOldest(ctx)
	default:
		state.logger.Debug("mqtt@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) PublishHomeAssistantDiscovery(components domain.Components) error {
	for topic, msg := range mqtt.DiscoveryMessages(state.client, components) {
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if state.sink != nil {
			state.sink(topic, string(payload), true)
			continue
		}
		state.client.Publish(topic, payload, 0, true, func(error) {}, 1*time.Second)
	}
	return nil
}

func (state *MQTTActor) stop() {
	state.logger.Debug("mqtt: disconnect")
	if state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
	if state.client != nil && state.sink == nil {
		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, 0, true, func(error) {}, 500*time.Millisecond)
		state.client.Disconnect(500 * time.Millisecond)
	}
}

func bool2MQTTPayload(value bool) string {
	if value {
		return mqtt.MQTT_PAYLOAD_ON
	} else {
		return mqtt.MQTT_PAYLOAD_OFF
	}
}

func online2MQTTPayload(value bool) string {
	if value {
		return mqtt.MQTT_PAYLOAD_ONLINE
	}
	return mqtt.MQTT_PAYLOAD_OFFLINE
}

func activity2MQTTPayload(activity domain.Activity) string {
	if activity == domain.ActivityUnknown || activity == "" {
		return mqtt.MQTT_PAYLOAD_UNKNOWN
	}
	return string(activity)
}

// NewTestMQTTActor renders events like the real actor but hands them to sink
// instead of a broker.
func NewTestMQTTActor(config *config.Config, eventStream *eventstream.EventStream,
	sink func(topic, payload string, retain bool), logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		eventStream: eventStream,
		sink:        sink,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.DummyReceive)
	return act
}

func (state *MQTTActor) DummyReceive(ctx actor.Context) {
	switch ctx.Message().(type) {
	case *actor.Started:
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), nil, nil)
		state.subscribeEventStream(ctx)
		state.requestRefresh(ctx)
		state.behavior.Become(state.DefaultReceive)
	}
}
