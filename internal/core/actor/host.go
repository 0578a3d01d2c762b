package actor

import (
	"fmt"

	adactor "github.com/berfenger/moebot2mqtt/internal/adapter/actor"
	"github.com/berfenger/moebot2mqtt/internal/config"
	"github.com/berfenger/moebot2mqtt/internal/core/dispatch"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/events"
	"github.com/berfenger/moebot2mqtt/internal/core/session"
	"github.com/berfenger/moebot2mqtt/internal/core/state"
	"github.com/berfenger/moebot2mqtt/internal/mqtt"
	. "github.com/berfenger/moebot2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// HostActor is the cooperative scheduler of the integration. Every observer
// refresh and every command completion runs on its mailbox, one at a time.
type HostActor struct {
	config      *config.Config
	behavior    actor.Behavior
	stash       *Stash
	eventStream *eventstream.EventStream

	session       *session.Session
	proxy         *CommandProxy
	entities      []*entity
	commands      map[commandKey]*entity
	subscriptions []dispatch.Subscription

	logger *zap.Logger
}

// AttachSession hands the host its session and the device actor commands go
// to. Messages received before it are stashed.
type AttachSession struct {
	Session     *session.Session
	DeviceActor *actor.PID
}

func NewHostActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *HostActor {
	act := &HostActor{
		config:      config,
		eventStream: eventStream,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_HOST, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HostActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HostActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("host@starting started")
	case AttachSession:
		state.logger.Debug("host@starting AttachSession", zap.String("device", msg.Session.Handle().Id))
		state.attach(ctx, msg)
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_HOST,
			Healthy: false,
			State:   "starting",
		})
	default:
		state.logger.Debug("host@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HostActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case dispatch.Invocation:
		// failures are logged by the dispatcher
		_ = msg.Run()
	case domain.DeviceCommandResponse:
		state.proxy.Complete(msg)
	case adactor.ParsedCommand:
		if msg.Command != nil {
			state.handleCommand(ctx, *msg.Command)
		}
	case domain.InvokeCommandRequest:
		state.logger.Debug("host@default InvokeCommandRequest", zap.Stringer("command", msg.Command))
		replyTo := ReplyTo(ctx, msg)
		cmd := msg.Command
		state.proxy.Invoke(ctx, cmd, func(err error) {
			if replyTo == nil {
				return
			}
			ctx.Send(replyTo, domain.DeviceCommandResponse{
				ActorResponseMixIn: domain.Failed(err),
				Command:            cmd,
			})
		})
	case domain.GetDiscoveryRequest:
		bridgeDevice := domain.BridgeDevice(state.config.MQTT.BaseTopic)
		components := mowerComponents(state.session.Handle(), bridgeDevice)
		components.Sensors = append(domain.BridgeSensors(bridgeDevice), components.Sensors...)
		Respond(ctx, msg, domain.GetDiscoveryResponse{Components: components})
	case domain.RefreshAllRequest:
		state.logger.Debug("host@default RefreshAllRequest")
		state.refreshAll()
	case domain.GetStateRequest:
		snap := state.session.Cache().Snapshot()
		Respond(ctx, msg, domain.GetStateResponse{
			Version: snap.Version,
			Values:  events.StateValues(snap),
		})
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_HOST,
			Healthy: true,
			State:   fmt.Sprintf("pending=%d", state.proxy.Pending()),
		})
	case *actor.Stopping:
		state.detach()
	case *actor.Restarting:
		state.detach()
	default:
		state.logger.Debug("host@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HostActor) attach(ctx actor.Context, msg AttachSession) {
	state.session = msg.Session
	state.proxy = NewCommandProxy(msg.DeviceActor, state.logger)
	state.entities = mowerEntities()
	state.commands = map[commandKey]*entity{}

	snap := state.session.Cache().Snapshot()
	for _, e := range state.entities {
		if e.command != nil {
			state.commands[e.key] = e
		}
		if !e.observes() {
			continue
		}
		sub := state.session.Register(e.name, func(u dispatch.Update) error {
			if !e.needsRefresh(u) {
				return nil
			}
			state.render(e, state.session.Cache().Snapshot())
			return nil
		})
		state.subscriptions = append(state.subscriptions, sub)
		// initial render, the device may have pushed before we registered
		state.render(e, snap)
	}
}

func (state *HostActor) refreshAll() {
	snap := state.session.Cache().Snapshot()
	for _, e := range state.entities {
		state.render(e, snap)
	}
}

func (state *HostActor) detach() {
	if state.session == nil {
		return
	}
	for _, sub := range state.subscriptions {
		state.session.Unregister(sub)
	}
	state.subscriptions = nil
}

func (state *HostActor) render(e *entity, snap *state.Snapshot) {
	if !e.observes() {
		return
	}
	for _, ev := range e.render(snap) {
		state.eventStream.Publish(ev)
	}
	e.rendered = true
}

func (state *HostActor) handleCommand(ctx actor.Context, cmd mqtt.ParsedMQTTCommand) {
	e, ok := state.commands[commandKey{cmd.Command, cmd.DeviceId}]
	if !ok {
		state.logger.Warn("host@default unknown command", zap.String("command", cmd.Command), zap.String("id", cmd.DeviceId))
		return
	}
	snap := state.session.Cache().Snapshot()
	deviceCmd, err := e.command(cmd, snap)
	if err != nil {
		state.logger.Warn("host@default command rejected", zap.String("entity", e.name), zap.Error(err))
		// Home Assistant shows the requested value optimistically
		state.render(e, snap)
		return
	}
	state.logger.Debug("host@default command", zap.String("entity", e.name), zap.Stringer("command", deviceCmd))
	state.proxy.Invoke(ctx, deviceCmd, func(err error) {
		if err != nil {
			state.render(e, state.session.Cache().Snapshot())
		}
	})
}
