package actor

import (
	"fmt"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/port"
	"github.com/berfenger/moebot2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// DeviceActor is the worker that performs blocking device I/O. It runs one
// command at a time; requests arriving meanwhile are stashed.
type DeviceActor struct {
	behavior       actor.Behavior
	stash          *actorutil.Stash
	device         port.DeviceService
	onNotification func(domain.Notification)
	listening      bool
	logger         *zap.Logger
}

type commandResult struct {
	response domain.DeviceCommandResponse
	replyTo  *actor.PID
}

func NewDeviceActor(device port.DeviceService, onNotification func(domain.Notification), logger *zap.Logger) *DeviceActor {
	act := &DeviceActor{
		device:         device,
		onNotification: onNotification,
		behavior:       actor.NewBehavior(),
		stash:          &actorutil.Stash{},
		logger:         actorutil.ActorLogger(domain.ACTOR_ID_DEVICE, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *DeviceActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *DeviceActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("device@starting started", zap.String("device", state.device.DeviceId()))
		if err := state.device.Listen(state.onNotification); err != nil {
			panic(err)
		}
		state.listening = true
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.unlisten()
	default:
		state.logger.Debug("device@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DeviceActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("device@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DEVICE,
			Healthy: state.listening,
			State:   "idle",
		})
	case domain.DeviceCommandRequest:
		state.logger.Debug("device@default: DeviceCommandRequest", zap.Stringer("command", msg.Command))
		state.execute(ctx, msg)
		state.behavior.BecomeStacked(state.WaitingDevice)
	case *actor.Restarting:
		state.unlisten()
	case *actor.Stopping:
		state.unlisten()
	default:
		state.logger.Debug("device@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DeviceActor) WaitingDevice(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case commandResult:
		state.logger.Debug("device@WaitingDevice commandResult",
			zap.Stringer("command", msg.response.Command),
			zap.Error(msg.response.ResponseError))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.response)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DEVICE,
			Healthy: state.listening,
			State:   "busy",
		})
	case *actor.Stopping:
		state.unlisten()
	default:
		state.stash.Stash(ctx, msg)
		state.logger.Debug("device@WaitingDevice stash", zap.String("type", fmt.Sprintf("%T", msg)), zap.Int("stashed", state.stash.Len()))
	}
}

func (state *DeviceActor) execute(ctx actor.Context, req domain.DeviceCommandRequest) {
	replyTo := actorutil.ReplyTo(ctx, req)
	respond := func(err error) commandResult {
		return commandResult{
			response: domain.DeviceCommandResponse{
				ActorResponseMixIn: domain.Failed(err),
				CommandId:          req.CommandId,
				Command:            req.Command,
			},
			replyTo: replyTo,
		}
	}
	actorutil.NewBlockingTask(func() (*commandResult, error) {
		result := respond(state.device.Execute(req.Command))
		return &result, nil
	}).Recover(func(err error) commandResult {
		return respond(fmt.Errorf("%w: %s: %w", domain.ErrCommand, req.Command, err))
	}).PipeTo(ctx, ctx.Self())
}

func (state *DeviceActor) unlisten() {
	if state.listening {
		state.device.Unlisten()
		state.listening = false
	}
}
