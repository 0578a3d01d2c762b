package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	. "github.com/berfenger/moebot2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

const (
	POLL_ACTOR_ID = "poll"
	POLL_JOB_KEY  = "moebot_poll"
)

// PollActor asks the host for a device poll once at start and then every
// interval, when interval is not zero.
type PollActor struct {
	behavior  actor.Behavior
	stash     *Stash
	hostActor *actor.PID
	interval  time.Duration
	scheduler quartz.Scheduler
	cancel    context.CancelFunc
	inFlight  bool

	logger *zap.Logger
}

type pollTick struct {
}

func NewPollActor(hostActor *actor.PID, interval time.Duration, logger *zap.Logger) *PollActor {
	act := &PollActor{
		hostActor: hostActor,
		interval:  interval,
		behavior:  actor.NewBehavior(),
		stash:     &Stash{},
		logger:    ActorLogger(POLL_ACTOR_ID, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *PollActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poll@starting started", zap.Duration("interval", state.interval))
		if state.interval > 0 {
			if err := state.startScheduler(ctx); err != nil {
				panic(err)
			}
		}
		state.behavior.Become(state.DefaultReceive)
		// initial refresh
		ctx.Send(ctx.Self(), pollTick{})
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("poll@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      POLL_ACTOR_ID,
			Healthy: true,
			State:   "idle",
		})
	case pollTick:
		if state.inFlight {
			state.logger.Debug("poll@default tick skipped, previous poll pending")
			return
		}
		state.logger.Debug("poll@default tick")
		state.inFlight = true
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.hostActor, domain.InvokeCommandRequest{
			Command: domain.PollCommand(),
		}, 30*time.Second), func(err error) any {
			return domain.DeviceCommandResponse{
				ActorResponseMixIn: domain.Failed(err),
				Command:            domain.PollCommand(),
			}
		})
	case domain.DeviceCommandResponse:
		state.inFlight = false
		if msg.HasResponseError() {
			state.logger.Warn("poll@default poll failed", zap.Error(msg.GetResponseError()))
		}
	case *actor.Stopping:
		state.stopScheduler()
	case *actor.Restarting:
		state.stopScheduler()
	}
}

func (state *PollActor) startScheduler(ctx actor.Context) error {
	root := ctx.ActorSystem().Root
	self := ctx.Self()

	sched := quartz.NewStdScheduler()
	schedCtx, cancel := context.WithCancel(context.Background())
	sched.Start(schedCtx)

	pollJob := job.NewFunctionJob(func(_ context.Context) (bool, error) {
		root.Send(self, pollTick{})
		return true, nil
	})
	err := sched.ScheduleJob(quartz.NewJobDetail(pollJob, quartz.NewJobKey(POLL_JOB_KEY)),
		quartz.NewSimpleTrigger(state.interval))
	if err != nil {
		cancel()
		return err
	}
	state.scheduler = sched
	state.cancel = cancel
	return nil
}

func (state *PollActor) stopScheduler() {
	if state.scheduler != nil {
		state.scheduler.Stop()
		state.scheduler = nil
	}
	if state.cancel != nil {
		state.cancel()
		state.cancel = nil
	}
}
