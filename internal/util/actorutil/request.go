package actorutil

import (
	"github.com/berfenger/moebot2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
)

// ReplyTo is the explicit reply reference of req, or the sender when the
// request carries none. Requests forwarded through the master keep the
// original sender, so both paths reach the asker.
func ReplyTo(ctx actor.Context, req domain.ActorRequest) *actor.PID {
	if ref := req.ReplyTo(); ref != nil {
		return (*actor.PID)(ref)
	}
	return ctx.Sender()
}

// Respond answers req. It is a no-op for fire-and-forget requests.
func Respond(ctx actor.Context, req domain.ActorRequest, resp domain.ActorResponse) {
	if to := ReplyTo(ctx, req); to != nil {
		ctx.Send(to, resp)
	}
}
