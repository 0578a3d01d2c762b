package actorutil

import (
	"github.com/asynkron/protoactor-go/actor"
)

// Stash keeps messages an actor cannot handle in its current state and
// replays them, with their original sender, once it can.
type Stash struct {
	pending []stashed
}

type stashed struct {
	msg    any
	sender *actor.PID
}

func (s *Stash) replay(ctx actor.Context, e stashed) {
	ctx.RequestWithCustomSender(ctx.Self(), e.msg, e.sender)
}

// Stash parks msg together with the current sender.
func (s *Stash) Stash(ctx actor.Context, msg any) {
	s.pending = append(s.pending, stashed{msg: msg, sender: ctx.Sender()})
}

// Len reports how many messages are parked.
func (s *Stash) Len() int {
	return len(s.pending)
}

// UnstashAll replays every parked message in arrival order.
func (s *Stash) UnstashAll(ctx actor.Context) {
	pending := s.pending
	s.pending = nil
	for _, e := range pending {
		s.replay(ctx, e)
	}
}

// UnstashOldest replays the first parked message, if any.
func (s *Stash) UnstashOldest(ctx actor.Context) {
	if len(s.pending) == 0 {
		return
	}
	e := s.pending[0]
	s.pending = s.pending[1:]
	s.replay(ctx, e)
}
