package actorutil

import (
	"github.com/asynkron/protoactor-go/actor"
	"github.com/berfenger/moebot2mqtt/internal/core/dispatch"
)

// MailboxScheduler hands dispatcher invocations to an actor mailbox. Send on
// the root context is safe from any goroutine and never blocks; the mailbox
// keeps FIFO order per sender.
type MailboxScheduler struct {
	root *actor.RootContext
	pid  *actor.PID
}

func NewMailboxScheduler(root *actor.RootContext, pid *actor.PID) *MailboxScheduler {
	return &MailboxScheduler{root: root, pid: pid}
}

func (s *MailboxScheduler) Schedule(inv dispatch.Invocation) {
	s.root.Send(s.pid, inv)
}
