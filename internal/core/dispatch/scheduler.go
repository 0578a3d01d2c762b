package dispatch

import "context"

// QueueScheduler is a bounded FIFO drained by a single goroutine. Schedule
// blocks only while the queue is full.
type QueueScheduler struct {
	queue chan Invocation
}

func NewQueueScheduler(size int) *QueueScheduler {
	return &QueueScheduler{queue: make(chan Invocation, size)}
}

func (s *QueueScheduler) Schedule(inv Invocation) {
	s.queue <- inv
}

// Run drains the queue until ctx is done.
func (s *QueueScheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case inv := <-s.queue:
			_ = inv.Run()
		}
	}
}

// Drain runs every queued invocation and returns how many ran.
func (s *QueueScheduler) Drain() int {
	n := 0
	for {
		select {
		case inv := <-s.queue:
			_ = inv.Run()
			n++
		default:
			return n
		}
	}
}
