// Package dispatch fans device updates out to registered observers on the
// host scheduler.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"go.uber.org/zap"
)

// Update tells an observer that the cache has moved on. Observers read the
// cache itself to render; Changed is only a hint.
type Update struct {
	Sequence uint64
	Changed  []domain.Attribute
}

type RefreshFunc func(Update) error

type Subscription uint64

// Scheduler hands invocations over to the host scheduler. Schedule is called
// from the device-client goroutine and must not block; invocations must run
// in the order they were scheduled.
type Scheduler interface {
	Schedule(inv Invocation)
}

// Invocation is one pending refresh of one observer.
type Invocation struct {
	Subscription Subscription
	Update       Update
	name         string
	dispatcher   *Dispatcher
	refresh      RefreshFunc
}

// Run delivers the invocation. It must be called on the host scheduler.
func (inv Invocation) Run() error {
	if inv.dispatcher == nil {
		return nil
	}
	return inv.dispatcher.deliver(inv)
}

type observer struct {
	subscription Subscription
	name         string
	refresh      RefreshFunc
}

type Dispatcher struct {
	scheduler Scheduler
	logger    *zap.Logger

	// dispatchMu orders Dispatch calls; mu guards the registry. They are
	// separate so a full scheduler never blocks Register or delivery.
	dispatchMu sync.Mutex
	sequence   uint64

	mu        sync.Mutex
	nextId    Subscription
	observers []observer
	active    map[Subscription]bool
}

func NewDispatcher(scheduler Scheduler, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		scheduler: scheduler,
		logger:    logger.With(zap.String("component", "dispatcher")),
		active:    map[Subscription]bool{},
	}
}

// Register adds an observer. It is safe to call from any goroutine,
// including from inside a refresh callback.
func (d *Dispatcher) Register(name string, refresh RefreshFunc) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextId++
	sub := d.nextId
	d.observers = append(d.observers, observer{subscription: sub, name: name, refresh: refresh})
	d.active[sub] = true
	return sub
}

// Unregister removes an observer. A refresh already running completes, but
// invocations still queued for it are dropped.
func (d *Dispatcher) Unregister(sub Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active[sub] {
		return
	}
	delete(d.active, sub)
	observers := make([]observer, 0, len(d.observers)-1)
	for _, o := range d.observers {
		if o.subscription != sub {
			observers = append(observers, o)
		}
	}
	d.observers = observers
}

func (d *Dispatcher) Observers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}

// Dispatch schedules exactly one refresh per registered observer. The
// registry is snapshotted and the sequence assigned under the lock, so
// concurrent calls reach the scheduler in sequence order.
func (d *Dispatcher) Dispatch(changed []domain.Attribute) uint64 {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	d.mu.Lock()
	observers := d.observers
	d.mu.Unlock()

	d.sequence++
	update := Update{
		Sequence: d.sequence,
		Changed:  append([]domain.Attribute(nil), changed...),
	}
	for _, o := range observers {
		d.scheduler.Schedule(Invocation{
			Subscription: o.subscription,
			Update:       update,
			name:         o.name,
			dispatcher:   d,
			refresh:      o.refresh,
		})
	}
	return update.Sequence
}

func (d *Dispatcher) deliver(inv Invocation) (err error) {
	d.mu.Lock()
	registered := d.active[inv.Subscription]
	d.mu.Unlock()
	name := inv.name
	if !registered {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: panic: %v", domain.ErrDispatch, name, r)
		}
		if err != nil {
			d.logger.Error("observer refresh failed",
				zap.String("observer", name),
				zap.Uint64("sequence", inv.Update.Sequence),
				zap.Error(err))
		}
	}()

	if rerr := inv.refresh(inv.Update); rerr != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrDispatch, name, rerr)
	}
	return nil
}
