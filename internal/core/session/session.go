// Package session binds one mower to its cache and dispatcher.
package session

import (
	"sync"

	"github.com/berfenger/moebot2mqtt/internal/core/dispatch"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/state"
	"go.uber.org/zap"
)

// Session owns the device handle, the state cache and the dispatcher for one
// integration run. It is passed explicitly to every observer.
type Session struct {
	handle     domain.DeviceHandle
	cache      *state.Cache
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger

	// serializes apply+dispatch so dispatch order matches cache versions
	mu sync.Mutex
}

func New(handle domain.DeviceHandle, scheduler dispatch.Scheduler, logger *zap.Logger) *Session {
	logger = logger.With(zap.String("device", handle.Id))
	return &Session{
		handle:     handle,
		cache:      state.NewCache(handle),
		dispatcher: dispatch.NewDispatcher(scheduler, logger),
		logger:     logger,
	}
}

func (s *Session) Handle() domain.DeviceHandle {
	return s.handle
}

func (s *Session) Cache() *state.Cache {
	return s.cache
}

func (s *Session) Register(name string, refresh dispatch.RefreshFunc) dispatch.Subscription {
	return s.dispatcher.Register(name, refresh)
}

func (s *Session) Unregister(sub dispatch.Subscription) {
	s.dispatcher.Unregister(sub)
}

// OnNotification is the device-client push callback. It may be called from
// any goroutine.
func (s *Session) OnNotification(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.cache.Apply(n)
	if err != nil {
		s.logger.Warn("notification partially applied", zap.Error(err))
	}
	seq := s.dispatcher.Dispatch(changed)
	s.logger.Debug("notification dispatched",
		zap.Uint64("sequence", seq),
		zap.Any("changed", changed))
}
