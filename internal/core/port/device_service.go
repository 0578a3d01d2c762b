package port

import "github.com/berfenger/moebot2mqtt/internal/core/domain"

// DeviceService is the blocking side of the device link. Execute and Listen
// may block on device I/O and must never be called from the host actor.
type DeviceService interface {
	DeviceId() string
	Listen(listener func(domain.Notification)) error
	Unlisten()
	Execute(cmd domain.DeviceCommand) error
}
