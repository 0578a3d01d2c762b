package service

import (
	"fmt"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/port"
	"github.com/berfenger/moebot2mqtt/pkg/moebot"
	"github.com/spf13/cast"
)

type MoebotDeviceService struct {
	client moebot.Client
}

func NewMoebotDeviceService(client moebot.Client) *MoebotDeviceService {
	return &MoebotDeviceService{client: client}
}

func (s *MoebotDeviceService) DeviceId() string {
	return s.client.Id()
}

func (s *MoebotDeviceService) Listen(listener func(domain.Notification)) error {
	return s.client.Listen(func(payload moebot.Payload) {
		listener(domain.Notification{
			Payload:    payload,
			ReceivedAt: time.Now(),
		})
	})
}

func (s *MoebotDeviceService) Unlisten() {
	s.client.Unlisten()
}

// Execute runs one command against the device. Argument errors wrap
// domain.ErrValidation and are returned before the device is touched;
// device errors wrap domain.ErrCommand.
func (s *MoebotDeviceService) Execute(cmd domain.DeviceCommand) error {
	call, err := s.prepare(cmd)
	if err != nil {
		return err
	}
	if err := call(); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrCommand, cmd, err)
	}
	return nil
}

func (s *MoebotDeviceService) prepare(cmd domain.DeviceCommand) (func() error, error) {
	switch cmd.Kind {
	case domain.CommandStart:
		return s.client.Start, nil
	case domain.CommandPause:
		return s.client.Pause, nil
	case domain.CommandDock:
		return s.client.Dock, nil
	case domain.CommandCancel:
		return s.client.Cancel, nil
	case domain.CommandPoll:
		return s.client.Poll, nil
	case domain.CommandSetAttribute:
		return s.prepareSetAttribute(cmd)
	}
	return nil, fmt.Errorf("%w: unknown command %q", domain.ErrValidation, cmd.Kind)
}

func (s *MoebotDeviceService) prepareSetAttribute(cmd domain.DeviceCommand) (func() error, error) {
	switch cmd.Attribute {
	case domain.AttrMowTime:
		hours, err := cast.ToIntE(cmd.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: mow_time: %w", domain.ErrValidation, err)
		}
		if hours < domain.MOW_TIME_MIN_HOURS || hours > domain.MOW_TIME_MAX_HOURS {
			return nil, fmt.Errorf("%w: mow_time %d out of range [%d,%d]", domain.ErrValidation,
				hours, domain.MOW_TIME_MIN_HOURS, domain.MOW_TIME_MAX_HOURS)
		}
		return func() error { return s.client.SetMowTime(hours) }, nil
	case domain.AttrMowInRain:
		enabled, err := cast.ToBoolE(cmd.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: mow_in_rain: %w", domain.ErrValidation, err)
		}
		return func() error { return s.client.SetMowInRain(enabled) }, nil
	case domain.AttrZones:
		var zones domain.ZoneConfig
		switch v := cmd.Value.(type) {
		case domain.ZoneConfig:
			zones = v
		case domain.ZoneValues:
			zones = DecodeZones(v)
		default:
			return nil, fmt.Errorf("%w: zones: unsupported value %T", domain.ErrValidation, cmd.Value)
		}
		if err := ValidateZones(zones); err != nil {
			return nil, err
		}
		values := EncodeZones(zones)
		return func() error { return s.client.SetZones(values) }, nil
	}
	return nil, fmt.Errorf("%w: attribute %q is read-only", domain.ErrValidation, cmd.Attribute)
}

// ensure interface compliance
var _ port.DeviceService = (*MoebotDeviceService)(nil)
