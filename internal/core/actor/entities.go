package actor

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/berfenger/moebot2mqtt/internal/core/dispatch"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/events"
	"github.com/berfenger/moebot2mqtt/internal/core/service"
	"github.com/berfenger/moebot2mqtt/internal/core/state"
	"github.com/berfenger/moebot2mqtt/internal/mqtt"
	"github.com/spf13/cast"
)

type commandKey struct {
	platform string
	id       string
}

type commandFunc func(cmd mqtt.ParsedMQTTCommand, snap *state.Snapshot) (domain.DeviceCommand, error)

// entity is one observer of the session. render reads the snapshot, never
// the update; command turns a Home Assistant command into a device command.
type entity struct {
	name     string
	key      commandKey
	watches  []domain.Attribute
	render   func(snap *state.Snapshot) []any
	command  commandFunc
	rendered bool
}

func (e *entity) observes() bool {
	return e.render != nil
}

// needsRefresh skips entities whose attributes did not change once they have
// been rendered at least once.
func (e *entity) needsRefresh(u dispatch.Update) bool {
	if !e.rendered || len(e.watches) == 0 {
		return true
	}
	for _, attr := range u.Changed {
		if slices.Contains(e.watches, attr) {
			return true
		}
	}
	return false
}

func mowerEntities() []*entity {
	entities := []*entity{
		{
			name:    domain.LAWN_MOWER_ID_MOWER,
			key:     commandKey{mqtt.COMMAND_LAWN_MOWER, domain.LAWN_MOWER_ID_MOWER},
			watches: []domain.Attribute{domain.AttrStatus},
			render: func(snap *state.Snapshot) []any {
				return events.LawnMowerUpdateEvents(domain.LAWN_MOWER_ID_MOWER, snap)
			},
			command: lawnMowerCommand,
		},
		{
			name:    domain.VACUUM_ID_VACUUM,
			key:     commandKey{mqtt.COMMAND_VACUUM, domain.VACUUM_ID_VACUUM},
			watches: []domain.Attribute{domain.AttrStatus, domain.AttrBattery},
			render: func(snap *state.Snapshot) []any {
				return events.VacuumUpdateEvents(domain.VACUUM_ID_VACUUM, snap)
			},
			command: vacuumCommand,
		},
		textSensor(domain.SENSOR_ID_MOWING_STATE, domain.AttrStatus),
		textSensor(domain.SENSOR_ID_EMERGENCY_STATE, domain.AttrEmergencyState),
		textSensor(domain.SENSOR_ID_WORK_MODE, domain.AttrWorkMode),
		textSensor(domain.SENSOR_ID_CLIENT_VERSION, domain.AttrClientVersion),
		textSensor(domain.SENSOR_ID_PROTOCOL_VERSION, domain.AttrProtocolVersion),
		{
			name:    domain.SENSOR_ID_BATTERY,
			watches: []domain.Attribute{domain.AttrBattery},
			render:  events.BatteryUpdateEvents,
		},
		{
			name:    domain.INPUT_NUMBER_ID_MOW_TIME,
			key:     commandKey{mqtt.COMMAND_NUMBER, domain.INPUT_NUMBER_ID_MOW_TIME},
			watches: []domain.Attribute{domain.AttrMowTime},
			render:  events.MowTimeUpdateEvents,
			command: mowTimeCommand,
		},
		{
			name:    domain.SWITCH_ID_PARK_IF_RAINING,
			key:     commandKey{mqtt.COMMAND_SWITCH, domain.SWITCH_ID_PARK_IF_RAINING},
			watches: []domain.Attribute{domain.AttrMowInRain},
			render:  events.ParkIfRainingUpdateEvents,
			command: parkIfRainingCommand,
		},
		{
			name: domain.BUTTON_ID_POLL_DEVICE,
			key:  commandKey{mqtt.COMMAND_BUTTON, domain.BUTTON_ID_POLL_DEVICE},
			command: func(mqtt.ParsedMQTTCommand, *state.Snapshot) (domain.DeviceCommand, error) {
				return domain.PollCommand(), nil
			},
		},
		{
			name:    "availability",
			watches: []domain.Attribute{domain.AttrOnline, domain.AttrLastUpdate},
			render:  events.AvailabilityUpdateEvents,
		},
	}
	for zone := 1; zone <= domain.ZoneCount; zone++ {
		for _, field := range domain.ZoneFields {
			entities = append(entities, zoneNumber(zone, field))
		}
	}
	return entities
}

func mowerComponents(handle domain.DeviceHandle, bridgeDevice domain.Device) domain.Components {
	device := domain.MowerDevice(handle)
	device.ViaDevice = bridgeDevice.Id

	var components domain.Components
	components.LawnMowers = append(components.LawnMowers, domain.MowerLawnMower(device, handle))
	device = domain.IdDevice(device)
	components.Vacuums = append(components.Vacuums, domain.MowerVacuum(device, handle))
	components.Sensors = append(components.Sensors, domain.MowerSensors(device, handle)...)
	components.InputNumbers = append(components.InputNumbers, domain.MowTimeInputNumber(device, handle))
	for zone := 1; zone <= domain.ZoneCount; zone++ {
		for _, field := range domain.ZoneFields {
			components.InputNumbers = append(components.InputNumbers, domain.ZoneInputNumber(device, handle, zone, field))
		}
	}
	components.Switches = append(components.Switches, domain.ParkIfRainingSwitch(device, handle))
	components.Buttons = append(components.Buttons, domain.PollDeviceButton(device, handle))
	return components
}

func textSensor(id string, attr domain.Attribute) *entity {
	return &entity{
		name:    id,
		watches: []domain.Attribute{attr},
		render: func(snap *state.Snapshot) []any {
			return events.TextSensorUpdateEvents(id, attr, snap)
		},
	}
}

func zoneNumber(zone int, field domain.ZoneField) *entity {
	id := domain.ZoneInputNumberId(zone, field)
	return &entity{
		name:    id,
		key:     commandKey{mqtt.COMMAND_NUMBER, id},
		watches: []domain.Attribute{domain.AttrZones},
		render: func(snap *state.Snapshot) []any {
			return events.ZoneUpdateEvents(zone, field, snap)
		},
		command: func(cmd mqtt.ParsedMQTTCommand, snap *state.Snapshot) (domain.DeviceCommand, error) {
			value, err := numberPayload(cmd.Payload)
			if err != nil {
				return domain.DeviceCommand{}, err
			}
			// the device only takes the whole zone set
			current, err := snap.ZoneValues()
			if err != nil {
				return domain.DeviceCommand{}, fmt.Errorf("%s: %w", id, err)
			}
			values, err := service.SetZoneField(current, zone, field, value)
			if err != nil {
				return domain.DeviceCommand{}, err
			}
			return domain.SetZonesCommand(service.DecodeZones(values)), nil
		},
	}
}

func lawnMowerCommand(cmd mqtt.ParsedMQTTCommand, _ *state.Snapshot) (domain.DeviceCommand, error) {
	switch cmd.Param {
	case mqtt.LAWN_MOWER_ACTION_START:
		return domain.StartCommand(), nil
	case mqtt.LAWN_MOWER_ACTION_PAUSE:
		return domain.PauseCommand(), nil
	case mqtt.LAWN_MOWER_ACTION_DOCK:
		return domain.DockCommand(), nil
	}
	return domain.DeviceCommand{}, fmt.Errorf("%w: lawn mower action %q", domain.ErrValidation, cmd.Param)
}

func vacuumCommand(cmd mqtt.ParsedMQTTCommand, _ *state.Snapshot) (domain.DeviceCommand, error) {
	switch cmd.Payload {
	case mqtt.VACUUM_PAYLOAD_START:
		return domain.StartCommand(), nil
	case mqtt.VACUUM_PAYLOAD_PAUSE:
		return domain.PauseCommand(), nil
	case mqtt.VACUUM_PAYLOAD_STOP:
		return domain.CancelCommand(), nil
	case mqtt.VACUUM_PAYLOAD_RETURN_TO_BASE:
		return domain.DockCommand(), nil
	}
	return domain.DeviceCommand{}, fmt.Errorf("%w: vacuum command %q", domain.ErrValidation, cmd.Payload)
}

func mowTimeCommand(cmd mqtt.ParsedMQTTCommand, _ *state.Snapshot) (domain.DeviceCommand, error) {
	hours, err := numberPayload(cmd.Payload)
	if err != nil {
		return domain.DeviceCommand{}, err
	}
	if hours < domain.MOW_TIME_MIN_HOURS || hours > domain.MOW_TIME_MAX_HOURS {
		return domain.DeviceCommand{}, fmt.Errorf("%w: mow time %d out of range [%d,%d]", domain.ErrValidation,
			hours, domain.MOW_TIME_MIN_HOURS, domain.MOW_TIME_MAX_HOURS)
	}
	return domain.SetMowTimeCommand(hours), nil
}

func parkIfRainingCommand(cmd mqtt.ParsedMQTTCommand, _ *state.Snapshot) (domain.DeviceCommand, error) {
	switch cmd.Payload {
	case mqtt.MQTT_PAYLOAD_ON:
		return domain.SetMowInRainCommand(true), nil
	case mqtt.MQTT_PAYLOAD_OFF:
		return domain.SetMowInRainCommand(false), nil
	}
	return domain.DeviceCommand{}, fmt.Errorf("%w: switch payload %q", domain.ErrValidation, cmd.Payload)
}

// numberPayload accepts the float formatting Home Assistant uses for number
// entities ("6.0"). Fractional values are rejected, not truncated.
func numberPayload(payload string) (int, error) {
	f, err := strconv.ParseFloat(payload, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: number payload %q", domain.ErrValidation, payload)
	}
	return cast.ToInt(f), nil
}
