// Package events renders cache snapshots into entity update events.
package events

import (
	"fmt"
	"math"
	"time"

	. "github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/service"
	"github.com/berfenger/moebot2mqtt/internal/core/state"
)

func unknown(id, platform string) UnknownStateUpdateEvent {
	return UnknownStateUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: id},
		Platform:               platform,
	}
}

func LawnMowerUpdateEvents(id string, snap *state.Snapshot) []any {
	activity := ActivityUnknown
	if status, ok := snap.Status(); ok {
		activity = service.MapStatus(status, VocabularyLawnMower)
	}
	return []any{LawnMowerActivityUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: id},
		Activity:               activity,
	}}
}

func VacuumUpdateEvents(id string, snap *state.Snapshot) []any {
	ev := VacuumStateUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: id},
		State:                  ActivityUnknown,
	}
	status, hasStatus := snap.Status()
	if hasStatus {
		ev.State = service.MapStatus(status, VocabularyVacuum)
	}
	if battery, ok := snap.Battery(); ok {
		ev.BatteryLevel = &battery
		ev.BatteryIcon = BatteryIcon(battery, hasStatus && status.IsCharging())
	}
	return []any{ev}
}

// TextSensorUpdateEvents renders a string attribute, or unknown.
func TextSensorUpdateEvents(id string, attr Attribute, snap *state.Snapshot) []any {
	value, ok := snap.Text(attr)
	if !ok {
		return []any{unknown(id, PLATFORM_SENSOR)}
	}
	return []any{TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: id},
		Value:                  value,
	}}
}

func BatteryUpdateEvents(snap *state.Snapshot) []any {
	battery, ok := snap.Battery()
	if !ok {
		return []any{unknown(SENSOR_ID_BATTERY, PLATFORM_SENSOR)}
	}
	return []any{FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_BATTERY},
		Value:                  math.Round(float64(battery)),
		Decimals:               0,
	}}
}

func MowTimeUpdateEvents(snap *state.Snapshot) []any {
	hours, ok := snap.MowTime()
	if !ok {
		return []any{unknown(INPUT_NUMBER_ID_MOW_TIME, PLATFORM_NUMBER)}
	}
	return []any{InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: INPUT_NUMBER_ID_MOW_TIME},
		Value:                  float64(hours),
	}}
}

func ZoneUpdateEvents(zone int, field ZoneField, snap *state.Snapshot) []any {
	id := ZoneInputNumberId(zone, field)
	value, err := snap.ZoneField(zone, field)
	if err != nil {
		return []any{unknown(id, PLATFORM_NUMBER)}
	}
	return []any{InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: id},
		Value:                  float64(value),
	}}
}

func ParkIfRainingUpdateEvents(snap *state.Snapshot) []any {
	enabled, ok := snap.MowInRain()
	if !ok {
		return []any{unknown(SWITCH_ID_PARK_IF_RAINING, PLATFORM_SWITCH)}
	}
	return []any{SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SWITCH_ID_PARK_IF_RAINING},
		Value:                  enabled,
	}}
}

// AvailabilityUpdateEvents reports the mower offline until it says otherwise.
func AvailabilityUpdateEvents(snap *state.Snapshot) []any {
	online, _ := snap.Online()
	events := []any{AvailabilityUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: LAWN_MOWER_ID_MOWER},
		Online:                 online,
	}}
	attrs := map[string]any{}
	if ts, ok := snap.LastUpdate(); ok {
		attrs[ATTRIBUTE_LAST_MESSAGE_RECV] = ts.UTC().Format(time.RFC3339)
	}
	events = append(events, AttributesUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: LAWN_MOWER_ID_MOWER},
		Values:                 attrs,
	})
	return events
}

// BatteryIcon picks an mdi battery icon the way Home Assistant does for
// vacuum entities.
func BatteryIcon(level int, charging bool) string {
	icon := "mdi:battery"
	switch {
	case charging && level > 10:
		icon += fmt.Sprintf("-charging-%d", roundTo(level, 20))
	case charging:
		icon += "-outline"
	case level <= 5:
		icon += "-alert"
	case level < 95:
		icon += fmt.Sprintf("-%d", roundTo(level, 10))
	}
	return icon
}

func roundTo(level, step int) int {
	return int(math.Round(float64(level)/float64(step)-0.01)) * step
}

// StateValues renders a snapshot as plain JSON-friendly values.
func StateValues(snap *state.Snapshot) map[string]any {
	values := map[string]any{}
	for _, attr := range Attributes {
		v := snap.Get(attr)
		if !v.Available {
			values[string(attr)] = nil
			continue
		}
		switch attr {
		case AttrZones:
			zones, _ := snap.Zones()
			values[string(attr)] = zones
		case AttrLastUpdate:
			ts, _ := snap.LastUpdate()
			values[string(attr)] = ts.UTC().Format(time.RFC3339)
		default:
			values[string(attr)] = v.Value
		}
	}
	if status, ok := snap.Status(); ok {
		values["activity"] = service.MapStatus(status, VocabularyLawnMower)
	}
	return values
}
