package events

import (
	"testing"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(t *testing.T, payload map[string]any) *state.Snapshot {
	t.Helper()
	cache := state.NewCache(domain.DeviceHandle{Id: "dev1"})
	if payload != nil {
		_, err := cache.Apply(domain.Notification{Payload: payload, ReceivedAt: time.Unix(1700000000, 0)})
		require.NoError(t, err)
	}
	return cache.Snapshot()
}

func TestBatteryIcon(t *testing.T) {
	assert.Equal(t, "mdi:battery-70", BatteryIcon(67, false))
	assert.Equal(t, "mdi:battery", BatteryIcon(100, false))
	assert.Equal(t, "mdi:battery-alert", BatteryIcon(3, false))
	assert.Equal(t, "mdi:battery-charging-40", BatteryIcon(50, true))
	assert.Equal(t, "mdi:battery-outline", BatteryIcon(8, true))
}

func TestUnavailableAttributesRenderUnknown(t *testing.T) {
	snap := snapshotOf(t, nil)

	assert.Equal(t, []any{unknown(domain.SENSOR_ID_BATTERY, domain.PLATFORM_SENSOR)}, BatteryUpdateEvents(snap))
	assert.Equal(t, []any{unknown(domain.INPUT_NUMBER_ID_MOW_TIME, domain.PLATFORM_NUMBER)}, MowTimeUpdateEvents(snap))
	assert.Equal(t, []any{unknown("zone2_ratio", domain.PLATFORM_NUMBER)}, ZoneUpdateEvents(2, domain.ZoneFieldRatio, snap))
	assert.Equal(t, []any{unknown(domain.SWITCH_ID_PARK_IF_RAINING, domain.PLATFORM_SWITCH)}, ParkIfRainingUpdateEvents(snap))

	mower := LawnMowerUpdateEvents(domain.LAWN_MOWER_ID_MOWER, snap)
	assert.Equal(t, domain.ActivityUnknown, mower[0].(domain.LawnMowerActivityUpdateEvent).Activity)

	vacuum := VacuumUpdateEvents(domain.VACUUM_ID_VACUUM, snap)[0].(domain.VacuumStateUpdateEvent)
	assert.Equal(t, domain.ActivityUnknown, vacuum.State)
	assert.Nil(t, vacuum.BatteryLevel)

	availability := AvailabilityUpdateEvents(snap)
	assert.False(t, availability[0].(domain.AvailabilityUpdateEvent).Online)
	assert.Empty(t, availability[1].(domain.AttributesUpdateEvent).Values)
}

func TestRenderersUseBothVocabularies(t *testing.T) {
	snap := snapshotOf(t, map[string]any{"state": "MOWING", "battery": 67})

	mower := LawnMowerUpdateEvents(domain.LAWN_MOWER_ID_MOWER, snap)
	assert.Equal(t, domain.ActivityMowing, mower[0].(domain.LawnMowerActivityUpdateEvent).Activity)

	vacuum := VacuumUpdateEvents(domain.VACUUM_ID_VACUUM, snap)[0].(domain.VacuumStateUpdateEvent)
	assert.Equal(t, domain.ActivityCleaning, vacuum.State)
	require.NotNil(t, vacuum.BatteryLevel)
	assert.Equal(t, 67, *vacuum.BatteryLevel)
	assert.Equal(t, "mdi:battery-70", vacuum.BatteryIcon)
}

func TestZoneAndSettingRenderers(t *testing.T) {
	snap := snapshotOf(t, map[string]any{
		"zones":       []any{10, 20, 30, 40, 0, 0, 0, 0, 0, 0},
		"mow_time":    6,
		"mow_in_rain": true,
		"online":      true,
		"last_update": 1700000000,
	})

	zone := ZoneUpdateEvents(2, domain.ZoneFieldDistance, snap)[0].(domain.InputNumberSensorUpdateEvent)
	assert.Equal(t, "zone2_distance", zone.Id)
	assert.Equal(t, 30.0, zone.Value)

	assert.Equal(t, 6.0, MowTimeUpdateEvents(snap)[0].(domain.InputNumberSensorUpdateEvent).Value)
	assert.True(t, ParkIfRainingUpdateEvents(snap)[0].(domain.SwitchSensorUpdateEvent).Value)

	availability := AvailabilityUpdateEvents(snap)
	assert.True(t, availability[0].(domain.AvailabilityUpdateEvent).Online)
	assert.Equal(t, "2023-11-14T22:13:20Z",
		availability[1].(domain.AttributesUpdateEvent).Values[domain.ATTRIBUTE_LAST_MESSAGE_RECV])
}

func TestStateValues(t *testing.T) {
	snap := snapshotOf(t, map[string]any{"state": "CHARGING", "battery": 90})

	values := StateValues(snap)
	assert.Equal(t, domain.StatusCharging, values["status"])
	assert.Equal(t, 90, values["battery"])
	assert.Equal(t, domain.ActivityDocked, values["activity"])
	assert.Contains(t, values, "zones")
	assert.Nil(t, values["zones"])
}
