package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE      = "bridge"
	SENSOR_ID_MOWING_STATE      = "state"
	SENSOR_ID_EMERGENCY_STATE   = "emergency_state"
	SENSOR_ID_WORK_MODE         = "work_mode"
	SENSOR_ID_BATTERY           = "battery"
	SENSOR_ID_CLIENT_VERSION    = "client_version"
	SENSOR_ID_PROTOCOL_VERSION  = "protocol_version"
	INPUT_NUMBER_ID_MOW_TIME    = "mow_time_hrs"
	SWITCH_ID_PARK_IF_RAINING   = "park_if_raining"
	BUTTON_ID_POLL_DEVICE       = "poll_device"
	LAWN_MOWER_ID_MOWER         = "mower"
	VACUUM_ID_VACUUM            = "vacuum"
	STATE_CLASS_MEASUREMENT     = "measurement"
	DEVICE_CLASS_BATTERY        = "battery"
	DEVICE_CLASS_DURATION       = "duration"
	DEVICE_CLASS_DISTANCE       = "distance"
	DEVICE_CLASS_CONNECTIVITY   = "connectivity"
	DEVICE_CLASS_UPDATE         = "update"
	ENTITY_CLASS_DIAGNOSTIC     = "diagnostic"
	ENTITY_CLASS_CONFIG         = "config"
	SENSOR_TYPE_SENSOR          = "sensor"
	SENSOR_TYPE_BINARY          = "binary_sensor"
	PLATFORM_SENSOR             = "sensor"
	PLATFORM_NUMBER             = "number"
	PLATFORM_SWITCH             = "switch"
	PLATFORM_BUTTON             = "button"
	PLATFORM_LAWN_MOWER         = "lawn_mower"
	PLATFORM_VACUUM             = "vacuum"
	INPUT_NUMBER_MODE_BOX       = "box"
	INPUT_NUMBER_MODE_SLIDER    = "slider"
	MOW_TIME_MIN_HOURS          = 1
	MOW_TIME_MAX_HOURS          = 12
	MOWER_ICON                  = "mdi:robot-mower"
	VACUUM_FEATURE_START        = "start"
	VACUUM_FEATURE_PAUSE        = "pause"
	VACUUM_FEATURE_STOP         = "stop"
	VACUUM_FEATURE_RETURN_HOME  = "return_home"
	VACUUM_FEATURE_BATTERY      = "battery"
	VACUUM_FEATURE_STATUS       = "status"
	ATTRIBUTE_LAST_MESSAGE_RECV = "last_message_received"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("moebot_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "moebot2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("moebot2mqtt %s", md5HashShort(baseTopic)),
	}
}

func MowerDevice(handle DeviceHandle) Device {
	return Device{
		Id:           fmt.Sprintf("moebot_%s", handle.Id),
		Manufacturer: "MoeBot",
		Model:        "MoeBot",
		Name:         fmt.Sprintf("MoeBot (%s)", handle.Id),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {
	return []GenericSensor{{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	}}
}

func MowerSensors(mowerDevice Device, handle DeviceHandle) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:     mowerDevice,
		Id:         SENSOR_ID_MOWING_STATE,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Mowing State",
		UniqueId:   uniqueId(handle.Id, SENSOR_ID_MOWING_STATE),
	})
	sensors = append(sensors, GenericSensor{
		Device:     mowerDevice,
		Id:         SENSOR_ID_EMERGENCY_STATE,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Emergency State",
		UniqueId:   uniqueId(handle.Id, SENSOR_ID_EMERGENCY_STATE),
	})
	sensors = append(sensors, GenericSensor{
		Device:     mowerDevice,
		Id:         SENSOR_ID_WORK_MODE,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Work Mode",
		UniqueId:   uniqueId(handle.Id, SENSOR_ID_WORK_MODE),
	})
	sensors = append(sensors, GenericSensor{
		Device:            mowerDevice,
		Id:                SENSOR_ID_BATTERY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_BATTERY,
		UnitOfMeasurement: "%",
		UniqueId:          uniqueId(handle.Id, SENSOR_ID_BATTERY),
	})
	sensors = append(sensors, GenericSensor{
		Device:         mowerDevice,
		Id:             SENSOR_ID_CLIENT_VERSION,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Client Version",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(handle.Id, SENSOR_ID_CLIENT_VERSION),
	})
	sensors = append(sensors, GenericSensor{
		Device:         mowerDevice,
		Id:             SENSOR_ID_PROTOCOL_VERSION,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Tuya Protocol Version",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(handle.Id, SENSOR_ID_PROTOCOL_VERSION),
	})

	return sensors
}

func MowTimeInputNumber(mowerDevice Device, handle DeviceHandle) GenericInputNumber {
	return GenericInputNumber{
		Device:            mowerDevice,
		Id:                INPUT_NUMBER_ID_MOW_TIME,
		Name:              "Mowing Time",
		UniqueId:          uniqueId(handle.Id, INPUT_NUMBER_ID_MOW_TIME),
		Min:               MOW_TIME_MIN_HOURS,
		Max:               MOW_TIME_MAX_HOURS,
		Step:              1,
		Mode:              INPUT_NUMBER_MODE_SLIDER,
		UnitOfMeasurement: "h",
		DeviceClass:       DEVICE_CLASS_DURATION,
		EntityCategory:    ENTITY_CLASS_CONFIG,
	}
}

// ZoneInputNumberId names the number entity for one field of one zone,
// e.g. zone3_ratio.
func ZoneInputNumberId(zone int, field ZoneField) string {
	return fmt.Sprintf("zone%d_%s", zone, strings.ToLower(field.Name()))
}

func ZoneInputNumber(mowerDevice Device, handle DeviceHandle, zone int, field ZoneField) GenericInputNumber {
	id := ZoneInputNumberId(zone, field)
	var deviceClass string
	if field == ZoneFieldDistance {
		deviceClass = DEVICE_CLASS_DISTANCE
	}
	return GenericInputNumber{
		Device:            mowerDevice,
		Id:                id,
		Name:              fmt.Sprintf("Zone %d %s", zone, field.Name()),
		UniqueId:          uniqueId(handle.Id, id),
		Min:               0,
		Max:               float64(field.Max()),
		Step:              1,
		Mode:              INPUT_NUMBER_MODE_BOX,
		UnitOfMeasurement: field.Unit(),
		DeviceClass:       deviceClass,
		EntityCategory:    ENTITY_CLASS_CONFIG,
		EnabledByDefault:  optionalBool(false),
	}
}

func ParkIfRainingSwitch(mowerDevice Device, handle DeviceHandle) GenericSwitch {
	return GenericSwitch{
		Device:         mowerDevice,
		Id:             SWITCH_ID_PARK_IF_RAINING,
		Name:           "Park If Raining",
		UniqueId:       uniqueId(handle.Id, SWITCH_ID_PARK_IF_RAINING),
		Icon:           "mdi:weather-pouring",
		EntityCategory: ENTITY_CLASS_CONFIG,
	}
}

func PollDeviceButton(mowerDevice Device, handle DeviceHandle) GenericButton {
	return GenericButton{
		Device:         mowerDevice,
		Id:             BUTTON_ID_POLL_DEVICE,
		Name:           "Poll Device",
		UniqueId:       uniqueId(handle.Id, BUTTON_ID_POLL_DEVICE),
		DeviceClass:    DEVICE_CLASS_UPDATE,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
	}
}

func MowerLawnMower(mowerDevice Device, handle DeviceHandle) GenericLawnMower {
	return GenericLawnMower{
		Device:   mowerDevice,
		Id:       LAWN_MOWER_ID_MOWER,
		Name:     "MoeBot Mower",
		UniqueId: uniqueId(handle.Id, LAWN_MOWER_ID_MOWER),
		Icon:     MOWER_ICON,
	}
}

func MowerVacuum(mowerDevice Device, handle DeviceHandle) GenericVacuum {
	return GenericVacuum{
		Device:   mowerDevice,
		Id:       VACUUM_ID_VACUUM,
		Name:     "MoeBot (Legacy Vacuum)",
		UniqueId: uniqueId(handle.Id, VACUUM_ID_VACUUM),
		Icon:     MOWER_ICON,
		Features: []string{
			VACUUM_FEATURE_START,
			VACUUM_FEATURE_PAUSE,
			VACUUM_FEATURE_STOP,
			VACUUM_FEATURE_RETURN_HOME,
			VACUUM_FEATURE_BATTERY,
			VACUUM_FEATURE_STATUS,
		},
	}
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}

func optionalBool(value bool) *bool {
	return &value
}
