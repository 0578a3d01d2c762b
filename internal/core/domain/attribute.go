package domain

import "time"

// Attribute names a device value held by the state cache.
type Attribute string

const (
	AttrStatus          Attribute = "status"
	AttrBattery         Attribute = "battery"
	AttrMowTime         Attribute = "mow_time"
	AttrMowInRain       Attribute = "mow_in_rain"
	AttrZones           Attribute = "zones"
	AttrOnline          Attribute = "online"
	AttrLastUpdate      Attribute = "last_update"
	AttrEmergencyState  Attribute = "emergency_state"
	AttrWorkMode        Attribute = "work_mode"
	AttrClientVersion   Attribute = "client_version"
	AttrProtocolVersion Attribute = "protocol_version"
)

// Attributes lists every attribute the cache knows about, in render order.
var Attributes = []Attribute{
	AttrStatus,
	AttrBattery,
	AttrMowTime,
	AttrMowInRain,
	AttrZones,
	AttrOnline,
	AttrLastUpdate,
	AttrEmergencyState,
	AttrWorkMode,
	AttrClientVersion,
	AttrProtocolVersion,
}

// DeviceHandle identifies one physical mower for the lifetime of a session.
type DeviceHandle struct {
	Id       string
	Address  string
	LocalKey string
}

// Notification is a raw push payload as delivered by the device-client.
type Notification struct {
	Payload    map[string]any
	ReceivedAt time.Time
}
