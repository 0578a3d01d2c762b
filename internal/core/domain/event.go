package domain

import "fmt"

type SensorUpdateEventMixIn struct {
	Id string
}

type SensorUpdateEvent interface {
	SensorUpdateEvent() string
	SensorId() string
}

func (e SensorUpdateEventMixIn) SensorUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e SensorUpdateEventMixIn) SensorId() string {
	return e.Id
}

type FloatSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value    float64
	Decimals uint
}

type BinarySensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type SwitchSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type TextSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value string
}

type BridgeStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type InputNumberSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value    float64
	Decimals uint
}

// UnknownStateUpdateEvent clears the state of an entity whose attribute is
// unavailable. Platform selects the state topic.
type UnknownStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Platform string
}

type AvailabilityUpdateEvent struct {
	SensorUpdateEventMixIn
	Online bool
}

// AttributesUpdateEvent carries the JSON attributes shared by every entity of
// the device.
type AttributesUpdateEvent struct {
	SensorUpdateEventMixIn
	Values map[string]any
}

type LawnMowerActivityUpdateEvent struct {
	SensorUpdateEventMixIn
	Activity Activity
}

type VacuumStateUpdateEvent struct {
	SensorUpdateEventMixIn
	State        Activity
	BatteryLevel *int
	BatteryIcon  string
}
