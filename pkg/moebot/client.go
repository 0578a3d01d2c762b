// Package moebot is the device-client used to talk to a MoeBot mower.
//
// The mower itself speaks the Tuya local protocol; this package does not
// implement it. It reaches the mower through a bridge that already exposes
// the decoded device values (see MQTTClient), or through TestClient in tests.
package moebot

import "errors"

const ZoneValueCount = 10

var (
	ErrNotListening = errors.New("moebot: client not listening")
	ErrTimeout      = errors.New("moebot: operation timed out")
	ErrRejected     = errors.New("moebot: command rejected")
)

// Payload is a decoded push message. Keys follow the names used by the
// bridge: state, battery, mow_time, mow_in_rain, zones, online, last_update,
// emergency_state, work_mode, pymoebot_version, tuya_version.
type Payload map[string]any

// Listener receives pushes. It is called from the client's own goroutine.
type Listener func(Payload)

// Client is the blocking interface to one mower. Every method except Id may
// block on device I/O.
type Client interface {
	Id() string
	Listen(listener Listener) error
	Unlisten()
	Poll() error
	Start() error
	Pause() error
	Dock() error
	Cancel() error
	SetMowTime(hours int) error
	SetMowInRain(enabled bool) error
	SetZones(values [ZoneValueCount]int) error
}
