package mqtt

import (
	"fmt"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
)

type HADiscoveryConfig struct {
	Device              HADiscoveryDevice         `json:"device"`
	StateTopic          string                    `json:"state_topic,omitempty"`
	CommandTopic        string                    `json:"command_topic,omitempty"`
	StateClass          string                    `json:"state_class,omitempty"`
	DeviceClass         string                    `json:"device_class,omitempty"`
	UnitOfMeasurement   string                    `json:"unit_of_measurement,omitempty"`
	AvTopic             string                    `json:"availability_topic,omitempty"`
	Availability        []HADiscoveryAvailability `json:"availability,omitempty"`
	AvailabilityMode    string                    `json:"availability_mode,omitempty"`
	JsonAttributesTopic string                    `json:"json_attributes_topic,omitempty"`
	EntityCategory      string                    `json:"entity_category,omitempty"`
	Name                string                    `json:"name"`
	UniqueId            string                    `json:"unique_id"`
	Platform            string                    `json:"platform"`
	EnabledByDefault    *bool                     `json:"enabled_by_default,omitempty"`
	PayloadOn           string                    `json:"payload_on,omitempty"`
	PayloadOff          string                    `json:"payload_off,omitempty"`
	PayloadPress        string                    `json:"payload_press,omitempty"`
	Icon                string                    `json:"icon,omitempty"`
	Min                 *float64                  `json:"min,omitempty"`
	Max                 *float64                  `json:"max,omitempty"`
	Step                float64                   `json:"step,omitempty"`
	Mode                string                    `json:"mode,omitempty"`

	// lawn_mower
	ActivityStateTopic      string `json:"activity_state_topic,omitempty"`
	StartMowingCommandTopic string `json:"start_mowing_command_topic,omitempty"`
	PauseCommandTopic       string `json:"pause_command_topic,omitempty"`
	DockCommandTopic        string `json:"dock_command_topic,omitempty"`

	// vacuum
	Schema              string   `json:"schema,omitempty"`
	SupportedFeatures   []string `json:"supported_features,omitempty"`
	PayloadStart        string   `json:"payload_start,omitempty"`
	PayloadPause        string   `json:"payload_pause,omitempty"`
	PayloadStop         string   `json:"payload_stop,omitempty"`
	PayloadReturnToBase string   `json:"payload_return_to_base,omitempty"`
}

type HADiscoveryAvailability struct {
	Topic string `json:"topic"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

const (
	VACUUM_PAYLOAD_START          = "start"
	VACUUM_PAYLOAD_PAUSE          = "pause"
	VACUUM_PAYLOAD_STOP           = "stop"
	VACUUM_PAYLOAD_RETURN_TO_BASE = "return_to_base"
)

func (c *MQTTClient) HADiscoveryTopic(platform, deviceId, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", c.DiscoveryPrefix(), platform, deviceId, id)
}

func (c *MQTTClient) HADiscoverySensorTopic(sensor domain.GenericSensor) string {
	return c.HADiscoveryTopic(sensor.SensorType, sensor.Device.Id, sensor.Id)
}

// mower entities go unavailable with either the bridge or the mower
func (c *MQTTClient) mowerAvailability(disConfig *HADiscoveryConfig) {
	disConfig.Availability = []HADiscoveryAvailability{
		{Topic: c.BridgeStateTopic()},
		{Topic: c.DeviceAvailabilityTopic()},
	}
	disConfig.AvailabilityMode = "all"
	disConfig.JsonAttributesTopic = c.DeviceAttributesTopic()
}

func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	dev := device(sensor.Device)
	var topic string
	switch {
	case sensor.Id == domain.SENSOR_ID_BRIDGE_STATE:
		topic = client.BridgeStateTopic()
	case sensor.SensorType == domain.SENSOR_TYPE_SENSOR:
		topic = client.SensorStateTopic(sensor.Id)
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		topic = client.BinarySensorStateTopic(sensor.Id)
	}
	disConfig := HADiscoveryConfig{
		Device:            dev,
		StateTopic:        topic,
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		EntityCategory:    sensor.EntityCategory,
		Name:              sensor.Name,
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
	}
	if sensor.Id == domain.SENSOR_ID_BRIDGE_STATE {
		disConfig.AvTopic = client.BridgeStateTopic()
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	} else {
		client.mowerAvailability(&disConfig)
		if sensor.SensorType == domain.SENSOR_TYPE_BINARY {
			disConfig.PayloadOn = MQTT_PAYLOAD_ON
			disConfig.PayloadOff = MQTT_PAYLOAD_OFF
		}
	}
	return disConfig
}

func GenericSwitchToHADiscoveryMessage(client *MQTTClient, _switch domain.GenericSwitch) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:         device(_switch.Device),
		StateTopic:     client.SwitchStateTopic(_switch.Id),
		CommandTopic:   client.SwitchCommandTopic(_switch.Id),
		Name:           _switch.Name,
		UniqueId:       _switch.UniqueId,
		Icon:           _switch.Icon,
		EntityCategory: _switch.EntityCategory,
		Platform:       "mqtt",
		PayloadOn:      MQTT_PAYLOAD_ON,
		PayloadOff:     MQTT_PAYLOAD_OFF,
	}
	client.mowerAvailability(&disConfig)
	return disConfig
}

func GenericInputNumberToHADiscoveryMessage(client *MQTTClient, inputNumber domain.GenericInputNumber) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:            device(inputNumber.Device),
		StateTopic:        client.InputNumberStateTopic(inputNumber.Id),
		CommandTopic:      client.InputNumberCommandTopic(inputNumber.Id),
		Name:              inputNumber.Name,
		UniqueId:          inputNumber.UniqueId,
		Icon:              inputNumber.Icon,
		Platform:          "mqtt",
		Min:               &inputNumber.Min,
		Max:               &inputNumber.Max,
		Step:              inputNumber.Step,
		Mode:              inputNumber.Mode,
		UnitOfMeasurement: inputNumber.UnitOfMeasurement,
		DeviceClass:       inputNumber.DeviceClass,
		EntityCategory:    inputNumber.EntityCategory,
		EnabledByDefault:  inputNumber.EnabledByDefault,
	}
	client.mowerAvailability(&disConfig)
	return disConfig
}

func GenericButtonToHADiscoveryMessage(client *MQTTClient, button domain.GenericButton) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:         device(button.Device),
		CommandTopic:   client.ButtonCommandTopic(button.Id),
		Name:           button.Name,
		UniqueId:       button.UniqueId,
		DeviceClass:    button.DeviceClass,
		EntityCategory: button.EntityCategory,
		Platform:       "mqtt",
		PayloadPress:   MQTT_PAYLOAD_PRESS,
	}
	client.mowerAvailability(&disConfig)
	return disConfig
}

func GenericLawnMowerToHADiscoveryMessage(client *MQTTClient, mower domain.GenericLawnMower) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:                  device(mower.Device),
		Name:                    mower.Name,
		UniqueId:                mower.UniqueId,
		Icon:                    mower.Icon,
		Platform:                "mqtt",
		ActivityStateTopic:      client.LawnMowerActivityTopic(mower.Id),
		StartMowingCommandTopic: client.LawnMowerCommandTopic(mower.Id, LAWN_MOWER_ACTION_START),
		PauseCommandTopic:       client.LawnMowerCommandTopic(mower.Id, LAWN_MOWER_ACTION_PAUSE),
		DockCommandTopic:        client.LawnMowerCommandTopic(mower.Id, LAWN_MOWER_ACTION_DOCK),
	}
	client.mowerAvailability(&disConfig)
	return disConfig
}

func GenericVacuumToHADiscoveryMessage(client *MQTTClient, vacuum domain.GenericVacuum) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:              device(vacuum.Device),
		StateTopic:          client.VacuumStateTopic(vacuum.Id),
		CommandTopic:        client.VacuumCommandTopic(vacuum.Id),
		Name:                vacuum.Name,
		UniqueId:            vacuum.UniqueId,
		Icon:                vacuum.Icon,
		Platform:            "mqtt",
		Schema:              "state",
		SupportedFeatures:   vacuum.Features,
		PayloadStart:        VACUUM_PAYLOAD_START,
		PayloadPause:        VACUUM_PAYLOAD_PAUSE,
		PayloadStop:         VACUUM_PAYLOAD_STOP,
		PayloadReturnToBase: VACUUM_PAYLOAD_RETURN_TO_BASE,
	}
	client.mowerAvailability(&disConfig)
	return disConfig
}

// DiscoveryMessages renders every component to its discovery topic.
func DiscoveryMessages(client *MQTTClient, components domain.Components) map[string]HADiscoveryConfig {
	out := make(map[string]HADiscoveryConfig, components.Len())
	for _, s := range components.Sensors {
		out[client.HADiscoverySensorTopic(s)] = GenericSensorToHADiscoveryMessage(client, s)
	}
	for _, s := range components.Switches {
		out[client.HADiscoveryTopic(domain.PLATFORM_SWITCH, s.Device.Id, s.Id)] = GenericSwitchToHADiscoveryMessage(client, s)
	}
	for _, n := range components.InputNumbers {
		out[client.HADiscoveryTopic(domain.PLATFORM_NUMBER, n.Device.Id, n.Id)] = GenericInputNumberToHADiscoveryMessage(client, n)
	}
	for _, b := range components.Buttons {
		out[client.HADiscoveryTopic(domain.PLATFORM_BUTTON, b.Device.Id, b.Id)] = GenericButtonToHADiscoveryMessage(client, b)
	}
	for _, m := range components.LawnMowers {
		out[client.HADiscoveryTopic(domain.PLATFORM_LAWN_MOWER, m.Device.Id, m.Id)] = GenericLawnMowerToHADiscoveryMessage(client, m)
	}
	for _, v := range components.Vacuums {
		out[client.HADiscoveryTopic(domain.PLATFORM_VACUUM, v.Device.Id, v.Id)] = GenericVacuumToHADiscoveryMessage(client, v)
	}
	return out
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
