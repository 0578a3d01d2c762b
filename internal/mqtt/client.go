package mqtt

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"
	MQTT_PAYLOAD_PRESS   = "PRESS"
	// rendered for attributes that have not been received yet
	MQTT_PAYLOAD_UNKNOWN = "None"
)

const (
	COMMAND_SWITCH     = "switch"
	COMMAND_NUMBER     = "number"
	COMMAND_BUTTON     = "button"
	COMMAND_LAWN_MOWER = "lawn_mower"
	COMMAND_VACUUM     = "vacuum"
)

// lawn mower actions, one command topic each
const (
	LAWN_MOWER_ACTION_START = "start_mowing"
	LAWN_MOWER_ACTION_PAUSE = "pause"
	LAWN_MOWER_ACTION_DOCK  = "dock"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("moebot2mqtt_%d", rand.IntN(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client:                   mqtt.NewClient(opts),
		cfg:                      cfg.MQTT,
		switchCommandRegexp:      switchCommandExtractor(cfg.MQTT.BaseTopic),
		inputNumberCommandRegexp: inputNumberCommandExtractor(cfg.MQTT.BaseTopic),
		buttonCommandRegexp:      buttonCommandExtractor(cfg.MQTT.BaseTopic),
		lawnMowerCommandRegexp:   lawnMowerCommandExtractor(cfg.MQTT.BaseTopic),
		vacuumCommandRegexp:      vacuumCommandExtractor(cfg.MQTT.BaseTopic),
	}
}

type MQTTClient struct {
	client                   mqtt.Client
	cfg                      config.MQTTConfig
	switchCommandRegexp      *regexp.Regexp
	inputNumberCommandRegexp *regexp.Regexp
	buttonCommandRegexp      *regexp.Regexp
	lawnMowerCommandRegexp   *regexp.Regexp
	vacuumCommandRegexp      *regexp.Regexp
}

// ParsedMQTTCommand is a command received from Home Assistant. Command is the
// platform, Param the action for platforms with one topic per action.
type ParsedMQTTCommand struct {
	DeviceId string
	Command  string
	Param    string
	Payload  string
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) DiscoveryPrefix() string {
	if c.cfg.HADiscoveryTopic == "" {
		return "homeassistant"
	}
	return c.cfg.HADiscoveryTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) DeviceAvailabilityTopic() string {
	return fmt.Sprintf("%s/device/availability", c.baseTopic())
}

func (c *MQTTClient) DeviceAttributesTopic() string {
	return fmt.Sprintf("%s/device/attributes", c.baseTopic())
}

func (c *MQTTClient) SensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) BinarySensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/binary_sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) SwitchStateTopic(switchId string) string {
	return fmt.Sprintf("%s/switch/%s/state", c.baseTopic(), switchId)
}

func (c *MQTTClient) SwitchCommandTopic(switchId string) string {
	return fmt.Sprintf("%s/switch/%s/command", c.baseTopic(), switchId)
}

func (c *MQTTClient) InputNumberStateTopic(id string) string {
	return fmt.Sprintf("%s/number/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) InputNumberCommandTopic(id string) string {
	return fmt.Sprintf("%s/number/%s/set", c.baseTopic(), id)
}

func (c *MQTTClient) ButtonCommandTopic(id string) string {
	return fmt.Sprintf("%s/button/%s/press", c.baseTopic(), id)
}

func (c *MQTTClient) LawnMowerActivityTopic(id string) string {
	return fmt.Sprintf("%s/lawn_mower/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) LawnMowerCommandTopic(id, action string) string {
	return fmt.Sprintf("%s/lawn_mower/%s/%s", c.baseTopic(), id, action)
}

func (c *MQTTClient) VacuumStateTopic(id string) string {
	return fmt.Sprintf("%s/vacuum/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) VacuumCommandTopic(id string) string {
	return fmt.Sprintf("%s/vacuum/%s/command", c.baseTopic(), id)
}

// StateTopic returns the state topic of an entity of the given platform.
func (c *MQTTClient) StateTopic(platform, id string) string {
	switch platform {
	case COMMAND_NUMBER:
		return c.InputNumberStateTopic(id)
	case COMMAND_SWITCH:
		return c.SwitchStateTopic(id)
	case COMMAND_LAWN_MOWER:
		return c.LawnMowerActivityTopic(id)
	case COMMAND_VACUUM:
		return c.VacuumStateTopic(id)
	default:
		return c.SensorStateTopic(id)
	}
}

func (c *MQTTClient) ParseMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	return parseCommand(c, msg.Topic(), string(msg.Payload()))
}

func parseCommand(c *MQTTClient, topic, payload string) (*ParsedMQTTCommand, error) {
	if cmd, ok := matchCommand(c.switchCommandRegexp, topic, COMMAND_SWITCH, payload); ok {
		return cmd, nil
	}
	if cmd, ok := matchCommand(c.inputNumberCommandRegexp, topic, COMMAND_NUMBER, payload); ok {
		// try to parse a valid number
		if _, err := strconv.ParseFloat(payload, 64); err != nil {
			return nil, err
		}
		return cmd, nil
	}
	if cmd, ok := matchCommand(c.buttonCommandRegexp, topic, COMMAND_BUTTON, payload); ok {
		return cmd, nil
	}
	if cmd, ok := matchCommand(c.vacuumCommandRegexp, topic, COMMAND_VACUUM, payload); ok {
		return cmd, nil
	}
	if matches := c.lawnMowerCommandRegexp.FindStringSubmatch(topic); len(matches) == 3 {
		return &ParsedMQTTCommand{
			DeviceId: matches[1],
			Command:  COMMAND_LAWN_MOWER,
			Param:    matches[2],
			Payload:  payload,
		}, nil
	}
	return nil, errors.New("invalid command")
}

func matchCommand(r *regexp.Regexp, topic, command, payload string) (*ParsedMQTTCommand, bool) {
	matches := r.FindStringSubmatch(topic)
	if len(matches) != 2 {
		return nil, false
	}
	return &ParsedMQTTCommand{
		DeviceId: matches[1],
		Command:  command,
		Payload:  payload,
	}, true
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.Subscribe(topic, qos, handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) SubscribeToCommandTopic(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	c.Subscribe(c.commandTopic(), 1, handler, continuation, timeout)
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func (c *MQTTClient) commandTopic() string {
	return fmt.Sprintf("%s/#", c.baseTopic())
}

func switchCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/switch/([a-zA-Z0-9_]+)/command$", baseTopic))
}

func inputNumberCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/number/([a-zA-Z0-9_]+)/set$", baseTopic))
}

func buttonCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/button/([a-zA-Z0-9_]+)/press$", baseTopic))
}

func vacuumCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/vacuum/([a-zA-Z0-9_]+)/command$", baseTopic))
}

func lawnMowerCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/lawn_mower/([a-zA-Z0-9_]+)/(%s|%s|%s)$", baseTopic,
		LAWN_MOWER_ACTION_START, LAWN_MOWER_ACTION_PAUSE, LAWN_MOWER_ACTION_DOCK))
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
