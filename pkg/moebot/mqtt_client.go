package moebot

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	payloadOnline = "online"
)

type MQTTClientOptions struct {
	Broker      string
	Username    string
	Password    string
	TopicPrefix string
	DeviceId    string
	Timeout     time.Duration
	Logger      *zap.Logger
}

// MQTTClient talks to a mower through a Tuya to MQTT bridge. The bridge
// publishes JSON state objects on <prefix>/<id>/state, availability on
// <prefix>/<id>/availability and accepts JSON commands on <prefix>/<id>/command.
type MQTTClient struct {
	opts   MQTTClientOptions
	client mqtt.Client
	logger *zap.Logger

	mu         sync.Mutex
	listener   Listener
	subscribed bool
}

type bridgeCommand struct {
	Command string         `json:"command,omitempty"`
	Set     map[string]any `json:"set,omitempty"`
}

func NewMQTTClient(opts MQTTClientOptions) *MQTTClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &MQTTClient{opts: opts, logger: opts.Logger.Named("moebot")}

	mqttOpts := mqtt.NewClientOptions()
	mqttOpts.AddBroker(opts.Broker)
	mqttOpts.SetClientID(fmt.Sprintf("moebot_%s_%d", opts.DeviceId, rand.IntN(1000)))
	if opts.Username != "" && opts.Password != "" {
		mqttOpts.SetUsername(opts.Username)
		mqttOpts.SetPassword(opts.Password)
	}
	// keep pushes serial per connection
	mqttOpts.SetOrderMatters(true)
	mqttOpts.SetAutoReconnect(true)
	mqttOpts.OnConnectionLost = func(_ mqtt.Client, err error) {
		c.logger.Warn("bridge connection lost", zap.Error(err))
		c.deliver(Payload{"online": false})
	}
	mqttOpts.SetOnConnectHandler(c.onConnect)
	c.client = mqtt.NewClient(mqttOpts)
	return c
}

func (c *MQTTClient) Id() string {
	return c.opts.DeviceId
}

func (c *MQTTClient) stateTopic() string {
	return fmt.Sprintf("%s/%s/state", c.opts.TopicPrefix, c.opts.DeviceId)
}

func (c *MQTTClient) availabilityTopic() string {
	return fmt.Sprintf("%s/%s/availability", c.opts.TopicPrefix, c.opts.DeviceId)
}

func (c *MQTTClient) commandTopic() string {
	return fmt.Sprintf("%s/%s/command", c.opts.TopicPrefix, c.opts.DeviceId)
}

func (c *MQTTClient) Listen(listener Listener) error {
	c.mu.Lock()
	c.listener = listener
	c.mu.Unlock()

	if err := c.wait(c.client.Connect(), "connect"); err != nil {
		return err
	}
	if err := c.subscribe(); err != nil {
		return err
	}
	c.mu.Lock()
	c.subscribed = true
	c.mu.Unlock()
	return nil
}

func (c *MQTTClient) subscribe() error {
	filters := map[string]byte{
		c.stateTopic():        1,
		c.availabilityTopic(): 1,
	}
	return c.wait(c.client.SubscribeMultiple(filters, c.onMessage), "subscribe")
}

// onConnect runs on every (re)connection. The broker drops subscriptions of a
// clean session, so after the first Listen they are set up again and the
// device is polled to refresh the cache.
func (c *MQTTClient) onConnect(_ mqtt.Client) {
	c.mu.Lock()
	resubscribe := c.listener != nil && c.subscribed
	c.mu.Unlock()
	if !resubscribe {
		return
	}
	if err := c.subscribe(); err != nil {
		c.logger.Error("bridge resubscribe failed", zap.Error(err))
		return
	}
	c.logger.Info("bridge resubscribed after reconnect")
	if err := c.Poll(); err != nil {
		c.logger.Warn("bridge poll after reconnect failed", zap.Error(err))
	}
}

func (c *MQTTClient) Unlisten() {
	c.mu.Lock()
	c.listener = nil
	c.subscribed = false
	c.mu.Unlock()
	if c.client.IsConnected() {
		_ = c.client.Unsubscribe(c.stateTopic(), c.availabilityTopic()).WaitTimeout(c.opts.Timeout)
		c.client.Disconnect(uint(c.opts.Timeout.Milliseconds()))
	}
}

func (c *MQTTClient) onMessage(_ mqtt.Client, msg mqtt.Message) {
	switch msg.Topic() {
	case c.availabilityTopic():
		c.deliver(Payload{"online": string(msg.Payload()) == payloadOnline})
	case c.stateTopic():
		var payload Payload
		if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
			c.logger.Warn("dropping malformed state payload", zap.ByteString("payload", msg.Payload()), zap.Error(err))
			return
		}
		if payload == nil {
			c.logger.Warn("dropping empty state payload", zap.ByteString("payload", msg.Payload()))
			return
		}
		if _, ok := payload["last_update"]; !ok {
			payload["last_update"] = time.Now().Unix()
		}
		c.deliver(payload)
	}
}

func (c *MQTTClient) deliver(payload Payload) {
	c.mu.Lock()
	listener := c.listener
	c.mu.Unlock()
	if listener != nil {
		listener(payload)
	}
}

func (c *MQTTClient) Poll() error {
	return c.send(bridgeCommand{Command: "poll"})
}

func (c *MQTTClient) Start() error {
	return c.send(bridgeCommand{Command: "start"})
}

func (c *MQTTClient) Pause() error {
	return c.send(bridgeCommand{Command: "pause"})
}

func (c *MQTTClient) Dock() error {
	return c.send(bridgeCommand{Command: "dock"})
}

func (c *MQTTClient) Cancel() error {
	return c.send(bridgeCommand{Command: "cancel"})
}

func (c *MQTTClient) SetMowTime(hours int) error {
	return c.send(bridgeCommand{Set: map[string]any{"mow_time": hours}})
}

func (c *MQTTClient) SetMowInRain(enabled bool) error {
	return c.send(bridgeCommand{Set: map[string]any{"mow_in_rain": enabled}})
}

func (c *MQTTClient) SetZones(values [ZoneValueCount]int) error {
	return c.send(bridgeCommand{Set: map[string]any{"zones": values[:]}})
}

func (c *MQTTClient) send(cmd bridgeCommand) error {
	if !c.client.IsConnectionOpen() {
		return ErrNotListening
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return c.wait(c.client.Publish(c.commandTopic(), 1, false, payload), "publish")
}

func (c *MQTTClient) wait(token mqtt.Token, op string) error {
	if !token.WaitTimeout(c.opts.Timeout) {
		return fmt.Errorf("%w: %s", ErrTimeout, op)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("moebot: %s: %w", op, err)
	}
	return nil
}

// ensure interface compliance
var _ Client = (*MQTTClient)(nil)
