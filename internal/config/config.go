package config

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel      zapcore.Level
	Device        DeviceConfig       `mapstructure:"device"`
	DeviceBridge  DeviceBridgeConfig `mapstructure:"device_bridge"`
	MQTT          MQTTConfig         `mapstructure:"mqtt"`
	MonitorConfig MonitorConfig      `mapstructure:"monitor"`
	Port          uint               `mapstructure:"port"`
	HttpLog       bool               `mapstructure:"http_log"`
}

type DeviceConfig struct {
	Id       string
	Address  string
	LocalKey string `mapstructure:"local_key"`
}

// DeviceBridgeConfig points at the MQTT bridge that speaks the Tuya protocol
// to the mower. Host and credentials default to the MQTT broker below.
type DeviceBridgeConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	TopicPrefix   string `mapstructure:"topic_prefix"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func (c MonitorConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

func (c DeviceBridgeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// Validate checks bounds that viper cannot express.
func (c *Config) Validate() error {
	if c.Device.Id == "" {
		return errors.New("config param device.id is required")
	}
	if c.MonitorConfig.PollIntervalMillis != 0 && c.MonitorConfig.PollIntervalMillis < 1000 {
		return errors.New("config param monitor.poll_interval_millis should be 0 or >= 1000")
	}
	if c.DeviceBridge.TopicPrefix == "" {
		return errors.New("config param device_bridge.topic_prefix is required")
	}
	return nil
}
