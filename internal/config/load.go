package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const ENV_PREFIX = "moebot"

var defaults = map[string]any{
	"log_level":                    "warn",
	"device.id":                    "",
	"device.address":               "",
	"device.local_key":             "",
	"device_bridge.host":           "",
	"device_bridge.port":           1883,
	"device_bridge.username":       "",
	"device_bridge.password":       "",
	"device_bridge.topic_prefix":   "tuya",
	"device_bridge.timeout_millis": 5000,
	"mqtt.host":                    "localhost",
	"mqtt.port":                    1883,
	"mqtt.username":                "",
	"mqtt.password":                "",
	"mqtt.base_topic":              "moebot",
	"mqtt.ha_discovery_enable":     false,
	"mqtt.ha_discovery_topic":      "homeassistant",
	"monitor.poll_interval_millis": 60000,
	"port":                         8080,
	"http_log":                     false,
}

// Load reads the configuration from MOEBOT_* environment variables (nested
// keys joined by underscores, e.g. MOEBOT_MQTT_HOST) and, when
// CONFIG_FILE points at an existing file, from that file. PORT is accepted as
// an alias of MOEBOT_PORT.
func Load(v *viper.Viper) (*Config, error) {
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MOEBOT_PORT") == "" {
		os.Setenv("MOEBOT_PORT", port)
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = ParseLogLevel(v.GetString("log_level"))

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ParseLogLevel(level string) zapcore.Level {
	switch level {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (c *Config) normalize() error {
	baseTopic, err := CheckMQTTTopic(c.MQTT.BaseTopic)
	if err != nil {
		return fmt.Errorf("mqtt.base_topic: %w", err)
	}
	c.MQTT.BaseTopic = baseTopic

	haTopic, err := CheckMQTTTopic(c.MQTT.HADiscoveryTopic)
	if err != nil {
		return fmt.Errorf("mqtt.ha_discovery_topic: %w", err)
	}
	c.MQTT.HADiscoveryTopic = haTopic

	// the device bridge shares the broker unless told otherwise
	if c.DeviceBridge.Host == "" {
		c.DeviceBridge.Host = c.MQTT.Host
		c.DeviceBridge.Port = c.MQTT.Port
		c.DeviceBridge.Username = c.MQTT.Username
		c.DeviceBridge.Password = c.MQTT.Password
	}
	if c.DeviceBridge.TimeoutMillis == 0 {
		return errors.New("config param device_bridge.timeout_millis should be > 0")
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	const redacted = "*redacted*"
	c.Device.LocalKey = redacted
	c.DeviceBridge.Username = redacted
	c.DeviceBridge.Password = redacted
	c.MQTT.Username = redacted
	c.MQTT.Password = redacted
	return c
}
