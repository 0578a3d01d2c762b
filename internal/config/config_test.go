package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestCheckMQTTTopic(t *testing.T) {

	topic, err := CheckMQTTTopic("MoeBot_1")
	assert.NoError(t, err)
	assert.Equal(t, "moebot_1", topic)

	_, err = CheckMQTTTopic("moebot/1")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {

	assert := assert.New(t)

	cfg := Config{
		Device:        DeviceConfig{Id: "abc"},
		DeviceBridge:  DeviceBridgeConfig{TopicPrefix: "tuya"},
		MonitorConfig: MonitorConfig{PollIntervalMillis: 0},
	}
	assert.NoError(cfg.Validate())

	cfg.MonitorConfig.PollIntervalMillis = 500
	assert.Error(cfg.Validate())

	cfg.MonitorConfig.PollIntervalMillis = 60000
	assert.NoError(cfg.Validate())
	assert.Equal(time.Minute, cfg.MonitorConfig.PollInterval())

	cfg.Device.Id = ""
	assert.Error(cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MOEBOT_DEVICE_ID", "bf01")
	t.Setenv("MOEBOT_MQTT_HOST", "broker")
	t.Setenv("MOEBOT_MQTT_BASE_TOPIC", "Garden_Bot")
	t.Setenv("MOEBOT_LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")
	t.Setenv("MOEBOT_PORT", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "bf01", cfg.Device.Id)
	assert.Equal(t, "garden_bot", cfg.MQTT.BaseTopic)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, uint(9090), cfg.Port)
	assert.Equal(t, "broker", cfg.DeviceBridge.Host)
	assert.Equal(t, "tuya", cfg.DeviceBridge.TopicPrefix)
	assert.Equal(t, time.Minute, cfg.MonitorConfig.PollInterval())
}

func TestLoadFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
device:
  id: bf02
  local_key: secret
device_bridge:
  host: bridge
  topic_prefix: tuya2mqtt
monitor:
  poll_interval_millis: 0
`), 0o600))
	t.Setenv("CONFIG_FILE", file)
	t.Setenv("PORT", "")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "bf02", cfg.Device.Id)
	assert.Equal(t, "bridge", cfg.DeviceBridge.Host)
	assert.Equal(t, "tuya2mqtt", cfg.DeviceBridge.TopicPrefix)
	assert.Equal(t, time.Duration(0), cfg.MonitorConfig.PollInterval())
	assert.Equal(t, "*redacted*", cfg.Redacted().Device.LocalKey)
	assert.Equal(t, "secret", cfg.Device.LocalKey)
}

func TestLoadRejectsMissingDevice(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MOEBOT_DEVICE_ID", "")
	_, err := Load(viper.New())
	assert.Error(t, err)
}
