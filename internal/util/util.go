package util

import (
	"github.com/berfenger/moebot2mqtt/internal/config"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Device: config.DeviceConfig{
			Id:       "bf0123456789abcdefgh",
			Address:  "192.168.1.50",
			LocalKey: "0123456789abcdef",
		},
		DeviceBridge: config.DeviceBridgeConfig{
			Host:          "localhost",
			Port:          1883,
			TopicPrefix:   "tuya",
			TimeoutMillis: 5000,
		},
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "moebot",
			HADiscoveryTopic: "homeassistant",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis: 0,
		},
		Port: 8080,
	}
}

func HandleOf(cfg config.Config) domain.DeviceHandle {
	return domain.DeviceHandle{
		Id:       cfg.Device.Id,
		Address:  cfg.Device.Address,
		LocalKey: cfg.Device.LocalKey,
	}
}
