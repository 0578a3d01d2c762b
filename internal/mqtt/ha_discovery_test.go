package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryMessages(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	client := CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)
	handle := util.HandleOf(cfg)
	mower := domain.MowerDevice(handle)

	var components domain.Components
	components.Sensors = domain.BridgeSensors(domain.BridgeDevice(cfg.MQTT.BaseTopic))
	components.LawnMowers = append(components.LawnMowers, domain.MowerLawnMower(mower, handle))
	components.InputNumbers = append(components.InputNumbers,
		domain.ZoneInputNumber(mower, handle, 2, domain.ZoneFieldRatio))
	components.Buttons = append(components.Buttons, domain.PollDeviceButton(mower, handle))

	msgs := DiscoveryMessages(client, components)
	require.Len(t, msgs, 4)

	lm, ok := msgs["homeassistant/lawn_mower/"+mower.Id+"/mower/config"]
	require.True(t, ok)
	assert.Equal("moebot/lawn_mower/mower/state", lm.ActivityStateTopic)
	assert.Equal("moebot/lawn_mower/mower/dock", lm.DockCommandTopic)
	assert.Equal("all", lm.AvailabilityMode)
	assert.Len(lm.Availability, 2)

	zone, ok := msgs["homeassistant/number/"+mower.Id+"/zone2_ratio/config"]
	require.True(t, ok)
	payload, err := json.Marshal(zone)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Equal(float64(0), raw["min"], "zero min must be sent")
	assert.Equal(float64(100), raw["max"])
	assert.Equal(false, raw["enabled_by_default"])
	assert.Equal("%", raw["unit_of_measurement"])

	bridge := msgs["homeassistant/binary_sensor/"+components.Sensors[0].Device.Id+"/bridge/config"]
	assert.Equal("moebot/bridge/state", bridge.StateTopic)
	assert.Empty(bridge.Availability)
}
