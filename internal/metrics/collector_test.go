package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/core/dispatch"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollectorFollowsSession(t *testing.T) {
	sched := dispatch.NewQueueScheduler(8)
	s := session.New(domain.DeviceHandle{Id: "dev1"}, sched, zap.NewNop())
	c := NewCollector()
	c.Observe(s)

	s.OnNotification(domain.Notification{
		Payload: map[string]any{
			"state":       "MOWING",
			"battery":     81,
			"online":      true,
			"mow_in_rain": false,
			"zones":       []any{10, 20, 30, 40, 0, 0, 0, 0, 0, 0},
		},
		ReceivedAt: time.Unix(1700000000, 0),
	})
	require.Equal(t, 1, sched.Drain())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.updates))
	assert.Equal(t, 81.0, testutil.ToFloat64(c.battery))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.online))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.mowInRain))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.status.WithLabelValues("MOWING")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.status.WithLabelValues("CHARGING")))
	assert.Equal(t, 30.0, testutil.ToFloat64(c.zoneDistance.WithLabelValues("2")))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.zoneRatio.WithLabelValues("2")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.available.WithLabelValues(string(domain.AttrMowTime))))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.available.WithLabelValues(string(domain.AttrBattery))))
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector()
	require.NoError(t, reg.Register(c))

	c.battery.Set(50)
	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP moebot_battery_percent Battery level (%)
# TYPE moebot_battery_percent gauge
moebot_battery_percent 50
`), "moebot_battery_percent")
	assert.NoError(t, err)
}
