// Package metrics exports the mower state cache as Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/berfenger/moebot2mqtt/internal/core/dispatch"
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/session"
	"github.com/berfenger/moebot2mqtt/internal/core/state"

	"github.com/prometheus/client_golang/prometheus"
)

const OBSERVER_NAME = "metrics"

// Collector is a session observer. Gauges of unavailable attributes keep
// their last value; moebot_attribute_available tells them apart.
type Collector struct {
	updates      prometheus.Counter
	version      prometheus.Gauge
	available    *prometheus.GaugeVec
	battery      prometheus.Gauge
	mowTime      prometheus.Gauge
	mowInRain    prometheus.Gauge
	online       prometheus.Gauge
	lastUpdate   prometheus.Gauge
	status       *prometheus.GaugeVec
	zoneDistance *prometheus.GaugeVec
	zoneRatio    *prometheus.GaugeVec
}

func NewCollector() *Collector {
	return &Collector{
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moebot_updates_total",
			Help: "State updates dispatched to observers",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moebot_state_version",
			Help: "Version of the last applied state snapshot",
		}),
		available: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "moebot_attribute_available",
			Help: "1 if the device has reported the attribute",
		}, []string{"attribute"}),
		battery: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moebot_battery_percent",
			Help: "Battery level (%)",
		}),
		mowTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moebot_mow_time_hours",
			Help: "Configured mowing time (hours)",
		}),
		mowInRain: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moebot_mow_in_rain",
			Help: "1 if the mower keeps mowing in rain",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moebot_online",
			Help: "1 if the mower is online",
		}),
		lastUpdate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moebot_last_update_timestamp_seconds",
			Help: "Last message received from the mower (epoch seconds)",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "moebot_status",
			Help: "1 for the current mower status",
		}, []string{"status"}),
		zoneDistance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "moebot_zone_distance_meters",
			Help: "Zone start distance (m)",
		}, []string{"zone"}),
		zoneRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "moebot_zone_ratio_percent",
			Help: "Zone mowing ratio (%)",
		}, []string{"zone"}),
	}
}

// Observe registers the collector with the session dispatcher.
func (c *Collector) Observe(s *session.Session) {
	s.Register(OBSERVER_NAME, func(u dispatch.Update) error {
		c.updates.Inc()
		c.Update(s.Cache().Snapshot())
		return nil
	})
}

// Update sets every gauge from snap.
func (c *Collector) Update(snap *state.Snapshot) {
	c.version.Set(float64(snap.Version))
	for _, attr := range domain.Attributes {
		c.available.WithLabelValues(string(attr)).Set(boolValue(snap.Get(attr).Available))
	}
	if battery, ok := snap.Battery(); ok {
		c.battery.Set(float64(battery))
	}
	if hours, ok := snap.MowTime(); ok {
		c.mowTime.Set(float64(hours))
	}
	if enabled, ok := snap.MowInRain(); ok {
		c.mowInRain.Set(boolValue(enabled))
	}
	online, _ := snap.Online()
	c.online.Set(boolValue(online))
	if ts, ok := snap.LastUpdate(); ok {
		c.lastUpdate.Set(float64(ts.Unix()))
	}
	if current, ok := snap.Status(); ok {
		for _, status := range domain.Statuses {
			c.status.WithLabelValues(string(status)).Set(boolValue(status == current))
		}
	}
	if zones, err := snap.Zones(); err == nil {
		for i, zone := range zones {
			label := strconv.Itoa(i + 1)
			c.zoneDistance.WithLabelValues(label).Set(float64(zone.Distance))
			c.zoneRatio.WithLabelValues(label).Set(float64(zone.Ratio))
		}
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.updates.Describe(ch)
	c.version.Describe(ch)
	c.available.Describe(ch)
	c.battery.Describe(ch)
	c.mowTime.Describe(ch)
	c.mowInRain.Describe(ch)
	c.online.Describe(ch)
	c.lastUpdate.Describe(ch)
	c.status.Describe(ch)
	c.zoneDistance.Describe(ch)
	c.zoneRatio.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.updates.Collect(ch)
	c.version.Collect(ch)
	c.available.Collect(ch)
	c.battery.Collect(ch)
	c.mowTime.Collect(ch)
	c.mowInRain.Collect(ch)
	c.online.Collect(ch)
	c.lastUpdate.Collect(ch)
	c.status.Collect(ch)
	c.zoneDistance.Collect(ch)
	c.zoneRatio.Collect(ch)
}

func boolValue(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
