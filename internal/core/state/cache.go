// Package state holds the last known values reported by one mower.
package state

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/internal/core/service"
	"github.com/spf13/cast"
)

// payload keys that are not named after the attribute they carry
var payloadAliases = map[string]domain.Attribute{
	"state":            domain.AttrStatus,
	"pymoebot_version": domain.AttrClientVersion,
	"tuya_version":     domain.AttrProtocolVersion,
}

// Value is the result of a cache read. Available is false until a
// notification carrying the attribute has been applied.
type Value struct {
	Value     any
	Available bool
}

func unavailable() Value {
	return Value{}
}

// Snapshot is an immutable view of the cache after one notification.
type Snapshot struct {
	Version   uint64
	AppliedAt time.Time
	values    map[domain.Attribute]any
}

func (s *Snapshot) Get(attr domain.Attribute) Value {
	if s == nil {
		return unavailable()
	}
	v, ok := s.values[attr]
	if !ok {
		return unavailable()
	}
	return Value{Value: v, Available: true}
}

func (s *Snapshot) Status() (domain.Status, bool) {
	v := s.Get(domain.AttrStatus)
	if !v.Available {
		return "", false
	}
	return v.Value.(domain.Status), true
}

func (s *Snapshot) Battery() (int, bool) {
	return s.intValue(domain.AttrBattery)
}

func (s *Snapshot) MowTime() (int, bool) {
	return s.intValue(domain.AttrMowTime)
}

func (s *Snapshot) MowInRain() (bool, bool) {
	return s.boolValue(domain.AttrMowInRain)
}

func (s *Snapshot) Online() (bool, bool) {
	return s.boolValue(domain.AttrOnline)
}

func (s *Snapshot) LastUpdate() (time.Time, bool) {
	v := s.Get(domain.AttrLastUpdate)
	if !v.Available {
		return time.Time{}, false
	}
	return v.Value.(time.Time), true
}

func (s *Snapshot) Text(attr domain.Attribute) (string, bool) {
	v := s.Get(attr)
	if !v.Available {
		return "", false
	}
	return cast.ToString(v.Value), true
}

// ZoneValues returns the flat zone values, or domain.ErrUnavailable.
func (s *Snapshot) ZoneValues() (domain.ZoneValues, error) {
	v := s.Get(domain.AttrZones)
	if !v.Available {
		return domain.ZoneValues{}, domain.ErrUnavailable
	}
	return v.Value.(domain.ZoneValues), nil
}

// Zones returns the decoded zone set, or domain.ErrUnavailable.
func (s *Snapshot) Zones() (domain.ZoneConfig, error) {
	values, err := s.ZoneValues()
	if err != nil {
		return domain.ZoneConfig{}, err
	}
	return service.DecodeZones(values), nil
}

// ZoneField reads one field of one zone. It short-circuits to
// domain.ErrUnavailable when no zone data has been received.
func (s *Snapshot) ZoneField(zone int, field domain.ZoneField) (int, error) {
	values, err := s.ZoneValues()
	if err != nil {
		return 0, err
	}
	return service.ZoneFieldValue(values, zone, field)
}

func (s *Snapshot) intValue(attr domain.Attribute) (int, bool) {
	v := s.Get(attr)
	if !v.Available {
		return 0, false
	}
	return v.Value.(int), true
}

func (s *Snapshot) boolValue(attr domain.Attribute) (bool, bool) {
	v := s.Get(attr)
	if !v.Available {
		return false, false
	}
	return v.Value.(bool), true
}

// Cache is bound to one device handle. Apply is the only mutator; readers
// always see a whole snapshot, either the one before or the one after a
// notification.
type Cache struct {
	handle  domain.DeviceHandle
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

func NewCache(handle domain.DeviceHandle) *Cache {
	c := &Cache{handle: handle}
	c.current.Store(&Snapshot{values: map[domain.Attribute]any{}})
	return c
}

func (c *Cache) Handle() domain.DeviceHandle {
	return c.handle
}

func (c *Cache) Get(attr domain.Attribute) Value {
	return c.Snapshot().Get(attr)
}

func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Apply merges a notification into a new snapshot and publishes it. It
// returns the attributes whose value changed, in domain.Attributes order.
// Values that cannot be decoded are skipped and reported in the error; the
// rest of the notification is still applied.
func (c *Cache) Apply(n domain.Notification) ([]domain.Attribute, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.current.Load()
	values := make(map[domain.Attribute]any, len(prev.values)+len(n.Payload))
	for k, v := range prev.values {
		values[k] = v
	}

	var errs []error
	changed := map[domain.Attribute]bool{}
	for key, raw := range n.Payload {
		attr, ok := payloadAliases[key]
		if ok {
			// the canonical key wins over its alias
			if _, dup := n.Payload[string(attr)]; dup {
				continue
			}
		} else {
			attr = domain.Attribute(key)
		}
		if !slices.Contains(domain.Attributes, attr) {
			continue
		}
		value, err := decodeAttribute(attr, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		if old, ok := prev.values[attr]; !ok || !equalValues(old, value) {
			changed[attr] = true
		}
		values[attr] = value
	}

	appliedAt := n.ReceivedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now()
	}
	c.current.Store(&Snapshot{
		Version:   prev.Version + 1,
		AppliedAt: appliedAt,
		values:    values,
	})

	var out []domain.Attribute
	for _, attr := range domain.Attributes {
		if changed[attr] {
			out = append(out, attr)
		}
	}
	return out, errors.Join(errs...)
}

func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

func decodeAttribute(attr domain.Attribute, raw any) (any, error) {
	switch attr {
	case domain.AttrStatus:
		s, err := cast.ToStringE(raw)
		return domain.Status(s), err
	case domain.AttrBattery, domain.AttrMowTime:
		return cast.ToIntE(raw)
	case domain.AttrMowInRain, domain.AttrOnline:
		return cast.ToBoolE(raw)
	case domain.AttrLastUpdate:
		return decodeTime(raw)
	case domain.AttrZones:
		return decodeZones(raw)
	default:
		return cast.ToStringE(raw)
	}
}

func decodeTime(raw any) (time.Time, error) {
	switch raw.(type) {
	case float64, float32, int, int64, int32, uint, uint64, uint32:
		secs, err := cast.ToInt64E(raw)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(secs, 0), nil
	}
	return cast.ToTimeE(raw)
}

// decodeZones accepts the flat list of ten values, or an object keyed
// zone1..zone5 with [distance, ratio] pairs.
func decodeZones(raw any) (domain.ZoneValues, error) {
	var values domain.ZoneValues
	switch v := raw.(type) {
	case domain.ZoneValues:
		return v, nil
	case domain.ZoneConfig:
		return service.EncodeZones(v), nil
	case map[string]any:
		var zones domain.ZoneConfig
		for i := range zones {
			pair, err := cast.ToIntSliceE(v[fmt.Sprintf("zone%d", i+1)])
			if err != nil || len(pair) != 2 {
				return values, fmt.Errorf("zone%d: expected [distance, ratio]", i+1)
			}
			zones[i] = domain.Zone{Distance: pair[0], Ratio: pair[1]}
		}
		return service.EncodeZones(zones), nil
	}
	flat, err := cast.ToIntSliceE(raw)
	if err != nil {
		return values, err
	}
	if len(flat) != domain.ZoneValueCount {
		return values, fmt.Errorf("expected %d values, got %d", domain.ZoneValueCount, len(flat))
	}
	copy(values[:], flat)
	return values, nil
}
