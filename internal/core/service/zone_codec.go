package service

import (
	"fmt"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
)

// EncodeZones flattens a zone set into the device order.
func EncodeZones(zones domain.ZoneConfig) domain.ZoneValues {
	var values domain.ZoneValues
	for i, zone := range zones {
		values[zoneIndex(i+1, domain.ZoneFieldDistance)] = zone.Distance
		values[zoneIndex(i+1, domain.ZoneFieldRatio)] = zone.Ratio
	}
	return values
}

// DecodeZones is the inverse of EncodeZones.
func DecodeZones(values domain.ZoneValues) domain.ZoneConfig {
	var zones domain.ZoneConfig
	for i := range zones {
		zones[i] = domain.Zone{
			Distance: values[zoneIndex(i+1, domain.ZoneFieldDistance)],
			Ratio:    values[zoneIndex(i+1, domain.ZoneFieldRatio)],
		}
	}
	return zones
}

// SetZoneField returns a copy of values with one field of one zone replaced.
// zone is 1-based. The input is never modified; on error the zero value is
// returned along with an error wrapping domain.ErrValidation.
func SetZoneField(values domain.ZoneValues, zone int, field domain.ZoneField, value int) (domain.ZoneValues, error) {
	if err := ValidateZoneField(zone, field, value); err != nil {
		return domain.ZoneValues{}, err
	}
	out := values
	out[zoneIndex(zone, field)] = value
	return out, nil
}

// ZoneFieldValue reads one field of one zone from the flat form.
func ZoneFieldValue(values domain.ZoneValues, zone int, field domain.ZoneField) (int, error) {
	if err := validateZoneSlot(zone, field); err != nil {
		return 0, err
	}
	return values[zoneIndex(zone, field)], nil
}

func ValidateZoneField(zone int, field domain.ZoneField, value int) error {
	if err := validateZoneSlot(zone, field); err != nil {
		return err
	}
	if value < 0 || value > field.Max() {
		return fmt.Errorf("%w: zone %d %s %d out of range [0,%d]",
			domain.ErrValidation, zone, field.Name(), value, field.Max())
	}
	return nil
}

// ValidateZones checks every field of a zone set.
func ValidateZones(zones domain.ZoneConfig) error {
	for i, zone := range zones {
		if err := ValidateZoneField(i+1, domain.ZoneFieldDistance, zone.Distance); err != nil {
			return err
		}
		if err := ValidateZoneField(i+1, domain.ZoneFieldRatio, zone.Ratio); err != nil {
			return err
		}
	}
	return nil
}

func validateZoneSlot(zone int, field domain.ZoneField) error {
	if zone < 1 || zone > domain.ZoneCount {
		return fmt.Errorf("%w: zone %d out of range [1,%d]", domain.ErrValidation, zone, domain.ZoneCount)
	}
	if !field.Valid() {
		return fmt.Errorf("%w: unknown zone field %d", domain.ErrValidation, field)
	}
	return nil
}

func zoneIndex(zone int, field domain.ZoneField) int {
	return 2*(zone-1) + field.Offset()
}
