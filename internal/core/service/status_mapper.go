package service

import (
	"github.com/berfenger/moebot2mqtt/internal/core/domain"
)

var lawnMowerActivities = map[domain.Status]domain.Activity{
	domain.StatusStandby:                 domain.ActivityDocked,
	domain.StatusMowing:                  domain.ActivityMowing,
	domain.StatusFixedMowing:             domain.ActivityMowing,
	domain.StatusPaused:                  domain.ActivityPaused,
	domain.StatusPark:                    domain.ActivityReturning,
	domain.StatusCharging:                domain.ActivityDocked,
	domain.StatusChargingWithTaskSuspend: domain.ActivityDocked,
	domain.StatusLocked:                  domain.ActivityError,
	domain.StatusEmergency:               domain.ActivityError,
	domain.StatusError:                   domain.ActivityError,
}

// the legacy view has no "paused": a paused mower is idle there
var vacuumActivities = map[domain.Status]domain.Activity{
	domain.StatusStandby:                 domain.ActivityDocked,
	domain.StatusMowing:                  domain.ActivityCleaning,
	domain.StatusFixedMowing:             domain.ActivityCleaning,
	domain.StatusPaused:                  domain.ActivityIdle,
	domain.StatusPark:                    domain.ActivityReturning,
	domain.StatusCharging:                domain.ActivityDocked,
	domain.StatusChargingWithTaskSuspend: domain.ActivityDocked,
	domain.StatusLocked:                  domain.ActivityError,
	domain.StatusEmergency:               domain.ActivityError,
	domain.StatusError:                   domain.ActivityError,
}

// MapStatus classifies a device status for the given consumer vocabulary.
// Statuses outside the device vocabulary map to ActivityUnknown.
func MapStatus(status domain.Status, vocabulary domain.Vocabulary) domain.Activity {
	var table map[domain.Status]domain.Activity
	switch vocabulary {
	case domain.VocabularyLawnMower:
		table = lawnMowerActivities
	case domain.VocabularyVacuum:
		table = vacuumActivities
	default:
		return domain.ActivityUnknown
	}
	if activity, ok := table[status]; ok {
		return activity
	}
	return domain.ActivityUnknown
}
