package domain

// Status is the device-native mower status. The set is closed.
type Status string

const (
	StatusStandby                 Status = "STANDBY"
	StatusMowing                  Status = "MOWING"
	StatusFixedMowing             Status = "FIXED_MOWING"
	StatusPaused                  Status = "PAUSED"
	StatusPark                    Status = "PARK"
	StatusCharging                Status = "CHARGING"
	StatusChargingWithTaskSuspend Status = "CHARGING_WITH_TASK_SUSPEND"
	StatusLocked                  Status = "LOCKED"
	StatusEmergency               Status = "EMERGENCY"
	StatusError                   Status = "ERROR"
)

var Statuses = []Status{
	StatusStandby,
	StatusMowing,
	StatusFixedMowing,
	StatusPaused,
	StatusPark,
	StatusCharging,
	StatusChargingWithTaskSuspend,
	StatusLocked,
	StatusEmergency,
	StatusError,
}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// IsCharging reports whether the mower sits on the dock drawing power.
func (s Status) IsCharging() bool {
	return s == StatusCharging || s == StatusChargingWithTaskSuspend
}

// Activity is a consumer-facing classification of a Status.
type Activity string

const (
	ActivityDocked    Activity = "docked"
	ActivityMowing    Activity = "mowing"
	ActivityPaused    Activity = "paused"
	ActivityReturning Activity = "returning"
	ActivityError     Activity = "error"
	ActivityCleaning  Activity = "cleaning"
	ActivityIdle      Activity = "idle"
	ActivityUnknown   Activity = "unknown"
)

// Vocabulary selects the activity set a consumer view understands.
type Vocabulary int

const (
	// VocabularyLawnMower is used by the lawn mower entity.
	VocabularyLawnMower Vocabulary = iota
	// VocabularyVacuum is used by the legacy vacuum entity.
	VocabularyVacuum
)

func (v Vocabulary) String() string {
	switch v {
	case VocabularyLawnMower:
		return "lawn_mower"
	case VocabularyVacuum:
		return "vacuum"
	default:
		return "unknown"
	}
}
