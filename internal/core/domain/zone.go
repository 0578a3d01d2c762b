package domain

const (
	ZoneCount       = 5
	ZoneValueCount  = 2 * ZoneCount
	MaxZoneDistance = 200
	MaxZoneRatio    = 100
)

// Zone is one mowing area: how far from the dock it starts (meters) and the
// share of mowing time spent there (percent).
type Zone struct {
	Distance int `json:"distance"`
	Ratio    int `json:"ratio"`
}

type ZoneConfig [ZoneCount]Zone

// ZoneValues is the flat form sent to and received from the device:
// [z1.distance, z1.ratio, ..., z5.distance, z5.ratio].
type ZoneValues [ZoneValueCount]int

// ZoneField selects one of the two values of a zone.
type ZoneField int

const (
	ZoneFieldDistance ZoneField = iota
	ZoneFieldRatio
)

type zoneFieldSpec struct {
	name   string
	offset int
	max    int
	unit   string
}

var zoneFieldSpecs = map[ZoneField]zoneFieldSpec{
	ZoneFieldDistance: {name: "Distance", offset: 0, max: MaxZoneDistance, unit: "m"},
	ZoneFieldRatio:    {name: "Ratio", offset: 1, max: MaxZoneRatio, unit: "%"},
}

var ZoneFields = []ZoneField{ZoneFieldDistance, ZoneFieldRatio}

func (f ZoneField) Valid() bool {
	_, ok := zoneFieldSpecs[f]
	return ok
}

func (f ZoneField) Offset() int {
	return zoneFieldSpecs[f].offset
}

func (f ZoneField) Max() int {
	return zoneFieldSpecs[f].max
}

func (f ZoneField) Name() string {
	return zoneFieldSpecs[f].name
}

func (f ZoneField) Unit() string {
	return zoneFieldSpecs[f].unit
}
