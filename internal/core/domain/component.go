package domain

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, duration, total_increasing
	DeviceClass       string // battery, duration, connectivity
	EntityCategory    string // diagnostic, config, nil
	EnabledByDefault  *bool
	Icon              string
}

type GenericSwitch struct {
	Device         Device
	Id             string
	Name           string
	UniqueId       string
	Icon           string
	EntityCategory string
}

type GenericInputNumber struct {
	Device            Device
	Id                string
	Name              string
	UniqueId          string
	Icon              string
	Max               float64
	Min               float64
	Step              float64
	Mode              string
	UnitOfMeasurement string
	DeviceClass       string
	EntityCategory    string
	EnabledByDefault  *bool
}

type GenericButton struct {
	Device         Device
	Id             string
	Name           string
	UniqueId       string
	DeviceClass    string
	EntityCategory string
}

type GenericLawnMower struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
}

type GenericVacuum struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
	Features []string
}

// Components groups every entity advertised through discovery.
type Components struct {
	Sensors      []GenericSensor
	Switches     []GenericSwitch
	InputNumbers []GenericInputNumber
	Buttons      []GenericButton
	LawnMowers   []GenericLawnMower
	Vacuums      []GenericVacuum
}

func (c *Components) Append(other Components) {
	c.Sensors = append(c.Sensors, other.Sensors...)
	c.Switches = append(c.Switches, other.Switches...)
	c.InputNumbers = append(c.InputNumbers, other.InputNumbers...)
	c.Buttons = append(c.Buttons, other.Buttons...)
	c.LawnMowers = append(c.LawnMowers, other.LawnMowers...)
	c.Vacuums = append(c.Vacuums, other.Vacuums...)
}

func (c Components) Len() int {
	return len(c.Sensors) + len(c.Switches) + len(c.InputNumbers) +
		len(c.Buttons) + len(c.LawnMowers) + len(c.Vacuums)
}
