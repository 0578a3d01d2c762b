package domain

import "fmt"

type CommandKind string

const (
	CommandStart        CommandKind = "start"
	CommandPause        CommandKind = "pause"
	CommandDock         CommandKind = "dock"
	CommandCancel       CommandKind = "cancel"
	CommandPoll         CommandKind = "poll"
	CommandSetAttribute CommandKind = "set_attribute"
)

// DeviceCommand is an outbound call to the device-client. Attribute and Value
// are only set for CommandSetAttribute.
type DeviceCommand struct {
	Kind      CommandKind
	Attribute Attribute
	Value     any
}

func (c DeviceCommand) String() string {
	if c.Kind == CommandSetAttribute {
		return fmt.Sprintf("%s(%s=%v)", c.Kind, c.Attribute, c.Value)
	}
	return string(c.Kind)
}

func StartCommand() DeviceCommand {
	return DeviceCommand{Kind: CommandStart}
}

func PauseCommand() DeviceCommand {
	return DeviceCommand{Kind: CommandPause}
}

func DockCommand() DeviceCommand {
	return DeviceCommand{Kind: CommandDock}
}

func CancelCommand() DeviceCommand {
	return DeviceCommand{Kind: CommandCancel}
}

func PollCommand() DeviceCommand {
	return DeviceCommand{Kind: CommandPoll}
}

func SetMowTimeCommand(hours int) DeviceCommand {
	return DeviceCommand{Kind: CommandSetAttribute, Attribute: AttrMowTime, Value: hours}
}

func SetMowInRainCommand(enabled bool) DeviceCommand {
	return DeviceCommand{Kind: CommandSetAttribute, Attribute: AttrMowInRain, Value: enabled}
}

func SetZonesCommand(zones ZoneConfig) DeviceCommand {
	return DeviceCommand{Kind: CommandSetAttribute, Attribute: AttrZones, Value: zones}
}
