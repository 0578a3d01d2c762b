package domain

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_DEVICE       = "device"
	ACTOR_ID_HOST         = "host"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type DeviceCommandRequest struct {
	ActorRequestMixIn
	CommandId uint64
	Command   DeviceCommand
}

type DeviceCommandResponse struct {
	ActorResponseMixIn
	CommandId uint64
	Command   DeviceCommand
}

type GetDiscoveryRequest struct {
	ActorRequestMixIn
}

type GetDiscoveryResponse struct {
	ActorResponseMixIn
	Components Components
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Components Components
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}

// InvokeCommandRequest asks the host to run a command through the command
// proxy. The reply is a DeviceCommandResponse.
type InvokeCommandRequest struct {
	ActorRequestMixIn
	Command DeviceCommand
}

// RefreshAllRequest asks the host to render every entity again from the
// current cache, for subscribers that missed earlier renders.
type RefreshAllRequest struct {
}

type GetStateRequest struct {
	ActorRequestMixIn
}

type GetStateResponse struct {
	ActorResponseMixIn
	Version uint64
	Values  map[string]any
}
