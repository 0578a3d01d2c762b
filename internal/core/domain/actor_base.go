package domain

import (
	"github.com/asynkron/protoactor-go/actor"
)

// ActorRef is a PID carried inside a request as an explicit reply address.
type ActorRef actor.PID

// RefOf converts a PID into the reference carried by requests.
func RefOf(pid *actor.PID) *ActorRef {
	return (*ActorRef)(pid)
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}

// ActorRequestMixIn is embedded by every request. A nil ReplyToRef means
// "answer the sender".
type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

// ActorResponseMixIn is embedded by every response.
type ActorResponseMixIn struct {
	ResponseError error
}

// Failed builds the mixin of a response that carries err.
func Failed(err error) ActorResponseMixIn {
	return ActorResponseMixIn{ResponseError: err}
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}
