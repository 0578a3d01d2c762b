package actor

import (
	"errors"
	"fmt"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// CommandProxy issues device commands from the host actor. The blocking call
// runs on the device actor; the response comes back through the host mailbox
// and completes the pending callback there. It never touches the state cache:
// a set_attribute only shows up once the device pushes the new value.
//
// Not safe for concurrent use; it belongs to the host actor.
type CommandProxy struct {
	device  *actor.PID
	nextId  uint64
	pending map[uint64]pendingCommand
	logger  *zap.Logger
}

type pendingCommand struct {
	command domain.DeviceCommand
	onDone  func(error)
}

func NewCommandProxy(device *actor.PID, logger *zap.Logger) *CommandProxy {
	return &CommandProxy{
		device:  device,
		pending: map[uint64]pendingCommand{},
		logger:  logger,
	}
}

// Invoke sends cmd to the device actor and returns immediately. onDone runs
// on the host actor with nil or an error wrapping domain.ErrCommand.
func (p *CommandProxy) Invoke(ctx actor.Context, cmd domain.DeviceCommand, onDone func(error)) uint64 {
	p.nextId++
	id := p.nextId
	p.pending[id] = pendingCommand{command: cmd, onDone: onDone}
	p.logger.Debug("proxy: invoke", zap.Uint64("id", id), zap.Stringer("command", cmd))
	ctx.Send(p.device, domain.DeviceCommandRequest{
		ActorRequestMixIn: domain.ActorRequestMixIn{
			ReplyToRef: domain.RefOf(ctx.Self()),
		},
		CommandId: id,
		Command:   cmd,
	})
	return id
}

// Complete resolves the pending command matching resp. It reports false for
// responses that match nothing.
func (p *CommandProxy) Complete(resp domain.DeviceCommandResponse) bool {
	pending, ok := p.pending[resp.CommandId]
	if !ok {
		p.logger.Warn("proxy: response for unknown command", zap.Uint64("id", resp.CommandId))
		return false
	}
	delete(p.pending, resp.CommandId)

	err := resp.GetResponseError()
	if err != nil {
		err = commandError(pending.command, err)
		p.logger.Error("proxy: command failed", zap.Uint64("id", resp.CommandId),
			zap.Stringer("command", pending.command), zap.Error(err))
	}
	if pending.onDone != nil {
		pending.onDone(err)
	}
	return true
}

func (p *CommandProxy) Pending() int {
	return len(p.pending)
}

// commandError keeps validation errors as they are and wraps everything else
// as a command failure.
func commandError(cmd domain.DeviceCommand, err error) error {
	if errors.Is(err, domain.ErrCommand) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrCommand, cmd, err)
}
