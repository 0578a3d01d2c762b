package service

import (
	"errors"
	"testing"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"
	"github.com/berfenger/moebot2mqtt/pkg/moebot"
	"github.com/stretchr/testify/assert"
)

func TestDeviceServiceCommands(t *testing.T) {

	assert := assert.New(t)

	client := moebot.NewTestClient("dev1")
	srv := NewMoebotDeviceService(client)

	assert.NoError(srv.Execute(domain.StartCommand()))
	assert.NoError(srv.Execute(domain.PauseCommand()))
	assert.NoError(srv.Execute(domain.DockCommand()))
	assert.NoError(srv.Execute(domain.CancelCommand()))
	assert.NoError(srv.Execute(domain.PollCommand()))
	assert.NoError(srv.Execute(domain.SetMowTimeCommand(6)))
	assert.NoError(srv.Execute(domain.SetMowInRainCommand(true)))

	zones := domain.ZoneConfig{{Distance: 1, Ratio: 2}, {Distance: 3, Ratio: 4}}
	assert.NoError(srv.Execute(domain.SetZonesCommand(zones)))

	assert.Equal([]string{
		"start", "pause", "dock", "cancel", "poll",
		"mow_time=6", "mow_in_rain=true",
		"zones=[1 2 3 4 0 0 0 0 0 0]",
	}, client.Commands())
}

func TestDeviceServiceValidation(t *testing.T) {

	client := moebot.NewTestClient("dev1")
	srv := NewMoebotDeviceService(client)

	err := srv.Execute(domain.SetMowTimeCommand(13))
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := domain.ZoneConfig{{Distance: 201, Ratio: 0}}
	err = srv.Execute(domain.SetZonesCommand(bad))
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = srv.Execute(domain.DeviceCommand{Kind: domain.CommandSetAttribute, Attribute: domain.AttrBattery, Value: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, client.Commands(), "device must not be touched on validation errors")
}

func TestDeviceServiceCommandFailure(t *testing.T) {

	client := moebot.NewTestClient("dev1")
	client.FailWith(moebot.ErrTimeout)
	srv := NewMoebotDeviceService(client)

	err := srv.Execute(domain.DockCommand())
	assert.ErrorIs(t, err, domain.ErrCommand)
	assert.True(t, errors.Is(err, moebot.ErrTimeout))
}

func TestDeviceServiceListen(t *testing.T) {

	client := moebot.NewTestClient("dev1")
	srv := NewMoebotDeviceService(client)

	var got []domain.Notification
	assert.NoError(t, srv.Listen(func(n domain.Notification) { got = append(got, n) }))
	client.Push(moebot.Payload{"battery": 50})

	if assert.Len(t, got, 1) {
		assert.Equal(t, 50, got[0].Payload["battery"])
		assert.False(t, got[0].ReceivedAt.IsZero())
	}
	srv.Unlisten()
	assert.False(t, client.Listening())
	assert.Equal(t, "dev1", srv.DeviceId())
}
