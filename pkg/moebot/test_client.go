package moebot

import (
	"fmt"
	"sync"
)

// TestClient is an in-memory mower. Push delivers a payload on the caller's
// goroutine, the same way a real client delivers on its own.
type TestClient struct {
	DeviceId string

	mu        sync.Mutex
	listener  Listener
	commands  []string
	failWith  error
	pollState Payload
}

func NewTestClient(id string) *TestClient {
	return &TestClient{DeviceId: id}
}

func (c *TestClient) Id() string {
	return c.DeviceId
}

func (c *TestClient) Listen(listener Listener) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = listener
	return nil
}

func (c *TestClient) Unlisten() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = nil
}

func (c *TestClient) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listener != nil
}

// Push delivers a payload to the registered listener, if any.
func (c *TestClient) Push(payload Payload) {
	c.mu.Lock()
	listener := c.listener
	c.mu.Unlock()
	if listener != nil {
		listener(payload)
	}
}

// SetPollState sets the payload pushed back when Poll is called.
func (c *TestClient) SetPollState(payload Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollState = payload
}

// FailWith makes every following command fail with err. nil clears it.
func (c *TestClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

// Commands returns the commands received so far.
func (c *TestClient) Commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.commands...)
}

func (c *TestClient) record(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.commands = append(c.commands, cmd)
	return nil
}

func (c *TestClient) Poll() error {
	if err := c.record("poll"); err != nil {
		return err
	}
	c.mu.Lock()
	state := c.pollState
	c.mu.Unlock()
	if state != nil {
		c.Push(state)
	}
	return nil
}

func (c *TestClient) Start() error {
	return c.record("start")
}

func (c *TestClient) Pause() error {
	return c.record("pause")
}

func (c *TestClient) Dock() error {
	return c.record("dock")
}

func (c *TestClient) Cancel() error {
	return c.record("cancel")
}

func (c *TestClient) SetMowTime(hours int) error {
	return c.record(fmt.Sprintf("mow_time=%d", hours))
}

func (c *TestClient) SetMowInRain(enabled bool) error {
	return c.record(fmt.Sprintf("mow_in_rain=%t", enabled))
}

func (c *TestClient) SetZones(values [ZoneValueCount]int) error {
	return c.record(fmt.Sprintf("zones=%v", values))
}

// ensure interface compliance
var _ Client = (*TestClient)(nil)
