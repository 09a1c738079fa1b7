package sensorctl

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/banshee-data/inscreen.hal/internal/monitoring"
)

// D-Bus identity of the vendor sensor-control service.
const (
	BusName       = "vendor.sensor.Control"
	objectPath    = "/vendor/sensor/Control"
	interfaceName = "vendor.sensor.Control"

	methodRequest  = interfaceName + ".Request"
	signalAcquired = interfaceName + ".Acquired"
)

// Client is a Requester backed by the vendor service's D-Bus interface. It
// also surfaces the service's acquisition-event signal stream.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient wraps an established bus connection. A nil connection is refused
// outright: every later call would fail in an undefined way, so the daemon
// fails fast at construction instead.
func NewClient(conn *dbus.Conn) (*Client, error) {
	if conn == nil {
		return nil, fmt.Errorf("sensorctl: nil bus connection")
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(BusName, objectPath),
	}, nil
}

// Request issues an asynchronous request to the vendor service. The reply is
// delivered to result on a separate goroutine; transport errors are logged
// and otherwise swallowed, matching the fire-and-forget contract.
func (c *Client) Request(ctx context.Context, opcode, param int32, payload []byte, result ResultFunc) error {
	ch := make(chan *dbus.Call, 1)
	c.obj.GoWithContext(ctx, methodRequest, 0, ch, opcode, param, payload)

	go func() {
		call := <-ch
		if call.Err != nil {
			monitoring.Logf("sensorctl: request opcode=%d param=%d failed: %v", opcode, param, call.Err)
			return
		}
		if result == nil {
			return
		}
		var status int32
		var data []byte
		if err := call.Store(&status, &data); err != nil {
			monitoring.Logf("sensorctl: malformed reply for opcode=%d: %v", opcode, err)
			return
		}
		result(status, data)
	}()

	return nil
}

// WatchAcquired subscribes to the vendor service's Acquired signal and feeds
// each event to handle until ctx is cancelled. The handler's boolean return
// is the usual "handled" flag; unhandled events have already been logged by
// the handler, so they are only counted at debug level here.
func (c *Client) WatchAcquired(ctx context.Context, handle func(acquiredInfo, vendorCode int32) bool) error {
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(interfaceName),
		dbus.WithMatchMember("Acquired"),
	); err != nil {
		return fmt.Errorf("sensorctl: subscribe to acquisition events: %w", err)
	}

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			if sig.Name != signalAcquired {
				continue
			}
			info, code, ok := acquiredArgs(sig.Body)
			if !ok {
				monitoring.Logf("sensorctl: malformed Acquired signal body: %v", sig.Body)
				continue
			}
			if !handle(info, code) {
				monitoring.Debugf("sensorctl: acquisition event not handled: acquiredInfo=%d vendorCode=%d", info, code)
			}
		}
	}
}

func acquiredArgs(body []interface{}) (acquiredInfo, vendorCode int32, ok bool) {
	if len(body) != 2 {
		return 0, 0, false
	}
	acquiredInfo, ok = body[0].(int32)
	if !ok {
		return 0, 0, false
	}
	vendorCode, ok = body[1].(int32)
	return acquiredInfo, vendorCode, ok
}
