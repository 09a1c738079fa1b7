// Package hal exports the in-screen fingerprint adapter on the message bus
// for the OS biometrics framework. Methods map 1:1 to the adapter
// operations; the registered-callback contract is realised as FingerDown
// and FingerUp signals emitted on the exported object.
package hal

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/banshee-data/inscreen.hal/internal/fod"
)

// Bus identity of the exported fingerprint service.
const (
	BusName       = "io.banshee.Fingerprint"
	ObjectPath    = dbus.ObjectPath("/io/banshee/Fingerprint/Inscreen")
	InterfaceName = "io.banshee.Fingerprint.Inscreen"

	signalFingerDown = InterfaceName + ".FingerDown"
	signalFingerUp   = InterfaceName + ".FingerUp"
)

// busConn is the slice of *dbus.Conn the service needs. Tests substitute a
// recording fake.
type busConn interface {
	Export(v interface{}, path dbus.ObjectPath, iface string) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Service owns the bus-facing side of the adapter.
type Service struct {
	conn    busConn
	adapter *fod.Adapter
	object  *object
}

// New wires a Service to an established bus connection.
func New(conn *dbus.Conn, adapter *fod.Adapter) (*Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("hal: nil bus connection")
	}
	return newService(conn, adapter)
}

func newService(conn busConn, adapter *fod.Adapter) (*Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("hal: nil bus connection")
	}
	if adapter == nil {
		return nil, fmt.Errorf("hal: nil adapter")
	}
	s := &Service{conn: conn, adapter: adapter}
	s.object = &object{adapter: adapter}
	return s, nil
}

// Export publishes the adapter on the bus, claims the well-known name, and
// registers the service as the adapter's finger down/up listener.
func (s *Service) Export() error {
	if err := s.conn.Export(s.object, ObjectPath, InterfaceName); err != nil {
		return fmt.Errorf("hal: export %s: %w", InterfaceName, err)
	}
	if err := s.conn.Export(introspect.NewIntrospectable(introspectNode()), ObjectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("hal: export introspection: %w", err)
	}

	reply, err := s.conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("hal: request bus name %s: %w", BusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("hal: bus name %s already owned", BusName)
	}

	s.adapter.SetCallback(s)
	return nil
}

// OnFingerDown emits the FingerDown signal. Part of the fod.Callback
// contract; emission failures are logged by the adapter.
func (s *Service) OnFingerDown() error {
	return s.conn.Emit(ObjectPath, signalFingerDown)
}

// OnFingerUp emits the FingerUp signal.
func (s *Service) OnFingerUp() error {
	return s.conn.Emit(ObjectPath, signalFingerUp)
}

// object carries the exported methods. Every method returns *dbus.Error
// last, as the bus library requires.
type object struct {
	adapter *fod.Adapter
}

func (o *object) OnPress() *dbus.Error {
	o.adapter.OnPress()
	return nil
}

func (o *object) OnRelease() *dbus.Error {
	o.adapter.OnRelease()
	return nil
}

func (o *object) OnShowFODView() *dbus.Error {
	o.adapter.OnShowFODView()
	return nil
}

func (o *object) OnHideFODView() *dbus.Error {
	o.adapter.OnHideFODView()
	return nil
}

func (o *object) OnStartEnroll() *dbus.Error {
	o.adapter.OnStartEnroll()
	return nil
}

func (o *object) OnFinishEnroll() *dbus.Error {
	o.adapter.OnFinishEnroll()
	return nil
}

func (o *object) GetPositionX() (int32, *dbus.Error) {
	return o.adapter.PositionX(), nil
}

func (o *object) GetPositionY() (int32, *dbus.Error) {
	return o.adapter.PositionY(), nil
}

func (o *object) GetSize() (int32, *dbus.Error) {
	return o.adapter.Size(), nil
}

func (o *object) HandleAcquired(acquiredInfo, vendorCode int32) (bool, *dbus.Error) {
	return o.adapter.HandleAcquired(acquiredInfo, vendorCode), nil
}

func (o *object) HandleError(code, vendorCode int32) (bool, *dbus.Error) {
	return o.adapter.HandleError(code, vendorCode), nil
}

func (o *object) SetLongPressEnabled(enabled bool) *dbus.Error {
	o.adapter.SetLongPressEnabled(enabled)
	return nil
}

func (o *object) GetDimAmount(brightness int32) (int32, *dbus.Error) {
	return o.adapter.DimAmount(brightness), nil
}

func (o *object) ShouldBoostBrightness() (bool, *dbus.Error) {
	return o.adapter.ShouldBoostBrightness(), nil
}

func introspectNode() *introspect.Node {
	return &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: InterfaceName,
				Methods: []introspect.Method{
					{Name: "OnPress"},
					{Name: "OnRelease"},
					{Name: "OnShowFODView"},
					{Name: "OnHideFODView"},
					{Name: "OnStartEnroll"},
					{Name: "OnFinishEnroll"},
					{Name: "GetPositionX", Args: []introspect.Arg{{Name: "x", Type: "i", Direction: "out"}}},
					{Name: "GetPositionY", Args: []introspect.Arg{{Name: "y", Type: "i", Direction: "out"}}},
					{Name: "GetSize", Args: []introspect.Arg{{Name: "size", Type: "i", Direction: "out"}}},
					{Name: "HandleAcquired", Args: []introspect.Arg{
						{Name: "acquiredInfo", Type: "i", Direction: "in"},
						{Name: "vendorCode", Type: "i", Direction: "in"},
						{Name: "handled", Type: "b", Direction: "out"},
					}},
					{Name: "HandleError", Args: []introspect.Arg{
						{Name: "code", Type: "i", Direction: "in"},
						{Name: "vendorCode", Type: "i", Direction: "in"},
						{Name: "handled", Type: "b", Direction: "out"},
					}},
					{Name: "SetLongPressEnabled", Args: []introspect.Arg{{Name: "enabled", Type: "b", Direction: "in"}}},
					{Name: "GetDimAmount", Args: []introspect.Arg{
						{Name: "brightness", Type: "i", Direction: "in"},
						{Name: "dim", Type: "i", Direction: "out"},
					}},
					{Name: "ShouldBoostBrightness", Args: []introspect.Arg{{Name: "boost", Type: "b", Direction: "out"}}},
				},
				Signals: []introspect.Signal{
					{Name: "FingerDown"},
					{Name: "FingerUp"},
				},
			},
		},
	}
}
