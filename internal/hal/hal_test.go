package hal

import (
	"errors"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/inscreen.hal/internal/fod"
	"github.com/banshee-data/inscreen.hal/internal/sensorctl"
	"github.com/banshee-data/inscreen.hal/internal/sysfs"
	"github.com/banshee-data/inscreen.hal/internal/variant"
)

// fakeConn records bus operations without a real message bus.
type fakeConn struct {
	mu        sync.Mutex
	exports   []string
	names     []string
	signals   []string
	nameReply dbus.RequestNameReply
	emitErr   error
}

func newFakeConn() *fakeConn {
	return &fakeConn{nameReply: dbus.RequestNameReplyPrimaryOwner}
}

func (c *fakeConn) Export(v interface{}, path dbus.ObjectPath, iface string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exports = append(c.exports, iface)
	return nil
}

func (c *fakeConn) RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, name)
	return c.nameReply, nil
}

func (c *fakeConn) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.emitErr != nil {
		return c.emitErr
	}
	c.signals = append(c.signals, name)
	return nil
}

func (c *fakeConn) Signals() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.signals))
	copy(out, c.signals)
	return out
}

func newTestAdapter(t *testing.T) *fod.Adapter {
	t.Helper()
	panel := sysfs.NewTestableNode("p", "")
	backlight := sysfs.NewTestableNode("b", "100")
	backlight.Persist = true

	adapter, err := fod.New(fod.Config{Variant: variant.VariantA525},
		sensorctl.NewMockRequester(), panel, backlight)
	require.NoError(t, err)
	return adapter
}

func TestExport_RegistersObjectAndCallback(t *testing.T) {
	conn := newFakeConn()
	adapter := newTestAdapter(t)

	svc, err := newService(conn, adapter)
	require.NoError(t, err)
	require.NoError(t, svc.Export())

	assert.Contains(t, conn.exports, InterfaceName)
	assert.Contains(t, conn.exports, "org.freedesktop.DBus.Introspectable")
	assert.Equal(t, []string{BusName}, conn.names)

	// Export registers the service as the adapter callback, so acquisition
	// events now surface as signals.
	handled := adapter.HandleAcquired(fod.AcquiredVendor, fod.VendorCodeFingerDown)
	assert.True(t, handled)
	assert.Equal(t, []string{signalFingerDown}, conn.Signals())
}

func TestExport_NameTaken(t *testing.T) {
	conn := newFakeConn()
	conn.nameReply = dbus.RequestNameReplyExists

	svc, err := newService(conn, newTestAdapter(t))
	require.NoError(t, err)
	assert.Error(t, svc.Export())
}

func TestSignals(t *testing.T) {
	conn := newFakeConn()
	svc, err := newService(conn, newTestAdapter(t))
	require.NoError(t, err)

	require.NoError(t, svc.OnFingerDown())
	require.NoError(t, svc.OnFingerUp())
	assert.Equal(t, []string{signalFingerDown, signalFingerUp}, conn.Signals())
}

func TestSignals_EmitFailure(t *testing.T) {
	conn := newFakeConn()
	conn.emitErr = errors.New("bus gone")
	adapter := newTestAdapter(t)

	svc, err := newService(conn, adapter)
	require.NoError(t, err)
	require.NoError(t, svc.Export())

	// A failing listener must not mark the event unhandled.
	assert.True(t, adapter.HandleAcquired(fod.AcquiredVendor, fod.VendorCodeFingerUp))
}

func TestObject_Delegation(t *testing.T) {
	adapter := newTestAdapter(t)
	obj := &object{adapter: adapter}

	x, derr := obj.GetPositionX()
	require.Nil(t, derr)
	assert.Equal(t, int32(421), x)

	y, derr := obj.GetPositionY()
	require.Nil(t, derr)
	assert.Equal(t, int32(2018), y)

	size, derr := obj.GetSize()
	require.Nil(t, derr)
	assert.Equal(t, int32(238), size)

	dim, derr := obj.GetDimAmount(200)
	require.Nil(t, derr)
	assert.Equal(t, int32(0), dim)

	boost, derr := obj.ShouldBoostBrightness()
	require.Nil(t, derr)
	assert.False(t, boost)

	handled, derr := obj.HandleError(1, 2)
	require.Nil(t, derr)
	assert.False(t, handled)

	handled, derr = obj.HandleAcquired(6, 10002)
	require.Nil(t, derr)
	assert.False(t, handled, "no callback registered yet")

	require.Nil(t, obj.OnPress())
	require.Nil(t, obj.OnRelease())
	require.Nil(t, obj.OnShowFODView())
	require.Nil(t, obj.OnHideFODView())
	require.Nil(t, obj.SetLongPressEnabled(true))
	require.Nil(t, obj.OnStartEnroll())
	st := adapter.Status()
	assert.NotEmpty(t, st.EnrollSession)
	require.Nil(t, obj.OnFinishEnroll())
	assert.Empty(t, adapter.Status().EnrollSession)
}

func TestNewService_NilArgs(t *testing.T) {
	_, err := newService(nil, newTestAdapter(t))
	assert.Error(t, err)

	_, err = newService(newFakeConn(), nil)
	assert.Error(t, err)
}
