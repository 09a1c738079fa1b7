// Package fod implements the in-screen fingerprint adapter. It translates
// press/release and overlay events from the biometrics framework into
// touch-panel and backlight sysfs writes plus finger-state notifications to
// the vendor sensor-control service, and routes the sensor's acquisition
// events back to a registered listener.
package fod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/inscreen.hal/internal/monitoring"
	"github.com/banshee-data/inscreen.hal/internal/sensorctl"
	"github.com/banshee-data/inscreen.hal/internal/sysfs"
	"github.com/banshee-data/inscreen.hal/internal/timeutil"
	"github.com/banshee-data/inscreen.hal/internal/variant"
)

// Acquisition event codes raised by the sensor driver. AcquiredVendor marks
// an event whose meaning lives in the vendor sub-code.
const (
	AcquiredVendor       int32 = 6
	VendorCodeFingerDown int32 = 10002
	VendorCodeFingerUp   int32 = 10001
)

// Touch-panel commands for the fingerprint-on-display sensing mode.
const (
	cmdFODEnable  = "fod_enable,1,1,0"
	cmdFODDisable = "fod_enable,0"
)

// DefaultPressedBrightness is the backlight value forced while a finger
// rests on the sensor. The optical sensor needs a fixed, elevated panel
// brightness to image the finger.
const DefaultPressedBrightness = "331"

// Callback receives finger down/up notifications derived from acquisition
// events. Implementations must tolerate concurrent invocation; returned
// errors are logged by the adapter, never propagated to the sensor driver.
type Callback interface {
	OnFingerDown() error
	OnFingerUp() error
}

// Config is the immutable construction-time configuration of the adapter.
type Config struct {
	// Variant selects the sensor geometry and panel hit region.
	Variant variant.Variant

	// PressedBrightness overrides DefaultPressedBrightness when non-empty.
	PressedBrightness string

	// Clock supplies status timestamps. Defaults to the real clock.
	Clock timeutil.Clock
}

// Adapter is the in-screen fingerprint adapter. It is safe for concurrent
// use: the hosting service calls into it from the sensor event thread, the
// framework registration path, and the display/input paths.
type Adapter struct {
	variant           variant.Variant
	geometry          variant.Geometry
	pressedBrightness string
	clock             timeutil.Clock

	panel     sysfs.Node
	backlight sysfs.Node
	sensor    sensorctl.Requester

	// callbackMu guards callback registration and the read snapshot taken
	// before dispatch. It is not held across the callback invocation.
	callbackMu sync.Mutex
	callback   Callback

	// brightnessMu guards the pre-press brightness snapshot. Press and
	// release correspond to one physical gesture, but the bus dispatcher may
	// still run them concurrently.
	brightnessMu    sync.Mutex
	savedBrightness string

	stateMu       sync.Mutex
	pressed       bool
	lastPressAt   time.Time
	lastReleaseAt time.Time
	enrollSession string
}

// New builds the adapter and configures the touch panel: the per-variant
// FOD hit region (skipped, with an error log, for unknown variants) followed
// unconditionally by the sensing-mode enable command. Panel write failures
// are logged and tolerated; a nil collaborator is a construction error.
func New(cfg Config, sensor sensorctl.Requester, panel, backlight sysfs.Node) (*Adapter, error) {
	if sensor == nil {
		return nil, fmt.Errorf("fod: nil sensor-control service")
	}
	if panel == nil {
		return nil, fmt.Errorf("fod: nil panel command node")
	}
	if backlight == nil {
		return nil, fmt.Errorf("fod: nil backlight node")
	}

	pressed := cfg.PressedBrightness
	if pressed == "" {
		pressed = DefaultPressedBrightness
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	a := &Adapter{
		variant:           cfg.Variant,
		geometry:          cfg.Variant.Geometry(),
		pressedBrightness: pressed,
		clock:             clock,
		panel:             panel,
		backlight:         backlight,
		sensor:            sensor,
	}

	if cmd, ok := cfg.Variant.FODRectCommand(); ok {
		if err := a.panel.Write(cmd); err != nil {
			monitoring.Logf("fod: configure hit region: %v", err)
		}
	} else {
		monitoring.Logf("fod: device variant %q not recognised, not setting set_fod_rect", cfg.Variant)
	}
	if err := a.panel.Write(cmdFODEnable); err != nil {
		monitoring.Logf("fod: enable sensing mode: %v", err)
	}

	return a, nil
}

// Variant returns the device variant the adapter was built for.
func (a *Adapter) Variant() variant.Variant {
	return a.variant
}

// OnPress snapshots the current backlight brightness, forces the elevated
// press brightness, and notifies the vendor service. The snapshot defaults
// to empty when the read fails, in which case the matching release restores
// nothing.
func (a *Adapter) OnPress() {
	a.brightnessMu.Lock()
	a.savedBrightness = sysfs.ReadOrDefault(a.backlight, "")
	if err := a.backlight.Write(a.pressedBrightness); err != nil {
		monitoring.Logf("fod: set press brightness: %v", err)
	}
	a.brightnessMu.Unlock()

	a.notifyFingerState(sensorctl.ParamPressed)

	a.stateMu.Lock()
	a.pressed = true
	a.lastPressAt = a.clock.Now()
	a.stateMu.Unlock()
}

// OnRelease notifies the vendor service, disables FOD sensing mode, and
// restores the snapshotted brightness if one was saved.
func (a *Adapter) OnRelease() {
	a.notifyFingerState(sensorctl.ParamReleased)
	if err := a.panel.Write(cmdFODDisable); err != nil {
		monitoring.Logf("fod: disable sensing mode: %v", err)
	}
	a.restoreBrightness()

	a.stateMu.Lock()
	a.pressed = false
	a.lastReleaseAt = a.clock.Now()
	a.stateMu.Unlock()
}

// OnShowFODView is a no-op. Brightness is handled on the press path, not on
// overlay visibility; only hide pairs with it.
func (a *Adapter) OnShowFODView() {}

// OnHideFODView disables FOD sensing mode and restores the snapshotted
// brightness. Unlike OnRelease it sends no finger-state notification: the
// overlay can be hidden without a release event, and the panel and
// backlight must still be put back.
func (a *Adapter) OnHideFODView() {
	if err := a.panel.Write(cmdFODDisable); err != nil {
		monitoring.Logf("fod: disable sensing mode: %v", err)
	}
	a.restoreBrightness()

	a.stateMu.Lock()
	a.pressed = false
	a.stateMu.Unlock()
}

// restoreBrightness writes back the pre-press brightness and clears the
// snapshot. With no snapshot it does nothing, which makes a second release
// or hide idempotent on the backlight.
func (a *Adapter) restoreBrightness() {
	a.brightnessMu.Lock()
	defer a.brightnessMu.Unlock()
	if a.savedBrightness == "" {
		return
	}
	if err := a.backlight.Write(a.savedBrightness); err != nil {
		monitoring.Logf("fod: restore brightness: %v", err)
	}
	a.savedBrightness = ""
}

// notifyFingerState sends the fire-and-forget finger-state request. The
// result is deliberately discarded.
func (a *Adapter) notifyFingerState(param int32) {
	err := a.sensor.Request(context.Background(), sensorctl.OpFingerState, param,
		sensorctl.FingerStatePayload(), sensorctl.DiscardResult)
	if err != nil {
		monitoring.Logf("fod: finger-state notification (param=%d): %v", param, err)
	}
}

// HandleAcquired translates an acquisition event into a finger down/up
// callback invocation. It returns false ("not handled") when no callback is
// registered or the codes are not the recognised vendor pair. Callback
// errors are logged; the event still counts as handled.
func (a *Adapter) HandleAcquired(acquiredInfo, vendorCode int32) bool {
	a.callbackMu.Lock()
	cb := a.callback
	a.callbackMu.Unlock()

	if cb == nil {
		return false
	}

	if acquiredInfo == AcquiredVendor {
		switch vendorCode {
		case VendorCodeFingerDown:
			if err := cb.OnFingerDown(); err != nil {
				monitoring.Logf("fod: FingerDown callback: %v", err)
			}
			return true
		case VendorCodeFingerUp:
			if err := cb.OnFingerUp(); err != nil {
				monitoring.Logf("fod: FingerUp callback: %v", err)
			}
			return true
		}
	}

	monitoring.Logf("fod: unhandled acquisition event: acquiredInfo=%d vendorCode=%d", acquiredInfo, vendorCode)
	return false
}

// HandleError reports sensor errors as not handled; the framework's default
// handling applies.
func (a *Adapter) HandleError(int32, int32) bool {
	return false
}

// SetCallback registers the listener for finger down/up notifications.
// A nil callback unregisters.
func (a *Adapter) SetCallback(cb Callback) {
	a.callbackMu.Lock()
	a.callback = cb
	a.callbackMu.Unlock()
}

// PositionX returns the left edge of the sensor hit region, or 0 for an
// unknown variant.
func (a *Adapter) PositionX() int32 {
	return a.geometry.PositionX
}

// PositionY returns the top edge of the sensor hit region, or 0 for an
// unknown variant.
func (a *Adapter) PositionY() int32 {
	return a.geometry.PositionY
}

// Size returns the edge length of the square sensor hit region, or 0 for an
// unknown variant.
func (a *Adapter) Size() int32 {
	return a.geometry.Size
}

// SetLongPressEnabled accepts the setting but has no effect; the hardware
// does not support it.
func (a *Adapter) SetLongPressEnabled(bool) {}

// DimAmount always returns 0; the panel does not dim around the sensor.
func (a *Adapter) DimAmount(int32) int32 {
	return 0
}

// ShouldBoostBrightness always returns false; the press path already forces
// the brightness the sensor needs.
func (a *Adapter) ShouldBoostBrightness() bool {
	return false
}

// OnStartEnroll opens an enroll session. The hardware needs no preparation;
// the session ID only identifies the enrollment in logs and status output.
func (a *Adapter) OnStartEnroll() {
	a.stateMu.Lock()
	a.enrollSession = uuid.NewString()
	session := a.enrollSession
	a.stateMu.Unlock()
	monitoring.Logf("fod: enroll started: session=%s", session)
}

// OnFinishEnroll closes the current enroll session, if any.
func (a *Adapter) OnFinishEnroll() {
	a.stateMu.Lock()
	session := a.enrollSession
	a.enrollSession = ""
	a.stateMu.Unlock()
	if session != "" {
		monitoring.Logf("fod: enroll finished: session=%s", session)
	}
}
