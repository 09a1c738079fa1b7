package fod

import (
	"time"

	"github.com/banshee-data/inscreen.hal/internal/variant"
)

// Status is a read-only snapshot of the adapter for the status endpoint.
type Status struct {
	Variant       variant.Variant `json:"variant"`
	PositionX     int32           `json:"position_x"`
	PositionY     int32           `json:"position_y"`
	Size          int32           `json:"size"`
	Pressed       bool            `json:"pressed"`
	LastPressAt   *time.Time      `json:"last_press_at,omitempty"`
	LastReleaseAt *time.Time      `json:"last_release_at,omitempty"`
	EnrollSession string          `json:"enroll_session,omitempty"`
}

// Status returns a point-in-time snapshot of the adapter state.
func (a *Adapter) Status() Status {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	s := Status{
		Variant:       a.variant,
		PositionX:     a.geometry.PositionX,
		PositionY:     a.geometry.PositionY,
		Size:          a.geometry.Size,
		Pressed:       a.pressed,
		EnrollSession: a.enrollSession,
	}
	if !a.lastPressAt.IsZero() {
		t := a.lastPressAt
		s.LastPressAt = &t
	}
	if !a.lastReleaseAt.IsZero() {
		t := a.lastReleaseAt
		s.LastReleaseAt = &t
	}
	return s
}
