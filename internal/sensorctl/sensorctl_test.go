package sensorctl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerStatePayload(t *testing.T) {
	payload := FingerStatePayload()

	require.NotEmpty(t, payload)
	assert.Equal(t, byte(0), payload[len(payload)-1], "payload must be zero-terminated")
	assert.Equal(t, FingerprintInterfaceName, string(payload[:len(payload)-1]))
}

func TestMockRequester_Records(t *testing.T) {
	m := NewMockRequester()
	m.Status = 7

	var gotStatus int32 = -1
	err := m.Request(context.Background(), OpFingerState, ParamPressed, FingerStatePayload(), func(status int32, _ []byte) {
		gotStatus = status
	})
	require.NoError(t, err)
	assert.Equal(t, int32(7), gotStatus)

	req, ok := m.LastRequest()
	require.True(t, ok)
	assert.Equal(t, OpFingerState, req.Opcode)
	assert.Equal(t, ParamPressed, req.Param)
	assert.Equal(t, FingerStatePayload(), req.Payload)
}

func TestMockRequester_Error(t *testing.T) {
	m := NewMockRequester()
	m.Err = errors.New("bus gone")

	err := m.Request(context.Background(), OpFingerState, ParamReleased, nil, nil)
	require.Error(t, err)

	_, ok := m.LastRequest()
	assert.False(t, ok, "failed request must not be recorded")
}

func TestDiscardResult(t *testing.T) {
	// Must tolerate any input without side effects.
	DiscardResult(0, nil)
	DiscardResult(-1, []byte{1, 2, 3})
}

func TestAcquiredArgs(t *testing.T) {
	info, code, ok := acquiredArgs([]interface{}{int32(6), int32(10002)})
	require.True(t, ok)
	assert.Equal(t, int32(6), info)
	assert.Equal(t, int32(10002), code)

	_, _, ok = acquiredArgs([]interface{}{int32(6)})
	assert.False(t, ok)

	_, _, ok = acquiredArgs([]interface{}{"6", "10002"})
	assert.False(t, ok)
}
