// Package sensorctl talks to the vendor sensor-control service that owns the
// in-screen fingerprint hardware. The service accepts small opcode/parameter
// requests and raises acquisition events as the sensor classifies samples.
package sensorctl

import "context"

// Request opcodes and parameters understood by the vendor service. The
// values are fixed by the vendor firmware and are not negotiable.
const (
	// OpFingerState notifies the sensor of finger press state changes.
	OpFingerState int32 = 22

	// ParamPressed and ParamReleased are the finger-state parameters.
	ParamPressed  int32 = 2
	ParamReleased int32 = 1
)

// FingerprintInterfaceName is the biometrics interface identifier the vendor
// service expects as the finger-state request payload.
const FingerprintInterfaceName = "android.hardware.biometrics.fingerprint@2.1::IBiometricsFingerprint"

// FingerStatePayload returns the finger-state request payload: the interface
// name as ASCII bytes with a trailing zero terminator.
func FingerStatePayload() []byte {
	payload := make([]byte, 0, len(FingerprintInterfaceName)+1)
	payload = append(payload, FingerprintInterfaceName...)
	payload = append(payload, 0)
	return payload
}

// ResultFunc receives the asynchronous result of a request: a status code
// and an opaque response blob. It must return promptly and must not panic.
type ResultFunc func(status int32, data []byte)

// DiscardResult is a ResultFunc that ignores the response, for
// fire-and-forget requests like the finger-state notifications.
func DiscardResult(int32, []byte) {}

// Requester issues requests to the vendor sensor-control service. Request
// returns once the request is queued; the result, if any, arrives later via
// the ResultFunc. A nil ResultFunc discards the response.
type Requester interface {
	Request(ctx context.Context, opcode, param int32, payload []byte, result ResultFunc) error
}
