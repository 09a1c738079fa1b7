package sensorctl

import (
	"context"
	"sync"
)

// RecordedRequest captures one call to MockRequester.Request.
type RecordedRequest struct {
	Opcode  int32
	Param   int32
	Payload []byte
}

// MockRequester implements Requester for testing. It records every request
// and replies immediately with the scripted status and data.
type MockRequester struct {
	mu sync.Mutex

	// Err is returned by Request if set.
	Err error

	// Status and Data are delivered to the result callback.
	Status int32
	Data   []byte

	requests []RecordedRequest
}

// NewMockRequester creates an empty MockRequester.
func NewMockRequester() *MockRequester {
	return &MockRequester{}
}

func (m *MockRequester) Request(_ context.Context, opcode, param int32, payload []byte, result ResultFunc) error {
	m.mu.Lock()
	if m.Err != nil {
		err := m.Err
		m.mu.Unlock()
		return err
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	m.requests = append(m.requests, RecordedRequest{Opcode: opcode, Param: param, Payload: p})
	status, data := m.Status, m.Data
	m.mu.Unlock()

	if result != nil {
		result(status, data)
	}
	return nil
}

// Requests returns a copy of all recorded requests in order.
func (m *MockRequester) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, if any.
func (m *MockRequester) LastRequest() (RecordedRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return RecordedRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}
