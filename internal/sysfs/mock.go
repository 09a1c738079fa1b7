package sysfs

import "sync"

// TestableNode implements Node with configurable behaviour for testing.
// It records every write and serves scripted read values and errors.
type TestableNode struct {
	mu sync.Mutex

	// NodePath is returned by Path.
	NodePath string

	// ReadValue is returned by Read when ReadError is nil.
	ReadValue string

	// ReadError is returned by Read if set.
	ReadError error

	// WriteError is returned by Write if set.
	WriteError error

	// Persist mimics attributes like backlight brightness where a read
	// returns the last written value.
	Persist bool

	writes []string
}

// NewTestableNode creates a TestableNode with an initial read value.
func NewTestableNode(path, value string) *TestableNode {
	return &TestableNode{NodePath: path, ReadValue: value}
}

func (n *TestableNode) Path() string {
	return n.NodePath
}

func (n *TestableNode) Read() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ReadError != nil {
		return "", n.ReadError
	}
	return n.ReadValue, nil
}

func (n *TestableNode) Write(value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.WriteError != nil {
		return n.WriteError
	}
	n.writes = append(n.writes, value)
	if n.Persist {
		n.ReadValue = value
	}
	return nil
}

// Writes returns a copy of all recorded writes in order.
func (n *TestableNode) Writes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.writes))
	copy(out, n.writes)
	return out
}

// LastWrite returns the most recent write, or "" if nothing was written.
func (n *TestableNode) LastWrite() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.writes) == 0 {
		return ""
	}
	return n.writes[len(n.writes)-1]
}

// SetReadValue replaces the scripted read value.
func (n *TestableNode) SetReadValue(value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ReadValue = value
}

// SetReadError sets the error returned by subsequent reads.
func (n *TestableNode) SetReadError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ReadError = err
}

// SetWriteError sets the error returned by subsequent writes.
func (n *TestableNode) SetWriteError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.WriteError = err
}
