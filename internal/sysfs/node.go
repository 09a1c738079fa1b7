// Package sysfs provides access to the kernel sysfs attribute files this
// daemon owns. A Node is a single pseudo-file that can be read or written as
// a string; the interface exists so tests can run without real hardware.
package sysfs

import (
	"fmt"
	"os"
	"strings"
)

var ErrWriteFailed = fmt.Errorf("failed to write to sysfs node")

// Node defines the minimal interface for a sysfs attribute file.
type Node interface {
	// Read returns the current attribute value with trailing whitespace
	// stripped.
	Read() (string, error)
	// Write replaces the attribute value.
	Write(value string) error
	// Path returns the filesystem path of the attribute, for diagnostics.
	Path() string
}

// FileNode is a Node backed by a real sysfs pseudo-file.
type FileNode struct {
	path string
}

// NewFileNode creates a FileNode for the attribute at path. The file is not
// opened until the first Read or Write; a missing node surfaces as an error
// from those calls.
func NewFileNode(path string) *FileNode {
	return &FileNode{path: path}
}

func (n *FileNode) Path() string {
	return n.path
}

func (n *FileNode) Read() (string, error) {
	data, err := os.ReadFile(n.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", n.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (n *FileNode) Write(value string) error {
	// Sysfs attributes are opened and written in one shot; the kernel applies
	// the value on close. Kernel-side rejection is not visible here.
	if err := os.WriteFile(n.path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, n.path, err)
	}
	return nil
}

// ReadOrDefault returns the node's value, or def when the read fails. Reads
// in this daemon are best-effort; a missing or unreadable attribute degrades
// to the default rather than failing the operation.
func ReadOrDefault(n Node, def string) string {
	value, err := n.Read()
	if err != nil {
		return def
	}
	return value
}
