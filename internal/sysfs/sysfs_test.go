package sysfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileNode_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness")
	node := NewFileNode(path)

	if err := node.Write("331"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := node.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "331" {
		t.Errorf("Read() = %q, want %q", got, "331")
	}
}

func TestFileNode_ReadTrimsWhitespace(t *testing.T) {
	// The kernel appends a newline to most attribute reads.
	path := filepath.Join(t.TempDir(), "brightness")
	if err := os.WriteFile(path, []byte("255\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileNode(path).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "255" {
		t.Errorf("Read() = %q, want %q", got, "255")
	}
}

func TestFileNode_ReadMissing(t *testing.T) {
	node := NewFileNode(filepath.Join(t.TempDir(), "absent"))
	if _, err := node.Read(); err == nil {
		t.Error("Read of missing node should fail")
	}
}

func TestFileNode_WriteMissingDir(t *testing.T) {
	node := NewFileNode(filepath.Join(t.TempDir(), "no", "such", "dir", "cmd"))
	err := node.Write("fod_enable,0")
	if err == nil {
		t.Fatal("Write into missing directory should fail")
	}
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("error = %v, want ErrWriteFailed", err)
	}
}

func TestReadOrDefault(t *testing.T) {
	node := NewTestableNode("/sys/test", "128")
	if got := ReadOrDefault(node, ""); got != "128" {
		t.Errorf("ReadOrDefault = %q, want %q", got, "128")
	}

	node.SetReadError(errors.New("EIO"))
	if got := ReadOrDefault(node, ""); got != "" {
		t.Errorf("ReadOrDefault on error = %q, want empty", got)
	}
}

func TestTestableNode_RecordsWrites(t *testing.T) {
	node := NewTestableNode("/sys/test", "")

	for _, cmd := range []string{"fod_enable,1,1,0", "fod_enable,0"} {
		if err := node.Write(cmd); err != nil {
			t.Fatalf("Write(%q) failed: %v", cmd, err)
		}
	}

	writes := node.Writes()
	if len(writes) != 2 {
		t.Fatalf("recorded %d writes, want 2", len(writes))
	}
	if node.LastWrite() != "fod_enable,0" {
		t.Errorf("LastWrite() = %q, want %q", node.LastWrite(), "fod_enable,0")
	}
}

func TestTestableNode_Persist(t *testing.T) {
	node := NewTestableNode("/sys/test", "90")
	node.Persist = true

	if err := node.Write("331"); err != nil {
		t.Fatal(err)
	}
	got, err := node.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != "331" {
		t.Errorf("Read after persisted write = %q, want %q", got, "331")
	}
}

func TestTestableNode_WriteError(t *testing.T) {
	node := NewTestableNode("/sys/test", "")
	node.SetWriteError(errors.New("EPERM"))

	if err := node.Write("331"); err == nil {
		t.Fatal("expected write error")
	}
	if len(node.Writes()) != 0 {
		t.Error("failed write should not be recorded")
	}
}
