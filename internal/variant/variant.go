// Package variant maps a bootloader identifier to the fixed in-screen
// fingerprint sensor geometry for the hardware SKU it names.
package variant

import (
	"fmt"
	"os"
	"strings"
)

// Variant is the hardware SKU of the handset, as named by its bootloader.
type Variant string

// Known variants. Unknown covers every bootloader string that matches no
// table entry, including the empty string.
const (
	VariantA525    Variant = "A525"
	VariantA725    Variant = "A725"
	VariantUnknown Variant = "unknown"
)

// Geometry is the sensor hit region: top-left corner and square edge length
// in panel pixels.
type Geometry struct {
	PositionX int32
	PositionY int32
	Size      int32
}

type entry struct {
	pattern  string
	variant  Variant
	geometry Geometry
}

// table is evaluated in order; the first pattern contained in the bootloader
// string wins.
var table = []entry{
	{"A525", VariantA525, Geometry{PositionX: 421, PositionY: 2018, Size: 238}},
	{"A725", VariantA725, Geometry{PositionX: 426, PositionY: 2031, Size: 228}},
}

// Detect classifies a bootloader identifier into a Variant.
func Detect(bootloader string) Variant {
	for _, e := range table {
		if strings.Contains(bootloader, e.pattern) {
			return e.variant
		}
	}
	return VariantUnknown
}

// Known reports whether v is a recognised hardware SKU.
func (v Variant) Known() bool {
	for _, e := range table {
		if e.variant == v {
			return true
		}
	}
	return false
}

// Geometry returns the sensor geometry for v. Unknown variants report an
// all-zero geometry.
func (v Variant) Geometry() Geometry {
	for _, e := range table {
		if e.variant == v {
			return e.geometry
		}
	}
	return Geometry{}
}

// FODRectCommand returns the touch-panel command configuring the sensor hit
// region for v, and false for unknown variants, which must not configure a
// region at all.
func (v Variant) FODRectCommand() (string, bool) {
	if !v.Known() {
		return "", false
	}
	g := v.Geometry()
	return fmt.Sprintf("set_fod_rect,%d,%d,%d,%d",
		g.PositionX, g.PositionY, g.PositionX+g.Size, g.PositionY+g.Size), true
}

// DefaultCmdlinePath is where the kernel exposes its boot arguments.
const DefaultCmdlinePath = "/proc/cmdline"

// bootloaderKey is the kernel argument carrying the bootloader identifier on
// devices that boot through an Android bootloader.
const bootloaderKey = "androidboot.bootloader="

// CmdlineBootloader extracts the bootloader identifier from the kernel
// command line at path. A missing key yields an empty string, not an error;
// callers treat that as an unknown device.
func CmdlineBootloader(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read kernel cmdline %s: %w", path, err)
	}
	return parseBootloader(string(data)), nil
}

func parseBootloader(cmdline string) string {
	for _, field := range strings.Fields(cmdline) {
		if value, ok := strings.CutPrefix(field, bootloaderKey); ok {
			return value
		}
	}
	return ""
}
