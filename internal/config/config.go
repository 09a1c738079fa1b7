// Package config loads the daemon configuration. The schema uses pointer
// fields so a partial JSON file overrides only what it names; the Get*
// methods provide fallback defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/inscreen.hal/internal/variant"
)

// Defaults for the Samsung touch-panel and backlight attribute paths.
const (
	DefaultPanelCommandPath = "/sys/class/sec/tsp/cmd"
	DefaultBrightnessPath   = "/sys/class/backlight/panel0-backlight/brightness"
	DefaultListenAddr       = ":8080"
)

// Config is the daemon configuration schema.
type Config struct {
	// PanelCommandPath is the touch-panel command sysfs node.
	PanelCommandPath *string `json:"panel_command_path,omitempty"`

	// BrightnessPath is the backlight brightness sysfs node.
	BrightnessPath *string `json:"brightness_path,omitempty"`

	// Bootloader overrides bootloader detection with a fixed identifier.
	// Useful for bring-up and tests; normally left unset so the identifier
	// is read from the kernel command line.
	Bootloader *string `json:"bootloader,omitempty"`

	// CmdlinePath is where to read the kernel command line when Bootloader
	// is unset.
	CmdlinePath *string `json:"cmdline_path,omitempty"`

	// PressedBrightness is the backlight value forced while a finger rests
	// on the sensor.
	PressedBrightness *string `json:"pressed_brightness,omitempty"`

	// Listen is the HTTP status server address.
	Listen *string `json:"listen,omitempty"`

	// Debug enables chatty per-event logging.
	Debug *bool `json:"debug,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and stay under the size limit. Fields omitted from the file
// retain their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.PressedBrightness != nil && *c.PressedBrightness != "" {
		if _, err := strconv.Atoi(*c.PressedBrightness); err != nil {
			return fmt.Errorf("pressed_brightness must be numeric, got %q", *c.PressedBrightness)
		}
	}
	if c.PanelCommandPath != nil && *c.PanelCommandPath == "" {
		return fmt.Errorf("panel_command_path must not be empty when set")
	}
	if c.BrightnessPath != nil && *c.BrightnessPath == "" {
		return fmt.Errorf("brightness_path must not be empty when set")
	}
	return nil
}

// GetPanelCommandPath returns the panel command node path or the default.
func (c *Config) GetPanelCommandPath() string {
	if c.PanelCommandPath == nil {
		return DefaultPanelCommandPath
	}
	return *c.PanelCommandPath
}

// GetBrightnessPath returns the backlight node path or the default.
func (c *Config) GetBrightnessPath() string {
	if c.BrightnessPath == nil {
		return DefaultBrightnessPath
	}
	return *c.BrightnessPath
}

// GetBootloader returns the bootloader override, or "" when detection
// should read the kernel command line.
func (c *Config) GetBootloader() string {
	if c.Bootloader == nil {
		return ""
	}
	return *c.Bootloader
}

// GetCmdlinePath returns the kernel command line path or the default.
func (c *Config) GetCmdlinePath() string {
	if c.CmdlinePath == nil || *c.CmdlinePath == "" {
		return variant.DefaultCmdlinePath
	}
	return *c.CmdlinePath
}

// GetPressedBrightness returns the press brightness value, or "" to use the
// adapter's built-in default.
func (c *Config) GetPressedBrightness() string {
	if c.PressedBrightness == nil {
		return ""
	}
	return *c.PressedBrightness
}

// GetListen returns the HTTP listen address or the default.
func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return DefaultListenAddr
	}
	return *c.Listen
}

// GetDebug returns whether debug logging is enabled.
func (c *Config) GetDebug() bool {
	if c.Debug == nil {
		return false
	}
	return *c.Debug
}
