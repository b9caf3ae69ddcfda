package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/banshee-data/motionlogger-condor/internal/fsutil"
	"github.com/banshee-data/motionlogger-condor/internal/units"
)

// Default values used when a field is omitted.
const (
	DefaultTimestampLayout   = "02/01/2006 15:04:05"
	DefaultTimezone          = "UTC"
	DefaultValidationRows    = 5
	DefaultNormalizationUnit = units.PerSecond
	DefaultDeviceID          = "Micro MotionLogger"

	// MinValidationRows is the smallest sample that can establish an interval.
	MinValidationRows = 2

	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// ConversionConfig holds the converter settings. Every field is optional;
// the Get* methods return the default for fields that are not set, so partial
// files are safe.
type ConversionConfig struct {
	TimestampLayout   *string `json:"timestamp_layout,omitempty" toml:"timestamp_layout"`
	Timezone          *string `json:"timezone,omitempty" toml:"timezone"`
	ValidationRows    *int    `json:"validation_rows,omitempty" toml:"validation_rows"`
	NormalizationUnit *string `json:"normalization_unit,omitempty" toml:"normalization_unit"`
	DeviceID          *string `json:"device_id,omitempty" toml:"device_id"`

	// OutputDir is where reports are written. Empty means next to the input.
	OutputDir *string `json:"output_dir,omitempty" toml:"output_dir"`
	Overwrite *bool   `json:"overwrite,omitempty" toml:"overwrite"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }
func ptrBool(v bool) *bool       { return &v }

// EmptyConfig returns a ConversionConfig with all fields unset.
func EmptyConfig() *ConversionConfig {
	return &ConversionConfig{}
}

// DefaultConversionConfig returns a config with every field set to its default.
func DefaultConversionConfig() *ConversionConfig {
	return &ConversionConfig{
		TimestampLayout:   ptrString(DefaultTimestampLayout),
		Timezone:          ptrString(DefaultTimezone),
		ValidationRows:    ptrInt(DefaultValidationRows),
		NormalizationUnit: ptrString(DefaultNormalizationUnit),
		DeviceID:          ptrString(DefaultDeviceID),
		OutputDir:         ptrString(""),
		Overwrite:         ptrBool(false),
	}
}

// LoadConfig reads a .json or .toml config file from fsys. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func LoadConfig(fsys fsutil.FileSystem, path string) (*ConversionConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".toml" {
		return nil, fmt.Errorf("config file must have .json or .toml extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse config TOML: unknown key %q", undecoded[0].String())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that are set.
func (c *ConversionConfig) Validate() error {
	if c.TimestampLayout != nil && strings.TrimSpace(*c.TimestampLayout) == "" {
		return fmt.Errorf("timestamp_layout must not be empty")
	}
	if c.Timezone != nil && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("invalid timezone '%s'", *c.Timezone)
	}
	if c.ValidationRows != nil && *c.ValidationRows < MinValidationRows {
		return fmt.Errorf("validation_rows must be at least %d, got %d", MinValidationRows, *c.ValidationRows)
	}
	if c.NormalizationUnit != nil && !units.IsValid(*c.NormalizationUnit) {
		return fmt.Errorf("normalization_unit must be one of: %s, got '%s'", units.GetValidUnitsString(), *c.NormalizationUnit)
	}
	return nil
}

// GetTimestampLayout returns the timestamp_layout value or the default.
func (c *ConversionConfig) GetTimestampLayout() string {
	if c.TimestampLayout == nil || *c.TimestampLayout == "" {
		return DefaultTimestampLayout
	}
	return *c.TimestampLayout
}

// GetTimezone returns the timezone value or the default.
func (c *ConversionConfig) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return DefaultTimezone
	}
	return *c.Timezone
}

// GetValidationRows returns the validation_rows value or the default.
func (c *ConversionConfig) GetValidationRows() int {
	if c.ValidationRows == nil {
		return DefaultValidationRows
	}
	return *c.ValidationRows
}

// GetNormalizationUnit returns the normalization_unit value or the default.
func (c *ConversionConfig) GetNormalizationUnit() string {
	if c.NormalizationUnit == nil || *c.NormalizationUnit == "" {
		return DefaultNormalizationUnit
	}
	return *c.NormalizationUnit
}

// GetDeviceID returns the device_id value or the default.
func (c *ConversionConfig) GetDeviceID() string {
	if c.DeviceID == nil || *c.DeviceID == "" {
		return DefaultDeviceID
	}
	return *c.DeviceID
}

// GetOutputDir returns the output_dir value; empty means next to the input.
func (c *ConversionConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return ""
	}
	return *c.OutputDir
}

// GetOverwrite returns the overwrite value or the default.
func (c *ConversionConfig) GetOverwrite() bool {
	if c.Overwrite == nil {
		return false
	}
	return *c.Overwrite
}
