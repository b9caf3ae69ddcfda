// Package units provides shared constants and validation for rate normalization units
package units

// Unit constants
const (
	PerSecond = "s"
	PerMinute = "min"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PerSecond, PerMinute}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "s, min"
}

// ScaleSeconds returns the length of one normalization unit in seconds.
// A rate column holds count * ScaleSeconds(unit) / epochSeconds.
func ScaleSeconds(unit string) float64 {
	switch unit {
	case PerMinute:
		return 60
	case PerSecond:
		return 1
	default:
		return 1 // default to per-second if unknown unit
	}
}
