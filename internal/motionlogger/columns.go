package motionlogger

import "strings"

// Column identifies one of the measurement columns a MotionLogger export carries.
// The set is fixed; unknown header fields are ignored by the parser.
type Column int

// Recognised columns, in the order the device writes them.
const (
	Event Column = iota
	PIM
	ZCM
	ExtTemperature
	Light
	State
	PIMn
	ZCMn

	// NumColumns is the number of recognised columns. Arrays indexed by
	// Column use it as their length.
	NumColumns
)

const (
	// Delimiter separates fields in both the export and the Condor report.
	Delimiter = ";"
	// DateTimeColumn is the name of the leading timestamp column.
	DateTimeColumn = "DATE/TIME"
	// TableMarker starts the column-name row of the data table.
	TableMarker = DateTimeColumn + Delimiter
)

var columnNames = [NumColumns]string{
	Event:          "EVENT",
	PIM:            "PIM",
	ZCM:            "ZCM",
	ExtTemperature: "EXT TEMPERATURE",
	Light:          "LIGHT",
	State:          "STATE",
	PIMn:           "PIMn",
	ZCMn:           "ZCMn",
}

// String returns the header name of the column as the device writes it.
func (c Column) String() string {
	if c < 0 || c >= NumColumns {
		return "UNKNOWN"
	}
	return columnNames[c]
}

// Columns returns all recognised columns in device order.
func Columns() []Column {
	out := make([]Column, 0, NumColumns)
	for c := Column(0); c < NumColumns; c++ {
		out = append(out, c)
	}
	return out
}

// LookupColumn maps a header field to its Column. Surrounding whitespace is
// ignored and the match is case-insensitive ("PIMN" and "PIMn" are the same).
func LookupColumn(name string) (Column, bool) {
	name = strings.TrimSpace(name)
	for c, n := range columnNames {
		if strings.EqualFold(n, name) {
			return Column(c), true
		}
	}
	return 0, false
}
