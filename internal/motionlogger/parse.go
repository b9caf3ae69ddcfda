// Package motionlogger parses the semicolon-separated text export written by
// MotionLogger actigraphy devices.
//
// An export is a free-form metadata block followed by a data table. The table
// starts at the first line beginning with "DATE/TIME;" which names the columns;
// every following non-blank line is one sample.
package motionlogger

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrFormat is returned (wrapped) when the export cannot be parsed: the table
// marker is missing, there are too few data rows, a value is malformed, or the
// sampling interval is not constant and positive.
var ErrFormat = errors.New("invalid MotionLogger export")

// DefaultTimestampLayout is the day-first layout MotionLogger uses for DATE/TIME.
const DefaultTimestampLayout = "02/01/2006 15:04:05"

// DefaultValidationRows is how many leading rows have their timestamps checked
// for a constant sampling interval.
const DefaultValidationRows = 5

// Record is one original sample. Values is indexed by Column; columns missing
// from the export or left blank are NaN.
type Record struct {
	Timestamp time.Time
	Values    [NumColumns]float64
}

// Value returns the value of column c.
func (r Record) Value(c Column) float64 {
	return r.Values[c]
}

// Export is a parsed MotionLogger file.
type Export struct {
	// Metadata holds every line above the table marker, verbatim.
	Metadata []string
	// Header holds the column names of the table as written, trimmed.
	Header []string
	// Start is the timestamp of the first data row.
	Start time.Time
	// Interval is the original sampling interval.
	Interval time.Duration
	// Records are ordered by time. Timestamps are Start + i*Interval.
	Records []Record
}

// Duration is the total time the records cover.
func (e *Export) Duration() time.Duration {
	return time.Duration(len(e.Records)) * e.Interval
}

// ParseOptions controls timestamp handling.
type ParseOptions struct {
	TimestampLayout string
	Location        *time.Location
	// ValidationRows is the number of leading rows whose timestamps are
	// checked for a constant interval. The rest of the file is assumed to
	// follow the same interval and is not re-checked.
	ValidationRows int
}

// DefaultParseOptions returns the options matching a stock device export.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		TimestampLayout: DefaultTimestampLayout,
		Location:        time.UTC,
		ValidationRows:  DefaultValidationRows,
	}
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.TimestampLayout == "" {
		o.TimestampLayout = DefaultTimestampLayout
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.ValidationRows < 2 {
		o.ValidationRows = 2
	}
	return o
}

// Parse reads a full export. It does no I/O.
func Parse(text string, opts ParseOptions) (*Export, error) {
	opts = opts.withDefaults()

	lines := splitLines(text)
	markerIdx := findTableMarker(lines)
	if markerIdx < 0 {
		return nil, fmt.Errorf("%w: no data table header line starting with %q", ErrFormat, TableMarker)
	}

	header := splitFields(lines[markerIdx])
	// fieldColumn maps a field index to its Column, -1 for ignored fields.
	fieldColumn := make([]Column, len(header))
	for i, name := range header {
		fieldColumn[i] = -1
		if i == 0 {
			continue
		}
		if c, ok := LookupColumn(name); ok {
			fieldColumn[i] = c
		}
	}

	exp := &Export{
		Metadata: append([]string(nil), lines[:markerIdx]...),
		Header:   header,
	}

	var stamps []time.Time
	for i := markerIdx + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := i + 1
		fields := splitFields(line)

		if len(stamps) < opts.ValidationRows {
			ts, err := time.ParseInLocation(opts.TimestampLayout, fields[0], opts.Location)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid %s %q", ErrFormat, lineNo, DateTimeColumn, fields[0])
			}
			stamps = append(stamps, ts)
		}

		rec := Record{}
		for c := range rec.Values {
			rec.Values[c] = math.NaN()
		}
		for fi := 1; fi < len(fields) && fi < len(fieldColumn); fi++ {
			c := fieldColumn[fi]
			if c < 0 {
				continue
			}
			v, err := parseValue(fields[fi])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid %s value %q", ErrFormat, lineNo, c, fields[fi])
			}
			rec.Values[c] = v
		}
		exp.Records = append(exp.Records, rec)
	}

	if len(exp.Records) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data rows, found %d", ErrFormat, len(exp.Records))
	}

	interval, err := sampleInterval(stamps)
	if err != nil {
		return nil, err
	}
	exp.Start = stamps[0]
	exp.Interval = interval
	for i := range exp.Records {
		exp.Records[i].Timestamp = exp.Start.Add(time.Duration(i) * interval)
	}
	return exp, nil
}

// sampleInterval derives the interval from the first two timestamps and checks
// the remaining validation sample against it.
func sampleInterval(stamps []time.Time) (time.Duration, error) {
	interval := stamps[1].Sub(stamps[0])
	if interval <= 0 {
		return 0, fmt.Errorf("%w: non-positive sampling interval %s between first rows", ErrFormat, interval)
	}
	for i := 2; i < len(stamps); i++ {
		if d := stamps[i].Sub(stamps[i-1]); d != interval {
			return 0, fmt.Errorf("%w: sampling interval changes from %s to %s at data row %d", ErrFormat, interval, d, i+1)
		}
	}
	return interval, nil
}

func findTableMarker(lines []string) int {
	for i, line := range lines {
		if strings.HasPrefix(line, TableMarker) {
			return i
		}
	}
	return -1
}

func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func splitFields(line string) []string {
	fields := strings.Split(line, Delimiter)
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// parseValue reads one numeric cell. Blank cells are missing (NaN). A decimal
// comma is accepted when the cell has no decimal point.
func parseValue(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}
