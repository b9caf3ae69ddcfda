// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// DefaultMetadata mimics the free-form block a MotionLogger export starts with.
var DefaultMetadata = []string{
	"+-------------------+ MotionLogger Export +-------------------+",
	"SUBJECT_NAME : fixture",
	"DEVICE_ID : Micro MotionLogger",
	"HARDWARE_VERSION : 1.0",
	"",
}

// DefaultColumns is the full column row of a stock export.
var DefaultColumns = []string{"DATE/TIME", "EVENT", "PIM", "ZCM", "EXT TEMPERATURE", "LIGHT", "STATE", "PIMn", "ZCMn"}

// ExportLayout is the timestamp layout of the DATE/TIME column.
const ExportLayout = "02/01/2006 15:04:05"

// ExportBuilder assembles MotionLogger export text for tests.
type ExportBuilder struct {
	Metadata []string
	Columns  []string
	Start    time.Time
	Interval time.Duration
	rows     []string
}

// NewExportBuilder returns a builder with the default metadata and columns.
func NewExportBuilder(start time.Time, interval time.Duration) *ExportBuilder {
	return &ExportBuilder{
		Metadata: append([]string(nil), DefaultMetadata...),
		Columns:  append([]string(nil), DefaultColumns...),
		Start:    start,
		Interval: interval,
	}
}

// Row appends a data row. The timestamp is derived from the row index; values
// follow the builder's Columns after DATE/TIME.
func (b *ExportBuilder) Row(values ...string) *ExportBuilder {
	ts := b.Start.Add(time.Duration(len(b.rows)) * b.Interval).Format(ExportLayout)
	b.rows = append(b.rows, strings.Join(append([]string{ts}, values...), ";"))
	return b
}

// RawRow appends a row verbatim, including its timestamp field.
func (b *ExportBuilder) RawRow(line string) *ExportBuilder {
	b.rows = append(b.rows, line)
	return b
}

// Rows appends n rows produced by fn.
func (b *ExportBuilder) Rows(n int, fn func(i int) []string) *ExportBuilder {
	for i := 0; i < n; i++ {
		b.Row(fn(i)...)
	}
	return b
}

// String renders the export.
func (b *ExportBuilder) String() string {
	var sb strings.Builder
	for _, m := range b.Metadata {
		sb.WriteString(m)
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Join(b.Columns, ";"))
	sb.WriteString("\n")
	for _, r := range b.rows {
		sb.WriteString(r)
		sb.WriteString("\n")
	}
	return sb.String()
}

// StockRow formats a full row of default columns.
func StockRow(event, pim, zcm int, temp, light float64, state int) []string {
	return []string{
		fmt.Sprint(event),
		fmt.Sprint(pim),
		fmt.Sprint(zcm),
		fmt.Sprint(temp),
		fmt.Sprint(light),
		fmt.Sprint(state),
		"0",
		"0",
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
