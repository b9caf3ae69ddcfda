// Package condor renders aggregated epochs as a Condor-importable text report.
package condor

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/motionlogger-condor/internal/epoch"
	ml "github.com/banshee-data/motionlogger-condor/internal/motionlogger"
)

// TimeLayout is used for every timestamp in the report.
const TimeLayout = "02/01/2006 15:04:05"

// DefaultDeviceID is written to DEVICE_ID when none is configured.
const DefaultDeviceID = "Micro MotionLogger"

const (
	banner = "+-------------+ MotionLogger Conversion to Condor Report +-------------+"
	footer = "+----------------------------------------------------------------------+"
)

// OutputColumns is the column order Condor expects after DATE/TIME.
var OutputColumns = []ml.Column{
	ml.Event,
	ml.ExtTemperature,
	ml.PIM,
	ml.PIMn,
	ml.ZCM,
	ml.ZCMn,
	ml.Light,
	ml.State,
}

// cellFormat describes how one column is printed. Integer columns are rounded
// half to even; the rest keep up to decimals digits with trailing zeros trimmed.
type cellFormat struct {
	integer  bool
	decimals int
}

var cellFormats = [ml.NumColumns]cellFormat{
	ml.Event:          {integer: true},
	ml.PIM:            {decimals: 6},
	ml.ZCM:            {integer: true},
	ml.ExtTemperature: {decimals: 9},
	ml.Light:          {decimals: 6},
	ml.State:          {integer: true},
	ml.PIMn:           {decimals: 15},
	ml.ZCMn:           {decimals: 3},
}

// Header is the metadata block of a report. It is built once after
// aggregation and not modified afterwards.
type Header struct {
	SubjectName     string
	DeviceID        string
	Created         time.Time
	CollectionStart time.Time
	CollectionEnd   time.Time
	EpochLength     time.Duration
}

// NewHeader derives the report header from the parsed export. The collection
// ends at start plus the total duration the export covers.
func NewHeader(subject, deviceID string, created time.Time, exp *ml.Export, epochLength time.Duration) Header {
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}
	return Header{
		SubjectName:     subject,
		DeviceID:        deviceID,
		Created:         created,
		CollectionStart: exp.Start,
		CollectionEnd:   exp.Start.Add(exp.Duration()),
		EpochLength:     epochLength,
	}
}

// EpochSeconds is the epoch length in whole seconds.
func (h Header) EpochSeconds() int {
	return int(h.EpochLength / time.Second)
}

// Format renders the report. The output depends only on its arguments.
func Format(h Header, buckets []epoch.Bucket) string {
	var sb strings.Builder

	lines := []string{
		banner,
		"SUBJECT_NAME : " + h.SubjectName,
		"SUBJECT_DESCRIPTION :",
		"DEVICE_ID : " + h.DeviceID,
		"FILE_DATE_TIME : " + h.Created.Format(TimeLayout),
		"Collection_Start: " + h.CollectionStart.Format(TimeLayout),
		"Collection_End: " + h.CollectionEnd.Format(TimeLayout),
		fmt.Sprintf("Epoch_Duration:  %d", h.EpochSeconds()),
		footer,
		columnRow(),
	}
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}

	cells := make([]string, 0, len(OutputColumns)+1)
	for _, b := range buckets {
		cells = append(cells[:0], b.Start.Format(TimeLayout))
		for _, c := range OutputColumns {
			cells = append(cells, formatCell(c, b.Value(c)))
		}
		sb.WriteString(strings.Join(cells, ml.Delimiter))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func columnRow() string {
	names := make([]string, 0, len(OutputColumns)+1)
	names = append(names, ml.DateTimeColumn)
	for _, c := range OutputColumns {
		names = append(names, c.String())
	}
	return strings.Join(names, ml.Delimiter)
}

func formatCell(c ml.Column, v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	f := cellFormats[c]
	if f.integer {
		return strconv.FormatInt(int64(math.RoundToEven(v)), 10)
	}
	return trimFloat(v, f.decimals)
}

// trimFloat formats v with at most decimals digits after the point.
func trimFloat(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// OutputSuffix is appended to the input file stem to name the report.
func OutputSuffix(epochSeconds int) string {
	return fmt.Sprintf("_Condor_%ds", epochSeconds)
}

// OutputName returns the report path next to inputPath, e.g. night.txt ->
// night_Condor_60s.txt. Inputs without an extension get ".txt".
func OutputName(inputPath string, epochSeconds int) string {
	dir, base := filepath.Split(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".txt"
	}
	return filepath.Join(dir, stem+OutputSuffix(epochSeconds)+ext)
}

// SubjectName is the name Condor shows for a report built from inputPath.
func SubjectName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
