package convert

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motionlogger-condor/internal/config"
	"github.com/banshee-data/motionlogger-condor/internal/epoch"
	"github.com/banshee-data/motionlogger-condor/internal/monitoring"
	"github.com/banshee-data/motionlogger-condor/internal/motionlogger"
	"github.com/banshee-data/motionlogger-condor/internal/testutil"
)

var (
	start   = time.Date(2024, time.March, 5, 22, 0, 0, 0, time.UTC)
	created = time.Date(2024, time.March, 6, 8, 30, 15, 0, time.UTC)
)

func nightExport() string {
	return testutil.NewExportBuilder(start, 30*time.Second).
		Row(testutil.StockRow(0, 10, 2, 30, 1, 0)...).
		Row(testutil.StockRow(1, 20, 3, 31, 3, 0)...).
		Row(testutil.StockRow(0, 5, 1, 32, 2, 1)...).
		Row(testutil.StockRow(0, 7, 2, 33, 2, 1)...).
		Row(testutil.StockRow(2, 100, 9, 30.5, 0, 2)...).
		Row(testutil.StockRow(0, 50, 6, 31, 0, 1)...).
		String()
}

func nightOptions() Options {
	opts := DefaultOptions()
	opts.SubjectName = "night"
	opts.Created = created
	return opts
}

func TestConvert_EndToEnd(t *testing.T) {
	res, err := Convert(nightExport(), 60, nightOptions())
	require.NoError(t, err)

	want := strings.Join([]string{
		"+-------------+ MotionLogger Conversion to Condor Report +-------------+",
		"SUBJECT_NAME : night",
		"SUBJECT_DESCRIPTION :",
		"DEVICE_ID : Micro MotionLogger",
		"FILE_DATE_TIME : 06/03/2024 08:30:15",
		"Collection_Start: 05/03/2024 22:00:00",
		"Collection_End: 05/03/2024 22:03:00",
		"Epoch_Duration:  60",
		"+----------------------------------------------------------------------+",
		"DATE/TIME;EVENT;EXT TEMPERATURE;PIM;PIMn;ZCM;ZCMn;LIGHT;STATE",
		"05/03/2024 22:00:00;1;30.5;30;0.5;5;0.083;2;0",
		"05/03/2024 22:01:00;0;32.5;12;0.2;3;0.05;2;1",
		"05/03/2024 22:02:00;2;30.75;150;2.5;15;0.25;0;2",
	}, "\n") + "\n"

	if diff := cmp.Diff(want, res.Report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, res.Export.Records, 6)
	assert.Len(t, res.Buckets, 3)
	assert.Equal(t, 60, res.Header.EpochSeconds())
}

func TestConvert_Deterministic(t *testing.T) {
	a, err := Convert(nightExport(), 60, nightOptions())
	require.NoError(t, err)
	b, err := Convert(nightExport(), 60, nightOptions())
	require.NoError(t, err)
	assert.Equal(t, a.Report, b.Report)
}

func TestConvert_PerMinuteRates(t *testing.T) {
	opts := nightOptions()
	opts.Aggregate.NormalizationSeconds = 60

	res, err := Convert(nightExport(), 60, opts)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, res.Buckets[0].Value(motionlogger.PIMn), 1e-12)
	assert.InDelta(t, 5.0, res.Buckets[0].Value(motionlogger.ZCMn), 1e-12)
}

func TestConvert_PartialEpoch(t *testing.T) {
	res, err := Convert(nightExport(), 120, nightOptions())
	require.NoError(t, err)
	require.Len(t, res.Buckets, 2)
	assert.Equal(t, 4, res.Buckets[0].Rows)
	assert.Equal(t, 2, res.Buckets[1].Rows)
	assert.Contains(t, res.Report, "05/03/2024 22:02:00;2;30.75;150;")
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		epoch  int
		target error
	}{
		{"not an export", "hello\nworld\n", 60, motionlogger.ErrFormat},
		{"single row", "DATE/TIME;EVENT\n05/03/2024 22:00:00;1\n", 60, motionlogger.ErrFormat},
		{"not a multiple", nightExport(), 45, epoch.ErrInvalidEpoch},
		{"zero", nightExport(), 0, epoch.ErrInvalidEpoch},
		{"negative", nightExport(), -60, epoch.ErrInvalidEpoch},
		{"non-positive checked before parsing", "garbage", 0, epoch.ErrInvalidEpoch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Convert(tt.text, tt.epoch, nightOptions())
			require.Error(t, err)
			assert.Nil(t, res, "no partial output on failure")
			assert.True(t, errors.Is(err, tt.target), "error %v should wrap %v", err, tt.target)
		})
	}
}

func TestConvert_DebugLogging(t *testing.T) {
	original := monitoring.Logf
	defer func() {
		monitoring.SetLogger(original)
		monitoring.SetVerbose(false)
	}()

	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	monitoring.SetVerbose(true)

	_, err := Convert(nightExport(), 120, nightOptions())
	require.NoError(t, err)

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "parsed 6 rows")
	assert.Contains(t, joined, "partial: 2 rows")
	assert.Contains(t, joined, "aggregated into 2 epochs")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.EmptyConfig()
	tz, unit, layout, device, rows := "Europe/Berlin", "min", "2006-01-02 15:04:05", "MotionWatch 8", 8
	cfg.Timezone = &tz
	cfg.NormalizationUnit = &unit
	cfg.TimestampLayout = &layout
	cfg.DeviceID = &device
	cfg.ValidationRows = &rows

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", opts.Parse.Location.String())
	assert.Equal(t, layout, opts.Parse.TimestampLayout)
	assert.Equal(t, 8, opts.Parse.ValidationRows)
	assert.Equal(t, 60.0, opts.Aggregate.NormalizationSeconds)
	assert.Equal(t, "MotionWatch 8", opts.DeviceID)
}

func TestOptionsFromConfig_Defaults(t *testing.T) {
	opts, err := OptionsFromConfig(config.EmptyConfig())
	require.NoError(t, err)
	want := DefaultOptions()
	assert.Equal(t, want.Parse.TimestampLayout, opts.Parse.TimestampLayout)
	assert.Equal(t, want.Parse.ValidationRows, opts.Parse.ValidationRows)
	assert.Same(t, time.UTC, opts.Parse.Location)
	assert.Equal(t, 1.0, opts.Aggregate.NormalizationSeconds)
	assert.Equal(t, want.DeviceID, opts.DeviceID)
}

func TestOptionsFromConfig_BadTimezone(t *testing.T) {
	cfg := config.EmptyConfig()
	tz := "Mars/Olympus"
	cfg.Timezone = &tz

	_, err := OptionsFromConfig(cfg)
	require.Error(t, err)
}
