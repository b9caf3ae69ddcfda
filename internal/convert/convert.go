// Package convert runs the MotionLogger to Condor pipeline: parse the export,
// regroup it into epochs and render the report. It performs no I/O.
package convert

import (
	"fmt"
	"time"

	"github.com/banshee-data/motionlogger-condor/internal/condor"
	"github.com/banshee-data/motionlogger-condor/internal/config"
	"github.com/banshee-data/motionlogger-condor/internal/epoch"
	"github.com/banshee-data/motionlogger-condor/internal/monitoring"
	"github.com/banshee-data/motionlogger-condor/internal/motionlogger"
	"github.com/banshee-data/motionlogger-condor/internal/units"
)

// Options configures one conversion.
type Options struct {
	Parse     motionlogger.ParseOptions
	Aggregate epoch.Options

	// SubjectName and DeviceID are copied into the report header.
	SubjectName string
	DeviceID    string
	// Created is the FILE_DATE_TIME of the report.
	Created time.Time
}

// DefaultOptions matches a stock export with per-second rates.
func DefaultOptions() Options {
	return Options{
		Parse:     motionlogger.DefaultParseOptions(),
		Aggregate: epoch.Options{NormalizationSeconds: units.ScaleSeconds(units.PerSecond)},
		DeviceID:  condor.DefaultDeviceID,
	}
}

// OptionsFromConfig builds Options from a validated config.
func OptionsFromConfig(cfg *config.ConversionConfig) (Options, error) {
	loc, err := units.LoadTimezone(cfg.GetTimezone())
	if err != nil {
		return Options{}, err
	}
	opts := DefaultOptions()
	opts.Parse = motionlogger.ParseOptions{
		TimestampLayout: cfg.GetTimestampLayout(),
		Location:        loc,
		ValidationRows:  cfg.GetValidationRows(),
	}
	opts.Aggregate.NormalizationSeconds = units.ScaleSeconds(cfg.GetNormalizationUnit())
	opts.DeviceID = cfg.GetDeviceID()
	return opts, nil
}

// Result carries every stage's output so callers can inspect or report on it.
type Result struct {
	Export  *motionlogger.Export
	Buckets []epoch.Bucket
	Header  condor.Header
	Report  string
}

// Convert turns the raw export text into a Condor report with epochs of
// epochSeconds. Errors wrap motionlogger.ErrFormat, epoch.ErrInvalidEpoch or
// epoch.ErrEmptyData.
func Convert(text string, epochSeconds int, opts Options) (*Result, error) {
	if epochSeconds <= 0 {
		return nil, fmt.Errorf("%w: %d seconds is not positive", epoch.ErrInvalidEpoch, epochSeconds)
	}
	epochLength := time.Duration(epochSeconds) * time.Second

	exp, err := motionlogger.Parse(text, opts.Parse)
	if err != nil {
		return nil, err
	}
	monitoring.Debugf("parsed %d rows starting %s at %s intervals",
		len(exp.Records), exp.Start.Format(condor.TimeLayout), exp.Interval)

	buckets, err := epoch.Aggregate(exp.Records, exp.Interval, epochLength, opts.Aggregate)
	if err != nil {
		return nil, err
	}
	if last := buckets[len(buckets)-1]; last.Rows < int(epochLength/exp.Interval) {
		monitoring.Debugf("last epoch at %s is partial: %d rows", last.Start.Format(condor.TimeLayout), last.Rows)
	}
	monitoring.Debugf("aggregated into %d epochs of %s", len(buckets), epochLength)

	header := condor.NewHeader(opts.SubjectName, opts.DeviceID, opts.Created, exp, epochLength)
	return &Result{
		Export:  exp,
		Buckets: buckets,
		Header:  header,
		Report:  condor.Format(header, buckets),
	}, nil
}
