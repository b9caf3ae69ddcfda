// Package epoch regroups fixed-interval samples into longer epochs.
//
// Rows are partitioned into consecutive buckets of epochLength/interval rows
// starting at the first record. Each bucket yields one Bucket whose values
// follow Rules. A trailing bucket with fewer rows is kept and aggregated over
// the rows it has; it is neither padded nor dropped.
package epoch

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/motionlogger-condor/internal/motionlogger"
)

var (
	// ErrInvalidEpoch is returned when the epoch length is not a positive
	// multiple of the original sampling interval.
	ErrInvalidEpoch = errors.New("invalid epoch length")
	// ErrEmptyData is returned when there are no records to aggregate.
	ErrEmptyData = errors.New("no data rows to aggregate")
)

// Bucket is one aggregated epoch.
type Bucket struct {
	Start time.Time
	// Rows is the number of original records in the bucket. It is smaller
	// than the nominal bucket size only for a trailing partial epoch.
	Rows   int
	Values [motionlogger.NumColumns]float64
}

// Value returns the aggregated value of column c; NaN means missing.
func (b Bucket) Value(c motionlogger.Column) float64 {
	return b.Values[c]
}

// Options tunes rate normalization.
type Options struct {
	// NormalizationSeconds is the length of the rate unit in seconds:
	// 1 gives counts per second, 60 counts per minute. Zero means 1.
	NormalizationSeconds float64
}

// BucketSize returns the number of original rows per epoch.
func BucketSize(interval, epochLength time.Duration) (int, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("%w: sampling interval %s is not positive", ErrInvalidEpoch, interval)
	}
	if epochLength <= 0 {
		return 0, fmt.Errorf("%w: %s is not positive", ErrInvalidEpoch, epochLength)
	}
	if epochLength%interval != 0 {
		return 0, fmt.Errorf("%w: %s is not a multiple of the %s sampling interval", ErrInvalidEpoch, epochLength, interval)
	}
	return int(epochLength / interval), nil
}

// Aggregate partitions records into epochs of epochLength and aggregates each.
// records must be ordered by time and spaced by interval.
func Aggregate(records []motionlogger.Record, interval, epochLength time.Duration, opts Options) ([]Bucket, error) {
	size, err := BucketSize(interval, epochLength)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyData
	}

	norm := opts.NormalizationSeconds
	if norm <= 0 {
		norm = 1
	}
	epochSeconds := epochLength.Seconds()

	buckets := make([]Bucket, 0, (len(records)+size-1)/size)
	present := make([]float64, 0, size)
	for lo := 0; lo < len(records); lo += size {
		hi := min(lo+size, len(records))
		rows := records[lo:hi]

		b := Bucket{Start: rows[0].Timestamp, Rows: len(rows)}
		for c, rule := range Rules {
			if rule.Kind == Rate {
				continue
			}
			present = present[:0]
			for _, r := range rows {
				if v := r.Values[c]; !math.IsNaN(v) {
					present = append(present, v)
				}
			}
			b.Values[c] = reduce(rule.Kind, present)
		}
		for c, rule := range Rules {
			if rule.Kind != Rate {
				continue
			}
			// NaN propagates when the source column is missing.
			b.Values[c] = b.Values[rule.Source] * norm / epochSeconds
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}
