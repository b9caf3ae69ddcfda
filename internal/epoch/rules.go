package epoch

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motionlogger-condor/internal/motionlogger"
)

// Kind is the aggregation applied to a column within one epoch.
type Kind int

const (
	kindUnset Kind = iota
	// Sum totals the present values.
	Sum
	// Mean is the arithmetic mean of the present values.
	Mean
	// Mode is the most frequent present value; ties go to the value seen first.
	Mode
	// Rate recomputes a normalized count from the epoch's summed Source column
	// and the epoch length. Source values of the column itself are never read.
	Rate
)

func (k Kind) String() string {
	switch k {
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	case Mode:
		return "mode"
	case Rate:
		return "rate"
	default:
		return "unset"
	}
}

// Rule is the aggregation for one output column.
type Rule struct {
	Kind   Kind
	Source motionlogger.Column // Rate only
}

// Rules maps every column to its aggregation. Missing values are skipped by all
// kinds; a bucket where every value is missing aggregates to NaN.
var Rules = [motionlogger.NumColumns]Rule{
	motionlogger.Event:          {Kind: Sum},
	motionlogger.PIM:            {Kind: Sum},
	motionlogger.ZCM:            {Kind: Sum},
	motionlogger.ExtTemperature: {Kind: Mean},
	motionlogger.Light:          {Kind: Mean},
	motionlogger.State:          {Kind: Mode},
	motionlogger.PIMn:           {Kind: Rate, Source: motionlogger.PIM},
	motionlogger.ZCMn:           {Kind: Rate, Source: motionlogger.ZCM},
}

// reduce applies a non-rate kind to the present values of a bucket.
func reduce(k Kind, present []float64) float64 {
	if len(present) == 0 {
		return math.NaN()
	}
	switch k {
	case Sum:
		return floats.Sum(present)
	case Mean:
		return stat.Mean(present, nil)
	case Mode:
		return mode(present)
	default:
		return math.NaN()
	}
}

// mode returns the most frequent value. Among equally frequent values the one
// that occurs first in xs wins.
func mode(xs []float64) float64 {
	counts := make(map[float64]int, len(xs))
	for _, x := range xs {
		counts[x]++
	}
	best, bestCount := xs[0], 0
	for _, x := range xs {
		if c := counts[x]; c > bestCount {
			best, bestCount = x, c
		}
	}
	return best
}
