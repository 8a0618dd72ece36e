// Package metrics derives cycle-time and review-time statistics from
// raw pull-request timestamps. Everything here is a pure function of
// its input: no I/O, no state between calls.
package metrics

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/manikhere79/devops-metrics-agent/internal/domain"
)

// Unit is the time unit metric values are reported in.
type Unit string

const (
	Hours Unit = "hours"
	Days  Unit = "days"
)

// AggregateKind selects how sample values are folded into one number.
type AggregateKind string

const (
	Mean   AggregateKind = "mean"
	Median AggregateKind = "median"
)

// Options controls the unit and aggregate of a metric computation.
// Zero values mean hours and mean, the defaults callers get when they
// do not ask for anything specific.
type Options struct {
	Unit      Unit
	Aggregate AggregateKind
}

func (o Options) unit() Unit {
	if o.Unit == "" {
		return Hours
	}
	return o.Unit
}

func (o Options) aggregate() AggregateKind {
	if o.Aggregate == "" {
		return Mean
	}
	return o.Aggregate
}

// ComputeCycleTime computes the elapsed time from PR creation to merge
// for every record carrying both timestamps. Records missing either
// timestamp are skipped; records where the merge precedes creation are
// malformed data and excluded from the sample rather than clamped.
// Returns a *domain.EmptySampleError when no record qualifies.
func ComputeCycleTime(records []domain.PullRequestRecord, opts Options) (domain.MetricResult, error) {
	return compute("cycle_time", records, opts, func(r domain.PullRequestRecord) (start, end *time.Time, ok bool) {
		return r.CreatedAt, r.MergedAt, r.CreatedAt != nil && r.MergedAt != nil
	}, "no pull requests with both created and merged timestamps")
}

// ComputeReviewTime computes the elapsed time from PR creation to the
// first submitted review. Records with zero reviews or no first-review
// timestamp are skipped. The EmptySampleError message distinguishes an
// empty input from an input with no reviewed PRs.
func ComputeReviewTime(records []domain.PullRequestRecord, opts Options) (domain.MetricResult, error) {
	return compute("review_time", records, opts, func(r domain.PullRequestRecord) (start, end *time.Time, ok bool) {
		ok = r.CreatedAt != nil && r.FirstReviewAt != nil && r.ReviewCount > 0
		return r.CreatedAt, r.FirstReviewAt, ok
	}, "no reviewed pull requests")
}

// compute is the shared pipeline: select timestamps per record, take
// the whole-second difference, convert to the requested unit, and
// aggregate.
func compute(metric string, records []domain.PullRequestRecord, opts Options,
	timestamps func(domain.PullRequestRecord) (start, end *time.Time, ok bool),
	noSampleReason string) (domain.MetricResult, error) {

	result := domain.MetricResult{
		Metric:       metric,
		Unit:         string(opts.unit()),
		Aggregate:    string(opts.aggregate()),
		SampleValues: []float64{},
	}

	if len(records) == 0 {
		return result, &domain.EmptySampleError{Reason: "no pull requests"}
	}

	for _, r := range records {
		start, end, ok := timestamps(r)
		if !ok {
			result.Skipped++
			continue
		}
		seconds := int64(end.Sub(*start) / time.Second)
		if seconds < 0 {
			result.Malformed++
			continue
		}
		result.SampleValues = append(result.SampleValues, float64(seconds)/divisor(opts.unit()))
	}

	result.SampleSize = len(result.SampleValues)
	if result.SampleSize == 0 {
		return result, &domain.EmptySampleError{Reason: noSampleReason}
	}

	value, err := Aggregate(result.SampleValues, opts.aggregate())
	if err != nil {
		return result, err
	}
	result.AggregateValue = value
	return result, nil
}

// Aggregate folds sample values into a single number. Mean is the
// default when kind is unspecified; median of an even-length sample is
// the average of the two middle values.
func Aggregate(values []float64, kind AggregateKind) (float64, error) {
	if len(values) == 0 {
		return 0, &domain.EmptySampleError{Reason: "no sample values"}
	}
	switch kind {
	case Median:
		return stats.Median(values)
	default:
		return stats.Mean(values)
	}
}

func divisor(unit Unit) float64 {
	if unit == Days {
		return 86400
	}
	return 3600
}
