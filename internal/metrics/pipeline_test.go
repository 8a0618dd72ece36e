package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manikhere79/devops-metrics-agent/internal/domain"
)

func ts(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return &parsed
}

func TestComputeCycleTime(t *testing.T) {
	testCases := []struct {
		name              string
		records           []domain.PullRequestRecord
		opts              Options
		expectedValue     float64
		expectedSamples   []float64
		expectedSkipped   int
		expectedMalformed int
		expectEmptySample bool
	}{
		{
			name: "single merged PR is 24 hours",
			records: []domain.PullRequestRecord{
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-02T00:00:00Z")},
			},
			expectedValue:   24.0,
			expectedSamples: []float64{24.0},
		},
		{
			name:              "empty input",
			records:           []domain.PullRequestRecord{},
			expectEmptySample: true,
		},
		{
			name: "unmerged PRs are skipped",
			records: []domain.PullRequestRecord{
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-01T12:00:00Z")},
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z")},
				{MergedAt: ts(t, "2024-01-02T00:00:00Z")},
			},
			expectedValue:   12.0,
			expectedSamples: []float64{12.0},
			expectedSkipped: 2,
		},
		{
			name: "all records skipped is an empty sample",
			records: []domain.PullRequestRecord{
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z")},
			},
			expectedSkipped:   1,
			expectEmptySample: true,
		},
		{
			name: "merge before creation is malformed, not negative",
			records: []domain.PullRequestRecord{
				{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), MergedAt: ts(t, "2024-01-01T00:00:00Z")},
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-01T06:00:00Z")},
			},
			expectedValue:     6.0,
			expectedSamples:   []float64{6.0},
			expectedMalformed: 1,
		},
		{
			name: "days unit",
			records: []domain.PullRequestRecord{
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-04T00:00:00Z")},
			},
			opts:            Options{Unit: Days},
			expectedValue:   3.0,
			expectedSamples: []float64{3.0},
		},
		{
			name: "fractional hours from sub-hour deltas",
			records: []domain.PullRequestRecord{
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-01T01:30:00Z")},
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-01T00:30:00Z")},
			},
			expectedValue:   1.0,
			expectedSamples: []float64{1.5, 0.5},
		},
		{
			name: "median aggregate",
			records: []domain.PullRequestRecord{
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-01T01:00:00Z")},
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-01T02:00:00Z")},
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), MergedAt: ts(t, "2024-01-01T09:00:00Z")},
			},
			opts:            Options{Aggregate: Median},
			expectedValue:   2.0,
			expectedSamples: []float64{1.0, 2.0, 9.0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ComputeCycleTime(tc.records, tc.opts)

			assert.Equal(t, "cycle_time", result.Metric)
			assert.Equal(t, tc.expectedSkipped, result.Skipped)
			assert.Equal(t, tc.expectedMalformed, result.Malformed)

			if tc.expectEmptySample {
				var emptyErr *domain.EmptySampleError
				require.ErrorAs(t, err, &emptyErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedSamples, result.SampleValues)
			assert.Equal(t, len(tc.expectedSamples), result.SampleSize)
			assert.InDelta(t, tc.expectedValue, result.AggregateValue, 1e-9)
		})
	}
}

func TestComputeReviewTime_ExcludesUnreviewedPRs(t *testing.T) {
	records := []domain.PullRequestRecord{
		{
			CreatedAt:     ts(t, "2024-01-01T00:00:00Z"),
			FirstReviewAt: ts(t, "2024-01-01T04:00:00Z"),
			ReviewCount:   2,
		},
		{
			CreatedAt:   ts(t, "2024-01-01T00:00:00Z"),
			ReviewCount: 0,
		},
	}

	result, err := ComputeReviewTime(records, Options{})
	require.NoError(t, err)
	assert.Equal(t, "review_time", result.Metric)
	assert.Equal(t, 1, result.SampleSize)
	assert.Equal(t, []float64{4.0}, result.SampleValues)
	assert.InDelta(t, 4.0, result.AggregateValue, 1e-9)
	assert.Equal(t, 1, result.Skipped)
}

func TestComputeReviewTime_DistinguishesEmptyReasons(t *testing.T) {
	var emptyErr *domain.EmptySampleError

	_, err := ComputeReviewTime(nil, Options{})
	require.ErrorAs(t, err, &emptyErr)
	assert.Contains(t, emptyErr.Error(), "no pull requests")

	unreviewed := []domain.PullRequestRecord{
		{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), ReviewCount: 0},
	}
	_, err = ComputeReviewTime(unreviewed, Options{})
	require.ErrorAs(t, err, &emptyErr)
	assert.Contains(t, emptyErr.Error(), "no reviewed pull requests")
}

func TestAggregate(t *testing.T) {
	testCases := []struct {
		name     string
		values   []float64
		kind     AggregateKind
		expected float64
	}{
		{name: "even-length median averages the middle pair", values: []float64{1, 2, 3, 4}, kind: Median, expected: 2.5},
		{name: "even-length mean", values: []float64{1, 2, 3, 4}, kind: Mean, expected: 2.5},
		{name: "odd-length median", values: []float64{1, 2, 3}, kind: Median, expected: 2},
		{name: "odd-length mean", values: []float64{1, 2, 3}, kind: Mean, expected: 2},
		{name: "unspecified kind defaults to mean", values: []float64{2, 4}, kind: "", expected: 3},
		{name: "median of unsorted input", values: []float64{9, 1, 5}, kind: Median, expected: 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value, err := Aggregate(tc.values, tc.kind)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, value, 1e-9)
		})
	}

	t.Run("empty values", func(t *testing.T) {
		var emptyErr *domain.EmptySampleError
		_, err := Aggregate(nil, Mean)
		assert.ErrorAs(t, err, &emptyErr)
	})
}
