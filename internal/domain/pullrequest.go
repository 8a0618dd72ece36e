// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// PullRequestRecord holds the raw timestamps for a single pull request
// as returned by the GitHub fetch layer. Optional timestamps are nil
// pointers; a nil MergedAt means the PR was never merged, a nil
// FirstReviewAt means no review has been submitted.
type PullRequestRecord struct {
	Number        int        `json:"number"`
	Title         string     `json:"title,omitempty"`
	State         string     `json:"state,omitempty"`
	Author        string     `json:"author,omitempty"`
	CreatedAt     *time.Time `json:"created_at"`
	MergedAt      *time.Time `json:"merged_at"`
	ClosedAt      *time.Time `json:"closed_at"`
	FirstReviewAt *time.Time `json:"first_review_at,omitempty"`
	ReviewCount   int        `json:"review_count,omitempty"`
}

// UserConfig is a user's persisted configuration: the GitHub credential
// and the list of repositories they track. A user that was never
// configured is represented by the zero value, not by an error.
type UserConfig struct {
	UserID       string   `json:"user_id"`
	Credential   string   `json:"credential"`
	TrackedRepos []string `json:"tracked_repos"`
}

// MetricResult is the outcome of a metric computation: the aggregate
// plus the per-record sample values used to derive it, so callers can
// show their work. Skipped counts records missing a required timestamp;
// Malformed counts records whose end timestamp precedes the start.
type MetricResult struct {
	Metric         string    `json:"metric"`
	Unit           string    `json:"unit"`
	Aggregate      string    `json:"aggregate"`
	AggregateValue float64   `json:"aggregate_value"`
	SampleValues   []float64 `json:"sample_values"`
	SampleSize     int       `json:"sample_size"`
	Skipped        int       `json:"skipped"`
	Malformed      int       `json:"malformed"`
	Repos          []string  `json:"repos,omitempty"`
}
