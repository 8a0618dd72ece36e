package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when an operation needs a GitHub
	// token and none was supplied or stored.
	ErrMissingCredential = errors.New("github credential is not configured")

	// ErrUserNotConfigured is returned by repo-tracking mutations when
	// no configuration row exists for the user. Saving a credential
	// creates the row.
	ErrUserNotConfigured = errors.New("user configuration not found, save a credential first")

	// ErrNoTrackedRepos is returned when a metric fetch needs a target
	// repository and the user tracks none.
	ErrNoTrackedRepos = errors.New("no tracked repositories, add a repository first")
)

// EmptySampleError reports that a metric computation had zero
// qualifying records. It is a user-visible condition, not a crash: the
// Reason distinguishes "no pull requests at all" from "no pull requests
// with the timestamps this metric needs".
type EmptySampleError struct {
	Reason string
}

func (e *EmptySampleError) Error() string {
	return fmt.Sprintf("empty sample: %s", e.Reason)
}

// FetchError is an HTTP failure from the GitHub API, propagated
// unchanged from the fetch layer to its caller. StatusCode is zero when
// no HTTP response was received (transport or GraphQL-level failure).
type FetchError struct {
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github fetch failed: %s", e.Message)
	}
	return fmt.Sprintf("github fetch failed: %d %s", e.StatusCode, e.Message)
}
