package configstore

import (
	"encoding/json"
	"fmt"
)

// The tracked_repos column stores a JSON array of "owner/name" strings.
// All encoding and decoding goes through these two helpers so the
// invariant — the list has no duplicates and the column always parses —
// is enforced in exactly one place.

func decodeRepos(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var repos []string
	if err := json.Unmarshal([]byte(raw), &repos); err != nil {
		return nil, fmt.Errorf("malformed tracked_repos column: %w", err)
	}
	return dedupe(repos), nil
}

func encodeRepos(repos []string) (string, error) {
	if repos == nil {
		repos = []string{}
	}
	raw, err := json.Marshal(dedupe(repos))
	if err != nil {
		return "", fmt.Errorf("encoding tracked_repos: %w", err)
	}
	return string(raw), nil
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(repos []string) []string {
	seen := make(map[string]bool, len(repos))
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
