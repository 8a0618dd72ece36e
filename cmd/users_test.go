package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatToken(t *testing.T) {
	testCases := []struct {
		name     string
		token    string
		mask     bool
		expected string
	}{
		{name: "empty token", token: "", mask: true, expected: "(not set)"},
		{name: "masked token shows first and last four", token: "ghp_abcdefgh1234", mask: true, expected: "ghp_...1234 (hidden)"},
		{name: "short token fully hidden", token: "tok123", mask: true, expected: "**** (hidden)"},
		{name: "unmasked token", token: "ghp_abcdefgh1234", mask: false, expected: "ghp_abcdefgh1234"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, formatToken(tc.token, tc.mask))
		})
	}
}
