package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionsDefaults(t *testing.T) {
	now := time.Date(2026, 3, 31, 15, 4, 5, 0, time.UTC)
	opts, err := parseOptions(nil, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), opts.from)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), opts.to)
	assert.Equal(t, "leads-20260301-20260331.xlsx", opts.out)
}

func TestParseOptionsExplicitRange(t *testing.T) {
	opts, err := parseOptions([]string{"-from", "2026-01-10", "-to", "2026-01-10", "-out", "jan.xlsx"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), opts.from)
	assert.Equal(t, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), opts.to)
	assert.Equal(t, "jan.xlsx", opts.out)
}

func TestParseOptionsErrors(t *testing.T) {
	_, err := parseOptions([]string{"-from", "10/01/2026"}, time.Now())
	assert.Error(t, err)

	_, err = parseOptions([]string{"-from", "2026-02-01", "-to", "2026-01-01"}, time.Now())
	assert.Error(t, err)
}
