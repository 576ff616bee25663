package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePeriod(t *testing.T) {
	tests := map[string]Period{
		"":     DefaultPeriod,
		"1y":   Period1y,
		" 5Y ": Period5y,
		"10y":  DefaultPeriod,
		"1mo":  Period1mo,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePeriod(in), in)
	}
}

func TestNormalizeInterval(t *testing.T) {
	assert.Equal(t, Interval1wk, NormalizeInterval("1WK"))
	assert.Equal(t, DefaultInterval, NormalizeInterval("5m"))
	assert.Equal(t, Interval1mo, NormalizeInterval("1mo"))
}
