package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.26, RoundFloat(1.2567, 2))
	assert.Equal(t, -0.5, RoundFloat(-0.499999, 1))
	assert.Equal(t, 10.0, RoundFloat(10.0, 2))
}

func TestPositionSize(t *testing.T) {
	tests := []struct {
		name      string
		risk      float64
		entry     float64
		stop      float64
		wantUnits float64
	}{
		{"long setup", 100, 50.0, 48.0, 50.0},
		{"short setup uses absolute distance", 100, 48.0, 50.0, 50.0},
		{"fractional units", 200, 1.1050, 1.0950, 20000.0},
		{"zero distance", 100, 50.0, 50.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantUnits, PositionSize(tt.risk, tt.entry, tt.stop), 0.01)
		})
	}
}

func TestDayOf(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canonical date", "2024-03-15 10:30", "2024-03-15"},
		{"passthrough with date prefix", "2024-03-15T10:30:00Z", "2024-03-15"},
		{"short passthrough", "garbage", "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayOf(tt.in))
		})
	}
}
