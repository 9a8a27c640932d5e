package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewFake(start)

	c.Advance(Days(15))
	assert.Equal(t, start.Add(15*24*time.Hour), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestRealIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Real().Now().Location())
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{"past", now.Add(-time.Hour), 0},
		{"same instant", now, 0},
		{"one hour", now.Add(time.Hour), 1},
		{"exact days", now.Add(Days(14)), 14},
		{"partial day rounds up", now.Add(Days(2) + time.Minute), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(now, tt.t))
		})
	}
}
