package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlockedPeriodOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	period := BlockedPeriod{
		StartTime: base,                    // 14:00
		EndTime:   base.Add(2 * time.Hour), // 16:00
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"fully inside", base.Add(30 * time.Minute), base.Add(time.Hour), true},
		{"fully covering", base.Add(-time.Hour), base.Add(3 * time.Hour), true},
		{"straddles start", base.Add(-time.Hour), base.Add(time.Minute), true},
		{"straddles end", base.Add(time.Hour), base.Add(3 * time.Hour), true},
		{"identical", base, base.Add(2 * time.Hour), true},
		{"before, touching start", base.Add(-time.Hour), base, false},
		{"after, touching end", base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
		{"well before", base.Add(-3 * time.Hour), base.Add(-2 * time.Hour), false},
		{"well after", base.Add(5 * time.Hour), base.Add(6 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.Overlaps(tt.start, tt.end))
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	got := NormalizeDescription("  Trim me  ")
	if assert.NotNil(t, got) {
		assert.Equal(t, "Trim me", *got)
	}

	assert.Nil(t, NormalizeDescription(""))
	assert.Nil(t, NormalizeDescription("   \t\n"))
}

func TestCreateBlockedPeriodRequestValidate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	ok := CreateBlockedPeriodRequest{StartTime: now, EndTime: now.Add(time.Hour)}
	assert.NoError(t, ok.Validate())

	equal := CreateBlockedPeriodRequest{StartTime: now, EndTime: now}
	assert.Error(t, equal.Validate())

	inverted := CreateBlockedPeriodRequest{StartTime: now.Add(time.Hour), EndTime: now}
	assert.Error(t, inverted.Validate())

	long := CreateBlockedPeriodRequest{
		StartTime:   now,
		EndTime:     now.Add(time.Hour),
		Description: strings.Repeat("x", MaxBlockedPeriodDescription+1),
	}
	assert.Error(t, long.Validate())
}

func TestIsOrdered(t *testing.T) {
	assert.True(t, IsOrdered("09:00", "17:00"))
	assert.False(t, IsOrdered("17:00", "09:00"))
	assert.False(t, IsOrdered("09:00", "09:00"))
}
