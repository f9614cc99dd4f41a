package uiutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFriendlyDateTime(t *testing.T) {
	assert.Empty(t, FormatFriendlyDateTime(time.Time{}))

	ts := time.Date(2024, 6, 1, 15, 4, 0, 0, time.Local)
	assert.Equal(t, "Jun 1, 2024 3:04 PM", FormatFriendlyDateTime(ts))
}

func TestFriendlyRemaining(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"past", now.Add(-time.Second), "expired"},
		{"seconds", now.Add(30 * time.Second), "in less than a minute"},
		{"one minute", now.Add(time.Minute), "in 1 minute"},
		{"minutes", now.Add(45 * time.Minute), "in 45 minutes"},
		{"one hour", now.Add(90 * time.Minute), "in 1 hour"},
		{"hours", now.Add(8 * time.Hour), "in 8 hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FriendlyRemaining(tt.at, now))
		})
	}
}
