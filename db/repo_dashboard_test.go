package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDayUsesLocalCalendarDay(t *testing.T) {
	brt := time.FixedZone("BRT", -3*3600)
	ts := time.Date(2026, 8, 29, 1, 30, 0, 0, brt)

	got := startOfDay(ts)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, brt), got)
	assert.Equal(t, brt, got.Location())

	// UTC truncation would land on a different instant west of Greenwich
	assert.False(t, got.Equal(ts.UTC().Truncate(24*time.Hour)))
}
