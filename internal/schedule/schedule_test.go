package schedule

import (
	"testing"
	"time"

	"github.com/dvalenz/roomreserve/config"
	"github.com/stretchr/testify/assert"
)

func testConfig() config.ScheduleConfig {
	return config.ScheduleConfig{
		Timezone:       "America/New_York",
		Weekday:        config.WindowConfig{OpenHour: 9, CloseHour: 21},
		Weekend:        config.WindowConfig{OpenHour: 10, CloseHour: 18},
		MaxSlotsPerDay: 2,
	}
}

func mustSchedule(t *testing.T) *Schedule {
	t.Helper()
	sched, err := New(testConfig())
	assert.NoError(t, err)
	return sched
}

func TestNew_InvalidWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Weekday = config.WindowConfig{OpenHour: 20, CloseHour: 9}
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Weekend = config.WindowConfig{OpenHour: 10, CloseHour: 25}
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNew_InvalidTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Neverland/Nowhere"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestSlotsForDay(t *testing.T) {
	sched := mustSchedule(t)

	// 2025-04-07 is a Monday, 2025-04-05 a Saturday.
	weekday, err := sched.SlotsForDay("2025-04-07")
	assert.NoError(t, err)
	assert.Len(t, weekday, 12)
	assert.Equal(t, 9, weekday[0])
	assert.Equal(t, 20, weekday[len(weekday)-1])

	weekend, err := sched.SlotsForDay("2025-04-05")
	assert.NoError(t, err)
	assert.Len(t, weekend, 8)
	assert.Equal(t, 10, weekend[0])
	assert.Equal(t, 17, weekend[len(weekend)-1])
}

func TestSlotsForDay_BadDate(t *testing.T) {
	sched := mustSchedule(t)
	_, err := sched.SlotsForDay("07-04-2025")
	assert.Error(t, err)
}

func TestAligned(t *testing.T) {
	sched := mustSchedule(t)
	loc := sched.Location()
	at := func(hour, min int) time.Time {
		return time.Date(2025, 4, 7, hour, min, 0, 0, loc)
	}

	testCases := []struct {
		name    string
		start   time.Time
		end     time.Time
		aligned bool
	}{
		{name: "one slot", start: at(14, 0), end: at(15, 0), aligned: true},
		{name: "two slots", start: at(14, 0), end: at(16, 0), aligned: true},
		{name: "three slots exceeds max", start: at(14, 0), end: at(17, 0), aligned: false},
		{name: "half hour span", start: at(14, 0), end: at(14, 30), aligned: false},
		{name: "off boundary start", start: at(14, 15), end: at(15, 15), aligned: false},
		{name: "end before start", start: at(15, 0), end: at(14, 0), aligned: false},
		{name: "zero span", start: at(14, 0), end: at(14, 0), aligned: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.aligned, sched.Aligned(tc.start, tc.end))
		})
	}
}

func TestWithinWindow(t *testing.T) {
	sched := mustSchedule(t)
	loc := sched.Location()

	start := time.Date(2025, 4, 7, 19, 0, 0, 0, loc)
	end := time.Date(2025, 4, 7, 21, 0, 0, 0, loc)
	assert.True(t, sched.WithinWindow("2025-04-07", start, end), "span ending exactly at close is allowed")

	start = time.Date(2025, 4, 7, 20, 0, 0, 0, loc)
	end = time.Date(2025, 4, 7, 22, 0, 0, 0, loc)
	assert.False(t, sched.WithinWindow("2025-04-07", start, end), "span may not leak past closing")

	start = time.Date(2025, 4, 7, 8, 0, 0, 0, loc)
	end = time.Date(2025, 4, 7, 9, 0, 0, 0, loc)
	assert.False(t, sched.WithinWindow("2025-04-07", start, end), "span may not start before opening")

	start = time.Date(2025, 4, 7, 23, 0, 0, 0, loc)
	end = time.Date(2025, 4, 8, 1, 0, 0, 0, loc)
	assert.False(t, sched.WithinWindow("2025-04-07", start, end), "span may not cross midnight")

	start = time.Date(2025, 4, 8, 14, 0, 0, 0, loc)
	end = time.Date(2025, 4, 8, 15, 0, 0, 0, loc)
	assert.False(t, sched.WithinWindow("2025-04-07", start, end), "span must lie on the requested date")

	// Saturday uses the shorter weekend window.
	start = time.Date(2025, 4, 5, 17, 0, 0, 0, loc)
	end = time.Date(2025, 4, 5, 19, 0, 0, 0, loc)
	assert.False(t, sched.WithinWindow("2025-04-05", start, end))
	start = time.Date(2025, 4, 5, 16, 0, 0, 0, loc)
	end = time.Date(2025, 4, 5, 18, 0, 0, 0, loc)
	assert.True(t, sched.WithinWindow("2025-04-05", start, end))
}

func TestSlotTimes(t *testing.T) {
	sched := mustSchedule(t)
	loc := sched.Location()

	start, end, err := sched.SlotTimes("2025-04-07", 14, 2)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 7, 14, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 4, 7, 16, 0, 0, 0, loc), end)
}
