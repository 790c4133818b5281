// Package schedule defines the hourly slot grid for a bookable day: one civil
// timezone for the whole deployment and an operating window per kind of day.
package schedule

import (
	"fmt"
	"time"

	"github.com/dvalenz/roomreserve/config"
)

const dateLayout = "2006-01-02"

// Window is a half-open range of bookable hours [OpenHour, CloseHour).
type Window struct {
	OpenHour  int
	CloseHour int
}

type Schedule struct {
	loc      *time.Location
	weekday  Window
	weekend  Window
	maxSlots int
}

func New(cfg config.ScheduleConfig) (*Schedule, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	weekday := Window{OpenHour: cfg.Weekday.OpenHour, CloseHour: cfg.Weekday.CloseHour}
	weekend := Window{OpenHour: cfg.Weekend.OpenHour, CloseHour: cfg.Weekend.CloseHour}
	for _, w := range []Window{weekday, weekend} {
		if w.OpenHour < 0 || w.CloseHour > 24 || w.OpenHour >= w.CloseHour {
			return nil, fmt.Errorf("invalid operating window [%d, %d)", w.OpenHour, w.CloseHour)
		}
	}

	maxSlots := cfg.MaxSlotsPerDay
	if maxSlots <= 0 {
		maxSlots = 2
	}

	return &Schedule{loc: loc, weekday: weekday, weekend: weekend, maxSlots: maxSlots}, nil
}

func (s *Schedule) Location() *time.Location {
	return s.loc
}

func (s *Schedule) MaxSlots() int {
	return s.maxSlots
}

// ParseDate interprets a "YYYY-MM-DD" civil date at midnight in the schedule's
// timezone.
func (s *Schedule) ParseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day, nil
}

// WindowFor returns the operating window for the given civil date. Weekends
// get the shorter weekend window.
func (s *Schedule) WindowFor(date string) (Window, error) {
	day, err := s.ParseDate(date)
	if err != nil {
		return Window{}, err
	}
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return s.weekend, nil
	default:
		return s.weekday, nil
	}
}

// SlotsForDay returns the ordered hour markers of every bookable slot on the
// given date.
func (s *Schedule) SlotsForDay(date string) ([]int, error) {
	w, err := s.WindowFor(date)
	if err != nil {
		return nil, err
	}
	hours := make([]int, 0, w.CloseHour-w.OpenHour)
	for h := w.OpenHour; h < w.CloseHour; h++ {
		hours = append(hours, h)
	}
	return hours, nil
}

// Aligned reports whether [start, end) sits on slot boundaries and spans a
// positive whole number of slots no longer than the configured maximum.
func (s *Schedule) Aligned(start, end time.Time) bool {
	start = start.In(s.loc)
	end = end.In(s.loc)
	if !onHourBoundary(start) || !onHourBoundary(end) {
		return false
	}
	if !end.After(start) {
		return false
	}
	span := end.Sub(start)
	if span%time.Hour != 0 {
		return false
	}
	slots := int(span / time.Hour)
	return slots >= 1 && slots <= s.maxSlots
}

// WithinWindow reports whether [start, end) fits inside the operating window
// of the given date. The end hour may equal the window's closing bound but
// never exceed it, so a span can not leak past closing or across midnight.
func (s *Schedule) WithinWindow(date string, start, end time.Time) bool {
	w, err := s.WindowFor(date)
	if err != nil {
		return false
	}
	day, err := s.ParseDate(date)
	if err != nil {
		return false
	}
	start = start.In(s.loc)
	end = end.In(s.loc)
	if start.Year() != day.Year() || start.YearDay() != day.YearDay() {
		return false
	}
	startHour := start.Hour()
	endHour := startHour + int(end.Sub(start)/time.Hour)
	return startHour >= w.OpenHour && endHour <= w.CloseHour
}

// HourOf returns the civil hour-of-day of an instant in the schedule's
// timezone.
func (s *Schedule) HourOf(t time.Time) int {
	return t.In(s.loc).Hour()
}

// SlotTimes converts a (date, startHour, slots) request into the concrete
// [start, end) instants in the schedule's timezone.
func (s *Schedule) SlotTimes(date string, startHour, slots int) (time.Time, time.Time, error) {
	day, err := s.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := day.Add(time.Duration(startHour) * time.Hour)
	end := start.Add(time.Duration(slots) * time.Hour)
	return start, end, nil
}

func onHourBoundary(t time.Time) bool {
	return t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
