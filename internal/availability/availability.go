// Package availability computes per-slot availability grids from the
// reservations of one room and date. Pure functions over their inputs.
package availability

import (
	"log"

	"github.com/dvalenz/roomreserve/internal/domain"
	"github.com/dvalenz/roomreserve/internal/schedule"
)

type SlotStatus struct {
	Hour      int  `json:"hour"`
	Available bool `json:"available"`
}

// ComputeGrid returns one SlotStatus per slot of the room's operating window
// on the given date. A slot is occupied when a blocking reservation covers it
// with its half-open [startHour, endHour) civil-hour span. Records that do not
// belong to the room or date, or carry unusable start/end instants, never
// block a slot.
func ComputeGrid(sched *schedule.Schedule, roomID int64, date string, reservations []domain.Reservation) ([]SlotStatus, error) {
	w, err := sched.WindowFor(date)
	if err != nil {
		return nil, err
	}

	occupied := make(map[int]bool)
	for _, r := range reservations {
		if r.RoomID != roomID || r.Date != date || !r.Status.Blocks() {
			continue
		}
		if malformed(r) {
			log.Printf("availability: skipping malformed reservation %d (code %s)", r.ID, r.Code)
			continue
		}
		startHour := sched.HourOf(r.StartTime)
		endHour := startHour + spanHours(r)
		for h := startHour; h < endHour; h++ {
			occupied[h] = true
		}
	}

	grid := make([]SlotStatus, 0, w.CloseHour-w.OpenHour)
	for h := w.OpenHour; h < w.CloseHour; h++ {
		grid = append(grid, SlotStatus{Hour: h, Available: !occupied[h]})
	}
	return grid, nil
}

// IsBookable reports whether every slot of [startHour, startHour+slots) is
// inside the operating window and free per the current grid.
func IsBookable(sched *schedule.Schedule, roomID int64, date string, reservations []domain.Reservation, startHour, slots int) bool {
	if slots < 1 {
		return false
	}
	grid, err := ComputeGrid(sched, roomID, date, reservations)
	if err != nil {
		return false
	}
	free := make(map[int]bool, len(grid))
	for _, s := range grid {
		free[s.Hour] = s.Available
	}
	for h := startHour; h < startHour+slots; h++ {
		if !free[h] {
			return false
		}
	}
	return true
}

func malformed(r domain.Reservation) bool {
	return r.StartTime.IsZero() || r.EndTime.IsZero() || !r.EndTime.After(r.StartTime)
}

func spanHours(r domain.Reservation) int {
	span := int(r.EndTime.Sub(r.StartTime).Hours())
	if span < 1 {
		span = 1
	}
	return span
}
