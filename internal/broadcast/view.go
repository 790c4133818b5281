package broadcast

import (
	"sort"

	"github.com/dvalenz/roomreserve/internal/domain"
)

// View is the locally held reservation list a connected viewer maintains from
// the event stream. Applying the same event twice is harmless: entries are
// keyed by reservation id, so redelivery never duplicates a reservation.
type View struct {
	byID map[int64]domain.Reservation
}

func NewView(initial []domain.Reservation) *View {
	v := &View{byID: make(map[int64]domain.Reservation, len(initial))}
	for _, r := range initial {
		v.byID[r.ID] = r
	}
	return v
}

func (v *View) Apply(evt Event) {
	if evt.Data == nil {
		return
	}
	switch evt.Type {
	case EventNewReservation, EventUpdatedReservation:
		v.byID[evt.Data.ID] = *evt.Data
	case EventCancelledReservation:
		delete(v.byID, evt.Data.ID)
	}
}

// Reservations returns the current list ordered by id.
func (v *View) Reservations() []domain.Reservation {
	out := make([]domain.Reservation, 0, len(v.byID))
	for _, r := range v.byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
