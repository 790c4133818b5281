package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusConfirmed      ReservationStatus = "CONFIRMED"
	ReservationStatusPendingPayment ReservationStatus = "PENDING_PAYMENT"
	ReservationStatusCancelled      ReservationStatus = "CANCELLED"
)

// Blocks reports whether a reservation in this status occupies its slots.
// Cancelled reservations are immediately rebookable.
func (s ReservationStatus) Blocks() bool {
	return s == ReservationStatusConfirmed || s == ReservationStatusPendingPayment
}

// Reservation is one booked span of hourly slots in a room. Exactly one of
// UserID or the GuestName/GuestEmail pair identifies the booker. Date is the
// civil calendar day ("2006-01-02") in the deployment timezone; StartTime and
// EndTime are the half-open [start, end) instants of the booked span.
type Reservation struct {
	ID         int64             `json:"id"`
	RoomID     int64             `json:"room_id"`
	UserID     *int64            `json:"user_id,omitempty"`
	GuestName  string            `json:"guest_name,omitempty"`
	GuestEmail string            `json:"guest_email,omitempty"`
	Date       string            `json:"reservation_date"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Status     ReservationStatus `json:"status"`
	Purpose    string            `json:"purpose,omitempty"`
	Code       string            `json:"confirmation_code"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
