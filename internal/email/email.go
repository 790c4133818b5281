package email

import (
	"context"
	"fmt"

	"github.com/dvalenz/roomreserve/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if event.GuestEmail == "" {
		return nil
	}
	fmt.Printf("send email to %s about %s for room %d on %s (code %s)\n",
		event.GuestEmail, event.Type, event.RoomID, event.Date, event.Code)
	return nil
}
