package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dvalenz/roomreserve/internal/availability"
	"github.com/dvalenz/roomreserve/internal/broadcast"
	"github.com/dvalenz/roomreserve/internal/domain"
	"github.com/dvalenz/roomreserve/internal/kafka"
	"github.com/dvalenz/roomreserve/internal/repository"
	"github.com/dvalenz/roomreserve/internal/schedule"
	"github.com/google/uuid"
)

// ErrSlotUnavailable distinguishes booking conflicts from validation
// failures so the caller can prompt for another time instead of a form fix.
var ErrSlotUnavailable = errors.New("requested slot is no longer available")

var ErrInvalidInput = errors.New("invalid reservation request")

var ErrNotAllowed = errors.New("not allowed to modify this reservation")

type ReservationUseCase interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, id int64, actor Actor) (*domain.Reservation, error)
	ConfirmPayment(ctx context.Context, code string) (*domain.Reservation, error)
	ExpirePendingReservations(ctx context.Context) ([]domain.Reservation, error)
	ListByDate(ctx context.Context, date string) ([]domain.Reservation, error)
	ListForRoom(ctx context.Context, roomID int64, date string) ([]domain.Reservation, error)
	Availability(ctx context.Context, roomID int64, date string) ([]availability.SlotStatus, error)
}

type Cache interface {
	AcquireSlotLock(ctx context.Context, roomID int64, date string, hour int, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, roomID int64, date string, hour int) error
	GetRooms(ctx context.Context) ([]domain.Room, error)
	SetRooms(ctx context.Context, rooms []domain.Room) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// Notification publishes retry a few times: a missed email matters more than
// a missed live-grid update, which the client repairs with a full fetch.
const notifyPublishRetries = 3

type Broadcaster interface {
	Publish(evt broadcast.Event)
}

type ReservationService struct {
	reservations       repository.ReservationRepository
	rooms              repository.RoomRepository
	sched              *schedule.Schedule
	cache              Cache
	producer           Producer
	hub                Broadcaster
	reservationsTopic  string
	notificationsTopic string
	holdTTL            time.Duration
	confirmationTTL    time.Duration
}

// CreateReservationInput mirrors the booking form: a room, a civil date and
// the requested [start, end) instants, plus whoever is booking. UserID is set
// from the session for authenticated users; guests supply name and email.
type CreateReservationInput struct {
	RoomID     int64     `json:"room_id"`
	Date       string    `json:"reservation_date"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Purpose    string    `json:"purpose"`
	UserID     *int64    `json:"-"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
}

// Actor identifies who is attempting a cancellation.
type Actor struct {
	UserID *int64
	Email  string
	Admin  bool
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	rooms repository.RoomRepository,
	sched *schedule.Schedule,
	cache Cache,
	producer Producer,
	hub Broadcaster,
	reservationsTopic string,
	holdTTL, confirmationTTL time.Duration,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		reservations:      reservations,
		rooms:             rooms,
		sched:             sched,
		cache:             cache,
		producer:          producer,
		hub:               hub,
		reservationsTopic: reservationsTopic,
		holdTTL:           holdTTL,
		confirmationTTL:   confirmationTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateReservation runs the booking workflow: validate the requested span,
// hold its hours, re-check availability against a fresh ledger read, persist,
// then broadcast. The ledger's own overlap guard decides races that slip past
// the pre-check. Broadcast failures never roll back a persisted reservation.
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	startHour := s.sched.HourOf(input.StartTime)
	slots := int(input.EndTime.Sub(input.StartTime) / time.Hour)

	held, err := s.holdSlots(ctx, input.RoomID, input.Date, startHour, slots)
	if err != nil {
		return nil, err
	}

	current, err := s.reservations.ListForRoom(ctx, input.RoomID, input.Date)
	if err != nil {
		s.releaseSlots(ctx, input.RoomID, input.Date, held)
		return nil, err
	}
	if !availability.IsBookable(s.sched, input.RoomID, input.Date, current, startHour, slots) {
		s.releaseSlots(ctx, input.RoomID, input.Date, held)
		return nil, ErrSlotUnavailable
	}

	res := &domain.Reservation{
		RoomID:     input.RoomID,
		UserID:     input.UserID,
		GuestName:  input.GuestName,
		GuestEmail: input.GuestEmail,
		Date:       input.Date,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Status:     domain.ReservationStatusPendingPayment,
		Purpose:    input.Purpose,
		Code:       newConfirmationCode(),
	}

	if err := s.reservations.Create(ctx, res); err != nil {
		s.releaseSlots(ctx, input.RoomID, input.Date, held)
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	s.publish(ctx, broadcast.EventNewReservation, res)
	return res, nil
}

func (s *ReservationService) CancelReservation(ctx context.Context, id int64, actor Actor) (*domain.Reservation, error) {
	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canCancel(current, actor) {
		return nil, ErrNotAllowed
	}
	if current.Status == domain.ReservationStatusCancelled {
		return current, nil
	}

	updated, err := s.reservations.UpdateStatus(ctx, id, domain.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.releaseReservationSlots(ctx, updated)
	s.publish(ctx, broadcast.EventCancelledReservation, updated)
	return updated, nil
}

// ConfirmPayment moves a reservation to CONFIRMED once the payment gateway
// reports success for its confirmation code.
func (s *ReservationService) ConfirmPayment(ctx context.Context, code string) (*domain.Reservation, error) {
	current, err := s.reservations.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.ReservationStatusPendingPayment {
		return nil, fmt.Errorf("reservation %s is not pending payment", code)
	}

	updated, err := s.reservations.UpdateStatus(ctx, current.ID, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, err
	}
	s.releaseReservationSlots(ctx, updated)
	s.publish(ctx, broadcast.EventUpdatedReservation, updated)
	return updated, nil
}

// ExpirePendingReservations cancels pending-payment reservations whose
// payment window has lapsed, freeing their slots.
func (s *ReservationService) ExpirePendingReservations(ctx context.Context) ([]domain.Reservation, error) {
	deadline := time.Now().Add(-s.confirmationTTL)
	expired, err := s.reservations.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.releaseReservationSlots(ctx, &expired[i])
		s.publish(ctx, broadcast.EventCancelledReservation, &expired[i])
	}
	return expired, nil
}

func (s *ReservationService) ListByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	if _, err := s.sched.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.reservations.ListByDate(ctx, date)
}

func (s *ReservationService) ListForRoom(ctx context.Context, roomID int64, date string) ([]domain.Reservation, error) {
	if _, err := s.sched.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.reservations.ListForRoom(ctx, roomID, date)
}

// Availability returns the slot grid for one room and date, computed from a
// fresh ledger read.
func (s *ReservationService) Availability(ctx context.Context, roomID int64, date string) ([]availability.SlotStatus, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	current, err := s.reservations.ListForRoom(ctx, roomID, date)
	if err != nil {
		return nil, err
	}
	grid, err := availability.ComputeGrid(s.sched, roomID, date, current)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return grid, nil
}

func (s *ReservationService) validateInput(input CreateReservationInput) error {
	hasUser := input.UserID != nil
	hasGuest := input.GuestName != "" && input.GuestEmail != ""
	if hasUser == hasGuest {
		return fmt.Errorf("%w: exactly one of user identity or guest name and email is required", ErrInvalidInput)
	}
	if _, err := s.sched.ParseDate(input.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !s.sched.Aligned(input.StartTime, input.EndTime) {
		return fmt.Errorf("%w: span must cover 1 to %d whole hours on slot boundaries", ErrInvalidInput, s.sched.MaxSlots())
	}
	if !s.sched.WithinWindow(input.Date, input.StartTime, input.EndTime) {
		return fmt.Errorf("%w: span is outside the operating window for %s", ErrInvalidInput, input.Date)
	}
	return nil
}

// holdSlots takes the short-lived redis hold on every requested hour. It is
// the fast path that turns most races into immediate conflicts; the held
// hours are returned so failure paths can release them.
func (s *ReservationService) holdSlots(ctx context.Context, roomID int64, date string, startHour, slots int) ([]int, error) {
	if s.cache == nil {
		return nil, nil
	}
	held := make([]int, 0, slots)
	for h := startHour; h < startHour+slots; h++ {
		ok, err := s.cache.AcquireSlotLock(ctx, roomID, date, h, s.holdTTL)
		if err != nil {
			s.releaseSlots(ctx, roomID, date, held)
			return nil, err
		}
		if !ok {
			s.releaseSlots(ctx, roomID, date, held)
			return nil, ErrSlotUnavailable
		}
		held = append(held, h)
	}
	return held, nil
}

func (s *ReservationService) releaseSlots(ctx context.Context, roomID int64, date string, hours []int) {
	if s.cache == nil {
		return
	}
	for _, h := range hours {
		_ = s.cache.ReleaseSlotLock(ctx, roomID, date, h)
	}
}

func (s *ReservationService) releaseReservationSlots(ctx context.Context, res *domain.Reservation) {
	if s.cache == nil {
		return
	}
	startHour := s.sched.HourOf(res.StartTime)
	slots := int(res.EndTime.Sub(res.StartTime) / time.Hour)
	for h := startHour; h < startHour+slots; h++ {
		_ = s.cache.ReleaseSlotLock(ctx, res.RoomID, res.Date, h)
	}
}

func (s *ReservationService) publish(ctx context.Context, eventType string, res *domain.Reservation) {
	if s.hub != nil {
		s.hub.Publish(broadcast.Event{Type: eventType, Data: res})
	}

	if s.producer == nil || s.reservationsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:       eventType,
		ID:         res.ID,
		Code:       res.Code,
		RoomID:     res.RoomID,
		Date:       res.Date,
		StartTime:  res.StartTime,
		EndTime:    res.EndTime,
		GuestName:  res.GuestName,
		GuestEmail: res.GuestEmail,
		Status:     string(res.Status),
	}
	if err := s.producer.Publish(ctx, s.reservationsTopic, res.Code, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for reservation %s: %v", eventType, res.Code, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, res.Code, event, notifyPublishRetries); err != nil {
			log.Printf("WARNING: failed to publish %s notification for reservation %s: %v", eventType, res.Code, err)
		}
	}
}

func canCancel(res *domain.Reservation, actor Actor) bool {
	if actor.Admin {
		return true
	}
	if res.UserID != nil && actor.UserID != nil && *res.UserID == *actor.UserID {
		return true
	}
	if res.GuestEmail != "" && actor.Email != "" && strings.EqualFold(res.GuestEmail, actor.Email) {
		return true
	}
	return false
}

func newConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

var _ ReservationUseCase = (*ReservationService)(nil)
