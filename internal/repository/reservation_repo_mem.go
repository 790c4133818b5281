package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dvalenz/roomreserve/internal/domain"
)

// MemoryReservationRepository keeps the ledger in memory behind a mutex. It
// enforces the same overlap guard as the postgres implementation, so tests
// exercise real conflict semantics without a database.
type MemoryReservationRepository struct {
	mu           sync.Mutex
	reservations map[int64]*domain.Reservation
	nextID       int64
}

func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{
		reservations: make(map[int64]*domain.Reservation),
		nextID:       1,
	}
}

func (r *MemoryReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reservations {
		if existing.RoomID != reservation.RoomID || existing.Date != reservation.Date {
			continue
		}
		if !existing.Status.Blocks() {
			continue
		}
		if existing.StartTime.Before(reservation.EndTime) && existing.EndTime.After(reservation.StartTime) {
			return ErrSlotTaken
		}
	}

	now := time.Now().UTC()
	reservation.ID = r.nextID
	r.nextID++
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	stored := *reservation
	r.reservations[stored.ID] = &stored
	return nil
}

func (r *MemoryReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	res := *stored
	return &res, nil
}

func (r *MemoryReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.reservations {
		if stored.Code == code {
			res := *stored
			return &res, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryReservationRepository) ListByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Reservation, 0)
	for _, stored := range r.reservations {
		if stored.Date == date {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (r *MemoryReservationRepository) ListForRoom(ctx context.Context, roomID int64, date string) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Reservation, 0)
	for _, stored := range r.reservations {
		if stored.RoomID == roomID && stored.Date == date {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (r *MemoryReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	stored.Status = status
	stored.UpdatedAt = time.Now().UTC()
	res := *stored
	return &res, nil
}

func (r *MemoryReservationRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := make([]domain.Reservation, 0)
	for _, stored := range r.reservations {
		if stored.Status == domain.ReservationStatusPendingPayment && !stored.CreatedAt.After(deadline) {
			stored.Status = domain.ReservationStatusCancelled
			stored.UpdatedAt = time.Now().UTC()
			expired = append(expired, *stored)
		}
	}
	return expired, nil
}

var _ ReservationRepository = (*MemoryReservationRepository)(nil)
