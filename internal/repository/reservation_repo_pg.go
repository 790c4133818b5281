package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dvalenz/roomreserve/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSlotTaken is returned by Create when the requested span overlaps a
// non-cancelled reservation for the same room. The insert guard in the
// storage layer is the final authority on double-booking; callers treat this
// as a conflict, not a validation failure.
var ErrSlotTaken = errors.New("slot overlaps an existing reservation")

var ErrNotFound = errors.New("reservation not found")

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByCode(ctx context.Context, code string) (*domain.Reservation, error)
	ListByDate(ctx context.Context, date string) ([]domain.Reservation, error)
	ListForRoom(ctx context.Context, roomID int64, date string) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `id, room_id, user_id, guest_name, guest_email, to_char(reservation_date, 'YYYY-MM-DD'), start_time, end_time, status, purpose, code, created_at, updated_at`

func (r *PGReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// The insert only fires when no non-cancelled reservation for the same
	// room overlaps [start, end); check and insert happen in one statement.
	err = tx.QueryRow(ctx, `INSERT INTO reservations (room_id, user_id, guest_name, guest_email, reservation_date, start_time, end_time, status, purpose, code)
		SELECT $1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10
		WHERE NOT EXISTS (
			SELECT 1 FROM reservations
			WHERE room_id = $1
			  AND reservation_date = $5::date
			  AND status <> 'CANCELLED'
			  AND start_time < $7
			  AND end_time > $6
		)
		RETURNING id, created_at, updated_at`,
		reservation.RoomID, reservation.UserID, reservation.GuestName, reservation.GuestEmail,
		reservation.Date, reservation.StartTime, reservation.EndTime,
		reservation.Status, reservation.Purpose, reservation.Code).
		Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSlotTaken
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	return scanReservation(row)
}

func (r *PGReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE code=$1`, code)
	return scanReservation(row)
}

func (r *PGReservationRepository) ListByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE reservation_date=$1::date ORDER BY room_id, start_time`, date)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) ListForRoom(ctx context.Context, roomID int64, date string) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE room_id=$1 AND reservation_date=$2::date ORDER BY start_time`, roomID, date)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+reservationColumns, status, id)
	return scanReservation(row)
}

func (r *PGReservationRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `UPDATE reservations SET status=$1, updated_at=now() WHERE status=$2 AND created_at <= $3 RETURNING `+reservationColumns,
		domain.ReservationStatusCancelled, domain.ReservationStatusPendingPayment, deadline)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.ID, &res.RoomID, &res.UserID, &res.GuestName, &res.GuestEmail, &res.Date,
		&res.StartTime, &res.EndTime, &res.Status, &res.Purpose, &res.Code, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.RoomID, &res.UserID, &res.GuestName, &res.GuestEmail, &res.Date,
			&res.StartTime, &res.EndTime, &res.Status, &res.Purpose, &res.Code, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
