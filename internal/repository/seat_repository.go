package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions

	"github.com/iliyamo/openday-seat-reservation/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

const seatColumns = `id, event_id, row_num, col_num, seat_number, status,
	reserved_name, reserved_surname, reserved_phone, reserved_at`

// SeatRepo provides methods to work with seats in the database. Seats
// are provisioned by migrations and never deleted here; the only
// writes are the reserve/release transitions of the status column and
// its four reservation fields.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// ListAll retrieves every seat of every event ordered by row_num then col_num.
func (r *SeatRepo) ListAll(ctx context.Context) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + `
	           FROM seats
	           ORDER BY row_num, col_num`
	return r.query(ctx, q)
}

// ListByEvent retrieves all seats of an event ordered by row_num then col_num.
// An event without seats yields an empty slice.
func (r *SeatRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + `
	           FROM seats
	           WHERE event_id = ?
	           ORDER BY row_num, col_num`
	return r.query(ctx, q, eventID)
}

// Reserve marks the seat reserved in a single conditional UPDATE that
// only matches while status is still 'available'. When eventID is not
// nil the seat must also belong to that event. Concurrent callers are
// serialised by the store's row lock; every caller that matched no row
// gets ErrConflict.
func (r *SeatRepo) Reserve(ctx context.Context, seatID uint64, eventID *uint64, res model.Reservation) error {
	q := `UPDATE seats
	      SET status = 'reserved', reserved_name = ?, reserved_surname = ?, reserved_phone = ?, reserved_at = ?
	      WHERE id = ? AND status = 'available'`
	args := []interface{}{res.Name, res.Surname, res.Phone, res.ReservedAt.UTC(), seatID}
	if eventID != nil {
		q += ` AND event_id = ?`
		args = append(args, *eventID)
	}
	result, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Release clears the reservation fields and sets the seat available
// regardless of its prior status. The boolean reports whether a row
// actually changed; releasing an available seat is a no-op.
func (r *SeatRepo) Release(ctx context.Context, seatID uint64) (bool, error) {
	const q = `UPDATE seats
	           SET status = 'available', reserved_name = NULL, reserved_surname = NULL,
	               reserved_phone = NULL, reserved_at = NULL
	           WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, seatID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReleaseMatching clears the seat only while it is still reserved under
// exactly these contact details. It reports false when the seat was
// released or handed to someone else since it was looked up.
func (r *SeatRepo) ReleaseMatching(ctx context.Context, seatID uint64, name, surname, phone string) (bool, error) {
	const q = `UPDATE seats
	           SET status = 'available', reserved_name = NULL, reserved_surname = NULL,
	               reserved_phone = NULL, reserved_at = NULL
	           WHERE id = ? AND status = 'reserved'
	             AND reserved_name = ? AND reserved_surname = ? AND reserved_phone = ?`
	result, err := r.db.ExecContext(ctx, q, seatID, name, surname, phone)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindReserved returns the first reserved seat whose contact fields
// match exactly, optionally restricted to one event. Ties are resolved
// by whichever row the store returns first.
func (r *SeatRepo) FindReserved(ctx context.Context, name, surname, phone string, eventID *uint64) (*model.Seat, error) {
	q := `SELECT ` + seatColumns + `
	      FROM seats
	      WHERE status = 'reserved' AND reserved_name = ? AND reserved_surname = ? AND reserved_phone = ?`
	args := []interface{}{name, surname, phone}
	if eventID != nil {
		q += ` AND event_id = ?`
		args = append(args, *eventID)
	}
	q += ` LIMIT 1`
	s, err := scanSeat(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *SeatRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSeat(sc rowScanner) (*model.Seat, error) {
	var (
		s                    model.Seat
		name, surname, phone sql.NullString
		reservedAt           sql.NullTime
	)
	if err := sc.Scan(
		&s.ID, &s.EventID, &s.RowNum, &s.ColNum, &s.SeatNumber, &s.Status,
		&name, &surname, &phone, &reservedAt,
	); err != nil {
		return nil, err
	}
	s.ReservedName = nullStringPtr(name)
	s.ReservedSurname = nullStringPtr(surname)
	s.ReservedPhone = nullStringPtr(phone)
	if reservedAt.Valid {
		t := reservedAt.Time.UTC()
		s.ReservedAt = &t
	}
	return &s, nil
}
