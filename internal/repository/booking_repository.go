package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/abac-connect/van-booking/internal/model"
)

// BookingRepo provides persistence for bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts b and refreshes it from the stored row so that the caller
// receives the generated id and defaults.  Unknown route, van, driver or
// student references yield ErrConstraint.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO booking (user_id, route_id, van_id, driver_id, booking_date, pickup_location, dropoff_location, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.UserID, b.RouteID, b.VanID, b.DriverID, b.BookingDate.String(),
		b.PickupLocation, b.DropoffLocation, b.Status)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*b = stored
	return nil
}

// GetByID fetches a booking by id or returns ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	const q = `SELECT id, user_id, route_id, van_id, driver_id, booking_date, pickup_location, dropoff_location, status, created_at
	           FROM booking WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.RouteID, &b.VanID, &b.DriverID, &b.BookingDate.Time,
		&b.PickupLocation, &b.DropoffLocation, &b.Status, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// ListSummaries returns every booking joined with its student's name, its
// van number and its route endpoints, ordered by booking id.  The query runs
// on every call.
func (r *BookingRepo) ListSummaries(ctx context.Context) ([]model.BookingSummary, error) {
	const q = `SELECT b.id, s.name, v.van_number, r.start_location, r.end_location, b.booking_date, b.status
	           FROM booking b
	           JOIN student s ON b.user_id = s.id
	           JOIN van v ON b.van_id = v.id
	           JOIN route r ON b.route_id = r.id
	           ORDER BY b.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingSummary{}
	for rows.Next() {
		var s model.BookingSummary
		if err := rows.Scan(&s.BookingID, &s.StudentName, &s.VanNumber,
			&s.StartLocation, &s.EndLocation, &s.BookingDate.Time, &s.Status); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the booking with id.  It reports whether a row was removed;
// deleting an absent id is not an error.  A booking referenced by a payment
// yields ErrConstraint.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM booking WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
