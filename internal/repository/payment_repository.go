package repository

import (
	"context"
	"database/sql"

	"github.com/abac-connect/van-booking/internal/model"
)

// PaymentRepo reads the payment ledger.  Payments are recorded by an
// external system; there is no write path here.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to db.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// ListReport returns every payment joined with its booking and the
// booking's student, ordered by payment id.
func (r *PaymentRepo) ListReport(ctx context.Context) ([]model.PaymentReport, error) {
	const q = `SELECT p.id, b.id, s.name, p.amount_cents, p.method, p.status
	           FROM payment p
	           JOIN booking b ON p.booking_id = b.id
	           JOIN student s ON b.user_id = s.id
	           ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PaymentReport{}
	for rows.Next() {
		var p model.PaymentReport
		if err := rows.Scan(&p.PaymentID, &p.BookingID, &p.StudentName, &p.Amount, &p.Method, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
