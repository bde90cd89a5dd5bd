package repository

import (
	"context"
	"database/sql"

	"github.com/abac-connect/van-booking/internal/model"
)

// DriverRepo provides persistence for drivers.
type DriverRepo struct {
	db *sql.DB
}

// NewDriverRepo returns a DriverRepo bound to db.
func NewDriverRepo(db *sql.DB) *DriverRepo { return &DriverRepo{db: db} }

// Create inserts d and populates its id.  An unknown assigned van yields
// ErrConstraint.
func (r *DriverRepo) Create(ctx context.Context, d *model.Driver) error {
	var vanID sql.NullInt64
	if d.AssignedVanID != nil {
		vanID = sql.NullInt64{Int64: int64(*d.AssignedVanID), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO driver (name, contract, assigned_van_id) VALUES (?, ?, ?)`,
		d.Name, d.Contract, vanID)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// ListAll returns every driver ordered by id.
func (r *DriverRepo) ListAll(ctx context.Context) ([]model.Driver, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, contract, assigned_van_id FROM driver ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Driver{}
	for rows.Next() {
		var (
			d     model.Driver
			vanID sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Contract, &vanID); err != nil {
			return nil, err
		}
		if vanID.Valid {
			v := uint64(vanID.Int64)
			d.AssignedVanID = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
