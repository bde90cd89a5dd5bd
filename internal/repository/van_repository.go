package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/abac-connect/van-booking/internal/model"
)

// VanRepo provides persistence for vans.
type VanRepo struct {
	db *sql.DB
}

// NewVanRepo returns a VanRepo bound to db.
func NewVanRepo(db *sql.DB) *VanRepo { return &VanRepo{db: db} }

// Create inserts v and populates its id.  A reused van number yields
// ErrDuplicate.
func (r *VanRepo) Create(ctx context.Context, v *model.Van) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO van (van_number, status) VALUES (?, ?)`, v.VanNumber, v.Status)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID fetches a van or returns ErrNotFound.
func (r *VanRepo) GetByID(ctx context.Context, id uint64) (model.Van, error) {
	var v model.Van
	err := r.db.QueryRowContext(ctx, `SELECT id, van_number, status FROM van WHERE id = ?`, id).
		Scan(&v.ID, &v.VanNumber, &v.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Van{}, ErrNotFound
	}
	return v, err
}

// ListByStatus returns vans whose status equals status, ordered by id.
func (r *VanRepo) ListByStatus(ctx context.Context, status string) ([]model.Van, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, van_number, status FROM van WHERE status = ? ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Van{}
	for rows.Next() {
		var v model.Van
		if err := rows.Scan(&v.ID, &v.VanNumber, &v.Status); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status of van id and returns the updated van, or
// ErrNotFound when no such van exists.
func (r *VanRepo) UpdateStatus(ctx context.Context, id uint64, status string) (model.Van, error) {
	// RowsAffected is 0 on MySQL when the value is unchanged, so existence is
	// decided by the read-back.
	if _, err := r.db.ExecContext(ctx, `UPDATE van SET status = ? WHERE id = ?`, status, id); err != nil {
		return model.Van{}, classify(err)
	}
	return r.GetByID(ctx, id)
}
