package repository

import (
	"context"
	"database/sql"

	"github.com/abac-connect/van-booking/internal/model"
)

// RouteRepo provides persistence for routes.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo returns a RouteRepo bound to db.
func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

// Create inserts rt and populates its id.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO route (start_location, end_location) VALUES (?, ?)`,
		rt.StartLocation, rt.EndLocation)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

// ListAll returns every route ordered by id.
func (r *RouteRepo) ListAll(ctx context.Context) ([]model.Route, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, start_location, end_location FROM route ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Route{}
	for rows.Next() {
		var rt model.Route
		if err := rows.Scan(&rt.ID, &rt.StartLocation, &rt.EndLocation); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}
