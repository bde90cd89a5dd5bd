package service

import (
	"context"
	"errors"
	"strings"

	"github.com/abac-connect/van-booking/internal/auth"
	"github.com/abac-connect/van-booking/internal/model"
	"github.com/abac-connect/van-booking/internal/repository"
)

type DriverStore interface {
	Create(ctx context.Context, d *model.Driver) error
	ListAll(ctx context.Context) ([]model.Driver, error)
}

type VanStore interface {
	Create(ctx context.Context, v *model.Van) error
	ListByStatus(ctx context.Context, status string) ([]model.Van, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (model.Van, error)
}

type RouteStore interface {
	Create(ctx context.Context, r *model.Route) error
	ListAll(ctx context.Context) ([]model.Route, error)
}

type CreateDriverInput struct {
	Name          string  `json:"name"`
	Contract      string  `json:"contract"`
	AssignedVanID *uint64 `json:"assigned_van_id"`
}

type CreateVanInput struct {
	VanNumber string `json:"van_number"`
	Status    string `json:"status"`
}

type CreateRouteInput struct {
	StartLocation string `json:"start_location"`
	EndLocation   string `json:"end_location"`
}

// FleetService maintains the driver, van and route catalogue.  Reads are
// public; writes require an administrator.
type FleetService struct {
	drivers DriverStore
	vans    VanStore
	routes  RouteStore
}

func NewFleetService(drivers DriverStore, vans VanStore, routes RouteStore) *FleetService {
	return &FleetService{drivers: drivers, vans: vans, routes: routes}
}

func (f *FleetService) CreateDriver(ctx context.Context, s auth.Session, in CreateDriverInput) (model.Driver, error) {
	if err := auth.Authorize(model.RoleAdmin, s); err != nil {
		return model.Driver{}, err
	}
	d := model.Driver{
		Name:          strings.TrimSpace(in.Name),
		Contract:      strings.TrimSpace(in.Contract),
		AssignedVanID: in.AssignedVanID,
	}
	if d.Name == "" {
		return model.Driver{}, invalid("name", "is required")
	}
	if d.AssignedVanID != nil && *d.AssignedVanID == 0 {
		d.AssignedVanID = nil
	}
	if err := f.drivers.Create(ctx, &d); err != nil {
		return model.Driver{}, storeErr("create driver", err)
	}
	return d, nil
}

func (f *FleetService) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	rows, err := f.drivers.ListAll(ctx)
	if err != nil {
		return nil, storeErr("list drivers", err)
	}
	return rows, nil
}

// ListAvailableVans returns the vans whose status is exactly "Available".
func (f *FleetService) ListAvailableVans(ctx context.Context) ([]model.Van, error) {
	rows, err := f.vans.ListByStatus(ctx, model.VanAvailable)
	if err != nil {
		return nil, storeErr("list vans", err)
	}
	return rows, nil
}

func (f *FleetService) CreateVan(ctx context.Context, s auth.Session, in CreateVanInput) (model.Van, error) {
	if err := auth.Authorize(model.RoleAdmin, s); err != nil {
		return model.Van{}, err
	}
	v := model.Van{VanNumber: strings.TrimSpace(in.VanNumber), Status: strings.TrimSpace(in.Status)}
	if v.VanNumber == "" {
		return model.Van{}, invalid("van_number", "is required")
	}
	if v.Status == "" {
		v.Status = model.VanAvailable
	}
	if err := f.vans.Create(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Van{}, invalid("van_number", "is already registered")
		}
		return model.Van{}, storeErr("create van", err)
	}
	return v, nil
}

// SetVanStatus changes the status of van id.  Status is free text; only
// "Available" makes the van appear in the public listing.
func (f *FleetService) SetVanStatus(ctx context.Context, s auth.Session, id uint64, status string) (model.Van, error) {
	if err := auth.Authorize(model.RoleAdmin, s); err != nil {
		return model.Van{}, err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return model.Van{}, invalid("status", "is required")
	}
	v, err := f.vans.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Van{}, ErrNotFound
	}
	if err != nil {
		return model.Van{}, storeErr("update van", err)
	}
	return v, nil
}

func (f *FleetService) ListRoutes(ctx context.Context) ([]model.Route, error) {
	rows, err := f.routes.ListAll(ctx)
	if err != nil {
		return nil, storeErr("list routes", err)
	}
	return rows, nil
}

func (f *FleetService) CreateRoute(ctx context.Context, s auth.Session, in CreateRouteInput) (model.Route, error) {
	if err := auth.Authorize(model.RoleAdmin, s); err != nil {
		return model.Route{}, err
	}
	r := model.Route{StartLocation: strings.TrimSpace(in.StartLocation), EndLocation: strings.TrimSpace(in.EndLocation)}
	if r.StartLocation == "" || r.EndLocation == "" {
		return model.Route{}, invalid("", "start_location and end_location are required")
	}
	if err := f.routes.Create(ctx, &r); err != nil {
		return model.Route{}, storeErr("create route", err)
	}
	return r, nil
}
