package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/abac-connect/van-booking/internal/auth"
	"github.com/abac-connect/van-booking/internal/model"
	"github.com/abac-connect/van-booking/internal/queue"
)

// BookingStore persists bookings.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	ListSummaries(ctx context.Context) ([]model.BookingSummary, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// CreateBookingInput is the booking request body.  It has no owner field:
// the owner is always the session's principal.
type CreateBookingInput struct {
	RouteID         uint64 `json:"route_id"`
	VanID           uint64 `json:"van_id"`
	DriverID        uint64 `json:"driver_id"`
	BookingDate     string `json:"booking_date"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
	Status          string `json:"status"`
}

// BookingService manages the booking lifecycle.
type BookingService struct {
	store  BookingStore
	events queue.Publisher
	log    *slog.Logger
	now    func() time.Time
}

func NewBookingService(store BookingStore, events queue.Publisher, log *slog.Logger) *BookingService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &BookingService{store: store, events: events, log: log, now: time.Now}
}

// Create books a trip for the student holding s.
func (m *BookingService) Create(ctx context.Context, s auth.Session, in CreateBookingInput) (model.Booking, error) {
	if err := auth.Authorize(model.RoleStudent, s); err != nil {
		return model.Booking{}, err
	}
	date, err := model.ParseDate(strings.TrimSpace(in.BookingDate))
	if err != nil {
		return model.Booking{}, invalid("booking_date", "must be YYYY-MM-DD")
	}
	switch {
	case in.RouteID == 0:
		return model.Booking{}, invalid("route_id", "is required")
	case in.VanID == 0:
		return model.Booking{}, invalid("van_id", "is required")
	case in.DriverID == 0:
		return model.Booking{}, invalid("driver_id", "is required")
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.DefaultBookingStatus
	}

	b := model.Booking{
		UserID:          s.PrincipalID,
		RouteID:         in.RouteID,
		VanID:           in.VanID,
		DriverID:        in.DriverID,
		BookingDate:     date,
		PickupLocation:  in.PickupLocation,
		DropoffLocation: in.DropoffLocation,
		Status:          status,
	}
	if err := m.store.Create(ctx, &b); err != nil {
		return model.Booking{}, storeErr("create booking", err)
	}
	m.publish(ctx, queue.NewCreatedEvent(b, m.now()))
	return b, nil
}

// ListAll returns every booking with its student, van and route.
func (m *BookingService) ListAll(ctx context.Context, s auth.Session) ([]model.BookingSummary, error) {
	if err := auth.Authorize(model.RoleAdmin, s); err != nil {
		return nil, err
	}
	rows, err := m.store.ListSummaries(ctx)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	return rows, nil
}

// Delete removes booking id.  Deleting an id that does not exist succeeds.
func (m *BookingService) Delete(ctx context.Context, s auth.Session, id uint64) error {
	if err := auth.Authorize(model.RoleAdmin, s); err != nil {
		return err
	}
	if id == 0 {
		return invalid("id", "must be a positive integer")
	}
	deleted, err := m.store.Delete(ctx, id)
	if err != nil {
		return storeErr("delete booking", err)
	}
	if deleted {
		m.publish(ctx, queue.NewDeletedEvent(id, s.PrincipalID, m.now()))
	} else {
		m.log.Debug("delete of absent booking", "booking_id", id, "admin_id", s.PrincipalID)
	}
	return nil
}

func (m *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	if err := m.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		m.log.Warn("booking event not published", "type", ev.Type, "booking_id", ev.BookingID, "err", err)
	}
}
