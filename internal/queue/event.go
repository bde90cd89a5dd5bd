// Package queue carries booking lifecycle events over RabbitMQ.
package queue

import (
	"fmt"
	"time"

	"github.com/abac-connect/van-booking/internal/model"
)

// BookingQueue is the durable queue that receives every booking event.
const BookingQueue = "booking.events"

const (
	EventBookingCreated = "booking.created"
	EventBookingDeleted = "booking.deleted"
)

// BookingEvent is published after a booking is created or deleted.  It holds
// enough for consumers to log or notify without querying the database.
// Deleted events carry only the booking id and the acting principal.
type BookingEvent struct {
	Type        string `json:"type"`
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id,omitempty"`
	RouteID     uint64 `json:"route_id,omitempty"`
	VanID       uint64 `json:"van_id,omitempty"`
	DriverID    uint64 `json:"driver_id,omitempty"`
	BookingDate string `json:"booking_date,omitempty"`
	Status      string `json:"status,omitempty"`
	ActorID     uint64 `json:"actor_id"`
	ActorRole   string `json:"actor_role"`
	OccurredAt  string `json:"occurred_at"`
}

// NewCreatedEvent describes b as just created by its owner.
func NewCreatedEvent(b model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:        EventBookingCreated,
		BookingID:   b.ID,
		UserID:      b.UserID,
		RouteID:     b.RouteID,
		VanID:       b.VanID,
		DriverID:    b.DriverID,
		BookingDate: b.BookingDate.String(),
		Status:      b.Status,
		ActorID:     b.UserID,
		ActorRole:   string(model.RoleStudent),
		OccurredAt:  at.UTC().Format(time.RFC3339),
	}
}

// NewDeletedEvent describes the removal of booking id by an administrator.
func NewDeletedEvent(id, adminID uint64, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       EventBookingDeleted,
		BookingID:  id,
		ActorID:    adminID,
		ActorRole:  string(model.RoleAdmin),
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}

// LogLine renders ev as the single line appended to the booking log.
func (ev BookingEvent) LogLine() string {
	switch ev.Type {
	case EventBookingCreated:
		return fmt.Sprintf("[%s] Booking created | booking_id=%d | user_id=%d | route_id=%d | van_id=%d | driver_id=%d | date=%s | status=%q\n",
			ev.OccurredAt, ev.BookingID, ev.UserID, ev.RouteID, ev.VanID, ev.DriverID, ev.BookingDate, ev.Status)
	case EventBookingDeleted:
		return fmt.Sprintf("[%s] Booking deleted | booking_id=%d | by_admin=%d\n",
			ev.OccurredAt, ev.BookingID, ev.ActorID)
	}
	return fmt.Sprintf("[%s] %s | booking_id=%d\n", ev.OccurredAt, ev.Type, ev.BookingID)
}
