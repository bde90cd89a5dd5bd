package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component.  It serializes as
// "YYYY-MM-DD".
type Date struct{ time.Time }

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// DefaultBookingStatus is stored when the caller leaves status empty.
const DefaultBookingStatus = "pending"

// Booking is a reserved trip.  It is owned by exactly one student (UserID)
// and references a route, a van and a driver.  Status is free text.
//
// Fields:
//
//	ID              – booking.id
//	UserID          – booking.user_id, the owning student
//	RouteID         – booking.route_id
//	VanID           – booking.van_id
//	DriverID        – booking.driver_id
//	BookingDate     – booking.booking_date
//	PickupLocation  – booking.pickup_location
//	DropoffLocation – booking.dropoff_location
//	Status          – booking.status
//	CreatedAt       – booking.created_at
type Booking struct {
	ID              uint64    `json:"booking_id"`
	UserID          uint64    `json:"user_id"`
	RouteID         uint64    `json:"route_id"`
	VanID           uint64    `json:"van_id"`
	DriverID        uint64    `json:"driver_id"`
	BookingDate     Date      `json:"booking_date"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// BookingSummary is one row of the administrative booking listing: the
// booking joined with its student, van and route.
type BookingSummary struct {
	BookingID     uint64 `json:"booking_id"`
	StudentName   string `json:"student_name"`
	VanNumber     string `json:"van_number"`
	StartLocation string `json:"start_location"`
	EndLocation   string `json:"end_location"`
	BookingDate   Date   `json:"booking_date"`
	Status        string `json:"status"`
}
