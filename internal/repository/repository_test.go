package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abac-connect/van-booking/internal/database"
	"github.com/abac-connect/van-booking/internal/model"
)

type fixture struct {
	db       *sql.DB
	admins   *PrincipalRepo
	students *PrincipalRepo
	bookings *BookingRepo
	vans     *VanRepo
	routes   *RouteRepo
	drivers  *DriverRepo
	payments *PaymentRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.OpenTestSQLite(t)
	return &fixture{
		db:       db,
		admins:   NewAdminRepo(db),
		students: NewStudentRepo(db),
		bookings: NewBookingRepo(db),
		vans:     NewVanRepo(db),
		routes:   NewRouteRepo(db),
		drivers:  NewDriverRepo(db),
		payments: NewPaymentRepo(db),
	}
}

// seedTrip creates a van, a route and a driver and returns their ids.
func (f *fixture) seedTrip(t *testing.T, vanNumber string) (vanID, routeID, driverID uint64) {
	t.Helper()
	ctx := context.Background()
	v := model.Van{VanNumber: vanNumber, Status: model.VanAvailable}
	require.NoError(t, f.vans.Create(ctx, &v))
	rt := model.Route{StartLocation: "Huamak", EndLocation: "Mega"}
	require.NoError(t, f.routes.Create(ctx, &rt))
	d := model.Driver{Name: "Somchai", Contract: "full-time", AssignedVanID: &v.ID}
	require.NoError(t, f.drivers.Create(ctx, &d))
	return v.ID, rt.ID, d.ID
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestPrincipalRepoStampsTableRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.admins.Create(ctx, "Bob", "bob@x.com", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, a.Role)
	assert.NotZero(t, a.ID)

	s, err := f.students.Create(ctx, "Amy", "amy@x.com", "hash-s")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, s.Role)

	got, err := f.students.GetByEmail(ctx, "amy@x.com")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "hash-s", got.PasswordHash)
	assert.Equal(t, model.RoleStudent, got.Role)

	_, err = f.admins.GetByEmail(ctx, "amy@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrincipalRepoTablesAreDisjoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.admins.Create(ctx, "Bob", "same@x.com", "hash-a")
	require.NoError(t, err)
	s, err := f.students.Create(ctx, "Sam", "same@x.com", "hash-s")
	require.NoError(t, err)

	// Ids are allocated per table and may coincide.
	assert.Equal(t, a.ID, s.ID)

	ga, err := f.admins.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gs, err := f.students.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", ga.Name)
	assert.Equal(t, "Sam", gs.Name)
}

func TestPrincipalRepoDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.students.Create(ctx, "Amy", "amy@x.com", "h")
	require.NoError(t, err)
	_, err = f.students.Create(ctx, "Amy Two", "amy@x.com", "h")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestBookingCreateReadsBackRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vanID, routeID, driverID := f.seedTrip(t, "VAN-1")
	amy, err := f.students.Create(ctx, "Amy", "amy@x.com", "h")
	require.NoError(t, err)

	b := model.Booking{
		UserID: amy.ID, RouteID: routeID, VanID: vanID, DriverID: driverID,
		BookingDate: mustDate(t, "2024-06-01"), PickupLocation: "Gate 1", DropoffLocation: "Mega",
		Status: "pending",
	}
	require.NoError(t, f.bookings.Create(ctx, &b))
	assert.NotZero(t, b.ID)
	assert.Equal(t, amy.ID, b.UserID)
	assert.Equal(t, "2024-06-01", b.BookingDate.String())
	assert.False(t, b.CreatedAt.IsZero())
}

func TestBookingCreateUnknownReferenceIsConstraint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	amy, err := f.students.Create(ctx, "Amy", "amy@x.com", "h")
	require.NoError(t, err)

	b := model.Booking{UserID: amy.ID, RouteID: 41, VanID: 42, DriverID: 43,
		BookingDate: mustDate(t, "2024-06-01"), Status: "pending"}
	err = f.bookings.Create(ctx, &b)
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestBookingListSummariesJoinsEveryBookingOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vanID, routeID, driverID := f.seedTrip(t, "VAN-1")
	amy, err := f.students.Create(ctx, "Amy", "amy@x.com", "h")
	require.NoError(t, err)
	ben, err := f.students.Create(ctx, "Ben", "ben@x.com", "h")
	require.NoError(t, err)

	empty, err := f.bookings.ListSummaries(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, owner := range []uint64{amy.ID, ben.ID, amy.ID} {
		b := model.Booking{UserID: owner, RouteID: routeID, VanID: vanID, DriverID: driverID,
			BookingDate: mustDate(t, "2024-06-01"), Status: "pending"}
		require.NoError(t, f.bookings.Create(ctx, &b))
	}

	rows, err := f.bookings.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	seen := map[uint64]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.BookingID], "duplicate booking %d", r.BookingID)
		seen[r.BookingID] = true
		assert.Equal(t, "VAN-1", r.VanNumber)
		assert.Equal(t, "Huamak", r.StartLocation)
		assert.Equal(t, "Mega", r.EndLocation)
		assert.Equal(t, "2024-06-01", r.BookingDate.String())
	}
	assert.Equal(t, []string{"Amy", "Ben", "Amy"},
		[]string{rows[0].StudentName, rows[1].StudentName, rows[2].StudentName})
}

func TestBookingDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vanID, routeID, driverID := f.seedTrip(t, "VAN-1")
	amy, err := f.students.Create(ctx, "Amy", "amy@x.com", "h")
	require.NoError(t, err)
	b := model.Booking{UserID: amy.ID, RouteID: routeID, VanID: vanID, DriverID: driverID,
		BookingDate: mustDate(t, "2024-06-01"), Status: "pending"}
	require.NoError(t, f.bookings.Create(ctx, &b))

	deleted, err := f.bookings.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.bookings.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err = f.bookings.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestBookingDeleteWithPaymentIsConstraint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vanID, routeID, driverID := f.seedTrip(t, "VAN-1")
	amy, err := f.students.Create(ctx, "Amy", "amy@x.com", "h")
	require.NoError(t, err)
	b := model.Booking{UserID: amy.ID, RouteID: routeID, VanID: vanID, DriverID: driverID,
		BookingDate: mustDate(t, "2024-06-01"), Status: "paid"}
	require.NoError(t, f.bookings.Create(ctx, &b))
	_, err = f.db.Exec(`INSERT INTO payment (booking_id, amount_cents, method, status) VALUES (?, 4500, 'card', 'settled')`, b.ID)
	require.NoError(t, err)

	_, err = f.bookings.Delete(ctx, b.ID)
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestVanStatusFiltering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, n := range []string{"VAN-1", "VAN-2", "VAN-3"} {
		v := model.Van{VanNumber: n, Status: model.VanAvailable}
		require.NoError(t, f.vans.Create(ctx, &v))
	}

	avail, err := f.vans.ListByStatus(ctx, model.VanAvailable)
	require.NoError(t, err)
	assert.Len(t, avail, 3)

	v, err := f.vans.UpdateStatus(ctx, avail[1].ID, model.VanUnavailable)
	require.NoError(t, err)
	assert.Equal(t, model.VanUnavailable, v.Status)

	// Setting the same value again still reports the van.
	_, err = f.vans.UpdateStatus(ctx, avail[1].ID, model.VanUnavailable)
	require.NoError(t, err)

	avail, err = f.vans.ListByStatus(ctx, model.VanAvailable)
	require.NoError(t, err)
	require.Len(t, avail, 2)
	assert.Equal(t, "VAN-1", avail[0].VanNumber)
	assert.Equal(t, "VAN-3", avail[1].VanNumber)

	_, err = f.vans.UpdateStatus(ctx, 999, model.VanAvailable)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVanDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.vans.Create(ctx, &model.Van{VanNumber: "VAN-1", Status: model.VanAvailable}))
	err := f.vans.Create(ctx, &model.Van{VanNumber: "VAN-1", Status: model.VanAvailable})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDriversAndRoutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTrip(t, "VAN-1")
	require.NoError(t, f.drivers.Create(ctx, &model.Driver{Name: "Unassigned", Contract: "part-time"}))

	drivers, err := f.drivers.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	require.NotNil(t, drivers[0].AssignedVanID)
	assert.Nil(t, drivers[1].AssignedVanID)

	missing := uint64(77)
	err = f.drivers.Create(ctx, &model.Driver{Name: "Ghost", AssignedVanID: &missing})
	assert.ErrorIs(t, err, ErrConstraint)

	routes, err := f.routes.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "Huamak", routes[0].StartLocation)
}

func TestPaymentReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vanID, routeID, driverID := f.seedTrip(t, "VAN-1")
	amy, err := f.students.Create(ctx, "Amy", "amy@x.com", "h")
	require.NoError(t, err)
	b := model.Booking{UserID: amy.ID, RouteID: routeID, VanID: vanID, DriverID: driverID,
		BookingDate: mustDate(t, "2024-06-01"), Status: "paid"}
	require.NoError(t, f.bookings.Create(ctx, &b))
	_, err = f.db.Exec(`INSERT INTO payment (booking_id, amount_cents, method, status) VALUES (?, 4500, 'card', 'settled')`, b.ID)
	require.NoError(t, err)

	report, err := f.payments.ListReport(ctx)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, model.PaymentReport{
		PaymentID: report[0].PaymentID, BookingID: b.ID, StudentName: "Amy",
		Amount: 4500, Method: "card", Status: "settled",
	}, report[0])
}

func TestClassifyMySQLErrors(t *testing.T) {
	tests := []struct {
		num  uint16
		want error
	}{
		{mysqlDupEntry, ErrDuplicate},
		{mysqlNoReferencedRow, ErrConstraint},
		{mysqlRowIsReferenced, ErrConstraint},
		{mysqlBadNull, ErrConstraint},
	}
	for _, tt := range tests {
		err := classify(&mysql.MySQLError{Number: tt.num, Message: "boom"})
		assert.ErrorIs(t, err, tt.want, "mysql %d", tt.num)
	}

	other := &mysql.MySQLError{Number: 1205, Message: "lock wait timeout"}
	assert.Same(t, other, classify(other))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, classify(plain))
	assert.NoError(t, classify(nil))
}
