package schedules

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:schedules_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.DriverSchedule{}))
	return db
}

func newDriver(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        name + "@example.com",
		PasswordHash: "x",
		Name:         name,
		UserType:     "driver",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(DateLayout)
}

func TestCreateSchedule(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	driver := newDriver(t, db, "Dee Driver")

	capacity := 5
	dto, err := svc.Create(context.Background(), driver.ID, CreateScheduleRequest{
		FromLocation:  "Norman, OK",
		ToLocation:    "Stillwater, OK",
		DepartureDate: futureDate(2),
		DepartureTime: "14:30",
		Capacity:      &capacity,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, dto.Capacity)
	assert.Equal(t, 5, dto.AvailableCapacity)
	assert.Equal(t, driver.ID, dto.DriverID)
}

func TestCreateScheduleDefaultCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	driver := newDriver(t, db, "Default Cap")

	dto, err := svc.Create(context.Background(), driver.ID, CreateScheduleRequest{
		FromLocation:  "Tulsa, OK",
		ToLocation:    "Norman, OK",
		DepartureDate: futureDate(1),
		DepartureTime: "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, dto.Capacity)
	assert.Equal(t, DefaultCapacity, dto.AvailableCapacity)
}

func TestCreateScheduleValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	driver := newDriver(t, db, "Validator")

	cases := []struct {
		name string
		req  CreateScheduleRequest
	}{
		{
			name: "missing locations",
			req: CreateScheduleRequest{
				DepartureDate: futureDate(1),
				DepartureTime: "10:00",
			},
		},
		{
			name: "bad date",
			req: CreateScheduleRequest{
				FromLocation:  "A",
				ToLocation:    "B",
				DepartureDate: "30-08-2026",
				DepartureTime: "10:00",
			},
		},
		{
			name: "past date",
			req: CreateScheduleRequest{
				FromLocation:  "A",
				ToLocation:    "B",
				DepartureDate: time.Now().UTC().AddDate(0, 0, -1).Format(DateLayout),
				DepartureTime: "10:00",
			},
		},
		{
			name: "capacity too large",
			req: CreateScheduleRequest{
				FromLocation:  "A",
				ToLocation:    "B",
				DepartureDate: futureDate(1),
				DepartureTime: "10:00",
				Capacity:      intPtr(101),
			},
		},
		{
			name: "capacity zero",
			req: CreateScheduleRequest{
				FromLocation:  "A",
				ToLocation:    "B",
				DepartureDate: futureDate(1),
				DepartureTime: "10:00",
				Capacity:      intPtr(0),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), driver.ID, tc.req)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestListAvailableFiltersAndOrders(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	driver := newDriver(t, db, "Avail Driver")

	seed := []models.DriverSchedule{
		{ID: uuid.New(), DriverID: driver.ID, FromLocation: "A", ToLocation: "B", DepartureDate: futureDate(3), DepartureTime: "10:00", Capacity: 4, AvailableCapacity: 4},
		{ID: uuid.New(), DriverID: driver.ID, FromLocation: "A", ToLocation: "B", DepartureDate: futureDate(1), DepartureTime: "08:00", Capacity: 4, AvailableCapacity: 2},
		// fully booked, must be hidden
		{ID: uuid.New(), DriverID: driver.ID, FromLocation: "A", ToLocation: "B", DepartureDate: futureDate(2), DepartureTime: "09:00", Capacity: 4, AvailableCapacity: 0},
		// already departed, must be hidden
		{ID: uuid.New(), DriverID: driver.ID, FromLocation: "A", ToLocation: "B", DepartureDate: time.Now().UTC().AddDate(0, 0, -2).Format(DateLayout), DepartureTime: "09:00", Capacity: 4, AvailableCapacity: 4},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	out, err := svc.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, futureDate(1), out[0].DepartureDate)
	assert.Equal(t, futureDate(3), out[1].DepartureDate)
	assert.Equal(t, "Avail Driver", out[0].DriverName)
}

func TestListForDriverWindows(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	driver := newDriver(t, db, "Window Driver")
	other := newDriver(t, db, "Other Driver")

	seed := []models.DriverSchedule{
		{ID: uuid.New(), DriverID: driver.ID, FromLocation: "A", ToLocation: "B", DepartureDate: futureDate(5), DepartureTime: "10:00", Capacity: 4, AvailableCapacity: 4},
		{ID: uuid.New(), DriverID: driver.ID, FromLocation: "A", ToLocation: "B", DepartureDate: futureDate(1), DepartureTime: "10:00", Capacity: 4, AvailableCapacity: 4},
		{ID: uuid.New(), DriverID: driver.ID, FromLocation: "A", ToLocation: "B", DepartureDate: time.Now().UTC().AddDate(0, 0, -1).Format(DateLayout), DepartureTime: "10:00", Capacity: 4, AvailableCapacity: 4},
		{ID: uuid.New(), DriverID: other.ID, FromLocation: "A", ToLocation: "B", DepartureDate: futureDate(1), DepartureTime: "10:00", Capacity: 4, AvailableCapacity: 4},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	upcoming, err := svc.ListForDriver(context.Background(), driver.ID, WindowUpcoming)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, futureDate(1), upcoming[0].DepartureDate)
	assert.Equal(t, futureDate(5), upcoming[1].DepartureDate)

	past, err := svc.ListForDriver(context.Background(), driver.ID, WindowPast)
	require.NoError(t, err)
	require.Len(t, past, 1)
}

func TestParseWindow(t *testing.T) {
	window, err := ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, WindowUpcoming, window)

	window, err = ParseWindow("PAST")
	require.NoError(t, err)
	assert.Equal(t, WindowPast, window)

	_, err = ParseWindow("sideways")
	require.Error(t, err)
}

func intPtr(v int) *int {
	return &v
}
