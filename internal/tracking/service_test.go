package tracking

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ADRCoding/college-bites-delivery/internal/booking"
	"github.com/ADRCoding/college-bites-delivery/internal/schedules"
	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
	"github.com/ADRCoding/college-bites-delivery/pkg/outbox"
)

type testRunner struct {
	db *gorm.DB
}

func (r *testRunner) DB() *gorm.DB {
	return r.db
}

func (r *testRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	db       *gorm.DB
	svc      Service
	driver   booking.Actor
	customer booking.Actor
	order    *models.Order
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:tracking_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.DriverSchedule{},
		&models.Order{},
		&models.LocationUpdate{},
		&models.OutboxEvent{},
	))

	driver := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Name:         "Dee Driver",
		UserType:     enums.UserTypeDriver,
		IsActive:     true,
	}
	require.NoError(t, db.Create(driver).Error)

	schedule := &models.DriverSchedule{
		ID:                uuid.New(),
		DriverID:          driver.ID,
		FromLocation:      "Norman, OK",
		ToLocation:        "Stillwater, OK",
		DepartureDate:     time.Now().UTC().AddDate(0, 0, 1).Format(schedules.DateLayout),
		DepartureTime:     "14:30",
		Capacity:          5,
		AvailableCapacity: 4,
	}
	require.NoError(t, db.Create(schedule).Error)

	customerID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		ScheduleID:  schedule.ID,
		Quantity:    1,
		Description: "food",
		PaymentID:   "payment_1_aaaaaaaa",
		Status:      enums.OrderStatusInTransit,
		AmountCents: 1000,
	}
	require.NoError(t, db.Create(order).Error)

	emitter := outbox.NewService(outbox.NewRepository(db), nil)
	svc, err := NewService(&testRunner{db: db}, emitter)
	require.NoError(t, err)

	return &fixture{
		db:       db,
		svc:      svc,
		driver:   booking.Actor{ID: driver.ID, Role: enums.UserTypeDriver},
		customer: booking.Actor{ID: customerID, Role: enums.UserTypeParent},
		order:    order,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func TestAppendStoresUpdateAndEmits(t *testing.T) {
	fx := newFixture(t)

	dto, err := fx.svc.Append(context.Background(), fx.driver, fx.order.ID, AppendLocationRequest{
		Latitude:  floatPtr(35.22),
		Longitude: floatPtr(-97.44),
		Note:      strPtr("on I-35"),
	})
	require.NoError(t, err)
	assert.Equal(t, fx.order.ID, dto.OrderID)
	require.NotNil(t, dto.Latitude)
	assert.Equal(t, 35.22, *dto.Latitude)

	var events []models.OutboxEvent
	require.NoError(t, fx.db.Where("event_type = ?", enums.EventLocationUpdated).Find(&events).Error)
	require.Len(t, events, 1)

	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	var payload LocationEventPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, fx.order.ID, payload.OrderID)
	require.NotNil(t, payload.Longitude)
	assert.Equal(t, -97.44, *payload.Longitude)
}

func TestAppendLenientValidation(t *testing.T) {
	fx := newFixture(t)

	// a single coordinate is accepted
	_, err := fx.svc.Append(context.Background(), fx.driver, fx.order.ID, AppendLocationRequest{
		Latitude: floatPtr(35.22),
	})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  AppendLocationRequest
	}{
		{name: "no coordinates", req: AppendLocationRequest{Note: strPtr("lost")}},
		{name: "nan latitude", req: AppendLocationRequest{Latitude: floatPtr(math.NaN())}},
		{name: "infinite longitude", req: AppendLocationRequest{Longitude: floatPtr(math.Inf(1))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Append(context.Background(), fx.driver, fx.order.ID, tc.req)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestAppendRequiresScheduleDriver(t *testing.T) {
	fx := newFixture(t)

	stranger := booking.Actor{ID: uuid.New(), Role: enums.UserTypeDriver}
	_, err := fx.svc.Append(context.Background(), stranger, fx.order.ID, AppendLocationRequest{
		Latitude: floatPtr(35.22),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = fx.svc.Append(context.Background(), fx.driver, uuid.New(), AppendLocationRequest{
		Latitude: floatPtr(35.22),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListOrderings(t *testing.T) {
	fx := newFixture(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, note := range []string{"first", "second", "third"} {
		update := &models.LocationUpdate{
			ID:        uuid.New(),
			OrderID:   fx.order.ID,
			Latitude:  floatPtr(35.0 + float64(i)),
			Note:      strPtr(note),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, fx.db.Create(update).Error)
	}

	newest, err := fx.svc.List(context.Background(), fx.customer, fx.order.ID)
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, "third", *newest[0].Note)
	assert.Equal(t, "first", *newest[2].Note)

	chronological, err := fx.svc.ListChronological(context.Background(), fx.driver, fx.order.ID)
	require.NoError(t, err)
	require.Len(t, chronological, 3)
	assert.Equal(t, "first", *chronological[0].Note)
	assert.Equal(t, "third", *chronological[2].Note)
}

func TestListAccessControl(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.List(context.Background(), booking.Actor{ID: uuid.New(), Role: enums.UserTypeParent}, fx.order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestDecodeLocationEvent(t *testing.T) {
	payload, err := json.Marshal(LocationEventPayload{
		OrderID:   uuid.New(),
		Latitude:  floatPtr(35.22),
		Note:      strPtr("on the move"),
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
	require.NoError(t, err)

	event, err := decodeLocationEvent(envelope)
	require.NoError(t, err)
	require.NotNil(t, event.Latitude)
	assert.Equal(t, 35.22, *event.Latitude)
	assert.Equal(t, "on the move", *event.Note)

	_, err = decodeLocationEvent([]byte("not json"))
	require.Error(t, err)
}
