package booking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
)

// OrderWithSchedule joins an order row with its schedule.
type OrderWithSchedule struct {
	Order    models.Order
	Schedule models.DriverSchedule
}

// Repository exposes order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a booking repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts a new order row.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// FindOrderByID loads an order by its UUID.
func (r *Repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOrderByPaymentID loads an order by its payment handle.
func (r *Repository) FindOrderByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "payment_id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// DecrementScheduleCapacity atomically takes quantity units from the schedule.
// The conditional WHERE guarantees available_capacity never goes negative;
// a false return means the remaining capacity was insufficient.
func (r *Repository) DecrementScheduleCapacity(ctx context.Context, scheduleID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DriverSchedule{}).
		Where("id = ? AND available_capacity >= ?", scheduleID, quantity).
		UpdateColumn("available_capacity", gorm.Expr("available_capacity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateOrderStatusIf moves the order from one status to another. A false
// return means the order was not in the expected status.
func (r *Repository) UpdateOrderStatusIf(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// ListByDriver returns orders booked against the driver's schedules departing
// on or after the given date, newest first, each joined with its schedule.
func (r *Repository) ListByDriver(ctx context.Context, driverID uuid.UUID, fromDate string) ([]OrderWithSchedule, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Joins("JOIN driver_schedules ON driver_schedules.id = orders.schedule_id").
		Where("driver_schedules.driver_id = ?", driverID).
		Where("driver_schedules.departure_date >= ?", fromDate).
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return r.attachSchedules(ctx, orders)
}

func (r *Repository) attachSchedules(ctx context.Context, orders []models.Order) ([]OrderWithSchedule, error) {
	if len(orders) == 0 {
		return []OrderWithSchedule{}, nil
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ScheduleID)
	}
	var schedules []models.DriverSchedule
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&schedules).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.DriverSchedule, len(schedules))
	for i := range schedules {
		byID[schedules[i].ID] = schedules[i]
	}
	out := make([]OrderWithSchedule, 0, len(orders))
	for i := range orders {
		out = append(out, OrderWithSchedule{
			Order:    orders[i],
			Schedule: byID[orders[i].ScheduleID],
		})
	}
	return out, nil
}
