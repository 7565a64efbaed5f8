package schedules

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
)

// ScheduleWithDriver joins a schedule row with the owning driver's name.
type ScheduleWithDriver struct {
	models.DriverSchedule
	DriverName string
}

// Repository exposes schedule persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a schedules repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new schedule.
func (r *Repository) Create(ctx context.Context, schedule *models.DriverSchedule) error {
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(schedule).Error
}

// FindByID loads a schedule by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DriverSchedule, error) {
	var schedule models.DriverSchedule
	if err := r.db.WithContext(ctx).First(&schedule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListAvailable returns bookable schedules departing on or after the given
// date, soonest first, joined with the driver's name.
func (r *Repository) ListAvailable(ctx context.Context, fromDate string) ([]ScheduleWithDriver, error) {
	var rows []ScheduleWithDriver
	err := r.db.WithContext(ctx).
		Table("driver_schedules").
		Select("driver_schedules.*, users.name AS driver_name").
		Joins("JOIN users ON users.id = driver_schedules.driver_id").
		Where("driver_schedules.available_capacity > 0").
		Where("driver_schedules.departure_date >= ?", fromDate).
		Order("driver_schedules.departure_date ASC").
		Order("driver_schedules.departure_time ASC").
		Find(&rows).Error
	return rows, err
}

// ListUpcomingByDriver returns the driver's schedules departing on or after
// the given date, soonest first.
func (r *Repository) ListUpcomingByDriver(ctx context.Context, driverID uuid.UUID, fromDate string) ([]models.DriverSchedule, error) {
	var rows []models.DriverSchedule
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Where("departure_date >= ?", fromDate).
		Order("departure_date ASC").
		Order("departure_time ASC").
		Find(&rows).Error
	return rows, err
}

// ListPastByDriver returns the driver's already-departed schedules, most
// recent first.
func (r *Repository) ListPastByDriver(ctx context.Context, driverID uuid.UUID, beforeDate string) ([]models.DriverSchedule, error) {
	var rows []models.DriverSchedule
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Where("departure_date < ?", beforeDate).
		Order("departure_date DESC").
		Order("departure_time DESC").
		Find(&rows).Error
	return rows, err
}
