package schedules

import (
	"time"

	"github.com/google/uuid"

	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
)

// DateLayout is the wire format for departure dates.
const DateLayout = "2006-01-02"

// CreateScheduleRequest captures a driver's planned trip.
type CreateScheduleRequest struct {
	FromLocation  string `json:"from_location" validate:"required"`
	ToLocation    string `json:"to_location" validate:"required"`
	DepartureDate string `json:"departure_date" validate:"required"`
	DepartureTime string `json:"departure_time" validate:"required"`
	Capacity      *int   `json:"capacity,omitempty" validate:"omitempty,min=1,max=100"`
}

// ScheduleDTO is the transport shape for a driver schedule.
type ScheduleDTO struct {
	ID                uuid.UUID `json:"id"`
	DriverID          uuid.UUID `json:"driver_id"`
	FromLocation      string    `json:"from_location"`
	ToLocation        string    `json:"to_location"`
	DepartureDate     string    `json:"departure_date"`
	DepartureTime     string    `json:"departure_time"`
	Capacity          int       `json:"capacity"`
	AvailableCapacity int       `json:"available_capacity"`
	CreatedAt         time.Time `json:"created_at"`
}

// AvailableScheduleDTO adds the driver's display name for the public listing.
type AvailableScheduleDTO struct {
	ScheduleDTO
	DriverName string `json:"driver_name"`
}

func FromModel(s *models.DriverSchedule) *ScheduleDTO {
	if s == nil {
		return nil
	}
	return &ScheduleDTO{
		ID:                s.ID,
		DriverID:          s.DriverID,
		FromLocation:      s.FromLocation,
		ToLocation:        s.ToLocation,
		DepartureDate:     s.DepartureDate,
		DepartureTime:     s.DepartureTime,
		Capacity:          s.Capacity,
		AvailableCapacity: s.AvailableCapacity,
		CreatedAt:         s.CreatedAt,
	}
}
