package schedules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
)

const (
	// DefaultCapacity applies when a driver does not set one.
	DefaultCapacity = 20
	// MaxCapacity caps how many units a single trip can carry.
	MaxCapacity = 100
)

// Window selects which slice of a driver's schedules to list.
type Window string

const (
	WindowUpcoming Window = "upcoming"
	WindowPast     Window = "past"
)

// ParseWindow normalizes the query value, defaulting to upcoming.
func ParseWindow(value string) (Window, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", string(WindowUpcoming):
		return WindowUpcoming, nil
	case string(WindowPast):
		return WindowPast, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid window %q", value))
}

// Service defines the behavior needed by the schedule controllers.
type Service interface {
	Create(ctx context.Context, driverID uuid.UUID, req CreateScheduleRequest) (*ScheduleDTO, error)
	ListAvailable(ctx context.Context) ([]AvailableScheduleDTO, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID, window Window) ([]ScheduleDTO, error)
}

type repository interface {
	Create(ctx context.Context, schedule *models.DriverSchedule) error
	ListAvailable(ctx context.Context, fromDate string) ([]ScheduleWithDriver, error)
	ListUpcomingByDriver(ctx context.Context, driverID uuid.UUID, fromDate string) ([]models.DriverSchedule, error)
	ListPastByDriver(ctx context.Context, driverID uuid.UUID, beforeDate string) ([]models.DriverSchedule, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

// NewService constructs a schedule service with the provided repository.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("schedule repository is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, driverID uuid.UUID, req CreateScheduleRequest) (*ScheduleDTO, error) {
	from := strings.TrimSpace(req.FromLocation)
	to := strings.TrimSpace(req.ToLocation)
	if from == "" || to == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from_location and to_location are required")
	}

	departure, err := time.Parse(DateLayout, req.DepartureDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "departure_date must be formatted YYYY-MM-DD")
	}
	today := s.today()
	if departure.Format(DateLayout) < today {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "departure_date must not be in the past")
	}

	capacity := DefaultCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	if capacity < 1 || capacity > MaxCapacity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("capacity must be between 1 and %d", MaxCapacity))
	}

	schedule := &models.DriverSchedule{
		DriverID:          driverID,
		FromLocation:      from,
		ToLocation:        to,
		DepartureDate:     departure.Format(DateLayout),
		DepartureTime:     strings.TrimSpace(req.DepartureTime),
		Capacity:          capacity,
		AvailableCapacity: capacity,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create schedule")
	}
	return FromModel(schedule), nil
}

func (s *service) ListAvailable(ctx context.Context) ([]AvailableScheduleDTO, error) {
	rows, err := s.repo.ListAvailable(ctx, s.today())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list available schedules")
	}
	out := make([]AvailableScheduleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, AvailableScheduleDTO{
			ScheduleDTO: *FromModel(&rows[i].DriverSchedule),
			DriverName:  rows[i].DriverName,
		})
	}
	return out, nil
}

func (s *service) ListForDriver(ctx context.Context, driverID uuid.UUID, window Window) ([]ScheduleDTO, error) {
	var (
		rows []models.DriverSchedule
		err  error
	)
	switch window {
	case WindowPast:
		rows, err = s.repo.ListPastByDriver(ctx, driverID, s.today())
	default:
		rows, err = s.repo.ListUpcomingByDriver(ctx, driverID, s.today())
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list driver schedules")
	}
	out := make([]ScheduleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) today() string {
	return s.now().UTC().Format(DateLayout)
}
