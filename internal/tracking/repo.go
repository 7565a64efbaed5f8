package tracking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ADRCoding/college-bites-delivery/pkg/db/models"
)

// Repository exposes location update persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tracking repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts one position report. The table is append-only.
func (r *Repository) Append(ctx context.Context, update *models.LocationUpdate) error {
	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(update).Error
}

// ListByOrderDesc returns an order's position reports, newest first.
func (r *Repository) ListByOrderDesc(ctx context.Context, orderID uuid.UUID) ([]models.LocationUpdate, error) {
	return r.listByOrder(ctx, orderID, "created_at DESC, id DESC")
}

// ListByOrderAsc returns an order's position reports in chronological order.
func (r *Repository) ListByOrderAsc(ctx context.Context, orderID uuid.UUID) ([]models.LocationUpdate, error) {
	return r.listByOrder(ctx, orderID, "created_at ASC, id ASC")
}

func (r *Repository) listByOrder(ctx context.Context, orderID uuid.UUID, order string) ([]models.LocationUpdate, error) {
	var rows []models.LocationUpdate
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order(order).
		Find(&rows).Error
	return rows, err
}
