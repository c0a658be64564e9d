package repositories

import (
	"context"
	"time"

	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// deliveryRepository implements DeliveryRepository interface
type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new message delivery repository
func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

// FindByID gets a delivery by ID
func (r *deliveryRepository) FindByID(ctx context.Context, id uint) (*domain.MessageDelivery, error) {
	var d models.MessageDelivery
	if err := conn(ctx, r.db).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, errors.Wrapf(err, "find delivery %d", id)
	}
	return toDomainDelivery(&d), nil
}

// FindByCommunicationID gets the deliveries of a communication in creation order
func (r *deliveryRepository) FindByCommunicationID(ctx context.Context, communicationID uint) ([]*domain.MessageDelivery, error) {
	return r.find(conn(ctx, r.db).Where("communication_id = ?", communicationID))
}

// FindPending gets every delivery still waiting for an attempt
func (r *deliveryRepository) FindPending(ctx context.Context) ([]*domain.MessageDelivery, error) {
	return r.find(conn(ctx, r.db).Where("status = ?", string(domain.DeliveryPending)))
}

// Save inserts or updates a single delivery
func (r *deliveryRepository) Save(ctx context.Context, delivery *domain.MessageDelivery) error {
	model := fromDomainDelivery(delivery)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		return errors.Wrapf(err, "save delivery %d", delivery.ID)
	}
	delivery.ID = model.ID
	return nil
}

// SaveAll saves deliveries in order
func (r *deliveryRepository) SaveAll(ctx context.Context, deliveries []*domain.MessageDelivery) error {
	for _, d := range deliveries {
		if err := r.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus writes the outcome of one delivery by its own ID.
// Only PENDING rows are updated so a terminal status is never overwritten.
func (r *deliveryRepository) UpdateStatus(ctx context.Context, id uint, status domain.DeliveryStatus, at time.Time, notes string) error {
	result := conn(ctx, r.db).Model(&models.MessageDelivery{}).
		Where("id = ? AND status = ?", id, string(domain.DeliveryPending)).
		Updates(map[string]interface{}{
			"status":         string(status),
			"delivered_at":   at,
			"response_notes": notes,
		})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "update delivery %d", id)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return domain.ErrInvalidDeliveryStatus.With("delivery %d is already %s", id, current.Status)
}

func (r *deliveryRepository) find(q *gorm.DB) ([]*domain.MessageDelivery, error) {
	var rows []*models.MessageDelivery
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find deliveries")
	}
	deliveries := make([]*domain.MessageDelivery, len(rows))
	for i, row := range rows {
		deliveries[i] = toDomainDelivery(row)
	}
	return deliveries, nil
}
