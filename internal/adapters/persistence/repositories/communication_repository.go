package repositories

import (
	"context"
	"time"

	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// communicationRepository implements CommunicationRepository interface
type communicationRepository struct {
	db *gorm.DB
}

// NewCommunicationRepository creates a new communication repository
func NewCommunicationRepository(db *gorm.DB) CommunicationRepository {
	return &communicationRepository{db: db}
}

func preloadDeliveries(db *gorm.DB) *gorm.DB {
	return db.Order("message_deliveries.id")
}

// FindByID gets a communication with its deliveries
func (r *communicationRepository) FindByID(ctx context.Context, id uint) (*domain.Communication, error) {
	var c models.Communication
	err := conn(ctx, r.db).Preload("Deliveries", preloadDeliveries).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find communication %d", id)
	}
	return toDomainCommunication(&c), nil
}

// FindAll gets every communication, newest first
func (r *communicationRepository) FindAll(ctx context.Context) ([]*domain.Communication, error) {
	return r.find(conn(ctx, r.db))
}

// FindByType gets communications of one type
func (r *communicationRepository) FindByType(ctx context.Context, typ domain.CommunicationType) ([]*domain.Communication, error) {
	return r.find(conn(ctx, r.db).Where("type = ?", string(typ)))
}

// FindBySentDateRange gets communications sent within [from, to]
func (r *communicationRepository) FindBySentDateRange(ctx context.Context, from, to time.Time) ([]*domain.Communication, error) {
	return r.find(conn(ctx, r.db).Where("sent_at BETWEEN ? AND ?", from, to))
}

// FindRecent gets the latest communications
func (r *communicationRepository) FindRecent(ctx context.Context, limit int) ([]*domain.Communication, error) {
	return r.find(conn(ctx, r.db).Limit(limit))
}

// Save inserts a communication with its deliveries, or updates an existing one
func (r *communicationRepository) Save(ctx context.Context, communication *domain.Communication) error {
	model := fromDomainCommunication(communication)
	db := conn(ctx, r.db)

	if model.ID == 0 {
		if err := db.Create(model).Error; err != nil {
			return errors.Wrap(err, "create communication")
		}
	} else {
		if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
			return errors.Wrapf(err, "update communication %d", model.ID)
		}
		for i := range model.Deliveries {
			model.Deliveries[i].CommunicationID = model.ID
			if err := db.Save(&model.Deliveries[i]).Error; err != nil {
				return errors.Wrapf(err, "save delivery of communication %d", model.ID)
			}
		}
	}

	communication.ID = model.ID
	for i, d := range communication.Deliveries {
		d.ID = model.Deliveries[i].ID
		d.CommunicationID = model.ID
	}
	return nil
}

func (r *communicationRepository) find(q *gorm.DB) ([]*domain.Communication, error) {
	var rows []*models.Communication
	err := q.Preload("Deliveries", preloadDeliveries).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "find communications")
	}
	comms := make([]*domain.Communication, len(rows))
	for i, row := range rows {
		comms[i] = toDomainCommunication(row)
	}
	return comms, nil
}
