package repositories

import (
	"context"

	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/core/domain"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// FindByID gets a payment by ID
func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*domain.Payment, error) {
	var p models.Payment
	if err := conn(ctx, r.db).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, errors.Wrapf(err, "find payment %d", id)
	}
	return toDomainPayment(&p), nil
}

// FindAll gets every payment ordered by member then period
func (r *paymentRepository) FindAll(ctx context.Context) ([]*domain.Payment, error) {
	return r.find(conn(ctx, r.db).Order("member_id, period"))
}

// List lists payments newest first with pagination
func (r *paymentRepository) List(ctx context.Context, offset, limit int, orderBy string) ([]*domain.Payment, int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&models.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count payments")
	}

	if orderBy == "" {
		orderBy = "payment_date DESC"
	}
	payments, err := r.find(conn(ctx, r.db).Order(orderBy).Order("id DESC").Offset(offset).Limit(limit))
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// FindByMember gets a member's payments, latest period first
func (r *paymentRepository) FindByMember(ctx context.Context, memberID uint) ([]*domain.Payment, error) {
	return r.find(conn(ctx, r.db).Where("member_id = ?", memberID).Order("period DESC"))
}

// FindByMemberAndPeriod gets the payment a member made for period
func (r *paymentRepository) FindByMemberAndPeriod(ctx context.Context, memberID uint, period domain.Period) (*domain.Payment, error) {
	var p models.Payment
	err := conn(ctx, r.db).
		Where("member_id = ? AND period = ?", memberID, period.String()).
		First(&p).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find payment of member %d for %s", memberID, period)
	}
	return toDomainPayment(&p), nil
}

// ExistsByMemberAndPeriod checks if a member already paid for period
func (r *paymentRepository) ExistsByMemberAndPeriod(ctx context.Context, memberID uint, period domain.Period) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Payment{}).
		Where("member_id = ? AND period = ?", memberID, period.String()).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "check payment for period")
}

// FindRecent gets the latest payments by payment date
func (r *paymentRepository) FindRecent(ctx context.Context, limit int) ([]*domain.Payment, error) {
	return r.find(conn(ctx, r.db).Order("payment_date DESC, id DESC").Limit(limit))
}

// SumForPeriod totals the amounts paid for period
func (r *paymentRepository) SumForPeriod(ctx context.Context, period domain.Period) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := conn(ctx, r.db).Model(&models.Payment{}).
		Select("SUM(amount)").
		Where("period = ?", period.String()).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "sum payments for %s", period)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// CountByMember counts a member's payments
func (r *paymentRepository) CountByMember(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Payment{}).Where("member_id = ?", memberID).Count(&count).Error
	return count, errors.Wrap(err, "count member payments")
}

// Save inserts or updates a payment.
// A second payment for the same member and period fails with ErrDuplicatePaymentForPeriod.
func (r *paymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	model := fromDomainPayment(payment)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicatePaymentForPeriod.With(
				"payment already recorded for member %d and period %s", payment.MemberID, payment.Period)
		}
		return errors.Wrap(err, "save payment")
	}
	payment.ID = model.ID
	payment.CreatedAt = model.CreatedAt
	return nil
}

// Delete deletes a payment
func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&models.Payment{}, id)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "delete payment %d", id)
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "delete payment %d", id)
	}
	return nil
}

func (r *paymentRepository) find(q *gorm.DB) ([]*domain.Payment, error) {
	var rows []*models.Payment
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find payments")
	}
	payments := make([]*domain.Payment, len(rows))
	for i, row := range rows {
		payments[i] = toDomainPayment(row)
	}
	return payments, nil
}
