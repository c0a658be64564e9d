package repositories

import (
	"context"
	"time"

	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// FindByID gets a member by ID
func (r *memberRepository) FindByID(ctx context.Context, id uint) (*domain.Member, error) {
	var m models.Member
	if err := conn(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, errors.Wrapf(err, "find member %d", id)
	}
	return toDomainMember(&m), nil
}

// FindByIDs gets members by ID, ordered by ID
func (r *memberRepository) FindByIDs(ctx context.Context, ids []uint) ([]*domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(conn(ctx, r.db).Where("id IN ?", ids))
}

// FindAll gets every member ordered by ID
func (r *memberRepository) FindAll(ctx context.Context) ([]*domain.Member, error) {
	return r.find(conn(ctx, r.db))
}

// List lists members with pagination
func (r *memberRepository) List(ctx context.Context, offset, limit int, orderBy string) ([]*domain.Member, int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count members")
	}

	q := conn(ctx, r.db).Offset(offset).Limit(limit)
	if orderBy != "" {
		q = q.Order(orderBy)
	}
	members, err := r.find(q)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// FindByActive gets members by active flag
func (r *memberRepository) FindByActive(ctx context.Context, active bool) ([]*domain.Member, error) {
	return r.find(conn(ctx, r.db).Where("active = ?", active))
}

// FindByMissedAtLeast gets members whose missed counter is at least threshold
func (r *memberRepository) FindByMissedAtLeast(ctx context.Context, threshold int) ([]*domain.Member, error) {
	return r.find(conn(ctx, r.db).Where("consecutive_months_missed >= ?", threshold))
}

// FindWithLastPaymentBefore gets members whose last payment predates before, or who never paid
func (r *memberRepository) FindWithLastPaymentBefore(ctx context.Context, before time.Time) ([]*domain.Member, error) {
	return r.find(conn(ctx, r.db).
		Where("last_payment_date IS NULL OR last_payment_date < ?", before))
}

// Save inserts a new member or updates an existing one
func (r *memberRepository) Save(ctx context.Context, member *domain.Member) error {
	model := fromDomainMember(member)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		return errors.Wrapf(err, "save member %d", member.ID)
	}
	member.ID = model.ID
	member.CreatedAt = model.CreatedAt
	member.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete hard deletes a member
func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&models.Member{}, id)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "delete member %d", id)
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "delete member %d", id)
	}
	return nil
}

// Count counts all members
func (r *memberRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Member{}).Count(&count).Error
	return count, errors.Wrap(err, "count members")
}

// CountActive counts active members
func (r *memberRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Member{}).Where("active = ?", true).Count(&count).Error
	return count, errors.Wrap(err, "count active members")
}

// CountMissedAtLeast counts members whose missed counter is at least threshold
func (r *memberRepository) CountMissedAtLeast(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Member{}).
		Where("consecutive_months_missed >= ?", threshold).
		Count(&count).Error
	return count, errors.Wrap(err, "count overdue members")
}

func (r *memberRepository) find(q *gorm.DB) ([]*domain.Member, error) {
	var rows []*models.Member
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find members")
	}
	members := make([]*domain.Member, len(rows))
	for i, row := range rows {
		members[i] = toDomainMember(row)
	}
	return members, nil
}
