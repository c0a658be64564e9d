package repositories

import (
	"context"

	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/core/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	model := fromDomainUser(user)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailExists.With("email already registered: %s", user.Email)
		}
		return errors.Wrap(err, "create user")
	}
	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, errors.Wrapf(err, "find user %d", id)
	}
	return toDomainUser(&user), nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}
	return toDomainUser(&user), nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	model := fromDomainUser(user)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		return errors.Wrapf(err, "update user %d", user.ID)
	}
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete soft deletes a user
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return errors.Wrapf(conn(ctx, r.db).Delete(&models.User{}, id).Error, "delete user %d", id)
}

// List lists users with pagination
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, int64, error) {
	var rows []*models.User
	var total int64

	// Count total
	if err := conn(ctx, r.db).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	// Get users with pagination
	if err := conn(ctx, r.db).Order("id").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}

	users := make([]*domain.User, len(rows))
	for i, row := range rows {
		users[i] = toDomainUser(row)
	}
	return users, total, nil
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, errors.Wrap(err, "check user email")
}
