package services

import (
	"context"
	"errors"
	"time"

	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/password"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// User service errors
var (
	ErrOldPasswordWrong    = errors.New("old password is incorrect")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	RoleName  string    `json:"roleName"`
	Enabled   bool      `json:"enabled"`
	Locked    bool      `json:"locked"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	FullName  string    `json:"fullName,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email.String(),
		Role:      string(u.Role),
		RoleName:  u.Role.DisplayName(),
		Enabled:   u.Enabled,
		Locked:    u.Locked,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Phone:     u.Phone,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
}

// UpdateUserByAdminInput represents an admin's changes to a user
type UpdateUserByAdminInput struct {
	Role    *string `json:"role"`
	Enabled *bool   `json:"enabled"`
	Unlock  bool    `json:"unlock"`
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Bio       string `json:"bio"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) (*ListUsersOutput, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	out := &ListUsersOutput{Users: make([]*UserResponse, len(users)), Total: total}
	for i, user := range users {
		out.Users[i] = toUserResponse(user)
	}
	return out, nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// UpdateUserByAdmin changes role, enabled state or lock of another user
func (s *UserService) UpdateUserByAdmin(ctx context.Context, id, adminID uint, input *UpdateUserByAdminInput) (*UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	// 1. Role
	if input.Role != nil {
		if id == adminID {
			return nil, ErrCannotChangeOwnRole
		}
		role, err := domain.ParseUserRole(*input.Role)
		if err != nil {
			return nil, err
		}
		if err := user.ChangeRole(role); err != nil {
			return nil, err
		}
	}

	// 2. Enabled
	if input.Enabled != nil {
		apply := user.Disable
		if *input.Enabled {
			apply = user.Enable
		}
		if err := apply(); err != nil {
			return nil, err
		}
	}

	// 3. Lock
	if input.Unlock {
		user.ResetFailedLogins()
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", id).Uint("admin_id", adminID).Msg("✅ User updated by admin")
	return toUserResponse(user), nil
}

// DeleteUser deletes a user (soft delete)
func (s *UserService) DeleteUser(ctx context.Context, id, adminID uint) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*UserResponse, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.UpdateProfile(input.FirstName, input.LastName, input.Phone, input.Bio)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}

	// Verify old password
	if !password.Verify(input.OldPassword, user.PasswordHash) {
		return ErrOldPasswordWrong
	}

	// Validate new password
	if err := domain.ValidatePasswordStrength(input.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.ChangePassword(hashedPassword, s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Info().Uint("user_id", userID).Msg("✅ Password changed")
	return nil
}

func (s *UserService) find(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound.With("user not found: %d", id)
		}
		return nil, err
	}
	return user, nil
}
