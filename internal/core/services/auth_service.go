package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/config"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/jwt"
	"membertracker/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user account is inactive")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
		now:              time.Now,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User            *UserResponse `json:"user"`
	AccessToken     string        `json:"accessToken"`
	RefreshToken    string        `json:"refreshToken"`
	PasswordExpired bool          `json:"passwordExpired,omitempty"`
}

// Register registers a new member-level user
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Validate email
	email, err := domain.NewEmail(input.Email)
	if err != nil {
		return nil, domain.ErrInvalidUserData.OnField("email", "invalid email format: %s", input.Email)
	}

	// 2. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, email.String())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailExists.With("email already registered: %s", email)
	}

	// 3. Validate and hash password
	if err := domain.ValidatePasswordStrength(input.Password); err != nil {
		return nil, err
	}
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create user
	user := domain.NewUser(email, hashedPassword, domain.RoleMember, s.now())
	user.UpdateProfile(input.FirstName, input.LastName, "", "")
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("email", email.String()).Msg("✅ User registered")

	// 5. Issue tokens
	return s.issue(ctx, user)
}

// Login authenticates a user, locking the account after repeated failures
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check account state
	if !user.Enabled {
		return nil, ErrUserInactive
	}
	if user.Locked {
		return nil, domain.ErrAccountLocked
	}

	// 3. Verify password
	if !password.Verify(input.Password, user.PasswordHash) {
		user.RecordFailedLogin()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		if user.Locked {
			log.Warn().Str("email", user.Email.String()).Msg("⚠️ Account locked after failed logins")
			return nil, domain.ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	// 4. Clear failed attempts
	if user.FailedLoginAttempts > 0 {
		user.ResetFailedLogins()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	log.Info().Str("email", user.Email.String()).Msg("✅ User logged in")
	return s.issue(ctx, user)
}

// RefreshToken rotates the refresh token and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Find stored token by hash
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired(s.now()) {
		return nil, ErrTokenExpired
	}

	// 3. Get user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if !user.Enabled {
		return nil, ErrUserInactive
	}

	// 4. Revoke old refresh token (rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	log.Debug().Uint("user_id", user.ID).Msg("Token refreshed")
	return s.issue(ctx, user)
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	log.Info().Msg("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Info().Uint("user_id", userID).Msg("✅ All sessions revoked")
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// Me returns the authenticated user
func (s *AuthService) Me(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

// CleanupExpiredTokens deletes refresh tokens past their expiry
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("deleted", n).Msg("🧹 Expired refresh tokens removed")
	return n, nil
}

// issue generates and stores a token pair for user
func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	token := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(tokens.RefreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:            toUserResponse(user),
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		PasswordExpired: user.IsPasswordExpired(s.now()),
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email.String(),
		string(user.Role),
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenTTL,
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
