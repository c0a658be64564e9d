package domain

import (
	"strings"
	"time"
	"unicode"
)

const (
	// MaxFailedLogins locks the account once reached
	MaxFailedLogins = 5
	// PasswordMaxAge is how long a password stays valid
	PasswordMaxAge = 90 * 24 * time.Hour
)

const passwordSpecials = "@$!%*?&"

// User represents an authenticated user of the system
type User struct {
	ID                  uint
	Email               Email
	PasswordHash        string
	Role                UserRole
	Enabled             bool
	Locked              bool
	FailedLoginAttempts int
	LastPasswordChange  *time.Time
	FirstName           string
	LastName            string
	Phone               string
	Bio                 string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewUser returns an enabled, unlocked user
func NewUser(email Email, passwordHash string, role UserRole, now time.Time) *User {
	return &User{
		Email:              email,
		PasswordHash:       passwordHash,
		Role:               role,
		Enabled:            true,
		LastPasswordChange: &now,
	}
}

// ValidatePasswordStrength requires 8+ characters drawn from letters, digits
// and @$!%*?&, with at least one of each class.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return ErrWeakPassword
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return ErrWeakPassword
		}
	}
	if !lower || !upper || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}

// ChangePassword stores a new hash and clears failed attempts
func (u *User) ChangePassword(hash string, now time.Time) {
	u.PasswordHash = hash
	u.LastPasswordChange = &now
	u.FailedLoginAttempts = 0
}

// RecordFailedLogin counts a failed attempt and locks at the threshold
func (u *User) RecordFailedLogin() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLogins {
		u.Locked = true
	}
}

func (u *User) ResetFailedLogins() {
	u.FailedLoginAttempts = 0
	u.Locked = false
}

func (u *User) Enable() error {
	if u.Enabled {
		return ErrUserAlreadyEnabled.With("user %s is already enabled", u.Email)
	}
	u.Enabled = true
	return nil
}

func (u *User) Disable() error {
	if !u.Enabled {
		return ErrUserAlreadyDisabled.With("user %s is already disabled", u.Email)
	}
	u.Enabled = false
	return nil
}

// ChangeRole moves the user to another role
func (u *User) ChangeRole(role UserRole) error {
	if u.Role == role {
		return ErrInvalidUserData.OnField("role", "user already has role %s", role)
	}
	u.Role = role
	return nil
}

func (u *User) UpdateProfile(firstName, lastName, phone, bio string) {
	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.Phone = strings.TrimSpace(phone)
	u.Bio = strings.TrimSpace(bio)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsPasswordExpired(now time.Time) bool {
	return u.LastPasswordChange != nil && u.LastPasswordChange.Before(now.Add(-PasswordMaxAge))
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
