package services

import (
	"context"
	"testing"
	"time"

	"membertracker/internal/config"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secr3t!pass"

func newTestAuthService(t *testing.T) (*AuthService, *UserService, *testRepos) {
	t.Helper()
	cost := password.Cost
	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = cost })

	repos := newTestRepos(t)
	cfg := &config.Config{JWT: config.JWTConfig{
		Secret:          "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}}
	return NewAuthService(repos.users, repos.tokens, cfg), NewUserService(repos.users), repos
}

func register(t *testing.T, svc *AuthService, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterInput{
		Email:     email,
		Password:  testPassword,
		FirstName: "Hanna",
		LastName:  "Girma",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuthService(t)

	resp := register(t, auth, " Hanna@Example.com ")
	assert.Equal(t, "hanna@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := auth.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleMember), claims.Role)

	_, err = auth.Register(ctx, &RegisterInput{Email: "hanna@example.com", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	_, err = auth.Register(ctx, &RegisterInput{Email: "weak@example.com", Password: "password"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	login, err := auth.Login(ctx, &LoginInput{Email: "HANNA@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.False(t, login.PasswordExpired)

	_, err = auth.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLocksAccountAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	auth, users, _ := newTestAuthService(t)
	resp := register(t, auth, "locked@example.com")

	for i := 1; i < domain.MaxFailedLogins; i++ {
		_, err := auth.Login(ctx, &LoginInput{Email: "locked@example.com", Password: "Wr0ng!pass"})
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i)
	}
	_, err := auth.Login(ctx, &LoginInput{Email: "locked@example.com", Password: "Wr0ng!pass"})
	require.ErrorIs(t, err, domain.ErrAccountLocked)

	_, err = auth.Login(ctx, &LoginInput{Email: "locked@example.com", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrAccountLocked, "a locked account rejects the right password")

	_, err = users.UpdateUserByAdmin(ctx, resp.User.ID, 999, &UpdateUserByAdminInput{Unlock: true})
	require.NoError(t, err)
	_, err = auth.Login(ctx, &LoginInput{Email: "locked@example.com", Password: testPassword})
	assert.NoError(t, err)
}

func TestLoginReportsExpiredPassword(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuthService(t)
	register(t, auth, "old@example.com")

	auth.now = fixedClock(time.Now().Add(domain.PasswordMaxAge + 24*time.Hour))
	resp, err := auth.Login(ctx, &LoginInput{Email: "old@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.True(t, resp.PasswordExpired)
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuthService(t)
	first := register(t, auth, "rotate@example.com")

	second, err := auth.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = auth.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	require.NoError(t, auth.Logout(ctx, second.RefreshToken))
	_, err = auth.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = auth.RefreshToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserAdministration(t *testing.T) {
	ctx := context.Background()
	auth, users, _ := newTestAuthService(t)
	admin := register(t, auth, "admin@example.com").User
	member := register(t, auth, "member@example.com").User

	staff := "staff"
	updated, err := users.UpdateUserByAdmin(ctx, member.ID, admin.ID, &UpdateUserByAdminInput{Role: &staff})
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleStaff), updated.Role)

	_, err = users.UpdateUserByAdmin(ctx, admin.ID, admin.ID, &UpdateUserByAdminInput{Role: &staff})
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)

	disabled := false
	_, err = users.UpdateUserByAdmin(ctx, member.ID, admin.ID, &UpdateUserByAdminInput{Enabled: &disabled})
	require.NoError(t, err)
	_, err = auth.Login(ctx, &LoginInput{Email: "member@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrUserInactive)

	list, err := users.ListUsers(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	assert.ErrorIs(t, users.DeleteUser(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	require.NoError(t, users.DeleteUser(ctx, member.ID, admin.ID))
	_, err = users.GetUserByID(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	auth, users, _ := newTestAuthService(t)
	user := register(t, auth, "change@example.com").User

	err := users.ChangePassword(ctx, user.ID, &ChangePasswordInput{OldPassword: "Wr0ng!pass", NewPassword: "N3w!passwd"})
	assert.ErrorIs(t, err, ErrOldPasswordWrong)

	require.NoError(t, users.ChangePassword(ctx, user.ID, &ChangePasswordInput{OldPassword: testPassword, NewPassword: "N3w!passwd"}))
	_, err = auth.Login(ctx, &LoginInput{Email: "change@example.com", Password: "N3w!passwd"})
	assert.NoError(t, err)
}
