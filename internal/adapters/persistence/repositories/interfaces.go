package repositories

import (
	"context"
	"time"

	"membertracker/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Not-found lookups return an error wrapping gorm.ErrRecordNotFound.

// MemberRepository defines member repository interface
type MemberRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Member, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*domain.Member, error)
	FindAll(ctx context.Context) ([]*domain.Member, error)
	// List pages through members; orderBy is a trusted ORDER BY clause, empty means by id
	List(ctx context.Context, offset, limit int, orderBy string) ([]*domain.Member, int64, error)
	FindByActive(ctx context.Context, active bool) ([]*domain.Member, error)
	FindByMissedAtLeast(ctx context.Context, threshold int) ([]*domain.Member, error)
	FindWithLastPaymentBefore(ctx context.Context, before time.Time) ([]*domain.Member, error)
	Save(ctx context.Context, member *domain.Member) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountMissedAtLeast(ctx context.Context, threshold int) (int64, error)
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Payment, error)
	FindAll(ctx context.Context) ([]*domain.Payment, error)
	// List pages through payments; empty orderBy means newest first
	List(ctx context.Context, offset, limit int, orderBy string) ([]*domain.Payment, int64, error)
	FindByMember(ctx context.Context, memberID uint) ([]*domain.Payment, error)
	FindByMemberAndPeriod(ctx context.Context, memberID uint, period domain.Period) (*domain.Payment, error)
	ExistsByMemberAndPeriod(ctx context.Context, memberID uint, period domain.Period) (bool, error)
	FindRecent(ctx context.Context, limit int) ([]*domain.Payment, error)
	SumForPeriod(ctx context.Context, period domain.Period) (decimal.Decimal, error)
	CountByMember(ctx context.Context, memberID uint) (int64, error)
	Save(ctx context.Context, payment *domain.Payment) error
	Delete(ctx context.Context, id uint) error
}

// CommunicationRepository defines communication repository interface
type CommunicationRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Communication, error)
	FindAll(ctx context.Context) ([]*domain.Communication, error)
	FindByType(ctx context.Context, typ domain.CommunicationType) ([]*domain.Communication, error)
	FindBySentDateRange(ctx context.Context, from, to time.Time) ([]*domain.Communication, error)
	FindRecent(ctx context.Context, limit int) ([]*domain.Communication, error)
	// Save inserts or updates the communication together with its deliveries
	Save(ctx context.Context, communication *domain.Communication) error
}

// DeliveryRepository persists message deliveries row by row
type DeliveryRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.MessageDelivery, error)
	FindByCommunicationID(ctx context.Context, communicationID uint) ([]*domain.MessageDelivery, error)
	FindPending(ctx context.Context) ([]*domain.MessageDelivery, error)
	Save(ctx context.Context, delivery *domain.MessageDelivery) error
	SaveAll(ctx context.Context, deliveries []*domain.MessageDelivery) error
	// UpdateStatus moves one PENDING delivery to a terminal status
	UpdateStatus(ctx context.Context, id uint, status domain.DeliveryStatus, at time.Time, notes string) error
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*domain.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Transactor runs fn inside a database transaction carried by the context
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
