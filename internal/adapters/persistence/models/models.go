package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Email               string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password            string         `gorm:"size:255;not null" json:"-"`
	Role                string         `gorm:"size:20;default:'MEMBER'" json:"role"`
	Enabled             bool           `gorm:"default:true" json:"enabled"`
	Locked              bool           `gorm:"default:false" json:"locked"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	LastPasswordChange  *time.Time     `json:"last_password_change"`
	FirstName           string         `gorm:"size:100" json:"first_name"`
	LastName            string         `gorm:"size:100" json:"last_name"`
	Phone               string         `gorm:"size:30" json:"phone"`
	Bio                 string         `gorm:"type:text" json:"bio"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// ============================================================
// Membership Tables
// ============================================================

// Member represents members table
type Member struct {
	ID                      uint       `gorm:"primaryKey"`
	Name                    string     `gorm:"size:150;not null"`
	Email                   string     `gorm:"size:100;not null;index"`
	Phone                   string     `gorm:"size:30"`
	JoinDate                time.Time  `gorm:"not null"`
	LastPaymentDate         *time.Time `gorm:"index"`
	ConsecutiveMonthsMissed int        `gorm:"not null;default:0;index"`
	Active                  bool       `gorm:"not null;default:true;index"`
	LastMissedPeriod        *string    `gorm:"size:7"`
	CreatedAt               time.Time  `gorm:"autoCreateTime"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime"`
}

func (Member) TableName() string {
	return "members"
}

// Payment represents payments table.
// (member_id, period) is unique: one payment per member per month.
type Payment struct {
	ID          uint            `gorm:"primaryKey"`
	MemberID    uint            `gorm:"not null;uniqueIndex:idx_payments_member_period"`
	Period      string          `gorm:"size:7;not null;uniqueIndex:idx_payments_member_period;index"`
	PaymentDate time.Time       `gorm:"not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Method      string          `gorm:"size:30;not null"`
	Notes       string          `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`

	Member *Member `gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT"`
}

func (Payment) TableName() string {
	return "payments"
}

// ============================================================
// Communication Tables
// ============================================================

// Communication represents communications table
type Communication struct {
	ID               uint       `gorm:"primaryKey"`
	Title            string     `gorm:"size:200;not null"`
	MessageContent   string     `gorm:"type:text;not null"`
	Type             string     `gorm:"size:20;not null;index"`
	SentToAllMembers bool       `gorm:"not null;default:false"`
	CreatedAt        time.Time  `gorm:"not null"`
	SentAt           *time.Time `gorm:"index"`

	Deliveries []MessageDelivery `gorm:"foreignKey:CommunicationID;constraint:OnDelete:CASCADE"`
}

func (Communication) TableName() string {
	return "communications"
}

// MessageDelivery represents message_deliveries table
type MessageDelivery struct {
	ID              uint       `gorm:"primaryKey"`
	CommunicationID uint       `gorm:"not null;index"`
	RecipientID     uint       `gorm:"not null;index"`
	Channel         string     `gorm:"size:20;not null"`
	Status          string     `gorm:"size:20;not null;index"`
	DeliveredAt     *time.Time `gorm:"index"`
	ResponseNotes   string     `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (MessageDelivery) TableName() string {
	return "message_deliveries"
}

// AutoMigrate creates or updates every table the application owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Member{},
		&Payment{},
		&Communication{},
		&MessageDelivery{},
	)
}
