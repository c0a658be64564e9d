package domain

import (
	"strings"
	"time"
)

// Member is a registered member of the organization
type Member struct {
	ID                      uint
	Name                    string
	Email                   Email
	Phone                   PhoneNumber
	JoinDate                time.Time
	LastPaymentDate         *time.Time
	ConsecutiveMonthsMissed int
	Active                  bool
	// LastMissedPeriod is the latest period already counted as missed
	LastMissedPeriod *Period
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewMember returns an active member with no missed payments
func NewMember(name string, email Email, phone PhoneNumber, joinDate time.Time) (*Member, error) {
	m := &Member{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Phone:    phone,
		JoinDate: joinDate,
		Active:   true,
	}
	if err := m.Validate(joinDate); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the member's required fields as of now
func (m *Member) Validate(now time.Time) error {
	if m.Name == "" {
		return ErrInvalidMemberData.OnField("name", "member name is required")
	}
	if m.Email.IsZero() {
		return ErrInvalidMemberData.OnField("email", "member email is required")
	}
	if m.JoinDate.IsZero() {
		return ErrInvalidMemberData.OnField("joinDate", "join date is required")
	}
	if DateOf(m.JoinDate).After(DateOf(now)) {
		return ErrInvalidMemberData.OnField("joinDate", "join date cannot be in the future")
	}
	if m.ConsecutiveMonthsMissed < 0 {
		return ErrInvalidMemberData.OnField("consecutiveMonthsMissed", "missed months cannot be negative")
	}
	return nil
}

// RecordPayment applies a processed payment to the member.
// Only a payment for the current period clears the missed counter.
func (m *Member) RecordPayment(p *Payment, now time.Time) {
	paid := p.PaymentDate
	m.LastPaymentDate = &paid
	if p.IsForCurrentPeriod(now) {
		m.ConsecutiveMonthsMissed = 0
	}
}

// MarkPaymentMissed counts period as missed unless it was already counted.
// It reports whether the counter changed.
func (m *Member) MarkPaymentMissed(period Period) bool {
	if m.LastMissedPeriod != nil && !period.After(*m.LastMissedPeriod) {
		return false
	}
	m.ConsecutiveMonthsMissed++
	p := period
	m.LastMissedPeriod = &p
	return true
}

func (m *Member) Activate() error {
	if m.Active {
		return ErrMemberAlreadyActive.With("member %d is already active", m.ID)
	}
	m.Active = true
	m.ConsecutiveMonthsMissed = 0
	return nil
}

func (m *Member) Deactivate() error {
	if !m.Active {
		return ErrMemberAlreadyInactive.With("member %d is already inactive", m.ID)
	}
	m.Active = false
	return nil
}

func (m *Member) IsPaymentOverdue() bool {
	return m.ConsecutiveMonthsMissed > 0
}

// MembershipDurationMonths counts whole months since the join date
func (m *Member) MembershipDurationMonths(now time.Time) int {
	if m.JoinDate.IsZero() {
		return 0
	}
	return MonthsBetween(m.JoinDate, now)
}

// UpdateDetails replaces the editable contact fields
func (m *Member) UpdateDetails(name string, email Email, phone PhoneNumber) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidMemberData.OnField("name", "member name is required")
	}
	if email.IsZero() {
		return ErrInvalidMemberData.OnField("email", "member email is required")
	}
	m.Name = name
	m.Email = email
	m.Phone = phone
	return nil
}
