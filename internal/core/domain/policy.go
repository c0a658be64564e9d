package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipPolicy evaluates membership rules for a member on a date.
// Implementations must be pure: no I/O and no mutation of the member.
type MembershipPolicy interface {
	ShouldDeactivate(m *Member, date time.Time) bool
	ShouldSendReminder(m *Member, date time.Time) bool
	CanReactivate(m *Member, date time.Time) bool
	DaysUntilPaymentDue(m *Member, date time.Time) int
	IsInGoodStanding(m *Member, date time.Time) bool
	MinimumPaymentAmount() decimal.Decimal
}

// PolicyConfig holds the tunable thresholds of DefaultPolicy
type PolicyConfig struct {
	MaxConsecutiveMissed  int
	ReminderLeadDays      int
	ReactivationGraceDays int
	MinimumPaymentAmount  decimal.Decimal
}

// DefaultPolicyConfig returns 3 missed months, 7 lead days, 30 grace days and a 10.00 minimum
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MaxConsecutiveMissed:  3,
		ReminderLeadDays:      7,
		ReactivationGraceDays: 30,
		MinimumPaymentAmount:  decimal.NewFromInt(10),
	}
}

// DefaultPolicy is the production MembershipPolicy
type DefaultPolicy struct {
	cfg PolicyConfig
}

func NewDefaultPolicy(cfg PolicyConfig) *DefaultPolicy {
	return &DefaultPolicy{cfg: cfg}
}

func (p *DefaultPolicy) Config() PolicyConfig {
	return p.cfg
}

func (p *DefaultPolicy) MinimumPaymentAmount() decimal.Decimal {
	return p.cfg.MinimumPaymentAmount
}

func (p *DefaultPolicy) ShouldDeactivate(m *Member, _ time.Time) bool {
	return m.Active && m.ConsecutiveMonthsMissed >= p.cfg.MaxConsecutiveMissed
}

// ShouldSendReminder is true inside the lead window before month end when
// the last payment does not fall in the current period. Only the last
// payment date is consulted, not the payment history.
func (p *DefaultPolicy) ShouldSendReminder(m *Member, date time.Time) bool {
	if !m.Active {
		return false
	}
	current := PeriodOf(date)
	windowStart := current.EndOfMonth().AddDate(0, 0, -p.cfg.ReminderLeadDays)
	if !DateOf(date).After(windowStart) {
		return false
	}
	if m.LastPaymentDate == nil {
		return true
	}
	return !current.Contains(*m.LastPaymentDate)
}

func (p *DefaultPolicy) CanReactivate(m *Member, date time.Time) bool {
	if m.Active {
		return false
	}
	switch {
	case m.LastPaymentDate != nil:
		return DaysBetween(*m.LastPaymentDate, date) <= p.cfg.ReactivationGraceDays
	case !m.JoinDate.IsZero():
		return DaysBetween(m.JoinDate, date) <= p.cfg.ReactivationGraceDays
	default:
		return false
	}
}

func (p *DefaultPolicy) DaysUntilPaymentDue(_ *Member, date time.Time) int {
	return DaysBetween(date, PeriodOf(date).EndOfMonth())
}

func (p *DefaultPolicy) IsInGoodStanding(m *Member, date time.Time) bool {
	if !m.Active {
		return false
	}
	switch m.ConsecutiveMonthsMissed {
	case 0:
		return true
	case 1:
		return m.LastPaymentDate != nil &&
			DaysBetween(*m.LastPaymentDate, date) <= p.cfg.ReactivationGraceDays
	default:
		return false
	}
}
