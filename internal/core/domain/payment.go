package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxBackPaymentMonths is how far before the current month a period may lie
const MaxBackPaymentMonths = 3

// Payment is a member's payment for one period
type Payment struct {
	ID          uint
	MemberID    uint
	Period      Period
	PaymentDate time.Time
	Amount      decimal.Decimal
	Method      PaymentMethod
	Notes       string
	CreatedAt   time.Time
}

// NewPayment builds an unprocessed payment
func NewPayment(memberID uint, amount decimal.Decimal, period Period, method PaymentMethod, notes string) *Payment {
	return &Payment{
		MemberID: memberID,
		Amount:   amount,
		Period:   period,
		Method:   method,
		Notes:    notes,
	}
}

// ValidateAmount rejects non-positive amounts and amounts under minimum
func (p *Payment) ValidateAmount(minimum decimal.Decimal) error {
	if !p.Amount.IsPositive() {
		return ErrInvalidPaymentAmount.OnField("amount", "payment amount must be greater than zero: %s", p.Amount.StringFixed(2))
	}
	if p.Amount.LessThan(minimum) {
		return ErrInvalidPaymentAmount.OnField("amount", "payment amount %s is below the minimum of %s",
			p.Amount.StringFixed(2), minimum.StringFixed(2))
	}
	return nil
}

// ValidatePeriod accepts the current month and up to three months back
func (p *Payment) ValidatePeriod(now time.Time) error {
	if p.Period.IsZero() {
		return ErrInvalidPaymentPeriod.OnField("period", "payment period is required")
	}
	current := PeriodOf(now)
	if p.Period.After(current) {
		return ErrPaymentPeriodInFuture.OnField("period", "payment period %s is after the current period %s", p.Period, current)
	}
	if p.Period.Before(current.AddMonths(-MaxBackPaymentMonths)) {
		return ErrInvalidPaymentPeriod.OnField("period", "payment period %s is more than %d months in the past",
			p.Period, MaxBackPaymentMonths)
	}
	return nil
}

// ValidatePaymentDate rejects an explicit payment date later than now
func (p *Payment) ValidatePaymentDate(now time.Time) error {
	if !p.PaymentDate.IsZero() && p.PaymentDate.After(now) {
		return ErrPaymentDateInFuture.OnField("paymentDate", "payment date %s is in the future",
			p.PaymentDate.Format(time.RFC3339))
	}
	return nil
}

// MarkAsProcessed stamps the payment date if none was given
func (p *Payment) MarkAsProcessed(now time.Time) {
	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}
}

func (p *Payment) IsForCurrentPeriod(now time.Time) bool {
	return p.Period.Equal(PeriodOf(now))
}

// IsOnTime reports whether the payment was made by the end of its period
func (p *Payment) IsOnTime() bool {
	return !DateOf(p.PaymentDate).After(p.Period.EndOfMonth())
}

// DaysLate counts days past the end of the period, zero when on time
func (p *Payment) DaysLate() int {
	if p.IsOnTime() {
		return 0
	}
	return DaysBetween(p.Period.EndOfMonth(), p.PaymentDate)
}
