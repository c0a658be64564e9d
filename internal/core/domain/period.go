package domain

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// Period is the calendar month a payment is attributed to,
// independent of when the payment was actually made.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a YYYY-MM string
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, ErrInvalidPaymentPeriod.OnField("period", "period must use the YYYY-MM format: %q", s)
	}
	return PeriodOf(t), nil
}

// MustParsePeriod is ParsePeriod for constants and tests
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) index() int {
	return p.Year*12 + int(p.Month) - 1
}

// AddMonths moves the period by n months, n may be negative
func (p Period) AddMonths(n int) Period {
	i := p.index() + n
	return Period{Year: i / 12, Month: time.Month(i%12 + 1)}
}

func (p Period) Before(o Period) bool { return p.index() < o.index() }
func (p Period) After(o Period) bool  { return p.index() > o.index() }
func (p Period) Equal(o Period) bool  { return p.index() == o.index() }

// MonthsUntil returns the number of months from p to o
func (p Period) MonthsUntil(o Period) int {
	return o.index() - p.index()
}

// FirstDay returns midnight UTC of the first day of the period
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns midnight UTC of the last day of the period
func (p Period) EndOfMonth() time.Time {
	return p.FirstDay().AddDate(0, 1, -1)
}

// Contains reports whether the calendar date of t falls in the period
func (p Period) Contains(t time.Time) bool {
	return PeriodOf(t).Equal(p)
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = Period{}
		return nil
	}
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// DateOf returns midnight UTC of t's calendar date in t's own location
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b, negative if b is earlier
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// MonthsBetween counts whole months elapsed from a to b
func MonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return -MonthsBetween(b, a)
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}
