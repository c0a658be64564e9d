package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"membertracker/internal/core/domain"
)

const dateLayout = "2006-01-02"

var memberHeader = []string{
	"id", "name", "email", "phone", "join_date", "last_payment_date",
	"consecutive_months_missed", "active",
}

var paymentHeader = []string{
	"id", "member_id", "period", "payment_date", "amount", "method", "notes",
}

// WriteMembers writes one row per member
func WriteMembers(w io.Writer, members []*domain.Member) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(memberHeader); err != nil {
		return err
	}
	for _, m := range members {
		row := []string{
			strconv.FormatUint(uint64(m.ID), 10),
			m.Name,
			m.Email.String(),
			m.Phone.Formatted(),
			m.JoinDate.Format(dateLayout),
			formatDate(m.LastPaymentDate),
			strconv.Itoa(m.ConsecutiveMonthsMissed),
			strconv.FormatBool(m.Active),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePayments writes one row per payment
func WritePayments(w io.Writer, payments []*domain.Payment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(paymentHeader); err != nil {
		return err
	}
	for _, p := range payments {
		row := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			strconv.FormatUint(uint64(p.MemberID), 10),
			p.Period.String(),
			p.PaymentDate.Format(dateLayout),
			p.Amount.StringFixed(2),
			string(p.Method),
			p.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
