package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"membertracker/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMembers(t *testing.T) {
	paid := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	members := []*domain.Member{
		{
			ID:                      1,
			Name:                    "Doe, Jane",
			Email:                   domain.RestoreEmail("jane@example.com"),
			Phone:                   domain.RestorePhoneNumber("5551234567"),
			JoinDate:                time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			LastPaymentDate:         &paid,
			ConsecutiveMonthsMissed: 0,
			Active:                  true,
		},
		{
			ID:                      2,
			Name:                    "John",
			Email:                   domain.RestoreEmail("john@example.com"),
			JoinDate:                time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			ConsecutiveMonthsMissed: 3,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMembers(&buf, members))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, memberHeader, rows[0])
	assert.Equal(t, []string{"1", "Doe, Jane", "jane@example.com", "(555) 123-4567", "2024-01-15", "2025-03-02", "0", "true"}, rows[1])
	assert.Equal(t, []string{"2", "John", "john@example.com", "", "2024-06-01", "", "3", "false"}, rows[2])
}

func TestWritePayments(t *testing.T) {
	payments := []*domain.Payment{{
		ID:          9,
		MemberID:    1,
		Period:      domain.MustParsePeriod("2025-02"),
		PaymentDate: time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("25.5"),
		Method:      domain.PaymentBankTransfer,
		Notes:       "late",
	}}

	var buf bytes.Buffer
	require.NoError(t, WritePayments(&buf, payments))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, paymentHeader, rows[0])
	assert.Equal(t, []string{"9", "1", "2025-02", "2025-03-02", "25.50", "BANK_TRANSFER", "late"}, rows[1])
}
