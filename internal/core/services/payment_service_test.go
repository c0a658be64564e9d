package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"membertracker/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaymentService(t *testing.T, now time.Time) (*PaymentService, *testRepos) {
	t.Helper()
	repos := newTestRepos(t)
	svc := NewPaymentService(repos.tx, repos.members, repos.payments, testPolicy())
	svc.now = fixedClock(now)
	return svc, repos
}

func TestRecordPaymentClearsMissedCounter(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 20)
	svc, repos := newTestPaymentService(t, now)

	m := repos.addMember(t, "Abebe Kebede", "abebe@example.com", day(2024, 1, 10))
	m.ConsecutiveMonthsMissed = 2
	require.NoError(t, repos.members.Save(ctx, m))

	payment, err := svc.RecordPayment(ctx, m.ID, decimal.NewFromInt(50), domain.PeriodOf(now), "cash", "")
	require.NoError(t, err)
	assert.NotZero(t, payment.ID)
	assert.Equal(t, domain.PaymentCash, payment.Method)

	got := repos.reload(t, m.ID)
	assert.Zero(t, got.ConsecutiveMonthsMissed)
	assert.True(t, got.Active)
	require.NotNil(t, got.LastPaymentDate)
	assert.True(t, domain.DateOf(now).Equal(domain.DateOf(*got.LastPaymentDate)))

	paid, err := svc.HasPaymentForMonth(ctx, m.ID, domain.PeriodOf(now))
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestRecordPaymentRejections(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 20)
	svc, repos := newTestPaymentService(t, now)

	active := repos.addMember(t, "Active Member", "active@example.com", day(2024, 1, 10))
	inactive := repos.addMember(t, "Inactive Member", "inactive@example.com", day(2024, 1, 10))
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, repos.members.Save(ctx, inactive))

	_, err := svc.RecordPayment(ctx, active.ID, decimal.NewFromInt(50), domain.PeriodOf(now), "CASH", "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		memberID uint
		amount   decimal.Decimal
		period   domain.Period
		method   string
		code     string
	}{
		{"duplicate period", active.ID, decimal.NewFromInt(50), domain.PeriodOf(now), "CASH", "MEMBER_004"},
		{"inactive member", inactive.ID, decimal.NewFromInt(50), domain.PeriodOf(now), "CASH", "MEMBER_001"},
		{"unknown member", 9999, decimal.NewFromInt(50), domain.PeriodOf(now), "CASH", "MEMBER_006"},
		{"below minimum", active.ID, decimal.RequireFromString("9.99"), domain.PeriodOf(now).AddMonths(-1), "CASH", "PAYMENT_001"},
		{"too far back", active.ID, decimal.NewFromInt(50), domain.PeriodOf(now).AddMonths(-4), "CASH", "PAYMENT_002"},
		{"future period", active.ID, decimal.NewFromInt(50), domain.PeriodOf(now).AddMonths(1), "CASH", "PAYMENT_007"},
		{"unknown method", active.ID, decimal.NewFromInt(50), domain.PeriodOf(now).AddMonths(-1), "BARTER", "PAYMENT_003"},
		{"unknown member before method", 9999, decimal.NewFromInt(50), domain.PeriodOf(now), "BARTER", "MEMBER_006"},
		{"inactive member before method", inactive.ID, decimal.NewFromInt(50), domain.PeriodOf(now), "BARTER", "MEMBER_001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPayment(ctx, tt.memberID, tt.amount, tt.period, tt.method, "")
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.CodeOf(err))
		})
	}

	payments, err := svc.GetPaymentsByMember(ctx, active.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1, "failed attempts must not persist anything")
}

func TestRecordBackPaymentKeepsMissedCounter(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 20)
	svc, repos := newTestPaymentService(t, now)

	m := repos.addMember(t, "Back Payer", "back@example.com", day(2024, 1, 10))
	m.ConsecutiveMonthsMissed = 2
	require.NoError(t, repos.members.Save(ctx, m))

	_, err := svc.RecordPayment(ctx, m.ID, decimal.NewFromInt(50), domain.PeriodOf(now).AddMonths(-2), "BANK_TRANSFER", "January")
	require.NoError(t, err)

	got := repos.reload(t, m.ID)
	assert.Equal(t, 2, got.ConsecutiveMonthsMissed)
	assert.NotNil(t, got.LastPaymentDate)
}

func TestRecordPaymentObjectKeepsExplicitDate(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 20)
	svc, repos := newTestPaymentService(t, now)
	m := repos.addMember(t, "Explicit Date", "explicit@example.com", day(2024, 1, 10))

	p := domain.NewPayment(m.ID, decimal.NewFromInt(25), domain.PeriodOf(now), domain.PaymentOnline, "")
	p.PaymentDate = day(2025, 3, 2)
	got, err := svc.RecordPaymentObject(ctx, p)
	require.NoError(t, err)
	assert.True(t, day(2025, 3, 2).Equal(got.PaymentDate))

	_, err = svc.RecordPaymentObject(ctx, got)
	assert.ErrorIs(t, err, domain.ErrPaymentAlreadyProcessed)

	future := domain.NewPayment(m.ID, decimal.NewFromInt(25), domain.PeriodOf(now).AddMonths(-1), domain.PaymentOnline, "")
	future.PaymentDate = now.Add(48 * time.Hour)
	_, err = svc.RecordPaymentObject(ctx, future)
	assert.ErrorIs(t, err, domain.ErrPaymentDateInFuture)
}

func TestRecordPaymentObjectStoresCanonicalMethod(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 20)
	svc, repos := newTestPaymentService(t, now)
	m := repos.addMember(t, "Lowercase Method", "lower@example.com", day(2024, 1, 10))

	p := domain.NewPayment(m.ID, decimal.NewFromInt(25), domain.PeriodOf(now), domain.PaymentMethod(" cash "), "")
	saved, err := svc.RecordPaymentObject(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCash, saved.Method)

	got, err := svc.GetPayment(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCash, got.Method)
	assert.Equal(t, "Cash", got.Method.DisplayName())

	bad := domain.NewPayment(m.ID, decimal.NewFromInt(25), domain.PeriodOf(now).AddMonths(-1), domain.PaymentMethod("BARTER"), "")
	_, err = svc.RecordPaymentObject(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrPaymentMethodNotSupported)
}

func TestProcessPaymentWithReactivation(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 20)
	svc, repos := newTestPaymentService(t, now)

	recent := day(2025, 3, 1)
	lapsed := repos.addMember(t, "Recently Lapsed", "lapsed@example.com", day(2024, 1, 10))
	lapsed.LastPaymentDate = &recent
	lapsed.ConsecutiveMonthsMissed = 3
	require.NoError(t, lapsed.Deactivate())
	require.NoError(t, repos.members.Save(ctx, lapsed))

	payment, err := svc.ProcessPaymentWithReactivation(ctx, lapsed.ID, decimal.NewFromInt(40), domain.PeriodOf(now), "CREDIT_CARD")
	require.NoError(t, err)
	assert.Equal(t, ReactivationNotes, payment.Notes)

	got := repos.reload(t, lapsed.ID)
	assert.True(t, got.Active)
	assert.Zero(t, got.ConsecutiveMonthsMissed)

	old := day(2024, 12, 1)
	gone := repos.addMember(t, "Long Gone", "gone@example.com", day(2024, 1, 10))
	gone.LastPaymentDate = &old
	require.NoError(t, gone.Deactivate())
	require.NoError(t, repos.members.Save(ctx, gone))

	_, err = svc.ProcessPaymentWithReactivation(ctx, gone.ID, decimal.NewFromInt(40), domain.PeriodOf(now), "CREDIT_CARD")
	assert.ErrorIs(t, err, domain.ErrMemberAlreadyInactive)
	assert.False(t, repos.reload(t, gone.ID).Active, "rollback leaves the member inactive")
}

func TestUpdateMissingPaymentCountersIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 1)
	svc, repos := newTestPaymentService(t, now)

	paid := repos.addMember(t, "Paid February", "paid@example.com", day(2024, 1, 10))
	unpaid := repos.addMember(t, "Unpaid February", "unpaid@example.com", day(2024, 1, 10))
	joined := repos.addMember(t, "Joined March", "joined@example.com", day(2025, 3, 1))

	february := domain.PeriodOf(now).AddMonths(-1)
	_, err := svc.RecordPayment(ctx, paid.ID, decimal.NewFromInt(20), february, "CASH", "")
	require.NoError(t, err)

	result, err := svc.UpdateMissingPaymentCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-02", result.Period)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Incremented)
	assert.Zero(t, result.Failed)

	again, err := svc.UpdateMissingPaymentCounters(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Incremented)
	assert.Equal(t, 3, again.Skipped)

	assert.Zero(t, repos.reload(t, paid.ID).ConsecutiveMonthsMissed)
	assert.Equal(t, 1, repos.reload(t, unpaid.ID).ConsecutiveMonthsMissed)
	assert.Zero(t, repos.reload(t, joined.ID).ConsecutiveMonthsMissed)
	assert.True(t, repos.reload(t, unpaid.ID).Active, "the counter job never deactivates")
}

func TestThreeMissedMonthsLeadToDeactivation(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestPaymentService(t, day(2025, 2, 1))
	policy := testPolicy()
	m := repos.addMember(t, "Never Pays", "never@example.com", day(2025, 1, 10))

	runs := []struct {
		on         time.Time
		missed     int
		deactivate bool
	}{
		{day(2025, 2, 1), 1, false},
		{day(2025, 3, 1), 2, false},
		{day(2025, 4, 1), 3, true},
	}
	for _, run := range runs {
		svc.now = fixedClock(run.on)
		result, err := svc.UpdateMissingPaymentCounters(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Incremented, "run on %s", run.on.Format("2006-01-02"))

		got := repos.reload(t, m.ID)
		assert.Equal(t, run.missed, got.ConsecutiveMonthsMissed)
		assert.True(t, got.Active)
		assert.Equal(t, run.deactivate, policy.ShouldDeactivate(got, run.on))
	}

	result, err := svc.DeactivateLapsedMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deactivated)
	assert.False(t, repos.reload(t, m.ID).Active)
}

func TestDeactivateLapsedMembers(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestPaymentService(t, day(2025, 3, 2))

	lapsed := repos.addMember(t, "Three Missed", "three@example.com", day(2024, 1, 10))
	lapsed.ConsecutiveMonthsMissed = 3
	require.NoError(t, repos.members.Save(ctx, lapsed))
	behind := repos.addMember(t, "Two Missed", "two@example.com", day(2024, 1, 10))
	behind.ConsecutiveMonthsMissed = 2
	require.NoError(t, repos.members.Save(ctx, behind))

	result, err := svc.DeactivateLapsedMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Deactivated)

	assert.False(t, repos.reload(t, lapsed.ID).Active)
	assert.True(t, repos.reload(t, behind.ID).Active)
}

func TestGetMemberPaymentStatus(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestPaymentService(t, day(2025, 3, 26))
	m := repos.addMember(t, "Status Member", "status@example.com", day(2024, 3, 26))

	status, err := svc.GetMemberPaymentStatus(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, status.MembershipDurationMonths)
	assert.True(t, status.ShouldSendReminder)
	assert.Equal(t, 5, status.DaysUntilPaymentDue)
	assert.True(t, status.InGoodStanding)

	_, err = svc.GetMemberPaymentStatus(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestExportPayments(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 20)
	svc, repos := newTestPaymentService(t, now)
	m := repos.addMember(t, "Csv Member", "csv@example.com", day(2024, 1, 10))
	_, err := svc.RecordPayment(ctx, m.ID, decimal.RequireFromString("12.50"), domain.PeriodOf(now), "MOBILE_PAYMENT", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportPayments(ctx, &buf))
	assert.Contains(t, buf.String(), "2025-03")
	assert.Contains(t, buf.String(), "12.50")
	assert.Contains(t, buf.String(), "MOBILE_PAYMENT")
}
