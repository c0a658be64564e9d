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

func TestCreateMemberSendsWelcome(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	sender := &recordingSender{}
	svc := NewMemberService(repos.members, repos.payments, sender, &inlineQueue{})
	svc.now = fixedClock(day(2025, 3, 20))

	m, err := svc.CreateMember(ctx, MemberInput{Name: "Tigist Alemu", Email: "tigist@example.com", Phone: "555-123-4567"})
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.True(t, m.Active)
	assert.True(t, domain.DateOf(day(2025, 3, 20)).Equal(m.JoinDate), "join date defaults to today")

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, WelcomeTemplate, sent[0].Template)
	assert.Equal(t, "Tigist Alemu", sent[0].Vars["MemberName"])
	assert.Equal(t, "March 20, 2025", sent[0].Vars["JoinDate"])

	backdated, err := svc.CreateMember(ctx, MemberInput{Name: "Old Timer", Email: "old@example.com", JoinDate: "2020-06-01"})
	require.NoError(t, err)
	assert.Equal(t, 2020, backdated.JoinDate.Year())
}

func TestCreateMemberValidation(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewMemberService(repos.members, repos.payments, &recordingSender{}, &inlineQueue{})
	svc.now = fixedClock(day(2025, 3, 20))

	tests := []struct {
		name  string
		input MemberInput
	}{
		{"missing name", MemberInput{Email: "a@example.com"}},
		{"bad email", MemberInput{Name: "A", Email: "not-an-email"}},
		{"bad phone", MemberInput{Name: "A", Email: "a@example.com", Phone: "12"}},
		{"bad join date", MemberInput{Name: "A", Email: "a@example.com", JoinDate: "20/03/2025"}},
		{"future join date", MemberInput{Name: "A", Email: "a@example.com", JoinDate: "2025-04-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMember(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidMemberData)
		})
	}

	count, err := repos.members.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateMemberSurvivesMailOutage(t *testing.T) {
	repos := newTestRepos(t)
	sender := &recordingSender{failFor: map[string]error{"down@example.com": ErrMailDisabled}}
	svc := NewMemberService(repos.members, repos.payments, sender, &inlineQueue{err: ErrDispatcherStopped})

	_, err := svc.CreateMember(context.Background(), MemberInput{Name: "Down", Email: "down@example.com"})
	assert.NoError(t, err)
}

func TestDeleteMember(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewMemberService(repos.members, repos.payments, &recordingSender{}, &inlineQueue{})

	payer := repos.addMember(t, "Payer", "payer@example.com", day(2024, 1, 1))
	p := domain.NewPayment(payer.ID, decimal.NewFromInt(20), domain.MustParsePeriod("2025-01"), domain.PaymentCash, "")
	p.MarkAsProcessed(day(2025, 1, 5))
	require.NoError(t, repos.payments.Save(ctx, p))

	assert.ErrorIs(t, svc.DeleteMember(ctx, payer.ID), domain.ErrMemberHasPayments)

	clean := repos.addMember(t, "Clean", "clean@example.com", day(2024, 1, 1))
	require.NoError(t, svc.DeleteMember(ctx, clean.ID))
	_, err := svc.GetMember(ctx, clean.ID)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	assert.ErrorIs(t, svc.DeleteMember(ctx, clean.ID), domain.ErrMemberNotFound)
}

func TestMemberLifecycle(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewMemberService(repos.members, repos.payments, &recordingSender{}, &inlineQueue{})
	m := repos.addMember(t, "Lifecycle", "life@example.com", day(2024, 1, 1))

	updated, err := svc.UpdateMember(ctx, m.ID, MemberInput{Name: "Renamed", Email: "renamed@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "renamed@example.com", repos.reload(t, m.ID).Email.String())

	_, err = svc.ActivateMember(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrMemberAlreadyActive)

	_, err = svc.DeactivateMember(ctx, m.ID)
	require.NoError(t, err)
	inactive, err := svc.InactiveMembers(ctx)
	require.NoError(t, err)
	require.Len(t, inactive, 1)

	_, err = svc.ActivateMember(ctx, m.ID)
	require.NoError(t, err)
	active, err := svc.ActiveMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestMembersWithoutRecentPayment(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewMemberService(repos.members, repos.payments, &recordingSender{}, &inlineQueue{})
	svc.now = fixedClock(day(2025, 3, 20))

	recent := day(2025, 3, 1)
	stale := day(2024, 11, 1)
	paidRecently := repos.addMember(t, "Recent", "recent@example.com", day(2024, 1, 1))
	paidRecently.LastPaymentDate = &recent
	require.NoError(t, repos.members.Save(ctx, paidRecently))
	paidLongAgo := repos.addMember(t, "Stale", "stale@example.com", day(2024, 1, 1))
	paidLongAgo.LastPaymentDate = &stale
	require.NoError(t, repos.members.Save(ctx, paidLongAgo))
	never := repos.addMember(t, "Never", "never@example.com", day(2024, 1, 1))

	found, err := svc.MembersWithoutRecentPayment(ctx, 2)
	require.NoError(t, err)
	ids := []uint{}
	for _, m := range found {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []uint{paidLongAgo.ID, never.ID}, ids)

	_, err = svc.OverdueMembers(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMemberData)
}

func TestExportMembers(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewMemberService(repos.members, repos.payments, &recordingSender{}, &inlineQueue{})
	repos.addMember(t, "Export, Me", "export@example.com", day(2024, 1, 1))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportMembers(context.Background(), &buf))
	assert.Contains(t, buf.String(), `"Export, Me"`)
	assert.Contains(t, buf.String(), "export@example.com")
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	now := day(2025, 3, 20)
	repos := newTestRepos(t)
	payments := NewPaymentService(repos.tx, repos.members, repos.payments, testPolicy())
	payments.now = fixedClock(now)
	comms := newTestCommunicationService(t, repos, &inlineQueue{}, now.Add(time.Hour))
	dashboard := NewDashboardService(repos.members, repos.payments, repos.comms)
	dashboard.now = fixedClock(now)

	a := repos.addMember(t, "Almaz", "almaz@example.com", day(2024, 1, 1))
	b := repos.addMember(t, "Bekele", "bekele@example.com", day(2024, 1, 1))
	b.ConsecutiveMonthsMissed = 1
	require.NoError(t, repos.members.Save(ctx, b))

	_, err := payments.RecordPayment(ctx, a.ID, decimal.RequireFromString("25.50"), domain.PeriodOf(now), "CASH", "")
	require.NoError(t, err)
	_, err = payments.RecordPayment(ctx, b.ID, decimal.NewFromInt(10), domain.PeriodOf(now).AddMonths(-1), "CASH", "")
	require.NoError(t, err)
	_, err = comms.SendToMemberIDs(ctx, announcement("Hello"), []uint{a.ID}, "EMAIL")
	require.NoError(t, err)

	stats, err := dashboard.GetStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalMembers)
	assert.EqualValues(t, 2, stats.ActiveMembers)
	assert.EqualValues(t, 1, stats.OverdueMembers)
	assert.Equal(t, "25.5", stats.MonthlyRevenue.String())
	assert.Equal(t, "2025-03", stats.Period.String())

	recent, err := dashboard.RecentPayments(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.ElementsMatch(t, []string{"Almaz", "Bekele"}, []string{recent[0].MemberName, recent[1].MemberName})

	activities, err := dashboard.RecentActivities(ctx)
	require.NoError(t, err)
	require.Len(t, activities, 3)
	assert.Equal(t, "communication", activities[0].Type)
	assert.Equal(t, "ANNOUNCEMENT sent: Picnic", activities[0].Description)
}
