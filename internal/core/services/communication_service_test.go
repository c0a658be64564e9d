package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"membertracker/internal/config"
	"membertracker/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommunicationService(t *testing.T, repos *testRepos, queue JobQueue, now time.Time) *CommunicationService {
	t.Helper()
	svc := NewCommunicationService(repos.tx, repos.comms, repos.deliveries, repos.members, testPolicy(), queue)
	svc.now = fixedClock(now)
	return svc
}

func announcement(content string) CommunicationInput {
	return CommunicationInput{Title: "Picnic", MessageContent: content, Type: "announcement"}
}

func TestSendToMembersStoresPendingDeliveries(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	queue := &inlineQueue{}
	svc := newTestCommunicationService(t, repos, queue, day(2025, 3, 20))

	a := repos.addMember(t, "Almaz", "almaz@example.com", day(2024, 1, 1))
	b := repos.addMember(t, "Bekele", "bekele@example.com", day(2024, 1, 1))

	comm, err := svc.SendToMemberIDs(ctx, announcement("Hi {{member_name}}"), []uint{b.ID, a.ID, b.ID}, "email")
	require.NoError(t, err)
	require.NotNil(t, comm.SentAt)
	require.Len(t, comm.Deliveries, 2)

	stored, err := svc.GetDeliveries(ctx, comm.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, d := range stored {
		assert.Equal(t, domain.DeliveryPending, d.Status)
		assert.Equal(t, domain.ChannelEmail, d.Channel)
	}

	require.Len(t, queue.jobs, 1)
	job := queue.jobs[0]
	assert.Equal(t, comm.ID, job.CommunicationID)
	require.Len(t, job.Targets, 2)
	assert.Equal(t, b.ID, job.Targets[0].MemberID, "recipient order is kept")
	assert.Equal(t, "almaz@example.com", job.Targets[1].Email)
	assert.Equal(t, comm.Deliveries[0].ID, job.Targets[0].DeliveryID)
}

func TestSendToMembersValidation(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := newTestCommunicationService(t, repos, &inlineQueue{}, day(2025, 3, 20))
	m := repos.addMember(t, "Almaz", "almaz@example.com", day(2024, 1, 1))

	_, err := svc.SendToMemberIDs(ctx, announcement("Hello"), nil, "EMAIL")
	assert.ErrorIs(t, err, domain.ErrInvalidCommunication)

	_, err = svc.SendToMemberIDs(ctx, announcement("Hello"), []uint{m.ID, 404}, "EMAIL")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	_, err = svc.SendToMemberIDs(ctx, announcement("Hello"), []uint{m.ID}, "PIGEON")
	assert.ErrorIs(t, err, domain.ErrDeliveryChannelUnknown)

	_, err = svc.SendToMemberIDs(ctx, announcement("   "), []uint{m.ID}, "EMAIL")
	assert.ErrorIs(t, err, domain.ErrInvalidCommunication)

	_, err = svc.SendToMemberIDs(ctx, CommunicationInput{Title: "x", MessageContent: "y", Type: "memo"}, []uint{m.ID}, "EMAIL")
	assert.ErrorIs(t, err, domain.ErrCommunicationTypeUnknown)

	comm, err := svc.SendToMemberIDs(ctx, announcement("Hello"), []uint{m.ID}, "EMAIL")
	require.NoError(t, err)
	_, err = svc.SendToMemberIDs(ctx, CommunicationInput{CommunicationID: comm.ID}, []uint{m.ID}, "EMAIL")
	assert.ErrorIs(t, err, domain.ErrInvalidCommunication, "a sent communication cannot be sent again")
}

func TestSendStoredCommunication(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	queue := &inlineQueue{}
	svc := newTestCommunicationService(t, repos, queue, day(2025, 3, 20))
	repos.addMember(t, "Almaz", "almaz@example.com", day(2024, 1, 1))
	repos.addMember(t, "Bekele", "bekele@example.com", day(2024, 1, 1))

	draft, err := svc.CreateCommunication(ctx, announcement("Hello"))
	require.NoError(t, err)
	assert.Nil(t, draft.SentAt)

	sent, err := svc.SendToAllMembers(ctx, CommunicationInput{CommunicationID: draft.ID})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, sent.ID)
	assert.True(t, sent.SentToAllMembers)

	got, err := svc.GetCommunication(ctx, draft.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.SentAt)
	assert.Len(t, got.Deliveries, 2)

	_, err = svc.GetCommunication(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrCommunicationNotFound)
}

func TestSendToOverdueMembers(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	queue := &inlineQueue{}
	svc := newTestCommunicationService(t, repos, queue, day(2025, 3, 20))

	overdue := repos.addMember(t, "Overdue", "overdue@example.com", day(2024, 1, 1))
	overdue.ConsecutiveMonthsMissed = 2
	require.NoError(t, repos.members.Save(ctx, overdue))
	repos.addMember(t, "Current", "current@example.com", day(2024, 1, 1))

	comm, err := svc.SendToOverdueMembers(ctx, announcement("Please pay"), 2)
	require.NoError(t, err)
	require.Len(t, comm.Deliveries, 1)
	assert.Equal(t, overdue.ID, comm.Deliveries[0].RecipientID)

	_, err = svc.SendToOverdueMembers(ctx, announcement("Please pay"), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMemberData)
}

func TestSendPaymentReminders(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	queue := &inlineQueue{}
	svc := newTestCommunicationService(t, repos, queue, day(2025, 3, 10))

	comm, err := svc.SendPaymentReminders(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, comm, "nobody qualifies in an empty database")

	behind := repos.addMember(t, "Behind", "behind@example.com", day(2024, 1, 1))
	behind.ConsecutiveMonthsMissed = 2
	require.NoError(t, repos.members.Save(ctx, behind))
	repos.addMember(t, "Current", "current@example.com", day(2024, 1, 1))
	gone := repos.addMember(t, "Gone", "gone@example.com", day(2024, 1, 1))
	gone.ConsecutiveMonthsMissed = 3
	require.NoError(t, gone.Deactivate())
	require.NoError(t, repos.members.Save(ctx, gone))

	comm, err = svc.SendPaymentReminders(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, comm)
	assert.Equal(t, domain.CommunicationReminder, comm.Type)
	assert.Equal(t, domain.PaymentReminderTitle, comm.Title)
	require.Len(t, comm.Deliveries, 1)
	assert.Equal(t, behind.ID, comm.Deliveries[0].RecipientID)
	assert.Equal(t, 2, queue.jobs[0].Targets[0].MonthsMissed)
}

func TestRecoverPendingDeliveries(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	a := repos.addMember(t, "Almaz", "almaz@example.com", day(2024, 1, 1))
	b := repos.addMember(t, "Bekele", "bekele@example.com", day(2024, 1, 1))

	down := &inlineQueue{err: ErrDispatcherStopped}
	comm, err := newTestCommunicationService(t, repos, down, day(2025, 3, 20)).
		SendToMemberIDs(ctx, announcement("Hello"), []uint{a.ID, b.ID}, "EMAIL")
	require.NoError(t, err, "a queue failure leaves deliveries pending")

	queue := &inlineQueue{}
	n, err := newTestCommunicationService(t, repos, queue, day(2025, 3, 21)).RecoverPendingDeliveries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, comm.ID, queue.jobs[0].CommunicationID)
	assert.Equal(t, "Hello", queue.jobs[0].Content)
}

func TestListBySentDateRange(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := newTestCommunicationService(t, repos, &inlineQueue{}, day(2025, 3, 20))
	m := repos.addMember(t, "Almaz", "almaz@example.com", day(2024, 1, 1))

	_, err := svc.SendToMemberIDs(ctx, announcement("Hello"), []uint{m.ID}, "EMAIL")
	require.NoError(t, err)

	found, err := svc.ListBySentDateRange(ctx, day(2025, 3, 1), day(2025, 3, 31))
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = svc.ListBySentDateRange(ctx, day(2025, 4, 1), day(2025, 4, 30))
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = svc.ListBySentDateRange(ctx, day(2025, 3, 31), day(2025, 3, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidCommunication)

	byType, err := svc.ListByType(ctx, "ANNOUNCEMENT")
	require.NoError(t, err)
	assert.Len(t, byType, 1)
}

func TestDispatcherRecordsEachOutcome(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	sender := &recordingSender{failFor: map[string]error{
		"bekele@example.com": &ExhaustedError{Attempts: 3, Err: errSMTPDown},
	}}
	dispatcher := NewDispatcher(repos.deliveries, sender, config.DispatchConfig{Workers: 2, QueueSize: 4})
	dispatcher.Start()
	svc := newTestCommunicationService(t, repos, dispatcher, day(2025, 3, 20))

	a := repos.addMember(t, "Almaz", "almaz@example.com", day(2024, 1, 1))
	b := repos.addMember(t, "Bekele", "bekele@example.com", day(2024, 1, 1))
	c := repos.addMember(t, "Chaltu", "chaltu@example.com", day(2024, 1, 1))

	comm, err := svc.SendToMemberIDs(ctx, announcement("Hello {{member_name}}"), []uint{a.ID, b.ID, c.ID}, "EMAIL")
	require.NoError(t, err)

	dispatcher.Stop()

	deliveries, err := repos.deliveries.FindByCommunicationID(ctx, comm.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 3)

	byRecipient := map[uint]*domain.MessageDelivery{}
	for _, d := range deliveries {
		byRecipient[d.RecipientID] = d
		assert.NotNil(t, d.DeliveredAt)
	}
	assert.Equal(t, domain.DeliverySent, byRecipient[a.ID].Status)
	assert.Equal(t, domain.DeliverySent, byRecipient[c.ID].Status)
	assert.Equal(t, domain.DeliveryFailed, byRecipient[b.ID].Status)
	assert.Equal(t, "Failed after max retry attempts: dial tcp: connection refused", byRecipient[b.ID].ResponseNotes)

	sent := sender.Sent()
	require.Len(t, sent, 2)
	for _, e := range sent {
		assert.Equal(t, AnnouncementTemplate, e.Template)
		assert.Contains(t, e.Vars["Message"], e.Vars["MemberName"])
	}
}

func TestDispatcherFailsUnsupportedChannels(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	sender := &recordingSender{}
	dispatcher := NewDispatcher(repos.deliveries, sender, config.DispatchConfig{Workers: 1})
	dispatcher.Start()
	svc := newTestCommunicationService(t, repos, dispatcher, day(2025, 3, 20))
	m := repos.addMember(t, "Almaz", "almaz@example.com", day(2024, 1, 1))

	comm, err := svc.SendToMemberIDs(ctx, announcement("Hello"), []uint{m.ID}, "SMS")
	require.NoError(t, err)
	dispatcher.Stop()

	deliveries, err := repos.deliveries.FindByCommunicationID(ctx, comm.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, domain.DeliveryFailed, deliveries[0].Status)
	assert.Equal(t, "Channel SMS is not supported yet", deliveries[0].ResponseNotes)
	assert.Empty(t, sender.Sent())
}

func TestDispatcherRejectsWorkAfterStop(t *testing.T) {
	repos := newTestRepos(t)
	dispatcher := NewDispatcher(repos.deliveries, &recordingSender{}, config.DispatchConfig{Workers: 1})
	dispatcher.Start()

	ran := make(chan struct{})
	require.NoError(t, dispatcher.Submit(func(context.Context) { close(ran) }))
	dispatcher.Stop()

	select {
	case <-ran:
	default:
		t.Fatal("queued task did not run before Stop returned")
	}
	assert.True(t, errors.Is(dispatcher.Submit(func(context.Context) {}), ErrDispatcherStopped))
	dispatcher.Stop()
}

func TestDispatcherSurvivesPanickingTask(t *testing.T) {
	repos := newTestRepos(t)
	dispatcher := NewDispatcher(repos.deliveries, &recordingSender{}, config.DispatchConfig{Workers: 1})
	dispatcher.Start()

	done := make(chan struct{})
	require.NoError(t, dispatcher.Submit(func(context.Context) { panic("boom") }))
	require.NoError(t, dispatcher.Submit(func(context.Context) { close(done) }))
	dispatcher.Stop()

	select {
	case <-done:
	default:
		t.Fatal("worker died after a panic")
	}
}
