package services

import (
	"context"
	"errors"
	"time"

	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/core/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// JobQueue accepts work for asynchronous execution
type JobQueue interface {
	Dispatch(job DispatchJob) error
	Submit(task func(ctx context.Context)) error
}

// CommunicationService persists communications and hands their deliveries to the dispatcher
type CommunicationService struct {
	tx           repositories.Transactor
	commRepo     repositories.CommunicationRepository
	deliveryRepo repositories.DeliveryRepository
	memberRepo   repositories.MemberRepository
	policy       domain.MembershipPolicy
	queue        JobQueue
	now          func() time.Time
}

// NewCommunicationService creates a new communication service
func NewCommunicationService(
	tx repositories.Transactor,
	commRepo repositories.CommunicationRepository,
	deliveryRepo repositories.DeliveryRepository,
	memberRepo repositories.MemberRepository,
	policy domain.MembershipPolicy,
	queue JobQueue,
) *CommunicationService {
	return &CommunicationService{
		tx:           tx,
		commRepo:     commRepo,
		deliveryRepo: deliveryRepo,
		memberRepo:   memberRepo,
		policy:       policy,
		queue:        queue,
		now:          time.Now,
	}
}

// CommunicationInput either references a stored communication or describes a new one
type CommunicationInput struct {
	CommunicationID uint   `json:"communicationId"`
	Title           string `json:"title"`
	MessageContent  string `json:"messageContent"`
	Type            string `json:"type"`
}

// CreateCommunication stores an unsent communication
func (s *CommunicationService) CreateCommunication(ctx context.Context, input CommunicationInput) (*domain.Communication, error) {
	comm, err := s.build(input)
	if err != nil {
		return nil, err
	}
	if err := s.commRepo.Save(ctx, comm); err != nil {
		return nil, err
	}

	log.Info().Uint("communication_id", comm.ID).Str("type", string(comm.Type)).Msg("✅ Communication created")
	return comm, nil
}

// GetCommunication gets a communication with its deliveries
func (s *CommunicationService) GetCommunication(ctx context.Context, id uint) (*domain.Communication, error) {
	comm, err := s.commRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommunicationNotFound.With("communication not found: %d", id)
		}
		return nil, err
	}
	return comm, nil
}

func (s *CommunicationService) ListCommunications(ctx context.Context) ([]*domain.Communication, error) {
	return s.commRepo.FindAll(ctx)
}

func (s *CommunicationService) ListByType(ctx context.Context, typeCode string) ([]*domain.Communication, error) {
	typ, err := domain.ParseCommunicationType(typeCode)
	if err != nil {
		return nil, err
	}
	return s.commRepo.FindByType(ctx, typ)
}

// ListBySentDateRange lists communications sent within [from, to]
func (s *CommunicationService) ListBySentDateRange(ctx context.Context, from, to time.Time) ([]*domain.Communication, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidCommunication.OnField("to", "end of range is before its start")
	}
	return s.commRepo.FindBySentDateRange(ctx, from, to)
}

// RecentCommunications returns the latest n communications
func (s *CommunicationService) RecentCommunications(ctx context.Context, n int) ([]*domain.Communication, error) {
	return s.commRepo.FindRecent(ctx, n)
}

// GetDeliveries lists the deliveries of one communication
func (s *CommunicationService) GetDeliveries(ctx context.Context, communicationID uint) ([]*domain.MessageDelivery, error) {
	if _, err := s.GetCommunication(ctx, communicationID); err != nil {
		return nil, err
	}
	return s.deliveryRepo.FindByCommunicationID(ctx, communicationID)
}

// SendToMembers records one PENDING delivery per recipient and queues the sends.
// It returns as soon as the pending state is stored.
func (s *CommunicationService) SendToMembers(
	ctx context.Context,
	comm *domain.Communication,
	recipients []*domain.Member,
	channel domain.DeliveryChannel,
) (*domain.Communication, error) {
	// 1. Validate
	if comm.SentAt != nil {
		return nil, domain.ErrInvalidCommunication.With("communication %d was already sent", comm.ID)
	}
	if err := comm.Validate(); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, domain.ErrInvalidCommunication.OnField("recipients", "at least one recipient is required")
	}

	// 2. Mark sent and add pending deliveries
	comm.MarkSent(s.now())
	first := len(comm.Deliveries)
	for _, member := range recipients {
		comm.AddDelivery(member.ID, channel)
	}

	// 3. Persist before any network I/O
	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.commRepo.Save(ctx, comm)
	}); err != nil {
		return nil, err
	}

	// 4. Hand a snapshot to the dispatcher
	job := DispatchJob{
		CommunicationID: comm.ID,
		Type:            comm.Type,
		Title:           comm.Title,
		Content:         comm.MessageContent,
		Targets:         make([]DeliveryTarget, 0, len(recipients)),
	}
	for i, member := range recipients {
		job.Targets = append(job.Targets, target(comm.Deliveries[first+i], member))
	}
	if err := s.queue.Dispatch(job); err != nil {
		log.Error().Err(err).Uint("communication_id", comm.ID).Msg("❌ Failed to queue deliveries, left pending")
	}

	log.Info().
		Uint("communication_id", comm.ID).
		Int("recipients", len(recipients)).
		Str("channel", string(channel)).
		Msg("✅ Communication queued")
	return comm, nil
}

// SendToMemberIDs sends to the given members in the given order
func (s *CommunicationService) SendToMemberIDs(
	ctx context.Context,
	input CommunicationInput,
	memberIDs []uint,
	channelCode string,
) (*domain.Communication, error) {
	channel, err := domain.ParseDeliveryChannel(channelCode)
	if err != nil {
		return nil, err
	}
	comm, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	recipients, err := s.membersByID(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	return s.SendToMembers(ctx, comm, recipients, channel)
}

// SendToAllMembers emails every member
func (s *CommunicationService) SendToAllMembers(ctx context.Context, input CommunicationInput) (*domain.Communication, error) {
	comm, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	comm.SentToAllMembers = true
	return s.SendToMembers(ctx, comm, members, domain.ChannelEmail)
}

// SendToOverdueMembers emails members who missed at least months payments
func (s *CommunicationService) SendToOverdueMembers(ctx context.Context, input CommunicationInput, months int) (*domain.Communication, error) {
	if months < 1 {
		return nil, domain.ErrInvalidMemberData.OnField("months", "months must be at least 1")
	}
	comm, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.FindByMissedAtLeast(ctx, months)
	if err != nil {
		return nil, err
	}
	return s.SendToMembers(ctx, comm, members, domain.ChannelEmail)
}

// SendPaymentReminders emails the standard reminder to active members that
// missed at least threshold payments or are due a reminder today.
// It returns nil when nobody qualifies.
func (s *CommunicationService) SendPaymentReminders(ctx context.Context, threshold int) (*domain.Communication, error) {
	members, err := s.memberRepo.FindByActive(ctx, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	recipients := make([]*domain.Member, 0, len(members))
	for _, member := range members {
		if member.ConsecutiveMonthsMissed >= threshold || s.policy.ShouldSendReminder(member, now) {
			recipients = append(recipients, member)
		}
	}
	if len(recipients) == 0 {
		log.Info().Msg("✅ No members need a payment reminder")
		return nil, nil
	}

	return s.SendToMembers(ctx, domain.NewPaymentReminder(now), recipients, domain.ChannelEmail)
}

// RecoverPendingDeliveries re-queues deliveries left PENDING by a previous process
func (s *CommunicationService) RecoverPendingDeliveries(ctx context.Context) (int, error) {
	pending, err := s.deliveryRepo.FindPending(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	// Group by communication, keeping delivery order
	var order []uint
	byComm := make(map[uint][]*domain.MessageDelivery)
	for _, d := range pending {
		if _, ok := byComm[d.CommunicationID]; !ok {
			order = append(order, d.CommunicationID)
		}
		byComm[d.CommunicationID] = append(byComm[d.CommunicationID], d)
	}

	recovered := 0
	for _, commID := range order {
		n, err := s.recover(ctx, commID, byComm[commID])
		if err != nil {
			log.Error().Err(err).Uint("communication_id", commID).Msg("❌ Failed to recover pending deliveries")
			continue
		}
		recovered += n
	}

	log.Info().Int("deliveries", recovered).Msg("✅ Pending deliveries re-queued")
	return recovered, nil
}

func (s *CommunicationService) recover(ctx context.Context, commID uint, deliveries []*domain.MessageDelivery) (int, error) {
	comm, err := s.GetCommunication(ctx, commID)
	if err != nil {
		return 0, err
	}

	ids := make([]uint, len(deliveries))
	for i, d := range deliveries {
		ids[i] = d.RecipientID
	}
	members, err := s.memberRepo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	byID := make(map[uint]*domain.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	job := DispatchJob{
		CommunicationID: comm.ID,
		Type:            comm.Type,
		Title:           comm.Title,
		Content:         comm.MessageContent,
	}
	for _, d := range deliveries {
		member, ok := byID[d.RecipientID]
		if !ok {
			// Recipient deleted since; the email path fails it with a note
			member = &domain.Member{ID: d.RecipientID}
		}
		job.Targets = append(job.Targets, target(d, member))
	}
	if err := s.queue.Dispatch(job); err != nil {
		return 0, err
	}
	return len(job.Targets), nil
}

// resolve loads the referenced communication or builds a new one
func (s *CommunicationService) resolve(ctx context.Context, input CommunicationInput) (*domain.Communication, error) {
	if input.CommunicationID != 0 {
		return s.GetCommunication(ctx, input.CommunicationID)
	}
	return s.build(input)
}

func (s *CommunicationService) build(input CommunicationInput) (*domain.Communication, error) {
	typ, err := domain.ParseCommunicationType(input.Type)
	if err != nil {
		return nil, err
	}
	return domain.NewCommunication(input.Title, input.MessageContent, typ, s.now())
}

// membersByID resolves ids in order, dropping duplicates
func (s *CommunicationService) membersByID(ctx context.Context, ids []uint) ([]*domain.Member, error) {
	members, err := s.memberRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*domain.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	seen := make(map[uint]bool, len(ids))
	out := make([]*domain.Member, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		member, ok := byID[id]
		if !ok {
			return nil, domain.ErrMemberNotFound.With("member not found: %d", id)
		}
		out = append(out, member)
	}
	return out, nil
}

func target(d *domain.MessageDelivery, member *domain.Member) DeliveryTarget {
	return DeliveryTarget{
		DeliveryID:   d.ID,
		Channel:      d.Channel,
		MemberID:     member.ID,
		Name:         member.Name,
		Email:        member.Email.String(),
		MonthsMissed: member.ConsecutiveMonthsMissed,
	}
}
