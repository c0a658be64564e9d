package services

import (
	"context"
	"errors"
	"io"
	"time"

	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/csvexport"
	"membertracker/internal/pkg/metrics"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReactivationNotes is stored on payments recorded through reactivation
const ReactivationNotes = "Payment with reactivation"

// PaymentService records payments and keeps member payment state current
type PaymentService struct {
	tx          repositories.Transactor
	memberRepo  repositories.MemberRepository
	paymentRepo repositories.PaymentRepository
	policy      domain.MembershipPolicy
	now         func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	tx repositories.Transactor,
	memberRepo repositories.MemberRepository,
	paymentRepo repositories.PaymentRepository,
	policy domain.MembershipPolicy,
) *PaymentService {
	return &PaymentService{
		tx:          tx,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		policy:      policy,
		now:         time.Now,
	}
}

// MemberPaymentStatus is a read-only snapshot of a member's payment standing
type MemberPaymentStatus struct {
	MemberID                 uint   `json:"memberId"`
	MemberName               string `json:"memberName"`
	MembershipDurationMonths int    `json:"membershipDurationMonths"`
	PaymentOverdue           bool   `json:"paymentOverdue"`
	ShouldSendReminder       bool   `json:"shouldSendReminder"`
	DaysUntilPaymentDue      int    `json:"daysUntilPaymentDue"`
	InGoodStanding           bool   `json:"inGoodStanding"`
	ConsecutiveMonthsMissed  int    `json:"consecutiveMonthsMissed"`
	Active                   bool   `json:"active"`
}

// CounterUpdateResult summarizes one run of the missed payment batch
type CounterUpdateResult struct {
	Period      string `json:"period"`
	Processed   int    `json:"processed"`
	Incremented int    `json:"incremented"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
}

// DeactivationResult summarizes one run of the lapsed member sweep
type DeactivationResult struct {
	Checked     int `json:"checked"`
	Deactivated int `json:"deactivated"`
	Failed      int `json:"failed"`
}

// RecordPayment validates and commits a payment for an active member
func (s *PaymentService) RecordPayment(
	ctx context.Context,
	memberID uint,
	amount decimal.Decimal,
	period domain.Period,
	methodCode string,
	notes string,
) (*domain.Payment, error) {
	payment := domain.NewPayment(memberID, amount, period, domain.PaymentMethod(methodCode), notes)

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.record(ctx, payment)
	}); err != nil {
		return nil, err
	}

	s.recorded(payment)
	return payment, nil
}

// RecordPaymentObject commits a pre-built payment, keeping an explicit payment date
func (s *PaymentService) RecordPaymentObject(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment.ID != 0 {
		return nil, domain.ErrPaymentAlreadyProcessed.With("payment %d is already processed", payment.ID)
	}
	if err := payment.ValidatePaymentDate(s.now()); err != nil {
		return nil, err
	}

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.record(ctx, payment)
	}); err != nil {
		return nil, err
	}

	s.recorded(payment)
	return payment, nil
}

// ProcessPaymentWithReactivation reactivates an eligible inactive member and
// records the payment in the same transaction
func (s *PaymentService) ProcessPaymentWithReactivation(
	ctx context.Context,
	memberID uint,
	amount decimal.Decimal,
	period domain.Period,
	methodCode string,
) (*domain.Payment, error) {
	payment := domain.NewPayment(memberID, amount, period, domain.PaymentMethod(methodCode), ReactivationNotes)

	reactivated := false
	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		member, err := findMember(ctx, s.memberRepo, memberID)
		if err != nil {
			return err
		}
		if !member.Active && s.policy.CanReactivate(member, s.now()) {
			if err := member.Activate(); err != nil {
				return err
			}
			if err := s.memberRepo.Save(ctx, member); err != nil {
				return err
			}
			reactivated = true
		}
		return s.record(ctx, payment)
	}); err != nil {
		return nil, err
	}

	if reactivated {
		log.Info().Uint("member_id", memberID).Msg("✅ Member reactivated with payment")
	}
	s.recorded(payment)
	return payment, nil
}

// record runs the validation and state changes of a payment inside a transaction
func (s *PaymentService) record(ctx context.Context, payment *domain.Payment) error {
	now := s.now()

	// 1. Find member
	member, err := findMember(ctx, s.memberRepo, payment.MemberID)
	if err != nil {
		return err
	}

	// 2. Inactive members need the reactivation flow
	if !member.Active {
		return domain.ErrMemberAlreadyInactive.With("cannot record a payment for inactive member %d", member.ID)
	}

	// 3. Resolve the method code to its canonical value
	method, err := domain.ParsePaymentMethod(string(payment.Method))
	if err != nil {
		return err
	}
	payment.Method = method

	// 4. Validate amount and period
	if err := payment.ValidateAmount(s.policy.MinimumPaymentAmount()); err != nil {
		return err
	}
	if err := payment.ValidatePeriod(now); err != nil {
		return err
	}

	// 5. One payment per member and period
	exists, err := s.paymentRepo.ExistsByMemberAndPeriod(ctx, member.ID, payment.Period)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicatePaymentForPeriod.With("member %d already paid for %s", member.ID, payment.Period)
	}

	// 6. Process payment and update member
	payment.MarkAsProcessed(now)
	member.RecordPayment(payment, now)

	// 7. Apply policy consequence
	if s.policy.ShouldDeactivate(member, now) {
		if err := member.Deactivate(); err != nil {
			return err
		}
		log.Warn().Uint("member_id", member.ID).Msg("⚠️ Member deactivated after payment")
	}

	// 8. Persist both
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return err
	}
	return s.memberRepo.Save(ctx, member)
}

func (s *PaymentService) recorded(payment *domain.Payment) {
	metrics.PaymentsRecorded.WithLabelValues(string(payment.Method)).Inc()
	log.Info().
		Uint("member_id", payment.MemberID).
		Str("period", payment.Period.String()).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("✅ Payment recorded")
}

// GetMemberPaymentStatus projects the member's standing as of today
func (s *PaymentService) GetMemberPaymentStatus(ctx context.Context, memberID uint) (*MemberPaymentStatus, error) {
	member, err := findMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &MemberPaymentStatus{
		MemberID:                 member.ID,
		MemberName:               member.Name,
		MembershipDurationMonths: member.MembershipDurationMonths(now),
		PaymentOverdue:           member.IsPaymentOverdue(),
		ShouldSendReminder:       s.policy.ShouldSendReminder(member, now),
		DaysUntilPaymentDue:      s.policy.DaysUntilPaymentDue(member, now),
		InGoodStanding:           s.policy.IsInGoodStanding(member, now),
		ConsecutiveMonthsMissed:  member.ConsecutiveMonthsMissed,
		Active:                   member.Active,
	}, nil
}

// HasPaymentForMonth reports whether the member paid for period
func (s *PaymentService) HasPaymentForMonth(ctx context.Context, memberID uint, period domain.Period) (bool, error) {
	return s.paymentRepo.ExistsByMemberAndPeriod(ctx, memberID, period)
}

// UpdateMissingPaymentCounters counts the previous month as missed for every
// member without a payment for it. A member is counted at most once per period
// and one member's failure does not stop the batch.
func (s *PaymentService) UpdateMissingPaymentCounters(ctx context.Context) (*CounterUpdateResult, error) {
	previous := domain.PeriodOf(s.now()).AddMonths(-1)

	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &CounterUpdateResult{Period: previous.String()}
	for _, member := range members {
		result.Processed++

		incremented, err := s.updateMissedCounter(ctx, member, previous)
		switch {
		case err != nil:
			result.Failed++
			log.Error().Err(err).Uint("member_id", member.ID).Msg("❌ Failed to update missed payment counter")
		case incremented:
			result.Incremented++
			metrics.MissedCounterUpdates.Inc()
		default:
			result.Skipped++
		}
	}

	log.Info().
		Str("period", result.Period).
		Int("processed", result.Processed).
		Int("incremented", result.Incremented).
		Int("failed", result.Failed).
		Msg("✅ Missed payment counters updated")
	return result, nil
}

func (s *PaymentService) updateMissedCounter(ctx context.Context, member *domain.Member, period domain.Period) (bool, error) {
	// Joined after the period closed
	if domain.DateOf(member.JoinDate).After(period.EndOfMonth()) {
		return false, nil
	}

	paid, err := s.paymentRepo.ExistsByMemberAndPeriod(ctx, member.ID, period)
	if err != nil {
		return false, err
	}
	if paid || !member.MarkPaymentMissed(period) {
		return false, nil
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		return false, err
	}
	return true, nil
}

// DeactivateLapsedMembers deactivates every active member the policy says should go
func (s *PaymentService) DeactivateLapsedMembers(ctx context.Context) (*DeactivationResult, error) {
	members, err := s.memberRepo.FindByActive(ctx, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &DeactivationResult{}
	for _, member := range members {
		result.Checked++
		if !s.policy.ShouldDeactivate(member, now) {
			continue
		}
		if err := member.Deactivate(); err != nil {
			result.Failed++
			continue
		}
		if err := s.memberRepo.Save(ctx, member); err != nil {
			result.Failed++
			log.Error().Err(err).Uint("member_id", member.ID).Msg("❌ Failed to deactivate member")
			continue
		}
		result.Deactivated++
		log.Warn().
			Uint("member_id", member.ID).
			Int("missed", member.ConsecutiveMonthsMissed).
			Msg("⚠️ Member deactivated for missed payments")
	}
	return result, nil
}

// GetPayment gets a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uint) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound.With("payment not found: %d", id)
		}
		return nil, err
	}
	return payment, nil
}

// ListPayments lists payments newest first
func (s *PaymentService) ListPayments(ctx context.Context, offset, limit int, orderBy string) ([]*domain.Payment, int64, error) {
	return s.paymentRepo.List(ctx, offset, limit, orderBy)
}

// GetPaymentsByMember lists one member's payments
func (s *PaymentService) GetPaymentsByMember(ctx context.Context, memberID uint) ([]*domain.Payment, error) {
	if _, err := findMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	return s.paymentRepo.FindByMember(ctx, memberID)
}

// RecentPayments returns the latest n payments
func (s *PaymentService) RecentPayments(ctx context.Context, n int) ([]*domain.Payment, error) {
	return s.paymentRepo.FindRecent(ctx, n)
}

// ExportPayments writes every payment as CSV
func (s *PaymentService) ExportPayments(ctx context.Context, w io.Writer) error {
	payments, err := s.paymentRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	return csvexport.WritePayments(w, payments)
}

// findMember translates a missing row into ErrMemberNotFound
func findMember(ctx context.Context, repo repositories.MemberRepository, id uint) (*domain.Member, error) {
	member, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound.With("member not found: %d", id)
		}
		return nil, err
	}
	return member, nil
}
