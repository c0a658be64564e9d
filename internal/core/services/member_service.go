package services

import (
	"context"
	"errors"
	"io"
	"time"

	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/csvexport"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// WelcomeTemplate is the email template sent to new members
const WelcomeTemplate = "welcome"

// MemberService handles member management business logic
type MemberService struct {
	memberRepo  repositories.MemberRepository
	paymentRepo repositories.PaymentRepository
	email       EmailSender
	queue       JobQueue
	now         func() time.Time
}

// NewMemberService creates a new member service
func NewMemberService(
	memberRepo repositories.MemberRepository,
	paymentRepo repositories.PaymentRepository,
	email EmailSender,
	queue JobQueue,
) *MemberService {
	return &MemberService{
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		email:       email,
		queue:       queue,
		now:         time.Now,
	}
}

// MemberInput represents create and update member input
type MemberInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	JoinDate string `json:"joinDate"` // 2006-01-02, defaults to today on create
}

// CreateMember registers a new active member
func (s *MemberService) CreateMember(ctx context.Context, input MemberInput) (*domain.Member, error) {
	now := s.now()

	// 1. Validate contact data
	email, phone, err := contact(input)
	if err != nil {
		return nil, err
	}

	// 2. Resolve join date
	joinDate := domain.DateOf(now)
	if input.JoinDate != "" {
		joinDate, err = time.Parse(time.DateOnly, input.JoinDate)
		if err != nil {
			return nil, domain.ErrInvalidMemberData.OnField("joinDate", "join date must be YYYY-MM-DD")
		}
		if joinDate.After(now) {
			return nil, domain.ErrInvalidMemberData.OnField("joinDate", "join date cannot be in the future")
		}
	}

	// 3. Create member
	member, err := domain.NewMember(input.Name, email, phone, joinDate)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}

	log.Info().Uint("member_id", member.ID).Str("name", member.Name).Msg("✅ Member created")

	// 4. Welcome email, best effort
	s.welcome(member)
	return member, nil
}

// UpdateMember replaces a member's contact details
func (s *MemberService) UpdateMember(ctx context.Context, id uint, input MemberInput) (*domain.Member, error) {
	member, err := findMember(ctx, s.memberRepo, id)
	if err != nil {
		return nil, err
	}

	email, phone, err := contact(input)
	if err != nil {
		return nil, err
	}
	if err := member.UpdateDetails(input.Name, email, phone); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}

	log.Info().Uint("member_id", member.ID).Msg("✅ Member updated")
	return member, nil
}

// DeleteMember removes a member without payment history
func (s *MemberService) DeleteMember(ctx context.Context, id uint) error {
	if _, err := findMember(ctx, s.memberRepo, id); err != nil {
		return err
	}

	count, err := s.paymentRepo.CountByMember(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrMemberHasPayments.With("member %d has %d payments; deactivate instead", id, count)
	}

	if err := s.memberRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrMemberNotFound.With("member not found: %d", id)
		}
		return err
	}

	log.Info().Uint("member_id", id).Msg("✅ Member deleted")
	return nil
}

// GetMember gets a member by ID
func (s *MemberService) GetMember(ctx context.Context, id uint) (*domain.Member, error) {
	return findMember(ctx, s.memberRepo, id)
}

// ListMembers lists members with pagination
func (s *MemberService) ListMembers(ctx context.Context, offset, limit int, orderBy string) ([]*domain.Member, int64, error) {
	return s.memberRepo.List(ctx, offset, limit, orderBy)
}

func (s *MemberService) ActiveMembers(ctx context.Context) ([]*domain.Member, error) {
	return s.memberRepo.FindByActive(ctx, true)
}

func (s *MemberService) InactiveMembers(ctx context.Context) ([]*domain.Member, error) {
	return s.memberRepo.FindByActive(ctx, false)
}

// OverdueMembers lists members who missed at least months payments
func (s *MemberService) OverdueMembers(ctx context.Context, months int) ([]*domain.Member, error) {
	if months < 1 {
		return nil, domain.ErrInvalidMemberData.OnField("months", "months must be at least 1")
	}
	return s.memberRepo.FindByMissedAtLeast(ctx, months)
}

// MembersWithoutRecentPayment lists members who have not paid in the last months months
func (s *MemberService) MembersWithoutRecentPayment(ctx context.Context, months int) ([]*domain.Member, error) {
	if months < 1 {
		return nil, domain.ErrInvalidMemberData.OnField("months", "months must be at least 1")
	}
	cutoff := domain.DateOf(s.now()).AddDate(0, -months, 0)
	return s.memberRepo.FindWithLastPaymentBefore(ctx, cutoff)
}

// ActivateMember reactivates a member and clears missed payments
func (s *MemberService) ActivateMember(ctx context.Context, id uint) (*domain.Member, error) {
	return s.transition(ctx, id, (*domain.Member).Activate, "✅ Member activated")
}

// DeactivateMember deactivates a member
func (s *MemberService) DeactivateMember(ctx context.Context, id uint) (*domain.Member, error) {
	return s.transition(ctx, id, (*domain.Member).Deactivate, "✅ Member deactivated")
}

func (s *MemberService) transition(ctx context.Context, id uint, apply func(*domain.Member) error, msg string) (*domain.Member, error) {
	member, err := findMember(ctx, s.memberRepo, id)
	if err != nil {
		return nil, err
	}
	if err := apply(member); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}
	log.Info().Uint("member_id", id).Msg(msg)
	return member, nil
}

// ExportMembers writes every member as CSV
func (s *MemberService) ExportMembers(ctx context.Context, w io.Writer) error {
	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	return csvexport.WriteMembers(w, members)
}

func (s *MemberService) welcome(member *domain.Member) {
	to := member.Email.String()
	name := member.Name
	joined := member.JoinDate.Format("January 2, 2006")

	err := s.queue.Submit(func(ctx context.Context) {
		err := s.email.SendTemplatedEmail(ctx, to, "Welcome to our community", WelcomeTemplate, map[string]interface{}{
			"MemberName": name,
			"JoinDate":   joined,
		})
		switch {
		case errors.Is(err, ErrMailDisabled):
			log.Debug().Str("to", to).Msg("Welcome email skipped, mail disabled")
		case err != nil:
			log.Warn().Err(err).Str("to", to).Msg("⚠️ Welcome email failed")
		}
	})
	if err != nil {
		log.Warn().Err(err).Uint("member_id", member.ID).Msg("⚠️ Welcome email not queued")
	}
}

// contact validates email and the optional phone number
func contact(input MemberInput) (domain.Email, domain.PhoneNumber, error) {
	email, err := domain.NewEmail(input.Email)
	if err != nil {
		return domain.Email{}, domain.PhoneNumber{}, err
	}
	var phone domain.PhoneNumber
	if input.Phone != "" {
		phone, err = domain.NewPhoneNumber(input.Phone)
		if err != nil {
			return domain.Email{}, domain.PhoneNumber{}, err
		}
	}
	return email, phone, nil
}
