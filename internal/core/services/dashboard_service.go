package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/core/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	recentPaymentsLimit   = 10
	recentActivitiesLimit = 10
)

// DashboardService aggregates read-only figures for the dashboard
type DashboardService struct {
	memberRepo  repositories.MemberRepository
	paymentRepo repositories.PaymentRepository
	commRepo    repositories.CommunicationRepository
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	memberRepo repositories.MemberRepository,
	paymentRepo repositories.PaymentRepository,
	commRepo repositories.CommunicationRepository,
) *DashboardService {
	return &DashboardService{
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		commRepo:    commRepo,
		now:         time.Now,
	}
}

// DashboardStats represents the headline numbers
type DashboardStats struct {
	TotalMembers   int64           `json:"totalMembers"`
	ActiveMembers  int64           `json:"activeMembers"`
	OverdueMembers int64           `json:"overdueMembers"`
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
	Period         domain.Period   `json:"period"`
}

// Activity is one entry of the recent activity feed
type Activity struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// GetStats counts members and sums revenue for the current period
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{Period: domain.PeriodOf(s.now())}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalMembers, err = s.memberRepo.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveMembers, err = s.memberRepo.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.OverdueMembers, err = s.memberRepo.CountMissedAtLeast(ctx, 1)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthlyRevenue, err = s.paymentRepo.SumForPeriod(ctx, stats.Period)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentPayments returns the latest payments with member names
func (s *DashboardService) RecentPayments(ctx context.Context) ([]*PaymentView, error) {
	payments, err := s.paymentRepo.FindRecent(ctx, recentPaymentsLimit)
	if err != nil {
		return nil, err
	}

	names, err := s.memberNames(ctx, payments)
	if err != nil {
		return nil, err
	}

	views := NewPaymentViews(payments)
	for _, v := range views {
		v.MemberName = names[v.MemberID]
	}
	return views, nil
}

// OverdueMembers lists members with at least one missed payment
func (s *DashboardService) OverdueMembers(ctx context.Context) ([]*domain.Member, error) {
	return s.memberRepo.FindByMissedAtLeast(ctx, 1)
}

// RecentActivities merges recent payments and communications, newest first
func (s *DashboardService) RecentActivities(ctx context.Context) ([]Activity, error) {
	payments, err := s.paymentRepo.FindRecent(ctx, recentActivitiesLimit)
	if err != nil {
		return nil, err
	}
	comms, err := s.commRepo.FindRecent(ctx, recentActivitiesLimit)
	if err != nil {
		return nil, err
	}
	names, err := s.memberNames(ctx, payments)
	if err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(payments)+len(comms))
	for _, p := range payments {
		activities = append(activities, Activity{
			Type:        "payment",
			Description: fmt.Sprintf("Payment of %s received from %s", p.Amount.StringFixed(2), names[p.MemberID]),
			Date:        p.PaymentDate,
		})
	}
	for _, c := range comms {
		date := c.CreatedAt
		if c.SentAt != nil {
			date = *c.SentAt
		}
		activities = append(activities, Activity{
			Type:        "communication",
			Description: fmt.Sprintf("%s sent: %s", c.Type, c.Title),
			Date:        date,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
	if len(activities) > recentActivitiesLimit {
		activities = activities[:recentActivitiesLimit]
	}
	return activities, nil
}

func (s *DashboardService) memberNames(ctx context.Context, payments []*domain.Payment) (map[uint]string, error) {
	ids := make([]uint, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.MemberID)
	}
	members, err := s.memberRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names, nil
}
