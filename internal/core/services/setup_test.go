package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/config"
	"membertracker/internal/core/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testRepos struct {
	db         *gorm.DB
	tx         repositories.Transactor
	members    repositories.MemberRepository
	payments   repositories.PaymentRepository
	comms      repositories.CommunicationRepository
	deliveries repositories.DeliveryRepository
	users      repositories.UserRepository
	tokens     repositories.RefreshTokenRepository
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), config.GormConfig(nil))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))

	return &testRepos{
		db:         db,
		tx:         repositories.NewTransactor(db),
		members:    repositories.NewMemberRepository(db),
		payments:   repositories.NewPaymentRepository(db),
		comms:      repositories.NewCommunicationRepository(db),
		deliveries: repositories.NewDeliveryRepository(db),
		users:      repositories.NewUserRepository(db),
		tokens:     repositories.NewRefreshTokenRepository(db),
	}
}

func (r *testRepos) addMember(t *testing.T, name, email string, joined time.Time) *domain.Member {
	t.Helper()
	addr, err := domain.NewEmail(email)
	require.NoError(t, err)
	m, err := domain.NewMember(name, addr, domain.PhoneNumber{}, joined)
	require.NoError(t, err)
	require.NoError(t, r.members.Save(context.Background(), m))
	return m
}

func (r *testRepos) reload(t *testing.T, id uint) *domain.Member {
	t.Helper()
	m, err := r.members.FindByID(context.Background(), id)
	require.NoError(t, err)
	return m
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

type sentEmail struct {
	To       string
	Subject  string
	Template string
	Vars     map[string]interface{}
	Body     string
}

// recordingSender is an EmailSender that fails for the addresses in failFor
type recordingSender struct {
	mu      sync.Mutex
	sent    []sentEmail
	failFor map[string]error
}

func (s *recordingSender) SendSimpleEmail(_ context.Context, to, subject, body string) error {
	return s.record(sentEmail{To: to, Subject: subject, Body: body})
}

func (s *recordingSender) SendTemplatedEmail(_ context.Context, to, subject, template string, vars map[string]interface{}) error {
	return s.record(sentEmail{To: to, Subject: subject, Template: template, Vars: vars})
}

func (s *recordingSender) record(e sentEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[e.To]; ok {
		return err
	}
	s.sent = append(s.sent, e)
	return nil
}

func (s *recordingSender) Sent() []sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentEmail(nil), s.sent...)
}

// inlineQueue runs jobs on the caller's goroutine
type inlineQueue struct {
	jobs []DispatchJob
	err  error
}

func (q *inlineQueue) Dispatch(job DispatchJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *inlineQueue) Submit(task func(ctx context.Context)) error {
	if q.err != nil {
		return q.err
	}
	task(context.Background())
	return nil
}

// flakyTransport fails the first failures sends
type flakyTransport struct {
	mu       sync.Mutex
	failures int
	calls    int
	last     MailMessage
}

var errSMTPDown = errors.New("dial tcp: connection refused")

func (f *flakyTransport) Send(_ context.Context, msg MailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = msg
	if f.calls <= f.failures {
		return errSMTPDown
	}
	return nil
}

type stubRenderer struct{}

func (stubRenderer) Render(name string, vars map[string]interface{}) (string, error) {
	if name == "missing" {
		return "", errors.New("template missing not found")
	}
	return "<p>" + name + "</p>", nil
}

func testPolicy() domain.MembershipPolicy {
	return domain.NewDefaultPolicy(domain.DefaultPolicyConfig())
}
