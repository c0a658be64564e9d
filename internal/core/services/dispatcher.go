package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/config"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// PaymentReminderTemplate is the email template used for REMINDER communications
const PaymentReminderTemplate = "payment-reminder"

// AnnouncementTemplate is the email template used for ANNOUNCEMENT communications
const AnnouncementTemplate = "announcement"

var ErrDispatcherStopped = errors.New("dispatcher is stopped")

// DispatchJob is a self-contained snapshot of one communication to deliver.
// It shares no pointers with the persisted aggregate.
type DispatchJob struct {
	CommunicationID uint
	Type            domain.CommunicationType
	Title           string
	Content         string
	Targets         []DeliveryTarget
}

// DeliveryTarget is one pending delivery with its recipient's contact data
type DeliveryTarget struct {
	DeliveryID   uint
	Channel      domain.DeliveryChannel
	MemberID     uint
	Name         string
	Email        string
	MonthsMissed int
}

// Dispatcher runs delivery jobs on a fixed pool of workers.
// Submitted work always runs to completion; Stop waits for the queue to drain.
type Dispatcher struct {
	deliveryRepo repositories.DeliveryRepository
	email        EmailSender
	cfg          config.DispatchConfig
	now          func() time.Time

	queue    chan func(ctx context.Context)
	group    errgroup.Group
	overflow sync.WaitGroup
	start    sync.Once

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a dispatcher; call Start before submitting work
func NewDispatcher(deliveryRepo repositories.DeliveryRepository, email EmailSender, cfg config.DispatchConfig) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	return &Dispatcher{
		deliveryRepo: deliveryRepo,
		email:        email,
		cfg:          cfg,
		now:          time.Now,
		queue:        make(chan func(ctx context.Context), cfg.QueueSize),
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		ctx := context.Background()
		for i := 0; i < d.cfg.Workers; i++ {
			d.group.Go(func() error {
				for task := range d.queue {
					metrics.DispatchQueueDepth.Dec()
					d.run(ctx, task)
				}
				return nil
			})
		}
		log.Info().Int("workers", d.cfg.Workers).Msg("🚀 Dispatcher started")
	})
}

// Stop rejects new work and returns once every queued task has finished
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	d.Start()
	d.overflow.Wait()
	close(d.queue)
	_ = d.group.Wait()
	log.Info().Msg("🛑 Dispatcher stopped")
}

// Submit queues task without blocking the caller.
// When the queue is full the hand-off continues in the background.
func (d *Dispatcher) Submit(task func(ctx context.Context)) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	metrics.DispatchQueueDepth.Inc()
	select {
	case d.queue <- task:
	default:
		d.overflow.Add(1)
		go func() {
			defer d.overflow.Done()
			d.queue <- task
		}()
	}
	return nil
}

// Dispatch queues delivery of every target in job
func (d *Dispatcher) Dispatch(job DispatchJob) error {
	return d.Submit(func(ctx context.Context) {
		d.deliver(ctx, job)
	})
}

func (d *Dispatcher) run(ctx context.Context, task func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("❌ Dispatch task panicked")
		}
	}()
	task(ctx)
}

func (d *Dispatcher) deliver(ctx context.Context, job DispatchJob) {
	limiter := d.limiter()
	sent, failed := 0, 0

	for _, target := range job.Targets {
		if target.Channel != domain.ChannelEmail {
			failed++
			d.finish(ctx, target, domain.DeliveryFailed, fmt.Sprintf("Channel %s is not supported yet", target.Channel))
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("⚠️ Dispatch pacing interrupted")
		}
		if err := d.sendEmail(ctx, job, target); err != nil {
			failed++
			d.finish(ctx, target, domain.DeliveryFailed, failureNote(err))
			continue
		}
		sent++
		d.finish(ctx, target, domain.DeliverySent, "")
	}

	log.Info().
		Uint("communication_id", job.CommunicationID).
		Int("sent", sent).
		Int("failed", failed).
		Msg("✅ Communication dispatched")
}

func (d *Dispatcher) sendEmail(ctx context.Context, job DispatchJob, target DeliveryTarget) error {
	if target.Email == "" {
		return fmt.Errorf("member %d has no email address", target.MemberID)
	}
	content := domain.PersonalizeMessage(job.Content, target.Name)

	switch job.Type {
	case domain.CommunicationReminder:
		return d.email.SendTemplatedEmail(ctx, target.Email, job.Title, PaymentReminderTemplate, map[string]interface{}{
			"MemberName":   target.Name,
			"Message":      content,
			"MonthsMissed": target.MonthsMissed,
		})
	case domain.CommunicationAnnouncement:
		return d.email.SendTemplatedEmail(ctx, target.Email, job.Title, AnnouncementTemplate, map[string]interface{}{
			"Title":      job.Title,
			"MemberName": target.Name,
			"Message":    content,
		})
	default:
		return d.email.SendSimpleEmail(ctx, target.Email, job.Title, content)
	}
}

// finish writes one delivery outcome by its own id
func (d *Dispatcher) finish(ctx context.Context, target DeliveryTarget, status domain.DeliveryStatus, note string) {
	delivery := domain.PendingDelivery(target.DeliveryID, target.MemberID, target.Channel)

	var err error
	if status == domain.DeliverySent {
		err = delivery.MarkSent(d.now())
	} else {
		err = delivery.MarkFailed(d.now(), note)
	}
	if err == nil {
		err = d.deliveryRepo.UpdateStatus(ctx, delivery.ID, delivery.Status, *delivery.DeliveredAt, delivery.ResponseNotes)
	}
	if err != nil {
		log.Error().
			Err(err).
			Uint("delivery_id", target.DeliveryID).
			Str("status", string(status)).
			Msg("❌ Failed to update delivery status")
		return
	}
	metrics.DeliveriesTotal.WithLabelValues(string(delivery.Channel), string(delivery.Status)).Inc()
}

func (d *Dispatcher) limiter() *rate.Limiter {
	if d.cfg.RecipientPacing <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d.cfg.RecipientPacing), 1)
}

func failureNote(err error) string {
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		return "Failed after max retry attempts: " + exhausted.Err.Error()
	}
	return err.Error()
}
