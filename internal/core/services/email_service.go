package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"membertracker/internal/config"
	"membertracker/internal/pkg/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// Email errors
var (
	ErrMailDisabled      = errors.New("mail delivery is disabled")
	ErrDeliveryExhausted = errors.New("failed after max retry attempts")
)

// MailMessage is one outgoing email
type MailMessage struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// MailTransport hands a message to a mail server
type MailTransport interface {
	Send(ctx context.Context, msg MailMessage) error
}

// TemplateRenderer renders a named email template
type TemplateRenderer interface {
	Render(name string, vars map[string]interface{}) (string, error)
}

// EmailSender sends plain and templated emails
type EmailSender interface {
	SendSimpleEmail(ctx context.Context, to, subject, body string) error
	SendTemplatedEmail(ctx context.Context, to, subject, template string, vars map[string]interface{}) error
}

// ExhaustedError is returned once every attempt of a send has failed
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s (%d attempts): %v", ErrDeliveryExhausted, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

func (e *ExhaustedError) Is(target error) bool { return target == ErrDeliveryExhausted }

// EmailService sends emails with exponential backoff between attempts
type EmailService struct {
	transport MailTransport
	renderer  TemplateRenderer
	cfg       config.MailConfig
}

// NewEmailService creates a new email service
func NewEmailService(transport MailTransport, renderer TemplateRenderer, cfg config.MailConfig) *EmailService {
	return &EmailService{
		transport: transport,
		renderer:  renderer,
		cfg:       cfg,
	}
}

// SendSimpleEmail sends a plain text email
func (s *EmailService) SendSimpleEmail(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, MailMessage{To: to, Subject: subject, Body: body})
}

// SendTemplatedEmail renders template once and sends it as HTML
func (s *EmailService) SendTemplatedEmail(ctx context.Context, to, subject, template string, vars map[string]interface{}) error {
	if !s.cfg.Enabled {
		return ErrMailDisabled
	}
	body, err := s.renderer.Render(template, vars)
	if err != nil {
		return err
	}
	return s.send(ctx, MailMessage{To: to, Subject: subject, Body: body, HTML: true})
}

func (s *EmailService) send(ctx context.Context, msg MailMessage) error {
	if !s.cfg.Enabled {
		return ErrMailDisabled
	}

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		err := s.transport.Send(ctx, msg)
		metrics.EmailAttempts.WithLabelValues(metrics.Result(err)).Inc()
		return struct{}{}, err
	},
		backoff.WithBackOff(s.backOff()),
		backoff.WithMaxTries(uint(s.maxAttempts())),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Str("to", msg.To).Dur("retry_in", next).Msg("⚠️ Email send failed, retrying")
		}),
	)
	if err != nil {
		return &ExhaustedError{Attempts: attempts, Err: err}
	}

	log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("📧 Email sent")
	return nil
}

func (s *EmailService) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.Retry.InitialDelay
	b.Multiplier = s.cfg.Retry.Multiplier
	b.MaxInterval = s.cfg.Retry.MaxDelay
	b.RandomizationFactor = 0
	return b
}

func (s *EmailService) maxAttempts() int {
	if s.cfg.Retry.MaxAttempts < 1 {
		return 1
	}
	return s.cfg.Retry.MaxAttempts
}
