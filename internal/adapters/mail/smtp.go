package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"membertracker/internal/config"
	"membertracker/internal/core/services"

	"github.com/pkg/errors"
)

// SMTPTransport sends mail through one SMTP server, one connection per message
type SMTPTransport struct {
	cfg      config.SMTPConfig
	from     string
	fromName string
	now      func() time.Time
}

// NewSMTPTransport creates a new SMTP transport
func NewSMTPTransport(cfg config.MailConfig) *SMTPTransport {
	return &SMTPTransport{
		cfg:      cfg.SMTP,
		from:     cfg.From,
		fromName: cfg.FromName,
		now:      time.Now,
	}
}

// Send delivers msg, honoring ctx while dialing
func (t *SMTPTransport) Send(ctx context.Context, msg services.MailMessage) error {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))

	dialer := &net.Dialer{Timeout: t.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "dial %s", addr)
	}
	if t.cfg.WriteTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(t.cfg.ConnectTimeout + t.cfg.WriteTimeout)); err != nil {
			conn.Close()
			return errors.Wrap(err, "set deadline")
		}
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "smtp handshake")
	}
	defer client.Close()

	if t.cfg.StartTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: t.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
				return errors.Wrap(err, "starttls")
			}
		}
	}
	if t.cfg.Auth && t.cfg.Username != "" {
		auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "smtp auth")
		}
	}

	if err := client.Mail(t.from); err != nil {
		return errors.Wrap(err, "mail from")
	}
	if err := client.Rcpt(msg.To); err != nil {
		return errors.Wrapf(err, "rcpt %s", msg.To)
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "data")
	}
	if _, err := w.Write(t.compose(msg)); err != nil {
		w.Close()
		return errors.Wrap(err, "write message")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "close message")
	}
	return client.Quit()
}

func (t *SMTPTransport) compose(msg services.MailMessage) []byte {
	from := t.from
	if t.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", t.fromName), t.from)
	}
	contentType := "text/plain; charset=UTF-8"
	if msg.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", t.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(crlf(msg.Body))
	return []byte(b.String())
}

// crlf converts any mix of line endings to the CRLF that SMTP requires
func crlf(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return strings.ReplaceAll(body, "\n", "\r\n")
}
