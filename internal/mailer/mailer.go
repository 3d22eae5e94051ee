// Package mailer delivers accepted contact messages.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"shrikavin.dev/internal/models"
)

// Mailer delivers a contact message to the site owner
type Mailer interface {
	Send(ctx context.Context, msg models.ContactMessage) error
}

// SMTPConfig holds the outgoing mail settings
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string
}

// Configured reports whether credentials and a recipient are present
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Password != "" && c.To != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends messages through an SMTP relay with PLAIN auth
type SMTP struct {
	cfg    SMTPConfig
	logger *log.Logger
	send   sendFunc
}

// NewSMTP creates an SMTP mailer
func NewSMTP(cfg SMTPConfig, logger *log.Logger) *SMTP {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTP{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Send implements Mailer
func (m *SMTP) Send(ctx context.Context, msg models.ContactMessage) error {
	if !m.cfg.Configured() {
		return errors.New("SMTP credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := Compose(m.cfg.User, m.cfg.To, msg)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	// net/smtp has no context support; run it aside so a cancelled
	// request does not wait on a slow relay
	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.cfg.User, []string{m.cfg.To}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			m.logger.Printf("Error sending email for message %s: %v", msg.ID, err)
			return fmt.Errorf("send mail: %w", err)
		}
		m.logger.Printf("Email sent for message %s from %s", msg.ID, msg.Email)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Compose builds the RFC 5322 message for a submission
func Compose(from, to string, msg models.ContactMessage) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headerSafe(v))
	}
	encoded := func(k, v string) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, mime.QEncoding.Encode("utf-8", headerSafe(v)))
	}
	header("From", from)
	header("To", to)
	header("Reply-To", msg.Email)
	encoded("Subject", "Portfolio Contact: "+msg.Subject)
	header("Date", msg.CreatedAt.Format(time.RFC1123Z))
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "New contact form submission from your portfolio:\r\n\r\n")
	fmt.Fprintf(&b, "Name: %s\r\n", msg.Name)
	fmt.Fprintf(&b, "Email: %s\r\n", msg.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Message:\r\n%s\r\n\r\n", crlf(msg.Message))
	fmt.Fprintf(&b, "---\r\nSent from your portfolio contact form (id %s)\r\n", msg.ID)
	return b.Bytes()
}

// crlf rewrites any mix of line endings as CRLF
func crlf(v string) string {
	v = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(v)
	return strings.ReplaceAll(v, "\n", "\r\n")
}

// headerSafe strips line breaks so visitor input cannot add headers
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// Log writes messages to the log instead of sending them. It is used
// when SMTP is not configured.
type Log struct {
	logger *log.Logger
}

// NewLog creates a logging mailer
func NewLog(logger *log.Logger) *Log {
	if logger == nil {
		logger = log.Default()
	}
	return &Log{logger: logger}
}

// Send implements Mailer
func (l *Log) Send(ctx context.Context, msg models.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.Printf("Contact message %s from %s <%s>: %q", msg.ID, msg.Name, msg.Email, msg.Subject)
	return nil
}

// New picks the SMTP mailer when configured and the logging mailer
// otherwise
func New(cfg SMTPConfig, logger *log.Logger) Mailer {
	if cfg.Configured() {
		return NewSMTP(cfg, logger)
	}
	if logger == nil {
		logger = log.Default()
	}
	logger.Println("SMTP not configured, contact messages will be logged only")
	return NewLog(logger)
}
