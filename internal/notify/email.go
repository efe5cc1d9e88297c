package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

const defaultFromName = "LLC Formation"

// EmailSender delivers one message. SendGrid, SES and the stub satisfy it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single-recipient e-mail. HTML is optional; when empty
// the plain body is sent for both parts.
type EmailMessage struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Body    string
	HTML    string
}

func (m EmailMessage) html() string {
	if m.HTML != "" {
		return m.HTML
	}
	return m.Body
}

// DeliveryError is returned when a provider accepts the call but rejects
// the message.
type DeliveryError struct {
	Provider string
	Status   int
	Detail   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notify: %s rejected message with status %d", e.Provider, e.Status)
}

// sender is the From identity shared by the provider senders.
type sender struct {
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

func newSender(fromEmail, fromName string, logger *logging.Logger) sender {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(fromName) == "" {
		fromName = defaultFromName
	}
	return sender{fromEmail: strings.TrimSpace(fromEmail), fromName: fromName, logger: logger}
}

// address renders the RFC 5322 From header value.
func (s sender) address() string {
	return fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
}

// SendGridSender delivers through the SendGrid v3 mail API.
type SendGridSender struct {
	sender
	client *sendgrid.Client
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	return &SendGridSender{
		sender: newSender(cfg.FromEmail, cfg.FromName, logger),
		client: sendgrid.NewSendClient(cfg.APIKey),
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.fromEmail),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		msg.html(),
	)
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	message.AddCategories("llc-formation")

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Warn("sendgrid rejected message", "status", resp.StatusCode, "to", msg.To)
		return &DeliveryError{Provider: "sendgrid", Status: resp.StatusCode, Detail: resp.Body}
	}
	s.logger.Info("email sent", "provider", "sendgrid", "to", msg.To, "subject", msg.Subject)
	return nil
}

// StubEmailSender logs and records messages instead of sending them. It is
// used when no provider is configured.
type StubEmailSender struct {
	logger *logging.Logger
	mu     sync.Mutex
	sent   []EmailMessage
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	s.logger.Info("email not sent, no provider configured", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Sent returns a copy of every message passed to Send.
func (s *StubEmailSender) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
