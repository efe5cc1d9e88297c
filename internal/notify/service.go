package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/llc-formation-platform/internal/events"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

// Service turns domain events into e-mails for operators and applicants.
type Service struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewService creates a notification service. recipients are the operator
// inboxes told about new applications and contact messages.
func NewService(email EmailSender, recipients []string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, recipients: recipients, logger: logger}
}

// Handle implements events.DeliveryHandler.
func (s *Service) Handle(ctx context.Context, entry events.OutboxEntry) error {
	switch entry.Type {
	case events.TypeApplicationSubmitted:
		var evt events.ApplicationSubmittedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		return s.NotifyApplicationSubmitted(ctx, evt)
	case events.TypeApplicationStatusChanged:
		var evt events.ApplicationStatusChangedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		return s.NotifyStatusChanged(ctx, evt)
	case events.TypeContactReceived:
		var evt events.ContactReceivedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		return s.NotifyContactReceived(ctx, evt)
	default:
		s.logger.Debug("notify: ignoring event", "type", entry.Type)
		return nil
	}
}

// NotifyApplicationSubmitted alerts operators and acknowledges the applicant.
func (s *Service) NotifyApplicationSubmitted(ctx context.Context, evt events.ApplicationSubmittedV1) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping notifications")
		return nil
	}

	var errs []error
	body := fmt.Sprintf(`New LLC formation application

Company: %s
Owner: %s
Email: %s
Business type: %s
State: %s
Submitted: %s
Application ID: %s`, evt.CompanyName, evt.OwnerName, evt.Email, evt.BusinessType, evt.State,
		evt.SubmittedAt.Format("January 2, 2006 at 3:04 PM"), evt.ApplicationID)
	errs = append(errs, s.toOperators(ctx, fmt.Sprintf("New application - %s", evt.CompanyName), body))

	if evt.Email != "" {
		ack := fmt.Sprintf(`Hi %s,

We received your application to form %s. Our team will contact you within 24 hours.

Reference: %s`, evt.OwnerName, evt.CompanyName, evt.ApplicationID)
		errs = append(errs, s.email.Send(ctx, EmailMessage{
			To:      evt.Email,
			ToName:  evt.OwnerName,
			Subject: "We received your LLC application",
			Body:    ack,
			HTML:    paragraphs(ack),
		}))
	}
	return errors.Join(errs...)
}

// NotifyStatusChanged tells the applicant where their application stands.
func (s *Service) NotifyStatusChanged(ctx context.Context, evt events.ApplicationStatusChangedV1) error {
	if s.email == nil || evt.Email == "" {
		return nil
	}
	var line string
	switch evt.To {
	case "processing":
		line = "Good news: we have started working on your LLC formation."
	case "completed":
		line = "Your LLC formation is complete. Your documents are on their way."
	case "rejected":
		line = "Unfortunately we could not proceed with your application. Reply to this e-mail and our team will explain the next steps."
	default:
		line = fmt.Sprintf("Your application is now %s.", evt.To)
	}
	body := fmt.Sprintf("%s\n\nCompany: %s\nReference: %s", line, evt.CompanyName, evt.ApplicationID)
	return s.email.Send(ctx, EmailMessage{
		To:      evt.Email,
		Subject: fmt.Sprintf("Update on %s", evt.CompanyName),
		Body:    body,
		HTML:    paragraphs(body),
	})
}

// NotifyContactReceived forwards a contact form message to operators.
func (s *Service) NotifyContactReceived(ctx context.Context, evt events.ContactReceivedV1) error {
	if s.email == nil {
		return nil
	}
	company := ""
	if evt.Company != "" {
		company = fmt.Sprintf("\nCompany: %s", evt.Company)
	}
	body := fmt.Sprintf("From: %s <%s>%s\n\n%s", evt.Name, evt.Email, company, truncate(evt.Message, 2000))
	return s.toOperators(ctx, fmt.Sprintf("Contact message from %s", evt.Name), body)
}

func (s *Service) toOperators(ctx context.Context, subject, body string) error {
	var errs []error
	for _, to := range s.recipients {
		if err := s.email.Send(ctx, EmailMessage{To: to, Subject: subject, Body: body, HTML: paragraphs(body)}); err != nil {
			s.logger.Error("notify: operator email failed", "error", err, "to", to)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func paragraphs(text string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	for _, block := range strings.Split(text, "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(block), "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
