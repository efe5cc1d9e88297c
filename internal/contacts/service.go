package contacts

import (
	"context"

	"github.com/wolfman30/llc-formation-platform/internal/events"
	"github.com/wolfman30/llc-formation-platform/internal/intake"
	"github.com/wolfman30/llc-formation-platform/internal/observability/metrics"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

// Service validates and stores contact submissions.
type Service struct {
	repo      Repository
	publisher events.Publisher
	metrics   *metrics.IntakeMetrics
	logger    *logging.Logger
}

func NewService(repo Repository, publisher events.Publisher, m *metrics.IntakeMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("contacts: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, publisher: publisher, metrics: m, logger: logger}
}

func (s *Service) Submit(ctx context.Context, req CreateContactRequest) (*Submission, error) {
	sub, err := Validate(req)
	if err != nil {
		s.metrics.ObserveSubmission("contact", "invalid")
		return nil, err
	}
	stored, err := s.repo.Insert(ctx, sub)
	if err != nil {
		s.metrics.ObserveSubmission("contact", "unavailable")
		return nil, intake.Persistence("insert contact", err)
	}
	s.metrics.ObserveSubmission("contact", "accepted")

	if s.publisher != nil {
		evt := events.ContactReceivedV1{
			ContactID:  stored.ID,
			Name:       stored.Name,
			Email:      stored.Email,
			Message:    stored.Message,
			ReceivedAt: stored.CreatedAt,
		}
		if stored.Company != nil {
			evt.Company = *stored.Company
		}
		if err := s.publisher.Publish(ctx, "contact:"+stored.ID, evt); err != nil {
			s.logger.Warn("failed to record contact event", "error", err, "contact_id", stored.ID)
		}
	}
	return stored, nil
}

func (s *Service) List(ctx context.Context) ([]*Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, intake.Persistence("list contacts", err)
	}
	return subs, nil
}
