package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/llc-formation-platform/internal/events"
	"github.com/wolfman30/llc-formation-platform/internal/intake"
	"github.com/wolfman30/llc-formation-platform/internal/observability/metrics"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

// Service runs intake and the status lifecycle on top of a Repository.
type Service struct {
	repo      Repository
	publisher events.Publisher
	metrics   *metrics.IntakeMetrics
	logger    *logging.Logger
}

// NewService wires the repository with optional event publishing and metrics.
func NewService(repo Repository, publisher events.Publisher, m *metrics.IntakeMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("applications: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, publisher: publisher, metrics: m, logger: logger}
}

// Submit validates a form and stores it as a pending application.
func (s *Service) Submit(ctx context.Context, req CreateApplicationRequest) (*Application, error) {
	app, err := Validate(req)
	if err != nil {
		s.metrics.ObserveSubmission("application", "invalid")
		return nil, err
	}

	stored, err := s.repo.Insert(ctx, app)
	if err != nil {
		s.metrics.ObserveSubmission("application", "unavailable")
		return nil, intake.Persistence("insert application", err)
	}
	s.metrics.ObserveSubmission("application", "accepted")

	s.publish(ctx, stored.ID, events.ApplicationSubmittedV1{
		ApplicationID: stored.ID,
		CompanyName:   stored.CompanyName,
		OwnerName:     stored.OwnerName,
		Email:         stored.Email,
		BusinessType:  string(stored.BusinessType),
		State:         stored.State,
		SubmittedAt:   stored.CreatedAt,
	})
	return stored, nil
}

// List returns every stored application, newest first.
func (s *Service) List(ctx context.Context) ([]*Application, error) {
	apps, err := s.repo.List(ctx)
	if err != nil {
		return nil, intake.Persistence("list applications", err)
	}
	return apps, nil
}

// Get loads one application. ErrApplicationNotFound passes through unwrapped.
func (s *Service) Get(ctx context.Context, id string) (*Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, err
		}
		return nil, intake.Persistence("get application", err)
	}
	return app, nil
}

// Transition moves app to the named status. The lifecycle table is checked
// before any storage call. Re-applying the current status returns app as is.
// On failure app is left untouched; on success the stored record is returned.
func (s *Service) Transition(ctx context.Context, app *Application, to string) (*Application, error) {
	if app == nil {
		return nil, ErrNilApplication
	}
	target, ok := ParseStatus(strings.TrimSpace(to))
	if !ok {
		return nil, intake.Invalid("status", fmt.Sprintf("unknown status %q", to))
	}
	from := app.Status
	if err := CheckTransition(from, target); err != nil {
		s.metrics.ObserveTransition(string(from), string(target), "refused")
		return nil, err
	}
	if from == target {
		s.metrics.ObserveTransition(string(from), string(target), "unchanged")
		return app.Clone(), nil
	}

	updated, err := s.repo.UpdateStatus(ctx, app.ID, from, target)
	if err != nil {
		var conflict *InvalidTransitionError
		if errors.As(err, &conflict) {
			s.metrics.ObserveTransition(string(from), string(target), "conflict")
			s.logger.Warn("application status changed concurrently", "application_id", app.ID, "stored", conflict.From, "to", target)
			return nil, err
		}
		s.metrics.ObserveTransition(string(from), string(target), "unavailable")
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, err
		}
		return nil, intake.Persistence("update application status", err)
	}
	s.metrics.ObserveTransition(string(from), string(target), "applied")
	s.logger.Info("application status changed", "application_id", app.ID, "from", from, "to", target)

	s.publish(ctx, updated.ID, events.ApplicationStatusChangedV1{
		ApplicationID: updated.ID,
		CompanyName:   updated.CompanyName,
		Email:         updated.Email,
		From:          string(from),
		To:            string(target),
		ChangedAt:     updated.UpdatedAt,
	})
	return updated, nil
}

// TransitionByID loads the current record and applies Transition to it.
func (s *Service) TransitionByID(ctx context.Context, id, to string) (*Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, app, to)
}

func (s *Service) publish(ctx context.Context, id string, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, "application:"+id, evt); err != nil {
		s.logger.Warn("failed to record application event", "error", err, "application_id", id, "type", evt.EventType())
	}
}
