package applications

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/llc-formation-platform/internal/events"
	"github.com/wolfman30/llc-formation-platform/internal/intake"
	"github.com/wolfman30/llc-formation-platform/internal/observability/metrics"
)

type failingRepo struct {
	Repository
	insertErr error
	updateErr error
	updates   int
}

func (f *failingRepo) Insert(ctx context.Context, app *Application) (*Application, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return f.Repository.Insert(ctx, app)
}

func (f *failingRepo) UpdateStatus(ctx context.Context, id string, from, to Status) (*Application, error) {
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Repository.UpdateStatus(ctx, id, from, to)
}

// gatedRepo parks UpdateStatus calls to the held status until release closes.
type gatedRepo struct {
	Repository
	hold    Status
	reached chan struct{}
	release chan struct{}
}

func (g *gatedRepo) UpdateStatus(ctx context.Context, id string, from, to Status) (*Application, error) {
	if to == g.hold {
		close(g.reached)
		<-g.release
	}
	return g.Repository.UpdateStatus(ctx, id, from, to)
}

type capturePublisher struct {
	events []events.Event
}

func (c *capturePublisher) Publish(ctx context.Context, aggregate string, evt events.Event) error {
	c.events = append(c.events, evt)
	return nil
}

func newTestService(repo Repository) (*Service, *capturePublisher) {
	pub := &capturePublisher{}
	return NewService(repo, pub, metrics.NewIntakeMetrics(prometheus.NewRegistry()), nil), pub
}

func TestService_SubmitStoresPending(t *testing.T) {
	svc, pub := newTestService(NewInMemoryRepository())

	app, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, StatusPending, app.Status)

	require.Len(t, pub.events, 1)
	evt, ok := pub.events[0].(events.ApplicationSubmittedV1)
	require.True(t, ok)
	assert.Equal(t, app.ID, evt.ApplicationID)
}

func TestService_SubmitInvalidSkipsGateway(t *testing.T) {
	repo := &failingRepo{Repository: NewInMemoryRepository(), insertErr: errors.New("must not be called")}
	svc, pub := newTestService(repo)

	req := validRequest()
	req.Email = "not-an-email"
	_, err := svc.Submit(context.Background(), req)
	field, ok := intake.FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, "email", field)
	assert.Empty(t, pub.events)
}

func TestService_SubmitGatewayFailure(t *testing.T) {
	cause := errors.New("connection refused")
	repo := &failingRepo{Repository: NewInMemoryRepository(), insertErr: cause}
	svc, pub := newTestService(repo)

	_, err := svc.Submit(context.Background(), validRequest())
	var pe *intake.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "connection refused")
	assert.Empty(t, pub.events)
}

func TestService_TransitionHappyPath(t *testing.T) {
	svc, pub := newTestService(NewInMemoryRepository())
	app, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	processing, err := svc.Transition(context.Background(), app, "processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, processing.Status)
	assert.Equal(t, StatusPending, app.Status, "caller record untouched")

	done, err := svc.Transition(context.Background(), processing, "completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.False(t, done.UpdatedAt.Before(processing.UpdatedAt))

	require.Len(t, pub.events, 3)
	changed := pub.events[2].(events.ApplicationStatusChangedV1)
	assert.Equal(t, "processing", changed.From)
	assert.Equal(t, "completed", changed.To)
}

func TestService_TransitionRefusedBeforeGateway(t *testing.T) {
	base := NewInMemoryRepository()
	repo := &failingRepo{Repository: base}
	svc, _ := newTestService(repo)

	app, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	app, err = svc.Transition(context.Background(), app, "rejected")
	require.NoError(t, err)
	require.Equal(t, 1, repo.updates)

	_, err = svc.Transition(context.Background(), app, "pending")
	var te *InvalidTransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StatusRejected, te.From)
	assert.Equal(t, StatusPending, te.To)
	assert.Equal(t, 1, repo.updates, "refused transitions must not reach the gateway")
}

func TestService_TransitionSameStatusIsNoop(t *testing.T) {
	repo := &failingRepo{Repository: NewInMemoryRepository()}
	svc, pub := newTestService(repo)
	app, _ := svc.Submit(context.Background(), validRequest())

	same, err := svc.Transition(context.Background(), app, "pending")
	require.NoError(t, err)
	assert.Equal(t, app, same)
	assert.Equal(t, 0, repo.updates)
	assert.Len(t, pub.events, 1)
}

func TestService_TransitionUnknownStatus(t *testing.T) {
	svc, _ := newTestService(NewInMemoryRepository())
	app, _ := svc.Submit(context.Background(), validRequest())

	_, err := svc.Transition(context.Background(), app, "archived")
	field, ok := intake.FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, "status", field)
}

func TestService_TransitionGatewayFailureLeavesRecord(t *testing.T) {
	repo := &failingRepo{Repository: NewInMemoryRepository()}
	svc, _ := newTestService(repo)
	app, _ := svc.Submit(context.Background(), validRequest())

	repo.updateErr = errors.New("timeout")
	before := app.Clone()
	_, err := svc.Transition(context.Background(), app, "processing")
	var pe *intake.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, before, app)

	stored, err := svc.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestService_ConcurrentTransitionCannotLeaveTerminalState(t *testing.T) {
	repo := &gatedRepo{
		Repository: NewInMemoryRepository(),
		hold:       StatusProcessing,
		reached:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	svc, pub := newTestService(repo)
	app, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	slow := make(chan error, 1)
	go func() {
		_, err := svc.TransitionByID(context.Background(), app.ID, "processing")
		slow <- err
	}()
	<-repo.reached

	done, err := svc.TransitionByID(context.Background(), app.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	close(repo.release)
	err = <-slow
	var te *InvalidTransitionError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, StatusCompleted, te.From)
	assert.Equal(t, StatusProcessing, te.To)

	stored, err := svc.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Len(t, pub.events, 2, "only the committed change is published")
}

func TestService_TransitionByIDNotFound(t *testing.T) {
	svc, _ := newTestService(NewInMemoryRepository())
	_, err := svc.TransitionByID(context.Background(), "nope", "processing")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestService_ListWrapsGatewayFailure(t *testing.T) {
	svc, _ := newTestService(&listFailRepo{Repository: NewInMemoryRepository()})
	_, err := svc.List(context.Background())
	var pe *intake.PersistenceError
	assert.True(t, errors.As(err, &pe))
}

type listFailRepo struct {
	Repository
}

func (l *listFailRepo) List(ctx context.Context) ([]*Application, error) {
	return nil, errors.New("read timeout")
}
