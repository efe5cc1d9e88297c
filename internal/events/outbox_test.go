package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

type recordingHandler struct {
	entries []OutboxEntry
	err     error
}

func (h *recordingHandler) Handle(ctx context.Context, entry OutboxEntry) error {
	h.entries = append(h.entries, entry)
	return h.err
}

var outboxColumns = []string{"id", "aggregate", "type", "payload", "attempts", "created_at"}

func newMockStore(t *testing.T) (*OutboxStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewOutboxStore(mock), mock
}

func TestOutboxStoreFlow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO outbox").WithArgs(pgxmock.AnyArg(), "application:app-1", TypeApplicationSubmitted, pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if err := store.Publish(context.Background(), "application:app-1", ApplicationSubmittedV1{ApplicationID: "app-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	now := time.Now().UTC()
	id := uuid.New()
	rows := pgxmock.NewRows(outboxColumns).AddRow(id, "application:app-1", TypeApplicationSubmitted, []byte(`{"application_id":"app-1"}`), 2, now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(10), 5).WillReturnRows(rows)

	entries, err := store.FetchPending(context.Background(), 10, 5)
	if err != nil {
		t.Fatalf("fetch pending failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id || entries[0].Aggregate != "application:app-1" || entries[0].Attempts != 2 {
		t.Fatalf("unexpected entries: %#v", entries)
	}

	mock.ExpectExec("UPDATE outbox SET delivered_at").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.MarkDelivered(context.Background(), id)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if !ok {
		t.Fatal("expected mark delivered to report success")
	}

	mock.ExpectExec("UPDATE outbox SET delivered_at").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	if ok, _ := store.MarkDelivered(context.Background(), id); ok {
		t.Fatal("second mark should report already delivered")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOutboxStoreAppendError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO outbox").WillReturnError(errors.New("db down"))

	if _, err := store.Append(context.Background(), "contact:c-1", ContactReceivedV1{ContactID: "c-1"}); err == nil {
		t.Fatal("expected append error")
	}
	if _, err := store.Append(context.Background(), "contact:c-1", nil); !errors.Is(err, errNilEvent) {
		t.Fatalf("expected nil event error, got %v", err)
	}
}

func TestOutboxStoreMarkFailed(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()
	mock.ExpectExec("UPDATE outbox SET attempts = attempts \\+ 1").WithArgs(id, "smtp down").WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.MarkFailed(context.Background(), id, errors.New("smtp down")); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelivererDrainRecordsHandlerFailure(t *testing.T) {
	store, mock := newMockStore(t)
	okID := uuid.New()
	badID := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows(outboxColumns).
		AddRow(okID, "contact:c-1", TypeContactReceived, []byte("{}"), 0, now).
		AddRow(badID, "contact:c-2", TypeContactReceived, []byte("{}"), 1, now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(25), 3).WillReturnRows(rows)
	mock.ExpectExec("UPDATE outbox SET delivered_at").WithArgs(okID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE outbox SET attempts").WithArgs(badID, "transport down").WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	handler := &selectiveHandler{fail: badID}
	d := NewDeliverer(store, handler, logging.New("error")).WithMaxAttempts(3)
	if got := d.drain(context.Background()); got != 1 {
		t.Fatalf("expected 1 delivered, got %d", got)
	}

	if handler.calls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", handler.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelivererDrainFetchError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id").WillReturnError(errors.New("db down"))

	handler := &selectiveHandler{}
	if got := NewDeliverer(store, handler, logging.New("error")).drain(context.Background()); got != 0 {
		t.Fatalf("expected nothing delivered, got %d", got)
	}
	if handler.calls != 0 {
		t.Fatalf("handler should not run, got %d calls", handler.calls)
	}
}

type selectiveHandler struct {
	fail  uuid.UUID
	calls int
}

func (h *selectiveHandler) Handle(ctx context.Context, entry OutboxEntry) error {
	h.calls++
	if entry.ID == h.fail {
		return errors.New("transport down")
	}
	return nil
}

func TestDelivererStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDeliverer(&OutboxStore{}, &recordingHandler{}, nil).WithInterval(time.Hour).WithBatchSize(5).WithMaxAttempts(2)
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliverer did not stop after cancel")
	}
}

func TestDirectPublisherDeliversPayload(t *testing.T) {
	handler := &recordingHandler{}
	p := NewDirectPublisher(handler, nil)

	evt := ContactReceivedV1{ContactID: "c-1", Name: "Ada", Email: "ada@example.com", Message: "hi"}
	if err := p.Publish(context.Background(), "contact:c-1", evt); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(handler.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(handler.entries))
	}
	entry := handler.entries[0]
	if entry.Type != TypeContactReceived || entry.Aggregate != "contact:c-1" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	var decoded ContactReceivedV1
	if err := json.Unmarshal(entry.Payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Email != "ada@example.com" {
		t.Fatalf("unexpected payload: %#v", decoded)
	}
}

func TestDirectPublisherSwallowsHandlerError(t *testing.T) {
	p := NewDirectPublisher(&recordingHandler{err: errors.New("smtp down")}, nil)
	if err := p.Publish(context.Background(), "application:a", ApplicationSubmittedV1{}); err != nil {
		t.Fatalf("expected handler errors to be logged only, got %v", err)
	}
	var nilPublisher *DirectPublisher
	if err := nilPublisher.Publish(context.Background(), "x", ApplicationSubmittedV1{}); err != nil {
		t.Fatalf("nil publisher should be a no-op, got %v", err)
	}
}
