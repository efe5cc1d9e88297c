package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/llc-formation-platform/internal/events"
	"github.com/wolfman30/llc-formation-platform/internal/intake"
)

func validContact() CreateContactRequest {
	return CreateContactRequest{Name: "Ada", Email: "ada@example.com", Message: "How fast?"}
}

func TestValidate(t *testing.T) {
	sub, err := Validate(validContact())
	require.NoError(t, err)
	assert.Nil(t, sub.Phone)
	assert.Nil(t, sub.Company)

	req := validContact()
	req.Phone = " 555-0100 "
	req.Company = "Acme"
	sub, err = Validate(req)
	require.NoError(t, err)
	require.NotNil(t, sub.Phone)
	assert.Equal(t, "555-0100", *sub.Phone)
	assert.Equal(t, "Acme", *sub.Company)

	cases := map[string]CreateContactRequest{
		"name":    {Email: "ada@example.com", Message: "x"},
		"email":   {Name: "Ada", Email: "ada@", Message: "x"},
		"message": {Name: "Ada", Email: "ada@example.com", Message: "   "},
	}
	for field, req := range cases {
		_, err := Validate(req)
		got, ok := intake.FieldOf(err)
		require.True(t, ok, field)
		assert.Equal(t, field, got)
	}
}

func TestInMemoryRepositoryNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	first, _ := Validate(validContact())
	a, err := repo.Insert(context.Background(), first)
	require.NoError(t, err)
	second := validContact()
	second.Name = "Bob"
	sub, _ := Validate(second)
	b, err := repo.Insert(context.Background(), sub)
	require.NoError(t, err)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	_, err = repo.Insert(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilSubmission)
}

func TestRecordRoundTrip(t *testing.T) {
	phone := "555"
	sub := &Submission{ID: "c-1", Name: "Ada", Email: "a@b", Phone: &phone, Message: "hi", CreatedAt: time.Now().UTC()}
	assert.Equal(t, sub, FromRecord(ToRecord(sub)))
}

func TestPostgresRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO contact_submissions").
		WithArgs(pgxmock.AnyArg(), "Ada", "ada@example.com", pgxmock.AnyArg(), pgxmock.AnyArg(), "How fast?").
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow("c-1", "Ada", "ada@example.com", (*string)(nil), (*string)(nil), "How fast?", now))

	sub, _ := Validate(validContact())
	stored, err := repo.Insert(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "c-1", stored.ID)
	assert.Nil(t, stored.Phone)

	company := "Acme"
	mock.ExpectQuery("SELECT (.+) FROM contact_submissions ORDER BY created_at DESC").
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow("c-2", "Bob", "bob@example.com", (*string)(nil), &company, "Pricing?", now).
			AddRow("c-1", "Ada", "ada@example.com", (*string)(nil), (*string)(nil), "How fast?", now.Add(-time.Minute)))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Acme", *list[0].Company)
	require.NoError(t, mock.ExpectationsWereMet())
}

type downRepo struct{}

func (downRepo) Insert(ctx context.Context, s *Submission) (*Submission, error) {
	return nil, errors.New("relation contact_submissions does not exist")
}

func (downRepo) List(ctx context.Context) ([]*Submission, error) {
	return nil, errors.New("timeout")
}

type capturePublisher struct{ events []events.Event }

func (c *capturePublisher) Publish(ctx context.Context, aggregate string, evt events.Event) error {
	c.events = append(c.events, evt)
	return nil
}

func TestServiceSubmitPublishes(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewService(NewInMemoryRepository(), pub, nil, nil)
	req := validContact()
	req.Company = "Acme"
	sub, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	evt := pub.events[0].(events.ContactReceivedV1)
	assert.Equal(t, sub.ID, evt.ContactID)
	assert.Equal(t, "Acme", evt.Company)
}

func TestServiceWrapsGatewayErrors(t *testing.T) {
	svc := NewService(downRepo{}, nil, nil, nil)
	_, err := svc.Submit(context.Background(), validContact())
	var pe *intake.PersistenceError
	assert.True(t, errors.As(err, &pe))
	_, err = svc.List(context.Background())
	assert.True(t, errors.As(err, &pe))
}

func TestCreateContactHandler(t *testing.T) {
	handler := NewHandler(NewService(NewInMemoryRepository(), nil, nil, nil), nil)

	body, _ := json.Marshal(validContact())
	w := httptest.NewRecorder()
	handler.CreateContact(w, httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(body)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	handler.CreateContact(w, httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(`{"name":"Ada"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)

	down := NewHandler(NewService(downRepo{}, nil, nil, nil), nil)
	w = httptest.NewRecorder()
	down.CreateContact(w, httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(body)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}
