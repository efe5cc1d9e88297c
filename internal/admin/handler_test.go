package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/llc-formation-platform/internal/applications"
	"github.com/wolfman30/llc-formation-platform/internal/assistant"
	"github.com/wolfman30/llc-formation-platform/internal/contacts"
	"github.com/wolfman30/llc-formation-platform/internal/observability/metrics"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

type stubApps struct {
	apps  []*applications.Application
	err   error
	calls int
}

func (s *stubApps) List(ctx context.Context) ([]*applications.Application, error) {
	s.calls++
	return s.apps, s.err
}

type stubContacts struct {
	subs []*contacts.Submission
	err  error
}

func (s *stubContacts) List(ctx context.Context) ([]*contacts.Submission, error) {
	return s.subs, s.err
}

type stubConversations struct {
	limit int
	convs []assistant.Conversation
}

func (s *stubConversations) List(ctx context.Context, limit int) ([]assistant.Conversation, error) {
	s.limit = limit
	return s.convs, nil
}

func TestDashboard_FiltersAndCounts(t *testing.T) {
	apps := &stubApps{apps: sampleApps()}
	subs := &stubContacts{subs: []*contacts.Submission{{ID: "c1", Name: "Ada", Email: "ada@acme.io", Message: "hi"}}}
	h := NewHandler(apps, subs, nil, nil, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard?search=acme&status=pending", nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, TabApplications, resp.Tab)
	require.Len(t, resp.Applications, 1)
	assert.Equal(t, "1", resp.Applications[0].ID)
	assert.Len(t, resp.Contacts, 1)
	assert.Equal(t, Stats{Total: 4, Pending: 2, Completed: 1, TotalContacts: 1}, resp.Stats)
	assert.Equal(t, []string{"all", "pending", "processing", "completed", "rejected"}, resp.Statuses)
}

func TestDashboard_RefetchesEveryRequest(t *testing.T) {
	apps := &stubApps{apps: sampleApps()}
	h := NewHandler(apps, &stubContacts{}, nil, nil, nil)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard?tab=contacts", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 3, apps.calls)
}

func TestDashboard_InvalidStatus(t *testing.T) {
	h := NewHandler(&stubApps{}, &stubContacts{}, nil, nil, nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard?status=archived", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard_GatewayFailure(t *testing.T) {
	h := NewHandler(&stubApps{err: errors.New("dial tcp: refused")}, &stubContacts{}, nil, nil, nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")

	h = NewHandler(&stubApps{}, &stubContacts{err: errors.New("boom")}, nil, nil, nil)
	rec = httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalytics(t *testing.T) {
	m := metrics.NewIntakeMetrics(prometheus.NewRegistry())
	m.ObserveChatMessage("price", "en")
	m.ObserveChatMessage("price", "fr")
	m.ObserveChatMessage("price", "en")

	h := NewHandler(&stubApps{}, &stubContacts{}, nil, m, nil)
	rec := httptest.NewRecorder()
	h.Analytics(rec, httptest.NewRequest(http.MethodGet, "/admin/analytics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AnalyticsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, float64(3), resp.Total)
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "en", resp.Categories[0].Language)

	rec = httptest.NewRecorder()
	NewHandler(&stubApps{}, &stubContacts{}, nil, nil, nil).Analytics(rec, httptest.NewRequest(http.MethodGet, "/admin/analytics", nil))
	assert.JSONEq(t, `{"total":0,"categories":[]}`, rec.Body.String())
}

func TestConversations(t *testing.T) {
	convs := &stubConversations{convs: []assistant.Conversation{{SessionID: "s1", Language: assistant.French}}}
	h := NewHandler(&stubApps{}, &stubContacts{}, convs, nil, nil)

	rec := httptest.NewRecorder()
	h.Conversations(rec, httptest.NewRequest(http.MethodGet, "/admin/conversations?limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, convs.limit)
	assert.Contains(t, rec.Body.String(), `"sessionId":"s1"`)

	rec = httptest.NewRecorder()
	NewHandler(&stubApps{}, &stubContacts{}, nil, nil, nil).Conversations(rec, httptest.NewRequest(http.MethodGet, "/admin/conversations", nil))
	assert.JSONEq(t, `{"conversations":[]}`, rec.Body.String())
}
