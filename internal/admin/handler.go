package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wolfman30/llc-formation-platform/internal/applications"
	"github.com/wolfman30/llc-formation-platform/internal/assistant"
	"github.com/wolfman30/llc-formation-platform/internal/contacts"
	"github.com/wolfman30/llc-formation-platform/internal/intake"
	"github.com/wolfman30/llc-formation-platform/internal/observability/metrics"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

const (
	TabApplications = "applications"
	TabContacts     = "contacts"
)

// ApplicationLister lists every stored application, newest first.
type ApplicationLister interface {
	List(ctx context.Context) ([]*applications.Application, error)
}

// ContactLister lists every stored contact submission, newest first.
type ContactLister interface {
	List(ctx context.Context) ([]*contacts.Submission, error)
}

// ConversationLister lists archived chat conversations.
type ConversationLister interface {
	List(ctx context.Context, limit int) ([]assistant.Conversation, error)
}

// Handler serves the operator dashboard.
type Handler struct {
	apps          ApplicationLister
	contacts      ContactLister
	conversations ConversationLister
	metrics       *metrics.IntakeMetrics
	logger        *logging.Logger
}

// NewHandler creates a dashboard handler. conversations and m may be nil.
func NewHandler(apps ApplicationLister, subs ContactLister, conversations ConversationLister, m *metrics.IntakeMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		apps:          apps,
		contacts:      subs,
		conversations: conversations,
		metrics:       m,
		logger:        logger,
	}
}

// DashboardResponse is the payload of GET /admin/dashboard.
type DashboardResponse struct {
	Tab          string                      `json:"tab"`
	Search       string                      `json:"search"`
	Status       string                      `json:"status"`
	Applications []*applications.Application `json:"applications"`
	Contacts     []*contacts.Submission      `json:"contacts"`
	Stats        Stats                       `json:"stats"`
	Statuses     []string                    `json:"statuses"`
}

// Dashboard handles GET /admin/dashboard. Both lists are fetched from
// storage on every request; tab only tells the UI which list to show.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab := q.Get("tab")
	if tab != TabContacts {
		tab = TabApplications
	}
	status := q.Get("status")
	if status == "" {
		status = StatusAll
	}
	if status != StatusAll {
		if _, ok := applications.ParseStatus(status); !ok {
			intake.WriteJSON(w, http.StatusBadRequest, intake.ErrorResponse{Error: "invalid status filter", Field: "status"})
			return
		}
	}
	search := q.Get("search")

	apps, err := h.apps.List(r.Context())
	if err != nil {
		intake.WriteError(w, h.logger, intake.Persistence("list applications", err))
		return
	}
	subs, err := h.contacts.List(r.Context())
	if err != nil {
		intake.WriteError(w, h.logger, intake.Persistence("list contacts", err))
		return
	}

	intake.WriteJSON(w, http.StatusOK, DashboardResponse{
		Tab:          tab,
		Search:       search,
		Status:       status,
		Applications: FilterApplications(apps, search, status),
		Contacts:     FilterContacts(subs, search),
		Stats:        ComputeStats(apps, subs),
		Statuses:     statusOptions(),
	})
}

// AnalyticsResponse summarizes which chat topics visitors ask about.
type AnalyticsResponse struct {
	Total      float64                 `json:"total"`
	Categories []metrics.CategoryCount `json:"categories"`
}

// Analytics handles GET /admin/analytics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	counts := h.metrics.ChatCategoryCounts()
	if counts == nil {
		counts = []metrics.CategoryCount{}
	}
	var total float64
	for _, c := range counts {
		total += c.Count
	}
	intake.WriteJSON(w, http.StatusOK, AnalyticsResponse{Total: total, Categories: counts})
}

// Conversations handles GET /admin/conversations.
func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		intake.WriteJSON(w, http.StatusOK, map[string]any{"conversations": []assistant.Conversation{}})
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	convs, err := h.conversations.List(r.Context(), limit)
	if err != nil {
		intake.WriteError(w, h.logger, intake.Persistence("list conversations", err))
		return
	}
	intake.WriteJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

func statusOptions() []string {
	out := []string{StatusAll}
	for _, s := range applications.Statuses() {
		out = append(out, string(s))
	}
	return out
}
