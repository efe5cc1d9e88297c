package applications

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/llc-formation-platform/internal/intake"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

var createSchema = intake.NewBodySchema(intake.StringFields(
	"companyName", "ownerName", "email", "phone", "address", "city", "state",
	"zipCode", "country", "businessType", "members", "ein", "bankAccount",
	"additionalInfo", "status",
))

var statusSchema = intake.NewBodySchema(map[string]any{
	"type":     "object",
	"required": []any{"status"},
	"properties": map[string]any{
		"status": map[string]any{"type": "string"},
	},
})

// Handler handles HTTP requests for applications
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new applications handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateApplication handles POST /applications
func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req CreateApplicationRequest
	if err := createSchema.Decode(r, &req); err != nil {
		h.logger.Warn("rejected application body", "error", err)
		intake.WriteJSON(w, http.StatusBadRequest, intake.ErrorResponse{Error: "invalid request body"})
		return
	}

	app, err := h.service.Submit(r.Context(), req)
	if err != nil {
		intake.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("application submitted", "id", app.ID, "business_type", app.BusinessType)
	intake.WriteJSON(w, http.StatusCreated, app)
}

// GetApplication handles GET /admin/applications/{id}
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	intake.WriteJSON(w, http.StatusOK, ApplicationDetail{
		Application:  app,
		NextStatuses: NextStatuses(app.Status),
	})
}

// ApplicationDetail is the admin view of a single application.
type ApplicationDetail struct {
	Application  *Application `json:"application"`
	NextStatuses []Status     `json:"nextStatuses"`
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /admin/applications/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := statusSchema.Decode(r, &req); err != nil {
		intake.WriteJSON(w, http.StatusBadRequest, intake.ErrorResponse{Error: "invalid request body", Field: "status"})
		return
	}

	updated, err := h.service.TransitionByID(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	intake.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var transition *InvalidTransitionError
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		intake.WriteJSON(w, http.StatusNotFound, intake.ErrorResponse{Error: "application not found"})
	case errors.As(err, &transition):
		h.logger.Warn("refused status transition", "from", transition.From, "to", transition.To)
		intake.WriteJSON(w, http.StatusConflict, intake.ErrorResponse{Error: "status change not allowed", Field: "status"})
	default:
		intake.WriteError(w, h.logger, err)
	}
}
