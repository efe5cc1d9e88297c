package contacts

import (
	"net/http"

	"github.com/wolfman30/llc-formation-platform/internal/intake"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

var createSchema = intake.NewBodySchema(intake.StringFields("name", "email", "phone", "company", "message"))

// Handler handles HTTP requests for the contact form
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateContact handles POST /contacts
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := createSchema.Decode(r, &req); err != nil {
		h.logger.Warn("rejected contact body", "error", err)
		intake.WriteJSON(w, http.StatusBadRequest, intake.ErrorResponse{Error: "invalid request body"})
		return
	}

	sub, err := h.service.Submit(r.Context(), req)
	if err != nil {
		intake.WriteError(w, h.logger, err)
		return
	}
	h.logger.Info("contact received", "id", sub.ID)
	intake.WriteJSON(w, http.StatusCreated, sub)
}
