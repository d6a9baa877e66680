package availability

import (
	"encoding/json"
	"errors"
	"net/http"

	httpmiddleware "github.com/harborhealth/clinic-scheduler/internal/http/middleware"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

// Handler provides HTTP endpoints for doctors to read and replace their own
// weekly template.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the availability HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// GetMine returns the authenticated doctor's weekly template.
// GET /api/doctor/my-availability
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	doctorID := httpmiddleware.UserIDFromContext(r.Context())
	if doctorID == "" {
		http.Error(w, `{"error": "unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	tmpl, err := h.service.Get(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to load availability", "doctor_id", doctorID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]Weekly{"availability": tmpl}); err != nil {
		h.logger.Error("failed to encode availability", "doctor_id", doctorID, "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// UpdateRequest is the full-replace payload: every weekday the doctor wants
// marks on, mapped to its "HH:MM" grid marks.
type UpdateRequest struct {
	Availability map[string][]string `json:"availability"`
}

// UpdateMine replaces the authenticated doctor's whole weekly template.
// POST /api/doctor/update-availability
func (h *Handler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	doctorID := httpmiddleware.UserIDFromContext(r.Context())
	if doctorID == "" {
		http.Error(w, `{"error": "unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Availability == nil {
		http.Error(w, `{"error": "availability object required"}`, http.StatusBadRequest)
		return
	}

	tmpl, err := h.service.Replace(r.Context(), doctorID, doctorID, req.Availability)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTemplate):
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrNotOwner):
			http.Error(w, `{"error": "cannot edit another doctor's availability"}`, http.StatusForbidden)
		default:
			h.logger.Error("failed to replace availability", "doctor_id", doctorID, "error", err)
			http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]Weekly{"availability": tmpl}); err != nil {
		h.logger.Error("failed to encode availability", "doctor_id", doctorID, "error", err)
	}
}
