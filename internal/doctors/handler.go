package doctors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

// Handler exposes the read-only doctor directory.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates the doctors HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// List returns the directory, optionally filtered by ?specialty=.
// GET /api/doctors
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context(), r.URL.Query().Get("specialty"))
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]Doctor{"doctors": list})
}

// Get returns one doctor.
// GET /api/doctors/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doctor, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "doctor not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load doctor", "doctor_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doctor)
}

// Specialties returns the distinct specialties for the directory filter.
// GET /api/doctors/specialties
func (h *Handler) Specialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.store.Specialties(r.Context())
	if err != nil {
		h.logger.Error("failed to list specialties", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"specialties": specialties})
}
