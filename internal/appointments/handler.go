package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborhealth/clinic-scheduler/internal/availability"
	httpmiddleware "github.com/harborhealth/clinic-scheduler/internal/http/middleware"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

// Handler exposes appointment booking, rescheduling, cancellation and
// listing endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the appointments HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// appointmentJSON is the wire shape shared by all appointment responses.
// Instants are ISO-8601 UTC.
type appointmentJSON struct {
	ID            string `json:"id"`
	DoctorID      string `json:"doctorId"`
	PatientID     string `json:"patientId"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
}

func toJSON(appt Interval) appointmentJSON {
	return appointmentJSON{
		ID:            appt.ID.String(),
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		StartDateTime: appt.Start.UTC().Format(time.RFC3339),
		EndDateTime:   appt.End.UTC().Format(time.RFC3339),
		Status:        string(appt.Status),
		Reason:        appt.Reason,
	}
}

type bookRequest struct {
	DoctorID      string `json:"doctorId"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Reason        string `json:"reason"`
}

// Book creates an appointment.
// POST /api/appointments
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	patientID := httpmiddleware.UserIDFromContext(r.Context())
	if patientID == "" {
		http.Error(w, `{"error": "unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.DoctorID == "" {
		http.Error(w, `{"error": "doctorId required"}`, http.StatusBadRequest)
		return
	}
	start, end, ok := parseSlotTimes(w, req.StartDateTime, req.EndDateTime)
	if !ok {
		return
	}
	if !end.IsZero() && !end.Equal(start.Add(availability.SlotMinutes*time.Minute)) {
		http.Error(w, `{"error": "appointments are exactly 30 minutes"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), req.DoctorID, patientID, start, req.Reason)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toJSON(*appt))
}

type rescheduleRequest struct {
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
}

// Reschedule moves an existing appointment.
// PUT /api/appointments/{id}
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	patientID := httpmiddleware.UserIDFromContext(r.Context())
	if patientID == "" {
		http.Error(w, `{"error": "unauthenticated"}`, http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error": "invalid appointment id"}`, http.StatusBadRequest)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	start, _, ok := parseSlotTimes(w, req.StartDateTime, req.EndDateTime)
	if !ok {
		return
	}

	appt, err := h.service.Reschedule(r.Context(), id, patientID, start)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toJSON(*appt))
}

// Cancel marks an appointment cancelled.
// DELETE /api/appointments/{id}
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := httpmiddleware.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, `{"error": "unauthenticated"}`, http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error": "invalid appointment id"}`, http.StatusBadRequest)
		return
	}

	if err := h.service.Cancel(r.Context(), id, userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMine returns the authenticated patient's appointments.
// GET /api/appointments
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	patientID := httpmiddleware.UserIDFromContext(r.Context())
	if patientID == "" {
		http.Error(w, `{"error": "unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	appts, err := h.service.ListForPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list appointments", "patient_id", patientID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.writeList(w, appts)
}

// ListForDoctor returns the authenticated doctor's upcoming or past
// appointments.
// GET /api/doctor/appointments?scope=upcoming|past
func (h *Handler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := httpmiddleware.UserIDFromContext(r.Context())
	if doctorID == "" {
		http.Error(w, `{"error": "unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "upcoming"
	}
	if scope != "upcoming" && scope != "past" {
		http.Error(w, `{"error": "scope must be upcoming or past"}`, http.StatusBadRequest)
		return
	}

	appts, err := h.service.ListForDoctor(r.Context(), doctorID, scope == "upcoming")
	if err != nil {
		h.logger.Error("failed to list doctor appointments", "doctor_id", doctorID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.writeList(w, appts)
}

func (h *Handler) writeList(w http.ResponseWriter, appts []Interval) {
	out := make([]appointmentJSON, len(appts))
	for i, appt := range appts {
		out[i] = toJSON(appt)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]appointmentJSON{"appointments": out})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		http.Error(w, `{"error": "slot no longer available, please pick another time"}`, http.StatusConflict)
	case errors.Is(err, ErrInvalidSlot):
		http.Error(w, `{"error": "requested time is not bookable"}`, http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		http.Error(w, `{"error": "forbidden"}`, http.StatusForbidden)
	default:
		h.logger.Error("appointment operation failed", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

func parseSlotTimes(w http.ResponseWriter, startStr, endStr string) (start, end time.Time, ok bool) {
	if startStr == "" {
		http.Error(w, `{"error": "startDateTime required"}`, http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		http.Error(w, `{"error": "startDateTime must be ISO-8601"}`, http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			http.Error(w, `{"error": "endDateTime must be ISO-8601"}`, http.StatusBadRequest)
			return time.Time{}, time.Time{}, false
		}
	}
	return start, end, true
}
