package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborhealth/clinic-scheduler/internal/calendar"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

// Handler exposes the availability read endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the schedule HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type slotJSON struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type dayJSON struct {
	DoctorID string     `json:"doctor_id"`
	Date     string     `json:"date"`
	Slots    []slotJSON `json:"slots"`
}

func toDayJSON(result Result) dayJSON {
	slots := make([]slotJSON, len(result.Slots))
	for i, s := range result.Slots {
		slots[i] = slotJSON{
			Start:     s.Start.UTC().Format(time.RFC3339),
			End:       s.End.UTC().Format(time.RFC3339),
			Time:      s.Label,
			Available: s.Available,
		}
	}
	return dayJSON{DoctorID: result.DoctorID, Date: result.ResolvedDate.String(), Slots: slots}
}

// resolveDate turns the optional ?date= query into a request date and mode.
// No date means today, automatic. An explicit date equal to today is still
// automatic; any other explicit date is manual navigation.
func (h *Handler) resolveDate(raw string) (calendar.DateKey, bool, error) {
	today := h.service.Today()
	if raw == "" {
		return today, true, nil
	}
	date, err := calendar.ParseDateKey(raw)
	if err != nil {
		return calendar.DateKey{}, false, err
	}
	return date, date == today, nil
}

// Day returns the slot list for one doctor.
// GET /api/doctors/{id}/availability?date=YYYY-MM-DD
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "id")
	if doctorID == "" {
		http.Error(w, `{"error": "doctor id required"}`, http.StatusBadRequest)
		return
	}

	date, automatic, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	result, err := h.service.DaySchedule(r.Context(), Request{DoctorID: doctorID, Date: date, Automatic: automatic})
	if err != nil {
		var unavailable *UnavailableDependencyError
		if errors.As(err, &unavailable) {
			h.logger.Error("availability lookup unavailable", "doctor_id", doctorID, "error", err)
			http.Error(w, `{"error": "availability temporarily unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("slot derivation failed", "doctor_id", doctorID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toDayJSON(result))
}

// Batch returns slot lists for several doctors at once, for the directory
// page. A doctor whose backing reads fail comes back with empty slots.
// GET /api/doctors/availability?ids=a,b,c&date=YYYY-MM-DD
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	rawIDs := r.URL.Query().Get("ids")
	if rawIDs == "" {
		http.Error(w, `{"error": "ids required"}`, http.StatusBadRequest)
		return
	}
	var doctorIDs []string
	for _, id := range strings.Split(rawIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			doctorIDs = append(doctorIDs, id)
		}
	}
	if len(doctorIDs) == 0 {
		http.Error(w, `{"error": "ids required"}`, http.StatusBadRequest)
		return
	}

	date, automatic, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	results := h.service.BatchSchedule(r.Context(), doctorIDs, date, automatic)
	days := make([]dayJSON, len(results))
	for i, result := range results {
		days[i] = toDayJSON(result)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]dayJSON{"doctors": days})
}
