package availability

import (
	"context"

	"github.com/harborhealth/clinic-scheduler/internal/observability/metrics"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

// TemplateStore abstracts template persistence so tests can swap in fakes.
type TemplateStore interface {
	Get(ctx context.Context, doctorID string) (Weekly, error)
	Set(ctx context.Context, doctorID string, w Weekly) error
}

// Service validates and applies full-template replacements.
type Service struct {
	store   TemplateStore
	window  Window
	logger  *logging.Logger
	metrics *metrics.SchedulingMetrics
}

// NewService constructs the availability mutation service.
func NewService(store TemplateStore, window Window, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("availability: template store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, window: window, logger: logger, metrics: m}
}

// Window returns the clinic grid window the service validates against.
func (s *Service) Window() Window {
	return s.window
}

// Get returns the doctor's current template.
func (s *Service) Get(ctx context.Context, doctorID string) (Weekly, error) {
	return s.store.Get(ctx, doctorID)
}

// Replace swaps the doctor's entire weekly template. Only the doctor may edit
// their own template. Existing booked appointments are intentionally left
// untouched, even when they fall outside the new availability.
func (s *Service) Replace(ctx context.Context, doctorID, requestingUserID string, days map[string][]string) (Weekly, error) {
	if requestingUserID != doctorID {
		return Weekly{}, ErrNotOwner
	}

	w, err := NewWeekly(days, s.window)
	if err != nil {
		return Weekly{}, err
	}

	if err := s.store.Set(ctx, doctorID, w); err != nil {
		return Weekly{}, err
	}

	s.metrics.ObserveTemplateReplace()
	s.logger.Info("weekly availability replaced", "doctor_id", doctorID)
	return w, nil
}
