package schedule

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harborhealth/clinic-scheduler/internal/appointments"
	"github.com/harborhealth/clinic-scheduler/internal/availability"
	"github.com/harborhealth/clinic-scheduler/internal/calendar"
	"github.com/harborhealth/clinic-scheduler/internal/observability/metrics"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

var scheduleTracer = otel.Tracer("clinic.internal.schedule")

// UnavailableDependencyError reports that a backing read failed and the
// schedule could not be derived. A failed booked-interval read must surface
// as this error, never as an all-free day.
type UnavailableDependencyError struct {
	Dependency string
	Err        error
}

func (e *UnavailableDependencyError) Error() string {
	return fmt.Sprintf("schedule: %s unavailable: %v", e.Dependency, e.Err)
}

func (e *UnavailableDependencyError) Unwrap() error {
	return e.Err
}

// TemplateSource supplies a doctor's weekly template.
type TemplateSource interface {
	Get(ctx context.Context, doctorID string) (availability.Weekly, error)
}

// BookedSource supplies a doctor's non-cancelled appointment intervals
// intersecting a range.
type BookedSource interface {
	ListBookedInRange(ctx context.Context, doctorID string, from, to time.Time) ([]appointments.Interval, error)
}

// Service orchestrates one slot derivation: resolve the date range, load the
// template and the booked intervals, run the engine.
type Service struct {
	templates TemplateSource
	booked    BookedSource
	cal       *calendar.Calendar
	cfg       Config
	metrics   *metrics.SchedulingMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// NewService constructs the schedule service.
func NewService(templates TemplateSource, booked BookedSource, cal *calendar.Calendar, cfg Config, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if templates == nil {
		panic("schedule: template source required")
	}
	if booked == nil {
		panic("schedule: booked source required")
	}
	if cal == nil {
		panic("schedule: calendar required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		templates: templates,
		booked:    booked,
		cal:       cal,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Today returns the current clinic-local civil date.
func (s *Service) Today() calendar.DateKey {
	return s.cal.Today(s.now())
}

// DaySchedule derives the slot list for one doctor and one requested date.
func (s *Service) DaySchedule(ctx context.Context, req Request) (Result, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.compute")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.doctor_id", req.DoctorID),
		attribute.String("clinic.requested_date", req.Date.String()),
		attribute.Bool("clinic.automatic", req.Automatic),
	)

	mode := "manual"
	if req.Automatic {
		mode = "automatic"
	}

	tmpl, err := s.templates.Get(ctx, req.DoctorID)
	if err != nil {
		s.metrics.ObserveSlotComputation("error", mode)
		span.RecordError(err)
		return Result{}, &UnavailableDependencyError{Dependency: "availability template", Err: err}
	}
	if err := tmpl.Validate(s.cfg.Window); err != nil {
		s.metrics.ObserveSlotComputation("error", mode)
		span.RecordError(err)
		return Result{}, fmt.Errorf("schedule: stored template for doctor %s: %w", req.DoctorID, err)
	}

	// One read covers the whole roll-forward range so the engine stays pure.
	from, _ := s.cal.DayBounds(req.Date)
	_, to := s.cal.DayBounds(req.Date.AddDays(s.cfg.RollForwardLimit))
	booked, err := s.booked.ListBookedInRange(ctx, req.DoctorID, from, to)
	if err != nil {
		s.metrics.ObserveSlotComputation("error", mode)
		span.RecordError(err)
		return Result{}, &UnavailableDependencyError{Dependency: "booked intervals", Err: err}
	}

	result, err := ComputeSlots(s.cal, req, tmpl, booked, s.now(), s.cfg)
	if err != nil {
		s.metrics.ObserveSlotComputation("error", mode)
		span.RecordError(err)
		return Result{}, err
	}

	outcome := "empty"
	if len(result.Slots) > 0 {
		outcome = "found"
	}
	s.metrics.ObserveSlotComputation(outcome, mode)
	if req.Automatic {
		s.metrics.ObserveRollForward(result.RolledDays)
	}
	span.SetAttributes(
		attribute.String("clinic.resolved_date", result.ResolvedDate.String()),
		attribute.Int("clinic.slot_count", len(result.Slots)),
	)
	return result, nil
}

// BatchSchedule derives slots for several doctors on the same requested date.
// One doctor's backing failure degrades that doctor to an empty slot list
// instead of failing the whole batch.
func (s *Service) BatchSchedule(ctx context.Context, doctorIDs []string, date calendar.DateKey, automatic bool) []Result {
	results := make([]Result, 0, len(doctorIDs))
	for _, id := range doctorIDs {
		result, err := s.DaySchedule(ctx, Request{DoctorID: id, Date: date, Automatic: automatic})
		if err != nil {
			s.logger.Error("batch slot derivation degraded to empty",
				"doctor_id", id,
				"date", date.String(),
				"error", err,
			)
			result = Result{DoctorID: id, ResolvedDate: date, Slots: []Slot{}}
		}
		results = append(results, result)
	}
	return results
}
