package appointments

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harborhealth/clinic-scheduler/internal/availability"
	"github.com/harborhealth/clinic-scheduler/internal/calendar"
	"github.com/harborhealth/clinic-scheduler/internal/observability/metrics"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

var apptTracer = otel.Tracer("clinic.internal.appointments")

// Store is the repository surface the service depends on.
type Store interface {
	Insert(ctx context.Context, appt Interval) error
	GetByID(ctx context.Context, id uuid.UUID) (*Interval, error)
	Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	ListBookedInRange(ctx context.Context, doctorID string, from, to time.Time) ([]Interval, error)
	ListForPatient(ctx context.Context, patientID string) ([]Interval, error)
	ListForDoctor(ctx context.Context, doctorID string, cutoff time.Time, upcoming bool) ([]Interval, error)
}

// TemplateSource supplies a doctor's weekly template for the admission-time
// availability re-check.
type TemplateSource interface {
	Get(ctx context.Context, doctorID string) (availability.Weekly, error)
}

// Notifier sends booking lifecycle notifications. Implementations must be
// safe for fire-and-forget use.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt Interval)
	AppointmentCancelled(ctx context.Context, appt Interval)
}

// Service validates and applies appointment mutations. The slot engine's
// output is a snapshot, so every booking is re-checked here at commit time;
// the database's unique index settles races the re-check cannot see.
type Service struct {
	store       Store
	templates   TemplateSource
	cal         *calendar.Calendar
	notifier    Notifier
	metrics     *metrics.SchedulingMetrics
	logger      *logging.Logger
	minLeadTime time.Duration
	now         func() time.Time
}

// NewService constructs the appointments service.
func NewService(store Store, templates TemplateSource, cal *calendar.Calendar, minLeadTime time.Duration, notifier Notifier, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if cal == nil {
		panic("appointments: calendar required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:       store,
		templates:   templates,
		cal:         cal,
		notifier:    notifier,
		metrics:     m,
		logger:      logger,
		minLeadTime: minLeadTime,
		now:         time.Now,
	}
}

// Book admits a new appointment for the slot starting at start.
func (s *Service) Book(ctx context.Context, doctorID, patientID string, start time.Time, reason string) (*Interval, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.doctor_id", doctorID),
		attribute.String("clinic.slot_start", start.UTC().Format(time.RFC3339)),
	)

	if err := s.validateSlot(ctx, doctorID, start); err != nil {
		span.RecordError(err)
		return nil, err
	}

	appt := Interval{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: patientID,
		Start:     start.UTC(),
		End:       start.UTC().Add(availability.SlotMinutes * time.Minute),
		Status:    StatusUpcoming,
		Reason:    reason,
	}
	if err := s.store.Insert(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveAdmission("conflict")
		}
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveAdmission("confirmed")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", doctorID,
		"start", appt.Start.Format(time.RFC3339),
	)
	if s.notifier != nil {
		s.notifier.AppointmentBooked(ctx, appt)
	}
	return &appt, nil
}

// Reschedule moves the patient's appointment to a new slot.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, patientID string, start time.Time) (*Interval, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.reschedule")
	defer span.End()

	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, ErrNotOwner
	}
	if appt.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: appointment is cancelled", ErrInvalidSlot)
	}

	if err := s.validateSlot(ctx, appt.DoctorID, start); err != nil {
		span.RecordError(err)
		return nil, err
	}

	newStart := start.UTC()
	newEnd := newStart.Add(availability.SlotMinutes * time.Minute)
	if err := s.store.Reschedule(ctx, id, newStart, newEnd); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveAdmission("conflict")
		}
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveAdmission("rescheduled")
	s.logger.Info("appointment rescheduled", "appointment_id", id, "start", newStart.Format(time.RFC3339))

	appt.Start = newStart
	appt.End = newEnd
	return appt, nil
}

// Cancel marks the appointment cancelled. Either party may cancel.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, requestingUserID string) error {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if appt.PatientID != requestingUserID && appt.DoctorID != requestingUserID {
		return ErrNotOwner
	}
	if err := s.store.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return err
	}

	s.logger.Info("appointment cancelled", "appointment_id", id, "by", requestingUserID)
	if s.notifier != nil {
		appt.Status = StatusCancelled
		s.notifier.AppointmentCancelled(ctx, *appt)
	}
	return nil
}

// ListForPatient returns the patient's booked appointments.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]Interval, error) {
	return s.store.ListForPatient(ctx, patientID)
}

// ListForDoctor returns the doctor's upcoming or past appointments.
func (s *Service) ListForDoctor(ctx context.Context, doctorID string, upcoming bool) ([]Interval, error) {
	return s.store.ListForDoctor(ctx, doctorID, s.now().UTC(), upcoming)
}

// validateSlot enforces grid alignment, the lead-time cutoff, and membership
// in the doctor's current weekly template. The boundary is inclusive: a slot
// starting exactly at now+minLeadTime is bookable.
func (s *Service) validateSlot(ctx context.Context, doctorID string, start time.Time) error {
	local := start.In(s.cal.Location())
	if local.Minute()%availability.SlotMinutes != 0 || local.Second() != 0 || local.Nanosecond() != 0 {
		return fmt.Errorf("%w: start %s is off the %d-minute grid", ErrInvalidSlot, start.Format(time.RFC3339), availability.SlotMinutes)
	}
	if start.Before(s.now().Add(s.minLeadTime)) {
		return fmt.Errorf("%w: start %s is too soon", ErrInvalidSlot, start.Format(time.RFC3339))
	}

	if s.templates == nil {
		return nil
	}
	tmpl, err := s.templates.Get(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("appointments: load template: %w", err)
	}
	mark := local.Format("15:04")
	if !slices.Contains(tmpl.ForWeekday(local.Weekday()), mark) {
		return fmt.Errorf("%w: %s %s is outside the doctor's availability", ErrInvalidSlot, local.Weekday(), mark)
	}
	return nil
}
