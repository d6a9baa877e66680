package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/harborhealth/clinic-scheduler/internal/appointments"
	"github.com/harborhealth/clinic-scheduler/internal/calendar"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

// ContactSource resolves a patient id to an email address and display name.
type ContactSource interface {
	PatientContact(ctx context.Context, patientID string) (email, name string, err error)
}

// Service turns appointment lifecycle events into patient emails. It
// implements the booking flow's notifier; every method swallows errors after
// logging so notification trouble never reaches the booking path.
type Service struct {
	sender   EmailSender
	contacts ContactSource
	cal      *calendar.Calendar
	logger   *logging.Logger
}

// NewService constructs the notification service. A nil sender or contact
// source disables sends.
func NewService(sender EmailSender, contacts ContactSource, cal *calendar.Calendar, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, contacts: contacts, cal: cal, logger: logger}
}

// AppointmentBooked emails the patient a booking confirmation.
func (s *Service) AppointmentBooked(ctx context.Context, appt appointments.Interval) {
	s.send(ctx, appt, "Appointment confirmed",
		"Your appointment on %s is confirmed. We look forward to seeing you.")
}

// AppointmentCancelled emails the patient a cancellation notice.
func (s *Service) AppointmentCancelled(ctx context.Context, appt appointments.Interval) {
	s.send(ctx, appt, "Appointment cancelled",
		"Your appointment on %s has been cancelled. You can book a new time any time.")
}

func (s *Service) send(ctx context.Context, appt appointments.Interval, subject, bodyFormat string) {
	if s.sender == nil || s.contacts == nil {
		return
	}

	email, name, err := s.contacts.PatientContact(ctx, appt.PatientID)
	if err != nil {
		s.logger.Error("patient contact lookup failed, skipping notification",
			"patient_id", appt.PatientID, "appointment_id", appt.ID, "error", err)
		return
	}
	if email == "" {
		return
	}

	msg := EmailMessage{
		To:      email,
		ToName:  name,
		Subject: subject,
		Body:    fmt.Sprintf(bodyFormat, s.formatSlot(appt.Start)),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("notification send failed",
			"patient_id", appt.PatientID, "appointment_id", appt.ID, "error", err)
	}
}

// formatSlot renders the appointment start in clinic-local time, e.g.
// "Monday, March 2, 2026 at 9:00 AM EST".
func (s *Service) formatSlot(start time.Time) string {
	if s.cal != nil {
		start = start.In(s.cal.Location())
	}
	return start.Format("Monday, January 2, 2006 at 3:04 PM MST")
}
