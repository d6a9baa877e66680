package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborhealth/clinic-scheduler/internal/availability"
	"github.com/harborhealth/clinic-scheduler/internal/calendar"
)

type fakeApptStore struct {
	appts     map[uuid.UUID]*Interval
	insertErr error
}

func newFakeApptStore() *fakeApptStore {
	return &fakeApptStore{appts: make(map[uuid.UUID]*Interval)}
}

func (f *fakeApptStore) Insert(_ context.Context, appt Interval) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, existing := range f.appts {
		if existing.DoctorID == appt.DoctorID && existing.Status != StatusCancelled && existing.Start.Equal(appt.Start) {
			return ErrSlotTaken
		}
	}
	f.appts[appt.ID] = &appt
	return nil
}

func (f *fakeApptStore) GetByID(_ context.Context, id uuid.UUID) (*Interval, error) {
	appt, ok := f.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (f *fakeApptStore) Reschedule(_ context.Context, id uuid.UUID, start, end time.Time) error {
	appt, ok := f.appts[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, existing := range f.appts {
		if otherID != id && existing.DoctorID == appt.DoctorID && existing.Status != StatusCancelled && existing.Start.Equal(start) {
			return ErrSlotTaken
		}
	}
	appt.Start, appt.End = start, end
	return nil
}

func (f *fakeApptStore) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	appt, ok := f.appts[id]
	if !ok {
		return ErrNotFound
	}
	appt.Status = status
	return nil
}

func (f *fakeApptStore) ListBookedInRange(_ context.Context, doctorID string, from, to time.Time) ([]Interval, error) {
	var out []Interval
	for _, appt := range f.appts {
		if appt.DoctorID == doctorID && appt.Status != StatusCancelled && appt.Overlaps(from, to) {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (f *fakeApptStore) ListForPatient(_ context.Context, patientID string) ([]Interval, error) {
	var out []Interval
	for _, appt := range f.appts {
		if appt.PatientID == patientID && appt.Status != StatusCancelled {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (f *fakeApptStore) ListForDoctor(_ context.Context, doctorID string, cutoff time.Time, upcoming bool) ([]Interval, error) {
	var out []Interval
	for _, appt := range f.appts {
		if appt.DoctorID != doctorID {
			continue
		}
		if upcoming && (appt.Status == StatusCancelled || appt.Start.Before(cutoff)) {
			continue
		}
		if !upcoming && !appt.Start.Before(cutoff) {
			continue
		}
		out = append(out, *appt)
	}
	return out, nil
}

type fakeTemplates struct {
	weekly availability.Weekly
	err    error
}

func (f *fakeTemplates) Get(_ context.Context, _ string) (availability.Weekly, error) {
	return f.weekly, f.err
}

type fakeNotifier struct {
	booked    []Interval
	cancelled []Interval
}

func (f *fakeNotifier) AppointmentBooked(_ context.Context, appt Interval) {
	f.booked = append(f.booked, appt)
}

func (f *fakeNotifier) AppointmentCancelled(_ context.Context, appt Interval) {
	f.cancelled = append(f.cancelled, appt)
}

// fixedNow is Monday 2026-03-02 08:00 EST (13:00 UTC).
var fixedNow = time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store Store, templates TemplateSource, notifier Notifier) *Service {
	t.Helper()
	cal, err := calendar.New("America/New_York")
	require.NoError(t, err)
	svc := NewService(store, templates, cal, time.Hour, notifier, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func mondayTemplate() availability.Weekly {
	return availability.Weekly{Monday: []string{"09:00", "09:30", "10:00"}}
}

func TestBookCreatesUpcomingAppointment(t *testing.T) {
	store := newFakeApptStore()
	notifier := &fakeNotifier{}
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, notifier)

	// Monday 10:00 EST, two hours past the lead-time cutoff.
	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	appt, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "checkup")
	require.NoError(t, err)

	assert.Equal(t, StatusUpcoming, appt.Status)
	assert.Equal(t, start, appt.Start)
	assert.Equal(t, start.Add(30*time.Minute), appt.End)
	require.Len(t, notifier.booked, 1)
	assert.Equal(t, appt.ID, notifier.booked[0].ID)
}

func TestBookAtExactLeadTimeBoundarySucceeds(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	// Exactly now + 60m: Monday 09:00 EST.
	start := fixedNow.Add(time.Hour)
	_, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	assert.NoError(t, err)
}

func TestBookInsideLeadTimeRejected(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: availability.Weekly{Monday: []string{"08:30"}}}, nil)

	// Monday 08:30 EST is only 30 minutes out.
	start := fixedNow.Add(30 * time.Minute)
	_, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestBookOffGridRejected(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	start := time.Date(2026, 3, 2, 15, 17, 0, 0, time.UTC)
	_, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestBookOutsideTemplateRejected(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	// Monday 16:00 EST is on the grid but not in the template.
	start := time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)
	_, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestBookTemplateReadFailurePropagates(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{err: errors.New("redis down")}, nil)

	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	_, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSlot)
}

func TestBookSecondPatientSameSlotLoses(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	_, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), "doc-1", "pat-2", start, "")
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestRescheduleMovesOwnAppointment(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	appt, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	require.NoError(t, err)

	newStart := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	moved, err := svc.Reschedule(context.Background(), appt.ID, "pat-1", newStart)
	require.NoError(t, err)
	assert.Equal(t, newStart, moved.Start)
	assert.Equal(t, newStart.Add(30*time.Minute), moved.End)
}

func TestRescheduleByNonOwnerForbidden(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	appt, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	require.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), appt.ID, "pat-2", start.Add(30*time.Minute))
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestRescheduleCancelledAppointmentRejected(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	appt, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), appt.ID, "pat-1"))

	_, err = svc.Reschedule(context.Background(), appt.ID, "pat-1", start.Add(30*time.Minute))
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestCancelByDoctorAllowed(t *testing.T) {
	store := newFakeApptStore()
	notifier := &fakeNotifier{}
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, notifier)

	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	appt, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), appt.ID, "doc-1"))

	got, err := store.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	require.Len(t, notifier.cancelled, 1)
}

func TestCancelByStrangerForbidden(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	appt, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), appt.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCancelledSlotCanBeRebooked(t *testing.T) {
	store := newFakeApptStore()
	svc := newTestService(t, store, &fakeTemplates{weekly: mondayTemplate()}, nil)

	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	appt, err := svc.Book(context.Background(), "doc-1", "pat-1", start, "")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), appt.ID, "pat-1"))

	_, err = svc.Book(context.Background(), "doc-1", "pat-2", start, "")
	assert.NoError(t, err)
}
