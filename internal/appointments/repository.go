package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code raised when the partial unique
// index on (doctor_id, start_at) rejects a second non-cancelled booking.
const uniqueViolation = "23505"

// DBTX is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for appointment intervals.
type Repository struct {
	db DBTX
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DBTX) *Repository {
	if db == nil {
		panic("appointments: database required")
	}
	return &Repository{db: db}
}

const intervalColumns = "id, doctor_id, patient_id, start_at, end_at, status, reason, created_at, updated_at"

// Insert persists a new appointment. The partial unique index on
// (doctor_id, start_at) WHERE status <> 'cancelled' makes exactly one of two
// racing inserts win; the loser gets ErrSlotTaken.
func (r *Repository) Insert(ctx context.Context, appt Interval) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO appointments (id, doctor_id, patient_id, start_at, end_at, status, reason, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
		appt.ID, appt.DoctorID, appt.PatientID, appt.Start, appt.End, appt.Status, appt.Reason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// ListBookedInRange returns the non-cancelled intervals for a doctor that
// intersect [from, to), ordered by start. This is the booked-interval index
// feeding slot derivation.
func (r *Repository) ListBookedInRange(ctx context.Context, doctorID string, from, to time.Time) ([]Interval, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+intervalColumns+`
		 FROM appointments
		 WHERE doctor_id = $1 AND status <> $2 AND start_at < $3 AND end_at > $4
		 ORDER BY start_at`,
		doctorID, StatusCancelled, to, from,
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: list booked: %w", err)
	}
	defer rows.Close()
	return scanIntervals(rows)
}

// GetByID loads one appointment.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Interval, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+intervalColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanInterval(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	return appt, nil
}

// Reschedule moves an appointment to a new interval. The unique index guards
// the destination slot the same way Insert does.
func (r *Repository) Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET start_at = $2, end_at = $3, updated_at = now()
		 WHERE id = $1 AND status <> $4`,
		id, start, end, StatusCancelled,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: reschedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus transitions an appointment's lifecycle state.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForPatient returns a patient's non-cancelled appointments, soonest
// first.
func (r *Repository) ListForPatient(ctx context.Context, patientID string) ([]Interval, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+intervalColumns+`
		 FROM appointments
		 WHERE patient_id = $1 AND status <> $2
		 ORDER BY start_at`,
		patientID, StatusCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for patient: %w", err)
	}
	defer rows.Close()
	return scanIntervals(rows)
}

// ListForDoctor returns a doctor's appointments on one side of the cutoff:
// upcoming (start >= cutoff, soonest first) or past (start < cutoff, most
// recent first). Cancelled appointments are excluded from the upcoming view
// but kept in history.
func (r *Repository) ListForDoctor(ctx context.Context, doctorID string, cutoff time.Time, upcoming bool) ([]Interval, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if upcoming {
		rows, err = r.db.Query(ctx,
			`SELECT `+intervalColumns+`
			 FROM appointments
			 WHERE doctor_id = $1 AND status <> $2 AND start_at >= $3
			 ORDER BY start_at`,
			doctorID, StatusCancelled, cutoff,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+intervalColumns+`
			 FROM appointments
			 WHERE doctor_id = $1 AND start_at < $2
			 ORDER BY start_at DESC`,
			doctorID, cutoff,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: list for doctor: %w", err)
	}
	defer rows.Close()
	return scanIntervals(rows)
}

func scanIntervals(rows pgx.Rows) ([]Interval, error) {
	out := make([]Interval, 0)
	for rows.Next() {
		var appt Interval
		if err := rows.Scan(&appt.ID, &appt.DoctorID, &appt.PatientID, &appt.Start, &appt.End,
			&appt.Status, &appt.Reason, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows: %w", err)
	}
	return out, nil
}

func scanInterval(row pgx.Row) (*Interval, error) {
	var appt Interval
	if err := row.Scan(&appt.ID, &appt.DoctorID, &appt.PatientID, &appt.Start, &appt.End,
		&appt.Status, &appt.Reason, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return nil, err
	}
	return &appt, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
