package doctors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// Store reads the doctor directory from Postgres over database/sql.
type Store struct {
	db *sql.DB
}

// NewStore creates a directory store.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		panic("doctors: database required")
	}
	return &Store{db: db}
}

// Open connects to Postgres with the pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("doctors: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("doctors: ping database: %w", err)
	}
	return db, nil
}

// List returns all doctors, optionally filtered by specialty, ordered by name.
func (s *Store) List(ctx context.Context, specialty string) ([]Doctor, error) {
	query := `SELECT id, name, specialty, bio, photo_url FROM doctors`
	args := []any{}
	if specialty != "" {
		query += ` WHERE specialty = $1`
		args = append(args, specialty)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()

	out := make([]Doctor, 0)
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Bio, &d.PhotoURL); err != nil {
			return nil, fmt.Errorf("doctors: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: rows: %w", err)
	}
	return out, nil
}

// Get returns one doctor by id.
func (s *Store) Get(ctx context.Context, id string) (*Doctor, error) {
	var d Doctor
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, specialty, bio, photo_url FROM doctors WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Specialty, &d.Bio, &d.PhotoURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("doctors: get: %w", err)
	}
	return &d, nil
}

// Specialties returns the distinct specialties present in the directory.
func (s *Store) Specialties(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT specialty FROM doctors ORDER BY specialty`)
	if err != nil {
		return nil, fmt.Errorf("doctors: specialties: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("doctors: scan specialty: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: rows: %w", err)
	}
	return out, nil
}
