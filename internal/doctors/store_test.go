package doctors

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func doctorRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "specialty", "bio", "photo_url"}).
		AddRow("doc-1", "Dr. Alvarez", "Cardiology", "", "").
		AddRow("doc-2", "Dr. Chen", "Dermatology", "Skin specialist", "https://img.example/chen.jpg")
}

func TestListAllDoctors(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, name, specialty, bio, photo_url FROM doctors ORDER BY name").
		WillReturnRows(doctorRows())

	got, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d doctors, want 2", len(got))
	}
	if got[0].Name != "Dr. Alvarez" {
		t.Errorf("first doctor = %q", got[0].Name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListFiltersBySpecialty(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, name, specialty, bio, photo_url FROM doctors WHERE specialty").
		WithArgs("Cardiology").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "specialty", "bio", "photo_url"}).
			AddRow("doc-1", "Dr. Alvarez", "Cardiology", "", ""))

	got, err := store.List(context.Background(), "Cardiology")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Specialty != "Cardiology" {
		t.Errorf("got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetUnknownDoctorReturnsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, name, specialty, bio, photo_url FROM doctors WHERE id").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "specialty", "bio", "photo_url"}))

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSpecialties(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT DISTINCT specialty FROM doctors").
		WillReturnRows(sqlmock.NewRows([]string{"specialty"}).
			AddRow("Cardiology").
			AddRow("Dermatology"))

	got, err := store.Specialties(context.Background())
	if err != nil {
		t.Fatalf("Specialties: %v", err)
	}
	if len(got) != 2 || got[0] != "Cardiology" {
		t.Errorf("got %v", got)
	}
}
