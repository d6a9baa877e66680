package notify

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newContactStore(t *testing.T) (*ContactStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewContactStore(rdb), mr
}

func TestPatientContactRoundTrip(t *testing.T) {
	store, mr := newContactStore(t)
	mr.Set("patients:contact:pat-1", `{"email":"jane@example.com","name":"Jane Doe"}`)

	email, name, err := store.PatientContact(context.Background(), "pat-1")
	if err != nil {
		t.Fatalf("PatientContact: %v", err)
	}
	if email != "jane@example.com" || name != "Jane Doe" {
		t.Errorf("got %q/%q", email, name)
	}
}

func TestPatientContactUnknownPatientIsEmpty(t *testing.T) {
	store, _ := newContactStore(t)

	email, name, err := store.PatientContact(context.Background(), "missing")
	if err != nil {
		t.Fatalf("PatientContact: %v", err)
	}
	if email != "" || name != "" {
		t.Errorf("got %q/%q, want empty", email, name)
	}
}

func TestPatientContactMalformedRecordErrors(t *testing.T) {
	store, mr := newContactStore(t)
	mr.Set("patients:contact:pat-1", "not json")

	_, _, err := store.PatientContact(context.Background(), "pat-1")
	if err == nil {
		t.Fatal("expected decode error")
	}
}
