package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// contactKey is the Redis key for a patient's contact record.
const contactKey = "patients:contact:%s"

type contactRecord struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ContactStore reads patient contact records from Redis. Records are written
// by the account system, which lives outside this service.
type ContactStore struct {
	rdb *redis.Client
}

// NewContactStore creates a Redis-backed contact source.
func NewContactStore(rdb *redis.Client) *ContactStore {
	if rdb == nil {
		panic("notify: redis client required")
	}
	return &ContactStore{rdb: rdb}
}

// PatientContact resolves a patient's email and display name. An unknown
// patient resolves to an empty email, which callers treat as "do not send".
func (s *ContactStore) PatientContact(ctx context.Context, patientID string) (string, string, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf(contactKey, patientID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("notify: load contact: %w", err)
	}
	var rec contactRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return "", "", fmt.Errorf("notify: decode contact: %w", err)
	}
	return rec.Email, rec.Name, nil
}
