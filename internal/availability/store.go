package availability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store persists weekly templates in Redis, one JSON document per doctor.
// A template is replaced with a single SET, so concurrent readers observe
// either the old document or the new one, never a mix of days.
type Store struct {
	redis *redis.Client
}

// NewStore creates a template store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(doctorID string) string {
	return fmt.Sprintf("availability:template:%s", doctorID)
}

// Get retrieves a doctor's template. A doctor with no saved template gets an
// empty one.
func (s *Store) Get(ctx context.Context, doctorID string) (Weekly, error) {
	data, err := s.redis.Get(ctx, s.key(doctorID)).Bytes()
	if err == redis.Nil {
		return Weekly{}, nil
	}
	if err != nil {
		return Weekly{}, fmt.Errorf("availability: get template: %w", err)
	}

	var w Weekly
	if err := json.Unmarshal(data, &w); err != nil {
		return Weekly{}, fmt.Errorf("availability: unmarshal template: %w", err)
	}
	return w, nil
}

// Set replaces a doctor's whole template.
func (s *Store) Set(ctx context.Context, doctorID string, w Weekly) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("availability: marshal template: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(doctorID), data, 0).Err(); err != nil {
		return fmt.Errorf("availability: set template: %w", err)
	}
	return nil
}
