package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "launchpad:session:" // full user-state record: launchpad:session:{user_id}
	stateTTL  = 30 * 24 * time.Hour
)

// State is the cached user/session record. It mirrors the profile row and is
// a convenience cache, not the source of truth; the entitlement gate
// re-derives credit status from the backend when it can.
type State struct {
	ID                 string  `json:"id,omitempty"`
	Email              string  `json:"email,omitempty"`
	GenerationCount    int     `json:"generationCount"`
	IsSubscribed       bool    `json:"isSubscribed"`
	SubscriptionExpiry *int64  `json:"subscriptionExpiry"`
	LastGenerationDate *string `json:"lastGenerationDate"`
}

// Store keeps session state in Redis. Every write replaces the whole record;
// there is deliberately no partial-merge path, so a stale writer cannot
// resurrect individual fields.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Load returns the cached state, or (nil, nil) when none is stored.
func (s *Store) Load(ctx context.Context, userID string) (*State, error) {
	if s.rdb == nil || userID == "" {
		return nil, nil
	}

	data, err := s.rdb.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	var st State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &st, nil
}

// Save writes the complete record.
func (s *Store) Save(ctx context.Context, st *State) error {
	if s.rdb == nil {
		return nil
	}
	if st == nil || st.ID == "" {
		return fmt.Errorf("session save: state with id required")
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+st.ID, data, stateTTL).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear drops the record, e.g. on logout.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if s.rdb == nil || userID == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
