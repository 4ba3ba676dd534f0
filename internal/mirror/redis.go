// Package mirror holds the denormalized, read-optimized copy of verified
// profile data in an external store keyed by the same join key as the
// credential store. Writes are merges: a sync never erases fields it does
// not explicitly set.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrProfileNotFound is returned when no mirror document exists for an id.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is the mirrored subset of a user record. A zero VerifiedAt means
// the verified timestamp is left untouched by an upsert and absent from a
// fetched profile.
type Profile struct {
	Email      string
	FirstName  string
	LastName   string
	Course     string
	YearLevel  int
	VerifiedAt time.Time
}

// Store defines the operations the synchronization logic needs from the
// profile mirror.
type Store interface {
	UpsertProfile(ctx context.Context, id string, profile Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	DeleteProfile(ctx context.Context, id string) (bool, error)
}

const profileKeyPrefix = "profile:"

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Store backed by the given redis client.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func profileKey(id string) string {
	return profileKeyPrefix + id
}

func (s *redisStore) UpsertProfile(ctx context.Context, id string, profile Profile) error {
	fields := map[string]any{
		"email":      profile.Email,
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"course":     profile.Course,
		"year_level": strconv.Itoa(profile.YearLevel),
	}

	if !profile.VerifiedAt.IsZero() {
		fields["verified_at"] = profile.VerifiedAt.UTC().Format(time.RFC3339)
	}

	if err := s.client.HSet(ctx, profileKey(id), fields).Err(); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", id, err)
	}

	return nil
}

func (s *redisStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	values, err := s.client.HGetAll(ctx, profileKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", id, err)
	}

	if len(values) == 0 {
		return nil, ErrProfileNotFound
	}

	profile := &Profile{
		Email:     values["email"],
		FirstName: values["first_name"],
		LastName:  values["last_name"],
		Course:    values["course"],
	}

	if raw, ok := values["year_level"]; ok {
		if year, err := strconv.Atoi(raw); err == nil {
			profile.YearLevel = year
		}
	}

	if raw, ok := values["verified_at"]; ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			profile.VerifiedAt = ts
		}
	}

	return profile, nil
}

func (s *redisStore) DeleteProfile(ctx context.Context, id string) (bool, error) {
	removed, err := s.client.Del(ctx, profileKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete profile %s: %w", id, err)
	}

	return removed > 0, nil
}
