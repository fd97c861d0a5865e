package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StateManager tracks scrape progress so an interrupted run can skip work
// already done: completed sub-collections during the catalog scrape, and
// already-augmented products during the ratings pass. Optional; a nil
// manager means every run starts from scratch.
type StateManager interface {
	IsSubCollectionDone(ctx context.Context, handle string) (bool, error)
	MarkSubCollectionDone(ctx context.Context, handle string) error
	IsProductRated(ctx context.Context, url string) (bool, error)
	MarkProductRated(ctx context.Context, url string) error
	Reset(ctx context.Context) error
}

type redisStateManager struct {
	redisClient *redis.Client
	subsKey     string
	ratedKey    string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		subsKey:     "catalog:progress:subs",
		ratedKey:    "catalog:progress:rated",
	}
}

func (s *redisStateManager) IsSubCollectionDone(ctx context.Context, handle string) (bool, error) {
	done, err := s.redisClient.SIsMember(ctx, s.subsKey, handle).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check progress for sub-collection %s: %w", handle, err)
	}
	return done, nil
}

func (s *redisStateManager) MarkSubCollectionDone(ctx context.Context, handle string) error {
	if err := s.redisClient.SAdd(ctx, s.subsKey, handle).Err(); err != nil {
		return fmt.Errorf("failed to mark sub-collection %s done: %w", handle, err)
	}
	return nil
}

func (s *redisStateManager) IsProductRated(ctx context.Context, url string) (bool, error) {
	done, err := s.redisClient.SIsMember(ctx, s.ratedKey, url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rating progress for %s: %w", url, err)
	}
	return done, nil
}

func (s *redisStateManager) MarkProductRated(ctx context.Context, url string) error {
	if err := s.redisClient.SAdd(ctx, s.ratedKey, url).Err(); err != nil {
		return fmt.Errorf("failed to mark product %s rated: %w", url, err)
	}
	return nil
}

// Reset clears all saved progress, for a fresh full scrape.
func (s *redisStateManager) Reset(ctx context.Context) error {
	if err := s.redisClient.Del(ctx, s.subsKey, s.ratedKey).Err(); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}
