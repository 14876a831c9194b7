package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "careflow/pkg/domain"
)

const latestAssessmentKeyPrefix = "risk:latest:"

// RedisCache shares the latest assessment per placement across instances so
// dashboard reads and matching tie-breaks avoid hitting the store. Entries
// carry a TTL; an expired entry just means a store read.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Put(ctx context.Context, a Assessment) error {
	payload, err := json.Marshal(newCachedAssessment(a))
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	key := latestAssessmentKeyPrefix + a.PlacementID.String()
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, placementID id.PlacementID) (Assessment, bool, error) {
	key := latestAssessmentKeyPrefix + placementID.String()
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Assessment{}, false, nil
	}
	if err != nil {
		return Assessment{}, false, fmt.Errorf("get cached assessment: %w", err)
	}

	var cached cachedAssessment
	if err := json.Unmarshal(raw, &cached); err != nil {
		return Assessment{}, false, fmt.Errorf("unmarshal cached assessment: %w", err)
	}
	a, err := cached.toAssessment()
	if err != nil {
		return Assessment{}, false, err
	}
	return a, true, nil
}

// cachedAssessment is the wire form stored in redis. It carries the full
// factor breakdown: a cache hit serves dashboard reads directly, and an
// assessment without its factors is not explainable.
type cachedAssessment struct {
	ID          string    `json:"id"`
	ChildID     string    `json:"child_id"`
	PlacementID string    `json:"placement_id"`
	ProviderID  string    `json:"provider_id"`
	Factors     []Factor  `json:"factors"`
	Score       float64   `json:"score"`
	Band        string    `json:"band"`
	NextReview  time.Time `json:"next_review"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCachedAssessment(a Assessment) cachedAssessment {
	return cachedAssessment{
		ID:          a.ID.String(),
		ChildID:     a.ChildID.String(),
		PlacementID: a.PlacementID.String(),
		ProviderID:  a.ProviderID.String(),
		Factors:     a.Factors,
		Score:       a.Score,
		Band:        string(a.Band),
		NextReview:  a.NextReview,
		CreatedAt:   a.CreatedAt,
	}
}

func (c cachedAssessment) toAssessment() (Assessment, error) {
	assessmentID, err := id.ParseAssessmentID(c.ID)
	if err != nil {
		return Assessment{}, err
	}
	childID, err := id.ParseChildID(c.ChildID)
	if err != nil {
		return Assessment{}, err
	}
	placementID, err := id.ParsePlacementID(c.PlacementID)
	if err != nil {
		return Assessment{}, err
	}
	providerID, err := id.ParseProviderID(c.ProviderID)
	if err != nil {
		return Assessment{}, err
	}
	return Assessment{
		ID:          assessmentID,
		ChildID:     childID,
		PlacementID: placementID,
		ProviderID:  providerID,
		Factors:     c.Factors,
		Score:       c.Score,
		Band:        Band(c.Band),
		NextReview:  c.NextReview,
		CreatedAt:   c.CreatedAt,
	}, nil
}
