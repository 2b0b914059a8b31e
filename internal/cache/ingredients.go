// Package cache provides a Redis read-through cache for ingredient
// reference data.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	keyPrefix  = "ingredient:"
	DefaultTTL = 6 * time.Hour
)

// IngredientSource is the authoritative store behind the cache.
type IngredientSource interface {
	IngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error)
}

// IngredientCache serves IngredientsByIDs from Redis and falls back to the
// source on misses. Redis failures never fail a lookup: they trip a circuit
// breaker and the source is queried directly until Redis recovers.
type IngredientCache struct {
	client  *redis.Client
	source  IngredientSource
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[any]
	log     zerolog.Logger
}

// NewIngredientCache wraps source. A nil client disables caching.
func NewIngredientCache(client *redis.Client, source IngredientSource, ttl time.Duration) *IngredientCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	log := logging.Component("ingredient_cache")
	return &IngredientCache{
		client: client,
		source: source,
		ttl:    ttl,
		breaker: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        "ingredient_cache",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("redis circuit breaker state changed")
			},
		}),
		log: log,
	}
}

// BreakerState reports the circuit breaker state, for health output.
func (c *IngredientCache) BreakerState() string {
	return c.breaker.State().String()
}

// IngredientsByIDs returns the existing ingredients among ids.
func (c *IngredientCache) IngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	if c.client == nil || len(ids) == 0 {
		return c.source.IngredientsByIDs(ctx, ids)
	}

	hits, misses, err := c.lookup(ctx, ids)
	if err != nil {
		c.log.Debug().Err(err).Msg("cache lookup failed, reading from store")
		return c.source.IngredientsByIDs(ctx, ids)
	}
	if len(misses) == 0 {
		return hits, nil
	}

	loaded, err := c.source.IngredientsByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	c.store(ctx, loaded)

	return append(hits, loaded...), nil
}

func (c *IngredientCache) lookup(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, []uuid.UUID, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.client.MGet(ctx, keys...).Result()
	})
	if err != nil {
		return nil, nil, err
	}
	values := result.([]interface{})

	var hits []models.Ingredient
	var misses []uuid.UUID
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var ingredient models.Ingredient
		if err := json.Unmarshal([]byte(raw), &ingredient); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		hits = append(hits, ingredient)
	}
	return hits, misses, nil
}

func (c *IngredientCache) store(ctx context.Context, ingredients []models.Ingredient) {
	if len(ingredients) == 0 {
		return
	}
	_, err := c.breaker.Execute(func() (any, error) {
		pipe := c.client.Pipeline()
		for _, ingredient := range ingredients {
			payload, err := json.Marshal(ingredient)
			if err != nil {
				return nil, err
			}
			pipe.Set(ctx, key(ingredient.ID), payload, c.ttl)
		}
		return pipe.Exec(ctx)
	})
	if err != nil {
		c.log.Debug().Err(err).Int("count", len(ingredients)).Msg("failed to populate cache")
	}
}

// Invalidate drops every cached ingredient. Called after reference data imports.
func (c *IngredientCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	var deleted int
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 500).Iterator()
	batch := make([]string, 0, 500)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return fmt.Errorf("failed to invalidate ingredient cache: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to scan ingredient cache: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("failed to invalidate ingredient cache: %w", err)
	}

	c.log.Info().Int("keys", deleted).Msg("ingredient cache invalidated")
	return nil
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}
