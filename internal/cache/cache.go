package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MuradAles/Hermes/internal/types"
	"github.com/MuradAles/Hermes/internal/weather"
)

// Forecast entries arrive in 3-hour steps, so a cached observation stays
// representative well past this TTL; 30 minutes keeps monitor runs an hour
// apart from reusing stale air.
const defaultTTL = 30 * time.Minute

// RedisClientInterface defines the Redis operations the cache uses.
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Close() error
}

// Client caches weather observations in Redis, keyed by rounded coordinates
// and the hour of the target time. Repeated waypoint lookups within the same
// hour and grid cell hit the cache instead of the upstream API.
type Client struct {
	client RedisClientInterface
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client, ttl: defaultTTL}, nil
}

// NewWithClient creates a cache around a custom RedisClientInterface
// (useful for testing).
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client, ttl: defaultTTL}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func observationKey(lat, lon float64, at time.Time) string {
	return fmt.Sprintf("wx:%.2f:%.2f:%d", lat, lon, at.UTC().Truncate(time.Hour).Unix())
}

// GetObservation returns the cached observation for a cell/hour, or nil on a
// cache miss.
func (c *Client) GetObservation(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
	data, err := c.client.Get(ctx, observationKey(lat, lon, at)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached observation: %w", err)
	}

	var obs types.WeatherObservation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached observation: %w", err)
	}
	return &obs, nil
}

// StoreObservation caches an observation for its cell/hour.
func (c *Client) StoreObservation(ctx context.Context, lat, lon float64, at time.Time, obs *types.WeatherObservation) error {
	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to marshal observation: %w", err)
	}
	return c.client.Set(ctx, observationKey(lat, lon, at), data, c.ttl).Err()
}

// CachingProvider wraps a weather.Provider with the Redis cache. Cache
// failures degrade to a direct lookup; they never fail the evaluation.
type CachingProvider struct {
	cache    *Client
	upstream weather.Provider
}

// NewCachingProvider wraps upstream with the cache.
func NewCachingProvider(cache *Client, upstream weather.Provider) *CachingProvider {
	return &CachingProvider{cache: cache, upstream: upstream}
}

// GetWeather implements weather.Provider.
func (p *CachingProvider) GetWeather(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
	if cached, err := p.cache.GetObservation(ctx, lat, lon, at); err == nil && cached != nil {
		return cached, nil
	}

	obs, err := p.upstream.GetWeather(ctx, lat, lon, at)
	if err != nil {
		return nil, err
	}

	if err := p.cache.StoreObservation(ctx, lat, lon, at, obs); err != nil {
		// A write failure only costs a future cache hit.
		return obs, nil
	}
	return obs, nil
}
