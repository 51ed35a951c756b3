package catalog

import (
	"time"

	"github.com/jmeindl/tiershop/internal/pkg/cache"
)

// redisCache adapts the shared Redis cache to the catalog Cache interface.
type redisCache struct{}

// NewRedisCache returns a Cache backed by the shared Redis client.
func NewRedisCache() Cache {
	return redisCache{}
}

func (redisCache) Get(key string) (string, error) {
	return cache.Get(key)
}

func (redisCache) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}

func (redisCache) Delete(key string) error {
	return cache.Delete(key)
}
