/*
Copyright 2024 Daftar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/polica/daftar/config"
	redis_db "github.com/polica/daftar/internal/redis-db"
)

// Cache is the store for assembled balance reports and other read-heavy
// projections. Entries are invalidated whenever a ledger mutation touches the
// student they belong to.
type Cache interface {
	// Set stores a value under key for at most ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get loads the value under key into data. A cache miss is not an error;
	// data is simply left untouched.
	Get(ctx context.Context, key string, data interface{}) error

	// Delete removes the value under key.
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache on top of Redis with a small in-process tier.
type RedisCache struct {
	cache *cache.Cache
}

// NewCache connects to the Redis node named in the configuration and returns
// a ready Cache.
func NewCache() (Cache, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	ca, err := newRedisCache(cfg.Redis.Dns)
	if err != nil {
		return nil, err
	}
	return ca, nil
}

// cacheSize bounds the in-process tier; a center has a few thousand students,
// so this comfortably holds every hot report.
const cacheSize = 10000

func newRedisCache(address string) (*RedisCache, error) {
	client, err := redis_db.NewRedisClient(address)
	if err != nil {
		return nil, err
	}

	c := cache.New(&cache.Options{
		Redis:      client.Client(),
		LocalCache: cache.NewTinyLFU(cacheSize, 1*time.Minute),
	})

	return &RedisCache{cache: c}, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: data,
		TTL:   ttl,
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, data interface{}) error {
	// The caller's pointer goes straight through. Wrapping it in another
	// indirection would defeat the codec's raw []byte fast path.
	err := r.cache.Get(ctx, key, data)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}

	return err
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}
