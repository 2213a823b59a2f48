// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const defaultLocalMaxBytes = 32 * 1024 * 1024

// LocalCache is an in-process ICache on top of fastcache, used when no
// Redis is configured. Expiry is checked lazily on read.
type LocalCache struct {
	cache *fastcache.Cache
	mu    sync.RWMutex
	ttls  map[string]time.Time
	now   func() time.Time
}

// NewLocalCache creates a LocalCache bounded by maxBytes (32MB when <= 0).
func NewLocalCache(maxBytes int) *LocalCache {
	if maxBytes <= 0 {
		maxBytes = defaultLocalMaxBytes
	}
	return &LocalCache{
		cache: fastcache.New(maxBytes),
		ttls:  make(map[string]time.Time),
		now:   time.Now,
	}
}

func (lc *LocalCache) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)

	lc.mu.RLock()
	exp, hasTTL := lc.ttls[key]
	lc.mu.RUnlock()
	if hasTTL && lc.now().After(exp) {
		lc.Del(ctx, key)
		cmd.SetErr(redis.Nil)
		return cmd
	}

	value, ok := lc.cache.HasGet(nil, []byte(key))
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(value))
	return cmd
}

func (lc *LocalCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		b, err := sonic.Marshal(v)
		if err != nil {
			cmd.SetErr(err)
			return cmd
		}
		data = b
	}

	lc.mu.Lock()
	lc.cache.Set([]byte(key), data)
	if expiration > 0 {
		lc.ttls[key] = lc.now().Add(expiration)
	} else {
		delete(lc.ttls, key)
	}
	lc.mu.Unlock()

	cmd.SetVal("OK")
	return cmd
}

func (lc *LocalCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")

	lc.mu.Lock()
	defer lc.mu.Unlock()
	var count int64
	for _, key := range keys {
		if lc.cache.Has([]byte(key)) {
			lc.cache.Del([]byte(key))
			count++
		}
		delete(lc.ttls, key)
	}
	cmd.SetVal(count)
	return cmd
}

// Reset drops every entry.
func (lc *LocalCache) Reset() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.cache.Reset()
	lc.ttls = make(map[string]time.Time)
}
