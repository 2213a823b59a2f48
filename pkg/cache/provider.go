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
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/google/wire"
)

// ProviderSet 提供缓存依赖（Redis 或本地 FastCache）
var ProviderSet = wire.NewSet(ProvideICache)

// ProvideICache 按配置选择 Redis 或进程内缓存
func ProvideICache(conf Redis) (ICache, func(), error) {
	conf.SetDefaults()
	if conf.Mode == ModeLocal {
		log.Infow("using local in-process cache", "maxBytes", conf.LocalMaxBytes)
		return NewLocalCache(conf.LocalMaxBytes), func() {}, nil
	}

	client, err := NewRedis(conf)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warnw("failed to close redis", "error", err)
		}
	}
	return NewRedisCache(client), cleanup, nil
}
