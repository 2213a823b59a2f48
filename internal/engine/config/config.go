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

package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/cache"
	"github.com/go-arcade/arcade-admin/pkg/database"
	"github.com/go-arcade/arcade-admin/pkg/http"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/go-arcade/arcade-admin/pkg/metrics"
	"github.com/go-arcade/arcade-admin/pkg/trace"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// PermissionConfig controls the permission set calculator.
type PermissionConfig struct {
	// SuperAdminRoleKeys lists role keys whose holders bypass data scope and
	// permission checks.
	SuperAdminRoleKeys []string
	// MergeStrategy is "union" or "intersection".
	MergeStrategy string
	// CacheTTL is in seconds; 0 disables caching of per-role sets.
	CacheTTL int
}

// DataScopeConfig controls the filter interception layer.
type DataScopeConfig struct {
	// FailurePolicy is "closed" or "open".
	FailurePolicy string
	// MultiRolePolicy is "union" or "intersection".
	MultiRolePolicy string
}

// JobConfig schedules background maintenance.
type JobConfig struct {
	// AncestorAuditSpec is a cron spec for the dept path audit; empty disables it.
	AncestorAuditSpec string
	// AncestorAutoRepair rewrites inconsistent paths instead of only reporting them.
	AncestorAutoRepair bool
}

type AppConfig struct {
	Log        log.Conf
	Http       http.Http
	Database   database.Database
	Redis      cache.Redis
	Metrics    metrics.MetricsConfig
	Trace      trace.Conf
	Job        JobConfig
	Permission PermissionConfig
	DataScope  DataScopeConfig
}

var (
	cfg  AppConfig
	mu   sync.RWMutex
	once sync.Once
)

// NewConf loads confPath once per process; later calls return the cached copy.
func NewConf(confPath string) AppConfig {
	once.Do(func() {
		loaded, err := LoadConfigFile(confPath)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})
	return Current()
}

// Current returns the latest configuration, including hot reloads.
func Current() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile reads confPath, applies defaults and validates the result.
// The file is watched and reloaded into Current on change.
func LoadConfigFile(confPath string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(confPath)
	v.SetEnvPrefix("ARCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return AppConfig{}, errors.Wrap(err, "failed to read configuration file")
	}

	loaded, err := decode(v)
	if err != nil {
		return AppConfig{}, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed, reloading", "file", e.Name)
		next, err := decode(v)
		if err != nil {
			log.Errorw("failed to reload configuration, keeping previous", "error", err)
			return
		}
		mu.Lock()
		cfg = next
		mu.Unlock()
	})
	v.WatchConfig()

	log.Infow("config file loaded", "path", confPath)
	return loaded, nil
}

func decode(v *viper.Viper) (AppConfig, error) {
	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return AppConfig{}, errors.Wrap(err, "failed to unmarshal configuration file")
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return AppConfig{}, err
	}
	return c, nil
}

// SetDefaults fills every unset section.
func (c *AppConfig) SetDefaults() {
	if c.Log.Output == "" {
		c.Log = *log.SetDefaults()
	}
	c.Http.SetDefaults()
	c.Database.SetDefaults()
	c.Redis.SetDefaults()
	c.Metrics.SetDefaults()
	c.Trace.SetDefaults()
	if len(c.Permission.SuperAdminRoleKeys) == 0 {
		c.Permission.SuperAdminRoleKeys = []string{"admin"}
	}
	if c.Permission.MergeStrategy == "" {
		c.Permission.MergeStrategy = string(model.MergeUnion)
	}
	if c.DataScope.FailurePolicy == "" {
		c.DataScope.FailurePolicy = string(datascope.FailClosed)
	}
	if c.DataScope.MultiRolePolicy == "" {
		c.DataScope.MultiRolePolicy = string(datascope.MultiRoleUnion)
	}
}

// Validate rejects values the engine cannot interpret.
func (c *AppConfig) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	switch model.MergeStrategy(c.Permission.MergeStrategy) {
	case model.MergeUnion, model.MergeIntersection:
	default:
		return errors.Errorf("unknown permission merge strategy %q", c.Permission.MergeStrategy)
	}
	if err := c.Trace.Validate(); err != nil {
		return err
	}
	if c.Permission.CacheTTL < 0 {
		return errors.New("permission cache ttl must not be negative")
	}
	if _, err := datascope.ParseFailurePolicy(c.DataScope.FailurePolicy); err != nil {
		return err
	}
	if _, err := datascope.ParseMultiRolePolicy(c.DataScope.MultiRolePolicy); err != nil {
		return err
	}
	return nil
}

// PermissionCacheTTL returns CacheTTL as a duration.
func (p PermissionConfig) PermissionCacheTTL() time.Duration {
	return time.Duration(p.CacheTTL) * time.Second
}

// Policies returns the parsed data scope policies. Call after Validate.
func (d DataScopeConfig) Policies() (datascope.FailurePolicy, datascope.MultiRolePolicy) {
	fp, _ := datascope.ParseFailurePolicy(d.FailurePolicy)
	mp, _ := datascope.ParseMultiRolePolicy(d.MultiRolePolicy)
	return fp, mp
}
