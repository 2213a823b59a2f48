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


package job

import (
	"context"
	"time"

	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/internal/engine/service"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/google/wire"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

// ProviderSet 提供定时任务相关的依赖
var ProviderSet = wire.NewSet(ProvideScheduler)

const auditTimeout = 5 * time.Minute

// AncestorMaintainer checks and repairs materialized dept paths.
type AncestorMaintainer interface {
	AuditAncestors(ctx context.Context) (bool, error)
	RebuildAncestors(ctx context.Context) (int, error)
}

// Scheduler runs background maintenance on cron specs.
type Scheduler struct {
	cron       *cron.Cron
	dept       AncestorMaintainer
	autoRepair bool
}

func ProvideScheduler(conf config.JobConfig, services *service.Services) (*Scheduler, error) {
	return NewScheduler(conf, services.Dept)
}

// NewScheduler registers the configured jobs. Nothing runs until Start.
func NewScheduler(conf config.JobConfig, dept AncestorMaintainer) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		dept:       dept,
		autoRepair: conf.AncestorAutoRepair,
	}
	if conf.AncestorAuditSpec != "" {
		err := s.cron.AddFunc(conf.AncestorAuditSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
			defer cancel()
			if _, err := s.AuditAncestors(ctx); err != nil {
				log.Errorw("dept ancestor audit failed", "error", err)
			}
		})
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ancestor audit spec %q", conf.AncestorAuditSpec)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// AuditAncestors checks dept paths once and, with auto repair on, rewrites
// inconsistent ones. It returns how many rows were rewritten.
func (s *Scheduler) AuditAncestors(ctx context.Context) (int, error) {
	ok, err := s.dept.AuditAncestors(ctx)
	if err != nil {
		return 0, err
	}
	if ok {
		log.Debugw("dept ancestor paths consistent")
		return 0, nil
	}
	if !s.autoRepair {
		log.Warnw("dept ancestor paths inconsistent, auto repair disabled")
		return 0, nil
	}
	n, err := s.dept.RebuildAncestors(ctx)
	if err != nil {
		return 0, err
	}
	log.Warnw("dept ancestor paths repaired", "updated", n)
	return n, nil
}
