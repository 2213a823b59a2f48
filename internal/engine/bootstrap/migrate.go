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


package bootstrap

import (
	"context"

	"github.com/go-arcade/arcade-admin/internal/engine/service"
	"github.com/go-arcade/arcade-admin/pkg/database"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/pkg/errors"
)

// Migrator creates the schema and repairs materialized dept paths.
type Migrator struct {
	db   database.IDatabase
	dept *service.DeptService
}

type InitMigratorFunc func(configPath string) (*Migrator, func(), error)

func NewMigrator(db database.IDatabase, services *service.Services) *Migrator {
	return &Migrator{db: db, dept: services.Dept}
}

func (m *Migrator) Run(ctx context.Context, rebuild bool) error {
	if err := database.AutoMigrate(m.db.Database().WithContext(ctx)); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	log.Infow("schema migrated", "models", len(database.GetRegisteredModels()))

	if !rebuild {
		return nil
	}
	n, err := m.dept.RebuildAncestors(ctx)
	if err != nil {
		return errors.Wrap(err, "rebuild dept ancestors")
	}
	log.Infow("dept ancestors rebuilt", "updated", n)
	return nil
}
