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

package datascope

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type row struct {
	Id     uint64
	DeptId uint64
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestApply(t *testing.T) {
	db := dryRunDB(t)
	src := &stubSource{pred: In("t.dept_id", []uint64{100, 101})}
	ic := newTestInterceptor(t, src, FailClosed)

	var stmt *gorm.Statement
	err := ic.Run(caller(7, nil), "user_list", func(ctx context.Context) error {
		var rows []row
		stmt = db.Table("t_user AS t").Scopes(Apply(ctx)).Find(&rows).Statement
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL.String(), "t.dept_id IN (?,?)")
	assert.Equal(t, []any{uint64(100), uint64(101)}, stmt.Vars)
}

func TestApply_NoScope(t *testing.T) {
	db := dryRunDB(t)
	var rows []row
	stmt := db.Table("t_user AS t").Scopes(Apply(context.Background())).Find(&rows).Statement
	assert.NotContains(t, stmt.SQL.String(), "WHERE")
}
