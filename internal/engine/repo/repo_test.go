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

package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (database.IDatabase, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), database.GormConfig(false, 0))
	require.NoError(t, err)
	return database.NewGormDB(db), mock
}

// scoped runs fn inside an intercepted call that publishes pred.
func scoped(t *testing.T, pred datascope.Predicate, fn func(ctx context.Context)) {
	t.Helper()
	reg := datascope.NewRegistry()
	reg.MustRegister("test")
	src := datascope.ScopeSourceFunc(func(context.Context, datascope.Identity, datascope.Options) (datascope.Predicate, error) {
		return pred, nil
	})
	ic := datascope.NewInterceptor(reg, src, datascope.FailClosed)
	ctx := datascope.WithIdentity(context.Background(), datascope.Identity{UserId: 7})
	require.NoError(t, ic.Run(ctx, "test", func(ctx context.Context) error {
		fn(ctx)
		return nil
	}))
}

func TestDeptRepo_GetDept(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeptRepo(db)

	rows := sqlmock.NewRows([]string{"id", "parent_id", "ancestors", "name", "is_enabled"}).
		AddRow(2, 1, "0,1", "研发部", 1)
	mock.ExpectQuery("SELECT \\* FROM `t_dept` WHERE id = \\?.*`t_dept`.`deleted_at` IS NULL").
		WillReturnRows(rows)

	dept, err := repo.GetDept(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), dept.ID)
	assert.Equal(t, uint64(1), dept.ParentId)
	assert.Equal(t, "0,1", dept.Ancestors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeptRepo_GetDept_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeptRepo(db)

	mock.ExpectQuery("SELECT \\* FROM `t_dept`").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	dept, err := repo.GetDept(context.Background(), 99)
	assert.Nil(t, dept)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeptRepo_ListDeptsScoped(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeptRepo(db)

	mock.ExpectQuery("SELECT \\* FROM t_dept AS t WHERE .*t.dept_id IN \\(\\?,\\?\\).*`t`.`deleted_at` IS NULL").
		WithArgs(uint64(100), uint64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id", "ancestors"}).AddRow(100, 1, "0,1"))

	scoped(t, datascope.In("t.dept_id", []uint64{100, 101}), func(ctx context.Context) {
		depts, err := repo.ListDeptsScoped(ctx)
		require.NoError(t, err)
		assert.Len(t, depts, 1)
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeptRepo_ListDeptsScoped_MatchNone(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeptRepo(db)

	mock.ExpectQuery("SELECT \\* FROM t_dept AS t WHERE 1 = 0").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	scoped(t, datascope.MatchNone, func(ctx context.Context) {
		depts, err := repo.ListDeptsScoped(ctx)
		require.NoError(t, err)
		assert.Empty(t, depts)
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeptRepo_MoveDept(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeptRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `t_dept` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id", "ancestors"}).
			AddRow(1, 0, "0").
			AddRow(2, 1, "0,1").
			AddRow(3, 0, "0"))
	mock.ExpectExec("UPDATE `t_dept` SET .*`ancestors`=\\?.*`parent_id`=\\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen []model.Dept
	err := repo.MoveDept(context.Background(), func(snapshot []model.Dept) ([]DeptPathUpdate, error) {
		seen = snapshot
		return []DeptPathUpdate{{ID: 2, ParentId: 3, Ancestors: "0,3"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 3)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeptRepo_MoveDept_PlanRejects(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeptRepo(db)
	rejected := errors.New("cycle")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `t_dept` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id", "ancestors"}).AddRow(1, 0, "0"))
	mock.ExpectRollback()

	err := repo.MoveDept(context.Background(), func([]model.Dept) ([]DeptPathUpdate, error) {
		return nil, rejected
	})
	assert.ErrorIs(t, err, rejected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepo_UpdateParent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoleRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `t_role` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role_key", "parent_id"}).
			AddRow(1, "admin", nil).
			AddRow(2, "manager", nil))
	mock.ExpectExec("UPDATE `t_role` SET `parent_id`=\\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	parent := uint64(1)
	err := repo.UpdateParent(context.Background(), 2, &parent, func(snapshot []model.Role) error {
		assert.Len(t, snapshot, 2)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepo_UpdateParent_CheckRejects(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoleRepo(db)
	rejected := errors.New("cycle")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `t_role` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	parent := uint64(2)
	err := repo.UpdateParent(context.Background(), 1, &parent, func([]model.Role) error { return rejected })
	assert.ErrorIs(t, err, rejected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepo_DeleteRole(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoleRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `t_role_menu_binding` WHERE role_id = \\?").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `t_role_dept_binding` WHERE role_id = \\?").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `t_user_role_binding` WHERE role_id = \\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `t_role` SET `deleted_at`=\\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteRole(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleDeptBindingRepo_Replace(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoleDeptBindingRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `t_role_dept_binding` WHERE role_id = \\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `t_role_dept_binding`").WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceRoleDepts(context.Background(), 3, []uint64{200, 201, 200}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleMenuBindingRepo_ReplaceWithEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoleMenuBindingRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `t_role_menu_binding` WHERE role_id = \\?").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceRoleMenus(context.Background(), 3, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRoleBindingRepo_ListRoleIdsByUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRoleBindingRepo(db)

	mock.ExpectQuery("SELECT `role_id` FROM `t_user_role_binding` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(1).AddRow(2))

	ids, err := repo.ListRoleIdsByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuRepo_ListMenusByRoleIds(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMenuRepo(db)

	mock.ExpectQuery("SELECT DISTINCT m.\\* FROM t_menu AS m JOIN t_role_menu_binding AS b ON b.menu_id = m.id WHERE .*b.role_id IN \\(\\?\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "perms"}).AddRow(10, "system:user:list"))

	menus, err := repo.ListMenusByRoleIds(context.Background(), []uint64{2})
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, "system:user:list", menus[0].Perms)
	require.NoError(t, mock.ExpectationsWereMet())

	empty, err := repo.ListMenusByRoleIds(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRepo_ListUsersScoped(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM t_user AS t WHERE .*t.create_by = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM t_user AS t WHERE .*t.create_by = \\?.*LIMIT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(9, "alice"))

	scoped(t, datascope.Eq("t.create_by", uint64(7)), func(ctx context.Context) {
		users, total, err := repo.ListUsersScoped(ctx, &model.ListUsersReq{PageNum: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0].Username)
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "alice", escapeLike("alice"))
	assert.Equal(t, `50\%\_off`, escapeLike("50%_off"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestUserRepo_ListUsersScoped_UsernameMatchesLiterally(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM t_user AS t WHERE t.username LIKE \\?").
		WithArgs(`%a\_b\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT \\* FROM t_user AS t WHERE t.username LIKE \\?.*LIMIT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	users, total, err := repo.ListUsersScoped(context.Background(), &model.ListUsersReq{Username: "a_b%", PageNum: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}
