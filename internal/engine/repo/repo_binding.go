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

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/pkg/database"
	"gorm.io/gorm"
)

type IUserRoleBindingRepository interface {
	ListRoleIdsByUser(ctx context.Context, userId uint64) ([]uint64, error)
	ReplaceUserRoles(ctx context.Context, userId uint64, roleIds []uint64) error
}

type IRoleMenuBindingRepository interface {
	ListMenuIdsByRole(ctx context.Context, roleId uint64) ([]uint64, error)
	ReplaceRoleMenus(ctx context.Context, roleId uint64, menuIds []uint64) error
}

type IRoleDeptBindingRepository interface {
	ListDeptIdsByRole(ctx context.Context, roleId uint64) ([]uint64, error)
	ReplaceRoleDepts(ctx context.Context, roleId uint64, deptIds []uint64) error
}

type UserRoleBindingRepo struct {
	database.IDatabase
}

func NewUserRoleBindingRepo(db database.IDatabase) IUserRoleBindingRepository {
	return &UserRoleBindingRepo{IDatabase: db}
}

// ListRoleIdsByUser 获取用户绑定的角色ID
func (r *UserRoleBindingRepo) ListRoleIdsByUser(ctx context.Context, userId uint64) ([]uint64, error) {
	var ids []uint64
	err := r.Database().WithContext(ctx).Model(&model.UserRoleBinding{}).
		Where("user_id = ?", userId).Order("role_id ASC").Pluck("role_id", &ids).Error
	return ids, err
}

// ReplaceUserRoles 全量替换用户角色
func (r *UserRoleBindingRepo) ReplaceUserRoles(ctx context.Context, userId uint64, roleIds []uint64) error {
	rows := make([]model.UserRoleBinding, 0, len(roleIds))
	for _, id := range dedupe(roleIds) {
		rows = append(rows, model.UserRoleBinding{UserId: userId, RoleId: id})
	}
	return replaceBindings(ctx, r.Database(), &model.UserRoleBinding{}, "user_id", userId, rows)
}

type RoleMenuBindingRepo struct {
	database.IDatabase
}

func NewRoleMenuBindingRepo(db database.IDatabase) IRoleMenuBindingRepository {
	return &RoleMenuBindingRepo{IDatabase: db}
}

// ListMenuIdsByRole 获取角色绑定的菜单ID
func (r *RoleMenuBindingRepo) ListMenuIdsByRole(ctx context.Context, roleId uint64) ([]uint64, error) {
	var ids []uint64
	err := r.Database().WithContext(ctx).Model(&model.RoleMenuBinding{}).
		Where("role_id = ?", roleId).Order("menu_id ASC").Pluck("menu_id", &ids).Error
	return ids, err
}

// ReplaceRoleMenus 全量替换角色菜单
func (r *RoleMenuBindingRepo) ReplaceRoleMenus(ctx context.Context, roleId uint64, menuIds []uint64) error {
	rows := make([]model.RoleMenuBinding, 0, len(menuIds))
	for _, id := range dedupe(menuIds) {
		rows = append(rows, model.RoleMenuBinding{RoleId: roleId, MenuId: id})
	}
	return replaceBindings(ctx, r.Database(), &model.RoleMenuBinding{}, "role_id", roleId, rows)
}

type RoleDeptBindingRepo struct {
	database.IDatabase
}

func NewRoleDeptBindingRepo(db database.IDatabase) IRoleDeptBindingRepository {
	return &RoleDeptBindingRepo{IDatabase: db}
}

// ListDeptIdsByRole 获取角色自定义数据范围的部门ID
func (r *RoleDeptBindingRepo) ListDeptIdsByRole(ctx context.Context, roleId uint64) ([]uint64, error) {
	var ids []uint64
	err := r.Database().WithContext(ctx).Model(&model.RoleDeptBinding{}).
		Where("role_id = ?", roleId).Order("dept_id ASC").Pluck("dept_id", &ids).Error
	return ids, err
}

// ReplaceRoleDepts 全量替换角色自定义数据范围
func (r *RoleDeptBindingRepo) ReplaceRoleDepts(ctx context.Context, roleId uint64, deptIds []uint64) error {
	rows := make([]model.RoleDeptBinding, 0, len(deptIds))
	for _, id := range dedupe(deptIds) {
		rows = append(rows, model.RoleDeptBinding{RoleId: roleId, DeptId: id})
	}
	return replaceBindings(ctx, r.Database(), &model.RoleDeptBinding{}, "role_id", roleId, rows)
}

// replaceBindings deletes every row keyed by owner and inserts rows, atomically.
func replaceBindings[T any](ctx context.Context, db *gorm.DB, table *T, ownerColumn string, owner uint64, rows []T) error {
	return database.WriteDB(db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(ownerColumn+" = ?", owner).Delete(table).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
