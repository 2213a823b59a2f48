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
	"gorm.io/gorm/clause"
)

// RoleCheckFunc validates a parent change against a locked snapshot of all roles.
type RoleCheckFunc func(snapshot []model.Role) error

type IRoleRepository interface {
	GetRole(ctx context.Context, id uint64) (*model.Role, error)
	GetRoleByKey(ctx context.Context, roleKey string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListRolesByIds(ctx context.Context, ids []uint64) ([]model.Role, error)
	CreateRole(ctx context.Context, role *model.Role) error
	UpdateRole(ctx context.Context, id uint64, updates map[string]any) error
	DeleteRole(ctx context.Context, id uint64) error
	UpdateParent(ctx context.Context, id uint64, parentId *uint64, check RoleCheckFunc) error
}

type RoleRepo struct {
	database.IDatabase
}

func NewRoleRepo(db database.IDatabase) IRoleRepository {
	return &RoleRepo{
		IDatabase: db,
	}
}

// GetRole 根据ID获取角色
func (r *RoleRepo) GetRole(ctx context.Context, id uint64) (*model.Role, error) {
	var role model.Role
	if err := r.Database().WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// GetRoleByKey 根据角色权限字符串获取角色
func (r *RoleRepo) GetRoleByKey(ctx context.Context, roleKey string) (*model.Role, error) {
	var role model.Role
	if err := r.Database().WithContext(ctx).Where("role_key = ?", roleKey).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles 获取全部未删除角色（含禁用）
func (r *RoleRepo) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.Database().WithContext(ctx).Order("sort ASC, id ASC").Find(&roles).Error
	return roles, err
}

// ListRolesByIds 根据ID列表获取角色
func (r *RoleRepo) ListRolesByIds(ctx context.Context, ids []uint64) ([]model.Role, error) {
	if len(ids) == 0 {
		return []model.Role{}, nil
	}
	var roles []model.Role
	err := r.Database().WithContext(ctx).Where("id IN ?", ids).Order("sort ASC, id ASC").Find(&roles).Error
	return roles, err
}

// CreateRole 创建角色
func (r *RoleRepo) CreateRole(ctx context.Context, role *model.Role) error {
	return r.Database().WithContext(ctx).Create(role).Error
}

// UpdateRole 根据ID更新角色
func (r *RoleRepo) UpdateRole(ctx context.Context, id uint64, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Role{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteRole 软删除角色，并解除其菜单、部门、用户绑定
func (r *RoleRepo) DeleteRole(ctx context.Context, id uint64) error {
	return database.WriteDB(r.Database()).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&model.RoleMenuBinding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&model.RoleDeptBinding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&model.UserRoleBinding{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Role{}).Error
	})
}

// UpdateParent 在事务内锁定角色快照，通过 check 校验后修改父角色
func (r *RoleRepo) UpdateParent(ctx context.Context, id uint64, parentId *uint64, check RoleCheckFunc) error {
	return database.WriteDB(r.Database()).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snapshot []model.Role
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id ASC").Find(&snapshot).Error; err != nil {
			return err
		}
		if err := check(snapshot); err != nil {
			return err
		}
		return tx.Model(&model.Role{}).Where("id = ?", id).Update("parent_id", parentId).Error
	})
}
