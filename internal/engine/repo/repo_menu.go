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
)

type IMenuRepository interface {
	ListMenus(ctx context.Context) ([]model.Menu, error)
	ListMenusByRoleIds(ctx context.Context, roleIds []uint64) ([]model.Menu, error)
	CreateMenu(ctx context.Context, menu *model.Menu) error
}

type MenuRepo struct {
	database.IDatabase
}

func NewMenuRepo(db database.IDatabase) IMenuRepository {
	return &MenuRepo{
		IDatabase: db,
	}
}

// ListMenus 获取所有启用的菜单
func (r *MenuRepo) ListMenus(ctx context.Context) ([]model.Menu, error) {
	var menus []model.Menu
	err := r.Database().WithContext(ctx).
		Where("is_enabled = ?", model.Enabled).
		Order("parent_id ASC, `order` ASC, id ASC").
		Find(&menus).Error
	return menus, err
}

// ListMenusByRoleIds 获取角色绑定的启用菜单
func (r *MenuRepo) ListMenusByRoleIds(ctx context.Context, roleIds []uint64) ([]model.Menu, error) {
	if len(roleIds) == 0 {
		return []model.Menu{}, nil
	}
	var menus []model.Menu
	err := r.Database().WithContext(ctx).
		Table("t_menu AS m").
		Distinct("m.*").
		Joins("JOIN t_role_menu_binding AS b ON b.menu_id = m.id").
		Where("b.role_id IN ? AND m.is_enabled = ?", roleIds, model.Enabled).
		Order("m.parent_id ASC, m.`order` ASC, m.id ASC").
		Find(&menus).Error
	return menus, err
}

// CreateMenu 创建菜单
func (r *MenuRepo) CreateMenu(ctx context.Context, menu *model.Menu) error {
	return r.Database().WithContext(ctx).Create(menu).Error
}
