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

package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/pkg/errors"
)

type MenuService struct {
	menuRepo    repo.IMenuRepository
	permissions *PermissionService
}

func NewMenuService(menuRepo repo.IMenuRepository, permissions *PermissionService) *MenuService {
	return &MenuService{menuRepo: menuRepo, permissions: permissions}
}

// CreateMenu 创建菜单
func (ms *MenuService) CreateMenu(ctx context.Context, menu *model.Menu) error {
	switch menu.MenuType {
	case model.MenuTypeDir, model.MenuTypeMenu, model.MenuTypeButton:
	default:
		return errors.Wrapf(ErrInvalidArgument, "menu type %q", menu.MenuType)
	}
	if menu.IsEnabled == 0 {
		menu.IsEnabled = model.Enabled
	}
	return errors.Wrap(ms.menuRepo.CreateMenu(ctx, menu), "create menu")
}

// MenuTreeOfUser returns the navigable menus (buttons excluded) the user may
// reach. Holders of the all-permission wildcard see every menu.
func (ms *MenuService) MenuTreeOfUser(ctx context.Context, userId uint64) ([]*model.Menu, error) {
	set := ms.permissions.PermissionsOfUser(ctx, userId)
	if set.IsEmpty() {
		return []*model.Menu{}, nil
	}
	menus, err := ms.menuRepo.ListMenus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list menus")
	}

	all := set.Has(model.AllPermission)
	visible := make([]model.Menu, 0, len(menus))
	for _, m := range menus {
		if m.MenuType == model.MenuTypeButton {
			continue
		}
		if all || set.HasMenu(m.ID) {
			visible = append(visible, m)
		}
	}
	return BuildMenuTree(visible), nil
}

// BuildMenuTree links menus by parent id, ordered by order then id. Menus
// whose parent is absent become roots.
func BuildMenuTree(menus []model.Menu) []*model.Menu {
	nodes := make(map[uint64]*model.Menu, len(menus))
	for i := range menus {
		m := menus[i]
		m.Children = nil
		nodes[m.ID] = &m
	}
	byOrder := func(a, b *model.Menu) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}

	roots := []*model.Menu{}
	for i := range menus {
		n := nodes[menus[i].ID]
		parent, ok := nodes[n.ParentId]
		if !ok || parent == n {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	for _, n := range nodes {
		slices.SortFunc(n.Children, byOrder)
	}
	slices.SortFunc(roots, byOrder)
	return roots
}
