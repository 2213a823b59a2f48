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
	"context"
	"strings"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/pkg/errors"
)

type RoleService struct {
	roleRepo     repo.IRoleRepository
	roleMenuRepo repo.IRoleMenuBindingRepository
	roleDeptRepo repo.IRoleDeptBindingRepository
	permissions  *PermissionService
}

func NewRoleService(
	roleRepo repo.IRoleRepository,
	roleMenuRepo repo.IRoleMenuBindingRepository,
	roleDeptRepo repo.IRoleDeptBindingRepository,
	permissions *PermissionService,
) *RoleService {
	return &RoleService{
		roleRepo:     roleRepo,
		roleMenuRepo: roleMenuRepo,
		roleDeptRepo: roleDeptRepo,
		permissions:  permissions,
	}
}

// GetRole 获取角色
func (rs *RoleService) GetRole(ctx context.Context, id uint64) (*model.Role, error) {
	role, err := rs.roleRepo.GetRole(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoleNotFound
		}
		return nil, errors.Wrapf(err, "get role %d", id)
	}
	return role, nil
}

// ListRoles 获取所有角色
func (rs *RoleService) ListRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := rs.roleRepo.ListRoles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list roles")
	}
	return roles, nil
}

// CreateRole 创建角色
func (rs *RoleService) CreateRole(ctx context.Context, req *model.CreateRoleReq, createBy uint64) (*model.Role, error) {
	name, key := strings.TrimSpace(req.Name), strings.TrimSpace(req.RoleKey)
	if name == "" || key == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "role name and key are required")
	}

	scope := req.DataScope
	if scope == "" {
		scope = datascope.ScopeAll
	}
	if !scope.Valid() {
		return nil, ErrInvalidDataScope
	}

	existing, err := rs.roleRepo.GetRoleByKey(ctx, key)
	if err == nil && existing != nil {
		return nil, ErrRoleKeyExists
	}
	if err != nil && !isNotFound(err) {
		return nil, errors.Wrapf(err, "get role by key %s", key)
	}

	// a new role has no descendants, so any existing parent is acyclic
	if req.ParentId != nil {
		if _, err := rs.roleRepo.GetRole(ctx, *req.ParentId); err != nil {
			if isNotFound(err) {
				return nil, ErrParentRoleNotFound
			}
			return nil, errors.Wrapf(err, "get parent role %d", *req.ParentId)
		}
	}

	role := &model.Role{
		Name:           name,
		RoleKey:        key,
		ParentId:       req.ParentId,
		InheritEnabled: req.InheritEnabled,
		DataScope:      scope,
		Sort:           req.Sort,
		IsEnabled:      model.Enabled,
		Remark:         req.Remark,
		CreateBy:       createBy,
	}
	if err := rs.roleRepo.CreateRole(ctx, role); err != nil {
		log.Errorw("failed to create role", "roleKey", key, "error", err)
		return nil, errors.Wrap(err, "create role")
	}

	log.Infow("role created", "roleId", role.ID, "roleKey", key)
	return role, nil
}

// UpdateRole 更新角色属性，父角色通过 AssignParent 修改
func (rs *RoleService) UpdateRole(ctx context.Context, id uint64, req *model.UpdateRoleReq) error {
	if _, err := rs.GetRole(ctx, id); err != nil {
		return err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return errors.Wrap(ErrInvalidArgument, "role name is required")
		}
		updates["name"] = name
	}
	if req.InheritEnabled != nil {
		updates["inherit_enabled"] = *req.InheritEnabled
	}
	if req.DataScope != nil {
		if !req.DataScope.Valid() {
			return ErrInvalidDataScope
		}
		updates["data_scope"] = *req.DataScope
	}
	if req.Sort != nil {
		updates["sort"] = *req.Sort
	}
	if req.IsEnabled != nil {
		updates["is_enabled"] = *req.IsEnabled
	}
	if req.Remark != nil {
		updates["remark"] = *req.Remark
	}
	if len(updates) == 0 {
		return nil
	}

	if err := rs.roleRepo.UpdateRole(ctx, id, updates); err != nil {
		log.Errorw("failed to update role", "roleId", id, "error", err)
		return errors.Wrapf(err, "update role %d", id)
	}
	return nil
}

// DeleteRole 删除角色及其绑定关系，存在子角色时拒绝
func (rs *RoleService) DeleteRole(ctx context.Context, id uint64) error {
	roles, err := rs.ListRoles(ctx)
	if err != nil {
		return err
	}
	x := newRoleIndex(roles)
	if _, ok := x.get(id); !ok {
		return ErrRoleNotFound
	}
	if len(x.children[id]) > 0 {
		return ErrRoleHasChildren
	}

	if err := rs.roleRepo.DeleteRole(ctx, id); err != nil {
		log.Errorw("failed to delete role", "roleId", id, "error", err)
		return errors.Wrapf(err, "delete role %d", id)
	}
	rs.permissions.InvalidateRole(ctx, id)
	log.Infow("role deleted", "roleId", id)
	return nil
}

// AssignParent sets the parent of id; nil makes it top-level. The cycle check
// and the write happen against one locked snapshot.
func (rs *RoleService) AssignParent(ctx context.Context, id uint64, parentId *uint64) error {
	err := rs.roleRepo.UpdateParent(ctx, id, parentId, func(snapshot []model.Role) error {
		x := newRoleIndex(snapshot)
		if _, ok := x.get(id); !ok {
			return ErrRoleNotFound
		}
		if parentId == nil {
			return nil
		}
		if _, ok := x.get(*parentId); !ok {
			return ErrParentRoleNotFound
		}
		if x.wouldCreateCycle(id, *parentId) {
			return ErrRoleCycle
		}
		return nil
	})
	if err != nil {
		if isRejection(err) {
			return err
		}
		log.Errorw("failed to assign parent role", "roleId", id, "error", err)
		return errors.Wrapf(err, "assign parent of role %d", id)
	}
	log.Infow("role parent assigned", "roleId", id, "parentId", parentId)
	return nil
}

// Children 直接子角色，按 sort、id 排序
func (rs *RoleService) Children(ctx context.Context, id uint64) ([]model.Role, error) {
	x, err := rs.index(ctx, id)
	if err != nil {
		return nil, err
	}
	return x.childrenOf(id), nil
}

// Ancestors returns every role above id, ordered by sort then id.
func (rs *RoleService) Ancestors(ctx context.Context, id uint64) ([]uint64, error) {
	x, err := rs.index(ctx, id)
	if err != nil {
		return nil, err
	}
	return x.sorted(x.ancestors(id)), nil
}

// Descendants returns every role below id, ordered by sort then id.
func (rs *RoleService) Descendants(ctx context.Context, id uint64) ([]uint64, error) {
	x, err := rs.index(ctx, id)
	if err != nil {
		return nil, err
	}
	return x.sorted(x.descendants(id)), nil
}

func (rs *RoleService) Depth(ctx context.Context, id uint64) (int, error) {
	x, err := rs.index(ctx, id)
	if err != nil {
		return 0, err
	}
	return x.depth(id), nil
}

// WouldCreateCycle reports whether parentId may not become the parent of id.
func (rs *RoleService) WouldCreateCycle(ctx context.Context, id, parentId uint64) (bool, error) {
	x, err := rs.index(ctx, id)
	if err != nil {
		return false, err
	}
	return x.wouldCreateCycle(id, parentId), nil
}

func (rs *RoleService) index(ctx context.Context, id uint64) (*roleIndex, error) {
	roles, err := rs.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	x := newRoleIndex(roles)
	if _, ok := x.get(id); !ok {
		return nil, ErrRoleNotFound
	}
	return x, nil
}

// SetRoleMenus 替换角色菜单绑定并使权限缓存失效
func (rs *RoleService) SetRoleMenus(ctx context.Context, roleId uint64, menuIds []uint64) error {
	if _, err := rs.GetRole(ctx, roleId); err != nil {
		return err
	}
	if err := rs.roleMenuRepo.ReplaceRoleMenus(ctx, roleId, menuIds); err != nil {
		log.Errorw("failed to bind role menus", "roleId", roleId, "error", err)
		return errors.Wrapf(err, "bind menus of role %d", roleId)
	}
	rs.permissions.InvalidateRole(ctx, roleId)
	return nil
}

func (rs *RoleService) RoleMenuIds(ctx context.Context, roleId uint64) ([]uint64, error) {
	ids, err := rs.roleMenuRepo.ListMenuIdsByRole(ctx, roleId)
	if err != nil {
		return nil, errors.Wrapf(err, "list menus of role %d", roleId)
	}
	return ids, nil
}

// SetRoleDepts 替换 CUSTOM 数据范围使用的部门列表
func (rs *RoleService) SetRoleDepts(ctx context.Context, roleId uint64, deptIds []uint64) error {
	if _, err := rs.GetRole(ctx, roleId); err != nil {
		return err
	}
	if err := rs.roleDeptRepo.ReplaceRoleDepts(ctx, roleId, deptIds); err != nil {
		log.Errorw("failed to bind role depts", "roleId", roleId, "error", err)
		return errors.Wrapf(err, "bind depts of role %d", roleId)
	}
	return nil
}

func (rs *RoleService) RoleDeptIds(ctx context.Context, roleId uint64) ([]uint64, error) {
	ids, err := rs.roleDeptRepo.ListDeptIdsByRole(ctx, roleId)
	if err != nil {
		return nil, errors.Wrapf(err, "list depts of role %d", roleId)
	}
	return ids, nil
}
