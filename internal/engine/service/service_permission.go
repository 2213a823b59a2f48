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
	"fmt"

	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/go-arcade/arcade-admin/pkg/cache"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/go-arcade/arcade-admin/pkg/metrics"
	"github.com/go-arcade/arcade-admin/pkg/trace"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const rolePermissionKeyPrefix = "arcade:permission:role:"

// PermissionService computes effective permission sets. Any failure while
// computing a user's set resolves to the empty set.
type PermissionService struct {
	subjects  subjectLoader
	menuRepo  repo.IMenuRepository
	conf      config.PermissionConfig
	roleQuery *cache.CachedQuery[model.PermissionSet]
}

func NewPermissionService(
	userRepo repo.IUserRepository,
	roleRepo repo.IRoleRepository,
	menuRepo repo.IMenuRepository,
	userRoleRepo repo.IUserRoleBindingRepository,
	c cache.ICache,
	conf config.PermissionConfig,
) *PermissionService {
	ps := &PermissionService{
		subjects: subjectLoader{userRepo: userRepo, roleRepo: roleRepo, userRoleRepo: userRoleRepo},
		menuRepo: menuRepo,
		conf:     conf,
	}
	if conf.CacheTTL == 0 {
		c = nil
	}
	ps.roleQuery = cache.NewCachedQuery(
		c,
		func(params ...any) string { return fmt.Sprintf("%s%v", rolePermissionKeyPrefix, params[0]) },
		ps.loadRoleGrants,
		cache.WithTTL[model.PermissionSet](conf.PermissionCacheTTL()),
		cache.WithLogPrefix[model.PermissionSet]("[RolePermission]"),
	)
	return ps
}

func (ps *PermissionService) loadRoleGrants(ctx context.Context, params ...any) (model.PermissionSet, error) {
	roleId := params[0].(uint64)
	menus, err := ps.menuRepo.ListMenusByRoleIds(ctx, []uint64{roleId})
	if err != nil {
		return model.PermissionSet{}, errors.Wrapf(err, "list menus of role %d", roleId)
	}
	return model.FromMenus(menus), nil
}

// PermissionsOfRole returns the grants bound directly to roleId.
func (ps *PermissionService) PermissionsOfRole(ctx context.Context, roleId uint64) (model.PermissionSet, error) {
	return ps.roleQuery.Get(ctx, roleId)
}

// InvalidateRole drops the cached grants of roleId.
func (ps *PermissionService) InvalidateRole(ctx context.Context, roleId uint64) {
	_ = ps.roleQuery.Invalidate(ctx, roleId)
}

// effectiveOfRole is the role's own grants plus those of every ancestor it
// inherits from.
func (ps *PermissionService) effectiveOfRole(ctx context.Context, x *roleIndex, roleId uint64) (model.PermissionSet, error) {
	set, err := ps.PermissionsOfRole(ctx, roleId)
	if err != nil {
		return model.PermissionSet{}, err
	}
	for _, aid := range x.inheritedFrom(roleId) {
		inherited, err := ps.PermissionsOfRole(ctx, aid)
		if err != nil {
			return model.PermissionSet{}, err
		}
		set = set.Union(inherited)
	}
	return set, nil
}

// EffectivePermissionsOfRole resolves inheritance for a single role.
func (ps *PermissionService) EffectivePermissionsOfRole(ctx context.Context, roleId uint64, roles []model.Role) (model.PermissionSet, error) {
	x := newRoleIndex(roles)
	if _, ok := x.get(roleId); !ok {
		return model.PermissionSet{}, ErrRoleNotFound
	}
	return ps.effectiveOfRole(ctx, x, roleId)
}

// PermissionsOfUser 计算用户的有效权限集合，失败时返回空集合
func (ps *PermissionService) PermissionsOfUser(ctx context.Context, userId uint64) model.PermissionSet {
	ctx, span := trace.Start(ctx, "permission.PermissionsOfUser", attribute.Int64("user.id", int64(userId)))
	s, err := ps.subjects.load(ctx, userId)
	if err != nil {
		trace.End(span, err)
		ps.loadFailed(ctx, userId, err)
		return model.PermissionSet{}
	}
	set, err := ps.permissionsOf(ctx, s)
	trace.End(span, err)
	if err != nil {
		ps.loadFailed(ctx, userId, err)
		return model.PermissionSet{}
	}
	return set
}

func (ps *PermissionService) permissionsOf(ctx context.Context, s *subject) (model.PermissionSet, error) {
	sets := make([]model.PermissionSet, 0, len(s.held))
	for _, r := range s.held {
		set, err := ps.effectiveOfRole(ctx, s.index, r.ID)
		if err != nil {
			return model.PermissionSet{}, err
		}
		sets = append(sets, set)
	}

	merged, err := MergeRolePermissions(sets, model.MergeStrategy(ps.conf.MergeStrategy))
	if err != nil {
		return model.PermissionSet{}, err
	}
	if s.isSuperAdmin(ps.conf.SuperAdminRoleKeys) {
		merged = merged.Union(model.NewPermissionSet([]string{model.AllPermission}, nil))
	}
	return merged, nil
}

func (ps *PermissionService) loadFailed(ctx context.Context, userId uint64, err error) {
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUserDisabled) {
		log.WithContext(ctx).Debugw("no permissions for inactive user", "userId", userId, "reason", err)
		return
	}
	metrics.RecordPermissionLoadError()
	log.WithContext(ctx).Errorw("failed to compute permissions, resolving to empty set", "userId", userId, "error", err)
}

// HasPermission 判断用户是否拥有权限标识
func (ps *PermissionService) HasPermission(ctx context.Context, userId uint64, perm string) bool {
	granted := ps.PermissionsOfUser(ctx, userId).Has(perm)
	metrics.RecordPermissionCheck(granted)
	return granted
}

// HasMenu 判断用户是否可访问菜单
func (ps *PermissionService) HasMenu(ctx context.Context, userId, menuId uint64) bool {
	return ps.PermissionsOfUser(ctx, userId).HasMenu(menuId)
}

// HasAnyPermission reports whether at least one of perms is granted.
func (ps *PermissionService) HasAnyPermission(ctx context.Context, userId uint64, perms ...string) bool {
	set := ps.PermissionsOfUser(ctx, userId)
	for _, p := range perms {
		if set.Has(p) {
			metrics.RecordPermissionCheck(true)
			return true
		}
	}
	metrics.RecordPermissionCheck(false)
	return false
}

// HasAllPermissions reports whether every one of perms is granted. An empty
// list is trivially satisfied.
func (ps *PermissionService) HasAllPermissions(ctx context.Context, userId uint64, perms ...string) bool {
	set := ps.PermissionsOfUser(ctx, userId)
	for _, p := range perms {
		if !set.Has(p) {
			metrics.RecordPermissionCheck(false)
			return false
		}
	}
	metrics.RecordPermissionCheck(true)
	return true
}

// MergeRolePermissions combines per-role sets. Intersection of no sets is
// the empty set.
func MergeRolePermissions(sets []model.PermissionSet, strategy model.MergeStrategy) (model.PermissionSet, error) {
	switch strategy {
	case model.MergeUnion, "":
		var out model.PermissionSet
		for _, s := range sets {
			out = out.Union(s)
		}
		return out, nil
	case model.MergeIntersection:
		if len(sets) == 0 {
			return model.PermissionSet{}, nil
		}
		out := sets[0]
		for _, s := range sets[1:] {
			out = out.Intersect(s)
		}
		return out, nil
	default:
		return model.PermissionSet{}, errors.Wrapf(ErrUnknownMergeStrategy, "%q", strategy)
	}
}
