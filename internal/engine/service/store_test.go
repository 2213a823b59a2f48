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
	"sync"

	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/cache"
	"gorm.io/gorm"
)

// memStore is an in-memory implementation of every repository. Scoped list
// calls return all rows and record the predicate they were given.
type memStore struct {
	mu sync.Mutex

	depts map[uint64]model.Dept
	roles map[uint64]model.Role
	menus map[uint64]model.Menu
	users map[uint64]model.User

	userRoles map[uint64][]uint64
	roleMenus map[uint64][]uint64
	roleDepts map[uint64][]uint64

	nextId uint64

	scopedPredicate datascope.Predicate
	scopedCalls     int
	menuQueries     int
	moveWrites      int
	rolesErr        error
}

func newMemStore() *memStore {
	return &memStore{
		depts:     map[uint64]model.Dept{},
		roles:     map[uint64]model.Role{},
		menus:     map[uint64]model.Menu{},
		users:     map[uint64]model.User{},
		userRoles: map[uint64][]uint64{},
		roleMenus: map[uint64][]uint64{},
		roleDepts: map[uint64][]uint64{},
		nextId:    1000,
	}
}

func (s *memStore) repos() *repo.Repositories {
	return &repo.Repositories{
		Dept:            s,
		Role:            s,
		Menu:            s,
		User:            s,
		UserRoleBinding: s,
		RoleMenuBinding: s,
		RoleDeptBinding: s,
	}
}

func sortedValues[K cmp.Ordered, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (s *memStore) id() uint64 {
	s.nextId++
	return s.nextId
}

// seeding helpers

func (s *memStore) addDept(id, parent uint64, ancestors string) {
	s.depts[id] = model.Dept{BaseModel: model.BaseModel{ID: id}, ParentId: parent, Ancestors: ancestors, Name: "d", IsEnabled: model.Enabled}
}

func (s *memStore) addRole(r model.Role) {
	if r.IsEnabled == 0 {
		r.IsEnabled = model.Enabled
	}
	if r.DataScope == "" {
		r.DataScope = datascope.ScopeAll
	}
	s.roles[r.ID] = r
}

func (s *memStore) addMenu(id uint64, perms string) {
	s.menus[id] = model.Menu{BaseModel: model.BaseModel{ID: id}, MenuType: model.MenuTypeMenu, Perms: perms, IsEnabled: model.Enabled}
}

func (s *memStore) addUser(id uint64, dept *uint64, roleIds ...uint64) {
	s.users[id] = model.User{BaseModel: model.BaseModel{ID: id}, Username: "u", DeptId: dept, IsEnabled: model.Enabled}
	s.userRoles[id] = roleIds
}

// depts

func (s *memStore) GetDept(_ context.Context, id uint64) (*model.Dept, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.depts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (s *memStore) ListDepts(_ context.Context) ([]model.Dept, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.depts), nil
}

func (s *memStore) ListDeptsScoped(ctx context.Context) ([]model.Dept, error) {
	s.mu.Lock()
	s.scopedPredicate = datascope.PredicateFromContext(ctx)
	s.scopedCalls++
	s.mu.Unlock()
	return s.ListDepts(ctx)
}

func (s *memStore) CountChildren(_ context.Context, id uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, d := range s.depts {
		if d.ParentId == id {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateDept(_ context.Context, d *model.Dept) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	s.depts[d.ID] = *d
	return nil
}

func (s *memStore) UpdateDept(_ context.Context, id uint64, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.depts[id]
	for k, v := range updates {
		switch k {
		case "name":
			d.Name = v.(string)
		case "order_num":
			d.OrderNum = v.(int)
		case "is_enabled":
			d.IsEnabled = v.(int)
		case "leader":
			d.Leader = v.(string)
		}
	}
	s.depts[id] = d
	return nil
}

func (s *memStore) DeleteDept(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.depts, id)
	return nil
}

func (s *memStore) MoveDept(_ context.Context, plan repo.DeptPlanFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	updates, err := plan(sortedValues(s.depts))
	if err != nil {
		return err
	}
	for _, u := range updates {
		d := s.depts[u.ID]
		d.ParentId, d.Ancestors = u.ParentId, u.Ancestors
		s.depts[u.ID] = d
		s.moveWrites++
	}
	return nil
}

// roles

func (s *memStore) GetRole(_ context.Context, id uint64) (*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (s *memStore) GetRoleByKey(_ context.Context, key string) (*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.RoleKey == key {
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) ListRoles(_ context.Context) ([]model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	return sortedValues(s.roles), nil
}

func (s *memStore) ListRolesByIds(_ context.Context, ids []uint64) ([]model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	var out []model.Role
	for _, id := range ids {
		if r, ok := s.roles[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) CreateRole(_ context.Context, r *model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.roles[r.ID] = *r
	return nil
}

func (s *memStore) UpdateRole(_ context.Context, id uint64, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.roles[id]
	for k, v := range updates {
		switch k {
		case "name":
			r.Name = v.(string)
		case "inherit_enabled":
			r.InheritEnabled = v.(bool)
		case "data_scope":
			r.DataScope = v.(datascope.DataScope)
		case "sort":
			r.Sort = v.(int)
		case "is_enabled":
			r.IsEnabled = v.(int)
		case "remark":
			r.Remark = v.(string)
		}
	}
	s.roles[id] = r
	return nil
}

func (s *memStore) DeleteRole(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, id)
	delete(s.roleMenus, id)
	delete(s.roleDepts, id)
	for uid, ids := range s.userRoles {
		s.userRoles[uid] = slices.DeleteFunc(ids, func(r uint64) bool { return r == id })
	}
	return nil
}

func (s *memStore) UpdateParent(_ context.Context, id uint64, parentId *uint64, check repo.RoleCheckFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := check(sortedValues(s.roles)); err != nil {
		return err
	}
	r := s.roles[id]
	r.ParentId = parentId
	s.roles[id] = r
	return nil
}

// menus

func (s *memStore) ListMenus(_ context.Context) ([]model.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.menus), nil
}

func (s *memStore) ListMenusByRoleIds(_ context.Context, roleIds []uint64) ([]model.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuQueries++
	seen := map[uint64]bool{}
	var out []model.Menu
	for _, rid := range roleIds {
		for _, mid := range s.roleMenus[rid] {
			if m, ok := s.menus[mid]; ok && !seen[mid] {
				seen[mid] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (s *memStore) CreateMenu(_ context.Context, m *model.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	s.menus[m.ID] = *m
	return nil
}

// users

func (s *memStore) GetUser(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (s *memStore) ListUsersScoped(ctx context.Context, _ *model.ListUsersReq) ([]model.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopedPredicate = datascope.PredicateFromContext(ctx)
	s.scopedCalls++
	users := sortedValues(s.users)
	return users, int64(len(users)), nil
}

func (s *memStore) CountUsersInDept(_ context.Context, deptId uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.DeptId != nil && *u.DeptId == deptId {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	s.users[u.ID] = *u
	return nil
}

// bindings

func (s *memStore) ListRoleIdsByUser(_ context.Context, userId uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.userRoles[userId]), nil
}

func (s *memStore) ReplaceUserRoles(_ context.Context, userId uint64, roleIds []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userRoles[userId] = slices.Clone(roleIds)
	return nil
}

func (s *memStore) ListMenuIdsByRole(_ context.Context, roleId uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.roleMenus[roleId]), nil
}

func (s *memStore) ReplaceRoleMenus(_ context.Context, roleId uint64, menuIds []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roleMenus[roleId] = slices.Clone(menuIds)
	return nil
}

func (s *memStore) ListDeptIdsByRole(_ context.Context, roleId uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.roleDepts[roleId]), nil
}

func (s *memStore) ReplaceRoleDepts(_ context.Context, roleId uint64, deptIds []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roleDepts[roleId] = slices.Clone(deptIds)
	return nil
}

// fixtures

func testPermissionConfig() config.PermissionConfig {
	return config.PermissionConfig{
		SuperAdminRoleKeys: []string{"admin"},
		MergeStrategy:      string(model.MergeUnion),
		CacheTTL:           60,
	}
}

func newTestServices(s *memStore, scopeConf config.DataScopeConfig) *Services {
	if scopeConf.FailurePolicy == "" {
		scopeConf.FailurePolicy = string(datascope.FailClosed)
	}
	if scopeConf.MultiRolePolicy == "" {
		scopeConf.MultiRolePolicy = string(datascope.MultiRoleUnion)
	}
	return NewServices(s.repos(), cache.NewLocalCache(1<<20), testPermissionConfig(), scopeConf)
}

func ptr[T any](v T) *T {
	return &v
}

func as(userId uint64, dept *uint64) context.Context {
	return datascope.WithIdentity(context.Background(), datascope.Identity{UserId: userId, DeptId: dept})
}
