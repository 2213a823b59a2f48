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
	"testing"

	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainStore() *memStore {
	s := newMemStore()
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 1}, RoleKey: "a"})
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 2}, RoleKey: "b", ParentId: ptr[uint64](1)})
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 3}, RoleKey: "c", ParentId: ptr[uint64](2)})
	return s
}

func TestRoleService_CreateRole(t *testing.T) {
	s := chainStore()
	svc := newTestServices(s, config.DataScopeConfig{}).Role
	ctx := context.Background()

	r, err := svc.CreateRole(ctx, &model.CreateRoleReq{Name: "ops", RoleKey: "ops", ParentId: ptr[uint64](3)}, 1)
	require.NoError(t, err)
	assert.Equal(t, datascope.ScopeAll, r.DataScope)
	assert.Equal(t, model.Enabled, r.IsEnabled)

	_, err = svc.CreateRole(ctx, &model.CreateRoleReq{Name: "dup", RoleKey: "ops"}, 1)
	assert.ErrorIs(t, err, ErrRoleKeyExists)

	_, err = svc.CreateRole(ctx, &model.CreateRoleReq{Name: "x", RoleKey: "x", ParentId: ptr[uint64](99)}, 1)
	assert.ErrorIs(t, err, ErrParentRoleNotFound)

	_, err = svc.CreateRole(ctx, &model.CreateRoleReq{Name: "y", RoleKey: "y", DataScope: "NOPE"}, 1)
	assert.ErrorIs(t, err, ErrInvalidDataScope)
}

// Scenario: a -> b -> c; making c the parent of a would close a loop.
func TestRoleService_AssignParentRejectsCycle(t *testing.T) {
	s := chainStore()
	svc := newTestServices(s, config.DataScopeConfig{}).Role
	ctx := context.Background()

	err := svc.AssignParent(ctx, 1, ptr[uint64](3))
	assert.ErrorIs(t, err, ErrRoleCycle)
	assert.Nil(t, s.roles[1].ParentId)

	assert.ErrorIs(t, svc.AssignParent(ctx, 2, ptr[uint64](2)), ErrRoleCycle)
	assert.ErrorIs(t, svc.AssignParent(ctx, 2, ptr[uint64](99)), ErrParentRoleNotFound)
	assert.ErrorIs(t, svc.AssignParent(ctx, 99, ptr[uint64](1)), ErrRoleNotFound)

	require.NoError(t, svc.AssignParent(ctx, 3, ptr[uint64](1)))
	assert.Equal(t, uint64(1), *s.roles[3].ParentId)
	require.NoError(t, svc.AssignParent(ctx, 3, nil))
	assert.Nil(t, s.roles[3].ParentId)
}

func TestRoleService_HierarchyQueries(t *testing.T) {
	s := chainStore()
	svc := newTestServices(s, config.DataScopeConfig{}).Role
	ctx := context.Background()

	anc, err := svc.Ancestors(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, anc)

	desc, err := svc.Descendants(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, desc)

	children, err := svc.Children(ctx, 1)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "b", children[0].RoleKey)

	depth, err := svc.Depth(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	cycle, err := svc.WouldCreateCycle(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, cycle)

	_, err = svc.Ancestors(ctx, 99)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

// Scenario: root -> A(sort 5) -> C(sort 0), root -> B(sort 1); closures are
// ordered by sort across levels.
func TestRoleService_ClosureOrderedBySort(t *testing.T) {
	s := newMemStore()
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 1}, RoleKey: "root", Sort: 9})
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 2}, RoleKey: "a", ParentId: ptr[uint64](1), Sort: 5})
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 3}, RoleKey: "b", ParentId: ptr[uint64](1), Sort: 1})
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 4}, RoleKey: "c", ParentId: ptr[uint64](2), Sort: 0})
	svc := newTestServices(s, config.DataScopeConfig{}).Role
	ctx := context.Background()

	desc, err := svc.Descendants(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 3, 2}, desc)

	anc, err := svc.Ancestors(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1}, anc)

	children, err := svc.Children(ctx, 1)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "b", children[0].RoleKey)
}

func TestRoleService_UpdateAndDelete(t *testing.T) {
	s := chainStore()
	s.userRoles[7] = []uint64{3}
	svc := newTestServices(s, config.DataScopeConfig{}).Role
	ctx := context.Background()

	require.NoError(t, svc.UpdateRole(ctx, 3, &model.UpdateRoleReq{
		InheritEnabled: ptr(true),
		DataScope:      ptr(datascope.ScopeSelf),
	}))
	assert.True(t, s.roles[3].InheritEnabled)
	assert.Equal(t, datascope.ScopeSelf, s.roles[3].DataScope)

	bad := datascope.DataScope("NOPE")
	assert.ErrorIs(t, svc.UpdateRole(ctx, 3, &model.UpdateRoleReq{DataScope: &bad}), ErrInvalidDataScope)

	assert.ErrorIs(t, svc.DeleteRole(ctx, 2), ErrRoleHasChildren)
	require.NoError(t, svc.DeleteRole(ctx, 3))
	assert.NotContains(t, s.roles, uint64(3))
	assert.Empty(t, s.userRoles[7])
	assert.ErrorIs(t, svc.DeleteRole(ctx, 3), ErrRoleNotFound)
}

func TestRoleService_Bindings(t *testing.T) {
	s := chainStore()
	svc := newTestServices(s, config.DataScopeConfig{}).Role
	ctx := context.Background()

	require.NoError(t, svc.SetRoleDepts(ctx, 1, []uint64{10, 11}))
	depts, err := svc.RoleDeptIds(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 11}, depts)

	require.NoError(t, svc.SetRoleMenus(ctx, 1, []uint64{5}))
	menus, err := svc.RoleMenuIds(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, menus)

	assert.ErrorIs(t, svc.SetRoleMenus(ctx, 99, nil), ErrRoleNotFound)
}
