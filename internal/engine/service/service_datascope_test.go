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
	"errors"
	"testing"

	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataScopeService_Resolve(t *testing.T) {
	s := newMemStore()
	s.addDept(100, 0, "0")
	s.addDept(101, 100, "0,100")
	s.addDept(102, 101, "0,100,101")
	svc := newTestServices(s, config.DataScopeConfig{}).DataScope

	tests := []struct {
		name string
		req  ResolveRequest
		want string
	}{
		{name: "all", req: ResolveRequest{DataScope: datascope.ScopeAll}, want: ""},
		{name: "self", req: ResolveRequest{DataScope: datascope.ScopeSelf, UserId: 7, TableAlias: "t"}, want: "t.create_by = 7"},
		{name: "self owner column", req: ResolveRequest{DataScope: datascope.ScopeSelf, UserId: 7, TableAlias: "u", OwnerColumn: "owner_id"}, want: "u.owner_id = 7"},
		{name: "dept", req: ResolveRequest{DataScope: datascope.ScopeDept, DeptId: ptr[uint64](101), TableAlias: "t"}, want: "t.dept_id = 101"},
		{name: "dept and child", req: ResolveRequest{DataScope: datascope.ScopeDeptAndChild, DeptId: ptr[uint64](100), TableAlias: "t"}, want: "t.dept_id IN (100,101,102)"},
		{name: "dept and child leaf", req: ResolveRequest{DataScope: datascope.ScopeDeptAndChild, DeptId: ptr[uint64](102)}, want: "dept_id IN (102)"},
		{name: "custom", req: ResolveRequest{DataScope: datascope.ScopeCustom, CustomDeptIds: []uint64{5, 3, 5}, TableAlias: "t"}, want: "t.dept_id IN (3,5)"},
		{name: "custom empty", req: ResolveRequest{DataScope: datascope.ScopeCustom, TableAlias: "t"}, want: "1 = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := svc.Resolve(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred.String())
		})
	}
}

func TestDataScopeService_ResolveErrors(t *testing.T) {
	svc := newTestServices(newMemStore(), config.DataScopeConfig{}).DataScope
	ctx := context.Background()

	for _, scope := range []datascope.DataScope{datascope.ScopeDept, datascope.ScopeDeptAndChild} {
		pred, err := svc.Resolve(ctx, ResolveRequest{DataScope: scope, UserId: 7})
		assert.ErrorIs(t, err, ErrMissingDept)
		assert.True(t, pred.IsEmpty())
	}

	_, err := svc.Resolve(ctx, ResolveRequest{DataScope: "EVERYTHING"})
	assert.ErrorIs(t, err, ErrInvalidDataScope)

	_, err = svc.Resolve(ctx, ResolveRequest{DataScope: datascope.ScopeSelf, TableAlias: "t; drop"})
	assert.Error(t, err)
}

// Every scope value resolves to some predicate for a caller with a dept.
func TestDataScopeService_ResolveIsExhaustive(t *testing.T) {
	s := newMemStore()
	s.addDept(1, 0, "0")
	svc := newTestServices(s, config.DataScopeConfig{}).DataScope

	for _, scope := range []datascope.DataScope{
		datascope.ScopeAll, datascope.ScopeSelf, datascope.ScopeDept, datascope.ScopeDeptAndChild, datascope.ScopeCustom,
	} {
		_, err := svc.Resolve(context.Background(), ResolveRequest{DataScope: scope, UserId: 1, DeptId: ptr[uint64](1), TableAlias: "t"})
		assert.NoError(t, err, scope)
	}
}

func multiRoleStore() *memStore {
	s := newMemStore()
	s.addDept(100, 0, "0")
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 1}, RoleKey: "dept_only", DataScope: datascope.ScopeDept})
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 2}, RoleKey: "everything", DataScope: datascope.ScopeAll})
	s.addUser(7, ptr[uint64](100), 1, 2)
	return s
}

func TestScopeSource_MultiRoleUnion(t *testing.T) {
	s := multiRoleStore()
	src := newTestServices(s, config.DataScopeConfig{}).DataScope.ScopeSource()

	pred, err := src.Resolve(context.Background(), datascope.Identity{UserId: 7, DeptId: ptr[uint64](100)}, datascope.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, pred.IsEmpty())
}

func TestScopeSource_MultiRoleIntersection(t *testing.T) {
	s := multiRoleStore()
	src := newTestServices(s, config.DataScopeConfig{MultiRolePolicy: string(datascope.MultiRoleIntersection)}).DataScope.ScopeSource()

	pred, err := src.Resolve(context.Background(), datascope.Identity{UserId: 7, DeptId: ptr[uint64](100)}, datascope.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "t.dept_id = 100", pred.String())
}

func TestScopeSource_UnionOfRestrictedRoles(t *testing.T) {
	s := newMemStore()
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 1}, RoleKey: "mine", DataScope: datascope.ScopeSelf})
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 2}, RoleKey: "picked", DataScope: datascope.ScopeCustom})
	s.roleDepts[2] = []uint64{4, 2}
	s.addUser(7, nil, 1, 2)
	src := newTestServices(s, config.DataScopeConfig{}).DataScope.ScopeSource()

	pred, err := src.Resolve(context.Background(), datascope.Identity{UserId: 7}, datascope.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "(t.create_by = 7) OR (t.dept_id IN (2,4))", pred.String())
}

func TestScopeSource_MissingDeptMatchesNothing(t *testing.T) {
	s := newMemStore()
	s.addRole(model.Role{BaseModel: model.BaseModel{ID: 1}, RoleKey: "dept_only", DataScope: datascope.ScopeDept})
	s.addUser(7, nil, 1)
	src := newTestServices(s, config.DataScopeConfig{}).DataScope.ScopeSource()

	pred, err := src.Resolve(context.Background(), datascope.Identity{UserId: 7}, datascope.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, pred.MatchesNothing())
}

func TestScopeSource_NoRolesMatchesNothing(t *testing.T) {
	s := newMemStore()
	s.addUser(7, nil)
	src := newTestServices(s, config.DataScopeConfig{}).DataScope.ScopeSource()

	pred, err := src.Resolve(context.Background(), datascope.Identity{UserId: 7}, datascope.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, pred.MatchesNothing())
}

func TestScopeSource_Override(t *testing.T) {
	s := multiRoleStore()
	src := newTestServices(s, config.DataScopeConfig{}).DataScope.ScopeSource()
	opts := datascope.DefaultOptions()
	datascope.WithOverride(datascope.ScopeSelf)(&opts)

	pred, err := src.Resolve(context.Background(), datascope.Identity{UserId: 7, DeptId: ptr[uint64](100)}, opts)
	require.NoError(t, err)
	assert.Equal(t, "t.create_by = 7", pred.String())
}

func TestComposeRolePredicates(t *testing.T) {
	a := datascope.Eq("t.dept_id", uint64(1))
	b := datascope.Eq("t.create_by", uint64(7))
	all := datascope.Predicate{}

	tests := []struct {
		name   string
		preds  []datascope.Predicate
		policy datascope.MultiRolePolicy
		want   string
	}{
		{name: "none", preds: nil, policy: datascope.MultiRoleUnion, want: "1 = 0"},
		{name: "union all wins", preds: []datascope.Predicate{a, all}, policy: datascope.MultiRoleUnion, want: ""},
		{name: "union drops match none", preds: []datascope.Predicate{datascope.MatchNone, a}, policy: datascope.MultiRoleUnion, want: "t.dept_id = 1"},
		{name: "union only match none", preds: []datascope.Predicate{datascope.MatchNone}, policy: datascope.MultiRoleUnion, want: "1 = 0"},
		{name: "union dedupes", preds: []datascope.Predicate{a, a, b}, policy: datascope.MultiRoleUnion, want: "(t.dept_id = 1) OR (t.create_by = 7)"},
		{name: "intersection drops all", preds: []datascope.Predicate{all, a, b}, policy: datascope.MultiRoleIntersection, want: "(t.dept_id = 1) AND (t.create_by = 7)"},
		{name: "intersection match none wins", preds: []datascope.Predicate{a, datascope.MatchNone}, policy: datascope.MultiRoleIntersection, want: "1 = 0"},
		{name: "intersection of all", preds: []datascope.Predicate{all, all}, policy: datascope.MultiRoleIntersection, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeRolePredicates(tt.preds, tt.policy).String())
		})
	}
}

func TestInterceptor_FailClosedOnResolveError(t *testing.T) {
	s := multiRoleStore()
	s.rolesErr = errors.New("db down")
	svcs := newTestServices(s, config.DataScopeConfig{})

	_, err := svcs.User.ListUsers(as(7, ptr[uint64](100)), &model.ListUsersReq{})
	require.NoError(t, err)
	assert.True(t, s.scopedPredicate.MatchesNothing())
}

func TestInterceptor_FailOpenOnResolveError(t *testing.T) {
	s := multiRoleStore()
	s.rolesErr = errors.New("db down")
	svcs := newTestServices(s, config.DataScopeConfig{FailurePolicy: string(datascope.FailOpen)})

	_, err := svcs.User.ListUsers(as(7, ptr[uint64](100)), &model.ListUsersReq{})
	require.NoError(t, err)
	assert.True(t, s.scopedPredicate.IsEmpty())
	assert.Equal(t, 1, s.scopedCalls)
}
