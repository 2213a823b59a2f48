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

package model

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDept_ChildAncestors(t *testing.T) {
	root := &Dept{BaseModel: BaseModel{ID: 1}, Ancestors: RootAncestors}
	assert.Equal(t, "0,1", root.ChildAncestors())

	child := &Dept{BaseModel: BaseModel{ID: 2}, ParentId: 1, Ancestors: root.ChildAncestors()}
	assert.Equal(t, "0,1,2", child.ChildAncestors())

	ids, err := (&Dept{Ancestors: "0,1,2"}).AncestorIds()
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)
}

func TestParseAncestors(t *testing.T) {
	ids, err := ParseAncestors("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = ParseAncestors("0")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ParseAncestors("0,x")
	assert.Error(t, err)
}

func TestPermissionSet_Algebra(t *testing.T) {
	a := NewPermissionSet([]string{"system:manage", " ", "system:user:list"}, []uint64{1, 2})
	b := NewPermissionSet([]string{"system:user:list", "system:role:list"}, []uint64{2, 3})

	u := a.Union(b)
	assert.Equal(t, []string{"system:manage", "system:role:list", "system:user:list"}, u.Perms())
	assert.Equal(t, []uint64{1, 2, 3}, u.MenuIds())
	assert.True(t, u.Contains(a))
	assert.True(t, u.Contains(b))

	i := a.Intersect(b)
	assert.Equal(t, []string{"system:user:list"}, i.Perms())
	assert.Equal(t, []uint64{2}, i.MenuIds())

	// union is idempotent
	assert.True(t, a.Union(a).Equal(a))
	assert.True(t, u.Union(u).Equal(u))
	assert.False(t, a.Equal(b))
}

func TestPermissionSet_ZeroValue(t *testing.T) {
	var p PermissionSet
	assert.True(t, p.IsEmpty())
	assert.False(t, p.Has("system:manage"))
	assert.False(t, p.HasMenu(1))
	assert.True(t, p.Union(p).IsEmpty())
}

func TestPermissionSet_AllPermission(t *testing.T) {
	p := NewPermissionSet([]string{AllPermission}, nil)
	assert.True(t, p.Has("anything:at:all"))
}

func TestPermissionSet_JSON(t *testing.T) {
	p := NewPermissionSet([]string{"b", "a"}, []uint64{9, 3})
	data, err := sonic.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"perms":["a","b"],"menuIds":[3,9]}`, string(data))

	var back PermissionSet
	require.NoError(t, sonic.Unmarshal(data, &back))
	assert.True(t, back.Equal(p))
}

func TestFromMenus(t *testing.T) {
	p := FromMenus([]Menu{
		{BaseModel: BaseModel{ID: 1}, MenuType: MenuTypeDir},
		{BaseModel: BaseModel{ID: 2}, MenuType: MenuTypeButton, Perms: "system:user:add,system:user:edit"},
	})
	assert.Equal(t, []uint64{1, 2}, p.MenuIds())
	assert.Equal(t, []string{"system:user:add", "system:user:edit"}, p.Perms())
}
