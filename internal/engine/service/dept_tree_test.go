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
	"math/rand"
	"testing"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dept(id, parent uint64, ancestors string, order int) model.Dept {
	return model.Dept{BaseModel: model.BaseModel{ID: id}, ParentId: parent, Ancestors: ancestors, OrderNum: order, IsEnabled: model.Enabled}
}

func TestBuildDeptTree(t *testing.T) {
	depts := []model.Dept{
		dept(3, 1, "0,1", 2),
		dept(1, 0, "0", 0),
		dept(2, 1, "0,1", 1),
		dept(4, 2, "0,1,2", 0),
		dept(9, 77, "0,77", 0), // parent outside the list
	}

	roots := BuildDeptTree(depts)
	require.Len(t, roots, 2)
	assert.Equal(t, uint64(1), roots[0].ID)
	assert.Equal(t, uint64(9), roots[1].ID)

	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, uint64(2), roots[0].Children[0].ID)
	assert.Equal(t, uint64(3), roots[0].Children[1].ID)
	require.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, uint64(4), roots[0].Children[0].Children[0].ID)
}

func TestBuildDeptTree_NoRootReturnsFlat(t *testing.T) {
	depts := []model.Dept{dept(1, 2, "", 0), dept(2, 1, "", 0)}

	out := BuildDeptTree(depts)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(1), out[0].ID)
	assert.Equal(t, uint64(2), out[1].ID)
	assert.Empty(t, out[0].Children)
}

func TestBuildDeptTree_Empty(t *testing.T) {
	assert.Empty(t, BuildDeptTree(nil))
}

func TestDescendantIdsOf_FollowsParentIds(t *testing.T) {
	// stored ancestor paths are inconsistent on purpose
	depts := []model.Dept{dept(1, 0, "0", 0), dept(2, 1, "0", 0), dept(3, 2, "0,1", 0)}

	assert.Equal(t, []uint64{2, 3}, DescendantIdsOf(depts, 1))
	assert.Equal(t, []uint64{3}, DescendantIdsOf(depts, 2))
	assert.Empty(t, DescendantIdsOf(depts, 3))
	assert.Equal(t, []uint64{1, 2, 3}, SelfAndDescendantIdsOf(depts, 1))
	assert.Equal(t, []uint64{42}, SelfAndDescendantIdsOf(depts, 42))
}

func TestPlanMove_Rejections(t *testing.T) {
	disabled := dept(5, 0, "0", 0)
	disabled.IsEnabled = model.Disabled
	depts := []model.Dept{dept(1, 0, "0", 0), dept(2, 1, "0,1", 0), dept(3, 2, "0,1,2", 0), disabled}

	tests := []struct {
		name   string
		id     uint64
		parent uint64
		want   error
	}{
		{name: "under descendant", id: 1, parent: 3, want: ErrDeptCycle},
		{name: "under child", id: 1, parent: 2, want: ErrDeptCycle},
		{name: "under itself", id: 2, parent: 2, want: ErrDeptCycle},
		{name: "missing node", id: 99, parent: 1, want: ErrDeptNotFound},
		{name: "missing parent", id: 3, parent: 99, want: ErrParentNotFound},
		{name: "disabled parent", id: 3, parent: 5, want: ErrParentDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planMove(depts, tt.id, tt.parent)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPlanMove_RewritesSubtree(t *testing.T) {
	depts := []model.Dept{
		dept(1, 0, "0", 0),
		dept(2, 1, "0,1", 0),
		dept(3, 2, "0,1,2", 0),
		dept(4, 0, "0", 0),
	}

	updates, err := planMove(depts, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []repo.DeptPathUpdate{
		{ID: 2, ParentId: 4, Ancestors: "0,4"},
		{ID: 3, ParentId: 2, Ancestors: "0,4,2"},
	}, updates)

	updates, err = planMove(depts, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "0", updates[0].Ancestors)
	assert.Equal(t, "0,2", updates[1].Ancestors)
}

func applyUpdates(depts []model.Dept, updates []repo.DeptPathUpdate) {
	for _, u := range updates {
		for i := range depts {
			if depts[i].ID == u.ID {
				depts[i].ParentId, depts[i].Ancestors = u.ParentId, u.Ancestors
			}
		}
	}
}

// Random valid and invalid moves never break the tree: every path stays
// derivable from parent ids and no node becomes its own ancestor.
func TestPlanMove_PreservesTreeProperty(t *testing.T) {
	depts := []model.Dept{dept(1, 0, "0", 0)}
	for id := uint64(2); id <= 30; id++ {
		parent := uint64(rand.New(rand.NewSource(int64(id))).Intn(int(id-1)) + 1)
		depts = append(depts, dept(id, parent, "", 0))
	}
	applyUpdates(depts, planRebuild(depts))
	require.True(t, AncestorsConsistent(depts))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		id := uint64(rng.Intn(30) + 1)
		parent := uint64(rng.Intn(31))
		updates, err := planMove(depts, id, parent)
		if err != nil {
			assert.ErrorIs(t, err, ErrDeptCycle)
			continue
		}
		applyUpdates(depts, updates)
		require.True(t, AncestorsConsistent(depts), "move %d under %d", id, parent)
	}

	x := newDeptIndex(depts)
	for _, d := range depts {
		assert.NotContains(t, x.ancestors(d.ID), d.ID)
	}
}

func TestPlanRebuild_RepairsPaths(t *testing.T) {
	depts := []model.Dept{dept(1, 0, "0", 0), dept(2, 1, "0", 0), dept(3, 2, "0,1", 0)}
	require.False(t, AncestorsConsistent(depts))

	updates := planRebuild(depts)
	assert.Equal(t, []repo.DeptPathUpdate{
		{ID: 2, ParentId: 1, Ancestors: "0,1"},
		{ID: 3, ParentId: 2, Ancestors: "0,1,2"},
	}, updates)

	applyUpdates(depts, updates)
	assert.True(t, AncestorsConsistent(depts))
	assert.Empty(t, planRebuild(depts))
}
