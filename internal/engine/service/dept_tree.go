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
	"slices"
	"strconv"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
)

// deptIndex is an id-indexed view of a flat dept table. All traversal goes
// through parent ids; the materialized ancestor paths are never trusted here.
type deptIndex struct {
	byId     map[uint64]*model.Dept
	children map[uint64][]uint64
}

func newDeptIndex(depts []model.Dept) *deptIndex {
	x := &deptIndex{
		byId:     make(map[uint64]*model.Dept, len(depts)),
		children: make(map[uint64][]uint64),
	}
	for i := range depts {
		d := &depts[i]
		x.byId[d.ID] = d
	}
	for i := range depts {
		d := &depts[i]
		x.children[d.ParentId] = append(x.children[d.ParentId], d.ID)
	}
	for parent := range x.children {
		slices.SortFunc(x.children[parent], x.compare)
	}
	return x
}

func (x *deptIndex) compare(a, b uint64) int {
	da, db := x.byId[a], x.byId[b]
	if da.OrderNum != db.OrderNum {
		return da.OrderNum - db.OrderNum
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// descendants returns every node below id in breadth-first order.
func (x *deptIndex) descendants(id uint64) []uint64 {
	visited := map[uint64]bool{id: true}
	var out []uint64
	queue := []uint64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range x.children[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// ancestors walks the parent chain from id's parent up to the root.
func (x *deptIndex) ancestors(id uint64) []uint64 {
	var out []uint64
	visited := map[uint64]bool{id: true}
	cur, ok := x.byId[id]
	for ok && cur.ParentId != 0 && !visited[cur.ParentId] {
		visited[cur.ParentId] = true
		out = append(out, cur.ParentId)
		cur, ok = x.byId[cur.ParentId]
	}
	return out
}

// BuildDeptTree links a flat dept list into trees. Nodes whose parent is not
// in the list become roots. If no root can be found the input is returned
// flat, in its original order.
func BuildDeptTree(depts []model.Dept) []*model.Dept {
	if len(depts) == 0 {
		return []*model.Dept{}
	}
	x := newDeptIndex(depts)
	nodes := make(map[uint64]*model.Dept, len(depts))
	for i := range depts {
		n := depts[i]
		n.Children = nil
		nodes[n.ID] = &n
	}

	var roots []*model.Dept
	for i := range depts {
		d := &depts[i]
		if _, ok := x.byId[d.ParentId]; !ok || d.ParentId == d.ID {
			roots = append(roots, nodes[d.ID])
		}
	}
	if len(roots) == 0 {
		flat := make([]*model.Dept, 0, len(depts))
		for i := range depts {
			flat = append(flat, nodes[depts[i].ID])
		}
		return flat
	}
	slices.SortFunc(roots, func(a, b *model.Dept) int { return x.compare(a.ID, b.ID) })

	visited := make(map[uint64]bool, len(depts))
	var link func(n *model.Dept)
	link = func(n *model.Dept) {
		visited[n.ID] = true
		for _, cid := range x.children[n.ID] {
			if visited[cid] {
				continue
			}
			child := nodes[cid]
			n.Children = append(n.Children, child)
			link(child)
		}
	}
	for _, r := range roots {
		link(r)
	}
	return roots
}

// DescendantIdsOf returns the ids strictly below id, ascending.
func DescendantIdsOf(depts []model.Dept, id uint64) []uint64 {
	out := newDeptIndex(depts).descendants(id)
	slices.Sort(out)
	return out
}

// SelfAndDescendantIdsOf returns id followed by its descendants, ascending.
// An id absent from depts yields just id.
func SelfAndDescendantIdsOf(depts []model.Dept, id uint64) []uint64 {
	return append([]uint64{id}, DescendantIdsOf(depts, id)...)
}

// AncestorsConsistent reports whether every stored ancestor path equals the
// path derived from parent ids.
func AncestorsConsistent(depts []model.Dept) bool {
	x := newDeptIndex(depts)
	for i := range depts {
		if depts[i].Ancestors != x.pathOf(depts[i].ID) {
			return false
		}
	}
	return true
}

// pathOf derives the ancestor path of id from the parent chain.
func (x *deptIndex) pathOf(id uint64) string {
	chain := x.ancestors(id)
	path := model.RootAncestors
	for i := len(chain) - 1; i >= 0; i-- {
		path = childPath(path, chain[i])
	}
	return path
}

// childPath appends parentId to the parent's own ancestor path.
func childPath(parentPath string, parentId uint64) string {
	return parentPath + "," + strconv.FormatUint(parentId, 10)
}

// planMove validates moving id under newParentId against snapshot and returns
// the path rewrites for the node and its whole subtree.
func planMove(snapshot []model.Dept, id, newParentId uint64) ([]repo.DeptPathUpdate, error) {
	x := newDeptIndex(snapshot)
	if _, ok := x.byId[id]; !ok {
		return nil, ErrDeptNotFound
	}

	base := model.RootAncestors
	if newParentId != 0 {
		if newParentId == id || slices.Contains(x.descendants(id), newParentId) {
			return nil, ErrDeptCycle
		}
		parent, ok := x.byId[newParentId]
		if !ok {
			return nil, ErrParentNotFound
		}
		if parent.IsEnabled != model.Enabled {
			return nil, ErrParentDisabled
		}
		base = childPath(x.pathOf(parent.ID), parent.ID)
	}

	updates := []repo.DeptPathUpdate{{ID: id, ParentId: newParentId, Ancestors: base}}
	paths := map[uint64]string{id: base}
	for _, did := range x.descendants(id) {
		d := x.byId[did]
		path := childPath(paths[d.ParentId], d.ParentId)
		paths[did] = path
		updates = append(updates, repo.DeptPathUpdate{ID: did, ParentId: d.ParentId, Ancestors: path})
	}
	return updates, nil
}

// planRebuild recomputes every ancestor path from parent ids.
func planRebuild(snapshot []model.Dept) []repo.DeptPathUpdate {
	x := newDeptIndex(snapshot)
	var updates []repo.DeptPathUpdate
	for i := range snapshot {
		d := &snapshot[i]
		if path := x.pathOf(d.ID); path != d.Ancestors {
			updates = append(updates, repo.DeptPathUpdate{ID: d.ID, ParentId: d.ParentId, Ancestors: path})
		}
	}
	return updates
}
