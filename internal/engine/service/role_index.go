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
	"slices"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
)

// roleIndex is an in-memory view of the role hierarchy. Every walk keeps a
// visited set so corrupt data with a cycle terminates.
type roleIndex struct {
	byId     map[uint64]*model.Role
	children map[uint64][]uint64
}

func newRoleIndex(roles []model.Role) *roleIndex {
	x := &roleIndex{
		byId:     make(map[uint64]*model.Role, len(roles)),
		children: make(map[uint64][]uint64),
	}
	for i := range roles {
		x.byId[roles[i].ID] = &roles[i]
	}
	for i := range roles {
		r := &roles[i]
		if r.ParentId != nil {
			x.children[*r.ParentId] = append(x.children[*r.ParentId], r.ID)
		}
	}
	for parent := range x.children {
		slices.SortFunc(x.children[parent], x.compare)
	}
	return x
}

// compare orders role ids by sort, then id.
func (x *roleIndex) compare(a, b uint64) int {
	if c := cmp.Compare(x.byId[a].Sort, x.byId[b].Sort); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// sorted returns a copy of ids ordered by sort, then id.
func (x *roleIndex) sorted(ids []uint64) []uint64 {
	out := slices.Clone(ids)
	slices.SortFunc(out, x.compare)
	return out
}

func (x *roleIndex) get(id uint64) (*model.Role, bool) {
	r, ok := x.byId[id]
	return r, ok
}

// childrenOf returns the direct children of id ordered by sort then id.
func (x *roleIndex) childrenOf(id uint64) []model.Role {
	ids := x.children[id]
	out := make([]model.Role, 0, len(ids))
	for _, cid := range ids {
		out = append(out, *x.byId[cid])
	}
	return out
}

// descendants returns every role below id in breadth-first order.
func (x *roleIndex) descendants(id uint64) []uint64 {
	visited := map[uint64]bool{id: true}
	var out []uint64
	queue := []uint64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, cid := range x.children[cur] {
			if visited[cid] {
				continue
			}
			visited[cid] = true
			out = append(out, cid)
			queue = append(queue, cid)
		}
	}
	return out
}

// ancestors returns the parent chain of id, nearest first. The walk stops at
// a missing parent or a repeated node.
func (x *roleIndex) ancestors(id uint64) []uint64 {
	var out []uint64
	visited := map[uint64]bool{id: true}
	cur, ok := x.byId[id]
	for ok && cur.ParentId != nil && !visited[*cur.ParentId] {
		pid := *cur.ParentId
		visited[pid] = true
		cur, ok = x.byId[pid]
		if !ok {
			break
		}
		out = append(out, pid)
	}
	return out
}

func (x *roleIndex) depth(id uint64) int {
	return len(x.ancestors(id))
}

// wouldCreateCycle reports whether making parentId the parent of id closes a
// loop, i.e. parentId is id or one of id's descendants.
func (x *roleIndex) wouldCreateCycle(id, parentId uint64) bool {
	if id == parentId {
		return true
	}
	return slices.Contains(x.ancestorsWithSelf(parentId), id)
}

func (x *roleIndex) ancestorsWithSelf(id uint64) []uint64 {
	return append([]uint64{id}, x.ancestors(id)...)
}

// inheritedFrom returns the roles whose grants id inherits, nearest first.
// A role with inheritance enabled inherits from every ancestor; disabled
// ancestors contribute nothing but do not cut the chain.
func (x *roleIndex) inheritedFrom(id uint64) []uint64 {
	r, ok := x.byId[id]
	if !ok || !r.InheritEnabled {
		return nil
	}
	var out []uint64
	for _, aid := range x.ancestors(id) {
		if x.byId[aid].IsEnabled == model.Enabled {
			out = append(out, aid)
		}
	}
	return out
}
