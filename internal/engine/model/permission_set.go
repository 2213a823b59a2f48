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
	"slices"
	"strings"

	"github.com/bytedance/sonic"
)

// AllPermission grants every permission string.
const AllPermission = "*:*:*"

// PermissionSet is an immutable set of permission strings and menu ids.
// The zero value is the empty set.
type PermissionSet struct {
	perms map[string]struct{}
	menus map[uint64]struct{}
}

// NewPermissionSet builds a set, dropping blank permission strings.
func NewPermissionSet(perms []string, menuIds []uint64) PermissionSet {
	ps := PermissionSet{
		perms: make(map[string]struct{}, len(perms)),
		menus: make(map[uint64]struct{}, len(menuIds)),
	}
	for _, p := range perms {
		if p = strings.TrimSpace(p); p != "" {
			ps.perms[p] = struct{}{}
		}
	}
	for _, id := range menuIds {
		ps.menus[id] = struct{}{}
	}
	return ps
}

// FromMenus collects the menu ids and non-empty perms of menus.
func FromMenus(menus []Menu) PermissionSet {
	perms := make([]string, 0, len(menus))
	ids := make([]uint64, 0, len(menus))
	for _, m := range menus {
		ids = append(ids, m.ID)
		// a menu row may carry several comma-separated perms
		perms = append(perms, strings.Split(m.Perms, ",")...)
	}
	return NewPermissionSet(perms, ids)
}

// Has reports whether perm is granted, directly or through AllPermission.
func (p PermissionSet) Has(perm string) bool {
	if _, ok := p.perms[AllPermission]; ok {
		return true
	}
	_, ok := p.perms[strings.TrimSpace(perm)]
	return ok
}

func (p PermissionSet) HasMenu(id uint64) bool {
	_, ok := p.menus[id]
	return ok
}

func (p PermissionSet) IsEmpty() bool {
	return len(p.perms) == 0 && len(p.menus) == 0
}

// Perms returns the permission strings in sorted order.
func (p PermissionSet) Perms() []string {
	out := make([]string, 0, len(p.perms))
	for k := range p.perms {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// MenuIds returns the menu ids in ascending order.
func (p PermissionSet) MenuIds() []uint64 {
	out := make([]uint64, 0, len(p.menus))
	for k := range p.menus {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (p PermissionSet) Union(o PermissionSet) PermissionSet {
	out := PermissionSet{
		perms: make(map[string]struct{}, len(p.perms)+len(o.perms)),
		menus: make(map[uint64]struct{}, len(p.menus)+len(o.menus)),
	}
	for k := range p.perms {
		out.perms[k] = struct{}{}
	}
	for k := range o.perms {
		out.perms[k] = struct{}{}
	}
	for k := range p.menus {
		out.menus[k] = struct{}{}
	}
	for k := range o.menus {
		out.menus[k] = struct{}{}
	}
	return out
}

func (p PermissionSet) Intersect(o PermissionSet) PermissionSet {
	out := PermissionSet{
		perms: make(map[string]struct{}),
		menus: make(map[uint64]struct{}),
	}
	for k := range p.perms {
		if _, ok := o.perms[k]; ok {
			out.perms[k] = struct{}{}
		}
	}
	for k := range p.menus {
		if _, ok := o.menus[k]; ok {
			out.menus[k] = struct{}{}
		}
	}
	return out
}

// Contains reports whether every element of o is in p.
func (p PermissionSet) Contains(o PermissionSet) bool {
	for k := range o.perms {
		if _, ok := p.perms[k]; !ok {
			return false
		}
	}
	for k := range o.menus {
		if _, ok := p.menus[k]; !ok {
			return false
		}
	}
	return true
}

func (p PermissionSet) Equal(o PermissionSet) bool {
	return len(p.perms) == len(o.perms) && len(p.menus) == len(o.menus) && p.Contains(o)
}

type permissionSetJSON struct {
	Perms   []string `json:"perms"`
	MenuIds []uint64 `json:"menuIds"`
}

func (p PermissionSet) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(permissionSetJSON{Perms: p.Perms(), MenuIds: p.MenuIds()})
}

func (p *PermissionSet) UnmarshalJSON(data []byte) error {
	var raw permissionSetJSON
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = NewPermissionSet(raw.Perms, raw.MenuIds)
	return nil
}

// MergeStrategy combines the permission sets of several roles.
type MergeStrategy string

const (
	MergeUnion        MergeStrategy = "union"
	MergeIntersection MergeStrategy = "intersection"
)
