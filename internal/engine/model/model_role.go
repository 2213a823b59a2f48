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
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"gorm.io/gorm"
)

// Role 角色表，parent_id 构成角色继承层级
type Role struct {
	BaseModel
	Name           string              `gorm:"column:name;size:64;not null" json:"name"`                       // 角色名称
	RoleKey        string              `gorm:"column:role_key;size:64;not null;uniqueIndex" json:"roleKey"`    // 角色权限字符串
	ParentId       *uint64             `gorm:"column:parent_id;index" json:"parentId"`                         // 父角色ID（为空表示顶级角色）
	InheritEnabled bool                `gorm:"column:inherit_enabled;not null;default:false" json:"inheritEnabled"` // 是否继承父角色权限
	DataScope      datascope.DataScope `gorm:"column:data_scope;size:32;not null;default:ALL" json:"dataScope"` // 数据范围
	Sort           int                 `gorm:"column:sort;default:0" json:"sort"`
	IsEnabled      int                 `gorm:"column:is_enabled;not null;default:1" json:"isEnabled"` // 0: disabled, 1: enabled
	Remark         string              `gorm:"column:remark;size:255" json:"remark"`
	CreateBy       uint64              `gorm:"column:create_by" json:"createBy"`
	DeletedAt      gorm.DeletedAt      `gorm:"column:deleted_at;index" json:"-"`
}

func (Role) TableName() string {
	return "t_role"
}

// CreateRoleReq request for creating role
type CreateRoleReq struct {
	Name           string              `json:"name"`
	RoleKey        string              `json:"roleKey"`
	ParentId       *uint64             `json:"parentId"`
	InheritEnabled bool                `json:"inheritEnabled"`
	DataScope      datascope.DataScope `json:"dataScope"`
	Sort           int                 `json:"sort"`
	Remark         string              `json:"remark"`
}

// UpdateRoleReq request for updating role
type UpdateRoleReq struct {
	Name           *string              `json:"name,omitempty"`
	InheritEnabled *bool                `json:"inheritEnabled,omitempty"`
	DataScope      *datascope.DataScope `json:"dataScope,omitempty"`
	Sort           *int                 `json:"sort,omitempty"`
	IsEnabled      *int                 `json:"isEnabled,omitempty"`
	Remark         *string              `json:"remark,omitempty"`
}

// AssignParentReq moves a role under a new parent; nil makes it top-level.
type AssignParentReq struct {
	ParentId *uint64 `json:"parentId"`
}

// BindIdsReq carries the full replacement set for a binding.
type BindIdsReq struct {
	Ids []uint64 `json:"ids"`
}
