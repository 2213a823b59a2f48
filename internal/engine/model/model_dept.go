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
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// RootAncestors is the ancestor path of a top-level department.
const RootAncestors = "0"

// Dept 部门表，ancestors 物化了从根到父节点的路径
type Dept struct {
	BaseModel
	ParentId  uint64         `gorm:"column:parent_id;not null;default:0;index" json:"parentId"` // 父部门ID（0 表示根）
	Ancestors string         `gorm:"column:ancestors;size:512;not null" json:"ancestors"`       // 祖级列表，如 "0,1,2"
	Name      string         `gorm:"column:name;size:64;not null" json:"name"`                  // 部门名称
	OrderNum  int            `gorm:"column:order_num;default:0" json:"orderNum"`                // 显示顺序
	Leader    string         `gorm:"column:leader;size:64" json:"leader"`                       // 负责人
	Phone     string         `gorm:"column:phone;size:32" json:"phone"`
	Email     string         `gorm:"column:email;size:128" json:"email"`
	IsEnabled int            `gorm:"column:is_enabled;not null;default:1" json:"isEnabled"` // 0: disabled, 1: enabled
	CreateBy  uint64         `gorm:"column:create_by;index" json:"createBy"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`

	Children []*Dept `gorm:"-" json:"children,omitempty"`
}

func (Dept) TableName() string {
	return "t_dept"
}

// ChildAncestors is the ancestor path of a direct child of d.
func (d *Dept) ChildAncestors() string {
	return d.Ancestors + "," + strconv.FormatUint(d.ID, 10)
}

// AncestorIds parses the ancestor path, root sentinel excluded.
func (d *Dept) AncestorIds() ([]uint64, error) {
	return ParseAncestors(d.Ancestors)
}

// ParseAncestors parses a comma-separated ancestor path. The leading "0"
// sentinel is dropped.
func ParseAncestors(path string) ([]uint64, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	parts := strings.Split(path, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ancestor path %q: %w", path, err)
		}
		if id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateDeptReq request for creating dept
type CreateDeptReq struct {
	ParentId uint64 `json:"parentId"`
	Name     string `json:"name"`
	OrderNum int    `json:"orderNum"`
	Leader   string `json:"leader"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// UpdateDeptReq request for updating dept
type UpdateDeptReq struct {
	ParentId  *uint64 `json:"parentId,omitempty"`
	Name      *string `json:"name,omitempty"`
	OrderNum  *int    `json:"orderNum,omitempty"`
	Leader    *string `json:"leader,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	IsEnabled *int    `json:"isEnabled,omitempty"`
}
