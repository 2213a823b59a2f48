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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Menu 菜单表
type Menu struct {
	BaseModel
	ParentId  uint64         `gorm:"column:parent_id;not null;default:0;index" json:"parentId"` // 父菜单ID（0 表示顶级菜单）
	Name      string         `gorm:"column:name;size:64;not null" json:"name"`                  // 菜单名称
	MenuType  string         `gorm:"column:menu_type;size:1;not null" json:"menuType"`          // M 目录 C 菜单 F 按钮
	Path      string         `gorm:"column:path;size:255" json:"path"`                          // 路由路径
	Component string         `gorm:"column:component;size:255" json:"component"`                // 前端组件
	Perms     string         `gorm:"column:perms;size:128" json:"perms"`                        // 权限标识，如 system:user:list
	Icon      string         `gorm:"column:icon;size:128" json:"icon"`
	Order     int            `gorm:"column:order;default:0" json:"order"`          // 排序（数值越小越靠前）
	IsVisible int            `gorm:"column:is_visible;default:1" json:"isVisible"` // 是否可见：0-隐藏，1-显示
	IsEnabled int            `gorm:"column:is_enabled;default:1" json:"isEnabled"` // 是否启用：0-禁用，1-启用
	Meta      datatypes.JSON `gorm:"column:meta;type:json" json:"meta"`            // 扩展元数据
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`

	Children []*Menu `gorm:"-" json:"children,omitempty"`
}

func (Menu) TableName() string {
	return "t_menu"
}

// 菜单类型
const (
	MenuTypeDir    = "M"
	MenuTypeMenu   = "C"
	MenuTypeButton = "F"
)
