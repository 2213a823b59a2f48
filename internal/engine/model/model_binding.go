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

// RoleMenuBinding 角色菜单关联表
type RoleMenuBinding struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RoleId uint64 `gorm:"column:role_id;not null;uniqueIndex:uk_role_menu" json:"roleId"`
	MenuId uint64 `gorm:"column:menu_id;not null;uniqueIndex:uk_role_menu;index" json:"menuId"`
}

func (RoleMenuBinding) TableName() string {
	return "t_role_menu_binding"
}

// UserRoleBinding 用户角色关联表
type UserRoleBinding struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UserId uint64 `gorm:"column:user_id;not null;uniqueIndex:uk_user_role" json:"userId"`
	RoleId uint64 `gorm:"column:role_id;not null;uniqueIndex:uk_user_role;index" json:"roleId"`
}

func (UserRoleBinding) TableName() string {
	return "t_user_role_binding"
}

// RoleDeptBinding 角色自定义数据范围（CUSTOM）可见的部门
type RoleDeptBinding struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RoleId uint64 `gorm:"column:role_id;not null;uniqueIndex:uk_role_dept" json:"roleId"`
	DeptId uint64 `gorm:"column:dept_id;not null;uniqueIndex:uk_role_dept;index" json:"deptId"`
}

func (RoleDeptBinding) TableName() string {
	return "t_role_dept_binding"
}
