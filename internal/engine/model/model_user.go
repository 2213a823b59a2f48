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

import "gorm.io/gorm"

type User struct {
	BaseModel
	Username  string         `gorm:"column:username;size:64;not null;uniqueIndex" json:"username"`
	Nickname  string         `gorm:"column:nickname;size:64" json:"nickname"`
	DeptId    *uint64        `gorm:"column:dept_id;index" json:"deptId"` // 所属部门（可为空）
	Email     string         `gorm:"column:email;size:128" json:"email"`
	Phone     string         `gorm:"column:phone;size:32" json:"phone"`
	IsEnabled int            `gorm:"column:is_enabled;not null;default:1" json:"isEnabled"` // 0: disabled, 1: enabled
	CreateBy  uint64         `gorm:"column:create_by;index" json:"createBy"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string {
	return "t_user"
}

// UserInfo is the identity view returned to the caller.
type UserInfo struct {
	UserId     uint64   `json:"userId"`
	Username   string   `json:"username"`
	Nickname   string   `json:"nickname"`
	DeptId     *uint64  `json:"deptId"`
	RoleKeys   []string `json:"roleKeys"`
	SuperAdmin bool     `json:"superAdmin"`
}

// ListUsersReq filters the data-scoped user listing.
type ListUsersReq struct {
	DeptId   *uint64 `query:"deptId"`
	Username string  `query:"username"`
	PageNum  int     `query:"pageNum"`
	PageSize int     `query:"pageSize"`
}

type ListUsersResp struct {
	Users    []User `json:"users"`
	Total    int64  `json:"total"`
	PageNum  int    `json:"pageNum"`
	PageSize int    `json:"pageSize"`
}
