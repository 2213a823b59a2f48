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

package repo

import (
	"context"
	"strings"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/database"
	"gorm.io/gorm"
)

type IUserRepository interface {
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	ListUsersScoped(ctx context.Context, req *model.ListUsersReq) ([]model.User, int64, error)
	CountUsersInDept(ctx context.Context, deptId uint64) (int64, error)
	CreateUser(ctx context.Context, user *model.User) error
}

type UserRepo struct {
	database.IDatabase
}

func NewUserRepo(db database.IDatabase) IUserRepository {
	return &UserRepo{
		IDatabase: db,
	}
}

// GetUser 根据ID获取用户（含禁用，不含已删除）
func (r *UserRepo) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := r.Database().WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsersScoped 分页列出当前数据范围内可见的用户
func (r *UserRepo) ListUsersScoped(ctx context.Context, req *model.ListUsersReq) ([]model.User, int64, error) {
	query := r.Database().WithContext(ctx).
		Model(&model.User{}).
		Table("t_user AS t").
		Scopes(datascope.Apply(ctx))
	if req.DeptId != nil {
		query = query.Where("t.dept_id = ?", *req.DeptId)
	}
	if req.Username != "" {
		query = query.Where("t.username LIKE ?", "%"+escapeLike(req.Username)+"%")
	}

	query = query.Session(&gorm.Session{})

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	offset := (req.PageNum - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("t.id ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// CountUsersInDept 统计部门下未删除的用户数
func (r *UserRepo) CountUsersInDept(ctx context.Context, deptId uint64) (int64, error) {
	var count int64
	err := r.Database().WithContext(ctx).Model(&model.User{}).Where("dept_id = ?", deptId).Count(&count).Error
	return count, err
}

// CreateUser 创建用户
func (r *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	return r.Database().WithContext(ctx).Create(user).Error
}

// likeEscaper makes user input match literally inside LIKE; backslash is the
// MySQL default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
