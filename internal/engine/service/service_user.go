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
	"context"
	"strings"

	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

type UserService struct {
	subjects     subjectLoader
	userRepo     repo.IUserRepository
	roleRepo     repo.IRoleRepository
	userRoleRepo repo.IUserRoleBindingRepository
	interceptor  *datascope.Interceptor
	conf         config.PermissionConfig
}

func NewUserService(
	userRepo repo.IUserRepository,
	roleRepo repo.IRoleRepository,
	userRoleRepo repo.IUserRoleBindingRepository,
	interceptor *datascope.Interceptor,
	conf config.PermissionConfig,
) *UserService {
	return &UserService{
		subjects:     subjectLoader{userRepo: userRepo, roleRepo: roleRepo, userRoleRepo: userRoleRepo},
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		userRoleRepo: userRoleRepo,
		interceptor:  interceptor,
		conf:         conf,
	}
}

// Identity resolves the data scope identity of an active user.
func (us *UserService) Identity(ctx context.Context, userId uint64) (datascope.Identity, error) {
	s, err := us.subjects.load(ctx, userId)
	if err != nil {
		return datascope.Identity{}, err
	}
	return datascope.Identity{
		UserId:     s.user.ID,
		DeptId:     s.user.DeptId,
		SuperAdmin: s.isSuperAdmin(us.conf.SuperAdminRoleKeys),
	}, nil
}

// IsSuperAdmin 判断用户是否持有超级管理员角色，查询失败视为否
func (us *UserService) IsSuperAdmin(ctx context.Context, userId uint64) bool {
	s, err := us.subjects.load(ctx, userId)
	if err != nil {
		return false
	}
	return s.isSuperAdmin(us.conf.SuperAdminRoleKeys)
}

// GetUserInfo 获取用户信息及角色
func (us *UserService) GetUserInfo(ctx context.Context, userId uint64) (*model.UserInfo, error) {
	s, err := us.subjects.load(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &model.UserInfo{
		UserId:     s.user.ID,
		Username:   s.user.Username,
		Nickname:   s.user.Nickname,
		DeptId:     s.user.DeptId,
		RoleKeys:   s.roleKeys(),
		SuperAdmin: s.isSuperAdmin(us.conf.SuperAdminRoleKeys),
	}, nil
}

// CreateUser 创建用户
func (us *UserService) CreateUser(ctx context.Context, user *model.User) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return errors.Wrap(ErrInvalidArgument, "username is required")
	}
	if user.IsEnabled == 0 {
		user.IsEnabled = model.Enabled
	}
	if err := us.userRepo.CreateUser(ctx, user); err != nil {
		log.Errorw("failed to create user", "username", user.Username, "error", err)
		return errors.Wrap(err, "create user")
	}
	return nil
}

// ListUsers 按调用方数据范围分页查询用户
func (us *UserService) ListUsers(ctx context.Context, req *model.ListUsersReq) (*model.ListUsersResp, error) {
	if req.PageNum <= 0 {
		req.PageNum = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	resp := &model.ListUsersResp{PageNum: req.PageNum, PageSize: req.PageSize}
	err := us.interceptor.Run(ctx, OpUserList, func(ctx context.Context) error {
		users, total, err := us.userRepo.ListUsersScoped(ctx, req)
		if err != nil {
			return err
		}
		resp.Users, resp.Total = users, total
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	if resp.Users == nil {
		resp.Users = []model.User{}
	}
	return resp, nil
}

// UserRoleIds 获取用户绑定的角色ID
func (us *UserService) UserRoleIds(ctx context.Context, userId uint64) ([]uint64, error) {
	ids, err := us.userRoleRepo.ListRoleIdsByUser(ctx, userId)
	if err != nil {
		return nil, errors.Wrapf(err, "list roles of user %d", userId)
	}
	return ids, nil
}

// AssignUserRoles replaces the roles of userId. Every role must exist.
func (us *UserService) AssignUserRoles(ctx context.Context, userId uint64, roleIds []uint64) error {
	if _, err := us.userRepo.GetUser(ctx, userId); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrapf(err, "get user %d", userId)
	}

	roles, err := us.roleRepo.ListRolesByIds(ctx, roleIds)
	if err != nil {
		return errors.Wrap(err, "list roles")
	}
	found := make(map[uint64]bool, len(roles))
	for _, r := range roles {
		found[r.ID] = true
	}
	for _, id := range roleIds {
		if !found[id] {
			return errors.Wrapf(ErrRoleNotFound, "role %d", id)
		}
	}

	if err := us.userRoleRepo.ReplaceUserRoles(ctx, userId, roleIds); err != nil {
		log.Errorw("failed to assign user roles", "userId", userId, "error", err)
		return errors.Wrapf(err, "assign roles of user %d", userId)
	}
	log.Infow("user roles assigned", "userId", userId, "roleIds", roleIds)
	return nil
}
