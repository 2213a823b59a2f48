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
	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/cache"
)

// Services 统一管理所有 service
type Services struct {
	Dept        *DeptService
	Role        *RoleService
	User        *UserService
	Menu        *MenuService
	Permission  *PermissionService
	DataScope   *DataScopeService
	Interceptor *datascope.Interceptor
}

// NewServices 初始化所有 service
func NewServices(
	repos *repo.Repositories,
	c cache.ICache,
	permConf config.PermissionConfig,
	scopeConf config.DataScopeConfig,
) *Services {
	failurePolicy, multiRole := scopeConf.Policies()

	// 拦截器依赖数据范围解析
	dataScopeService := NewDataScopeService(repos.Dept, repos.Role, repos.UserRoleBinding, repos.RoleDeptBinding, multiRole)
	interceptor := datascope.NewInterceptor(NewDataScopeRegistry(), dataScopeService.ScopeSource(), failurePolicy)

	permissionService := NewPermissionService(repos.User, repos.Role, repos.Menu, repos.UserRoleBinding, c, permConf)

	return &Services{
		Dept:        NewDeptService(repos.Dept, repos.User, interceptor),
		Role:        NewRoleService(repos.Role, repos.RoleMenuBinding, repos.RoleDeptBinding, permissionService),
		User:        NewUserService(repos.User, repos.Role, repos.UserRoleBinding, interceptor, permConf),
		Menu:        NewMenuService(repos.Menu, permissionService),
		Permission:  permissionService,
		DataScope:   dataScopeService,
		Interceptor: interceptor,
	}
}
