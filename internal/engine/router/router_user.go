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


package router

import (
	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) userRouter(r fiber.Router, auth fiber.Handler) {
	userGroup := r.Group("/users", auth)
	{
		userGroup.Get("", rt.require(permUserList), rt.listUsers)
		userGroup.Post("", rt.require(permUserAdd), rt.createUser)
		userGroup.Get("/:id/roles", rt.require(permUserList), rt.userRoles)
		userGroup.Put("/:id/roles", rt.require(permUserEdit), rt.assignUserRoles)
		userGroup.Get("/:id/permissions", rt.require(permUserList), rt.userPermissions)
	}

	// 当前登录用户
	meGroup := r.Group("/me", auth)
	{
		meGroup.Get("", rt.me)
		meGroup.Get("/permissions", rt.myPermissions)
		meGroup.Get("/menus", rt.myMenus)
	}
}

// listUsers 按当前用户数据范围分页查询
func (rt *Router) listUsers(c *fiber.Ctx) error {
	var req model.ListUsersReq
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	resp, err := rt.Services.User.ListUsers(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, resp)
	return nil
}

func (rt *Router) createUser(c *fiber.Ctx) error {
	var user model.User
	if err := c.BodyParser(&user); err != nil {
		return badRequest(c, err.Error())
	}
	user.ID = 0
	user.CreateBy = currentUserId(c)
	if err := rt.Services.User.CreateUser(c.UserContext(), &user); err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, user)
	return nil
}

func (rt *Router) userRoles(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	ids, err := rt.Services.User.UserRoleIds(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, fiber.Map{"ids": nonNil(ids)})
	return nil
}

func (rt *Router) assignUserRoles(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	var req model.BindIdsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := rt.Services.User.AssignUserRoles(c.UserContext(), id, req.Ids); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

func (rt *Router) userPermissions(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	c.Locals(http.DETAIL, rt.Services.Permission.PermissionsOfUser(c.UserContext(), id))
	return nil
}

func (rt *Router) me(c *fiber.Ctx) error {
	info, err := rt.Services.User.GetUserInfo(c.UserContext(), currentUserId(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, info)
	return nil
}

func (rt *Router) myPermissions(c *fiber.Ctx) error {
	c.Locals(http.DETAIL, rt.Services.Permission.PermissionsOfUser(c.UserContext(), currentUserId(c)))
	return nil
}

func (rt *Router) myMenus(c *fiber.Ctx) error {
	tree, err := rt.Services.Menu.MenuTreeOfUser(c.UserContext(), currentUserId(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, tree)
	return nil
}
