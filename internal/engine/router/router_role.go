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

func (rt *Router) roleRouter(r fiber.Router, auth fiber.Handler) {
	roleGroup := r.Group("/roles", auth)
	{
		roleGroup.Get("", rt.require(permRoleList), rt.listRoles)
		roleGroup.Post("", rt.require(permRoleAdd), rt.createRole)
		roleGroup.Get("/:id", rt.require(permRoleList), rt.getRole)
		roleGroup.Put("/:id", rt.require(permRoleEdit), rt.updateRole)
		roleGroup.Delete("/:id", rt.require(permRoleRemove), rt.deleteRole)

		// hierarchy
		roleGroup.Put("/:id/parent", rt.require(permRoleEdit), rt.assignRoleParent)
		roleGroup.Get("/:id/children", rt.require(permRoleList), rt.roleChildren)
		roleGroup.Get("/:id/hierarchy", rt.require(permRoleList), rt.roleHierarchy)
		roleGroup.Get("/:id/parent/:parentId/check", rt.require(permRoleList), rt.checkRoleParent)
		roleGroup.Get("/:id/permissions", rt.require(permRoleList), rt.rolePermissions)

		// bindings
		roleGroup.Get("/:id/menus", rt.require(permRoleList), rt.roleMenus)
		roleGroup.Put("/:id/menus", rt.require(permRoleEdit), rt.setRoleMenus)
		roleGroup.Get("/:id/depts", rt.require(permRoleList), rt.roleDepts)
		roleGroup.Put("/:id/depts", rt.require(permRoleEdit), rt.setRoleDepts)
	}
}

func (rt *Router) listRoles(c *fiber.Ctx) error {
	roles, err := rt.Services.Role.ListRoles(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	if roles == nil {
		roles = []model.Role{}
	}
	c.Locals(http.DETAIL, roles)
	return nil
}

func (rt *Router) getRole(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	role, err := rt.Services.Role.GetRole(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, role)
	return nil
}

func (rt *Router) createRole(c *fiber.Ctx) error {
	var req model.CreateRoleReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	role, err := rt.Services.Role.CreateRole(c.UserContext(), &req, currentUserId(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, role)
	return nil
}

func (rt *Router) updateRole(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	var req model.UpdateRoleReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := rt.Services.Role.UpdateRole(c.UserContext(), id, &req); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

func (rt *Router) deleteRole(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	if err := rt.Services.Role.DeleteRole(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

func (rt *Router) assignRoleParent(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	var req model.AssignParentReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := rt.Services.Role.AssignParent(c.UserContext(), id, req.ParentId); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

func (rt *Router) roleChildren(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	children, err := rt.Services.Role.Children(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	if children == nil {
		children = []model.Role{}
	}
	c.Locals(http.DETAIL, children)
	return nil
}

// roleHierarchy 角色在层级中的位置
func (rt *Router) roleHierarchy(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	ctx := c.UserContext()
	ancestors, err := rt.Services.Role.Ancestors(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	descendants, err := rt.Services.Role.Descendants(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	depth, err := rt.Services.Role.Depth(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, fiber.Map{
		"ancestors":   nonNil(ancestors),
		"descendants": nonNil(descendants),
		"depth":       depth,
	})
	return nil
}

// checkRoleParent 预检 parentId 能否作为父角色
func (rt *Router) checkRoleParent(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	parentId, err := paramId(c, "parentId")
	if err != nil {
		return badRequest(c, "invalid parent id")
	}
	cycle, err := rt.Services.Role.WouldCreateCycle(c.UserContext(), id, parentId)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, fiber.Map{"wouldCreateCycle": cycle})
	return nil
}

// rolePermissions 角色的有效权限（含继承）
func (rt *Router) rolePermissions(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	ctx := c.UserContext()
	roles, err := rt.Services.Role.ListRoles(ctx)
	if err != nil {
		return fail(c, err)
	}
	set, err := rt.Services.Permission.EffectivePermissionsOfRole(ctx, id, roles)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, set)
	return nil
}

func (rt *Router) roleMenus(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	ids, err := rt.Services.Role.RoleMenuIds(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, fiber.Map{"ids": nonNil(ids)})
	return nil
}

func (rt *Router) setRoleMenus(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	var req model.BindIdsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := rt.Services.Role.SetRoleMenus(c.UserContext(), id, req.Ids); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

func (rt *Router) roleDepts(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	ids, err := rt.Services.Role.RoleDeptIds(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, fiber.Map{"ids": nonNil(ids)})
	return nil
}

func (rt *Router) setRoleDepts(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid role id")
	}
	var req model.BindIdsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := rt.Services.Role.SetRoleDepts(c.UserContext(), id, req.Ids); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

func nonNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}
