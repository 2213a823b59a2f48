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

func (rt *Router) deptRouter(r fiber.Router, auth fiber.Handler) {
	deptGroup := r.Group("/depts", auth)
	{
		deptGroup.Get("/tree", rt.require(permDeptList), rt.deptTree)
		deptGroup.Post("/rebuild", rt.require(permDeptEdit), rt.rebuildDeptAncestors)
		deptGroup.Post("", rt.require(permDeptAdd), rt.createDept)
		deptGroup.Get("/:id", rt.require(permDeptList), rt.getDept)
		deptGroup.Get("/:id/descendants", rt.require(permDeptList), rt.deptDescendants)
		deptGroup.Put("/:id", rt.require(permDeptEdit), rt.updateDept)
		deptGroup.Put("/:id/parent", rt.require(permDeptEdit), rt.reparentDept)
		deptGroup.Delete("/:id", rt.require(permDeptRemove), rt.deleteDept)
	}
}

// deptTree 当前用户数据范围内的部门树
func (rt *Router) deptTree(c *fiber.Ctx) error {
	tree, err := rt.Services.Dept.ListDeptTree(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	if tree == nil {
		tree = []*model.Dept{}
	}
	c.Locals(http.DETAIL, tree)
	return nil
}

func (rt *Router) getDept(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid dept id")
	}
	dept, err := rt.Services.Dept.GetDept(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, dept)
	return nil
}

func (rt *Router) deptDescendants(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid dept id")
	}
	ids, err := rt.Services.Dept.DescendantIds(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, fiber.Map{"ids": ids})
	return nil
}

func (rt *Router) createDept(c *fiber.Ctx) error {
	var req model.CreateDeptReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	dept, err := rt.Services.Dept.CreateDept(c.UserContext(), &req, currentUserId(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, dept)
	return nil
}

func (rt *Router) updateDept(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid dept id")
	}
	var req model.UpdateDeptReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := rt.Services.Dept.UpdateDept(c.UserContext(), id, &req); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

type reparentDeptReq struct {
	ParentId uint64 `json:"parentId"`
}

func (rt *Router) reparentDept(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid dept id")
	}
	var req reparentDeptReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := rt.Services.Dept.Reparent(c.UserContext(), id, req.ParentId); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

func (rt *Router) deleteDept(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return badRequest(c, "invalid dept id")
	}
	if err := rt.Services.Dept.DeleteDept(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	c.Locals(http.OPERATION, "")
	return nil
}

// rebuildDeptAncestors 按父子关系重算所有祖级路径
func (rt *Router) rebuildDeptAncestors(c *fiber.Ctx) error {
	n, err := rt.Services.Dept.RebuildAncestors(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, fiber.Map{"updated": n})
	return nil
}
