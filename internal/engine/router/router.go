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
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/arcade-admin/internal/engine/service"
	"github.com/go-arcade/arcade-admin/pkg/http"
	"github.com/go-arcade/arcade-admin/pkg/http/middleware"
	"github.com/go-arcade/arcade-admin/pkg/trace"
	"github.com/go-arcade/arcade-admin/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// permission keys guarding the admin api
const (
	permDeptList   = "system:dept:list"
	permDeptAdd    = "system:dept:add"
	permDeptEdit   = "system:dept:edit"
	permDeptRemove = "system:dept:remove"
	permRoleList   = "system:role:list"
	permRoleAdd    = "system:role:add"
	permRoleEdit   = "system:role:edit"
	permRoleRemove = "system:role:remove"
	permUserList   = "system:user:list"
	permUserAdd    = "system:user:add"
	permUserEdit   = "system:user:edit"
	permMenuAdd    = "system:menu:add"
)

type Router struct {
	Http     *http.Http
	Services *service.Services
}

func NewRouter(httpConf *http.Http, services *service.Services) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Arcade Admin",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             rt.Http.BodyLimit,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
	})

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.RequestMiddleware(),
		trace.FiberMiddleware(),
		middleware.AccessLogMiddleware(rt.Http.AccessLog),
		cors.New(),
		middleware.UnifiedResponseMiddleware(),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	api := app.Group(rt.Http.ContextPath)
	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.Services.User)

	rt.deptRouter(api, auth)
	rt.roleRouter(api, auth)
	rt.userRouter(api, auth)
	rt.menuRouter(api, auth)

	// 找不到路径时的处理 - 必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.Abort(c, fiber.StatusNotFound, http.NotFound, "request path not found")
	})

	return app
}

func (rt *Router) require(perm string) fiber.Handler {
	return middleware.RequirePermission(rt.Services.Permission, perm)
}

func paramId(c *fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}

// currentUserId returns the authenticated caller; auth middleware guarantees it.
func currentUserId(c *fiber.Ctx) uint64 {
	id, _ := middleware.CurrentIdentity(c)
	return id.UserId
}
