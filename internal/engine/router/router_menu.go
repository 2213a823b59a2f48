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

func (rt *Router) menuRouter(r fiber.Router, auth fiber.Handler) {
	r.Post("/menus", auth, rt.require(permMenuAdd), rt.createMenu)
}

// createMenu 创建菜单
func (rt *Router) createMenu(c *fiber.Ctx) error {
	var menu model.Menu
	if err := c.BodyParser(&menu); err != nil {
		return badRequest(c, err.Error())
	}
	menu.ID = 0
	if err := rt.Services.Menu.CreateMenu(c.UserContext(), &menu); err != nil {
		return fail(c, err)
	}
	c.Locals(http.DETAIL, menu)
	return nil
}
