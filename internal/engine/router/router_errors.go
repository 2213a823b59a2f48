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
	"github.com/go-arcade/arcade-admin/internal/engine/service"
	"github.com/go-arcade/arcade-admin/pkg/http"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type errorMapping struct {
	target error
	status int
	rep    *http.Response
}

// business rejections in match order; the first hit wins
var errorMappings = []errorMapping{
	{service.ErrDeptNotFound, fiber.StatusNotFound, http.DeptNotExist},
	{service.ErrParentNotFound, fiber.StatusNotFound, http.DeptNotExist},
	{service.ErrRoleNotFound, fiber.StatusNotFound, http.RoleNotExist},
	{service.ErrParentRoleNotFound, fiber.StatusNotFound, http.RoleNotExist},
	{service.ErrUserNotFound, fiber.StatusNotFound, http.UserNotExist},
	{service.ErrUserDisabled, fiber.StatusForbidden, http.Forbidden},
	{service.ErrDeptCycle, fiber.StatusConflict, http.Conflict},
	{service.ErrRoleCycle, fiber.StatusConflict, http.Conflict},
	{service.ErrParentDisabled, fiber.StatusConflict, http.Conflict},
	{service.ErrDeptHasChildren, fiber.StatusConflict, http.Conflict},
	{service.ErrDeptHasEnabledChildren, fiber.StatusConflict, http.Conflict},
	{service.ErrDeptHasUsers, fiber.StatusConflict, http.Conflict},
	{service.ErrRoleHasChildren, fiber.StatusConflict, http.Conflict},
	{service.ErrRoleKeyExists, fiber.StatusConflict, http.Conflict},
	{service.ErrInvalidArgument, fiber.StatusBadRequest, http.BadRequest},
	{service.ErrInvalidDataScope, fiber.StatusBadRequest, http.BadRequest},
}

// fail writes err as an error response. Unmapped errors are logged and
// hidden behind a generic message.
func fail(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return http.Abort(c, m.status, m.rep, err.Error())
		}
	}
	log.WithContext(c.UserContext()).Errorw("request failed", "path", c.Path(), "error", err)
	return http.Abort(c, fiber.StatusInternalServerError, http.InternalError, "")
}

func badRequest(c *fiber.Ctx, msg string) error {
	return http.Abort(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, msg)
}
