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

package middleware

import (
	"context"

	"github.com/go-arcade/arcade-admin/pkg/http"
	"github.com/gofiber/fiber/v2"
)

// PermissionChecker answers permission questions for a user. Any lookup
// failure must answer false.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userId uint64, perm string) bool
}

// RequirePermission 统一权限点校验，须挂在 AuthorizationMiddleware 之后
func RequirePermission(checker PermissionChecker, perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return http.Abort(c, fiber.StatusUnauthorized, http.Unauthorized, "user not authenticated")
		}
		if identity.SuperAdmin {
			return c.Next()
		}
		if !checker.HasPermission(c.UserContext(), identity.UserId, perm) {
			return http.Abort(c, fiber.StatusForbidden, http.PermissionDenied, "")
		}
		return c.Next()
	}
}
