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
	"errors"
	"strings"

	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/http"
	"github.com/go-arcade/arcade-admin/pkg/http/jwt"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
)

// ClaimsKey is the fiber local holding *jwt.AuthClaims.
const ClaimsKey = "claims"

// IdentityResolver turns an authenticated user id into the caller identity
// carried by the request context. It fails for deleted or disabled users.
type IdentityResolver interface {
	Identity(ctx context.Context, userId uint64) (datascope.Identity, error)
}

func AuthorizationMiddleware(secretKey string, resolver IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aToken := c.Get(fiber.HeaderAuthorization)
		if aToken == "" {
			return http.Abort(c, fiber.StatusUnauthorized, http.TokenBeEmpty, "")
		}

		// 按空格分割
		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return http.Abort(c, fiber.StatusUnauthorized, http.AuthorizationIncorrect, "")
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.Abort(c, fiber.StatusUnauthorized, http.TokenExpired, "")
			}
			log.WithContext(c.UserContext()).Warnw("parse token failed", "error", err)
			return http.Abort(c, fiber.StatusUnauthorized, http.InvalidToken, "")
		}

		identity, err := resolver.Identity(c.UserContext(), claims.UserId)
		if err != nil {
			log.WithContext(c.UserContext()).Warnw("resolve identity failed", "userId", claims.UserId, "error", err)
			return http.Abort(c, fiber.StatusUnauthorized, http.Unauthorized, "")
		}

		c.Locals(ClaimsKey, claims)
		c.SetUserContext(datascope.WithIdentity(c.UserContext(), identity))
		return c.Next()
	}
}

// CurrentIdentity returns the identity published by AuthorizationMiddleware.
func CurrentIdentity(c *fiber.Ctx) (datascope.Identity, bool) {
	return datascope.IdentityFromContext(c.UserContext())
}
