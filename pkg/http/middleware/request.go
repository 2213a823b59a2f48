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

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderRequestId = "X-Request-Id"

type requestIdKey struct{}

// RequestMiddleware assigns a request id and carries it in the user context.
func RequestMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestId := c.Get(HeaderRequestId)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		c.Set(HeaderRequestId, requestId)
		c.Locals("request_id", requestId)
		c.SetUserContext(context.WithValue(c.UserContext(), requestIdKey{}, requestId))
		return c.Next()
	}
}

// RequestLogFields exposes the request id to the log package.
func RequestLogFields(ctx context.Context) []any {
	if id, ok := ctx.Value(requestIdKey{}).(string); ok && id != "" {
		return []any{"request_id", id}
	}
	return nil
}
