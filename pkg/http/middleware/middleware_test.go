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
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/http"
	"github.com/go-arcade/arcade-admin/pkg/http/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeResolver map[uint64]datascope.Identity

func (f fakeResolver) Identity(_ context.Context, userId uint64) (datascope.Identity, error) {
	id, ok := f[userId]
	if !ok {
		return datascope.Identity{}, errors.New("user not found")
	}
	return id, nil
}

type fakeChecker map[string]bool

func (f fakeChecker) HasPermission(_ context.Context, _ uint64, perm string) bool {
	return f[perm]
}

func bearer(t *testing.T, userId uint64) string {
	t.Helper()
	token, _, err := jwt.GenToken(userId, []byte(testSecret), time.Hour, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestApp(resolver IdentityResolver, checker PermissionChecker) *fiber.App {
	app := fiber.New()
	app.Use(RequestMiddleware(), ExceptionMiddleware, UnifiedResponseMiddleware())
	app.Use(AuthorizationMiddleware(testSecret, resolver))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, _ := CurrentIdentity(c)
		c.Locals(http.DETAIL, fiber.Map{"userId": id.UserId})
		return nil
	})
	app.Get("/users", RequirePermission(checker, "system:user:list"), func(c *fiber.Ctx) error {
		c.Locals(http.OPERATION, "")
		return nil
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})
	return app
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, sonic.Unmarshal(raw, &out))
	return out
}

func TestAuthorization_MissingToken(t *testing.T) {
	app := newTestApp(fakeResolver{}, fakeChecker{})
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, float64(http.TokenBeEmpty.Code), decode(t, resp.Body)["code"])
}

func TestAuthorization_UnknownUser(t *testing.T) {
	app := newTestApp(fakeResolver{}, fakeChecker{})
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", bearer(t, 7))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthorization_PublishesIdentity(t *testing.T) {
	app := newTestApp(fakeResolver{7: {UserId: 7}}, fakeChecker{})
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", bearer(t, 7))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestId))

	body := decode(t, resp.Body)
	assert.Equal(t, float64(http.Success.Code), body["code"])
	assert.Equal(t, float64(7), body["detail"].(map[string]any)["userId"])
}

func TestRequirePermission(t *testing.T) {
	resolver := fakeResolver{7: {UserId: 7}, 1: {UserId: 1, SuperAdmin: true}}

	denied := newTestApp(resolver, fakeChecker{})
	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", bearer(t, 7))
	resp, err := denied.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	granted := newTestApp(resolver, fakeChecker{"system:user:list": true})
	req = httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", bearer(t, 7))
	resp, err = granted.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", bearer(t, 1))
	resp, err = denied.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestExceptionMiddleware(t *testing.T) {
	app := newTestApp(fakeResolver{7: {UserId: 7}}, fakeChecker{})
	req := httptest.NewRequest("GET", "/boom", nil)
	req.Header.Set("Authorization", bearer(t, 7))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, http.InternalError.Msg, decode(t, resp.Body)["errMsg"])
}

func TestRequestLogFields(t *testing.T) {
	assert.Nil(t, RequestLogFields(context.Background()))
	ctx := context.WithValue(context.Background(), requestIdKey{}, "abc")
	assert.Equal(t, []any{"request_id", "abc"}, RequestLogFields(ctx))
}
