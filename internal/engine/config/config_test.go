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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
[http]
port = 9000

[database.mysql]
host = "127.0.0.1"
port = "3306"
`)

	c, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, c.Http.Port)
	assert.Equal(t, "/api/v1", c.Http.ContextPath)
	assert.Equal(t, 2*time.Hour, c.Http.Auth.AccessExpire)
	assert.Equal(t, []string{"admin"}, c.Permission.SuperAdminRoleKeys)
	assert.Equal(t, "union", c.Permission.MergeStrategy)

	fp, mp := c.DataScope.Policies()
	assert.Equal(t, datascope.FailClosed, fp)
	assert.Equal(t, datascope.MultiRoleUnion, mp)
}

func TestLoadConfigFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
[permission]
superAdminRoleKeys = ["root", "admin"]
mergeStrategy = "intersection"
cacheTTL = 30

[dataScope]
failurePolicy = "open"
multiRolePolicy = "intersection"
`)

	c, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "admin"}, c.Permission.SuperAdminRoleKeys)
	assert.Equal(t, 30*time.Second, c.Permission.PermissionCacheTTL())

	fp, mp := c.DataScope.Policies()
	assert.Equal(t, datascope.FailOpen, fp)
	assert.Equal(t, datascope.MultiRoleIntersection, mp)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "merge strategy", body: "[permission]\nmergeStrategy = \"average\"\n"},
		{name: "failure policy", body: "[dataScope]\nfailurePolicy = \"maybe\"\n"},
		{name: "multi role policy", body: "[dataScope]\nmultiRolePolicy = \"max\"\n"},
		{name: "negative ttl", body: "[permission]\ncacheTTL = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
