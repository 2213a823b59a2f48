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

// Package datascope computes row-level visibility predicates and carries them
// through a request via context.Context.
package datascope

import (
	"context"
	"fmt"
	"strings"
)

// DataScope is a role's row visibility policy.
type DataScope string

const (
	ScopeAll          DataScope = "ALL"
	ScopeSelf         DataScope = "SELF"
	ScopeDept         DataScope = "DEPT"
	ScopeDeptAndChild DataScope = "DEPT_AND_CHILD"
	ScopeCustom       DataScope = "CUSTOM"
)

// Valid reports whether s is one of the known policies.
func (s DataScope) Valid() bool {
	switch s {
	case ScopeAll, ScopeSelf, ScopeDept, ScopeDeptAndChild, ScopeCustom:
		return true
	}
	return false
}

// ParseDataScope parses a policy name, case-insensitive.
func ParseDataScope(v string) (DataScope, error) {
	s := DataScope(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown data scope %q", v)
	}
	return s, nil
}

const (
	DefaultTableAlias  = "t"
	DefaultOwnerColumn = "create_by"
	DefaultDeptColumn  = "dept_id"
)

// Identity is the acting caller as seen by the interceptor.
type Identity struct {
	UserId     uint64
	DeptId     *uint64
	SuperAdmin bool
}

type identityKey struct{}

// WithIdentity attaches the caller identity to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// LogFields exposes the identity to the log package.
func LogFields(ctx context.Context) []any {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	return []any{"user_id", id.UserId}
}
