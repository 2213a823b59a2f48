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

package service

import (
	"context"
	"slices"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/pkg/errors"
)

// subject is a user together with the enabled roles bound to it and the
// whole role hierarchy those roles live in.
type subject struct {
	user  *model.User
	held  []model.Role
	index *roleIndex
}

type subjectLoader struct {
	userRepo     repo.IUserRepository
	roleRepo     repo.IRoleRepository
	userRoleRepo repo.IUserRoleBindingRepository
}

func (l subjectLoader) load(ctx context.Context, userId uint64) (*subject, error) {
	user, err := l.userRepo.GetUser(ctx, userId)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrapf(err, "get user %d", userId)
	}
	if user.IsEnabled != model.Enabled {
		return nil, ErrUserDisabled
	}

	roleIds, err := l.userRoleRepo.ListRoleIdsByUser(ctx, userId)
	if err != nil {
		return nil, errors.Wrapf(err, "list roles of user %d", userId)
	}
	roles, err := l.roleRepo.ListRoles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list roles")
	}

	s := &subject{user: user, index: newRoleIndex(roles)}
	for _, id := range roleIds {
		if r, ok := s.index.get(id); ok && r.IsEnabled == model.Enabled {
			s.held = append(s.held, *r)
		}
	}
	return s, nil
}

func (s *subject) roleKeys() []string {
	keys := make([]string, 0, len(s.held))
	for _, r := range s.held {
		keys = append(keys, r.RoleKey)
	}
	return keys
}

// isSuperAdmin reports whether any held role key is a super-admin key.
func (s *subject) isSuperAdmin(superKeys []string) bool {
	for _, r := range s.held {
		if slices.Contains(superKeys, r.RoleKey) {
			return true
		}
	}
	return false
}
