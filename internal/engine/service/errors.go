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
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Validation and not-found errors surfaced to callers as rejections.
var (
	ErrInvalidArgument = errors.New("invalid argument")

	ErrDeptNotFound           = errors.New("dept not found")
	ErrParentNotFound         = errors.New("parent dept not found")
	ErrParentDisabled         = errors.New("parent dept is disabled")
	ErrDeptCycle              = errors.New("dept cannot be moved under itself or its descendants")
	ErrDeptHasChildren        = errors.New("dept has child depts")
	ErrDeptHasEnabledChildren = errors.New("dept has enabled child depts")
	ErrDeptHasUsers           = errors.New("dept has users")

	ErrRoleNotFound       = errors.New("role not found")
	ErrParentRoleNotFound = errors.New("parent role not found")
	ErrRoleCycle          = errors.New("role cannot inherit from itself or its descendants")
	ErrRoleKeyExists      = errors.New("role key already exists")
	ErrRoleHasChildren    = errors.New("role has child roles")
	ErrInvalidDataScope   = errors.New("invalid data scope")

	ErrUserNotFound = errors.New("user not found")
	ErrUserDisabled = errors.New("user is disabled")

	ErrUnknownMergeStrategy = errors.New("unknown permission merge strategy")

	// ErrMissingDept is returned with an empty predicate when a dept based
	// scope is resolved for a caller without a department.
	ErrMissingDept = errors.New("data scope requires a department but caller has none")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
