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

package datascope

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`#\{\s*([A-Za-z]+)\s*\}`)

// ErrMissingDeptPlaceholder is returned when a template references
// #{deptId} for a caller without a department.
var ErrMissingDeptPlaceholder = errors.New("custom condition references #{deptId} but caller has no department")

// RenderCondition turns a custom condition template into a bound predicate.
// #{userId} and #{deptId} become "?" placeholders with the caller's values
// as args, so ids never reach the SQL text.
func RenderCondition(tmpl string, id Identity) (Predicate, error) {
	if strings.TrimSpace(tmpl) == "" {
		return Predicate{}, nil
	}
	if strings.Contains(tmpl, "?") {
		return Predicate{}, fmt.Errorf("custom condition must not contain raw placeholders: %q", tmpl)
	}

	var (
		args   []any
		render error
	)
	sql := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		switch name {
		case "userId":
			args = append(args, id.UserId)
		case "deptId":
			if id.DeptId == nil {
				if render == nil {
					render = ErrMissingDeptPlaceholder
				}
				return m
			}
			args = append(args, *id.DeptId)
		default:
			if render == nil {
				render = fmt.Errorf("unknown placeholder %q in custom condition", m)
			}
			return m
		}
		return "?"
	})
	if render != nil {
		return Predicate{}, render
	}
	return Predicate{SQL: sql, Args: args}, nil
}
