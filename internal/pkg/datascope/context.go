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
	"context"
	"sync/atomic"
)

// Scope is the per-call state published for one intercepted operation.
type Scope struct {
	Operation  string
	UserId     uint64
	DeptId     *uint64
	Predicate  Predicate
	TableAlias string
	ColumnName string

	released atomic.Bool
}

type scopeKey struct{}

// publish derives a context carrying s. Only the interceptor publishes.
func publish(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// release invalidates s, so a context that escaped the call (for example
// captured by a goroutine) no longer yields it.
func (s *Scope) release() {
	s.released.Store(true)
}

// FromContext returns the live scope of the enclosing intercepted call.
func FromContext(ctx context.Context) (*Scope, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	if !ok || s == nil || s.released.Load() {
		return nil, false
	}
	return s, true
}

// PredicateFromContext returns the live predicate, or the empty predicate.
func PredicateFromContext(ctx context.Context) Predicate {
	s, ok := FromContext(ctx)
	if !ok {
		return Predicate{}
	}
	return s.Predicate
}
