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
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FailurePolicy decides what an operation sees when its scope cannot be computed.
type FailurePolicy string

const (
	// FailClosed runs the operation under MatchNone.
	FailClosed FailurePolicy = "closed"
	// FailOpen runs the operation without a predicate.
	FailOpen FailurePolicy = "open"
)

// ParseFailurePolicy accepts "open" or "closed". Empty means closed.
func ParseFailurePolicy(v string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", string(FailClosed):
		return FailClosed, nil
	case string(FailOpen):
		return FailOpen, nil
	}
	return "", fmt.Errorf("unknown failure policy %q", v)
}

// MultiRolePolicy combines the predicates of a caller's roles.
type MultiRolePolicy string

const (
	// MultiRoleUnion ORs role predicates; any ALL role removes the restriction.
	MultiRoleUnion MultiRolePolicy = "union"
	// MultiRoleIntersection ANDs role predicates.
	MultiRoleIntersection MultiRolePolicy = "intersection"
)

// ParseMultiRolePolicy accepts "union" or "intersection". Empty means union.
func ParseMultiRolePolicy(v string) (MultiRolePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", string(MultiRoleUnion):
		return MultiRoleUnion, nil
	case string(MultiRoleIntersection):
		return MultiRoleIntersection, nil
	}
	return "", fmt.Errorf("unknown multi-role policy %q", v)
}

// Options is the annotation attached to one data-access operation.
type Options struct {
	Enabled bool
	// Override replaces the role-derived scope for this operation.
	Override    *DataScope
	TableAlias  string
	ColumnName  string
	OwnerColumn string
	// CustomCondition is a template over #{userId} and #{deptId}, merged
	// with the role predicate using Operator.
	CustomCondition  string
	Operator         Operator
	IgnoreSuperAdmin bool
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns an enabled annotation with the default columns.
func DefaultOptions() Options {
	return Options{
		Enabled:     true,
		TableAlias:  DefaultTableAlias,
		ColumnName:  DefaultDeptColumn,
		OwnerColumn: DefaultOwnerColumn,
		Operator:    OpAnd,
	}
}

func WithDisabled() Option {
	return func(o *Options) { o.Enabled = false }
}

func WithOverride(s DataScope) Option {
	return func(o *Options) { o.Override = &s }
}

func WithTableAlias(alias string) Option {
	return func(o *Options) { o.TableAlias = alias }
}

func WithColumnName(column string) Option {
	return func(o *Options) { o.ColumnName = column }
}

func WithOwnerColumn(column string) Option {
	return func(o *Options) { o.OwnerColumn = column }
}

func WithCustomCondition(tmpl string, op Operator) Option {
	return func(o *Options) {
		o.CustomCondition = tmpl
		o.Operator = op
	}
}

func WithIgnoreSuperAdmin() Option {
	return func(o *Options) { o.IgnoreSuperAdmin = true }
}

// Validate checks the identifiers and the override.
func (o Options) Validate() error {
	if o.Override != nil && !o.Override.Valid() {
		return fmt.Errorf("invalid override scope %q", *o.Override)
	}
	if _, err := Column(o.TableAlias, o.ColumnName); err != nil {
		return err
	}
	if _, err := Column(o.TableAlias, o.OwnerColumn); err != nil {
		return err
	}
	if o.Operator != "" && o.Operator != OpAnd && o.Operator != OpOr {
		return fmt.Errorf("invalid operator %q", o.Operator)
	}
	return nil
}

// Registry maps operation names to their annotation.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Options
}

func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Options)}
}

// Register annotates op. Re-registering replaces the previous annotation.
func (r *Registry) Register(op string, opts ...Option) error {
	if strings.TrimSpace(op) == "" {
		return fmt.Errorf("operation name is required")
	}
	o := DefaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	if err := o.Validate(); err != nil {
		return fmt.Errorf("register %s: %w", op, err)
	}
	r.mu.Lock()
	r.ops[op] = o
	r.mu.Unlock()
	return nil
}

// MustRegister is Register for static wiring.
func (r *Registry) MustRegister(op string, opts ...Option) {
	if err := r.Register(op, opts...); err != nil {
		panic(err)
	}
}

// Lookup returns the annotation of op.
func (r *Registry) Lookup(op string) (Options, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.ops[op]
	return o, ok
}

// Operations lists registered names in order.
func (r *Registry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
