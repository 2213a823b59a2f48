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
	"errors"
	"fmt"

	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/go-arcade/arcade-admin/pkg/metrics"
)

var (
	ErrUnknownOperation = errors.New("operation is not registered for data scope")
	ErrNoIdentity       = errors.New("no caller identity in context")
)

// decision outcomes reported to metrics
const (
	outcomeBypass     = "bypass"
	outcomeSuperAdmin = "super_admin"
	outcomeScoped     = "scoped"
	outcomeUnscoped   = "unscoped"
	outcomeFailed     = "failed"
)

// ScopeSource computes the role-derived predicate for a caller.
// An empty predicate with a nil error means no restriction.
type ScopeSource interface {
	Resolve(ctx context.Context, id Identity, opts Options) (Predicate, error)
}

// ScopeSourceFunc adapts a function to ScopeSource.
type ScopeSourceFunc func(ctx context.Context, id Identity, opts Options) (Predicate, error)

func (f ScopeSourceFunc) Resolve(ctx context.Context, id Identity, opts Options) (Predicate, error) {
	return f(ctx, id, opts)
}

// Interceptor publishes a per-call Scope around registered operations.
type Interceptor struct {
	registry *Registry
	source   ScopeSource
	policy   FailurePolicy
}

func NewInterceptor(registry *Registry, source ScopeSource, policy FailurePolicy) *Interceptor {
	if policy != FailOpen {
		policy = FailClosed
	}
	return &Interceptor{registry: registry, source: source, policy: policy}
}

// Policy returns the configured failure policy.
func (i *Interceptor) Policy() FailurePolicy {
	return i.policy
}

// Run executes fn under the scope computed for op. The scope is visible to
// fn through FromContext and is released when Run returns, including when
// fn panics.
func (i *Interceptor) Run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	opts, ok := i.registry.Lookup(op)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}

	scope, outcome := i.compute(ctx, op, opts)
	metrics.RecordDataScopeDecision(op, outcome)
	if scope == nil {
		// mask any scope inherited from an enclosing call
		return fn(publish(ctx, nil))
	}

	defer scope.release()
	defer func() {
		if r := recover(); r != nil {
			log.WithContext(ctx).Errorw("panic in data scoped operation", "operation", op, "panic", r)
			panic(r)
		}
	}()
	return fn(publish(ctx, scope))
}

// compute walks bypass, resolve and compute. A nil scope means the
// operation runs without a predicate. A panic while computing is handled
// like any other failure.
func (i *Interceptor) compute(ctx context.Context, op string, opts Options) (scope *Scope, outcome string) {
	defer func() {
		if r := recover(); r != nil {
			id, _ := IdentityFromContext(ctx)
			scope, outcome = i.fail(ctx, op, opts, id, fmt.Errorf("panic computing scope: %v", r))
		}
	}()

	if !opts.Enabled {
		return nil, outcomeBypass
	}

	id, ok := IdentityFromContext(ctx)
	if !ok {
		return i.fail(ctx, op, opts, Identity{}, ErrNoIdentity)
	}
	if id.SuperAdmin && !opts.IgnoreSuperAdmin {
		return nil, outcomeSuperAdmin
	}

	pred, err := i.predicate(ctx, id, opts)
	if err != nil {
		return i.fail(ctx, op, opts, id, err)
	}
	if pred.IsEmpty() {
		return nil, outcomeUnscoped
	}

	log.WithContext(ctx).Debugw("data scope applied", "operation", op, "predicate", pred.String())
	return newScope(op, id, opts, pred), outcomeScoped
}

func (i *Interceptor) predicate(ctx context.Context, id Identity, opts Options) (Predicate, error) {
	if i.source == nil {
		return Predicate{}, errors.New("no scope source configured")
	}
	rolePred, err := i.source.Resolve(ctx, id, opts)
	if err != nil {
		return Predicate{}, fmt.Errorf("resolve scope: %w", err)
	}

	custom, err := RenderCondition(opts.CustomCondition, id)
	if err != nil {
		return Predicate{}, err
	}
	if custom.IsEmpty() {
		return rolePred, nil
	}
	// OR against an unrestricted role predicate stays unrestricted
	if opts.Operator == OpOr && rolePred.IsEmpty() {
		return Predicate{}, nil
	}
	return MergeConditions([]Predicate{rolePred, custom}, opts.Operator), nil
}

func (i *Interceptor) fail(ctx context.Context, op string, opts Options, id Identity, err error) (*Scope, string) {
	metrics.RecordDataScopeFailure(op, string(i.policy))
	log.WithContext(ctx).Errorw("data scope computation failed",
		"operation", op,
		"policy", i.policy,
		"error", err,
	)
	if i.policy == FailOpen {
		return nil, outcomeFailed
	}
	return newScope(op, id, opts, MatchNone), outcomeFailed
}

func newScope(op string, id Identity, opts Options, pred Predicate) *Scope {
	return &Scope{
		Operation:  op,
		UserId:     id.UserId,
		DeptId:     id.DeptId,
		Predicate:  pred,
		TableAlias: opts.TableAlias,
		ColumnName: opts.ColumnName,
	}
}

// Query runs fn under Run and returns its result.
func Query[T any](ctx context.Context, i *Interceptor, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := i.Run(ctx, op, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
