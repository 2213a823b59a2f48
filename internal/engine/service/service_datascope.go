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
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/go-arcade/arcade-admin/pkg/trace"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// Intercepted operations.
const (
	OpUserList = "user_list"
	OpDeptList = "dept_list"
)

// NewDataScopeRegistry registers every data-scoped operation of the engine.
func NewDataScopeRegistry() *datascope.Registry {
	reg := datascope.NewRegistry()
	reg.MustRegister(OpUserList)
	// depts are scoped on their own primary key
	reg.MustRegister(OpDeptList, datascope.WithColumnName("id"))
	return reg
}

// ResolveRequest is the input of a single-scope resolution.
type ResolveRequest struct {
	DataScope     datascope.DataScope
	UserId        uint64
	DeptId        *uint64
	CustomDeptIds []uint64
	TableAlias    string
	ColumnName    string
	OwnerColumn   string
}

// DataScopeService turns data scopes into row predicates.
type DataScopeService struct {
	deptRepo     repo.IDeptRepository
	roleRepo     repo.IRoleRepository
	userRoleRepo repo.IUserRoleBindingRepository
	roleDeptRepo repo.IRoleDeptBindingRepository
	multiRole    datascope.MultiRolePolicy
}

func NewDataScopeService(
	deptRepo repo.IDeptRepository,
	roleRepo repo.IRoleRepository,
	userRoleRepo repo.IUserRoleBindingRepository,
	roleDeptRepo repo.IRoleDeptBindingRepository,
	multiRole datascope.MultiRolePolicy,
) *DataScopeService {
	return &DataScopeService{
		deptRepo:     deptRepo,
		roleRepo:     roleRepo,
		userRoleRepo: userRoleRepo,
		roleDeptRepo: roleDeptRepo,
		multiRole:    multiRole,
	}
}

// Resolve builds the predicate for one scope. ALL yields the empty predicate.
// DEPT and DEPT_AND_CHILD without a dept return the empty predicate together
// with ErrMissingDept; the caller picks the fallback.
func (s *DataScopeService) Resolve(ctx context.Context, req ResolveRequest) (datascope.Predicate, error) {
	alias := req.TableAlias
	deptCol := req.ColumnName
	if deptCol == "" {
		deptCol = datascope.DefaultDeptColumn
	}
	ownerCol := req.OwnerColumn
	if ownerCol == "" {
		ownerCol = datascope.DefaultOwnerColumn
	}

	switch req.DataScope {
	case datascope.ScopeAll:
		return datascope.Predicate{}, nil

	case datascope.ScopeSelf:
		col, err := datascope.Column(alias, ownerCol)
		if err != nil {
			return datascope.Predicate{}, err
		}
		return datascope.Eq(col, req.UserId), nil

	case datascope.ScopeDept:
		if req.DeptId == nil {
			return datascope.Predicate{}, ErrMissingDept
		}
		col, err := datascope.Column(alias, deptCol)
		if err != nil {
			return datascope.Predicate{}, err
		}
		return datascope.Eq(col, *req.DeptId), nil

	case datascope.ScopeDeptAndChild:
		if req.DeptId == nil {
			return datascope.Predicate{}, ErrMissingDept
		}
		col, err := datascope.Column(alias, deptCol)
		if err != nil {
			return datascope.Predicate{}, err
		}
		depts, err := s.deptRepo.ListDepts(ctx)
		if err != nil {
			return datascope.Predicate{}, errors.Wrap(err, "list depts")
		}
		return datascope.In(col, SelfAndDescendantIdsOf(depts, *req.DeptId)), nil

	case datascope.ScopeCustom:
		col, err := datascope.Column(alias, deptCol)
		if err != nil {
			return datascope.Predicate{}, err
		}
		ids := slices.Clone(req.CustomDeptIds)
		slices.Sort(ids)
		return datascope.In(col, slices.Compact(ids)), nil
	}
	return datascope.Predicate{}, errors.Wrapf(ErrInvalidDataScope, "%q", req.DataScope)
}

// ScopeSource adapts the service to the interceptor.
func (s *DataScopeService) ScopeSource() datascope.ScopeSource {
	return datascope.ScopeSourceFunc(s.resolveForIdentity)
}

// resolveForIdentity composes the scopes of every enabled role the caller
// holds. A caller without roles sees nothing.
func (s *DataScopeService) resolveForIdentity(ctx context.Context, id datascope.Identity, opts datascope.Options) (pred datascope.Predicate, err error) {
	ctx, span := trace.Start(ctx, "datascope.resolve", attribute.Int64("user.id", int64(id.UserId)))
	defer func() {
		span.SetAttributes(attribute.String("datascope.predicate", pred.String()))
		trace.End(span, err)
	}()

	roleIds, err := s.userRoleRepo.ListRoleIdsByUser(ctx, id.UserId)
	if err != nil {
		return datascope.Predicate{}, errors.Wrapf(err, "list roles of user %d", id.UserId)
	}
	if len(roleIds) == 0 {
		return datascope.MatchNone, nil
	}
	roles, err := s.roleRepo.ListRolesByIds(ctx, roleIds)
	if err != nil {
		return datascope.Predicate{}, errors.Wrap(err, "list roles")
	}
	enabled := make([]model.Role, 0, len(roles))
	for _, r := range roles {
		if r.IsEnabled == model.Enabled {
			enabled = append(enabled, r)
		}
	}
	if len(enabled) == 0 {
		return datascope.MatchNone, nil
	}

	if opts.Override != nil {
		req, err := s.request(ctx, id, opts, *opts.Override, enabled)
		if err != nil {
			return datascope.Predicate{}, err
		}
		return s.resolveOrNone(ctx, req)
	}

	preds := make([]datascope.Predicate, 0, len(enabled))
	for _, r := range enabled {
		req, err := s.request(ctx, id, opts, r.DataScope, []model.Role{r})
		if err != nil {
			return datascope.Predicate{}, err
		}
		pred, err := s.resolveOrNone(ctx, req)
		if err != nil {
			return datascope.Predicate{}, err
		}
		preds = append(preds, pred)
	}
	return ComposeRolePredicates(preds, s.multiRole), nil
}

func (s *DataScopeService) request(ctx context.Context, id datascope.Identity, opts datascope.Options, scope datascope.DataScope, roles []model.Role) (ResolveRequest, error) {
	req := ResolveRequest{
		DataScope:   scope,
		UserId:      id.UserId,
		DeptId:      id.DeptId,
		TableAlias:  opts.TableAlias,
		ColumnName:  opts.ColumnName,
		OwnerColumn: opts.OwnerColumn,
	}
	if scope != datascope.ScopeCustom {
		return req, nil
	}
	// an overriding CUSTOM scope uses the custom depts of every held role
	for _, r := range roles {
		ids, err := s.roleDeptRepo.ListDeptIdsByRole(ctx, r.ID)
		if err != nil {
			return ResolveRequest{}, errors.Wrapf(err, "list custom depts of role %d", r.ID)
		}
		req.CustomDeptIds = append(req.CustomDeptIds, ids...)
	}
	return req, nil
}

// resolveOrNone narrows a missing dept to MatchNone.
func (s *DataScopeService) resolveOrNone(ctx context.Context, req ResolveRequest) (datascope.Predicate, error) {
	pred, err := s.Resolve(ctx, req)
	if errors.Is(err, ErrMissingDept) {
		log.WithContext(ctx).Warnw("dept scope requested without a dept, matching nothing",
			"userId", req.UserId, "dataScope", req.DataScope)
		return datascope.MatchNone, nil
	}
	return pred, err
}

// ComposeRolePredicates combines per-role predicates. Under union any
// unrestricted role lifts the restriction and MatchNone members are dropped;
// under intersection unrestricted members are dropped and any MatchNone wins.
// Duplicate predicates are collapsed.
func ComposeRolePredicates(preds []datascope.Predicate, policy datascope.MultiRolePolicy) datascope.Predicate {
	if len(preds) == 0 {
		return datascope.MatchNone
	}

	seen := make(map[string]bool, len(preds))
	var kept []datascope.Predicate
	keep := func(p datascope.Predicate) {
		if key := p.String(); !seen[key] {
			seen[key] = true
			kept = append(kept, p)
		}
	}

	if policy == datascope.MultiRoleIntersection {
		for _, p := range preds {
			if p.MatchesNothing() {
				return datascope.MatchNone
			}
			if !p.IsEmpty() {
				keep(p)
			}
		}
		return datascope.MergeConditions(kept, datascope.OpAnd)
	}

	for _, p := range preds {
		if p.IsEmpty() {
			return datascope.Predicate{}
		}
		if !p.MatchesNothing() {
			keep(p)
		}
	}
	if len(kept) == 0 {
		return datascope.MatchNone
	}
	return datascope.MergeConditions(kept, datascope.OpOr)
}
