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
	"strings"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/engine/repo"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/go-arcade/arcade-admin/pkg/trace"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

type DeptService struct {
	deptRepo    repo.IDeptRepository
	userRepo    repo.IUserRepository
	interceptor *datascope.Interceptor
}

func NewDeptService(deptRepo repo.IDeptRepository, userRepo repo.IUserRepository, interceptor *datascope.Interceptor) *DeptService {
	return &DeptService{
		deptRepo:    deptRepo,
		userRepo:    userRepo,
		interceptor: interceptor,
	}
}

// GetDept 获取部门
func (ds *DeptService) GetDept(ctx context.Context, id uint64) (*model.Dept, error) {
	dept, err := ds.deptRepo.GetDept(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDeptNotFound
		}
		return nil, errors.Wrapf(err, "get dept %d", id)
	}
	return dept, nil
}

// CreateDept 创建部门，ancestors 由父部门推导
func (ds *DeptService) CreateDept(ctx context.Context, req *model.CreateDeptReq, createBy uint64) (*model.Dept, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "dept name is required")
	}

	ancestors := model.RootAncestors
	if req.ParentId != 0 {
		parent, err := ds.deptRepo.GetDept(ctx, req.ParentId)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrParentNotFound
			}
			return nil, errors.Wrapf(err, "get parent dept %d", req.ParentId)
		}
		if parent.IsEnabled != model.Enabled {
			return nil, ErrParentDisabled
		}
		ancestors = parent.ChildAncestors()
	}

	dept := &model.Dept{
		ParentId:  req.ParentId,
		Ancestors: ancestors,
		Name:      name,
		OrderNum:  req.OrderNum,
		Leader:    req.Leader,
		Phone:     req.Phone,
		Email:     req.Email,
		IsEnabled: model.Enabled,
		CreateBy:  createBy,
	}
	if err := ds.deptRepo.CreateDept(ctx, dept); err != nil {
		log.Errorw("failed to create dept", "name", name, "error", err)
		return nil, errors.Wrap(err, "create dept")
	}

	log.Infow("dept created", "deptId", dept.ID, "ancestors", dept.Ancestors)
	return dept, nil
}

// UpdateDept 更新部门；parentId 变化时走 Reparent。
// All field checks run before the move so a rejected request writes nothing.
func (ds *DeptService) UpdateDept(ctx context.Context, id uint64, req *model.UpdateDeptReq) error {
	dept, err := ds.GetDept(ctx, id)
	if err != nil {
		return err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return errors.Wrap(ErrInvalidArgument, "dept name is required")
		}
		updates["name"] = name
	}
	if req.OrderNum != nil {
		updates["order_num"] = *req.OrderNum
	}
	if req.Leader != nil {
		updates["leader"] = *req.Leader
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.IsEnabled != nil {
		if *req.IsEnabled == model.Disabled {
			if err := ds.ensureNoEnabledDescendants(ctx, id); err != nil {
				return err
			}
		}
		updates["is_enabled"] = *req.IsEnabled
	}

	if req.ParentId != nil && *req.ParentId != dept.ParentId {
		if err := ds.Reparent(ctx, id, *req.ParentId); err != nil {
			return err
		}
	}
	if len(updates) == 0 {
		return nil
	}

	if err := ds.deptRepo.UpdateDept(ctx, id, updates); err != nil {
		log.Errorw("failed to update dept", "deptId", id, "error", err)
		return errors.Wrapf(err, "update dept %d", id)
	}
	return nil
}

func (ds *DeptService) ensureNoEnabledDescendants(ctx context.Context, id uint64) error {
	depts, err := ds.deptRepo.ListDepts(ctx)
	if err != nil {
		return errors.Wrap(err, "list depts")
	}
	x := newDeptIndex(depts)
	for _, did := range x.descendants(id) {
		if x.byId[did].IsEnabled == model.Enabled {
			return ErrDeptHasEnabledChildren
		}
	}
	return nil
}

// DeleteDept 删除部门，存在子部门或用户时拒绝
func (ds *DeptService) DeleteDept(ctx context.Context, id uint64) error {
	if _, err := ds.GetDept(ctx, id); err != nil {
		return err
	}

	children, err := ds.deptRepo.CountChildren(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "count children of dept %d", id)
	}
	if children > 0 {
		return ErrDeptHasChildren
	}

	users, err := ds.userRepo.CountUsersInDept(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "count users of dept %d", id)
	}
	if users > 0 {
		return ErrDeptHasUsers
	}

	if err := ds.deptRepo.DeleteDept(ctx, id); err != nil {
		log.Errorw("failed to delete dept", "deptId", id, "error", err)
		return errors.Wrapf(err, "delete dept %d", id)
	}
	log.Infow("dept deleted", "deptId", id)
	return nil
}

// Reparent moves id and its subtree under newParentId (0 for root). Moving a
// dept under itself or one of its descendants is rejected; on any rejection
// nothing is written.
func (ds *DeptService) Reparent(ctx context.Context, id, newParentId uint64) (err error) {
	ctx, span := trace.Start(ctx, "dept.Reparent",
		attribute.Int64("dept.id", int64(id)),
		attribute.Int64("dept.parent_id", int64(newParentId)),
	)
	defer func() { trace.End(span, err) }()

	err = ds.deptRepo.MoveDept(ctx, func(snapshot []model.Dept) ([]repo.DeptPathUpdate, error) {
		return planMove(snapshot, id, newParentId)
	})
	if err != nil {
		if isRejection(err) {
			return err
		}
		log.Errorw("failed to move dept", "deptId", id, "parentId", newParentId, "error", err)
		return errors.Wrapf(err, "move dept %d", id)
	}
	log.Infow("dept moved", "deptId", id, "parentId", newParentId)
	return nil
}

// RebuildAncestors rewrites every ancestor path that disagrees with the parent
// chain and returns how many rows changed.
func (ds *DeptService) RebuildAncestors(ctx context.Context) (int, error) {
	var changed int
	err := ds.deptRepo.MoveDept(ctx, func(snapshot []model.Dept) ([]repo.DeptPathUpdate, error) {
		updates := planRebuild(snapshot)
		changed = len(updates)
		return updates, nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "rebuild dept ancestors")
	}
	return changed, nil
}

// AuditAncestors reports whether every stored ancestor path matches the
// parent chain.
func (ds *DeptService) AuditAncestors(ctx context.Context) (bool, error) {
	depts, err := ds.deptRepo.ListDepts(ctx)
	if err != nil {
		return false, errors.Wrap(err, "list depts")
	}
	return AncestorsConsistent(depts), nil
}

// ListDeptTree 返回调用方数据范围内的部门树
func (ds *DeptService) ListDeptTree(ctx context.Context) ([]*model.Dept, error) {
	depts, err := datascope.Query(ctx, ds.interceptor, OpDeptList, ds.deptRepo.ListDeptsScoped)
	if err != nil {
		return nil, errors.Wrap(err, "list depts")
	}
	return BuildDeptTree(depts), nil
}

// DescendantIds returns the ids strictly below id.
func (ds *DeptService) DescendantIds(ctx context.Context, id uint64) ([]uint64, error) {
	depts, err := ds.deptRepo.ListDepts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list depts")
	}
	return DescendantIdsOf(depts, id), nil
}

func isRejection(err error) bool {
	for _, target := range []error{ErrDeptNotFound, ErrParentNotFound, ErrParentDisabled, ErrDeptCycle,
		ErrRoleNotFound, ErrParentRoleNotFound, ErrRoleCycle} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
