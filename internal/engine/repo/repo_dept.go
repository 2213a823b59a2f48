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

package repo

import (
	"context"

	"github.com/go-arcade/arcade-admin/internal/engine/model"
	"github.com/go-arcade/arcade-admin/internal/pkg/datascope"
	"github.com/go-arcade/arcade-admin/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeptPathUpdate is one row rewrite produced by a tree move.
type DeptPathUpdate struct {
	ID        uint64
	ParentId  uint64
	Ancestors string
}

// DeptPlanFunc inspects a locked snapshot of the tree and returns the rows
// to rewrite. Returning an error aborts the move without writing.
type DeptPlanFunc func(snapshot []model.Dept) ([]DeptPathUpdate, error)

type IDeptRepository interface {
	GetDept(ctx context.Context, id uint64) (*model.Dept, error)
	ListDepts(ctx context.Context) ([]model.Dept, error)
	ListDeptsScoped(ctx context.Context) ([]model.Dept, error)
	CountChildren(ctx context.Context, id uint64) (int64, error)
	CreateDept(ctx context.Context, dept *model.Dept) error
	UpdateDept(ctx context.Context, id uint64, updates map[string]any) error
	DeleteDept(ctx context.Context, id uint64) error
	MoveDept(ctx context.Context, plan DeptPlanFunc) error
}

type DeptRepo struct {
	database.IDatabase
}

func NewDeptRepo(db database.IDatabase) IDeptRepository {
	return &DeptRepo{
		IDatabase: db,
	}
}

// GetDept 根据ID获取部门
func (r *DeptRepo) GetDept(ctx context.Context, id uint64) (*model.Dept, error) {
	var dept model.Dept
	if err := r.Database().WithContext(ctx).Where("id = ?", id).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

// ListDepts 获取全部部门（用于树与闭包计算）
func (r *DeptRepo) ListDepts(ctx context.Context) ([]model.Dept, error) {
	var depts []model.Dept
	err := r.Database().WithContext(ctx).
		Order("parent_id ASC, order_num ASC, id ASC").
		Find(&depts).Error
	return depts, err
}

// ListDeptsScoped 获取当前数据范围内可见的部门
func (r *DeptRepo) ListDeptsScoped(ctx context.Context) ([]model.Dept, error) {
	var depts []model.Dept
	err := r.Database().WithContext(ctx).
		Table("t_dept AS t").
		Scopes(datascope.Apply(ctx)).
		Order("t.parent_id ASC, t.order_num ASC, t.id ASC").
		Find(&depts).Error
	return depts, err
}

// CountChildren 统计未删除的直接子部门数量
func (r *DeptRepo) CountChildren(ctx context.Context, id uint64) (int64, error) {
	var count int64
	err := r.Database().WithContext(ctx).Model(&model.Dept{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

// CreateDept 创建部门
func (r *DeptRepo) CreateDept(ctx context.Context, dept *model.Dept) error {
	return r.Database().WithContext(ctx).Create(dept).Error
}

// UpdateDept 根据ID更新部门（不含层级字段）
func (r *DeptRepo) UpdateDept(ctx context.Context, id uint64, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Dept{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteDept 软删除部门
func (r *DeptRepo) DeleteDept(ctx context.Context, id uint64) error {
	return r.Database().WithContext(ctx).Where("id = ?", id).Delete(&model.Dept{}).Error
}

// MoveDept 在单个事务中锁定部门表快照，按 plan 重写节点及其子孙的祖级列表
func (r *DeptRepo) MoveDept(ctx context.Context, plan DeptPlanFunc) error {
	return database.WriteDB(r.Database()).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snapshot []model.Dept
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id ASC").Find(&snapshot).Error; err != nil {
			return err
		}
		updates, err := plan(snapshot)
		if err != nil {
			return err
		}
		for _, u := range updates {
			if err := tx.Model(&model.Dept{}).Where("id = ?", u.ID).Updates(map[string]any{
				"parent_id": u.ParentId,
				"ancestors": u.Ancestors,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
