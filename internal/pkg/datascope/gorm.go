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

	"gorm.io/gorm"
)

// Apply is a gorm scope narrowing the query to the live predicate in ctx.
//
//	db.Table("t_user AS t").Scopes(datascope.Apply(ctx)).Find(&users)
func Apply(ctx context.Context) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		p := PredicateFromContext(ctx)
		if p.IsEmpty() {
			return db
		}
		return db.Where(p.SQL, p.Args...)
	}
}
