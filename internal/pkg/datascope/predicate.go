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
	"regexp"
	"strings"
)

// Predicate is a parameterized SQL condition. Args bind to the "?"
// placeholders in SQL in order; a slice arg expands for "IN ?".
type Predicate struct {
	SQL  string
	Args []any
}

// MatchNone is the predicate that no row satisfies.
var MatchNone = Predicate{SQL: "1 = 0"}

// IsEmpty reports whether p imposes no restriction.
func (p Predicate) IsEmpty() bool {
	return strings.TrimSpace(p.SQL) == ""
}

// MatchesNothing reports whether p is the MatchNone predicate.
func (p Predicate) MatchesNothing() bool {
	return strings.TrimSpace(p.SQL) == MatchNone.SQL
}

// String renders p with its args inlined. For logs and tests only.
func (p Predicate) String() string {
	if len(p.Args) == 0 {
		return p.SQL
	}
	var b strings.Builder
	argIdx := 0
	for _, r := range p.SQL {
		if r == '?' && argIdx < len(p.Args) {
			b.WriteString(renderArg(p.Args[argIdx]))
			argIdx++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func renderArg(v any) string {
	switch a := v.(type) {
	case []uint64:
		parts := make([]string, len(a))
		for i, id := range a {
			parts[i] = fmt.Sprint(id)
		}
		return "(" + strings.Join(parts, ",") + ")"
	case string:
		return "'" + strings.ReplaceAll(a, "'", "''") + "'"
	default:
		return fmt.Sprint(a)
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Column qualifies column with alias, validating both as plain identifiers.
func Column(alias, column string) (string, error) {
	if !identifierPattern.MatchString(column) {
		return "", fmt.Errorf("invalid column name %q", column)
	}
	if alias == "" {
		return column, nil
	}
	if !identifierPattern.MatchString(alias) {
		return "", fmt.Errorf("invalid table alias %q", alias)
	}
	return alias + "." + column, nil
}

// Eq builds "column = ?".
func Eq(column string, value any) Predicate {
	return Predicate{SQL: column + " = ?", Args: []any{value}}
}

// In builds "column IN ?". An empty id list yields MatchNone.
func In(column string, ids []uint64) Predicate {
	if len(ids) == 0 {
		return MatchNone
	}
	cp := make([]uint64, len(ids))
	copy(cp, ids)
	return Predicate{SQL: column + " IN ?", Args: []any{cp}}
}

// Operator joins predicates.
type Operator string

const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
)

// ParseOperator accepts "AND" or "OR", case-insensitive. Empty means AND.
func ParseOperator(v string) (Operator, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", string(OpAnd):
		return OpAnd, nil
	case string(OpOr):
		return OpOr, nil
	}
	return "", fmt.Errorf("unknown operator %q", v)
}

// MergeConditions joins the non-empty predicates with op, wrapping each in
// parentheses. A single survivor is returned unwrapped and an empty input
// yields the empty predicate.
func MergeConditions(preds []Predicate, op Operator) Predicate {
	if op != OpOr {
		op = OpAnd
	}
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if !p.IsEmpty() {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return Predicate{}
	case 1:
		return kept[0]
	}

	parts := make([]string, 0, len(kept))
	var args []any
	for _, p := range kept {
		parts = append(parts, "("+strings.TrimSpace(p.SQL)+")")
		args = append(args, p.Args...)
	}
	return Predicate{SQL: strings.Join(parts, " "+string(op)+" "), Args: args}
}
