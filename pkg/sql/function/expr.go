// Copyright 2021 - 2022 Matrix Origin
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

package function

import (
	"fmt"
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
)

// Expr is a node of a compiled scalar expression.
type Expr interface {
	Type() types.Type
	Eval(e *Execution, row []value.Value) (value.Value, error)
	String() string
}

// Literal is a value known while preparing.
type Literal struct {
	typ types.Type
	val value.Value
}

func NewLiteral(typ types.Type, val value.Value) *Literal {
	if val.IsNull() {
		typ.Nullable = true
	}
	return &Literal{typ: typ, val: val}
}

func (l *Literal) Type() types.Type {
	return l.typ
}

func (l *Literal) Value() value.Value {
	return l.val
}

func (l *Literal) Eval(*Execution, []value.Value) (value.Value, error) {
	return l.val, nil
}

func (l *Literal) String() string {
	if l.val.IsNull() {
		return "NULL"
	}
	switch l.typ.Oid {
	case types.T_varchar:
		return "'" + strings.ReplaceAll(l.val.String(), "'", "''") + "'"
	case types.T_varbinary:
		return fmt.Sprintf("X'%X'", l.val.Bytes())
	}
	return l.val.String()
}

// Column reads one input column of the row being evaluated.
type Column struct {
	Pos  int
	Name string
	typ  types.Type
}

func NewColumn(pos int, typ types.Type) *Column {
	return &Column{Pos: pos, Name: fmt.Sprintf("$%d", pos+1), typ: typ}
}

func (c *Column) Type() types.Type {
	return c.typ
}

func (c *Column) Eval(e *Execution, row []value.Value) (value.Value, error) {
	if c.Pos >= len(row) {
		return value.Null(), moerr.NewInternalError(e.ctx, "column %s out of row of %d values", c.Name, len(row))
	}
	return row[c.Pos], nil
}

func (c *Column) String() string {
	return c.Name
}

// Cast is an implicit cast inserted by the compiler.
type Cast struct {
	expr Expr
	typ  types.Type
}

func (c *Cast) Type() types.Type {
	return c.typ
}

func (c *Cast) Eval(e *Execution, row []value.Value) (value.Value, error) {
	v, err := c.expr.Eval(e, row)
	if err != nil {
		return value.Null(), err
	}
	return value.Cast(e.ctx, v, c.typ)
}

func (c *Cast) String() string {
	return fmt.Sprintf("CAST(%s AS %s)", c.expr, c.typ.Oid)
}

func children(expr Expr) []Expr {
	switch e := expr.(type) {
	case *Call:
		return e.args
	case *Cast:
		return []Expr{e.expr}
	}
	return nil
}

// walkCalls visits every call of the tree, children first.
func walkCalls(expr Expr, fn func(*Call)) {
	for _, child := range children(expr) {
		walkCalls(child, fn)
	}
	if call, ok := expr.(*Call); ok {
		fn(call)
	}
}
