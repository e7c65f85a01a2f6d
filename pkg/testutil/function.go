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

package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/container/vector"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// FunctionTestInput is one argument of a function under test. A const
// input is passed as a literal, others as a column.
type FunctionTestInput struct {
	typ     types.Type
	values  []value.Value
	isConst bool
}

func NewFunctionTestInput(typ types.Type, values any, nulls []bool) FunctionTestInput {
	return FunctionTestInput{typ: typ, values: NewValues(typ.Oid, values, nulls)}
}

// NewFunctionTestConstInput is a literal argument, values holds one element.
func NewFunctionTestConstInput(typ types.Type, values any, nulls []bool) FunctionTestInput {
	return FunctionTestInput{typ: typ, values: NewValues(typ.Oid, values, nulls), isConst: true}
}

// FunctionTestResult is the expected outcome: an error, or one value per row.
type FunctionTestResult struct {
	typ       types.Type
	wantErr   bool
	values    []value.Value
	warnings  int
	checkWarn bool
}

func NewFunctionTestResult(typ types.Type, wantErr bool, values any, nulls []bool) FunctionTestResult {
	res := FunctionTestResult{typ: typ, wantErr: wantErr}
	if !wantErr {
		res.values = NewValues(typ.Oid, values, nulls)
	}
	return res
}

// WithWarnings expects n warnings to be reported.
func (r FunctionTestResult) WithWarnings(n int) FunctionTestResult {
	r.warnings, r.checkWarn = n, true
	return r
}

// FunctionTestCase compiles NAME(inputs...) and evaluates it over every row.
type FunctionTestCase struct {
	ctx      context.Context
	compiler *function.Compiler
	name     string
	inputs   []FunctionTestInput
	expected FunctionTestResult
}

func NewFunctionTestCase(compiler *function.Compiler, name string, inputs []FunctionTestInput, expect FunctionTestResult) *FunctionTestCase {
	return &FunctionTestCase{
		ctx:      context.Background(),
		compiler: compiler,
		name:     name,
		inputs:   inputs,
		expected: expect,
	}
}

// WithContext evaluates under ctx, for cancellation tests.
func (fc *FunctionTestCase) WithContext(ctx context.Context) *FunctionTestCase {
	fc.ctx = ctx
	return fc
}

// Run returns whether the case succeeded and a description of the failure.
func (fc *FunctionTestCase) Run() (succeed bool, info string) {
	args := make([]function.Expr, len(fc.inputs))
	var vecs []*vector.Vector
	for i, in := range fc.inputs {
		if in.isConst {
			v := value.Null()
			if len(in.values) > 0 {
				v = in.values[0]
			}
			args[i] = function.NewLiteral(in.typ, v)
			continue
		}
		args[i] = function.NewColumn(len(vecs), in.typ)
		vec, err := vector.NewVecFrom(fc.ctx, in.typ, in.values...)
		if err != nil {
			return false, err.Error()
		}
		vecs = append(vecs, vec)
	}

	expr, err := fc.compiler.Call(fc.ctx, fc.name, args...)
	if err != nil {
		if fc.expected.wantErr {
			return true, ""
		}
		return false, fmt.Sprintf("compile %s: %v", fc.name, err)
	}
	if expr.Type().Oid != fc.expected.typ.Oid {
		return false, fmt.Sprintf("result type is %s, expect %s", expr.Type(), fc.expected.typ)
	}

	stmt := function.NewStatement(expr)
	defer stmt.Close()
	exec, err := stmt.NewExecution(fc.ctx)
	if err != nil {
		return false, err.Error()
	}
	defer exec.Close()

	rows := len(fc.expected.values)
	var got []value.Value
	if len(vecs) > 0 {
		outs, err := exec.EvalBatch(NewBatch(vecs...))
		if err != nil {
			if fc.expected.wantErr {
				return true, ""
			}
			return false, fmt.Sprintf("evaluate %s: %v", expr, err)
		}
		for i := 0; i < outs[0].Length(); i++ {
			got = append(got, outs[0].GetValue(i))
		}
	} else {
		if rows == 0 {
			rows = 1
		}
		for i := 0; i < rows; i++ {
			vals, err := exec.EvalRow(nil)
			if err != nil {
				if fc.expected.wantErr {
					return true, ""
				}
				return false, fmt.Sprintf("evaluate %s: %v", expr, err)
			}
			got = append(got, vals[0])
		}
	}
	if fc.expected.wantErr {
		return false, fmt.Sprintf("expect an error, got %s", valuesString(got))
	}
	if len(got) != len(fc.expected.values) {
		return false, fmt.Sprintf("got %d rows, expect %d", len(got), len(fc.expected.values))
	}
	for i := range got {
		if !got[i].Equal(fc.expected.values[i]) {
			return false, fmt.Sprintf("row %d of %s: got %s, expect %s", i, expr, valuesString(got), valuesString(fc.expected.values))
		}
	}
	if fc.expected.checkWarn && len(exec.Warnings()) != fc.expected.warnings {
		return false, fmt.Sprintf("got %d warnings, expect %d", len(exec.Warnings()), fc.expected.warnings)
	}
	return true, ""
}

func valuesString(vals []value.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
