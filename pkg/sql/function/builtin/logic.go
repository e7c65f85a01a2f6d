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

package builtin

import (
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// binaryLogic is a three-valued boolean operator. When one operand is
// the short-circuit value the result is that value, whatever the other
// operand is. Otherwise a NULL operand makes the result NULL.
type binaryLogic struct {
	function.Base
	hasShortCircuit bool
	shortCircuit    bool
	op              func(a, b bool) bool
}

func newBinaryLogic(name string, op func(a, b bool) bool) *binaryLogic {
	return &binaryLogic{
		Base: function.Base{
			FuncNames:     []string{name},
			ExplainLayout: function.BINARY_LOGICAL_OPERATOR,
			Binding:       function.NewInputBinding().Covers(types.T_bool, 0, 1),
			Result:        function.FixedResult(types.T_bool.ToType()),
		},
		op: op,
	}
}

func (f *binaryLogic) withShortCircuit(v bool) *binaryLogic {
	f.hasShortCircuit, f.shortCircuit = true, v
	return f
}

func (f *binaryLogic) Contaminates(int) bool {
	return false
}

func (f *binaryLogic) ConstnessPrefix() int {
	return 2
}

func (f *binaryLogic) FoldConstant(_ *function.ExecutionContext, i int, inputs []function.PreptimeValue) function.Constness {
	in := inputs[i]
	if f.hasShortCircuit && in.IsKnown() && !in.IsKnownNull() && in.Value.Bool() == f.shortCircuit {
		return function.Constant(value.NewBool(f.shortCircuit))
	}
	return function.UnknownConstness()
}

func (f *binaryLogic) Evaluate(_ *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	a, err := in.Get(0)
	if err != nil {
		return err
	}
	b, err := in.Get(1)
	if err != nil {
		return err
	}
	if f.hasShortCircuit {
		for _, v := range []value.Value{a, b} {
			if !v.IsNull() && v.Bool() == f.shortCircuit {
				out.Put(value.NewBool(f.shortCircuit))
				return nil
			}
		}
	}
	if a.IsNull() || b.IsNull() {
		out.PutNull()
		return nil
	}
	out.Put(value.NewBool(f.op(a.Bool(), b.Bool())))
	return nil
}

type not struct {
	function.Base
}

func (f *not) Evaluate(_ *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	out.Put(value.NewBool(!v.Bool()))
	return nil
}

func logicFunctions() []function.ScalarFunction {
	return []function.ScalarFunction{
		newBinaryLogic("AND", func(a, b bool) bool { return a && b }).withShortCircuit(false),
		newBinaryLogic("OR", func(a, b bool) bool { return a || b }).withShortCircuit(true),
		newBinaryLogic("XOR", func(a, b bool) bool { return a != b }),
		&not{function.Base{
			FuncNames:     []string{"NOT"},
			ExplainLayout: function.UNARY_LOGICAL_OPERATOR,
			Binding:       function.NewInputBinding().Covers(types.T_bool, 0),
			Result:        function.FixedResult(types.T_bool.ToType()),
		}},
	}
}
