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
	"context"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// coalesce returns its first non NULL input.
type coalesce struct {
	function.Base
}

func (f *coalesce) Contaminates(int) bool {
	return false
}

// FoldConstant folds on the first literal that is not NULL. An unknown
// input before it may be non NULL, so the call stays dynamic.
func (f *coalesce) FoldConstant(_ *function.ExecutionContext, i int, inputs []function.PreptimeValue) function.Constness {
	in := inputs[i]
	switch {
	case !in.IsKnown():
		return function.NotConstant()
	case in.IsKnownNull():
		return function.UnknownConstness()
	}
	return function.Constant(*in.Value)
}

func (f *coalesce) Evaluate(_ *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	for i := 0; i < in.Len(); i++ {
		v, err := in.Get(i)
		if err != nil {
			return err
		}
		if !v.IsNull() {
			out.Put(v)
			return nil
		}
	}
	out.PutNull()
	return nil
}

// nullIf returns NULL when both inputs are equal, its first input otherwise.
type nullIf struct {
	function.Base
}

func (f *nullIf) Contaminates(i int) bool {
	return i == 0
}

func (f *nullIf) Evaluate(_ *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	a, err := in.Get(0)
	if err != nil {
		return err
	}
	b, err := in.Get(1)
	if err != nil {
		return err
	}
	if !b.IsNull() && a.Equal(b) {
		out.PutNull()
		return nil
	}
	out.Put(a)
	return nil
}

// elt returns the input its first input routes to, counting from 1.
type elt struct {
	function.Base
}

func (f *elt) Contaminates(i int) bool {
	return i == 0
}

// FoldConstant decides on the routing input. The call folds when the
// routed input is a literal or when the route is out of range.
func (f *elt) FoldConstant(_ *function.ExecutionContext, i int, inputs []function.PreptimeValue) function.Constness {
	if i != 0 {
		return function.UnknownConstness()
	}
	route := inputs[0]
	switch {
	case !route.IsKnown():
		return function.NotConstant()
	case route.IsKnownNull():
		return function.Constant(value.Null())
	}
	n := route.Value.Int64()
	if n < 1 || n >= int64(len(inputs)) {
		return function.Constant(value.Null())
	}
	if selected := inputs[n]; selected.IsKnown() {
		return function.Constant(*selected.Value)
	}
	return function.NotConstant()
}

func (f *elt) Evaluate(_ *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	route, err := in.Get(0)
	if err != nil {
		return err
	}
	n := route.Int64()
	if n < 1 || n >= int64(in.Len()) {
		out.PutNull()
		return nil
	}
	v, err := in.Get(int(n))
	if err != nil {
		return err
	}
	out.Put(v)
	return nil
}

// extremum is MIN and MAX over a pair of comparable inputs.
type extremum struct {
	function.Base
	// sign of the comparison the result wins
	want int
}

func (f *extremum) Evaluate(_ *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	a, err := in.Get(0)
	if err != nil {
		return err
	}
	b, err := in.Get(1)
	if err != nil {
		return err
	}
	if b.Compare(a) == f.want {
		out.Put(b)
		return nil
	}
	out.Put(a)
	return nil
}

// orderable rejects classes without an order and compares booleans as integers.
func orderable(ctx context.Context, picked types.Type, _ []types.Type) (types.Type, error) {
	switch picked.Oid {
	case types.T_bool:
		return types.Promote(picked, types.T_int64), nil
	case types.T_blob, types.T_geometry:
		return types.Type{}, moerr.NewInvalidArg(ctx, "comparison of", picked.Oid.String())
	}
	return picked, nil
}

func pickingFunctions() []function.ScalarFunction {
	pair := function.NewInputBinding().PickingCovers(0, 1)
	return []function.ScalarFunction{
		&coalesce{function.Base{
			FuncNames: []string{"COALESCE"},
			Binding:   function.NewInputBinding().PickingVararg(1),
			Result:    function.PickingResult(),
		}},
		&coalesce{function.Base{
			FuncNames: []string{"IFNULL"},
			Binding:   pair,
			Result:    function.PickingResult(),
		}},
		&nullIf{function.Base{
			FuncNames: []string{"NULLIF"},
			Binding:   pair,
			Result:    function.PickingResult().Nullable(),
		}},
		&elt{function.Base{
			FuncNames: []string{"ELT"},
			Binding:   function.NewInputBinding().Covers(types.T_int64, 0).PickingVararg(1),
			Result:    function.PickingResult().Nullable(),
		}},
		&extremum{Base: function.Base{
			FuncNames: []string{"MIN", "LEAST"},
			Binding:   function.NewInputBinding().PickingCovers(0, 1).WithNormalizer(orderable),
			Result:    function.PickingResult(),
		}, want: -1},
		&extremum{Base: function.Base{
			FuncNames: []string{"MAX", "GREATEST"},
			Binding:   function.NewInputBinding().PickingCovers(0, 1).WithNormalizer(orderable),
			Result:    function.PickingResult(),
		}, want: 1},
	}
}
