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
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

const logDecimalScale = 16

var (
	decimalCtx = apd.BaseContext.WithPrecision(34)
	decimalTwo = apd.New(2, 0)
)

// logFloat is a logarithm over DOUBLE or BIGINT. Non positive inputs
// give a warning and NULL.
type logFloat struct {
	function.Base
	fn func(float64) float64
}

func (f *logFloat) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	x := v.Float64()
	if v.Oid() == types.T_int64 {
		x = float64(v.Int64())
	}
	if x <= 0 {
		out.PutNullWithWarning(moerr.NewWarnInvalidArgForFunction(ec.Context(), v, f.DisplayName()))
		return nil
	}
	out.Put(value.NewFloat64(f.fn(x)))
	return nil
}

// logDecimal is a logarithm over DECIMAL, rounded to a fixed scale.
type logDecimal struct {
	function.Base
	fn func(d, x *apd.Decimal) (apd.Condition, error)
}

func (f *logDecimal) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	x := v.Decimal()
	if x.Sign() <= 0 {
		out.PutNullWithWarning(moerr.NewWarnInvalidArgForFunction(ec.Context(), v, f.DisplayName()))
		return nil
	}
	d := new(apd.Decimal)
	if _, err = f.fn(d, x); err != nil {
		return moerr.NewOutOfRange(ec.Context(), "decimal", "%s(%s): %v", f.DisplayName(), v, err)
	}
	if _, err = decimalCtx.Quantize(d, d, -logDecimalScale); err != nil {
		return moerr.NewOutOfRange(ec.Context(), "decimal", "%s(%s): %v", f.DisplayName(), v, err)
	}
	out.Put(value.NewDecimal(d))
	return nil
}

func log2Decimal(d, x *apd.Decimal) (apd.Condition, error) {
	ln2 := new(apd.Decimal)
	if _, err := decimalCtx.Ln(ln2, decimalTwo); err != nil {
		return 0, err
	}
	if _, err := decimalCtx.Ln(d, x); err != nil {
		return 0, err
	}
	return decimalCtx.Quo(d, d, ln2)
}

// logBase is LOG(base, x).
type logBase struct {
	function.Base
}

func (f *logBase) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	b, err := in.Get(0)
	if err != nil {
		return err
	}
	x, err := in.Get(1)
	if err != nil {
		return err
	}
	switch {
	case b.Float64() <= 0 || b.Float64() == 1:
		out.PutNullWithWarning(moerr.NewWarnInvalidArgForFunction(ec.Context(), b, "log"))
	case x.Float64() <= 0:
		out.PutNullWithWarning(moerr.NewWarnInvalidArgForFunction(ec.Context(), x, "log"))
	default:
		out.Put(value.NewFloat64(math.Log(x.Float64()) / math.Log(b.Float64())))
	}
	return nil
}

func mathFunctions() []function.ScalarFunction {
	double := types.T_float64.ToType().WithNullable(true)
	decimal := types.New(types.T_decimal, types.MaxDecimalWidth, logDecimalScale).WithNullable(true)
	var fns []function.ScalarFunction
	for _, l := range []struct {
		names []string
		fn    func(float64) float64
		dfn   func(d, x *apd.Decimal) (apd.Condition, error)
	}{
		{[]string{"LN", "LOG"}, math.Log, decimalCtx.Ln},
		{[]string{"LOG2"}, math.Log2, log2Decimal},
		{[]string{"LOG10"}, math.Log10, decimalCtx.Log10},
	} {
		for _, oid := range []types.T{types.T_float64, types.T_int64} {
			fns = append(fns, &logFloat{Base: function.Base{
				FuncNames: l.names,
				Binding:   function.NewInputBinding().Covers(oid, 0),
				Result:    function.FixedResult(double),
			}, fn: l.fn})
		}
		fns = append(fns, &logDecimal{Base: function.Base{
			FuncNames: l.names,
			Binding:   function.NewInputBinding().Covers(types.T_decimal, 0),
			Result:    function.FixedResult(decimal),
		}, fn: l.dfn})
	}
	fns = append(fns, &logBase{function.Base{
		FuncNames: []string{"LOG"},
		Binding:   function.NewInputBinding().Covers(types.T_float64, 0, 1),
		Result:    function.FixedResult(double),
	}})
	return fns
}
