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
	"context"
	"sync/atomic"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/batch"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/container/vector"
)

// countingAdd adds two bigints and counts how often its body runs.
type countingAdd struct {
	Base
	calls *atomic.Int64
}

func newCountingAdd(calls *atomic.Int64) *countingAdd {
	return &countingAdd{
		Base: Base{
			FuncNames: []string{"ADDX"},
			Binding:   NewInputBinding().Covers(types.T_int64, 0, 1),
			Result:    FixedResult(types.T_int64.ToType()),
		},
		calls: calls,
	}
}

func (p *countingAdd) Evaluate(_ *ExecutionContext, in LazyInputs, out OutputSink) error {
	p.calls.Add(1)
	a, err := in.Get(0)
	if err != nil {
		return err
	}
	b, err := in.Get(1)
	if err != nil {
		return err
	}
	out.Put(value.NewInt64(a.Int64() + b.Int64()))
	return nil
}

// tag logs the input it is given, -1 for NULL, and returns it.
type tag struct {
	Base
	log *[]int64
}

func newTag(log *[]int64) *tag {
	return &tag{
		Base: Base{
			FuncNames: []string{"TAG"},
			Binding:   NewInputBinding().Covers(types.T_int64, 0),
			Result:    FixedResult(types.T_int64.ToType()),
			Volatile:  true,
		},
		log: log,
	}
}

func (t *tag) Contaminates(int) bool {
	return false
}

func (t *tag) Evaluate(_ *ExecutionContext, in LazyInputs, out OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	if v.IsNull() {
		*t.log = append(*t.log, -1)
		out.PutNull()
		return nil
	}
	*t.log = append(*t.log, v.Int64())
	out.Put(v)
	return nil
}

// sum3 adds three bigints.
type sum3 struct {
	Base
	calls *int
}

func (s *sum3) Evaluate(_ *ExecutionContext, in LazyInputs, out OutputSink) error {
	*s.calls++
	var total int64
	for i := 0; i < in.Len(); i++ {
		v, err := in.Get(i)
		if err != nil {
			return err
		}
		total += v.Int64()
	}
	out.Put(value.NewInt64(total))
	return nil
}

// prefixed only looks at its first input when folding.
type prefixed struct {
	Base
}

func (p *prefixed) ConstnessPrefix() int {
	return 1
}

func (p *prefixed) Evaluate(_ *ExecutionContext, _ LazyInputs, out OutputSink) error {
	out.Put(value.NewInt64(0))
	return nil
}

// counter returns 1, 2, 3... within one execution.
type counter struct {
	Base
}

func (c *counter) Prepare(ec *ExecutionContext, _ []PreptimeValue) error {
	return ec.SetPreptimeObject(0, int64(100))
}

func (c *counter) Evaluate(ec *ExecutionContext, _ LazyInputs, out OutputSink) error {
	n, ok := ExectimeSlot[*int64](ec, 0)
	if !ok {
		n = new(int64)
		if err := ec.SetExectimeObject(0, n); err != nil {
			return err
		}
	}
	*n++
	base, _ := PreptimeSlot[int64](ec, 0)
	out.Put(value.NewInt64(base + *n))
	return nil
}

// misbehaving functions
type writeTwice struct{ Base }

func (w *writeTwice) Evaluate(_ *ExecutionContext, _ LazyInputs, out OutputSink) error {
	out.Put(value.NewInt64(1))
	out.Put(value.NewInt64(2))
	return nil
}

type writeNone struct{ Base }

func (w *writeNone) Evaluate(*ExecutionContext, LazyInputs, OutputSink) error {
	return nil
}

type writePrep struct{ Base }

func (w *writePrep) Evaluate(ec *ExecutionContext, _ LazyInputs, out OutputSink) error {
	if err := ec.SetPreptimeObject(0, 1); err != nil {
		return err
	}
	out.PutNull()
	return nil
}

type warnNull struct{ Base }

func (w *warnNull) Evaluate(ec *ExecutionContext, _ LazyInputs, out OutputSink) error {
	out.PutNullWithWarning(moerr.NewWarn(ec.Context(), "always null"))
	return nil
}

type testEnv struct {
	addCalls atomic.Int64
	sumCalls int
	tagLog   []int64
	compiler *Compiler
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{}
	reg := NewRegistry()
	bigint := FixedResult(types.T_int64.ToType())
	reg.MustRegister(
		newCountingAdd(&env.addCalls),
		newTag(&env.tagLog),
		&sum3{Base: Base{FuncNames: []string{"SUM3"}, Binding: NewInputBinding().Covers(types.T_int64, 0, 1, 2), Result: bigint}, calls: &env.sumCalls},
		&prefixed{Base{FuncNames: []string{"PREFIXED"}, Binding: NewInputBinding().Covers(types.T_int64, 0, 1), Result: bigint}},
		&counter{Base{FuncNames: []string{"COUNTER"}, ExplainLayout: NOPARAMETER_FUNCTION, Result: bigint, Volatile: true}},
		&writeTwice{Base{FuncNames: []string{"WRITE_TWICE"}, Result: bigint, Volatile: true}},
		&writeNone{Base{FuncNames: []string{"WRITE_NONE"}, Result: bigint, Volatile: true}},
		&writePrep{Base{FuncNames: []string{"WRITE_PREP"}, Result: bigint, Volatile: true}},
		&warnNull{Base{FuncNames: []string{"WARN_NULL"}, Binding: NewInputBinding().Covers(types.T_int64, 0), Result: bigint}},
	)
	env.compiler = NewCompiler(reg)
	return env
}

func (env *testEnv) lit(v value.Value) Expr {
	return env.compiler.Literal(v)
}

func evalOne(t *testing.T, expr Expr, row ...value.Value) (value.Value, *Execution) {
	stmt := NewStatement(expr)
	exec, err := stmt.NewExecution(context.Background())
	require.NoError(t, err)
	vals, err := exec.EvalRow(row)
	require.NoError(t, err)
	return vals[0], exec
}

func TestContamination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	col0 := NewColumn(0, types.T_int64.ToType().WithNullable(true))
	col1 := NewColumn(1, types.T_int64.ToType().WithNullable(true))

	expr := env.compiler.MustCall(ctx, "addx", col0, col1)
	call, ok := expr.(*Call)
	require.True(t, ok)
	require.True(t, call.Type().Nullable)

	v, _ := evalOne(t, expr, value.NewInt64(1), value.Null())
	require.True(t, v.IsNull())
	v, _ = evalOne(t, expr, value.Null(), value.NewInt64(1))
	require.True(t, v.IsNull())
	require.Equal(t, int64(0), env.addCalls.Load())

	v, _ = evalOne(t, expr, value.NewInt64(1), value.NewInt64(2))
	require.Equal(t, int64(3), v.Int64())
	require.Equal(t, int64(1), env.addCalls.Load())
}

func TestEvaluationOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tagOf := func(v value.Value) Expr {
		return env.compiler.MustCall(ctx, "TAG", env.lit(v))
	}

	expr := env.compiler.MustCall(ctx, "SUM3", tagOf(value.NewInt64(1)), tagOf(value.NewInt64(2)), tagOf(value.NewInt64(3)))
	v, _ := evalOne(t, expr)
	require.Equal(t, int64(6), v.Int64())
	require.Equal(t, []int64{1, 2, 3}, env.tagLog)
	require.Equal(t, 1, env.sumCalls)

	// the NULL at input 1 stops the fetching before input 2
	env.tagLog = nil
	expr = env.compiler.MustCall(ctx, "SUM3", tagOf(value.NewInt64(1)), tagOf(value.Null()), tagOf(value.NewInt64(3)))
	v, _ = evalOne(t, expr)
	require.True(t, v.IsNull())
	require.Equal(t, []int64{1, -1}, env.tagLog)
	require.Equal(t, 1, env.sumCalls)
}

func TestConstantFolding(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	col0 := NewColumn(0, types.T_int64.ToType())

	// every input known: evaluated once while compiling
	expr := env.compiler.MustCall(ctx, "ADDX", env.lit(value.NewInt64(1)), env.lit(value.NewInt64(2)))
	lit, ok := expr.(*Literal)
	require.True(t, ok)
	require.Equal(t, int64(3), lit.Value().Int64())
	require.Equal(t, int64(1), env.addCalls.Load())

	// a known NULL at a contaminating input decides the result
	expr = env.compiler.MustCall(ctx, "ADDX", col0, env.lit(value.Null()))
	lit, ok = expr.(*Literal)
	require.True(t, ok)
	require.True(t, lit.Value().IsNull())
	require.True(t, lit.Type().Nullable)
	require.Equal(t, types.T_int64, lit.Type().Oid)
	require.Equal(t, int64(1), env.addCalls.Load())

	// an unknown input keeps the call
	expr = env.compiler.MustCall(ctx, "ADDX", col0, env.lit(value.NewInt64(2)))
	_, ok = expr.(*Call)
	require.True(t, ok)

	// nested folding
	inner := env.compiler.MustCall(ctx, "ADDX", env.lit(value.NewInt64(1)), env.lit(value.NewInt64(1)))
	expr = env.compiler.MustCall(ctx, "ADDX", inner, env.lit(value.NewInt64(5)))
	lit, ok = expr.(*Literal)
	require.True(t, ok)
	require.Equal(t, int64(7), lit.Value().Int64())

	// volatile functions are never folded
	expr = env.compiler.MustCall(ctx, "TAG", env.lit(value.NewInt64(1)))
	_, ok = expr.(*Call)
	require.True(t, ok)
	require.Empty(t, env.tagLog)
}

func TestConstnessPrefix(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	col0 := NewColumn(0, types.T_int64.ToType())

	expr := env.compiler.MustCall(ctx, "PREFIXED", col0, env.lit(value.Null()))
	_, ok := expr.(*Call)
	require.True(t, ok)

	expr = env.compiler.MustCall(ctx, "PREFIXED", env.lit(value.Null()), col0)
	lit, ok := expr.(*Literal)
	require.True(t, ok)
	require.True(t, lit.Value().IsNull())
}

func TestFoldingKeepsWarnings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	expr := env.compiler.MustCall(ctx, "WARN_NULL", env.lit(value.NewInt64(1)))
	_, ok := expr.(*Call)
	require.True(t, ok)

	v, exec := evalOne(t, expr)
	require.True(t, v.IsNull())
	require.Equal(t, 1, len(exec.Warnings()))
	require.True(t, exec.Warnings()[0].IsWarning())
}

func TestOutputContract(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for _, name := range []string{"WRITE_TWICE", "WRITE_NONE"} {
		stmt := NewStatement(env.compiler.MustCall(ctx, name))
		exec, err := stmt.NewExecution(ctx)
		require.NoError(t, err)
		_, err = exec.EvalRow(nil)
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal), name)
	}
}

func TestSlots(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	stmt := NewStatement(env.compiler.MustCall(ctx, "COUNTER"))
	require.Equal(t, []string{"COUNTER"}, stmt.Explain())
	for round := 0; round < 2; round++ {
		exec, err := stmt.NewExecution(ctx)
		require.NoError(t, err)
		for i := int64(1); i <= 3; i++ {
			vals, err := exec.EvalRow(nil)
			require.NoError(t, err)
			require.Equal(t, 100+i, vals[0].Int64())
		}
		exec.Close()
		require.Equal(t, Disposed, exec.State())
		_, err = exec.EvalRow(nil)
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
	}

	// prepare-time slots are frozen once prepared
	stmt = NewStatement(env.compiler.MustCall(ctx, "WRITE_PREP"))
	exec, err := stmt.NewExecution(ctx)
	require.NoError(t, err)
	_, err = exec.EvalRow(nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))

	stmt.Close()
	require.Equal(t, Disposed, stmt.State())
	_, err = stmt.NewExecution(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestExecutor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	stmt := NewStatement(
		env.compiler.MustCall(ctx, "COUNTER"),
		env.compiler.MustCall(ctx, "ADDX", NewColumn(0, types.T_int64.ToType()), env.lit(value.NewInt64(10))),
	)
	var bats []*batch.Batch
	for i := 0; i < 8; i++ {
		vec, err := vector.NewVecFrom(ctx, types.T_int64.ToType(), value.NewInt64(int64(i)), value.NewInt64(int64(i+1)))
		require.NoError(t, err)
		bat, err := batch.NewWithVectors(ctx, vec)
		require.NoError(t, err)
		bats = append(bats, bat)
	}

	ex, err := NewExecutor(4)
	require.NoError(t, err)
	_, err = ex.Run(ctx, stmt, bats[:1])
	require.NoError(t, err)
	// goroutines of ants running before the pool is closed are not leaks
	running := leaktest.GetInterestedGoroutines()
	defer func() {
		ex.Close()
		require.True(t, ex.pool.IsClosed())
		leaktest.AssertNoGoroutineLeak(running)
	}()

	results, err := ex.Run(ctx, stmt, bats)
	require.NoError(t, err)
	require.Equal(t, 8, len(results))
	for i, res := range results {
		// every execution owns its counter
		require.Equal(t, "[101 102]", res.Vecs[0].String())
		require.Equal(t, int64(i+10), res.Vecs[1].GetValue(0).Int64())
		require.Equal(t, int64(i+11), res.Vecs[1].GetValue(1).Int64())
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ex.Run(cctx, stmt, bats[:1])
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrQueryInterrupted))
}

func TestExplain(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	expr := env.compiler.MustCall(ctx, "addx", NewColumn(0, types.T_int64.ToType()), env.lit(value.NewString("7")))
	require.Equal(t, "ADDX($1, 7)", expr.String())

	expr = env.compiler.MustCall(ctx, "addx", NewColumn(0, types.T_varchar.ToType()), env.lit(value.NewInt64(7)))
	require.Equal(t, "ADDX(CAST($1 AS BIGINT), 7)", expr.String())
}

type unary struct {
	Base
}

func (u *unary) Evaluate(_ *ExecutionContext, in LazyInputs, out OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	out.Put(v)
	return nil
}

func newUnary(name string, oid types.T) *unary {
	return &unary{Base{
		FuncNames: []string{name},
		Binding:   NewInputBinding().Covers(oid, 0),
		Result:    FixedResult(oid.ToType()),
	}}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	require.NoError(t, reg.Register(ctx, newUnary("ID", types.T_int64)))
	require.NoError(t, reg.Register(ctx, newUnary("id", types.T_float64)))
	require.NoError(t, reg.Register(ctx, newUnary("ID_VARCHAR", types.T_varchar)))
	err := reg.Register(ctx, newUnary("Id", types.T_int64))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrFunctionAlreadyExists))

	funcs := reg.Functions()
	require.Equal(t, 2, len(funcs))
	require.Equal(t, "id", funcs[0].Name())
	require.Equal(t, 2, len(funcs[0].Overloads))

	typeReg := types.DefaultRegistry
	_, err = reg.GetFunctionByName(ctx, typeReg, "nope", nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNotSupported))

	// exact match costs nothing
	res, err := reg.GetFunctionByName(ctx, typeReg, "ID", []types.Type{types.T_float64.ToType()})
	require.NoError(t, err)
	_, should := res.ShouldDoImplicitTypeCast()
	require.False(t, should)
	fn, err := reg.GetFunctionById(ctx, res.GetEncodedOverloadID())
	require.NoError(t, err)
	require.Same(t, res.Function(), fn)
	require.Equal(t, types.T_float64, fn.ResultType().fixed.Oid)

	// a varchar casts to both, every overload costs one cast
	_, err = reg.GetFunctionByName(ctx, typeReg, "id", []types.Type{types.T_varchar.ToType()})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	// decimal only casts to double
	res, err = reg.GetFunctionByName(ctx, typeReg, "id", []types.Type{types.New(types.T_decimal, 10, 2)})
	require.NoError(t, err)
	targets, should := res.ShouldDoImplicitTypeCast()
	require.True(t, should)
	require.Equal(t, types.T_float64, targets[0].Oid)

	_, err = reg.GetFunctionByName(ctx, typeReg, "id", []types.Type{types.T_geometry.ToType()})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))
	_, err = reg.GetFunctionByName(ctx, typeReg, "id", nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	_, err = reg.GetFunctionById(ctx, encodeOverloadID(7, 0))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestInputBinding(t *testing.T) {
	b := NewInputBinding().Covers(types.T_int64, 0).PickingVararg(1)
	require.Equal(t, "(BIGINT, picking...)", b.String())
	require.True(t, b.IsVararg())
	require.Equal(t, 2, b.MinArity())
	require.False(t, b.AcceptsArity(1))
	require.True(t, b.AcceptsArity(4))
	require.Equal(t, []int{1, 2, 3}, b.PickingPositions(4))
	require.True(t, b.HasPicking())
	require.True(t, b.InputSetAt(5).Picking)

	b = NewInputBinding().PickingCovers(0, 2).Covers(types.T_varchar, 1)
	require.Equal(t, "(picking, VARCHAR, picking)", b.String())
	require.Nil(t, b.InputSetAt(3))
	require.Equal(t, []int{0, 2}, b.PickingPositions(3))
}
