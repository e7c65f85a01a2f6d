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
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/batch"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/container/vector"
	"github.com/matrixorigin/scalarcore/pkg/logutil"
)

// Statement is a list of compiled expressions evaluated together.
type Statement struct {
	exprs    []Expr
	calls    []*Call
	state    atomic.Value
	nextExec uint64
}

// NewStatement takes ownership of exprs, whose call sites are already prepared.
func NewStatement(exprs ...Expr) *Statement {
	s := &Statement{exprs: exprs}
	for _, expr := range exprs {
		walkCalls(expr, func(c *Call) {
			s.calls = append(s.calls, c)
		})
	}
	s.state.Store(Prepared)
	return s
}

func (s *Statement) Exprs() []Expr {
	return s.exprs
}

func (s *Statement) State() State {
	return s.state.Load().(State)
}

// Explain renders every expression of the statement.
func (s *Statement) Explain() []string {
	res := make([]string, len(s.exprs))
	for i, expr := range s.exprs {
		res[i] = expr.String()
	}
	return res
}

// NewExecution starts an execution owning its own execute-time state.
func (s *Statement) NewExecution(ctx context.Context) (*Execution, error) {
	if st := s.State(); st != Prepared {
		return nil, moerr.NewInvalidState(ctx, "cannot execute a %s statement", st)
	}
	id := atomic.AddUint64(&s.nextExec, 1)
	return newExecution(ctx, s, id), nil
}

// Close disposes the statement and the prepare-time state of its calls.
func (s *Statement) Close() {
	s.state.Store(Disposed)
	for _, c := range s.calls {
		c.state = Disposed
		c.prep = nil
	}
}

// Execution is one run of a statement.
type Execution struct {
	id       uint64
	ctx      context.Context
	stmt     *Statement
	state    State
	calls    map[uint32]*ExecutionContext
	warnings []*moerr.Error
}

func newExecution(ctx context.Context, stmt *Statement, id uint64) *Execution {
	ctx = logutil.WithFields(ctx, zap.Uint64("execution", id))
	logutil.DebugCtx(ctx, "execution started")
	return &Execution{
		id:    id,
		ctx:   ctx,
		stmt:  stmt,
		state: Executing,
		calls: make(map[uint32]*ExecutionContext),
	}
}

func (e *Execution) Context() context.Context {
	return e.ctx
}

func (e *Execution) State() State {
	return e.state
}

// Warnings returns the warnings reported so far.
func (e *Execution) Warnings() []*moerr.Error {
	return e.warnings
}

func (e *Execution) contextFor(c *Call) *ExecutionContext {
	if ec, ok := e.calls[c.id]; ok {
		return ec
	}
	ec := &ExecutionContext{
		ctx:  e.ctx,
		call: c,
		exec: e,
		prep: append([]any(nil), c.prep...),
	}
	e.calls[c.id] = ec
	return ec
}

func (e *Execution) warn(c *Call, w *moerr.Error) {
	logutil.DebugCtx(e.ctx, "function warning", zap.String("function", c.name), zap.Error(w))
	e.warnings = append(e.warnings, w)
}

// EvalRow evaluates every expression of the statement for one row.
func (e *Execution) EvalRow(row []value.Value) ([]value.Value, error) {
	if e.state != Executing {
		return nil, moerr.NewInvalidState(e.ctx, "execution is %s", e.state)
	}
	res := make([]value.Value, len(e.stmt.exprs))
	for i, expr := range e.stmt.exprs {
		v, err := expr.Eval(e, row)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// EvalBatch evaluates the statement row by row over bat.
func (e *Execution) EvalBatch(bat *batch.Batch) ([]*vector.Vector, error) {
	outs := make([]*vector.Vector, len(e.stmt.exprs))
	for i, expr := range e.stmt.exprs {
		outs[i] = vector.NewVec(expr.Type())
	}
	for i := 0; i < bat.RowCount(); i++ {
		if err := e.ctx.Err(); err != nil {
			return nil, InterruptError(e.ctx, err)
		}
		vals, err := e.EvalRow(bat.Row(i))
		if err != nil {
			return nil, err
		}
		for j, v := range vals {
			if err = outs[j].Append(e.ctx, v); err != nil {
				return nil, err
			}
		}
	}
	return outs, nil
}

// Close drops the execute-time state.
func (e *Execution) Close() {
	if e.state == Disposed {
		return
	}
	e.state = Disposed
	e.calls = nil
	logutil.DebugCtx(e.ctx, "execution closed", zap.Int("warnings", len(e.warnings)))
}

// BatchResult is the outcome of one execution run by an Executor.
type BatchResult struct {
	Vecs     []*vector.Vector
	Warnings []*moerr.Error
}

// Executor runs executions of a statement in parallel, one per batch.
type Executor struct {
	pool *ants.Pool
}

func NewExecutor(parallelism int) (*Executor, error) {
	pool, err := ants.NewPool(parallelism)
	if err != nil {
		return nil, moerr.ConvertGoError(context.TODO(), err)
	}
	return &Executor{pool: pool}, nil
}

// Run evaluates stmt over every batch and returns the results in batch order.
func (ex *Executor) Run(ctx context.Context, stmt *Statement, bats []*batch.Batch) ([]BatchResult, error) {
	results := make([]BatchResult, len(bats))
	errs := make([]error, len(bats))
	var wg sync.WaitGroup
	for i := range bats {
		i := i
		wg.Add(1)
		err := ex.pool.Submit(func() {
			defer wg.Done()
			exec, err := stmt.NewExecution(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			defer exec.Close()
			vecs, err := exec.EvalBatch(bats[i])
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = BatchResult{Vecs: vecs, Warnings: exec.Warnings()}
		})
		if err != nil {
			wg.Done()
			errs[i] = moerr.ConvertGoError(ctx, err)
		}
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (ex *Executor) Close() {
	ex.pool.Release()
}
