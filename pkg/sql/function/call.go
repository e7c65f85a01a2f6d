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
	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
)

// Call is a call site: one resolved overload applied to argument expressions.
type Call struct {
	id         uint32
	fn         ScalarFunction
	name       string
	overloadID int64
	args       []Expr
	typ        types.Type
	env        *environment
	state      State
	prep       []any
}

func (c *Call) Type() types.Type {
	return c.typ
}

func (c *Call) Function() ScalarFunction {
	return c.fn
}

func (c *Call) Args() []Expr {
	return c.args
}

func (c *Call) OverloadID() int64 {
	return c.overloadID
}

func (c *Call) State() State {
	return c.state
}

func (c *Call) String() string {
	args := make([]string, len(c.args))
	for i, arg := range c.args {
		args[i] = arg.String()
	}
	return explainCall(c.fn.Layout(), c.fn.DisplayName(), args)
}

// Eval evaluates the call for one row. Contaminating inputs are fetched
// in ascending order first, a NULL among them makes the result NULL
// without running the function.
func (c *Call) Eval(e *Execution, row []value.Value) (value.Value, error) {
	if c.state != Prepared {
		return value.Null(), moerr.NewInvalidState(e.ctx, "call %s is %s", c.name, c.state)
	}
	ec := e.contextFor(c)
	in := &ec.inputsBuf
	in.reset(e, c, row)
	for i := range c.args {
		if !c.fn.Contaminates(i) {
			continue
		}
		v, err := in.Get(i)
		if err != nil {
			return value.Null(), err
		}
		if v.IsNull() {
			return value.Null(), nil
		}
	}
	var out outputSink
	if err := c.fn.Evaluate(ec, in, &out); err != nil {
		return value.Null(), err
	}
	if out.writes != 1 {
		return value.Null(), moerr.NewInternalError(e.ctx, "function %s wrote %d results", c.name, out.writes)
	}
	if out.warning != nil {
		e.warn(c, out.warning)
	}
	if !out.val.IsNull() && out.val.Oid() != c.typ.Oid {
		return value.Null(), moerr.NewInternalError(e.ctx, "function %s returned %s, expect %s", c.name, out.val.Oid(), c.typ.Oid)
	}
	return out.val, nil
}

type lazyInputs struct {
	exec    *Execution
	call    *Call
	row     []value.Value
	vals    []value.Value
	fetched []bool
}

func (in *lazyInputs) reset(e *Execution, c *Call, row []value.Value) {
	in.exec, in.call, in.row = e, c, row
	if cap(in.vals) < len(c.args) {
		in.vals = make([]value.Value, len(c.args))
		in.fetched = make([]bool, len(c.args))
		return
	}
	in.vals = in.vals[:len(c.args)]
	in.fetched = in.fetched[:len(c.args)]
	for i := range in.fetched {
		in.fetched[i] = false
	}
}

func (in *lazyInputs) Len() int {
	return len(in.call.args)
}

func (in *lazyInputs) Type(i int) types.Type {
	return in.call.args[i].Type()
}

func (in *lazyInputs) Get(i int) (value.Value, error) {
	if i < 0 || i >= len(in.call.args) {
		return value.Null(), moerr.NewInternalError(in.exec.ctx, "function %s has no input %d", in.call.name, i)
	}
	if in.fetched[i] {
		return in.vals[i], nil
	}
	v, err := in.call.args[i].Eval(in.exec, in.row)
	if err != nil {
		return value.Null(), err
	}
	in.vals[i], in.fetched[i] = v, true
	return v, nil
}

type outputSink struct {
	val     value.Value
	warning *moerr.Error
	writes  int
}

func (out *outputSink) Put(v value.Value) {
	out.val = v
	out.writes++
}

func (out *outputSink) PutNull() {
	out.val = value.Null()
	out.writes++
}

func (out *outputSink) PutNullWithWarning(w *moerr.Error) {
	out.PutNull()
	out.warning = w
}
