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
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/config"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/logutil"
)

// Compiler builds prepared call sites out of argument expressions.
type Compiler struct {
	reg     *Registry
	typeReg TypeRegistry
	env     *environment
	nextID  uint32
}

type CompilerOption func(*Compiler)

func WithServices(s *Services) CompilerOption {
	return func(c *Compiler) {
		c.env.services = s
	}
}

func WithParameters(p *config.Parameters) CompilerOption {
	return func(c *Compiler) {
		c.env.params = p
	}
}

func WithTypeRegistry(r TypeRegistry) CompilerOption {
	return func(c *Compiler) {
		c.typeReg = r
	}
}

func NewCompiler(reg *Registry, opts ...CompilerOption) *Compiler {
	c := &Compiler{
		reg:     reg,
		typeReg: types.DefaultRegistry,
		env:     &environment{services: &Services{}, params: config.NewParameters()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Compiler) Registry() *Registry {
	return c.reg
}

func (c *Compiler) Parameters() *config.Parameters {
	return c.env.params
}

// Literal wraps v with the narrowest type holding it.
func (c *Compiler) Literal(v value.Value) *Literal {
	if v.IsNull() {
		return NewLiteral(types.T_any.ToType(), v)
	}
	var typ types.Type
	switch v.Oid() {
	case types.T_varchar:
		cs, _ := types.ParseCharset(c.env.params.Function.DefaultCharset)
		typ = types.NewString(types.T_varchar, int32(utf8.RuneCount(v.Bytes())), cs)
	case types.T_varbinary:
		typ = types.NewString(types.T_varbinary, int32(len(v.Bytes())), types.CharsetBinary)
	case types.T_decimal:
		d := v.Decimal()
		width, scale := int32(d.NumDigits()), int32(0)
		if d.Exponent < 0 {
			scale = -d.Exponent
		} else {
			width += d.Exponent
		}
		if width < scale {
			width = scale
		}
		typ = types.New(types.T_decimal, width, scale)
	default:
		typ = v.Oid().ToType()
	}
	return NewLiteral(typ, v)
}

// Call resolves name over args, prepares the call site and folds it into
// a literal when its result is known.
func (c *Compiler) Call(ctx context.Context, name string, args ...Expr) (Expr, error) {
	args = append([]Expr(nil), args...)
	argTypes := make([]types.Type, len(args))
	for i, arg := range args {
		argTypes[i] = arg.Type()
	}
	res, err := c.reg.GetFunctionByName(ctx, c.typeReg, name, argTypes)
	if err != nil {
		return nil, err
	}
	// NULL literals are retyped even when no real cast is needed
	targets, _ := res.ShouldDoImplicitTypeCast()
	for i, target := range targets {
		if args[i], err = castTo(ctx, args[i], target); err != nil {
			return nil, err
		}
	}

	call := &Call{
		id:         atomic.AddUint32(&c.nextID, 1),
		fn:         res.Function(),
		name:       strings.ToLower(name),
		overloadID: res.GetEncodedOverloadID(),
		args:       args,
		env:        c.env,
	}
	inputs := preptimeValues(args)
	pctx := &ExecutionContext{
		ctx:  logutil.WithFields(ctx, zap.String("function", call.name), zap.Uint32("call", call.id)),
		call: call,
	}
	if call.typ, err = call.fn.ResultType().resolve(pctx, res.PickedType(), inputs); err != nil {
		return nil, err
	}
	if err = call.fn.Prepare(pctx, inputs); err != nil {
		return nil, err
	}
	call.state = Prepared

	constness, evaluate := foldConstness(pctx, call.fn, inputs)
	switch {
	case constness.Kind == Const:
		return NewLiteral(call.typ, constness.Value), nil
	case evaluate:
		if v, ok := c.evaluateConstant(pctx.ctx, call); ok {
			return NewLiteral(call.typ, v), nil
		}
	}
	return call, nil
}

// evaluateConstant runs a call whose inputs are all literals. A failure
// or a warning keeps the call dynamic, so it is reported at execution.
func (c *Compiler) evaluateConstant(ctx context.Context, call *Call) (value.Value, bool) {
	exec := newExecution(ctx, nil, 0)
	defer exec.Close()
	v, err := call.Eval(exec, nil)
	if err != nil {
		logutil.DebugCtx(ctx, "constant folding failed", zap.Error(err))
		return value.Null(), false
	}
	if len(exec.warnings) > 0 {
		logutil.DebugCtx(ctx, "constant folding skipped on warnings", zap.Int("warnings", len(exec.warnings)))
		return value.Null(), false
	}
	return v, true
}

func castTo(ctx context.Context, expr Expr, target types.Type) (Expr, error) {
	if expr.Type().Oid == target.Oid {
		return expr, nil
	}
	target = target.WithNullable(expr.Type().Nullable)
	if lit, ok := expr.(*Literal); ok {
		v, err := value.Cast(ctx, lit.val, target)
		if err != nil {
			return nil, err
		}
		return NewLiteral(target, v), nil
	}
	return &Cast{expr: expr, typ: target}, nil
}

func preptimeValues(args []Expr) []PreptimeValue {
	inputs := make([]PreptimeValue, len(args))
	for i, arg := range args {
		inputs[i].Type = arg.Type()
		if lit, ok := arg.(*Literal); ok {
			v := lit.val
			inputs[i].Value = &v
		}
	}
	return inputs
}

// MustCall is Call for expressions known to compile, such as in tests.
func (c *Compiler) MustCall(ctx context.Context, name string, args ...Expr) Expr {
	expr, err := c.Call(ctx, name, args...)
	if err != nil {
		panic(moerr.ConvertPanicError(ctx, err))
	}
	return expr
}
