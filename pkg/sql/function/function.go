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

// ScalarFunction is one overload of a built-in function.
type ScalarFunction interface {
	// Names are the case-insensitive names the overload is registered under.
	Names() []string
	// DisplayName is used by explain.
	DisplayName() string
	Layout() FuncExplainLayout

	Bind() *InputBinding
	ResultType() ResultTypeSpec

	// Contaminates reports whether a NULL at input i makes the result NULL
	// without running Evaluate.
	Contaminates(i int) bool
	// ConstantEligible is false for functions that must run for every row.
	ConstantEligible() bool

	// Prepare runs once per call site before any row is evaluated. It is
	// the only place prepare-time slots can be written.
	Prepare(ctx *ExecutionContext, inputs []PreptimeValue) error
	// Evaluate computes one row. It must write exactly one value to out
	// or return an error.
	Evaluate(ctx *ExecutionContext, inputs LazyInputs, out OutputSink) error
}

// ConstantFolder overrides the default per-input constness policy.
type ConstantFolder interface {
	FoldConstant(ctx *ExecutionContext, i int, inputs []PreptimeValue) Constness
}

// ConstnessPrefixer limits constness checks to the first inputs.
type ConstnessPrefixer interface {
	ConstnessPrefix() int
}

// LazyInputs fetches the arguments of one row on demand. A fetched input
// is cached, so fetching it again returns the same value.
type LazyInputs interface {
	Len() int
	Get(i int) (value.Value, error)
	Type(i int) types.Type
}

// OutputSink takes the single result of one evaluation.
type OutputSink interface {
	Put(v value.Value)
	PutNull()
	// PutNullWithWarning writes NULL and reports w to the client.
	PutNullWithWarning(w *moerr.Error)
}

// Base carries the defaults of ScalarFunction. Functions embed it and
// override what differs.
type Base struct {
	FuncNames     []string
	Display       string
	ExplainLayout FuncExplainLayout
	Binding       *InputBinding
	Result        ResultTypeSpec
	// Volatile functions are never folded.
	Volatile bool
}

func (b *Base) Names() []string {
	return b.FuncNames
}

func (b *Base) DisplayName() string {
	if b.Display != "" {
		return b.Display
	}
	return b.FuncNames[0]
}

func (b *Base) Layout() FuncExplainLayout {
	return b.ExplainLayout
}

func (b *Base) Bind() *InputBinding {
	if b.Binding == nil {
		return NewInputBinding()
	}
	return b.Binding
}

func (b *Base) ResultType() ResultTypeSpec {
	return b.Result
}

func (b *Base) Contaminates(int) bool {
	return true
}

func (b *Base) ConstantEligible() bool {
	return !b.Volatile
}

func (b *Base) Prepare(*ExecutionContext, []PreptimeValue) error {
	return nil
}
