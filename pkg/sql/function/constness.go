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
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
)

type ConstnessKind uint8

const (
	NotConst ConstnessKind = iota
	Unknown
	Const
)

func (k ConstnessKind) String() string {
	switch k {
	case NotConst:
		return "NOT_CONST"
	case Unknown:
		return "UNKNOWN"
	}
	return "CONST"
}

// Constness is the outcome of checking one input for constant folding.
// A Const outcome carries the folded result.
type Constness struct {
	Kind  ConstnessKind
	Value value.Value
}

func NotConstant() Constness {
	return Constness{Kind: NotConst}
}

func UnknownConstness() Constness {
	return Constness{Kind: Unknown}
}

func Constant(v value.Value) Constness {
	return Constness{Kind: Const, Value: v}
}

// PreptimeValue is what is known about an input while preparing. Value is
// nil unless the input is a literal.
type PreptimeValue struct {
	Type  types.Type
	Value *value.Value
}

func (p PreptimeValue) IsKnown() bool {
	return p.Value != nil
}

// IsKnownNull reports a literal NULL.
func (p PreptimeValue) IsKnownNull() bool {
	return p.Value != nil && p.Value.IsNull()
}

// DefaultConstness is the policy of functions without a ConstantFolder:
// a known NULL at a contaminating input decides the result.
func DefaultConstness(fn ScalarFunction, i int, inputs []PreptimeValue) Constness {
	if inputs[i].IsKnownNull() && fn.Contaminates(i) {
		return Constant(value.Null())
	}
	return UnknownConstness()
}

// foldConstness walks the inputs in ascending order. It stops at the
// first NotConst or Const outcome. When every outcome is Unknown, the call
// is worth evaluating only if every input is known.
func foldConstness(ctx *ExecutionContext, fn ScalarFunction, inputs []PreptimeValue) (Constness, bool) {
	if !fn.ConstantEligible() {
		return NotConstant(), false
	}
	limit := len(inputs)
	if p, ok := fn.(ConstnessPrefixer); ok && p.ConstnessPrefix() < limit {
		limit = p.ConstnessPrefix()
	}
	folder, hasFolder := fn.(ConstantFolder)
	for i := 0; i < limit; i++ {
		var c Constness
		if hasFolder {
			c = folder.FoldConstant(ctx, i, inputs)
		} else {
			c = DefaultConstness(fn, i, inputs)
		}
		if c.Kind != Unknown {
			return c, false
		}
	}
	for _, in := range inputs {
		if !in.IsKnown() {
			return NotConstant(), false
		}
	}
	// every input is a literal, evaluate once
	return UnknownConstness(), true
}
