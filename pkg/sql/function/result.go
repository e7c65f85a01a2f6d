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

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
)

type ResultKind uint8

const (
	ResultFixed ResultKind = iota
	ResultPicking
	ResultCustom
)

// CustomResultFunc derives the result type from the resolved inputs. It
// runs once while the call site is prepared and must only depend on
// inputs and the configuration visible through ctx.
type CustomResultFunc func(ctx *ExecutionContext, inputs []PreptimeValue) (types.Type, error)

// ResultTypeSpec says how the result type of a call is computed.
type ResultTypeSpec struct {
	Kind     ResultKind
	fixed    types.Type
	custom   CustomResultFunc
	nullable bool
}

// FixedResult returns typ, nullable when typ or any input is nullable.
func FixedResult(typ types.Type) ResultTypeSpec {
	return ResultTypeSpec{Kind: ResultFixed, fixed: typ}
}

// PickingResult returns the type unified for the picking group.
func PickingResult() ResultTypeSpec {
	return ResultTypeSpec{Kind: ResultPicking}
}

// Nullable marks the result nullable whatever the inputs are, for
// functions that produce NULL out of non-null inputs.
func (spec ResultTypeSpec) Nullable() ResultTypeSpec {
	spec.nullable = true
	return spec
}

func CustomResult(fn CustomResultFunc) ResultTypeSpec {
	return ResultTypeSpec{Kind: ResultCustom, custom: fn}
}

func (spec ResultTypeSpec) resolve(ctx *ExecutionContext, picked *types.Type, inputs []PreptimeValue) (types.Type, error) {
	switch spec.Kind {
	case ResultFixed:
		return spec.fixed.WithNullable(spec.nullable || spec.fixed.Nullable || AnyNullable(inputs)), nil
	case ResultPicking:
		if picked == nil {
			return types.Type{}, moerr.NewInternalError(ctx.Context(), "picking result without a picking input")
		}
		return picked.WithNullable(spec.nullable || picked.Nullable), nil
	case ResultCustom:
		return spec.custom(ctx, inputs)
	}
	return types.Type{}, moerr.NewInternalError(context.TODO(), "unknown result kind %d", spec.Kind)
}

// AnyNullable reports whether some input may be NULL.
func AnyNullable(inputs []PreptimeValue) bool {
	for _, in := range inputs {
		if in.Type.Nullable {
			return true
		}
	}
	return false
}
