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

package testutil

import (
	"context"
	"fmt"

	"github.com/matrixorigin/scalarcore/pkg/container/batch"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/container/vector"
)

// NewValues converts a Go slice into values of class oid. Decimals are
// given as strings. nulls may be shorter than values.
func NewValues(oid types.T, values any, nulls []bool) []value.Value {
	var res []value.Value
	switch vs := values.(type) {
	case nil:
		for range nulls {
			res = append(res, value.Null())
		}
		return res
	case []bool:
		for _, v := range vs {
			res = append(res, value.NewBool(v))
		}
	case []int64:
		for _, v := range vs {
			res = append(res, value.NewInt64(v))
		}
	case []float64:
		for _, v := range vs {
			res = append(res, value.NewFloat64(v))
		}
	case []string:
		for _, v := range vs {
			switch oid {
			case types.T_decimal:
				d, err := value.ParseDecimal(v)
				if err != nil {
					panic(err)
				}
				res = append(res, d)
			case types.T_varbinary:
				res = append(res, value.NewBytes(types.T_varbinary, []byte(v)))
			default:
				res = append(res, value.NewString(v))
			}
		}
	case [][]byte:
		for _, v := range vs {
			res = append(res, value.NewBytes(oid, v))
		}
	case []any:
		for _, v := range vs {
			res = append(res, value.NewObject(oid, v))
		}
	default:
		panic(fmt.Sprintf("unsupported test values %T", values))
	}
	for i, isNull := range nulls {
		if isNull && i < len(res) {
			res[i] = value.Null()
		}
	}
	return res
}

// NewVector builds a column of typ out of a Go slice.
func NewVector(typ types.Type, values any, nulls []bool) *vector.Vector {
	vec, err := vector.NewVecFrom(context.Background(), typ, NewValues(typ.Oid, values, nulls)...)
	if err != nil {
		panic(err)
	}
	return vec
}

// NewBatch builds a batch over vecs.
func NewBatch(vecs ...*vector.Vector) *batch.Batch {
	bat, err := batch.NewWithVectors(context.Background(), vecs...)
	if err != nil {
		panic(err)
	}
	return bat
}
