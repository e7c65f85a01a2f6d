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

package vector

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/nulls"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
)

// Vector is a typed column. A const vector holds one value repeated
// length times.
type Vector struct {
	typ     types.Type
	isConst bool
	length  int
	nsp     nulls.Nulls
	col     []value.Value
}

func NewVec(typ types.Type) *Vector {
	return &Vector{typ: typ}
}

// NewConst returns a const vector of length rows holding val.
func NewConst(typ types.Type, val value.Value, length int) *Vector {
	vec := &Vector{typ: typ, isConst: true, length: length}
	vec.col = []value.Value{val}
	if val.IsNull() {
		nulls.Add(&vec.nsp, 0)
	}
	return vec
}

func NewConstNull(typ types.Type, length int) *Vector {
	return NewConst(typ, value.Null(), length)
}

// NewVecFrom builds a column from vals. Null values are recorded in the null bitmap.
func NewVecFrom(ctx context.Context, typ types.Type, vals ...value.Value) (*Vector, error) {
	vec := NewVec(typ)
	for _, v := range vals {
		if err := vec.Append(ctx, v); err != nil {
			return nil, err
		}
	}
	return vec, nil
}

func (v *Vector) GetType() types.Type {
	return v.typ
}

func (v *Vector) Length() int {
	return v.length
}

func (v *Vector) SetLength(n int) {
	if v.isConst {
		v.length = n
	}
}

func (v *Vector) IsConst() bool {
	return v.isConst
}

func (v *Vector) IsConstNull() bool {
	return v.isConst && nulls.Contains(&v.nsp, 0)
}

func (v *Vector) GetNulls() *nulls.Nulls {
	return &v.nsp
}

// Append adds one row. The value must be NULL or of the vector's class.
func (v *Vector) Append(ctx context.Context, val value.Value) error {
	if v.isConst {
		return moerr.NewInternalError(ctx, "append to const vector")
	}
	if !val.IsNull() && val.Oid() != v.typ.Oid {
		return moerr.NewInternalError(ctx, "append %s value to %s vector", val.Oid(), v.typ.Oid)
	}
	if val.IsNull() {
		nulls.Add(&v.nsp, uint64(v.length))
	}
	v.col = append(v.col, val)
	v.length++
	return nil
}

// GetValue returns the value of row.
func (v *Vector) GetValue(row int) value.Value {
	if v.isConst {
		row = 0
	}
	if nulls.Contains(&v.nsp, uint64(row)) {
		return value.Null()
	}
	return v.col[row]
}

// Window returns rows [start, end) of v as a new vector.
func (v *Vector) Window(start, end int) *Vector {
	w := &Vector{typ: v.typ, isConst: v.isConst, length: end - start}
	if v.isConst {
		w.col = v.col
		w.nsp = *v.nsp.Clone()
		return w
	}
	w.col = append([]value.Value(nil), v.col[start:end]...)
	nulls.Range(&v.nsp, uint64(start), uint64(end), uint64(start), &w.nsp)
	return w
}

func (v *Vector) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	n := v.length
	if v.isConst {
		n = 1
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(v.GetValue(i).String())
	}
	buf.WriteByte(']')
	if v.isConst {
		return fmt.Sprintf("const%s x %d", buf.String(), v.length)
	}
	return buf.String()
}
