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

// Package value holds the single typed scalar that flows between
// expressions, function inputs and the output sink.
package value

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
)

// Value is an immutable typed scalar. The zero Value is NULL.
type Value struct {
	oid   types.T
	valid bool
	b     bool
	i     int64
	f     float64
	d     *apd.Decimal
	s     []byte
	obj   any
}

// Null returns the NULL value.
func Null() Value {
	return Value{}
}

func NewBool(v bool) Value {
	return Value{oid: types.T_bool, valid: true, b: v}
}

func NewInt64(v int64) Value {
	return Value{oid: types.T_int64, valid: true, i: v}
}

func NewFloat64(v float64) Value {
	return Value{oid: types.T_float64, valid: true, f: v}
}

// NewDecimal wraps d, which must not be modified afterwards.
func NewDecimal(d *apd.Decimal) Value {
	return Value{oid: types.T_decimal, valid: true, d: d}
}

// ParseDecimal builds a decimal value from its text form.
func ParseDecimal(s string) (Value, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Value{}, err
	}
	return NewDecimal(d), nil
}

func NewString(v string) Value {
	return Value{oid: types.T_varchar, valid: true, s: []byte(v)}
}

// NewBytes returns a string value of class oid holding b.
func NewBytes(oid types.T, b []byte) Value {
	return Value{oid: oid, valid: true, s: b}
}

// NewObject wraps an opaque object such as a geometry or a blob reference.
func NewObject(oid types.T, obj any) Value {
	return Value{oid: oid, valid: true, obj: obj}
}

func (v Value) IsNull() bool {
	return !v.valid
}

// Oid returns the class of the value, T_any for NULL.
func (v Value) Oid() types.T {
	return v.oid
}

func (v Value) Bool() bool {
	return v.b
}

func (v Value) Int64() int64 {
	return v.i
}

func (v Value) Float64() float64 {
	return v.f
}

func (v Value) Decimal() *apd.Decimal {
	return v.d
}

func (v Value) Bytes() []byte {
	return v.s
}

func (v Value) Object() any {
	return v.obj
}

// Equal compares class and payload. Two NULLs are equal.
func (v Value) Equal(o Value) bool {
	if v.valid != o.valid {
		return false
	}
	if !v.valid {
		return true
	}
	if v.oid != o.oid {
		return false
	}
	switch v.oid {
	case types.T_bool:
		return v.b == o.b
	case types.T_int64:
		return v.i == o.i
	case types.T_float64:
		return v.f == o.f
	case types.T_decimal:
		return v.d.Cmp(o.d) == 0
	case types.T_varchar, types.T_varbinary:
		return bytes.Equal(v.s, o.s)
	}
	if eq, ok := v.obj.(interface{ Equal(any) bool }); ok {
		return eq.Equal(o.obj)
	}
	return v.obj == o.obj
}

// Compare orders two non-null values of the same class.
func (v Value) Compare(o Value) int {
	switch v.oid {
	case types.T_bool:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		}
		return 1
	case types.T_int64:
		switch {
		case v.i < o.i:
			return -1
		case v.i > o.i:
			return 1
		}
		return 0
	case types.T_float64:
		switch {
		case v.f < o.f:
			return -1
		case v.f > o.f:
			return 1
		}
		return 0
	case types.T_decimal:
		return v.d.Cmp(o.d)
	case types.T_varchar, types.T_varbinary:
		return bytes.Compare(v.s, o.s)
	}
	return 0
}

func (v Value) String() string {
	if !v.valid {
		return "NULL"
	}
	switch v.oid {
	case types.T_bool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case types.T_int64:
		return strconv.FormatInt(v.i, 10)
	case types.T_float64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case types.T_decimal:
		return v.d.Text('f')
	case types.T_varchar, types.T_varbinary:
		return string(v.s)
	}
	return fmt.Sprintf("%v", v.obj)
}

// Cast converts v into a value of typ. NULL stays NULL.
func Cast(ctx context.Context, v Value, typ types.Type) (Value, error) {
	if !v.valid || v.oid == typ.Oid {
		return v, nil
	}
	switch typ.Oid {
	case types.T_bool:
		switch v.oid {
		case types.T_int64:
			return NewBool(v.i != 0), nil
		}
	case types.T_int64:
		switch v.oid {
		case types.T_bool:
			if v.b {
				return NewInt64(1), nil
			}
			return NewInt64(0), nil
		case types.T_varchar:
			i, err := strconv.ParseInt(strings.TrimSpace(string(v.s)), 10, 64)
			if err != nil {
				return Value{}, moerr.NewInvalidInput(ctx, "cannot cast '%s' to %s", v.s, typ.Oid)
			}
			return NewInt64(i), nil
		}
	case types.T_float64:
		switch v.oid {
		case types.T_bool, types.T_int64:
			i, _ := Cast(ctx, v, types.T_int64.ToType())
			return NewFloat64(float64(i.i)), nil
		case types.T_decimal:
			f, err := v.d.Float64()
			if err != nil {
				return Value{}, moerr.NewOutOfRange(ctx, "double", "value %s", v.d.Text('f'))
			}
			return NewFloat64(f), nil
		case types.T_varchar:
			f, err := strconv.ParseFloat(strings.TrimSpace(string(v.s)), 64)
			if err != nil {
				return Value{}, moerr.NewInvalidInput(ctx, "cannot cast '%s' to %s", v.s, typ.Oid)
			}
			return NewFloat64(f), nil
		}
	case types.T_decimal:
		d := new(apd.Decimal)
		switch v.oid {
		case types.T_bool, types.T_int64:
			i, _ := Cast(ctx, v, types.T_int64.ToType())
			d.SetInt64(i.i)
			return NewDecimal(d), nil
		case types.T_float64:
			if _, err := d.SetFloat64(v.f); err != nil {
				return Value{}, moerr.NewOutOfRange(ctx, "decimal", "value %v", v.f)
			}
			return NewDecimal(d), nil
		case types.T_varchar:
			if _, _, err := d.SetString(strings.TrimSpace(string(v.s))); err != nil {
				return Value{}, moerr.NewInvalidInput(ctx, "cannot cast '%s' to %s", v.s, typ.Oid)
			}
			return NewDecimal(d), nil
		}
	case types.T_varchar:
		switch v.oid {
		case types.T_bool, types.T_int64, types.T_float64, types.T_decimal:
			return NewString(v.String()), nil
		case types.T_varbinary:
			return NewBytes(types.T_varchar, v.s), nil
		}
	case types.T_varbinary:
		switch v.oid {
		case types.T_varchar:
			return NewBytes(types.T_varbinary, v.s), nil
		}
	}
	return Value{}, moerr.NewNotSupported(ctx, "cast %s to %s", v.oid, typ.Oid)
}
