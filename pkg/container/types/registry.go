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

package types

import (
	"context"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
)

// Registry answers class level questions: common classes of picking
// groups, instance merging and implicit cast eligibility.
type Registry struct{}

// DefaultRegistry is the registry used when none is configured.
var DefaultRegistry = &Registry{}

// castTable[from][to] holds the implicit casts.
var castTable = map[T]map[T]bool{
	T_bool:      {T_int64: true, T_float64: true, T_decimal: true, T_varchar: true},
	T_int64:     {T_bool: true, T_float64: true, T_decimal: true, T_varchar: true},
	T_float64:   {T_decimal: true, T_varchar: true},
	T_decimal:   {T_float64: true, T_varchar: true},
	T_varchar:   {T_varbinary: true, T_int64: true, T_float64: true, T_decimal: true},
	T_varbinary: {T_varchar: true},
}

// CanCast reports whether a value of from can be implicitly cast to to.
func (r *Registry) CanCast(from, to T) bool {
	if from == to || from == T_any {
		return true
	}
	return castTable[from][to]
}

// numeric classes, ordered by how much they can hold
var numericRank = map[T]int{
	T_bool:    1,
	T_int64:   2,
	T_decimal: 3,
	T_float64: 4,
}

// CommonT returns the class both a and b can be cast to.
func (r *Registry) CommonT(a, b T) (T, bool) {
	switch {
	case a == b:
		return a, true
	case a == T_any:
		return b, true
	case b == T_any:
		return a, true
	}
	ra, aNum := numericRank[a]
	rb, bNum := numericRank[b]
	if aNum && bNum {
		if ra > rb {
			return a, true
		}
		return b, true
	}
	if a.IsString() && b.IsString() {
		return T_varbinary, true
	}
	if (a == T_varchar && bNum) || (b == T_varchar && aNum) {
		return T_varchar, true
	}
	return T_any, false
}

// Promote returns the instance of class to that can hold every value of typ.
func Promote(typ Type, to T) Type {
	if typ.Oid == to {
		return typ
	}
	res := to.ToType()
	res.Nullable = typ.Nullable
	switch to {
	case T_varchar:
		res.Charset = CharsetUTF8
		switch typ.Oid {
		case T_bool:
			res.Width = BoolStringWidth
		case T_int64:
			res.Width = Int64StringWidth
		case T_float64:
			res.Width = Float64StringWidth
		case T_decimal:
			res.Width = typ.Width + 2
		case T_varbinary:
			res.Width = typ.Width
		}
	case T_varbinary:
		res.Width = typ.Width
		if typ.Oid == T_varchar {
			res.Width = int32(float64(typ.Width) * typ.Charset.MaxBytesPerChar())
			if res.Width > MaxVarcharLen {
				res.Width = MaxVarcharLen
			}
		}
	case T_decimal:
		switch typ.Oid {
		case T_bool:
			res.Width, res.Scale = 1, 0
		case T_int64:
			res.Width, res.Scale = 19, 0
		}
	}
	return res
}

// Pick merges two instances of the same class into the widest one.
func (r *Registry) Pick(a, b Type) Type {
	res := a
	if b.Width > res.Width {
		res.Width = b.Width
	}
	if b.Scale > res.Scale {
		res.Scale = b.Scale
	}
	if a.Oid == T_decimal {
		// keep enough integer digits for both sides
		intDigits := a.Width - a.Scale
		if b.Width-b.Scale > intDigits {
			intDigits = b.Width - b.Scale
		}
		res.Width = intDigits + res.Scale
		if res.Width > MaxDecimalWidth {
			res.Width = MaxDecimalWidth
		}
	}
	if b.Charset.MaxBytesPerChar() > a.Charset.MaxBytesPerChar() {
		res.Charset = b.Charset
	}
	res.Nullable = a.Nullable || b.Nullable
	return res
}

// Unify resolves the single instance every member of a picking group is
// cast to. NULL literals do not take part in the choice but make the
// result nullable.
func (r *Registry) Unify(ctx context.Context, typs []Type) (Type, error) {
	common := T_any
	nullable := false
	for _, typ := range typs {
		nullable = nullable || typ.Nullable
		if typ.Oid == T_any {
			continue
		}
		t, ok := r.CommonT(common, typ.Oid)
		if !ok {
			return Type{}, moerr.NewInvalidInput(ctx, "no common type for %s and %s", common, typ.Oid)
		}
		common = t
	}
	if common == T_any {
		return Type{}, moerr.NewInvalidInput(ctx, "cannot resolve the type of a group of NULL values")
	}
	var res Type
	first := true
	for _, typ := range typs {
		if typ.Oid == T_any {
			continue
		}
		p := Promote(typ, common)
		if first {
			res = p
			first = false
			continue
		}
		res = r.Pick(res, p)
	}
	res.Nullable = nullable
	return res, nil
}
