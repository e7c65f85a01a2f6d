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
	"fmt"
	"strings"
)

// T is the identifier of a type class.
type T uint8

const (
	// T_any is the type of a NULL literal, it is unified away.
	T_any T = 0

	T_bool T = 10

	T_int64   T = 23
	T_float64 T = 31
	T_decimal T = 33

	T_varchar   T = 61
	T_varbinary T = 62
	T_blob      T = 63

	T_geometry T = 80
)

const (
	MaxVarcharLen   = 65535
	MaxDecimalWidth = 38
	// widths of numbers rendered as strings
	Int64StringWidth   = 20
	Float64StringWidth = 24
	BoolStringWidth    = 5
)

// Type is a fully parameterized type instance.
// Width is the maximum length for string classes and the precision for decimal.
type Type struct {
	Oid      T
	Width    int32
	Scale    int32
	Charset  Charset
	Nullable bool
}

// New returns an instance of oid with the given attributes.
func New(oid T, width, scale int32) Type {
	typ := oid.ToType()
	typ.Width = width
	typ.Scale = scale
	return typ
}

// NewString returns a string instance of oid with a charset.
func NewString(oid T, width int32, cs Charset) Type {
	typ := oid.ToType()
	typ.Width = width
	if oid == T_varchar {
		typ.Charset = cs
	}
	return typ
}

// ToType returns the default instance of the class.
func (t T) ToType() Type {
	typ := Type{Oid: t}
	switch t {
	case T_any:
		typ.Nullable = true
	case T_decimal:
		typ.Width = MaxDecimalWidth
	case T_varchar:
		typ.Width = MaxVarcharLen
		typ.Charset = CharsetUTF8
	case T_varbinary:
		typ.Width = MaxVarcharLen
		typ.Charset = CharsetBinary
	case T_blob:
		typ.Charset = CharsetBinary
	}
	return typ
}

func (t T) String() string {
	switch t {
	case T_any:
		return "ANY"
	case T_bool:
		return "BOOL"
	case T_int64:
		return "BIGINT"
	case T_float64:
		return "DOUBLE"
	case T_decimal:
		return "DECIMAL"
	case T_varchar:
		return "VARCHAR"
	case T_varbinary:
		return "VARBINARY"
	case T_blob:
		return "BLOB"
	case T_geometry:
		return "GEOMETRY"
	}
	return fmt.Sprintf("unexpected type: %d", uint8(t))
}

// IsString reports whether values of t are byte strings.
func (t T) IsString() bool {
	return t == T_varchar || t == T_varbinary
}

// IsNumeric reports whether t is a number class.
func (t T) IsNumeric() bool {
	return t == T_int64 || t == T_float64 || t == T_decimal
}

// WithNullable returns a copy of typ with the given nullability.
func (typ Type) WithNullable(nullable bool) Type {
	typ.Nullable = nullable
	return typ
}

// WithWidth returns a copy of typ with the given width.
func (typ Type) WithWidth(width int32) Type {
	typ.Width = width
	return typ
}

// Eq compares the class and attributes, ignoring nullability.
func (typ Type) Eq(o Type) bool {
	return typ.WithNullable(false) == o.WithNullable(false)
}

func (typ Type) String() string {
	var sb strings.Builder
	sb.WriteString(typ.Oid.String())
	switch typ.Oid {
	case T_decimal:
		fmt.Fprintf(&sb, "(%d,%d)", typ.Width, typ.Scale)
	case T_varchar:
		fmt.Fprintf(&sb, "(%d) CHARSET %s", typ.Width, typ.Charset)
	case T_varbinary:
		fmt.Fprintf(&sb, "(%d)", typ.Width)
	}
	if !typ.Nullable {
		sb.WriteString(" NOT NULL")
	}
	return sb.String()
}

var typeNames = map[string]T{
	"any":       T_any,
	"bool":      T_bool,
	"boolean":   T_bool,
	"bigint":    T_int64,
	"int":       T_int64,
	"int64":     T_int64,
	"double":    T_float64,
	"float64":   T_float64,
	"decimal":   T_decimal,
	"varchar":   T_varchar,
	"text":      T_varchar,
	"varbinary": T_varbinary,
	"binary":    T_varbinary,
	"blob":      T_blob,
	"geometry":  T_geometry,
}

// Lookup finds a type class by its SQL name.
func Lookup(name string) (T, bool) {
	t, ok := typeNames[strings.ToLower(name)]
	return t, ok
}
