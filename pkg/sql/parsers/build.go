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

package parsers

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// Build parses text and compiles it against the given input columns.
// A typed column reference such as $3:double may point past columns.
func Build(ctx context.Context, c *function.Compiler, text string, columns []types.Type) (function.Expr, error) {
	expr, err := Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	b := &builder{ctx: ctx, c: c, columns: columns}
	return b.build(expr)
}

type builder struct {
	ctx     context.Context
	c       *function.Compiler
	columns []types.Type
}

func (b *builder) build(expr *Expression) (function.Expr, error) {
	switch {
	case expr.Literal != nil:
		v, err := b.literal(expr.Literal)
		if err != nil {
			return nil, err
		}
		return b.c.Literal(v), nil
	case expr.Column != nil:
		return b.column(expr.Column)
	case expr.Call != nil:
		args := make([]function.Expr, len(expr.Call.Args))
		for i, arg := range expr.Call.Args {
			e, err := b.build(arg)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		return b.c.Call(b.ctx, expr.Call.Name, args...)
	}
	return nil, moerr.NewParseError(b.ctx, "empty expression at %s", expr.Pos)
}

func (b *builder) literal(lit *Literal) (value.Value, error) {
	switch {
	case lit.Null:
		return value.Null(), nil
	case lit.True:
		return value.NewBool(true), nil
	case lit.False:
		return value.NewBool(false), nil
	case lit.Hex != nil:
		s := *lit.Hex
		digits := s[2 : len(s)-1]
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		data, err := hex.DecodeString(digits)
		if err != nil {
			return value.Null(), moerr.NewParseError(b.ctx, "bad hex literal %s", s)
		}
		return value.NewBytes(types.T_varbinary, data), nil
	case lit.String != nil:
		s := *lit.String
		return value.NewString(strings.ReplaceAll(s[1:len(s)-1], "''", "'")), nil
	case lit.Float != nil:
		f, err := strconv.ParseFloat(*lit.Float, 64)
		if err != nil {
			return value.Null(), moerr.NewParseError(b.ctx, "bad float literal %s", *lit.Float)
		}
		return value.NewFloat64(f), nil
	case lit.Decimal != nil:
		v, err := value.ParseDecimal(*lit.Decimal)
		if err != nil {
			return value.Null(), moerr.NewParseError(b.ctx, "bad decimal literal %s", *lit.Decimal)
		}
		return v, nil
	case lit.Int != nil:
		i, err := strconv.ParseInt(*lit.Int, 10, 64)
		if err != nil {
			// out of bigint range
			v, derr := value.ParseDecimal(*lit.Int)
			if derr != nil {
				return value.Null(), moerr.NewParseError(b.ctx, "bad integer literal %s", *lit.Int)
			}
			return v, nil
		}
		return value.NewInt64(i), nil
	}
	return value.Null(), moerr.NewParseError(b.ctx, "empty literal")
}

func (b *builder) column(ref *ColumnRef) (function.Expr, error) {
	n, err := strconv.Atoi(ref.Ref[1:])
	if err != nil || n < 1 {
		return nil, moerr.NewInvalidInput(b.ctx, "bad column reference %s", ref.Ref)
	}
	if ref.Type != "" {
		oid, ok := types.Lookup(ref.Type)
		if !ok || oid == types.T_any {
			return nil, moerr.NewInvalidInput(b.ctx, "unknown type %s", ref.Type)
		}
		typ := oid.ToType()
		typ.Nullable = true
		return function.NewColumn(n-1, typ), nil
	}
	if n > len(b.columns) {
		return nil, moerr.NewInvalidInput(b.ctx, "column %s out of %d input columns", ref.Ref, len(b.columns))
	}
	return function.NewColumn(n-1, b.columns[n-1]), nil
}
