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

package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
	"github.com/matrixorigin/scalarcore/pkg/testutil"
)

func TestPad(t *testing.T) {
	c := newTestCompiler(t)
	varchar := nullable(types.T_varchar)
	str := func(s string) testutil.FunctionTestInput {
		return testutil.NewFunctionTestConstInput(types.T_varchar.ToType(), []string{s}, nil)
	}
	length := func(n int64) testutil.FunctionTestInput {
		return testutil.NewFunctionTestConstInput(types.T_int64.ToType(), []int64{n}, nil)
	}

	runCases(t, c, []tcTemp{
		{
			info:   "lpad repeats the pad",
			name:   "LPAD",
			inputs: []testutil.FunctionTestInput{str("hi"), length(5), str("ab")},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"abahi"}, nil),
		},
		{
			info:   "rpad repeats the pad",
			name:   "RPAD",
			inputs: []testutil.FunctionTestInput{str("hi"), length(5), str("ab")},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"hiaba"}, nil),
		},
		{
			info:   "lpad cuts a longer string",
			name:   "LPAD",
			inputs: []testutil.FunctionTestInput{str("hello"), length(3), str("x")},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"hel"}, nil),
		},
		{
			info:   "lpad counts characters",
			name:   "LPAD",
			inputs: []testutil.FunctionTestInput{str("été"), length(5), str("ü")},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"üüété"}, nil),
		},
		{
			info:   "negative length",
			name:   "LPAD",
			inputs: []testutil.FunctionTestInput{str("hi"), length(-1), str("x")},
			expect: testutil.NewFunctionTestResult(varchar, false, nil, []bool{true}),
		},
		{
			info:   "empty pad",
			name:   "RPAD",
			inputs: []testutil.FunctionTestInput{str("hi"), length(5), str("")},
			expect: testutil.NewFunctionTestResult(varchar, false, nil, []bool{true}),
		},
		{
			info:   "empty pad is not needed",
			name:   "RPAD",
			inputs: []testutil.FunctionTestInput{str("hi"), length(2), str("")},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"hi"}, nil),
		},
		{
			info:   "wider than any varchar",
			name:   "RPAD",
			inputs: []testutil.FunctionTestInput{str("hi"), length(types.MaxVarcharLen + 1), str("x")},
			expect: testutil.NewFunctionTestResult(varchar, false, nil, []bool{true}),
		},
		{
			info:   "too long",
			name:   "LPAD",
			inputs: []testutil.FunctionTestInput{str("hi"), length(1 << 40), str("x")},
			expect: testutil.NewFunctionTestResult(varchar, false, nil, []bool{true}),
		},
		{
			info: "columns",
			name: "LPAD",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestInput(varchar, []string{"a", "", "c"}, []bool{false, false, true}),
				testutil.NewFunctionTestInput(nullable(types.T_int64), []int64{3, 2, 3}, nil),
				str("-"),
			},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"--a", "--", ""}, []bool{false, false, true}),
		},
	})
}

func TestPadResultType(t *testing.T) {
	ctx := context.Background()
	c := newTestCompiler(t)
	col := function.NewColumn(0, types.NewString(types.T_varchar, 10, types.CharsetLatin1))

	expr, err := c.Call(ctx, "LPAD", col, c.Literal(value.NewInt64(4)), c.Literal(value.NewString("x")))
	require.NoError(t, err)
	require.Equal(t, int32(4), expr.Type().Width)
	require.Equal(t, types.CharsetLatin1, expr.Type().Charset)
	require.True(t, expr.Type().Nullable)

	n := function.NewColumn(1, types.T_int64.ToType())
	expr, err = c.Call(ctx, "RPAD", col, n, c.Literal(value.NewString("x")))
	require.NoError(t, err)
	require.Equal(t, int32(types.MaxVarcharLen), expr.Type().Width)

	expr, err = c.Call(ctx, "LPAD", col, c.Literal(value.NewInt64(types.MaxVarcharLen+1)), c.Literal(value.NewString("x")))
	require.NoError(t, err)
	require.Equal(t, int32(types.MaxVarcharLen), expr.Type().Width)
}

func TestQuoteIdent(t *testing.T) {
	c := newTestCompiler(t)
	varchar := nullable(types.T_varchar)
	runCases(t, c, []tcTemp{
		{
			info: "quote when needed",
			name: "QUOTE_IDENT",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestInput(varchar,
					[]string{"abc", "a_1", "Abc", "1a", "a b", `say "hi"`},
					nil),
			},
			expect: testutil.NewFunctionTestResult(varchar, false,
				[]string{"abc", "a_1", `"Abc"`, `"1a"`, `"a b"`, `"say ""hi"""`},
				nil),
		},
		{
			info: "empty identifier",
			name: "QUOTE_IDENT",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestConstInput(types.T_varchar.ToType(), []string{""}, nil),
			},
			expect: testutil.NewFunctionTestResult(varchar, true, nil, nil),
		},
	})
}

func TestQuoteIdentEmpty(t *testing.T) {
	c := newTestCompiler(t)
	_, _, err := evalConst(t, c, "QUOTE_IDENT", value.NewString(""))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestHex(t *testing.T) {
	c := newTestCompiler(t)
	varchar := nullable(types.T_varchar)
	runCases(t, c, []tcTemp{
		{
			info: "hex of strings",
			name: "HEX",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestInput(varchar, []string{"AB", "", "é", ""}, []bool{false, false, false, true}),
			},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"4142", "", "C3A9", ""}, []bool{false, false, false, true}),
		},
		{
			info: "hex encodes in the charset of its input",
			name: "HEX",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestInput(types.NewString(types.T_varchar, 4, types.CharsetLatin1), []string{"é"}, nil),
			},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"E9"}, nil),
		},
		{
			info: "hex of bytes",
			name: "HEX",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestInput(nullable(types.T_varbinary), [][]byte{{0x00, 0xff}}, nil),
			},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"00FF"}, nil),
		},
		{
			info: "hex of integers",
			name: "HEX",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestInput(nullable(types.T_int64), []int64{255, 0, -1}, nil),
			},
			expect: testutil.NewFunctionTestResult(varchar, false, []string{"FF", "0", "FFFFFFFFFFFFFFFF"}, nil),
		},
		{
			info: "hex of a NULL literal",
			name: "HEX",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestConstInput(types.T_any.ToType(), nil, []bool{true}),
			},
			expect: testutil.NewFunctionTestResult(varchar, false, nil, []bool{true}),
		},
		{
			info: "unhex",
			name: "UNHEX",
			inputs: []testutil.FunctionTestInput{
				testutil.NewFunctionTestInput(varchar, []string{"4142", "abc", "", "zz"}, nil),
			},
			expect: testutil.NewFunctionTestResult(nullable(types.T_varbinary), false,
				[][]byte{[]byte("AB"), {0x0a, 0xbc}, {}, nil},
				[]bool{false, false, false, true}).WithWarnings(1),
		},
	})
}

func TestHexResultType(t *testing.T) {
	ctx := context.Background()
	c := newTestCompiler(t)

	expr, err := c.Call(ctx, "HEX", function.NewColumn(0, types.NewString(types.T_varchar, 10, types.CharsetUTF8)))
	require.NoError(t, err)
	require.Equal(t, types.NewString(types.T_varchar, 80, types.CharsetASCII), expr.Type())

	expr, err = c.Call(ctx, "HEX", function.NewColumn(0, types.T_int64.ToType()))
	require.NoError(t, err)
	require.Equal(t, int32(16), expr.Type().Width)

	expr, err = c.Call(ctx, "UNHEX", function.NewColumn(0, types.NewString(types.T_varchar, 7, types.CharsetASCII)))
	require.NoError(t, err)
	require.Equal(t, int32(4), expr.Type().Width)
	require.True(t, expr.Type().Nullable)
}

func TestUnhexOfHex(t *testing.T) {
	ctx := context.Background()
	c := newTestCompiler(t)
	hexExpr, err := c.Call(ctx, "HEX", function.NewColumn(0, nullable(types.T_varbinary)))
	require.NoError(t, err)
	expr, err := c.Call(ctx, "UNHEX", hexExpr)
	require.NoError(t, err)

	stmt := function.NewStatement(expr)
	defer stmt.Close()
	exec, err := stmt.NewExecution(ctx)
	require.NoError(t, err)
	defer exec.Close()
	for _, b := range [][]byte{{}, {0}, []byte("hello"), {0xde, 0xad, 0xbe, 0xef}} {
		vals, err := exec.EvalRow([]value.Value{value.NewBytes(types.T_varbinary, b)})
		require.NoError(t, err)
		require.Equal(t, b, vals[0].Bytes())
	}
	require.Empty(t, exec.Warnings())
}
