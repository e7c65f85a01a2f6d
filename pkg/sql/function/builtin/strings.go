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
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// pad is LPAD and RPAD. The string is cut when it is longer than the
// target length. A negative length or one above the widest varchar gives
// NULL, as does an empty pad string when padding is needed.
type pad struct {
	function.Base
	left bool
}

// padResult is as wide as a literal target length, the widest varchar otherwise.
func padResult(_ *function.ExecutionContext, inputs []function.PreptimeValue) (types.Type, error) {
	width := int32(types.MaxVarcharLen)
	if n := inputs[1]; n.IsKnown() && !n.IsKnownNull() && n.Value.Int64() >= 0 && n.Value.Int64() <= types.MaxVarcharLen {
		width = int32(n.Value.Int64())
	}
	return types.NewString(types.T_varchar, width, inputs[0].Type.Charset).WithNullable(true), nil
}

// padLimit is the longest result, bounded by the widest varchar.
func padLimit(ec *function.ExecutionContext) int64 {
	if limit := ec.Parameters().Function.MaxPadLength; limit < types.MaxVarcharLen {
		return limit
	}
	return types.MaxVarcharLen
}

func (f *pad) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	s, err := in.Get(0)
	if err != nil {
		return err
	}
	n, err := in.Get(1)
	if err != nil {
		return err
	}
	p, err := in.Get(2)
	if err != nil {
		return err
	}
	length := n.Int64()
	if length < 0 || length > padLimit(ec) {
		out.PutNull()
		return nil
	}
	runes := []rune(string(s.Bytes()))
	if int64(len(runes)) >= length {
		out.Put(value.NewString(string(runes[:length])))
		return nil
	}
	fill := []rune(string(p.Bytes()))
	if len(fill) == 0 {
		out.PutNull()
		return nil
	}
	delta := int(length) - len(runes)
	padding := make([]rune, delta)
	for i := range padding {
		padding[i] = fill[i%len(fill)]
	}
	if f.left {
		out.Put(value.NewString(string(padding) + string(runes)))
	} else {
		out.Put(value.NewString(string(runes) + string(padding)))
	}
	return nil
}

// quoteIdent quotes a string to be used as an identifier, when needed.
type quoteIdent struct {
	function.Base
}

func quoteIdentResult(_ *function.ExecutionContext, inputs []function.PreptimeValue) (types.Type, error) {
	in := inputs[0].Type
	width := in.Width + 2
	if width > types.MaxVarcharLen {
		width = types.MaxVarcharLen
	}
	return types.NewString(types.T_varchar, width, in.Charset).WithNullable(in.Nullable), nil
}

func isPlainIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func (f *quoteIdent) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	s := string(v.Bytes())
	if s == "" {
		return moerr.NewInvalidInput(ec.Context(), "empty identifier")
	}
	if !isPlainIdent(s) {
		s = "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	out.Put(value.NewString(s))
	return nil
}

func stringFunctions() []function.ScalarFunction {
	padBinding := function.NewInputBinding().Covers(types.T_varchar, 0, 2).Covers(types.T_int64, 1)
	return []function.ScalarFunction{
		&pad{Base: function.Base{
			FuncNames: []string{"LPAD"},
			Binding:   padBinding,
			Result:    function.CustomResult(padResult),
		}, left: true},
		&pad{Base: function.Base{
			FuncNames: []string{"RPAD"},
			Binding:   padBinding,
			Result:    function.CustomResult(padResult),
		}},
		&quoteIdent{function.Base{
			FuncNames: []string{"QUOTE_IDENT"},
			Binding:   function.NewInputBinding().Covers(types.T_varchar, 0),
			Result:    function.CustomResult(quoteIdentResult),
		}},
	}
}
