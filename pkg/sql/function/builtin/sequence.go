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

// qualifiedName splits "schema.name". A bare name lives in the current schema.
func qualifiedName(ec *function.ExecutionContext, name string) (string, string, error) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:], nil
	}
	schema, err := currentSchema(ec)
	return schema, name, err
}

func currentSchema(ec *function.ExecutionContext) (string, error) {
	session := ec.Services().Session
	if session == nil {
		return "", moerr.NewInternalError(ec.Context(), "no session")
	}
	return session.CurrentSchema(), nil
}

// sequenceName reads the sequence name out of one or two inputs.
func sequenceName(ec *function.ExecutionContext, in function.LazyInputs) (string, string, error) {
	first, err := in.Get(0)
	if err != nil {
		return "", "", err
	}
	if in.Len() == 1 {
		return qualifiedName(ec, string(first.Bytes()))
	}
	second, err := in.Get(1)
	if err != nil {
		return "", "", err
	}
	return string(first.Bytes()), string(second.Bytes()), nil
}

type sequenceValue struct {
	function.Base
	next bool
}

func (f *sequenceValue) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	schema, name, err := sequenceName(ec, in)
	if err != nil {
		return err
	}
	seqs := ec.Services().Sequences
	if seqs == nil {
		return moerr.NewInternalError(ec.Context(), "no sequence service")
	}
	var v int64
	if f.next {
		v, err = seqs.NextVal(ec.Context(), schema, name)
	} else {
		v, err = seqs.CurrVal(ec.Context(), schema, name)
	}
	if err != nil {
		return err
	}
	out.Put(value.NewInt64(v))
	return nil
}

func sequenceFunctions() []function.ScalarFunction {
	var fns []function.ScalarFunction
	for _, next := range []bool{true, false} {
		name := "CURRVAL"
		if next {
			name = "NEXTVAL"
		}
		for _, arity := range []int{1, 2} {
			binding := function.NewInputBinding().Covers(types.T_varchar, 0)
			if arity == 2 {
				binding.Covers(types.T_varchar, 1)
			}
			fns = append(fns, &sequenceValue{Base: function.Base{
				FuncNames: []string{name},
				Binding:   binding,
				Result:    function.FixedResult(types.T_int64.ToType()),
				Volatile:  true,
			}, next: next})
		}
	}
	return fns
}

type currentSchemaFn struct {
	function.Base
}

func (f *currentSchemaFn) Evaluate(ec *function.ExecutionContext, _ function.LazyInputs, out function.OutputSink) error {
	schema, err := currentSchema(ec)
	if err != nil {
		return err
	}
	out.Put(value.NewString(schema))
	return nil
}

// serialSequence names the sequence generating a column, NULL when the
// column has none.
type serialSequence struct {
	function.Base
}

func (f *serialSequence) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	tv, err := in.Get(0)
	if err != nil {
		return err
	}
	cv, err := in.Get(1)
	if err != nil {
		return err
	}
	schema, table, err := qualifiedName(ec, string(tv.Bytes()))
	if err != nil {
		return err
	}
	if schema == "" || table == "" || len(cv.Bytes()) == 0 {
		return moerr.NewInvalidInput(ec.Context(), "empty identifier")
	}
	catalog := ec.Services().Catalog
	if catalog == nil {
		return moerr.NewInternalError(ec.Context(), "no catalog")
	}
	tbl, err := catalog.Table(ec.Context(), schema, table)
	if err != nil {
		return err
	}
	col, ok := tbl.Column(string(cv.Bytes()))
	if !ok {
		return moerr.NewNoSuchColumn(ec.Context(), schema, table, string(cv.Bytes()))
	}
	if col.Sequence == "" {
		out.PutNull()
		return nil
	}
	out.Put(value.NewString(schema + "." + col.Sequence))
	return nil
}

func catalogFunctions() []function.ScalarFunction {
	return []function.ScalarFunction{
		&currentSchemaFn{function.Base{
			FuncNames:     []string{"CURRENT_SCHEMA"},
			ExplainLayout: function.NOPARAMETER_FUNCTION,
			Result:        function.FixedResult(types.T_varchar.ToType()),
			Volatile:      true,
		}},
		&serialSequence{function.Base{
			FuncNames: []string{"PG_GET_SERIAL_SEQUENCE"},
			Binding:   function.NewInputBinding().Covers(types.T_varchar, 0, 1),
			Result:    function.FixedResult(types.T_varchar.ToType().WithNullable(true)),
			Volatile:  true,
		}},
	}
}
