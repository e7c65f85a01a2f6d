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

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/batch"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/container/vector"
	"github.com/matrixorigin/scalarcore/pkg/logutil"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
	"github.com/matrixorigin/scalarcore/pkg/sql/parsers"
)

const nullText = "NULL"

type evalCmd struct {
	Types     []string `name:"types" short:"t" sep:"," help:"Types of the input columns $1, $2 and so on."`
	Rows      []string `name:"row" short:"r" help:"One input row, values separated by '|'. NULL is the NULL value."`
	BatchSize int      `name:"batch-size" default:"1024" help:"Rows per execution, executions run in parallel."`
	Exprs     []string `arg:"" help:"Expressions to evaluate."`
}

func (c *evalCmd) Run(e *env) error {
	stmt, columns, err := compile(e, c.Types, c.Exprs)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if len(c.Rows) == 0 {
		exec, err := stmt.NewExecution(e.ctx)
		if err != nil {
			return err
		}
		defer exec.Close()
		vals, err := exec.EvalRow(nil)
		if err != nil {
			return err
		}
		printRow(vals)
		printWarnings(exec.Warnings())
		return nil
	}

	bats, err := buildBatches(e.ctx, columns, c.Rows, c.BatchSize)
	if err != nil {
		return err
	}
	ex, err := function.NewExecutor(e.params.Executor.Parallelism)
	if err != nil {
		return err
	}
	defer ex.Close()
	results, err := ex.Run(e.ctx, stmt, bats)
	if err != nil {
		return err
	}
	for _, res := range results {
		for i := 0; i < res.Vecs[0].Length(); i++ {
			vals := make([]value.Value, len(res.Vecs))
			for j, vec := range res.Vecs {
				vals[j] = vec.GetValue(i)
			}
			printRow(vals)
		}
		printWarnings(res.Warnings)
	}
	return nil
}

type explainCmd struct {
	Types []string `name:"types" short:"t" sep:"," help:"Types of the input columns $1, $2 and so on."`
	Exprs []string `arg:"" help:"Expressions to compile."`
}

func (c *explainCmd) Run(e *env) error {
	stmt, _, err := compile(e, c.Types, c.Exprs)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, text := range stmt.Explain() {
		fmt.Printf("%s : %s\n", text, stmt.Exprs()[i].Type())
	}
	return nil
}

type listCmd struct {
	Name string `arg:"" optional:"" help:"Only list the overloads of this function."`
}

func (c *listCmd) Run(e *env) error {
	for _, f := range e.compiler.Registry().Functions() {
		if c.Name != "" && !strings.EqualFold(c.Name, f.Name()) {
			continue
		}
		for _, ov := range f.Overloads {
			fmt.Printf("%s%s\n", strings.ToUpper(f.Name()), ov.Bind())
		}
	}
	return nil
}

func compile(e *env, typeNames, exprs []string) (*function.Statement, []types.Type, error) {
	columns := make([]types.Type, len(typeNames))
	for i, name := range typeNames {
		oid, ok := types.Lookup(strings.TrimSpace(name))
		if !ok || oid == types.T_any {
			return nil, nil, moerr.NewInvalidInput(e.ctx, "unknown type %s", name)
		}
		columns[i] = oid.ToType().WithNullable(true)
	}
	compiled := make([]function.Expr, len(exprs))
	for i, text := range exprs {
		expr, err := parsers.Build(e.ctx, e.compiler, text, columns)
		if err != nil {
			return nil, nil, err
		}
		logutil.Debug("expression compiled", zap.String("text", text), zap.String("expr", expr.String()))
		compiled[i] = expr
	}
	return function.NewStatement(compiled...), columns, nil
}

func buildBatches(ctx context.Context, columns []types.Type, rows []string, batchSize int) ([]*batch.Batch, error) {
	if len(columns) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "rows need column types")
	}
	if batchSize < 1 {
		batchSize = 1
	}
	vecs := make([]*vector.Vector, len(columns))
	for i, typ := range columns {
		vecs[i] = vector.NewVec(typ)
	}
	for _, row := range rows {
		fields := strings.Split(row, "|")
		if len(fields) != len(columns) {
			return nil, moerr.NewInvalidInput(ctx, "row '%s' has %d values, expect %d", row, len(fields), len(columns))
		}
		for i, field := range fields {
			v, err := parseValue(ctx, columns[i], field)
			if err != nil {
				return nil, err
			}
			if err = vecs[i].Append(ctx, v); err != nil {
				return nil, err
			}
		}
	}
	all, err := batch.NewWithVectors(ctx, vecs...)
	if err != nil {
		return nil, err
	}
	var bats []*batch.Batch
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		bats = append(bats, all.Window(start, end))
	}
	return bats, nil
}

// parseValue reads the text form of a value of typ.
func parseValue(ctx context.Context, typ types.Type, s string) (value.Value, error) {
	if strings.EqualFold(s, nullText) {
		return value.Null(), nil
	}
	switch typ.Oid {
	case types.T_bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return value.Null(), moerr.NewInvalidInput(ctx, "cannot read '%s' as %s", s, typ.Oid)
		}
		return value.NewBool(b), nil
	case types.T_varbinary:
		return value.NewBytes(types.T_varbinary, []byte(s)), nil
	case types.T_blob, types.T_geometry:
		return value.Null(), moerr.NewNotSupported(ctx, "%s input values", typ.Oid)
	}
	return value.Cast(ctx, value.NewString(s), typ)
}

func printRow(vals []value.Value) {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	fmt.Println(strings.Join(parts, "\t"))
}

func printWarnings(warnings []*moerr.Error) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Error())
	}
}
