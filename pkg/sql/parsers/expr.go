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

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
)

// Expression is a scalar expression: a literal, a column or a call.
type Expression struct {
	Pos lexer.Position

	Literal *Literal   `  @@`
	Column  *ColumnRef `| @@`
	Call    *Call      `| @@`
}

type Literal struct {
	Null    bool    `  @"NULL"`
	True    bool    `| @"TRUE"`
	False   bool    `| @"FALSE"`
	Hex     *string `| @Hex`
	String  *string `| @String`
	Float   *string `| @Float`
	Decimal *string `| @Decimal`
	Int     *string `| @Int`
}

// ColumnRef is $n, optionally typed as $n:varchar.
type ColumnRef struct {
	Ref  string `@Column`
	Type string `( ":" @Ident )?`
}

type Call struct {
	Name string        `@Ident "("`
	Args []*Expression `( @@ ( "," @@ )* )? ")"`
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Hex", Pattern: `[xX]'[0-9a-fA-F]*'`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Float", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)[eE][-+]?\d+`},
	{Name: "Decimal", Pattern: `[-+]?(?:\d+\.\d*|\.\d+)`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Column", Pattern: `\$\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(),:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[Expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
)

// Parse parses one expression.
func Parse(ctx context.Context, text string) (*Expression, error) {
	expr, err := exprParser.ParseString("", text)
	if err != nil {
		return nil, moerr.NewParseError(ctx, "%v", err)
	}
	return expr, nil
}
