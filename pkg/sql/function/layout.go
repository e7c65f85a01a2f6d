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

package function

import (
	"strings"
)

// FuncExplainLayout decides how a call is printed by explain.
type FuncExplainLayout int32

const (
	STANDARD_FUNCTION          FuncExplainLayout = 0  //standard function
	UNARY_ARITHMETIC_OPERATOR  FuncExplainLayout = 1  //unary arithmetic operator
	BINARY_ARITHMETIC_OPERATOR FuncExplainLayout = 2  //binary arithmetic operator
	UNARY_LOGICAL_OPERATOR     FuncExplainLayout = 3  // unary logical operator
	BINARY_LOGICAL_OPERATOR    FuncExplainLayout = 4  // binary logical operator
	COMPARISON_OPERATOR        FuncExplainLayout = 5  // comparison operator
	NOPARAMETER_FUNCTION       FuncExplainLayout = 12 // noparameter function
)

func explainCall(layout FuncExplainLayout, name string, args []string) string {
	switch layout {
	case UNARY_ARITHMETIC_OPERATOR, UNARY_LOGICAL_OPERATOR:
		if len(args) == 1 {
			return name + " " + args[0]
		}
	case BINARY_ARITHMETIC_OPERATOR, BINARY_LOGICAL_OPERATOR, COMPARISON_OPERATOR:
		if len(args) == 2 {
			return "(" + args[0] + " " + name + " " + args[1] + ")"
		}
	case NOPARAMETER_FUNCTION:
		if len(args) == 0 {
			return name
		}
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}
