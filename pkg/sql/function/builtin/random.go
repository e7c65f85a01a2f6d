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
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// newSeed seeds RAND() without an argument.
var newSeed = func() int64 {
	return time.Now().UnixNano()
}

// slot of the generator of one execution
const generatorSlot = 0

// random is RAND and RAND(seed). The generator is created on the first
// row of an execution, from the seed of that row, and keeps going for the
// following rows. A NULL seed is 0.
type random struct {
	function.Base
}

func (f *random) Contaminates(int) bool {
	return false
}

func (f *random) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	gen, ok := function.ExectimeSlot[*rand.Rand](ec, generatorSlot)
	if !ok {
		var seed int64
		if in.Len() > 0 {
			v, err := in.Get(0)
			if err != nil {
				return err
			}
			seed = v.Int64()
		} else {
			seed = newSeed()
		}
		gen = rand.New(rand.NewSource(seed))
		if err := ec.SetExectimeObject(generatorSlot, gen); err != nil {
			return err
		}
	}
	out.Put(value.NewFloat64(gen.Float64()))
	return nil
}

type uuidGen struct {
	function.Base
}

func (f *uuidGen) Evaluate(_ *function.ExecutionContext, _ function.LazyInputs, out function.OutputSink) error {
	out.Put(value.NewString(uuid.New().String()))
	return nil
}

// randResult is never nullable, a NULL seed still gives a number.
func randResult(*function.ExecutionContext, []function.PreptimeValue) (types.Type, error) {
	return types.T_float64.ToType(), nil
}

func randomFunctions() []function.ScalarFunction {
	double := types.T_float64.ToType()
	return []function.ScalarFunction{
		&random{function.Base{
			FuncNames:     []string{"RAND"},
			ExplainLayout: function.NOPARAMETER_FUNCTION,
			Result:        function.FixedResult(double),
			Volatile:      true,
		}},
		&random{function.Base{
			FuncNames: []string{"RAND"},
			Binding:   function.NewInputBinding().Covers(types.T_int64, 0),
			Result:    function.CustomResult(randResult),
			Volatile:  true,
		}},
		&uuidGen{function.Base{
			FuncNames:     []string{"UUID"},
			ExplainLayout: function.NOPARAMETER_FUNCTION,
			Result:        function.FixedResult(types.NewString(types.T_varchar, 36, types.CharsetASCII)),
			Volatile:      true,
		}},
	}
}
