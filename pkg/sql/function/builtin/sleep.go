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
	"time"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// sleepTimer is replaced in tests to avoid real waiting.
var sleepTimer = time.After

// sleep blocks for a number of seconds and returns 0. It returns early
// with an error when the statement is cancelled.
type sleep struct {
	function.Base
}

func (f *sleep) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	ctx := ec.Context()
	seconds := v.Float64()
	if seconds < 0 || seconds > ec.Parameters().Function.MaxSleepSeconds {
		return moerr.NewInvalidArg(ctx, "sleep", seconds)
	}
	select {
	case <-sleepTimer(time.Duration(seconds * float64(time.Second))):
	case <-ctx.Done():
		return function.InterruptError(ctx, ctx.Err())
	}
	out.Put(value.NewInt64(0))
	return nil
}

func sleepFunctions() []function.ScalarFunction {
	return []function.ScalarFunction{
		&sleep{function.Base{
			FuncNames: []string{"SLEEP"},
			Binding:   function.NewInputBinding().Covers(types.T_float64, 0),
			Result:    function.FixedResult(types.T_int64.ToType()),
			Volatile:  true,
		}},
	}
}
