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

	"go.uber.org/zap"

	"github.com/matrixorigin/scalarcore/pkg/logutil"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// All returns one instance of every built-in overload. Instances are
// immutable and may be shared by registries.
func All() []function.ScalarFunction {
	var fns []function.ScalarFunction
	fns = append(fns, logicFunctions()...)
	fns = append(fns, pickingFunctions()...)
	fns = append(fns, stringFunctions()...)
	fns = append(fns, hexFunctions()...)
	fns = append(fns, mathFunctions()...)
	fns = append(fns, regexpFunctions()...)
	fns = append(fns, randomFunctions()...)
	fns = append(fns, sleepFunctions()...)
	fns = append(fns, sequenceFunctions()...)
	fns = append(fns, catalogFunctions()...)
	fns = append(fns, blobFunctions()...)
	fns = append(fns, spatialFunctions()...)
	return fns
}

// Register installs every built-in function into reg.
func Register(ctx context.Context, reg *function.Registry) error {
	fns := All()
	for _, fn := range fns {
		if err := reg.Register(ctx, fn); err != nil {
			return err
		}
	}
	logutil.Debug("built-in functions registered", zap.Int("overloads", len(fns)))
	return nil
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry(ctx context.Context) (*function.Registry, error) {
	reg := function.NewRegistry()
	if err := Register(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}
