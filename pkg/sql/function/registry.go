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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/logutil"
)

// TypeRegistry is the part of the type system overload resolution needs.
type TypeRegistry interface {
	Unify(ctx context.Context, typs []types.Type) (types.Type, error)
	CanCast(from, to types.T) bool
}

// FuncNew records all overloads registered under one name.
type FuncNew struct {
	functionId int32
	name       string
	Overloads  []ScalarFunction
}

func (fn *FuncNew) Name() string {
	return fn.name
}

// Registry maps case-insensitive names to their overloads.
type Registry struct {
	functions          []*FuncNew
	functionIdRegister map[string]int32
}

func NewRegistry() *Registry {
	return &Registry{functionIdRegister: make(map[string]int32)}
}

// Register adds fn under each of its names. An overload with the same
// binding under the same name is rejected.
func (r *Registry) Register(ctx context.Context, fn ScalarFunction) error {
	sig := fn.Bind().String()
	for _, name := range fn.Names() {
		key := strings.ToLower(name)
		fid, ok := r.functionIdRegister[key]
		if !ok {
			fid = int32(len(r.functions))
			r.functions = append(r.functions, &FuncNew{functionId: fid, name: key})
			r.functionIdRegister[key] = fid
		}
		f := r.functions[fid]
		for _, ov := range f.Overloads {
			if ov.Bind().String() == sig {
				return moerr.NewFunctionAlreadyExists(ctx, key+sig)
			}
		}
		f.Overloads = append(f.Overloads, fn)
	}
	return nil
}

// MustRegister registers every fn and panics on conflicts. It is meant
// for building the registry at startup.
func (r *Registry) MustRegister(fns ...ScalarFunction) {
	for _, fn := range fns {
		if err := r.Register(context.TODO(), fn); err != nil {
			panic(err)
		}
	}
}

// Functions lists the registered functions ordered by name.
func (r *Registry) Functions() []*FuncNew {
	res := append([]*FuncNew(nil), r.functions...)
	sort.Slice(res, func(i, j int) bool { return res[i].name < res[j].name })
	return res
}

func (r *Registry) getFunctionIdByName(ctx context.Context, name string) (int32, error) {
	if fid, ok := r.functionIdRegister[strings.ToLower(name)]; ok {
		return fid, nil
	}
	return -1, moerr.NewNotSupported(ctx, "function or operator '%s'", name)
}

func (r *Registry) GetFunctionById(ctx context.Context, overloadID int64) (ScalarFunction, error) {
	fid, oIndex := DecodeOverloadID(overloadID)
	if fid < 0 || int(fid) >= len(r.functions) || int(oIndex) >= len(r.functions[fid].Overloads) {
		return nil, moerr.NewInvalidInput(ctx, "function overload id not found")
	}
	return r.functions[fid].Overloads[oIndex], nil
}

// FuncGetResult is the overload chosen for a list of argument types.
type FuncGetResult struct {
	fid        int32
	overloadId int32
	fn         ScalarFunction

	needCast    bool
	targetTypes []types.Type
	picked      *types.Type
}

func (fr *FuncGetResult) GetEncodedOverloadID() (overloadID int64) {
	return encodeOverloadID(fr.fid, fr.overloadId)
}

func (fr *FuncGetResult) ShouldDoImplicitTypeCast() (typs []types.Type, should bool) {
	return fr.targetTypes, fr.needCast
}

// PickedType is the unified type of the picking group, nil without one.
func (fr *FuncGetResult) PickedType() *types.Type {
	return fr.picked
}

func (fr *FuncGetResult) Function() ScalarFunction {
	return fr.fn
}

// GetFunctionByName picks the cheapest overload of name accepting args.
func (r *Registry) GetFunctionByName(ctx context.Context, typeReg TypeRegistry, name string, args []types.Type) (res FuncGetResult, err error) {
	res.fid, err = r.getFunctionIdByName(ctx, name)
	if err != nil {
		return res, err
	}
	f := r.functions[res.fid]

	check := checkOverloads(ctx, typeReg, f.Overloads, args)
	switch check.status {
	case succeedMatched, succeedWithCast:
		res.overloadId = int32(check.idx)
		res.fn = f.Overloads[check.idx]
		res.targetTypes = check.finalType
		res.picked = check.picked
		res.needCast = check.status == succeedWithCast
	case failedFunctionParametersWrong:
		if check.err != nil {
			err = check.err
		} else {
			err = moerr.NewInvalidArg(ctx, fmt.Sprintf("function %s", name), typeNames(args))
		}
	case failedTooManyFunctionMatched:
		err = moerr.NewInvalidArg(ctx, fmt.Sprintf("too many overloads matched %s", name), typeNames(args))
	}
	if err != nil {
		logutil.Debugf("resolve function %s%v failed: %v", name, typeNames(args), err)
	}
	return res, err
}

func typeNames(args []types.Type) []string {
	res := make([]string, len(args))
	for i, arg := range args {
		res[i] = arg.Oid.String()
	}
	return res
}

func encodeOverloadID(fid, overloadId int32) (overloadID int64) {
	overloadID = int64(fid)
	overloadID = overloadID << 32
	overloadID |= int64(overloadId)
	return
}

func DecodeOverloadID(overloadID int64) (fid int32, oIndex int32) {
	base := overloadID
	oIndex = int32(overloadID)
	fid = int32(base >> 32)
	return fid, oIndex
}

type overloadCheckSituation int

const (
	succeedMatched                overloadCheckSituation = 0
	succeedWithCast               overloadCheckSituation = -1
	failedFunctionParametersWrong overloadCheckSituation = -2
	failedTooManyFunctionMatched  overloadCheckSituation = -4
)

type checkResult struct {
	status overloadCheckSituation

	// if matched
	idx       int
	finalType []types.Type
	picked    *types.Type
	// reason of the failure of a single candidate
	err error
}

func checkOverloads(ctx context.Context, typeReg TypeRegistry, overloads []ScalarFunction, inputs []types.Type) checkResult {
	best := checkResult{status: failedFunctionParametersWrong}
	bestCost, candidates := -1, 0
	for i, ov := range overloads {
		cost, final, picked, err := tryToMatch(ctx, typeReg, ov.Bind(), inputs)
		if err != nil {
			if len(overloads) == 1 {
				best.err = err
			}
			continue
		}
		if cost < 0 {
			continue
		}
		switch {
		case bestCost < 0 || cost < bestCost:
			bestCost, candidates = cost, 1
			best = checkResult{idx: i, finalType: final, picked: picked}
		case cost == bestCost && !sameResolution(inputs, best.finalType, final):
			candidates++
		}
	}
	switch {
	case bestCost < 0:
		return best
	case candidates > 1:
		return checkResult{status: failedTooManyFunctionMatched}
	case bestCost == 0:
		best.status = succeedMatched
	default:
		best.status = succeedWithCast
	}
	return best
}

// sameResolution reports whether two overloads take the typed inputs as
// the same classes. They only differ on NULL literals then, and the first
// registered one is used.
func sameResolution(inputs []types.Type, a, b []types.Type) bool {
	for i, in := range inputs {
		if in.Oid != types.T_any && a[i].Oid != b[i].Oid {
			return false
		}
	}
	return true
}

// tryToMatch returns the number of implicit casts binding needs for
// inputs, or -1 when it cannot accept them.
func tryToMatch(ctx context.Context, typeReg TypeRegistry, binding *InputBinding, inputs []types.Type) (int, []types.Type, *types.Type, error) {
	if !binding.AcceptsArity(len(inputs)) {
		return -1, nil, nil, nil
	}
	cost := 0
	final := make([]types.Type, len(inputs))
	var picked *types.Type
	if positions := binding.PickingPositions(len(inputs)); len(positions) > 0 {
		group := make([]types.Type, len(positions))
		for i, pos := range positions {
			group[i] = inputs[pos]
		}
		unified, err := typeReg.Unify(ctx, group)
		if err != nil {
			return -1, nil, nil, err
		}
		if norm := binding.Normalizer(); norm != nil {
			if unified, err = norm(ctx, unified, group); err != nil {
				return -1, nil, nil, err
			}
		}
		picked = &unified
		for _, pos := range positions {
			final[pos] = unified
			if inputs[pos].Oid != unified.Oid && inputs[pos].Oid != types.T_any {
				cost++
			}
		}
	}
	for i, in := range inputs {
		set := binding.InputSetAt(i)
		if set == nil {
			return -1, nil, nil, nil
		}
		if set.Picking {
			continue
		}
		switch {
		case in.Oid == set.Oid:
			final[i] = in
		case in.Oid == types.T_any:
			final[i] = set.Oid.ToType().WithNullable(true)
		case typeReg.CanCast(in.Oid, set.Oid):
			final[i] = types.Promote(in, set.Oid)
			cost++
		default:
			return -1, nil, nil, nil
		}
	}
	return cost, final, picked, nil
}
