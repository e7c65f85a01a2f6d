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
	"regexp"
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// compileRegexp is replaced in tests to count compilations.
var compileRegexp = regexp.Compile

// slot of the pattern compiled while preparing, or of the last pattern
// compiled while executing
const patternSlot = 0

type compiledPattern struct {
	pattern string
	flags   string
	re      *regexp.Regexp
}

// buildPattern translates MySQL match flags into go regexp flags.
func buildPattern(ctx context.Context, fn, pattern, flags string) (*compiledPattern, error) {
	var prefix strings.Builder
	for _, c := range flags {
		switch c {
		case 'i':
			prefix.WriteString("(?i)")
		case 'c':
			prefix.WriteString("(?-i)")
		case 'm':
			prefix.WriteString("(?m)")
		case 'n':
			prefix.WriteString("(?s)")
		default:
			return nil, moerr.NewInvalidArg(ctx, fn+" match type", string(c))
		}
	}
	re, err := compileRegexp(prefix.String() + pattern)
	if err != nil {
		return nil, moerr.NewInvalidArg(ctx, fn+" pattern", pattern)
	}
	return &compiledPattern{pattern: pattern, flags: flags, re: re}, nil
}

// regexpBase holds the pattern caching shared by the regexp functions.
// The pattern is at patternIdx, the optional flags at flagsIdx.
type regexpBase struct {
	function.Base
	patternIdx int
	flagsIdx   int
}

func (f *regexpBase) hasFlags(n int) bool {
	return f.flagsIdx < n
}

// Prepare compiles a pattern whose text and flags are literals.
func (f *regexpBase) Prepare(ec *function.ExecutionContext, inputs []function.PreptimeValue) error {
	pattern := inputs[f.patternIdx]
	if !pattern.IsKnown() || pattern.IsKnownNull() {
		return nil
	}
	flags := ""
	if f.hasFlags(len(inputs)) {
		in := inputs[f.flagsIdx]
		if !in.IsKnown() || in.IsKnownNull() {
			return nil
		}
		flags = string(in.Value.Bytes())
	}
	p, err := buildPattern(ec.Context(), f.DisplayName(), string(pattern.Value.Bytes()), flags)
	if err != nil {
		return err
	}
	return ec.SetPreptimeObject(patternSlot, p)
}

// pattern returns the compiled pattern of the current row. A pattern
// compiled while executing is kept until a row brings another one.
func (f *regexpBase) pattern(ec *function.ExecutionContext, in function.LazyInputs) (*regexp.Regexp, error) {
	if p, ok := function.PreptimeSlot[*compiledPattern](ec, patternSlot); ok {
		return p.re, nil
	}
	pv, err := in.Get(f.patternIdx)
	if err != nil {
		return nil, err
	}
	flags := ""
	if f.hasFlags(in.Len()) {
		fv, err := in.Get(f.flagsIdx)
		if err != nil {
			return nil, err
		}
		flags = string(fv.Bytes())
	}
	pattern := string(pv.Bytes())
	if p, ok := function.ExectimeSlot[*compiledPattern](ec, patternSlot); ok && p.pattern == pattern && p.flags == flags {
		return p.re, nil
	}
	p, err := buildPattern(ec.Context(), f.DisplayName(), pattern, flags)
	if err != nil {
		return nil, err
	}
	if err = ec.SetExectimeObject(patternSlot, p); err != nil {
		return nil, err
	}
	return p.re, nil
}

type regexpLike struct {
	regexpBase
}

func (f *regexpLike) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	s, err := in.Get(0)
	if err != nil {
		return err
	}
	re, err := f.pattern(ec, in)
	if err != nil {
		return err
	}
	out.Put(value.NewBool(re.Match(s.Bytes())))
	return nil
}

type regexpReplace struct {
	regexpBase
}

func (f *regexpReplace) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	s, err := in.Get(0)
	if err != nil {
		return err
	}
	repl, err := in.Get(2)
	if err != nil {
		return err
	}
	re, err := f.pattern(ec, in)
	if err != nil {
		return err
	}
	out.Put(value.NewBytes(types.T_varchar, re.ReplaceAllLiteral(s.Bytes(), repl.Bytes())))
	return nil
}

func regexpFunctions() []function.ScalarFunction {
	likeBase := func(flags bool) regexpBase {
		b := function.NewInputBinding().Covers(types.T_varchar, 0, 1)
		if flags {
			b.Covers(types.T_varchar, 2)
		}
		return regexpBase{Base: function.Base{
			FuncNames: []string{"REGEXP_LIKE"},
			Binding:   b,
			Result:    function.FixedResult(types.T_bool.ToType()),
		}, patternIdx: 1, flagsIdx: 2}
	}
	replaceBase := func(flags bool) regexpBase {
		b := function.NewInputBinding().Covers(types.T_varchar, 0, 1, 2)
		if flags {
			b.Covers(types.T_varchar, 3)
		}
		return regexpBase{Base: function.Base{
			FuncNames: []string{"REGEXP_REPLACE"},
			Binding:   b,
			Result:    function.FixedResult(types.T_varchar.ToType()),
		}, patternIdx: 1, flagsIdx: 3}
	}
	return []function.ScalarFunction{
		&regexpLike{likeBase(false)},
		&regexpLike{likeBase(true)},
		&regexpReplace{replaceBase(false)},
		&regexpReplace{replaceBase(true)},
	}
}
