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
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

// hexString is HEX over strings. A varchar is encoded in its charset first.
type hexString struct {
	function.Base
}

func hexResult(_ *function.ExecutionContext, inputs []function.PreptimeValue) (types.Type, error) {
	in := inputs[0].Type
	width := int64(math.Ceil(float64(in.Width)*in.Charset.MaxBytesPerChar())) * 2
	if width > types.MaxVarcharLen {
		width = types.MaxVarcharLen
	}
	return types.NewString(types.T_varchar, int32(width), types.CharsetASCII).WithNullable(in.Nullable), nil
}

func (f *hexString) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	b := v.Bytes()
	if typ := in.Type(0); typ.Oid == types.T_varchar {
		if b, err = typ.Charset.Encode(string(b)); err != nil {
			out.PutNullWithWarning(moerr.NewWarnInvalidArgForFunction(ec.Context(), string(v.Bytes()), "hex"))
			return nil
		}
	}
	out.Put(value.NewString(strings.ToUpper(hex.EncodeToString(b))))
	return nil
}

// hexInt is HEX over integers, negative numbers are shown as unsigned.
type hexInt struct {
	function.Base
}

func (f *hexInt) Evaluate(_ *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	out.Put(value.NewString(strings.ToUpper(strconv.FormatUint(uint64(v.Int64()), 16))))
	return nil
}

// unhex decodes pairs of hex digits. Malformed input gives a warning and NULL.
type unhex struct {
	function.Base
}

func unhexResult(ec *function.ExecutionContext, inputs []function.PreptimeValue) (types.Type, error) {
	width := (int64(inputs[0].Type.Width) + 1) / 2
	if limit := int64(ec.Parameters().Function.PlatformMaxLength); width > limit {
		width = limit
	}
	return types.NewString(types.T_varbinary, int32(width), types.CharsetBinary).WithNullable(true), nil
}

func (f *unhex) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	s := string(v.Bytes())
	digits := s
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		out.PutNullWithWarning(moerr.NewWarnInvalidHex(ec.Context(), s, "unhex"))
		return nil
	}
	out.Put(value.NewBytes(types.T_varbinary, b))
	return nil
}

func hexFunctions() []function.ScalarFunction {
	return []function.ScalarFunction{
		&hexString{function.Base{
			FuncNames: []string{"HEX"},
			Binding:   function.NewInputBinding().Covers(types.T_varchar, 0),
			Result:    function.CustomResult(hexResult),
		}},
		&hexString{function.Base{
			FuncNames: []string{"HEX"},
			Binding:   function.NewInputBinding().Covers(types.T_varbinary, 0),
			Result:    function.CustomResult(hexResult),
		}},
		&hexInt{function.Base{
			FuncNames: []string{"HEX"},
			Binding:   function.NewInputBinding().Covers(types.T_int64, 0),
			Result:    function.FixedResult(types.NewString(types.T_varchar, 16, types.CharsetASCII)),
		}},
		&unhex{function.Base{
			FuncNames: []string{"UNHEX"},
			Binding:   function.NewInputBinding().Covers(types.T_varchar, 0),
			Result:    function.CustomResult(unhexResult),
		}},
	}
}
