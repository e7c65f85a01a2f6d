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
	"github.com/google/uuid"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
	"github.com/matrixorigin/scalarcore/pkg/storage"
)

// createBlob wraps bytes into a blob. A short blob keeps the bytes in
// the value and is limited in size, a long blob is handed to the blob
// service.
type createBlob struct {
	function.Base
	long bool
}

func (f *createBlob) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	data := v.Bytes()
	ref := &storage.BlobRef{Size: len(data), Long: f.long}
	if !f.long {
		if limit := ec.Parameters().Function.MaxShortBlobSize; len(data) > limit {
			return moerr.NewLobTooLarge(ec.Context(), len(data), limit, "short blob")
		}
		ref.ID = uuid.New()
		ref.Inline = append([]byte(nil), data...)
		out.Put(value.NewObject(types.T_blob, ref))
		return nil
	}
	blobs := ec.Services().Blobs
	if blobs == nil {
		return moerr.NewInternalError(ec.Context(), "no blob service")
	}
	if ref.ID, err = blobs.Put(ec.Context(), data); err != nil {
		return err
	}
	out.Put(value.NewObject(types.T_blob, ref))
	return nil
}

func blobRef(ec *function.ExecutionContext, v value.Value) (*storage.BlobRef, error) {
	ref, ok := v.Object().(*storage.BlobRef)
	if !ok {
		return nil, moerr.NewInternalError(ec.Context(), "blob value holds %T", v.Object())
	}
	return ref, nil
}

type unwrapBlob struct {
	function.Base
}

func (f *unwrapBlob) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	ref, err := blobRef(ec, v)
	if err != nil {
		return err
	}
	if !ref.Long {
		out.Put(value.NewBytes(types.T_varbinary, ref.Inline))
		return nil
	}
	blobs := ec.Services().Blobs
	if blobs == nil {
		return moerr.NewInternalError(ec.Context(), "no blob service")
	}
	data, err := blobs.Get(ec.Context(), ref.ID)
	if err != nil {
		return err
	}
	out.Put(value.NewBytes(types.T_varbinary, data))
	return nil
}

type blobSize struct {
	function.Base
}

func (f *blobSize) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	ref, err := blobRef(ec, v)
	if err != nil {
		return err
	}
	out.Put(value.NewInt64(int64(ref.Size)))
	return nil
}

func blobFunctions() []function.ScalarFunction {
	bytesInput := function.NewInputBinding().Covers(types.T_varbinary, 0)
	blobInput := function.NewInputBinding().Covers(types.T_blob, 0)
	return []function.ScalarFunction{
		&createBlob{Base: function.Base{
			FuncNames: []string{"CREATE_SHORT_BLOB"},
			Binding:   bytesInput,
			Result:    function.FixedResult(types.T_blob.ToType()),
			Volatile:  true,
		}},
		&createBlob{Base: function.Base{
			FuncNames: []string{"CREATE_LONG_BLOB"},
			Binding:   bytesInput,
			Result:    function.FixedResult(types.T_blob.ToType()),
			Volatile:  true,
		}, long: true},
		&unwrapBlob{function.Base{
			FuncNames: []string{"UNWRAP_BLOB"},
			Binding:   blobInput,
			Result:    function.FixedResult(types.T_varbinary.ToType()),
		}},
		&blobSize{function.Base{
			FuncNames: []string{"BLOB_SIZE"},
			Binding:   blobInput,
			Result:    function.FixedResult(types.T_int64.ToType()),
		}},
	}
}
