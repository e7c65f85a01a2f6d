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
	"bytes"
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/config"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
	"github.com/matrixorigin/scalarcore/pkg/storage"
	"github.com/matrixorigin/scalarcore/pkg/storage/mock_storage"
)

// roundTrip compiles fn(CREATE_xxx_BLOB($1)) and evaluates it over data.
func roundTrip(t *testing.T, c *function.Compiler, create, fn string, data []byte) (value.Value, error) {
	ctx := context.Background()
	blob, err := c.Call(ctx, create, function.NewColumn(0, types.T_varbinary.ToType()))
	require.NoError(t, err)
	expr, err := c.Call(ctx, fn, blob)
	require.NoError(t, err)
	stmt := function.NewStatement(expr)
	defer stmt.Close()
	exec, err := stmt.NewExecution(ctx)
	require.NoError(t, err)
	defer exec.Close()
	vals, err := exec.EvalRow([]value.Value{value.NewBytes(types.T_varbinary, data)})
	if err != nil {
		return value.Null(), err
	}
	return vals[0], nil
}

func TestShortBlob(t *testing.T) {
	params := config.NewParameters()
	params.Function.MaxShortBlobSize = 8
	c := newTestCompiler(t, function.WithParameters(params))

	v, err := roundTrip(t, c, "CREATE_SHORT_BLOB", "UNWRAP_BLOB", []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), v.Bytes())

	v, err = roundTrip(t, c, "CREATE_SHORT_BLOB", "BLOB_SIZE", []byte("12345678"))
	require.NoError(t, err)
	require.Equal(t, int64(8), v.Int64())

	_, err = roundTrip(t, c, "CREATE_SHORT_BLOB", "BLOB_SIZE", []byte("123456789"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrLobTooLarge))
}

func TestShortBlobValue(t *testing.T) {
	c := newTestCompiler(t)
	v, _, err := evalConst(t, c, "CREATE_SHORT_BLOB", value.NewBytes(types.T_varbinary, []byte("xy")))
	require.NoError(t, err)
	require.Equal(t, types.T_blob, v.Oid())
	ref, ok := v.Object().(*storage.BlobRef)
	require.True(t, ok)
	require.False(t, ref.Long)
	require.NotEqual(t, uuid.Nil, ref.ID)
	require.Equal(t, 2, ref.Size)
}

func TestLongBlob(t *testing.T) {
	store := newTestStore(t)
	c := newTestCompiler(t, function.WithServices(storeServices(store)))
	data := bytes.Repeat([]byte("matrix"), 100000)

	v, err := roundTrip(t, c, "CREATE_LONG_BLOB", "UNWRAP_BLOB", data)
	require.NoError(t, err)
	require.Equal(t, data, v.Bytes())

	v, err = roundTrip(t, c, "CREATE_LONG_BLOB", "BLOB_SIZE", data)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), v.Int64())

	n, err := store.Blobs.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestLongBlobService(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	blobs := mock_storage.NewMockBlobService(ctrl)
	c := newTestCompiler(t, function.WithServices(&function.Services{Blobs: blobs}))

	id := uuid.New()
	blobs.EXPECT().Put(gomock.Any(), []byte("abc")).Return(id, nil).Times(1)
	blobs.EXPECT().Get(gomock.Any(), id).Return([]byte("abc"), nil).Times(1)
	v, err := roundTrip(t, c, "CREATE_LONG_BLOB", "UNWRAP_BLOB", []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), v.Bytes())

	blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return(uuid.Nil, moerr.NewInternalError(ctx, "disk full")).Times(1)
	_, err = roundTrip(t, c, "CREATE_LONG_BLOB", "BLOB_SIZE", []byte("abc"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
}
