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

package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/config"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
)

func newTestStore(t *testing.T) *Store {
	s, err := Open(context.Background(), config.StorageParameters{Schema: "test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestKV(t *testing.T) {
	s := newTestStore(t)
	v, err := s.KV.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, v)

	for _, k := range []string{"p/1", "p/2", "q/1"} {
		require.NoError(t, s.KV.Set([]byte(k), []byte(k)))
	}
	var keys []string
	require.NoError(t, s.KV.Scan([]byte("p/"), func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	}))
	require.Equal(t, []string{"p/1", "p/2"}, keys)

	require.NoError(t, s.KV.Del([]byte("p/1")))
	v, err = s.KV.Get([]byte("p/1"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.Equal(t, []byte("p0"), upperBound([]byte("p/")))
	require.Equal(t, []byte{1}, upperBound([]byte{0, 0xff}))
	require.Nil(t, upperBound([]byte{0xff}))
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	c := NewMemCatalog()
	t1 := &Table{Schema: "test", Name: "t1", Columns: []Column{
		{Name: "id", Type: types.T_int64.ToType(), Sequence: "t1_id_seq"},
		{Name: "name", Type: types.T_varchar.ToType()},
	}}
	require.NoError(t, c.CreateTable(ctx, t1))
	require.NoError(t, c.CreateTable(ctx, &Table{Schema: "test", Name: "t0"}))
	require.NoError(t, c.CreateTable(ctx, &Table{Schema: "other", Name: "t1"}))
	err := c.CreateTable(ctx, &Table{Schema: "test", Name: "t1"})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	tbl, err := c.Table(ctx, "test", "t1")
	require.NoError(t, err)
	require.Same(t, t1, tbl)
	col, ok := tbl.Column("id")
	require.True(t, ok)
	require.Equal(t, "t1_id_seq", col.Sequence)
	_, ok = tbl.Column("nope")
	require.False(t, ok)

	_, err = c.Table(ctx, "test", "t2")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchTable))

	tables := c.Tables("test")
	require.Equal(t, 2, len(tables))
	require.Equal(t, "t0", tables[0].Name)
	require.Equal(t, "t1", tables[1].Name)

	// a sequence does not shadow a table of the same name
	require.NoError(t, c.CreateSequence(ctx, &Sequence{Schema: "test", Name: "t1", Start: 1, Increment: 1}))
	_, err = c.Sequence(ctx, "test", "t0")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchSequence))
	err = c.CreateSequence(ctx, &Sequence{Schema: "test", Name: "bad"})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	// lookups in a schema nobody created
	_, err = c.Table(ctx, "nodb", "t1")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadDB))
	_, err = c.Sequence(ctx, "nodb", "t1")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadDB))
	require.True(t, moerr.IsMoErrCode(c.CreateSchema(ctx, ""), moerr.ErrInvalidInput))
	require.NoError(t, c.CreateSchema(ctx, "nodb"))
	_, err = c.Table(ctx, "nodb", "t1")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchTable))
}

func TestSequences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Catalog.CreateSequence(ctx, &Sequence{Schema: "test", Name: "s1", Start: 10, Increment: 5}))
	require.NoError(t, s.Catalog.CreateSequence(ctx, &Sequence{Schema: "test", Name: "s2", Start: 1, Increment: 1}))

	v, err := s.Sequences.CurrVal(ctx, "test", "s1")
	require.NoError(t, err)
	require.Equal(t, int64(5), v)

	for _, expected := range []int64{10, 15, 20} {
		v, err = s.Sequences.NextVal(ctx, "test", "s1")
		require.NoError(t, err)
		require.Equal(t, expected, v)
	}
	v, err = s.Sequences.CurrVal(ctx, "test", "s1")
	require.NoError(t, err)
	require.Equal(t, int64(20), v)

	v, err = s.Sequences.NextVal(ctx, "test", "s2")
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	_, err = s.Sequences.NextVal(ctx, "test", "s3")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchSequence))
	_, err = s.Sequences.NextVal(ctx, "nodb", "s1")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadDB))
}

func TestBlobs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	data := bytes.Repeat([]byte("matrixone "), 1000)
	id, err := s.Blobs.Put(ctx, data)
	require.NoError(t, err)
	got, err := s.Blobs.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, data, got)

	raw, err := s.KV.Get(blobKey(id))
	require.NoError(t, err)
	require.Less(t, len(raw), len(data))

	_, err = s.Blobs.Put(ctx, []byte("x"))
	require.NoError(t, err)

	n, err := s.Blobs.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = s.Blobs.Get(ctx, uuid.New())
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	require.Equal(t, "test", s.Session.CurrentSchema())
}
