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
	"testing"

	"github.com/golang/mock/gomock"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/config"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
	"github.com/matrixorigin/scalarcore/pkg/storage"
	"github.com/matrixorigin/scalarcore/pkg/storage/mock_storage"
	"github.com/matrixorigin/scalarcore/pkg/testutil"
)

func newTestStore(t *testing.T) *storage.Store {
	ctx := context.Background()
	store, err := storage.Open(ctx, config.StorageParameters{Schema: "test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func storeServices(store *storage.Store) *function.Services {
	return &function.Services{
		Sequences: store.Sequences,
		Blobs:     store.Blobs,
		Catalog:   store.Catalog,
		Session:   store.Session,
	}
}

func TestSequenceFunctions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Catalog.CreateSequence(ctx, &storage.Sequence{Schema: "test", Name: "s1", Start: 1, Increment: 1}))
	require.NoError(t, store.Catalog.CreateSequence(ctx, &storage.Sequence{Schema: "other", Name: "s2", Start: 100, Increment: -10}))
	c := newTestCompiler(t, function.WithServices(storeServices(store)))
	bigint := types.T_int64.ToType()
	name := func(s string) testutil.FunctionTestInput {
		return testutil.NewFunctionTestConstInput(types.T_varchar.ToType(), []string{s}, nil)
	}

	runCases(t, c, []tcTemp{
		{
			info:   "nextval in the current schema",
			name:   "NEXTVAL",
			inputs: []testutil.FunctionTestInput{name("s1")},
			expect: testutil.NewFunctionTestResult(bigint, false, []int64{1, 2, 3}, nil),
		},
		{
			info:   "currval of a qualified name",
			name:   "CURRVAL",
			inputs: []testutil.FunctionTestInput{name("test.s1")},
			expect: testutil.NewFunctionTestResult(bigint, false, []int64{3, 3}, nil),
		},
		{
			info:   "schema and name",
			name:   "NEXTVAL",
			inputs: []testutil.FunctionTestInput{name("test"), name("s1")},
			expect: testutil.NewFunctionTestResult(bigint, false, []int64{4}, nil),
		},
		{
			info:   "decreasing sequence",
			name:   "nextval",
			inputs: []testutil.FunctionTestInput{name("other.s2")},
			expect: testutil.NewFunctionTestResult(bigint, false, []int64{100, 90}, nil),
		},
		{
			info:   "unknown sequence",
			name:   "NEXTVAL",
			inputs: []testutil.FunctionTestInput{name("nope")},
			expect: testutil.NewFunctionTestResult(bigint, true, nil, nil),
		},
		{
			info:   "current schema",
			name:   "CURRENT_SCHEMA",
			expect: testutil.NewFunctionTestResult(types.T_varchar.ToType(), false, []string{"test"}, nil),
		},
	})

	_, _, err := evalConst(t, c, "NEXTVAL", value.NewString("nope"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchSequence))
	_, _, err = evalConst(t, c, "NEXTVAL", value.NewString("nodb.s1"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadDB))
}

func TestSequenceServices(t *testing.T) {
	Convey("sequence functions call into the services", t, func() {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		seqs := mock_storage.NewMockSequenceService(ctrl)
		session := mock_storage.NewMockSession(ctrl)
		c := newTestCompiler(t, function.WithServices(&function.Services{Sequences: seqs, Session: session}))

		Convey("a bare name is looked up in the session schema", func() {
			session.EXPECT().CurrentSchema().Return("db1").Times(1)
			seqs.EXPECT().NextVal(gomock.Any(), "db1", "s").Return(int64(9), nil).Times(1)
			v, _, err := evalConst(t, c, "NEXTVAL", value.NewString("s"))
			So(err, ShouldBeNil)
			So(v.Int64(), ShouldEqual, 9)
		})

		Convey("errors of the service are returned", func() {
			seqs.EXPECT().CurrVal(gomock.Any(), "db2", "s").Return(int64(0), moerr.NewInvalidInput(ctx, "sequence is used up")).Times(1)
			_, _, err := evalConst(t, c, "CURRVAL", value.NewString("db2"), value.NewString("s"))
			So(moerr.IsMoErrCode(err, moerr.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("a NULL name gives NULL without a call", func() {
			expr, err := c.Call(ctx, "NEXTVAL", function.NewColumn(0, types.T_varchar.ToType().WithNullable(true)))
			So(err, ShouldBeNil)
			stmt := function.NewStatement(expr)
			defer stmt.Close()
			exec, err := stmt.NewExecution(ctx)
			So(err, ShouldBeNil)
			defer exec.Close()
			vals, err := exec.EvalRow([]value.Value{value.Null()})
			So(err, ShouldBeNil)
			So(vals[0].IsNull(), ShouldBeTrue)
		})
	})
}

func TestSequenceWithoutService(t *testing.T) {
	c := newTestCompiler(t)
	_, _, err := evalConst(t, c, "NEXTVAL", value.NewString("a"), value.NewString("b"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
}

func TestSerialSequence(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Catalog.CreateTable(ctx, &storage.Table{
		Schema: "test",
		Name:   "t1",
		Columns: []storage.Column{
			{Name: "id", Type: types.T_int64.ToType(), Sequence: "t1_id_seq"},
			{Name: "name", Type: types.T_varchar.ToType()},
		},
	}))
	c := newTestCompiler(t, function.WithServices(storeServices(store)))

	v, _, err := evalConst(t, c, "PG_GET_SERIAL_SEQUENCE", value.NewString("t1"), value.NewString("id"))
	require.NoError(t, err)
	require.Equal(t, "test.t1_id_seq", v.String())

	v, _, err = evalConst(t, c, "PG_GET_SERIAL_SEQUENCE", value.NewString("test.t1"), value.NewString("name"))
	require.NoError(t, err)
	require.True(t, v.IsNull())

	_, _, err = evalConst(t, c, "PG_GET_SERIAL_SEQUENCE", value.NewString("t1"), value.NewString("nope"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadFieldError))

	_, _, err = evalConst(t, c, "PG_GET_SERIAL_SEQUENCE", value.NewString("t2"), value.NewString("id"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchTable))

	for _, args := range [][2]string{{"", "id"}, {"t1", ""}, {"test.", "id"}, {".t1", "id"}} {
		_, _, err = evalConst(t, c, "PG_GET_SERIAL_SEQUENCE", value.NewString(args[0]), value.NewString(args[1]))
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput), "%v", args)
	}
}

func TestSerialSequenceMockCatalog(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	catalog := mock_storage.NewMockCatalog(ctrl)
	catalog.EXPECT().Table(gomock.Any(), "s", "t").Return(&storage.Table{
		Schema:  "s",
		Name:    "t",
		Columns: []storage.Column{{Name: "c", Sequence: "q"}},
	}, nil).Times(2)
	c := newTestCompiler(t, function.WithServices(&function.Services{Catalog: catalog}))

	for i := 0; i < 2; i++ {
		v, _, err := evalConst(t, c, "PG_GET_SERIAL_SEQUENCE", value.NewString("s.t"), value.NewString("c"))
		require.NoError(t, err)
		require.Equal(t, "s.q", v.String())
	}
}

func TestCurrentSchemaFollowsSession(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	session := mock_storage.NewMockSession(ctrl)
	c := newTestCompiler(t, function.WithServices(&function.Services{Session: session}))

	expr, err := c.Call(ctx, "CURRENT_SCHEMA")
	require.NoError(t, err)
	_, ok := expr.(*function.Call)
	require.True(t, ok)

	stmt := function.NewStatement(expr)
	defer stmt.Close()
	gomock.InOrder(
		session.EXPECT().CurrentSchema().Return("db1"),
		session.EXPECT().CurrentSchema().Return("db2"),
	)
	for _, want := range []string{"db1", "db2"} {
		exec, err := stmt.NewExecution(ctx)
		require.NoError(t, err)
		vals, err := exec.EvalRow(nil)
		require.NoError(t, err)
		require.Equal(t, want, vals[0].String())
		exec.Close()
	}
}
