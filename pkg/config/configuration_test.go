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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
)

func TestDefaults(t *testing.T) {
	p := NewParameters()
	require.Equal(t, "info", p.Log.Level)
	require.Equal(t, defaultMaxShortBlobSize, p.Function.MaxShortBlobSize)
	require.Equal(t, "utf8", p.Function.DefaultCharset)
	require.Equal(t, 4, p.Executor.Parallelism)
	require.Equal(t, "test", p.Storage.Schema)
	require.NoError(t, p.Validate(context.Background()))
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fn.toml")
	doc := `
[log]
level = "debug"
format = "json"

[function]
max-short-blob-size = 16
default-charset = "latin1"

[executor]
parallelism = 2

[storage]
schema = "public"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := LoadFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "debug", p.Log.Level)
	require.Equal(t, "json", p.Log.Format)
	require.Equal(t, 16, p.Function.MaxShortBlobSize)
	require.Equal(t, "latin1", p.Function.DefaultCharset)
	require.Equal(t, float64(defaultMaxSleepSeconds), p.Function.MaxSleepSeconds)
	require.Equal(t, 2, p.Executor.Parallelism)
	require.Equal(t, "public", p.Storage.Schema)

	_, err = LoadFile(ctx, filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	_, err := Decode(ctx, "[function]\ndefault-charset = \"ebcdic\"\n")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))

	_, err = Decode(ctx, "[executor]\nparallelism = -1\n")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))

	_, err = Decode(ctx, "[function]\nmax-short-blob-size = -3\n")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}

func TestContextCarriage(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, NewParameters(), GetParameters(ctx))
	p := NewParameters()
	p.Function.MaxPadLength = 10
	require.Same(t, p, GetParameters(WithParameters(ctx, p)))
}
