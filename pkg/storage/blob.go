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
	"io"

	"github.com/google/uuid"
	"github.com/pierrec/lz4"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
)

var blobPrefix = []byte("blob/")

// Blobs keeps lz4 compressed blob payloads in the kv store.
type Blobs struct {
	kv *KV
}

func NewBlobs(kv *KV) *Blobs {
	return &Blobs{kv: kv}
}

func blobKey(id uuid.UUID) []byte {
	return append(append([]byte(nil), blobPrefix...), id[:]...)
}

func (b *Blobs) Put(ctx context.Context, data []byte) (uuid.UUID, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return uuid.Nil, moerr.ConvertGoError(ctx, err)
	}
	if err := zw.Close(); err != nil {
		return uuid.Nil, moerr.ConvertGoError(ctx, err)
	}
	id := uuid.New()
	if err := b.kv.Set(blobKey(id), buf.Bytes()); err != nil {
		return uuid.Nil, moerr.ConvertGoError(ctx, err)
	}
	return id, nil
}

func (b *Blobs) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	v, err := b.kv.Get(blobKey(id))
	if err != nil {
		return nil, moerr.ConvertGoError(ctx, err)
	}
	if v == nil {
		return nil, moerr.NewInvalidInput(ctx, "blob %s not found", id)
	}
	data, err := io.ReadAll(lz4.NewReader(bytes.NewReader(v)))
	if err != nil {
		return nil, moerr.ConvertGoError(ctx, err)
	}
	return data, nil
}

// Count returns the number of payloads kept.
func (b *Blobs) Count() (int, error) {
	n := 0
	err := b.kv.Scan(blobPrefix, func(_, _ []byte) bool {
		n++
		return true
	})
	return n, err
}
