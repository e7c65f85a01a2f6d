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
	"context"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/logutil"
)

// KV is the key value store behind sequences and long blobs.
type KV struct {
	db *pebble.DB
}

// OpenKV opens the store in dir, or in memory when dir is empty.
func OpenKV(ctx context.Context, dir string) (*KV, error) {
	opts := &pebble.Options{}
	if dir == "" {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, moerr.ConvertGoError(ctx, err)
	}
	logutil.Debugf("kv store opened at '%s'", dir)
	return &KV{db: db}, nil
}

func (kv *KV) Close() error {
	return kv.db.Close()
}

// Get returns a copy of the value of k, nil if k is missing.
func (kv *KV) Get(k []byte) ([]byte, error) {
	v, c, err := kv.db.Get(k)
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r := make([]byte, len(v))
	copy(r, v)
	c.Close()
	return r, nil
}

func (kv *KV) Set(k, v []byte) error {
	return kv.db.Set(k, v, pebble.Sync)
}

func (kv *KV) Del(k []byte) error {
	return kv.db.Delete(k, pebble.Sync)
}

// Scan calls fn with every pair whose key starts with prefix, in key
// order, until fn returns false.
func (kv *KV) Scan(prefix []byte, fn func(k, v []byte) bool) error {
	itr := kv.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	for itr.First(); itr.Valid(); itr.Next() {
		if !fn(itr.Key(), itr.Value()) {
			break
		}
	}
	return itr.Close()
}

func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
