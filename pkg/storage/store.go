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

	"github.com/matrixorigin/scalarcore/pkg/config"
)

// Store bundles the reference implementations of every service.
type Store struct {
	KV        *KV
	Catalog   *MemCatalog
	Sequences *Sequences
	Blobs     *Blobs
	Session   StaticSession
}

func Open(ctx context.Context, params config.StorageParameters) (*Store, error) {
	kv, err := OpenKV(ctx, params.Dir)
	if err != nil {
		return nil, err
	}
	catalog := NewMemCatalog()
	if params.Schema != "" {
		if err = catalog.CreateSchema(ctx, params.Schema); err != nil {
			_ = kv.Close()
			return nil, err
		}
	}
	return &Store{
		KV:        kv,
		Catalog:   catalog,
		Sequences: NewSequences(kv, catalog),
		Blobs:     NewBlobs(kv),
		Session:   StaticSession{Schema: params.Schema},
	}, nil
}

func (s *Store) Close() error {
	return s.KV.Close()
}
