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
	"encoding/binary"
	"sync"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
)

var sequencePrefix = []byte("seq/")

// Sequences keeps the raw counter of every sequence in the kv store.
type Sequences struct {
	mu      sync.Mutex
	kv      *KV
	catalog Catalog
}

func NewSequences(kv *KV, catalog Catalog) *Sequences {
	return &Sequences{kv: kv, catalog: catalog}
}

func sequenceKey(s *Sequence) []byte {
	k := append([]byte(nil), sequencePrefix...)
	k = append(k, s.Schema...)
	k = append(k, 0)
	return append(k, s.Name...)
}

func (s *Sequences) raw(ctx context.Context, seq *Sequence) (int64, error) {
	v, err := s.kv.Get(sequenceKey(seq))
	if err != nil {
		return 0, moerr.ConvertGoError(ctx, err)
	}
	if v == nil {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, moerr.NewInternalError(ctx, "bad counter of sequence %s.%s", seq.Schema, seq.Name)
	}
	return int64(binary.BigEndian.Uint64(v)), nil
}

func (s *Sequences) NextVal(ctx context.Context, schema, name string) (int64, error) {
	seq, err := s.catalog.Sequence(ctx, schema, name)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.raw(ctx, seq)
	if err != nil {
		return 0, err
	}
	raw++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(raw))
	if err = s.kv.Set(sequenceKey(seq), buf[:]); err != nil {
		return 0, moerr.ConvertGoError(ctx, err)
	}
	return seq.valueOf(raw), nil
}

func (s *Sequences) CurrVal(ctx context.Context, schema, name string) (int64, error) {
	seq, err := s.catalog.Sequence(ctx, schema, name)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.raw(ctx, seq)
	if err != nil {
		return 0, err
	}
	return seq.valueOf(raw), nil
}
