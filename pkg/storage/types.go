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

	"github.com/google/uuid"

	"github.com/matrixorigin/scalarcore/pkg/container/types"
)

// SequenceService hands out values of named sequences.
type SequenceService interface {
	// NextVal advances the sequence and returns its new value.
	NextVal(ctx context.Context, schema, name string) (int64, error)
	// CurrVal returns the last value handed out, without advancing.
	CurrVal(ctx context.Context, schema, name string) (int64, error)
}

// BlobService keeps the payload of long blobs.
type BlobService interface {
	Put(ctx context.Context, data []byte) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// Catalog looks up schema objects by qualified name.
type Catalog interface {
	Table(ctx context.Context, schema, name string) (*Table, error)
	Sequence(ctx context.Context, schema, name string) (*Sequence, error)
}

// Session is what a function may know about the client session.
type Session interface {
	CurrentSchema() string
}

type Column struct {
	Name string
	Type types.Type
	// Sequence names the sequence generating the column, empty if there is none.
	Sequence string
}

type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

type Sequence struct {
	Schema    string
	Name      string
	Start     int64
	Increment int64
}

// valueOf maps the raw counter of the sequence to its value. A raw 0
// means nothing was handed out yet.
func (s *Sequence) valueOf(raw int64) int64 {
	return s.Start + (raw-1)*s.Increment
}

// BlobRef is the value of a blob. Short blobs carry their bytes, long
// blobs only the id of the payload kept by the BlobService.
type BlobRef struct {
	ID     uuid.UUID
	Size   int
	Long   bool
	Inline []byte
}

// StaticSession is a session whose current schema never changes.
type StaticSession struct {
	Schema string
}

func (s StaticSession) CurrentSchema() string {
	return s.Schema
}
