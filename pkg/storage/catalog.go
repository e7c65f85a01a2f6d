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
	"sync"

	"github.com/google/btree"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
)

type objectKind uint8

const (
	tableObject objectKind = iota
	sequenceObject
)

type catalogNode struct {
	kind   objectKind
	schema string
	name   string
	table  *Table
	seq    *Sequence
}

func (n *catalogNode) Less(item btree.Item) bool {
	o := item.(*catalogNode)
	if n.kind != o.kind {
		return n.kind < o.kind
	}
	if n.schema != o.schema {
		return n.schema < o.schema
	}
	return n.name < o.name
}

// MemCatalog is a Catalog kept in memory, ordered by schema and name.
type MemCatalog struct {
	mu      sync.RWMutex
	tree    *btree.BTree
	schemas map[string]struct{}
}

func NewMemCatalog() *MemCatalog {
	return &MemCatalog{tree: btree.New(8), schemas: make(map[string]struct{})}
}

// CreateSchema adds an empty schema. Creating objects adds their schema too.
func (c *MemCatalog) CreateSchema(ctx context.Context, schema string) error {
	if schema == "" {
		return moerr.NewInvalidInput(ctx, "empty schema name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[schema] = struct{}{}
	return nil
}

func (c *MemCatalog) CreateTable(ctx context.Context, t *Table) error {
	return c.insert(ctx, &catalogNode{kind: tableObject, schema: t.Schema, name: t.Name, table: t})
}

func (c *MemCatalog) CreateSequence(ctx context.Context, s *Sequence) error {
	if s.Increment == 0 {
		return moerr.NewInvalidArg(ctx, "sequence increment", 0)
	}
	return c.insert(ctx, &catalogNode{kind: sequenceObject, schema: s.Schema, name: s.Name, seq: s})
}

func (c *MemCatalog) insert(ctx context.Context, n *catalogNode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree.Has(n) {
		return moerr.NewInvalidInput(ctx, "'%s.%s' already exists", n.schema, n.name)
	}
	c.tree.ReplaceOrInsert(n)
	c.schemas[n.schema] = struct{}{}
	return nil
}

// get looks name up in schema, which must exist.
func (c *MemCatalog) get(ctx context.Context, kind objectKind, schema, name string) (*catalogNode, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.schemas[schema]; !ok {
		return nil, moerr.NewBadDB(ctx, schema)
	}
	if item := c.tree.Get(&catalogNode{kind: kind, schema: schema, name: name}); item != nil {
		return item.(*catalogNode), nil
	}
	return nil, nil
}

func (c *MemCatalog) Table(ctx context.Context, schema, name string) (*Table, error) {
	n, err := c.get(ctx, tableObject, schema, name)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, moerr.NewNoSuchTable(ctx, schema, name)
	}
	return n.table, nil
}

func (c *MemCatalog) Sequence(ctx context.Context, schema, name string) (*Sequence, error) {
	n, err := c.get(ctx, sequenceObject, schema, name)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, moerr.NewNoSuchSequence(ctx, schema, name)
	}
	return n.seq, nil
}

// Tables lists the tables of schema ordered by name.
func (c *MemCatalog) Tables(schema string) []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var res []*Table
	c.tree.AscendGreaterOrEqual(&catalogNode{kind: tableObject, schema: schema}, func(item btree.Item) bool {
		n := item.(*catalogNode)
		if n.kind != tableObject || n.schema != schema {
			return false
		}
		res = append(res, n.table)
		return true
	})
	return res
}
