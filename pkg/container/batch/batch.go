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

package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/container/vector"
)

// Batch represents a part of a relationship
//
//	(Attrs) - list of attributes
//	(Vecs)  - columns
type Batch struct {
	// Attrs column name list
	Attrs []string
	// Vecs col data
	Vecs     []*vector.Vector
	rowCount int
}

func New(attrs []string) *Batch {
	return &Batch{
		Attrs: attrs,
		Vecs:  make([]*vector.Vector, len(attrs)),
	}
}

// NewWithVectors builds a batch over vecs, which must share one length
// apart from const vectors.
func NewWithVectors(ctx context.Context, vecs ...*vector.Vector) (*Batch, error) {
	bat := &Batch{Vecs: vecs, Attrs: make([]string, len(vecs))}
	rows := -1
	for i, vec := range vecs {
		bat.Attrs[i] = fmt.Sprintf("$%d", i+1)
		if vec.IsConst() {
			continue
		}
		if rows >= 0 && vec.Length() != rows {
			return nil, moerr.NewInvalidInput(ctx, "column %d has %d rows, expect %d", i+1, vec.Length(), rows)
		}
		rows = vec.Length()
	}
	if rows < 0 {
		rows = 1
		for _, vec := range vecs {
			if vec.Length() > 0 {
				rows = vec.Length()
				break
			}
		}
	}
	SetLength(bat, rows)
	return bat, nil
}

func SetLength(bat *Batch, n int) {
	for _, vec := range bat.Vecs {
		vec.SetLength(n)
	}
	bat.rowCount = n
}

func (bat *Batch) RowCount() int {
	return bat.rowCount
}

func (bat *Batch) GetVector(pos int32) *vector.Vector {
	return bat.Vecs[pos]
}

// Row returns the values of one row, used by row at a time evaluation.
func (bat *Batch) Row(i int) []value.Value {
	row := make([]value.Value, len(bat.Vecs))
	for j, vec := range bat.Vecs {
		row[j] = vec.GetValue(i)
	}
	return row
}

// Window returns rows [start, end) of bat.
func (bat *Batch) Window(start, end int) *Batch {
	w := &Batch{Attrs: bat.Attrs, Vecs: make([]*vector.Vector, len(bat.Vecs)), rowCount: end - start}
	for i, vec := range bat.Vecs {
		w.Vecs[i] = vec.Window(start, end)
	}
	return w
}

func (bat *Batch) String() string {
	var sb strings.Builder
	for i, vec := range bat.Vecs {
		fmt.Fprintf(&sb, "%s: %s\n", bat.Attrs[i], vec)
	}
	return sb.String()
}
