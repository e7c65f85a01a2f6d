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

package function

import (
	"context"
	"strings"

	"github.com/matrixorigin/scalarcore/pkg/container/types"
)

// Normalizer reconciles the type chosen for the picking group after the
// type registry unified it. inputs are the argument types before casting.
type Normalizer func(ctx context.Context, picked types.Type, inputs []types.Type) (types.Type, error)

// InputSet is the requirement shared by a group of argument positions.
type InputSet struct {
	// Oid is the required class of a fixed set.
	Oid types.T
	// Picking sets take the type the registry unifies for the whole group.
	Picking bool
}

func (s *InputSet) String() string {
	if s.Picking {
		return "picking"
	}
	return s.Oid.String()
}

// InputBinding describes the argument shape of a function. It is built
// once when the function is registered and never modified afterwards.
type InputBinding struct {
	positional []*InputSet
	tail       *InputSet
	minTail    int
	normalizer Normalizer
	picking    *InputSet
}

// NewInputBinding starts an empty binding, which accepts no argument.
func NewInputBinding() *InputBinding {
	return &InputBinding{}
}

func (b *InputBinding) at(pos int) {
	for len(b.positional) <= pos {
		b.positional = append(b.positional, nil)
	}
}

func (b *InputBinding) pickingSet() *InputSet {
	if b.picking == nil {
		b.picking = &InputSet{Picking: true}
	}
	return b.picking
}

// Covers requires class oid at positions.
func (b *InputBinding) Covers(oid types.T, positions ...int) *InputBinding {
	set := &InputSet{Oid: oid}
	for _, pos := range positions {
		b.at(pos)
		b.positional[pos] = set
	}
	return b
}

// PickingCovers puts positions into the picking group.
func (b *InputBinding) PickingCovers(positions ...int) *InputBinding {
	set := b.pickingSet()
	for _, pos := range positions {
		b.at(pos)
		b.positional[pos] = set
	}
	return b
}

// Vararg adds an open ended tail of class oid after the positional inputs.
func (b *InputBinding) Vararg(oid types.T, minCount int) *InputBinding {
	b.tail = &InputSet{Oid: oid}
	b.minTail = minCount
	return b
}

// PickingVararg adds an open ended tail belonging to the picking group.
func (b *InputBinding) PickingVararg(minCount int) *InputBinding {
	b.tail = b.pickingSet()
	b.minTail = minCount
	return b
}

// WithNormalizer installs the normalizer of the picking group.
func (b *InputBinding) WithNormalizer(fn Normalizer) *InputBinding {
	b.normalizer = fn
	return b
}

func (b *InputBinding) Normalizer() Normalizer {
	return b.normalizer
}

// PositionalInputs is the number of inputs before the vararg tail.
func (b *InputBinding) PositionalInputs() int {
	return len(b.positional)
}

func (b *InputBinding) IsVararg() bool {
	return b.tail != nil
}

// MinArity is the least number of arguments a call may pass.
func (b *InputBinding) MinArity() int {
	return len(b.positional) + b.minTail
}

func (b *InputBinding) AcceptsArity(n int) bool {
	if b.tail == nil {
		return n == len(b.positional)
	}
	return n >= b.MinArity()
}

// InputSetAt returns the requirement of argument i, nil when i is out of the binding.
func (b *InputBinding) InputSetAt(i int) *InputSet {
	if i < len(b.positional) {
		return b.positional[i]
	}
	return b.tail
}

// HasPicking reports whether some position takes the unified type.
func (b *InputBinding) HasPicking() bool {
	return b.picking != nil
}

// PickingPositions lists the picking positions of a call with n arguments.
func (b *InputBinding) PickingPositions(n int) []int {
	var res []int
	for i := 0; i < n; i++ {
		if set := b.InputSetAt(i); set != nil && set.Picking {
			res = append(res, i)
		}
	}
	return res
}

func (b *InputBinding) String() string {
	parts := make([]string, 0, len(b.positional)+1)
	for _, set := range b.positional {
		if set == nil {
			parts = append(parts, "?")
			continue
		}
		parts = append(parts, set.String())
	}
	if b.tail != nil {
		parts = append(parts, b.tail.String()+"...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
