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
	"errors"

	"go.uber.org/zap"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/config"
	"github.com/matrixorigin/scalarcore/pkg/logutil"
	"github.com/matrixorigin/scalarcore/pkg/storage"
)

// State is the lifecycle position of a call site or an execution.
type State uint8

const (
	Uninitialized State = iota
	Prepared
	Executing
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Prepared:
		return "prepared"
	case Executing:
		return "executing"
	}
	return "disposed"
}

// Services are the collaborators some functions call into.
type Services struct {
	Sequences storage.SequenceService
	Blobs     storage.BlobService
	Catalog   storage.Catalog
	Session   storage.Session
}

type environment struct {
	services *Services
	params   *config.Parameters
}

// ExecutionContext is the view one call site has of the current
// preparation or execution. Slots are indexed by small integers private
// to each function.
//
// Prepare-time slots are written while the call site is prepared and are
// read-only afterwards. Every execution reads its own copy of them.
// Execute-time slots live as long as the execution and are never seen by
// another execution.
type ExecutionContext struct {
	ctx  context.Context
	call *Call
	// nil while the call site is prepared
	exec      *Execution
	prep      []any
	exectime  []any
	inputsBuf lazyInputs
}

// Context carries the cancellation of the running statement.
func (ec *ExecutionContext) Context() context.Context {
	return ec.ctx
}

// State is the state of the call site while preparing, of the execution otherwise.
func (ec *ExecutionContext) State() State {
	if ec.exec == nil {
		return ec.call.state
	}
	return ec.exec.state
}

func (ec *ExecutionContext) CallID() uint32 {
	return ec.call.id
}

func (ec *ExecutionContext) Services() *Services {
	return ec.call.env.services
}

func (ec *ExecutionContext) Parameters() *config.Parameters {
	return ec.call.env.params
}

// SetPreptimeObject stores v in a prepare-time slot.
func (ec *ExecutionContext) SetPreptimeObject(slot int, v any) error {
	if ec.exec != nil || ec.call.state != Uninitialized {
		return moerr.NewInvalidState(ec.ctx, "prepare-time slot %d of %s written while %s", slot, ec.call.name, ec.State())
	}
	ec.call.prep = growSlots(ec.call.prep, slot)
	ec.call.prep[slot] = v
	ec.prep = ec.call.prep
	return nil
}

func (ec *ExecutionContext) PreptimeObject(slot int) any {
	if slot < len(ec.prep) {
		return ec.prep[slot]
	}
	return nil
}

// SetExectimeObject stores v in an execute-time slot, replacing what was there.
func (ec *ExecutionContext) SetExectimeObject(slot int, v any) error {
	if ec.exec == nil || ec.exec.state != Executing {
		return moerr.NewInvalidState(ec.ctx, "execute-time slot %d of %s written while %s", slot, ec.call.name, ec.State())
	}
	ec.exectime = growSlots(ec.exectime, slot)
	ec.exectime[slot] = v
	return nil
}

func (ec *ExecutionContext) ExectimeObject(slot int) any {
	if slot < len(ec.exectime) {
		return ec.exectime[slot]
	}
	return nil
}

// Warn reports a warning to the client without failing the statement.
func (ec *ExecutionContext) Warn(w *moerr.Error) {
	if ec.exec == nil {
		logutil.DebugCtx(ec.ctx, "warning while preparing", zap.String("function", ec.call.name), zap.Error(w))
		return
	}
	ec.exec.warn(ec.call, w)
}

func growSlots(slots []any, slot int) []any {
	for len(slots) <= slot {
		slots = append(slots, nil)
	}
	return slots
}

// PreptimeSlot returns the prepare-time object of slot if it has type T.
func PreptimeSlot[T any](ec *ExecutionContext, slot int) (T, bool) {
	v, ok := ec.PreptimeObject(slot).(T)
	return v, ok
}

// ExectimeSlot returns the execute-time object of slot if it has type T.
func ExectimeSlot[T any](ec *ExecutionContext, slot int) (T, bool) {
	v, ok := ec.ExectimeObject(slot).(T)
	return v, ok
}

// InterruptError converts the error of a finished context. A cancelled
// query is reported as interrupted, anything else is internal.
func InterruptError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return moerr.NewQueryInterrupted(ctx)
	}
	return moerr.NewInternalError(ctx, "blocking call interrupted: %v", err)
}
