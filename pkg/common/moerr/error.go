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

package moerr

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
)

const MySQLDefaultSqlState = "HY000"

const (
	// 0 - 99 is OK.  They do not contain info, and are special handled
	// using a static instance, no alloc.
	Ok    uint16 = 0
	OkMax uint16 = 99

	// 200 - 299 is WARNING
	ErrWarn uint16 = 200
	// Malformed hex literal, reported as a warning and the value becomes NULL.
	ErrWarnInvalidHex uint16 = 201
	// Argument outside of a function's mathematical domain.
	ErrWarnInvalidArgForFunction uint16 = 202
	ErrWarnMax                   uint16 = 299

	// Group 1: Internal errors
	ErrStart            uint16 = 20100
	ErrInternal         uint16 = 20101
	ErrNYI              uint16 = 20102
	ErrQueryInterrupted uint16 = 20104
	ErrNotSupported     uint16 = 20105

	// Group 2: numeric and functions
	ErrOutOfRange  uint16 = 20201
	ErrInvalidArg  uint16 = 20203
	ErrLobTooLarge uint16 = 20204

	// Group 3: invalid input
	ErrBadConfig     uint16 = 20300
	ErrInvalidInput  uint16 = 20301
	ErrParseError    uint16 = 20303
	ErrBadFieldError uint16 = 20309

	// Group 4: unexpected state or catalog lookups
	ErrInvalidState          uint16 = 20400
	ErrBadDB                 uint16 = 20402
	ErrNoSuchTable           uint16 = 20403
	ErrFunctionAlreadyExists uint16 = 20441
	ErrNoSuchSequence        uint16 = 20444
	ErrUnexpectedEOF         uint16 = 20445

	// ErrEnd, the max value of MOErrorCode
	ErrEnd uint16 = 65535
)

type moErrorMsgItem struct {
	mysqlCode        uint16
	sqlStates        []string
	errorMsgOrFormat string
}

var errorMsgRefer = map[uint16]moErrorMsgItem{
	// OK code not in this table.  They do not have a mysql code, as
	// they are OK -- should not leak back to client.

	// Warn
	ErrWarn:                      {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "warning: %s"},
	ErrWarnInvalidHex:            {ER_WRONG_VALUE_FOR_TYPE, []string{MySQLDefaultSqlState}, "warning: invalid hex value '%s' for function %s"},
	ErrWarnInvalidArgForFunction: {ER_INVALID_ARGUMENT_FOR_LOGARITHM, []string{"2201E"}, "warning: invalid argument %s for function %s"},

	// Group 1: Internal errors
	ErrStart:            {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "internal error: error code start"},
	ErrInternal:         {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "internal error: %s"},
	ErrNYI:              {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "%s is not yet implemented"},
	ErrQueryInterrupted: {ER_QUERY_INTERRUPTED, []string{"70100"}, "query interrupted"},
	ErrNotSupported:     {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "not supported: %s"},

	// Group 2: numeric
	ErrOutOfRange:  {ER_DATA_OUT_OF_RANGE, []string{"22003"}, "data out of range: data type %s, %s"},
	ErrInvalidArg:  {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "invalid argument %s, bad value %s"},
	ErrLobTooLarge: {ER_TOO_BIG_FIELDLENGTH, []string{"22001"}, "lob too large: size %d exceeds the maximum %d of %s"},

	// Group 3: invalid input
	ErrBadConfig:     {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "invalid configuration: %s"},
	ErrInvalidInput:  {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "invalid input: %s"},
	ErrParseError:    {ER_PARSE_ERROR, []string{"42000"}, "SQL parser error: %s"},
	ErrBadFieldError: {ER_BAD_FIELD_ERROR, []string{"42S22"}, "Unknown column '%s' in '%s'"},

	// Group 4: unexpected state or catalog lookups
	ErrInvalidState:          {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "invalid state %s"},
	ErrBadDB:                 {ER_BAD_DB_ERROR, []string{"42000"}, "invalid database %s"},
	ErrNoSuchTable:           {ER_NO_SUCH_TABLE, []string{"42S02"}, "no such table %s.%s"},
	ErrFunctionAlreadyExists: {ER_UDF_ALREADY_EXISTS, []string{MySQLDefaultSqlState}, "function %s already exists"},
	ErrNoSuchSequence:        {ER_NO_SUCH_TABLE, []string{"42S02"}, "no such sequence %s.%s"},
	ErrUnexpectedEOF:         {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "unexpected end of file %s"},

	// Group End: max value of MOErrorCode
	ErrEnd: {ER_UNKNOWN_ERROR, []string{MySQLDefaultSqlState}, "internal error: end of errcode code"},
}

func newError(ctx context.Context, code uint16, args ...any) *Error {
	var err *Error
	item, has := errorMsgRefer[code]
	if !has {
		panic(NewInternalError(ctx, "not exist MOErrorCode: %d", code))
	}
	if len(args) == 0 {
		err = &Error{
			code:      code,
			mysqlCode: item.mysqlCode,
			message:   item.errorMsgOrFormat,
			sqlState:  item.sqlStates[0],
		}
	} else {
		err = &Error{
			code:      code,
			mysqlCode: item.mysqlCode,
			message:   fmt.Sprintf(item.errorMsgOrFormat, args...),
			sqlState:  item.sqlStates[0],
		}
	}
	if ctx != nil {
		if d, ok := ctx.Value(detailKey{}).(string); ok {
			err.detail = d
		}
	}
	return err
}

type detailKey struct{}

// AttachDetail returns a context whose errors carry detail as their Detail().
func AttachDetail(ctx context.Context, detail string) context.Context {
	return context.WithValue(ctx, detailKey{}, detail)
}

type Error struct {
	code      uint16
	mysqlCode uint16
	message   string
	sqlState  string
	detail    string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Detail() string {
	return e.detail
}

func (e *Error) Display() string {
	if len(e.detail) == 0 {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.detail)
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func (e *Error) MySQLCode() uint16 {
	return e.mysqlCode
}

func (e *Error) SqlState() string {
	return e.sqlState
}

func IsMoErrCode(e error, rc uint16) bool {
	if e == nil {
		return rc == Ok
	}

	me, ok := e.(*Error)
	if !ok {
		// This is not a moerr
		return false
	}
	return me.code == rc
}

func DowncastError(e error) *Error {
	if err, ok := e.(*Error); ok {
		return err
	}
	return newError(Context(), ErrInternal, fmt.Sprintf("downcast error failed: %v", e))
}

// ConvertPanicError converts a runtime panic to internal error.
func ConvertPanicError(ctx context.Context, v interface{}) *Error {
	if e, ok := v.(*Error); ok {
		return e
	}
	return newError(ctx, ErrInternal, fmt.Sprintf("panic %v: %s", v, callers(3)))
}

// ConvertGoError converts a go error into mo error.
// Note here we must return error, because nil error
// is the same as nil *Error -- Go strangeness.
func ConvertGoError(ctx context.Context, err error) error {
	// nil is nil
	if err == nil {
		return err
	}

	// already a moerr, return it as is
	if _, ok := err.(*Error); ok {
		return err
	}

	// Convert a few well known os/go error.
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// if io.EOF reaches here, we believe it is not expected.
		return NewUnexpectedEOF(ctx, err.Error())
	}

	return NewInternalError(ctx, "convert go error to mo error %v", err)
}

// IsWarning reports whether e only carries a client visible warning.
func (e *Error) IsWarning() bool {
	return e.code >= ErrWarn && e.code <= ErrWarnMax
}

func callers(skip int) string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "\n\t%s:%d", f.File, f.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

func NewWarn(ctx context.Context, msg string) *Error {
	return newError(ctx, ErrWarn, msg)
}

func NewWarnInvalidHex(ctx context.Context, val string, fn string) *Error {
	return newError(ctx, ErrWarnInvalidHex, val, fn)
}

func NewWarnInvalidArgForFunction(ctx context.Context, val any, fn string) *Error {
	return newError(ctx, ErrWarnInvalidArgForFunction, fmt.Sprintf("%v", val), fn)
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInternal, xmsg)
}

func NewNYI(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrNYI, xmsg)
}

func NewNotSupported(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrNotSupported, xmsg)
}

func NewQueryInterrupted(ctx context.Context) *Error {
	return newError(ctx, ErrQueryInterrupted)
}

func NewOutOfRange(ctx context.Context, typ string, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrOutOfRange, typ, xmsg)
}

func NewInvalidArg(ctx context.Context, arg string, val any) *Error {
	return newError(ctx, ErrInvalidArg, arg, fmt.Sprintf("%v", val))
}

func NewLobTooLarge(ctx context.Context, size int, limit int, kind string) *Error {
	return newError(ctx, ErrLobTooLarge, size, limit, kind)
}

func NewBadConfig(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrBadConfig, xmsg)
}

func NewInvalidInput(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidInput, xmsg)
}

func NewParseError(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrParseError, xmsg)
}

// NewNoSuchColumn reports a column missing from schema.table.
func NewNoSuchColumn(ctx context.Context, schema, table, column string) *Error {
	return newError(ctx, ErrBadFieldError, column, schema+"."+table)
}

func NewInvalidState(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidState, xmsg)
}

func NewBadDB(ctx context.Context, name string) *Error {
	return newError(ctx, ErrBadDB, name)
}

func NewNoSuchTable(ctx context.Context, db, tbl string) *Error {
	return newError(ctx, ErrNoSuchTable, db, tbl)
}

func NewNoSuchSequence(ctx context.Context, db, tbl string) *Error {
	return newError(ctx, ErrNoSuchSequence, db, tbl)
}

func NewFunctionAlreadyExists(ctx context.Context, name string) *Error {
	return newError(ctx, ErrFunctionAlreadyExists, name)
}

func NewUnexpectedEOF(ctx context.Context, f string) *Error {
	return newError(ctx, ErrUnexpectedEOF, f)
}

var contextFunc = func() context.Context { return context.Background() }

// Context returns the default context used where no caller context exists.
func Context() context.Context {
	return contextFunc()
}
