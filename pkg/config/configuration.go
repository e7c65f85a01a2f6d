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

package config

import (
	"context"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/logutil"
)

type ConfigurationKeyType int

const (
	ParameterUnitKey ConfigurationKeyType = 1
)

const (
	defaultMaxShortBlobSize  = 65535
	defaultMaxSleepSeconds   = 3600
	defaultCharset           = "utf8"
	defaultMaxPadLength      = 16 * 1024 * 1024
	defaultPlatformMaxLength = 65535
	defaultParallelism       = 4
	defaultSchema            = "test"
)

// FunctionParameters tunes the built-in scalar functions.
type FunctionParameters struct {
	//default is 65535. CREATE_SHORT_BLOB fails with lob too large above it.
	MaxShortBlobSize int `toml:"max-short-blob-size"`

	//default is 3600. the largest delay SLEEP accepts, in seconds.
	MaxSleepSeconds float64 `toml:"max-sleep-seconds"`

	//default is utf8. charset of string literals.
	DefaultCharset string `toml:"default-charset"`

	//default is 16M. LPAD/RPAD return NULL for a longer target length.
	MaxPadLength int64 `toml:"max-pad-length"`

	//default is 65535. upper bound of VARBINARY lengths computed by result types.
	PlatformMaxLength int32 `toml:"platform-max-length"`
}

// ExecutorParameters tunes statement executions.
type ExecutorParameters struct {
	//default is 4. the size of the pool running executions of one statement in parallel.
	Parallelism int `toml:"parallelism"`
}

// StorageParameters configures the services functions call into.
type StorageParameters struct {
	//default is ''. keep the kv store in memory when empty.
	Dir string `toml:"dir"`

	//default is 'test'. the current schema of a new session.
	Schema string `toml:"schema"`
}

// Parameters is the whole configuration file.
type Parameters struct {
	Log      logutil.LogConfig  `toml:"log"`
	Function FunctionParameters `toml:"function"`
	Executor ExecutorParameters `toml:"executor"`
	Storage  StorageParameters  `toml:"storage"`
}

// NewParameters returns parameters filled with default values.
func NewParameters() *Parameters {
	p := &Parameters{}
	p.SetDefaultValues()
	return p
}

// SetDefaultValues fills every unset field.
func (p *Parameters) SetDefaultValues() {
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
	if p.Log.Format == "" {
		p.Log.Format = "console"
	}
	if p.Function.MaxShortBlobSize == 0 {
		p.Function.MaxShortBlobSize = defaultMaxShortBlobSize
	}
	if p.Function.MaxSleepSeconds == 0 {
		p.Function.MaxSleepSeconds = defaultMaxSleepSeconds
	}
	if p.Function.DefaultCharset == "" {
		p.Function.DefaultCharset = defaultCharset
	}
	if p.Function.MaxPadLength == 0 {
		p.Function.MaxPadLength = defaultMaxPadLength
	}
	if p.Function.PlatformMaxLength == 0 {
		p.Function.PlatformMaxLength = defaultPlatformMaxLength
	}
	if p.Executor.Parallelism == 0 {
		p.Executor.Parallelism = defaultParallelism
	}
	if p.Storage.Schema == "" {
		p.Storage.Schema = defaultSchema
	}
}

// Validate rejects values no component can work with.
func (p *Parameters) Validate(ctx context.Context) error {
	if p.Function.MaxShortBlobSize < 0 {
		return moerr.NewBadConfig(ctx, "max-short-blob-size %d is negative", p.Function.MaxShortBlobSize)
	}
	if p.Function.MaxSleepSeconds < 0 {
		return moerr.NewBadConfig(ctx, "max-sleep-seconds %v is negative", p.Function.MaxSleepSeconds)
	}
	if p.Function.MaxPadLength < 0 {
		return moerr.NewBadConfig(ctx, "max-pad-length %d is negative", p.Function.MaxPadLength)
	}
	if p.Function.PlatformMaxLength <= 0 {
		return moerr.NewBadConfig(ctx, "platform-max-length %d must be positive", p.Function.PlatformMaxLength)
	}
	switch p.Function.DefaultCharset {
	case "utf8", "utf8mb4", "latin1", "ascii", "utf16":
	default:
		return moerr.NewBadConfig(ctx, "unknown default-charset %s", p.Function.DefaultCharset)
	}
	if p.Executor.Parallelism < 1 {
		return moerr.NewBadConfig(ctx, "executor parallelism %d must be positive", p.Executor.Parallelism)
	}
	return nil
}

// LoadFile decodes a toml file, fills defaults and validates the result.
func LoadFile(ctx context.Context, path string) (*Parameters, error) {
	p := &Parameters{}
	if _, err := toml.DecodeFile(path, p); err != nil {
		return nil, moerr.NewBadConfig(ctx, "decode %s: %v", path, err)
	}
	p.SetDefaultValues()
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Decode is LoadFile over an in-memory document.
func Decode(ctx context.Context, data string) (*Parameters, error) {
	p := &Parameters{}
	if _, err := toml.Decode(data, p); err != nil {
		return nil, moerr.NewBadConfig(ctx, "decode: %v", err)
	}
	p.SetDefaultValues()
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// WithParameters stores p in ctx.
func WithParameters(ctx context.Context, p *Parameters) context.Context {
	return context.WithValue(ctx, ParameterUnitKey, p)
}

// GetParameters gets the configuration from the context, falling back to defaults.
func GetParameters(ctx context.Context) *Parameters {
	if p, ok := ctx.Value(ParameterUnitKey).(*Parameters); ok && p != nil {
		return p
	}
	return NewParameters()
}
