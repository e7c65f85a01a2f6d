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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"

	"github.com/matrixorigin/scalarcore/pkg/config"
	"github.com/matrixorigin/scalarcore/pkg/logutil"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
	"github.com/matrixorigin/scalarcore/pkg/sql/function/builtin"
	"github.com/matrixorigin/scalarcore/pkg/storage"
)

var cli struct {
	Cfg string `name:"cfg" type:"path" help:"toml configuration, defaults are used when empty"`

	Eval    evalCmd    `cmd:"" help:"Compile and evaluate expressions over input rows"`
	Explain explainCmd `cmd:"" help:"Print compiled expressions and their types"`
	List    listCmd    `cmd:"" help:"List the built-in functions and their overloads"`
	Config  configCmd  `cmd:"" help:"Print the effective configuration"`
}

// env is what every command runs against.
type env struct {
	ctx      context.Context
	params   *config.Parameters
	store    *storage.Store
	compiler *function.Compiler
}

func newEnv(ctx context.Context, cfgFile string) (*env, error) {
	params := config.NewParameters()
	if cfgFile != "" {
		var err error
		if params, err = config.LoadFile(ctx, cfgFile); err != nil {
			return nil, err
		}
	}
	logutil.SetupMOLogger(&params.Log)
	ctx = config.WithParameters(ctx, params)

	store, err := storage.Open(ctx, params.Storage)
	if err != nil {
		return nil, err
	}
	reg, err := builtin.NewRegistry(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	services := &function.Services{
		Sequences: store.Sequences,
		Blobs:     store.Blobs,
		Catalog:   store.Catalog,
		Session:   store.Session,
	}
	return &env{
		ctx:      ctx,
		params:   params,
		store:    store,
		compiler: function.NewCompiler(reg, function.WithServices(services), function.WithParameters(params)),
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		logutil.Errorf("close storage: %v", err)
	}
}

type configCmd struct{}

func (c *configCmd) Run(e *env) error {
	return toml.NewEncoder(os.Stdout).Encode(e.params)
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("fn-eval"),
		kong.Description("Evaluate scalar function expressions."),
		kong.UsageOnError(),
	)
	e, err := newEnv(context.Background(), cli.Cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fn-eval: %v\n", err)
		os.Exit(1)
	}
	err = kctx.Run(e)
	e.Close()
	kctx.FatalIfErrorf(err)
}
