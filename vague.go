// Copyright 2025 The Vague Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vague is the public surface of the language engine (spec §6):
// lex, parse, and generate a dataset from Vague source text, with a
// mutable plugin registry and a per-compile structured warning list.
package vague

import (
	"sync"

	"github.com/mcclowes/vague-sub002/internal/interp"
	"github.com/mcclowes/vague-sub002/internal/registry"
	"github.com/mcclowes/vague-sub002/parser"
	"github.com/mcclowes/vague-sub002/warning"
)

// Record is one generated instance: an insertion-ordered field map.
type Record = interp.Record

// DatasetMap is the result of a successful compile: collection name to
// its ordered sequence of records, in declaration order.
type DatasetMap = map[string][]*Record

// Plugin bundles lexer keyword extensions, statement parsers, and named
// generators (spec §4.8).
type Plugin = registry.Plugin

// GeneratorFunc is a named generator's implementation.
type GeneratorFunc = registry.GeneratorFunc

// Warning is one recorded non-fatal diagnostic (spec §6 warning taxonomy).
type Warning = warning.Warning

// Options configures one Compile call.
type Options struct {
	// Seed determines the RNG stream; nil draws from platform entropy.
	Seed *int64
	// MaxConstraintRetries overrides the default per-instance retry cap
	// (100) for assume-clause satisfaction.
	MaxConstraintRetries int
	// MaxUniqueRetries overrides the default per-field retry cap (100)
	// for unique-value generation.
	MaxUniqueRetries int
}

// Compiler owns the plugin registry (spec §4.8: "process-wide but
// resettable per compilation") and the warning list from its most recent
// Compile call. The zero value is not usable; construct with New.
type Compiler struct {
	reg *registry.Registry

	mu           sync.Mutex
	lastWarnings []Warning
}

// New returns a Compiler pre-loaded with the built-in generator set.
func New() *Compiler {
	return &Compiler{reg: registry.New()}
}

// RegisterPlugin adds a plugin's keywords, statement parsers, and
// generators to the registry. It is not safe to call concurrently with a
// running Compile.
func (c *Compiler) RegisterPlugin(p Plugin) error {
	return c.reg.Register(p)
}

// UnregisterPlugin removes everything a previously registered plugin
// contributed.
func (c *Compiler) UnregisterPlugin(p Plugin) {
	c.reg.Unregister(p)
}

// Warnings returns the structured, non-fatal diagnostics collected during
// the most recent Compile call on this Compiler.
func (c *Compiler) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastWarnings
}

// Compile lexes, parses, and generates source into a DatasetMap (spec §2
// "source → lex → parse → register → generate"). Each call gets its own
// GeneratorContext — its own RNG, schema table, and unique pools — so
// concurrent Compile calls on the same Compiler never interfere with each
// other's generation, but they do share and race-safely update
// lastWarnings, the field Warnings reports from: whichever call's Compile
// finishes last wins that field, so a caller that needs each call's own
// warnings should read the error/warnings off the package-level Compile
// function instead, which builds a fresh Compiler per call. RegisterPlugin
// is still not safe to call concurrently with a running Compile.
func (c *Compiler) Compile(source string, opts Options) (DatasetMap, error) {
	prog, err := parser.ParseWithKeywords("source.vg", []byte(source), c.reg.Keywords(), c.reg.Statements())
	if err != nil {
		return nil, err
	}

	limits := interp.DefaultLimits()
	if opts.MaxConstraintRetries > 0 {
		limits.MaxConstraintRetries = opts.MaxConstraintRetries
	}
	if opts.MaxUniqueRetries > 0 {
		limits.MaxUniqueRetries = opts.MaxUniqueRetries
	}

	ctx := interp.NewContext(c.reg, opts.Seed, limits)
	runErr := interp.Run(ctx, prog)

	c.mu.Lock()
	c.lastWarnings = ctx.Warnings.All()
	c.mu.Unlock()

	if runErr != nil {
		return nil, runErr
	}
	return ctx.Dataset, nil
}

// Compile is a convenience for a one-shot compile against a fresh
// Compiler with only built-in generators: no plugin registration is
// possible afterward since the Compiler isn't returned.
func Compile(source string, opts Options) (DatasetMap, []Warning, error) {
	c := New()
	ds, err := c.Compile(source, opts)
	return ds, c.Warnings(), err
}
