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

// Package registry implements the plugin/generator registry (spec §4.8):
// lexer keyword extensions, statement-parser callbacks, and named
// generator functions looked up by GeneratorType and by bare-identifier
// fallback (spec §4.4 Identifier resolution, step (e)).
package registry

import (
	"fmt"

	"github.com/mcclowes/vague-sub002/internal/rng"
	"github.com/mcclowes/vague-sub002/parser"
	"github.com/mcclowes/vague-sub002/token"
)

// GeneratorFunc produces one value for a GeneratorType or no-arg identifier
// fallback. fieldName is the name of the field being generated, passed so
// a generator like "email" can derive locality from sibling context; args
// are the already-evaluated call arguments.
type GeneratorFunc func(r *rng.Source, fieldName string, args []any) (any, error)

// Plugin bundles a named generator table with optional grammar extensions.
// A plugin that only contributes generators leaves Keywords and Statements
// nil.
type Plugin struct {
	Name       string
	Keywords   map[string]token.Token
	Statements map[token.Token]parser.StatementParser
	Generators map[string]GeneratorFunc
}

// Registry is the read-only-during-compilation generator/grammar table
// (spec §4.8, §5 "single-threaded and cooperative"). It is built once by
// registering plugins, then shared by value (via pointer) across however
// many independent compile calls use it; Register is not safe to call
// concurrently with a running compile.
type Registry struct {
	keywords   map[string]token.Token
	statements map[token.Token]parser.StatementParser
	generators map[string]GeneratorFunc
}

// New returns a registry pre-loaded with the built-in generator set
// (spec §7 builtins: uuid, faker.*, lorem.*, dates.*, strings.* case
// conversion).
func New() *Registry {
	reg := &Registry{
		keywords:   map[string]token.Token{},
		statements: map[token.Token]parser.StatementParser{},
		generators: map[string]GeneratorFunc{},
	}
	for name, fn := range builtinGenerators() {
		reg.generators[name] = fn
	}
	return reg
}

// Register merges a plugin's keywords, statement parsers, and generators
// into the registry. A keyword that would shadow a builtin token or a
// generator name that collides with an already-registered one is an
// error; everything else is additive.
func (reg *Registry) Register(p Plugin) error {
	for word, tok := range p.Keywords {
		if token.Lookup(word) != token.IDENT {
			return fmt.Errorf("registry: plugin %q: keyword %q shadows a built-in keyword", p.Name, word)
		}
		if existing, ok := reg.keywords[word]; ok && existing != tok {
			return fmt.Errorf("registry: plugin %q: keyword %q already bound", p.Name, word)
		}
		reg.keywords[word] = tok
	}
	for tok, sp := range p.Statements {
		if _, ok := reg.statements[tok]; ok {
			return fmt.Errorf("registry: plugin %q: statement parser for %s already registered", p.Name, tok)
		}
		reg.statements[tok] = sp
	}
	for name, fn := range p.Generators {
		if _, ok := reg.generators[name]; ok {
			return fmt.Errorf("registry: plugin %q: generator %q already registered", p.Name, name)
		}
		reg.generators[name] = fn
	}
	return nil
}

// Unregister drops every keyword, statement parser, and generator a
// plugin contributed, by name equality with what New/Register recorded.
func (reg *Registry) Unregister(p Plugin) {
	for word := range p.Keywords {
		delete(reg.keywords, word)
	}
	for tok := range p.Statements {
		delete(reg.statements, tok)
	}
	for name := range p.Generators {
		delete(reg.generators, name)
	}
}

// Keywords returns the dynamic keyword table, for wiring into a
// scanner via scanner.SetKeyword before lexing begins.
func (reg *Registry) Keywords() map[string]token.Token { return reg.keywords }

// Statements returns the plugin statement-parser table, for passing to
// parser.Parse.
func (reg *Registry) Statements() map[token.Token]parser.StatementParser { return reg.statements }

// Lookup returns the named generator function, or ok=false if no plugin
// or builtin registered that name.
func (reg *Registry) Lookup(name string) (GeneratorFunc, bool) {
	fn, ok := reg.generators[name]
	return fn, ok
}

// Names reports every registered generator name, sorted is not
// guaranteed; callers that need stable order should sort themselves.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.generators))
	for name := range reg.generators {
		names = append(names, name)
	}
	return names
}
