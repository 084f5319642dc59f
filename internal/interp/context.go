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

package interp

import (
	"github.com/mcclowes/vague-sub002/ast"
	verrors "github.com/mcclowes/vague-sub002/errors"
	"github.com/mcclowes/vague-sub002/internal/registry"
	"github.com/mcclowes/vague-sub002/internal/rng"
	"github.com/mcclowes/vague-sub002/warning"
)

// ImportedSchema is the opaque shape an external OpenAPI/base-schema
// loader hands the core for a SchemaDefinition's `from` reference (spec
// §6 "Non-core interfaces"): a flat field-name set. The instance generator
// checks the schema's own field names against it and warns on names it
// lacks; the imported fields are not added to generated records.
type ImportedSchema struct {
	Name   string
	Fields []string
}

// Limits bounds the retry loops the field and instance generators run.
type Limits struct {
	MaxConstraintRetries int
	MaxUniqueRetries     int
}

// DefaultLimits matches the spec's stated defaults (100 attempts each).
func DefaultLimits() Limits {
	return Limits{MaxConstraintRetries: 100, MaxUniqueRetries: 100}
}

// Context is the GeneratorContext of spec §3: every piece of mutable
// state one compile call owns. A Context is created fresh per compile and
// never shared across compiles (spec §5).
type Context struct {
	Schemas       map[string]*ast.SchemaDefinition
	Contexts      map[string]*ast.ContextDefinition
	Distributions map[string]*ast.DistributionDefinition
	Imports       map[string]*ImportedSchema
	Lets          map[string]Value

	Registry *registry.Registry
	RNG      *rng.Source
	Limits   Limits
	Warnings *warning.Collector

	// Dataset is the collection map under construction; populated
	// incrementally by the dataset driver.
	Dataset map[string][]*Record

	// scope stack: current record, then each enclosing perParent ancestor.
	parentStack []*Record

	// lastByCollection backs previous(field) (spec §4.4 Sequence builtins).
	lastByCollection map[string]*Record

	// currentCollection is the name of the collection presently being
	// filled by the dataset driver, consulted by previous().
	currentCollection string

	// currentField is the name of the field whose type/computed expression
	// is presently being evaluated, consulted by evalSequence so a
	// sequence's counter is keyed per (schema, field, prefix) rather than
	// shared by every field that happens to pass the same prefix literal.
	currentField string

	pool *uniquePool
	seqs *sequenceCounters

	// uniqueStaging buffers unique-field claims per in-flight constraint-
	// retry attempt; see pushUniqueStaging.
	uniqueStaging [][]uniqueClaim
}

// uniqueClaim is one field's candidate value, staged until its owning
// attempt is accepted.
type uniqueClaim struct {
	schema, field string
	value         Value
}

// pushUniqueStaging opens a new staging frame for a constraint-retry
// attempt about to run. Every enforceUnique call during that attempt
// stages its claim into this frame instead of recording it into the pool
// directly, so a discarded attempt never leaves a value occupying a slot
// it never actually used (spec's "constraint-retry attempts do not
// commit intermediate state" invariant).
func (c *Context) pushUniqueStaging() {
	c.uniqueStaging = append(c.uniqueStaging, nil)
}

// stageUnique records a candidate unique value against the top staging
// frame, to be committed or discarded with the attempt it belongs to.
func (c *Context) stageUnique(schema, field string, v Value) {
	top := len(c.uniqueStaging) - 1
	c.uniqueStaging[top] = append(c.uniqueStaging[top], uniqueClaim{schema, field, v})
}

// commitUniqueStaging records every claim in the top staging frame into
// the unique pool and pops the frame, for an attempt that was accepted.
func (c *Context) commitUniqueStaging() {
	top := len(c.uniqueStaging) - 1
	for _, claim := range c.uniqueStaging[top] {
		c.pool.Record(claim.schema, claim.field, claim.value)
	}
	c.uniqueStaging = c.uniqueStaging[:top]
}

// discardUniqueStaging drops the top staging frame without recording
// anything, for an attempt that failed its assume clauses or errored.
func (c *Context) discardUniqueStaging() {
	c.uniqueStaging = c.uniqueStaging[:len(c.uniqueStaging)-1]
}

// NewContext builds an empty Context ready for pass 1 (schema/let
// registration).
func NewContext(reg *registry.Registry, seed *int64, limits Limits) *Context {
	return &Context{
		Schemas:          map[string]*ast.SchemaDefinition{},
		Contexts:         map[string]*ast.ContextDefinition{},
		Distributions:    map[string]*ast.DistributionDefinition{},
		Imports:          map[string]*ImportedSchema{},
		Lets:             map[string]Value{},
		Registry:         reg,
		RNG:              rng.New(seed),
		Limits:           limits,
		Warnings:         &warning.Collector{},
		Dataset:          map[string][]*Record{},
		lastByCollection: map[string]*Record{},
		pool:             newUniquePool(),
		seqs:             newSequenceCounters(),
	}
}

// Current returns the record presently under construction, or nil at the
// top level.
func (c *Context) Current() *Record {
	if len(c.parentStack) == 0 {
		return nil
	}
	return c.parentStack[len(c.parentStack)-1]
}

// Parent returns the perParent ancestor one level up from Current, or nil.
func (c *Context) Parent() *Record {
	if len(c.parentStack) < 2 {
		return nil
	}
	return c.parentStack[len(c.parentStack)-2]
}

// pushRecord/popRecord maintain the ancestor stack while the instance
// generator is building a record (and its nested CollectionType/
// ReferenceType children).
func (c *Context) pushRecord(r *Record) { c.parentStack = append(c.parentStack, r) }
func (c *Context) popRecord()           { c.parentStack = c.parentStack[:len(c.parentStack)-1] }

// LastIn returns the previous record appended to collection, or nil if
// this is the first (or no) record.
func (c *Context) LastIn(collection string) *Record {
	return c.lastByCollection[collection]
}

func (c *Context) setLastIn(collection string, r *Record) {
	c.lastByCollection[collection] = r
}

// fatal wraps a *verrors.Error as a Go error so eval/fieldgen/instance
// code can return it through ordinary error-returning signatures instead
// of panicking across package APIs.
func fatal(err *verrors.Error) error { return err }
