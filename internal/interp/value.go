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

// Package interp is the AST → dataset generator: expression evaluator,
// field generator, instance generator, and dataset driver (spec §4.4-4.7).
package interp

import "github.com/cockroachdb/apd/v3"

// Value is the untyped sum a Vague expression evaluates to: nil, bool,
// int64, float64, *apd.Decimal (exact decimal arithmetic for "decimal"
// fields), string, []any (an ordered sequence), *Record, or *Reference.
type Value = any

// Record is an insertion-ordered field map, matching the declared field
// order of its schema (spec's "Record — insertion-ordered mapping").
type Record struct {
	Schema string
	order  []string
	fields map[string]Value
}

// NewRecord returns an empty record for the named schema.
func NewRecord(schema string) *Record {
	return &Record{Schema: schema, fields: map[string]Value{}}
}

// Set assigns a field, appending it to the declared order the first time
// it is set.
func (r *Record) Set(name string, v Value) {
	if _, ok := r.fields[name]; !ok {
		r.order = append(r.order, name)
	}
	r.fields[name] = v
}

// Get returns a field's value and whether it is present.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Has reports whether a field has been set.
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Fields returns field names in declaration/insertion order.
func (r *Record) Fields() []string {
	return append([]string(nil), r.order...)
}

// Reference is a handle to another record, produced by `any of`.
type Reference struct {
	Collection string
	Index      int
	Record     *Record
}

// decimalOf coerces a numeric Value into *apd.Decimal for range/arithmetic
// on "decimal"-typed fields; apd.Decimal is the pack's arbitrary-precision
// decimal type (cockroachdb/apd), used here instead of plain float64 for
// RangeType(base="decimal") sampling and arithmetic on decimal values.
// round/floor/ceil and the aggregates work on float64.
func decimalOf(v Value) (*apd.Decimal, bool) {
	switch n := v.(type) {
	case *apd.Decimal:
		return n, true
	case int64:
		return apd.New(n, 0), true
	case float64:
		d, _, err := apd.NewFromString(formatFloat(n))
		if err != nil {
			return nil, false
		}
		return d, true
	}
	return nil, false
}
