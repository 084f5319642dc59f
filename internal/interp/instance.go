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
	"github.com/mcclowes/vague-sub002/token"
	"github.com/mcclowes/vague-sub002/warning"
)

// generateInstance produces one record for schemaName, delegated to by
// ReferenceType and CollectionType field generation (spec §4.5) with no
// field overrides and the ordinary (non-`violating`) constraint sense.
func generateInstance(ctx *Context, schemaName string) (*Record, error) {
	return generateInstanceIn(ctx, schemaName, nil, false)
}

// generateInstanceIn is the top-level instance generator of spec §4.6,
// used directly by the dataset driver for a collection's schema (with any
// field overrides and the dataset's violating/satisfying constraint
// sense) and recursively by genType for nested references/collections.
func generateInstanceIn(ctx *Context, schemaName string, overrides []*ast.FieldDefinition, violating bool) (*Record, error) {
	schema, ok := ctx.Schemas[schemaName]
	if !ok {
		return nil, fatal(verrors.UnknownSchemaReference(token.NoPos, schemaName))
	}
	fields := effectiveFields(ctx, schema, overrides)

	var last *Record
	attempts := 0
	for attempts < ctx.Limits.MaxConstraintRetries {
		attempts++
		rec := NewRecord(schemaName)
		ctx.pushRecord(rec)
		ctx.pushUniqueStaging()

		ok, err := generateOneAttempt(ctx, schema, fields, violating, rec)
		if err != nil {
			ctx.discardUniqueStaging()
			ctx.popRecord()
			return nil, err
		}
		last = rec
		if ok {
			applyRefine(ctx, schema, rec)
			ctx.commitUniqueStaging()
			ctx.popRecord()
			return rec, nil
		}
		ctx.discardUniqueStaging()
		ctx.popRecord()
	}
	mode := warning.ModeSatisfying
	if violating {
		mode = warning.ModeViolating
	}
	ctx.Warnings.ConstraintRetryLimit(schemaName, attempts, mode)
	return last, nil
}

// generateOneAttempt runs one full field-generation + constraint-check
// cycle for rec, which is already pushed as ctx.Current().
func generateOneAttempt(ctx *Context, schema *ast.SchemaDefinition, fields []*ast.FieldDefinition, violating bool, rec *Record) (bool, error) {
	for _, fd := range fields {
		if fd.Computed {
			continue
		}
		v, present, err := generateField(ctx, schema.Name, fd)
		if err != nil {
			return false, err
		}
		if present {
			rec.Set(fd.Name, v)
		}
	}
	order, err := computedOrder(schema.Name, fields)
	if err != nil {
		return false, err
	}
	for _, fd := range order {
		prevField := ctx.currentField
		ctx.currentField = fd.Name
		v, err := evalExpr(ctx, fd.ComputedExpr)
		ctx.currentField = prevField
		if err != nil {
			return false, err
		}
		rec.Set(fd.Name, v)
	}
	passed, err := evalAssumes(ctx, schema, violating)
	if err != nil {
		ctx.Warnings.ConstraintEvaluationError(err.Error())
		return false, nil
	}
	return passed, nil
}

// evalAssumes checks every AssumeClause (spec §4.6 step 2.e): in a
// satisfying instance every triggered constraint must be true; in a
// violating one at least one triggered constraint must be false. A
// schema with no assume clauses (or none whose `if` guard fired) always
// passes — there is nothing to violate.
func evalAssumes(ctx *Context, schema *ast.SchemaDefinition, violating bool) (bool, error) {
	var results []bool
	for _, ac := range schema.Assumes {
		if ac.Condition != nil {
			cond, err := evalExpr(ctx, ac.Condition)
			if err != nil {
				return false, err
			}
			if !truthy(cond) {
				continue
			}
		}
		for _, ce := range ac.Constraints {
			v, err := evalExpr(ctx, ce)
			if err != nil {
				return false, err
			}
			results = append(results, truthy(v))
		}
	}
	if len(results) == 0 {
		return true, nil
	}
	anyFalse := false
	for _, r := range results {
		if !r {
			anyFalse = true
			break
		}
	}
	if violating {
		return anyFalse, nil
	}
	return !anyFalse, nil
}

// effectiveFields resolves the field list of spec §4.6 step 1: the
// schema's own fields, with any collection-level overrides substituted in
// declaration order, flagging the schema's own field names that are absent
// from an imported base as UnknownFieldInBase.
func effectiveFields(ctx *Context, schema *ast.SchemaDefinition, overrides []*ast.FieldDefinition) []*ast.FieldDefinition {
	byName := map[string]*ast.FieldDefinition{}
	order := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		byName[f.Name] = f
		order = append(order, f.Name)
	}
	var imported *ImportedSchema
	if schema.Base != nil {
		imported = ctx.Imports[schema.Base.String()]
	}
	if imported != nil {
		known := map[string]bool{}
		for _, n := range imported.Fields {
			known[n] = true
		}
		for _, f := range schema.Fields {
			if !known[f.Name] {
				ctx.Warnings.UnknownFieldInBase(schema.Name, f.Name, imported.Name)
			}
		}
	}
	for _, ov := range overrides {
		if _, ok := byName[ov.Name]; !ok {
			order = append(order, ov.Name)
		}
		byName[ov.Name] = ov
	}
	fields := make([]*ast.FieldDefinition, len(order))
	for i, name := range order {
		fields[i] = byName[name]
	}
	return fields
}

// applyRefine generates any refine-block fields (spec §4.6 step 2.f),
// each independently gated on its own `when` condition.
func applyRefine(ctx *Context, schema *ast.SchemaDefinition, rec *Record) {
	if schema.Refine == nil {
		return
	}
	for _, fd := range schema.Refine.Fields {
		v, present, err := generateField(ctx, schema.Name, fd)
		if err != nil || !present {
			continue
		}
		rec.Set(fd.Name, v)
	}
}

// applyThen runs a schema's `then` mutations against rec after it has
// joined its collection (spec §4.6 "then block").
func applyThen(ctx *Context, schema *ast.SchemaDefinition, rec *Record) {
	if schema.Then == nil {
		return
	}
	ctx.pushRecord(rec)
	defer ctx.popRecord()
	for _, m := range schema.Then.Mutations {
		applyMutation(ctx, schema.Name, m)
	}
}

func applyMutation(ctx *Context, schemaName string, m *ast.Mutation) {
	rec, name, ok := mutationTarget(ctx, m.Target)
	if !ok {
		ctx.Warnings.MutationTargetNotFound(schemaName)
		return
	}
	val, err := evalExpr(ctx, m.Value)
	if err != nil {
		ctx.Warnings.MutationTargetNotFound(schemaName)
		return
	}
	if m.Op == token.ADDASG {
		existing, _ := rec.Get(name)
		sum, err := arith(token.ADD, existing, val, m.Position)
		if err != nil {
			ctx.Warnings.MutationTargetNotFound(schemaName)
			return
		}
		val = sum
	}
	rec.Set(name, val)
}

// mutationTarget resolves a mutation's target to the record it should
// write into and the field name on that record. A bare identifier or
// qualified name writes into the record owning the `then` block
// (ctx.Current()); a ParentReference (`^field`, spec's cross-record
// rollup mutation) writes into the perParent ancestor instead, walking
// any path prefix as nested-record projections before the final field.
func mutationTarget(ctx *Context, e ast.Expr) (*Record, string, bool) {
	switch v := e.(type) {
	case *ast.Identifier:
		cur := ctx.Current()
		return cur, v.Name, cur != nil
	case *ast.QualifiedNameExpr:
		cur := ctx.Current()
		return cur, v.Parts[len(v.Parts)-1], cur != nil
	case *ast.ParentReference:
		rec := ctx.Parent()
		if rec == nil || len(v.Path) == 0 {
			return nil, "", false
		}
		for _, part := range v.Path[:len(v.Path)-1] {
			next, ok := rec.Get(part)
			if !ok {
				return nil, "", false
			}
			nested, ok := next.(*Record)
			if !ok {
				return nil, "", false
			}
			rec = nested
		}
		return rec, v.Path[len(v.Path)-1], true
	}
	return nil, "", false
}
