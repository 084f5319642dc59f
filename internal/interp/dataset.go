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
)

func unknownSchemaInCollection(coll *ast.CollectionDefinition) *verrors.Error {
	return verrors.UnknownSchemaReference(coll.Position, coll.Schema.String())
}

// runDataset drives one DatasetDefinition's collections in declared
// order (spec §4.7). Each record is fully generated, including its
// schema's `then` mutations, before the next one begins (spec §5's
// per-record ordering guarantee) — so, unlike the collection-closing
// wording in §4.7's first read, `then` runs immediately on attach rather
// than batched at the end.
func runDataset(ctx *Context, ds *ast.DatasetDefinition) error {
	for _, coll := range ds.Collections {
		if err := runCollection(ctx, ds, coll); err != nil {
			return err
		}
	}
	return nil
}

func runCollection(ctx *Context, ds *ast.DatasetDefinition, coll *ast.CollectionDefinition) error {
	ctx.currentCollection = coll.Name
	schemaName := coll.Schema.String()
	schema, ok := ctx.Schemas[schemaName]
	if !ok {
		return fatal(unknownSchemaInCollection(coll))
	}

	if coll.PerParent == "" {
		n, err := resolveCardinality(ctx, coll)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := emitOne(ctx, ds, coll, schema); err != nil {
				return err
			}
		}
		return nil
	}

	parents := append([]*Record(nil), ctx.Dataset[coll.PerParent]...)
	for _, parent := range parents {
		ctx.pushRecord(parent)
		n, err := resolveCardinality(ctx, coll)
		if err != nil {
			ctx.popRecord()
			return err
		}
		for i := 0; i < n; i++ {
			if err := emitOne(ctx, ds, coll, schema); err != nil {
				ctx.popRecord()
				return err
			}
		}
		ctx.popRecord()
	}
	return nil
}

func emitOne(ctx *Context, ds *ast.DatasetDefinition, coll *ast.CollectionDefinition, schema *ast.SchemaDefinition) error {
	rec, err := generateInstanceIn(ctx, schema.Name, coll.FieldOverrides, ds.Violating)
	if err != nil {
		return err
	}
	ctx.Dataset[coll.Name] = append(ctx.Dataset[coll.Name], rec)
	ctx.setLastIn(coll.Name, rec)
	applyThen(ctx, schema, rec)
	return nil
}

func resolveCardinality(ctx *Context, coll *ast.CollectionDefinition) (int, error) {
	if coll.DynamicCard != nil {
		v, err := evalExpr(ctx, coll.DynamicCard)
		if err != nil {
			return 0, err
		}
		f, _ := toFloat(v)
		if f < 0 {
			f = 0
		}
		return int(f), nil
	}
	if coll.Cardinality == nil {
		return 0, nil
	}
	return int(ctx.RNG.IntRange(coll.Cardinality.Min, coll.Cardinality.Max)), nil
}
