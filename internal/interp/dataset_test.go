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
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/mcclowes/vague-sub002/ast"
)

func TestResolveCardinalityStaticRange(t *testing.T) {
	ctx := testContext()
	coll := &ast.CollectionDefinition{Cardinality: &ast.Cardinality{Min: 3, Max: 7}}
	for i := 0; i < 50; i++ {
		n, err := resolveCardinality(ctx, coll)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.IsTrue(n >= 3 && n <= 7))
	}
}

func TestResolveCardinalityDynamicExpression(t *testing.T) {
	ctx := testContext()
	coll := &ast.CollectionDefinition{DynamicCard: intLit("4")}
	n, err := resolveCardinality(ctx, coll)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(n, 4))
}

func TestRunCollectionFlatEmitsDeclaredCount(t *testing.T) {
	ctx := testContext()
	ctx.Schemas["Item"] = &ast.SchemaDefinition{
		Name:   "Item",
		Fields: []*ast.FieldDefinition{{Name: "n", Type: &ast.PrimitiveType{Name: "int"}}},
	}
	ds := &ast.DatasetDefinition{Name: "demo"}
	coll := &ast.CollectionDefinition{Name: "items", Cardinality: &ast.Cardinality{Min: 3, Max: 3}, Schema: &ast.QualifiedName{Parts: []string{"Item"}}}
	err := runCollection(ctx, ds, coll)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(ctx.Dataset["items"], 3))
}

func TestRunCollectionPerParentFillsEachParent(t *testing.T) {
	ctx := testContext()
	ctx.Schemas["Order"] = &ast.SchemaDefinition{
		Name:   "Order",
		Fields: []*ast.FieldDefinition{{Name: "sku", Type: &ast.PrimitiveType{Name: "string"}}},
	}
	ctx.Dataset["customers"] = []*Record{NewRecord("Customer"), NewRecord("Customer")}
	ds := &ast.DatasetDefinition{Name: "demo"}
	coll := &ast.CollectionDefinition{
		Name:        "orders",
		PerParent:   "customers",
		Cardinality: &ast.Cardinality{Min: 2, Max: 2},
		Schema:      &ast.QualifiedName{Parts: []string{"Order"}},
	}
	err := runCollection(ctx, ds, coll)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(ctx.Dataset["orders"], 4))
}

func TestRunCollectionUnknownSchemaIsFatal(t *testing.T) {
	ctx := testContext()
	ds := &ast.DatasetDefinition{Name: "demo"}
	coll := &ast.CollectionDefinition{Name: "items", Cardinality: &ast.Cardinality{Min: 1, Max: 1}, Schema: &ast.QualifiedName{Parts: []string{"Ghost"}}}
	err := runCollection(ctx, ds, coll)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestRunDatasetRunsEveryCollectionInOrder(t *testing.T) {
	ctx := testContext()
	ctx.Schemas["A"] = &ast.SchemaDefinition{Name: "A"}
	ctx.Schemas["B"] = &ast.SchemaDefinition{Name: "B"}
	ds := &ast.DatasetDefinition{
		Name: "demo",
		Collections: []*ast.CollectionDefinition{
			{Name: "as", Cardinality: &ast.Cardinality{Min: 2, Max: 2}, Schema: &ast.QualifiedName{Parts: []string{"A"}}},
			{Name: "bs", Cardinality: &ast.Cardinality{Min: 1, Max: 1}, Schema: &ast.QualifiedName{Parts: []string{"B"}}},
		},
	}
	err := runDataset(ctx, ds)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(ctx.Dataset["as"], 2))
	qt.Assert(t, qt.HasLen(ctx.Dataset["bs"], 1))
}

func TestEmitOneSetsLastInCollection(t *testing.T) {
	ctx := testContext()
	ctx.Schemas["Item"] = &ast.SchemaDefinition{Name: "Item"}
	ds := &ast.DatasetDefinition{}
	coll := &ast.CollectionDefinition{Name: "items", Schema: &ast.QualifiedName{Parts: []string{"Item"}}}
	err := emitOne(ctx, ds, coll, ctx.Schemas["Item"])
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNotNil(ctx.LastIn("items")))
}
