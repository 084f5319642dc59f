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

	"github.com/cockroachdb/apd/v3"
	"github.com/go-quicktest/qt"

	"github.com/mcclowes/vague-sub002/ast"
	"github.com/mcclowes/vague-sub002/token"
)

func TestGenPrimitiveIntDefaultRange(t *testing.T) {
	ctx := testContext()
	for i := 0; i < 200; i++ {
		v := genPrimitive(ctx, "int")
		n := v.(int64)
		qt.Assert(t, qt.IsTrue(n >= 0 && n <= 1000))
	}
}

func TestGenPrimitiveBooleanAndDecimal(t *testing.T) {
	ctx := testContext()
	b := genPrimitive(ctx, "boolean")
	_, ok := b.(bool)
	qt.Assert(t, qt.IsTrue(ok))

	d := genPrimitive(ctx, "decimal")
	dec, ok := d.(*apd.Decimal)
	qt.Assert(t, qt.IsTrue(ok))
	f, err := dec.Float64()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(f >= 0 && f <= 1000))
}

func TestGenRangeIntRespectsBounds(t *testing.T) {
	ctx := testContext()
	rt := &ast.RangeType{Base: "int", Min: intLit("10"), Max: intLit("20")}
	for i := 0; i < 200; i++ {
		v, err := genRange(ctx, rt)
		qt.Assert(t, qt.IsNil(err))
		n := v.(int64)
		qt.Assert(t, qt.IsTrue(n >= 10 && n <= 20))
	}
}

func TestGenRangeDecimalRespectsBounds(t *testing.T) {
	ctx := testContext()
	rt := &ast.RangeType{Base: "decimal", Min: &ast.Literal{Kind: token.FLOAT, Raw: "1.5"}, Max: &ast.Literal{Kind: token.FLOAT, Raw: "2.5"}}
	for i := 0; i < 200; i++ {
		v, err := genRange(ctx, rt)
		qt.Assert(t, qt.IsNil(err))
		f, ferr := v.(*apd.Decimal).Float64()
		qt.Assert(t, qt.IsNil(ferr))
		qt.Assert(t, qt.IsTrue(f >= 1.5 && f <= 2.5))
	}
}

func TestGenCollectionProducesCardinalityElements(t *testing.T) {
	ctx := testContext()
	ct := &ast.CollectionType{
		Static:      &ast.CollectionCardinality{Min: 2, Max: 4},
		ElementType: &ast.PrimitiveType{Name: "int"},
	}
	for i := 0; i < 50; i++ {
		v, err := genCollection(ctx, ct)
		qt.Assert(t, qt.IsNil(err))
		elems := v.([]Value)
		qt.Assert(t, qt.IsTrue(len(elems) >= 2 && len(elems) <= 4))
	}
}

func TestGenerateFieldSkippedByWhenGuard(t *testing.T) {
	ctx := testContext()
	ctx.pushRecord(NewRecord("X"))
	fd := &ast.FieldDefinition{
		Name: "maybe",
		Type: &ast.PrimitiveType{Name: "int"},
		When: boolLit(false),
	}
	_, present, err := generateField(ctx, "X", fd)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(present))
}

func TestEnforceUniqueRetriesOnCollision(t *testing.T) {
	ctx := testContext()
	fd := &ast.FieldDefinition{
		Name:   "code",
		Type:   &ast.RangeType{Base: "int", Min: intLit("1"), Max: intLit("2")},
		Unique: true,
	}
	ctx.pushRecord(NewRecord("X"))

	ctx.pushUniqueStaging()
	first, present, err := generateField(ctx, "Sch", fd)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(present))
	ctx.commitUniqueStaging()

	ctx.pushUniqueStaging()
	second, present, err := generateField(ctx, "Sch", fd)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(present))
	ctx.commitUniqueStaging()

	qt.Assert(t, qt.IsTrue(first.(int64) != second.(int64)))
}

func TestEnforceUniqueWarnsOnExhaustion(t *testing.T) {
	ctx := testContext()
	ctx.Limits.MaxUniqueRetries = 3
	fd := &ast.FieldDefinition{
		Name:   "flag",
		Type:   &ast.PrimitiveType{Name: "boolean"},
		Unique: true,
	}
	ctx.pushRecord(NewRecord("X"))
	// Only two distinct boolean values exist, so a third unique draw must
	// exhaust retries and warn. Each draw is staged and committed as if
	// its enclosing attempt were accepted, so the pool actually reflects
	// the two prior draws by the third.
	for i := 0; i < 3; i++ {
		ctx.pushUniqueStaging()
		_, _, err := generateField(ctx, "Sch", fd)
		qt.Assert(t, qt.IsNil(err))
		ctx.commitUniqueStaging()
	}
	found := false
	for _, w := range ctx.Warnings.All() {
		if w.Kind == "UniqueValueExhaustion" {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}
