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
	"github.com/mcclowes/vague-sub002/internal/registry"
	"github.com/mcclowes/vague-sub002/token"
)

func testContext() *Context {
	seed := int64(1)
	return NewContext(registry.New(), &seed, DefaultLimits())
}

func intLit(n string) *ast.Literal  { return &ast.Literal{Kind: token.INT, Raw: n} }
func strLit(s string) *ast.Literal  { return &ast.Literal{Kind: token.STRING, Raw: s} }
func boolLit(b bool) *ast.Literal {
	if b {
		return &ast.Literal{Kind: token.TRUE}
	}
	return &ast.Literal{Kind: token.FALSE}
}

func TestEvalLiteralKinds(t *testing.T) {
	ctx := testContext()

	v, err := evalExpr(ctx, intLit("42"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(int64), int64(42)))

	v, err = evalExpr(ctx, &ast.Literal{Kind: token.FLOAT, Raw: "3.5"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(float64), 3.5))

	v, err = evalExpr(ctx, strLit("hi"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(string), "hi"))

	v, err = evalExpr(ctx, boolLit(true))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v.(bool)))

	v, err = evalExpr(ctx, &ast.Literal{Kind: token.NULL})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(v))
}

func TestEvalBinaryArithmeticInt(t *testing.T) {
	ctx := testContext()
	e := &ast.BinaryExpression{Op: token.ADD, X: intLit("2"), Y: intLit("3")}
	v, err := evalExpr(ctx, e)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(int64), int64(5)))
}

func TestEvalDivisionByZeroIsFatal(t *testing.T) {
	ctx := testContext()
	e := &ast.BinaryExpression{Op: token.QUO, X: intLit("1"), Y: intLit("0")}
	_, err := evalExpr(ctx, e)
	qt.Assert(t, qt.ErrorMatches(err, ".*DivisionByZero.*"))
}

func TestEvalQuotientPromotesToFloatOnRemainder(t *testing.T) {
	ctx := testContext()
	e := &ast.BinaryExpression{Op: token.QUO, X: intLit("7"), Y: intLit("2")}
	v, err := evalExpr(ctx, e)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(float64), 3.5))
}

func TestEvalQuotientStaysIntOnExactDivision(t *testing.T) {
	ctx := testContext()
	e := &ast.BinaryExpression{Op: token.QUO, X: intLit("6"), Y: intLit("2")}
	v, err := evalExpr(ctx, e)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(int64), int64(3)))
}

func TestEvalComparisonStrings(t *testing.T) {
	ctx := testContext()
	e := &ast.BinaryExpression{Op: token.LSS, X: strLit("apple"), Y: strLit("banana")}
	v, err := evalExpr(ctx, e)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v.(bool)))
}

func TestEvalEqualityStructural(t *testing.T) {
	ctx := testContext()
	v, err := evalExpr(ctx, &ast.BinaryExpression{Op: token.EQL, X: intLit("3"), Y: &ast.Literal{Kind: token.FLOAT, Raw: "3"}})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v.(bool)))
}

func TestEvalLogicalShortCircuitsAnd(t *testing.T) {
	ctx := testContext()
	// X is false, Y would error if evaluated (division by zero) - must not run.
	e := &ast.LogicalExpression{Op: token.AND, X: boolLit(false), Y: &ast.BinaryExpression{Op: token.QUO, X: intLit("1"), Y: intLit("0")}}
	v, err := evalExpr(ctx, e)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(v.(bool)))
}

func TestEvalLogicalShortCircuitsOr(t *testing.T) {
	ctx := testContext()
	e := &ast.LogicalExpression{Op: token.OR, X: boolLit(true), Y: &ast.BinaryExpression{Op: token.QUO, X: intLit("1"), Y: intLit("0")}}
	v, err := evalExpr(ctx, e)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v.(bool)))
}

func TestEvalNotExpression(t *testing.T) {
	ctx := testContext()
	v, err := evalExpr(ctx, &ast.NotExpression{X: boolLit(false)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v.(bool)))
}

func TestEvalTernary(t *testing.T) {
	ctx := testContext()
	e := &ast.TernaryExpression{Cond: boolLit(true), Then: strLit("yes"), Else: strLit("no")}
	v, err := evalExpr(ctx, e)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(string), "yes"))
}

func TestEvalIdentifierResolvesCurrentThenParentThenDataset(t *testing.T) {
	ctx := testContext()
	parent := NewRecord("Org")
	parent.Set("name", "Acme")
	cur := NewRecord("User")
	cur.Set("handle", "ada")
	ctx.pushRecord(parent)
	ctx.pushRecord(cur)

	v, err := evalExpr(ctx, &ast.Identifier{Name: "handle"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(string), "ada"))

	v, err = evalExpr(ctx, &ast.Identifier{Name: "name"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(string), "Acme"))

	ctx.Dataset["users"] = []*Record{cur}
	v, err = evalExpr(ctx, &ast.Identifier{Name: "users"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(v.([]Value)), 1))

	v, err = evalExpr(ctx, &ast.Identifier{Name: "nope_at_all"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(v))
}

func TestEvalQualifiedNameProjectsThroughRecord(t *testing.T) {
	ctx := testContext()
	addr := NewRecord("Address")
	addr.Set("city", "Lagos")
	user := NewRecord("User")
	user.Set("address", addr)
	ctx.pushRecord(user)

	v, err := evalExpr(ctx, &ast.QualifiedNameExpr{Parts: []string{"address", "city"}})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(string), "Lagos"))
}

func TestEvalParentReference(t *testing.T) {
	ctx := testContext()
	parent := NewRecord("Org")
	parent.Set("tier", "gold")
	ctx.pushRecord(parent)
	ctx.pushRecord(NewRecord("User"))

	v, err := evalExpr(ctx, &ast.ParentReference{Path: []string{"tier"}})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(string), "gold"))
}

func TestEvalMatchPicksFirstEqualArm(t *testing.T) {
	ctx := testContext()
	m := &ast.MatchExpression{
		Subject: strLit("b"),
		Arms: []*ast.MatchArm{
			{Pattern: strLit("a"), Value: intLit("1")},
			{Pattern: strLit("b"), Value: intLit("2")},
			{Pattern: strLit("b"), Value: intLit("99")},
		},
	}
	v, err := evalExpr(ctx, m)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(int64), int64(2)))
}

func TestEvalMatchNoArmMatchesIsNil(t *testing.T) {
	ctx := testContext()
	m := &ast.MatchExpression{
		Subject: strLit("z"),
		Arms:    []*ast.MatchArm{{Pattern: strLit("a"), Value: intLit("1")}},
	}
	v, err := evalExpr(ctx, m)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(v))
}

func TestEvalSuperpositionAlwaysPicksSoleOption(t *testing.T) {
	ctx := testContext()
	s := &ast.SuperpositionExpression{Options: []*ast.WeightedOption{{Value: strLit("only")}}}
	for i := 0; i < 20; i++ {
		v, err := evalExpr(ctx, s)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(v.(string), "only"))
	}
}

func TestEvalAnyOfDrawsFromCollectionAndFiltersByWhere(t *testing.T) {
	ctx := testContext()
	a := NewRecord("Item")
	a.Set("active", false)
	b := NewRecord("Item")
	b.Set("active", true)
	ctx.Dataset["items"] = []*Record{a, b}

	expr := &ast.AnyOfExpression{
		Collection: &ast.QualifiedNameExpr{Parts: []string{"items"}},
		Where:      &ast.Identifier{Name: "active"},
	}
	for i := 0; i < 20; i++ {
		v, err := evalExpr(ctx, expr)
		qt.Assert(t, qt.IsNil(err))
		ref := v.(*Reference)
		qt.Assert(t, qt.IsTrue(ref.Record == b))
	}
}

func TestEvalAnyOfEmptyCandidatesIsNil(t *testing.T) {
	ctx := testContext()
	a := NewRecord("Item")
	a.Set("active", false)
	ctx.Dataset["items"] = []*Record{a}
	expr := &ast.AnyOfExpression{
		Collection: &ast.QualifiedNameExpr{Parts: []string{"items"}},
		Where:      &ast.Identifier{Name: "active"},
	}
	v, err := evalExpr(ctx, expr)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(v))
}

func TestEvalUnaryNegation(t *testing.T) {
	ctx := testContext()
	v, err := evalExpr(ctx, &ast.UnaryExpression{Op: token.SUB, X: intLit("5")})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(int64), int64(-5)))
}

func TestTruthyEdgeCases(t *testing.T) {
	qt.Assert(t, qt.IsFalse(truthy(nil)))
	qt.Assert(t, qt.IsFalse(truthy(int64(0))))
	qt.Assert(t, qt.IsFalse(truthy("")))
	qt.Assert(t, qt.IsFalse(truthy([]Value{})))
	qt.Assert(t, qt.IsTrue(truthy([]Value{1})))
	qt.Assert(t, qt.IsTrue(truthy("x")))
}
