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
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/mcclowes/vague-sub002/ast"
	verrors "github.com/mcclowes/vague-sub002/errors"
	"github.com/mcclowes/vague-sub002/token"
)

// evalExpr evaluates e against ctx's current scope (spec §4.4). Division
// by zero, an unsupported operator or argument count, a failed decimal
// operation and an error from a called generator are returned as errors;
// every other miss degrades to nil.
func evalExpr(ctx *Context, e ast.Expr) (Value, error) {
	switch v := e.(type) {
	case *ast.Literal:
		return evalLiteral(v)
	case *ast.Identifier:
		return lookupIdentifier(ctx, v.Name)
	case *ast.QualifiedNameExpr:
		return evalQualified(ctx, v.Parts)
	case *ast.BinaryExpression:
		return evalBinary(ctx, v)
	case *ast.LogicalExpression:
		return evalLogical(ctx, v)
	case *ast.NotExpression:
		x, err := evalExpr(ctx, v.X)
		if err != nil {
			return nil, err
		}
		return !truthy(x), nil
	case *ast.UnaryExpression:
		return evalUnary(ctx, v)
	case *ast.TernaryExpression:
		cond, err := evalExpr(ctx, v.Cond)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return evalExpr(ctx, v.Then)
		}
		return evalExpr(ctx, v.Else)
	case *ast.RangeExpression:
		min, err := evalExpr(ctx, v.Min)
		if err != nil {
			return nil, err
		}
		var max Value
		if v.Max != nil {
			max, err = evalExpr(ctx, v.Max)
			if err != nil {
				return nil, err
			}
		}
		return rangeValue{Min: min, Max: max}, nil
	case *ast.SuperpositionExpression:
		return evalSuperposition(ctx, v)
	case *ast.AnyOfExpression:
		return evalAnyOf(ctx, v)
	case *ast.ParentReference:
		return evalParentRef(ctx, v)
	case *ast.MatchExpression:
		return evalMatch(ctx, v)
	case *ast.CallExpression:
		return evalCall(ctx, v)
	}
	return nil, nil
}

// rangeValue is the runtime shape of a bare `lo..hi` expression. It is
// only produced when a RangeExpression is evaluated as a value in its own
// right (outside RangeType field-type position, which the field generator
// handles directly from the AST node).
type rangeValue struct {
	Min, Max Value
}

func evalLiteral(l *ast.Literal) (Value, error) {
	switch l.Kind {
	case token.TRUE:
		return true, nil
	case token.FALSE:
		return false, nil
	case token.NULL:
		return nil, nil
	case token.INT:
		n, err := strconv.ParseInt(l.Raw, 10, 64)
		if err != nil {
			return nil, nil
		}
		return n, nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(l.Raw, 64)
		if err != nil {
			return nil, nil
		}
		return f, nil
	case token.STRING:
		return l.Raw, nil
	}
	return nil, nil
}

// lookupIdentifier implements the five-step resolution order of spec
// §4.4: current record, parent record, dataset collection, let-binding,
// then a zero-arg plugin generator. A miss anywhere is nil, not an error.
func lookupIdentifier(ctx *Context, name string) (Value, error) {
	if cur := ctx.Current(); cur != nil {
		if v, ok := cur.Get(name); ok {
			return v, nil
		}
	}
	if par := ctx.Parent(); par != nil {
		if v, ok := par.Get(name); ok {
			return v, nil
		}
	}
	if coll, ok := ctx.Dataset[name]; ok {
		return recordsToValue(coll), nil
	}
	if v, ok := ctx.Lets[name]; ok {
		return v, nil
	}
	if fn, ok := ctx.Registry.Lookup(name); ok {
		return fn(ctx.RNG, name, nil)
	}
	return nil, nil
}

// evalQualified walks a dotted path across records and their nested
// collections (spec §4.4 QualifiedName): the first part resolves like a
// bare Identifier, then each further part projects through the current
// value (a record field access, or a per-element projection over a
// sequence, producing the lazy-in-spirit sub-sequence eagerly here).
func evalQualified(ctx *Context, parts []string) (Value, error) {
	cur, err := lookupIdentifier(ctx, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		cur = project(cur, part)
	}
	return cur, nil
}

func project(v Value, field string) Value {
	v = deref(v)
	switch x := v.(type) {
	case *Record:
		out, _ := x.Get(field)
		return out
	case []Value:
		out := make([]Value, len(x))
		for i, elem := range x {
			out[i] = project(elem, field)
		}
		return out
	}
	return nil
}

func evalBinary(ctx *Context, b *ast.BinaryExpression) (Value, error) {
	x, err := evalExpr(ctx, b.X)
	if err != nil {
		return nil, err
	}
	y, err := evalExpr(ctx, b.Y)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case token.EQL:
		return valueEqual(x, y), nil
	case token.NEQ:
		return !valueEqual(x, y), nil
	case token.LSS, token.GTR, token.LEQ, token.GEQ:
		return compareOrdered(b.Op, x, y)
	case token.ADD, token.SUB, token.MUL, token.QUO, token.REM:
		return arith(b.Op, x, y, b.Position)
	}
	return nil, verrors.UnsupportedExpression(b.Position, "binary operator "+b.Op.String())
}

func compareOrdered(op token.Token, x, y Value) (Value, error) {
	if xs, ok := x.(string); ok {
		if ys, ok := y.(string); ok {
			switch op {
			case token.LSS:
				return xs < ys, nil
			case token.GTR:
				return xs > ys, nil
			case token.LEQ:
				return xs <= ys, nil
			case token.GEQ:
				return xs >= ys, nil
			}
		}
	}
	xf, xok := toFloat(x)
	yf, yok := toFloat(y)
	if !xok || !yok {
		return false, nil
	}
	switch op {
	case token.LSS:
		return xf < yf, nil
	case token.GTR:
		return xf > yf, nil
	case token.LEQ:
		return xf <= yf, nil
	case token.GEQ:
		return xf >= yf, nil
	}
	return false, nil
}

func arith(op token.Token, x, y Value, pos token.Position) (Value, error) {
	if isDecimal(x) || isDecimal(y) {
		xd, xok := decimalOf(x)
		yd, yok := decimalOf(y)
		if xok && yok {
			return decimalArith(op, xd, yd, pos)
		}
	}
	xi, xIsInt := x.(int64)
	yi, yIsInt := y.(int64)
	if xIsInt && yIsInt {
		switch op {
		case token.ADD:
			return xi + yi, nil
		case token.SUB:
			return xi - yi, nil
		case token.MUL:
			return xi * yi, nil
		case token.REM:
			if yi == 0 {
				return nil, fatal(verrors.DivisionByZero(pos))
			}
			return xi % yi, nil
		case token.QUO:
			if yi == 0 {
				return nil, fatal(verrors.DivisionByZero(pos))
			}
			if xi%yi == 0 {
				return xi / yi, nil
			}
			return float64(xi) / float64(yi), nil
		}
	}
	xf, _ := toFloat(x)
	yf, _ := toFloat(y)
	switch op {
	case token.ADD:
		return xf + yf, nil
	case token.SUB:
		return xf - yf, nil
	case token.MUL:
		return xf * yf, nil
	case token.REM:
		if yf == 0 {
			return nil, fatal(verrors.DivisionByZero(pos))
		}
		return float64(int64(xf) % int64(yf)), nil
	case token.QUO:
		if yf == 0 {
			return nil, fatal(verrors.DivisionByZero(pos))
		}
		return xf / yf, nil
	}
	return nil, verrors.UnsupportedExpression(pos, "arithmetic operator "+op.String())
}

func isDecimal(v Value) bool {
	_, ok := v.(*apd.Decimal)
	return ok
}

func decimalArith(op token.Token, x, y *apd.Decimal, pos token.Position) (Value, error) {
	z := new(apd.Decimal)
	ctx := apd.BaseContext.WithPrecision(34)
	var err error
	switch op {
	case token.ADD:
		_, err = ctx.Add(z, x, y)
	case token.SUB:
		_, err = ctx.Sub(z, x, y)
	case token.MUL:
		_, err = ctx.Mul(z, x, y)
	case token.QUO:
		if y.IsZero() {
			return nil, fatal(verrors.DivisionByZero(pos))
		}
		_, err = ctx.Quo(z, x, y)
	case token.REM:
		if y.IsZero() {
			return nil, fatal(verrors.DivisionByZero(pos))
		}
		_, err = ctx.Rem(z, x, y)
	default:
		return nil, verrors.UnsupportedExpression(pos, "decimal operator "+op.String())
	}
	if err != nil {
		return nil, verrors.Fatal(pos, "decimal arithmetic: %v", err)
	}
	return z, nil
}

func evalLogical(ctx *Context, l *ast.LogicalExpression) (Value, error) {
	x, err := evalExpr(ctx, l.X)
	if err != nil {
		return nil, err
	}
	if l.Op == token.AND && !truthy(x) {
		return false, nil
	}
	if l.Op == token.OR && truthy(x) {
		return true, nil
	}
	y, err := evalExpr(ctx, l.Y)
	if err != nil {
		return nil, err
	}
	return truthy(y), nil
}

func evalUnary(ctx *Context, u *ast.UnaryExpression) (Value, error) {
	x, err := evalExpr(ctx, u.X)
	if err != nil {
		return nil, err
	}
	if u.Op == token.ADD {
		return x, nil
	}
	switch n := x.(type) {
	case int64:
		return -n, nil
	case float64:
		return -n, nil
	case *apd.Decimal:
		z := new(apd.Decimal)
		z.Neg(n)
		return z, nil
	}
	return x, nil
}

func evalSuperposition(ctx *Context, s *ast.SuperpositionExpression) (Value, error) {
	weights := resolveWeights(s.Options)
	idx := pickIndex(weights, ctx.RNG.Uniform01())
	return evalExpr(ctx, s.Options[idx].Value)
}

func evalAnyOf(ctx *Context, a *ast.AnyOfExpression) (Value, error) {
	name := a.Collection.Parts[len(a.Collection.Parts)-1]
	coll, ok := ctx.Dataset[name]
	if !ok {
		return nil, nil
	}
	candidates := make([]int, 0, len(coll))
	for i, r := range coll {
		if a.Where != nil {
			ctx.pushRecord(r)
			v, err := evalExpr(ctx, a.Where)
			ctx.popRecord()
			if err != nil {
				return nil, err
			}
			if !truthy(v) {
				continue
			}
		}
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	idx := candidates[ctx.RNG.Choice(len(candidates))]
	return &Reference{Collection: name, Index: idx, Record: coll[idx]}, nil
}

func evalParentRef(ctx *Context, p *ast.ParentReference) (Value, error) {
	par := ctx.Parent()
	if par == nil {
		return nil, nil
	}
	var cur Value = par
	for _, part := range p.Path {
		cur = project(cur, part)
	}
	return cur, nil
}

func evalMatch(ctx *Context, m *ast.MatchExpression) (Value, error) {
	subj, err := evalExpr(ctx, m.Subject)
	if err != nil {
		return nil, err
	}
	for _, arm := range m.Arms {
		pat, err := evalExpr(ctx, arm.Pattern)
		if err != nil {
			return nil, err
		}
		if valueEqual(subj, pat) {
			return evalExpr(ctx, arm.Value)
		}
	}
	return nil, nil
}
