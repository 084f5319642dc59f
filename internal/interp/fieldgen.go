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
	"time"

	"github.com/mcclowes/vague-sub002/ast"
)

// generateField runs the field generator of spec §4.5 for a non-computed
// field. A false second return means the field was omitted by its `when`
// guard.
func generateField(ctx *Context, schema string, fd *ast.FieldDefinition) (Value, bool, error) {
	if fd.When != nil {
		cond, err := evalExpr(ctx, fd.When)
		if err != nil {
			return nil, false, err
		}
		if !truthy(cond) {
			return nil, false, nil
		}
	}
	v, err := genType(ctx, fd.Name, fd.Type)
	if err != nil {
		return nil, false, err
	}
	if fd.Unique {
		v = enforceUnique(ctx, schema, fd.Name, fd.Type, v)
	}
	return v, true, nil
}

func enforceUnique(ctx *Context, schema, field string, t ast.FieldType, v Value) Value {
	attempts := 0
	for ctx.pool.Seen(schema, field, v) && attempts < ctx.Limits.MaxUniqueRetries {
		attempts++
		next, err := genType(ctx, field, t)
		if err != nil {
			break
		}
		v = next
	}
	if ctx.pool.Seen(schema, field, v) {
		ctx.Warnings.UniqueValueExhaustion(schema, field, attempts)
	}
	ctx.stageUnique(schema, field, v)
	return v
}

// genType produces one value from a FieldType (spec §4.5 step 3).
func genType(ctx *Context, fieldName string, t ast.FieldType) (Value, error) {
	prevField := ctx.currentField
	ctx.currentField = fieldName
	defer func() { ctx.currentField = prevField }()
	switch v := t.(type) {
	case *ast.PrimitiveType:
		return genPrimitive(ctx, v.Name), nil
	case *ast.RangeType:
		return genRange(ctx, v)
	case *ast.SuperpositionType:
		weights := resolveWeights(v.Options)
		idx := pickIndex(weights, ctx.RNG.Uniform01())
		return evalExpr(ctx, v.Options[idx].Value)
	case *ast.GeneratorType:
		args, err := evalArgs(ctx, v.Args)
		if err != nil {
			return nil, err
		}
		fn, ok := ctx.Registry.Lookup(v.Name)
		if !ok {
			return nil, nil
		}
		return fn(ctx.RNG, fieldName, args)
	case *ast.CollectionType:
		return genCollection(ctx, v)
	case *ast.ReferenceType:
		return generateInstance(ctx, v.Name.String())
	case *ast.ExpressionType:
		return evalExpr(ctx, v.Expr)
	case *ast.OrderedSequenceType:
		return evalArgs(ctx, v.Elements)
	}
	return nil, nil
}

// genPrimitive implements the "sensible defaults for unconstrained
// primitives" of spec §4.5 step 3.
func genPrimitive(ctx *Context, name string) Value {
	switch name {
	case "int":
		return ctx.RNG.IntRange(0, 1000)
	case "decimal":
		d, _ := decimalOf(ctx.RNG.FloatRange(0, 1000))
		return d
	case "boolean":
		return ctx.RNG.Bool(0.5)
	case "date":
		offset := ctx.RNG.IntRange(-30, 30)
		return time.Now().UTC().AddDate(0, 0, int(offset)).Format(isoDate)
	case "string":
		if fn, ok := ctx.Registry.Lookup("lorem.word"); ok {
			v, err := fn(ctx.RNG, "", nil)
			if err == nil {
				return v
			}
		}
		return ""
	}
	return nil
}

func genRange(ctx *Context, rt *ast.RangeType) (Value, error) {
	minV, err := evalExpr(ctx, rt.Min)
	if err != nil {
		return nil, err
	}
	var maxV Value
	if rt.Max != nil {
		maxV, err = evalExpr(ctx, rt.Max)
		if err != nil {
			return nil, err
		}
	}
	switch rt.Base {
	case "date":
		return genDateRange(ctx, minV, maxV)
	case "decimal":
		lo, _ := toFloat(minV)
		hi, hasMax := toFloat(maxV)
		if !hasMax {
			hi = lo + 1000
		}
		d, _ := decimalOf(ctx.RNG.FloatRange(lo, hi))
		return d, nil
	default: // "int"
		lo, _ := toFloat(minV)
		hi, hasMax := toFloat(maxV)
		if !hasMax {
			hi = lo + 1000
		}
		return ctx.RNG.IntRange(int64(lo), int64(hi)), nil
	}
}

func genDateRange(ctx *Context, minV, maxV Value) (Value, error) {
	lo, err := time.Parse(isoDate, asString(minV))
	if err != nil {
		lo = time.Now().UTC()
	}
	var hi time.Time
	if s, ok := maxV.(string); ok {
		hi, err = time.Parse(isoDate, s)
		if err != nil {
			hi = lo.AddDate(1, 0, 0)
		}
	} else {
		hi = lo.AddDate(1, 0, 0)
	}
	days := hi.Sub(lo).Hours() / 24
	if days < 0 {
		days = 0
	}
	offset := ctx.RNG.IntRange(0, int64(days))
	return lo.AddDate(0, 0, int(offset)).Format(isoDate), nil
}

func genCollection(ctx *Context, ct *ast.CollectionType) (Value, error) {
	n, err := collectionCardinality(ctx, ct.Static, ct.Dynamic)
	if err != nil {
		return nil, err
	}
	elems := make([]Value, n)
	for i := 0; i < n; i++ {
		v, err := genType(ctx, "", ct.ElementType)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return elems, nil
}

func collectionCardinality(ctx *Context, static *ast.CollectionCardinality, dynamic ast.Expr) (int, error) {
	if dynamic != nil {
		v, err := evalExpr(ctx, dynamic)
		if err != nil {
			return 0, err
		}
		f, _ := toFloat(v)
		if f < 0 {
			f = 0
		}
		return int(f), nil
	}
	if static == nil {
		return 0, nil
	}
	return int(ctx.RNG.IntRange(static.Min, static.Max)), nil
}
