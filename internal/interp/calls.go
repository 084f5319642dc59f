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
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/inflect"

	"github.com/mcclowes/vague-sub002/ast"
	verrors "github.com/mcclowes/vague-sub002/errors"
)

const isoDate = "2006-01-02"

var aggregateFuncs = map[string]bool{
	"sum": true, "count": true, "min": true, "max": true, "avg": true,
	"first": true, "last": true, "median": true, "product": true,
}

// evalCall dispatches a CallExpression to the name-indexed table of spec
// §4.4, falling through to the plugin generator table for any name this
// core doesn't recognize.
func evalCall(ctx *Context, c *ast.CallExpression) (Value, error) {
	if aggregateFuncs[c.Callee] {
		return evalAggregate(ctx, c)
	}
	switch c.Callee {
	case "all", "some":
		return evalPredicate(ctx, c)
	case "round", "floor", "ceil":
		return evalMathFn(ctx, c)
	case "gaussian", "normal", "exponential", "lognormal", "poisson", "beta", "uniform":
		return evalDistributionFn(ctx, c)
	case "now", "today", "datetime", "dateBetween", "daysAgo", "daysFromNow", "formatDate":
		return evalDateFn(ctx, c)
	case "uppercase", "lowercase", "capitalize", "kebabCase", "snakeCase", "camelCase",
		"trim", "concat", "substring", "replace", "length":
		return evalStringFn(ctx, c)
	case "sequence":
		return evalSequence(ctx, c)
	case "sequenceInt":
		return evalSequenceInt(ctx, c)
	case "previous":
		return evalPrevious(ctx, c)
	}
	return evalPluginCall(ctx, c)
}

func evalArgs(ctx *Context, args []ast.Expr) ([]Value, error) {
	out := make([]Value, len(args))
	for i, a := range args {
		v, err := evalExpr(ctx, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalPluginCall(ctx *Context, c *ast.CallExpression) (Value, error) {
	fn, ok := ctx.Registry.Lookup(c.Callee)
	if !ok {
		return nil, nil
	}
	args, err := evalArgs(ctx, c.Args)
	if err != nil {
		return nil, err
	}
	return fn(ctx.RNG, c.Callee, args)
}

func evalAggregate(ctx *Context, c *ast.CallExpression) (Value, error) {
	if len(c.Args) == 0 {
		return nil, nil
	}
	seqVal, err := evalExpr(ctx, c.Args[0])
	if err != nil {
		return nil, err
	}
	seq := asSequence(seqVal)
	switch c.Callee {
	case "count":
		return int64(len(seq)), nil
	case "first":
		if len(seq) == 0 {
			return nil, nil
		}
		return seq[0], nil
	case "last":
		if len(seq) == 0 {
			return nil, nil
		}
		return seq[len(seq)-1], nil
	}
	nums := make([]float64, 0, len(seq))
	for _, v := range seq {
		if f, ok := toFloat(v); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return nil, nil
	}
	switch c.Callee {
	case "sum":
		var s float64
		for _, n := range nums {
			s += n
		}
		return s, nil
	case "avg":
		var s float64
		for _, n := range nums {
			s += n
		}
		return s / float64(len(nums)), nil
	case "min":
		m := nums[0]
		for _, n := range nums[1:] {
			if n < m {
				m = n
			}
		}
		return m, nil
	case "max":
		m := nums[0]
		for _, n := range nums[1:] {
			if n > m {
				m = n
			}
		}
		return m, nil
	case "product":
		p := 1.0
		for _, n := range nums {
			p *= n
		}
		return p, nil
	case "median":
		sorted := append([]float64(nil), nums...)
		for i := 1; i < len(sorted); i++ {
			for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
				sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			}
		}
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return sorted[mid], nil
		}
		return (sorted[mid-1] + sorted[mid]) / 2, nil
	}
	return nil, nil
}

// evalPredicate implements all(seq, predicateExpr)/some(seq, predicateExpr):
// the predicate's second argument expression is evaluated once per element
// with that element pushed as the current scope, so a bare field name in
// the predicate resolves against it.
func evalPredicate(ctx *Context, c *ast.CallExpression) (Value, error) {
	if len(c.Args) != 2 {
		return nil, verrors.UnsupportedExpression(c.Position, c.Callee+" requires 2 arguments")
	}
	seqVal, err := evalExpr(ctx, c.Args[0])
	if err != nil {
		return nil, err
	}
	seq := asSequence(seqVal)
	for _, elem := range seq {
		rec, ok := deref(elem).(*Record)
		matched := false
		if ok {
			ctx.pushRecord(rec)
			v, err := evalExpr(ctx, c.Args[1])
			ctx.popRecord()
			if err != nil {
				return nil, err
			}
			matched = truthy(v)
		}
		if c.Callee == "some" && matched {
			return true, nil
		}
		if c.Callee == "all" && !matched {
			return false, nil
		}
	}
	return c.Callee == "all", nil
}

func evalMathFn(ctx *Context, c *ast.CallExpression) (Value, error) {
	args, err := evalArgs(ctx, c.Args)
	if err != nil || len(args) == 0 {
		return nil, err
	}
	f, ok := toFloat(args[0])
	if !ok {
		return nil, nil
	}
	switch c.Callee {
	case "round":
		return int64(math.Round(f)), nil
	case "floor":
		return int64(math.Floor(f)), nil
	case "ceil":
		return int64(math.Ceil(f)), nil
	}
	return nil, nil
}

func evalDistributionFn(ctx *Context, c *ast.CallExpression) (Value, error) {
	args, err := evalArgs(ctx, c.Args)
	if err != nil {
		return nil, err
	}
	f := func(i int, def float64) float64 {
		if i < len(args) {
			if v, ok := toFloat(args[i]); ok {
				return v
			}
		}
		return def
	}
	switch c.Callee {
	case "gaussian", "normal":
		return ctx.RNG.Gaussian(f(0, 0), f(1, 1), nil, nil), nil
	case "exponential":
		return ctx.RNG.Exponential(f(0, 1), nil, nil), nil
	case "lognormal":
		return ctx.RNG.Lognormal(f(0, 0), f(1, 1), nil, nil), nil
	case "poisson":
		return ctx.RNG.Poisson(f(0, 1)), nil
	case "beta":
		return ctx.RNG.Beta(f(0, 1), f(1, 1)), nil
	case "uniform":
		return ctx.RNG.FloatRange(f(0, 0), f(1, 1)), nil
	}
	return nil, nil
}

func evalDateFn(ctx *Context, c *ast.CallExpression) (Value, error) {
	args, err := evalArgs(ctx, c.Args)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	switch c.Callee {
	case "now":
		return now.Format(time.RFC3339), nil
	case "today":
		return now.Format(isoDate), nil
	case "datetime":
		return now.Format(time.RFC3339), nil
	case "dateBetween":
		if len(args) != 2 {
			return nil, nil
		}
		lo, err1 := time.Parse(isoDate, asString(args[0]))
		hi, err2 := time.Parse(isoDate, asString(args[1]))
		if err1 != nil || err2 != nil || hi.Before(lo) {
			return nil, nil
		}
		days := hi.Sub(lo).Hours() / 24
		offset := int64(ctx.RNG.FloatRange(0, days))
		return lo.AddDate(0, 0, int(offset)).Format(isoDate), nil
	case "daysAgo":
		n, _ := toFloat(firstOr(args, 0))
		return now.AddDate(0, 0, -int(n)).Format(isoDate), nil
	case "daysFromNow":
		n, _ := toFloat(firstOr(args, 0))
		return now.AddDate(0, 0, int(n)).Format(isoDate), nil
	case "formatDate":
		if len(args) != 2 {
			return nil, nil
		}
		t, err := time.Parse(isoDate, asString(args[0]))
		if err != nil {
			return nil, nil
		}
		return t.Format(goLayout(asString(args[1]))), nil
	}
	return nil, nil
}

// goLayout maps a handful of common strftime-ish tokens to Go's reference
// layout; anything else is passed through as a literal Go layout string.
func goLayout(layout string) string {
	switch layout {
	case "YYYY-MM-DD":
		return "2006-01-02"
	case "MM/DD/YYYY":
		return "01/02/2006"
	}
	return layout
}

func evalStringFn(ctx *Context, c *ast.CallExpression) (Value, error) {
	args, err := evalArgs(ctx, c.Args)
	if err != nil {
		return nil, err
	}
	switch c.Callee {
	case "uppercase":
		return strings.ToUpper(asString(firstOr(args, 0))), nil
	case "lowercase":
		return strings.ToLower(asString(firstOr(args, 0))), nil
	case "capitalize":
		return inflect.Capitalize(asString(firstOr(args, 0))), nil
	case "kebabCase":
		return inflect.Dasherize(asString(firstOr(args, 0))), nil
	case "snakeCase":
		return inflect.Underscore(asString(firstOr(args, 0))), nil
	case "camelCase":
		return inflect.CamelizeDownFirst(asString(firstOr(args, 0))), nil
	case "trim":
		return strings.TrimSpace(asString(firstOr(args, 0))), nil
	case "concat":
		var b strings.Builder
		for _, a := range args {
			b.WriteString(asString(a))
		}
		return b.String(), nil
	case "length":
		if len(args) == 0 {
			return int64(0), nil
		}
		switch x := args[0].(type) {
		case string:
			return int64(len(x)), nil
		case []Value:
			return int64(len(x)), nil
		}
		return int64(0), nil
	case "substring":
		s := asString(firstOr(args, 0))
		start, _ := toFloat(firstOr(args, 1))
		length := float64(len(s))
		if len(args) > 2 {
			length, _ = toFloat(args[2])
		}
		return safeSubstring(s, int(start), int(length)), nil
	case "replace":
		if len(args) != 3 {
			return nil, nil
		}
		return strings.ReplaceAll(asString(args[0]), asString(args[1]), asString(args[2])), nil
	}
	return nil, nil
}

func safeSubstring(s string, start, length int) string {
	if start < 0 {
		start = 0
	}
	if start > len(s) {
		return ""
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	if end < start {
		end = start
	}
	return s[start:end]
}

func asString(v Value) string {
	s, _ := v.(string)
	return s
}

func firstOr(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// evalSequence implements sequence(prefix, start): a counter formatted as
// "{prefix}{n}", keyed by (schema, field, prefix) so two fields that
// happen to share a literal prefix argument count independently.
func evalSequence(ctx *Context, c *ast.CallExpression) (Value, error) {
	args, err := evalArgs(ctx, c.Args)
	if err != nil {
		return nil, err
	}
	prefix := asString(firstOr(args, 0))
	start := int64(0)
	if len(args) > 1 {
		if f, ok := toFloat(args[1]); ok {
			start = int64(f)
		}
	}
	n := ctx.seqs.Next(sequenceKey(ctx, "seq", prefix), start)
	return prefix + strconv.FormatInt(n, 10), nil
}

// sequenceKey builds a counter key scoped to the schema of the record
// presently under construction and the field whose type or computed
// expression is calling sequence()/sequenceInt(), so the same prefix or
// key literal used on two different fields never shares a counter.
func sequenceKey(ctx *Context, kind, arg string) string {
	schema := ""
	if rec := ctx.Current(); rec != nil {
		schema = rec.Schema
	}
	return kind + ":" + schema + ":" + ctx.currentField + ":" + arg
}

func evalSequenceInt(ctx *Context, c *ast.CallExpression) (Value, error) {
	args, err := evalArgs(ctx, c.Args)
	if err != nil {
		return nil, err
	}
	key := asString(firstOr(args, 0))
	return ctx.seqs.Next(sequenceKey(ctx, "int", key), 0), nil
}

// evalPrevious returns the named field from the previous record appended
// to the collection currently under construction, or nil (spec §4.4).
func evalPrevious(ctx *Context, c *ast.CallExpression) (Value, error) {
	args, err := evalArgs(ctx, c.Args)
	if err != nil || len(args) == 0 {
		return nil, err
	}
	prev := ctx.LastIn(ctx.currentCollection)
	if prev == nil {
		return nil, nil
	}
	v, _ := prev.Get(asString(args[0]))
	return v, nil
}

