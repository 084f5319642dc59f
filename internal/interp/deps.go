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

func circularDependencyErr(f *ast.FieldDefinition) *verrors.Error {
	return verrors.CircularDependency(f.Position, f.Name)
}

// identifierRefs collects every bare identifier / qualified-name base
// referenced by e, used to build the computed-field dependency graph
// (spec §4.5 "Computed dependency ordering"). It mirrors the parser's
// classifyComputed walk but returns names instead of a boolean.
func identifierRefs(e ast.Expr, out map[string]bool) {
	switch v := e.(type) {
	case *ast.Identifier:
		out[v.Name] = true
	case *ast.QualifiedNameExpr:
		out[v.Parts[0]] = true
	case *ast.BinaryExpression:
		identifierRefs(v.X, out)
		identifierRefs(v.Y, out)
	case *ast.LogicalExpression:
		identifierRefs(v.X, out)
		identifierRefs(v.Y, out)
	case *ast.NotExpression:
		identifierRefs(v.X, out)
	case *ast.UnaryExpression:
		identifierRefs(v.X, out)
	case *ast.TernaryExpression:
		identifierRefs(v.Cond, out)
		identifierRefs(v.Then, out)
		identifierRefs(v.Else, out)
	case *ast.RangeExpression:
		identifierRefs(v.Min, out)
		if v.Max != nil {
			identifierRefs(v.Max, out)
		}
	case *ast.CallExpression:
		for _, a := range v.Args {
			identifierRefs(a, out)
		}
	case *ast.MatchExpression:
		identifierRefs(v.Subject, out)
		for _, arm := range v.Arms {
			identifierRefs(arm.Value, out)
		}
	}
}

// computedOrder topologically sorts a schema's computed fields so each is
// evaluated after every other computed field it depends on. Returns an
// error carrying errors.CircularDependency on a cycle.
func computedOrder(schemaName string, fields []*ast.FieldDefinition) ([]*ast.FieldDefinition, error) {
	computed := make([]*ast.FieldDefinition, 0)
	byName := map[string]*ast.FieldDefinition{}
	for _, f := range fields {
		if f.Computed {
			computed = append(computed, f)
			byName[f.Name] = f
		}
	}
	deps := map[string][]string{}
	for _, f := range computed {
		refs := map[string]bool{}
		if f.ComputedExpr != nil {
			identifierRefs(f.ComputedExpr, refs)
		}
		for name := range refs {
			if name != f.Name {
				if _, ok := byName[name]; ok {
					deps[f.Name] = append(deps[f.Name], name)
				}
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var order []*ast.FieldDefinition
	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return fatal(circularDependencyErr(byName[name]))
		}
		color[name] = gray
		for _, dep := range deps[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[name] = black
		order = append(order, byName[name])
		return nil
	}
	for _, f := range computed {
		if err := visit(f.Name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
