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

import "github.com/mcclowes/vague-sub002/ast"

// Run drives pass 1 (register schemas, let-bindings, imports, contexts,
// distributions) followed by pass 2 (emit each dataset's collections in
// declared order) against an already-parsed program (spec §2 "Control
// flow for a compile").
func Run(ctx *Context, prog *ast.Program) error {
	var datasets []*ast.DatasetDefinition
	for _, stmt := range prog.Statements {
		switch v := stmt.(type) {
		case *ast.ImportStatement:
			ctx.Imports[v.Name] = &ImportedSchema{Name: v.Name}
		case *ast.LetStatement:
			val, err := evalExpr(ctx, v.Value)
			if err != nil {
				return err
			}
			ctx.Lets[v.Name] = val
		case *ast.SchemaDefinition:
			ctx.Schemas[v.Name] = v
		case *ast.ContextDefinition:
			ctx.Contexts[v.Name] = v
		case *ast.DistributionDefinition:
			ctx.Distributions[v.Name] = v
		case *ast.DatasetDefinition:
			datasets = append(datasets, v)
		}
	}
	for _, ds := range datasets {
		if err := runDataset(ctx, ds); err != nil {
			return err
		}
	}
	return nil
}
