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

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders prog back into re-lexable Vague source text. It is not a
// formatter (no attempt at canonical indentation choices beyond a fixed
// tab width); its only contract is the round-trip property (spec §8.9):
// Parse(Print(Parse(src))) produces a structurally equal AST.
func Print(prog *Program) string {
	var b strings.Builder
	for _, s := range prog.Statements {
		printStmt(&b, s)
		b.WriteByte('\n')
	}
	return b.String()
}

func printStmt(b *strings.Builder, s Stmt) {
	switch v := s.(type) {
	case *ImportStatement:
		fmt.Fprintf(b, "import %s from %s\n", v.Name, quote(v.Path))
	case *LetStatement:
		fmt.Fprintf(b, "let %s = %s\n", v.Name, printExpr(v.Value))
	case *SchemaDefinition:
		printSchema(b, v)
	case *ContextDefinition:
		fmt.Fprintf(b, "context %s {\n", v.Name)
		for _, f := range v.Fields {
			fmt.Fprintf(b, "\t%s\n", printField(f))
		}
		b.WriteString("}\n")
	case *DistributionDefinition:
		fmt.Fprintf(b, "distribution %s {\n", v.Name)
		for _, opt := range v.Buckets {
			fmt.Fprintf(b, "\t%s\n", printWeightedOption(opt))
		}
		b.WriteString("}\n")
	case *DatasetDefinition:
		printDataset(b, v)
	}
}

func printSchema(b *strings.Builder, v *SchemaDefinition) {
	fmt.Fprintf(b, "schema %s", v.Name)
	if v.Base != nil {
		fmt.Fprintf(b, " from %s", v.Base.String())
	}
	for _, c := range v.Contexts {
		fmt.Fprintf(b, " with %s", c)
	}
	b.WriteString(" {\n")
	for _, f := range v.Fields {
		fmt.Fprintf(b, "\t%s\n", printField(f))
	}
	for _, a := range v.Assumes {
		fmt.Fprintf(b, "\t%s\n", printAssume(a))
	}
	b.WriteString("}\n")
	if v.Refine != nil {
		b.WriteString("refine {\n")
		for _, f := range v.Refine.Fields {
			fmt.Fprintf(b, "\t%s\n", printField(f))
		}
		b.WriteString("}\n")
	}
	if v.Then != nil {
		b.WriteString("then {\n")
		for _, m := range v.Then.Mutations {
			fmt.Fprintf(b, "\t%s %s %s\n", printExpr(m.Target), m.Op, printExpr(m.Value))
		}
		b.WriteString("}\n")
	}
}

func printAssume(a *AssumeClause) string {
	var cond string
	if a.Condition != nil {
		cond = " if " + printExpr(a.Condition)
	}
	parts := make([]string, len(a.Constraints))
	for i, c := range a.Constraints {
		parts[i] = printExpr(c)
	}
	if len(parts) == 1 {
		return "assume" + cond + " " + parts[0]
	}
	return "assume" + cond + " { " + strings.Join(parts, "\n\t") + " }"
}

func printDataset(b *strings.Builder, v *DatasetDefinition) {
	fmt.Fprintf(b, "dataset %s", v.Name)
	if v.Violating {
		b.WriteString(" violating")
	}
	for _, c := range v.Contexts {
		fmt.Fprintf(b, " with %s", c)
	}
	b.WriteString(" {\n")
	for _, c := range v.Collections {
		fmt.Fprintf(b, "\t%s\n", printCollection(c))
	}
	b.WriteString("}\n")
}

func printCollection(c *CollectionDefinition) string {
	var card string
	if c.DynamicCard != nil {
		card = "(" + printExpr(c.DynamicCard) + ")"
	} else if c.Cardinality.Min == c.Cardinality.Max {
		card = strconv.FormatInt(c.Cardinality.Min, 10)
	} else {
		card = fmt.Sprintf("%d..%d", c.Cardinality.Min, c.Cardinality.Max)
	}
	s := fmt.Sprintf("%s: %s", c.Name, card)
	if c.PerParent != "" {
		s += " per " + c.PerParent
	}
	s += " of " + c.Schema.String()
	return s
}

func printField(f *FieldDefinition) string {
	var mods string
	if f.Unique {
		mods += "unique "
	}
	if f.Private {
		mods += "private "
	}
	s := fmt.Sprintf("%s: %s%s", f.Name, mods, printFieldType(f.Type))
	if f.Optional {
		s += "?"
	}
	if f.When != nil {
		s += " when " + printExpr(f.When)
	}
	if f.Distribution != nil {
		s += " ~ " + printExpr(f.Distribution)
	}
	if f.Where != nil {
		s += " where " + printExpr(f.Where)
	}
	return s
}

func printFieldType(t FieldType) string {
	switch v := t.(type) {
	case *PrimitiveType:
		return v.Name
	case *RangeType:
		if v.Max == nil {
			return fmt.Sprintf("%s in %s..", v.Base, printExpr(v.Min))
		}
		return fmt.Sprintf("%s in %s..%s", v.Base, printExpr(v.Min), printExpr(v.Max))
	case *CollectionType:
		var card string
		if v.Dynamic != nil {
			card = "(" + printExpr(v.Dynamic) + ")"
		} else if v.Static.Min == v.Static.Max {
			card = strconv.FormatInt(v.Static.Min, 10)
		} else {
			card = fmt.Sprintf("%d..%d", v.Static.Min, v.Static.Max)
		}
		s := card
		if v.PerParent != "" {
			s += " per " + v.PerParent
		}
		return s + " of " + printFieldType(v.ElementType)
	case *SuperpositionType:
		parts := make([]string, len(v.Options))
		for i, o := range v.Options {
			parts[i] = printWeightedOption(o)
		}
		return strings.Join(parts, " | ")
	case *ReferenceType:
		return v.Name.String()
	case *GeneratorType:
		return v.Name + "(" + joinExprs(v.Args) + ")"
	case *ExpressionType:
		return printExpr(v.Expr)
	case *OrderedSequenceType:
		return "[" + joinExprs(v.Elements) + "]"
	}
	return ""
}

func printWeightedOption(o *WeightedOption) string {
	if o.Weight != nil {
		return fmt.Sprintf("%s: %s", strconv.FormatFloat(*o.Weight, 'g', -1, 64), printExpr(o.Value))
	}
	return printExpr(o.Value)
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = printExpr(e)
	}
	return strings.Join(parts, ", ")
}

func printExpr(e Expr) string {
	switch v := e.(type) {
	case *Literal:
		switch v.Kind.String() {
		case "STRING":
			return quote(v.Raw)
		default:
			if v.Raw != "" {
				return v.Raw
			}
			return v.Kind.String()
		}
	case *Identifier:
		return v.Name
	case *QualifiedNameExpr:
		return v.String()
	case *BinaryExpression:
		return fmt.Sprintf("%s %s %s", printExpr(v.X), v.Op, printExpr(v.Y))
	case *LogicalExpression:
		return fmt.Sprintf("%s %s %s", printExpr(v.X), v.Op, printExpr(v.Y))
	case *NotExpression:
		return "not " + printExpr(v.X)
	case *UnaryExpression:
		return v.Op.String() + printExpr(v.X)
	case *TernaryExpression:
		return fmt.Sprintf("%s ? %s : %s", printExpr(v.Cond), printExpr(v.Then), printExpr(v.Else))
	case *RangeExpression:
		if v.Max == nil {
			return printExpr(v.Min) + ".."
		}
		return printExpr(v.Min) + ".." + printExpr(v.Max)
	case *SuperpositionExpression:
		parts := make([]string, len(v.Options))
		for i, o := range v.Options {
			parts[i] = printWeightedOption(o)
		}
		return strings.Join(parts, " | ")
	case *AnyOfExpression:
		s := "any of " + v.Collection.String()
		if v.Where != nil {
			s += " where " + printExpr(v.Where)
		}
		return s
	case *ParentReference:
		return "^" + strings.Join(v.Path, ".")
	case *MatchExpression:
		var b strings.Builder
		fmt.Fprintf(&b, "match %s { ", printExpr(v.Subject))
		for i, arm := range v.Arms {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s => %s", printExpr(arm.Pattern), printExpr(arm.Value))
		}
		b.WriteString(" }")
		return b.String()
	case *CallExpression:
		return v.Callee + "(" + joinExprs(v.Args) + ")"
	case *OrderedSequence:
		return "[" + joinExprs(v.Elements) + "]"
	}
	return ""
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
