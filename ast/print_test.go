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

package ast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	astpkg "github.com/mcclowes/vague-sub002/ast"
	"github.com/mcclowes/vague-sub002/parser"
	"github.com/mcclowes/vague-sub002/token"
)

// parseOpts ignores source positions, which necessarily differ between a
// hand-written snippet and its re-lexed Print output.
var parseOpts = cmpopts.IgnoreTypes(token.Position{})

func reparse(t *testing.T, src string) *astpkg.Program {
	t.Helper()
	prog, err := parser.Parse("t.vg", []byte(src), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func assertRoundTrips(t *testing.T, src string) {
	t.Helper()
	first := reparse(t, src)
	printed := astpkg.Print(first)
	second := reparse(t, printed)
	if diff := cmp.Diff(first, second, parseOpts); diff != "" {
		t.Errorf("Parse(Print(Parse(src))) mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintRoundTripsSimpleSchema(t *testing.T) {
	assertRoundTrips(t, `
schema User {
  id: uuid()
  age: int in 18..65
  name: string
}
`)
}

func TestPrintRoundTripsDatasetWithCollections(t *testing.T) {
	assertRoundTrips(t, `
schema User {
  age: int in 18..65
}

dataset demo {
  users: 5 of User
}
`)
}

func TestPrintRoundTripsConstraintsAndRefine(t *testing.T) {
	assertRoundTrips(t, `
schema Adult {
  age: int in 0..100
  assume {
    age >= 18
  }
}
refine {
  tag: string when age > 50
}
`)
}

func TestPrintRoundTripsLetAndImport(t *testing.T) {
	assertRoundTrips(t, `
import ns from "schemas/ns.json"

let maxAge = 65

schema User {
  age: int in 18..maxAge
}
`)
}
