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

// Package errors defines the typed, structured errors and warnings produced
// by a Vague compile, so that callers can switch on error kind instead of
// parsing free-form strings.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcclowes/vague-sub002/token"
)

// Kind classifies a fatal compile error.
type Kind string

const (
	KindLex                 Kind = "LexError"
	KindParse               Kind = "ParseError"
	KindDivisionByZero       Kind = "DivisionByZero"
	KindCircularDependency   Kind = "CircularDependency"
	KindUnknownSchemaRef     Kind = "UnknownSchemaReference"
	KindUnsupportedExpr      Kind = "UnsupportedExpression"
	KindFatal                Kind = "Fatal"
)

// Error is a single positioned, typed compile error.
type Error struct {
	Kind Kind
	Pos  token.Position
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

// Position implements the position-carrying error convention used by
// callers that want to render a caret under the offending source span.
func (e *Error) Position() token.Position { return e.Pos }

func newError(kind Kind, pos token.Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func Lex(pos token.Position, format string, args ...interface{}) *Error {
	return newError(KindLex, pos, format, args...)
}

func Parse(pos token.Position, format string, args ...interface{}) *Error {
	return newError(KindParse, pos, format, args...)
}

func DivisionByZero(pos token.Position) *Error {
	return newError(KindDivisionByZero, pos, "division by zero")
}

func CircularDependency(pos token.Position, field string) *Error {
	return newError(KindCircularDependency, pos, "circular dependency involving computed field %q", field)
}

func UnknownSchemaReference(pos token.Position, name string) *Error {
	return newError(KindUnknownSchemaRef, pos, "unknown schema %q", name)
}

func UnsupportedExpression(pos token.Position, what string) *Error {
	return newError(KindUnsupportedExpr, pos, "unsupported expression: %s", what)
}

func Fatal(pos token.Position, format string, args ...interface{}) *Error {
	return newError(KindFatal, pos, format, args...)
}

// List is a list of *Error sorted by source position before printing. It
// implements error so a batch of parse errors can be returned as one.
type List []*Error

func (l List) Error() string {
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Sort orders the list by line, then column; the filename is not compared.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Err returns nil if the list is empty, and the list itself (as an error)
// otherwise, so callers can write `return errs.Err()`.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
