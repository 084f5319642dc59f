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

package registry

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"

	"github.com/mcclowes/vague-sub002/internal/rng"
)

// builtinGenerators returns the always-available named generators (spec §7):
// identity (uuid, drawn from the compile's seeded source), string-case
// transforms (wired to go-openapi/inflect, matching the teacher pack's only
// string-casing dependency), a small locality-free name/email/lorem
// word-bank generator (no example repo in the pack imports a dedicated
// fake-data library, so this one corner is hand-rolled over stdlib
// text/word banks), and date helpers.
func builtinGenerators() map[string]GeneratorFunc {
	return map[string]GeneratorFunc{
		"uuid": func(r *rng.Source, fieldName string, args []any) (any, error) {
			var b [16]byte
			for i := range b {
				b[i] = byte(r.IntRange(0, 255))
			}
			id, err := uuid.NewRandomFromReader(bytes.NewReader(b[:]))
			if err != nil {
				return nil, err
			}
			return id.String(), nil
		},

		"strings.camelCase": stringArg(func(s string) string { return inflect.CamelizeDownFirst(s) }),
		"strings.pascalCase": stringArg(func(s string) string { return inflect.Camelize(s) }),
		"strings.snakeCase":  stringArg(func(s string) string { return inflect.Underscore(s) }),
		"strings.kebabCase":  stringArg(func(s string) string { return inflect.Dasherize(s) }),
		"strings.capitalize": stringArg(func(s string) string { return inflect.Capitalize(s) }),
		"strings.upper":      stringArg(strings.ToUpper),
		"strings.lower":      stringArg(strings.ToLower),

		"faker.firstName": func(r *rng.Source, fieldName string, args []any) (any, error) {
			return firstNames[r.Choice(len(firstNames))], nil
		},
		"faker.lastName": func(r *rng.Source, fieldName string, args []any) (any, error) {
			return lastNames[r.Choice(len(lastNames))], nil
		},
		"faker.name": func(r *rng.Source, fieldName string, args []any) (any, error) {
			return firstNames[r.Choice(len(firstNames))] + " " + lastNames[r.Choice(len(lastNames))], nil
		},
		"faker.email": func(r *rng.Source, fieldName string, args []any) (any, error) {
			local := inflect.Underscore(firstNames[r.Choice(len(firstNames))] + lastNames[r.Choice(len(lastNames))])
			domain := emailDomains[r.Choice(len(emailDomains))]
			return fmt.Sprintf("%s@%s", local, domain), nil
		},
		"faker.companyName": func(r *rng.Source, fieldName string, args []any) (any, error) {
			return lastNames[r.Choice(len(lastNames))] + " " + companySuffixes[r.Choice(len(companySuffixes))], nil
		},

		"lorem.word": func(r *rng.Source, fieldName string, args []any) (any, error) {
			return loremWords[r.Choice(len(loremWords))], nil
		},
		"lorem.sentence": func(r *rng.Source, fieldName string, args []any) (any, error) {
			return loremSentence(r), nil
		},
		"lorem.paragraph": func(r *rng.Source, fieldName string, args []any) (any, error) {
			n := 3 + int(r.IntRange(0, 3))
			sentences := make([]string, n)
			for i := range sentences {
				sentences[i] = loremSentence(r)
			}
			return strings.Join(sentences, " "), nil
		},

		"dates.weekday": func(r *rng.Source, fieldName string, args []any) (any, error) {
			return time.Weekday(r.Choice(7)).String(), nil
		},
		"dates.today": func(r *rng.Source, fieldName string, args []any) (any, error) {
			return time.Now().UTC().Format("2006-01-02"), nil
		},
	}
}

func loremSentence(r *rng.Source) string {
	n := 6 + int(r.IntRange(0, 6))
	words := make([]string, n)
	for i := range words {
		words[i] = loremWords[r.Choice(len(loremWords))]
	}
	s := strings.Join(words, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func stringArg(transform func(string) string) GeneratorFunc {
	return func(r *rng.Source, fieldName string, args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("expected a string argument, got %T", args[0])
		}
		return transform(s), nil
	}
}

var firstNames = []string{
	"Alice", "Bob", "Carla", "Dmitri", "Elena", "Farid", "Grace", "Hassan",
	"Ines", "Jun", "Keiko", "Liam", "Mira", "Noah", "Olga", "Priya",
	"Quentin", "Rosa", "Sven", "Tara",
}

var lastNames = []string{
	"Anderson", "Baptiste", "Chen", "Dubois", "Eriksson", "Fischer",
	"Garcia", "Haddad", "Ivanov", "Jensen", "Kowalski", "Lindqvist",
	"Moreau", "Nakamura", "Okafor", "Petrov", "Quintero", "Ruiz",
	"Sato", "Tanaka",
}

var emailDomains = []string{"example.com", "example.org", "example.net", "mail.example"}

var companySuffixes = []string{"Inc", "LLC", "Group", "Holdings", "Partners", "Labs"}

var loremWords = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing",
	"elit", "sed", "do", "eiusmod", "tempor", "incididunt", "ut", "labore",
	"et", "dolore", "magna", "aliqua", "enim", "ad", "minim", "veniam",
	"quis", "nostrud", "exercitation", "ullamco", "laboris", "nisi",
}
