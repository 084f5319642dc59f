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
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// truthy is the booleanness of any Value: nil, false, 0, "", and an empty
// sequence are false; everything else is true.
func truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []Value:
		return len(x) > 0
	case *apd.Decimal:
		return x.Sign() != 0
	default:
		return true
	}
}

// toFloat coerces a numeric Value to float64 for ordering comparisons and
// distribution/math builtins.
func toFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case *apd.Decimal:
		f, err := x.Float64()
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// valueEqual compares by structural value (spec §4.4 "equality compares by
// structural value").
func valueEqual(a, b Value) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func recordsToValue(recs []*Record) []Value {
	out := make([]Value, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}

// asSequence flattens a Value that should behave as a sequence: a native
// []Value, a single Record/Reference treated as a one-element sequence, or
// nil treated as empty.
func asSequence(v Value) []Value {
	switch x := v.(type) {
	case []Value:
		return x
	case nil:
		return nil
	default:
		return []Value{x}
	}
}

func deref(v Value) Value {
	if ref, ok := v.(*Reference); ok {
		return ref.Record
	}
	return v
}
