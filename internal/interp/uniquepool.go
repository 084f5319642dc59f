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

import "fmt"

// uniquePool tracks used values per (schema, field), spec's UniquePool.
type uniquePool struct {
	used map[string]map[string]bool
}

func newUniquePool() *uniquePool {
	return &uniquePool{used: map[string]map[string]bool{}}
}

func poolKey(schema, field string) string { return schema + "." + field }

// Seen reports whether v has already been emitted for (schema, field).
// Values are compared by their formatted textual representation, which
// is stable across the value kinds the field generator produces.
func (p *uniquePool) Seen(schema, field string, v Value) bool {
	bucket := p.used[poolKey(schema, field)]
	if bucket == nil {
		return false
	}
	return bucket[fmt.Sprint(v)]
}

// Record marks v as emitted for (schema, field).
func (p *uniquePool) Record(schema, field string, v Value) {
	key := poolKey(schema, field)
	if p.used[key] == nil {
		p.used[key] = map[string]bool{}
	}
	p.used[key][fmt.Sprint(v)] = true
}

// sequenceCounters hold per-key integer counters backing sequence()/
// sequenceInt() (spec §4.4).
type sequenceCounters struct {
	next map[string]int64
}

func newSequenceCounters() *sequenceCounters {
	return &sequenceCounters{next: map[string]int64{}}
}

func (c *sequenceCounters) Next(key string, start int64) int64 {
	v, ok := c.next[key]
	if !ok {
		v = start
	}
	c.next[key] = v + 1
	return v
}
