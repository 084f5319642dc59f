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

// resolveWeights assigns an effective weight to every option: explicit
// weights are kept, and the unweighted remainder shares the residual
// (1 - sum(explicit)) equally, or uniform shares of 1 if no option
// carries a weight at all (spec §4.5 SuperpositionType).
func resolveWeights(opts []*ast.WeightedOption) []float64 {
	var explicitSum float64
	unweighted := 0
	for _, o := range opts {
		if o.Weight != nil {
			explicitSum += *o.Weight
		} else {
			unweighted++
		}
	}
	weights := make([]float64, len(opts))
	if unweighted == len(opts) {
		share := 1.0 / float64(len(opts))
		for i := range opts {
			weights[i] = share
		}
		return weights
	}
	residual := 1 - explicitSum
	if residual < 0 {
		residual = 0
	}
	share := 0.0
	if unweighted > 0 {
		share = residual / float64(unweighted)
	}
	for i, o := range opts {
		if o.Weight != nil {
			weights[i] = *o.Weight
		} else {
			weights[i] = share
		}
	}
	return weights
}

// pickIndex draws an index from weights using u, a uniform [0,1) draw.
func pickIndex(weights []float64, u float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return len(weights) - 1
	}
	target := u * total
	var running float64
	for i, w := range weights {
		running += w
		if target < running {
			return i
		}
	}
	return len(weights) - 1
}
