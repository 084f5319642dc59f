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
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/mcclowes/vague-sub002/ast"
)

func weightPtr(f float64) *float64 { return &f }

func TestResolveWeightsAllUnweightedShareEqually(t *testing.T) {
	opts := []*ast.WeightedOption{{}, {}, {}}
	w := resolveWeights(opts)
	qt.Assert(t, qt.HasLen(w, 3))
	for _, x := range w {
		qt.Assert(t, qt.Equals(x, 1.0/3))
	}
}

func TestResolveWeightsExplicitPlusResidual(t *testing.T) {
	// The residual 1-0.7 is split in float64, so each share is
	// (1-0.7)/2 == 0.15000000000000002, not the literal 0.15.
	explicit := 0.7
	wantShare := (1 - explicit) / 2
	opts := []*ast.WeightedOption{
		{Weight: weightPtr(explicit)},
		{},
		{},
	}
	w := resolveWeights(opts)
	qt.Assert(t, qt.Equals(w[0], 0.7))
	qt.Assert(t, qt.Equals(w[1], wantShare))
	qt.Assert(t, qt.Equals(w[2], wantShare))
}

func TestResolveWeightsOverweightClampsResidualToZero(t *testing.T) {
	opts := []*ast.WeightedOption{
		{Weight: weightPtr(1.5)},
		{},
	}
	w := resolveWeights(opts)
	qt.Assert(t, qt.Equals(w[0], 1.5))
	qt.Assert(t, qt.Equals(w[1], 0.0))
}

func TestPickIndexRespectsCumulativeBuckets(t *testing.T) {
	weights := []float64{0.5, 0.5}
	qt.Assert(t, qt.Equals(pickIndex(weights, 0.0), 0))
	qt.Assert(t, qt.Equals(pickIndex(weights, 0.49), 0))
	qt.Assert(t, qt.Equals(pickIndex(weights, 0.51), 1))
	qt.Assert(t, qt.Equals(pickIndex(weights, 0.999), 1))
}

func TestPickIndexZeroTotalPicksLast(t *testing.T) {
	weights := []float64{0, 0}
	qt.Assert(t, qt.Equals(pickIndex(weights, 0.3), 1))
}
