//go:build unit

/*
 * @license
 * Copyright 2023 Dynatrace LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package stacval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func polygon(coords ...[]float64) map[string]any {
	ring := make([]any, 0, len(coords))
	for _, c := range coords {
		ring = append(ring, []any{c[0], c[1]})
	}
	return map[string]any{"type": "Polygon", "coordinates": []any{ring}}
}

func TestGeometriesIntersect(t *testing.T) {
	square := polygon([]float64{0, 0}, []float64{10, 0}, []float64{10, 10}, []float64{0, 10}, []float64{0, 0})
	overlapping := polygon([]float64{5, 5}, []float64{15, 5}, []float64{15, 15}, []float64{5, 15}, []float64{5, 5})
	disjoint := polygon([]float64{20, 20}, []float64{30, 20}, []float64{30, 30}, []float64{20, 30}, []float64{20, 20})
	point := map[string]any{"type": "Point", "coordinates": []any{1.0, 1.0}}

	got, err := geometriesIntersect(square, overlapping)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = geometriesIntersect(square, disjoint)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = geometriesIntersect(square, point)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestGeometriesIntersectRejectsMalformedGeometry(t *testing.T) {
	square := polygon([]float64{0, 0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1}, []float64{0, 0})

	_, err := geometriesIntersect(map[string]any{"type": "Nonsense"}, square)
	assert.Error(t, err)
}
