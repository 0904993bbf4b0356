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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinFloats(t *testing.T) {
	assert.Equal(t, "-180,-90,180,90", joinFloats([]float64{-180, -90, 180, 90}))
	assert.Equal(t, "12.5,0.001", joinFloats([]float64{12.5, 0.001}))
	assert.Equal(t, "", joinFloats(nil))
}

func TestMethodList(t *testing.T) {
	assert.Equal(t, []string{http.MethodGet, http.MethodPost},
		methodList(map[string]bool{http.MethodGet: true, http.MethodPost: true}))
	assert.Equal(t, []string{http.MethodGet}, methodList(map[string]bool{http.MethodGet: true}))
	assert.Nil(t, methodList(map[string]bool{}))
}

func TestAnySuffix(t *testing.T) {
	values := []string{
		"https://api.stacspec.org/v1.0.0-rc.1/item-search#filter:basic-cql",
		"https://api.stacspec.org/v1.0.0/item-search",
	}
	assert.True(t, anySuffix(values, "#filter:basic-cql"))
	assert.True(t, anySuffix(values, "#filter:cql-json", "/item-search"))
	assert.False(t, anySuffix(values, "#filter:cql-text"))
	assert.False(t, anySuffix(nil, "/item-search"))
}

func TestCountLinksWithMethod(t *testing.T) {
	links := []Link{
		{Rel: "search", Method: "GET"},
		{Rel: "search", Method: "POST"},
		{Rel: "search", Method: "POST"},
		{Rel: "search"},
	}
	assert.Equal(t, 1, countLinksWithMethod(links, "GET"))
	assert.Equal(t, 2, countLinksWithMethod(links, "POST"))
	assert.Equal(t, 0, countLinksWithMethod(nil, "GET"))
}

func TestSameStringSet(t *testing.T) {
	assert.True(t, sameStringSet([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, sameStringSet([]string{"a", "a", "b"}, []string{"b", "a"}))
	assert.False(t, sameStringSet([]string{"a"}, []string{"a", "b"}))
	assert.False(t, sameStringSet([]string{"a", "c"}, []string{"a", "b"}))
	assert.True(t, sameStringSet(nil, nil))
}

func TestSetDifference(t *testing.T) {
	a := []Object{{"id": "1"}, {"id": "2"}, {"id": "2"}}
	b := []Object{{"id": "2"}, {"id": "3"}}

	diff := setDifference(a, b)
	// the second {"id": "2"} has no unmatched counterpart left in b
	assert.Equal(t, []Object{{"id": "1"}, {"id": "2"}}, diff)

	assert.Empty(t, setDifference(nil, b))
	assert.Equal(t, a, setDifference(a, nil))
}

func TestCheckSearchIDsResult(t *testing.T) {
	t.Run("only requested ids", func(t *testing.T) {
		errs := &Errors{}
		body := decodeObject(t, `{"features": [{"id": "a"}, {"id": "b"}]}`)
		checkSearchIDsResult(body, []string{"a", "b", "c"}, "GET", "ids=a,b,c", errs)
		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	})

	t.Run("unrequested id", func(t *testing.T) {
		errs := &Errors{}
		body := decodeObject(t, `{"features": [{"id": "a"}, {"id": "z"}]}`)
		checkSearchIDsResult(body, []string{"a"}, "GET", "ids=a", errs)
		assert.Contains(t, errs.String(), "items with ids other than specified one")
	})

	t.Run("missing features attribute", func(t *testing.T) {
		errs := &Errors{}
		checkSearchIDsResult(Object{"type": "FeatureCollection"}, []string{"a"}, "POST", "ids=[a]", errs)
		assert.Contains(t, errs.String(), "no 'features' attribute")
	})
}

func TestItemIntersects(t *testing.T) {
	search := map[string]any{"type": "Point", "coordinates": []any{5.0, 5.0}}

	inside := Object{"geometry": map[string]any{
		"type": "Polygon",
		"coordinates": []any{[]any{
			[]any{0.0, 0.0}, []any{10.0, 0.0}, []any{10.0, 10.0}, []any{0.0, 10.0}, []any{0.0, 0.0},
		}},
	}}
	assert.True(t, itemIntersects(search, inside))

	elsewhere := Object{"geometry": map[string]any{"type": "Point", "coordinates": []any{50.0, 50.0}}}
	assert.False(t, itemIntersects(search, elsewhere))

	assert.False(t, itemIntersects(search, Object{"geometry": nil}))
}
