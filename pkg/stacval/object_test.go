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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeObject(t *testing.T, raw string) Object {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return Object(m)
}

func TestObjectAccessorsTolerateMissingAndMistypedMembers(t *testing.T) {
	body := decodeObject(t, `{
		"id": "sentinel-2-l2a",
		"number": 42,
		"conformsTo": ["a", 1, "b"],
		"bbox": [1.0, 2.0, 3.0, 4.0],
		"properties": {"datetime": "2023-04-23T06:47:03Z"}
	}`)

	assert.Equal(t, "sentinel-2-l2a", body.Str("id"))
	assert.Equal(t, "", body.Str("number"))
	assert.Equal(t, "", body.Str("missing"))

	assert.Equal(t, []string{"a", "b"}, body.Strings("conformsTo"))
	assert.Nil(t, body.Strings("id"))

	assert.Equal(t, []float64{1, 2, 3, 4}, body.Floats("bbox"))

	f, ok := body.Float("number")
	assert.True(t, ok)
	assert.Equal(t, 42.0, f)
	_, ok = body.Float("id")
	assert.False(t, ok)

	assert.Equal(t, "2023-04-23T06:47:03Z", body.Object("properties").Str("datetime"))
	assert.Nil(t, body.Object("id"))
}

func TestObjectHasTreatsNullAsAbsent(t *testing.T) {
	body := decodeObject(t, `{"geometry": null, "id": "x"}`)
	assert.False(t, body.Has("geometry"))
	assert.True(t, body.Has("id"))
	assert.False(t, body.Has("missing"))
}

func TestObjectValueAtPath(t *testing.T) {
	body := decodeObject(t, `{"properties": {"eo:cloud_cover": 0.5, "nested": {"deep": "v"}}}`)

	v, ok := body.ValueAtPath("properties.eo:cloud_cover")
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)

	v, ok = body.ValueAtPath("properties.nested.deep")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = body.ValueAtPath("properties.missing")
	assert.False(t, ok)
	_, ok = body.ValueAtPath("missing.deep")
	assert.False(t, ok)
}

func TestObjectFeatures(t *testing.T) {
	body := decodeObject(t, `{"features": [{"id": "a"}, {"id": "b"}]}`)
	features := body.Features()
	assert.Len(t, features, 2)
	assert.Equal(t, "a", body.FirstFeature().Str("id"))

	var nilBody Object
	assert.Nil(t, nilBody.Features())
	assert.Nil(t, nilBody.FirstFeature())
}
