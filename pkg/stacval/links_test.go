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
	"github.com/stretchr/testify/require"
)

func TestLinksDecode(t *testing.T) {
	body := decodeObject(t, `{
		"links": [
			{"rel": "self", "href": "https://stac.example.com", "type": "application/json"},
			{"rel": "search", "href": "https://stac.example.com/search", "method": "POST",
			 "body": {"limit": 1}, "merge": true},
			"not-an-object"
		]
	}`)

	links := body.Links()
	require.Len(t, links, 2)
	assert.Equal(t, "self", links[0].Rel)
	assert.Equal(t, http.MethodGet, links[0].MethodOrGet())
	assert.Equal(t, http.MethodPost, links[1].MethodOrGet())
	assert.True(t, links[1].Merge)
	assert.Equal(t, map[string]any{"limit": float64(1)}, links[1].Body)
}

func TestLinkByRel(t *testing.T) {
	links := []Link{
		{Rel: "search", Href: "https://a/search", Method: "GET"},
		{Rel: "search", Href: "https://a/search", Method: "POST"},
		{Rel: "root", Href: "https://a"},
	}

	root := LinkByRel(links, "root")
	require.NotNil(t, root)
	assert.Equal(t, "https://a", root.Href)

	assert.Nil(t, LinkByRel(links, "child"))
	assert.Nil(t, LinkByRel(nil, "root"))

	assert.Len(t, LinksByRel(links, "search"), 2)
	assert.Empty(t, LinksByRel(links, "items"))
}

func TestMediaTypeChecks(t *testing.T) {
	assert.True(t, IsJSONType("application/json"))
	assert.True(t, IsJSONType("application/json; charset=utf-8"))
	assert.False(t, IsJSONType("application/geo+json"))
	assert.False(t, IsJSONType("text/json"))

	assert.True(t, IsGeoJSONType("application/geo+json"))
	assert.True(t, IsGeoJSONType("application/geo+json;charset=utf-8"))
	assert.False(t, IsGeoJSONType("application/json"))
}

func TestHasContentType(t *testing.T) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/geo+json; charset=utf-8")

	assert.True(t, HasContentType(headers, "application/geo+json"))
	assert.False(t, HasContentType(headers, "application/json"))
	assert.False(t, HasContentType(http.Header{}, "application/json"))
}
