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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var queryTestConfig = QueryConfig{
	ComparisonField: "eo:cloud_cover",
	EqValue:         "10",
	NeqValue:        "10",
	LtValue:         "50",
	LteValue:        "50",
	GtValue:         "5",
	GteValue:        "5",
	SubstringField:  "platform",
	StartsWithValue: "sentinel",
	EndsWithValue:   "2a",
	ContainsValue:   "tinel",
	InField:         "instruments",
	InValues:        "msi,oli",
}

// queryItem returns a single-feature response whose properties are chosen to
// satisfy the given query expression, or deliberately violate it.
func queryItem(cloudCover any, platform string, instruments []any) map[string]any {
	return map[string]any{
		"type": "FeatureCollection",
		"features": []any{map[string]any{
			"type": "Feature", "id": "item-1",
			"properties": map[string]any{
				"eo:cloud_cover": cloudCover,
				"platform":       platform,
				"instruments":    instruments,
			},
		}},
	}
}

func queryEchoServer(t *testing.T, response map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_ = json.NewEncoder(w).Encode(response)
	}))
}

func TestValidateQueryRequiresConfiguration(t *testing.T) {
	errs := &Errors{}
	validateQuery(context.Background(), NewSession("", ""), Object{}, "c", errs, &Warnings{},
		ContextItemSearchQuery, QueryConfig{})

	require.Len(t, errs.Messages(), 1)
	assert.Contains(t, errs.Messages()[0], "query configuration is not present")
}

func TestValidateQueryMatchingResults(t *testing.T) {
	// eq 10, neq via gt/lt bounds: cloud cover 10 satisfies eq/lte/gt/gte but
	// violates neq, so one error per method is expected for neq alone
	server := queryEchoServer(t, queryItem(10.0, "sentinel-2a", []any{"msi"}))
	defer server.Close()

	errs := &Errors{}
	validateQuery(context.Background(), NewSession("", ""), searchRoot(server.URL+"/search"),
		"c", errs, &Warnings{}, ContextItemSearchQuery, queryTestConfig)

	require.Len(t, errs.Messages(), 2)
	for _, msg := range errs.Messages() {
		assert.Contains(t, msg, `"neq"`)
		assert.Contains(t, msg, "non-matching results")
	}
}

func TestValidateQuerySubstringMismatch(t *testing.T) {
	server := queryEchoServer(t, queryItem(10.0, "landsat-8", []any{"msi"}))
	defer server.Close()

	config := queryTestConfig
	config.NeqValue = "99"

	errs := &Errors{}
	validateQuery(context.Background(), NewSession("", ""), searchRoot(server.URL+"/search"),
		"c", errs, &Warnings{}, ContextItemSearchQuery, config)

	// startsWith, endsWith and contains all miss, for GET and POST each
	assert.Len(t, errs.Messages(), 6)
}

func TestValidateQueryInOperator(t *testing.T) {
	t.Run("shared element matches", func(t *testing.T) {
		server := queryEchoServer(t, queryItem(10.0, "sentinel-2a", []any{"oli", "tirs"}))
		defer server.Close()

		config := queryTestConfig
		config.NeqValue = "99"

		errs := &Errors{}
		validateQuery(context.Background(), NewSession("", ""), searchRoot(server.URL+"/search"),
			"c", errs, &Warnings{}, ContextItemSearchQuery, config)

		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	})

	t.Run("disjoint arrays do not match", func(t *testing.T) {
		server := queryEchoServer(t, queryItem(10.0, "sentinel-2a", []any{"tirs"}))
		defer server.Close()

		config := queryTestConfig
		config.NeqValue = "99"

		errs := &Errors{}
		validateQuery(context.Background(), NewSession("", ""), searchRoot(server.URL+"/search"),
			"c", errs, &Warnings{}, ContextItemSearchQuery, config)

		assert.Len(t, errs.Messages(), 2)
	})
}

func TestValidateQuerySkippedOperatorsAreRecorded(t *testing.T) {
	t.Run("unconfigured operator values each record one error", func(t *testing.T) {
		config := QueryConfig{
			ComparisonField: "eo:cloud_cover",
			SubstringField:  "platform",
			InField:         "instruments",
		}

		errs := &Errors{}
		validateQuery(context.Background(), NewSession("", ""), searchRoot("http://unreachable.invalid/search"),
			"c", errs, &Warnings{}, ContextItemSearchQuery, config)

		// six comparison operators, three substring operators, and 'in'
		require.Len(t, errs.Messages(), 10)
		for _, msg := range errs.Messages() {
			assert.Contains(t, msg, "skipped")
		}
	})

	t.Run("non-numeric comparison value is an error, remaining operators still run", func(t *testing.T) {
		server := queryEchoServer(t, queryItem(10.0, "sentinel-2a", []any{"msi"}))
		defer server.Close()

		config := queryTestConfig
		config.NeqValue = "99"
		config.EqValue = "not-a-number"

		errs := &Errors{}
		validateQuery(context.Background(), NewSession("", ""), searchRoot(server.URL+"/search"),
			"c", errs, &Warnings{}, ContextItemSearchQuery, config)

		require.Len(t, errs.Messages(), 1)
		assert.Contains(t, errs.Messages()[0], "'eq' skipped")
		assert.Contains(t, errs.Messages()[0], "not numeric")
	})

	t.Run("empty substring value never passes vacuously", func(t *testing.T) {
		server := queryEchoServer(t, queryItem(10.0, "landsat-8", []any{"msi"}))
		defer server.Close()

		config := queryTestConfig
		config.NeqValue = "99"
		config.StartsWithValue = ""

		errs := &Errors{}
		validateQuery(context.Background(), NewSession("", ""), searchRoot(server.URL+"/search"),
			"c", errs, &Warnings{}, ContextItemSearchQuery, config)

		// startsWith skipped once; endsWith and contains miss on GET and POST
		require.Len(t, errs.Messages(), 5)
		assert.Contains(t, errs.Messages()[0], "'startsWith' skipped")
	})
}

func TestValidateQueryNoResults(t *testing.T) {
	server := queryEchoServer(t, map[string]any{"type": "FeatureCollection", "features": []any{}})
	defer server.Close()

	errs := &Errors{}
	validateQuery(context.Background(), NewSession("", ""), searchRoot(server.URL+"/search"),
		"c", errs, &Warnings{}, ContextItemSearchQuery, queryTestConfig)

	assert.True(t, errs.Any())
	assert.Contains(t, errs.Messages()[0], "had no results")
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{10.5, 10.5, true},
		{3, 3, true},
		{json.Number("2.5"), 2.5, true},
		{"1.25", 1.25, true},
		{"not-a-number", 0, false},
		{nil, 0, false},
		{[]any{1.0}, 0, false},
	}

	for _, tt := range tests {
		got, ok := toFloat(tt.in)
		assert.Equal(t, tt.wantOK, ok)
		if tt.wantOK {
			assert.Equal(t, tt.want, got)
		}
	}
}
