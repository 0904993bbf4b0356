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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIUnreachableLandingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	warnings, errs := ValidateAPI(context.Background(), Options{
		RootURL:            server.URL,
		ConformanceClasses: []string{"core"},
	})

	require.Len(t, errs.Messages(), 1)
	assert.Contains(t, errs.Messages()[0], "unexpected status code 500")
	assert.False(t, warnings.Any())
}

func TestValidateAPIFailsFastOnBrokenLandingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type": "Catalog", "id": "x", "conformsTo": ["https://api.stacspec.org/v1.0.0/collections"]}`))
	}))
	defer server.Close()

	_, errs := ValidateAPI(context.Background(), Options{
		RootURL:            server.URL,
		ConformanceClasses: []string{"core", "collections"},
	})

	// missing links, missing core class, and no --collection set: the run
	// stops before any endpoint probing
	assert.True(t, errs.Contains("CORE-3"))
	assert.True(t, errs.Contains("CORE-4"))
}
