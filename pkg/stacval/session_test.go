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

func TestRetrieveDecodesJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "example"}`))
	}))
	defer server.Close()

	errs := &Errors{}
	status, body, headers := NewSession("", "").Retrieve(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     server.URL,
		Context: ContextCore,
	}, errs)

	assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, body)
	assert.Equal(t, "example", body.Str("id"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestRetrieveUnexpectedStatusRecordsOneError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	errs := &Errors{}
	status, body, _ := NewSession("", "").Retrieve(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     server.URL,
		Context: ContextCore,
		Note:    "probing landing page",
	}, errs)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Nil(t, body)
	require.Len(t, errs.Messages(), 1)
	assert.Contains(t, errs.Messages()[0], "unexpected status code 500 instead of 200")
	assert.Contains(t, errs.Messages()[0], "probing landing page")
}

func TestRetrieveExpectedErrorStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	errs := &Errors{}
	status, _, _ := NewSession("", "").Retrieve(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     server.URL,
		Status:  http.StatusBadRequest,
		Context: ContextItemSearch,
	}, errs)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, errs.Any(), "unexpected errors: %s", errs)
}

func TestRetrieveSearchEndpointExpectsGeoJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type": "FeatureCollection", "features": []}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	errs := &Errors{}
	NewSession("", "").Retrieve(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     server.URL + "/search",
		Context: ContextItemSearch,
	}, errs)

	require.Len(t, errs.Messages(), 1)
	assert.Contains(t, errs.Messages()[0], "instead of 'application/geo+json'")
}

func TestRetrieveContentTypeAbsent(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErrors  int
	}{
		{"no content type", "", 0},
		{"unexpected content type", "application/json", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			errs := &Errors{}
			NewSession("", "").Retrieve(context.Background(), Request{
				Method:      http.MethodDelete,
				URL:         server.URL,
				Status:      http.StatusNoContent,
				ContentType: ContentTypeAbsent,
				Context:     ContextFeaturesTxn,
			}, errs)

			assert.Len(t, errs.Messages(), tt.wantErrors)
		})
	}
}

func TestSessionAppliesAuth(t *testing.T) {
	var gotAuth, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotToken = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	errs := &Errors{}
	NewSession("secret", "api_key=opensesame").Retrieve(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     server.URL,
		Context: ContextCore,
	}, errs)

	assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "opensesame", gotToken)
}

func TestRetrievePostSendsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody Object
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		gotBody = Object(m)
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(`{"type": "FeatureCollection", "features": []}`))
	}))
	defer server.Close()

	errs := &Errors{}
	NewSession("", "").Retrieve(context.Background(), Request{
		Method:  http.MethodPost,
		URL:     server.URL + "/search",
		Body:    map[string]any{"limit": 1, "collections": []string{"c"}},
		Context: ContextItemSearch,
	}, errs)

	assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, []string{"c"}, gotBody.Strings("collections"))
}
