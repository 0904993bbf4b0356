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
)

const openAPIType = "application/vnd.oai.openapi+json;version=3.0"

func coreServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", openAPIType)
		_, _ = w.Write([]byte(`{"openapi": "3.0.3", "info": {"title": "t", "version": "1"}, "paths": {}}`))
	})
	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})
	return httptest.NewServer(mux)
}

func coreRoot(serverURL string) Object {
	return Object{
		"type": "Catalog", "id": "example",
		"links": []any{
			map[string]any{"rel": "root", "href": serverURL, "type": "application/json"},
			map[string]any{"rel": "self", "href": serverURL, "type": "application/json"},
			map[string]any{"rel": "service-desc", "href": serverURL + "/api", "type": openAPIType},
			map[string]any{"rel": "service-doc", "href": serverURL + "/docs", "type": "text/html"},
		},
	}
}

func TestValidateCore(t *testing.T) {
	t.Run("compliant landing page", func(t *testing.T) {
		server := coreServer(t)
		defer server.Close()

		errs := &Errors{}
		warnings := &Warnings{}
		validateCore(context.Background(), NewSession("", ""), coreRoot(server.URL), errs, warnings)

		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
		assert.False(t, warnings.Any(), "unexpected warnings: %s", warnings)
	})

	t.Run("missing link relations", func(t *testing.T) {
		server := coreServer(t)
		defer server.Close()

		errs := &Errors{}
		warnings := &Warnings{}
		validateCore(context.Background(), NewSession("", ""), Object{"type": "Catalog", "id": "x"}, errs, warnings)

		assert.Contains(t, errs.String(), "'links' attribute missing")
		assert.Contains(t, errs.String(), "Link[rel=root] must exist")
		assert.Contains(t, errs.String(), "Link[rel=service-desc] must exist")
		assert.Contains(t, warnings.String(), "Link[rel=self] must exist")
		assert.Contains(t, warnings.String(), "Link[rel=service-doc] should exist")
	})

	t.Run("root link with wrong type", func(t *testing.T) {
		server := coreServer(t)
		defer server.Close()

		root := coreRoot(server.URL)
		root["links"].([]any)[0].(map[string]any)["type"] = "text/html"

		errs := &Errors{}
		validateCore(context.Background(), NewSession("", ""), root, errs, &Warnings{})

		assert.Contains(t, errs.String(), "Link[rel=root] type is not application/json")
	})
}

func TestValidateServiceDesc(t *testing.T) {
	t.Run("content type must round-trip", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		errs := &Errors{}
		links := []Link{{Rel: "service-desc", Href: server.URL, Type: openAPIType}}
		validateServiceDesc(context.Background(), NewSession("", ""), links, errs)

		assert.Contains(t, errs.String(), "must get response with same Content-Type header")
	})

	t.Run("parameter differences are tolerated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/vnd.oai.openapi+json;version=3.1")
			_, _ = w.Write([]byte(`{"openapi": "3.1.0"}`))
		}))
		defer server.Close()

		errs := &Errors{}
		links := []Link{{Rel: "service-desc", Href: server.URL, Type: "application/vnd.oai.openapi+json"}}
		validateServiceDesc(context.Background(), NewSession("", ""), links, errs)

		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	})

	t.Run("openapi body must parse", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"unbalanced": `))
		}))
		defer server.Close()

		errs := &Errors{}
		links := []Link{{Rel: "service-desc", Href: server.URL, Type: "application/json"}}
		validateServiceDesc(context.Background(), NewSession("", ""), links, errs)

		assert.Contains(t, errs.String(), "does not parse as an OpenAPI document")
	})

	t.Run("missing type", func(t *testing.T) {
		errs := &Errors{}
		validateServiceDesc(context.Background(), NewSession("", ""), []Link{{Rel: "service-desc", Href: "https://a/api"}}, errs)
		assert.Contains(t, errs.String(), "must have a type defined")
	})
}
