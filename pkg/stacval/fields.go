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
	"fmt"
	"net/http"
	"strings"
)

// defaultFieldSet is what a response item must carry when the fields
// parameter is empty: these plus properties.datetime (or the
// start_datetime/end_datetime pair).
var defaultFieldSet = []string{"type", "stac_version", "id", "geometry", "bbox", "links", "assets"}

// validateFields checks the Fields Extension: the default field set for
// empty fields values, include and exclude behavior for each default field,
// nested property selection, and that include wins when a field appears in
// both.
func validateFields(ctx context.Context, s *Session, rootBody Object, collection string, errs *Errors, warnings *Warnings, scope Context, fieldsNestedProperty string) {
	if fieldsNestedProperty == "" {
		errs.Recordf("[%s] : cannot validate Fields Extension because --fields-nested-property is not set", scope)
		return
	}

	searchMethodToURL := searchMethodURLs(rootBody)
	getURL, hasGet := searchMethodToURL[http.MethodGet]
	postURL, hasPost := searchMethodToURL[http.MethodPost]

	// an empty fields value must reduce the item to the default field set
	if hasGet {
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     getURL,
			Params:  queryParams("fields", "", "limit", "1", "collections", collection),
			Context: scope,
		}, errs)
		checkDefaultFields(body.FirstFeature(), "GET with empty 'fields' value", scope, errs)
	}

	if hasPost {
		s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     postURL,
			Body:    map[string]any{"fields": nil},
			Status:  http.StatusBadRequest,
			Context: scope,
		}, errs)

		postDefaultCases := []struct {
			fields any
			desc   string
		}{
			{map[string]any{}, "empty 'fields' object value"},
			{map[string]any{"include": nil, "exclude": nil}, "null values for include and exclude"},
			{map[string]any{"include": []any{}, "exclude": []any{}}, "empty arrays for include and exclude"},
		}
		for _, c := range postDefaultCases {
			_, body, _ := s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     postURL,
				Body:    map[string]any{"fields": c.fields, "limit": 1, "collections": []string{collection}},
				Context: scope,
			}, errs)
			checkDefaultFields(body.FirstFeature(), "POST with "+c.desc, scope, errs)
		}
	}

	// include of a single field, with and without the leading '+' for GET
	if hasGet {
		for _, field := range defaultFieldSet {
			for _, param := range []string{field, "+" + field} {
				_, body, _ := s.Retrieve(ctx, Request{
					Method:  http.MethodGet,
					URL:     getURL,
					Params:  queryParams("fields", param, "limit", "1", "collections", collection),
					Context: scope,
				}, errs)
				desc := fmt.Sprintf("GET fields='%s'", param)
				checkIncludedField(body, desc, field, scope, errs, warnings, false)
			}
		}
	}

	if hasPost {
		for _, field := range defaultFieldSet {
			_, body, _ := s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     postURL,
				Body:    map[string]any{"fields": map[string]any{"include": []string{field}}, "limit": 1, "collections": []string{collection}},
				Context: scope,
			}, errs)
			desc := fmt.Sprintf("POST fields include ['%s']", field)
			checkIncludedField(body, desc, field, scope, errs, warnings, false)
		}
	}

	// exclude of a single field keeps everything else
	if hasGet {
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     getURL,
			Params:  queryParams("fields", "-geometry", "limit", "1", "collections", collection),
			Context: scope,
		}, errs)
		desc := "GET fields='-geometry'"
		checkExcludedField(body, desc, "geometry", scope, errs, true)
		checkIncludedField(body, desc, "id", scope, errs, warnings, true)
		checkIncludedField(body, desc, "assets", scope, errs, warnings, true)
	}

	if hasPost {
		excludeVariants := []map[string]any{
			{"exclude": []string{"geometry"}},
			{"exclude": []string{"geometry"}, "include": []any{}},
			{"exclude": []string{"geometry"}, "include": nil},
		}
		for _, fields := range excludeVariants {
			_, body, _ := s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     postURL,
				Body:    map[string]any{"fields": fields, "limit": 1, "collections": []string{collection}},
				Context: scope,
			}, errs)
			desc := fmt.Sprintf("POST fields %v", fields)
			checkExcludedField(body, desc, "geometry", scope, errs, true)
			checkIncludedField(body, desc, "id", scope, errs, warnings, true)
			checkIncludedField(body, desc, "assets", scope, errs, warnings, true)
		}
	}

	// nested property selection
	if hasGet {
		param := "-properties,+" + fieldsNestedProperty
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     getURL,
			Params:  queryParams("fields", param, "limit", "1", "collections", collection),
			Context: scope,
		}, errs)
		desc := fmt.Sprintf("GET fields='%s'", param)
		checkIncludedField(body, desc, fieldsNestedProperty, scope, errs, warnings, true)
	}

	if hasPost {
		fields := map[string]any{"exclude": []string{"properties"}, "include": []string{fieldsNestedProperty}}
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     postURL,
			Body:    map[string]any{"fields": fields, "limit": 1, "collections": []string{collection}},
			Context: scope,
		}, errs)
		desc := fmt.Sprintf("POST fields %v", fields)
		checkExcludedField(body, desc, "geometry", scope, errs, true)
		checkIncludedField(body, desc, fieldsNestedProperty, scope, errs, warnings, false)
	}

	// a field in both include and exclude must be included
	if hasGet {
		param := "+geometry,-geometry"
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     getURL,
			Params:  queryParams("fields", param, "limit", "1", "collections", collection),
			Context: scope,
		}, errs)
		checkIncludedField(body, fmt.Sprintf("GET fields='%s'", param), "geometry", scope, errs, warnings, false)
	}

	if hasPost {
		fields := map[string]any{"exclude": []string{"geometry"}, "include": []string{"geometry"}}
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     postURL,
			Body:    map[string]any{"fields": fields, "limit": 1, "collections": []string{collection}},
			Context: scope,
		}, errs)
		checkIncludedField(body, fmt.Sprintf("POST fields %v", fields), "geometry", scope, errs, warnings, false)
	}
}

// checkDefaultFields verifies the item carries exactly the recommended
// default field set.
func checkDefaultFields(item Object, desc string, scope Context, errs *Errors) {
	if item == nil {
		errs.Recordf("[%s] : response had no items in response for '%s'", scope, desc)
		return
	}
	for _, field := range defaultFieldSet {
		if !item.Has(field) {
			errs.Recordf("[%s] : %s response missing '%s'", scope, desc, field)
		}
	}
	properties := item.Object("properties")
	if properties.Str("datetime") == "" &&
		!(properties.Str("start_datetime") != "" && properties.Str("end_datetime") != "") {
		errs.Recordf("[%s] : %s response does not have either 'properties.datetime' or (properties.start_datetime and properties.end_datetime)", scope, desc)
	}
}

func checkIncludedField(body Object, desc, field string, scope Context, errs *Errors, warnings *Warnings, allowExtra bool) {
	item := body.FirstFeature()
	if item == nil {
		errs.Recordf("[%s] : response had no items in response for %s", scope, desc)
		return
	}

	field = strings.TrimPrefix(field, "+")
	value, found := item.ValueAtPath(field)
	if !found || value == nil {
		errs.Recordf("[%s] : %s response missing '%s'", scope, desc, field)
	}

	if !allowExtra {
		if len(item) > 5 {
			errs.Recordf("[%s] : %s response contained more than 5 extra fields %v", scope, desc, fieldNames(item))
		}
		rest := make(Object, len(item))
		for k, v := range item {
			rest[k] = v
		}
		delete(rest, strings.SplitN(field, ".", 2)[0])
		if len(rest) > 0 {
			warnings.Recordf("[%s] : %s response contained extra fields %v", scope, desc, fieldNames(rest))
		}
	}
}

func checkExcludedField(body Object, desc, field string, scope Context, errs *Errors, disallowExtra bool) {
	item := body.FirstFeature()
	if item == nil {
		errs.Recordf("[%s] : response had no items in response for %s", scope, desc)
		return
	}

	value, found := item.ValueAtPath(field)
	if found && value != nil {
		errs.Recordf("[%s] : %s response contained '%s', but should have been excluded", scope, desc, field)
	}

	if disallowExtra && len(item) < 5 {
		errs.Recordf("[%s] : %s response contained fewer than 5 fields %v", scope, desc, fieldNames(item))
	}
}

func fieldNames(item Object) []string {
	names := make([]string, 0, len(item))
	for name := range item {
		names = append(names, name)
	}
	return names
}
