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
	"sort"
	"strconv"
)

const sortResultLimit = 100

// validateSort checks the Sort Extension: searches sorted by
// properties.datetime in both directions come back in that order, through
// both the GET prefix syntax and the POST field/direction objects.
func validateSort(ctx context.Context, s *Session, rootBody Object, collection string, errs *Errors, warnings *Warnings, scope Context) {
	searchMethodToURL := searchMethodURLs(rootBody)
	getURL, hasGet := searchMethodToURL[http.MethodGet]
	postURL, hasPost := searchMethodToURL[http.MethodPost]

	// ascending
	if hasGet {
		for _, sortby := range []string{"properties.datetime", "+properties.datetime"} {
			_, body, _ := s.Retrieve(ctx, Request{
				Method:  http.MethodGet,
				URL:     getURL,
				Params:  queryParams("sortby", sortby, "limit", strconv.Itoa(sortResultLimit), "collections", collection),
				Context: scope,
			}, errs)
			checkSortOrder(body, "GET", "'"+sortby+"'", true, scope, errs)
		}
	}

	if hasPost {
		sortbyJSON := []map[string]any{{"field": "properties.datetime", "direction": "asc"}}
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     postURL,
			Body:    map[string]any{"sortby": sortbyJSON, "limit": sortResultLimit, "collections": collection},
			Context: scope,
		}, errs)
		checkSortOrder(body, "POST", encodeSortby(sortbyJSON), true, scope, errs)
	}

	// descending
	if hasGet {
		sortby := "-properties.datetime"
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     getURL,
			Params:  queryParams("sortby", sortby, "limit", strconv.Itoa(sortResultLimit), "collections", collection),
			Context: scope,
		}, errs)
		checkSortOrder(body, "GET", "'"+sortby+"'", false, scope, errs)
	}

	if hasPost {
		sortbyJSON := []map[string]any{{"field": "properties.datetime", "direction": "desc"}}
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     postURL,
			Body:    map[string]any{"sortby": sortbyJSON, "limit": sortResultLimit, "collections": collection},
			Context: scope,
		}, errs)
		checkSortOrder(body, "POST", encodeSortby(sortbyJSON), false, scope, errs)
	}
}

func checkSortOrder(body Object, method, sortbyDesc string, ascending bool, scope Context, errs *Errors) {
	if body == nil {
		return
	}
	features := body.Features()
	if len(features) == 0 {
		errs.Recordf("[%s] : %s search with Sort %s had no results", scope, method, sortbyDesc)
		return
	}

	datetimes := make([]string, 0, len(features))
	for _, feature := range features {
		datetimes = append(datetimes, feature.Object("properties").Str("datetime"))
	}

	direction := "ascending"
	inOrder := sort.StringsAreSorted(datetimes)
	if !ascending {
		direction = "descending"
		inOrder = sort.SliceIsSorted(datetimes, func(i, j int) bool { return datetimes[i] > datetimes[j] })
	}

	if !inOrder {
		errs.Recordf("[%s] : %s search with Sort %s was not sorted in %s order", scope, method, sortbyDesc, direction)
	}
}

func encodeSortby(sortby []map[string]any) string {
	data, _ := json.Marshal(sortby)
	return "'" + string(data) + "'"
}
