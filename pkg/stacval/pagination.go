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
	"slices"
)

// paginationMaxItems bounds the number of items collected while following
// next links.
const paginationMaxItems = 100

type paginationCheck struct {
	rootURL    string
	searchURL  string
	collection string
	geometry   string
	methods    []string
	context    Context
}

// validateItemPagination checks the next link relation semantics of the
// search or items endpoint: the next link's method and href, the body merge
// flag for POST, and that paginating neither loops nor returns duplicates.
func validateItemPagination(ctx context.Context, s *Session, check paginationCheck, errs *Errors) {
	firstURL := check.searchURL + "?limit=1"
	if check.collection != "" {
		firstURL += "&collections=" + check.collection
	}

	_, firstBody, _ := s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         firstURL,
		ContentType: mediaTypeGeoJSON,
		Context:     check.context,
		Note:        "pagination get failed for initial request",
	}, errs)

	if firstBody != nil {
		next := LinkByRel(firstBody.Links(), "next")
		if next == nil {
			errs.Recordf("[%s] GET pagination first request had no 'next' link relation", check.context)
		} else {
			if next.Method != "" && next.Method != http.MethodGet {
				errs.Recordf("[%s] GET pagination first request 'next' link relation has method %s instead of 'GET'", check.context, next.Method)
			}
			if next.Href == "" {
				errs.Recordf("[%s] GET pagination first request 'next' link relation missing href", check.context)
			} else {
				if firstURL == next.Href {
					errs.Recordf("[%s] GET pagination next href same as first url", check.context)
				}
				s.Retrieve(ctx, Request{
					Method:      http.MethodGet,
					URL:         next.Href,
					ContentType: mediaTypeGeoJSON,
					Context:     check.context,
					Note:        "pagination get failed for next url",
				}, errs)
			}
		}
	}

	if check.collection != "" {
		paginateAndCheck(ctx, s, check, http.MethodGet, errs)
	}

	if slices.Contains(check.methods, http.MethodPost) {
		initialBody := map[string]any{"limit": 1, "collections": []string{check.collection}}

		_, firstBody, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     check.searchURL,
			Body:    initialBody,
			Context: check.context,
		}, errs)

		next := LinkByRel(firstBody.Links(), "next")
		if next == nil {
			errs.Recordf("[%s] POST pagination first request had no 'next' link relation", check.context)
		} else {
			if next.Method != "" && next.Method != http.MethodPost {
				errs.Recordf("[%s] POST pagination first request 'next' link relation has method %s instead of 'POST'", check.context, next.Method)
			}
			if next.Href == "" {
				errs.Recordf("[%s] POST pagination first request 'next' link relation missing href", check.context)
			} else {
				secondBody := nextRequestBody(initialBody, *next)
				s.Retrieve(ctx, Request{
					Method:  http.MethodPost,
					URL:     next.Href,
					Body:    secondBody,
					Context: check.context,
				}, errs)
			}
		}

		if check.collection != "" {
			paginateAndCheck(ctx, s, check, http.MethodPost, errs)
		}
	}
}

// nextRequestBody builds the body of the follow-up request from the next
// link. When merge is set the next link's body is overlaid on the original
// request body, otherwise it replaces it.
func nextRequestBody(initial map[string]any, next Link) map[string]any {
	if !next.Merge {
		return next.Body
	}
	merged := map[string]any{}
	for k, v := range initial {
		merged[k] = v
	}
	for k, v := range next.Body {
		merged[k] = v
	}
	return merged
}

// paginateAndCheck walks next links collecting item ids and checks that no
// more than paginationMaxItems come back and that no item id repeats.
func paginateAndCheck(ctx context.Context, s *Session, check paginationCheck, method string, errs *Errors) {
	seen := map[string]struct{}{}
	duplicates := false
	total := 0

	url := check.searchURL
	params := queryParams("limit", "5", "collections", check.collection)
	var body map[string]any
	if method == http.MethodPost {
		url = check.searchURL
		params = nil
		body = map[string]any{"limit": 5, "collections": []string{check.collection}}
	}

	for total <= paginationMaxItems {
		var page Object
		if method == http.MethodGet {
			_, page, _ = s.Retrieve(ctx, Request{
				Method:  http.MethodGet,
				URL:     url,
				Params:  params,
				Context: check.context,
			}, errs)
		} else {
			_, page, _ = s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     url,
				Body:    body,
				Context: check.context,
			}, errs)
		}
		if page == nil {
			return
		}

		for _, item := range page.Features() {
			total++
			id := item.Str("id")
			if _, found := seen[id]; found {
				duplicates = true
			}
			seen[id] = struct{}{}
		}

		next := LinkByRel(page.Links(), "next")
		if next == nil || next.Href == "" {
			break
		}
		if method == http.MethodPost {
			body = nextRequestBody(body, *next)
		} else {
			params = nil
		}
		url = next.Href
	}

	if total > paginationMaxItems {
		errs.Recordf("[%s] %s pagination - more than max items returned from paginating", check.context, method)
	}
	if duplicates {
		errs.Recordf("[%s] %s pagination - duplicate items returned from paginating items", check.context, method)
	}
}
