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
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/stac-utils/stac-api-validator/internal/geometries"
	"github.com/stac-utils/stac-api-validator/internal/log"
)

// validateItemSearch checks the Item Search conformance class: the search
// link relations on the landing page and the behavior of the limit, bbox,
// datetime, ids, collections and intersects parameters.
func validateItemSearch(ctx context.Context, s *Session, validator ObjectValidator, rootURL string, rootBody Object, collection string, conformsTo []string, geometry string, conformanceClasses []string, errs *Errors, warnings *Warnings, validatePagination bool) {
	links := rootBody.Links()

	searchLinks := LinksByRel(links, "search")
	if len(searchLinks) == 0 {
		errs.Recordf("/: Link[rel=search] must exist when Item Search is implemented")
		return
	}
	if len(searchLinks) > 2 {
		errs.Recordf("/: More than 2 Link[rel=search] exist")
	}

	if len(searchLinks) == 2 {
		if countLinksWithMethod(searchLinks, http.MethodGet) != 1 {
			errs.Recordf("/: More than one Link[rel=search] with method GET exists")
		}
		if countLinksWithMethod(searchLinks, http.MethodPost) != 1 {
			errs.Recordf("/: More than one Link[rel=search] with method POST exists")
		}
		if searchLinks[0].Href != "" && searchLinks[0].Href != searchLinks[1].Href {
			errs.Recordf("/: Link[rel=search] relations have different URLs")
		}
	}

	methods := map[string]bool{}
	for _, link := range searchLinks {
		methods[link.MethodOrGet()] = true
	}

	// Collections may not be implemented; collection ids are then gathered
	// from search results instead
	collectionsURL := ""
	if dataLink := LinkByRel(links, "data"); dataLink != nil {
		collectionsURL = dataLink.Href
	}

	searchURL := searchLinks[0].Href
	_, body, _ := s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         searchURL,
		ContentType: mediaTypeGeoJSON,
		Context:     ContextItemSearch,
	}, errs)
	if body != nil {
		stacValidate(validator, searchURL, body, errs, ContextItemSearch, http.MethodGet)
	}

	validateItemSearchLimit(ctx, s, searchURL, methods, errs)
	validateItemSearchBboxXorIntersects(ctx, s, searchURL, methods, errs)
	validateItemSearchBbox(ctx, s, searchURL, methods, errs)
	validateItemSearchDatetime(ctx, s, searchURL, errs)
	validateItemSearchIDs(ctx, s, searchURL, methods, errs, warnings)
	validateItemSearchIDsNoOverride(ctx, s, searchURL, methods, collection, errs, warnings)
	validateItemSearchCollections(ctx, s, searchURL, collectionsURL, methods, errs)
	validateItemSearchIntersects(ctx, s, searchURL, collection, methods, geometry, errs)

	if validatePagination {
		validateItemPagination(ctx, s, paginationCheck{
			rootURL:    rootURL,
			searchURL:  searchURL,
			collection: collection,
			geometry:   geometry,
			methods:    methodList(methods),
			context:    ContextItemSearch,
		}, errs)
	}

	if supports(conformsTo, ccItemSearchFieldsRegex) {
		log.Info("STAC API - Item Search - Fields extension conformance class found.")
	}
	if supports(conformsTo, ccItemSearchSortRegex) {
		log.Info("STAC API - Item Search - Sort extension conformance class found.")
	}
	if supports(conformsTo, ccItemSearchQueryRegex) {
		log.Info("STAC API - Item Search - Query extension conformance class found.")
	}

	if anySuffix(conformsTo,
		"item-search#filter:basic-cql",
		"item-search#filter:cql-json",
		"item-search#filter:cql-text",
		"item-search#filter:filter") {
		warnings.Recordf("[Filter Ext] /: pre-1.0.0-rc.1 Filter Extension conformance classes are advertised.")
	}

	if containsString(conformanceClasses, "filter") && (supports(conformsTo, ccItemSearchFilterRegex) || anySuffix(conformsTo, "item-search#filter:filter")) {
		log.Info("Validating STAC API - Item Search - Filter Extension conformance class.")
		validateItemSearchFilter(ctx, s, rootURL, rootBody, collection, errs)
	}
}

func countLinksWithMethod(links []Link, method string) int {
	count := 0
	for _, link := range links {
		if link.Method == method {
			count++
		}
	}
	return count
}

func methodList(methods map[string]bool) []string {
	var list []string
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		if methods[m] {
			list = append(list, m)
		}
	}
	return list
}

func anySuffix(values []string, suffixes ...string) bool {
	for _, v := range values {
		for _, suffix := range suffixes {
			if strings.HasSuffix(v, suffix) {
				return true
			}
		}
	}
	return false
}

func containsString(values []string, wanted string) bool {
	for _, v := range values {
		if v == wanted {
			return true
		}
	}
	return false
}

func validateItemSearchLimit(ctx context.Context, s *Session, searchURL string, methods map[string]bool, errs *Errors) {
	validLimits := []int{1, 2, 10, 10000, 100000, 1000000}
	for _, limit := range validLimits {
		if methods[http.MethodGet] {
			_, body, _ := s.Retrieve(ctx, Request{
				Method:  http.MethodGet,
				URL:     searchURL,
				Params:  queryParams("limit", strconv.Itoa(limit)),
				Context: ContextItemSearch,
			}, errs)
			if body != nil && body.Has("features") && len(body.Features()) < 1 {
				errs.Recordf("[%s] GET Search with limit=%d returned fewer than 1 result", ContextItemSearch, limit)
			}
		}

		if methods[http.MethodPost] {
			_, body, _ := s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     searchURL,
				Body:    map[string]any{"limit": limit},
				Context: ContextItemSearch,
			}, errs)
			if body != nil && body.Has("features") && len(body.Features()) < 1 {
				errs.Recordf("[%s] POST Search with limit=%d returned fewer than 1 result", ContextItemSearch, limit)
			}
		}
	}

	invalidLimits := []int{-1}
	for _, limit := range invalidLimits {
		if methods[http.MethodGet] {
			s.Retrieve(ctx, Request{
				Method:  http.MethodGet,
				URL:     searchURL,
				Params:  queryParams("limit", strconv.Itoa(limit)),
				Status:  http.StatusBadRequest,
				Context: ContextItemSearch,
				Note:    "invalid limit",
			}, errs)
		}
		if methods[http.MethodPost] {
			s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     searchURL,
				Body:    map[string]any{"limit": limit},
				Status:  http.StatusBadRequest,
				Context: ContextItemSearch,
				Note:    "invalid limit",
			}, errs)
		}
	}
}

func validateItemSearchBboxXorIntersects(ctx context.Context, s *Session, searchURL string, methods map[string]bool, errs *Errors) {
	if methods[http.MethodGet] {
		s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchURL,
			Params:  queryParams("bbox", "0,0,1,1", "intersects", encodeGeometry(geometries.Polygon)),
			Status:  http.StatusBadRequest,
			Context: ContextItemSearch,
			Note:    "Search with bbox and intersects",
		}, errs)
	}
	if methods[http.MethodPost] {
		s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     searchURL,
			Body:    map[string]any{"bbox": []any{0, 0, 1, 1}, "intersects": geometries.Polygon},
			Status:  http.StatusBadRequest,
			Context: ContextItemSearch,
			Note:    "Search with bbox and intersects",
		}, errs)
	}
}

func validateItemSearchBbox(ctx context.Context, s *Session, searchURL string, methods map[string]bool, errs *Errors) {
	validBboxes := [][]float64{
		{100.0, 0.0, 105.0, 1.0},
		{100.0, 0.0, 0.0, 105.0, 1.0, 1.0},
	}
	for _, bbox := range validBboxes {
		if methods[http.MethodGet] {
			s.Retrieve(ctx, Request{
				Method:  http.MethodGet,
				URL:     searchURL,
				Params:  queryParams("bbox", joinFloats(bbox)),
				Context: ContextItemSearch,
			}, errs)
		}
		if methods[http.MethodPost] {
			s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     searchURL,
				Body:    map[string]any{"bbox": bbox},
				Context: ContextItemSearch,
			}, errs)
		}
	}

	if methods[http.MethodGet] {
		s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchURL,
			Params:  queryParams("bbox", "[100.0, 0.0, 105.0, 1.0]"),
			Status:  http.StatusBadRequest,
			Context: ContextItemSearch,
			Note:    "invalid GET query with coordinates in brackets",
		}, errs)
	}
	if methods[http.MethodPost] {
		s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     searchURL,
			Body:    map[string]any{"bbox": "100.0, 0.0, 105.0, 1.0"},
			Status:  http.StatusBadRequest,
			Context: ContextItemSearch,
			Note:    "invalid POST search with CSV string of coordinates",
		}, errs)
	}

	if methods[http.MethodGet] {
		s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchURL,
			Params:  queryParams("bbox", "100.0, 1.0, 105.0, 0.0"),
			Status:  http.StatusBadRequest,
			Context: ContextItemSearch,
			Note:    "bbox (lat 1 > lat 2)",
		}, errs)
	}
	if methods[http.MethodPost] {
		s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     searchURL,
			Body:    map[string]any{"bbox": []float64{100.0, 1.0, 105.0, 0.0}},
			Status:  http.StatusBadRequest,
			Context: ContextItemSearch,
			Note:    "bbox (lat 1 > lat 2)",
		}, errs)
	}

	// 1, 2, 3, 5 and 7 element arrays are invalid
	invalidBboxes := [][]float64{{0}, {0, 0}, {0, 0, 0}, {0, 0, 0, 1, 1}, {0, 0, 0, 1, 1, 1, 1}}
	for _, bbox := range invalidBboxes {
		if methods[http.MethodGet] {
			s.Retrieve(ctx, Request{
				Method:  http.MethodGet,
				URL:     searchURL,
				Params:  queryParams("bbox", joinFloats(bbox)),
				Status:  http.StatusBadRequest,
				Context: ContextItemSearch,
				Note:    "invalid bbox coordinate count",
			}, errs)
		}
		if methods[http.MethodPost] {
			s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     searchURL,
				Body:    map[string]any{"bbox": bbox},
				Status:  http.StatusBadRequest,
				Context: ContextItemSearch,
				Note:    "invalid bbox coordinate count",
			}, errs)
		}
	}
}

func joinFloats(values []float64) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

func validateItemSearchDatetime(ctx context.Context, s *Session, searchURL string, errs *Errors) {
	// find an item and try to use its datetime value in a query
	_, body, _ := s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         searchURL,
		ContentType: mediaTypeGeoJSON,
		Context:     ContextItemSearch,
	}, errs)
	if body == nil {
		return
	}
	first := body.FirstFeature()
	if first == nil {
		errs.Recordf("[%s] GET Search returned no results.", ContextItemSearch)
		return
	}
	dt := first.Object("properties").Str("datetime")

	_, body, _ = s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         searchURL,
		Params:      queryParams("datetime", dt),
		ContentType: mediaTypeGeoJSON,
		Context:     ContextItemSearch,
		Note:        fmt.Sprintf("with datetime=%s extracted from an Item", dt),
	}, errs)
	if body != nil && len(body.Features()) == 0 {
		errs.Recordf("[%s] GET Search with datetime=%s extracted from an Item returned no results.", ContextItemSearch, dt)
	}

	for _, dt := range validDatetimes {
		s.Retrieve(ctx, Request{
			Method:      http.MethodGet,
			URL:         searchURL,
			Params:      queryParams("datetime", dt),
			ContentType: mediaTypeGeoJSON,
			Context:     ContextItemSearch,
			Note:        fmt.Sprintf("valid datetime=%s", dt),
		}, errs)
	}

	for _, dt := range invalidDatetimes {
		s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchURL,
			Params:  queryParams("datetime", dt),
			Status:  http.StatusBadRequest,
			Context: ContextItemSearch,
			Note:    "invalid datetime returned non-400 status code",
		}, errs)
	}
}

func validateItemSearchIDs(ctx context.Context, s *Session, searchURL string, methods map[string]bool, errs *Errors, warnings *Warnings) {
	_, body, _ := s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     searchURL,
		Params:  queryParams("limit", "2"),
		Context: ContextItemSearch,
	}, errs)
	if body == nil {
		return
	}

	items := body.Features()
	if len(items) < 2 {
		warnings.Recordf("[%s] GET Search with no parameters returned < 2 results", ContextItemSearch)
		return
	}

	allIDs := make([]string, 0, len(items))
	for _, item := range items {
		allIDs = append(allIDs, item.Str("id"))
	}

	checkSearchIDs(ctx, s, searchURL, []string{items[0].Str("id")}, methods, errs)
	checkSearchIDs(ctx, s, searchURL, []string{items[0].Str("id"), items[1].Str("id")}, methods, errs)
	checkSearchIDs(ctx, s, searchURL, allIDs, methods, errs)
}

// checkSearchIDs runs an ids search and checks that only the requested items
// come back.
func checkSearchIDs(ctx context.Context, s *Session, searchURL string, itemIDs []string, methods map[string]bool, errs *Errors) {
	if methods[http.MethodGet] {
		joined := strings.Join(itemIDs, ",")
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchURL,
			Params:  queryParams("ids", joined),
			Context: ContextItemSearch,
		}, errs)
		checkSearchIDsResult(body, itemIDs, http.MethodGet, "ids="+joined, errs)
	}

	if methods[http.MethodPost] {
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     searchURL,
			Body:    map[string]any{"ids": itemIDs},
			Context: ContextItemSearch,
		}, errs)
		checkSearchIDsResult(body, itemIDs, http.MethodPost, fmt.Sprintf("ids=%v", itemIDs), errs)
	}
}

func checkSearchIDsResult(body Object, itemIDs []string, method, params string, errs *Errors) {
	if body == nil {
		return
	}
	items := body.Features()
	if !body.Has("features") {
		errs.Recordf("%s Search with %s returned no 'features' attribute", method, params)
		return
	}
	for _, item := range items {
		if !containsString(itemIDs, item.Str("id")) {
			errs.Recordf("%s Search with %s returned items with ids other than specified one", method, params)
			return
		}
	}
}

func validateItemSearchIDsNoOverride(ctx context.Context, s *Session, searchURL string, methods map[string]bool, collection string, errs *Errors, warnings *Warnings) {
	// find one item that can then be queried by id and a non-intersecting
	// bbox to see if it still comes back as a result
	_, body, _ := s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         searchURL,
		Params:      queryParams("limit", "1", "bbox", "20,20,21,21", "collections", collection),
		ContentType: mediaTypeGeoJSON,
		Context:     ContextItemSearch,
	}, errs)
	if body == nil {
		return
	}
	item := body.FirstFeature()
	if item == nil {
		warnings.Recordf("[%s] GET Search within bbox=20,20,21,21 to validate ids does not override all other parameters returned 0 results", ContextItemSearch)
		return
	}

	bbox := item.Floats("bbox")
	if len(bbox) < 4 {
		errs.Recordf("[%s] GET Search result item '%s' has an invalid bbox", ContextItemSearch, item.Str("id"))
		return
	}
	maxX, maxY := bbox[2], bbox[3]

	if methods[http.MethodGet] {
		_, body, _ := s.Retrieve(ctx, Request{
			Method: http.MethodGet,
			URL:    searchURL,
			Params: queryParams(
				"ids", item.Str("id"),
				"collections", item.Str("collection"),
				"bbox", joinFloats([]float64{maxX + 1, maxY + 1, maxX + 2, maxY + 2}),
			),
			Context: ContextItemSearch,
		}, errs)
		if body != nil && len(body.Features()) > 0 {
			errs.Recordf("[%s] GET Search with ids and non-intersecting bbox returned results, indicating "+
				"the ids parameter is overriding the bbox parameter. All parameters are applied equally since "+
				"STAC API 1.0.0-beta.1", ContextItemSearch)
		}
	}

	if methods[http.MethodPost] {
		_, body, _ := s.Retrieve(ctx, Request{
			Method: http.MethodPost,
			URL:    searchURL,
			Body: map[string]any{
				"ids":         []string{item.Str("id")},
				"collections": []string{item.Str("collection")},
				"bbox":        []float64{maxX + 1, maxY + 1, maxX + 2, maxY + 2},
			},
			Context: ContextItemSearch,
		}, errs)
		if body != nil && len(body.Features()) > 0 {
			errs.Recordf("[%s] POST Search with ids and non-intersecting bbox returned results, indicating "+
				"the ids parameter is overriding the bbox parameter. All parameters are applied equally since "+
				"STAC API 1.0.0-beta.1", ContextItemSearch)
		}
	}
}

func validateItemSearchCollections(ctx context.Context, s *Session, searchURL, collectionsURL string, methods map[string]bool, errs *Errors) {
	var collectionIDs []string
	if collectionsURL != "" {
		_, collectionsEntity, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     collectionsURL,
			Context: ContextItemSearch,
		}, errs)
		collections := collectionsEntity.Objects("collections")
		if len(collections) == 0 {
			errs.Recordf("/collections entity does not contain a 'collections' attribute")
		} else {
			for _, c := range collections {
				collectionIDs = append(collectionIDs, c.Str("id"))
			}
		}
	} else { // Collections is not implemented, get some ids from search
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchURL,
			Context: ContextItemSearch,
		}, errs)
		seen := map[string]struct{}{}
		for _, item := range body.Features() {
			id := item.Str("collection")
			if _, found := seen[id]; !found && id != "" {
				seen[id] = struct{}{}
				collectionIDs = append(collectionIDs, id)
			}
		}
	}

	if len(collectionIDs) == 0 {
		errs.Recordf("Not running search validations with collections because could not get collection ids")
		return
	}

	checkSearchCollections(ctx, s, searchURL, collectionIDs, methods, errs)
	for _, cid := range collectionIDs {
		checkSearchCollections(ctx, s, searchURL, []string{cid}, methods, errs)
	}
	subset := collectionIDs
	if len(subset) > 3 {
		subset = subset[:3]
	}
	checkSearchCollections(ctx, s, searchURL, subset, methods, errs)
}

func checkSearchCollections(ctx context.Context, s *Session, searchURL string, collectionIDs []string, methods map[string]bool, errs *Errors) {
	if methods[http.MethodGet] {
		joined := strings.Join(collectionIDs, ",")
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchURL,
			Params:  queryParams("collections", joined),
			Context: ContextItemSearch,
		}, errs)
		checkSearchCollectionsResult(body, collectionIDs, http.MethodGet, "collections="+joined, errs)
	}
	if methods[http.MethodPost] {
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     searchURL,
			Body:    map[string]any{"collections": collectionIDs},
			Context: ContextItemSearch,
		}, errs)
		checkSearchCollectionsResult(body, collectionIDs, http.MethodPost, fmt.Sprintf("collections=%v", collectionIDs), errs)
	}
}

func checkSearchCollectionsResult(body Object, collectionIDs []string, method, params string, errs *Errors) {
	if body == nil {
		return
	}
	for _, item := range body.Features() {
		if !containsString(collectionIDs, item.Str("collection")) {
			errs.Recordf("%s Search with %s returned items in collections other than specified one", method, params)
			return
		}
	}
}

func validateItemSearchIntersects(ctx context.Context, s *Session, searchURL, collection string, methods map[string]bool, geometry string, errs *Errors) {
	// each GeoJSON geometry type must be accepted
	for _, param := range geometries.All {
		if methods[http.MethodGet] {
			s.Retrieve(ctx, Request{
				Method:  http.MethodGet,
				URL:     searchURL,
				Params:  queryParams("intersects", encodeGeometry(param)),
				Context: ContextItemSearch,
			}, errs)
		}
		if methods[http.MethodPost] {
			s.Retrieve(ctx, Request{
				Method:  http.MethodPost,
				URL:     searchURL,
				Body:    map[string]any{"intersects": param},
				Context: ContextItemSearch,
			}, errs)
		}
	}

	var searchGeometry map[string]any
	if err := json.Unmarshal([]byte(geometry), &searchGeometry); err != nil {
		errs.Recordf("[%s] intersects geometry does not parse as GeoJSON: %s", ContextItemSearch, err)
		return
	}

	if methods[http.MethodGet] {
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchURL,
			Params:  queryParams("collections", collection, "intersects", geometry),
			Context: ContextItemSearch,
		}, errs)
		if body != nil {
			if len(body.Features()) == 0 {
				errs.Recordf("[%s] GET %s Search result for intersects=%s returned no results", ContextItemSearch, searchURL, geometry)
			} else {
				for _, item := range body.Features() {
					if !itemIntersects(searchGeometry, item) {
						errs.Recordf("[%s] GET %s Search results for intersects=%s do not all intersect", ContextItemSearch, searchURL, geometry)
						break
					}
				}
			}
		}
	}

	if methods[http.MethodPost] {
		_, itemCollection, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodPost,
			URL:     searchURL,
			Body:    map[string]any{"collections": []string{collection}, "intersects": searchGeometry},
			Context: ContextItemSearch,
		}, errs)
		if itemCollection == nil || len(itemCollection.Features()) == 0 {
			errs.Recordf("[%s] POST Search result for intersects=%s returned no results", ContextItemSearch, geometry)
			return
		}
		for _, item := range itemCollection.Features() {
			if !itemIntersects(searchGeometry, item) {
				errs.Recordf("[%s] POST Search result for intersects=%s, does not intersect %s", ContextItemSearch, geometry, encodeGeometry(item.Object("geometry")))
			}
		}
	}
}

func itemIntersects(searchGeometry map[string]any, item Object) bool {
	itemGeometry := item.Object("geometry")
	if itemGeometry == nil {
		return false
	}
	intersects, err := geometriesIntersect(searchGeometry, itemGeometry)
	if err != nil {
		return false
	}
	return intersects
}

func encodeGeometry(geometry map[string]any) string {
	data, _ := json.Marshal(geometry)
	return string(data)
}
