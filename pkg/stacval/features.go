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
	"strings"
)

// validateFeatures checks the Features conformance class: OGC API alignment,
// the /conformance endpoint, the items listing of the collection under test
// and the items and links hanging off of it.
func validateFeatures(ctx context.Context, s *Session, validator ObjectValidator, rootBody Object, conformsTo []string, collection, geometry string, errs *Errors, warnings *Warnings, validatePagination bool) {
	if geometry == "" {
		errs.Recordf("[%s] Geometry parameter required for running Features validations.", ContextFeatures)
		return
	}
	if collection == "" {
		errs.Recordf("[%s] Collection parameter required for running Features validations.", ContextFeatures)
		return
	}

	var reqClasses []string
	for _, cc := range conformsTo {
		if strings.HasPrefix(cc, ogcAPIFeaturesReqPrefix) {
			reqClasses = append(reqClasses, cc)
		}
	}
	if len(reqClasses) > 0 {
		warnings.Recordf("[%s] / : 'conformsTo' contains OGC API conformance classes using 'req' instead of 'conf': %v.", ContextFeatures, reqClasses)
	}

	if !slices.Contains(conformsTo, ogcAPIFeaturesCoreURI) {
		warnings.Recordf("[%s] STAC APIs conforming to the Features conformance class may also advertise the OGC API - Features Part 1 conformance class '%s'", ContextFeatures, ogcAPIFeaturesCoreURI)
	}
	if !slices.Contains(conformsTo, ogcAPIFeaturesGeoJSONURI) {
		warnings.Recordf("[%s] STAC APIs conforming to the Features conformance class may also advertise the OGC API - Features Part 1 conformance class '%s'", ContextFeatures, ogcAPIFeaturesGeoJSONURI)
	}

	rootLinks := rootBody.Links()
	conformance := LinkByRel(rootLinks, "conformance")
	if conformance == nil {
		errs.Recordf("[%s] /: Landing page missing Link[rel=conformance]", ContextFeatures)
	} else if !strings.HasSuffix(conformance.Href, "/conformance") {
		errs.Recordf("[%s] /: Landing page Link[rel=conformance] must href /conformance", ContextFeatures)
	}

	if conformance != nil {
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     conformance.Href,
			Context: ContextFeatures,
		}, errs)
		if body != nil && !sameStringSet(conformsTo, body.Strings("conformsTo")) {
			warnings.Recordf("[%s] Landing Page conforms to and conformance conformsTo must be the same", ContextFeatures)
		}
	}

	// likely a mistake, but most apis can't undo it for backwards-compat
	// reasons, so only warn
	if LinkByRel(rootLinks, "collections") != nil {
		warnings.Recordf("[%s] /: Link[rel=collections] is a non-standard relation. Use Link[rel=data instead]", ContextFeatures)
	}

	if dataLink := LinkByRel(rootLinks, "data"); dataLink != nil {
		collectionItemsURL := dataLink.Href + "/" + collection + "/items"
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     collectionItemsURL,
			Context: ContextFeatures,
		}, errs)

		if body == nil {
			errs.Recordf("[%s] GET %s returned an empty body", ContextFeatures, collectionItemsURL)
		} else {
			stacValidate(validator, collectionItemsURL, body, errs, ContextFeatures, http.MethodGet)

			if first := body.FirstFeature(); first == nil {
				errs.Recordf("[%s] : %s features array was empty", ContextFeatures, collectionItemsURL)
			} else if itemSelf := LinkByRel(first.Links(), "self"); itemSelf == nil {
				errs.Recordf("[%s] : %s first item does not have self link", ContextFeatures, collectionItemsURL)
			} else {
				_, itemBody, _ := s.Retrieve(ctx, Request{
					Method:      http.MethodGet,
					URL:         itemSelf.Href,
					ContentType: mediaTypeGeoJSON,
					Context:     ContextFeatures,
				}, errs)
				if itemBody != nil {
					stacValidate(validator, itemSelf.Href, itemBody, errs, ContextFeatures, http.MethodGet)
					stacCheck(itemSelf.Href, itemBody, warnings, ContextFeatures, http.MethodGet)
				}
			}
		}
	}

	validateFeaturesCollection(ctx, s, validator, rootLinks, collection, errs, warnings)

	if validatePagination {
		dataLink := LinkByRel(rootLinks, "data")
		if dataLink == nil {
			errs.Recordf("/: Link[rel=data] must href /collections, cannot run pagination test")
			return
		}
		selfLink := LinkByRel(rootLinks, "self")
		if selfLink == nil {
			errs.Recordf("/: Link[rel=self] missing")
			return
		}
		validateItemPagination(ctx, s, paginationCheck{
			rootURL:   selfLink.Href,
			searchURL: dataLink.Href + "/" + collection + "/items",
			geometry:  geometry,
			methods:   []string{http.MethodGet},
			context:   ContextFeatures,
		}, errs)
	}
}

// validateFeaturesCollection walks from the named collection to its items
// link, checks the non-existent item case and the link relations of the
// items listing and the first item in it.
func validateFeaturesCollection(ctx context.Context, s *Session, validator ObjectValidator, rootLinks []Link, collection string, errs *Errors, warnings *Warnings) {
	collectionsLink := LinkByRel(rootLinks, "data")
	if collectionsLink == nil {
		errs.Recordf("/: Link[rel=data] must href /collections")
		return
	}

	collectionURL := collectionsLink.Href + "/" + collection
	_, body, _ := s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     collectionURL,
		Context: ContextFeatures,
	}, errs)
	if body == nil {
		return
	}

	itemsLink := LinkByRel(body.Links(), "items")
	if itemsLink == nil {
		errs.Recordf("[%s] : %s does not have Link[rel=items]", ContextFeatures, collectionURL)
		return
	}
	collectionItemsURL := itemsLink.Href

	s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     collectionItemsURL + "/non-existent-item",
		Status:  http.StatusNotFound,
		Context: ContextFeatures,
	}, errs)

	_, body, _ = s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         collectionItemsURL,
		ContentType: mediaTypeGeoJSON,
		Context:     ContextFeatures,
	}, errs)
	if body == nil {
		return
	}

	itemsLinks := body.Links()
	if selfLink := LinkByRel(itemsLinks, "self"); selfLink == nil {
		errs.Recordf("[%s] GET %s does not have self link", ContextFeatures, collectionItemsURL)
	} else if collectionItemsURL != selfLink.Href {
		errs.Recordf("[%s] GET %s self link does not match requested url", ContextFeatures, collectionItemsURL)
	}
	if LinkByRel(itemsLinks, "root") == nil {
		errs.Recordf("[%s] GET %s does not have root link", ContextFeatures, collectionItemsURL)
	}

	stacValidate(validator, collectionItemsURL, body, errs, ContextFeatures, http.MethodGet)

	item := body.FirstFeature()
	if item == nil {
		errs.Recordf("[%s] : %s features array was empty", ContextFeatures, collectionItemsURL)
		return
	}

	itemSelfLink := LinkByRel(item.Links(), "self")
	if itemSelfLink == nil {
		errs.Recordf("[%s] : %s first item does not have self link", ContextFeatures, collectionItemsURL)
		return
	}

	itemURL := itemSelfLink.Href
	_, body, _ = s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         itemURL,
		ContentType: mediaTypeGeoJSON,
		Context:     ContextFeatures,
	}, errs)
	if body == nil {
		return
	}

	itemLinks := body.Links()
	if selfLink := LinkByRel(itemLinks, "self"); selfLink == nil {
		errs.Recordf("[%s] GET %s does not have self link", ContextFeatures, itemURL)
	} else if itemURL != selfLink.Href {
		errs.Recordf("[%s] GET %s self link does not match requested url", ContextFeatures, itemURL)
	}
	if LinkByRel(itemLinks, "root") == nil {
		errs.Recordf("[%s] GET %s does not have root link", ContextFeatures, itemURL)
	}
	if LinkByRel(itemLinks, "parent") == nil {
		errs.Recordf("[%s] GET %s does not have parent link", ContextFeatures, itemURL)
	}

	stacValidate(validator, itemURL, body, errs, ContextFeatures, http.MethodGet)
	stacCheck(itemURL, body, warnings, ContextFeatures, http.MethodGet)
}

func sameStringSet(a, b []string) bool {
	setA := map[string]struct{}{}
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := map[string]struct{}{}
	for _, v := range b {
		setB[v] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for v := range setA {
		if _, found := setB[v]; !found {
			return false
		}
	}
	return true
}
