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
	"strings"

	"github.com/stac-utils/stac-api-validator/internal/log"
	"github.com/stac-utils/stac-api-validator/pkg/stacval/cql2"
)

// acceptable $schema values of a Queryables document
var queryablesSchemaDrafts = []string{
	"https://json-schema.org/draft/2019-09/schema",
	"http://json-schema.org/draft-07/schema#",
}

// validateFilterQueryables checks that the Queryables endpoint returns a JSON
// Schema document whose $schema, $id and type fields are well-formed.
func validateFilterQueryables(ctx context.Context, s *Session, queryablesURL string, scope Context, errs *Errors) {
	headers := http.Header{}
	headers.Set("Accept", mediaTypeSchema)
	_, queryablesSchema, _ := s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         queryablesURL,
		Headers:     headers,
		ContentType: mediaTypeSchema,
		Context:     scope,
	}, errs)
	if queryablesSchema == nil {
		return
	}

	if !containsString(queryablesSchemaDrafts, queryablesSchema.Str("$schema")) {
		errs.Recordf("[%s - Filter Ext] Queryables '%s' '$schema' value invalid, must be one of: '%s'",
			scope, queryablesURL, strings.Join(queryablesSchemaDrafts, ","))
	}
	if queryablesSchema.Str("$id") != queryablesURL {
		errs.Recordf("[%s - Filter Ext] Queryables '%s' '$id' value invalid, must be same as queryables url", scope, queryablesURL)
	}
	if queryablesSchema.Str("type") != "object" {
		errs.Recordf("[%s Filter Ext] Queryables '%s' 'type' value invalid, must be 'object'", scope, queryablesURL)
	}
}

// validateFeaturesFilter checks the Queryables link of the collection under
// test for the Features - Filter Extension.
func validateFeaturesFilter(ctx context.Context, s *Session, rootBody Object, collection string, errs *Errors) {
	log.Info("WARNING: Features - Filter Ext validation is not yet fully implemented.")

	collectionsLink := LinkByRel(rootBody.Links(), "data")
	if collectionsLink == nil {
		errs.Recordf("[%s] / : 'data' link relation missing", ContextFeatures)
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

	queryablesURL := collectionURL + "/queryables"
	if queryablesLink := LinkByRel(body.Links(), queryablesRel); queryablesLink == nil {
		errs.Recordf("[Features - Filter Ext] GET %s : '%s' (Queryables) link relation missing", collectionURL, queryablesRel)
	} else if queryablesLink.Href != "" {
		queryablesURL = queryablesLink.Href
	}

	validateFilterQueryables(ctx, s, queryablesURL, ContextFeatures, errs)
}

// validateItemSearchFilter checks the root Queryables document and runs a
// battery of CQL2-Text and CQL2-JSON filter expressions against the search
// endpoint, assembled from the advertised CQL2 conformance classes.
func validateItemSearchFilter(ctx context.Context, s *Session, rootURL string, rootBody Object, collection string, errs *Errors) {
	searchLinks := LinksByRel(rootBody.Links(), "search")
	if len(searchLinks) == 0 {
		return
	}
	searchURL := searchLinks[0].Href

	queryablesURL := rootURL + "/queryables"
	if queryablesLink := LinkByRel(rootBody.Links(), queryablesRel); queryablesLink == nil {
		errs.Recordf("[Item Search - Filter Ext] / : '%s' (Queryables) link relation missing", queryablesRel)
	} else if queryablesLink.Href != "" {
		queryablesURL = queryablesLink.Href
	}

	validateFilterQueryables(ctx, s, queryablesURL, ContextItemSearch, errs)

	conformsTo := rootBody.Strings("conformsTo")

	cql2TextSupported := containsString(conformsTo, cql2TextURI) ||
		containsString(conformsTo, "https://api.stacspec.org/v1.0.0-rc.1/item-search#filter:cql-text")
	if cql2TextSupported {
		log.Info("Validating STAC API - Item Search - Filter Extension - CQL2-Text conformance class.")
	}

	cql2JSONSupported := containsString(conformsTo, cql2JSONURI) ||
		containsString(conformsTo, "https://api.stacspec.org/v1.0.0-rc.1/item-search#filter:cql-json")
	if cql2JSONSupported {
		log.Info("Validating STAC API - Item Search - Filter Extension - CQL2-JSON conformance class.")
	}

	basicCQL2Supported := containsString(conformsTo, cql2BasicURI) ||
		containsString(conformsTo, "https://api.stacspec.org/v1.0.0-rc.1/item-search#filter:basic-cql")
	if basicCQL2Supported {
		log.Info("Validating STAC API - Item Search - Filter Extension - Basic CQL2 conformance class.")
	}

	advancedComparisonSupported := containsString(conformsTo, cql2AdvancedComparisonURI)
	if advancedComparisonSupported {
		log.Info("Validating STAC API - Item Search - Filter Extension - Advanced Comparison Operators conformance class.")
	}

	basicSpatialSupported := containsString(conformsTo, cql2BasicSpatialURI)
	if basicSpatialSupported {
		log.Info("Validating STAC API - Item Search - Filter Extension - Basic Spatial Operators conformance class.")
	}

	temporalSupported := containsString(conformsTo, cql2TemporalURI)
	if temporalSupported {
		log.Info("Validating STAC API - Item Search - Filter Extension - Temporal Operators conformance class.")
	}

	var filterTexts []string
	var filterJSONs []map[string]any

	if basicCQL2Supported {
		_, body, _ := s.Retrieve(ctx, Request{
			Method:      http.MethodGet,
			URL:         searchURL,
			Params:      queryParams("collections", collection),
			ContentType: mediaTypeGeoJSON,
			Context:     ContextItemSearchFilter,
		}, errs)
		item := body.FirstFeature()
		if item == nil {
			errs.Recordf("[%s] GET Search with collections=%s returned no results, cannot assemble filter expressions", ContextItemSearchFilter, collection)
			return
		}
		itemID := item.Str("id")

		if cql2TextSupported {
			filterTexts = append(filterTexts, cql2.TextEx1(itemID, collection), cql2.TextEx3, cql2.TextEx4, cql2.TextEx9)
			filterTexts = append(filterTexts,
				cql2.TextAnd(itemID, collection),
				cql2.TextOr(itemID, collection),
				cql2.TextNot(itemID))
			filterTexts = append(filterTexts, cql2.TextStringComparisons(collection)...)
			filterTexts = append(filterTexts, cql2.TextNumericComparisons...)
			filterTexts = append(filterTexts, cql2.TextTimestampComparisons...)
		}

		if cql2JSONSupported {
			filterJSONs = append(filterJSONs, cql2.JSONEx1(itemID, collection), cql2.JSONEx3, cql2.JSONEx4, cql2.JSONEx9)
			filterJSONs = append(filterJSONs,
				cql2.JSONAnd(itemID, collection),
				cql2.JSONOr(itemID, collection),
				cql2.JSONNot(itemID))
			filterJSONs = append(filterJSONs, cql2.JSONStringComparisons(collection)...)
			filterJSONs = append(filterJSONs, cql2.JSONNumericComparisons...)
			filterJSONs = append(filterJSONs, cql2.JSONTimestampComparisons...)
		}
	}

	if advancedComparisonSupported {
		if cql2TextSupported {
			filterTexts = append(filterTexts, cql2.TextBetween, cql2.TextNotBetween, cql2.TextLike, cql2.TextNotLike)
		}
		if cql2JSONSupported {
			filterJSONs = append(filterJSONs, cql2.JSONBetween, cql2.JSONNotBetween, cql2.JSONLike, cql2.JSONNotLike)
		}
	}

	if basicSpatialSupported {
		if cql2TextSupported {
			filterTexts = append(filterTexts, cql2.TextSIntersects, cql2.TextEx2(collection), cql2.TextEx8)
		}
		if cql2JSONSupported {
			filterJSONs = append(filterJSONs, cql2.JSONSIntersects, cql2.JSONEx2(collection), cql2.JSONEx8)
		}
	}

	if temporalSupported {
		if cql2TextSupported {
			filterTexts = append(filterTexts, cql2.TextEx6)
		}
		if cql2JSONSupported {
			filterJSONs = append(filterJSONs, cql2.JSONEx6)
		}
	}

	if basicSpatialSupported && temporalSupported && cql2JSONSupported {
		filterJSONs = append(filterJSONs, cql2.JSONCommon1)
	}

	for _, filterText := range filterTexts {
		s.Retrieve(ctx, Request{
			Method:      http.MethodGet,
			URL:         searchURL,
			Params:      queryParams("limit", "1", "filter-lang", "cql2-text", "filter", filterText),
			ContentType: mediaTypeGeoJSON,
			Context:     ContextItemSearchFilter,
		}, errs)
	}

	for _, filterJSON := range filterJSONs {
		s.Retrieve(ctx, Request{
			Method:      http.MethodPost,
			URL:         searchURL,
			Body:        map[string]any{"limit": 1, "filter-lang": "cql2-json", "filter": filterJSON},
			ContentType: mediaTypeGeoJSON,
			Context:     ContextItemSearchFilter,
		}, errs)
	}
}
