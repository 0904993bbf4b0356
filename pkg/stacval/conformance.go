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
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/stac-utils/stac-api-validator/internal/log"
)

// LatestSTACAPIFoundationVersion is the newest released version of the STAC
// API foundation conformance classes. Older advertised versions validate the
// same way but produce a warning.
const LatestSTACAPIFoundationVersion = "https://api.stacspec.org/v1.0.0/"

// Context names the conformance class a finding was recorded under.
type Context string

const (
	ContextCore            Context = "Core"
	ContextItemSearch      Context = "Item Search"
	ContextFeatures        Context = "Features"
	ContextCollections     Context = "Collections"
	ContextChildren        Context = "Children Ext"
	ContextBrowseable      Context = "Browseable Ext"
	ContextItemSearchFilter Context = "Item Search - Filter Ext"
	ContextItemSearchSort   Context = "Item Search - Sort Ext"
	ContextItemSearchFields Context = "Item Search - Fields Ext"
	ContextItemSearchQuery  Context = "Item Search - Query Ext"
	ContextFeaturesFilter   Context = "Features - Filter Ext"
	ContextFeaturesSort     Context = "Features - Sort Ext"
	ContextFeaturesFields   Context = "Features - Fields Ext"
	ContextFeaturesQuery    Context = "Features - Query Ext"
	ContextFeaturesTxn      Context = "Features - Transaction Ext"
)

// ConformanceClasses are the capability keys a caller may request for validation.
var ConformanceClasses = []string{
	"core",
	"browseable",
	"item-search",
	"features",
	"collections",
	"children",
	"filter",
	"item-search#sort",
	"item-search#fields",
	"item-search#query",
	"features#sort",
	"features#fields",
	"features#query",
	"transaction",
}

// The version segment is deliberately wildcarded so these templates keep
// matching across spec pre-releases. Patterns are anchored since conformance
// URIs must match in full.
var (
	ccCoreRegex        = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/core$`)
	ccBrowseableRegex  = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/browseable$`)
	ccChildrenRegex    = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/children$`)
	ccCollectionsRegex = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/collections$`)
	ccFeaturesRegex    = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/ogcapi-features$`)

	ccFeaturesTransactionRegex = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/ogcapi-features/extensions/transaction$`)
	ccFeaturesFieldsRegex      = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/ogcapi-features#fields$`)
	ccFeaturesSortRegex        = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/ogcapi-features#sort$`)
	ccFeaturesQueryRegex       = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/ogcapi-features#query$`)
	ccFeaturesFilterRegex      = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/ogcapi-features#filter$`)

	ccItemSearchRegex       = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/item-search$`)
	ccItemSearchFieldsRegex = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/item-search#fields$`)
	ccItemSearchSortRegex   = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/item-search#sort$`)
	ccItemSearchQueryRegex  = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/item-search#query$`)
	ccItemSearchFilterRegex = regexp.MustCompile(`^https://api\.stacspec\.org/(.+)/item-search#filter$`)

	foundationClassRegex = regexp.MustCompile(`^https://api\.stacspec\.org/v1\.0\.0.*/(core|item-search|ogcapi-features|collections)`)
)

// OGC API alignment and CQL2 conformance URIs, matched bit-exact.
const (
	ogcAPIFeaturesCoreURI    = "http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/core"
	ogcAPIFeaturesGeoJSONURI = "http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/geojson"
	ogcAPIFeaturesReqPrefix  = "http://www.opengis.net/spec/ogcapi-features-1/1.0/req/"

	cql2TextURI               = "http://www.opengis.net/spec/cql2/1.0/conf/cql2-text"
	cql2JSONURI               = "http://www.opengis.net/spec/cql2/1.0/conf/cql2-json"
	cql2BasicURI              = "http://www.opengis.net/spec/cql2/1.0/conf/basic-cql2"
	cql2AdvancedComparisonURI = "http://www.opengis.net/spec/cql2/1.0/conf/advanced-comparison-operators"
	cql2BasicSpatialURI       = "http://www.opengis.net/spec/cql2/1.0/conf/basic-spatial-operators"
	cql2TemporalURI           = "http://www.opengis.net/spec/cql2/1.0/conf/temporal-operators"

	queryablesRel = "http://www.opengis.net/def/rel/ogc/1.0/queryables"
)

func supports(conformsTo []string, pattern *regexp.Regexp) bool {
	for _, uri := range conformsTo {
		if pattern.MatchString(uri) {
			return true
		}
	}
	return false
}

func supportsCollections(conformsTo []string) bool {
	return supports(conformsTo, ccCollectionsRegex)
}

func supportsFeatures(conformsTo []string) bool {
	return supports(conformsTo, ccFeaturesRegex)
}

// ValidateCoreLandingPageBody checks the landing page response shape and the
// preconditions of every requested conformance class. It returns false when a
// requested capability is missing required operator configuration, which
// aborts the whole run before downstream validators produce a cascade of
// secondary errors.
func ValidateCoreLandingPageBody(
	body Object,
	headers http.Header,
	errs *Errors,
	warnings *Warnings,
	conformanceClasses []string,
	collection string,
	geometry string,
) bool {
	if !hasJSONContentType(headers) {
		errs.Record("CORE-1", "[Core] : Landing Page (/) response Content-Type header is not application/json")
	}

	if len(body.Links()) == 0 {
		errs.Record("CORE-3", "/ : 'links' field must be defined and non-empty.")
	}

	conformsTo := body.Strings("conformsTo")
	if len(conformsTo) == 0 {
		errs.Record("CORE-2",
			"[Core] : Landing Page (/) 'conformsTo' field must be defined and non-empty. This field is required as of STAC 1.0.0")
	} else {
		for _, uri := range conformsTo {
			if foundationClassRegex.MatchString(uri) && !strings.HasPrefix(uri, LatestSTACAPIFoundationVersion) {
				warnings.Recordf("STAC API Specification %s is the latest version, but API advertises an older version or older versions.", LatestSTACAPIFoundationVersion)
				break
			}
		}
	}

	if !supports(conformsTo, ccCoreRegex) {
		errs.Record("CORE-4", "/: STAC API - Core not contained in 'conformsTo'")
	}

	requested := func(cc string) bool { return slices.Contains(conformanceClasses, cc) }

	if requested("browseable") && !supports(conformsTo, ccBrowseableRegex) {
		errs.Record("CORE-5", "/: Browseable configured for validation, but not contained in 'conformsTo'")
	}

	if requested("children") && !supports(conformsTo, ccChildrenRegex) {
		errs.Record("CORE-6", "/: Children configured for validation, but not contained in 'conformsTo'")
	}

	if requested("collections") {
		if !supportsCollections(conformsTo) {
			errs.Record("CORE-7", "/: Collections configured for validation, but not contained in 'conformsTo'")
		}
		if collection == "" {
			log.Error("Collections configured for validation, but `--collection` parameter not specified")
			return false
		}
	}

	if requested("features") {
		if !supportsFeatures(conformsTo) {
			errs.Record("CORE-8", "/: Features configured for validation, but not contained in 'conformsTo'")
		}
		if collection == "" {
			log.Error("Features configured for validation, but `--collection` parameter not specified")
			return false
		}
	}

	if requested("item-search") {
		if !supports(conformsTo, ccItemSearchRegex) {
			errs.Record("CORE-9", "/: Item Search configured for validation, but not contained in 'conformsTo'")
		}
		if collection == "" {
			log.Error("Item Search configured for validation, but `--collection` parameter not specified")
			return false
		}
		if geometry == "" {
			log.Error("Item Search configured for validation, but `--geometry` parameter not specified")
			return false
		}
	}

	return true
}
