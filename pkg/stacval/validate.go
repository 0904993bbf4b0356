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

	"github.com/stac-utils/stac-api-validator/internal/log"
)

// Options configures a validation run against a single STAC API deployment.
type Options struct {
	// RootURL is the landing page of the API under test.
	RootURL string
	// ConformanceClasses names the capabilities to validate, e.g. "core",
	// "item-search", "item-search#sort".
	ConformanceClasses []string
	// Collection is the id of a collection known to hold items. Required for
	// the collections, features, and item-search classes.
	Collection string
	// Geometry is a GeoJSON geometry intersecting items of Collection.
	// Required for the item-search class.
	Geometry string

	AuthBearerToken    string
	AuthQueryParameter string

	FieldsNestedProperty  string
	ValidatePagination    bool
	QueryConfig           QueryConfig
	TransactionCollection string
}

// ValidateAPI runs every requested conformance class validation against the
// API at opts.RootURL and returns the accumulated warnings and errors. A
// non-nil Errors with findings means the API failed validation; ValidateAPI
// itself only fails fast when the landing page is unusable.
func ValidateAPI(ctx context.Context, opts Options) (*Warnings, *Errors) {
	warnings := &Warnings{}
	errs := &Errors{}

	s := NewSession(opts.AuthBearerToken, opts.AuthQueryParameter)
	validator := NewSchemaValidator()

	_, landingPageBody, landingPageHeaders := s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     opts.RootURL,
		Context: ContextCore,
	}, errs)

	if landingPageBody == nil {
		return warnings, errs
	}

	requested := func(cc string) bool { return slices.Contains(opts.ConformanceClasses, cc) }

	if requested("core") {
		// fail fast if there are errors with conformance or links so far
		if !ValidateCoreLandingPageBody(landingPageBody, landingPageHeaders, errs, warnings,
			opts.ConformanceClasses, opts.Collection, opts.Geometry) {
			return warnings, errs
		}

		log.Info("Validating STAC API - Core conformance class.")
		validateCore(ctx, s, landingPageBody, errs, warnings)
	}

	if requested("browseable") {
		log.Info("Validating STAC API - Browseable conformance class.")
		validateBrowseable(ctx, s, landingPageBody, errs, warnings)
	}

	if requested("children") {
		log.Info("Validating STAC API - Children conformance class.")
		validateChildren(ctx, s, landingPageBody, errs, warnings)
	}

	if requested("collections") {
		log.Info("Validating STAC API - Collections conformance class.")
		validateCollections(ctx, s, validator, landingPageBody, opts.Collection, errs, warnings)
	}

	conformsTo := landingPageBody.Strings("conformsTo")

	if requested("features") {
		log.Info("Validating STAC API - Features conformance class.")
		validateCollections(ctx, s, validator, landingPageBody, opts.Collection, errs, warnings)
		validateFeatures(ctx, s, validator, landingPageBody, conformsTo,
			opts.Collection, opts.Geometry, errs, warnings, opts.ValidatePagination)
	}

	if requested("transaction") {
		log.Info("STAC API - Features - Transaction extension conformance class found.")
		validateTransaction(ctx, s, landingPageBody, errs, warnings, ContextFeaturesTxn, opts.TransactionCollection)
	}

	if requested("features#fields") {
		log.Info("STAC API - Features - Fields extension conformance class found.")
		log.Info("STAC API - Features - Fields extension is not yet supported.")
	}

	if requested("features#sort") {
		log.Info("STAC API - Features - Sort extension conformance class found.")
		log.Info("STAC API - Features - Sort extension is not yet supported.")
	}

	if requested("features#query") {
		log.Info("STAC API - Features - Query extension conformance class found.")
		log.Info("STAC API - Features - Query extension is not yet supported.")
	}

	if requested("features#filter") {
		log.Info("STAC API - Features - Filter Extension conformance class found.")
		validateFeaturesFilter(ctx, s, landingPageBody, opts.Collection, errs)
	}

	if requested("item-search") {
		log.Info("Validating STAC API - Item Search conformance class.")
		validateItemSearch(ctx, s, validator, opts.RootURL, landingPageBody, opts.Collection,
			conformsTo, opts.Geometry, opts.ConformanceClasses, errs, warnings, opts.ValidatePagination)
	}

	if requested("item-search#fields") {
		log.Info("STAC API - Item Search - Fields extension conformance class found.")
		validateFields(ctx, s, landingPageBody, opts.Collection, errs, warnings,
			ContextItemSearchFields, opts.FieldsNestedProperty)
	}

	if requested("item-search#sort") {
		log.Info("STAC API - Item Search - Sort extension conformance class found.")
		validateSort(ctx, s, landingPageBody, opts.Collection, errs, warnings, ContextItemSearchSort)
	}

	if requested("item-search#query") {
		log.Info("STAC API - Item Search - Query extension conformance class found.")
		validateQuery(ctx, s, landingPageBody, opts.Collection, errs, warnings,
			ContextItemSearchQuery, opts.QueryConfig)
	}

	if requested("item-search#filter") {
		log.Info("STAC API - Item Search - Filter Extension conformance class found.")
		validateItemSearchFilter(ctx, s, opts.RootURL, landingPageBody, opts.Collection, errs)
	}

	if !errs.Any() {
		validateCatalogSchemas(ctx, s, validator, landingPageBody, errs)
	}

	return warnings, errs
}

// validateCatalogSchemas runs a final schema check over the landing page and
// each of its children. Only reached when all requested classes validated
// cleanly, so schema failures surface on their own rather than drowning in
// behavioral errors.
func validateCatalogSchemas(ctx context.Context, s *Session, validator ObjectValidator, rootBody Object, errs *Errors) {
	if err := validator.Validate(rootBody); err != nil {
		errs.Recordf("catalog schema validation error: %s", err)
		return
	}

	for _, child := range LinksByRel(rootBody.Links(), "child") {
		_, childBody, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     child.Href,
			Context: ContextCore,
		}, errs)
		if childBody == nil {
			continue
		}
		if err := validator.Validate(childBody); err != nil {
			errs.Recordf("catalog schema validation error: %s", err)
		}
	}
}
