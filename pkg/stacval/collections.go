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
)

// validateCollections checks the Collections conformance class: the
// /collections endpoint, its envelope links, the schema validity of every
// collection in it, and the single named collection under test.
func validateCollections(ctx context.Context, s *Session, validator ObjectValidator, rootBody Object, collection string, errs *Errors, warnings *Warnings) {
	dataLink := LinkByRel(rootBody.Links(), "data")
	if dataLink == nil {
		errs.Recordf("[%s] /: Link[rel=data] must href /collections", ContextCollections)
		return
	}

	s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     dataLink.Href + "/non-existent-collection",
		Status:  http.StatusNotFound,
		Context: ContextCollections,
		Note:    "non-existent collection",
	}, errs)

	collectionsURL := dataLink.Href
	_, body, respHeaders := s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     collectionsURL,
		Context: ContextCollections,
	}, errs)

	if body == nil {
		errs.Recordf("[%s] /collections body was empty", ContextCollections)
		return
	}

	if !hasJSONContentType(respHeaders) {
		errs.Recordf("[%s] /collections content-type header was not application/json", ContextCollections)
	}

	envelopeLinks := body.Links()
	if selfLink := LinkByRel(envelopeLinks, "self"); selfLink == nil {
		errs.Recordf("[%s] /collections does not have self link", ContextCollections)
	} else if collectionsURL != selfLink.Href {
		errs.Recordf("[%s] /collections self link does not match requested url", ContextCollections)
	}
	if LinkByRel(envelopeLinks, "root") == nil {
		errs.Recordf("[%s] /collections does not have root link", ContextCollections)
	}

	if collectionsType := body.Str("type"); collectionsType != "" {
		warnings.Recordf("[%s] /collections entity has a field 'type: %s', but the STAC API entity schema does not define this field",
			ContextCollections, collectionsType)
	}

	if !body.Has("collections") {
		errs.Recordf("[%s] /collections does not have 'collections' field", ContextCollections)
	}

	collectionsList := body.Objects("collections")
	if len(collectionsList) == 0 {
		errs.Recordf("[%s] /collections 'collections' field is empty", ContextCollections)
	} else {
		for _, collectionBody := range collectionsList {
			stacValidate(validator, collectionsURL, collectionBody, errs, ContextCollections, http.MethodGet)
		}
	}

	collectionURL := dataLink.Href + "/" + collection
	_, body, respHeaders = s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     collectionURL,
		Context: ContextCollections,
	}, errs)

	if body == nil {
		errs.Recordf("[%s] : %s body was empty", ContextCollections, collectionURL)
		return
	}

	if !hasJSONContentType(respHeaders) {
		errs.Recordf("[%s] : %s content-type header was not application/json", ContextCollections, collectionURL)
	}

	collectionLinks := body.Links()
	if selfLink := LinkByRel(collectionLinks, "self"); selfLink == nil {
		errs.Recordf("[%s] : %s does not have self link", ContextCollections, collectionURL)
	} else if collectionURL != selfLink.Href {
		errs.Recordf("[%s] : %s self link does not match requested url", ContextCollections, collectionURL)
	}
	if LinkByRel(collectionLinks, "root") == nil {
		errs.Recordf("[%s] : %s does not have root link", ContextCollections, collectionURL)
	}
	if LinkByRel(collectionLinks, "parent") == nil {
		errs.Recordf("[%s] : %s does not have parent link", ContextCollections, collectionURL)
	}

	stacValidate(validator, collectionURL, body, errs, ContextCollections, http.MethodGet)
	stacCheck(collectionURL, body, warnings, ContextCollections, http.MethodGet)
}
