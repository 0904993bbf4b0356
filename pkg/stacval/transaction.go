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
	"time"
)

// transactionConsistencyDelay is how long to wait after each write before
// reading the item back. Var rather than const so tests can drop the wait.
var transactionConsistencyDelay = 2 * time.Second

// validateTransaction exercises the full item lifecycle of the Transaction
// Extension against the configured collection: delete any leftover fixture,
// create, read back, replace with PUT, patch, and delete again.
func validateTransaction(ctx context.Context, s *Session, rootBody Object, errs *Errors, warnings *Warnings, scope Context, transactionCollection string) {
	if transactionCollection == "" {
		errs.Recordf("[%s] : cannot validate Transaction Extension because --transaction-collection is not set", scope)
		return
	}

	dataLink := LinkByRel(rootBody.Links(), "data")
	if dataLink == nil {
		errs.Recordf("[%s] /: Link[rel=data] must href /collections", scope)
		return
	}

	createURL := dataLink.Href + "/" + transactionCollection + "/items"
	item := transactionItem(transactionCollection)
	itemURL := createURL + "/" + transactionItemID

	// delete the item in case a previous run left it behind
	s.Retrieve(ctx, Request{
		Method:      http.MethodDelete,
		URL:         itemURL,
		Status:      http.StatusNoContent,
		ContentType: ContentTypeAbsent,
		Context:     scope,
	}, errs)

	s.Retrieve(ctx, Request{
		Method:  http.MethodPost,
		URL:     createURL,
		Body:    item,
		Status:  http.StatusCreated,
		Context: scope,
	}, errs)

	time.Sleep(transactionConsistencyDelay)

	s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         itemURL,
		ContentType: mediaTypeGeoJSON,
		Context:     scope,
	}, errs)

	// PUT replaces the item: one field changed, one added, one removed
	itemPut := transactionItem(transactionCollection)
	putProperties := itemPut.Object("properties")
	putProperties["eo:cloud_cover"] = "3.14"
	putProperties["foo"] = "bar"
	delete(putProperties, "remove_me")

	s.Retrieve(ctx, Request{
		Method:      http.MethodPut,
		URL:         itemURL,
		Body:        itemPut,
		Status:      http.StatusNoContent,
		ContentType: ContentTypeAbsent,
		Context:     scope,
	}, errs)

	time.Sleep(transactionConsistencyDelay)

	_, body, _ := s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         itemURL,
		ContentType: mediaTypeGeoJSON,
		Context:     scope,
	}, errs)

	if body != nil {
		properties := body.Object("properties")
		if properties.Str("datetime") != item.Object("properties").Str("datetime") {
			errs.Recordf("[%s] : PUT - datetime value did not match", scope)
		}
		if properties["eo:cloud_cover"] != putProperties["eo:cloud_cover"] {
			errs.Recordf("[%s] : PUT - eo:cloud_cover value did not match", scope)
		}
		if properties["foo"] != putProperties["foo"] {
			errs.Recordf("[%s] : PUT - property 'foo' was not added", scope)
		}
		if properties.Has("remove_me") {
			errs.Recordf("[%s] : PUT - field 'remove_me' was not removed", scope)
		}
	}

	// PATCH adds one field and modifies another
	itemPatch := map[string]any{"properties": map[string]any{"eo:cloud_cover": "12.4", "a_patch_field": "bar"}}

	s.Retrieve(ctx, Request{
		Method:      http.MethodPatch,
		URL:         itemURL,
		Body:        itemPatch,
		Status:      http.StatusNoContent,
		ContentType: ContentTypeAbsent,
		Context:     scope,
	}, errs)

	time.Sleep(transactionConsistencyDelay)

	_, body, _ = s.Retrieve(ctx, Request{
		Method:      http.MethodGet,
		URL:         itemURL,
		ContentType: mediaTypeGeoJSON,
		Context:     scope,
	}, errs)

	if body != nil {
		properties := body.Object("properties")
		if properties.Str("datetime") != item.Object("properties").Str("datetime") {
			errs.Recordf("[%s] : PATCH - datetime value did not match", scope)
		}
		if properties["eo:cloud_cover"] != "12.4" {
			errs.Recordf("[%s] : PATCH - eo:cloud_cover value did not match", scope)
		}
		if properties["a_patch_field"] != "bar" {
			errs.Recordf("[%s] : PATCH - property 'a_patch_field' was not added", scope)
		}
	}

	s.Retrieve(ctx, Request{
		Method:      http.MethodDelete,
		URL:         itemURL,
		Status:      http.StatusNoContent,
		ContentType: ContentTypeAbsent,
		Context:     scope,
	}, errs)

	time.Sleep(transactionConsistencyDelay)

	s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     itemURL,
		Status:  http.StatusNotFound,
		Context: scope,
	}, errs)
}
