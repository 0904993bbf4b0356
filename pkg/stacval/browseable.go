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

// browseableSampleSize is how many items reached through catalog browsing are
// cross-checked against search.
const browseableSampleSize = 10

// validateBrowseable checks that items reachable by browsing child and item
// links can also be found through the search endpoint.
func validateBrowseable(ctx context.Context, s *Session, rootBody Object, errs *Errors, warnings *Warnings) {
	links := rootBody.Links()
	if len(LinksByRel(links, "child")) == 0 && len(LinksByRel(links, "item")) == 0 {
		errs.Recordf("[%s] /: Root catalog does not contain any child or item link relations", ContextBrowseable)
	}

	items, err := collectCatalogItems(ctx, s, rootBody, browseableSampleSize)
	if err != nil {
		errs.Recordf("[%s] Error while traversing Catalog child/item links to find Items: %s", ContextBrowseable, err)
		return
	}

	searchLink := LinkByRel(links, "search")
	for _, item := range items {
		if searchLink == nil {
			errs.Recordf("[%s] /: Link[rel=search] could not be found", ContextBrowseable)
			continue
		}
		_, body, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     searchLink.Href,
			Params:  queryParams("ids", item.Str("id"), "collections", item.Str("collection")),
			Context: ContextBrowseable,
		}, errs)
		if body != nil && len(body.Features()) != 1 {
			errs.Recordf("[%s] /: item '%s' reached through browsing could not be found through search", ContextBrowseable, item.Str("id"))
		}
	}
}
