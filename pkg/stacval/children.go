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
	"strings"

	"github.com/google/go-cmp/cmp"
)

// validateChildren checks the Children conformance class: the /children
// endpoint exists, carries self and root links, and its entries match the
// child link relations of the landing page, order ignored.
func validateChildren(ctx context.Context, s *Session, rootBody Object, errs *Errors, warnings *Warnings) {
	links := rootBody.Links()

	childrenLink := LinkByRel(links, "children")
	if childrenLink == nil || !strings.HasSuffix(childrenLink.Href, "/children") || !IsJSONType(childrenLink.Type) {
		errs.Recordf("[%s] /: Link[rel=children] must href /children", ContextChildren)
		return
	}

	_, childrenBody, respHeaders := s.Retrieve(ctx, Request{
		Method:  http.MethodGet,
		URL:     childrenLink.Href,
		Context: ContextChildren,
	}, errs)
	if childrenBody == nil {
		errs.Recordf("[%s] /children body was empty", ContextChildren)
		return
	}

	if !hasJSONContentType(respHeaders) {
		errs.Recordf("[%s] /children content-type header was not application/json", ContextChildren)
	}

	childrenLinks := childrenBody.Links()
	if selfLink := LinkByRel(childrenLinks, "self"); selfLink == nil {
		errs.Recordf("[%s] /children does not have self link", ContextChildren)
	} else if childrenLink.Href != selfLink.Href {
		errs.Recordf("[%s] /children self link does not match requested url", ContextChildren)
	}
	if LinkByRel(childrenLinks, "root") == nil {
		errs.Recordf("[%s] /children does not have root link", ContextChildren)
	}

	// each child link in the landing page must have an entry in /children,
	// and vice versa
	var childLinkBodies []Object
	for _, childLink := range LinksByRel(links, "child") {
		if childLink.Href == "" {
			errs.Recordf("[%s] child link %s missing href field", ContextChildren, encodeLink(childLink))
			continue
		}
		_, childBody, _ := s.Retrieve(ctx, Request{
			Method:  http.MethodGet,
			URL:     childLink.Href,
			Context: ContextChildren,
		}, errs)
		childLinkBodies = append(childLinkBodies, childBody)
	}

	children := childrenBody.Objects("children")

	if onlyInLinks := setDifference(childLinkBodies, children); len(onlyInLinks) > 0 {
		errs.Recordf("[%s] /: child links contained these objects that /children does not: %s",
			ContextChildren, encodeObjects(onlyInLinks))
	}
	if onlyInChildren := setDifference(children, childLinkBodies); len(onlyInChildren) > 0 {
		errs.Recordf("[%s] /: child links missing these objects that /children contains: %s",
			ContextChildren, encodeObjects(onlyInChildren))
	}
}

// setDifference returns the elements of a that have no deep-equal match in b.
// Each element of b matches at most one element of a.
func setDifference(a, b []Object) []Object {
	matched := make([]bool, len(b))
	var diff []Object
	for _, obj := range a {
		found := false
		for i, other := range b {
			if !matched[i] && cmp.Equal(map[string]any(obj), map[string]any(other)) {
				matched[i] = true
				found = true
				break
			}
		}
		if !found {
			diff = append(diff, obj)
		}
	}
	return diff
}

func encodeLink(link Link) string {
	data, _ := json.Marshal(link)
	return string(data)
}

func encodeObjects(objs []Object) string {
	data, _ := json.Marshal(objs)
	return string(data)
}
