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
	"io"
	"net/http"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// catalogTraversalLimit bounds how many items the whole-catalog walk visits.
const catalogTraversalLimit = 1000

// openAPI media types whose bodies are checked to parse as YAML. OpenAPI JSON
// is a YAML subset, so one parser covers both families.
var openAPIJSONTypes = []string{
	"application/json",
	"application/vnd.oai.openapi+json",
	"application/vnd.oai.openapi+json;version=3.0",
	"application/vnd.oai.openapi+json;version=3.1",
}

// validateCore checks the Core conformance class: the landing page link
// relations, the service description and documentation endpoints, and that
// the child and item link relations reference valid STAC entities.
func validateCore(ctx context.Context, s *Session, rootBody Object, errs *Errors, warnings *Warnings) {
	links := rootBody.Links()

	if _, present := rootBody["links"]; !present {
		errs.Recordf("/ : 'links' attribute missing")
	}

	if root := LinkByRel(links, "root"); root == nil {
		errs.Recordf("/ : Link[rel=root] must exist")
	} else if !IsJSONType(root.Type) {
		errs.Recordf("/ : Link[rel=root] type is not application/json, instead %s", root.Type)
	}

	if self := LinkByRel(links, "self"); self == nil {
		warnings.Recordf("/ : Link[rel=self] must exist")
	} else if !IsJSONType(self.Type) {
		errs.Recordf("/ : Link[rel=self] type is not application/json, instead %s", self.Type)
	}

	validateServiceDesc(ctx, s, links, errs)

	if serviceDoc := LinkByRel(links, "service-doc"); serviceDoc == nil {
		warnings.Recordf("/ : Link[rel=service-doc] should exist")
	} else {
		if serviceDoc.Type != mediaTypeHTML {
			errs.Recordf("service-doc type is not text/html")
		}
		s.Retrieve(ctx, Request{
			Method:      http.MethodGet,
			URL:         serviceDoc.Href,
			ContentType: mediaTypeHTML,
			Context:     ContextCore,
		}, errs)
	}

	// among other things this validates that the child and item link
	// relations reference valid STAC Catalogs, Collections and Items
	if _, err := collectCatalogItems(ctx, s, rootBody, catalogTraversalLimit); err != nil {
		errs.Recordf("[%s] Error while traversing Catalog child/item links to find Items: %s", ContextCore, err)
	}
}

func validateServiceDesc(ctx context.Context, s *Session, links []Link, errs *Errors) {
	serviceDesc := LinkByRel(links, "service-desc")
	if serviceDesc == nil {
		errs.Recordf("/ : Link[rel=service-desc] must exist")
		return
	}
	if serviceDesc.Type == "" {
		errs.Recordf("/ : Link[rel=service-desc] must have a type defined")
		return
	}

	headers := http.Header{}
	headers.Set("Accept", serviceDesc.Type)
	resp, err := s.send(ctx, Request{Method: http.MethodGet, URL: serviceDesc.Href, Headers: headers})
	if err != nil {
		errs.Recordf("/ : Link[service-desc] must return 200")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errs.Recordf("/ : Link[service-desc] must return 200")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	for _, jsonType := range openAPIJSONTypes {
		if contentType == jsonType {
			if raw, err := io.ReadAll(resp.Body); err == nil {
				var parsed any
				if err := yaml.Unmarshal(raw, &parsed); err != nil {
					errs.Recordf("service-desc (%s): body does not parse as an OpenAPI document: %s", serviceDesc.Href, err)
				}
			}
			break
		}
	}

	// the media type used in the Accept header must round-trip into the
	// response's Content-Type header, parameters after ';' excluded
	if contentType != serviceDesc.Type &&
		!((strings.Contains(contentType, ";") || strings.Contains(serviceDesc.Type, ";")) &&
			mediaTypeBase(contentType) == mediaTypeBase(serviceDesc.Type)) {
		errs.Recordf("service-desc (%s): media type used in Accept header must get response with same Content-Type header: used '%s', got '%s'",
			serviceDesc.Href, serviceDesc.Type, contentType)
	}
}

func mediaTypeBase(mediaType string) string {
	base, _, _ := strings.Cut(mediaType, ";")
	return base
}
