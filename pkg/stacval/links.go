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
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Link is a single entry of a STAC links array. Several links may share a
// rel; search links in particular may appear once for GET and once for POST.
type Link struct {
	Rel    string         `mapstructure:"rel"`
	Href   string         `mapstructure:"href"`
	Type   string         `mapstructure:"type"`
	Method string         `mapstructure:"method"`
	Body   map[string]any `mapstructure:"body"`
	Merge  bool           `mapstructure:"merge"`
}

// MethodOrGet returns the link's advertised HTTP method, defaulting to GET.
func (l Link) MethodOrGet() string {
	if l.Method == "" {
		return http.MethodGet
	}
	return l.Method
}

// Links decodes the body's links array. Entries that are not objects are skipped.
func (o Object) Links() []Link {
	raw := o.Objects("links")
	if raw == nil {
		return nil
	}
	links := make([]Link, 0, len(raw))
	for _, entry := range raw {
		var link Link
		if err := mapstructure.Decode(map[string]any(entry), &link); err != nil {
			continue
		}
		links = append(links, link)
	}
	return links
}

// LinkByRel returns the first link with the given relation, or nil.
func LinkByRel(links []Link, rel string) *Link {
	for i := range links {
		if links[i].Rel == rel {
			return &links[i]
		}
	}
	return nil
}

// LinksByRel returns all links with the given relation.
func LinksByRel(links []Link, rel string) []Link {
	var out []Link
	for _, l := range links {
		if l.Rel == rel {
			out = append(out, l)
		}
	}
	return out
}

const (
	mediaTypeJSON    = "application/json"
	mediaTypeGeoJSON = "application/geo+json"
	mediaTypeSchema  = "application/schema+json"
	mediaTypeHTML    = "text/html"
)

// IsJSONType reports whether a media type string is application/json,
// ignoring any ;-delimited parameters.
func IsJSONType(maybeType string) bool {
	return maybeType == mediaTypeJSON || strings.HasPrefix(maybeType, mediaTypeJSON+";")
}

// IsGeoJSONType reports whether a media type string is application/geo+json,
// ignoring any ;-delimited parameters.
func IsGeoJSONType(maybeType string) bool {
	return maybeType == mediaTypeGeoJSON || strings.HasPrefix(maybeType, mediaTypeGeoJSON+";")
}

// HasContentType reports whether the response's Content-Type header matches
// contentType, comparing only the portion before the first ';'.
func HasContentType(headers http.Header, contentType string) bool {
	ct := headers.Get("Content-Type")
	return strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]) == contentType
}

func hasJSONContentType(headers http.Header) bool {
	return IsJSONType(headers.Get("Content-Type"))
}

func hasGeoJSONContentType(headers http.Header) bool {
	return IsGeoJSONType(headers.Get("Content-Type"))
}
