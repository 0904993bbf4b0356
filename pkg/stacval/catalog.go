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
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// collectCatalogItems walks the catalog tree starting at root, following
// child links depth-first and gathering the items reachable through item
// links, up to max items. Each linked href is fetched at most once, so a
// catalog whose child links form a cycle terminates instead of looping.
// A body that is not a STAC Catalog, Collection or Item aborts the walk
// with an error.
func collectCatalogItems(ctx context.Context, s *Session, root Object, max int) ([]Object, error) {
	w := &catalogWalker{s: s, max: max, visited: map[string]struct{}{}}
	if err := w.walk(ctx, root); err != nil {
		return nil, err
	}
	return w.items, nil
}

type catalogWalker struct {
	s       *Session
	max     int
	visited map[string]struct{}
	items   []Object
}

func (w *catalogWalker) walk(ctx context.Context, node Object) error {
	switch node.Str("type") {
	case "Catalog", "Collection":
	default:
		return fmt.Errorf("object '%s' is not a Catalog or Collection, type is '%s'", node.Str("id"), node.Str("type"))
	}

	for _, link := range LinksByRel(node.Links(), "item") {
		if len(w.items) >= w.max || w.seen(link.Href) {
			continue
		}
		item, err := fetchJSON(ctx, w.s, link.Href)
		if err != nil {
			return err
		}
		if item.Str("type") != "Feature" {
			return fmt.Errorf("item link %s does not reference an Item, type is '%s'", link.Href, item.Str("type"))
		}
		w.items = append(w.items, item)
	}

	for _, link := range LinksByRel(node.Links(), "child") {
		if len(w.items) >= w.max || w.seen(link.Href) {
			continue
		}
		child, err := fetchJSON(ctx, w.s, link.Href)
		if err != nil {
			return err
		}
		if err := w.walk(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// seen reports whether href was fetched before, marking it visited otherwise.
func (w *catalogWalker) seen(href string) bool {
	if _, ok := w.visited[href]; ok {
		return true
	}
	w.visited[href] = struct{}{}
	return false
}

func fetchJSON(ctx context.Context, s *Session, url string) (Object, error) {
	resp, err := s.send(ctx, Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status code %d", url, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("GET %s returned a body with an incorrectly-encoded non-ascii character", url)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.Wrapf(err, "GET %s returned non-JSON value", url)
	}
	return Object(body), nil
}
