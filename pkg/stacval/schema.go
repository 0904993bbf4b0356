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
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	_ "github.com/santhosh-tekuri/jsonschema/v5/httploader"
)

// Defaults applied when a STAC object does not declare its version.
const defaultSTACVersion = "1.0.0"

// ObjectValidator checks a STAC entity body against the published schema for
// its declared type and version.
type ObjectValidator interface {
	Validate(body Object) error
}

type schemaValidator struct {
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
}

// NewSchemaValidator returns an ObjectValidator backed by the schemas
// published at schemas.stacspec.org. Schemas are fetched lazily and cached
// for the lifetime of the validator.
func NewSchemaValidator() ObjectValidator {
	return &schemaValidator{
		compiler: jsonschema.NewCompiler(),
		schemas:  map[string]*jsonschema.Schema{},
	}
}

func (v *schemaValidator) Validate(body Object) error {
	entityType := body.Str("type")
	if entityType == "" {
		return fmt.Errorf("object has no type attribute")
	}

	schemaURL, err := schemaURLFor(entityType, body.Str("stac_version"))
	if err != nil {
		return err
	}

	schema, err := v.schemaFor(schemaURL)
	if err != nil {
		return fmt.Errorf("loading schema %s: %w", schemaURL, err)
	}
	return schema.Validate(map[string]any(body))
}

func (v *schemaValidator) schemaFor(url string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if schema, found := v.schemas[url]; found {
		return schema, nil
	}
	schema, err := v.compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	v.schemas[url] = schema
	return schema, nil
}

func schemaURLFor(entityType, stacVersion string) (string, error) {
	if stacVersion == "" {
		stacVersion = defaultSTACVersion
	}
	var name string
	switch entityType {
	case "Feature":
		name = "item"
	case "Collection":
		name = "collection"
	case "Catalog":
		name = "catalog"
	default:
		return "", fmt.Errorf("unknown STAC object type '%s'", entityType)
	}
	return fmt.Sprintf("https://schemas.stacspec.org/v%s/%s-spec/json-schema/%s.json", stacVersion, name, name), nil
}

// stacValidate checks a STAC entity body against its published schema and
// records an error when it does not conform.
func stacValidate(validator ObjectValidator, url string, body Object, errs *Errors, context Context, method string) {
	if body.Str("type") == "" {
		errs.Recordf("[%s] : %s %s '%s' missing the type attribute", context, method, url, body.Str("id"))
		return
	}
	if err := validator.Validate(body); err != nil {
		errs.Recordf("[%s] : %s %s '%s' failed validation: %s", context, method, url, body.Str("id"), err)
	}
}

// stacCheck runs best-practice lint rules over a STAC entity body and records
// each violated rule as a warning.
func stacCheck(url string, body Object, warnings *Warnings, context Context, method string) {
	for _, msg := range lintMessages(body) {
		warnings.Recordf("[%s] : %s %s %s", context, method, url, msg)
	}
}

// lintMessages collects best-practice findings for a STAC entity. The rules
// mirror well-known STAC lint guidance and never affect validity.
func lintMessages(body Object) []string {
	var msgs []string

	id := body.Str("id")
	if id != "" && strings.ContainsAny(id, " ") {
		msgs = append(msgs, fmt.Sprintf("item id '%s' should not contain spaces", id))
	}
	if id != "" && id != strings.ToLower(id) {
		msgs = append(msgs, fmt.Sprintf("item id '%s' should only contain lowercase characters", id))
	}

	if body.Str("type") == "Feature" {
		if properties := body.Object("properties"); properties != nil {
			if value, present := properties["datetime"]; present && value == nil {
				msgs = append(msgs, "a datetime of null is discouraged, use start_datetime and end_datetime instead")
			}
		}
		if geometry, present := body["geometry"]; present && geometry == nil {
			msgs = append(msgs, "a geometry of null is discouraged, unlocated items are hard to discover")
		}
	}

	if links := body.Links(); len(links) > 20 {
		msgs = append(msgs, fmt.Sprintf("object has %d links, more than 20 links is excessive", len(links)))
	} else {
		for _, link := range links {
			if link.Rel == "" {
				msgs = append(msgs, fmt.Sprintf("link to '%s' has no rel attribute", link.Href))
			}
		}
	}

	return msgs
}
