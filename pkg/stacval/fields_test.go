//go:build unit

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFieldsRequiresNestedProperty(t *testing.T) {
	errs := &Errors{}
	validateFields(context.Background(), NewSession("", ""), Object{}, "c", errs, &Warnings{},
		ContextItemSearchFields, "")

	require.Len(t, errs.Messages(), 1)
	assert.Contains(t, errs.Messages()[0], "--fields-nested-property is not set")
}

func defaultFieldsItem(t *testing.T) Object {
	t.Helper()
	return decodeObject(t, `{
		"type": "Feature",
		"stac_version": "1.0.0",
		"id": "item-1",
		"geometry": {"type": "Point", "coordinates": [0, 0]},
		"bbox": [0, 0, 0, 0],
		"links": [],
		"assets": {},
		"properties": {"datetime": "2023-04-23T06:47:03Z"}
	}`)
}

func TestCheckDefaultFields(t *testing.T) {
	t.Run("complete default set", func(t *testing.T) {
		errs := &Errors{}
		checkDefaultFields(defaultFieldsItem(t), "GET with empty 'fields' value", ContextItemSearchFields, errs)
		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	})

	t.Run("datetime range instead of datetime", func(t *testing.T) {
		item := defaultFieldsItem(t)
		item["properties"] = map[string]any{
			"start_datetime": "2023-04-23T00:00:00Z",
			"end_datetime":   "2023-04-24T00:00:00Z",
		}
		errs := &Errors{}
		checkDefaultFields(item, "desc", ContextItemSearchFields, errs)
		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	})

	t.Run("missing members", func(t *testing.T) {
		item := defaultFieldsItem(t)
		delete(item, "geometry")
		item["properties"] = map[string]any{}

		errs := &Errors{}
		checkDefaultFields(item, "desc", ContextItemSearchFields, errs)

		messages := errs.Messages()
		require.Len(t, messages, 2)
		assert.Contains(t, messages[0], "missing 'geometry'")
		assert.Contains(t, messages[1], "'properties.datetime'")
	})

	t.Run("no item", func(t *testing.T) {
		errs := &Errors{}
		checkDefaultFields(nil, "desc", ContextItemSearchFields, errs)
		assert.Contains(t, errs.String(), "had no items in response")
	})
}

func singleItemBody(item Object) Object {
	return Object{"type": "FeatureCollection", "features": []any{map[string]any(item)}}
}

func TestCheckIncludedField(t *testing.T) {
	t.Run("included field present", func(t *testing.T) {
		errs := &Errors{}
		warnings := &Warnings{}
		body := singleItemBody(Object{"geometry": map[string]any{"type": "Point"}})
		checkIncludedField(body, "desc", "geometry", ContextItemSearchFields, errs, warnings, false)

		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
		assert.False(t, warnings.Any())
	})

	t.Run("leading plus is stripped", func(t *testing.T) {
		errs := &Errors{}
		body := singleItemBody(Object{"geometry": map[string]any{"type": "Point"}})
		checkIncludedField(body, "desc", "+geometry", ContextItemSearchFields, errs, &Warnings{}, false)
		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	})

	t.Run("nested property resolved through path", func(t *testing.T) {
		errs := &Errors{}
		body := singleItemBody(Object{"properties": map[string]any{"eo:cloud_cover": 0.5}})
		checkIncludedField(body, "desc", "properties.eo:cloud_cover", ContextItemSearchFields, errs, &Warnings{}, false)
		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	})

	t.Run("missing field", func(t *testing.T) {
		errs := &Errors{}
		body := singleItemBody(Object{"id": "x"})
		checkIncludedField(body, "desc", "geometry", ContextItemSearchFields, errs, &Warnings{}, true)
		assert.Contains(t, errs.String(), "missing 'geometry'")
	})

	t.Run("extra fields warn", func(t *testing.T) {
		errs := &Errors{}
		warnings := &Warnings{}
		body := singleItemBody(Object{"geometry": map[string]any{}, "id": "x", "bbox": []any{}})
		checkIncludedField(body, "desc", "geometry", ContextItemSearchFields, errs, warnings, false)

		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
		assert.Contains(t, warnings.String(), "contained extra fields")
	})

	t.Run("more than five fields is an error", func(t *testing.T) {
		errs := &Errors{}
		item := Object{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "geometry": map[string]any{}}
		checkIncludedField(singleItemBody(item), "desc", "geometry", ContextItemSearchFields, errs, &Warnings{}, false)
		assert.Contains(t, errs.String(), "more than 5 extra fields")
	})
}

func TestCheckExcludedField(t *testing.T) {
	t.Run("field excluded", func(t *testing.T) {
		errs := &Errors{}
		item := defaultFieldsItem(t)
		delete(item, "geometry")
		checkExcludedField(singleItemBody(item), "desc", "geometry", ContextItemSearchFields, errs, true)
		assert.False(t, errs.Any(), "unexpected errors: %s", errs)
	})

	t.Run("field still present", func(t *testing.T) {
		errs := &Errors{}
		checkExcludedField(singleItemBody(defaultFieldsItem(t)), "desc", "geometry", ContextItemSearchFields, errs, true)
		assert.Contains(t, errs.String(), "should have been excluded")
	})

	t.Run("over-aggressive exclusion", func(t *testing.T) {
		errs := &Errors{}
		checkExcludedField(singleItemBody(Object{"id": "x"}), "desc", "geometry", ContextItemSearchFields, errs, true)
		assert.Contains(t, errs.String(), "fewer than 5 fields")
	})
}
