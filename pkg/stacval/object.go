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

import "strings"

// Object is a decoded JSON object. Its accessors are tolerant of missing or
// mistyped members so that a malformed response surfaces as a recorded
// structural finding at the call site instead of a panic.
type Object map[string]any

// Str returns the string member for key, or "" when absent or not a string.
func (o Object) Str(key string) string {
	s, _ := o[key].(string)
	return s
}

// Strings returns the array-of-strings member for key. Non-string entries are skipped.
func (o Object) Strings(key string) []string {
	arr, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Object returns the object member for key, or nil.
func (o Object) Object(key string) Object {
	m, ok := o[key].(map[string]any)
	if !ok {
		return nil
	}
	return Object(m)
}

// Objects returns the array-of-objects member for key. Non-object entries are skipped.
func (o Object) Objects(key string) []Object {
	arr, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Object, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Object(m))
		}
	}
	return out
}

// Has reports whether key is present with a non-null value.
func (o Object) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Float returns the numeric member for key, or (0, false).
func (o Object) Float(key string) (float64, bool) {
	f, ok := o[key].(float64)
	return f, ok
}

// Floats returns the array-of-numbers member for key. Non-numeric entries are skipped.
func (o Object) Floats(key string) []float64 {
	arr, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, v := range arr {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// ValueAtPath resolves a dotted field path like "properties.eo:cloud_cover".
// It returns (nil, false) when any step of the path is missing.
func (o Object) ValueAtPath(path string) (any, bool) {
	cur := o
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if i == len(parts)-1 {
			v, ok := cur[part]
			return v, ok && v != nil
		}
		if cur = cur.Object(part); cur == nil {
			return nil, false
		}
	}
	return nil, false
}

// Features returns the item objects of a FeatureCollection body, nil-safe.
func (o Object) Features() []Object {
	if o == nil {
		return nil
	}
	return o.Objects("features")
}

// FirstFeature returns the first item of a FeatureCollection body, or nil.
func (o Object) FirstFeature() Object {
	features := o.Features()
	if len(features) == 0 {
		return nil
	}
	return features[0]
}
