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

// Package geometries holds one static fixture per GeoJSON geometry primitive type.
// Search endpoints must accept each of these as an 'intersects' argument.
package geometries

var Point = map[string]any{"type": "Point", "coordinates": []any{100.0, 0.0}}

var LineString = map[string]any{
	"type":        "LineString",
	"coordinates": []any{[]any{100.0, 0.0}, []any{101.0, 1.0}},
}

var Polygon = map[string]any{
	"type": "Polygon",
	"coordinates": []any{
		[]any{[]any{100.0, 0.0}, []any{101.0, 0.0}, []any{101.0, 1.0}, []any{100.0, 1.0}, []any{100.0, 0.0}},
	},
}

var PolygonWithHole = map[string]any{
	"type": "Polygon",
	"coordinates": []any{
		[]any{[]any{100.0, 0.0}, []any{101.0, 0.0}, []any{101.0, 1.0}, []any{100.0, 1.0}, []any{100.0, 0.0}},
		[]any{[]any{100.8, 0.8}, []any{100.8, 0.2}, []any{100.2, 0.2}, []any{100.2, 0.8}, []any{100.8, 0.8}},
	},
}

var MultiPoint = map[string]any{
	"type":        "MultiPoint",
	"coordinates": []any{[]any{100.0, 0.0}, []any{101.0, 1.0}},
}

var MultiLineString = map[string]any{
	"type": "MultiLineString",
	"coordinates": []any{
		[]any{[]any{100.0, 0.0}, []any{101.0, 1.0}},
		[]any{[]any{102.0, 2.0}, []any{103.0, 3.0}},
	},
}

var MultiPolygon = map[string]any{
	"type": "MultiPolygon",
	"coordinates": []any{
		[]any{
			[]any{[]any{102.0, 2.0}, []any{103.0, 2.0}, []any{103.0, 3.0}, []any{102.0, 3.0}, []any{102.0, 2.0}},
		},
		[]any{
			[]any{[]any{100.0, 0.0}, []any{101.0, 0.0}, []any{101.0, 1.0}, []any{100.0, 1.0}, []any{100.0, 0.0}},
			[]any{[]any{100.2, 0.2}, []any{100.2, 0.8}, []any{100.8, 0.8}, []any{100.8, 0.2}, []any{100.2, 0.2}},
		},
	},
}

var GeometryCollection = map[string]any{
	"type": "GeometryCollection",
	"geometries": []any{
		map[string]any{"type": "Point", "coordinates": []any{100.0, 0.0}},
		map[string]any{"type": "LineString", "coordinates": []any{[]any{101.0, 0.0}, []any{102.0, 1.0}}},
	},
}

// All lists every primitive type fixture in a stable order.
var All = []map[string]any{
	Point,
	LineString,
	Polygon,
	PolygonWithHole,
	MultiPoint,
	MultiLineString,
	MultiPolygon,
	GeometryCollection,
}
