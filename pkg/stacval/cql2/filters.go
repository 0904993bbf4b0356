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

// Package cql2 holds CQL2-Text and CQL2-JSON filter expressions used to probe
// the Filter Extension. Each Text value has a JSON counterpart expressing the
// same predicate.
package cql2

import "fmt"

func prop(name string) map[string]any {
	return map[string]any{"property": name}
}

func op(operator string, args ...any) map[string]any {
	return map[string]any{"op": operator, "args": args}
}

func timestamp(value string) map[string]any {
	return map[string]any{"timestamp": value}
}

// TextEx1 matches a single item by id and collection.
func TextEx1(itemID, collection string) string {
	return fmt.Sprintf("id='%s' AND collection='%s'", itemID, collection)
}

func JSONEx1(itemID, collection string) map[string]any {
	return op("and",
		op("=", prop("id"), itemID),
		op("=", prop("collection"), collection),
	)
}

// TextEx2 combines comparison, temporal and spatial predicates over one
// collection.
func TextEx2(collection string) string {
	return fmt.Sprintf("collection = '%s'"+
		" AND eo:cloud_cover <= 10"+
		" AND datetime >= TIMESTAMP('2021-04-08T04:39:23Z')"+
		" AND S_INTERSECTS(geometry, POLYGON((43.5845 -79.5442, 43.6079 -79.4893, 43.5677 -79.4632, 43.6129 -79.3925, 43.6223 -79.3238, 43.6576 -79.3163, 43.7945 -79.1178, 43.8144 -79.1542, 43.8555 -79.1714, 43.7509 -79.6390, 43.5845 -79.5442)))", collection)
}

func JSONEx2(collection string) map[string]any {
	return op("and",
		op("=", prop("collection"), collection),
		op("<=", prop("eo:cloud_cover"), 10),
		op(">=", prop("datetime"), timestamp("2021-04-08T04:39:23Z")),
		op("s_intersects", prop("geometry"), map[string]any{
			"type": "Polygon",
			"coordinates": []any{
				[]any{
					[]any{43.5845, -79.5442},
					[]any{43.6079, -79.4893},
					[]any{43.5677, -79.4632},
					[]any{43.6129, -79.3925},
					[]any{43.6223, -79.3238},
					[]any{43.6576, -79.3163},
					[]any{43.7945, -79.1178},
					[]any{43.8144, -79.1542},
					[]any{43.8555, -79.1714},
					[]any{43.7509, -79.6390},
					[]any{43.5845, -79.5442},
				},
			},
		}),
	)
}

// TextEx3 disjoins predicates over fields that may be absent, including
// IS NULL checks.
var TextEx3 = "sentinel:data_coverage > 50 OR landsat:coverage_percent < 10 OR (sentinel:data_coverage IS NULL AND landsat:coverage_percent IS NULL)"

var JSONEx3 = op("or",
	op(">", prop("sentinel:data_coverage"), 50),
	op("<", prop("landsat:coverage_percent"), 10),
	op("and",
		op("isNull", prop("sentinel:data_coverage")),
		op("isNull", prop("landsat:coverage_percent")),
	),
)

// TextEx4 compares two properties of the same item with each other.
var TextEx4 = "prop1 = prop2"

var JSONEx4 = op("=", prop("prop1"), prop("prop2"))

// TextEx6 applies a temporal operator over an interval.
var TextEx6 = "T_INTERSECTS(datetime, INTERVAL('2020-11-11T00:00:00Z', '2020-11-12T00:00:00Z'))"

var JSONEx6 = op("t_intersects", prop("datetime"), map[string]any{
	"interval": []any{"2020-11-11T00:00:00Z", "2020-11-12T00:00:00Z"},
})

// TextEx8 applies a spatial operator against a fixed polygon.
var TextEx8 = "S_INTERSECTS(geometry, POLYGON((-77.0824 38.7886, -77.0189 38.7886, -77.0189 38.8351, -77.0824 38.8351, -77.0824 38.7886)))"

var JSONEx8 = op("s_intersects", prop("geometry"), map[string]any{
	"type": "Polygon",
	"coordinates": []any{
		[]any{
			[]any{-77.0824, 38.7886},
			[]any{-77.0189, 38.7886},
			[]any{-77.0189, 38.8351},
			[]any{-77.0824, 38.8351},
			[]any{-77.0824, 38.7886},
		},
	},
})

// TextEx9 nests boolean operators.
var TextEx9 = "eo:cloud_cover <= 10 AND (datetime >= TIMESTAMP('2021-04-08T04:39:23Z') OR eo:cloud_cover = 0)"

var JSONEx9 = op("and",
	op("<=", prop("eo:cloud_cover"), 10),
	op("or",
		op(">=", prop("datetime"), timestamp("2021-04-08T04:39:23Z")),
		op("=", prop("eo:cloud_cover"), 0),
	),
)

func TextAnd(itemID, collection string) string {
	return fmt.Sprintf("id='%s' AND collection='%s'", itemID, collection)
}

func JSONAnd(itemID, collection string) map[string]any {
	return op("and",
		op("=", prop("id"), itemID),
		op("=", prop("collection"), collection),
	)
}

func TextOr(itemID, collection string) string {
	return fmt.Sprintf("id='%s' OR collection='%s'", itemID, collection)
}

func JSONOr(itemID, collection string) map[string]any {
	return op("or",
		op("=", prop("id"), itemID),
		op("=", prop("collection"), collection),
	)
}

func TextNot(itemID string) string {
	return fmt.Sprintf("NOT id='%s'", itemID)
}

func JSONNot(itemID string) map[string]any {
	return op("not", op("=", prop("id"), itemID))
}

// TextStringComparisons exercises every basic comparison operator against a
// string property.
func TextStringComparisons(collection string) []string {
	return []string{
		fmt.Sprintf("collection = '%s'", collection),
		fmt.Sprintf("collection <> '%s'", collection),
		fmt.Sprintf("collection < '%s'", collection),
		fmt.Sprintf("collection <= '%s'", collection),
		fmt.Sprintf("collection > '%s'", collection),
		fmt.Sprintf("collection >= '%s'", collection),
	}
}

func JSONStringComparisons(collection string) []map[string]any {
	var filters []map[string]any
	for _, operator := range []string{"=", "<>", "<", "<=", ">", ">="} {
		filters = append(filters, op(operator, prop("collection"), collection))
	}
	return filters
}

// TextNumericComparisons exercises every basic comparison operator against a
// numeric property.
var TextNumericComparisons = []string{
	"eo:cloud_cover = 10",
	"eo:cloud_cover <> 10",
	"eo:cloud_cover < 10",
	"eo:cloud_cover <= 10",
	"eo:cloud_cover > 10",
	"eo:cloud_cover >= 10",
}

var JSONNumericComparisons = []map[string]any{
	op("=", prop("eo:cloud_cover"), 10),
	op("<>", prop("eo:cloud_cover"), 10),
	op("<", prop("eo:cloud_cover"), 10),
	op("<=", prop("eo:cloud_cover"), 10),
	op(">", prop("eo:cloud_cover"), 10),
	op(">=", prop("eo:cloud_cover"), 10),
}

// TextTimestampComparisons exercises every basic comparison operator against
// a timestamp property.
var TextTimestampComparisons = []string{
	"datetime = TIMESTAMP('2021-04-08T04:39:23Z')",
	"datetime <> TIMESTAMP('2021-04-08T04:39:23Z')",
	"datetime < TIMESTAMP('2021-04-08T04:39:23Z')",
	"datetime <= TIMESTAMP('2021-04-08T04:39:23Z')",
	"datetime > TIMESTAMP('2021-04-08T04:39:23Z')",
	"datetime >= TIMESTAMP('2021-04-08T04:39:23Z')",
}

var JSONTimestampComparisons = []map[string]any{
	op("=", prop("datetime"), timestamp("2021-04-08T04:39:23Z")),
	op("<>", prop("datetime"), timestamp("2021-04-08T04:39:23Z")),
	op("<", prop("datetime"), timestamp("2021-04-08T04:39:23Z")),
	op("<=", prop("datetime"), timestamp("2021-04-08T04:39:23Z")),
	op(">", prop("datetime"), timestamp("2021-04-08T04:39:23Z")),
	op(">=", prop("datetime"), timestamp("2021-04-08T04:39:23Z")),
}

// Advanced comparison operators.
var (
	TextBetween    = "eo:cloud_cover BETWEEN 0 AND 50"
	TextNotBetween = "eo:cloud_cover NOT BETWEEN 0 AND 50"
	TextLike       = "mission LIKE 'sentinel%'"
	TextNotLike    = "mission NOT LIKE 'sentinel%'"

	JSONBetween    = op("between", prop("eo:cloud_cover"), 0, 50)
	JSONNotBetween = op("not", op("between", prop("eo:cloud_cover"), 0, 50))
	JSONLike       = op("like", prop("mission"), "sentinel%")
	JSONNotLike    = op("not", op("like", prop("mission"), "sentinel%"))
)

// Basic spatial operators.
var TextSIntersects = "S_INTERSECTS(geometry, POLYGON((36.319836 32.288087, 36.320041 32.288032, 36.320210 32.288402, 36.320008 32.288458, 36.319836 32.288087)))"

var JSONSIntersects = op("s_intersects", prop("geometry"), map[string]any{
	"type": "Polygon",
	"coordinates": []any{
		[]any{
			[]any{36.319836, 32.288087},
			[]any{36.320041, 32.288032},
			[]any{36.320210, 32.288402},
			[]any{36.320008, 32.288458},
			[]any{36.319836, 32.288087},
		},
	},
})

// JSONCommon1 combines spatial, temporal and comparison predicates the way a
// typical client query does.
var JSONCommon1 = op("and",
	op("s_intersects", prop("geometry"), map[string]any{
		"type": "Polygon",
		"coordinates": []any{
			[]any{
				[]any{-79.71679687499928, -19.89072302399748},
				[]any{139.83398437500085, -19.89072302399748},
				[]any{139.83398437500085, 63.665760337788015},
				[]any{-79.71679687499928, 63.665760337788015},
				[]any{-79.71679687499928, -19.89072302399748},
			},
		},
	}),
	op("anyinteracts", prop("datetime"), map[string]any{
		"interval": []any{"2015-06-27T00:00:00Z", "2022-09-29T23:59:59Z"},
	}),
	op("<=", prop("eo:cloud_cover"), 50),
)
