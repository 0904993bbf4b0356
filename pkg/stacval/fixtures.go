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

// validDatetimes must all be accepted by a conforming datetime parameter
// implementation.
var validDatetimes = []string{
	"1985-04-12T23:20:50.52Z",
	"1996-12-19T16:39:57-00:00",
	"1996-12-19T16:39:57+00:00",
	"1996-12-19T16:39:57-08:00",
	"1996-12-19T16:39:57+08:00",
	"../1985-04-12T23:20:50.52Z",
	"1985-04-12T23:20:50.52Z/..",
	"/1985-04-12T23:20:50.52Z",
	"1985-04-12T23:20:50.52Z/",
	"1985-04-12T23:20:50.52Z/1986-04-12T23:20:50.52Z",
	"1985-04-12T23:20:50.52+01:00/1986-04-12T23:20:50.52+01:00",
	"1985-04-12T23:20:50.52-01:00/1986-04-12T23:20:50.52-01:00",
	"1937-01-01T12:00:27.87+01:00",
	"1985-04-12T23:20:50.52Z",
	"1937-01-01T12:00:27.8710+01:00",
	"1937-01-01T12:00:27.8+01:00",
	"1937-01-01T12:00:27.8Z",
	"2020-07-23T00:00:00.000+03:00",
	"2020-07-23T00:00:00+03:00",
	"1985-04-12t23:20:50.000z",
	"2020-07-23T00:00:00Z",
	"2020-07-23T00:00:00.0Z",
	"2020-07-23T00:00:00.01Z",
	"2020-07-23T00:00:00.012Z",
	"2020-07-23T00:00:00.0123Z",
	"2020-07-23T00:00:00.01234Z",
	"2020-07-23T00:00:00.012345Z",
	"2020-07-23T00:00:00.0123456Z",
	"2020-07-23T00:00:00.01234567Z",
	"2020-07-23T00:00:00.012345678Z",
}

// invalidDatetimes must all be rejected with a 400 by a conforming datetime
// parameter implementation.
var invalidDatetimes = []string{
	"/",
	"../..",
	"/..",
	"../",
	"/1984-04-12T23:20:50.52Z/1985-04-12T23:20:50.52Z",
	"1984-04-12T23:20:50.52Z/1985-04-12T23:20:50.52Z/",
	"/1984-04-12T23:20:50.52Z/1985-04-12T23:20:50.52Z/",
	"1985-04-12",                   // date only
	"1937-01-01T12:00:27.87+0100", // invalid TZ format, no sep :
	"37-01-01T12:00:27.87Z",       // invalid year, must be 4 digits
	"1985-12-12T23:20:50.52",      // no TZ
	"21985-12-12T23:20:50.52Z",    // year must be 4 digits
	"1985-13-12T23:20:50.52Z",     // month > 12
	"1985-12-32T23:20:50.52Z",     // day > 31
	"1985-12-01T25:20:50.52Z",     // hour > 24
	"1985-12-01T00:60:50.52Z",     // minute > 59
	"1985-12-01T00:06:61.52Z",     // second > 60
	"1985-04-12T23:20:50.Z",       // fractional sec . but no frac secs
	"1985-04-12T23:20:50,Z",       // fractional sec , but no frac secs
	"1990-12-31T23:59:61Z",        // second > 60 w/o fractional seconds
	"1986-04-12T23:20:50.52Z/1985-04-12T23:20:50.52Z",
	"1985-04-12T23:20:50,52Z", // comma as frac sec sep allowed in ISO8601 but not RFC3339
}

// transactionItemID is the fixed id of the test item the transaction
// lifecycle creates, mutates and deletes.
const transactionItemID = "S2A_47XNF_20230423_0_L2A"

// transactionItem builds the fixture item used to exercise the Transaction
// Extension against the given collection.
func transactionItem(collection string) Object {
	return Object{
		"type":         "Feature",
		"stac_version": "1.0.0",
		"id":           transactionItemID,
		"properties": map[string]any{
			"eo:cloud_cover": 0.142999,
			"datetime":       "2023-04-23T06:47:03.048000Z",
			"remove_me":      "x",
		},
		"geometry": map[string]any{
			"type": "Polygon",
			"coordinates": []any{
				[]any{
					[]any{98.99921502683155, 77.47731704519707},
					[]any{103.52623455002798, 77.4393697038252},
					[]any{103.28971588368059, 76.73571563595313},
					[]any{102.04264523308017, 76.47502013800678},
					[]any{98.99927124149437, 76.4933939950606},
					[]any{98.99921502683155, 77.47731704519707},
				},
			},
		},
		"assets": map[string]any{
			"aot": map[string]any{
				"href":  "https://sentinel-cogs.s3.us-west-2.amazonaws.com/sentinel-s2-l2a-cogs/47/X/NF/2023/4/S2A_47XNF_20230423_0_L2A/AOT.tif",
				"type":  "image/tiff; application=geotiff; profile=cloud-optimized",
				"title": "Aerosol optical thickness (AOT)",
				"roles": []any{"data", "reflectance"},
			},
		},
		"bbox": []any{
			98.99921502683155,
			76.47502013800678,
			103.52623455002798,
			77.47731704519707,
		},
		"stac_extensions": []any{
			"https://stac-extensions.github.io/eo/v1.0.0/schema.json",
		},
		"collection": collection,
	}
}
