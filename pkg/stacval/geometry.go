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
	"encoding/json"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/pkg/errors"
)

// geometriesIntersect reports whether two GeoJSON geometry objects share any
// point. Both arguments are decoded geometry maps as found in request
// parameters and item bodies.
func geometriesIntersect(a, b map[string]any) (bool, error) {
	geomA, err := parseGeometry(a)
	if err != nil {
		return false, err
	}
	geomB, err := parseGeometry(b)
	if err != nil {
		return false, err
	}
	return geom.Intersects(geomA, geomB), nil
}

func parseGeometry(geometry map[string]any) (geom.Geometry, error) {
	raw, err := json.Marshal(geometry)
	if err != nil {
		return geom.Geometry{}, errors.Wrap(err, "encoding geometry")
	}
	parsed, err := geom.UnmarshalGeoJSON(raw)
	if err != nil {
		return geom.Geometry{}, errors.Wrap(err, "parsing geometry")
	}
	return parsed, nil
}
