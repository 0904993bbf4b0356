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

package version

import (
	"fmt"
	"strconv"
	"strings"
)

// UnknownVersion marks a version that could not be determined.
var UnknownVersion = Version{}

// Version is a MAJOR.MINOR.PATCH release version of this tool.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// GreaterThan reports whether v is a later release than other.
func (v Version) GreaterThan(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch > other.Patch
}

// Invalid reports whether v is unset or carries a negative component.
func (v Version) Invalid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return true
	}
	return v == UnknownVersion
}

// ParseVersion parses a "MAJOR", "MAJOR.MINOR" or "MAJOR.MINOR.PATCH" string.
// Omitted components are zero, so "2.1" parses as 2.1.0.
func ParseVersion(versionString string) (Version, error) {
	parts := strings.Split(versionString, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("version %q does not match the MAJOR.MINOR.PATCH pattern", versionString)
	}

	names := [3]string{"major", "minor", "patch"}
	components := [3]int{}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%s component %q of version %q is not a number", names[i], part, versionString)
		}
		components[i] = n
	}
	return Version{Major: components[0], Minor: components[1], Patch: components[2]}, nil
}
