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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// latestReleaseTimeout bounds the GitHub release lookup so the version
// command stays responsive when the network is down.
const latestReleaseTimeout = 3 * time.Second

type release struct {
	TagName string `json:"tag_name"`
}

// GetLatestVersion fetches the newest released version of this tool from the
// GitHub releases endpoint at url. Release tags may carry a leading "v".
func GetLatestVersion(ctx context.Context, client *http.Client, url string) (Version, error) {
	ctx, cancel := context.WithTimeout(ctx, latestReleaseTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return UnknownVersion, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return UnknownVersion, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UnknownVersion, fmt.Errorf("release lookup returned status code %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return UnknownVersion, fmt.Errorf("failed to decode release data: %w", err)
	}

	return ParseVersion(strings.TrimPrefix(rel.TagName, "v"))
}
