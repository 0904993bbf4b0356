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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stac-utils/stac-api-validator/internal/log"
	"github.com/stac-utils/stac-api-validator/internal/version"
)

const defaultRequestTimeout = 30 * time.Second

// retryWait is how long to wait before the single retry of a request that
// failed with a transport error.
const retryWait = 1 * time.Second

// Session carries the default auth headers and query parameters applied to
// every outgoing request. It lives for exactly one validation run.
type Session struct {
	client *http.Client
}

// authTransport applies session-wide default headers and query parameters
// to each request before sending it.
type authTransport struct {
	base   http.RoundTripper
	header http.Header
	params url.Values
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.header {
		req.Header[k] = v
	}
	if len(t.params) > 0 {
		q := req.URL.Query()
		for k, vs := range t.params {
			if q.Get(k) == "" && len(vs) > 0 {
				q.Set(k, vs[0])
			}
		}
		req.URL.RawQuery = q.Encode()
	}
	return t.base.RoundTrip(req)
}

// NewSession creates a Session. authBearerToken, when non-empty, is sent as an
// Authorization: Bearer header. authQueryParameter, when non-empty, must be of
// the form "key=value" and is appended to every request's query string.
func NewSession(authBearerToken, authQueryParameter string) *Session {
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	if authBearerToken != "" {
		header.Set("Authorization", "Bearer "+authBearerToken)
	}

	params := url.Values{}
	if key, value, found := strings.Cut(authQueryParameter, "="); found && key != "" {
		params.Set(key, value)
	}

	return &Session{
		client: &http.Client{
			Timeout: defaultRequestTimeout,
			Transport: &authTransport{
				base:   http.DefaultTransport,
				header: header,
				params: params,
			},
		},
	}
}

// ContentTypeAbsent is the expected-content-type sentinel meaning the response
// must not carry a Content-Type header at all.
const ContentTypeAbsent = "undefined"

// Request describes one HTTP probe issued by a validator.
type Request struct {
	Method  string
	URL     string
	Params  url.Values
	Headers http.Header
	Body    any // marshaled as a JSON request body when non-nil

	// Status is the expected response status code. Zero means 200.
	Status int
	// ContentType overrides the default expected content type, which is
	// derived from the URL suffix. ContentTypeAbsent requires the header to
	// be missing entirely.
	ContentType string

	Context Context
	// Note is appended to the unexpected-status error message.
	Note string
}

// Retrieve issues exactly one request (plus a single retry after a transport
// error) and checks the response against the request's expectations. Every
// violated expectation records exactly one error; none of them is fatal.
// The decoded JSON body is returned when the response carried a JSON-family
// content type and decoded cleanly, otherwise nil.
func (s *Session) Retrieve(ctx context.Context, req Request, errs *Errors) (int, Object, http.Header) {
	expectedStatus := req.Status
	if expectedStatus == 0 {
		expectedStatus = http.StatusOK
	}

	resp, err := s.send(ctx, req)
	if err != nil {
		time.Sleep(retryWait)
		if resp, err = s.send(ctx, req); err != nil {
			errs.Recordf("[%s] : %s %s request failed: %s", req.Context, req.Method, req.URL, err)
			return 0, nil, nil
		}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		errs.Recordf("[%s] : %s %s reading response body failed: %s", req.Context, req.Method, req.URL, err)
		return resp.StatusCode, nil, resp.Header
	}

	if resp.StatusCode != expectedStatus {
		errs.Recordf("[%s] : %s %s params=%s body=%s had unexpected status code %d instead of %d: %s",
			req.Context, req.Method, req.URL, encodeParams(req.Params), encodeBody(req.Body), resp.StatusCode, expectedStatus, req.Note)
		return resp.StatusCode, nil, resp.Header
	}

	if expectedStatus < 400 {
		s.checkContentType(req, resp.Header, errs)

		if hasJSONContentType(resp.Header) || hasGeoJSONContentType(resp.Header) {
			var body map[string]any
			if err := json.Unmarshal(rawBody, &body); err != nil {
				errs.Recordf("[%s] : %s %s returned non-JSON value", req.Context, req.Method, req.URL)
			} else {
				return resp.StatusCode, Object(body), resp.Header
			}
		}
	}

	return resp.StatusCode, nil, resp.Header
}

func (s *Session) checkContentType(req Request, headers http.Header, errs *Errors) {
	observed := headers.Get("Content-Type")

	switch {
	case req.ContentType == "":
		// Search and item endpoints speak GeoJSON, everything else plain JSON.
		if strings.HasSuffix(req.URL, "/search") || strings.HasSuffix(req.URL, "/items") {
			if !HasContentType(headers, mediaTypeGeoJSON) {
				errs.Recordf("[%s] : %s %s params=%s body=%s content-type header is %s instead of '%s'",
					req.Context, req.Method, req.URL, encodeParams(req.Params), encodeBody(req.Body), observed, mediaTypeGeoJSON)
			}
		} else if !HasContentType(headers, mediaTypeJSON) {
			errs.Recordf("[%s] : %s %s params=%s body=%s content-type header is %s instead of '%s'",
				req.Context, req.Method, req.URL, encodeParams(req.Params), encodeBody(req.Body), observed, mediaTypeJSON)
		}
	case req.ContentType == ContentTypeAbsent:
		if observed != "" {
			errs.Recordf("[%s] : %s %s params=%s body=%s content-type header is %s instead of undefined",
				req.Context, req.Method, req.URL, encodeParams(req.Params), encodeBody(req.Body), observed)
		}
	case !HasContentType(headers, req.ContentType):
		errs.Recordf("[%s] : %s %s params=%s body=%s content-type header is %s instead of '%s'",
			req.Context, req.Method, req.URL, encodeParams(req.Params), encodeBody(req.Body), observed, req.ContentType)
	}
}

func (s *Session) send(ctx context.Context, req Request) (*http.Response, error) {
	requestURL := req.URL
	if len(req.Params) > 0 {
		separator := "?"
		if strings.Contains(requestURL, "?") {
			separator = "&"
		}
		requestURL += separator + req.Params.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, requestURL, bodyReader)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Set(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", mediaTypeJSON)
	}

	requestID := uuid.NewString()
	log.Debug("[%s] %s %s", requestID, req.Method, requestURL)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		log.Debug("[%s] failed: %s", requestID, err)
		return nil, err
	}
	log.Debug("[%s] %d", requestID, resp.StatusCode)
	return resp, nil
}

func encodeParams(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	return params.Encode()
}

func encodeBody(body any) string {
	if body == nil {
		return ""
	}
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return string(data)
}

// queryParams builds url.Values from alternating key/value pairs.
func queryParams(kv ...string) url.Values {
	params := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		params.Set(kv[i], kv[i+1])
	}
	return params
}
