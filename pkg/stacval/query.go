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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const queryResultLimit = 20

// queryCheck is one Query Extension operator probe: the query expression sent
// to the search endpoint and the predicate every returned item must satisfy.
type queryCheck struct {
	field   string
	op      string
	value   any
	matches func(propertyValue any) bool
}

// numericChecks builds the comparison operator probes. Comparison values are
// configured as strings and coerced to float64 the same way the matched
// property values are. An operator whose configured value does not parse is
// recorded as an error and left out of the battery.
func numericChecks(config QueryConfig, scope Context, errs *Errors) []queryCheck {
	type numericOp struct {
		op      string
		value   string
		matches func(got, want float64) bool
	}
	ops := []numericOp{
		{"eq", config.EqValue, func(got, want float64) bool { return got == want }},
		{"neq", config.NeqValue, func(got, want float64) bool { return got != want }},
		{"lt", config.LtValue, func(got, want float64) bool { return got < want }},
		{"lte", config.LteValue, func(got, want float64) bool { return got <= want }},
		{"gt", config.GtValue, func(got, want float64) bool { return got > want }},
		{"gte", config.GteValue, func(got, want float64) bool { return got >= want }},
	}

	var checks []queryCheck
	for _, o := range ops {
		o := o
		want, err := strconv.ParseFloat(o.value, 64)
		if err != nil {
			errs.Recordf("[%s] : Query operator '%s' skipped, configured value '%s' is not numeric", scope, o.op, o.value)
			continue
		}
		checks = append(checks, queryCheck{
			field: config.ComparisonField,
			op:    o.op,
			value: o.value,
			matches: func(propertyValue any) bool {
				got, ok := toFloat(propertyValue)
				return ok && o.matches(got, want)
			},
		})
	}
	return checks
}

// substringChecks builds the startsWith, endsWith and contains probes. An
// operator with no configured value is recorded as an error and left out, so
// the probe never degrades into an empty-string match that any item passes.
func substringChecks(config QueryConfig, scope Context, errs *Errors) []queryCheck {
	type substringOp struct {
		op      string
		value   string
		matches func(got, want string) bool
	}
	ops := []substringOp{
		{"startsWith", config.StartsWithValue, strings.HasPrefix},
		{"endsWith", config.EndsWithValue, strings.HasSuffix},
		{"contains", config.ContainsValue, strings.Contains},
	}

	var checks []queryCheck
	for _, o := range ops {
		o := o
		if o.value == "" {
			errs.Recordf("[%s] : Query operator '%s' skipped, no value configured", scope, o.op)
			continue
		}
		checks = append(checks, queryCheck{
			field: config.SubstringField,
			op:    o.op,
			value: o.value,
			matches: func(propertyValue any) bool {
				return o.matches(toString(propertyValue), o.value)
			},
		})
	}
	return checks
}

// inCheck builds the 'in' probe. The configured values are a comma-separated
// list, and a returned item matches when its array property shares at least
// one element with them. With no values configured the probe is recorded as
// an error and dropped.
func inCheck(config QueryConfig, scope Context, errs *Errors) (queryCheck, bool) {
	if strings.TrimSpace(config.InValues) == "" {
		errs.Recordf("[%s] : Query operator 'in' skipped, no values configured", scope)
		return queryCheck{}, false
	}
	values := strings.Split(config.InValues, ",")
	valuesAny := make([]any, 0, len(values))
	for _, v := range values {
		valuesAny = append(valuesAny, v)
	}
	return queryCheck{
		field: config.InField,
		op:    "in",
		value: valuesAny,
		matches: func(propertyValue any) bool {
			elements, ok := propertyValue.([]any)
			if !ok {
				return false
			}
			for _, element := range elements {
				for _, v := range values {
					if toString(element) == v {
						return true
					}
				}
			}
			return false
		},
	}, true
}

// validateQuery checks the Query Extension by issuing one search per operator
// and verifying that every returned item satisfies the queried predicate.
func validateQuery(ctx context.Context, s *Session, rootBody Object, collection string, errs *Errors, warnings *Warnings, scope Context, config QueryConfig) {
	if config.ComparisonField == "" || config.SubstringField == "" || config.InField == "" {
		errs.Recordf("[%s] : cannot validate Query Extension because query configuration is not present", scope)
		return
	}

	searchMethodToURL := searchMethodURLs(rootBody)

	checks := numericChecks(config, scope, errs)
	checks = append(checks, substringChecks(config, scope, errs)...)
	if check, ok := inCheck(config, scope, errs); ok {
		checks = append(checks, check)
	}

	for _, check := range checks {
		query := map[string]any{check.field: map[string]any{check.op: check.value}}
		queryText, _ := json.Marshal(query)

		if getURL, found := searchMethodToURL[http.MethodGet]; found {
			_, body, _ := s.Retrieve(ctx, Request{
				Method: http.MethodGet,
				URL:    getURL,
				Params: queryParams(
					"query", string(queryText),
					"limit", strconv.Itoa(queryResultLimit),
					"collections", collection,
				),
				Context: scope,
			}, errs)
			checkQueryResult(body, check, http.MethodGet, string(queryText), scope, errs)
		}

		if postURL, found := searchMethodToURL[http.MethodPost]; found {
			_, body, _ := s.Retrieve(ctx, Request{
				Method: http.MethodPost,
				URL:    postURL,
				Body: map[string]any{
					"query":       query,
					"limit":       queryResultLimit,
					"collections": collection,
				},
				Context: scope,
			}, errs)
			checkQueryResult(body, check, http.MethodPost, string(queryText), scope, errs)
		}
	}
}

func checkQueryResult(body Object, check queryCheck, method, queryText string, scope Context, errs *Errors) {
	if body == nil {
		return
	}
	features := body.Features()
	if len(features) == 0 {
		errs.Recordf("[%s] : %s search with Query '%s' had no results", scope, method, queryText)
		return
	}
	var got []any
	matched := true
	for _, feature := range features {
		propertyValue := feature.Object("properties")[check.field]
		got = append(got, propertyValue)
		if !check.matches(propertyValue) {
			matched = false
		}
	}
	if !matched {
		errs.Recordf("[%s] : %s search with Query '%s' had non-matching results: got %v", scope, method, queryText, got)
	}
}

// searchMethodURLs maps each advertised search method to its href.
func searchMethodURLs(rootBody Object) map[string]string {
	urls := map[string]string{}
	for _, link := range LinksByRel(rootBody.Links(), "search") {
		urls[link.MethodOrGet()] = link.Href
	}
	return urls
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
