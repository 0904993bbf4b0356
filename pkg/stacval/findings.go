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

import "fmt"

// NoCode is the sentinel code of a finding that has no stable identifier.
const NoCode = "none"

// Finding is a single recorded validation result. Code is a stable short
// identifier like "CORE-1", or NoCode.
type Finding struct {
	Code    string
	Message string
}

// findingList is an append-only, order-preserving collection of findings.
// There is no removal operation; findings accumulate for the lifetime of a run.
type findingList struct {
	findings []Finding
}

// Record appends a finding with a stable code.
func (l *findingList) Record(code, message string) {
	l.findings = append(l.findings, Finding{Code: code, Message: message})
}

// Recordf appends an uncoded finding built from a printf format.
func (l *findingList) Recordf(format string, a ...any) {
	l.Record(NoCode, fmt.Sprintf(format, a...))
}

// Contains reports whether a finding with the given code was recorded.
func (l *findingList) Contains(code string) bool {
	for _, f := range l.findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Any reports whether at least one finding was recorded.
func (l *findingList) Any() bool {
	return len(l.findings) > 0
}

// Messages returns all messages in insertion order.
func (l *findingList) Messages() []string {
	msgs := make([]string, 0, len(l.findings))
	for _, f := range l.findings {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

// Findings returns the recorded findings in insertion order.
func (l *findingList) Findings() []Finding {
	return l.findings
}

func (l *findingList) String() string {
	return fmt.Sprintf("%v", l.findings)
}

// Errors accumulates findings that fail a conformance requirement.
type Errors struct {
	findingList
}

// Warnings accumulates findings that merit attention but do not fail validation.
type Warnings struct {
	findingList
}
