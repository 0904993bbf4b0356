//go:build unit

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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindingsAccumulateInInsertionOrder(t *testing.T) {
	errs := &Errors{}
	assert.False(t, errs.Any())

	errs.Record("CORE-1", "first")
	errs.Recordf("second %d", 2)
	errs.Record("CORE-3", "third")

	assert.True(t, errs.Any())
	assert.Equal(t, []string{"first", "second 2", "third"}, errs.Messages())

	findings := errs.Findings()
	assert.Len(t, findings, 3)
	assert.Equal(t, Finding{Code: "CORE-1", Message: "first"}, findings[0])
	assert.Equal(t, Finding{Code: NoCode, Message: "second 2"}, findings[1])
}

func TestFindingsContains(t *testing.T) {
	warnings := &Warnings{}
	warnings.Record("CORE-2", "conformsTo missing")
	warnings.Recordf("uncoded")

	assert.True(t, warnings.Contains("CORE-2"))
	assert.True(t, warnings.Contains(NoCode))
	assert.False(t, warnings.Contains("CORE-1"))
}

func TestFindingsEmpty(t *testing.T) {
	errs := &Errors{}
	assert.False(t, errs.Any())
	assert.Empty(t, errs.Messages())
	assert.False(t, errs.Contains(NoCode))
}
