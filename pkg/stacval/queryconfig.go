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
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"
)

// QueryConfig carries the operator-supplied field names and comparison values
// the Query and Sort Extension validations are run with. Every field is
// operator data; none of it can be derived from the API under test.
type QueryConfig struct {
	ComparisonField string `mapstructure:"query_comparison_field" yaml:"query_comparison_field"`
	EqValue         string `mapstructure:"query_eq_value" yaml:"query_eq_value"`
	NeqValue        string `mapstructure:"query_neq_value" yaml:"query_neq_value"`
	LtValue         string `mapstructure:"query_lt_value" yaml:"query_lt_value"`
	LteValue        string `mapstructure:"query_lte_value" yaml:"query_lte_value"`
	GtValue         string `mapstructure:"query_gt_value" yaml:"query_gt_value"`
	GteValue        string `mapstructure:"query_gte_value" yaml:"query_gte_value"`
	SubstringField  string `mapstructure:"query_substring_field" yaml:"query_substring_field"`
	StartsWithValue string `mapstructure:"query_starts_with_value" yaml:"query_starts_with_value"`
	EndsWithValue   string `mapstructure:"query_ends_with_value" yaml:"query_ends_with_value"`
	ContainsValue   string `mapstructure:"query_contains_value" yaml:"query_contains_value"`
	InField         string `mapstructure:"query_in_field" yaml:"query_in_field"`
	InValues        string `mapstructure:"query_in_values" yaml:"query_in_values"`
}

// LoadQueryConfig reads a QueryConfig from a YAML file. Unknown keys are
// tolerated so one config file can serve several validator versions.
func LoadQueryConfig(fs afero.Fs, path string) (QueryConfig, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return QueryConfig{}, errors.Wrapf(err, "reading query config %s", path)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return QueryConfig{}, errors.Wrapf(err, "parsing query config %s", path)
	}

	var config QueryConfig
	if err := mapstructure.WeakDecode(raw, &config); err != nil {
		return QueryConfig{}, errors.Wrapf(err, "decoding query config %s", path)
	}
	return config, nil
}
