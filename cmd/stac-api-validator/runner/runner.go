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

package runner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stac-utils/stac-api-validator/internal/log"
	"github.com/stac-utils/stac-api-validator/internal/version"
	"github.com/stac-utils/stac-api-validator/pkg/stacval"
)

func Run() int {
	rootCmd := BuildCli(afero.NewOsFs())

	err := rootCmd.Execute()

	if err != nil {
		log.Error("%v\n", err)
		return 1
	}

	return 0
}

type options struct {
	logLevel           string
	rootURL            string
	conformanceClasses []string
	collection         string
	geometry           string

	authBearerToken    string
	authQueryParameter string

	fieldsNestedProperty  string
	validatePagination    bool
	queryConfigPath       string
	queryFlags            stacval.QueryConfig
	transactionCollection string
}

func BuildCli(fs afero.Fs) *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "stac-api-validator --root-url <url> --conformance <class> [--conformance <class> ...]",
		Short: "Validates a STAC API deployment against the conformance classes it advertises.",
		Long: `Validates the STAC API at a given landing page URL.

Examples:
  Validate the core landing page behavior
    stac-api-validator --root-url https://stac.example.com --conformance core
  Validate item search over a known collection
    stac-api-validator --root-url https://stac.example.com --conformance core --conformance item-search --collection sentinel-2-l2a --geometry '{"type": "Point", "coordinates": [7.5, 47.3]}'`,

		Version:      version.StacAPIValidator,
		SilenceUsage: true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.PrepareLogging(log.LevelFromString(opts.logLevel), nil)
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd.Context(), fs, cmd.OutOrStdout(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.logLevel, "log-level", "INFO", "Logging level, one of DEBUG, INFO, WARN, ERROR")
	flags.StringVar(&opts.rootURL, "root-url", "", "STAC API Root / Landing Page URL")
	flags.StringSliceVar(&opts.conformanceClasses, "conformance", nil,
		"Conformance class to validate, one of: "+strings.Join(stacval.ConformanceClasses, ", ")+" (repeatable)")
	flags.StringVar(&opts.collection, "collection", "", "The name of the collection to use for validations that require one")
	flags.StringVar(&opts.geometry, "geometry", "", "GeoJSON geometry intersecting items in the collection, inline or @file")
	flags.StringVar(&opts.authBearerToken, "auth-bearer-token", "", "Authorization Bearer token sent with every request")
	flags.StringVar(&opts.authQueryParameter, "auth-query-parameter", "", "Query parameter (key=value) appended to every request")
	flags.StringVar(&opts.fieldsNestedProperty, "fields-nested-property", "",
		"Fully-qualified property name (e.g., properties.eo:cloud_cover) used for Fields Extension nested-field validation")
	flags.BoolVar(&opts.validatePagination, "validate-pagination", false, "Validate pagination behavior, may take a long time")
	flags.StringVar(&opts.queryConfigPath, "query-config", "", "YAML file supplying the Query Extension field/value configuration")
	addQueryFlags(flags, &opts.queryFlags)
	flags.StringVar(&opts.transactionCollection, "transaction-collection", "", "The name of the collection to use for Transaction Extension validations")

	_ = rootCmd.MarkFlagRequired("root-url")
	_ = rootCmd.MarkFlagRequired("conformance")
	_ = rootCmd.MarkFlagFilename("query-config", "yaml", "yml")

	rootCmd.AddCommand(getVersionCommand())

	return rootCmd
}

// addQueryFlags registers the --query-* family configuring the Query
// Extension probes. The same values may come from --query-config instead.
func addQueryFlags(flags *pflag.FlagSet, config *stacval.QueryConfig) {
	flags.StringVar(&config.ComparisonField, "query-comparison-field", "", "Numeric property to use for Query Extension comparison operators")
	flags.StringVar(&config.EqValue, "query-eq-value", "", "Value the comparison field equals on at least one item")
	flags.StringVar(&config.NeqValue, "query-neq-value", "", "Value the comparison field does not equal on at least one item")
	flags.StringVar(&config.LtValue, "query-lt-value", "", "Value some comparison field values are less than")
	flags.StringVar(&config.LteValue, "query-lte-value", "", "Value some comparison field values are less than or equal to")
	flags.StringVar(&config.GtValue, "query-gt-value", "", "Value some comparison field values are greater than")
	flags.StringVar(&config.GteValue, "query-gte-value", "", "Value some comparison field values are greater than or equal to")
	flags.StringVar(&config.SubstringField, "query-substring-field", "", "String property to use for Query Extension substring operators")
	flags.StringVar(&config.StartsWithValue, "query-starts-with-value", "", "Prefix of the substring field on at least one item")
	flags.StringVar(&config.EndsWithValue, "query-ends-with-value", "", "Suffix of the substring field on at least one item")
	flags.StringVar(&config.ContainsValue, "query-contains-value", "", "Substring of the substring field on at least one item")
	flags.StringVar(&config.InField, "query-in-field", "", "Property to use for the Query Extension 'in' operator")
	flags.StringVar(&config.InValues, "query-in-values", "", "Comma-separated values the 'in' field matches on at least one item")
}

const releasesURL = "https://api.github.com/repos/stac-utils/stac-api-validator/releases/latest"

func getVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Prints out the version of the stac-api-validator cli",
		Example: "stac-api-validator version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "stac-api-validator version "+version.StacAPIValidator)

			current, err := version.ParseVersion(version.StacAPIValidator)
			if err != nil {
				return
			}
			latest, err := version.GetLatestVersion(cmd.Context(), http.DefaultClient, releasesURL)
			if err != nil || latest.Invalid() {
				return
			}
			if latest.GreaterThan(current) {
				log.Info("A newer version (%s) is available, consider updating", latest)
			}
		},
	}
}

func validate(ctx context.Context, fs afero.Fs, out io.Writer, opts options) error {
	for _, cc := range opts.conformanceClasses {
		if !slices.Contains(stacval.ConformanceClasses, cc) {
			return fmt.Errorf("invalid conformance class '%s', must be one of: %s",
				cc, strings.Join(stacval.ConformanceClasses, ", "))
		}
	}

	geometry, err := resolveGeometry(fs, opts.geometry)
	if err != nil {
		return err
	}

	queryConfig := opts.queryFlags
	if opts.queryConfigPath != "" {
		queryConfig, err = stacval.LoadQueryConfig(fs, opts.queryConfigPath)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Validating %s ...\n", opts.rootURL)

	warnings, errs := stacval.ValidateAPI(ctx, stacval.Options{
		RootURL:               opts.rootURL,
		ConformanceClasses:    opts.conformanceClasses,
		Collection:            opts.collection,
		Geometry:              geometry,
		AuthBearerToken:       opts.authBearerToken,
		AuthQueryParameter:    opts.authQueryParameter,
		FieldsNestedProperty:  opts.fieldsNestedProperty,
		ValidatePagination:    opts.validatePagination,
		QueryConfig:           queryConfig,
		TransactionCollection: opts.transactionCollection,
	})

	printReport(out, "warnings", warnings.Messages())
	printReport(out, "errors", errs.Messages())

	if errs.Any() {
		return fmt.Errorf("%s failed validation", opts.rootURL)
	}
	return nil
}

// resolveGeometry returns the flag value as-is, or the contents of the
// referenced file when the value starts with '@'.
func resolveGeometry(fs afero.Fs, value string) (string, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	path := strings.TrimPrefix(value, "@")
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read geometry file %s", path)
	}
	return string(data), nil
}

func printReport(out io.Writer, section string, messages []string) {
	if len(messages) == 0 {
		fmt.Fprintf(out, "%s: none\n", section)
		return
	}
	fmt.Fprintf(out, "%s:\n", section)
	for _, msg := range messages {
		fmt.Fprintf(out, "- %s\n", msg)
	}
}
