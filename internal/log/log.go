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

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// STAC_API_VALIDATOR_LOG_FORMAT is an environment variable that specifies the format used when logging.
// When set to "json", log entries are emitted as JSON lines. The plain text logger is used in other cases.
const envVarLogFormat = "STAC_API_VALIDATOR_LOG_FORMAT"

func Fatal(msg string, a ...interface{}) {
	slog.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}

func Error(msg string, a ...interface{}) {
	slog.Error(fmt.Sprintf(msg, a...))
}

func Warn(msg string, a ...interface{}) {
	slog.Warn(fmt.Sprintf(msg, a...))
}

func Info(msg string, a ...interface{}) {
	slog.Info(fmt.Sprintf(msg, a...))
}

func Debug(msg string, a ...interface{}) {
	slog.Debug(fmt.Sprintf(msg, a...))
}

// PrepareLogging sets up the default slog.Logger with the specified level.
// An additional spy writer receives a copy of every entry when non-nil.
func PrepareLogging(level slog.Level, loggerSpy io.Writer) {
	out := io.Writer(os.Stderr)
	if loggerSpy != nil {
		out = io.MultiWriter(os.Stderr, loggerSpy)
	}
	slog.SetDefault(slog.New(prepareHandler(out, level)))
}

func prepareHandler(out io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv(envVarLogFormat) == "json" {
		return slog.NewJSONHandler(out, opts)
	}
	return NewColorHandler(slog.NewTextHandler(out, opts))
}

// LevelFromString parses a textual log level like "DEBUG" or "warn".
// Unknown values yield slog.LevelInfo.
func LevelFromString(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
