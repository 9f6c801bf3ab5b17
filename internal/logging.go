/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "CUTEMATCH_LOG_LEVEL"
	EnvLogNoColor = "CUTEMATCH_LOG_NOCOLOR"
)

type LogProfile int

const (
	LogProfileRuntime LogProfile = iota
	LogProfileTest
)

var configureOnce sync.Once

// ConfigureLogging installs the process-wide zerolog logger. Output goes to
// stderr because stdout is shared with the tournament manager's progress.
func ConfigureLogging(profile LogProfile) {
	configureOnce.Do(func() {
		log.Logger = NewLogger(os.Stderr, profile)
		zerolog.SetGlobalLevel(levelFor(profile))
	})
}

func NewLogger(w io.Writer, profile LogProfile) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    parseBoolEnv(EnvLogNoColor),
	}
	ctx := zerolog.New(output).With().Str("app", "cutematch")
	if profile == LogProfileRuntime {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

func levelFor(profile LogProfile) zerolog.Level {
	if lvl, ok := ParseLogLevel(os.Getenv(EnvLogLevel)); ok {
		return lvl
	}
	if profile == LogProfileTest {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func ParseLogLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBoolEnv(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
