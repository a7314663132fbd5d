package internal

import (
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Whether informational output is suppressed.
	debugMode   atomic.Bool // Whether debug logging is enabled.
	verboseMode atomic.Bool // Whether verbose logging is enabled.
)

// Seeds the runtime modes from linker flags.
//
// rawQuiet, rawDebug, and rawVerbose are injected via ldflags during a
// pipeline build; local builds leave them at "false".
func init() {
	if v, err := strconv.ParseBool(rawQuiet); err == nil {
		quietMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawDebug); err == nil {
		debugMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawVerbose); err == nil {
		verboseMode.Store(v)
	}
}

// Suppresses or restores informational output.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Returns true if informational output is suppressed.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug logging.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Returns true if debug logging is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Enables or disables verbose logging.
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}
