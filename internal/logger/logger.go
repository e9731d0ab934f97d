// Package logger writes the --verbose trace of a sitechat run to stderr.
//
// Each pipeline stage (load, retrieval, agent) opens with a banner from
// Stage and closes with its elapsed time, so a verbose run reads as
// fetch, split, embed, search and answer in order. Errors are printed even
// when verbose output is off.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
	levelError level = "ERROR"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr

	now = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(lvl level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose || lvl == levelError {
		fmt.Fprintf(output, "["+string(lvl)+"] "+format+"\n", args...)
	}
}

// Debug traces pipeline detail: locators, chunk counts, tool arguments.
func Debug(format string, args ...any) { logf(levelDebug, format, args...) }

// Info reports collection changes and server addresses.
func Info(format string, args ...any) { logf(levelInfo, format, args...) }

// Warn reports a recoverable problem, such as a fallback prompt.
func Warn(format string, args ...any) { logf(levelWarn, format, args...) }

// Error prints regardless of verbose mode.
func Error(format string, args ...any) { logf(levelError, format, args...) }

// Stage prints a banner for a pipeline stage and returns a func that
// reports how long the stage took:
//
//	defer logger.Stage("Retrieval")()
func Stage(name string) func() {
	if !IsVerbose() {
		return func() {}
	}

	mu.RLock()
	fmt.Fprintf(output, "\n=== %s ===\n", name)
	mu.RUnlock()

	start := now()
	return func() {
		logf(levelDebug, "%s finished in %s", name, now().Sub(start).Round(time.Millisecond))
	}
}
