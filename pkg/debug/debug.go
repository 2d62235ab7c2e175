// Package debug is pensum's trace log: curriculum loading, layout, hover
// batches, watcher reloads and websocket traffic.
//
// It is silent unless PENSUM_DEBUG is set or a command passes --debug-log:
//
//	PENSUM_DEBUG=1 pensum serve
//	pensum --debug-log /tmp/pensum.log
//
// The board owns the terminal, so tracing it needs --debug-log.
package debug

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

// EnvVar enables tracing to stderr when set to any non-empty value.
const EnvVar = "PENSUM_DEBUG"

const prefix = "[PENSUM_DEBUG] "

// nil while tracing is off. The server logs from many goroutines.
var logger atomic.Pointer[log.Logger]

func init() {
	if os.Getenv(EnvVar) != "" {
		SetOutput(os.Stderr)
	}
}

// SetOutput sends trace lines to w; a nil w turns tracing off.
func SetOutput(w io.Writer) {
	if w == nil {
		logger.Store(nil)
		return
	}
	logger.Store(log.New(w, prefix, log.Ltime|log.Lmicroseconds))
}

// Enabled reports whether trace lines are written anywhere.
func Enabled() bool {
	return logger.Load() != nil
}

// Log writes a printf-style trace line when tracing is on.
func Log(format string, args ...any) {
	if l := logger.Load(); l != nil {
		l.Printf(format, args...)
	}
}
