//go:build !statsview

package statsview

import "log/slog"

// Available reports whether the server was compiled in.
func Available() bool {
	return false
}

// Launch logs that the server is missing and returns a no-op.
func Launch(addr string) func() {
	slog.Warn("Stats server requested but not compiled in, rebuild with -tags statsview", "addr", addr)
	return func() {}
}
