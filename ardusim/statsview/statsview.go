//go:build statsview

package statsview

import (
	"log/slog"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Available reports whether the server was compiled in.
func Available() bool {
	return true
}

// Launch starts the server on addr in its own goroutine. The returned
// function shuts it down.
func Launch(addr string) func() {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()

	slog.Info("Stats server available", "url", "http://"+addr+Path)
	return mgr.Stop
}
